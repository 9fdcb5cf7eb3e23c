package scan

import (
	"context"

	"github.com/tendant/simple-blog/pkg/blogcontent"
)

// PostProcessor processes individual posts.
//
// Example implementations:
//   - Linter (flags posts with missing dates or unresolved authors)
//   - Reporter (exports post metadata)
//   - Link checker (validates cover and og images)
type PostProcessor interface {
	// Process is called for each post found during scan.
	// Return error to mark this post as failed (scan continues with next post).
	Process(ctx context.Context, post *blogcontent.Post) error
}

// ProcessorFunc adapts a function to the PostProcessor interface.
type ProcessorFunc func(ctx context.Context, post *blogcontent.Post) error

func (f ProcessorFunc) Process(ctx context.Context, post *blogcontent.Post) error {
	return f(ctx, post)
}
