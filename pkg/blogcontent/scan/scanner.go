package scan

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tendant/simple-blog/pkg/blogcontent"
)

// Scanner loads posts and processes them with the provided processor.
type Scanner struct {
	service *blogcontent.Service
}

// New creates a new Scanner instance.
func New(service *blogcontent.Service) *Scanner {
	return &Scanner{service: service}
}

// ScanOptions configures the scan operation.
type ScanOptions struct {
	// Tag restricts the scan to posts carrying it (optional)
	Tag string

	// Processor defines the processing logic (required unless DryRun is true)
	Processor PostProcessor

	// BatchSize controls how many posts are handled between progress reports (default: 100)
	BatchSize int

	// DryRun if true, doesn't process posts, just reports what would be processed
	DryRun bool

	// OnProgress is called after each batch is processed (optional)
	OnProgress func(processed, total int64)
}

// ScanResult contains statistics about the scan operation.
type ScanResult struct {
	// TotalFound is the total number of posts found
	TotalFound int64

	// TotalProcessed is the number of posts successfully processed
	TotalProcessed int64

	// TotalFailed is the number of posts that failed processing
	TotalFailed int64

	// FailedSlugs contains the slugs of posts that failed processing
	FailedSlugs []string

	// Failures maps each failed slug to its error
	Failures map[string]error
}

// Scan loads the posts and processes each one with the provided processor.
// If a post fails processing, the error is recorded but scanning continues
// with the next post.
func (s *Scanner) Scan(ctx context.Context, opts ScanOptions) (*ScanResult, error) {
	result := &ScanResult{Failures: make(map[string]error)}

	if !opts.DryRun && opts.Processor == nil {
		return result, fmt.Errorf("processor is required when DryRun is false")
	}

	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}

	var posts []blogcontent.Post
	var err error
	if opts.Tag != "" {
		posts, err = s.service.PostsByTag(ctx, opts.Tag)
	} else {
		posts, err = s.service.AllPosts(ctx)
	}
	if err != nil {
		return result, fmt.Errorf("failed to load posts: %w", err)
	}

	result.TotalFound = int64(len(posts))

	for start := 0; start < len(posts); start += opts.BatchSize {
		end := start + opts.BatchSize
		if end > len(posts) {
			end = len(posts)
		}

		for i := start; i < end; i++ {
			if err := ctx.Err(); err != nil {
				return result, err
			}

			post := &posts[i]
			if opts.DryRun {
				slog.Info("[DRY-RUN] Would process post", "slug", post.Slug, "date", post.Date)
				result.TotalProcessed++
				continue
			}

			if err := opts.Processor.Process(ctx, post); err != nil {
				result.TotalFailed++
				result.FailedSlugs = append(result.FailedSlugs, post.Slug)
				result.Failures[post.Slug] = err
				slog.Warn("Post failed processing", "slug", post.Slug, "err", err)
				continue
			}

			result.TotalProcessed++
		}

		if opts.OnProgress != nil {
			opts.OnProgress(result.TotalProcessed+result.TotalFailed, result.TotalFound)
		}
	}

	return result, nil
}

// ForEach is a convenience method that processes each post with a callback function.
//
// Example:
//
//	scanner.ForEach(ctx, func(ctx context.Context, post *blogcontent.Post) error {
//	    fmt.Printf("Processing %s\n", post.Slug)
//	    return nil
//	})
func (s *Scanner) ForEach(ctx context.Context, fn func(context.Context, *blogcontent.Post) error) (*ScanResult, error) {
	return s.Scan(ctx, ScanOptions{Processor: ProcessorFunc(fn)})
}
