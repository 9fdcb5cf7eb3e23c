package scan

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tendant/simple-blog/pkg/blogcontent"
)

// Lint problems reported by LintProcessor
var (
	ErrMissingTitle     = errors.New("title is empty")
	ErrMissingDate      = errors.New("date is missing")
	ErrUnresolvedAuthor = errors.New("author does not match any author record")
)

// LintProcessor flags posts whose content will render poorly
type LintProcessor struct {
	// AllowUnresolvedAuthors skips the author check
	AllowUnresolvedAuthors bool
}

// Process implements PostProcessor. All problems of a post are joined into one error.
func (l LintProcessor) Process(ctx context.Context, post *blogcontent.Post) error {
	var problems []error

	if strings.TrimSpace(post.Title) == "" {
		problems = append(problems, ErrMissingTitle)
	}
	if post.DateDefaulted {
		problems = append(problems, ErrMissingDate)
	}
	if !l.AllowUnresolvedAuthors && post.AuthorResolution == blogcontent.AuthorUnresolved {
		problems = append(problems, fmt.Errorf("%w: %q", ErrUnresolvedAuthor, describeAuthor(post.Author)))
	}

	return errors.Join(problems...)
}

func describeAuthor(a blogcontent.Author) string {
	if a.ID != "" {
		return a.ID
	}
	return a.Name
}
