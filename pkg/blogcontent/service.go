package blogcontent

import (
	"context"
)

// Service serves blog content from a single backend. It is built once at
// startup and shared by all request handlers.
type Service struct {
	backend Backend
	name    string
}

// Option represents a functional option for configuring the service
type Option func(*Service)

// WithBackend sets the storage backend and the name it is reported under
func WithBackend(name string, backend Backend) Option {
	return func(s *Service) {
		s.name = name
		s.backend = backend
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (*Service, error) {
	s := &Service{}
	for _, option := range options {
		option(s)
	}
	if s.backend == nil {
		return nil, ErrNoBackend
	}
	return s, nil
}

// BackendName returns the name of the active backend
func (s *Service) BackendName() string {
	return s.name
}

// ListPosts returns one page of posts, optionally restricted to a tag.
// Zero Page or PerPage fall back to DefaultPage and DefaultPerPage.
func (s *Service) ListPosts(ctx context.Context, req ListPostsRequest) (*PaginatedPosts, error) {
	req = req.withDefaults()
	if req.Page < 1 || req.PerPage < 1 {
		return nil, ErrInvalidPagination
	}

	if req.Tag == "" {
		return s.backend.GetPostsPaginated(ctx, req.Page, req.PerPage)
	}

	posts, err := s.backend.GetPostsByTag(ctx, req.Tag)
	if err != nil {
		return nil, err
	}
	return Paginate(posts, req.Page, req.PerPage)
}

// AllPosts returns every post, most recent first
func (s *Service) AllPosts(ctx context.Context) ([]Post, error) {
	return s.backend.LoadAllPosts(ctx)
}

// GetPost returns the post for slug or ErrPostNotFound
func (s *Service) GetPost(ctx context.Context, slug string) (*Post, error) {
	return s.backend.GetPostBySlug(ctx, slug)
}

// PostsByTag returns every post carrying tag, most recent first
func (s *Service) PostsByTag(ctx context.Context, tag string) ([]Post, error) {
	return s.backend.GetPostsByTag(ctx, tag)
}

// Tags returns the distinct tags of all posts in ascending order
func (s *Service) Tags(ctx context.Context) ([]string, error) {
	posts, err := s.backend.LoadAllPosts(ctx)
	if err != nil {
		return nil, err
	}
	return CollectTags(posts), nil
}

// Authors returns every author
func (s *Service) Authors(ctx context.Context) ([]Author, error) {
	return s.backend.LoadAllAuthors(ctx)
}

// GetAuthor returns the author for id or ErrAuthorNotFound
func (s *Service) GetAuthor(ctx context.Context, id string) (*Author, error) {
	return s.backend.GetAuthorByID(ctx, id)
}
