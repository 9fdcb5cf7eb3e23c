package blogcontent

import (
	"context"
)

// Backend defines the read operations every content storage backend provides
type Backend interface {
	// LoadAllPosts returns every post, most recent date first.
	// Resources that fail to read or parse are logged and skipped.
	LoadAllPosts(ctx context.Context) ([]Post, error)

	// GetPostBySlug returns ErrPostNotFound when no post exists for slug
	GetPostBySlug(ctx context.Context, slug string) (*Post, error)

	// GetPostsByTag returns the posts of LoadAllPosts carrying tag, in the same order
	GetPostsByTag(ctx context.Context, tag string) ([]Post, error)

	// GetPostsPaginated returns one page of LoadAllPosts
	GetPostsPaginated(ctx context.Context, page, perPage int) (*PaginatedPosts, error)

	// LoadAllAuthors returns every author record that parses
	LoadAllAuthors(ctx context.Context) ([]Author, error)

	// GetAuthorByID returns ErrAuthorNotFound when no author exists for id
	GetAuthorByID(ctx context.Context, id string) (*Author, error)
}

// Renderer converts the markdown body of a post into HTML
type Renderer interface {
	Render(source string) (string, error)
}
