package memory

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/tendant/simple-blog/pkg/blogcontent"
)

// Name identifies the memory backend in logs and errors
const Name = "memory"

// Backend is an in-memory implementation of the blogcontent.Backend interface.
// Documents are stored raw and parsed on every read, like the other backends.
type Backend struct {
	mu      sync.RWMutex
	posts   map[string][]byte
	authors map[string][]byte
	parser  *blogcontent.Parser
}

// New creates a new in-memory backend. parser may be nil.
func New(parser *blogcontent.Parser) *Backend {
	if parser == nil {
		parser = &blogcontent.Parser{}
	}
	return &Backend{
		posts:   make(map[string][]byte),
		authors: make(map[string][]byte),
		parser:  parser,
	}
}

// PutPost stores the raw markdown document of a post under slug
func (b *Backend) PutPost(slug string, document []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.posts[slug] = document
}

// PutAuthor stores the raw JSON record of an author under id
func (b *Backend) PutAuthor(id string, record []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.authors[id] = record
}

// LoadAllPosts parses every stored post
func (b *Backend) LoadAllPosts(ctx context.Context) ([]blogcontent.Post, error) {
	docs := snapshot(&b.mu, b.posts)

	authors := blogcontent.NewAuthorIndex(b.LoadAllAuthors)
	posts := make([]blogcontent.Post, 0, len(docs))
	for _, slug := range sortedKeys(docs) {
		post, err := b.parser.ParsePost(ctx, slug+".md", docs[slug], authors)
		if err != nil {
			slog.Error("Error loading post", "slug", slug, "err", err)
			continue
		}
		posts = append(posts, *post)
	}

	blogcontent.SortPostsByDate(posts)
	return posts, nil
}

// GetPostBySlug parses the post stored under slug
func (b *Backend) GetPostBySlug(ctx context.Context, slug string) (*blogcontent.Post, error) {
	b.mu.RLock()
	doc, exists := b.posts[slug]
	b.mu.RUnlock()
	if !exists {
		return nil, blogcontent.ErrPostNotFound
	}

	post, err := b.parser.ParsePost(ctx, slug+".md", doc, blogcontent.NewAuthorIndex(b.LoadAllAuthors))
	if err != nil {
		slog.Error("Error loading post", "slug", slug, "err", err)
		return nil, blogcontent.ErrPostNotFound
	}
	return post, nil
}

// GetPostsByTag returns the posts carrying tag
func (b *Backend) GetPostsByTag(ctx context.Context, tag string) ([]blogcontent.Post, error) {
	posts, err := b.LoadAllPosts(ctx)
	if err != nil {
		return nil, err
	}
	return blogcontent.FilterByTag(posts, tag), nil
}

// GetPostsPaginated returns one page of all posts
func (b *Backend) GetPostsPaginated(ctx context.Context, page, perPage int) (*blogcontent.PaginatedPosts, error) {
	if page < 1 || perPage < 1 {
		return nil, blogcontent.ErrInvalidPagination
	}
	posts, err := b.LoadAllPosts(ctx)
	if err != nil {
		return nil, err
	}
	return blogcontent.Paginate(posts, page, perPage)
}

// LoadAllAuthors parses every stored author
func (b *Backend) LoadAllAuthors(ctx context.Context) ([]blogcontent.Author, error) {
	records := snapshot(&b.mu, b.authors)

	authors := make([]blogcontent.Author, 0, len(records))
	for _, id := range sortedKeys(records) {
		author, err := b.parser.ParseAuthor(id+".json", records[id])
		if err != nil {
			slog.Error("Error loading author", "id", id, "err", err)
			continue
		}
		authors = append(authors, *author)
	}
	return authors, nil
}

// GetAuthorByID parses the author stored under id
func (b *Backend) GetAuthorByID(ctx context.Context, id string) (*blogcontent.Author, error) {
	b.mu.RLock()
	record, exists := b.authors[id]
	b.mu.RUnlock()
	if !exists {
		return nil, blogcontent.ErrAuthorNotFound
	}

	author, err := b.parser.ParseAuthor(id+".json", record)
	if err != nil {
		slog.Error("Error loading author", "id", id, "err", err)
		return nil, blogcontent.ErrAuthorNotFound
	}
	return author, nil
}

func snapshot(mu *sync.RWMutex, m map[string][]byte) map[string][]byte {
	mu.RLock()
	defer mu.RUnlock()
	out := make(map[string][]byte, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sortedKeys(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
