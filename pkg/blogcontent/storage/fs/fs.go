package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tendant/simple-blog/pkg/blogcontent"
)

// Name identifies the filesystem backend in logs and errors
const Name = "local"

const (
	postsDirName   = "posts"
	authorsDirName = "authors"
	postExt        = ".md"
	authorExt      = ".json"
)

// Backend is a filesystem implementation of the blogcontent.Backend interface.
// Posts live in {ContentDir}/posts/*.md and authors in {ContentDir}/authors/*.json.
type Backend struct {
	contentDir string
	postsDir   string
	authorsDir string
	parser     *blogcontent.Parser
}

// Config options for the filesystem backend
type Config struct {
	ContentDir string              // Root content directory
	Parser     *blogcontent.Parser // Optional; a zero Parser is used when nil
}

// New creates a new filesystem backend, creating the posts and authors
// directories when they do not exist.
func New(config Config) (*Backend, error) {
	if config.ContentDir == "" {
		return nil, errors.New("content directory is required")
	}

	b := &Backend{
		contentDir: config.ContentDir,
		postsDir:   filepath.Join(config.ContentDir, postsDirName),
		authorsDir: filepath.Join(config.ContentDir, authorsDirName),
		parser:     config.Parser,
	}
	if b.parser == nil {
		b.parser = &blogcontent.Parser{}
	}

	for _, dir := range []string{b.postsDir, b.authorsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create content directory: %w", err)
		}
	}

	return b, nil
}

// ContentDir returns the root content directory
func (b *Backend) ContentDir() string {
	return b.contentDir
}

// LoadAllPosts loads every *.md file in the posts directory
func (b *Backend) LoadAllPosts(ctx context.Context) ([]blogcontent.Post, error) {
	files, err := listFiles(b.postsDir, postExt)
	if err != nil {
		return nil, &blogcontent.StorageError{Backend: Name, Key: b.postsDir, Op: "list_posts", Err: err}
	}

	authors := blogcontent.NewAuthorIndex(b.LoadAllAuthors)
	posts := make([]blogcontent.Post, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		post, err := b.loadPost(ctx, file, authors)
		if err != nil {
			slog.Error("Error loading post", "path", file, "err", err)
			continue
		}
		posts = append(posts, *post)
	}

	blogcontent.SortPostsByDate(posts)
	return posts, nil
}

// GetPostBySlug loads {posts}/{slug}.md
func (b *Backend) GetPostBySlug(ctx context.Context, slug string) (*blogcontent.Post, error) {
	if err := blogcontent.ValidateSlug(slug); err != nil {
		return nil, blogcontent.ErrPostNotFound
	}

	file := filepath.Join(b.postsDir, slug+postExt)
	post, err := b.loadPost(ctx, file, blogcontent.NewAuthorIndex(b.LoadAllAuthors))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, blogcontent.ErrPostNotFound
		}
		var parseErr *blogcontent.ParseError
		if errors.As(err, &parseErr) {
			slog.Error("Error loading post", "slug", slug, "path", file, "err", err)
			return nil, blogcontent.ErrPostNotFound
		}
		return nil, &blogcontent.StorageError{Backend: Name, Key: file, Op: "get_post", Err: err}
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

// LoadAllAuthors loads every *.json file in the authors directory
func (b *Backend) LoadAllAuthors(ctx context.Context) ([]blogcontent.Author, error) {
	files, err := listFiles(b.authorsDir, authorExt)
	if err != nil {
		return nil, &blogcontent.StorageError{Backend: Name, Key: b.authorsDir, Op: "list_authors", Err: err}
	}

	authors := make([]blogcontent.Author, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		author, err := b.loadAuthor(file)
		if err != nil {
			slog.Error("Error loading author", "path", file, "err", err)
			continue
		}
		authors = append(authors, *author)
	}
	return authors, nil
}

// GetAuthorByID loads {authors}/{id}.json
func (b *Backend) GetAuthorByID(ctx context.Context, id string) (*blogcontent.Author, error) {
	if err := blogcontent.ValidateSlug(id); err != nil {
		return nil, blogcontent.ErrAuthorNotFound
	}

	file := filepath.Join(b.authorsDir, id+authorExt)
	author, err := b.loadAuthor(file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, blogcontent.ErrAuthorNotFound
		}
		var parseErr *blogcontent.ParseError
		if errors.As(err, &parseErr) {
			slog.Error("Error loading author", "id", id, "path", file, "err", err)
			return nil, blogcontent.ErrAuthorNotFound
		}
		return nil, &blogcontent.StorageError{Backend: Name, Key: file, Op: "get_author", Err: err}
	}
	return author, nil
}

func (b *Backend) loadPost(ctx context.Context, file string, authors *blogcontent.AuthorIndex) (*blogcontent.Post, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return b.parser.ParsePost(ctx, file, data, authors)
}

func (b *Backend) loadAuthor(file string) (*blogcontent.Author, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return b.parser.ParseAuthor(file, data)
}

// listFiles returns the regular files of dir ending in ext, without descending
// into subdirectories. Hidden files are ignored.
func listFiles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ext) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	return files, nil
}
