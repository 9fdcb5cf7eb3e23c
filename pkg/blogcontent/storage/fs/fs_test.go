package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-blog/pkg/blogcontent"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newBackend(t *testing.T) (*Backend, string) {
	t.Helper()
	dir := t.TempDir()
	b, err := New(Config{ContentDir: dir})
	require.NoError(t, err)
	return b, dir
}

func TestNew_CreatesDirectories(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "content")
	b, err := New(Config{ContentDir: dir})
	require.NoError(t, err)
	assert.Equal(t, dir, b.ContentDir())

	for _, sub := range []string{"posts", "authors"} {
		info, err := os.Stat(filepath.Join(dir, sub))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	posts, err := b.LoadAllPosts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, posts)

	authors, err := b.LoadAllAuthors(context.Background())
	require.NoError(t, err)
	assert.Empty(t, authors)
}

func TestNew_RequiresContentDir(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestLoadAllPosts(t *testing.T) {
	b, dir := newBackend(t)
	posts := filepath.Join(dir, "posts")

	writeFile(t, filepath.Join(posts, "first.md"), "---\ntitle: First\ndate: '2024-01-01'\ntags: [go]\n---\none")
	writeFile(t, filepath.Join(posts, "second.md"), "---\ntitle: Second\ndate: '2024-06-01'\n---\ntwo")
	writeFile(t, filepath.Join(posts, "broken.md"), "---\ntitle: [oops\n---\n")
	writeFile(t, filepath.Join(posts, "notes.txt"), "not a post")
	writeFile(t, filepath.Join(posts, ".draft.md"), "---\ntitle: Hidden\n---\n")
	writeFile(t, filepath.Join(posts, "nested", "deep.md"), "---\ntitle: Deep\n---\n")

	got, err := b.LoadAllPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "second", got[0].Slug)
	assert.Equal(t, "first", got[1].Slug)
	assert.Equal(t, []string{"go"}, got[1].Tags)
}

func TestGetPostBySlug(t *testing.T) {
	b, dir := newBackend(t)
	writeFile(t, filepath.Join(dir, "posts", "hello.md"), "---\ntitle: Hello\ndate: '2024-01-01'\n---\nhi")
	writeFile(t, filepath.Join(dir, "posts", "broken.md"), "---\nunterminated")
	writeFile(t, filepath.Join(dir, "secret.md"), "---\ntitle: Secret\n---\n")
	ctx := context.Background()

	post, err := b.GetPostBySlug(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, "Hello", post.Title)

	all, err := b.LoadAllPosts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, all[0], *post)

	for _, slug := range []string{"missing", "broken", "../secret", "..", ""} {
		_, err := b.GetPostBySlug(ctx, slug)
		assert.ErrorIs(t, err, blogcontent.ErrPostNotFound, slug)
	}
}

func TestGetPostsByTagAndPaginated(t *testing.T) {
	b, dir := newBackend(t)
	writeFile(t, filepath.Join(dir, "posts", "a.md"), "---\ndate: '2024-01-01'\ntags: [go, web]\n---\n")
	writeFile(t, filepath.Join(dir, "posts", "b.md"), "---\ndate: '2024-01-02'\ntags: [web]\n---\n")
	writeFile(t, filepath.Join(dir, "posts", "c.md"), "---\ndate: '2024-01-03'\n---\n")
	ctx := context.Background()

	web, err := b.GetPostsByTag(ctx, "web")
	require.NoError(t, err)
	require.Len(t, web, 2)
	assert.Equal(t, "b", web[0].Slug)

	none, err := b.GetPostsByTag(ctx, "rust")
	require.NoError(t, err)
	assert.Empty(t, none)

	page, err := b.GetPostsPaginated(ctx, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, "a", page.Posts[0].Slug)

	_, err = b.GetPostsPaginated(ctx, 0, 10)
	assert.ErrorIs(t, err, blogcontent.ErrInvalidPagination)
}

func TestAuthors(t *testing.T) {
	b, dir := newBackend(t)
	authors := filepath.Join(dir, "authors")
	writeFile(t, filepath.Join(authors, "jane.json"), `{"id":"jane-1","name":"Jane","picture":"/jane.png","bio":"Gopher"}`)
	writeFile(t, filepath.Join(authors, "bob.json"), `{"name":"Bob"}`)
	writeFile(t, filepath.Join(authors, "broken.json"), `{"name":`)
	writeFile(t, filepath.Join(dir, "posts", "p.md"), "---\ndate: '2024-01-01'\nauthor:\n  name: Jane\n---\n")
	ctx := context.Background()

	all, err := b.LoadAllAuthors(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	bob, err := b.GetAuthorByID(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", bob.ID)
	assert.Nil(t, bob.Bio)

	_, err = b.GetAuthorByID(ctx, "broken")
	assert.ErrorIs(t, err, blogcontent.ErrAuthorNotFound)
	_, err = b.GetAuthorByID(ctx, "../posts/p")
	assert.ErrorIs(t, err, blogcontent.ErrAuthorNotFound)

	post, err := b.GetPostBySlug(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "jane-1", post.Author.ID)
	require.NotNil(t, post.Author.Bio)
	assert.Equal(t, "Gopher", *post.Author.Bio)
	assert.Equal(t, blogcontent.AuthorResolvedByName, post.AuthorResolution)
}

func TestLoadAllPosts_MissingDirectory(t *testing.T) {
	b, dir := newBackend(t)
	require.NoError(t, os.RemoveAll(filepath.Join(dir, "posts")))

	_, err := b.LoadAllPosts(context.Background())
	var storageErr *blogcontent.StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, Name, storageErr.Backend)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadAllPosts_CanceledContext(t *testing.T) {
	b, dir := newBackend(t)
	writeFile(t, filepath.Join(dir, "posts", "a.md"), "---\ndate: '2024-01-01'\n---\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.LoadAllPosts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
