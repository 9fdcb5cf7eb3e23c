package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-blog/pkg/blogcontent"
)

// fakeClient serves objects from a map and lists them two keys per page
type fakeClient struct {
	mu        sync.Mutex
	objects   map[string]string
	headErr   error
	getErr    error
	listErr   error
	listCalls int
}

func newFakeClient() *fakeClient {
	return &fakeClient{objects: make(map[string]string)}
}

func (f *fakeClient) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeClient) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	body, ok := f.objects[aws.ToString(params.Key)]
	f.mu.Unlock()
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("The specified key does not exist.")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func (f *fakeClient) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}

	prefix := aws.ToString(params.Prefix)
	var keys []string
	for key := range f.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	start := 0
	if token := aws.ToString(params.ContinuationToken); token != "" {
		start, _ = strconv.Atoi(token)
	}
	end := start + 2
	if end > len(keys) {
		end = len(keys)
	}

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(keys))}
	for _, key := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(key)})
	}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

func newTestBackend(t *testing.T, client *fakeClient) *Backend {
	t.Helper()
	b, err := NewWithClient(context.Background(), client, Config{Bucket: "blog"})
	require.NoError(t, err)
	return b
}

func TestNewWithClient_Defaults(t *testing.T) {
	b := newTestBackend(t, newFakeClient())
	assert.Equal(t, "blog", b.Bucket())
	assert.Equal(t, DefaultPostsPrefix, b.postsPrefix)
	assert.Equal(t, DefaultAuthorsPrefix, b.authorsPrefix)
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrBucketRequired)

	_, err = NewWithClient(context.Background(), newFakeClient(), Config{})
	assert.ErrorIs(t, err, ErrBucketRequired)
}

func TestNewWithClient_BucketErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		kind     BucketErrorKind
		sentinel error
	}{
		{
			name:     "not found type",
			err:      &types.NotFound{},
			kind:     BucketNotFound,
			sentinel: ErrBucketNotFound,
		},
		{
			name:     "no such bucket code",
			err:      &smithy.GenericAPIError{Code: "NoSuchBucket"},
			kind:     BucketNotFound,
			sentinel: ErrBucketNotFound,
		},
		{
			name:     "access denied code",
			err:      &smithy.GenericAPIError{Code: "AccessDenied"},
			kind:     BucketAccessDenied,
			sentinel: ErrBucketAccessDenied,
		},
		{
			name:     "forbidden status",
			err:      responseError(http.StatusForbidden),
			kind:     BucketAccessDenied,
			sentinel: ErrBucketAccessDenied,
		},
		{
			name:     "not found status",
			err:      responseError(http.StatusNotFound),
			kind:     BucketNotFound,
			sentinel: ErrBucketNotFound,
		},
		{
			name: "connection failure",
			err:  errors.New("dial tcp: connection refused"),
			kind: BucketUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newFakeClient()
			client.headErr = tt.err

			b, err := NewWithClient(context.Background(), client, Config{Bucket: "blog"})
			assert.Nil(t, b)

			var bucketErr *BucketError
			require.True(t, errors.As(err, &bucketErr))
			assert.Equal(t, tt.kind, bucketErr.Kind)
			assert.Equal(t, "blog", bucketErr.Bucket)
			assert.ErrorIs(t, err, tt.err)
			assert.Contains(t, err.Error(), "'blog'")
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			} else {
				assert.NotErrorIs(t, err, ErrBucketNotFound)
				assert.NotErrorIs(t, err, ErrBucketAccessDenied)
			}
		})
	}
}

func responseError(status int) error {
	return &smithyhttp.ResponseError{
		Response: &smithyhttp.Response{Response: &http.Response{StatusCode: status}},
		Err:      errors.New("http error"),
	}
}

func TestLoadAllPosts_Paginates(t *testing.T) {
	client := newFakeClient()
	for i, date := range []string{"2024-01-01", "2024-03-01", "2024-02-01", "2024-05-01", "2024-04-01"} {
		key := DefaultPostsPrefix + "post-" + strconv.Itoa(i) + ".md"
		client.objects[key] = "---\ndate: '" + date + "'\n---\nbody"
	}
	client.objects[DefaultPostsPrefix+"image.png"] = "binary"
	client.objects[DefaultPostsPrefix+"empty.md"] = ""
	client.objects[DefaultPostsPrefix+"broken.md"] = "---\ntitle: [x\n---\n"

	b := newTestBackend(t, client)
	posts, err := b.LoadAllPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 5)
	assert.Equal(t, "post-3", posts[0].Slug)
	assert.Equal(t, "post-0", posts[4].Slug)
	assert.Greater(t, client.listCalls, 1)
}

func TestGetPostBySlug(t *testing.T) {
	client := newFakeClient()
	client.objects[DefaultPostsPrefix+"hello.md"] = "---\ntitle: Hello\ndate: '2024-01-01'\nauthor:\n  id: jane\n---\nhi"
	client.objects[DefaultPostsPrefix+"empty.md"] = ""
	client.objects[DefaultAuthorsPrefix+"jane.json"] = `{"name":"Jane","picture":"/j.png"}`
	b := newTestBackend(t, client)
	ctx := context.Background()

	post, err := b.GetPostBySlug(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, "Jane", post.Author.Name)
	assert.Equal(t, blogcontent.AuthorResolvedByID, post.AuthorResolution)

	for _, slug := range []string{"missing", "empty", "../hello", ""} {
		_, err := b.GetPostBySlug(ctx, slug)
		assert.ErrorIs(t, err, blogcontent.ErrPostNotFound, slug)
	}
}

func TestGetPostBySlug_TransportError(t *testing.T) {
	client := newFakeClient()
	b := newTestBackend(t, client)
	client.getErr = errors.New("connection reset")

	_, err := b.GetPostBySlug(context.Background(), "hello")
	var storageErr *blogcontent.StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, Name, storageErr.Backend)
	assert.NotErrorIs(t, err, blogcontent.ErrPostNotFound)
}

func TestLoadAllPosts_ListError(t *testing.T) {
	client := newFakeClient()
	b := newTestBackend(t, client)
	client.listErr = errors.New("throttled")

	_, err := b.LoadAllPosts(context.Background())
	var storageErr *blogcontent.StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, "list_objects", storageErr.Op)
}

func TestAuthors(t *testing.T) {
	client := newFakeClient()
	client.objects[DefaultAuthorsPrefix+"a.json"] = `{"id":"a","name":"A"}`
	client.objects[DefaultAuthorsPrefix+"b.json"] = `{"name":"B","bio":"hello"}`
	client.objects[DefaultAuthorsPrefix+"c.json"] = `{`
	client.objects[DefaultAuthorsPrefix+"readme.txt"] = `ignored`
	b := newTestBackend(t, client)
	ctx := context.Background()

	authors, err := b.LoadAllAuthors(ctx)
	require.NoError(t, err)
	require.Len(t, authors, 2)

	author, err := b.GetAuthorByID(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "b", author.ID)
	require.NotNil(t, author.Bio)
	assert.Equal(t, "hello", *author.Bio)

	_, err = b.GetAuthorByID(ctx, "c")
	assert.ErrorIs(t, err, blogcontent.ErrAuthorNotFound)
	_, err = b.GetAuthorByID(ctx, "zzz")
	assert.ErrorIs(t, err, blogcontent.ErrAuthorNotFound)
}

func TestGetPostsByTagAndPaginated(t *testing.T) {
	client := newFakeClient()
	client.objects[DefaultPostsPrefix+"a.md"] = "---\ndate: '2024-01-01'\ntags: [go]\n---\n"
	client.objects[DefaultPostsPrefix+"b.md"] = "---\ndate: '2024-01-02'\ntags: [go, aws]\n---\n"
	client.objects[DefaultPostsPrefix+"c.md"] = "---\ndate: '2024-01-03'\n---\n"
	b := newTestBackend(t, client)
	ctx := context.Background()

	tagged, err := b.GetPostsByTag(ctx, "aws")
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, "b", tagged[0].Slug)

	page, err := b.GetPostsPaginated(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Posts, 2)
	assert.Equal(t, "c", page.Posts[0].Slug)

	_, err = b.GetPostsPaginated(ctx, 0, 2)
	assert.ErrorIs(t, err, blogcontent.ErrInvalidPagination)
}

func TestGetObject_ReadsWholeBody(t *testing.T) {
	client := newFakeClient()
	big := bytes.Repeat([]byte("x"), 64*1024)
	client.objects[DefaultPostsPrefix+"big.md"] = "---\ndate: '2024-01-01'\n---\n" + string(big)
	b := newTestBackend(t, client)

	post, err := b.GetPostBySlug(context.Background(), "big")
	require.NoError(t, err)
	assert.Len(t, post.RawContent, len(big))
}
