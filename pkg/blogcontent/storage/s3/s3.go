package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/tendant/simple-blog/pkg/blogcontent"
)

// Name identifies the S3 backend in logs and errors
const Name = "s3"

const (
	DefaultRegion        = "us-east-1"
	DefaultPostsPrefix   = "content/posts/"
	DefaultAuthorsPrefix = "content/authors/"

	postExt   = ".md"
	authorExt = ".json"
)

var (
	// ErrBucketRequired indicates the configuration names no bucket
	ErrBucketRequired = errors.New("bucket name is required")

	// ErrBucketNotFound indicates the bucket does not exist
	ErrBucketNotFound = errors.New("bucket does not exist")

	// ErrBucketAccessDenied indicates the credentials cannot access the bucket
	ErrBucketAccessDenied = errors.New("access denied to bucket")

	errObjectNotFound = errors.New("object not found")
)

// Config options for the S3 backend
type Config struct {
	Bucket          string // S3 bucket name
	Region          string // AWS region (default: us-east-1)
	PostsPrefix     string // Key prefix of post objects (default: content/posts/)
	AuthorsPrefix   string // Key prefix of author objects (default: content/authors/)
	Endpoint        string // Optional custom endpoint for S3-compatible services
	AccessKeyID     string // AWS access key ID
	SecretAccessKey string // AWS secret access key
	UsePathStyle    bool   // Use path-style addressing (MinIO)

	Parser *blogcontent.Parser // Optional; a zero Parser is used when nil
}

// Client is the subset of the S3 API the backend reads through
type Client interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Backend is an S3-compatible implementation of the blogcontent.Backend interface
type Backend struct {
	client        Client
	bucket        string
	postsPrefix   string
	authorsPrefix string
	parser        *blogcontent.Parser
}

// New creates a new S3 backend and verifies the bucket is reachable.
// Construction fails with a *BucketError when it is not.
func New(ctx context.Context, config Config) (*Backend, error) {
	config = withDefaults(config)
	if config.Bucket == "" {
		return nil, ErrBucketRequired
	}

	var awsCfg aws.Config
	var err error

	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(config.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				config.AccessKeyID,
				config.SecretAccessKey,
				"",
			)),
		)
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(config.Region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Options []func(*s3.Options)
	if config.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = config.UsePathStyle
		})
	}

	return NewWithClient(ctx, s3.NewFromConfig(awsCfg, s3Options...), config)
}

// NewWithClient creates a backend over an existing client
func NewWithClient(ctx context.Context, client Client, config Config) (*Backend, error) {
	config = withDefaults(config)
	if config.Bucket == "" {
		return nil, ErrBucketRequired
	}

	b := &Backend{
		client:        client,
		bucket:        config.Bucket,
		postsPrefix:   config.PostsPrefix,
		authorsPrefix: config.AuthorsPrefix,
		parser:        config.Parser,
	}
	if b.parser == nil {
		b.parser = &blogcontent.Parser{}
	}

	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(b.bucket)}); err != nil {
		return nil, classifyBucketError(b.bucket, err)
	}

	return b, nil
}

func withDefaults(config Config) Config {
	if config.Region == "" {
		config.Region = DefaultRegion
	}
	if config.PostsPrefix == "" {
		config.PostsPrefix = DefaultPostsPrefix
	}
	if config.AuthorsPrefix == "" {
		config.AuthorsPrefix = DefaultAuthorsPrefix
	}
	return config
}

// Bucket returns the bucket name
func (b *Backend) Bucket() string {
	return b.bucket
}

// LoadAllPosts loads every *.md object under the posts prefix
func (b *Backend) LoadAllPosts(ctx context.Context) ([]blogcontent.Post, error) {
	keys, err := b.listKeys(ctx, b.postsPrefix, postExt)
	if err != nil {
		return nil, err
	}

	authors := blogcontent.NewAuthorIndex(b.LoadAllAuthors)
	posts := make([]blogcontent.Post, 0, len(keys))
	for _, key := range keys {
		post, err := b.loadPost(ctx, key, authors)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			slog.Error("Error loading post", "bucket", b.bucket, "key", key, "err", err)
			continue
		}
		posts = append(posts, *post)
	}

	blogcontent.SortPostsByDate(posts)
	return posts, nil
}

// GetPostBySlug loads {postsPrefix}{slug}.md
func (b *Backend) GetPostBySlug(ctx context.Context, slug string) (*blogcontent.Post, error) {
	if err := blogcontent.ValidateSlug(slug); err != nil {
		return nil, blogcontent.ErrPostNotFound
	}

	key := b.postsPrefix + slug + postExt
	post, err := b.loadPost(ctx, key, blogcontent.NewAuthorIndex(b.LoadAllAuthors))
	if err != nil {
		if errors.Is(err, errObjectNotFound) {
			return nil, blogcontent.ErrPostNotFound
		}
		var parseErr *blogcontent.ParseError
		if errors.As(err, &parseErr) {
			slog.Error("Error loading post", "bucket", b.bucket, "key", key, "err", err)
			return nil, blogcontent.ErrPostNotFound
		}
		return nil, err
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

// LoadAllAuthors loads every *.json object under the authors prefix
func (b *Backend) LoadAllAuthors(ctx context.Context) ([]blogcontent.Author, error) {
	keys, err := b.listKeys(ctx, b.authorsPrefix, authorExt)
	if err != nil {
		return nil, err
	}

	authors := make([]blogcontent.Author, 0, len(keys))
	for _, key := range keys {
		author, err := b.loadAuthor(ctx, key)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			slog.Error("Error loading author", "bucket", b.bucket, "key", key, "err", err)
			continue
		}
		authors = append(authors, *author)
	}
	return authors, nil
}

// GetAuthorByID loads {authorsPrefix}{id}.json
func (b *Backend) GetAuthorByID(ctx context.Context, id string) (*blogcontent.Author, error) {
	if err := blogcontent.ValidateSlug(id); err != nil {
		return nil, blogcontent.ErrAuthorNotFound
	}

	key := b.authorsPrefix + id + authorExt
	author, err := b.loadAuthor(ctx, key)
	if err != nil {
		if errors.Is(err, errObjectNotFound) {
			return nil, blogcontent.ErrAuthorNotFound
		}
		var parseErr *blogcontent.ParseError
		if errors.As(err, &parseErr) {
			slog.Error("Error loading author", "bucket", b.bucket, "key", key, "err", err)
			return nil, blogcontent.ErrAuthorNotFound
		}
		return nil, err
	}
	return author, nil
}

func (b *Backend) loadPost(ctx context.Context, key string, authors *blogcontent.AuthorIndex) (*blogcontent.Post, error) {
	data, err := b.getObject(ctx, key)
	if err != nil {
		return nil, err
	}
	return b.parser.ParsePost(ctx, key, data, authors)
}

func (b *Backend) loadAuthor(ctx context.Context, key string) (*blogcontent.Author, error) {
	data, err := b.getObject(ctx, key)
	if err != nil {
		return nil, err
	}
	return b.parser.ParseAuthor(key, data)
}

// getObject reads a whole object. Missing and empty objects both report
// errObjectNotFound.
func (b *Backend) getObject(ctx context.Context, key string) ([]byte, error) {
	result, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, errObjectNotFound
		}
		return nil, &blogcontent.StorageError{Backend: Name, Key: key, Op: "get_object", Err: err}
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, &blogcontent.StorageError{Backend: Name, Key: key, Op: "read_object", Err: err}
	}
	if len(data) == 0 {
		return nil, errObjectNotFound
	}
	return data, nil
}

// listKeys pages through every key under prefix ending in suffix
func (b *Backend) listKeys(ctx context.Context, prefix, suffix string) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(prefix),
	})

	var keys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			slog.Error("Error listing objects", "bucket", b.bucket, "prefix", prefix, "err", err)
			return nil, &blogcontent.StorageError{Backend: Name, Key: prefix, Op: "list_objects", Err: err}
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if suffix != "" && !strings.HasSuffix(key, suffix) {
				continue
			}
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func isNoSuchKey(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
