package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tendant/simple-blog/pkg/blogcontent"
	"github.com/tendant/simple-blog/pkg/blogcontent/markdown"
	fsstorage "github.com/tendant/simple-blog/pkg/blogcontent/storage/fs"
	s3storage "github.com/tendant/simple-blog/pkg/blogcontent/storage/s3"
)

const (
	StorageTypeLocal = "local"
	StorageTypeS3    = "s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Environment: "development",
		LogLevel:    "info",
		StorageType: StorageTypeLocal,
		ContentDir:  "content",
		S3: S3Config{
			Region:        s3storage.DefaultRegion,
			PostsPrefix:   s3storage.DefaultPostsPrefix,
			AuthorsPrefix: s3storage.DefaultAuthorsPrefix,
		},
		MissingDate: blogcontent.MissingDateNow,
	}
}

// ServerConfig represents configuration for the blog content service
type ServerConfig struct {
	Environment string // development, production, testing
	LogLevel    string // debug, info, warn, error

	// Storage configuration
	StorageType string // "local" or "s3"
	ContentDir  string // Root of the local content tree, also used as the S3 fallback
	S3          S3Config

	// Parsing options
	RenderMarkdown bool
	MissingDate    blogcontent.MissingDatePolicy
}

// S3Config represents configuration for the S3 backend
type S3Config struct {
	Bucket          string
	Region          string
	PostsPrefix     string
	AuthorsPrefix   string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// WithStorageType selects the storage backend
func WithStorageType(storageType string) Option {
	return func(c *ServerConfig) error {
		c.StorageType = strings.ToLower(storageType)
		return nil
	}
}

// WithContentDir sets the local content directory
func WithContentDir(dir string) Option {
	return func(c *ServerConfig) error {
		c.ContentDir = dir
		return nil
	}
}

// WithS3 sets the S3 backend configuration. Empty prefixes and region keep their defaults.
func WithS3(s3 S3Config) Option {
	return func(c *ServerConfig) error {
		if s3.Region == "" {
			s3.Region = c.S3.Region
		}
		if s3.PostsPrefix == "" {
			s3.PostsPrefix = c.S3.PostsPrefix
		}
		if s3.AuthorsPrefix == "" {
			s3.AuthorsPrefix = c.S3.AuthorsPrefix
		}
		c.S3 = s3
		return nil
	}
}

// WithRenderMarkdown toggles markdown to HTML rendering of post content
func WithRenderMarkdown(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.RenderMarkdown = enabled
		return nil
	}
}

// WithMissingDate sets how undated posts are stamped
func WithMissingDate(policy blogcontent.MissingDatePolicy) Option {
	return func(c *ServerConfig) error {
		c.MissingDate = policy
		return nil
	}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.StorageType != StorageTypeLocal && c.StorageType != StorageTypeS3 {
		return fmt.Errorf("storage_type must be '%s' or '%s', got '%s'", StorageTypeLocal, StorageTypeS3, c.StorageType)
	}

	// The content directory is needed even for S3, as the fallback
	if c.ContentDir == "" {
		return errors.New("content_dir is required")
	}

	if !c.MissingDate.IsValid() {
		return fmt.Errorf("missing_date must be '%s' or '%s', got '%s'", blogcontent.MissingDateNow, blogcontent.MissingDateEpoch, c.MissingDate)
	}

	return nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info
func (c *ServerConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Parser builds the document parser shared by every backend
func (c *ServerConfig) Parser() *blogcontent.Parser {
	parser := &blogcontent.Parser{MissingDate: c.MissingDate}
	if c.RenderMarkdown {
		parser.Renderer = markdown.New()
	}
	return parser
}

// BuildBackend creates the configured backend. When the S3 backend cannot be
// constructed the failure is logged and a local backend over ContentDir is
// returned instead; an error is only returned when that fails too.
func (c *ServerConfig) BuildBackend(ctx context.Context) (blogcontent.Backend, string, error) {
	parser := c.Parser()

	if c.StorageType == StorageTypeS3 {
		slog.Info("Using S3 content backend", "bucket", c.S3.Bucket, "region", c.S3.Region)
		backend, err := s3storage.New(ctx, s3storage.Config{
			Bucket:          c.S3.Bucket,
			Region:          c.S3.Region,
			PostsPrefix:     c.S3.PostsPrefix,
			AuthorsPrefix:   c.S3.AuthorsPrefix,
			Endpoint:        c.S3.Endpoint,
			AccessKeyID:     c.S3.AccessKeyID,
			SecretAccessKey: c.S3.SecretAccessKey,
			UsePathStyle:    c.S3.UsePathStyle,
			Parser:          parser,
		})
		if err == nil {
			return backend, s3storage.Name, nil
		}
		slog.Error("Failed to initialize S3 content backend", "bucket", c.S3.Bucket, "err", err)
		slog.Warn("Falling back to local file content backend", "content_dir", c.ContentDir)
	} else {
		slog.Info("Using local file content backend", "content_dir", c.ContentDir)
	}

	backend, err := fsstorage.New(fsstorage.Config{ContentDir: c.ContentDir, Parser: parser})
	if err != nil {
		return nil, "", fmt.Errorf("failed to build local content backend: %w", err)
	}
	return backend, fsstorage.Name, nil
}

// BuildService creates the content service over the configured backend
func (c *ServerConfig) BuildService(ctx context.Context) (*blogcontent.Service, error) {
	backend, name, err := c.BuildBackend(ctx)
	if err != nil {
		return nil, err
	}
	return blogcontent.New(blogcontent.WithBackend(name, backend))
}
