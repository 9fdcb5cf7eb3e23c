package config

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/simple-blog/pkg/blogcontent"
)

// envConfig maps environment variables onto ServerConfig. Variables that
// are unset leave the current value untouched.
type envConfig struct {
	Environment     string `env:"ENVIRONMENT" env-description:"Runtime environment (development, production)"`
	LogLevel        string `env:"LOG_LEVEL" env-description:"debug, info, warn or error"`
	StorageType     string `env:"STORAGE_TYPE" env-description:"Content storage: local or s3"`
	ContentDir      string `env:"CONTENT_DIR" env-description:"Local content directory"`
	Bucket          string `env:"S3_BUCKET_NAME" env-description:"S3 bucket holding the content"`
	PostsPrefix     string `env:"S3_POSTS_PREFIX" env-description:"Key prefix of post objects"`
	AuthorsPrefix   string `env:"S3_AUTHORS_PREFIX" env-description:"Key prefix of author objects"`
	Region          string `env:"AWS_REGION" env-description:"AWS region"`
	Endpoint        string `env:"S3_ENDPOINT" env-description:"Custom endpoint for S3-compatible services"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID" env-description:"AWS access key ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" env-description:"AWS secret access key"`
	UsePathStyle    bool   `env:"S3_USE_PATH_STYLE" env-description:"Use path-style S3 addressing"`
	RenderMarkdown  bool   `env:"RENDER_MARKDOWN" env-description:"Render post content to HTML"`
	MissingDate     string `env:"MISSING_DATE" env-description:"Date of undated posts: now or epoch"`
}

// WithEnv applies environment variable overrides.
//
// Storage:
//
//	STORAGE_TYPE      - "local" (default) or "s3"
//	CONTENT_DIR       - local content directory (default: "content")
//	S3_BUCKET_NAME    - bucket name, required for s3
//	S3_POSTS_PREFIX   - default "content/posts/"
//	S3_AUTHORS_PREFIX - default "content/authors/"
//	AWS_REGION, S3_ENDPOINT, AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY, S3_USE_PATH_STYLE
//
// Content:
//
//	RENDER_MARKDOWN - render post content to HTML (default: false)
//	MISSING_DATE    - "now" (default) or "epoch"
func WithEnv() Option {
	return func(c *ServerConfig) error {
		env := envConfig{
			Environment:     c.Environment,
			LogLevel:        c.LogLevel,
			StorageType:     c.StorageType,
			ContentDir:      c.ContentDir,
			Bucket:          c.S3.Bucket,
			PostsPrefix:     c.S3.PostsPrefix,
			AuthorsPrefix:   c.S3.AuthorsPrefix,
			Region:          c.S3.Region,
			Endpoint:        c.S3.Endpoint,
			AccessKeyID:     c.S3.AccessKeyID,
			SecretAccessKey: c.S3.SecretAccessKey,
			UsePathStyle:    c.S3.UsePathStyle,
			RenderMarkdown:  c.RenderMarkdown,
			MissingDate:     string(c.MissingDate),
		}

		if err := cleanenv.ReadEnv(&env); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}

		c.Environment = env.Environment
		c.LogLevel = env.LogLevel
		c.StorageType = strings.ToLower(env.StorageType)
		c.ContentDir = env.ContentDir
		c.S3 = S3Config{
			Bucket:          env.Bucket,
			Region:          env.Region,
			PostsPrefix:     env.PostsPrefix,
			AuthorsPrefix:   env.AuthorsPrefix,
			Endpoint:        env.Endpoint,
			AccessKeyID:     env.AccessKeyID,
			SecretAccessKey: env.SecretAccessKey,
			UsePathStyle:    env.UsePathStyle,
		}
		c.RenderMarkdown = env.RenderMarkdown
		c.MissingDate = blogcontent.MissingDatePolicy(strings.ToLower(env.MissingDate))
		return nil
	}
}

// EnvUsage describes the environment variables read by WithEnv
func EnvUsage() string {
	text, err := cleanenv.GetDescription(&envConfig{}, nil)
	if err != nil {
		return ""
	}
	return text
}
