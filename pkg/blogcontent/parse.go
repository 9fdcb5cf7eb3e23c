package blogcontent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// MissingDatePolicy decides the date of a post whose frontmatter has none
type MissingDatePolicy string

const (
	// MissingDateNow stamps the post with the load time
	MissingDateNow MissingDatePolicy = "now"
	// MissingDateEpoch stamps the post with EpochDate
	MissingDateEpoch MissingDatePolicy = "epoch"
)

// EpochDate is the date given to undated posts under MissingDateEpoch.
// It sorts after every real date when listing newest first.
const EpochDate = "1970-01-01T00:00:00"

const isoMicroLayout = "2006-01-02T15:04:05.000000"

// IsValid reports whether the policy is known
func (p MissingDatePolicy) IsValid() bool {
	return p == MissingDateNow || p == MissingDateEpoch
}

// Parser turns raw post and author resources into entities
type Parser struct {
	// Renderer, when set, produces Post.Content from the markdown body.
	// Without it Content equals RawContent.
	Renderer Renderer

	// MissingDate defaults to MissingDateNow
	MissingDate MissingDatePolicy

	// Now defaults to time.Now
	Now func() time.Time
}

type frontmatterAuthor struct {
	ID      string `yaml:"id" toml:"id"`
	Name    string `yaml:"name" toml:"name"`
	Picture string `yaml:"picture" toml:"picture"`
}

type frontmatterOgImage struct {
	URL string `yaml:"url" toml:"url"`
}

type frontmatter struct {
	Title      string             `yaml:"title" toml:"title"`
	Date       any                `yaml:"date" toml:"date"`
	Excerpt    string             `yaml:"excerpt" toml:"excerpt"`
	CoverImage string             `yaml:"coverImage" toml:"coverImage"`
	Tags       any                `yaml:"tags" toml:"tags"`
	Author     *frontmatterAuthor `yaml:"author" toml:"author"`
	OgImage    frontmatterOgImage `yaml:"ogImage" toml:"ogImage"`
}

type authorRecord struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Picture string  `json:"picture"`
	Bio     *string `json:"bio"`
}

// SlugFromKey derives a slug or author id from a file name or object key:
// the base name without its extension.
func SlugFromKey(key string) string {
	base := path.Base(strings.ReplaceAll(key, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}

// ValidateSlug rejects slugs that would escape the content directory or prefix
func ValidateSlug(slug string) error {
	if slug == "" || slug == "." || slug == ".." ||
		strings.ContainsAny(slug, "/\\\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}
	return nil
}

// ParsePost parses a markdown document with optional frontmatter.
// The slug always comes from key. authors may be nil, in which case the
// declared author is kept unresolved.
func (p *Parser) ParsePost(ctx context.Context, key string, data []byte, authors *AuthorIndex) (*Post, error) {
	if !utf8.Valid(data) {
		return nil, &ParseError{Key: key, Err: errors.New("document is not valid UTF-8")}
	}

	format, rawMeta, body, err := splitFrontmatter(string(data))
	if err != nil {
		return nil, &ParseError{Key: key, Err: err}
	}

	var meta frontmatter
	switch format {
	case "yaml":
		if err := yaml.Unmarshal([]byte(rawMeta), &meta); err != nil {
			return nil, &ParseError{Key: key, Err: fmt.Errorf("invalid yaml frontmatter: %w", err)}
		}
	case "toml":
		if _, err := toml.Decode(rawMeta, &meta); err != nil {
			return nil, &ParseError{Key: key, Err: fmt.Errorf("invalid toml frontmatter: %w", err)}
		}
	}

	tags, err := toStrings(meta.Tags)
	if err != nil {
		return nil, &ParseError{Key: key, Err: fmt.Errorf("invalid tags: %w", err)}
	}

	content := body
	if p.Renderer != nil {
		content, err = p.Renderer.Render(body)
		if err != nil {
			return nil, &ParseError{Key: key, Err: fmt.Errorf("failed to render markdown: %w", err)}
		}
	}

	post := &Post{
		PostSummary: PostSummary{
			Slug:       SlugFromKey(key),
			Title:      meta.Title,
			Excerpt:    meta.Excerpt,
			CoverImage: meta.CoverImage,
			Tags:       tags,
			OgImage:    OgImage{URL: meta.OgImage.URL},
		},
		Content:    content,
		RawContent: body,
	}

	if date, ok := formatDate(meta.Date); ok {
		post.Date = date
	} else {
		post.Date = p.defaultDate()
		post.DateDefaulted = true
	}

	var declared frontmatterAuthor
	if meta.Author != nil {
		declared = *meta.Author
	}
	post.Author, post.AuthorResolution = authors.Resolve(ctx, Author{
		ID:      declared.ID,
		Name:    declared.Name,
		Picture: declared.Picture,
	})

	return post, nil
}

// ParseAuthor parses a JSON author record. The record id falls back to the
// key stem when the document has none.
func (p *Parser) ParseAuthor(key string, data []byte) (*Author, error) {
	var rec authorRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, &ParseError{Key: key, Err: fmt.Errorf("invalid author json: %w", err)}
	}
	if rec.ID == "" {
		rec.ID = SlugFromKey(key)
	}
	return &Author{
		ID:      rec.ID,
		Name:    rec.Name,
		Picture: rec.Picture,
		Bio:     rec.Bio,
	}, nil
}

func (p *Parser) defaultDate() string {
	if p.MissingDate == MissingDateEpoch {
		return EpochDate
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	return now().Format(isoMicroLayout)
}

// splitFrontmatter separates a leading `---` (yaml) or `+++` (toml) block
// from the body. Documents without a leading delimiter have no frontmatter.
func splitFrontmatter(text string) (format, meta, body string, err error) {
	text = strings.TrimPrefix(text, "\ufeff")

	first, rest, _ := strings.Cut(text, "\n")
	first = strings.TrimRight(first, " \t\r")

	var delim rune
	switch {
	case isDelimiter(first, '-'):
		format, delim = "yaml", '-'
	case isDelimiter(first, '+'):
		format, delim = "toml", '+'
	default:
		return "", "", strings.TrimSpace(text), nil
	}

	var metaLines []string
	for rest != "" {
		var line string
		line, rest, _ = strings.Cut(rest, "\n")
		line = strings.TrimRight(line, "\r")
		if isDelimiter(strings.TrimRight(line, " \t"), delim) {
			return format, strings.Join(metaLines, "\n"), strings.TrimSpace(rest), nil
		}
		metaLines = append(metaLines, line)
	}
	return "", "", "", errors.New("unterminated frontmatter block")
}

func isDelimiter(line string, c rune) bool {
	if len(line) < 3 {
		return false
	}
	for _, r := range line {
		if r != c {
			return false
		}
	}
	return true
}

func formatDate(v any) (string, bool) {
	switch d := v.(type) {
	case nil:
		return "", false
	case string:
		return d, true
	case time.Time:
		if d.Hour() == 0 && d.Minute() == 0 && d.Second() == 0 && d.Nanosecond() == 0 {
			return d.Format("2006-01-02"), true
		}
		return d.Format(time.RFC3339Nano), true
	default:
		return fmt.Sprint(d), true
	}
}

func toStrings(v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return []string{}, nil
	case string:
		return []string{t}, nil
	case []string:
		return t, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			switch s := item.(type) {
			case string:
				out = append(out, s)
			case int, int64, float64, bool:
				out = append(out, fmt.Sprint(s))
			case time.Time:
				date, _ := formatDate(s)
				out = append(out, date)
			default:
				return nil, fmt.Errorf("unsupported tag value %v", item)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported tags value of type %T", v)
	}
}

// AuthorIndex joins declared post authors against the author records.
// Records are loaded at most once, on first use.
type AuthorIndex struct {
	load    func(ctx context.Context) ([]Author, error)
	authors []Author
	loaded  bool
}

// NewAuthorIndex creates an index backed by load
func NewAuthorIndex(load func(ctx context.Context) ([]Author, error)) *AuthorIndex {
	return &AuthorIndex{load: load}
}

// Resolve returns the full author record matching declared, by id when one is
// declared and by name otherwise. Without a match the declared record is
// returned unchanged.
func (idx *AuthorIndex) Resolve(ctx context.Context, declared Author) (Author, AuthorResolution) {
	if idx == nil || (declared.ID == "" && declared.Name == "") {
		return declared, AuthorUnresolved
	}

	authors := idx.all(ctx)
	if declared.ID != "" {
		for _, a := range authors {
			if a.ID == declared.ID {
				return a, AuthorResolvedByID
			}
		}
		return declared, AuthorUnresolved
	}

	for _, a := range authors {
		if a.Name == declared.Name {
			return a, AuthorResolvedByName
		}
	}
	return declared, AuthorUnresolved
}

func (idx *AuthorIndex) all(ctx context.Context) []Author {
	if idx.loaded {
		return idx.authors
	}
	idx.loaded = true
	authors, err := idx.load(ctx)
	if err != nil {
		slog.Warn("Failed to load authors for post author lookup", "err", err)
		return nil
	}
	idx.authors = authors
	return authors
}
