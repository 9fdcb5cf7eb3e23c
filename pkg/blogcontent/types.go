package blogcontent

// AuthorResolution records how the author of a post was joined against the
// author records.
type AuthorResolution string

const (
	// AuthorResolvedByID means the declared author id matched an author record
	AuthorResolvedByID AuthorResolution = "id"
	// AuthorResolvedByName means only a name was declared and it matched an author record
	AuthorResolvedByName AuthorResolution = "name"
	// AuthorUnresolved means the partial author declared in the frontmatter was kept as is
	AuthorUnresolved AuthorResolution = "unresolved"
)

// Author represents a post author
type Author struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Picture string  `json:"picture"`
	Bio     *string `json:"bio"`
}

// OgImage is the Open Graph image of a post
type OgImage struct {
	URL string `json:"url"`
}

// PostSummary holds the post fields shown in listings
type PostSummary struct {
	Slug       string   `json:"slug"`
	Title      string   `json:"title"`
	Date       string   `json:"date"`
	Excerpt    string   `json:"excerpt"`
	Author     Author   `json:"author"`
	CoverImage string   `json:"coverImage"`
	Tags       []string `json:"tags"`
	OgImage    OgImage  `json:"ogImage"`

	// AuthorResolution is not part of the wire format.
	AuthorResolution AuthorResolution `json:"-"`
	// DateDefaulted is set when the document carried no date.
	DateDefaulted bool `json:"-"`
}

// Post is a full blog post
type Post struct {
	PostSummary
	Content    string `json:"content"`
	RawContent string `json:"rawContent"`
}

// HasTag reports whether the post carries the tag (exact match)
func (p *Post) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// PaginatedPosts is one page of posts
type PaginatedPosts struct {
	Posts      []Post `json:"posts"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	PerPage    int    `json:"per_page"`
	TotalPages int    `json:"total_pages"`
}
