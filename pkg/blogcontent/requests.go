package blogcontent

const (
	// DefaultPage is used when a request leaves Page unset
	DefaultPage = 1
	// DefaultPerPage is used when a request leaves PerPage unset
	DefaultPerPage = 10
)

// ListPostsRequest contains parameters for listing posts
type ListPostsRequest struct {
	Page    int
	PerPage int
	// Tag restricts the listing to posts carrying it when not empty
	Tag string
}

func (r ListPostsRequest) withDefaults() ListPostsRequest {
	if r.Page == 0 {
		r.Page = DefaultPage
	}
	if r.PerPage == 0 {
		r.PerPage = DefaultPerPage
	}
	return r
}
