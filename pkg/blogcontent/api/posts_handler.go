package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-blog/pkg/blogcontent"
)

const maxPerPage = 100

// ListPostsQuery holds the query parameters of GET /posts
type ListPostsQuery struct {
	Page    int    `validate:"min=1"`
	PerPage int    `validate:"min=1,max=100"`
	Tag     string `validate:"omitempty,max=200"`
}

func parseListPostsQuery(r *http.Request) (ListPostsQuery, error) {
	q := ListPostsQuery{
		Page:    blogcontent.DefaultPage,
		PerPage: blogcontent.DefaultPerPage,
		Tag:     r.URL.Query().Get("tag"),
	}

	var err error
	if v := r.URL.Query().Get("page"); v != "" {
		if q.Page, err = strconv.Atoi(v); err != nil {
			return q, err
		}
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		if q.PerPage, err = strconv.Atoi(v); err != nil {
			return q, err
		}
	}
	return q, nil
}

// ListPosts returns one page of posts, optionally filtered by tag
func (h *ContentHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	q, err := parseListPostsQuery(r)
	if err != nil {
		renderError(w, r, http.StatusBadRequest, "page and per_page must be integers")
		return
	}
	if err := h.validate.Struct(q); err != nil {
		renderError(w, r, http.StatusBadRequest, "page must be at least 1 and per_page between 1 and "+strconv.Itoa(maxPerPage))
		return
	}

	result, err := h.service.ListPosts(r.Context(), blogcontent.ListPostsRequest{
		Page:    q.Page,
		PerPage: q.PerPage,
		Tag:     q.Tag,
	})
	if err != nil {
		renderServiceError(w, r, "list_posts", err)
		return
	}

	render.JSON(w, r, result)
}

// GetPost returns a single post
func (h *ContentHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	post, err := h.service.GetPost(r.Context(), slug)
	if err != nil {
		renderServiceError(w, r, "get_post", err)
		return
	}

	render.JSON(w, r, post)
}

// GetPostsByTag returns every post carrying a tag; unknown tags yield an empty list
func (h *ContentHandler) GetPostsByTag(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")

	posts, err := h.service.PostsByTag(r.Context(), tag)
	if err != nil {
		renderServiceError(w, r, "posts_by_tag", err)
		return
	}

	render.JSON(w, r, posts)
}

// ListTags returns the distinct tags of all posts
func (h *ContentHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.service.Tags(r.Context())
	if err != nil {
		renderServiceError(w, r, "list_tags", err)
		return
	}

	render.JSON(w, r, tags)
}
