package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/tendant/simple-blog/pkg/blogcontent"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ContentHandler serves the read-only blog content API
type ContentHandler struct {
	service  *blogcontent.Service
	validate *validator.Validate
}

// NewContentHandler creates a new content handler
func NewContentHandler(service *blogcontent.Service) *ContentHandler {
	return &ContentHandler{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Routes returns the router for the content API, meant to be mounted at /api
func (h *ContentHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/posts", h.ListPosts)
	r.Get("/posts/tag/{tag}", h.GetPostsByTag)
	r.Get("/posts/{slug}", h.GetPost)
	r.Get("/tags", h.ListTags)

	r.Get("/authors", h.ListAuthors)
	r.Get("/authors/{id}", h.GetAuthor)

	return r
}

// Health reports the service is up
func Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, true)
}

func renderError(w http.ResponseWriter, r *http.Request, status int, detail string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Detail: detail})
}

// renderServiceError maps service errors onto HTTP responses
func renderServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, blogcontent.ErrPostNotFound):
		renderError(w, r, http.StatusNotFound, "Post not found")
	case errors.Is(err, blogcontent.ErrAuthorNotFound):
		renderError(w, r, http.StatusNotFound, "Author not found")
	case errors.Is(err, blogcontent.ErrInvalidPagination):
		renderError(w, r, http.StatusBadRequest, err.Error())
	default:
		slog.Error("Request failed", "op", op, "path", r.URL.Path, "err", err)
		renderError(w, r, http.StatusInternalServerError, "Internal server error")
	}
}
