package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// ListAuthors returns every author
func (h *ContentHandler) ListAuthors(w http.ResponseWriter, r *http.Request) {
	authors, err := h.service.Authors(r.Context())
	if err != nil {
		renderServiceError(w, r, "list_authors", err)
		return
	}

	render.JSON(w, r, authors)
}

// GetAuthor returns a single author
func (h *ContentHandler) GetAuthor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	author, err := h.service.GetAuthor(r.Context(), id)
	if err != nil {
		renderServiceError(w, r, "get_author", err)
		return
	}

	render.JSON(w, r, author)
}
