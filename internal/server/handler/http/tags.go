package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// TagService defines the tag operations required by TagsHandler.
type TagService interface {
	Create(ctx context.Context, name string) (*models.Tag, error)
	List(ctx context.Context) ([]models.Tag, error)
	Update(ctx context.Context, id, name string) (*models.Tag, error)
	Delete(ctx context.Context, id string) error
}

// TagsHandler handles the /tags routes.
type TagsHandler struct {
	Tags TagService
	Log  *zap.Logger
}

type tagRequest struct {
	Name string `json:"name"`
}

// List handles GET /tags. Unpaginated.
func (h *TagsHandler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.Tags.List(r.Context())
	if err != nil {
		respondServiceError(w, h.Log, err)
		return
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	respondData(w, http.StatusOK, "Tags", tags)
}

// Create handles POST /tags.
func (h *TagsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Validation failed", map[string][]string{
			"body": {"Invalid JSON."},
		})
		return
	}

	tag, err := h.Tags.Create(r.Context(), req.Name)
	if err != nil {
		respondServiceError(w, h.Log, err)
		return
	}
	respondData(w, http.StatusCreated, "Tag created", tag)
}

// Update handles PUT and PATCH /tags/{id}.
func (h *TagsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Validation failed", map[string][]string{
			"body": {"Invalid JSON."},
		})
		return
	}

	tag, err := h.Tags.Update(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		respondServiceError(w, h.Log, err)
		return
	}
	respondData(w, http.StatusOK, "Tag updated", tag)
}

// Delete handles DELETE /tags/{id}.
func (h *TagsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Tags.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, h.Log, err)
		return
	}
	respondData(w, http.StatusOK, "Tag deleted", nil)
}
