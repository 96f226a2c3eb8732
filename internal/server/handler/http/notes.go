package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/atinyakov/NoteKeeper/internal/middleware"
	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/atinyakov/NoteKeeper/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// NoteService defines the note operations required by NotesHandler.
type NoteService interface {
	Create(ctx context.Context, ownerID string, in service.NoteInput) (*models.Note, error)
	Get(ctx context.Context, viewerID, id string) (*models.Note, error)
	List(ctx context.Context, viewerID string, q service.ListQuery) ([]models.Note, int, error)
	Update(ctx context.Context, viewerID, id string, upd service.NoteUpdate) (*models.Note, error)
	Delete(ctx context.Context, viewerID, id string) error
}

// NotesHandler handles the /notes routes.
type NotesHandler struct {
	Notes NoteService
	Log   *zap.Logger
}

// noteCreateRequest represents the JSON payload for creating a note. Any
// owner value a client might send is simply not part of the shape.
type noteCreateRequest struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	TagIDs     []string `json:"tag_ids"`
	IsPinned   bool     `json:"is_pinned"`
	IsFavorite bool     `json:"is_favorite"`
	IsShared   bool     `json:"is_shared"`
}

// noteUpdateRequest represents a partial note update; absent fields stay nil.
type noteUpdateRequest struct {
	Title      *string   `json:"title"`
	Content    *string   `json:"content"`
	TagIDs     *[]string `json:"tag_ids"`
	IsPinned   *bool     `json:"is_pinned"`
	IsFavorite *bool     `json:"is_favorite"`
	IsShared   *bool     `json:"is_shared"`
}

// noteListData is the paginated payload of a listing response.
type noteListData struct {
	Count   int           `json:"count"`
	Limit   int           `json:"limit"`
	Offset  int           `json:"offset"`
	Results []models.Note `json:"results"`
}

func parseBoolParam(r *http.Request, name string) *bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

func parseIntParam(r *http.Request, name string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return v
}

// List handles GET /notes with search, ordering, flag/tag filters and
// limit/offset pagination.
func (h *NotesHandler) List(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserIDFromContext(r.Context())

	q := service.ListQuery{
		Search:     r.URL.Query().Get("search"),
		Ordering:   r.URL.Query().Get("ordering"),
		IsPinned:   parseBoolParam(r, "is_pinned"),
		IsFavorite: parseBoolParam(r, "is_favorite"),
		IsShared:   parseBoolParam(r, "is_shared"),
		TagID:      r.URL.Query().Get("tags"),
		Limit:      parseIntParam(r, "limit"),
		Offset:     parseIntParam(r, "offset"),
	}

	notes, total, err := h.Notes.List(r.Context(), viewerID, q)
	if err != nil {
		respondServiceError(w, h.Log, err)
		return
	}

	limit := q.Limit
	if limit <= 0 {
		limit = service.DefaultPageSize
	}
	if limit > service.MaxPageSize {
		limit = service.MaxPageSize
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	respondData(w, http.StatusOK, "Notes", noteListData{
		Count:   total,
		Limit:   limit,
		Offset:  offset,
		Results: notes,
	})
}

// Create handles POST /notes.
func (h *NotesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req noteCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Validation failed", map[string][]string{
			"body": {"Invalid JSON."},
		})
		return
	}

	ownerID := middleware.GetUserIDFromContext(r.Context())
	note, err := h.Notes.Create(r.Context(), ownerID, service.NoteInput{
		Title:      req.Title,
		Content:    req.Content,
		TagIDs:     req.TagIDs,
		IsPinned:   req.IsPinned,
		IsFavorite: req.IsFavorite,
		IsShared:   req.IsShared,
	})
	if err != nil {
		respondServiceError(w, h.Log, err)
		return
	}

	respondData(w, http.StatusCreated, "Note created", note)
}

// Get handles GET /notes/{id}.
func (h *NotesHandler) Get(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserIDFromContext(r.Context())
	note, err := h.Notes.Get(r.Context(), viewerID, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, h.Log, err)
		return
	}
	respondData(w, http.StatusOK, "Note", note)
}

// Update handles PUT and PATCH /notes/{id}. Both apply partial updates.
func (h *NotesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req noteUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Validation failed", map[string][]string{
			"body": {"Invalid JSON."},
		})
		return
	}

	viewerID := middleware.GetUserIDFromContext(r.Context())
	note, err := h.Notes.Update(r.Context(), viewerID, chi.URLParam(r, "id"), service.NoteUpdate{
		Title:      req.Title,
		Content:    req.Content,
		TagIDs:     req.TagIDs,
		IsPinned:   req.IsPinned,
		IsFavorite: req.IsFavorite,
		IsShared:   req.IsShared,
	})
	if err != nil {
		respondServiceError(w, h.Log, err)
		return
	}

	respondData(w, http.StatusOK, "Note updated", note)
}

// Delete handles DELETE /notes/{id}.
func (h *NotesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserIDFromContext(r.Context())
	if err := h.Notes.Delete(r.Context(), viewerID, chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, h.Log, err)
		return
	}
	respondData(w, http.StatusOK, "Note deleted", nil)
}
