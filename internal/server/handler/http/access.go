package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/NoteKeeper/internal/middleware"
	"github.com/atinyakov/NoteKeeper/internal/models"
	"go.uber.org/zap"
)

// AccessLogService defines the access-log operations required by AccessHandler.
type AccessLogService interface {
	List(ctx context.Context, requesterID string) ([]models.SharedNoteAccess, error)
}

// AccessHandler handles the read-only /shared-access listing, available to
// administrators only.
type AccessHandler struct {
	Access AccessLogService
	Log    *zap.Logger
}

// List handles GET /shared-access.
func (h *AccessHandler) List(w http.ResponseWriter, r *http.Request) {
	requesterID := middleware.GetUserIDFromContext(r.Context())
	entries, err := h.Access.List(r.Context(), requesterID)
	if err != nil {
		respondServiceError(w, h.Log, err)
		return
	}
	if entries == nil {
		entries = []models.SharedNoteAccess{}
	}
	respondData(w, http.StatusOK, "Shared note access", entries)
}
