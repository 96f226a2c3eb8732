package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/atinyakov/NoteKeeper/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxTitleLen = 200

	// DefaultPageSize is the note-listing page size when the client asks
	// for none; MaxPageSize is the server-side ceiling regardless of the
	// requested limit.
	DefaultPageSize = 9
	MaxPageSize     = 100
)

// NoteRepository defines the persistence operations required by NotesService.
type NoteRepository interface {
	CreateNote(ctx context.Context, n *models.Note, tagIDs []string) error
	// GetNoteByID fetches a note with owner email and tags; sql.ErrNoRows when absent.
	GetNoteByID(ctx context.Context, id string) (*models.Note, error)
	// ListNotes returns one page plus the total match count.
	ListNotes(ctx context.Context, f repository.NoteFilter) ([]models.Note, int, error)
	UpdateNote(ctx context.Context, n *models.Note, tagIDs []string, replaceTags bool) error
	DeleteNote(ctx context.Context, id string) error
}

// TagLookup resolves tag id references on note writes.
type TagLookup interface {
	GetTagsByIDs(ctx context.Context, ids []string) ([]models.Tag, error)
}

// AccessRecorder appends shared-note access-log rows.
type AccessRecorder interface {
	InsertAccess(ctx context.Context, noteID, userID string) error
}

// NoteInput carries the client-supplied fields of a note create. The owner is
// never part of it; it always comes from the authenticated identity.
type NoteInput struct {
	Title      string
	Content    string
	TagIDs     []string
	IsPinned   bool
	IsFavorite bool
	IsShared   bool
}

// NoteUpdate carries a partial update; nil fields are left untouched.
// A non-nil TagIDs wholesale-replaces the tag set, an empty one clears it.
type NoteUpdate struct {
	Title      *string
	Content    *string
	TagIDs     *[]string
	IsPinned   *bool
	IsFavorite *bool
	IsShared   *bool
}

// ListQuery holds the listing parameters as parsed from the request.
type ListQuery struct {
	Search     string
	Ordering   string
	IsPinned   *bool
	IsFavorite *bool
	IsShared   *bool
	TagID      string
	Limit      int
	Offset     int
}

// NotesService implements note CRUD with the ownership/sharing policy:
// reads need owner or shared, writes need owner, and a note that is not
// visible to the requester is reported as absent.
type NotesService struct {
	repo   NoteRepository
	tags   TagLookup
	access AccessRecorder
	log    *zap.Logger
}

// NewNotesService constructs a NotesService.
func NewNotesService(repo NoteRepository, tags TagLookup, access AccessRecorder, log *zap.Logger) *NotesService {
	return &NotesService{repo: repo, tags: tags, access: access, log: log}
}

func (s *NotesService) validateTagIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := s.tags.GetTagsByIDs(ctx, ids)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(found))
	for _, t := range found {
		known[t.ID] = true
	}
	fe := fieldErrors{}
	for _, id := range ids {
		if !known[id] {
			fe.add("tag_ids", fmt.Sprintf("Invalid tag id %q - object does not exist.", id))
		}
	}
	return fe.err()
}

// Create stores a new note owned by ownerID.
func (s *NotesService) Create(ctx context.Context, ownerID string, in NoteInput) (*models.Note, error) {
	fe := fieldErrors{}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		fe.add("title", "This field is required.")
	} else if len(title) > maxTitleLen {
		fe.add("title", "Ensure this field has no more than 200 characters.")
	}
	if err := fe.err(); err != nil {
		return nil, err
	}
	if err := s.validateTagIDs(ctx, in.TagIDs); err != nil {
		return nil, err
	}

	now := time.Now()
	note := &models.Note{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		Title:      title,
		Content:    in.Content,
		IsPinned:   in.IsPinned,
		IsFavorite: in.IsFavorite,
		IsShared:   in.IsShared,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.CreateNote(ctx, note, in.TagIDs); err != nil {
		return nil, err
	}
	return s.repo.GetNoteByID(ctx, note.ID)
}

// visible fetches a note mapping absence, and invisibility for the viewer, to
// ErrNotFound.
func (s *NotesService) visible(ctx context.Context, viewerID, id string) (*models.Note, error) {
	note, err := s.repo.GetNoteByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if note.OwnerID != viewerID && !note.IsShared {
		return nil, ErrNotFound
	}
	return note, nil
}

// Get returns a note readable by viewerID. A non-owner read of a shared note
// is appended to the access log; a failed append never fails the read.
func (s *NotesService) Get(ctx context.Context, viewerID, id string) (*models.Note, error) {
	note, err := s.visible(ctx, viewerID, id)
	if err != nil {
		return nil, err
	}
	if note.OwnerID != viewerID {
		if err := s.access.InsertAccess(ctx, note.ID, viewerID); err != nil {
			s.log.Warn("failed to record shared note access",
				zap.String("note_id", note.ID), zap.Error(err))
		}
	}
	return note, nil
}

// orderings maps client ordering keys to SQL fragments. Unknown keys are
// ignored, matching the original API behavior.
var orderings = map[string]string{
	"created_at":  "n.created_at ASC",
	"-created_at": "n.created_at DESC",
	"updated_at":  "n.updated_at ASC",
	"-updated_at": "n.updated_at DESC",
	"title":       "n.title ASC",
	"-title":      "n.title DESC",
}

func parseOrdering(raw string) []string {
	var out []string
	for _, key := range strings.Split(raw, ",") {
		if clause, ok := orderings[strings.TrimSpace(key)]; ok {
			out = append(out, clause)
		}
	}
	return out
}

// List returns one page of the union of viewer-owned and shared notes, plus
// the total match count.
func (s *NotesService) List(ctx context.Context, viewerID string, q ListQuery) ([]models.Note, int, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	return s.repo.ListNotes(ctx, repository.NoteFilter{
		ViewerID:   viewerID,
		Search:     q.Search,
		IsPinned:   q.IsPinned,
		IsFavorite: q.IsFavorite,
		IsShared:   q.IsShared,
		TagID:      q.TagID,
		OrderBy:    parseOrdering(q.Ordering),
		Limit:      limit,
		Offset:     offset,
	})
}

// writable fetches a note enforcing the write rule: only the owner may
// mutate. A shared note the viewer does not own yields ErrForbidden; a note
// the viewer cannot even see yields ErrNotFound.
func (s *NotesService) writable(ctx context.Context, viewerID, id string) (*models.Note, error) {
	note, err := s.visible(ctx, viewerID, id)
	if err != nil {
		return nil, err
	}
	if note.OwnerID != viewerID {
		return nil, ErrForbidden
	}
	return note, nil
}

// Update applies a partial update to a note owned by viewerID. The updated
// timestamp is recomputed regardless of which fields changed.
func (s *NotesService) Update(ctx context.Context, viewerID, id string, upd NoteUpdate) (*models.Note, error) {
	note, err := s.writable(ctx, viewerID, id)
	if err != nil {
		return nil, err
	}

	fe := fieldErrors{}
	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			fe.add("title", "This field may not be blank.")
		} else if len(title) > maxTitleLen {
			fe.add("title", "Ensure this field has no more than 200 characters.")
		} else {
			note.Title = title
		}
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	if upd.Content != nil {
		note.Content = *upd.Content
	}
	if upd.IsPinned != nil {
		note.IsPinned = *upd.IsPinned
	}
	if upd.IsFavorite != nil {
		note.IsFavorite = *upd.IsFavorite
	}
	if upd.IsShared != nil {
		note.IsShared = *upd.IsShared
	}

	var tagIDs []string
	replaceTags := upd.TagIDs != nil
	if replaceTags {
		tagIDs = *upd.TagIDs
		if err := s.validateTagIDs(ctx, tagIDs); err != nil {
			return nil, err
		}
	}

	note.UpdatedAt = time.Now()
	if err := s.repo.UpdateNote(ctx, note, tagIDs, replaceTags); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.repo.GetNoteByID(ctx, id)
}

// Delete permanently removes a note owned by viewerID.
func (s *NotesService) Delete(ctx context.Context, viewerID, id string) error {
	if _, err := s.writable(ctx, viewerID, id); err != nil {
		return err
	}
	if err := s.repo.DeleteNote(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
