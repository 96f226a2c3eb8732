package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/lib/pq"
)

// NoteFilter narrows and pages a note listing. The result set is always the
// union of notes owned by ViewerID and notes flagged shared.
type NoteFilter struct {
	// ViewerID is the requesting user's id.
	ViewerID string
	// Search matches title or content, case-insensitively.
	Search string
	// IsPinned, IsFavorite and IsShared filter on the note flags when non-nil.
	IsPinned   *bool
	IsFavorite *bool
	IsShared   *bool
	// TagID keeps only notes carrying the tag.
	TagID string
	// OrderBy holds validated ORDER BY fragments; the service layer
	// whitelists them before they reach SQL.
	OrderBy []string
	// Limit and Offset page the result.
	Limit  int
	Offset int
}

// PostgresNoteRepository implements note persistence against PostgreSQL.
type PostgresNoteRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresNoteRepository creates a new PostgresNoteRepository using the provided *sql.DB.
func NewPostgresNoteRepository(db *sql.DB) *PostgresNoteRepository {
	return &PostgresNoteRepository{DB: db}
}

// CreateNote inserts a note and its tag associations in one transaction.
func (r *PostgresNoteRepository) CreateNote(ctx context.Context, n *models.Note, tagIDs []string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO notes (id, owner_id, title, content, is_pinned, is_favorite, is_shared, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, n.ID, n.OwnerID, n.Title, n.Content, n.IsPinned, n.IsFavorite, n.IsShared, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}

	for _, tagID := range tagIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO note_tags (note_id, tag_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, n.ID, tagID)
		if err != nil {
			return fmt.Errorf("insert note tag: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetNoteByID fetches a single note with its owner email and tags.
// Returns sql.ErrNoRows when the note does not exist.
func (r *PostgresNoteRepository) GetNoteByID(ctx context.Context, id string) (*models.Note, error) {
	var n models.Note
	err := r.DB.QueryRowContext(ctx, `
		SELECT n.id, n.owner_id, u.email, n.title, n.content,
		       n.is_pinned, n.is_favorite, n.is_shared, n.created_at, n.updated_at
		  FROM notes n
		  JOIN users u ON u.id = n.owner_id
		 WHERE n.id = $1
	`, id).Scan(&n.ID, &n.OwnerID, &n.Owner, &n.Title, &n.Content,
		&n.IsPinned, &n.IsFavorite, &n.IsShared, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}

	tags, err := r.tagsForNotes(ctx, []string{n.ID})
	if err != nil {
		return nil, err
	}
	n.Tags = tags[n.ID]
	if n.Tags == nil {
		n.Tags = []models.Tag{}
	}
	return &n, nil
}

// ListNotes returns one page of notes matching the filter, plus the total
// count of matches before paging.
func (r *PostgresNoteRepository) ListNotes(ctx context.Context, f NoteFilter) ([]models.Note, int, error) {
	where := []string{"(n.owner_id = $1 OR n.is_shared = TRUE)"}
	args := []any{f.ViewerID}

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		where = append(where, fmt.Sprintf("(n.title ILIKE %s OR n.content ILIKE %s)", p, p))
	}
	if f.IsPinned != nil {
		where = append(where, "n.is_pinned = "+arg(*f.IsPinned))
	}
	if f.IsFavorite != nil {
		where = append(where, "n.is_favorite = "+arg(*f.IsFavorite))
	}
	if f.IsShared != nil {
		where = append(where, "n.is_shared = "+arg(*f.IsShared))
	}
	if f.TagID != "" {
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM note_tags nt WHERE nt.note_id = n.id AND nt.tag_id = %s)", arg(f.TagID)))
	}

	base := "FROM notes n JOIN users u ON u.id = n.owner_id WHERE " + strings.Join(where, " AND ")

	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) "+base, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count notes: %w", err)
	}

	orderBy := f.OrderBy
	if len(orderBy) == 0 {
		orderBy = []string{"n.is_pinned DESC", "n.updated_at DESC"}
	}
	query := `SELECT n.id, n.owner_id, u.email, n.title, n.content,
	       n.is_pinned, n.is_favorite, n.is_shared, n.created_at, n.updated_at ` +
		base + " ORDER BY " + strings.Join(orderBy, ", ") +
		" LIMIT " + arg(f.Limit) + " OFFSET " + arg(f.Offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ListNotes: %w", err)
	}
	defer rows.Close()

	notes := []models.Note{}
	var ids []string
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.OwnerID, &n.Owner, &n.Title, &n.Content,
			&n.IsPinned, &n.IsFavorite, &n.IsShared, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan: %w", err)
		}
		n.Tags = []models.Tag{}
		notes = append(notes, n)
		ids = append(ids, n.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ListNotes: %w", err)
	}

	if len(ids) > 0 {
		tags, err := r.tagsForNotes(ctx, ids)
		if err != nil {
			return nil, 0, err
		}
		for i := range notes {
			if t, ok := tags[notes[i].ID]; ok {
				notes[i].Tags = t
			}
		}
	}

	return notes, total, nil
}

// tagsForNotes loads the tags of the given notes in one query, keyed by note id.
func (r *PostgresNoteRepository) tagsForNotes(ctx context.Context, noteIDs []string) (map[string][]models.Tag, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT nt.note_id, t.id, t.name
		  FROM note_tags nt
		  JOIN tags t ON t.id = nt.tag_id
		 WHERE nt.note_id = ANY($1)
		 ORDER BY t.name
	`, pq.Array(noteIDs))
	if err != nil {
		return nil, fmt.Errorf("tagsForNotes: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]models.Tag)
	for rows.Next() {
		var noteID string
		var t models.Tag
		if err := rows.Scan(&noteID, &t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out[noteID] = append(out[noteID], t)
	}
	return out, rows.Err()
}

// UpdateNote persists a note's fields and, when replaceTags is set, wholesale
// replaces its tag associations, all in one transaction.
func (r *PostgresNoteRepository) UpdateNote(ctx context.Context, n *models.Note, tagIDs []string, replaceTags bool) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE notes
		   SET title = $1, content = $2,
		       is_pinned = $3, is_favorite = $4, is_shared = $5,
		       updated_at = $6
		 WHERE id = $7
	`, n.Title, n.Content, n.IsPinned, n.IsFavorite, n.IsShared, n.UpdatedAt, n.ID)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	if replaceTags {
		if _, err := tx.ExecContext(ctx, `DELETE FROM note_tags WHERE note_id = $1`, n.ID); err != nil {
			return fmt.Errorf("clear note tags: %w", err)
		}
		for _, tagID := range tagIDs {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO note_tags (note_id, tag_id) VALUES ($1, $2)
				ON CONFLICT DO NOTHING
			`, n.ID, tagID)
			if err != nil {
				return fmt.Errorf("insert note tag: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// DeleteNote permanently removes a note; tag associations and access-log rows
// go with it via cascade, the tags themselves stay. Returns sql.ErrNoRows
// when the note does not exist.
func (r *PostgresNoteRepository) DeleteNote(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("DeleteNote: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteNote: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
