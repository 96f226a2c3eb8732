package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/google/uuid"
)

// PostgresAccessRepository implements the shared-note access log against PostgreSQL.
type PostgresAccessRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAccessRepository creates a new PostgresAccessRepository with the given database connection.
func NewPostgresAccessRepository(db *sql.DB) *PostgresAccessRepository {
	return &PostgresAccessRepository{DB: db}
}

// InsertAccess appends a row recording that userID read the shared note.
func (r *PostgresAccessRepository) InsertAccess(ctx context.Context, noteID, userID string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO shared_note_access (id, note_id, accessed_by, accessed_at)
		VALUES ($1, $2, $3, $4)
	`, uuid.NewString(), noteID, userID, time.Now())
	if err != nil {
		return fmt.Errorf("InsertAccess: %w", err)
	}
	return nil
}

// ListAccess returns all access rows, newest first, with the note title and
// the accessing user's email. The email is empty when the account was deleted.
func (r *PostgresAccessRepository) ListAccess(ctx context.Context) ([]models.SharedNoteAccess, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT a.id, n.title, COALESCE(u.email, ''), a.accessed_at
		  FROM shared_note_access a
		  JOIN notes n ON n.id = a.note_id
		  LEFT JOIN users u ON u.id = a.accessed_by
		 ORDER BY a.accessed_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("ListAccess: %w", err)
	}
	defer rows.Close()

	var entries []models.SharedNoteAccess
	for rows.Next() {
		var e models.SharedNoteAccess
		if err := rows.Scan(&e.ID, &e.Note, &e.AccessedBy, &e.AccessedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
