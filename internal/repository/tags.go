package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/lib/pq"
)

// PostgresTagRepository implements tag persistence against PostgreSQL.
type PostgresTagRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresTagRepository creates a new PostgresTagRepository with the given database connection.
func NewPostgresTagRepository(db *sql.DB) *PostgresTagRepository {
	return &PostgresTagRepository{DB: db}
}

// CreateTag inserts a new tag. Returns ErrDuplicateTag when the name is taken.
func (r *PostgresTagRepository) CreateTag(ctx context.Context, t *models.Tag) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO tags (id, name) VALUES ($1, $2)
	`, t.ID, t.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateTag
		}
		return fmt.Errorf("CreateTag: %w", err)
	}
	return nil
}

// ListTags returns all tags ordered by name.
func (r *PostgresTagRepository) ListTags(ctx context.Context) ([]models.Tag, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, name FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("ListTags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// GetTagByID fetches a single tag. Returns sql.ErrNoRows when absent.
func (r *PostgresTagRepository) GetTagByID(ctx context.Context, id string) (*models.Tag, error) {
	var t models.Tag
	err := r.DB.QueryRowContext(ctx, `SELECT id, name FROM tags WHERE id = $1`, id).
		Scan(&t.ID, &t.Name)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTagsByIDs fetches the tags for the given ids. Ids without a matching tag
// are simply absent from the result; callers compare lengths to detect them.
func (r *PostgresTagRepository) GetTagsByIDs(ctx context.Context, ids []string) ([]models.Tag, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name FROM tags WHERE id = ANY($1) ORDER BY name
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("GetTagsByIDs: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// UpdateTag renames a tag. Returns sql.ErrNoRows when the tag does not exist
// and ErrDuplicateTag when the new name is taken.
func (r *PostgresTagRepository) UpdateTag(ctx context.Context, id, name string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE tags SET name = $1 WHERE id = $2`, name, id)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateTag
		}
		return fmt.Errorf("UpdateTag: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateTag: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteTag removes a tag and, via cascade, its note associations. The notes
// themselves are untouched. Returns sql.ErrNoRows when the tag does not exist.
func (r *PostgresTagRepository) DeleteTag(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("DeleteTag: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteTag: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
