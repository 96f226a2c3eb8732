package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresTokenRepository implements the refresh-token revocation list
// against PostgreSQL.
type PostgresTokenRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresTokenRepository creates a new PostgresTokenRepository with the given database connection.
func NewPostgresTokenRepository(db *sql.DB) *PostgresTokenRepository {
	return &PostgresTokenRepository{DB: db}
}

// RevokeToken records a refresh-token id as revoked until its natural expiry.
// Revoking an already-revoked id is a no-op.
func (r *PostgresTokenRepository) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO revoked_tokens (jti, expires_at) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, jti, expiresAt)
	if err != nil {
		return fmt.Errorf("RevokeToken: %w", err)
	}
	return nil
}

// IsTokenRevoked reports whether a refresh-token id is on the revocation list.
func (r *PostgresTokenRepository) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE jti = $1)`,
		jti,
	).Scan(&revoked)
	return revoked, err
}
