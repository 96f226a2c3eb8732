// Package repository provides persistence implementations for the note-taking
// services using a PostgreSQL database.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL error code for unique-constraint failures.
const uniqueViolation = "23505"

var (
	// ErrDuplicateEmail indicates an insert against an already-registered email.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrDuplicateTag indicates an insert or rename against an existing tag name.
	ErrDuplicateTag = errors.New("tag name already exists")
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// PostgresUserRepository implements user persistence against PostgreSQL.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the given database connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// CreateUser inserts a new user row. Returns ErrDuplicateEmail when the email
// is already registered.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, u *models.User) error {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO users (id, email, name, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING date_joined
	`, u.ID, u.Email, u.Name, u.PasswordHash).Scan(&u.DateJoined)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("CreateUser: %w", err)
	}
	return nil
}

// GetUserByEmail fetches a user by email. Returns sql.ErrNoRows when absent.
func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, email, name, password_hash, is_admin, date_joined
		  FROM users WHERE email = $1
	`, email).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.IsAdmin, &u.DateJoined)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByID fetches a user by id. Returns sql.ErrNoRows when absent.
func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, email, name, password_hash, is_admin, date_joined
		  FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.IsAdmin, &u.DateJoined)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
