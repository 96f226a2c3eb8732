package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/atinyakov/NoteKeeper/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository defines the persistence operations required by the
// authentication service.
type UserRepository interface {
	// CreateUser inserts a new user; repository.ErrDuplicateEmail on conflict.
	CreateUser(ctx context.Context, u *models.User) error
	// GetUserByEmail fetches a user by email; sql.ErrNoRows when absent.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByID fetches a user by id; sql.ErrNoRows when absent.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// AuthService implements account registration, credential verification and
// profile lookup.
type AuthService struct {
	repo UserRepository
}

// NewAuthService constructs an AuthService using the provided repository.
func NewAuthService(repo UserRepository) *AuthService {
	return &AuthService{repo: repo}
}

const (
	maxEmailLen    = 254
	maxNameLen     = 150
	minPasswordLen = 8
)

// Register validates the fields, hashes the password and creates the account.
// A duplicate email surfaces as a field-level ValidationError and creates
// nothing.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)

	fe := fieldErrors{}
	if email == "" {
		fe.add("email", "This field is required.")
	} else if !strings.Contains(email, "@") || len(email) > maxEmailLen {
		fe.add("email", "Enter a valid email address.")
	}
	if len(name) > maxNameLen {
		fe.add("name", "Ensure this field has no more than 150 characters.")
	}
	if password == "" {
		fe.add("password", "This field is required.")
	} else if len(password) < minPasswordLen {
		fe.add("password", "This password is too short. It must contain at least 8 characters.")
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, &ValidationError{Fields: map[string][]string{
				"email": {"An account with this email already exists."},
			}}
		}
		return nil, err
	}
	return user, nil
}

// Authenticate verifies the credentials and returns the account. Any failure,
// unknown email or wrong password alike, is ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Profile returns the account for the given id.
func (s *AuthService) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}
