package service

import (
	"context"

	"github.com/atinyakov/NoteKeeper/internal/models"
)

// AccessRepository defines the persistence operations required by AccessService.
type AccessRepository interface {
	ListAccess(ctx context.Context) ([]models.SharedNoteAccess, error)
}

// AccessService exposes the shared-note access log to administrators.
type AccessService struct {
	repo  AccessRepository
	users UserRepository
}

// NewAccessService constructs an AccessService.
func NewAccessService(repo AccessRepository, users UserRepository) *AccessService {
	return &AccessService{repo: repo, users: users}
}

// List returns all access-log rows. Non-administrators get ErrForbidden.
func (s *AccessService) List(ctx context.Context, requesterID string) ([]models.SharedNoteAccess, error) {
	user, err := s.users.GetUserByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin {
		return nil, ErrForbidden
	}
	return s.repo.ListAccess(ctx)
}
