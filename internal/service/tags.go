package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/atinyakov/NoteKeeper/internal/repository"
	"github.com/google/uuid"
)

const maxTagNameLen = 30

// TagRepository defines the persistence operations required by TagsService.
type TagRepository interface {
	// CreateTag inserts a tag; repository.ErrDuplicateTag on a taken name.
	CreateTag(ctx context.Context, t *models.Tag) error
	ListTags(ctx context.Context) ([]models.Tag, error)
	// GetTagByID fetches a tag; sql.ErrNoRows when absent.
	GetTagByID(ctx context.Context, id string) (*models.Tag, error)
	// UpdateTag renames a tag; sql.ErrNoRows when absent, ErrDuplicateTag on conflict.
	UpdateTag(ctx context.Context, id, name string) error
	// DeleteTag removes a tag; sql.ErrNoRows when absent.
	DeleteTag(ctx context.Context, id string) error
}

// TagsService implements the shared tag vocabulary. Tags are never owned;
// any authenticated user may manage them.
type TagsService struct {
	repo TagRepository
}

// NewTagsService constructs a TagsService.
func NewTagsService(repo TagRepository) *TagsService {
	return &TagsService{repo: repo}
}

func validateTagName(name string) (string, error) {
	name = strings.TrimSpace(name)
	fe := fieldErrors{}
	if name == "" {
		fe.add("name", "This field is required.")
	} else if len(name) > maxTagNameLen {
		fe.add("name", "Ensure this field has no more than 30 characters.")
	}
	return name, fe.err()
}

func duplicateTagError() error {
	return &ValidationError{Fields: map[string][]string{
		"name": {"A tag with this name already exists."},
	}}
}

// Create stores a new tag.
func (s *TagsService) Create(ctx context.Context, name string) (*models.Tag, error) {
	name, err := validateTagName(name)
	if err != nil {
		return nil, err
	}
	tag := &models.Tag{ID: uuid.NewString(), Name: name}
	if err := s.repo.CreateTag(ctx, tag); err != nil {
		if errors.Is(err, repository.ErrDuplicateTag) {
			return nil, duplicateTagError()
		}
		return nil, err
	}
	return tag, nil
}

// List returns all tags. The tag listing is unpaginated.
func (s *TagsService) List(ctx context.Context) ([]models.Tag, error) {
	return s.repo.ListTags(ctx)
}

// Update renames a tag.
func (s *TagsService) Update(ctx context.Context, id, name string) (*models.Tag, error) {
	name, err := validateTagName(name)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateTag(ctx, id, name); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		case errors.Is(err, repository.ErrDuplicateTag):
			return nil, duplicateTagError()
		}
		return nil, err
	}
	return &models.Tag{ID: id, Name: name}, nil
}

// Delete removes a tag from the vocabulary and from every note carrying it.
func (s *TagsService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteTag(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
