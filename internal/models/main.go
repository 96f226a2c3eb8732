// Package models defines the core data structures for users, notes, tags
// and the shared-note access log.
package models

import "time"

// User represents an application account.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id"`
	// Email is the login identity; unique across all users.
	Email string `json:"email"`
	// Name is the display name chosen by the user.
	Name string `json:"name"`
	// PasswordHash is the bcrypt hash of the user's password. Never serialized.
	PasswordHash string `json:"-"`
	// IsAdmin grants access to the shared-access audit listing.
	IsAdmin bool `json:"-"`
	// DateJoined is the registration timestamp.
	DateJoined time.Time `json:"date_joined"`
}

// Tag is a shared label applied to notes. Tags are never owned by a user.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Note is the main domain entity. A note belongs to exactly one owner for its
// whole lifetime; the shared flag grants read access to other users.
type Note struct {
	ID string `json:"id"`
	// Owner is the owning user's email in API responses.
	Owner string `json:"owner"`
	// OwnerID is the owning user's id; not part of the wire format.
	OwnerID string `json:"-"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Tags    []Tag  `json:"tags"`

	IsPinned   bool `json:"is_pinned"`
	IsFavorite bool `json:"is_favorite"`
	IsShared   bool `json:"is_shared"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SharedNoteAccess records a single read of a shared note by a non-owner.
// Rows are append-only; AccessedBy is empty if the accessing account was
// since deleted.
type SharedNoteAccess struct {
	ID string `json:"id"`
	// Note is the note title in API responses.
	Note string `json:"note"`
	// AccessedBy is the reading user's email, or empty.
	AccessedBy string    `json:"accessed_by"`
	AccessedAt time.Time `json:"accessed_at"`
}
