// Package repository defines the storage interfaces the scholarship API's
// services depend on. Implementations live in subpackages (sqlstore).
//
// Services accept these interfaces rather than a concrete store, so service
// tests run against in-memory fakes and the store can switch between SQLite
// and Postgres without the services noticing.
package repository

import (
	"context"

	"github.com/sakif/scholarship-globe/internal/model"
)

// UserRepository stores accounts.
type UserRepository interface {
	// CreateUser assigns the user's ID and CreatedAt. A taken email is an
	// apperror.ErrConflict.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	// GetUserByEmail matches the stored (lowercased) email exactly.
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// ScholarshipRepository stores each user's saved scholarships.
type ScholarshipRepository interface {
	// SaveScholarship assigns the record's ID and CreatedAt.
	SaveScholarship(ctx context.Context, s *model.SavedScholarship) error
	// ListSaved returns the user's records, newest first.
	ListSaved(ctx context.Context, userID string) ([]model.SavedScholarship, error)
	// DeleteSaved removes one of the user's records. Records that do not
	// exist or belong to someone else are apperror.ErrNotFound.
	DeleteSaved(ctx context.Context, userID, id string) error
}
