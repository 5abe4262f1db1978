// Package sessions declares the login-session store contract and its
// PostgreSQL implementation.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
)

// Repository persists sessions keyed by their opaque identifier.
type Repository interface {
	// Create stores s. The identifier must be unique.
	Create(ctx context.Context, s *models.Session) error

	// FindWithUser returns the session and its owner in a single lookup.
	// It returns common.ErrorNotFound when the identifier is unknown. Expiry
	// is not checked here.
	FindWithUser(ctx context.Context, id string) (*models.Session, *models.User, error)

	// Delete removes a session and reports how many rows went away. Deleting
	// an unknown identifier is not an error and reports zero.
	Delete(ctx context.Context, id string) (int64, error)

	// DeleteExpired removes every session whose expiry is strictly before
	// before and returns how many were removed.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)

	// DeleteByUser removes every session owned by userID.
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}
