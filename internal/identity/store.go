package identity

import (
	"context"
	"time"

	"github.com/google/uuid"

	dErrors "discussly/pkg/domain-errors"
)

var (
	// ErrNotFound keeps storage-specific lookups consistent across the
	// memory and postgres implementations.
	ErrNotFound = dErrors.New(dErrors.KindNotFound, "user not found")
)

// UserStore persists the user aggregate. FindBy* load the user together with
// its ban records so derived state works on whatever comes back.
type UserStore interface {
	Save(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	// DeletedBefore returns soft-deleted users whose deletion predates cutoff.
	DeletedBefore(ctx context.Context, cutoff time.Time) ([]*User, error)
	// Purge removes the user row and everything hanging off it for good.
	Purge(ctx context.Context, id uuid.UUID) error
}

// BanStore persists ban records independently of the full user aggregate.
type BanStore interface {
	Save(ctx context.Context, ban *Ban) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Ban, error)
}
