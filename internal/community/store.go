package community

import (
	"context"

	"github.com/google/uuid"

	dErrors "discussly/pkg/domain-errors"
)

var (
	ErrNotFound             = dErrors.New(dErrors.KindNotFound, "community not found")
	ErrSubscriptionNotFound = dErrors.New(dErrors.KindNotFound, "subscription not found")
)

type CommunityStore interface {
	Save(ctx context.Context, community *Community) error
	FindByID(ctx context.Context, id uuid.UUID) (*Community, error)
	FindByName(ctx context.Context, name string) (*Community, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SubscriptionStore persists memberships keyed by the (user, community) pair.
type SubscriptionStore interface {
	Save(ctx context.Context, sub *Subscription) error
	Find(ctx context.Context, userID, communityID uuid.UUID) (*Subscription, error)
	Delete(ctx context.Context, userID, communityID uuid.UUID) error
	ListByCommunity(ctx context.Context, communityID uuid.UUID) ([]*Subscription, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Subscription, error)
}
