package community

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"discussly/internal/identity"
	dErrors "discussly/pkg/domain-errors"
)

// Service owns community lifecycle and membership. Creating a community and
// seating its creator happen together; a community without a creator
// membership never becomes visible.
type Service struct {
	communities CommunityStore
	subs        SubscriptionStore
	logger      *slog.Logger
}

func NewService(communities CommunityStore, subs SubscriptionStore, logger *slog.Logger) *Service {
	return &Service{communities: communities, subs: subs, logger: logger}
}

// Create makes a public community and seats the actor as its creator. When
// the creator membership cannot be stored the community row is rolled back.
func (s *Service) Create(ctx context.Context, actor identity.Actor, name, displayName, description string) (*Community, error) {
	// Stored names are trimmed, so the duplicate check must look up the
	// trimmed form too.
	name = strings.TrimSpace(name)
	if _, err := s.communities.FindByName(ctx, name); err == nil {
		return nil, dErrors.New(dErrors.KindConflict, "community name already taken")
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check community name: %w", err)
	}

	res := NewCommunity(name, displayName, description, actor.ID)
	if res.IsFailure() {
		return nil, res.Err()
	}
	community := res.MustValue()

	if err := s.communities.Save(ctx, community); err != nil {
		return nil, fmt.Errorf("save community: %w", err)
	}
	if err := s.subs.Save(ctx, NewSubscription(actor.ID, community.ID, RoleCreator)); err != nil {
		if delErr := s.communities.Delete(ctx, community.ID); delErr != nil {
			s.logger.ErrorContext(ctx, "orphaned community after failed creator seat",
				slog.String("community_id", community.ID.String()),
				slog.String("error", delErr.Error()))
		}
		return nil, fmt.Errorf("seat creator: %w", err)
	}

	s.logger.InfoContext(ctx, "community created",
		slog.String("community_id", community.ID.String()),
		slog.String("name", community.Name))
	return community, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Community, error) {
	return s.communities.FindByID(ctx, id)
}

func (s *Service) GetByName(ctx context.Context, name string) (*Community, error) {
	return s.communities.FindByName(ctx, name)
}

// UpdateProfile changes display name, description and avatar in one go.
// Owner or platform admin only.
func (s *Service) UpdateProfile(ctx context.Context, actor identity.Actor, communityID uuid.UUID, displayName, description, avatarURL string) (*Community, error) {
	community, err := s.loadOwned(ctx, actor, communityID)
	if err != nil {
		return nil, err
	}

	v := community.UpdateDisplayName(displayName).
		Combine(community.UpdateDescription(description)).
		Combine(community.UpdateAvatar(avatarURL))
	if v.IsFailure() {
		return nil, v.Err()
	}

	if err := s.communities.Save(ctx, community); err != nil {
		return nil, fmt.Errorf("save community: %w", err)
	}
	return community, nil
}

// SetPrivate flips community visibility. Idempotent; owner or admin only.
func (s *Service) SetPrivate(ctx context.Context, actor identity.Actor, communityID uuid.UUID, private bool) (*Community, error) {
	community, err := s.loadOwned(ctx, actor, communityID)
	if err != nil {
		return nil, err
	}
	if private {
		community.ToPrivate()
	} else {
		community.ToPublic()
	}
	if err := s.communities.Save(ctx, community); err != nil {
		return nil, fmt.Errorf("save community: %w", err)
	}
	return community, nil
}

// TransferOwnership moves the creator seat to another member. The new owner
// gets the creator membership; the previous owner steps down to moderator.
func (s *Service) TransferOwnership(ctx context.Context, actor identity.Actor, communityID, newOwnerID uuid.UUID) (*Community, error) {
	community, err := s.loadOwned(ctx, actor, communityID)
	if err != nil {
		return nil, err
	}
	if community.OwnerID == newOwnerID {
		return community, nil
	}

	newSeat, err := s.subs.Find(ctx, newOwnerID, communityID)
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			return nil, dErrors.New(dErrors.KindPolicyDenied, "new owner must be a member of the community")
		}
		return nil, err
	}

	oldSeat, err := s.subs.Find(ctx, community.OwnerID, communityID)
	if err != nil {
		return nil, err
	}

	oldSeat.Role = RoleModerator
	newSeat.Role = RoleCreator
	community.ChangeOwner(newOwnerID)

	if err := s.subs.Save(ctx, oldSeat); err != nil {
		return nil, fmt.Errorf("demote previous owner: %w", err)
	}
	if err := s.subs.Save(ctx, newSeat); err != nil {
		return nil, fmt.Errorf("seat new owner: %w", err)
	}
	if err := s.communities.Save(ctx, community); err != nil {
		return nil, fmt.Errorf("save community: %w", err)
	}

	s.logger.InfoContext(ctx, "community ownership transferred",
		slog.String("community_id", communityID.String()),
		slog.String("new_owner_id", newOwnerID.String()))
	return community, nil
}

// Subscribe adds the actor as a plain member. Subscribing twice conflicts.
func (s *Service) Subscribe(ctx context.Context, actor identity.Actor, communityID uuid.UUID) (*Subscription, error) {
	if _, err := s.communities.FindByID(ctx, communityID); err != nil {
		return nil, err
	}
	if _, err := s.subs.Find(ctx, actor.ID, communityID); err == nil {
		return nil, dErrors.New(dErrors.KindConflict, "already subscribed to this community")
	} else if !errors.Is(err, ErrSubscriptionNotFound) {
		return nil, err
	}

	sub := NewSubscription(actor.ID, communityID, RoleUser)
	if err := s.subs.Save(ctx, sub); err != nil {
		return nil, fmt.Errorf("save subscription: %w", err)
	}
	return sub, nil
}

// Unsubscribe removes the actor's membership. Not being subscribed is a
// no-op success; the creator can never leave their own community.
func (s *Service) Unsubscribe(ctx context.Context, actor identity.Actor, communityID uuid.UUID) error {
	sub, err := s.subs.Find(ctx, actor.ID, communityID)
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			return nil
		}
		return err
	}
	if sub.IsCreator() {
		return dErrors.New(dErrors.KindPolicyDenied, "can't unsubscribe as a creator")
	}
	return s.subs.Delete(ctx, actor.ID, communityID)
}

// Members lists the community's memberships.
func (s *Service) Members(ctx context.Context, communityID uuid.UUID) ([]*Subscription, error) {
	if _, err := s.communities.FindByID(ctx, communityID); err != nil {
		return nil, err
	}
	return s.subs.ListByCommunity(ctx, communityID)
}

// SubscriptionsOf lists everything the user is subscribed to.
func (s *Service) SubscriptionsOf(ctx context.Context, userID uuid.UUID) ([]*Subscription, error) {
	return s.subs.ListByUser(ctx, userID)
}

// SetMemberRole promotes or demotes a member within the community. Only the
// owner (or a platform admin) may do it, the creator seat is untouchable,
// and the creator role is only handed out through TransferOwnership.
func (s *Service) SetMemberRole(ctx context.Context, actor identity.Actor, communityID, userID uuid.UUID, role Role) (*Subscription, error) {
	if role == RoleCreator {
		return nil, dErrors.New(dErrors.KindValidation, "creator role is assigned by ownership transfer")
	}
	if _, err := s.loadOwned(ctx, actor, communityID); err != nil {
		return nil, err
	}

	sub, err := s.subs.Find(ctx, userID, communityID)
	if err != nil {
		return nil, err
	}
	if sub.IsCreator() {
		return nil, dErrors.New(dErrors.KindPolicyDenied, "cannot change the creator's role")
	}

	sub.Role = role
	if err := s.subs.Save(ctx, sub); err != nil {
		return nil, fmt.Errorf("save subscription: %w", err)
	}
	return sub, nil
}

func (s *Service) loadOwned(ctx context.Context, actor identity.Actor, communityID uuid.UUID) (*Community, error) {
	community, err := s.communities.FindByID(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if community.OwnerID != actor.ID && !actor.Role.AtLeast(identity.RoleAdmin) {
		return nil, dErrors.New(dErrors.KindPolicyDenied, "only the community owner can do this")
	}
	return community, nil
}
