package community

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discussly/internal/identity"
	dErrors "discussly/pkg/domain-errors"
)

func newTestService(t *testing.T) (*Service, *InMemorySubscriptionStore) {
	t.Helper()
	subs := NewInMemorySubscriptionStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(NewInMemoryCommunityStore(), subs, logger), subs
}

func member(id uuid.UUID) identity.Actor {
	return identity.Actor{ID: id, Role: identity.RoleUser}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("seats the creator", func(t *testing.T) {
		svc, subs := newTestService(t)
		creator := member(uuid.New())

		c, err := svc.Create(ctx, creator, "golang", "Go Programming", "")
		require.NoError(t, err)
		assert.Equal(t, creator.ID, c.OwnerID)

		seat, err := subs.Find(ctx, creator.ID, c.ID)
		require.NoError(t, err)
		assert.Equal(t, RoleCreator, seat.Role)
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.Create(ctx, member(uuid.New()), "golang", "Go Programming", "")
		require.NoError(t, err)
		_, err = svc.Create(ctx, member(uuid.New()), "golang", "Another Go", "")
		assert.True(t, dErrors.Is(err, dErrors.KindConflict))

		// Names are stored trimmed; padding must not dodge the check.
		_, err = svc.Create(ctx, member(uuid.New()), "  golang  ", "Padded Go", "")
		assert.True(t, dErrors.Is(err, dErrors.KindConflict))
	})

	t.Run("invalid input never stores anything", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.Create(ctx, member(uuid.New()), "ab", "Go Programming", "")
		assert.True(t, dErrors.Is(err, dErrors.KindValidation))
		_, err = svc.GetByName(ctx, "ab")
		assert.True(t, dErrors.Is(err, dErrors.KindNotFound))
	})
}

func TestService_SubscribeUnsubscribe(t *testing.T) {
	ctx := context.Background()
	svc, subs := newTestService(t)
	creator := member(uuid.New())
	joiner := member(uuid.New())

	c, err := svc.Create(ctx, creator, "golang", "Go Programming", "")
	require.NoError(t, err)

	t.Run("member joins and leaves", func(t *testing.T) {
		sub, err := svc.Subscribe(ctx, joiner, c.ID)
		require.NoError(t, err)
		assert.Equal(t, RoleUser, sub.Role)

		require.NoError(t, svc.Unsubscribe(ctx, joiner, c.ID))
		_, err = subs.Find(ctx, joiner.ID, c.ID)
		assert.ErrorIs(t, err, ErrSubscriptionNotFound)
	})

	t.Run("double subscribe conflicts", func(t *testing.T) {
		_, err := svc.Subscribe(ctx, joiner, c.ID)
		require.NoError(t, err)
		_, err = svc.Subscribe(ctx, joiner, c.ID)
		assert.True(t, dErrors.Is(err, dErrors.KindConflict))
		require.NoError(t, svc.Unsubscribe(ctx, joiner, c.ID))
	})

	t.Run("leaving without membership is a no-op", func(t *testing.T) {
		require.NoError(t, svc.Unsubscribe(ctx, member(uuid.New()), c.ID))
	})

	t.Run("creator cannot leave", func(t *testing.T) {
		err := svc.Unsubscribe(ctx, creator, c.ID)
		require.Error(t, err)
		assert.True(t, dErrors.Is(err, dErrors.KindPolicyDenied))
		assert.Contains(t, err.Error(), "can't unsubscribe as a creator")

		seat, err := subs.Find(ctx, creator.ID, c.ID)
		require.NoError(t, err)
		assert.Equal(t, RoleCreator, seat.Role)
	})

	t.Run("subscribing to a missing community fails", func(t *testing.T) {
		_, err := svc.Subscribe(ctx, joiner, uuid.New())
		assert.True(t, dErrors.Is(err, dErrors.KindNotFound))
	})
}

func TestService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	creator := member(uuid.New())
	c, err := svc.Create(ctx, creator, "golang", "Go Programming", "")
	require.NoError(t, err)

	t.Run("non-owner denied", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, member(uuid.New()), c.ID, "Renamed", "", "")
		assert.True(t, dErrors.Is(err, dErrors.KindPolicyDenied))
	})

	t.Run("admin allowed", func(t *testing.T) {
		admin := identity.Actor{ID: uuid.New(), Role: identity.RoleAdmin}
		updated, err := svc.UpdateProfile(ctx, admin, c.ID, "Renamed Go", "now with desc", "https://cdn.example.com/c.png")
		require.NoError(t, err)
		assert.Equal(t, "Renamed Go", updated.DisplayName)
		assert.Equal(t, "https://cdn.example.com/c.png", updated.AvatarURL)
	})
}

func TestService_SetPrivate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	creator := member(uuid.New())
	c, err := svc.Create(ctx, creator, "golang", "Go Programming", "")
	require.NoError(t, err)

	hidden, err := svc.SetPrivate(ctx, creator, c.ID, true)
	require.NoError(t, err)
	assert.True(t, hidden.IsPrivate)

	again, err := svc.SetPrivate(ctx, creator, c.ID, true)
	require.NoError(t, err)
	assert.True(t, again.IsPrivate, "idempotent")
}

func TestService_TransferOwnership(t *testing.T) {
	ctx := context.Background()
	svc, subs := newTestService(t)
	creator := member(uuid.New())
	next := member(uuid.New())

	c, err := svc.Create(ctx, creator, "golang", "Go Programming", "")
	require.NoError(t, err)

	t.Run("new owner must be a member", func(t *testing.T) {
		_, err := svc.TransferOwnership(ctx, creator, c.ID, next.ID)
		assert.True(t, dErrors.Is(err, dErrors.KindPolicyDenied))
	})

	t.Run("seats swap", func(t *testing.T) {
		_, err := svc.Subscribe(ctx, next, c.ID)
		require.NoError(t, err)

		updated, err := svc.TransferOwnership(ctx, creator, c.ID, next.ID)
		require.NoError(t, err)
		assert.Equal(t, next.ID, updated.OwnerID)

		newSeat, err := subs.Find(ctx, next.ID, c.ID)
		require.NoError(t, err)
		assert.Equal(t, RoleCreator, newSeat.Role)

		oldSeat, err := subs.Find(ctx, creator.ID, c.ID)
		require.NoError(t, err)
		assert.Equal(t, RoleModerator, oldSeat.Role)
	})
}

func TestService_SetMemberRole(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	creator := member(uuid.New())
	target := member(uuid.New())

	c, err := svc.Create(ctx, creator, "golang", "Go Programming", "")
	require.NoError(t, err)
	_, err = svc.Subscribe(ctx, target, c.ID)
	require.NoError(t, err)

	t.Run("creator role is off limits", func(t *testing.T) {
		_, err := svc.SetMemberRole(ctx, creator, c.ID, target.ID, RoleCreator)
		assert.True(t, dErrors.Is(err, dErrors.KindValidation))
	})

	t.Run("owner promotes a member", func(t *testing.T) {
		sub, err := svc.SetMemberRole(ctx, creator, c.ID, target.ID, RoleModerator)
		require.NoError(t, err)
		assert.Equal(t, RoleModerator, sub.Role)
	})

	t.Run("creator seat cannot be demoted", func(t *testing.T) {
		_, err := svc.SetMemberRole(ctx, creator, c.ID, creator.ID, RoleUser)
		assert.True(t, dErrors.Is(err, dErrors.KindPolicyDenied))
	})

	t.Run("non-owner denied", func(t *testing.T) {
		_, err := svc.SetMemberRole(ctx, target, c.ID, target.ID, RoleUser)
		assert.True(t, dErrors.Is(err, dErrors.KindPolicyDenied))
	})
}

func TestService_Members(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	creator := member(uuid.New())

	c, err := svc.Create(ctx, creator, "golang", "Go Programming", "")
	require.NoError(t, err)
	_, err = svc.Subscribe(ctx, member(uuid.New()), c.ID)
	require.NoError(t, err)

	members, err := svc.Members(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	mine, err := svc.SubscriptionsOf(ctx, creator.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, c.ID, mine[0].CommunityID)
}
