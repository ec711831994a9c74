// Package moderation enforces ban policy: who may ban whom, for how long,
// and who may lift a ban. The Ban record itself lives with the user aggregate
// in the identity package; this service owns the rules around it.
package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"discussly/internal/identity"
	"discussly/internal/notification"
	dErrors "discussly/pkg/domain-errors"
)

type Service struct {
	users  identity.UserStore
	bans   identity.BanStore
	events notification.Publisher
	logger *slog.Logger
	clock  func() time.Time
}

type ServiceOption func(*Service)

// WithClock overrides the wall clock, for tests that need to move time.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewService(users identity.UserStore, bans identity.BanStore, events notification.Publisher, logger *slog.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		users:  users,
		bans:   bans,
		events: events,
		logger: logger,
		clock:  time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Ban bans the target permanently. The actor must be at least a moderator,
// may not ban themselves, and may not ban anyone of equal or higher rank.
func (s *Service) Ban(ctx context.Context, actor identity.Actor, targetID uuid.UUID, reason string) (*identity.Ban, error) {
	return s.ban(ctx, actor, targetID, reason, nil)
}

// BanFor bans the target for a positive number of minutes, after which the
// ban lapses on its own with no further action.
func (s *Service) BanFor(ctx context.Context, actor identity.Actor, targetID uuid.UUID, reason string, durationMinutes int) (*identity.Ban, error) {
	if durationMinutes <= 0 {
		return nil, dErrors.New(dErrors.KindValidation, "ban duration must be positive")
	}
	expiresAt := s.clock().UTC().Add(time.Duration(durationMinutes) * time.Minute)
	return s.ban(ctx, actor, targetID, reason, &expiresAt)
}

func (s *Service) ban(ctx context.Context, actor identity.Actor, targetID uuid.UUID, reason string, expiresAt *time.Time) (*identity.Ban, error) {
	if err := s.guardActor(actor, targetID); err != nil {
		return nil, err
	}

	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.Role.AtLeast(actor.Role) {
		return nil, dErrors.New(dErrors.KindPolicyDenied, "cannot ban a user of equal or higher rank")
	}
	now := s.clock().UTC()
	if target.IsBannedAt(now) {
		return nil, dErrors.New(dErrors.KindConflict, "user is already banned")
	}

	res := identity.NewBan(targetID, actor.ID, reason, expiresAt)
	if res.IsFailure() {
		return nil, res.Err()
	}
	ban := res.MustValue()
	ban.BannedAt = now

	if err := s.bans.Save(ctx, ban); err != nil {
		return nil, fmt.Errorf("save ban: %w", err)
	}

	s.logger.InfoContext(ctx, "user banned",
		slog.String("user_id", targetID.String()),
		slog.String("moderator_id", actor.ID.String()),
		slog.Bool("permanent", ban.IsPermanent()))
	s.emit(ctx, notification.NewEvent(notification.EventUserBanned, targetID, map[string]string{
		"reason": ban.Reason,
	}))
	return ban, nil
}

// Unban lifts the target's active ban. Fails when nothing is active.
func (s *Service) Unban(ctx context.Context, actor identity.Actor, targetID uuid.UUID) (*identity.Ban, error) {
	if err := s.guardActor(actor, targetID); err != nil {
		return nil, err
	}

	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	now := s.clock().UTC()
	active := target.ActiveBanAt(now)
	if active == nil {
		return nil, dErrors.New(dErrors.KindConflict, "user is not banned")
	}

	active.Unban(actor.ID, now)
	if err := s.bans.Save(ctx, active); err != nil {
		return nil, fmt.Errorf("save ban: %w", err)
	}

	s.logger.InfoContext(ctx, "user unbanned",
		slog.String("user_id", targetID.String()),
		slog.String("moderator_id", actor.ID.String()))
	s.emit(ctx, notification.NewEvent(notification.EventUserUnbanned, targetID, nil))
	return active, nil
}

// IsBanned reports the target's derived ban status right now.
func (s *Service) IsBanned(ctx context.Context, targetID uuid.UUID) (bool, error) {
	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return false, err
	}
	return target.IsBannedAt(s.clock().UTC()), nil
}

// History returns the target's bans, most recent first. Moderator and up.
func (s *Service) History(ctx context.Context, actor identity.Actor, targetID uuid.UUID) ([]*identity.Ban, error) {
	if !actor.Role.AtLeast(identity.RoleModerator) {
		return nil, dErrors.New(dErrors.KindPolicyDenied, "only moderators can view ban history")
	}
	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return target.BanHistory(), nil
}

func (s *Service) guardActor(actor identity.Actor, targetID uuid.UUID) error {
	if !actor.Role.AtLeast(identity.RoleModerator) {
		return dErrors.New(dErrors.KindPolicyDenied, "only moderators can moderate users")
	}
	if actor.ID == targetID {
		return dErrors.New(dErrors.KindPolicyDenied, "cannot moderate yourself")
	}
	return nil
}

func (s *Service) emit(ctx context.Context, event notification.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "publish notification failed",
			slog.String("event_type", string(event.Type)),
			slog.String("error", err.Error()))
	}
}
