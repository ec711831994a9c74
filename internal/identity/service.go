package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"discussly/internal/notification"
	dErrors "discussly/pkg/domain-errors"
)

// Actor identifies who is performing an operation. Services take it
// explicitly instead of fishing a principal out of the context.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// Service owns account lifecycle: registration, login, profile updates, soft
// delete and the admin-only operations around roles and purging.
type Service struct {
	users  UserStore
	hasher PasswordHasher
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

func NewService(users UserStore, hasher PasswordHasher, events notification.Publisher, logger *slog.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		users:  users,
		hasher: hasher,
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

// Register creates an account with the default role. Username and email must
// be unique across all accounts, deleted ones included.
func (s *Service) Register(ctx context.Context, username, email, password string) (*User, error) {
	if len(password) < PasswordMinLength {
		return nil, dErrors.Newf(dErrors.KindValidation, "password must be at least %d characters", PasswordMinLength)
	}

	if _, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email))); err == nil {
		return nil, dErrors.New(dErrors.KindConflict, "email already in use")
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if _, err := s.users.FindByUsername(ctx, strings.TrimSpace(username)); err == nil {
		return nil, dErrors.New(dErrors.KindConflict, "username already taken")
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	res := NewUser(username, email, hash)
	if res.IsFailure() {
		return nil, res.Err()
	}
	user := res.MustValue()

	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered", slog.String("user_id", user.ID.String()))
	return user, nil
}

// Login resolves the account by email or username and checks the password.
// Lookups that miss and bad passwords both come back as the same
// unauthorized error so callers cannot probe which accounts exist.
func (s *Service) Login(ctx context.Context, login, password string) (*User, error) {
	user, err := s.findByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, dErrors.New(dErrors.KindUnauthorized, "invalid credentials")
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	if user.IsDeleted {
		deletedOn := "an unknown date"
		if user.DeletedAt != nil {
			deletedOn = user.DeletedAt.Format("2006-01-02")
		}
		return nil, dErrors.Newf(dErrors.KindPolicyDenied, "this account was deleted on %s", deletedOn)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) findByLogin(ctx context.Context, login string) (*User, error) {
	login = strings.TrimSpace(login)
	if strings.Contains(login, "@") {
		return s.users.FindByEmail(ctx, strings.ToLower(login))
	}
	return s.users.FindByUsername(ctx, login)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.FindByID(ctx, id)
}

// UpdateUsername renames the account and notifies downstream consumers.
// Allowed for the account owner and for admins.
func (s *Service) UpdateUsername(ctx context.Context, actor Actor, userID uuid.UUID, username string) (*User, error) {
	user, err := s.loadForProfileChange(ctx, actor, userID)
	if err != nil {
		return nil, err
	}

	old := user.Username
	if strings.TrimSpace(username) != old {
		if _, err := s.users.FindByUsername(ctx, strings.TrimSpace(username)); err == nil {
			return nil, dErrors.New(dErrors.KindConflict, "username already taken")
		} else if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("check username: %w", err)
		}
	}

	if v := user.UpdateUsername(username); v.IsFailure() {
		return nil, v.Err()
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}

	s.emit(ctx, notification.NewEvent(notification.EventUsernameChanged, user.ID, map[string]string{
		"old": old,
		"new": user.Username,
	}))
	return user, nil
}

// UpdateAvatar sets or clears the avatar and notifies downstream consumers.
func (s *Service) UpdateAvatar(ctx context.Context, actor Actor, userID uuid.UUID, avatarURL string) (*User, error) {
	user, err := s.loadForProfileChange(ctx, actor, userID)
	if err != nil {
		return nil, err
	}

	if v := user.UpdateAvatar(avatarURL); v.IsFailure() {
		return nil, v.Err()
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}

	s.emit(ctx, notification.NewEvent(notification.EventAvatarChanged, user.ID, map[string]string{
		"avatar_url": user.AvatarURL,
	}))
	return user, nil
}

// ChangePassword verifies the current password before accepting the new one.
// Only the account owner may call it.
func (s *Service) ChangePassword(ctx context.Context, actor Actor, userID uuid.UUID, current, next string) error {
	if actor.ID != userID {
		return dErrors.New(dErrors.KindPolicyDenied, "only the account owner can change the password")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.hasher.Compare(user.PasswordHash, current); err != nil {
		return err
	}
	if len(next) < PasswordMinLength {
		return dErrors.Newf(dErrors.KindValidation, "password must be at least %d characters", PasswordMinLength)
	}
	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	if v := user.UpdatePasswordHash(hash); v.IsFailure() {
		return v.Err()
	}
	if err := s.users.Save(ctx, user); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// SoftDelete marks the account deleted, keeping the row for restore and for
// the retention window. Allowed for the owner and for admins.
func (s *Service) SoftDelete(ctx context.Context, actor Actor, userID uuid.UUID) error {
	user, err := s.loadForProfileChange(ctx, actor, userID)
	if err != nil {
		return err
	}
	if user.IsDeleted {
		return nil
	}
	user.MarkDeleted(s.clock())
	if err := s.users.Save(ctx, user); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	s.logger.InfoContext(ctx, "user soft-deleted", slog.String("user_id", userID.String()))
	return nil
}

// Restore reverses a soft delete. Admin only.
func (s *Service) Restore(ctx context.Context, actor Actor, userID uuid.UUID) error {
	if !actor.Role.AtLeast(RoleAdmin) {
		return dErrors.New(dErrors.KindPolicyDenied, "only admins can restore accounts")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.IsDeleted {
		return nil
	}
	user.Restore()
	if err := s.users.Save(ctx, user); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// AssignRole changes the platform role of another account. Admin only.
func (s *Service) AssignRole(ctx context.Context, actor Actor, userID uuid.UUID, role Role) (*User, error) {
	if !actor.Role.AtLeast(RoleAdmin) {
		return nil, dErrors.New(dErrors.KindPolicyDenied, "only admins can assign roles")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.AssignRole(role)
	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	s.logger.InfoContext(ctx, "role assigned",
		slog.String("user_id", userID.String()),
		slog.String("role", role.String()))
	return user, nil
}

// PurgeDeleted permanently removes accounts soft-deleted at least daysOld
// days ago and reports how many went away. Admin only.
func (s *Service) PurgeDeleted(ctx context.Context, actor Actor, daysOld int) (int, error) {
	if !actor.Role.AtLeast(RoleAdmin) {
		return 0, dErrors.New(dErrors.KindPolicyDenied, "only admins can purge accounts")
	}
	if daysOld < 0 {
		return 0, dErrors.New(dErrors.KindValidation, "days cannot be negative")
	}

	cutoff := s.clock().UTC().AddDate(0, 0, -daysOld)
	stale, err := s.users.DeletedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list deleted users: %w", err)
	}

	purged := 0
	for _, user := range stale {
		if err := s.users.Purge(ctx, user.ID); err != nil {
			return purged, fmt.Errorf("purge user %s: %w", user.ID, err)
		}
		purged++
	}
	if purged > 0 {
		s.logger.InfoContext(ctx, "purged deleted users", slog.Int("count", purged))
	}
	return purged, nil
}

func (s *Service) loadForProfileChange(ctx context.Context, actor Actor, userID uuid.UUID) (*User, error) {
	if actor.ID != userID && !actor.Role.AtLeast(RoleAdmin) {
		return nil, dErrors.New(dErrors.KindPolicyDenied, "cannot modify another user's account")
	}
	return s.users.FindByID(ctx, userID)
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
