// Package identity holds the platform-wide user aggregate: the User entity,
// its ordered role, and the Ban records a user owns. Ban policy (who may ban
// whom) lives in the moderation package; this package only knows how a ban
// behaves over time.
package identity

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "discussly/pkg/domain-errors"
	"discussly/pkg/outcome"
	"discussly/pkg/validate"
)

const (
	UsernameMinLength  = 3
	UsernameMaxLength  = 50
	BanReasonMaxLength = 500
)

// emailPattern is deliberately loose: one local part, one domain, one TLD.
// Deliverability is the mail collaborator's problem.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Role is the platform-wide role, ordered so rank comparisons read naturally.
type Role int

const (
	RoleUser Role = iota
	RoleModerator
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleModerator:
		return "moderator"
	case RoleAdmin:
		return "admin"
	}
	return "unknown"
}

// ParseRole constructs a Role from external input.
func ParseRole(s string) (Role, error) {
	switch s {
	case "user":
		return RoleUser, nil
	case "moderator":
		return RoleModerator, nil
	case "admin":
		return RoleAdmin, nil
	}
	return RoleUser, dErrors.New(dErrors.KindValidation, "invalid role")
}

// AtLeast reports whether r ranks at or above other.
func (r Role) AtLeast(other Role) bool { return r >= other }

// User is the aggregate root for platform identity. The password hash is
// opaque here; hashing belongs to the PasswordHasher collaborator.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	AvatarURL    string // empty when no avatar is set
	Role         Role
	IsDeleted    bool
	DeletedAt    *time.Time
	CreatedAt    time.Time
	Bans         []*Ban
}

// NewUser validates and constructs a user with the default role.
func NewUser(username, email, passwordHash string) outcome.Of[*User] {
	v := validateUsername(username).
		Combine(validateEmail(email)).
		Combine(validatePasswordHash(passwordHash))
	if v.IsFailure() {
		return outcome.RejectErr[*User](v.Err())
	}

	return outcome.Value(&User{
		ID:           uuid.New(),
		Username:     strings.TrimSpace(username),
		Email:        normalizeEmail(email),
		PasswordHash: passwordHash,
		Role:         RoleUser,
		CreatedAt:    time.Now().UTC(),
	})
}

func validateUsername(username string) outcome.Outcome {
	return validate.LengthBetween("username", username, UsernameMinLength, UsernameMaxLength)
}

func validateEmail(email string) outcome.Outcome {
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		return outcome.Failure(dErrors.KindValidation, "invalid email format")
	}
	return outcome.Success()
}

func validatePasswordHash(hash string) outcome.Outcome {
	if hash == "" {
		return outcome.Failure(dErrors.KindValidation, "password hash cannot be empty")
	}
	return outcome.Success()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UpdateUsername revalidates and stores the trimmed username.
func (u *User) UpdateUsername(username string) outcome.Outcome {
	if v := validateUsername(username); v.IsFailure() {
		return v
	}
	u.Username = strings.TrimSpace(username)
	return outcome.Success()
}

// UpdateEmail revalidates and stores the normalized email.
func (u *User) UpdateEmail(email string) outcome.Outcome {
	if v := validateEmail(email); v.IsFailure() {
		return v
	}
	u.Email = normalizeEmail(email)
	return outcome.Success()
}

// UpdateAvatar sets the avatar reference; a blank value clears it.
func (u *User) UpdateAvatar(avatarURL string) outcome.Outcome {
	trimmed := strings.TrimSpace(avatarURL)
	if trimmed == "" {
		u.AvatarURL = ""
		return outcome.Success()
	}
	if v := validate.AbsoluteHTTPURL("avatar URL", trimmed); v.IsFailure() {
		return v
	}
	u.AvatarURL = trimmed
	return outcome.Success()
}

// UpdatePasswordHash replaces the opaque hash.
func (u *User) UpdatePasswordHash(hash string) outcome.Outcome {
	if v := validatePasswordHash(hash); v.IsFailure() {
		return v
	}
	u.PasswordHash = hash
	return outcome.Success()
}

// AssignRole replaces the platform role. Authorization is the caller's duty.
func (u *User) AssignRole(role Role) {
	u.Role = role
}

// MarkDeleted soft-deletes the account.
func (u *User) MarkDeleted(now time.Time) {
	u.IsDeleted = true
	t := now.UTC()
	u.DeletedAt = &t
}

// Restore reverses a soft delete.
func (u *User) Restore() {
	u.IsDeleted = false
	u.DeletedAt = nil
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

func (u *User) IsModerator() bool { return u.Role.AtLeast(RoleModerator) }

// IsBannedAt derives ban status from owned Ban records; nothing is stored.
func (u *User) IsBannedAt(now time.Time) bool {
	return u.ActiveBanAt(now) != nil
}

// IsBanned is IsBannedAt against the wall clock.
func (u *User) IsBanned() bool { return u.IsBannedAt(time.Now().UTC()) }

// ActiveBanAt returns the first currently active ban, nil when none. By
// convention at most one ban is active at a time; overlaps are not
// structurally forbidden and the first one wins.
func (u *User) ActiveBanAt(now time.Time) *Ban {
	for _, b := range u.Bans {
		if b.IsActiveAt(now) {
			return b
		}
	}
	return nil
}

// BanHistory returns owned bans, most recent first.
func (u *User) BanHistory() []*Ban {
	history := make([]*Ban, len(u.Bans))
	copy(history, u.Bans)
	sort.Slice(history, func(i, j int) bool {
		return history[i].BannedAt.After(history[j].BannedAt)
	})
	return history
}

// Ban is one moderation action against a user. Rows are terminated by Unban
// or by natural expiry, never deleted.
type Ban struct {
	ID                    uuid.UUID
	UserID                uuid.UUID
	ModeratorID           uuid.UUID
	Reason                string
	BannedAt              time.Time
	ExpiresAt             *time.Time // nil means permanent
	UnbannedAt            *time.Time
	UnbannedByModeratorID *uuid.UUID
}

// NewBan validates the reason and constructs a ban effective immediately.
// A nil expiresAt makes the ban permanent.
func NewBan(userID, moderatorID uuid.UUID, reason string, expiresAt *time.Time) outcome.Of[*Ban] {
	v := validate.NotBlank("ban reason", reason).
		Combine(validate.MaxLen("ban reason", reason, BanReasonMaxLength))
	if v.IsFailure() {
		return outcome.RejectErr[*Ban](v.Err())
	}

	return outcome.Value(&Ban{
		ID:          uuid.New(),
		UserID:      userID,
		ModeratorID: moderatorID,
		Reason:      strings.TrimSpace(reason),
		BannedAt:    time.Now().UTC(),
		ExpiresAt:   expiresAt,
	})
}

// IsPermanent reports whether the ban has no expiry.
func (b *Ban) IsPermanent() bool { return b.ExpiresAt == nil }

// IsActiveAt derives activity purely from time: an unbanned row is inactive,
// otherwise the ban is active until its expiry passes. Requiring
// UnbannedAt == nil here is a deliberate departure from the expiry-only
// derivation, which would keep an explicitly lifted permanent ban active
// forever.
func (b *Ban) IsActiveAt(now time.Time) bool {
	if b.UnbannedAt != nil {
		return false
	}
	return b.ExpiresAt == nil || b.ExpiresAt.After(now)
}

// IsActive is IsActiveAt against the wall clock.
func (b *Ban) IsActive() bool { return b.IsActiveAt(time.Now().UTC()) }

// Unban terminates the ban, stamping when and by whom.
func (b *Ban) Unban(moderatorID uuid.UUID, now time.Time) {
	t := now.UTC()
	b.UnbannedAt = &t
	b.UnbannedByModeratorID = &moderatorID
}
