// Package community holds communities and their memberships. A membership is
// a (user, community) pair carrying a community-scoped role; every community
// has exactly one creator, seeded when the community is made.
package community

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "discussly/pkg/domain-errors"
	"discussly/pkg/outcome"
	"discussly/pkg/validate"
)

const (
	NameMinLength        = 3
	NameMaxLength        = 50
	DisplayNameMinLength = 3
	DisplayNameMaxLength = 100
	DescriptionMaxLength = 500
)

// Role is scoped to one community and is independent of the platform role.
type Role int

const (
	RoleUser Role = iota
	RoleModerator
	RoleCreator
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleModerator:
		return "moderator"
	case RoleCreator:
		return "creator"
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
	case "creator":
		return RoleCreator, nil
	}
	return RoleUser, dErrors.New(dErrors.KindValidation, "invalid community role")
}

// AtLeast reports whether r ranks at or above other.
func (r Role) AtLeast(other Role) bool { return r >= other }

type Community struct {
	ID          uuid.UUID
	Name        string
	DisplayName string
	Description string // empty allowed
	AvatarURL   string // empty when no avatar is set
	OwnerID     uuid.UUID
	IsPrivate   bool
	CreatedAt   time.Time
}

// NewCommunity validates and constructs a public community owned by ownerID.
func NewCommunity(name, displayName, description string, ownerID uuid.UUID) outcome.Of[*Community] {
	v := validate.LengthBetween("community name", name, NameMinLength, NameMaxLength).
		Combine(validate.LengthBetween("display name", displayName, DisplayNameMinLength, DisplayNameMaxLength)).
		Combine(validate.MaxLen("description", description, DescriptionMaxLength))
	if v.IsFailure() {
		return outcome.RejectErr[*Community](v.Err())
	}

	return outcome.Value(&Community{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(name),
		DisplayName: strings.TrimSpace(displayName),
		Description: strings.TrimSpace(description),
		OwnerID:     ownerID,
		CreatedAt:   time.Now().UTC(),
	})
}

// UpdateDisplayName revalidates and stores the trimmed display name.
func (c *Community) UpdateDisplayName(displayName string) outcome.Outcome {
	if v := validate.LengthBetween("display name", displayName, DisplayNameMinLength, DisplayNameMaxLength); v.IsFailure() {
		return v
	}
	c.DisplayName = strings.TrimSpace(displayName)
	return outcome.Success()
}

// UpdateDescription replaces the description; empty clears it.
func (c *Community) UpdateDescription(description string) outcome.Outcome {
	if v := validate.MaxLen("description", description, DescriptionMaxLength); v.IsFailure() {
		return v
	}
	c.Description = strings.TrimSpace(description)
	return outcome.Success()
}

// UpdateAvatar sets the avatar reference; a blank value clears it.
func (c *Community) UpdateAvatar(avatarURL string) outcome.Outcome {
	trimmed := strings.TrimSpace(avatarURL)
	if trimmed == "" {
		c.AvatarURL = ""
		return outcome.Success()
	}
	if v := validate.AbsoluteHTTPURL("avatar URL", trimmed); v.IsFailure() {
		return v
	}
	c.AvatarURL = trimmed
	return outcome.Success()
}

// ToPrivate hides the community. Idempotent.
func (c *Community) ToPrivate() { c.IsPrivate = true }

// ToPublic opens the community. Idempotent.
func (c *Community) ToPublic() { c.IsPrivate = false }

// ChangeOwner hands the community to a new owner.
func (c *Community) ChangeOwner(ownerID uuid.UUID) {
	c.OwnerID = ownerID
}

// Subscription is a membership: one user in one community with a
// community-scoped role. The (UserID, CommunityID) pair is unique.
type Subscription struct {
	UserID       uuid.UUID
	CommunityID  uuid.UUID
	Role         Role
	SubscribedAt time.Time
}

// NewSubscription constructs a membership with the given role.
func NewSubscription(userID, communityID uuid.UUID, role Role) *Subscription {
	return &Subscription{
		UserID:       userID,
		CommunityID:  communityID,
		Role:         role,
		SubscribedAt: time.Now().UTC(),
	}
}

// IsCreator reports whether this membership is the community's creator seat.
func (s *Subscription) IsCreator() bool { return s.Role == RoleCreator }
