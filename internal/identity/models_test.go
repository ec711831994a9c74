package identity

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "discussly/pkg/domain-errors"
)

func TestNewUser(t *testing.T) {
	t.Run("valid input", func(t *testing.T) {
		res := NewUser("alice", "Alice@Example.COM", "hash")
		require.True(t, res.IsSuccess())

		u := res.MustValue()
		assert.NotEqual(t, uuid.Nil, u.ID)
		assert.Equal(t, "alice", u.Username)
		assert.Equal(t, "alice@example.com", u.Email, "email is normalized to lowercase")
		assert.Equal(t, RoleUser, u.Role)
		assert.False(t, u.IsDeleted)
		assert.Empty(t, u.AvatarURL)
	})

	t.Run("username too short", func(t *testing.T) {
		res := NewUser("ab", "a@b.co", "hash")
		require.True(t, res.IsFailure())
		assert.True(t, dErrors.Is(res.Err(), dErrors.KindValidation))
		assert.Contains(t, res.Err().Error(), "at least 3 characters")
	})

	t.Run("username too long", func(t *testing.T) {
		res := NewUser(strings.Repeat("a", 51), "a@b.co", "hash")
		require.True(t, res.IsFailure())
		assert.Contains(t, res.Err().Error(), "must not exceed 50 characters")
	})

	t.Run("username trimmed before length check", func(t *testing.T) {
		res := NewUser("  bob  ", "a@b.co", "hash")
		require.True(t, res.IsSuccess())
		assert.Equal(t, "bob", res.MustValue().Username)
	})

	t.Run("invalid email", func(t *testing.T) {
		for _, email := range []string{"", "plain", "a@b", "a b@c.de", "@example.com"} {
			res := NewUser("alice", email, "hash")
			assert.True(t, res.IsFailure(), "email %q should be rejected", email)
		}
	})

	t.Run("empty password hash", func(t *testing.T) {
		res := NewUser("alice", "a@b.co", "")
		require.True(t, res.IsFailure())
		assert.Contains(t, res.Err().Error(), "password hash cannot be empty")
	})
}

func TestUser_Mutators(t *testing.T) {
	newUser := func(t *testing.T) *User {
		t.Helper()
		return NewUser("alice", "a@b.co", "hash").MustValue()
	}

	t.Run("update username rejects invalid and keeps original", func(t *testing.T) {
		u := newUser(t)
		require.True(t, u.UpdateUsername("x").IsFailure())
		assert.Equal(t, "alice", u.Username)

		require.True(t, u.UpdateUsername("alice2").IsSuccess())
		assert.Equal(t, "alice2", u.Username)
	})

	t.Run("update email normalizes", func(t *testing.T) {
		u := newUser(t)
		require.True(t, u.UpdateEmail("NEW@Example.Org").IsSuccess())
		assert.Equal(t, "new@example.org", u.Email)

		require.True(t, u.UpdateEmail("nope").IsFailure())
		assert.Equal(t, "new@example.org", u.Email)
	})

	t.Run("avatar accepts absolute http urls only", func(t *testing.T) {
		u := newUser(t)
		require.True(t, u.UpdateAvatar("https://cdn.example.com/a.png").IsSuccess())
		assert.Equal(t, "https://cdn.example.com/a.png", u.AvatarURL)

		require.True(t, u.UpdateAvatar("ftp://cdn.example.com/a.png").IsFailure())
		assert.Equal(t, "https://cdn.example.com/a.png", u.AvatarURL)
	})

	t.Run("blank avatar clears it", func(t *testing.T) {
		u := newUser(t)
		require.True(t, u.UpdateAvatar("https://cdn.example.com/a.png").IsSuccess())
		require.True(t, u.UpdateAvatar("   ").IsSuccess())
		assert.Empty(t, u.AvatarURL)
	})

	t.Run("soft delete and restore", func(t *testing.T) {
		u := newUser(t)
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		u.MarkDeleted(now)
		assert.True(t, u.IsDeleted)
		require.NotNil(t, u.DeletedAt)
		assert.Equal(t, now, *u.DeletedAt)

		u.Restore()
		assert.False(t, u.IsDeleted)
		assert.Nil(t, u.DeletedAt)
	})
}

func TestRole_Ordering(t *testing.T) {
	assert.True(t, RoleAdmin.AtLeast(RoleModerator))
	assert.True(t, RoleModerator.AtLeast(RoleModerator))
	assert.False(t, RoleUser.AtLeast(RoleModerator))

	u := NewUser("alice", "a@b.co", "hash").MustValue()
	assert.False(t, u.IsModerator())
	u.AssignRole(RoleModerator)
	assert.True(t, u.IsModerator())
	assert.False(t, u.IsAdmin())
	u.AssignRole(RoleAdmin)
	assert.True(t, u.IsAdmin())
	assert.True(t, u.IsModerator())
}

func TestNewBan(t *testing.T) {
	userID, modID := uuid.New(), uuid.New()

	t.Run("valid permanent ban", func(t *testing.T) {
		res := NewBan(userID, modID, "spam", nil)
		require.True(t, res.IsSuccess())
		b := res.MustValue()
		assert.True(t, b.IsPermanent())
		assert.True(t, b.IsActive())
	})

	t.Run("blank reason rejected", func(t *testing.T) {
		res := NewBan(userID, modID, "   ", nil)
		require.True(t, res.IsFailure())
		assert.Contains(t, res.Err().Error(), "cannot be empty")
	})

	t.Run("reason over limit rejected", func(t *testing.T) {
		res := NewBan(userID, modID, strings.Repeat("r", 501), nil)
		require.True(t, res.IsFailure())
		assert.Contains(t, res.Err().Error(), "must not exceed 500 characters")
	})
}

func TestBan_Lifecycle(t *testing.T) {
	userID, modID := uuid.New(), uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("temporary ban expires without any state change", func(t *testing.T) {
		expires := now.Add(60 * time.Minute)
		b := NewBan(userID, modID, "cool off", &expires).MustValue()

		assert.True(t, b.IsActiveAt(now))
		assert.True(t, b.IsActiveAt(now.Add(59*time.Minute)))
		assert.False(t, b.IsActiveAt(expires), "expiry instant is already inactive")
		assert.False(t, b.IsActiveAt(expires.Add(time.Second)))
	})

	t.Run("expiry one second in the past is inactive", func(t *testing.T) {
		expires := now.Add(-time.Second)
		b := NewBan(userID, modID, "late", &expires).MustValue()
		assert.False(t, b.IsActiveAt(now))
	})

	t.Run("unban deactivates a permanent ban", func(t *testing.T) {
		b := NewBan(userID, modID, "spam", nil).MustValue()
		require.True(t, b.IsActiveAt(now))

		lifter := uuid.New()
		b.Unban(lifter, now)
		assert.False(t, b.IsActiveAt(now))
		require.NotNil(t, b.UnbannedAt)
		assert.Equal(t, now, *b.UnbannedAt)
		require.NotNil(t, b.UnbannedByModeratorID)
		assert.Equal(t, lifter, *b.UnbannedByModeratorID)
	})
}

func TestUser_BanDerivation(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	modID := uuid.New()

	u := NewUser("alice", "a@b.co", "hash").MustValue()
	assert.False(t, u.IsBannedAt(now))
	assert.Nil(t, u.ActiveBanAt(now))

	expires := now.Add(60 * time.Minute)
	b := NewBan(u.ID, modID, "timeout", &expires).MustValue()
	u.Bans = append(u.Bans, b)

	assert.True(t, u.IsBannedAt(now))
	assert.Same(t, b, u.ActiveBanAt(now))
	assert.False(t, u.IsBannedAt(now.Add(61*time.Minute)), "ban lapses by time alone")
}

func TestUser_BanHistory(t *testing.T) {
	modID := uuid.New()
	u := NewUser("alice", "a@b.co", "hash").MustValue()

	older := NewBan(u.ID, modID, "first", nil).MustValue()
	older.BannedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := NewBan(u.ID, modID, "second", nil).MustValue()
	newer.BannedAt = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	u.Bans = []*Ban{older, newer}

	history := u.BanHistory()
	require.Len(t, history, 2)
	assert.Equal(t, "second", history[0].Reason)
	assert.Equal(t, "first", history[1].Reason)
}

func TestParseRole(t *testing.T) {
	for s, want := range map[string]Role{"user": RoleUser, "moderator": RoleModerator, "admin": RoleAdmin} {
		got, err := ParseRole(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseRole("superuser")
	assert.True(t, dErrors.Is(err, dErrors.KindValidation))
}
