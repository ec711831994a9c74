package identity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// In-memory stores keep unit tests and local runs free of external
// dependencies. Everything is deep-copied on the way in and out so callers
// can never mutate shared state behind the lock.
type InMemoryUserStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*User
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{users: make(map[uuid.UUID]*User)}
}

func cloneUser(u *User) *User {
	c := *u
	if u.DeletedAt != nil {
		t := *u.DeletedAt
		c.DeletedAt = &t
	}
	c.Bans = cloneBans(u.Bans)
	return &c
}

func cloneBans(bans []*Ban) []*Ban {
	if bans == nil {
		return nil
	}
	out := make([]*Ban, len(bans))
	for i, b := range bans {
		out[i] = cloneBan(b)
	}
	return out
}

func cloneBan(b *Ban) *Ban {
	c := *b
	if b.ExpiresAt != nil {
		t := *b.ExpiresAt
		c.ExpiresAt = &t
	}
	if b.UnbannedAt != nil {
		t := *b.UnbannedAt
		c.UnbannedAt = &t
	}
	if b.UnbannedByModeratorID != nil {
		id := *b.UnbannedByModeratorID
		c.UnbannedByModeratorID = &id
	}
	return &c
}

func (s *InMemoryUserStore) Save(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, id uuid.UUID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[id]; ok {
		return cloneUser(user), nil
	}
	return nil, ErrNotFound
}

func (s *InMemoryUserStore) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email {
			return cloneUser(user), nil
		}
	}
	return nil, ErrNotFound
}

func (s *InMemoryUserStore) FindByUsername(_ context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Username == username {
			return cloneUser(user), nil
		}
	}
	return nil, ErrNotFound
}

func (s *InMemoryUserStore) DeletedBefore(_ context.Context, cutoff time.Time) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*User
	for _, user := range s.users {
		if user.IsDeleted && user.DeletedAt != nil && user.DeletedAt.Before(cutoff) {
			out = append(out, cloneUser(user))
		}
	}
	return out, nil
}

func (s *InMemoryUserStore) Purge(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	return nil
}

// InMemoryBanStore writes through to the user map so a subsequent FindBy*
// sees the ban attached to its owner, matching what the postgres pair does
// with a join.
type InMemoryBanStore struct {
	users *InMemoryUserStore
}

func NewInMemoryBanStore(users *InMemoryUserStore) *InMemoryBanStore {
	return &InMemoryBanStore{users: users}
}

func (s *InMemoryBanStore) Save(_ context.Context, ban *Ban) error {
	s.users.mu.Lock()
	defer s.users.mu.Unlock()
	user, ok := s.users.users[ban.UserID]
	if !ok {
		return ErrNotFound
	}
	for i, existing := range user.Bans {
		if existing.ID == ban.ID {
			user.Bans[i] = cloneBan(ban)
			return nil
		}
	}
	user.Bans = append(user.Bans, cloneBan(ban))
	return nil
}

func (s *InMemoryBanStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*Ban, error) {
	s.users.mu.RLock()
	defer s.users.mu.RUnlock()
	user, ok := s.users.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneBans(user.Bans), nil
}
