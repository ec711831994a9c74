package community

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type InMemoryCommunityStore struct {
	mu          sync.RWMutex
	communities map[uuid.UUID]*Community
}

func NewInMemoryCommunityStore() *InMemoryCommunityStore {
	return &InMemoryCommunityStore{communities: make(map[uuid.UUID]*Community)}
}

func cloneCommunity(c *Community) *Community {
	clone := *c
	return &clone
}

func (s *InMemoryCommunityStore) Save(_ context.Context, community *Community) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.communities[community.ID] = cloneCommunity(community)
	return nil
}

func (s *InMemoryCommunityStore) FindByID(_ context.Context, id uuid.UUID) (*Community, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.communities[id]; ok {
		return cloneCommunity(c), nil
	}
	return nil, ErrNotFound
}

func (s *InMemoryCommunityStore) FindByName(_ context.Context, name string) (*Community, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.communities {
		if c.Name == name {
			return cloneCommunity(c), nil
		}
	}
	return nil, ErrNotFound
}

func (s *InMemoryCommunityStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.communities[id]; !ok {
		return ErrNotFound
	}
	delete(s.communities, id)
	return nil
}

type subKey struct {
	userID      uuid.UUID
	communityID uuid.UUID
}

type InMemorySubscriptionStore struct {
	mu   sync.RWMutex
	subs map[subKey]*Subscription
}

func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{subs: make(map[subKey]*Subscription)}
}

func cloneSubscription(sub *Subscription) *Subscription {
	clone := *sub
	return &clone
}

func (s *InMemorySubscriptionStore) Save(_ context.Context, sub *Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[subKey{sub.UserID, sub.CommunityID}] = cloneSubscription(sub)
	return nil
}

func (s *InMemorySubscriptionStore) Find(_ context.Context, userID, communityID uuid.UUID) (*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sub, ok := s.subs[subKey{userID, communityID}]; ok {
		return cloneSubscription(sub), nil
	}
	return nil, ErrSubscriptionNotFound
}

func (s *InMemorySubscriptionStore) Delete(_ context.Context, userID, communityID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := subKey{userID, communityID}
	if _, ok := s.subs[key]; !ok {
		return ErrSubscriptionNotFound
	}
	delete(s.subs, key)
	return nil
}

func (s *InMemorySubscriptionStore) ListByCommunity(_ context.Context, communityID uuid.UUID) ([]*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Subscription
	for _, sub := range s.subs {
		if sub.CommunityID == communityID {
			out = append(out, cloneSubscription(sub))
		}
	}
	return out, nil
}

func (s *InMemorySubscriptionStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Subscription
	for _, sub := range s.subs {
		if sub.UserID == userID {
			out = append(out, cloneSubscription(sub))
		}
	}
	return out, nil
}
