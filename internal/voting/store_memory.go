package voting

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type voteKey struct {
	userID   uuid.UUID
	targetID uuid.UUID
}

type InMemoryPostVoteStore struct {
	mu    sync.RWMutex
	votes map[voteKey]*PostVote
}

func NewInMemoryPostVoteStore() *InMemoryPostVoteStore {
	return &InMemoryPostVoteStore{votes: make(map[voteKey]*PostVote)}
}

func (s *InMemoryPostVoteStore) Save(_ context.Context, vote *PostVote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := *vote
	s.votes[voteKey{vote.UserID, vote.PostID}] = &v
	return nil
}

func (s *InMemoryPostVoteStore) Find(_ context.Context, userID, postID uuid.UUID) (*PostVote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.votes[voteKey{userID, postID}]; ok {
		clone := *v
		return &clone, nil
	}
	return nil, ErrVoteNotFound
}

func (s *InMemoryPostVoteStore) Score(_ context.Context, postID uuid.UUID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var score int64
	for _, v := range s.votes {
		if v.PostID == postID {
			score += int64(v.Type)
		}
	}
	return score, nil
}

type InMemoryCommentVoteStore struct {
	mu    sync.RWMutex
	votes map[voteKey]*CommentVote
}

func NewInMemoryCommentVoteStore() *InMemoryCommentVoteStore {
	return &InMemoryCommentVoteStore{votes: make(map[voteKey]*CommentVote)}
}

func (s *InMemoryCommentVoteStore) Save(_ context.Context, vote *CommentVote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := *vote
	s.votes[voteKey{vote.UserID, vote.CommentID}] = &v
	return nil
}

func (s *InMemoryCommentVoteStore) Find(_ context.Context, userID, commentID uuid.UUID) (*CommentVote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.votes[voteKey{userID, commentID}]; ok {
		clone := *v
		return &clone, nil
	}
	return nil, ErrVoteNotFound
}

func (s *InMemoryCommentVoteStore) Score(_ context.Context, commentID uuid.UUID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var score int64
	for _, v := range s.votes {
		if v.CommentID == commentID {
			score += int64(v.Type)
		}
	}
	return score, nil
}
