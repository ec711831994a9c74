package voting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"discussly/internal/content"
	"discussly/internal/identity"
	dErrors "discussly/pkg/domain-errors"
)

// Service owns the voting rules: one row per (voter, target), casting again
// replaces the value, and a score is always the sum of the current rows.
type Service struct {
	postVotes    PostVoteStore
	commentVotes CommentVoteStore
	posts        content.PostStore
	comments     content.CommentStore
	users        identity.UserStore
	cache        *ScoreCache // nil disables the projection
	logger       *slog.Logger
	clock        func() time.Time
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

// WithScoreCache enables the Redis score projection.
func WithScoreCache(cache *ScoreCache) ServiceOption {
	return func(s *Service) { s.cache = cache }
}

type Deps struct {
	PostVotes    PostVoteStore
	CommentVotes CommentVoteStore
	Posts        content.PostStore
	Comments     content.CommentStore
	Users        identity.UserStore
}

func NewService(deps Deps, logger *slog.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		postVotes:    deps.PostVotes,
		commentVotes: deps.CommentVotes,
		posts:        deps.Posts,
		comments:     deps.Comments,
		users:        deps.Users,
		logger:       logger,
		clock:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// VotePost casts, changes or re-casts the actor's vote on a post. Casting
// the value that is already there is a no-op success.
func (s *Service) VotePost(ctx context.Context, actor identity.Actor, postID uuid.UUID, voteType VoteType) (*PostVote, error) {
	if !voteType.IsValid() {
		return nil, dErrors.New(dErrors.KindValidation, "invalid vote type")
	}
	if err := s.guardVoter(ctx, actor.ID); err != nil {
		return nil, err
	}
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		return nil, err
	}

	existing, err := s.postVotes.Find(ctx, actor.ID, postID)
	switch {
	case err == nil:
		if existing.Type == voteType {
			return existing, nil
		}
		existing.Type = voteType
		existing.UpdatedAt = s.clock().UTC()
	case errors.Is(err, ErrVoteNotFound):
		existing = &PostVote{
			UserID:    actor.ID,
			PostID:    postID,
			Type:      voteType,
			UpdatedAt: s.clock().UTC(),
		}
	default:
		return nil, fmt.Errorf("find vote: %w", err)
	}

	if err := s.postVotes.Save(ctx, existing); err != nil {
		return nil, fmt.Errorf("save vote: %w", err)
	}
	s.refreshPostScore(ctx, postID)
	return existing, nil
}

// PostVoteOf reports the user's current vote on a post, Neutral when none.
func (s *Service) PostVoteOf(ctx context.Context, userID, postID uuid.UUID) (VoteType, error) {
	vote, err := s.postVotes.Find(ctx, userID, postID)
	if err != nil {
		if errors.Is(err, ErrVoteNotFound) {
			return Neutral, nil
		}
		return Neutral, err
	}
	return vote.Type, nil
}

// PostScore returns the post's score, through the cache when one is wired.
func (s *Service) PostScore(ctx context.Context, postID uuid.UUID) (int64, error) {
	if s.cache != nil {
		if score, err := s.cache.get(ctx, postScoreKey(postID)); err == nil {
			return score, nil
		}
	}
	score, err := s.postVotes.Score(ctx, postID)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		if err := s.cache.set(ctx, postScoreKey(postID), score); err != nil {
			s.logger.WarnContext(ctx, "score cache write failed", slog.String("error", err.Error()))
		}
	}
	return score, nil
}

// VoteComment mirrors VotePost for comments.
func (s *Service) VoteComment(ctx context.Context, actor identity.Actor, commentID uuid.UUID, voteType VoteType) (*CommentVote, error) {
	if !voteType.IsValid() {
		return nil, dErrors.New(dErrors.KindValidation, "invalid vote type")
	}
	if err := s.guardVoter(ctx, actor.ID); err != nil {
		return nil, err
	}
	if _, err := s.comments.FindByID(ctx, commentID); err != nil {
		return nil, err
	}

	existing, err := s.commentVotes.Find(ctx, actor.ID, commentID)
	switch {
	case err == nil:
		if existing.Type == voteType {
			return existing, nil
		}
		existing.Type = voteType
		existing.UpdatedAt = s.clock().UTC()
	case errors.Is(err, ErrVoteNotFound):
		existing = &CommentVote{
			UserID:    actor.ID,
			CommentID: commentID,
			Type:      voteType,
			UpdatedAt: s.clock().UTC(),
		}
	default:
		return nil, fmt.Errorf("find vote: %w", err)
	}

	if err := s.commentVotes.Save(ctx, existing); err != nil {
		return nil, fmt.Errorf("save vote: %w", err)
	}
	s.refreshCommentScore(ctx, commentID)
	return existing, nil
}

// CommentVoteOf reports the user's current vote on a comment, Neutral when
// none.
func (s *Service) CommentVoteOf(ctx context.Context, userID, commentID uuid.UUID) (VoteType, error) {
	vote, err := s.commentVotes.Find(ctx, userID, commentID)
	if err != nil {
		if errors.Is(err, ErrVoteNotFound) {
			return Neutral, nil
		}
		return Neutral, err
	}
	return vote.Type, nil
}

// CommentScore returns the comment's score, through the cache when wired.
func (s *Service) CommentScore(ctx context.Context, commentID uuid.UUID) (int64, error) {
	if s.cache != nil {
		if score, err := s.cache.get(ctx, commentScoreKey(commentID)); err == nil {
			return score, nil
		}
	}
	score, err := s.commentVotes.Score(ctx, commentID)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		if err := s.cache.set(ctx, commentScoreKey(commentID), score); err != nil {
			s.logger.WarnContext(ctx, "score cache write failed", slog.String("error", err.Error()))
		}
	}
	return score, nil
}

func (s *Service) guardVoter(ctx context.Context, userID uuid.UUID) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsBannedAt(s.clock().UTC()) {
		return dErrors.New(dErrors.KindPolicyDenied, "banned users cannot vote")
	}
	return nil
}

func (s *Service) refreshPostScore(ctx context.Context, postID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.invalidate(ctx, postScoreKey(postID)); err != nil {
		s.logger.WarnContext(ctx, "score cache invalidation failed", slog.String("error", err.Error()))
	}
}

func (s *Service) refreshCommentScore(ctx context.Context, commentID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.invalidate(ctx, commentScoreKey(commentID)); err != nil {
		s.logger.WarnContext(ctx, "score cache invalidation failed", slog.String("error", err.Error()))
	}
}
