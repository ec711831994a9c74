// Package voting holds per-user votes on posts and comments. A vote is one
// row per (voter, target) pair; casting again replaces the value. Scores are
// never stored on the target, they are recomputed from the rows.
package voting

import (
	"time"

	"github.com/google/uuid"

	dErrors "discussly/pkg/domain-errors"
)

// VoteType is the value of one vote. The numeric values are what a score sum
// adds up.
type VoteType int

const (
	Downvote VoteType = -1
	Neutral  VoteType = 0
	Upvote   VoteType = 1
)

func (v VoteType) String() string {
	switch v {
	case Downvote:
		return "downvote"
	case Neutral:
		return "neutral"
	case Upvote:
		return "upvote"
	}
	return "unknown"
}

// IsValid reports whether v is one of the three defined values.
func (v VoteType) IsValid() bool {
	return v == Downvote || v == Neutral || v == Upvote
}

// ParseVoteType constructs a VoteType from external input.
func ParseVoteType(s string) (VoteType, error) {
	switch s {
	case "downvote":
		return Downvote, nil
	case "neutral":
		return Neutral, nil
	case "upvote":
		return Upvote, nil
	}
	return Neutral, dErrors.New(dErrors.KindValidation, "invalid vote type")
}

// PostVote is one user's current vote on one post.
type PostVote struct {
	UserID    uuid.UUID
	PostID    uuid.UUID
	Type      VoteType
	UpdatedAt time.Time
}

// CommentVote is one user's current vote on one comment.
type CommentVote struct {
	UserID    uuid.UUID
	CommentID uuid.UUID
	Type      VoteType
	UpdatedAt time.Time
}
