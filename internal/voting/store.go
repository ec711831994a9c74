package voting

import (
	"context"

	"github.com/google/uuid"

	dErrors "discussly/pkg/domain-errors"
)

var ErrVoteNotFound = dErrors.New(dErrors.KindNotFound, "vote not found")

// PostVoteStore persists votes keyed by the (user, post) pair. Save is an
// upsert; the pair can only ever have one row.
type PostVoteStore interface {
	Save(ctx context.Context, vote *PostVote) error
	Find(ctx context.Context, userID, postID uuid.UUID) (*PostVote, error)
	// Score sums all vote values for the post.
	Score(ctx context.Context, postID uuid.UUID) (int64, error)
}

type CommentVoteStore interface {
	Save(ctx context.Context, vote *CommentVote) error
	Find(ctx context.Context, userID, commentID uuid.UUID) (*CommentVote, error)
	Score(ctx context.Context, commentID uuid.UUID) (int64, error)
}
