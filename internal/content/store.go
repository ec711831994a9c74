package content

import (
	"context"

	"github.com/google/uuid"

	dErrors "discussly/pkg/domain-errors"
)

var (
	ErrPostNotFound       = dErrors.New(dErrors.KindNotFound, "post not found")
	ErrCommentNotFound    = dErrors.New(dErrors.KindNotFound, "comment not found")
	ErrAttachmentNotFound = dErrors.New(dErrors.KindNotFound, "attachment not found")
)

// Stores return bare entities; the service composes attachments onto their
// parents when a full view is needed.
type PostStore interface {
	Save(ctx context.Context, post *Post) error
	FindByID(ctx context.Context, id uuid.UUID) (*Post, error)
	ListByCommunity(ctx context.Context, communityID uuid.UUID) ([]*Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CommentStore interface {
	Save(ctx context.Context, comment *Comment) error
	FindByID(ctx context.Context, id uuid.UUID) (*Comment, error)
	ListByPost(ctx context.Context, postID uuid.UUID) ([]*Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Attachment listings come back ordered by sort order, then creation time.
type PostAttachmentStore interface {
	Save(ctx context.Context, attachment *PostMediaAttachment) error
	FindByID(ctx context.Context, id uuid.UUID) (*PostMediaAttachment, error)
	ListByPost(ctx context.Context, postID uuid.UUID) ([]*PostMediaAttachment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CommentAttachmentStore interface {
	Save(ctx context.Context, attachment *CommentMediaAttachment) error
	FindByID(ctx context.Context, id uuid.UUID) (*CommentMediaAttachment, error)
	ListByComment(ctx context.Context, commentID uuid.UUID) ([]*CommentMediaAttachment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
