package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"discussly/internal/community"
	"discussly/internal/identity"
	dErrors "discussly/pkg/domain-errors"
)

// Service owns post and comment lifecycle. Writes go through three gates:
// the author must not be banned, the community must be visible to them, and
// user-supplied markup is sanitized before it ever reaches an entity.
type Service struct {
	posts              PostStore
	comments           CommentStore
	postAttachments    PostAttachmentStore
	commentAttachments CommentAttachmentStore
	users              identity.UserStore
	communities        community.CommunityStore
	subs               community.SubscriptionStore
	sanitizer          *bluemonday.Policy
	logger             *slog.Logger
	clock              func() time.Time
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

type Deps struct {
	Posts              PostStore
	Comments           CommentStore
	PostAttachments    PostAttachmentStore
	CommentAttachments CommentAttachmentStore
	Users              identity.UserStore
	Communities        community.CommunityStore
	Subscriptions      community.SubscriptionStore
}

func NewService(deps Deps, logger *slog.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		posts:              deps.Posts,
		comments:           deps.Comments,
		postAttachments:    deps.PostAttachments,
		commentAttachments: deps.CommentAttachments,
		users:              deps.Users,
		communities:        deps.Communities,
		subs:               deps.Subscriptions,
		sanitizer:          bluemonday.UGCPolicy(),
		logger:             logger,
		clock:              time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreatePost publishes a post into a community the actor can see.
func (s *Service) CreatePost(ctx context.Context, actor identity.Actor, communityID uuid.UUID, title, content string) (*Post, error) {
	if err := s.guardAuthor(ctx, actor, communityID); err != nil {
		return nil, err
	}

	res := NewPost(communityID, actor.ID, title, s.sanitizer.Sanitize(content), s.clock())
	if res.IsFailure() {
		return nil, res.Err()
	}
	post := res.MustValue()

	if err := s.posts.Save(ctx, post); err != nil {
		return nil, fmt.Errorf("save post: %w", err)
	}
	s.logger.InfoContext(ctx, "post created",
		slog.String("post_id", post.ID.String()),
		slog.String("community_id", communityID.String()))
	return post, nil
}

// GetPost returns the post with its attachments in display order.
func (s *Service) GetPost(ctx context.Context, id uuid.UUID) (*Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	attachments, err := s.postAttachments.ListByPost(ctx, id)
	if err != nil {
		return nil, err
	}
	post.Attachments = attachments
	return post, nil
}

// ListPosts returns a community's posts, newest first.
func (s *Service) ListPosts(ctx context.Context, communityID uuid.UUID) ([]*Post, error) {
	if _, err := s.communities.FindByID(ctx, communityID); err != nil {
		return nil, err
	}
	return s.posts.ListByCommunity(ctx, communityID)
}

// EditPost updates title and content together; nothing changes when either
// part fails validation. Author only.
func (s *Service) EditPost(ctx context.Context, actor identity.Actor, postID uuid.UUID, title, content string) (*Post, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actor.ID {
		return nil, dErrors.New(dErrors.KindPolicyDenied, "only the author can edit a post")
	}
	if err := s.guardNotBanned(ctx, actor.ID); err != nil {
		return nil, err
	}

	draft := *post
	now := s.clock()
	v := draft.UpdateTitle(title, now).
		Combine(draft.UpdateContent(s.sanitizer.Sanitize(content), now))
	if v.IsFailure() {
		return nil, v.Err()
	}

	if err := s.posts.Save(ctx, &draft); err != nil {
		return nil, fmt.Errorf("save post: %w", err)
	}
	return &draft, nil
}

// DeletePost removes a post. Author, platform moderators and up.
func (s *Service) DeletePost(ctx context.Context, actor identity.Actor, postID uuid.UUID) error {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != actor.ID && !actor.Role.AtLeast(identity.RoleModerator) {
		return dErrors.New(dErrors.KindPolicyDenied, "cannot delete another user's post")
	}
	return s.posts.Delete(ctx, postID)
}

// CreateComment adds a comment, optionally as a reply. A reply's parent must
// exist and belong to the same post.
func (s *Service) CreateComment(ctx context.Context, actor identity.Actor, postID uuid.UUID, parentCommentID *uuid.UUID, content string) (*Comment, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.guardAuthor(ctx, actor, post.CommunityID); err != nil {
		return nil, err
	}
	if parentCommentID != nil {
		parent, err := s.comments.FindByID(ctx, *parentCommentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != postID {
			return nil, dErrors.New(dErrors.KindValidation, "parent comment belongs to a different post")
		}
	}

	res := NewComment(postID, actor.ID, parentCommentID, s.sanitizer.Sanitize(content), s.clock())
	if res.IsFailure() {
		return nil, res.Err()
	}
	comment := res.MustValue()

	if err := s.comments.Save(ctx, comment); err != nil {
		return nil, fmt.Errorf("save comment: %w", err)
	}
	return comment, nil
}

// EditComment updates the comment text. Author only.
func (s *Service) EditComment(ctx context.Context, actor identity.Actor, commentID uuid.UUID, content string) (*Comment, error) {
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != actor.ID {
		return nil, dErrors.New(dErrors.KindPolicyDenied, "only the author can edit a comment")
	}
	if err := s.guardNotBanned(ctx, actor.ID); err != nil {
		return nil, err
	}

	if v := comment.UpdateContentText(s.sanitizer.Sanitize(content), s.clock()); v.IsFailure() {
		return nil, v.Err()
	}
	if err := s.comments.Save(ctx, comment); err != nil {
		return nil, fmt.Errorf("save comment: %w", err)
	}
	return comment, nil
}

// DeleteComment removes a comment. Author, platform moderators and up.
func (s *Service) DeleteComment(ctx context.Context, actor identity.Actor, commentID uuid.UUID) error {
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != actor.ID && !actor.Role.AtLeast(identity.RoleModerator) {
		return dErrors.New(dErrors.KindPolicyDenied, "cannot delete another user's comment")
	}
	return s.comments.Delete(ctx, commentID)
}

// CommentNode is one comment with its direct replies, oldest first.
type CommentNode struct {
	Comment *Comment
	Replies []*CommentNode
}

// CommentTree loads all of a post's comments and assembles the reply tree.
// Replies whose parent is gone surface as top-level so they are never lost.
func (s *Service) CommentTree(ctx context.Context, postID uuid.UUID) ([]*CommentNode, error) {
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	nodes := make(map[uuid.UUID]*CommentNode, len(comments))
	for _, c := range comments {
		nodes[c.ID] = &CommentNode{Comment: c}
	}

	var roots []*CommentNode
	for _, c := range comments {
		node := nodes[c.ID]
		if c.ParentCommentID == nil {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[*c.ParentCommentID]; ok {
			parent.Replies = append(parent.Replies, node)
		} else {
			roots = append(roots, node)
		}
	}
	return roots, nil
}

// AttachToPost adds a media attachment to the actor's own post.
func (s *Service) AttachToPost(ctx context.Context, actor identity.Actor, postID uuid.UUID, in MediaInput) (*PostMediaAttachment, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actor.ID {
		return nil, dErrors.New(dErrors.KindPolicyDenied, "only the author can attach media")
	}

	res := NewPostMediaAttachment(postID, in)
	if res.IsFailure() {
		return nil, res.Err()
	}
	attachment := res.MustValue()
	if err := s.postAttachments.Save(ctx, attachment); err != nil {
		return nil, fmt.Errorf("save attachment: %w", err)
	}
	return attachment, nil
}

// AttachToComment adds a media attachment to the actor's own comment.
func (s *Service) AttachToComment(ctx context.Context, actor identity.Actor, commentID uuid.UUID, in MediaInput) (*CommentMediaAttachment, error) {
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != actor.ID {
		return nil, dErrors.New(dErrors.KindPolicyDenied, "only the author can attach media")
	}

	res := NewCommentMediaAttachment(commentID, in)
	if res.IsFailure() {
		return nil, res.Err()
	}
	attachment := res.MustValue()
	if err := s.commentAttachments.Save(ctx, attachment); err != nil {
		return nil, fmt.Errorf("save attachment: %w", err)
	}
	return attachment, nil
}

// ReorderPostAttachment moves an attachment within its post.
func (s *Service) ReorderPostAttachment(ctx context.Context, actor identity.Actor, attachmentID uuid.UUID, sortOrder int) (*PostMediaAttachment, error) {
	attachment, err := s.postAttachments.FindByID(ctx, attachmentID)
	if err != nil {
		return nil, err
	}
	post, err := s.posts.FindByID(ctx, attachment.PostID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actor.ID {
		return nil, dErrors.New(dErrors.KindPolicyDenied, "only the author can reorder attachments")
	}

	if v := attachment.ChangeSortOrder(sortOrder); v.IsFailure() {
		return nil, v.Err()
	}
	if err := s.postAttachments.Save(ctx, attachment); err != nil {
		return nil, fmt.Errorf("save attachment: %w", err)
	}
	return attachment, nil
}

// DetachFromPost removes an attachment from the actor's own post.
func (s *Service) DetachFromPost(ctx context.Context, actor identity.Actor, attachmentID uuid.UUID) error {
	attachment, err := s.postAttachments.FindByID(ctx, attachmentID)
	if err != nil {
		return err
	}
	post, err := s.posts.FindByID(ctx, attachment.PostID)
	if err != nil {
		return err
	}
	if post.AuthorID != actor.ID && !actor.Role.AtLeast(identity.RoleModerator) {
		return dErrors.New(dErrors.KindPolicyDenied, "cannot remove another user's attachment")
	}
	return s.postAttachments.Delete(ctx, attachmentID)
}

func (s *Service) guardAuthor(ctx context.Context, actor identity.Actor, communityID uuid.UUID) error {
	if err := s.guardNotBanned(ctx, actor.ID); err != nil {
		return err
	}
	target, err := s.communities.FindByID(ctx, communityID)
	if err != nil {
		return err
	}
	if target.IsPrivate {
		if _, err := s.subs.Find(ctx, actor.ID, communityID); err != nil {
			if errors.Is(err, community.ErrSubscriptionNotFound) {
				return dErrors.New(dErrors.KindPolicyDenied, "this community is private")
			}
			return err
		}
	}
	return nil
}

func (s *Service) guardNotBanned(ctx context.Context, userID uuid.UUID) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsBannedAt(s.clock().UTC()) {
		return dErrors.New(dErrors.KindPolicyDenied, "banned users cannot post content")
	}
	return nil
}
