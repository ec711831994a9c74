package content

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type InMemoryPostStore struct {
	mu    sync.RWMutex
	posts map[uuid.UUID]*Post
}

func NewInMemoryPostStore() *InMemoryPostStore {
	return &InMemoryPostStore{posts: make(map[uuid.UUID]*Post)}
}

func clonePost(p *Post) *Post {
	c := *p
	c.Attachments = nil
	return &c
}

func (s *InMemoryPostStore) Save(_ context.Context, post *Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[post.ID] = clonePost(post)
	return nil
}

func (s *InMemoryPostStore) FindByID(_ context.Context, id uuid.UUID) (*Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.posts[id]; ok {
		return clonePost(p), nil
	}
	return nil, ErrPostNotFound
}

func (s *InMemoryPostStore) ListByCommunity(_ context.Context, communityID uuid.UUID) ([]*Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Post
	for _, p := range s.posts {
		if p.CommunityID == communityID {
			out = append(out, clonePost(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryPostStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return ErrPostNotFound
	}
	delete(s.posts, id)
	return nil
}

type InMemoryCommentStore struct {
	mu       sync.RWMutex
	comments map[uuid.UUID]*Comment
}

func NewInMemoryCommentStore() *InMemoryCommentStore {
	return &InMemoryCommentStore{comments: make(map[uuid.UUID]*Comment)}
}

func cloneComment(c *Comment) *Comment {
	clone := *c
	clone.Attachments = nil
	if c.ParentCommentID != nil {
		id := *c.ParentCommentID
		clone.ParentCommentID = &id
	}
	return &clone
}

func (s *InMemoryCommentStore) Save(_ context.Context, comment *Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments[comment.ID] = cloneComment(comment)
	return nil
}

func (s *InMemoryCommentStore) FindByID(_ context.Context, id uuid.UUID) (*Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.comments[id]; ok {
		return cloneComment(c), nil
	}
	return nil, ErrCommentNotFound
}

func (s *InMemoryCommentStore) ListByPost(_ context.Context, postID uuid.UUID) ([]*Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Comment
	for _, c := range s.comments {
		if c.PostID == postID {
			out = append(out, cloneComment(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryCommentStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return ErrCommentNotFound
	}
	delete(s.comments, id)
	return nil
}

type InMemoryPostAttachmentStore struct {
	mu          sync.RWMutex
	attachments map[uuid.UUID]*PostMediaAttachment
}

func NewInMemoryPostAttachmentStore() *InMemoryPostAttachmentStore {
	return &InMemoryPostAttachmentStore{attachments: make(map[uuid.UUID]*PostMediaAttachment)}
}

func clonePostAttachment(a *PostMediaAttachment) *PostMediaAttachment {
	c := *a
	if a.DurationSeconds != nil {
		d := *a.DurationSeconds
		c.DurationSeconds = &d
	}
	return &c
}

func (s *InMemoryPostAttachmentStore) Save(_ context.Context, attachment *PostMediaAttachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attachments[attachment.ID] = clonePostAttachment(attachment)
	return nil
}

func (s *InMemoryPostAttachmentStore) FindByID(_ context.Context, id uuid.UUID) (*PostMediaAttachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.attachments[id]; ok {
		return clonePostAttachment(a), nil
	}
	return nil, ErrAttachmentNotFound
}

func (s *InMemoryPostAttachmentStore) ListByPost(_ context.Context, postID uuid.UUID) ([]*PostMediaAttachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*PostMediaAttachment
	for _, a := range s.attachments {
		if a.PostID == postID {
			out = append(out, clonePostAttachment(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryPostAttachmentStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.attachments[id]; !ok {
		return ErrAttachmentNotFound
	}
	delete(s.attachments, id)
	return nil
}

type InMemoryCommentAttachmentStore struct {
	mu          sync.RWMutex
	attachments map[uuid.UUID]*CommentMediaAttachment
}

func NewInMemoryCommentAttachmentStore() *InMemoryCommentAttachmentStore {
	return &InMemoryCommentAttachmentStore{attachments: make(map[uuid.UUID]*CommentMediaAttachment)}
}

func cloneCommentAttachment(a *CommentMediaAttachment) *CommentMediaAttachment {
	c := *a
	if a.DurationSeconds != nil {
		d := *a.DurationSeconds
		c.DurationSeconds = &d
	}
	return &c
}

func (s *InMemoryCommentAttachmentStore) Save(_ context.Context, attachment *CommentMediaAttachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attachments[attachment.ID] = cloneCommentAttachment(attachment)
	return nil
}

func (s *InMemoryCommentAttachmentStore) FindByID(_ context.Context, id uuid.UUID) (*CommentMediaAttachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.attachments[id]; ok {
		return cloneCommentAttachment(a), nil
	}
	return nil, ErrAttachmentNotFound
}

func (s *InMemoryCommentAttachmentStore) ListByComment(_ context.Context, commentID uuid.UUID) ([]*CommentMediaAttachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*CommentMediaAttachment
	for _, a := range s.attachments {
		if a.CommentID == commentID {
			out = append(out, cloneCommentAttachment(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryCommentAttachmentStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.attachments[id]; !ok {
		return ErrAttachmentNotFound
	}
	delete(s.attachments, id)
	return nil
}
