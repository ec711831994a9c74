// Package content holds posts, comments and their media attachments.
// Entities validate their own bounds; cross-entity rules (ban checks,
// community visibility, attachment ownership) live in the service.
package content

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"discussly/pkg/codec"
	dErrors "discussly/pkg/domain-errors"
	"discussly/pkg/outcome"
	"discussly/pkg/validate"
)

const (
	TitleMinLength    = 3
	TitleMaxLength    = 300
	PostContentMax    = 40000
	CommentContentMin = 1
	CommentContentMax = 1000
	MediaURLMaxLength = 2000
	MaxFileSizeBytes  = 100 * 1024 * 1024
)

// editGrace is the slack between creation and update stamps below which a
// post or comment does not count as edited. Storage round-trips can nudge
// the timestamps apart by less than this.
const editGrace = time.Second

type Post struct {
	ID          uuid.UUID
	CommunityID uuid.UUID
	AuthorID    uuid.UUID
	Title       string
	Content     string // empty allowed
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Attachments []*PostMediaAttachment
}

// NewPost validates and constructs a post. Content may be empty; media-only
// posts are a thing. now is the caller's clock so creation and later edits
// share one time source.
func NewPost(communityID, authorID uuid.UUID, title, content string, now time.Time) outcome.Of[*Post] {
	v := validate.LengthBetween("title", title, TitleMinLength, TitleMaxLength).
		Combine(validate.MaxLen("content", content, PostContentMax))
	if v.IsFailure() {
		return outcome.RejectErr[*Post](v.Err())
	}

	now = now.UTC()
	return outcome.Value(&Post{
		ID:          uuid.New(),
		CommunityID: communityID,
		AuthorID:    authorID,
		Title:       strings.TrimSpace(title),
		Content:     strings.TrimSpace(content),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// UpdateTitle revalidates the title and stamps the edit time. On failure the
// post is untouched, timestamp included.
func (p *Post) UpdateTitle(title string, now time.Time) outcome.Outcome {
	if v := validate.LengthBetween("title", title, TitleMinLength, TitleMaxLength); v.IsFailure() {
		return v
	}
	p.Title = strings.TrimSpace(title)
	p.UpdatedAt = now.UTC()
	return outcome.Success()
}

// UpdateContent revalidates the content and stamps the edit time.
func (p *Post) UpdateContent(content string, now time.Time) outcome.Outcome {
	if v := validate.MaxLen("content", content, PostContentMax); v.IsFailure() {
		return v
	}
	p.Content = strings.TrimSpace(content)
	p.UpdatedAt = now.UTC()
	return outcome.Success()
}

// IsEdited reports whether the post was changed after creation, ignoring the
// grace window.
func (p *Post) IsEdited() bool {
	return p.UpdatedAt.After(p.CreatedAt.Add(editGrace))
}

type Comment struct {
	ID              uuid.UUID
	PostID          uuid.UUID
	AuthorID        uuid.UUID
	ParentCommentID *uuid.UUID // nil for top-level comments
	Content         string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Attachments     []*CommentMediaAttachment
}

// NewComment validates and constructs a comment. parentCommentID is nil for
// top-level comments; reply integrity is checked by the service.
func NewComment(postID, authorID uuid.UUID, parentCommentID *uuid.UUID, content string, now time.Time) outcome.Of[*Comment] {
	if v := validate.LengthBetween("comment", content, CommentContentMin, CommentContentMax); v.IsFailure() {
		return outcome.RejectErr[*Comment](v.Err())
	}

	now = now.UTC()
	return outcome.Value(&Comment{
		ID:              uuid.New(),
		PostID:          postID,
		AuthorID:        authorID,
		ParentCommentID: parentCommentID,
		Content:         strings.TrimSpace(content),
		CreatedAt:       now,
		UpdatedAt:       now,
	})
}

// UpdateContentText revalidates the content and stamps the edit time.
func (c *Comment) UpdateContentText(content string, now time.Time) outcome.Outcome {
	if v := validate.LengthBetween("comment", content, CommentContentMin, CommentContentMax); v.IsFailure() {
		return v
	}
	c.Content = strings.TrimSpace(content)
	c.UpdatedAt = now.UTC()
	return outcome.Success()
}

// IsEdited reports whether the comment was changed after creation.
func (c *Comment) IsEdited() bool {
	return c.UpdatedAt.After(c.CreatedAt.Add(editGrace))
}

// FileType classifies an attachment's payload.
type FileType string

const (
	FileTypeImage    FileType = "image"
	FileTypeVideo    FileType = "video"
	FileTypeAudio    FileType = "audio"
	FileTypeDocument FileType = "document"
)

// ParseFileType constructs a FileType from external input.
func ParseFileType(s string) (FileType, error) {
	switch FileType(s) {
	case FileTypeImage, FileTypeVideo, FileTypeAudio, FileTypeDocument:
		return FileType(s), nil
	}
	return "", dErrors.New(dErrors.KindValidation, "invalid file type")
}

// media is the shared shape of post and comment attachments.
type media struct {
	ID              uuid.UUID
	URL             string
	FileType        FileType
	MimeType        string
	SizeBytes       int64
	ThumbnailURL    string // "" means none
	SortOrder       int
	DurationSeconds *int64 // nil for non-timed media
	Metadata        string // opaque blob, see pkg/codec
	CreatedAt       time.Time
}

// MediaInput carries the caller-supplied attachment fields. A non-positive
// DurationSeconds is stored as absent; ThumbnailURL may be empty.
type MediaInput struct {
	URL             string
	FileType        FileType
	MimeType        string
	SizeBytes       int64
	ThumbnailURL    string
	DurationSeconds int64
	SortOrder       int
	Metadata        string
}

func newMedia(in MediaInput) outcome.Of[media] {
	v := validate.NotBlank("media URL", in.URL).
		Combine(validate.MaxLen("media URL", in.URL, MediaURLMaxLength)).
		Combine(validate.AbsoluteHTTPURL("media URL", in.URL)).
		Combine(validate.NotBlank("MIME type", in.MimeType)).
		Combine(validateFileSize(in.SizeBytes)).
		Combine(validate.NonNegative("sort order", in.SortOrder))
	if v.IsFailure() {
		return outcome.RejectErr[media](v.Err())
	}
	if _, err := ParseFileType(string(in.FileType)); err != nil {
		return outcome.Reject[media](dErrors.KindValidation, "invalid file type")
	}
	thumbnail := strings.TrimSpace(in.ThumbnailURL)
	if thumbnail != "" {
		v := validate.MaxLen("thumbnail URL", thumbnail, MediaURLMaxLength).
			Combine(validate.AbsoluteHTTPURL("thumbnail URL", thumbnail))
		if v.IsFailure() {
			return outcome.RejectErr[media](v.Err())
		}
	}
	metadata := strings.TrimSpace(in.Metadata)
	if metadata != "" {
		// The blob stays opaque to the entity, but it must at least decode
		// as a JSON object so readers can rely on the shape.
		if res := codec.Decode[map[string]any](metadata); res.IsFailure() {
			return outcome.RejectErr[media](res.Err())
		}
	}

	m := media{
		ID:           uuid.New(),
		URL:          strings.TrimSpace(in.URL),
		FileType:     in.FileType,
		MimeType:     strings.TrimSpace(in.MimeType),
		SizeBytes:    in.SizeBytes,
		ThumbnailURL: thumbnail,
		SortOrder:    in.SortOrder,
		Metadata:     metadata,
		CreatedAt:    time.Now().UTC(),
	}
	// A duration that makes no sense is simply absent, not an error.
	if in.DurationSeconds > 0 {
		d := in.DurationSeconds
		m.DurationSeconds = &d
	}
	return outcome.Value(m)
}

func validateFileSize(sizeBytes int64) outcome.Outcome {
	if sizeBytes <= 0 {
		return outcome.Failure(dErrors.KindValidation, "file size must be positive")
	}
	if sizeBytes > MaxFileSizeBytes {
		return outcome.Failure(dErrors.KindValidation, "file size must not exceed 100MB")
	}
	return outcome.Success()
}

func (m *media) changeSortOrder(sortOrder int) outcome.Outcome {
	if v := validate.NonNegative("sort order", sortOrder); v.IsFailure() {
		return v
	}
	m.SortOrder = sortOrder
	return outcome.Success()
}

type PostMediaAttachment struct {
	media
	PostID uuid.UUID
}

// NewPostMediaAttachment validates and constructs a post attachment.
func NewPostMediaAttachment(postID uuid.UUID, in MediaInput) outcome.Of[*PostMediaAttachment] {
	res := newMedia(in)
	if res.IsFailure() {
		return outcome.RejectErr[*PostMediaAttachment](res.Err())
	}
	return outcome.Value(&PostMediaAttachment{media: res.MustValue(), PostID: postID})
}

// ChangeSortOrder revalidates and moves the attachment within its post.
func (a *PostMediaAttachment) ChangeSortOrder(sortOrder int) outcome.Outcome {
	return a.changeSortOrder(sortOrder)
}

type CommentMediaAttachment struct {
	media
	CommentID uuid.UUID
}

// NewCommentMediaAttachment validates and constructs a comment attachment.
func NewCommentMediaAttachment(commentID uuid.UUID, in MediaInput) outcome.Of[*CommentMediaAttachment] {
	res := newMedia(in)
	if res.IsFailure() {
		return outcome.RejectErr[*CommentMediaAttachment](res.Err())
	}
	return outcome.Value(&CommentMediaAttachment{media: res.MustValue(), CommentID: commentID})
}

// ChangeSortOrder revalidates and moves the attachment within its comment.
func (a *CommentMediaAttachment) ChangeSortOrder(sortOrder int) outcome.Outcome {
	return a.changeSortOrder(sortOrder)
}
