package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"discussly/internal/content"
	"discussly/internal/platform/metrics"
	"discussly/internal/transport/http/shared"
	"discussly/pkg/codec"
	dErrors "discussly/pkg/domain-errors"
)

// ContentHandler owns posts, comments and their media attachments.
type ContentHandler struct {
	content *content.Service
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewContentHandler(svc *content.Service, m *metrics.Metrics, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{content: svc, metrics: m, logger: logger}
}

// Register registers the content routes; the caller mounts them behind auth.
func (h *ContentHandler) Register(r chi.Router) {
	r.Post("/communities/{communityID}/posts", h.handleCreatePost)
	r.Get("/communities/{communityID}/posts", h.handleListPosts)
	r.Get("/posts/{postID}", h.handleGetPost)
	r.Patch("/posts/{postID}", h.handleEditPost)
	r.Delete("/posts/{postID}", h.handleDeletePost)

	r.Post("/posts/{postID}/comments", h.handleCreateComment)
	r.Get("/posts/{postID}/comments", h.handleCommentTree)
	r.Patch("/comments/{commentID}", h.handleEditComment)
	r.Delete("/comments/{commentID}", h.handleDeleteComment)

	r.Post("/posts/{postID}/attachments", h.handleAttachToPost)
	r.Post("/comments/{commentID}/attachments", h.handleAttachToComment)
	r.Put("/attachments/{attachmentID}/order", h.handleReorderAttachment)
	r.Delete("/attachments/{attachmentID}", h.handleDetachFromPost)
}

type attachmentResponse struct {
	ID              string          `json:"id"`
	URL             string          `json:"url"`
	FileType        string          `json:"file_type"`
	MimeType        string          `json:"mime_type"`
	SizeBytes       int64           `json:"size_bytes"`
	ThumbnailURL    string          `json:"thumbnail_url,omitempty"`
	SortOrder       int             `json:"sort_order"`
	DurationSeconds *int64          `json:"duration_seconds,omitempty"`
	Metadata        json.RawMessage `json:"metadata,omitempty"`
}

func postAttachmentResponse(a *content.PostMediaAttachment) attachmentResponse {
	return attachmentResponse{
		ID:              a.ID.String(),
		URL:             a.URL,
		FileType:        string(a.FileType),
		MimeType:        a.MimeType,
		SizeBytes:       a.SizeBytes,
		ThumbnailURL:    a.ThumbnailURL,
		SortOrder:       a.SortOrder,
		DurationSeconds: a.DurationSeconds,
		Metadata:        json.RawMessage(a.Metadata),
	}
}

func commentAttachmentResponse(a *content.CommentMediaAttachment) attachmentResponse {
	return attachmentResponse{
		ID:              a.ID.String(),
		URL:             a.URL,
		FileType:        string(a.FileType),
		MimeType:        a.MimeType,
		SizeBytes:       a.SizeBytes,
		ThumbnailURL:    a.ThumbnailURL,
		SortOrder:       a.SortOrder,
		DurationSeconds: a.DurationSeconds,
		Metadata:        json.RawMessage(a.Metadata),
	}
}

type postResponse struct {
	ID          string               `json:"id"`
	CommunityID string               `json:"community_id"`
	AuthorID    string               `json:"author_id"`
	Title       string               `json:"title"`
	Content     string               `json:"content"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	IsEdited    bool                 `json:"is_edited"`
	Attachments []attachmentResponse `json:"attachments,omitempty"`
}

func toPostResponse(p *content.Post) postResponse {
	resp := postResponse{
		ID:          p.ID.String(),
		CommunityID: p.CommunityID.String(),
		AuthorID:    p.AuthorID.String(),
		Title:       p.Title,
		Content:     p.Content,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		IsEdited:    p.IsEdited(),
	}
	for _, a := range p.Attachments {
		resp.Attachments = append(resp.Attachments, postAttachmentResponse(a))
	}
	return resp
}

type commentResponse struct {
	ID              string    `json:"id"`
	PostID          string    `json:"post_id"`
	AuthorID        string    `json:"author_id"`
	ParentCommentID *string   `json:"parent_comment_id,omitempty"`
	Content         string    `json:"content"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	IsEdited        bool      `json:"is_edited"`
}

func toCommentResponse(c *content.Comment) commentResponse {
	resp := commentResponse{
		ID:        c.ID.String(),
		PostID:    c.PostID.String(),
		AuthorID:  c.AuthorID.String(),
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		IsEdited:  c.IsEdited(),
	}
	if c.ParentCommentID != nil {
		s := c.ParentCommentID.String()
		resp.ParentCommentID = &s
	}
	return resp
}

type commentTreeResponse struct {
	commentResponse
	Replies []commentTreeResponse `json:"replies,omitempty"`
}

func toCommentTreeResponse(node *content.CommentNode) commentTreeResponse {
	resp := commentTreeResponse{commentResponse: toCommentResponse(node.Comment)}
	for _, child := range node.Replies {
		resp.Replies = append(resp.Replies, toCommentTreeResponse(child))
	}
	return resp
}

func (h *ContentHandler) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	communityID, err := pathID(chi.URLParam(r, "communityID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.KindValidation, "invalid request body"))
		return
	}

	post, err := h.content.CreatePost(r.Context(), actor, communityID, req.Title, req.Content)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.metrics.PostsCreated.Inc()
	shared.WriteJSON(w, http.StatusCreated, toPostResponse(post))
}

func (h *ContentHandler) handleListPosts(w http.ResponseWriter, r *http.Request) {
	communityID, err := pathID(chi.URLParam(r, "communityID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	posts, err := h.content.ListPosts(r.Context(), communityID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	out := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPostResponse(p))
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *ContentHandler) handleGetPost(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(chi.URLParam(r, "postID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	post, err := h.content.GetPost(r.Context(), postID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toPostResponse(post))
}

func (h *ContentHandler) handleEditPost(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	postID, err := pathID(chi.URLParam(r, "postID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.KindValidation, "invalid request body"))
		return
	}

	post, err := h.content.EditPost(r.Context(), actor, postID, req.Title, req.Content)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toPostResponse(post))
}

func (h *ContentHandler) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	postID, err := pathID(chi.URLParam(r, "postID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.content.DeletePost(r.Context(), actor, postID); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ContentHandler) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	postID, err := pathID(chi.URLParam(r, "postID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req struct {
		ParentCommentID string `json:"parent_comment_id"`
		Content         string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.KindValidation, "invalid request body"))
		return
	}

	var parentID *uuid.UUID
	if req.ParentCommentID != "" {
		id, err := pathID(req.ParentCommentID)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		parentID = &id
	}

	comment, err := h.content.CreateComment(r.Context(), actor, postID, parentID, req.Content)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.metrics.CommentsCreated.Inc()
	shared.WriteJSON(w, http.StatusCreated, toCommentResponse(comment))
}

func (h *ContentHandler) handleCommentTree(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(chi.URLParam(r, "postID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	tree, err := h.content.CommentTree(r.Context(), postID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	out := make([]commentTreeResponse, 0, len(tree))
	for _, node := range tree {
		out = append(out, toCommentTreeResponse(node))
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *ContentHandler) handleEditComment(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	commentID, err := pathID(chi.URLParam(r, "commentID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.KindValidation, "invalid request body"))
		return
	}

	comment, err := h.content.EditComment(r.Context(), actor, commentID, req.Content)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toCommentResponse(comment))
}

func (h *ContentHandler) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	commentID, err := pathID(chi.URLParam(r, "commentID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.content.DeleteComment(r.Context(), actor, commentID); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type attachRequest struct {
	URL             string          `json:"url"`
	FileType        string          `json:"file_type"`
	MimeType        string          `json:"mime_type"`
	SizeBytes       int64           `json:"size_bytes"`
	ThumbnailURL    string          `json:"thumbnail_url"`
	SortOrder       int             `json:"sort_order"`
	DurationSeconds int64           `json:"duration_seconds"`
	Metadata        json.RawMessage `json:"metadata"`
}

// attachMetadata normalizes the inbound metadata object into the stored blob
// form. Absent and null both mean no metadata.
func attachMetadata(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	return codec.Encode(raw)
}

func (h *ContentHandler) handleAttachToPost(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	postID, err := pathID(chi.URLParam(r, "postID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req attachRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.KindValidation, "invalid request body"))
		return
	}
	fileType, err := content.ParseFileType(req.FileType)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	meta, err := attachMetadata(req.Metadata)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	attachment, err := h.content.AttachToPost(r.Context(), actor, postID, content.MediaInput{
		URL:             req.URL,
		FileType:        fileType,
		MimeType:        req.MimeType,
		SizeBytes:       req.SizeBytes,
		ThumbnailURL:    req.ThumbnailURL,
		DurationSeconds: req.DurationSeconds,
		SortOrder:       req.SortOrder,
		Metadata:        meta,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, postAttachmentResponse(attachment))
}

func (h *ContentHandler) handleAttachToComment(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	commentID, err := pathID(chi.URLParam(r, "commentID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req attachRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.KindValidation, "invalid request body"))
		return
	}
	fileType, err := content.ParseFileType(req.FileType)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	meta, err := attachMetadata(req.Metadata)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	attachment, err := h.content.AttachToComment(r.Context(), actor, commentID, content.MediaInput{
		URL:             req.URL,
		FileType:        fileType,
		MimeType:        req.MimeType,
		SizeBytes:       req.SizeBytes,
		ThumbnailURL:    req.ThumbnailURL,
		DurationSeconds: req.DurationSeconds,
		SortOrder:       req.SortOrder,
		Metadata:        meta,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, commentAttachmentResponse(attachment))
}

func (h *ContentHandler) handleReorderAttachment(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	attachmentID, err := pathID(chi.URLParam(r, "attachmentID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req struct {
		SortOrder int `json:"sort_order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.KindValidation, "invalid request body"))
		return
	}

	attachment, err := h.content.ReorderPostAttachment(r.Context(), actor, attachmentID, req.SortOrder)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, postAttachmentResponse(attachment))
}

func (h *ContentHandler) handleDetachFromPost(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	attachmentID, err := pathID(chi.URLParam(r, "attachmentID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.content.DetachFromPost(r.Context(), actor, attachmentID); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
