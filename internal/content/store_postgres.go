package content

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

type PostgresPostStore struct {
	db *sql.DB
}

func NewPostgresPostStore(db *sql.DB) *PostgresPostStore {
	return &PostgresPostStore{db: db}
}

func (s *PostgresPostStore) Save(ctx context.Context, post *Post) error {
	query := `
		INSERT INTO posts (id, community_id, author_id, title, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		post.ID, post.CommunityID, post.AuthorID, post.Title, post.Content,
		post.CreatedAt, post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save post: %w", err)
	}
	return nil
}

func (s *PostgresPostStore) FindByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	query := `
		SELECT id, community_id, author_id, title, content, created_at, updated_at
		FROM posts
		WHERE id = $1
	`
	var p Post
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.CommunityID, &p.AuthorID, &p.Title, &p.Content, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}
	return &p, nil
}

func (s *PostgresPostStore) ListByCommunity(ctx context.Context, communityID uuid.UUID) ([]*Post, error) {
	query := `
		SELECT id, community_id, author_id, title, content, created_at, updated_at
		FROM posts
		WHERE community_id = $1
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, communityID)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var out []*Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.CommunityID, &p.AuthorID, &p.Title, &p.Content, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (s *PostgresPostStore) Delete(ctx context.Context, id uuid.UUID) error {
	// Comments, attachments and votes cascade via foreign keys.
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if affected == 0 {
		return ErrPostNotFound
	}
	return nil
}

type PostgresCommentStore struct {
	db *sql.DB
}

func NewPostgresCommentStore(db *sql.DB) *PostgresCommentStore {
	return &PostgresCommentStore{db: db}
}

func (s *PostgresCommentStore) Save(ctx context.Context, comment *Comment) error {
	query := `
		INSERT INTO comments (id, post_id, author_id, parent_comment_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		comment.ID, comment.PostID, comment.AuthorID, comment.ParentCommentID,
		comment.Content, comment.CreatedAt, comment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save comment: %w", err)
	}
	return nil
}

func (s *PostgresCommentStore) FindByID(ctx context.Context, id uuid.UUID) (*Comment, error) {
	query := `
		SELECT id, post_id, author_id, parent_comment_id, content, created_at, updated_at
		FROM comments
		WHERE id = $1
	`
	var c Comment
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.PostID, &c.AuthorID, &c.ParentCommentID, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("scan comment: %w", err)
	}
	return &c, nil
}

func (s *PostgresCommentStore) ListByPost(ctx context.Context, postID uuid.UUID) ([]*Comment, error) {
	query := `
		SELECT id, post_id, author_id, parent_comment_id, content, created_at, updated_at
		FROM comments
		WHERE post_id = $1
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var out []*Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.ParentCommentID, &c.Content, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (s *PostgresCommentStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if affected == 0 {
		return ErrCommentNotFound
	}
	return nil
}

type PostgresPostAttachmentStore struct {
	db *sql.DB
}

func NewPostgresPostAttachmentStore(db *sql.DB) *PostgresPostAttachmentStore {
	return &PostgresPostAttachmentStore{db: db}
}

func (s *PostgresPostAttachmentStore) Save(ctx context.Context, a *PostMediaAttachment) error {
	query := `
		INSERT INTO post_attachments (id, post_id, url, file_type, mime_type, size_bytes, thumbnail_url, sort_order, duration_seconds, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			sort_order = EXCLUDED.sort_order,
			metadata = EXCLUDED.metadata
	`
	_, err := s.db.ExecContext(ctx, query,
		a.ID, a.PostID, a.URL, string(a.FileType), a.MimeType, a.SizeBytes, a.ThumbnailURL, a.SortOrder,
		a.DurationSeconds, a.Metadata, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("save post attachment: %w", err)
	}
	return nil
}

func (s *PostgresPostAttachmentStore) FindByID(ctx context.Context, id uuid.UUID) (*PostMediaAttachment, error) {
	query := `
		SELECT id, post_id, url, file_type, mime_type, size_bytes, thumbnail_url, sort_order, duration_seconds, metadata, created_at
		FROM post_attachments
		WHERE id = $1
	`
	var (
		a        PostMediaAttachment
		fileType string
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.PostID, &a.URL, &fileType, &a.MimeType, &a.SizeBytes, &a.ThumbnailURL, &a.SortOrder,
		&a.DurationSeconds, &a.Metadata, &a.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAttachmentNotFound
		}
		return nil, fmt.Errorf("scan post attachment: %w", err)
	}
	a.FileType = FileType(fileType)
	return &a, nil
}

func (s *PostgresPostAttachmentStore) ListByPost(ctx context.Context, postID uuid.UUID) ([]*PostMediaAttachment, error) {
	query := `
		SELECT id, post_id, url, file_type, mime_type, size_bytes, thumbnail_url, sort_order, duration_seconds, metadata, created_at
		FROM post_attachments
		WHERE post_id = $1
		ORDER BY sort_order, created_at
	`
	rows, err := s.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("list post attachments: %w", err)
	}
	defer rows.Close()

	var out []*PostMediaAttachment
	for rows.Next() {
		var (
			a        PostMediaAttachment
			fileType string
		)
		if err := rows.Scan(&a.ID, &a.PostID, &a.URL, &fileType, &a.MimeType, &a.SizeBytes, &a.ThumbnailURL, &a.SortOrder,
			&a.DurationSeconds, &a.Metadata, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan post attachment: %w", err)
		}
		a.FileType = FileType(fileType)
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (s *PostgresPostAttachmentStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM post_attachments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post attachment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete post attachment: %w", err)
	}
	if affected == 0 {
		return ErrAttachmentNotFound
	}
	return nil
}

type PostgresCommentAttachmentStore struct {
	db *sql.DB
}

func NewPostgresCommentAttachmentStore(db *sql.DB) *PostgresCommentAttachmentStore {
	return &PostgresCommentAttachmentStore{db: db}
}

func (s *PostgresCommentAttachmentStore) Save(ctx context.Context, a *CommentMediaAttachment) error {
	query := `
		INSERT INTO comment_attachments (id, comment_id, url, file_type, mime_type, size_bytes, thumbnail_url, sort_order, duration_seconds, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			sort_order = EXCLUDED.sort_order,
			metadata = EXCLUDED.metadata
	`
	_, err := s.db.ExecContext(ctx, query,
		a.ID, a.CommentID, a.URL, string(a.FileType), a.MimeType, a.SizeBytes, a.ThumbnailURL, a.SortOrder,
		a.DurationSeconds, a.Metadata, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("save comment attachment: %w", err)
	}
	return nil
}

func (s *PostgresCommentAttachmentStore) FindByID(ctx context.Context, id uuid.UUID) (*CommentMediaAttachment, error) {
	query := `
		SELECT id, comment_id, url, file_type, mime_type, size_bytes, thumbnail_url, sort_order, duration_seconds, metadata, created_at
		FROM comment_attachments
		WHERE id = $1
	`
	var (
		a        CommentMediaAttachment
		fileType string
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.CommentID, &a.URL, &fileType, &a.MimeType, &a.SizeBytes, &a.ThumbnailURL, &a.SortOrder,
		&a.DurationSeconds, &a.Metadata, &a.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAttachmentNotFound
		}
		return nil, fmt.Errorf("scan comment attachment: %w", err)
	}
	a.FileType = FileType(fileType)
	return &a, nil
}

func (s *PostgresCommentAttachmentStore) ListByComment(ctx context.Context, commentID uuid.UUID) ([]*CommentMediaAttachment, error) {
	query := `
		SELECT id, comment_id, url, file_type, mime_type, size_bytes, thumbnail_url, sort_order, duration_seconds, metadata, created_at
		FROM comment_attachments
		WHERE comment_id = $1
		ORDER BY sort_order, created_at
	`
	rows, err := s.db.QueryContext(ctx, query, commentID)
	if err != nil {
		return nil, fmt.Errorf("list comment attachments: %w", err)
	}
	defer rows.Close()

	var out []*CommentMediaAttachment
	for rows.Next() {
		var (
			a        CommentMediaAttachment
			fileType string
		)
		if err := rows.Scan(&a.ID, &a.CommentID, &a.URL, &fileType, &a.MimeType, &a.SizeBytes, &a.ThumbnailURL, &a.SortOrder,
			&a.DurationSeconds, &a.Metadata, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment attachment: %w", err)
		}
		a.FileType = FileType(fileType)
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (s *PostgresCommentAttachmentStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM comment_attachments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment attachment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete comment attachment: %w", err)
	}
	if affected == 0 {
		return ErrAttachmentNotFound
	}
	return nil
}
