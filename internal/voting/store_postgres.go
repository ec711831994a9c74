package voting

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// PostgresPostVoteStore persists post votes. The composite primary key on
// (user_id, post_id) makes Save a true upsert at the storage level.
type PostgresPostVoteStore struct {
	db *sql.DB
}

func NewPostgresPostVoteStore(db *sql.DB) *PostgresPostVoteStore {
	return &PostgresPostVoteStore{db: db}
}

func (s *PostgresPostVoteStore) Save(ctx context.Context, vote *PostVote) error {
	query := `
		INSERT INTO post_votes (user_id, post_id, vote, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, post_id) DO UPDATE SET
			vote = EXCLUDED.vote,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query, vote.UserID, vote.PostID, int(vote.Type), vote.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save post vote: %w", err)
	}
	return nil
}

func (s *PostgresPostVoteStore) Find(ctx context.Context, userID, postID uuid.UUID) (*PostVote, error) {
	query := `SELECT user_id, post_id, vote, updated_at FROM post_votes WHERE user_id = $1 AND post_id = $2`
	var (
		v     PostVote
		value int
	)
	err := s.db.QueryRowContext(ctx, query, userID, postID).Scan(&v.UserID, &v.PostID, &value, &v.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrVoteNotFound
		}
		return nil, fmt.Errorf("scan post vote: %w", err)
	}
	v.Type = VoteType(value)
	return &v, nil
}

func (s *PostgresPostVoteStore) Score(ctx context.Context, postID uuid.UUID) (int64, error) {
	var score int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(vote), 0) FROM post_votes WHERE post_id = $1`, postID).Scan(&score)
	if err != nil {
		return 0, fmt.Errorf("score post: %w", err)
	}
	return score, nil
}

type PostgresCommentVoteStore struct {
	db *sql.DB
}

func NewPostgresCommentVoteStore(db *sql.DB) *PostgresCommentVoteStore {
	return &PostgresCommentVoteStore{db: db}
}

func (s *PostgresCommentVoteStore) Save(ctx context.Context, vote *CommentVote) error {
	query := `
		INSERT INTO comment_votes (user_id, comment_id, vote, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, comment_id) DO UPDATE SET
			vote = EXCLUDED.vote,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query, vote.UserID, vote.CommentID, int(vote.Type), vote.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save comment vote: %w", err)
	}
	return nil
}

func (s *PostgresCommentVoteStore) Find(ctx context.Context, userID, commentID uuid.UUID) (*CommentVote, error) {
	query := `SELECT user_id, comment_id, vote, updated_at FROM comment_votes WHERE user_id = $1 AND comment_id = $2`
	var (
		v     CommentVote
		value int
	)
	err := s.db.QueryRowContext(ctx, query, userID, commentID).Scan(&v.UserID, &v.CommentID, &value, &v.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrVoteNotFound
		}
		return nil, fmt.Errorf("scan comment vote: %w", err)
	}
	v.Type = VoteType(value)
	return &v, nil
}

func (s *PostgresCommentVoteStore) Score(ctx context.Context, commentID uuid.UUID) (int64, error) {
	var score int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(vote), 0) FROM comment_votes WHERE comment_id = $1`, commentID).Scan(&score)
	if err != nil {
		return 0, fmt.Errorf("score comment: %w", err)
	}
	return score, nil
}
