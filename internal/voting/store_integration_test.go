//go:build integration

package voting_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"discussly/internal/voting"
	"discussly/pkg/testutil/containers"
)

type PostgresVoteStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *voting.PostgresPostVoteStore

	userID uuid.UUID
	postID uuid.UUID
}

func TestPostgresVoteStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresVoteStoreSuite))
}

func (s *PostgresVoteStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = voting.NewPostgresPostVoteStore(s.postgres.DB)
}

func (s *PostgresVoteStoreSuite) TearDownSuite() {
	_ = s.postgres.DB.Close()
	_ = s.postgres.Container.Terminate(context.Background())
}

func (s *PostgresVoteStoreSuite) SetupTest() {
	ctx := context.Background()

	// Truncate in dependency order
	err := s.postgres.TruncateTables(ctx, "post_votes", "posts", "communities", "users")
	s.Require().NoError(err)

	s.userID = uuid.New()
	_, err = s.postgres.Exec(ctx, `
		INSERT INTO users (id, username, email, password_hash, created_at)
		VALUES ($1, $2, $3, 'x', NOW())
	`, s.userID, "voter-"+uuid.NewString()[:8], uuid.NewString()+"@example.com")
	s.Require().NoError(err)

	communityID := uuid.New()
	_, err = s.postgres.Exec(ctx, `
		INSERT INTO communities (id, name, display_name, owner_id, created_at)
		VALUES ($1, $2, 'Test Community', $3, NOW())
	`, communityID, "c-"+uuid.NewString()[:8], s.userID)
	s.Require().NoError(err)

	s.postID = uuid.New()
	_, err = s.postgres.Exec(ctx, `
		INSERT INTO posts (id, community_id, author_id, title, content, created_at, updated_at)
		VALUES ($1, $2, $3, 'test post', '', NOW(), NOW())
	`, s.postID, communityID, s.userID)
	s.Require().NoError(err)
}

// TestSaveIsUpsert verifies the composite primary key keeps one row per
// voter and target across repeated saves.
func (s *PostgresVoteStoreSuite) TestSaveIsUpsert() {
	ctx := context.Background()

	first := &voting.PostVote{
		UserID:    s.userID,
		PostID:    s.postID,
		Type:      voting.Upvote,
		UpdatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	s.Require().NoError(s.store.Save(ctx, first))

	flipped := &voting.PostVote{
		UserID:    s.userID,
		PostID:    s.postID,
		Type:      voting.Downvote,
		UpdatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	s.Require().NoError(s.store.Save(ctx, flipped))

	var count int
	err := s.postgres.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM post_votes WHERE user_id = $1 AND post_id = $2`,
		s.userID, s.postID).Scan(&count)
	s.Require().NoError(err)
	s.Equal(1, count)

	got, err := s.store.Find(ctx, s.userID, s.postID)
	s.Require().NoError(err)
	s.Equal(voting.Downvote, got.Type)
	s.WithinDuration(flipped.UpdatedAt, got.UpdatedAt, time.Millisecond)
}

func (s *PostgresVoteStoreSuite) TestFindMissing() {
	_, err := s.store.Find(context.Background(), uuid.New(), s.postID)
	s.Require().ErrorIs(err, voting.ErrVoteNotFound)
}

// TestScoreSumsRows verifies scoring aggregates every voter's row.
func (s *PostgresVoteStoreSuite) TestScoreSumsRows() {
	ctx := context.Background()

	votes := []voting.VoteType{voting.Upvote, voting.Upvote, voting.Downvote}
	for _, vt := range votes {
		voterID := uuid.New()
		_, err := s.postgres.Exec(ctx, `
			INSERT INTO users (id, username, email, password_hash, created_at)
			VALUES ($1, $2, $3, 'x', NOW())
		`, voterID, "voter-"+uuid.NewString()[:8], uuid.NewString()+"@example.com")
		s.Require().NoError(err)

		s.Require().NoError(s.store.Save(ctx, &voting.PostVote{
			UserID:    voterID,
			PostID:    s.postID,
			Type:      vt,
			UpdatedAt: time.Now().UTC(),
		}))
	}

	score, err := s.store.Score(ctx, s.postID)
	s.Require().NoError(err)
	s.Equal(int64(1), score)
}
