package voting

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var errCacheMiss = errors.New("score not cached")

// ScoreCache is a read-side projection of scores in Redis. Misses fall back
// to recomputing from the vote rows; entries expire on their own so a lost
// write only means one recount.
type ScoreCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewScoreCache(client *redis.Client, ttl time.Duration) *ScoreCache {
	return &ScoreCache{client: client, ttl: ttl}
}

func postScoreKey(postID uuid.UUID) string { return "score:post:" + postID.String() }

func commentScoreKey(commentID uuid.UUID) string { return "score:comment:" + commentID.String() }

func (c *ScoreCache) get(ctx context.Context, key string) (int64, error) {
	raw, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, errCacheMiss
		}
		return 0, fmt.Errorf("get score: %w", err)
	}
	score, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errCacheMiss
	}
	return score, nil
}

func (c *ScoreCache) set(ctx context.Context, key string, score int64) error {
	if err := c.client.Set(ctx, key, strconv.FormatInt(score, 10), c.ttl).Err(); err != nil {
		return fmt.Errorf("set score: %w", err)
	}
	return nil
}

func (c *ScoreCache) invalidate(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("invalidate score: %w", err)
	}
	return nil
}
