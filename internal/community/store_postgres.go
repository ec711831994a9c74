package community

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

type PostgresCommunityStore struct {
	db *sql.DB
}

func NewPostgresCommunityStore(db *sql.DB) *PostgresCommunityStore {
	return &PostgresCommunityStore{db: db}
}

func (s *PostgresCommunityStore) Save(ctx context.Context, community *Community) error {
	query := `
		INSERT INTO communities (id, name, display_name, description, avatar_url, owner_id, is_private, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			description = EXCLUDED.description,
			avatar_url = EXCLUDED.avatar_url,
			owner_id = EXCLUDED.owner_id,
			is_private = EXCLUDED.is_private
	`
	_, err := s.db.ExecContext(ctx, query,
		community.ID, community.Name, community.DisplayName, community.Description,
		community.AvatarURL, community.OwnerID, community.IsPrivate, community.CreatedAt)
	if err != nil {
		return fmt.Errorf("save community: %w", err)
	}
	return nil
}

func (s *PostgresCommunityStore) FindByID(ctx context.Context, id uuid.UUID) (*Community, error) {
	return s.findBy(ctx, "id = $1", id)
}

func (s *PostgresCommunityStore) FindByName(ctx context.Context, name string) (*Community, error) {
	return s.findBy(ctx, "name = $1", name)
}

func (s *PostgresCommunityStore) findBy(ctx context.Context, where string, arg any) (*Community, error) {
	query := `
		SELECT id, name, display_name, description, avatar_url, owner_id, is_private, created_at
		FROM communities
		WHERE ` + where
	var c Community
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&c.ID, &c.Name, &c.DisplayName, &c.Description, &c.AvatarURL,
		&c.OwnerID, &c.IsPrivate, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan community: %w", err)
	}
	return &c, nil
}

func (s *PostgresCommunityStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM communities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete community: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete community: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// PostgresSubscriptionStore persists memberships. The composite primary key
// on (user_id, community_id) backs the one-membership-per-pair rule at the
// storage level too.
type PostgresSubscriptionStore struct {
	db *sql.DB
}

func NewPostgresSubscriptionStore(db *sql.DB) *PostgresSubscriptionStore {
	return &PostgresSubscriptionStore{db: db}
}

func (s *PostgresSubscriptionStore) Save(ctx context.Context, sub *Subscription) error {
	query := `
		INSERT INTO community_subscriptions (user_id, community_id, role, subscribed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, community_id) DO UPDATE SET
			role = EXCLUDED.role
	`
	_, err := s.db.ExecContext(ctx, query, sub.UserID, sub.CommunityID, sub.Role.String(), sub.SubscribedAt)
	if err != nil {
		return fmt.Errorf("save subscription: %w", err)
	}
	return nil
}

func (s *PostgresSubscriptionStore) Find(ctx context.Context, userID, communityID uuid.UUID) (*Subscription, error) {
	query := `
		SELECT user_id, community_id, role, subscribed_at
		FROM community_subscriptions
		WHERE user_id = $1 AND community_id = $2
	`
	sub, err := scanSubscription(s.db.QueryRowContext(ctx, query, userID, communityID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return sub, nil
}

func (s *PostgresSubscriptionStore) Delete(ctx context.Context, userID, communityID uuid.UUID) error {
	query := `DELETE FROM community_subscriptions WHERE user_id = $1 AND community_id = $2`
	res, err := s.db.ExecContext(ctx, query, userID, communityID)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if affected == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

func (s *PostgresSubscriptionStore) ListByCommunity(ctx context.Context, communityID uuid.UUID) ([]*Subscription, error) {
	return s.list(ctx, "community_id = $1", communityID)
}

func (s *PostgresSubscriptionStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Subscription, error) {
	return s.list(ctx, "user_id = $1", userID)
}

func (s *PostgresSubscriptionStore) list(ctx context.Context, where string, arg any) ([]*Subscription, error) {
	query := `
		SELECT user_id, community_id, role, subscribed_at
		FROM community_subscriptions
		WHERE ` + where + `
		ORDER BY subscribed_at
	`
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var out []*Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner) (*Subscription, error) {
	var (
		sub  Subscription
		role string
	)
	if err := row.Scan(&sub.UserID, &sub.CommunityID, &role, &sub.SubscribedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan subscription: %w", err)
	}
	parsed, err := ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("scan subscription role %q: %w", role, err)
	}
	sub.Role = parsed
	return &sub, nil
}
