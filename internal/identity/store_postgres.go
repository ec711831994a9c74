package identity

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PostgresUserStore persists users and their bans in PostgreSQL. Queries use
// database/sql against a pgx stdlib connection; rows are loaded with bans
// attached so derived ban state is correct straight out of the store.
type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) Save(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, avatar_url, role, is_deleted, deleted_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			email = EXCLUDED.email,
			password_hash = EXCLUDED.password_hash,
			avatar_url = EXCLUDED.avatar_url,
			role = EXCLUDED.role,
			is_deleted = EXCLUDED.is_deleted,
			deleted_at = EXCLUDED.deleted_at
	`
	_, err := s.db.ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.AvatarURL,
		user.Role.String(), user.IsDeleted, user.DeletedAt, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.findBy(ctx, "id = $1", id)
}

func (s *PostgresUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.findBy(ctx, "email = $1", email)
}

func (s *PostgresUserStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	return s.findBy(ctx, "username = $1", username)
}

func (s *PostgresUserStore) findBy(ctx context.Context, where string, arg any) (*User, error) {
	query := `
		SELECT id, username, email, password_hash, avatar_url, role, is_deleted, deleted_at, created_at
		FROM users
		WHERE ` + where
	user, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, err
	}
	bans, err := s.loadBans(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Bans = bans
	return user, nil
}

func (s *PostgresUserStore) DeletedBefore(ctx context.Context, cutoff time.Time) ([]*User, error) {
	query := `
		SELECT id, username, email, password_hash, avatar_url, role, is_deleted, deleted_at, created_at
		FROM users
		WHERE is_deleted = TRUE AND deleted_at < $1
	`
	rows, err := s.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list deleted users: %w", err)
	}
	defer rows.Close()

	var out []*User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, user)
	}
	return out, rows.Err()
}

func (s *PostgresUserStore) Purge(ctx context.Context, id uuid.UUID) error {
	// Bans, votes and subscriptions cascade via foreign keys.
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("purge user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("purge user: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresUserStore) loadBans(ctx context.Context, userID uuid.UUID) ([]*Ban, error) {
	query := `
		SELECT id, user_id, moderator_id, reason, banned_at, expires_at, unbanned_at, unbanned_by
		FROM bans
		WHERE user_id = $1
		ORDER BY banned_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("load bans: %w", err)
	}
	defer rows.Close()

	var out []*Ban
	for rows.Next() {
		var b Ban
		if err := rows.Scan(&b.ID, &b.UserID, &b.ModeratorID, &b.Reason,
			&b.BannedAt, &b.ExpiresAt, &b.UnbannedAt, &b.UnbannedByModeratorID); err != nil {
			return nil, fmt.Errorf("scan ban: %w", err)
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var (
		u    User
		role string
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.AvatarURL,
		&role, &u.IsDeleted, &u.DeletedAt, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	parsed, err := ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("scan user role %q: %w", role, err)
	}
	u.Role = parsed
	return &u, nil
}

// PostgresBanStore persists ban records in PostgreSQL.
type PostgresBanStore struct {
	db *sql.DB
}

func NewPostgresBanStore(db *sql.DB) *PostgresBanStore {
	return &PostgresBanStore{db: db}
}

func (s *PostgresBanStore) Save(ctx context.Context, ban *Ban) error {
	query := `
		INSERT INTO bans (id, user_id, moderator_id, reason, banned_at, expires_at, unbanned_at, unbanned_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			unbanned_at = EXCLUDED.unbanned_at,
			unbanned_by = EXCLUDED.unbanned_by
	`
	_, err := s.db.ExecContext(ctx, query,
		ban.ID, ban.UserID, ban.ModeratorID, ban.Reason,
		ban.BannedAt, ban.ExpiresAt, ban.UnbannedAt, ban.UnbannedByModeratorID)
	if err != nil {
		return fmt.Errorf("save ban: %w", err)
	}
	return nil
}

func (s *PostgresBanStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Ban, error) {
	store := &PostgresUserStore{db: s.db}
	return store.loadBans(ctx, userID)
}
