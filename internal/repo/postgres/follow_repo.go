package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/devbn3li/movies-api/internal/domain/model"
)

var (
	ErrAlreadyFollowing = errors.New("already following this account")
	ErrNotFollowing     = errors.New("not following this account")
)

type FollowRepo struct {
	pool *pgxpool.Pool
}

func NewFollowRepo(pool *pgxpool.Pool) *FollowRepo {
	return &FollowRepo{pool: pool}
}

// Follow inserts the edge and bumps both denormalized counters in one
// transaction, so a crash can never leave them out of step.
func (r *FollowRepo) Follow(ctx context.Context, followerID, followeeID int64) error {
	return WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
INSERT INTO follows (follower_id, followee_id) VALUES ($1, $2)
`, followerID, followeeID); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return ErrAlreadyFollowing
			}
			return fmt.Errorf("insert follow edge: %w", err)
		}

		if err := adjustFollowCounts(ctx, tx, followerID, followeeID, 1); err != nil {
			return err
		}
		return nil
	})
}

func (r *FollowRepo) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	return WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2
`, followerID, followeeID)
		if err != nil {
			return fmt.Errorf("delete follow edge: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFollowing
		}

		return adjustFollowCounts(ctx, tx, followerID, followeeID, -1)
	})
}

func adjustFollowCounts(ctx context.Context, tx pgx.Tx, followerID, followeeID int64, delta int) error {
	if _, err := tx.Exec(ctx, `
UPDATE accounts SET following_count = GREATEST(following_count + $2, 0), updated_at = NOW() WHERE id = $1
`, followerID, delta); err != nil {
		return fmt.Errorf("adjust following count: %w", err)
	}
	if _, err := tx.Exec(ctx, `
UPDATE accounts SET followers_count = GREATEST(followers_count + $2, 0), updated_at = NOW() WHERE id = $1
`, followeeID, delta); err != nil {
		return fmt.Errorf("adjust followers count: %w", err)
	}
	return nil
}

func (r *FollowRepo) Exists(ctx context.Context, followerID, followeeID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2)
`, followerID, followeeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check follow edge: %w", err)
	}

	return exists, nil
}

func (r *FollowRepo) ListFollowers(ctx context.Context, accountID int64, limit, offset int) ([]model.Account, error) {
	return r.listEdgeAccounts(ctx, `
SELECT`+prefixedAccountColumns+`
FROM follows f
JOIN accounts a ON a.id = f.follower_id
WHERE f.followee_id = $1
ORDER BY f.created_at DESC, a.id DESC
LIMIT $2 OFFSET $3
`, accountID, limit, offset)
}

func (r *FollowRepo) ListFollowing(ctx context.Context, accountID int64, limit, offset int) ([]model.Account, error) {
	return r.listEdgeAccounts(ctx, `
SELECT`+prefixedAccountColumns+`
FROM follows f
JOIN accounts a ON a.id = f.followee_id
WHERE f.follower_id = $1
ORDER BY f.created_at DESC, a.id DESC
LIMIT $2 OFFSET $3
`, accountID, limit, offset)
}

// Suggestions lists the most-followed accounts the viewer does not
// already follow.
func (r *FollowRepo) Suggestions(ctx context.Context, viewerID int64, limit int) ([]model.Account, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.pool.Query(ctx, `
SELECT`+prefixedAccountColumns+`
FROM accounts a
WHERE a.id <> $1
	AND NOT EXISTS (
		SELECT 1 FROM follows f
		WHERE f.follower_id = $1 AND f.followee_id = a.id
	)
ORDER BY a.followers_count DESC, a.id ASC
LIMIT $2
`, viewerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list follow suggestions: %w", err)
	}
	defer rows.Close()

	return collectAccounts(rows, limit)
}

const prefixedAccountColumns = `
	a.id,
	a.email,
	a.username,
	a.display_name,
	COALESCE(a.country, ''),
	COALESCE(a.avatar_url, ''),
	a.is_admin,
	a.is_verified,
	a.show_adult_content,
	a.followers_count,
	a.following_count,
	a.created_at,
	a.updated_at`

func (r *FollowRepo) listEdgeAccounts(ctx context.Context, sql string, accountID int64, limit, offset int) ([]model.Account, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, sql, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list follow edge accounts: %w", err)
	}
	defer rows.Close()

	return collectAccounts(rows, limit)
}

func collectAccounts(rows pgx.Rows, limit int) ([]model.Account, error) {
	accounts := make([]model.Account, 0, limit)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("collect accounts: %w", err)
	}

	return accounts, nil
}
