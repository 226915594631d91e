package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/devbn3li/movies-api/internal/domain/model"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrUsernameTaken   = errors.New("username already taken")
)

type AccountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

const accountColumns = `
	id,
	email,
	username,
	display_name,
	COALESCE(country, ''),
	COALESCE(avatar_url, ''),
	is_admin,
	is_verified,
	show_adult_content,
	followers_count,
	following_count,
	created_at,
	updated_at`

func scanAccount(row pgx.Row) (model.Account, error) {
	var a model.Account
	err := row.Scan(
		&a.ID,
		&a.Email,
		&a.Username,
		&a.DisplayName,
		&a.Country,
		&a.AvatarURL,
		&a.IsAdmin,
		&a.IsVerified,
		&a.ShowAdultContent,
		&a.FollowersCount,
		&a.FollowingCount,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}

func uniqueAccountErr(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}
	if strings.Contains(pgErr.ConstraintName, "username") {
		return ErrUsernameTaken
	}
	return ErrEmailTaken
}

func (r *AccountRepo) Create(ctx context.Context, a *model.Account, passwordHash string) error {
	if a == nil {
		return fmt.Errorf("account is required")
	}

	err := r.pool.QueryRow(ctx, `
INSERT INTO accounts (email, username, display_name, country, avatar_url, password_hash)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, is_admin, is_verified, show_adult_content, followers_count, following_count, created_at, updated_at
`, a.Email, a.Username, a.DisplayName, a.Country, a.AvatarURL, passwordHash).Scan(
		&a.ID, &a.IsAdmin, &a.IsVerified, &a.ShowAdultContent,
		&a.FollowersCount, &a.FollowingCount, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if uerr := uniqueAccountErr(err); uerr != nil {
			return uerr
		}
		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

func (r *AccountRepo) GetByID(ctx context.Context, id int64) (model.Account, error) {
	if id <= 0 {
		return model.Account{}, ErrAccountNotFound
	}

	a, err := scanAccount(r.pool.QueryRow(ctx, `SELECT`+accountColumns+` FROM accounts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Account{}, ErrAccountNotFound
		}
		return model.Account{}, fmt.Errorf("get account: %w", err)
	}

	return a, nil
}

// GetByEmail returns the account and its password hash. The hash stays
// out of model.Account so it can never leak through a response encoder.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (model.Account, string, error) {
	var a model.Account
	var hash string
	err := r.pool.QueryRow(ctx, `
SELECT`+accountColumns+`, password_hash FROM accounts WHERE LOWER(email) = LOWER($1)
`, email).Scan(
		&a.ID, &a.Email, &a.Username, &a.DisplayName, &a.Country, &a.AvatarURL,
		&a.IsAdmin, &a.IsVerified, &a.ShowAdultContent,
		&a.FollowersCount, &a.FollowingCount, &a.CreatedAt, &a.UpdatedAt,
		&hash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Account{}, "", ErrAccountNotFound
		}
		return model.Account{}, "", fmt.Errorf("get account by email: %w", err)
	}

	return a, hash, nil
}

func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (model.Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx, `
SELECT`+accountColumns+` FROM accounts WHERE LOWER(username) = LOWER($1)
`, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Account{}, ErrAccountNotFound
		}
		return model.Account{}, fmt.Errorf("get account by username: %w", err)
	}

	return a, nil
}

func (r *AccountRepo) UpdateProfile(ctx context.Context, a *model.Account) error {
	if a == nil || a.ID <= 0 {
		return ErrAccountNotFound
	}

	err := r.pool.QueryRow(ctx, `
UPDATE accounts
SET email = $2, username = $3, display_name = $4, country = $5, avatar_url = $6, updated_at = NOW()
WHERE id = $1
RETURNING updated_at
`, a.ID, a.Email, a.Username, a.DisplayName, a.Country, a.AvatarURL).Scan(&a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAccountNotFound
		}
		if uerr := uniqueAccountErr(err); uerr != nil {
			return uerr
		}
		return fmt.Errorf("update account profile: %w", err)
	}

	return nil
}

func (r *AccountRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE accounts SET password_hash = $2, updated_at = NOW() WHERE id = $1
`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update account password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}

	return nil
}

func (r *AccountRepo) SetVerified(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE accounts SET is_verified = TRUE, updated_at = NOW() WHERE id = $1
`, id)
	if err != nil {
		return fmt.Errorf("mark account verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}

	return nil
}

func (r *AccountRepo) SetAdmin(ctx context.Context, id int64, isAdmin bool) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE accounts SET is_admin = $2, updated_at = NOW() WHERE id = $1
`, id, isAdmin)
	if err != nil {
		return fmt.Errorf("update admin flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}

	return nil
}

func (r *AccountRepo) SetShowAdultContent(ctx context.Context, id int64, show bool) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE accounts SET show_adult_content = $2, updated_at = NOW() WHERE id = $1
`, id, show)
	if err != nil {
		return fmt.Errorf("update adult content setting: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}

	return nil
}

// Delete removes the account and fixes the denormalized follow counters
// of its counterparts before the cascade drops the edges.
func (r *AccountRepo) Delete(ctx context.Context, id int64) error {
	return WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
UPDATE accounts
SET followers_count = GREATEST(followers_count - 1, 0)
WHERE id IN (SELECT followee_id FROM follows WHERE follower_id = $1)`, id); err != nil {
			return fmt.Errorf("decrement followers counts: %w", err)
		}
		if _, err := tx.Exec(ctx, `
UPDATE accounts
SET following_count = GREATEST(following_count - 1, 0)
WHERE id IN (SELECT follower_id FROM follows WHERE followee_id = $1)`, id); err != nil {
			return fmt.Errorf("decrement following counts: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete account: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrAccountNotFound
		}
		return nil
	})
}

func (r *AccountRepo) List(ctx context.Context, search string, limit, offset int) ([]model.Account, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, `
SELECT`+accountColumns+`
FROM accounts
WHERE $1 = ''
	OR email ILIKE '%' || $1 || '%'
	OR username ILIKE '%' || $1 || '%'
	OR display_name ILIKE '%' || $1 || '%'
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`, search, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]model.Account, 0, limit)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	return accounts, nil
}

func (r *AccountRepo) Count(ctx context.Context, search string) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM accounts
WHERE $1 = ''
	OR email ILIKE '%' || $1 || '%'
	OR username ILIKE '%' || $1 || '%'
	OR display_name ILIKE '%' || $1 || '%'
`, search).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}

	return total, nil
}

// SyncFollowCounts recomputes the denormalized follower counters from
// the follows table.
func (r *AccountRepo) SyncFollowCounts(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE accounts SET
	followers_count = (SELECT COUNT(*) FROM follows WHERE followee_id = accounts.id),
	following_count = (SELECT COUNT(*) FROM follows WHERE follower_id = accounts.id),
	updated_at = NOW()
WHERE id = $1
`, id)
	if err != nil {
		return fmt.Errorf("sync follow counts: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}

	return nil
}

func (r *AccountRepo) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list account ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan account id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list account ids: %w", err)
	}

	return ids, nil
}
