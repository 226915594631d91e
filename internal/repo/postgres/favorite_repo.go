package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/devbn3li/movies-api/internal/domain/enums"
	"github.com/devbn3li/movies-api/internal/domain/model"
)

var (
	ErrFavoriteExists   = errors.New("media already in favorites")
	ErrFavoriteNotFound = errors.New("media not in favorites")
)

type FavoriteRepo struct {
	pool *pgxpool.Pool
}

func NewFavoriteRepo(pool *pgxpool.Pool) *FavoriteRepo {
	return &FavoriteRepo{pool: pool}
}

type FavoriteEntry struct {
	Media   model.MediaRef
	AddedAt time.Time
}

func (r *FavoriteRepo) Add(ctx context.Context, accountID int64, media model.MediaRef) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO favorites (account_id, media_id, media_type) VALUES ($1, $2, $3)
`, accountID, media.ID, media.Type)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrFavoriteExists
		}
		return fmt.Errorf("insert favorite: %w", err)
	}

	return nil
}

func (r *FavoriteRepo) Remove(ctx context.Context, accountID int64, media model.MediaRef) error {
	tag, err := r.pool.Exec(ctx, `
DELETE FROM favorites WHERE account_id = $1 AND media_id = $2 AND media_type = $3
`, accountID, media.ID, media.Type)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFavoriteNotFound
	}

	return nil
}

func (r *FavoriteRepo) Exists(ctx context.Context, accountID int64, media model.MediaRef) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1 FROM favorites WHERE account_id = $1 AND media_id = $2 AND media_type = $3
)
`, accountID, media.ID, media.Type).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}

	return exists, nil
}

// List returns favorite references newest first. The catalog layer
// hydrates them into full media records.
func (r *FavoriteRepo) List(ctx context.Context, accountID int64, limit, offset int) ([]FavoriteEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, `
SELECT media_id, media_type, created_at
FROM favorites
WHERE account_id = $1
ORDER BY created_at DESC, media_id DESC
LIMIT $2 OFFSET $3
`, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	entries := make([]FavoriteEntry, 0, limit)
	for rows.Next() {
		var e FavoriteEntry
		var mediaType enums.MediaType
		if err := rows.Scan(&e.Media.ID, &mediaType, &e.AddedAt); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		e.Media.Type = mediaType
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}

	return entries, nil
}

func (r *FavoriteRepo) Count(ctx context.Context, accountID int64) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*) FROM favorites WHERE account_id = $1
`, accountID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count favorites: %w", err)
	}

	return total, nil
}
