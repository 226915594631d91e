package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/devbn3li/movies-api/internal/domain/enums"
	"github.com/devbn3li/movies-api/internal/domain/model"
)

var (
	ErrReviewNotFound      = errors.New("review not found")
	ErrReviewAlreadyExists = errors.New("account already reviewed this media")
)

type ReviewRepo struct {
	pool *pgxpool.Pool
}

func NewReviewRepo(pool *pgxpool.Pool) *ReviewRepo {
	return &ReviewRepo{pool: pool}
}

// ReviewWithAuthor carries the public author fields alongside the review
// so media review listings need a single query.
type ReviewWithAuthor struct {
	model.Review
	Username    string
	DisplayName string
	AvatarURL   string
}

func (r *ReviewRepo) Create(ctx context.Context, rev *model.Review) error {
	if rev == nil {
		return fmt.Errorf("review is required")
	}

	err := r.pool.QueryRow(ctx, `
INSERT INTO reviews (media_id, media_type, account_id, comment, rating)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at, updated_at
`, rev.MediaID, rev.MediaType, rev.AccountID, rev.Comment, rev.Rating).
		Scan(&rev.ID, &rev.CreatedAt, &rev.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrReviewAlreadyExists
		}
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

func (r *ReviewRepo) GetByMediaAndAccount(ctx context.Context, mediaID int64, mediaType enums.MediaType, accountID int64) (model.Review, error) {
	var rev model.Review
	err := r.pool.QueryRow(ctx, `
SELECT id, media_id, media_type, account_id, comment, rating, created_at, updated_at
FROM reviews
WHERE media_id = $1 AND media_type = $2 AND account_id = $3
`, mediaID, mediaType, accountID).Scan(
		&rev.ID, &rev.MediaID, &rev.MediaType, &rev.AccountID,
		&rev.Comment, &rev.Rating, &rev.CreatedAt, &rev.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Review{}, ErrReviewNotFound
		}
		return model.Review{}, fmt.Errorf("get review: %w", err)
	}

	return rev, nil
}

func (r *ReviewRepo) Update(ctx context.Context, rev *model.Review) error {
	if rev == nil || rev.ID <= 0 {
		return ErrReviewNotFound
	}

	err := r.pool.QueryRow(ctx, `
UPDATE reviews
SET comment = $2, rating = $3, updated_at = NOW()
WHERE id = $1
RETURNING updated_at
`, rev.ID, rev.Comment, rev.Rating).Scan(&rev.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("update review: %w", err)
	}

	return nil
}

func (r *ReviewRepo) Delete(ctx context.Context, mediaID int64, mediaType enums.MediaType, accountID int64) error {
	tag, err := r.pool.Exec(ctx, `
DELETE FROM reviews
WHERE media_id = $1 AND media_type = $2 AND account_id = $3
`, mediaID, mediaType, accountID)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReviewNotFound
	}

	return nil
}

// ListByMedia returns reviews newest first.
func (r *ReviewRepo) ListByMedia(ctx context.Context, mediaID int64, mediaType enums.MediaType, limit, offset int) ([]ReviewWithAuthor, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	r.id, r.media_id, r.media_type, r.account_id, r.comment, r.rating,
	r.created_at, r.updated_at,
	a.username, a.display_name, COALESCE(a.avatar_url, '')
FROM reviews r
JOIN accounts a ON a.id = r.account_id
WHERE r.media_id = $1 AND r.media_type = $2
ORDER BY r.created_at DESC, r.id DESC
LIMIT $3 OFFSET $4
`, mediaID, mediaType, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]ReviewWithAuthor, 0, limit)
	for rows.Next() {
		var rv ReviewWithAuthor
		if err := rows.Scan(
			&rv.ID, &rv.MediaID, &rv.MediaType, &rv.AccountID, &rv.Comment, &rv.Rating,
			&rv.CreatedAt, &rv.UpdatedAt,
			&rv.Username, &rv.DisplayName, &rv.AvatarURL,
		); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	return reviews, nil
}

func (r *ReviewRepo) CountByMedia(ctx context.Context, mediaID int64, mediaType enums.MediaType) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*) FROM reviews WHERE media_id = $1 AND media_type = $2
`, mediaID, mediaType).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}

	return total, nil
}

// Ratings returns every rating left on a media item, for aggregation.
func (r *ReviewRepo) Ratings(ctx context.Context, mediaID int64, mediaType enums.MediaType) ([]int, error) {
	rows, err := r.pool.Query(ctx, `
SELECT rating FROM reviews WHERE media_id = $1 AND media_type = $2
`, mediaID, mediaType)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	var ratings []int
	for rows.Next() {
		var rating int
		if err := rows.Scan(&rating); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}

	return ratings, nil
}

func (r *ReviewRepo) ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]model.Review, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, media_id, media_type, account_id, comment, rating, created_at, updated_at
FROM reviews
WHERE account_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list account reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]model.Review, 0, limit)
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(
			&rv.ID, &rv.MediaID, &rv.MediaType, &rv.AccountID,
			&rv.Comment, &rv.Rating, &rv.CreatedAt, &rv.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list account reviews: %w", err)
	}

	return reviews, nil
}
