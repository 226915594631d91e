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
	ErrTVShowNotFound      = errors.New("tv show not found")
	ErrTVShowAlreadyExists = errors.New("tv show with this external id already exists")
)

type TVShowRepo struct {
	pool *pgxpool.Pool
}

func NewTVShowRepo(pool *pgxpool.Pool) *TVShowRepo {
	return &TVShowRepo{pool: pool}
}

const tvShowColumns = `
	id,
	external_id,
	name,
	original_name,
	overview,
	COALESCE(first_air_date, ''),
	origin_countries,
	COALESCE(original_language, ''),
	popularity,
	vote_average,
	vote_count,
	genre_names,
	COALESCE(poster_url, ''),
	COALESCE(backdrop_url, ''),
	adult,
	cast_names,
	average_rating,
	created_by,
	created_at,
	updated_at`

func scanTVShow(row pgx.Row) (model.TVShow, error) {
	var s model.TVShow
	err := row.Scan(
		&s.ID,
		&s.ExternalID,
		&s.Name,
		&s.OriginalName,
		&s.Overview,
		&s.FirstAirDate,
		&s.OriginCountries,
		&s.OriginalLanguage,
		&s.Popularity,
		&s.VoteAverage,
		&s.VoteCount,
		&s.GenreNames,
		&s.PosterURL,
		&s.BackdropURL,
		&s.Adult,
		&s.CastNames,
		&s.AverageRating,
		&s.CreatedBy,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	return s, err
}

func (r *TVShowRepo) Create(ctx context.Context, s *model.TVShow) error {
	if s == nil {
		return fmt.Errorf("tv show is required")
	}

	err := r.pool.QueryRow(ctx, `
INSERT INTO tvshows (
	external_id, name, original_name, overview, first_air_date,
	origin_countries, original_language, popularity, vote_average, vote_count,
	genre_names, poster_url, backdrop_url, adult, cast_names, created_by
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
RETURNING id, average_rating, created_at, updated_at
`,
		s.ExternalID, s.Name, s.OriginalName, s.Overview, s.FirstAirDate,
		s.OriginCountries, s.OriginalLanguage, s.Popularity, s.VoteAverage, s.VoteCount,
		s.GenreNames, s.PosterURL, s.BackdropURL, s.Adult, s.CastNames, s.CreatedBy,
	).Scan(&s.ID, &s.AverageRating, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrTVShowAlreadyExists
		}
		return fmt.Errorf("insert tv show: %w", err)
	}

	return nil
}

func (r *TVShowRepo) GetByID(ctx context.Context, id int64) (model.TVShow, error) {
	if id <= 0 {
		return model.TVShow{}, ErrTVShowNotFound
	}

	s, err := scanTVShow(r.pool.QueryRow(ctx, `SELECT`+tvShowColumns+` FROM tvshows WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.TVShow{}, ErrTVShowNotFound
		}
		return model.TVShow{}, fmt.Errorf("get tv show: %w", err)
	}

	return s, nil
}

func (r *TVShowRepo) GetByExternalID(ctx context.Context, externalID int64) (model.TVShow, error) {
	s, err := scanTVShow(r.pool.QueryRow(ctx, `SELECT`+tvShowColumns+` FROM tvshows WHERE external_id = $1`, externalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.TVShow{}, ErrTVShowNotFound
		}
		return model.TVShow{}, fmt.Errorf("get tv show by external id: %w", err)
	}

	return s, nil
}

func (r *TVShowRepo) Update(ctx context.Context, s *model.TVShow) error {
	if s == nil || s.ID <= 0 {
		return ErrTVShowNotFound
	}

	err := r.pool.QueryRow(ctx, `
UPDATE tvshows SET
	external_id = $2,
	name = $3,
	original_name = $4,
	overview = $5,
	first_air_date = $6,
	origin_countries = $7,
	original_language = $8,
	popularity = $9,
	vote_average = $10,
	vote_count = $11,
	genre_names = $12,
	poster_url = $13,
	backdrop_url = $14,
	adult = $15,
	cast_names = $16,
	updated_at = NOW()
WHERE id = $1
RETURNING updated_at
`,
		s.ID, s.ExternalID, s.Name, s.OriginalName, s.Overview, s.FirstAirDate,
		s.OriginCountries, s.OriginalLanguage, s.Popularity, s.VoteAverage, s.VoteCount,
		s.GenreNames, s.PosterURL, s.BackdropURL, s.Adult, s.CastNames,
	).Scan(&s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTVShowNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrTVShowAlreadyExists
		}
		return fmt.Errorf("update tv show: %w", err)
	}

	return nil
}

func (r *TVShowRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tvshows WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tv show: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTVShowNotFound
	}

	return nil
}

// tvShowFilterClause mirrors movieFilterClause with this table's column
// names; name search covers both the localized and original name.
const tvShowFilterClause = `
	($1::boolean = TRUE OR adult = FALSE)
	AND ($2::boolean = FALSE OR name ILIKE '%' || $3 || '%' OR original_name ILIKE '%' || $3 || '%' OR overview ILIKE '%' || $3 || '%')
	AND ($4::boolean = FALSE OR $5 = ANY(genre_names))
	AND ($6::boolean = FALSE OR original_language = $7)
	AND ($8::boolean = FALSE OR first_air_date LIKE $9 || '%')
	AND ($10::boolean = FALSE OR SUBSTR(first_air_date, 1, 4) = ANY($11::text[]))
	AND (first_air_date > $12 OR $12 = '')
	AND vote_count >= $13
	AND ($14::boolean = FALSE OR vote_average >= $15)
	AND ($16::boolean = FALSE OR vote_average <= $17)
	AND popularity >= $18`

func (r *TVShowRepo) List(ctx context.Context, q MediaQuery) ([]model.TVShow, error) {
	if q.Limit <= 0 {
		q.Limit = 20
	}

	order := sortColumn(q.SortKey, "name", "first_air_date")
	rows, err := r.pool.Query(ctx, `
SELECT`+tvShowColumns+`
FROM tvshows
WHERE `+tvShowFilterClause+`
ORDER BY `+order+` `+sortDirection(q.SortAsc)+`, id ASC
LIMIT $19 OFFSET $20
`, mediaFilterArgs(q, q.Limit)...)
	if err != nil {
		return nil, fmt.Errorf("list tv shows: %w", err)
	}
	defer rows.Close()

	shows := make([]model.TVShow, 0, q.Limit)
	for rows.Next() {
		s, err := scanTVShow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tv show: %w", err)
		}
		shows = append(shows, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tv shows: %w", err)
	}

	return shows, nil
}

func (r *TVShowRepo) Count(ctx context.Context, q MediaQuery) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM tvshows
WHERE `+tvShowFilterClause+`
`, mediaFilterArgs(q, 0)...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count tv shows: %w", err)
	}

	return total, nil
}

func (r *TVShowRepo) SetAverageRating(ctx context.Context, id int64, avg float64) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE tvshows SET average_rating = $2, updated_at = NOW() WHERE id = $1
`, id, avg)
	if err != nil {
		return fmt.Errorf("set tv show average rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTVShowNotFound
	}

	return nil
}

func (r *TVShowRepo) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM tvshows ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tv show ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan tv show id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tv show ids: %w", err)
	}

	return ids, nil
}

func (r *TVShowRepo) GenreCounts(ctx context.Context, includeAdult bool) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
SELECT g, COUNT(*)
FROM tvshows, UNNEST(genre_names) AS g
WHERE $1::boolean = TRUE OR adult = FALSE
GROUP BY g
`, includeAdult)
	if err != nil {
		return nil, fmt.Errorf("count tv show genres: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var genre string
		var n int
		if err := rows.Scan(&genre, &n); err != nil {
			return nil, fmt.Errorf("scan genre count: %w", err)
		}
		counts[genre] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count tv show genres: %w", err)
	}

	return counts, nil
}

func (r *TVShowRepo) Years(ctx context.Context) ([]int, error) {
	return queryYears(ctx, r.pool, `
SELECT DISTINCT SUBSTR(first_air_date, 1, 4)::int AS year
FROM tvshows
WHERE first_air_date IS NOT NULL AND first_air_date <> ''
ORDER BY year DESC
`)
}

func (r *TVShowRepo) Languages(ctx context.Context) ([]string, error) {
	return queryLanguages(ctx, r.pool, `
SELECT DISTINCT original_language
FROM tvshows
WHERE original_language IS NOT NULL AND original_language <> ''
ORDER BY original_language
`)
}
