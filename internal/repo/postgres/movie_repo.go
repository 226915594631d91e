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
	ErrMovieNotFound      = errors.New("movie not found")
	ErrMovieAlreadyExists = errors.New("movie with this external id already exists")
)

type MovieRepo struct {
	pool *pgxpool.Pool
}

func NewMovieRepo(pool *pgxpool.Pool) *MovieRepo {
	return &MovieRepo{pool: pool}
}

const movieColumns = `
	id,
	external_id,
	title,
	original_title,
	overview,
	COALESCE(release_date, ''),
	COALESCE(original_language, ''),
	popularity,
	vote_average,
	vote_count,
	genre_names,
	COALESCE(poster_url, ''),
	COALESCE(backdrop_url, ''),
	adult,
	video,
	runtime,
	cast_names,
	average_rating,
	created_by,
	created_at,
	updated_at`

func scanMovie(row pgx.Row) (model.Movie, error) {
	var m model.Movie
	err := row.Scan(
		&m.ID,
		&m.ExternalID,
		&m.Title,
		&m.OriginalTitle,
		&m.Overview,
		&m.ReleaseDate,
		&m.OriginalLanguage,
		&m.Popularity,
		&m.VoteAverage,
		&m.VoteCount,
		&m.GenreNames,
		&m.PosterURL,
		&m.BackdropURL,
		&m.Adult,
		&m.Video,
		&m.Runtime,
		&m.CastNames,
		&m.AverageRating,
		&m.CreatedBy,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	return m, err
}

func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	if m == nil {
		return fmt.Errorf("movie is required")
	}

	err := r.pool.QueryRow(ctx, `
INSERT INTO movies (
	external_id, title, original_title, overview, release_date,
	original_language, popularity, vote_average, vote_count, genre_names,
	poster_url, backdrop_url, adult, video, runtime, cast_names, created_by
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
RETURNING id, average_rating, created_at, updated_at
`,
		m.ExternalID, m.Title, m.OriginalTitle, m.Overview, m.ReleaseDate,
		m.OriginalLanguage, m.Popularity, m.VoteAverage, m.VoteCount, m.GenreNames,
		m.PosterURL, m.BackdropURL, m.Adult, m.Video, m.Runtime, m.CastNames, m.CreatedBy,
	).Scan(&m.ID, &m.AverageRating, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrMovieAlreadyExists
		}
		return fmt.Errorf("insert movie: %w", err)
	}

	return nil
}

func (r *MovieRepo) GetByID(ctx context.Context, id int64) (model.Movie, error) {
	if id <= 0 {
		return model.Movie{}, ErrMovieNotFound
	}

	m, err := scanMovie(r.pool.QueryRow(ctx, `SELECT`+movieColumns+` FROM movies WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Movie{}, ErrMovieNotFound
		}
		return model.Movie{}, fmt.Errorf("get movie: %w", err)
	}

	return m, nil
}

func (r *MovieRepo) GetByExternalID(ctx context.Context, externalID int64) (model.Movie, error) {
	m, err := scanMovie(r.pool.QueryRow(ctx, `SELECT`+movieColumns+` FROM movies WHERE external_id = $1`, externalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Movie{}, ErrMovieNotFound
		}
		return model.Movie{}, fmt.Errorf("get movie by external id: %w", err)
	}

	return m, nil
}

func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
	if m == nil || m.ID <= 0 {
		return ErrMovieNotFound
	}

	err := r.pool.QueryRow(ctx, `
UPDATE movies SET
	external_id = $2,
	title = $3,
	original_title = $4,
	overview = $5,
	release_date = $6,
	original_language = $7,
	popularity = $8,
	vote_average = $9,
	vote_count = $10,
	genre_names = $11,
	poster_url = $12,
	backdrop_url = $13,
	adult = $14,
	video = $15,
	runtime = $16,
	cast_names = $17,
	updated_at = NOW()
WHERE id = $1
RETURNING updated_at
`,
		m.ID, m.ExternalID, m.Title, m.OriginalTitle, m.Overview, m.ReleaseDate,
		m.OriginalLanguage, m.Popularity, m.VoteAverage, m.VoteCount, m.GenreNames,
		m.PosterURL, m.BackdropURL, m.Adult, m.Video, m.Runtime, m.CastNames,
	).Scan(&m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrMovieNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrMovieAlreadyExists
		}
		return fmt.Errorf("update movie: %w", err)
	}

	return nil
}

func (r *MovieRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM movies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete movie: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMovieNotFound
	}

	return nil
}

func (r *MovieRepo) List(ctx context.Context, q MediaQuery) ([]model.Movie, error) {
	if q.Limit <= 0 {
		q.Limit = 20
	}

	order := sortColumn(q.SortKey, "title", "release_date")
	rows, err := r.pool.Query(ctx, `
SELECT`+movieColumns+`
FROM movies
WHERE `+movieFilterClause+`
ORDER BY `+order+` `+sortDirection(q.SortAsc)+`, id ASC
LIMIT $19 OFFSET $20
`, mediaFilterArgs(q, q.Limit)...)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	defer rows.Close()

	movies := make([]model.Movie, 0, q.Limit)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}

	return movies, nil
}

func (r *MovieRepo) Count(ctx context.Context, q MediaQuery) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM movies
WHERE `+movieFilterClause+`
`, mediaFilterArgs(q, 0)...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count movies: %w", err)
	}

	return total, nil
}

func (r *MovieRepo) SetAverageRating(ctx context.Context, id int64, avg float64) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE movies SET average_rating = $2, updated_at = NOW() WHERE id = $1
`, id, avg)
	if err != nil {
		return fmt.Errorf("set movie average rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMovieNotFound
	}

	return nil
}

func (r *MovieRepo) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM movies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list movie ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan movie id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list movie ids: %w", err)
	}

	return ids, nil
}

func (r *MovieRepo) GenreCounts(ctx context.Context, includeAdult bool) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
SELECT g, COUNT(*)
FROM movies, UNNEST(genre_names) AS g
WHERE $1::boolean = TRUE OR adult = FALSE
GROUP BY g
`, includeAdult)
	if err != nil {
		return nil, fmt.Errorf("count movie genres: %w", err)
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
		return nil, fmt.Errorf("count movie genres: %w", err)
	}

	return counts, nil
}

func (r *MovieRepo) Years(ctx context.Context) ([]int, error) {
	return queryYears(ctx, r.pool, `
SELECT DISTINCT SUBSTR(release_date, 1, 4)::int AS year
FROM movies
WHERE release_date IS NOT NULL AND release_date <> ''
ORDER BY year DESC
`)
}

func (r *MovieRepo) Languages(ctx context.Context) ([]string, error) {
	return queryLanguages(ctx, r.pool, `
SELECT DISTINCT original_language
FROM movies
WHERE original_language IS NOT NULL AND original_language <> ''
ORDER BY original_language
`)
}

// movieFilterClause keeps every filter in one statement; each condition
// is switched on by a boolean parameter so the query shape never changes.
const movieFilterClause = `
	($1::boolean = TRUE OR adult = FALSE)
	AND ($2::boolean = FALSE OR title ILIKE '%' || $3 || '%' OR original_title ILIKE '%' || $3 || '%' OR overview ILIKE '%' || $3 || '%')
	AND ($4::boolean = FALSE OR $5 = ANY(genre_names))
	AND ($6::boolean = FALSE OR original_language = $7)
	AND ($8::boolean = FALSE OR release_date LIKE $9 || '%')
	AND ($10::boolean = FALSE OR SUBSTR(release_date, 1, 4) = ANY($11::text[]))
	AND (release_date > $12 OR $12 = '')
	AND vote_count >= $13
	AND ($14::boolean = FALSE OR vote_average >= $15)
	AND ($16::boolean = FALSE OR vote_average <= $17)
	AND popularity >= $18`

func mediaFilterArgs(q MediaQuery, limit int) []any {
	args := []any{
		q.IncludeAdult,
		q.Search != "", q.Search,
		q.Genre != "", q.Genre,
		q.OriginalLanguage != "", q.OriginalLanguage,
		q.YearPrefix != "", q.YearPrefix,
		len(q.YearAnyOf) > 0, q.YearAnyOf,
		q.ReleaseAfter,
		q.MinVoteCount,
		q.MinRating > 0, q.MinRating,
		q.MaxRating > 0, q.MaxRating,
		q.MinPopularity,
	}
	if limit > 0 {
		args = append(args, limit, q.Offset)
	}
	return args
}

func queryYears(ctx context.Context, pool *pgxpool.Pool, sql string) ([]int, error) {
	rows, err := pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("list years: %w", err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("scan year: %w", err)
		}
		years = append(years, y)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list years: %w", err)
	}

	return years, nil
}

func queryLanguages(ctx context.Context, pool *pgxpool.Pool, sql string) ([]string, error) {
	rows, err := pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("list languages: %w", err)
	}
	defer rows.Close()

	var langs []string
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, fmt.Errorf("scan language: %w", err)
		}
		langs = append(langs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list languages: %w", err)
	}

	return langs, nil
}
