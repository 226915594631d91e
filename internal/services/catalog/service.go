package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/devbn3li/movies-api/internal/domain/enums"
	"github.com/devbn3li/movies-api/internal/domain/model"
	"github.com/devbn3li/movies-api/internal/pkg/validate"
	pgrepo "github.com/devbn3li/movies-api/internal/repo/postgres"
)

type MovieStore interface {
	Create(ctx context.Context, m *model.Movie) error
	GetByID(ctx context.Context, id int64) (model.Movie, error)
	GetByExternalID(ctx context.Context, externalID int64) (model.Movie, error)
	Update(ctx context.Context, m *model.Movie) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, q pgrepo.MediaQuery) ([]model.Movie, error)
	Count(ctx context.Context, q pgrepo.MediaQuery) (int, error)
	GenreCounts(ctx context.Context, includeAdult bool) (map[string]int, error)
	Years(ctx context.Context) ([]int, error)
	Languages(ctx context.Context) ([]string, error)
}

type TVShowStore interface {
	Create(ctx context.Context, s *model.TVShow) error
	GetByID(ctx context.Context, id int64) (model.TVShow, error)
	GetByExternalID(ctx context.Context, externalID int64) (model.TVShow, error)
	Update(ctx context.Context, s *model.TVShow) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, q pgrepo.MediaQuery) ([]model.TVShow, error)
	Count(ctx context.Context, q pgrepo.MediaQuery) (int, error)
	GenreCounts(ctx context.Context, includeAdult bool) (map[string]int, error)
	Years(ctx context.Context) ([]int, error)
	Languages(ctx context.Context) ([]string, error)
}

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type Config struct {
	DefaultPageSize  int
	MaxPageSize      int
	DefaultPosterURL string
	FiltersCacheTTL  time.Duration
	LanguageNames    map[string]string
}

type Service struct {
	movies  MovieStore
	tvshows TVShowStore
	cache   Cache
	cfg     Config
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(movies MovieStore, tvshows TVShowStore, cache Cache, cfg Config, logger *zap.Logger) *Service {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 10
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 50
	}
	if cfg.FiltersCacheTTL <= 0 {
		cfg.FiltersCacheTTL = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		movies:  movies,
		tvshows: tvshows,
		cache:   cache,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// List serves every catalog listing: per-collection, combined, and the
// quick filters. viewer may be nil for anonymous requests.
func (s *Service) List(ctx context.Context, viewer *model.Account, q ListQuery) (Page, error) {
	q, err := s.normalize(q)
	if err != nil {
		return Page{}, err
	}

	includeAdult := false
	if q.IncludeAdult != nil {
		includeAdult = *q.IncludeAdult
	} else if viewer != nil {
		includeAdult = viewer.ShowAdultContent
	}

	mq, err := s.buildMediaQuery(q, includeAdult)
	if err != nil {
		return Page{}, err
	}

	switch q.MediaType {
	case string(enums.MediaTypeMovie):
		return s.listMovies(ctx, q, mq)
	case string(enums.MediaTypeTVShow):
		return s.listTVShows(ctx, q, mq)
	default:
		return s.listCombined(ctx, q, mq)
	}
}

func (s *Service) listMovies(ctx context.Context, q ListQuery, mq pgrepo.MediaQuery) (Page, error) {
	mq.Limit = q.Limit
	mq.Offset = (q.Page - 1) * q.Limit

	total, err := s.movies.Count(ctx, mq)
	if err != nil {
		return Page{}, fmt.Errorf("count movies: %w", err)
	}
	movies, err := s.movies.List(ctx, mq)
	if err != nil {
		return Page{}, fmt.Errorf("list movies: %w", err)
	}

	items := make([]MediaItem, 0, len(movies))
	for _, m := range movies {
		items = append(items, s.movieItem(m))
	}

	return s.page(items, q, total), nil
}

func (s *Service) listTVShows(ctx context.Context, q ListQuery, mq pgrepo.MediaQuery) (Page, error) {
	mq.Limit = q.Limit
	mq.Offset = (q.Page - 1) * q.Limit

	total, err := s.tvshows.Count(ctx, mq)
	if err != nil {
		return Page{}, fmt.Errorf("count tv shows: %w", err)
	}
	shows, err := s.tvshows.List(ctx, mq)
	if err != nil {
		return Page{}, fmt.Errorf("list tv shows: %w", err)
	}

	items := make([]MediaItem, 0, len(shows))
	for _, sh := range shows {
		items = append(items, s.tvShowItem(sh))
	}

	return s.page(items, q, total), nil
}

// listCombined fetches the top page*limit rows from each collection,
// merges them under the requested order and slices out the page. Taking
// the full prefix from both sides is what keeps later pages correct.
func (s *Service) listCombined(ctx context.Context, q ListQuery, mq pgrepo.MediaQuery) (Page, error) {
	mq.Limit = q.Page * q.Limit
	mq.Offset = 0

	movieTotal, err := s.movies.Count(ctx, mq)
	if err != nil {
		return Page{}, fmt.Errorf("count movies: %w", err)
	}
	showTotal, err := s.tvshows.Count(ctx, mq)
	if err != nil {
		return Page{}, fmt.Errorf("count tv shows: %w", err)
	}

	movies, err := s.movies.List(ctx, mq)
	if err != nil {
		return Page{}, fmt.Errorf("list movies: %w", err)
	}
	shows, err := s.tvshows.List(ctx, mq)
	if err != nil {
		return Page{}, fmt.Errorf("list tv shows: %w", err)
	}

	items := make([]MediaItem, 0, len(movies)+len(shows))
	for _, m := range movies {
		items = append(items, s.movieItem(m))
	}
	for _, sh := range shows {
		items = append(items, s.tvShowItem(sh))
	}
	sortItems(items, mq.SortKey, mq.SortAsc)

	start := (q.Page - 1) * q.Limit
	if start > len(items) {
		start = len(items)
	}
	end := start + q.Limit
	if end > len(items) {
		end = len(items)
	}

	return s.page(items[start:end], q, movieTotal+showTotal), nil
}

func (s *Service) page(items []MediaItem, q ListQuery, total int) Page {
	totalPages := (total + q.Limit - 1) / q.Limit
	return Page{
		Items:      items,
		Page:       q.Page,
		Limit:      q.Limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

func (s *Service) normalize(q ListQuery) (ListQuery, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = s.cfg.DefaultPageSize
	}
	if q.Limit > s.cfg.MaxPageSize {
		q.Limit = s.cfg.MaxPageSize
	}

	switch q.MediaType {
	case "", string(enums.MediaTypeMovie), string(enums.MediaTypeTVShow):
	default:
		return ListQuery{}, ErrInvalidInput
	}

	switch q.SortBy {
	case "", pgrepo.SortPopularity, pgrepo.SortRating, pgrepo.SortReleaseDate, pgrepo.SortTitle, pgrepo.SortVoteCount:
	default:
		return ListQuery{}, ErrInvalidInput
	}

	switch q.SortOrder {
	case "", "asc", "desc":
	default:
		return ListQuery{}, ErrInvalidInput
	}

	if q.MinRating < 0 || q.MinRating > 10 || q.MaxRating < 0 || q.MaxRating > 10 {
		return ListQuery{}, ErrInvalidInput
	}
	if q.MaxRating > 0 && q.MinRating > q.MaxRating {
		return ListQuery{}, ErrInvalidInput
	}
	if q.MinPopularity < 0 || q.MinVotes < 0 {
		return ListQuery{}, ErrInvalidInput
	}

	return q, nil
}

func (s *Service) buildMediaQuery(q ListQuery, includeAdult bool) (pgrepo.MediaQuery, error) {
	mq := pgrepo.MediaQuery{
		Search:           strings.TrimSpace(q.Search),
		Genre:            strings.TrimSpace(q.Genre),
		OriginalLanguage: s.languageCode(q),
		YearPrefix:       strings.TrimSpace(q.Year),
		IncludeAdult:     includeAdult,
		MinRating:        q.MinRating,
		MaxRating:        q.MaxRating,
		MinPopularity:    q.MinPopularity,
		MinVoteCount:     q.MinVotes,
		SortKey:          q.SortBy,
		SortAsc:          q.SortOrder == "asc",
	}
	if mq.SortKey == "" {
		mq.SortKey = pgrepo.SortPopularity
	}

	switch q.QuickFilter {
	case "":
	case QuickFilterTopRated:
		if mq.MinVoteCount < 100 {
			mq.MinVoteCount = 100
		}
		mq.SortKey = pgrepo.SortRating
		mq.SortAsc = false
	case QuickFilterPopular:
		mq.SortKey = pgrepo.SortPopularity
		mq.SortAsc = false
	case QuickFilterRecent:
		year := s.now().UTC().Year()
		mq.YearAnyOf = []string{fmt.Sprintf("%d", year), fmt.Sprintf("%d", year-1)}
		mq.SortKey = pgrepo.SortReleaseDate
		mq.SortAsc = false
	case QuickFilterUpcoming:
		mq.ReleaseAfter = s.now().UTC().Format("2006-01-02")
		mq.SortKey = pgrepo.SortReleaseDate
		mq.SortAsc = true
	case QuickFilterClassic:
		mq.YearPrefix = "19"
		mq.SortKey = pgrepo.SortRating
		mq.SortAsc = false
	default:
		return pgrepo.MediaQuery{}, ErrInvalidInput
	}

	return mq, nil
}

func sortItems(items []MediaItem, key string, asc bool) {
	less := func(a, b MediaItem) bool {
		switch key {
		case pgrepo.SortRating:
			return a.VoteAverage < b.VoteAverage
		case pgrepo.SortReleaseDate:
			return a.ReleaseDate < b.ReleaseDate
		case pgrepo.SortTitle:
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		case pgrepo.SortVoteCount:
			return a.VoteCount < b.VoteCount
		default:
			return a.Popularity < b.Popularity
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if asc {
			return less(items[i], items[j])
		}
		return less(items[j], items[i])
	})
}

// ResolveMedia finds which collection an id belongs to, movies first.
func (s *Service) ResolveMedia(ctx context.Context, id int64) (model.MediaRef, error) {
	if id <= 0 {
		return model.MediaRef{}, ErrNotFound
	}

	if _, err := s.movies.GetByID(ctx, id); err == nil {
		return model.MediaRef{ID: id, Type: enums.MediaTypeMovie}, nil
	} else if !errors.Is(err, pgrepo.ErrMovieNotFound) {
		return model.MediaRef{}, fmt.Errorf("resolve media in movies: %w", err)
	}

	if _, err := s.tvshows.GetByID(ctx, id); err == nil {
		return model.MediaRef{ID: id, Type: enums.MediaTypeTVShow}, nil
	} else if !errors.Is(err, pgrepo.ErrTVShowNotFound) {
		return model.MediaRef{}, fmt.Errorf("resolve media in tv shows: %w", err)
	}

	return model.MediaRef{}, ErrNotFound
}

func (s *Service) GetMovie(ctx context.Context, id int64) (model.Movie, error) {
	m, err := s.movies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMovieNotFound) {
			return model.Movie{}, ErrNotFound
		}
		return model.Movie{}, fmt.Errorf("get movie: %w", err)
	}
	return s.decorateMovie(m), nil
}

func (s *Service) GetMovieByExternalID(ctx context.Context, externalID int64) (model.Movie, error) {
	m, err := s.movies.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMovieNotFound) {
			return model.Movie{}, ErrNotFound
		}
		return model.Movie{}, fmt.Errorf("get movie by external id: %w", err)
	}
	return s.decorateMovie(m), nil
}

func (s *Service) GetTVShow(ctx context.Context, id int64) (model.TVShow, error) {
	sh, err := s.tvshows.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgrepo.ErrTVShowNotFound) {
			return model.TVShow{}, ErrNotFound
		}
		return model.TVShow{}, fmt.Errorf("get tv show: %w", err)
	}
	return s.decorateTVShow(sh), nil
}

func (s *Service) GetTVShowByExternalID(ctx context.Context, externalID int64) (model.TVShow, error) {
	sh, err := s.tvshows.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrTVShowNotFound) {
			return model.TVShow{}, ErrNotFound
		}
		return model.TVShow{}, fmt.Errorf("get tv show by external id: %w", err)
	}
	return s.decorateTVShow(sh), nil
}

// Hydrate turns media references into list items, dropping references
// whose media has been deleted since.
func (s *Service) Hydrate(ctx context.Context, refs []model.MediaRef) ([]MediaItem, error) {
	items := make([]MediaItem, 0, len(refs))
	for _, ref := range refs {
		switch ref.Type {
		case enums.MediaTypeMovie:
			m, err := s.movies.GetByID(ctx, ref.ID)
			if err != nil {
				if errors.Is(err, pgrepo.ErrMovieNotFound) {
					continue
				}
				return nil, fmt.Errorf("hydrate movie: %w", err)
			}
			items = append(items, s.movieItem(m))
		case enums.MediaTypeTVShow:
			sh, err := s.tvshows.GetByID(ctx, ref.ID)
			if err != nil {
				if errors.Is(err, pgrepo.ErrTVShowNotFound) {
					continue
				}
				return nil, fmt.Errorf("hydrate tv show: %w", err)
			}
			items = append(items, s.tvShowItem(sh))
		}
	}
	return items, nil
}

func (s *Service) movieItem(m model.Movie) MediaItem {
	m = s.decorateMovie(m)
	return MediaItem{
		ID:               m.ID,
		ExternalID:       m.ExternalID,
		Type:             enums.MediaTypeMovie,
		Title:            m.Title,
		OriginalTitle:    m.OriginalTitle,
		Overview:         m.Overview,
		ReleaseDate:      m.ReleaseDate,
		OriginalLanguage: m.OriginalLanguage,
		Language:         m.Language,
		Popularity:       m.Popularity,
		VoteAverage:      m.VoteAverage,
		VoteCount:        m.VoteCount,
		GenreNames:       m.GenreNames,
		PosterURL:        m.PosterURL,
		BackdropURL:      m.BackdropURL,
		Adult:            m.Adult,
		AverageRating:    m.AverageRating,
	}
}

func (s *Service) tvShowItem(sh model.TVShow) MediaItem {
	sh = s.decorateTVShow(sh)
	return MediaItem{
		ID:               sh.ID,
		ExternalID:       sh.ExternalID,
		Type:             enums.MediaTypeTVShow,
		Title:            sh.Name,
		OriginalTitle:    sh.OriginalName,
		Overview:         sh.Overview,
		ReleaseDate:      sh.FirstAirDate,
		OriginalLanguage: sh.OriginalLanguage,
		Language:         sh.Language,
		Popularity:       sh.Popularity,
		VoteAverage:      sh.VoteAverage,
		VoteCount:        sh.VoteCount,
		GenreNames:       sh.GenreNames,
		PosterURL:        sh.PosterURL,
		BackdropURL:      sh.BackdropURL,
		Adult:            sh.Adult,
		AverageRating:    sh.AverageRating,
	}
}

func (s *Service) decorateMovie(m model.Movie) model.Movie {
	m.Language = s.languageName(m.OriginalLanguage)
	if m.PosterURL == "" {
		m.PosterURL = s.cfg.DefaultPosterURL
	}
	return m
}

func (s *Service) decorateTVShow(sh model.TVShow) model.TVShow {
	sh.Language = s.languageName(sh.OriginalLanguage)
	if sh.PosterURL == "" {
		sh.PosterURL = s.cfg.DefaultPosterURL
	}
	return sh
}

func (s *Service) languageName(code string) string {
	if name, ok := s.cfg.LanguageNames[code]; ok {
		return name
	}
	return code
}

// languageCode picks the stored-code filter value. An explicit
// original_language wins; a language value may be a display name and is
// resolved back to its code, otherwise it is taken as a code already.
func (s *Service) languageCode(q ListQuery) string {
	if code := strings.TrimSpace(q.OriginalLanguage); code != "" {
		return code
	}
	lang := strings.TrimSpace(q.Language)
	if lang == "" {
		return ""
	}
	for code, name := range s.cfg.LanguageNames {
		if strings.EqualFold(name, lang) {
			return code
		}
	}
	return lang
}

func validateMovie(m model.Movie) error {
	if !validate.Required(m.Title) || m.ExternalID <= 0 {
		return ErrInvalidInput
	}
	if m.ReleaseDate != "" && !validate.ISODate(m.ReleaseDate) {
		return ErrInvalidInput
	}
	if m.VoteAverage < 0 || m.VoteAverage > 10 || m.VoteCount < 0 {
		return ErrInvalidInput
	}
	return nil
}

func validateTVShow(sh model.TVShow) error {
	if !validate.Required(sh.Name) || sh.ExternalID <= 0 {
		return ErrInvalidInput
	}
	if sh.FirstAirDate != "" && !validate.ISODate(sh.FirstAirDate) {
		return ErrInvalidInput
	}
	if sh.VoteAverage < 0 || sh.VoteAverage > 10 || sh.VoteCount < 0 {
		return ErrInvalidInput
	}
	return nil
}

func (s *Service) CreateMovie(ctx context.Context, m model.Movie, createdBy int64) (model.Movie, error) {
	if err := validateMovie(m); err != nil {
		return model.Movie{}, err
	}
	if createdBy > 0 {
		m.CreatedBy = &createdBy
	}

	if err := s.movies.Create(ctx, &m); err != nil {
		if errors.Is(err, pgrepo.ErrMovieAlreadyExists) {
			return model.Movie{}, ErrConflict
		}
		return model.Movie{}, fmt.Errorf("create movie: %w", err)
	}

	return s.decorateMovie(m), nil
}

func (s *Service) UpdateMovie(ctx context.Context, m model.Movie) (model.Movie, error) {
	if m.ID <= 0 {
		return model.Movie{}, ErrNotFound
	}
	if err := validateMovie(m); err != nil {
		return model.Movie{}, err
	}

	if err := s.movies.Update(ctx, &m); err != nil {
		switch {
		case errors.Is(err, pgrepo.ErrMovieNotFound):
			return model.Movie{}, ErrNotFound
		case errors.Is(err, pgrepo.ErrMovieAlreadyExists):
			return model.Movie{}, ErrConflict
		}
		return model.Movie{}, fmt.Errorf("update movie: %w", err)
	}

	return s.decorateMovie(m), nil
}

func (s *Service) DeleteMovie(ctx context.Context, id int64) error {
	if err := s.movies.Delete(ctx, id); err != nil {
		if errors.Is(err, pgrepo.ErrMovieNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete movie: %w", err)
	}
	return nil
}

func (s *Service) CreateTVShow(ctx context.Context, sh model.TVShow, createdBy int64) (model.TVShow, error) {
	if err := validateTVShow(sh); err != nil {
		return model.TVShow{}, err
	}
	if createdBy > 0 {
		sh.CreatedBy = &createdBy
	}

	if err := s.tvshows.Create(ctx, &sh); err != nil {
		if errors.Is(err, pgrepo.ErrTVShowAlreadyExists) {
			return model.TVShow{}, ErrConflict
		}
		return model.TVShow{}, fmt.Errorf("create tv show: %w", err)
	}

	return s.decorateTVShow(sh), nil
}

func (s *Service) UpdateTVShow(ctx context.Context, sh model.TVShow) (model.TVShow, error) {
	if sh.ID <= 0 {
		return model.TVShow{}, ErrNotFound
	}
	if err := validateTVShow(sh); err != nil {
		return model.TVShow{}, err
	}

	if err := s.tvshows.Update(ctx, &sh); err != nil {
		switch {
		case errors.Is(err, pgrepo.ErrTVShowNotFound):
			return model.TVShow{}, ErrNotFound
		case errors.Is(err, pgrepo.ErrTVShowAlreadyExists):
			return model.TVShow{}, ErrConflict
		}
		return model.TVShow{}, fmt.Errorf("update tv show: %w", err)
	}

	return s.decorateTVShow(sh), nil
}

func (s *Service) DeleteTVShow(ctx context.Context, id int64) error {
	if err := s.tvshows.Delete(ctx, id); err != nil {
		if errors.Is(err, pgrepo.ErrTVShowNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete tv show: %w", err)
	}
	return nil
}
