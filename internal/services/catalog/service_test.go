package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/devbn3li/movies-api/internal/domain/enums"
	"github.com/devbn3li/movies-api/internal/domain/model"
	pgrepo "github.com/devbn3li/movies-api/internal/repo/postgres"
)

type movieStoreStub struct {
	movies    []model.Movie
	lastQuery pgrepo.MediaQuery
}

func (s *movieStoreStub) Create(_ context.Context, m *model.Movie) error {
	for _, existing := range s.movies {
		if existing.ExternalID == m.ExternalID {
			return pgrepo.ErrMovieAlreadyExists
		}
	}
	m.ID = int64(len(s.movies) + 1)
	s.movies = append(s.movies, *m)
	return nil
}

func (s *movieStoreStub) GetByID(_ context.Context, id int64) (model.Movie, error) {
	for _, m := range s.movies {
		if m.ID == id {
			return m, nil
		}
	}
	return model.Movie{}, pgrepo.ErrMovieNotFound
}

func (s *movieStoreStub) GetByExternalID(_ context.Context, externalID int64) (model.Movie, error) {
	for _, m := range s.movies {
		if m.ExternalID == externalID {
			return m, nil
		}
	}
	return model.Movie{}, pgrepo.ErrMovieNotFound
}

func (s *movieStoreStub) Update(_ context.Context, m *model.Movie) error {
	for i, existing := range s.movies {
		if existing.ID == m.ID {
			s.movies[i] = *m
			return nil
		}
	}
	return pgrepo.ErrMovieNotFound
}

func (s *movieStoreStub) Delete(_ context.Context, id int64) error {
	for i, existing := range s.movies {
		if existing.ID == id {
			s.movies = append(s.movies[:i], s.movies[i+1:]...)
			return nil
		}
	}
	return pgrepo.ErrMovieNotFound
}

func (s *movieStoreStub) List(_ context.Context, q pgrepo.MediaQuery) ([]model.Movie, error) {
	s.lastQuery = q
	end := q.Offset + q.Limit
	if q.Offset >= len(s.movies) {
		return nil, nil
	}
	if end > len(s.movies) {
		end = len(s.movies)
	}
	return s.movies[q.Offset:end], nil
}

func (s *movieStoreStub) Count(_ context.Context, q pgrepo.MediaQuery) (int, error) {
	return len(s.movies), nil
}

func (s *movieStoreStub) GenreCounts(_ context.Context, _ bool) (map[string]int, error) {
	return map[string]int{"Drama": 2, "Action": 1}, nil
}

func (s *movieStoreStub) Years(_ context.Context) ([]int, error) { return []int{2024, 1999}, nil }

func (s *movieStoreStub) Languages(_ context.Context) ([]string, error) { return []string{"en"}, nil }

type tvShowStoreStub struct {
	shows     []model.TVShow
	lastQuery pgrepo.MediaQuery
}

func (s *tvShowStoreStub) Create(_ context.Context, sh *model.TVShow) error {
	for _, existing := range s.shows {
		if existing.ExternalID == sh.ExternalID {
			return pgrepo.ErrTVShowAlreadyExists
		}
	}
	sh.ID = int64(len(s.shows) + 1)
	s.shows = append(s.shows, *sh)
	return nil
}

func (s *tvShowStoreStub) GetByID(_ context.Context, id int64) (model.TVShow, error) {
	for _, sh := range s.shows {
		if sh.ID == id {
			return sh, nil
		}
	}
	return model.TVShow{}, pgrepo.ErrTVShowNotFound
}

func (s *tvShowStoreStub) GetByExternalID(_ context.Context, externalID int64) (model.TVShow, error) {
	for _, sh := range s.shows {
		if sh.ExternalID == externalID {
			return sh, nil
		}
	}
	return model.TVShow{}, pgrepo.ErrTVShowNotFound
}

func (s *tvShowStoreStub) Update(_ context.Context, sh *model.TVShow) error {
	for i, existing := range s.shows {
		if existing.ID == sh.ID {
			s.shows[i] = *sh
			return nil
		}
	}
	return pgrepo.ErrTVShowNotFound
}

func (s *tvShowStoreStub) Delete(_ context.Context, id int64) error {
	for i, existing := range s.shows {
		if existing.ID == id {
			s.shows = append(s.shows[:i], s.shows[i+1:]...)
			return nil
		}
	}
	return pgrepo.ErrTVShowNotFound
}

func (s *tvShowStoreStub) List(_ context.Context, q pgrepo.MediaQuery) ([]model.TVShow, error) {
	s.lastQuery = q
	end := q.Offset + q.Limit
	if q.Offset >= len(s.shows) {
		return nil, nil
	}
	if end > len(s.shows) {
		end = len(s.shows)
	}
	return s.shows[q.Offset:end], nil
}

func (s *tvShowStoreStub) Count(_ context.Context, q pgrepo.MediaQuery) (int, error) {
	return len(s.shows), nil
}

func (s *tvShowStoreStub) GenreCounts(_ context.Context, _ bool) (map[string]int, error) {
	return map[string]int{"Drama": 1}, nil
}

func (s *tvShowStoreStub) Years(_ context.Context) ([]int, error) { return []int{2024, 2010}, nil }

func (s *tvShowStoreStub) Languages(_ context.Context) ([]string, error) {
	return []string{"en", "ja"}, nil
}

func newCatalogForTest(movies *movieStoreStub, shows *tvShowStoreStub) *Service {
	return NewService(movies, shows, nil, Config{
		DefaultPageSize: 10,
		MaxPageSize:     50,
		LanguageNames:   map[string]string{"en": "English", "ja": "Japanese"},
	}, nil)
}

func TestCombinedListMergesAcrossCollections(t *testing.T) {
	movies := &movieStoreStub{movies: []model.Movie{
		{ID: 1, Title: "First", VoteAverage: 9},
		{ID: 2, Title: "Third", VoteAverage: 7},
	}}
	shows := &tvShowStoreStub{shows: []model.TVShow{
		{ID: 3, Name: "Second", VoteAverage: 8},
	}}
	svc := newCatalogForTest(movies, shows)

	page, err := svc.List(context.Background(), nil, ListQuery{SortBy: "rating", SortOrder: "desc"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if page.Total != 3 || page.TotalPages != 1 {
		t.Fatalf("unexpected totals: total=%d pages=%d", page.Total, page.TotalPages)
	}
	got := []float64{}
	for _, item := range page.Items {
		got = append(got, item.VoteAverage)
	}
	if len(got) != 3 || got[0] != 9 || got[1] != 8 || got[2] != 7 {
		t.Fatalf("merge order wrong: %v", got)
	}
	if page.Items[1].Type != enums.MediaTypeTVShow {
		t.Fatalf("middle item should be the tv show, got %s", page.Items[1].Type)
	}
	if page.Items[1].Title != "Second" {
		t.Fatalf("tv show name should map to title, got %q", page.Items[1].Title)
	}
}

func TestCombinedListPaginatesAcrossCollections(t *testing.T) {
	movies := &movieStoreStub{movies: []model.Movie{
		{ID: 1, Popularity: 100},
		{ID: 2, Popularity: 90},
		{ID: 3, Popularity: 80},
	}}
	shows := &tvShowStoreStub{shows: []model.TVShow{
		{ID: 4, Popularity: 95},
		{ID: 5, Popularity: 85},
		{ID: 6, Popularity: 75},
	}}
	svc := newCatalogForTest(movies, shows)

	page, err := svc.List(context.Background(), nil, ListQuery{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if page.Total != 6 || page.TotalPages != 3 {
		t.Fatalf("unexpected totals: total=%d pages=%d", page.Total, page.TotalPages)
	}
	if len(page.Items) != 2 || page.Items[0].Popularity != 90 || page.Items[1].Popularity != 85 {
		t.Fatalf("page 2 wrong: %+v", page.Items)
	}
}

func TestListOutOfRangePageReturnsEmpty(t *testing.T) {
	movies := &movieStoreStub{movies: []model.Movie{{ID: 1}}}
	shows := &tvShowStoreStub{}
	svc := newCatalogForTest(movies, shows)

	page, err := svc.List(context.Background(), nil, ListQuery{Page: 5, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 0 {
		t.Fatalf("expected empty page, got %d items", len(page.Items))
	}
	if page.Total != 1 || page.TotalPages != 1 {
		t.Fatalf("totals should still describe the collection: total=%d pages=%d", page.Total, page.TotalPages)
	}
}

func TestAdultContentPolicy(t *testing.T) {
	movies := &movieStoreStub{}
	shows := &tvShowStoreStub{}
	svc := newCatalogForTest(movies, shows)
	ctx := context.Background()

	if _, err := svc.List(ctx, nil, ListQuery{}); err != nil {
		t.Fatalf("anonymous list: %v", err)
	}
	if movies.lastQuery.IncludeAdult {
		t.Fatalf("anonymous requests must exclude adult content")
	}

	viewer := &model.Account{ID: 1, ShowAdultContent: true}
	if _, err := svc.List(ctx, viewer, ListQuery{}); err != nil {
		t.Fatalf("viewer list: %v", err)
	}
	if !movies.lastQuery.IncludeAdult {
		t.Fatalf("viewer setting should include adult content")
	}

	// An explicit parameter wins over the account setting.
	exclude := false
	if _, err := svc.List(ctx, viewer, ListQuery{IncludeAdult: &exclude}); err != nil {
		t.Fatalf("explicit list: %v", err)
	}
	if movies.lastQuery.IncludeAdult {
		t.Fatalf("explicit include_adult=false should override the account setting")
	}
}

func TestQuickFilterQueries(t *testing.T) {
	movies := &movieStoreStub{}
	shows := &tvShowStoreStub{}
	svc := newCatalogForTest(movies, shows)
	svc.now = func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	if _, err := svc.List(ctx, nil, ListQuery{QuickFilter: QuickFilterTopRated}); err != nil {
		t.Fatalf("top rated: %v", err)
	}
	if movies.lastQuery.MinVoteCount != 100 || movies.lastQuery.SortKey != pgrepo.SortRating || movies.lastQuery.SortAsc {
		t.Fatalf("top rated query wrong: %+v", movies.lastQuery)
	}

	if _, err := svc.List(ctx, nil, ListQuery{QuickFilter: QuickFilterRecent}); err != nil {
		t.Fatalf("recent: %v", err)
	}
	years := movies.lastQuery.YearAnyOf
	if len(years) != 2 || years[0] != "2026" || years[1] != "2025" {
		t.Fatalf("recent years wrong: %v", years)
	}

	if _, err := svc.List(ctx, nil, ListQuery{QuickFilter: QuickFilterUpcoming}); err != nil {
		t.Fatalf("upcoming: %v", err)
	}
	if movies.lastQuery.ReleaseAfter != "2026-08-30" || !movies.lastQuery.SortAsc {
		t.Fatalf("upcoming query wrong: %+v", movies.lastQuery)
	}

	if _, err := svc.List(ctx, nil, ListQuery{QuickFilter: QuickFilterClassic}); err != nil {
		t.Fatalf("classic: %v", err)
	}
	if movies.lastQuery.YearPrefix != "19" || movies.lastQuery.SortKey != pgrepo.SortRating {
		t.Fatalf("classic query wrong: %+v", movies.lastQuery)
	}

	if _, err := svc.List(ctx, nil, ListQuery{QuickFilter: "bogus"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown quick filter should be invalid, got err=%v", err)
	}
}

func TestLanguageAndVoteFilters(t *testing.T) {
	movies := &movieStoreStub{}
	shows := &tvShowStoreStub{}
	svc := newCatalogForTest(movies, shows)
	ctx := context.Background()

	if _, err := svc.List(ctx, nil, ListQuery{OriginalLanguage: "ja"}); err != nil {
		t.Fatalf("list by code: %v", err)
	}
	if movies.lastQuery.OriginalLanguage != "ja" {
		t.Fatalf("original_language should pass through, got %q", movies.lastQuery.OriginalLanguage)
	}

	// A display name resolves back to its code.
	if _, err := svc.List(ctx, nil, ListQuery{Language: "Japanese"}); err != nil {
		t.Fatalf("list by name: %v", err)
	}
	if movies.lastQuery.OriginalLanguage != "ja" {
		t.Fatalf("language name should resolve to a code, got %q", movies.lastQuery.OriginalLanguage)
	}

	// An unrecognized value is taken as a code already.
	if _, err := svc.List(ctx, nil, ListQuery{Language: "fr"}); err != nil {
		t.Fatalf("list by raw code: %v", err)
	}
	if movies.lastQuery.OriginalLanguage != "fr" {
		t.Fatalf("raw code should pass through, got %q", movies.lastQuery.OriginalLanguage)
	}

	if _, err := svc.List(ctx, nil, ListQuery{Language: "English", OriginalLanguage: "ja"}); err != nil {
		t.Fatalf("list with both params: %v", err)
	}
	if movies.lastQuery.OriginalLanguage != "ja" {
		t.Fatalf("original_language should win over language, got %q", movies.lastQuery.OriginalLanguage)
	}

	if _, err := svc.List(ctx, nil, ListQuery{MinVotes: 50}); err != nil {
		t.Fatalf("list with min votes: %v", err)
	}
	if movies.lastQuery.MinVoteCount != 50 {
		t.Fatalf("min_votes should map to the vote floor, got %d", movies.lastQuery.MinVoteCount)
	}

	// The top rated floor is not lowered by a smaller min_votes.
	if _, err := svc.List(ctx, nil, ListQuery{QuickFilter: QuickFilterTopRated, MinVotes: 50}); err != nil {
		t.Fatalf("top rated with min votes: %v", err)
	}
	if movies.lastQuery.MinVoteCount != 100 {
		t.Fatalf("top rated should keep its floor, got %d", movies.lastQuery.MinVoteCount)
	}

	if _, err := svc.List(ctx, nil, ListQuery{QuickFilter: QuickFilterTopRated, MinVotes: 500}); err != nil {
		t.Fatalf("top rated with higher min votes: %v", err)
	}
	if movies.lastQuery.MinVoteCount != 500 {
		t.Fatalf("a stricter min_votes should survive top rated, got %d", movies.lastQuery.MinVoteCount)
	}

	if _, err := svc.List(ctx, nil, ListQuery{MinVotes: -1}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("negative min_votes should be invalid, got err=%v", err)
	}
}

func TestResolveMediaChecksMoviesFirst(t *testing.T) {
	movies := &movieStoreStub{movies: []model.Movie{{ID: 7, Title: "Shared"}}}
	shows := &tvShowStoreStub{shows: []model.TVShow{{ID: 7, Name: "Shared"}}}
	svc := newCatalogForTest(movies, shows)

	ref, err := svc.ResolveMedia(context.Background(), 7)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if ref.Type != enums.MediaTypeMovie {
		t.Fatalf("movies should win resolution, got %s", ref.Type)
	}

	if _, err := svc.ResolveMedia(context.Background(), 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown id should be not found, got err=%v", err)
	}
}

func TestCreateMovieValidation(t *testing.T) {
	movies := &movieStoreStub{}
	shows := &tvShowStoreStub{}
	svc := newCatalogForTest(movies, shows)
	ctx := context.Background()

	if _, err := svc.CreateMovie(ctx, model.Movie{ExternalID: 1}, 1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing title should be invalid, got err=%v", err)
	}
	if _, err := svc.CreateMovie(ctx, model.Movie{ExternalID: 1, Title: "X", ReleaseDate: "30-08-2026"}, 1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad date should be invalid, got err=%v", err)
	}

	created, err := svc.CreateMovie(ctx, model.Movie{ExternalID: 1, Title: "X", ReleaseDate: "2026-08-30"}, 1)
	if err != nil {
		t.Fatalf("create movie: %v", err)
	}
	if created.ID == 0 || created.CreatedBy == nil || *created.CreatedBy != 1 {
		t.Fatalf("created movie not attributed: %+v", created)
	}

	if _, err := svc.CreateMovie(ctx, model.Movie{ExternalID: 1, Title: "Y"}, 1); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate external id should conflict, got err=%v", err)
	}
}

func TestLanguageNamesAndDefaultPoster(t *testing.T) {
	movies := &movieStoreStub{movies: []model.Movie{
		{ID: 1, Title: "X", OriginalLanguage: "ja"},
	}}
	shows := &tvShowStoreStub{}
	svc := NewService(movies, shows, nil, Config{
		DefaultPosterURL: "https://cdn.example.com/poster.png",
		LanguageNames:    map[string]string{"ja": "Japanese"},
	}, nil)

	m, err := svc.GetMovie(context.Background(), 1)
	if err != nil {
		t.Fatalf("get movie: %v", err)
	}
	if m.Language != "Japanese" {
		t.Fatalf("language name not resolved: %q", m.Language)
	}
	if m.PosterURL != "https://cdn.example.com/poster.png" {
		t.Fatalf("default poster not applied: %q", m.PosterURL)
	}
}
