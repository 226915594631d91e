package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/devbn3li/movies-api/internal/domain/enums"
	pgrepo "github.com/devbn3li/movies-api/internal/repo/postgres"
	redisrepo "github.com/devbn3li/movies-api/internal/repo/redis"
)

// Filters aggregates the distinct genres, years and languages across
// both collections. The result is cached; aggregation scans both tables.
func (s *Service) Filters(ctx context.Context, includeAdult bool) (FiltersMetadata, error) {
	key := "catalog:filters:safe"
	if includeAdult {
		key = "catalog:filters:adult"
	}

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err == nil {
			var meta FiltersMetadata
			if err := json.Unmarshal(raw, &meta); err == nil {
				return meta, nil
			}
			s.logger.Warn("decode cached filters failed", zap.String("key", key))
		} else if !errors.Is(err, redisrepo.ErrCacheMiss) {
			s.logger.Warn("read filters cache failed", zap.Error(err))
		}
	}

	meta, err := s.aggregateFilters(ctx, includeAdult)
	if err != nil {
		return FiltersMetadata{}, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(meta); err == nil {
			if err := s.cache.Set(ctx, key, raw, s.cfg.FiltersCacheTTL); err != nil {
				s.logger.Warn("write filters cache failed", zap.Error(err))
			}
		}
	}

	return meta, nil
}

func (s *Service) aggregateFilters(ctx context.Context, includeAdult bool) (FiltersMetadata, error) {
	movieGenres, err := s.movies.GenreCounts(ctx, includeAdult)
	if err != nil {
		return FiltersMetadata{}, fmt.Errorf("aggregate movie genres: %w", err)
	}
	showGenres, err := s.tvshows.GenreCounts(ctx, includeAdult)
	if err != nil {
		return FiltersMetadata{}, fmt.Errorf("aggregate tv show genres: %w", err)
	}

	merged := map[string]int{}
	for name, n := range movieGenres {
		merged[name] += n
	}
	for name, n := range showGenres {
		merged[name] += n
	}
	genres := make([]GenreCount, 0, len(merged))
	for name, n := range merged {
		genres = append(genres, GenreCount{Name: name, Count: n})
	}
	sort.Slice(genres, func(i, j int) bool {
		if genres[i].Count != genres[j].Count {
			return genres[i].Count > genres[j].Count
		}
		return genres[i].Name < genres[j].Name
	})

	movieYears, err := s.movies.Years(ctx)
	if err != nil {
		return FiltersMetadata{}, fmt.Errorf("aggregate movie years: %w", err)
	}
	showYears, err := s.tvshows.Years(ctx)
	if err != nil {
		return FiltersMetadata{}, fmt.Errorf("aggregate tv show years: %w", err)
	}
	yearSet := map[int]struct{}{}
	for _, y := range movieYears {
		yearSet[y] = struct{}{}
	}
	for _, y := range showYears {
		yearSet[y] = struct{}{}
	}
	years := make([]int, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	movieLangs, err := s.movies.Languages(ctx)
	if err != nil {
		return FiltersMetadata{}, fmt.Errorf("aggregate movie languages: %w", err)
	}
	showLangs, err := s.tvshows.Languages(ctx)
	if err != nil {
		return FiltersMetadata{}, fmt.Errorf("aggregate tv show languages: %w", err)
	}
	langSet := map[string]struct{}{}
	for _, l := range movieLangs {
		langSet[l] = struct{}{}
	}
	for _, l := range showLangs {
		langSet[l] = struct{}{}
	}
	languages := make([]Language, 0, len(langSet))
	for code := range langSet {
		languages = append(languages, Language{Code: code, Name: s.languageName(code)})
	}
	sort.Slice(languages, func(i, j int) bool { return languages[i].Code < languages[j].Code })

	countQuery := pgrepo.MediaQuery{IncludeAdult: includeAdult}
	movieTotal, err := s.movies.Count(ctx, countQuery)
	if err != nil {
		return FiltersMetadata{}, fmt.Errorf("count movies: %w", err)
	}
	showTotal, err := s.tvshows.Count(ctx, countQuery)
	if err != nil {
		return FiltersMetadata{}, fmt.Errorf("count tv shows: %w", err)
	}
	types := map[string]int{
		string(enums.MediaTypeMovie):  movieTotal,
		string(enums.MediaTypeTVShow): showTotal,
	}

	return FiltersMetadata{Genres: genres, Years: years, Languages: languages, Types: types}, nil
}
