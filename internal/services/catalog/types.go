package catalog

import (
	"errors"

	"github.com/devbn3li/movies-api/internal/domain/enums"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("media not found")
	ErrConflict     = errors.New("media with this external id already exists")
)

// MediaItem is the collection-independent projection used by combined
// listings, favorites and review lookups. Title carries the movie title
// or the show name depending on Type.
type MediaItem struct {
	ID               int64           `json:"_id"`
	ExternalID       int64           `json:"id"`
	Type             enums.MediaType `json:"media_type"`
	Title            string          `json:"title"`
	OriginalTitle    string          `json:"original_title"`
	Overview         string          `json:"overview"`
	ReleaseDate      string          `json:"release_date"`
	OriginalLanguage string          `json:"original_language"`
	Language         string          `json:"language"`
	Popularity       float64         `json:"popularity"`
	VoteAverage      float64         `json:"vote_average"`
	VoteCount        int             `json:"vote_count"`
	GenreNames       []string        `json:"genre_names"`
	PosterURL        string          `json:"poster_url"`
	BackdropURL      string          `json:"backdrop_url"`
	Adult            bool            `json:"adult"`
	AverageRating    float64         `json:"averageRating"`
}

// Page wraps one page of a listing with its pagination envelope.
type Page struct {
	Items      []MediaItem `json:"items"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	Total      int         `json:"total"`
	TotalPages int         `json:"total_pages"`
}

const (
	QuickFilterTopRated = "top_rated"
	QuickFilterPopular  = "popular"
	QuickFilterRecent   = "recent"
	QuickFilterUpcoming = "upcoming"
	QuickFilterClassic  = "classic"
)

// ListQuery is a normalized catalog listing request. IncludeAdult nil
// means "fall back to the viewer's account setting".
type ListQuery struct {
	MediaType        string
	Search           string
	Genre            string
	Language         string
	OriginalLanguage string
	Year             string
	QuickFilter      string
	MinRating        float64
	MaxRating        float64
	MinPopularity    float64
	MinVotes         int
	SortBy           string
	SortOrder        string
	IncludeAdult     *bool
	Page             int
	Limit            int
}

// FiltersMetadata describes the values the catalog can be filtered by.
type FiltersMetadata struct {
	Genres    []GenreCount   `json:"genres"`
	Years     []int          `json:"years"`
	Languages []Language     `json:"languages"`
	Types     map[string]int `json:"types"`
}

type GenreCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
