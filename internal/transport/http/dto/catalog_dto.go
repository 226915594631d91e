package dto

import (
	"github.com/devbn3li/movies-api/internal/services/catalog"
)

type MediaListResponse struct {
	Items      []catalog.MediaItem `json:"items"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	Total      int                 `json:"total"`
	TotalPages int                 `json:"total_pages"`
}

func NewMediaListResponse(page catalog.Page) MediaListResponse {
	items := page.Items
	if items == nil {
		items = []catalog.MediaItem{}
	}
	return MediaListResponse{
		Items:      items,
		Page:       page.Page,
		Limit:      page.Limit,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	}
}

type FavoriteListResponse struct {
	Items []catalog.MediaItem `json:"items"`
	Total int                 `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}

func NewFavoriteListResponse(items []catalog.MediaItem, total, page, limit int) FavoriteListResponse {
	if items == nil {
		items = []catalog.MediaItem{}
	}
	return FavoriteListResponse{Items: items, Total: total, Page: page, Limit: limit}
}

type MovieRequest struct {
	ExternalID       int64    `json:"id"`
	Title            string   `json:"title"`
	OriginalTitle    string   `json:"original_title"`
	Overview         string   `json:"overview"`
	ReleaseDate      string   `json:"release_date"`
	OriginalLanguage string   `json:"original_language"`
	Popularity       float64  `json:"popularity"`
	VoteAverage      float64  `json:"vote_average"`
	VoteCount        int      `json:"vote_count"`
	GenreNames       []string `json:"genre_names"`
	PosterURL        string   `json:"poster_url"`
	BackdropURL      string   `json:"backdrop_url"`
	Adult            bool     `json:"adult"`
	Video            bool     `json:"video"`
	Length           int      `json:"length"`
	Cast             []string `json:"cast"`
}

type TVShowRequest struct {
	ExternalID       int64    `json:"id"`
	Name             string   `json:"name"`
	OriginalName     string   `json:"original_name"`
	Overview         string   `json:"overview"`
	FirstAirDate     string   `json:"first_air_date"`
	OriginCountry    []string `json:"origin_country"`
	OriginalLanguage string   `json:"original_language"`
	Popularity       float64  `json:"popularity"`
	VoteAverage      float64  `json:"vote_average"`
	VoteCount        int      `json:"vote_count"`
	GenreNames       []string `json:"genre_names"`
	PosterURL        string   `json:"poster_url"`
	BackdropURL      string   `json:"backdrop_url"`
	Adult            bool     `json:"adult"`
	Cast             []string `json:"cast"`
}
