package model

import (
	"time"

	"github.com/devbn3li/movies-api/internal/domain/enums"
)

// Movie is the provider-shaped movie record. ExternalID is the metadata
// provider's id; AverageRating is maintained from user reviews and is a
// different thing from the provider's VoteAverage.
type Movie struct {
	ID               int64     `json:"_id"`
	ExternalID       int64     `json:"id"`
	Title            string    `json:"title"`
	OriginalTitle    string    `json:"original_title"`
	Overview         string    `json:"overview"`
	ReleaseDate      string    `json:"release_date"`
	OriginalLanguage string    `json:"original_language"`
	Language         string    `json:"language"`
	Popularity       float64   `json:"popularity"`
	VoteAverage      float64   `json:"vote_average"`
	VoteCount        int       `json:"vote_count"`
	GenreNames       []string  `json:"genre_names"`
	PosterURL        string    `json:"poster_url"`
	BackdropURL      string    `json:"backdrop_url"`
	Adult            bool      `json:"adult"`
	Video            bool      `json:"video"`
	Runtime          int       `json:"length"`
	CastNames        []string  `json:"cast"`
	AverageRating    float64   `json:"averageRating"`
	CreatedBy        *int64    `json:"createdBy"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type TVShow struct {
	ID               int64     `json:"_id"`
	ExternalID       int64     `json:"id"`
	Name             string    `json:"name"`
	OriginalName     string    `json:"original_name"`
	Overview         string    `json:"overview"`
	FirstAirDate     string    `json:"first_air_date"`
	OriginCountries  []string  `json:"origin_country"`
	OriginalLanguage string    `json:"original_language"`
	Language         string    `json:"language"`
	Popularity       float64   `json:"popularity"`
	VoteAverage      float64   `json:"vote_average"`
	VoteCount        int       `json:"vote_count"`
	GenreNames       []string  `json:"genre_names"`
	PosterURL        string    `json:"poster_url"`
	BackdropURL      string    `json:"backdrop_url"`
	Adult            bool      `json:"adult"`
	CastNames        []string  `json:"cast"`
	AverageRating    float64   `json:"averageRating"`
	CreatedBy        *int64    `json:"createdBy"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// MediaRef is a resolved polymorphic media reference.
type MediaRef struct {
	ID   int64
	Type enums.MediaType
}
