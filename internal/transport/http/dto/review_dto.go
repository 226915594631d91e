package dto

import (
	"time"

	"github.com/devbn3li/movies-api/internal/domain/model"
	pgrepo "github.com/devbn3li/movies-api/internal/repo/postgres"
)

type ReviewRequest struct {
	Comment string `json:"comment"`
	Rating  int    `json:"rating"`
}

// UpdateReviewRequest carries a partial change; omitted fields keep
// their stored values.
type UpdateReviewRequest struct {
	Comment *string `json:"comment"`
	Rating  *int    `json:"rating"`
}

type ReviewResponse struct {
	ID        int64     `json:"id"`
	MediaID   int64     `json:"media_id"`
	MediaType string    `json:"media_type"`
	AccountID int64     `json:"account_id"`
	Comment   string    `json:"comment"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ReviewWithAuthorResponse struct {
	ReviewResponse
	Username       string `json:"username"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profile_picture"`
}

type ReviewListResponse struct {
	Items []ReviewWithAuthorResponse `json:"items"`
	Total int                        `json:"total"`
	Page  int                        `json:"page"`
	Limit int                        `json:"limit"`
}

type ReviewStatsResponse struct {
	Average   float64     `json:"average"`
	Total     int         `json:"total"`
	Histogram map[int]int `json:"histogram"`
}

func NewReviewResponse(rev model.Review) ReviewResponse {
	return ReviewResponse{
		ID:        rev.ID,
		MediaID:   rev.MediaID,
		MediaType: string(rev.MediaType),
		AccountID: rev.AccountID,
		Comment:   rev.Comment,
		Rating:    rev.Rating,
		CreatedAt: rev.CreatedAt,
		UpdatedAt: rev.UpdatedAt,
	}
}

func NewReviewWithAuthorResponses(items []pgrepo.ReviewWithAuthor) []ReviewWithAuthorResponse {
	out := make([]ReviewWithAuthorResponse, 0, len(items))
	for _, item := range items {
		out = append(out, ReviewWithAuthorResponse{
			ReviewResponse: NewReviewResponse(item.Review),
			Username:       item.Username,
			Name:           item.DisplayName,
			ProfilePicture: item.AvatarURL,
		})
	}
	return out
}
