package dto

import (
	"time"

	"github.com/devbn3li/movies-api/internal/domain/model"
)

type AccountResponse struct {
	ID               int64     `json:"id"`
	Email            string    `json:"email"`
	Username         string    `json:"username"`
	Name             string    `json:"name"`
	Country          string    `json:"country"`
	ProfilePicture   string    `json:"profile_picture"`
	IsAdmin          bool      `json:"is_admin"`
	IsVerified       bool      `json:"is_verified"`
	ShowAdultContent bool      `json:"show_adult_content"`
	FollowersCount   int       `json:"followers_count"`
	FollowingCount   int       `json:"following_count"`
	CreatedAt        time.Time `json:"created_at"`
}

// PublicAccountResponse omits the fields only the owner should see.
type PublicAccountResponse struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	Name           string `json:"name"`
	Country        string `json:"country"`
	ProfilePicture string `json:"profile_picture"`
	FollowersCount int    `json:"followers_count"`
	FollowingCount int    `json:"following_count"`
}

type UpdateProfileRequest struct {
	Email          *string `json:"email"`
	Username       *string `json:"username"`
	Name           *string `json:"name"`
	Country        *string `json:"country"`
	ProfilePicture *string `json:"profile_picture"`
	Password       *string `json:"password"`
}

type ToggleAdminResponse struct {
	Message string `json:"message"`
	IsAdmin bool   `json:"is_admin"`
}

type UpdateSettingsRequest struct {
	ShowAdultContent bool `json:"show_adult_content"`
}

func NewAccountResponse(a model.Account) AccountResponse {
	return AccountResponse{
		ID:               a.ID,
		Email:            a.Email,
		Username:         a.Username,
		Name:             a.DisplayName,
		Country:          a.Country,
		ProfilePicture:   a.AvatarURL,
		IsAdmin:          a.IsAdmin,
		IsVerified:       a.IsVerified,
		ShowAdultContent: a.ShowAdultContent,
		FollowersCount:   a.FollowersCount,
		FollowingCount:   a.FollowingCount,
		CreatedAt:        a.CreatedAt,
	}
}

func NewPublicAccountResponse(a model.Account) PublicAccountResponse {
	return PublicAccountResponse{
		ID:             a.ID,
		Username:       a.Username,
		Name:           a.DisplayName,
		Country:        a.Country,
		ProfilePicture: a.AvatarURL,
		FollowersCount: a.FollowersCount,
		FollowingCount: a.FollowingCount,
	}
}

func NewPublicAccountResponses(accounts []model.Account) []PublicAccountResponse {
	out := make([]PublicAccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, NewPublicAccountResponse(a))
	}
	return out
}
