package dto

import (
	"github.com/devbn3li/movies-api/internal/domain/model"
	"github.com/devbn3li/movies-api/internal/services/catalog"
)

type AdminAccountListResponse struct {
	Items []AccountResponse `json:"items"`
	Total int               `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

type AdminAccountContentResponse struct {
	Account   AccountResponse          `json:"account"`
	Reviews   []ReviewResponse         `json:"reviews"`
	Favorites []catalog.MediaItem      `json:"favorites"`
	Stats     AdminAccountContentStats `json:"stats"`
}

type AdminAccountContentStats struct {
	TotalReviews   int `json:"total_reviews"`
	TotalFavorites int `json:"total_favorites"`
	FollowersCount int `json:"followers_count"`
	FollowingCount int `json:"following_count"`
}

func NewAdminAccountContentResponse(account model.Account, reviews []model.Review, favorites []catalog.MediaItem, favoritesTotal int) AdminAccountContentResponse {
	reviewItems := make([]ReviewResponse, 0, len(reviews))
	for _, rev := range reviews {
		reviewItems = append(reviewItems, NewReviewResponse(rev))
	}
	if favorites == nil {
		favorites = []catalog.MediaItem{}
	}
	return AdminAccountContentResponse{
		Account:   NewAccountResponse(account),
		Reviews:   reviewItems,
		Favorites: favorites,
		Stats: AdminAccountContentStats{
			TotalReviews:   len(reviews),
			TotalFavorites: favoritesTotal,
			FollowersCount: account.FollowersCount,
			FollowingCount: account.FollowingCount,
		},
	}
}

func NewAccountResponses(accounts []model.Account) []AccountResponse {
	out := make([]AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, NewAccountResponse(a))
	}
	return out
}
