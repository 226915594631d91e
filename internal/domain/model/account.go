package model

import "time"

type Account struct {
	ID               int64     `json:"id"`
	Email            string    `json:"email"`
	Username         string    `json:"username"`
	DisplayName      string    `json:"name"`
	Country          string    `json:"country"`
	AvatarURL        string    `json:"profile_picture"`
	IsAdmin          bool      `json:"is_admin"`
	IsVerified       bool      `json:"is_verified"`
	ShowAdultContent bool      `json:"show_adult_content"`
	FollowersCount   int       `json:"followers_count"`
	FollowingCount   int       `json:"following_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
