package dto

type FollowStatusResponse struct {
	IsSelf    bool `json:"is_self"`
	Following bool `json:"following"`
}

// FollowResponse is returned by follow and unfollow: the target's
// follower count and the caller's following count after the change.
type FollowResponse struct {
	Following      bool `json:"following"`
	FollowersCount int  `json:"followers_count"`
	FollowingCount int  `json:"following_count"`
}

type AccountListResponse struct {
	Items []PublicAccountResponse `json:"items"`
	Total int                     `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}

type UploadResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}
