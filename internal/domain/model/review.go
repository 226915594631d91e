package model

import (
	"time"

	"github.com/devbn3li/movies-api/internal/domain/enums"
)

// Review references exactly one media item (id + type discriminator)
// and exactly one account. At most one review exists per (media, account)
// pair; the store enforces that with a uniqueness constraint.
type Review struct {
	ID        int64           `json:"id"`
	MediaID   int64           `json:"media_id"`
	MediaType enums.MediaType `json:"media_type"`
	AccountID int64           `json:"account_id"`
	Comment   string          `json:"comment"`
	Rating    int             `json:"rating"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
