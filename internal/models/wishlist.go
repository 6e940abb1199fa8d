package models

import (
	"time"

	"github.com/google/uuid"
)

// Thumbnail kinds for a wishlist: a symbolic icon key chosen in the UI, or an
// uploaded image served from the wishlist image endpoint.
const (
	ThumbnailIcon  = "icon"
	ThumbnailImage = "image"
)

// Wishlist is a named collection of items owned by exactly one user. The
// is_public flag gates anonymous access; friends of the owner can read it
// regardless of the flag.
type Wishlist struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	IsPublic    bool      `json:"is_public"`
	Color       string    `json:"color,omitempty"`

	ThumbnailType string `json:"thumbnail_type,omitempty"`
	ThumbnailIcon string `json:"thumbnail_icon,omitempty"`
	HasImage      bool   `json:"has_image"`

	ItemCount int `json:"item_count"`

	// Owner identity, populated on friend/public reads so callers do not
	// need a second fetch. Empty on owner-scoped reads.
	OwnerName     string `json:"owner_name,omitempty"`
	OwnerUsername string `json:"owner_username,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
