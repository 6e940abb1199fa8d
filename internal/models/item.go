package models

import (
	"time"

	"github.com/google/uuid"
)

// Item priorities range 0 (lowest) to 4 (highest); 2 is the default.
const (
	PriorityMin     = 0
	PriorityDefault = 2
	PriorityMax     = 4
)

// WishlistItem belongs to exactly one wishlist. The claim is not a standalone
// entity: it is the pair of claimant fields, of which at most one is ever set
// (enforced by a database constraint). A registered claimant is recorded by
// user id, an anonymous one by a self-reported display name.
type WishlistItem struct {
	ID          uuid.UUID `json:"id"`
	WishlistID  uuid.UUID `json:"wishlist_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price,omitempty"`
	URL         string    `json:"url,omitempty"`
	Priority    int       `json:"priority"`
	HasImage    bool      `json:"has_image"`

	ClaimedByUserID *uuid.UUID `json:"claimed_by_user_id,omitempty"`
	ClaimedByName   string     `json:"claimed_by_name,omitempty"`
	// Display name of a registered claimant, joined in for viewers.
	ClaimedByDisplayName string `json:"claimed_by_display_name,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Claimed reports whether the item currently carries a claim of either kind.
func (i *WishlistItem) Claimed() bool {
	return i.ClaimedByUserID != nil || i.ClaimedByName != ""
}

// ClaimedItem is a claimed-by-me listing entry: the item plus enough context
// to say whose wishlist it came from.
type ClaimedItem struct {
	WishlistItem
	WishlistTitle string `json:"wishlist_title"`
	OwnerName     string `json:"owner_name"`
}
