package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. Username doubles as the login handle and is
// unique; Name is an optional display name shown to friends.
type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email,omitempty"`
	Password string    `json:"-"`
	Name     string    `json:"name,omitempty"`

	HasProfileImage bool `json:"has_profile_image"`

	Sizes Sizes `json:"sizes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Sizes are independently optional free-text size preferences.
type Sizes struct {
	Shoe   string `json:"shoe_size,omitempty"`
	Shirt  string `json:"shirt_size,omitempty"`
	Pants  string `json:"pants_size,omitempty"`
	Hat    string `json:"hat_size,omitempty"`
	Ring   string `json:"ring_size,omitempty"`
	Dress  string `json:"dress_size,omitempty"`
	Jacket string `json:"jacket_size,omitempty"`
}

// PublicProfile is the subset of User exposed to anyone who can see one of
// the user's wishlists.
type PublicProfile struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Name     string    `json:"name,omitempty"`
	Sizes    Sizes     `json:"sizes"`
}
