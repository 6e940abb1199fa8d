package models

import (
	"time"

	"github.com/google/uuid"
)

// Friend request/relationship statuses.
const (
	FriendStatusPending  = "pending"
	FriendStatusAccepted = "accepted"
)

// Friend is a directed request from Requester to Recipient. Accepting flips
// the status to accepted and the relationship is treated as bidirectional
// from then on; declining deletes the row.
type Friend struct {
	ID          uuid.UUID `json:"id"`
	RequesterID uuid.UUID `json:"requester_id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FriendRequestInfo is a pending incoming request joined with the sender's
// public identity, shaped for the requests listing.
type FriendRequestInfo struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FriendInfo is an accepted friend joined with their public identity.
type FriendInfo struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Name     string    `json:"name,omitempty"`
}
