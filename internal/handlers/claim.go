package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"giftwish/internal/database"
	"giftwish/internal/events"
)

// claimRequest is the discriminated claim/unclaim body: exactly one of
// user_id or guest_name. A registered claimant must be the caller; a guest
// claimant is identified only by the self-reported name, which is the
// product's accepted trust boundary.
type claimRequest struct {
	UserID    string `json:"user_id,omitempty"`
	GuestName string `json:"guest_name,omitempty"`
}

func (req *claimRequest) resolve(r *http.Request) (userID uuid.UUID, guestName string, errMsg string) {
	req.GuestName = strings.TrimSpace(req.GuestName)

	switch {
	case req.UserID != "" && req.GuestName != "":
		return uuid.Nil, "", "provide either user_id or guest_name, not both"
	case req.UserID != "":
		id, err := uuid.Parse(req.UserID)
		if err != nil {
			return uuid.Nil, "", "invalid user_id"
		}
		caller, err := authenticate(r)
		if err != nil || caller != id {
			return uuid.Nil, "", "user_id must match the authenticated user"
		}
		return id, "", ""
	case req.GuestName != "":
		return uuid.Nil, req.GuestName, ""
	default:
		return uuid.Nil, "", "user_id or guest_name is required"
	}
}

// loadClaimTarget fetches the item and checks the caller may interact with
// its claim: the wishlist must be visible to them and not their own.
func loadClaimTarget(w http.ResponseWriter, r *http.Request) (itemID, wishlistID uuid.UUID, ok bool) {
	id, err := pathUUID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return uuid.Nil, uuid.Nil, false
	}

	item, err := database.GetItem(r.Context(), id)
	if err != nil {
		storeError(w, err)
		return uuid.Nil, uuid.Nil, false
	}

	viewer := viewerID(r)
	wishlist, err := database.GetWishlistShared(r.Context(), item.WishlistID, viewer)
	if err != nil {
		storeError(w, err)
		return uuid.Nil, uuid.Nil, false
	}
	if viewer != uuid.Nil && wishlist.OwnerID == viewer {
		http.Error(w, "cannot claim items on your own wishlist", http.StatusForbidden)
		return uuid.Nil, uuid.Nil, false
	}
	return id, item.WishlistID, true
}

// ClaimItemHandler places a claim. The first writer wins; a racing second
// claim gets 409 regardless of what that caller last saw.
func ClaimItemHandler(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	userID, guestName, errMsg := req.resolve(r)
	if errMsg != "" {
		http.Error(w, errMsg, http.StatusBadRequest)
		return
	}

	itemID, wishlistID, ok := loadClaimTarget(w, r)
	if !ok {
		return
	}

	var err error
	if userID != uuid.Nil {
		err = database.ClaimItemByUser(r.Context(), itemID, userID)
	} else {
		err = database.ClaimItemByGuest(r.Context(), itemID, guestName)
	}
	if err != nil {
		storeError(w, err)
		return
	}

	publishActivity(r, events.Activity{WishlistID: wishlistID, ItemID: itemID, Kind: events.KindClaimed})

	item, err := database.GetItem(r.Context(), itemID)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// UnclaimItemHandler releases a claim. Registered claims require the caller
// to be the claimant; guest claims require only the matching name.
func UnclaimItemHandler(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	userID, guestName, errMsg := req.resolve(r)
	if errMsg != "" {
		http.Error(w, errMsg, http.StatusBadRequest)
		return
	}

	itemID, wishlistID, ok := loadClaimTarget(w, r)
	if !ok {
		return
	}

	var err error
	if userID != uuid.Nil {
		err = database.UnclaimItemByUser(r.Context(), itemID, userID)
	} else {
		err = database.UnclaimItemByGuest(r.Context(), itemID, guestName)
	}
	if err != nil {
		storeError(w, err)
		return
	}

	publishActivity(r, events.Activity{WishlistID: wishlistID, ItemID: itemID, Kind: events.KindUnclaimed})

	item, err := database.GetItem(r.Context(), itemID)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}
