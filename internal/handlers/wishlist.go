package handlers

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"giftwish/internal/database"
	"giftwish/internal/events"
	"giftwish/internal/models"
)

// ListWishlistsHandler returns the caller's own wishlists.
func ListWishlistsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticate(r)
	if err != nil {
		http.Error(w, "missing or invalid token", http.StatusUnauthorized)
		return
	}

	lists, err := database.ListWishlistsByOwner(r.Context(), userID)
	if err != nil {
		storeError(w, err)
		return
	}
	if lists == nil {
		lists = []models.Wishlist{}
	}
	writeJSON(w, http.StatusOK, lists)
}

type createWishlistRequest struct {
	Title         string `json:"title" validate:"required,max=120"`
	Description   string `json:"description" validate:"max=2000"`
	IsPublic      bool   `json:"is_public"`
	Color         string `json:"color" validate:"max=32"`
	ThumbnailType string `json:"thumbnail_type" validate:"omitempty,oneof=icon image"`
	ThumbnailIcon string `json:"thumbnail_icon" validate:"max=64"`
}

// CreateWishlistHandler creates a wishlist owned by the caller.
func CreateWishlistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticate(r)
	if err != nil {
		http.Error(w, "missing or invalid token", http.StatusUnauthorized)
		return
	}

	var req createWishlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "invalid wishlist payload", http.StatusBadRequest)
		return
	}

	wishlist := models.Wishlist{
		OwnerID:       userID,
		Title:         req.Title,
		Description:   req.Description,
		IsPublic:      req.IsPublic,
		Color:         req.Color,
		ThumbnailType: req.ThumbnailType,
		ThumbnailIcon: req.ThumbnailIcon,
	}
	if err := database.CreateWishlist(r.Context(), &wishlist, nil); err != nil {
		log.Errorf("failed to create wishlist: %v", err)
		http.Error(w, "error creating wishlist", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, wishlist)
}

// GetWishlistHandler is the owner-scoped read: 403 for anyone else, even if
// the list is public. Non-owners go through the public endpoint.
func GetWishlistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticate(r)
	if err != nil {
		http.Error(w, "missing or invalid token", http.StatusUnauthorized)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	wishlist, err := database.GetWishlistOwned(r.Context(), id, userID)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wishlist)
}

// PublicWishlistHandler serves a wishlist to non-owners: public lists to
// anyone, private lists to accepted friends of the owner.
func PublicWishlistHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	wishlist, err := database.GetWishlistShared(r.Context(), id, viewerID(r))
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wishlist)
}

type updateWishlistRequest struct {
	Title         *string `json:"title" validate:"omitempty,max=120"`
	Description   *string `json:"description" validate:"omitempty,max=2000"`
	IsPublic      *bool   `json:"is_public"`
	Color         *string `json:"color" validate:"omitempty,max=32"`
	ThumbnailType *string `json:"thumbnail_type" validate:"omitempty,oneof=icon image"`
	ThumbnailIcon *string `json:"thumbnail_icon" validate:"omitempty,max=64"`
}

// UpdateWishlistHandler applies a partial edit to an owned wishlist.
func UpdateWishlistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticate(r)
	if err != nil {
		http.Error(w, "missing or invalid token", http.StatusUnauthorized)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req updateWishlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "invalid wishlist payload", http.StatusBadRequest)
		return
	}

	upd := database.WishlistUpdate{
		Title:         req.Title,
		Description:   req.Description,
		IsPublic:      req.IsPublic,
		Color:         req.Color,
		ThumbnailType: req.ThumbnailType,
		ThumbnailIcon: req.ThumbnailIcon,
	}
	if err := database.UpdateWishlist(r.Context(), id, userID, upd); err != nil {
		storeError(w, err)
		return
	}

	publishActivity(r, events.Activity{WishlistID: id, Kind: events.KindListUpdated})

	wishlist, err := database.GetWishlistOwned(r.Context(), id, userID)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wishlist)
}

// DeleteWishlistHandler removes an owned wishlist and its items.
func DeleteWishlistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticate(r)
	if err != nil {
		http.Error(w, "missing or invalid token", http.StatusUnauthorized)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := database.DeleteWishlist(r.Context(), id, userID); err != nil {
		storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// WishlistImageHandler serves the uploaded thumbnail of a wishlist the
// viewer is allowed to see.
func WishlistImageHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := database.GetWishlistShared(r.Context(), id, viewerID(r)); err != nil {
		storeError(w, err)
		return
	}

	img, err := database.GetWishlistImage(r.Context(), id)
	if err != nil {
		storeError(w, err)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(img))
	w.Write(img)
}

// ActivityHandler returns the recent activity feed for a wishlist the viewer
// can see.
func ActivityHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	viewer := viewerID(r)
	if _, err := database.GetWishlistShared(r.Context(), id, viewer); err != nil {
		storeError(w, err)
		return
	}

	feed, err := events.Recent(r.Context(), id)
	if err != nil {
		log.Warnf("failed to read activity for %v: %v", id, err)
		http.Error(w, "activity feed unavailable", http.StatusServiceUnavailable)
		return
	}
	if feed == nil {
		feed = []events.Activity{}
	}
	writeJSON(w, http.StatusOK, feed)
}

// publishActivity records feed activity without ever failing the request.
func publishActivity(r *http.Request, a events.Activity) {
	if err := events.Publish(r.Context(), a); err != nil {
		log.Warnf("failed to publish activity for %v: %v", a.WishlistID, err)
	}
}
