package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"giftwish/internal/database"
	"giftwish/internal/events"
	"giftwish/internal/models"
)

// ListMyItemsHandler returns every item across all of the caller's
// wishlists. The owner view filters these client-side by wishlist id.
func ListMyItemsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticate(r)
	if err != nil {
		http.Error(w, "missing or invalid token", http.StatusUnauthorized)
		return
	}

	items, err := database.ListItemsByOwner(r.Context(), userID)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ownerItemView(items))
}

type createItemRequest struct {
	Name       string  `validate:"required,max=200"`
	WishlistID string  `validate:"required,uuid"`
	Priority   int     `validate:"min=0,max=4"`
	Price      float64 `validate:"min=0"`
	URL        string  `validate:"omitempty,url"`
}

// CreateItemHandler adds an item from a multipart form, with an optional
// image part.
func CreateItemHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticate(r)
	if err != nil {
		http.Error(w, "missing or invalid token", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart payload", http.StatusBadRequest)
		return
	}

	priority := models.PriorityDefault
	if raw := r.FormValue("priority"); raw != "" {
		priority, err = strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid priority", http.StatusBadRequest)
			return
		}
	}
	price := 0.0
	if raw := r.FormValue("price"); raw != "" {
		price, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			http.Error(w, "invalid price", http.StatusBadRequest)
			return
		}
	}

	req := createItemRequest{
		Name:       r.FormValue("name"),
		WishlistID: r.FormValue("wishlist_id"),
		Priority:   priority,
		Price:      price,
		URL:        r.FormValue("url"),
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "invalid item payload", http.StatusBadRequest)
		return
	}
	wishlistID := uuid.MustParse(req.WishlistID)

	var image []byte
	if file, _, err := r.FormFile("image"); err == nil {
		image, err = io.ReadAll(io.LimitReader(file, maxUploadBytes))
		file.Close()
		if err != nil {
			http.Error(w, "failed to read image", http.StatusBadRequest)
			return
		}
	}

	item := models.WishlistItem{
		WishlistID:  wishlistID,
		Name:        req.Name,
		Description: r.FormValue("description"),
		Price:       req.Price,
		URL:         req.URL,
		Priority:    req.Priority,
	}
	if err := database.CreateItem(r.Context(), userID, &item, image); err != nil {
		log.Errorf("failed to create item: %v", err)
		storeError(w, err)
		return
	}

	publishActivity(r, events.Activity{WishlistID: wishlistID, ItemID: item.ID, Kind: events.KindItemCreated})
	writeJSON(w, http.StatusCreated, item)
}

// GetItemHandler returns one item. Owners get the claim-stripped view;
// friends and guests get it only if they can see the wishlist.
func GetItemHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	item, err := database.GetItem(r.Context(), id)
	if err != nil {
		storeError(w, err)
		return
	}

	viewer := viewerID(r)
	wishlist, err := database.GetWishlistShared(r.Context(), item.WishlistID, viewer)
	if err != nil {
		storeError(w, err)
		return
	}

	if wishlist.OwnerID == viewer {
		hideClaim(item)
	}
	writeJSON(w, http.StatusOK, item)
}

type updateItemRequest struct {
	Name     *string  `validate:"omitempty,max=200"`
	Priority *int     `validate:"omitempty,min=0,max=4"`
	Price    *float64 `validate:"omitempty,min=0"`
	URL      *string  `validate:"omitempty,url"`
}

// UpdateItemHandler applies a partial multipart edit to an owned item.
func UpdateItemHandler(w http.ResponseWriter, r *http.Request) {
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

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart payload", http.StatusBadRequest)
		return
	}

	var req updateItemRequest
	upd := database.ItemUpdate{}
	form := r.MultipartForm.Value
	if v, ok := form["name"]; ok && len(v) > 0 {
		req.Name = &v[0]
		upd.Name = &v[0]
	}
	if v, ok := form["description"]; ok && len(v) > 0 {
		upd.Description = &v[0]
	}
	if v, ok := form["url"]; ok && len(v) > 0 {
		req.URL = &v[0]
		upd.URL = &v[0]
	}
	if v, ok := form["priority"]; ok && len(v) > 0 {
		p, err := strconv.Atoi(v[0])
		if err != nil {
			http.Error(w, "invalid priority", http.StatusBadRequest)
			return
		}
		req.Priority = &p
		upd.Priority = &p
	}
	if v, ok := form["price"]; ok && len(v) > 0 {
		p, err := strconv.ParseFloat(v[0], 64)
		if err != nil {
			http.Error(w, "invalid price", http.StatusBadRequest)
			return
		}
		req.Price = &p
		upd.Price = &p
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "invalid item payload", http.StatusBadRequest)
		return
	}
	if file, _, err := r.FormFile("image"); err == nil {
		upd.Image, err = io.ReadAll(io.LimitReader(file, maxUploadBytes))
		file.Close()
		if err != nil {
			http.Error(w, "failed to read image", http.StatusBadRequest)
			return
		}
	}

	if err := database.UpdateItem(r.Context(), id, userID, upd); err != nil {
		storeError(w, err)
		return
	}

	item, err := database.GetItem(r.Context(), id)
	if err != nil {
		storeError(w, err)
		return
	}
	publishActivity(r, events.Activity{WishlistID: item.WishlistID, ItemID: id, Kind: events.KindItemUpdated})
	hideClaim(item)
	writeJSON(w, http.StatusOK, item)
}

// DeleteItemHandler removes an owned item.
func DeleteItemHandler(w http.ResponseWriter, r *http.Request) {
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

	item, err := database.GetItem(r.Context(), id)
	if err != nil {
		storeError(w, err)
		return
	}

	if err := database.DeleteItem(r.Context(), id, userID); err != nil {
		storeError(w, err)
		return
	}
	publishActivity(r, events.Activity{WishlistID: item.WishlistID, ItemID: id, Kind: events.KindItemDeleted})
	w.WriteHeader(http.StatusNoContent)
}

// WishlistItemsHandler returns the items of one owned wishlist.
func WishlistItemsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticate(r)
	if err != nil {
		http.Error(w, "missing or invalid token", http.StatusUnauthorized)
		return
	}
	wishlistID, err := pathUUID(r, "wishlistId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := database.GetWishlistOwned(r.Context(), wishlistID, userID); err != nil {
		storeError(w, err)
		return
	}

	items, err := database.ListItemsByWishlist(r.Context(), wishlistID)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ownerItemView(items))
}

// PublicWishlistItemsHandler returns the items of a wishlist the viewer can
// see as a non-owner. Claim state is visible here: that is the point of
// claiming, other gift-givers need to see it.
func PublicWishlistItemsHandler(w http.ResponseWriter, r *http.Request) {
	wishlistID, err := pathUUID(r, "wishlistId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := database.GetWishlistShared(r.Context(), wishlistID, viewerID(r)); err != nil {
		storeError(w, err)
		return
	}

	items, err := database.ListItemsByWishlist(r.Context(), wishlistID)
	if err != nil {
		storeError(w, err)
		return
	}
	if items == nil {
		items = []models.WishlistItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// ClaimedItemsHandler lists items the caller has claimed on others' lists.
func ClaimedItemsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticate(r)
	if err != nil {
		http.Error(w, "missing or invalid token", http.StatusUnauthorized)
		return
	}

	items, err := database.ListClaimedByUser(r.Context(), userID)
	if err != nil {
		storeError(w, err)
		return
	}
	if items == nil {
		items = []models.ClaimedItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// ItemImageHandler serves the raw stored item image to anyone who can see
// the item's wishlist.
func ItemImageHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	item, err := database.GetItem(r.Context(), id)
	if err != nil {
		storeError(w, err)
		return
	}
	if _, err := database.GetWishlistShared(r.Context(), item.WishlistID, viewerID(r)); err != nil {
		storeError(w, err)
		return
	}

	img, err := database.GetItemImage(r.Context(), id)
	if err != nil {
		storeError(w, err)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(img))
	w.Write(img)
}

// hideClaim strips claimant fields from an item. Owner-facing responses use
// this so the surprise is kept.
func hideClaim(item *models.WishlistItem) {
	item.ClaimedByUserID = nil
	item.ClaimedByName = ""
	item.ClaimedByDisplayName = ""
}

func ownerItemView(items []models.WishlistItem) []models.WishlistItem {
	if items == nil {
		return []models.WishlistItem{}
	}
	for i := range items {
		hideClaim(&items[i])
	}
	return items
}
