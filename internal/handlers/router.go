package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

// The API inherits URL shapes where a literal segment and an id occupy the
// same position (/wishlists/public/{id} vs /wishlists/{id}/activity), which
// ServeMux patterns cannot express side by side. These dispatchers own the
// two-segment subtrees and route on the literal before delegating.

// UserSubresourceHandler routes GET /users/{a}/{b}.
func UserSubresourceHandler(w http.ResponseWriter, r *http.Request) {
	a, b := r.PathValue("a"), r.PathValue("b")
	switch {
	case a == "public":
		r.SetPathValue("id", b)
		PublicUserHandler(w, r)
	case b == "profile-image":
		r.SetPathValue("id", a)
		ProfileImageHandler(w, r)
	default:
		http.NotFound(w, r)
	}
}

// WishlistSubresourceHandler routes GET /wishlists/{a}/{b}.
func WishlistSubresourceHandler(logger *logrus.Logger) http.HandlerFunc {
	watch := WatchHandler(logger)
	return func(w http.ResponseWriter, r *http.Request) {
		a, b := r.PathValue("a"), r.PathValue("b")
		if a == "public" {
			r.SetPathValue("id", b)
			PublicWishlistHandler(w, r)
			return
		}
		r.SetPathValue("id", a)
		switch b {
		case "image":
			WishlistImageHandler(w, r)
		case "activity":
			ActivityHandler(w, r)
		case "ws":
			watch(w, r)
		default:
			http.NotFound(w, r)
		}
	}
}

// ItemSubresourceHandler routes GET /wishlist/{a}/{b}.
func ItemSubresourceHandler(w http.ResponseWriter, r *http.Request) {
	a, b := r.PathValue("a"), r.PathValue("b")
	switch {
	case a == "items":
		r.SetPathValue("wishlistId", b)
		WishlistItemsHandler(w, r)
	case a == "public":
		r.SetPathValue("wishlistId", b)
		PublicWishlistItemsHandler(w, r)
	case b == "image":
		r.SetPathValue("id", a)
		ItemImageHandler(w, r)
	default:
		http.NotFound(w, r)
	}
}
