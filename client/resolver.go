package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// Role is how the viewer relates to a resolved wishlist.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleFriend Role = "friend"
	RoleGuest  Role = "guest"
)

// Terminal resolution states. Callers present these directly; neither is
// retried.
var (
	ErrPrivateWishlist  = errors.New("wishlist is private")
	ErrWishlistNotFound = errors.New("wishlist not found")
)

// View is a resolved wishlist: the list, its items scoped to the viewer's
// role, and a best-effort owner name.
type View struct {
	Wishlist  Wishlist
	Items     []Item
	Role      Role
	OwnerName string
}

// Resolve determines the viewer's relationship to a wishlist and fetches the
// appropriately scoped data. Precedence: own wishlists, then friends' shared
// wishlists, then the public endpoint. Exactly one outcome is reached per
// call: a View with one role, ErrPrivateWishlist, ErrWishlistNotFound, or a
// wrapped load error. No state is kept between calls.
func (c *Client) Resolve(ctx context.Context, wishlistID uuid.UUID) (*View, error) {
	if c.session.Authenticated() {
		own, err := c.MyWishlists(ctx)
		switch {
		case accessDenied(err):
			// Stale or revoked token: continue as an anonymous viewer.
		case err != nil:
			return nil, fmt.Errorf("load own wishlists: %w", err)
		default:
			if w, ok := findWishlist(own, wishlistID); ok {
				return c.ownerView(ctx, w)
			}
			shared, err := c.FriendsWishlists(ctx)
			if err != nil && !accessDenied(err) {
				return nil, fmt.Errorf("load friends' wishlists: %w", err)
			}
			if w, ok := findWishlist(shared, wishlistID); ok {
				return c.friendView(ctx, w)
			}
		}
	}
	return c.guestView(ctx, wishlistID)
}

func (c *Client) ownerView(ctx context.Context, w Wishlist) (*View, error) {
	all, err := c.MyItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("load own items: %w", err)
	}
	items := make([]Item, 0, len(all))
	for _, item := range all {
		if item.WishlistID == w.ID {
			items = append(items, item)
		}
	}
	return &View{Wishlist: w, Items: items, Role: RoleOwner, OwnerName: c.OwnerName(ctx, &w)}, nil
}

func (c *Client) friendView(ctx context.Context, w Wishlist) (*View, error) {
	items, err := c.PublicWishlistItems(ctx, w.ID)
	if err != nil {
		return nil, fmt.Errorf("load shared items: %w", err)
	}
	return &View{Wishlist: w, Items: items, Role: RoleFriend, OwnerName: c.OwnerName(ctx, &w)}, nil
}

func (c *Client) guestView(ctx context.Context, wishlistID uuid.UUID) (*View, error) {
	w, err := c.PublicWishlist(ctx, wishlistID)
	if err != nil {
		return nil, resolveError(err)
	}
	items, err := c.PublicWishlistItems(ctx, wishlistID)
	if err != nil {
		return nil, resolveError(err)
	}
	return &View{Wishlist: *w, Items: items, Role: RoleGuest, OwnerName: c.OwnerName(ctx, w)}, nil
}

// OwnerName resolves a display name for the wishlist's owner. Best effort:
// the embedded owner fields win, then the owner's public profile, then the
// literal "Unknown". Never returns an error.
func (c *Client) OwnerName(ctx context.Context, w *Wishlist) string {
	if w.OwnerName != "" {
		return w.OwnerName
	}
	if w.OwnerUsername != "" {
		return w.OwnerUsername
	}
	if u := c.session.User(); u != nil && u.ID == w.OwnerID {
		if u.Name != "" {
			return u.Name
		}
		return u.Username
	}
	if p, err := c.PublicProfile(ctx, w.OwnerID); err == nil {
		if p.Name != "" {
			return p.Name
		}
		return p.Username
	}
	return "Unknown"
}

func findWishlist(lists []Wishlist, id uuid.UUID) (Wishlist, bool) {
	for _, w := range lists {
		if w.ID == id {
			return w, true
		}
	}
	return Wishlist{}, false
}

func accessDenied(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}

func resolveError(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ErrPrivateWishlist
		case http.StatusNotFound:
			return ErrWishlistNotFound
		}
	}
	return fmt.Errorf("load wishlist: %w", err)
}
