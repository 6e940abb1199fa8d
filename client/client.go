// Package client is a Go client for the giftwish REST API. It wraps every
// endpoint in a typed call, attaches the session's bearer token, and performs
// exactly one attempt per call: no retries, no caching. Failures carry the
// server's status code so callers can map access errors to terminal states.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultTimeout = 30 * time.Second

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Detail)
}

// Wishlist mirrors the service's wishlist payload. OwnerName and OwnerUsername
// are populated on friend/public reads only.
type Wishlist struct {
	ID            uuid.UUID `json:"id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	IsPublic      bool      `json:"is_public"`
	Color         string    `json:"color,omitempty"`
	ThumbnailType string    `json:"thumbnail_type,omitempty"`
	ThumbnailIcon string    `json:"thumbnail_icon,omitempty"`
	HasImage      bool      `json:"has_image"`
	ItemCount     int       `json:"item_count"`
	OwnerName     string    `json:"owner_name,omitempty"`
	OwnerUsername string    `json:"owner_username,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Item mirrors the service's item payload. At most one of ClaimedByUserID and
// ClaimedByName is set.
type Item struct {
	ID                   uuid.UUID  `json:"id"`
	WishlistID           uuid.UUID  `json:"wishlist_id"`
	Name                 string     `json:"name"`
	Description          string     `json:"description,omitempty"`
	Price                float64    `json:"price,omitempty"`
	URL                  string     `json:"url,omitempty"`
	Priority             int        `json:"priority"`
	HasImage             bool       `json:"has_image"`
	ClaimedByUserID      *uuid.UUID `json:"claimed_by_user_id,omitempty"`
	ClaimedByName        string     `json:"claimed_by_name,omitempty"`
	ClaimedByDisplayName string     `json:"claimed_by_display_name,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// Claimed reports whether the item carries a claim of either kind.
func (i Item) Claimed() bool {
	return i.ClaimedByUserID != nil || i.ClaimedByName != ""
}

// User is the authenticated account as returned by login/register and
// GET /users/me.
type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email,omitempty"`
	Name     string    `json:"name,omitempty"`
}

// Profile is another user's public profile.
type Profile struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Name     string    `json:"name,omitempty"`
}

// Client talks to one giftwish deployment on behalf of one session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *Session
}

// New builds a client for the service at baseURL. The session's credentials,
// if any, are attached to every request.
func New(baseURL string, session *Session) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		session:    session,
	}
}

// Session returns the session this client authenticates with.
func (c *Client) Session() *Session {
	return c.session
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Detail: strings.TrimSpace(string(detail))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type authResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

// Login exchanges credentials for a token and stores both token and user in
// the session.
func (c *Client) Login(ctx context.Context, username, password string) (*User, error) {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if err := c.session.SetCredentials(resp.AccessToken, &resp.User); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Logout clears the session. Purely local; the token is stateless.
func (c *Client) Logout() error {
	return c.session.Clear()
}

// Me fetches the authenticated user's account.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// PublicProfile fetches another user's public profile.
func (c *Client) PublicProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	var p Profile
	if err := c.do(ctx, http.MethodGet, "/users/public/"+userID.String(), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// MyWishlists lists the caller's own wishlists.
func (c *Client) MyWishlists(ctx context.Context) ([]Wishlist, error) {
	var lists []Wishlist
	if err := c.do(ctx, http.MethodGet, "/wishlists/", nil, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// FriendsWishlists lists wishlists shared with the caller through accepted
// friendships.
func (c *Client) FriendsWishlists(ctx context.Context) ([]Wishlist, error) {
	var lists []Wishlist
	if err := c.do(ctx, http.MethodGet, "/friends/wishlists", nil, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// PublicWishlist fetches a wishlist through the shared endpoint: readable if
// public, or if the caller is the owner or an accepted friend.
func (c *Client) PublicWishlist(ctx context.Context, id uuid.UUID) (*Wishlist, error) {
	var w Wishlist
	if err := c.do(ctx, http.MethodGet, "/wishlists/public/"+id.String(), nil, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// MyItems lists every item across the caller's own wishlists.
func (c *Client) MyItems(ctx context.Context) ([]Item, error) {
	var items []Item
	if err := c.do(ctx, http.MethodGet, "/wishlist/", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// PublicWishlistItems lists a shared wishlist's items, claims included.
func (c *Client) PublicWishlistItems(ctx context.Context, wishlistID uuid.UUID) ([]Item, error) {
	var items []Item
	if err := c.do(ctx, http.MethodGet, "/wishlist/public/"+wishlistID.String(), nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Item fetches a single item, subject to the wishlist's visibility rules.
func (c *Client) Item(ctx context.Context, id uuid.UUID) (*Item, error) {
	var item Item
	if err := c.do(ctx, http.MethodGet, "/wishlist/"+id.String(), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// claimBody is the discriminated claim/unclaim payload: exactly one of the
// two fields set.
type claimBody struct {
	UserID    string `json:"user_id,omitempty"`
	GuestName string `json:"guest_name,omitempty"`
}

// ClaimItemAsUser claims an item with the caller's user id.
func (c *Client) ClaimItemAsUser(ctx context.Context, itemID, userID uuid.UUID) (*Item, error) {
	return c.claim(ctx, http.MethodPost, itemID, claimBody{UserID: userID.String()})
}

// ClaimItemAsGuest claims an item under a self-reported guest name.
func (c *Client) ClaimItemAsGuest(ctx context.Context, itemID uuid.UUID, guestName string) (*Item, error) {
	return c.claim(ctx, http.MethodPost, itemID, claimBody{GuestName: guestName})
}

// UnclaimItemAsUser releases the caller's own claim.
func (c *Client) UnclaimItemAsUser(ctx context.Context, itemID, userID uuid.UUID) (*Item, error) {
	return c.claim(ctx, http.MethodDelete, itemID, claimBody{UserID: userID.String()})
}

// UnclaimItemAsGuest releases a guest claim by presenting the claimant name.
func (c *Client) UnclaimItemAsGuest(ctx context.Context, itemID uuid.UUID, guestName string) (*Item, error) {
	return c.claim(ctx, http.MethodDelete, itemID, claimBody{GuestName: guestName})
}

func (c *Client) claim(ctx context.Context, method string, itemID uuid.UUID, body claimBody) (*Item, error) {
	var item Item
	if err := c.do(ctx, method, "/wishlist/"+itemID.String()+"/claim", body, &item); err != nil {
		return nil, err
	}
	return &item, nil
}
