package client_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"giftwish/client"
)

// fakeAPI is an in-memory stand-in for the service, implementing the subset
// of endpoints the client package calls. It enforces the same access and
// claim rules the real handlers do, so client behavior can be tested without
// a database.
type fakeAPI struct {
	t *testing.T

	mu        sync.Mutex
	requests  int
	tokens    map[string]client.User
	usersByID map[uuid.UUID]client.User
	wishlists map[uuid.UUID]*client.Wishlist
	items     map[uuid.UUID]*client.Item
	friends   map[uuid.UUID]map[uuid.UUID]bool

	srv *httptest.Server
}

func newFakeAPI(t *testing.T) *fakeAPI {
	f := &fakeAPI{
		t:         t,
		tokens:    make(map[string]client.User),
		usersByID: make(map[uuid.UUID]client.User),
		wishlists: make(map[uuid.UUID]*client.Wishlist),
		items:     make(map[uuid.UUID]*client.Item),
		friends:   make(map[uuid.UUID]map[uuid.UUID]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /wishlists/{$}", f.handleMyWishlists)
	mux.HandleFunc("GET /wishlists/public/{id}", f.handlePublicWishlist)
	mux.HandleFunc("GET /friends/wishlists", f.handleFriendsWishlists)
	mux.HandleFunc("GET /wishlist/{$}", f.handleMyItems)
	mux.HandleFunc("GET /wishlist/public/{id}", f.handlePublicItems)
	mux.HandleFunc("GET /wishlist/{id}", f.handleItem)
	mux.HandleFunc("POST /wishlist/{id}/claim", f.handleClaim)
	mux.HandleFunc("DELETE /wishlist/{id}/claim", f.handleUnclaim)
	mux.HandleFunc("GET /users/public/{id}", f.handleProfile)
	mux.HandleFunc("POST /auth/login", f.handleLogin)

	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests++
		f.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func (f *fakeAPI) addUser(username, name string) (client.User, string) {
	u := client.User{ID: uuid.New(), Username: username, Name: name}
	token := "token-" + username
	f.mu.Lock()
	f.tokens[token] = u
	f.usersByID[u.ID] = u
	f.mu.Unlock()
	return u, token
}

func (f *fakeAPI) addWishlist(owner client.User, title string, public bool) client.Wishlist {
	now := time.Now().UTC().Truncate(time.Second)
	w := client.Wishlist{ID: uuid.New(), OwnerID: owner.ID, Title: title, IsPublic: public, CreatedAt: now, UpdatedAt: now}
	f.mu.Lock()
	f.wishlists[w.ID] = &w
	f.mu.Unlock()
	return w
}

func (f *fakeAPI) addItem(wishlistID uuid.UUID, name string) client.Item {
	item := client.Item{ID: uuid.New(), WishlistID: wishlistID, Name: name, Priority: 2}
	f.mu.Lock()
	f.items[item.ID] = &item
	f.mu.Unlock()
	return item
}

func (f *fakeAPI) befriend(a, b uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.friends[a] == nil {
		f.friends[a] = make(map[uuid.UUID]bool)
	}
	if f.friends[b] == nil {
		f.friends[b] = make(map[uuid.UUID]bool)
	}
	f.friends[a][b] = true
	f.friends[b][a] = true
}

// anonClient builds a client with an empty session.
func (f *fakeAPI) anonClient(t *testing.T) *client.Client {
	return client.New(f.srv.URL, client.NewSession(client.NewMemoryStorage()))
}

// userClient builds a client authenticated as u.
func (f *fakeAPI) userClient(t *testing.T, u client.User, token string) *client.Client {
	session := client.NewSession(client.NewMemoryStorage())
	if err := session.SetCredentials(token, &u); err != nil {
		t.Fatalf("set credentials: %v", err)
	}
	return client.New(f.srv.URL, session)
}

func (f *fakeAPI) viewer(r *http.Request) (client.User, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return client.User{}, false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.tokens[token]
	return u, ok
}

func (f *fakeAPI) canSee(w *client.Wishlist, viewer client.User, authed bool) bool {
	if w.IsPublic {
		return true
	}
	if !authed {
		return false
	}
	return w.OwnerID == viewer.ID || f.friends[w.OwnerID][viewer.ID]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (f *fakeAPI) handleMyWishlists(w http.ResponseWriter, r *http.Request) {
	u, ok := f.viewer(r)
	if !ok {
		http.Error(w, "missing or invalid token", http.StatusUnauthorized)
		return
	}
	f.mu.Lock()
	lists := []client.Wishlist{}
	for _, wl := range f.wishlists {
		if wl.OwnerID == u.ID {
			lists = append(lists, *wl)
		}
	}
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, lists)
}

func (f *fakeAPI) handleFriendsWishlists(w http.ResponseWriter, r *http.Request) {
	u, ok := f.viewer(r)
	if !ok {
		http.Error(w, "missing or invalid token", http.StatusUnauthorized)
		return
	}
	f.mu.Lock()
	lists := []client.Wishlist{}
	for _, wl := range f.wishlists {
		if f.friends[wl.OwnerID][u.ID] {
			shared := *wl
			if owner, ok := f.usersByID[wl.OwnerID]; ok {
				shared.OwnerName = owner.Name
				shared.OwnerUsername = owner.Username
			}
			lists = append(lists, shared)
		}
	}
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, lists)
}

func (f *fakeAPI) handlePublicWishlist(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	u, authed := f.viewer(r)

	f.mu.Lock()
	wl, exists := f.wishlists[id]
	if !exists {
		f.mu.Unlock()
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if !f.canSee(wl, u, authed) {
		f.mu.Unlock()
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	shared := *wl
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, shared)
}

func (f *fakeAPI) handleMyItems(w http.ResponseWriter, r *http.Request) {
	u, ok := f.viewer(r)
	if !ok {
		http.Error(w, "missing or invalid token", http.StatusUnauthorized)
		return
	}
	f.mu.Lock()
	items := []client.Item{}
	for _, item := range f.items {
		if wl, ok := f.wishlists[item.WishlistID]; ok && wl.OwnerID == u.ID {
			items = append(items, *item)
		}
	}
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, items)
}

func (f *fakeAPI) handlePublicItems(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	u, authed := f.viewer(r)

	f.mu.Lock()
	wl, exists := f.wishlists[id]
	if !exists {
		f.mu.Unlock()
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if !f.canSee(wl, u, authed) {
		f.mu.Unlock()
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	items := []client.Item{}
	for _, item := range f.items {
		if item.WishlistID == id {
			items = append(items, *item)
		}
	}
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, items)
}

func (f *fakeAPI) handleItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	u, authed := f.viewer(r)

	f.mu.Lock()
	item, exists := f.items[id]
	if !exists {
		f.mu.Unlock()
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	wl := f.wishlists[item.WishlistID]
	if wl == nil || !f.canSee(wl, u, authed) {
		f.mu.Unlock()
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	copied := *item
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, copied)
}

type claimBody struct {
	UserID    string `json:"user_id,omitempty"`
	GuestName string `json:"guest_name,omitempty"`
}

func (f *fakeAPI) handleClaim(w http.ResponseWriter, r *http.Request) {
	id, body, u, ok := f.decodeClaim(w, r)
	if !ok {
		return
	}

	f.mu.Lock()
	item, exists := f.items[id]
	if !exists {
		f.mu.Unlock()
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if item.ClaimedByUserID != nil || item.ClaimedByName != "" {
		f.mu.Unlock()
		http.Error(w, "item is already claimed", http.StatusConflict)
		return
	}
	if body.UserID != "" {
		item.ClaimedByUserID = &u.ID
		item.ClaimedByDisplayName = u.Name
	} else {
		item.ClaimedByName = strings.TrimSpace(body.GuestName)
	}
	copied := *item
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, copied)
}

func (f *fakeAPI) handleUnclaim(w http.ResponseWriter, r *http.Request) {
	id, body, u, ok := f.decodeClaim(w, r)
	if !ok {
		return
	}

	f.mu.Lock()
	item, exists := f.items[id]
	if !exists {
		f.mu.Unlock()
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	switch {
	case body.UserID != "":
		if item.ClaimedByUserID == nil || *item.ClaimedByUserID != u.ID {
			f.mu.Unlock()
			http.Error(w, "not the claimant", http.StatusConflict)
			return
		}
	default:
		if item.ClaimedByName == "" || item.ClaimedByName != strings.TrimSpace(body.GuestName) {
			f.mu.Unlock()
			http.Error(w, "not the claimant", http.StatusConflict)
			return
		}
	}
	item.ClaimedByUserID = nil
	item.ClaimedByName = ""
	item.ClaimedByDisplayName = ""
	copied := *item
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, copied)
}

// decodeClaim parses the item id and discriminated body, enforcing that a
// user_id claim comes from that same authenticated user.
func (f *fakeAPI) decodeClaim(w http.ResponseWriter, r *http.Request) (uuid.UUID, claimBody, client.User, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, claimBody{}, client.User{}, false
	}
	var body claimBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return uuid.Nil, claimBody{}, client.User{}, false
	}
	u, authed := f.viewer(r)
	if body.UserID != "" {
		if !authed || body.UserID != u.ID.String() {
			http.Error(w, "user_id must match the authenticated user", http.StatusBadRequest)
			return uuid.Nil, claimBody{}, client.User{}, false
		}
	} else if strings.TrimSpace(body.GuestName) == "" {
		http.Error(w, "user_id or guest_name is required", http.StatusBadRequest)
		return uuid.Nil, claimBody{}, client.User{}, false
	}
	return id, body, u, true
}

// handleLogin accepts the fixed password "pw-<username>" and returns the
// token addUser registered for that user.
func (f *fakeAPI) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	token := "token-" + creds.Username
	u, exists := f.tokens[token]
	if !exists || creds.Password != "pw-"+creds.Username {
		http.Error(w, "invalid username or password", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"access_token": token, "user": u})
}

func (f *fakeAPI) handleProfile(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	u, exists := f.usersByID[id]
	f.mu.Unlock()
	if !exists {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, client.Profile{ID: u.ID, Username: u.Username, Name: u.Name})
}
