package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"

	"giftwish/internal/database"
	"giftwish/internal/models"
)

// RequestFriendHandler sends a friend request to another user.
//
// Request payload: { "friendId": "some-uuid-string" }
func RequestFriendHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticate(r)
	if err != nil {
		http.Error(w, "missing or invalid token", http.StatusUnauthorized)
		return
	}

	var req struct {
		FriendID string `json:"friendId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	friendID, err := uuid.Parse(req.FriendID)
	if err != nil {
		http.Error(w, "invalid friendId", http.StatusBadRequest)
		return
	}
	if friendID == userID {
		http.Error(w, "cannot friend yourself", http.StatusBadRequest)
		return
	}

	requestID, err := database.InsertFriendRequest(r.Context(), userID, friendID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			http.Error(w, "already friends", http.StatusConflict)
			return
		}
		log.Errorf("failed to insert friend request: %v", err)
		http.Error(w, "failed to send friend request", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": requestID.String()})
}

// ListFriendRequestsHandler returns pending requests addressed to the caller.
func ListFriendRequestsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticate(r)
	if err != nil {
		http.Error(w, "missing or invalid token", http.StatusUnauthorized)
		return
	}

	reqs, err := database.ListFriendRequests(r.Context(), userID)
	if err != nil {
		storeError(w, err)
		return
	}
	if reqs == nil {
		reqs = []models.FriendRequestInfo{}
	}
	writeJSON(w, http.StatusOK, reqs)
}

// AcceptFriendRequestHandler accepts a pending request addressed to the caller.
func AcceptFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticate(r)
	if err != nil {
		http.Error(w, "missing or invalid token", http.StatusUnauthorized)
		return
	}
	requestID, err := pathUUID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := database.AcceptFriendRequest(r.Context(), requestID, userID); err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": models.FriendStatusAccepted})
}

// DeclineFriendRequestHandler declines (deletes) a pending request.
func DeclineFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticate(r)
	if err != nil {
		http.Error(w, "missing or invalid token", http.StatusUnauthorized)
		return
	}
	requestID, err := pathUUID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := database.DeclineFriendRequest(r.Context(), requestID, userID); err != nil {
		storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListFriendsHandler returns the caller's accepted friends.
func ListFriendsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticate(r)
	if err != nil {
		http.Error(w, "missing or invalid token", http.StatusUnauthorized)
		return
	}

	friends, err := database.ListFriends(r.Context(), userID)
	if err != nil {
		storeError(w, err)
		return
	}
	if friends == nil {
		friends = []models.FriendInfo{}
	}
	writeJSON(w, http.StatusOK, friends)
}

// FriendsWishlistsHandler returns every wishlist shared with the caller
// through an accepted friendship.
func FriendsWishlistsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticate(r)
	if err != nil {
		http.Error(w, "missing or invalid token", http.StatusUnauthorized)
		return
	}

	lists, err := database.ListFriendsWishlists(r.Context(), userID)
	if err != nil {
		storeError(w, err)
		return
	}
	if lists == nil {
		lists = []models.Wishlist{}
	}
	writeJSON(w, http.StatusOK, lists)
}

// SearchUsersHandler finds users for the add-friend picker.
func SearchUsersHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticate(r)
	if err != nil {
		http.Error(w, "missing or invalid token", http.StatusUnauthorized)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeJSON(w, http.StatusOK, []models.PublicProfile{})
		return
	}

	users, err := database.SearchUsers(r.Context(), query, userID)
	if err != nil {
		storeError(w, err)
		return
	}
	if users == nil {
		users = []models.PublicProfile{}
	}
	writeJSON(w, http.StatusOK, users)
}
