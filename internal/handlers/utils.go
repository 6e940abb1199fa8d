package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"giftwish/internal/auth"
	"giftwish/internal/database"
)

// validate is shared by all request payload structs in this package.
var validate = validator.New()

// errUnauthenticated is returned by authenticate when no usable credential
// is present on the request.
var errUnauthenticated = errors.New("missing or invalid credentials")

// bearerToken pulls the access token off the request: Authorization header
// first, auth_token cookie as a fallback for browser callers.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if c, err := r.Cookie("auth_token"); err == nil {
		return c.Value
	}
	return ""
}

// authenticate resolves the caller's user id or fails with errUnauthenticated.
func authenticate(r *http.Request) (uuid.UUID, error) {
	token := bearerToken(r)
	if token == "" {
		return uuid.Nil, errUnauthenticated
	}
	sub, err := auth.VerifyToken(token)
	if err != nil {
		return uuid.Nil, errUnauthenticated
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, errUnauthenticated
	}
	return id, nil
}

// viewerID resolves the caller's user id when a valid token is present and
// uuid.Nil otherwise. Used on endpoints that serve anonymous viewers too.
func viewerID(r *http.Request) uuid.UUID {
	id, err := authenticate(r)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// pathUUID parses the named path wildcard as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// storeError maps storage sentinel errors onto HTTP statuses. Anything
// unrecognized is an internal error with a generic body.
func storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, database.ErrForbidden):
		http.Error(w, "access denied", http.StatusForbidden)
	case errors.Is(err, database.ErrAlreadyClaimed):
		http.Error(w, "item is already claimed", http.StatusConflict)
	case errors.Is(err, database.ErrNotClaimed):
		http.Error(w, "item is not claimed", http.StatusConflict)
	case errors.Is(err, database.ErrNotClaimant):
		http.Error(w, "claim belongs to someone else", http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
