package handlers

import (
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"giftwish/internal/database"
)

// MeHandler returns the authenticated user's full record.
func MeHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticate(r)
	if err != nil {
		http.Error(w, "missing or invalid token", http.StatusUnauthorized)
		return
	}

	user, err := database.GetUserByID(r.Context(), userID)
	if err != nil {
		storeError(w, err)
		return
	}
	user.Password = ""
	writeJSON(w, http.StatusOK, user)
}

// UpdateUserHandler applies a partial profile edit from a multipart form.
// Users can only edit themselves. Recognized parts: name, the *_size fields,
// profile_picture, and the remove_profile_picture flag.
func UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticate(r)
	if err != nil {
		http.Error(w, "missing or invalid token", http.StatusUnauthorized)
		return
	}
	targetID, err := pathUUID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if targetID != userID {
		http.Error(w, "cannot edit another user", http.StatusForbidden)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart payload", http.StatusBadRequest)
		return
	}

	upd := database.ProfileUpdate{Sizes: map[string]string{}}
	if values, ok := r.MultipartForm.Value["name"]; ok && len(values) > 0 {
		upd.Name = &values[0]
	}
	for _, field := range []string{"shoe_size", "shirt_size", "pants_size", "hat_size", "ring_size", "dress_size", "jacket_size"} {
		if values, ok := r.MultipartForm.Value[field]; ok && len(values) > 0 {
			upd.Sizes[field] = values[0]
		}
	}
	upd.RemoveImage = r.FormValue("remove_profile_picture") == "true"
	if file, _, err := r.FormFile("profile_picture"); err == nil {
		upd.Image, err = io.ReadAll(io.LimitReader(file, maxUploadBytes))
		file.Close()
		if err != nil {
			http.Error(w, "failed to read profile picture", http.StatusBadRequest)
			return
		}
	}

	if err := database.UpdateUserProfile(r.Context(), userID, upd); err != nil {
		log.Errorf("failed to update profile for %v: %v", userID, err)
		storeError(w, err)
		return
	}

	user, err := database.GetUserByID(r.Context(), userID)
	if err != nil {
		storeError(w, err)
		return
	}
	user.Password = ""
	writeJSON(w, http.StatusOK, user)
}

// PublicUserHandler returns the public profile of any user. No auth: guest
// viewers of a public wishlist use this to resolve the owner's name.
func PublicUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	profile, err := database.GetPublicProfile(r.Context(), id)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// ProfileImageHandler serves the raw stored profile image.
func ProfileImageHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	img, err := database.GetProfileImage(r.Context(), id)
	if err != nil {
		storeError(w, err)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(img))
	w.Write(img)
}
