package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"

	"giftwish/internal/auth"
	"giftwish/internal/database"
	"giftwish/internal/models"
)

// maxUploadBytes caps multipart bodies (profile pictures, item images).
const maxUploadBytes = 8 << 20

type authResponse struct {
	AccessToken string       `json:"access_token"`
	User        *models.User `json:"user"`
}

type registerRequest struct {
	Username string `validate:"required,min=3,max=32"`
	Password string `validate:"required,min=8"`
	Email    string `validate:"omitempty,email"`
	Name     string `validate:"max=64"`
}

// RegisterHandler creates an account from a multipart form, with an optional
// profile_picture part, and logs the new user straight in.
func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart payload", http.StatusBadRequest)
		return
	}

	req := registerRequest{
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
		Email:    r.FormValue("email"),
		Name:     r.FormValue("name"),
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "invalid registration payload", http.StatusBadRequest)
		return
	}

	var picture []byte
	if file, _, err := r.FormFile("profile_picture"); err == nil {
		picture, err = io.ReadAll(io.LimitReader(file, maxUploadBytes))
		file.Close()
		if err != nil {
			http.Error(w, "failed to read profile picture", http.StatusBadRequest)
			return
		}
	}

	user := models.User{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Name:     req.Name,
	}

	if err := database.CreateUser(r.Context(), &user, picture); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			http.Error(w, "username already exists", http.StatusConflict)
			return
		}
		log.Errorf("failed to create user: %v", err)
		http.Error(w, "error creating user", http.StatusInternalServerError)
		return
	}

	token, err := auth.CreateToken(user.ID.String())
	if err != nil {
		http.Error(w, "failed to create token", http.StatusInternalServerError)
		return
	}

	user.Password = ""
	setAuthCookie(w, token)
	writeJSON(w, http.StatusCreated, authResponse{AccessToken: token, User: &user})
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginHandler authenticates a user and returns the access token plus the
// user record. The token is also set as a cookie for browser callers.
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "username and password are required", http.StatusBadRequest)
		return
	}

	token, user, err := database.AuthenticateUser(r.Context(), req.Username, req.Password)
	if err != nil {
		log.Infof("failed login for %q: %v", req.Username, err)
		http.Error(w, "authentication failed", http.StatusForbidden)
		return
	}

	setAuthCookie(w, token)
	writeJSON(w, http.StatusOK, authResponse{AccessToken: token, User: user})
}

func setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		HttpOnly: true,
		Path:     "/",
		MaxAge:   auth.TokenTTLSeconds(),
	})
}
