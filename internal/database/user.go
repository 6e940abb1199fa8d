package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"giftwish/internal/auth"
	"giftwish/internal/models"
)

// ErrNotFound is returned by lookup functions when no row matches.
var ErrNotFound = errors.New("not found")

const userColumns = `id, username, email, password, name,
       profile_image IS NOT NULL,
       shoe_size, shirt_size, pants_size, hat_size, ring_size, dress_size, jacket_size,
       created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.Password, &u.Name,
		&u.HasProfileImage,
		&u.Sizes.Shoe, &u.Sizes.Shirt, &u.Sizes.Pants, &u.Sizes.Hat,
		&u.Sizes.Ring, &u.Sizes.Dress, &u.Sizes.Jacket,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser hashes the password and inserts the user. The plaintext password
// on the model is replaced by its hash. profileImage may be nil.
func CreateUser(ctx context.Context, user *models.User, profileImage []byte) error {
	if user.ID == uuid.Nil {
		id, err := uuid.NewRandom()
		if err != nil {
			return fmt.Errorf("failed to generate user id: %w", err)
		}
		user.ID = id
	}

	hash, err := auth.HashPassword(user.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = hash

	q := `INSERT INTO users
	        (id, username, email, password, name, profile_image,
	         shoe_size, shirt_size, pants_size, hat_size, ring_size, dress_size, jacket_size)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	err = pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, q,
			user.ID, user.Username, user.Email, user.Password, user.Name, profileImage,
			user.Sizes.Shoe, user.Sizes.Shirt, user.Sizes.Pants, user.Sizes.Hat,
			user.Sizes.Ring, user.Sizes.Dress, user.Sizes.Jacket,
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	user.HasProfileImage = len(profileImage) > 0
	return nil
}

func GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE username=$1`
	return scanUser(DB.QueryRow(ctx, q, username))
}

func GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(DB.QueryRow(ctx, q, id))
}

// AuthenticateUser checks credentials and returns a signed access token plus
// the user record with the password hash cleared.
func AuthenticateUser(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := GetUserByUsername(ctx, username)
	if err != nil {
		return "", nil, fmt.Errorf("user not found or db error: %w", err)
	}

	match, err := auth.VerifyPassword(password, user.Password)
	if err != nil || !match {
		return "", nil, fmt.Errorf("invalid credentials")
	}

	token, err := auth.CreateToken(user.ID.String())
	if err != nil {
		return "", nil, fmt.Errorf("failed to create token: %w", err)
	}

	user.Password = ""
	return token, user, nil
}

// ProfileUpdate carries the optional fields of a profile edit. Nil pointers
// mean "leave unchanged"; RemoveImage wins over Image.
type ProfileUpdate struct {
	Name        *string
	Sizes       map[string]string
	Image       []byte
	RemoveImage bool
}

// sizeColumns whitelists the updatable size columns.
var sizeColumns = map[string]string{
	"shoe_size":   "shoe_size",
	"shirt_size":  "shirt_size",
	"pants_size":  "pants_size",
	"hat_size":    "hat_size",
	"ring_size":   "ring_size",
	"dress_size":  "dress_size",
	"jacket_size": "jacket_size",
}

// UpdateUserProfile applies a partial profile update.
func UpdateUserProfile(ctx context.Context, id uuid.UUID, upd ProfileUpdate) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if upd.Name != nil {
			if _, err := tx.Exec(ctx, `UPDATE users SET name=$1, updated_at=NOW() WHERE id=$2`, *upd.Name, id); err != nil {
				return err
			}
		}
		for field, value := range upd.Sizes {
			col, ok := sizeColumns[field]
			if !ok {
				continue
			}
			q := fmt.Sprintf(`UPDATE users SET %s=$1, updated_at=NOW() WHERE id=$2`, col)
			if _, err := tx.Exec(ctx, q, value, id); err != nil {
				return err
			}
		}
		switch {
		case upd.RemoveImage:
			if _, err := tx.Exec(ctx, `UPDATE users SET profile_image=NULL, updated_at=NOW() WHERE id=$1`, id); err != nil {
				return err
			}
		case len(upd.Image) > 0:
			if _, err := tx.Exec(ctx, `UPDATE users SET profile_image=$1, updated_at=NOW() WHERE id=$2`, upd.Image, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetPublicProfile returns the publicly visible subset of a user.
func GetPublicProfile(ctx context.Context, id uuid.UUID) (*models.PublicProfile, error) {
	var p models.PublicProfile
	q := `
	SELECT id, username, name,
	       shoe_size, shirt_size, pants_size, hat_size, ring_size, dress_size, jacket_size
	FROM users
	WHERE id=$1
	`
	err := DB.QueryRow(ctx, q, id).Scan(
		&p.ID, &p.Username, &p.Name,
		&p.Sizes.Shoe, &p.Sizes.Shirt, &p.Sizes.Pants, &p.Sizes.Hat,
		&p.Sizes.Ring, &p.Sizes.Dress, &p.Sizes.Jacket,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProfileImage returns the raw stored profile image bytes.
func GetProfileImage(ctx context.Context, id uuid.UUID) ([]byte, error) {
	var img []byte
	err := DB.QueryRow(ctx, `SELECT profile_image FROM users WHERE id=$1`, id).Scan(&img)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(img) == 0 {
		return nil, ErrNotFound
	}
	return img, nil
}

// SearchUsers finds users whose username or display name contains the query,
// excluding the searcher. Capped result set for the add-friend picker.
func SearchUsers(ctx context.Context, query string, exclude uuid.UUID) ([]models.PublicProfile, error) {
	q := `
	SELECT id, username, name
	FROM users
	WHERE (username ILIKE '%' || $1 || '%' OR name ILIKE '%' || $1 || '%')
	  AND id <> $2
	ORDER BY username
	LIMIT 20
	`
	rows, err := DB.Query(ctx, q, query, exclude)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PublicProfile
	for rows.Next() {
		var p models.PublicProfile
		if err := rows.Scan(&p.ID, &p.Username, &p.Name); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
