package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"giftwish/internal/models"
)

// ErrForbidden is returned when a row exists but the caller may not see it.
var ErrForbidden = errors.New("forbidden")

const wishlistColumns = `w.id, w.owner_id, w.title, w.description, w.is_public, w.color,
       w.thumbnail_type, w.thumbnail_icon, w.image IS NOT NULL,
       (SELECT COUNT(*) FROM wishlist_items i WHERE i.wishlist_id = w.id),
       w.created_at, w.updated_at`

func scanWishlist(row pgx.Row) (*models.Wishlist, error) {
	var w models.Wishlist
	err := row.Scan(
		&w.ID, &w.OwnerID, &w.Title, &w.Description, &w.IsPublic, &w.Color,
		&w.ThumbnailType, &w.ThumbnailIcon, &w.HasImage,
		&w.ItemCount,
		&w.CreatedAt, &w.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// CreateWishlist inserts a wishlist owned by wishlist.OwnerID. image may be nil.
func CreateWishlist(ctx context.Context, wishlist *models.Wishlist, image []byte) error {
	if wishlist.ID == uuid.Nil {
		id, err := uuid.NewRandom()
		if err != nil {
			return fmt.Errorf("failed to generate wishlist id: %w", err)
		}
		wishlist.ID = id
	}
	if wishlist.ThumbnailType == "" {
		wishlist.ThumbnailType = models.ThumbnailIcon
	}

	q := `INSERT INTO wishlists
	        (id, owner_id, title, description, is_public, color, thumbnail_type, thumbnail_icon, image)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, q,
			wishlist.ID, wishlist.OwnerID, wishlist.Title, wishlist.Description,
			wishlist.IsPublic, wishlist.Color, wishlist.ThumbnailType, wishlist.ThumbnailIcon, image,
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to insert wishlist: %w", err)
	}
	wishlist.HasImage = len(image) > 0
	return nil
}

// ListWishlistsByOwner returns all wishlists owned by ownerID.
func ListWishlistsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Wishlist, error) {
	q := `SELECT ` + wishlistColumns + ` FROM wishlists w WHERE w.owner_id=$1 ORDER BY w.created_at`
	rows, err := DB.Query(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ws []models.Wishlist
	for rows.Next() {
		w, err := scanWishlist(rows)
		if err != nil {
			return nil, err
		}
		ws = append(ws, *w)
	}
	return ws, rows.Err()
}

// GetWishlistOwned returns the wishlist only if viewerID owns it. A wishlist
// that exists but belongs to someone else yields ErrForbidden so the handler
// can answer 403 rather than leaking existence as 404.
func GetWishlistOwned(ctx context.Context, id, viewerID uuid.UUID) (*models.Wishlist, error) {
	w, err := scanWishlist(DB.QueryRow(ctx, `SELECT `+wishlistColumns+` FROM wishlists w WHERE w.id=$1`, id))
	if err != nil {
		return nil, err
	}
	if w.OwnerID != viewerID {
		return nil, ErrForbidden
	}
	return w, nil
}

// GetWishlistShared returns a wishlist for a non-owner viewer: allowed when
// the list is public, or when viewerID (non-nil) is an accepted friend of the
// owner. Owner identity is joined in for display.
func GetWishlistShared(ctx context.Context, id uuid.UUID, viewerID uuid.UUID) (*models.Wishlist, error) {
	q := `
	SELECT ` + wishlistColumns + `, u.name, u.username
	FROM wishlists w
	JOIN users u ON u.id = w.owner_id
	WHERE w.id=$1
	`
	var w models.Wishlist
	err := DB.QueryRow(ctx, q, id).Scan(
		&w.ID, &w.OwnerID, &w.Title, &w.Description, &w.IsPublic, &w.Color,
		&w.ThumbnailType, &w.ThumbnailIcon, &w.HasImage,
		&w.ItemCount,
		&w.CreatedAt, &w.UpdatedAt,
		&w.OwnerName, &w.OwnerUsername,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if w.IsPublic || w.OwnerID == viewerID {
		return &w, nil
	}
	if viewerID != uuid.Nil {
		friends, err := AreFriends(ctx, w.OwnerID, viewerID)
		if err != nil {
			return nil, err
		}
		if friends {
			return &w, nil
		}
	}
	return nil, ErrForbidden
}

// ListFriendsWishlists returns every wishlist owned by an accepted friend of
// viewerID, with owner identity joined in.
func ListFriendsWishlists(ctx context.Context, viewerID uuid.UUID) ([]models.Wishlist, error) {
	q := `
	SELECT ` + wishlistColumns + `, u.name, u.username
	FROM wishlists w
	JOIN users u ON u.id = w.owner_id
	JOIN friends f ON f.status='accepted'
	  AND ((f.requester_id=$1 AND f.recipient_id=w.owner_id)
	    OR (f.recipient_id=$1 AND f.requester_id=w.owner_id))
	ORDER BY w.updated_at DESC
	`
	rows, err := DB.Query(ctx, q, viewerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ws []models.Wishlist
	for rows.Next() {
		var w models.Wishlist
		err := rows.Scan(
			&w.ID, &w.OwnerID, &w.Title, &w.Description, &w.IsPublic, &w.Color,
			&w.ThumbnailType, &w.ThumbnailIcon, &w.HasImage,
			&w.ItemCount,
			&w.CreatedAt, &w.UpdatedAt,
			&w.OwnerName, &w.OwnerUsername,
		)
		if err != nil {
			return nil, err
		}
		ws = append(ws, w)
	}
	return ws, rows.Err()
}

// WishlistUpdate carries the optional fields of a wishlist edit.
type WishlistUpdate struct {
	Title         *string
	Description   *string
	IsPublic      *bool
	Color         *string
	ThumbnailType *string
	ThumbnailIcon *string
	Image         []byte
}

// UpdateWishlist applies a partial edit; only the owner's rows match.
func UpdateWishlist(ctx context.Context, id, ownerID uuid.UUID, upd WishlistUpdate) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		set := func(col string, val interface{}) error {
			q := fmt.Sprintf(`UPDATE wishlists SET %s=$1, updated_at=NOW() WHERE id=$2 AND owner_id=$3`, col)
			ct, err := tx.Exec(ctx, q, val, id, ownerID)
			if err != nil {
				return err
			}
			if ct.RowsAffected() == 0 {
				return ErrNotFound
			}
			return nil
		}
		if upd.Title != nil {
			if err := set("title", *upd.Title); err != nil {
				return err
			}
		}
		if upd.Description != nil {
			if err := set("description", *upd.Description); err != nil {
				return err
			}
		}
		if upd.IsPublic != nil {
			if err := set("is_public", *upd.IsPublic); err != nil {
				return err
			}
		}
		if upd.Color != nil {
			if err := set("color", *upd.Color); err != nil {
				return err
			}
		}
		if upd.ThumbnailType != nil {
			if err := set("thumbnail_type", *upd.ThumbnailType); err != nil {
				return err
			}
		}
		if upd.ThumbnailIcon != nil {
			if err := set("thumbnail_icon", *upd.ThumbnailIcon); err != nil {
				return err
			}
		}
		if len(upd.Image) > 0 {
			if err := set("image", upd.Image); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteWishlist removes an owned wishlist; items cascade.
func DeleteWishlist(ctx context.Context, id, ownerID uuid.UUID) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, `DELETE FROM wishlists WHERE id=$1 AND owner_id=$2`, id, ownerID)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// GetWishlistImage returns the stored thumbnail image for any wishlist the
// caller can already see; visibility is checked by the caller.
func GetWishlistImage(ctx context.Context, id uuid.UUID) ([]byte, error) {
	var img []byte
	err := DB.QueryRow(ctx, `SELECT image FROM wishlists WHERE id=$1`, id).Scan(&img)
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
