package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"giftwish/internal/models"
)

const itemColumns = `i.id, i.wishlist_id, i.name, i.description, i.price, i.url,
       i.priority, i.image IS NOT NULL,
       i.claimed_by_user_id, COALESCE(i.claimed_by_name, ''), COALESCE(NULLIF(c.name, ''), c.username, ''),
       i.created_at, i.updated_at`

const itemJoin = ` FROM wishlist_items i LEFT JOIN users c ON c.id = i.claimed_by_user_id `

func scanItem(row pgx.Row) (*models.WishlistItem, error) {
	var it models.WishlistItem
	err := row.Scan(
		&it.ID, &it.WishlistID, &it.Name, &it.Description, &it.Price, &it.URL,
		&it.Priority, &it.HasImage,
		&it.ClaimedByUserID, &it.ClaimedByName, &it.ClaimedByDisplayName,
		&it.CreatedAt, &it.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func collectItems(rows pgx.Rows) ([]models.WishlistItem, error) {
	defer rows.Close()
	var items []models.WishlistItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// CreateItem inserts an item into a wishlist owned by ownerID. image may be nil.
func CreateItem(ctx context.Context, ownerID uuid.UUID, item *models.WishlistItem, image []byte) error {
	if item.ID == uuid.Nil {
		id, err := uuid.NewRandom()
		if err != nil {
			return fmt.Errorf("failed to generate item id: %w", err)
		}
		item.ID = id
	}

	q := `
	INSERT INTO wishlist_items (id, wishlist_id, name, description, price, url, priority, image)
	SELECT $1, w.id, $3, $4, $5, $6, $7, $8
	FROM wishlists w
	WHERE w.id=$2 AND w.owner_id=$9
	`
	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		ct, execErr := tx.Exec(ctx, q,
			item.ID, item.WishlistID, item.Name, item.Description,
			item.Price, item.URL, item.Priority, image, ownerID,
		)
		if execErr != nil {
			return execErr
		}
		if ct.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	item.HasImage = len(image) > 0
	return nil
}

// GetItem returns a single item with claimant identity joined in.
func GetItem(ctx context.Context, id uuid.UUID) (*models.WishlistItem, error) {
	q := `SELECT ` + itemColumns + itemJoin + `WHERE i.id=$1`
	return scanItem(DB.QueryRow(ctx, q, id))
}

// ListItemsByOwner returns every item across all of ownerID's wishlists.
func ListItemsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.WishlistItem, error) {
	q := `SELECT ` + itemColumns + itemJoin + `
	JOIN wishlists w ON w.id = i.wishlist_id
	WHERE w.owner_id=$1
	ORDER BY i.created_at`
	rows, err := DB.Query(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	return collectItems(rows)
}

// ListItemsByWishlist returns the items of one wishlist without any access
// check; callers gate visibility first.
func ListItemsByWishlist(ctx context.Context, wishlistID uuid.UUID) ([]models.WishlistItem, error) {
	q := `SELECT ` + itemColumns + itemJoin + `WHERE i.wishlist_id=$1 ORDER BY i.priority DESC, i.created_at`
	rows, err := DB.Query(ctx, q, wishlistID)
	if err != nil {
		return nil, err
	}
	return collectItems(rows)
}

// ListClaimedByUser returns items the user has claimed on other people's
// wishlists, with wishlist and owner context for display.
func ListClaimedByUser(ctx context.Context, userID uuid.UUID) ([]models.ClaimedItem, error) {
	q := `
	SELECT ` + itemColumns + `, w.title, COALESCE(NULLIF(o.name, ''), o.username)
	` + itemJoin + `
	JOIN wishlists w ON w.id = i.wishlist_id
	JOIN users o ON o.id = w.owner_id
	WHERE i.claimed_by_user_id=$1
	ORDER BY i.updated_at DESC
	`
	rows, err := DB.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ClaimedItem
	for rows.Next() {
		var ci models.ClaimedItem
		err := rows.Scan(
			&ci.ID, &ci.WishlistID, &ci.Name, &ci.Description, &ci.Price, &ci.URL,
			&ci.Priority, &ci.HasImage,
			&ci.ClaimedByUserID, &ci.ClaimedByName, &ci.ClaimedByDisplayName,
			&ci.CreatedAt, &ci.UpdatedAt,
			&ci.WishlistTitle, &ci.OwnerName,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, ci)
	}
	return out, rows.Err()
}

// ItemUpdate carries the optional fields of an item edit.
type ItemUpdate struct {
	Name        *string
	Description *string
	Price       *float64
	URL         *string
	Priority    *int
	Image       []byte
}

// UpdateItem applies a partial edit to an item on one of ownerID's wishlists.
func UpdateItem(ctx context.Context, id, ownerID uuid.UUID, upd ItemUpdate) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		set := func(col string, val interface{}) error {
			q := fmt.Sprintf(`
				UPDATE wishlist_items i SET %s=$1, updated_at=NOW()
				FROM wishlists w
				WHERE i.id=$2 AND w.id=i.wishlist_id AND w.owner_id=$3`, col)
			ct, err := tx.Exec(ctx, q, val, id, ownerID)
			if err != nil {
				return err
			}
			if ct.RowsAffected() == 0 {
				return ErrNotFound
			}
			return nil
		}
		if upd.Name != nil {
			if err := set("name", *upd.Name); err != nil {
				return err
			}
		}
		if upd.Description != nil {
			if err := set("description", *upd.Description); err != nil {
				return err
			}
		}
		if upd.Price != nil {
			if err := set("price", *upd.Price); err != nil {
				return err
			}
		}
		if upd.URL != nil {
			if err := set("url", *upd.URL); err != nil {
				return err
			}
		}
		if upd.Priority != nil {
			if err := set("priority", *upd.Priority); err != nil {
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

// DeleteItem removes an item from one of ownerID's wishlists.
func DeleteItem(ctx context.Context, id, ownerID uuid.UUID) error {
	q := `
	DELETE FROM wishlist_items i
	USING wishlists w
	WHERE i.id=$1 AND w.id=i.wishlist_id AND w.owner_id=$2
	`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, q, id, ownerID)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// GetItemImage returns the stored item image bytes.
func GetItemImage(ctx context.Context, id uuid.UUID) ([]byte, error) {
	var img []byte
	err := DB.QueryRow(ctx, `SELECT image FROM wishlist_items WHERE id=$1`, id).Scan(&img)
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
