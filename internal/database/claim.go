package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Claim exclusivity lives in these two statements: a claim only lands on a
// row whose claimant columns are both NULL, and an unclaim only lands when
// the presented identity matches the recorded claimant. Racing claimers are
// serialized by the row update; the loser sees ErrAlreadyClaimed.
var (
	ErrAlreadyClaimed = errors.New("item is already claimed")
	ErrNotClaimed     = errors.New("item is not claimed")
	ErrNotClaimant    = errors.New("claim belongs to someone else")
)

// ClaimItemByUser records a registered user's claim on an unclaimed item.
func ClaimItemByUser(ctx context.Context, itemID, userID uuid.UUID) error {
	q := `
	UPDATE wishlist_items
	SET claimed_by_user_id=$1, updated_at=NOW()
	WHERE id=$2 AND claimed_by_user_id IS NULL AND claimed_by_name IS NULL
	`
	return claimUpdate(ctx, q, ErrAlreadyClaimed, ErrAlreadyClaimed, userID, itemID)
}

// ClaimItemByGuest records an anonymous claim under a self-reported name.
func ClaimItemByGuest(ctx context.Context, itemID uuid.UUID, guestName string) error {
	q := `
	UPDATE wishlist_items
	SET claimed_by_name=$1, updated_at=NOW()
	WHERE id=$2 AND claimed_by_user_id IS NULL AND claimed_by_name IS NULL
	`
	return claimUpdate(ctx, q, ErrAlreadyClaimed, ErrAlreadyClaimed, guestName, itemID)
}

// UnclaimItemByUser releases a claim held by userID.
func UnclaimItemByUser(ctx context.Context, itemID, userID uuid.UUID) error {
	q := `
	UPDATE wishlist_items
	SET claimed_by_user_id=NULL, updated_at=NOW()
	WHERE id=$2 AND claimed_by_user_id=$1
	`
	return claimUpdate(ctx, q, ErrNotClaimant, ErrNotClaimed, userID, itemID)
}

// UnclaimItemByGuest releases a guest claim. Identity is name-string
// equality only; anyone presenting the recorded name may release the claim.
// That is the product's accepted trust boundary, not an oversight.
func UnclaimItemByGuest(ctx context.Context, itemID uuid.UUID, guestName string) error {
	q := `
	UPDATE wishlist_items
	SET claimed_by_name=NULL, updated_at=NOW()
	WHERE id=$2 AND claimed_by_name=$1
	`
	return claimUpdate(ctx, q, ErrNotClaimant, ErrNotClaimed, guestName, itemID)
}

// claimUpdate runs a conditional claim transition. When the update misses,
// the row's claim state says why: heldErr for an existing claim (it blocked a
// claim, or belongs to someone else on unclaim), unheldErr for no claim at
// all, ErrNotFound for a missing item.
func claimUpdate(ctx context.Context, q string, heldErr, unheldErr error, ident interface{}, itemID uuid.UUID) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, q, ident, itemID)
		if err != nil {
			return err
		}
		if ct.RowsAffected() > 0 {
			return nil
		}

		var held bool
		err = tx.QueryRow(ctx,
			`SELECT claimed_by_user_id IS NOT NULL OR claimed_by_name IS NOT NULL FROM wishlist_items WHERE id=$1`,
			itemID,
		).Scan(&held)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if held {
			return heldErr
		}
		return unheldErr
	})
}
