package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"giftwish/internal/models"
)

// InsertFriendRequest stores a pending request from requester to recipient.
// The friends_pair_idx index holds one row per pair regardless of direction,
// so a re-request from either side lands on the same row: still-pending
// requests are refreshed, while an accepted relationship is left alone and
// the caller sees pgx.ErrNoRows.
func InsertFriendRequest(ctx context.Context, requester, recipient uuid.UUID) (uuid.UUID, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return uuid.Nil, err
	}

	q := `
		INSERT INTO friends (id, requester_id, recipient_id, status)
		VALUES ($1, $2, $3, 'pending')
		ON CONFLICT (LEAST(requester_id, recipient_id), GREATEST(requester_id, recipient_id))
		DO UPDATE SET status='pending', updated_at=NOW()
		WHERE friends.status <> 'accepted'
		RETURNING id
	`
	err = pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, q, id, requester, recipient).Scan(&id)
	})
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// AcceptFriendRequest flips a pending request to accepted. Only the recipient
// may accept, which the WHERE clause enforces.
func AcceptFriendRequest(ctx context.Context, requestID, recipient uuid.UUID) error {
	q := `
		UPDATE friends
		SET status='accepted', updated_at=NOW()
		WHERE id=$1 AND recipient_id=$2 AND status='pending'
	`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, q, requestID, recipient)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return fmt.Errorf("no pending friend request %v for user %v: %w", requestID, recipient, ErrNotFound)
		}
		return nil
	})
}

// DeclineFriendRequest deletes a pending request addressed to recipient.
func DeclineFriendRequest(ctx context.Context, requestID, recipient uuid.UUID) error {
	q := `DELETE FROM friends WHERE id=$1 AND recipient_id=$2 AND status='pending'`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, q, requestID, recipient)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return fmt.Errorf("no pending friend request %v for user %v: %w", requestID, recipient, ErrNotFound)
		}
		return nil
	})
}

// ListFriendRequests returns pending requests addressed to userID, joined
// with the sender's identity.
func ListFriendRequests(ctx context.Context, userID uuid.UUID) ([]models.FriendRequestInfo, error) {
	q := `
		SELECT f.id, u.id, u.username, u.name, f.created_at
		FROM friends f
		JOIN users u ON u.id = f.requester_id
		WHERE f.recipient_id=$1 AND f.status='pending'
		ORDER BY f.created_at DESC
	`
	rows, err := DB.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []models.FriendRequestInfo
	for rows.Next() {
		var r models.FriendRequestInfo
		if err := rows.Scan(&r.ID, &r.UserID, &r.Username, &r.Name, &r.CreatedAt); err != nil {
			return nil, err
		}
		reqs = append(reqs, r)
	}
	return reqs, rows.Err()
}

// ListFriends returns accepted friends of userID from either direction of
// the relationship.
func ListFriends(ctx context.Context, userID uuid.UUID) ([]models.FriendInfo, error) {
	q := `
		SELECT u.id, u.username, u.name
		FROM friends f
		JOIN users u ON u.id = CASE WHEN f.requester_id=$1 THEN f.recipient_id ELSE f.requester_id END
		WHERE (f.requester_id=$1 OR f.recipient_id=$1) AND f.status='accepted'
		ORDER BY u.username
	`
	rows, err := DB.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fs []models.FriendInfo
	for rows.Next() {
		var f models.FriendInfo
		if err := rows.Scan(&f.ID, &f.Username, &f.Name); err != nil {
			return nil, err
		}
		fs = append(fs, f)
	}
	return fs, rows.Err()
}

// AreFriends reports whether an accepted relationship exists between the two
// users in either direction.
func AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	q := `
		SELECT EXISTS (
			SELECT 1 FROM friends
			WHERE status='accepted'
			  AND ((requester_id=$1 AND recipient_id=$2) OR (requester_id=$2 AND recipient_id=$1))
		)
	`
	var ok bool
	if err := DB.QueryRow(ctx, q, a, b).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}
