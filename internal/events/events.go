// Package events is the Redis-backed activity feed. Every mutation of a
// wishlist (item changes, claims, unclaims) is recorded to a capped per-list
// history and fanned out over pub/sub so connected viewers know to refetch.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Rdb is the global Redis client. Connect it once at application startup.
var Rdb *redis.Client

// historyLen caps the stored activity entries per wishlist.
const historyLen = 50

// Activity kinds.
const (
	KindItemCreated = "item_created"
	KindItemUpdated = "item_updated"
	KindItemDeleted = "item_deleted"
	KindClaimed     = "item_claimed"
	KindUnclaimed   = "item_unclaimed"
	KindListUpdated = "wishlist_updated"
)

// Activity is one entry in a wishlist's feed. Claim entries never name the
// claimant: the feed is visible to the list owner, and claims are meant to be
// hidden from them.
type Activity struct {
	WishlistID uuid.UUID `json:"wishlist_id"`
	ItemID     uuid.UUID `json:"item_id,omitempty"`
	Kind       string    `json:"kind"`
	Timestamp  int64     `json:"timestamp"`
}

// Connect initializes the global Redis client. REDIS_ADDR / REDIS_DB are
// passed in by the caller from config.
func Connect(addr, db string) error {
	dbIdx, err := strconv.Atoi(db)
	if err != nil {
		dbIdx = 0
	}

	Rdb = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return nil
}

// Enabled reports whether a Redis connection is available. The feed degrades
// to a no-op when it is not.
func Enabled() bool {
	return Rdb != nil
}

func feedKey(wishlistID uuid.UUID) string {
	return "giftwish:feed:" + wishlistID.String()
}

func channel(wishlistID uuid.UUID) string {
	return "giftwish:watch:" + wishlistID.String()
}

// Publish records the activity and notifies subscribers. Best effort: the
// triggering request must not fail because the feed is down, so callers log
// and discard the returned error.
func Publish(ctx context.Context, a Activity) error {
	if Rdb == nil {
		return nil
	}
	if a.Timestamp == 0 {
		a.Timestamp = time.Now().Unix()
	}

	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal activity: %w", err)
	}

	pipe := Rdb.TxPipeline()
	pipe.LPush(ctx, feedKey(a.WishlistID), data)
	pipe.LTrim(ctx, feedKey(a.WishlistID), 0, historyLen-1)
	pipe.Publish(ctx, channel(a.WishlistID), data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish activity: %w", err)
	}
	return nil
}

// Recent returns the newest-first activity history for a wishlist.
func Recent(ctx context.Context, wishlistID uuid.UUID) ([]Activity, error) {
	if Rdb == nil {
		return nil, nil
	}

	raw, err := Rdb.LRange(ctx, feedKey(wishlistID), 0, historyLen-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read activity feed: %w", err)
	}

	out := make([]Activity, 0, len(raw))
	for _, entry := range raw {
		var a Activity
		if err := json.Unmarshal([]byte(entry), &a); err != nil {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// Subscribe opens a pub/sub subscription for one wishlist's activity. The
// caller owns the subscription and must Close it.
func Subscribe(ctx context.Context, wishlistID uuid.UUID) *redis.PubSub {
	return Rdb.Subscribe(ctx, channel(wishlistID))
}
