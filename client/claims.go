package client

import (
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"
)

// ClaimState is the coordinator's view of one item's claim.
type ClaimState string

const (
	// StateUnclaimed: nobody has claimed the item.
	StateUnclaimed ClaimState = "unclaimed"
	// StateAwaitingGuestName: an anonymous viewer asked to claim and must
	// supply a display name before anything is sent.
	StateAwaitingGuestName ClaimState = "awaiting_guest_name"
	// StateClaimed: the item carries a claim, by a user or a guest.
	StateClaimed ClaimState = "claimed"
)

var (
	// ErrGuestNameRequired is a local validation failure; no request was made.
	ErrGuestNameRequired = errors.New("a name is required to claim this item")
	// ErrClaimFailed is the generic outcome of any failed claim or unclaim
	// attempt. Conflicts (someone else won the race) are deliberately not
	// distinguished from transient failures; the resynced item says who holds
	// the claim now.
	ErrClaimFailed = errors.New("could not update the claim")
)

// ClaimCoordinator drives claim and unclaim for a single item and keeps its
// local copy consistent with the server. After every attempt, successful or
// not, it refetches the item, so the state it reports is server truth rather
// than an optimistic guess.
type ClaimCoordinator struct {
	client *Client
	item   Item
	state  ClaimState
}

// NewClaimCoordinator builds a coordinator around an item snapshot, deriving
// the initial state from its claim fields.
func NewClaimCoordinator(c *Client, item Item) *ClaimCoordinator {
	cc := &ClaimCoordinator{client: c, item: item}
	cc.deriveState()
	return cc
}

// State returns the current claim state.
func (cc *ClaimCoordinator) State() ClaimState {
	return cc.state
}

// Item returns the coordinator's current copy of the item.
func (cc *ClaimCoordinator) Item() Item {
	return cc.item
}

// RequestClaim starts a claim. An authenticated viewer claims immediately
// under their user id; an anonymous viewer is moved to AwaitingGuestName and
// no request is made until ConfirmGuestClaim.
func (cc *ClaimCoordinator) RequestClaim(ctx context.Context) error {
	if !cc.client.session.Authenticated() {
		cc.state = StateAwaitingGuestName
		return nil
	}
	user := cc.client.session.User()
	if user == nil {
		// Token without a cached user; restore the copy first.
		u, err := cc.client.Me(ctx)
		if err != nil {
			log.Warnf("claim: could not load current user: %v", err)
			return ErrClaimFailed
		}
		user = u
	}

	item, err := cc.client.ClaimItemAsUser(ctx, cc.item.ID, user.ID)
	return cc.settle(ctx, item, err)
}

// ConfirmGuestClaim completes a guest claim with the entered name. An empty
// or whitespace-only name fails locally without touching the network.
func (cc *ClaimCoordinator) ConfirmGuestClaim(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrGuestNameRequired
	}

	item, err := cc.client.ClaimItemAsGuest(ctx, cc.item.ID, name)
	return cc.settle(ctx, item, err)
}

// CancelGuestClaim dismisses the guest-name prompt and returns to the state
// the item's claim fields imply.
func (cc *ClaimCoordinator) CancelGuestClaim() {
	if cc.state == StateAwaitingGuestName {
		cc.deriveState()
	}
}

// CanUnclaim reports whether the viewer may release the current claim: a
// registered claimant must be the session user; a guest claim is released by
// whoever presents the matching name. Name equality is the only guest
// identity check the system has, and it is spoofable on purpose.
func (cc *ClaimCoordinator) CanUnclaim(guestName string) bool {
	switch {
	case !cc.item.Claimed():
		return false
	case cc.item.ClaimedByUserID != nil:
		u := cc.client.session.User()
		return u != nil && *cc.item.ClaimedByUserID == u.ID
	default:
		name := strings.TrimSpace(guestName)
		return name != "" && name == cc.item.ClaimedByName
	}
}

// RequestUnclaim releases the claim. Authenticated viewers release their own
// claim by user id; anonymous viewers present the guest name the claim was
// made under. An empty guest name from an anonymous viewer fails locally.
func (cc *ClaimCoordinator) RequestUnclaim(ctx context.Context, guestName string) error {
	if cc.client.session.Authenticated() {
		user := cc.client.session.User()
		if user == nil {
			u, err := cc.client.Me(ctx)
			if err != nil {
				log.Warnf("unclaim: could not load current user: %v", err)
				return ErrClaimFailed
			}
			user = u
		}
		item, err := cc.client.UnclaimItemAsUser(ctx, cc.item.ID, user.ID)
		return cc.settle(ctx, item, err)
	}

	guestName = strings.TrimSpace(guestName)
	if guestName == "" {
		return ErrGuestNameRequired
	}
	item, err := cc.client.UnclaimItemAsGuest(ctx, cc.item.ID, guestName)
	return cc.settle(ctx, item, err)
}

// Refresh refetches the item and rederives the state.
func (cc *ClaimCoordinator) Refresh(ctx context.Context) error {
	item, err := cc.client.Item(ctx, cc.item.ID)
	if err != nil {
		return err
	}
	cc.item = *item
	cc.deriveState()
	return nil
}

// settle folds an attempt's outcome into local state. Success already carries
// the post-attempt item; failure triggers a refetch so the viewer sees who
// actually holds the claim. The attempt's own error is reduced to the generic
// ErrClaimFailed after logging.
func (cc *ClaimCoordinator) settle(ctx context.Context, item *Item, err error) error {
	if err == nil {
		cc.item = *item
		cc.deriveState()
		return nil
	}
	log.Warnf("claim attempt on item %s failed: %v", cc.item.ID, err)
	if rerr := cc.Refresh(ctx); rerr != nil {
		log.Warnf("claim resync for item %s failed: %v", cc.item.ID, rerr)
	}
	return ErrClaimFailed
}

func (cc *ClaimCoordinator) deriveState() {
	if cc.item.Claimed() {
		cc.state = StateClaimed
	} else {
		cc.state = StateUnclaimed
	}
}
