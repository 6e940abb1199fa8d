package client_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giftwish/client"
)

func TestAuthedClaim(t *testing.T) {
	api := newFakeAPI(t)
	owner, _ := api.addUser("alice", "Alice")
	giver, giverToken := api.addUser("bob", "Bob")
	list := api.addWishlist(owner, "Birthday", true)
	item := api.addItem(list.ID, "Socks")

	c := api.userClient(t, giver, giverToken)
	cc := client.NewClaimCoordinator(c, item)
	require.Equal(t, client.StateUnclaimed, cc.State())

	require.NoError(t, cc.RequestClaim(context.Background()))
	assert.Equal(t, client.StateClaimed, cc.State())
	require.NotNil(t, cc.Item().ClaimedByUserID)
	assert.Equal(t, giver.ID, *cc.Item().ClaimedByUserID)
	assert.True(t, cc.CanUnclaim(""))
}

func TestGuestClaimFlow(t *testing.T) {
	api := newFakeAPI(t)
	owner, _ := api.addUser("alice", "Alice")
	list := api.addWishlist(owner, "Birthday", true)
	item := api.addItem(list.ID, "Socks")

	c := api.anonClient(t)
	cc := client.NewClaimCoordinator(c, item)

	// Asking to claim while anonymous prompts for a name; nothing is sent.
	before := api.requestCount()
	require.NoError(t, cc.RequestClaim(context.Background()))
	assert.Equal(t, client.StateAwaitingGuestName, cc.State())
	assert.Equal(t, before, api.requestCount())

	// A blank name fails locally, still without network traffic.
	err := cc.ConfirmGuestClaim(context.Background(), "   ")
	require.ErrorIs(t, err, client.ErrGuestNameRequired)
	assert.Equal(t, before, api.requestCount())

	require.NoError(t, cc.ConfirmGuestClaim(context.Background(), "  Sam "))
	assert.Equal(t, client.StateClaimed, cc.State())
	assert.Equal(t, "Sam", cc.Item().ClaimedByName)
}

func TestCancelGuestClaim(t *testing.T) {
	api := newFakeAPI(t)
	owner, _ := api.addUser("alice", "Alice")
	list := api.addWishlist(owner, "Birthday", true)
	item := api.addItem(list.ID, "Socks")

	c := api.anonClient(t)
	cc := client.NewClaimCoordinator(c, item)
	require.NoError(t, cc.RequestClaim(context.Background()))
	require.Equal(t, client.StateAwaitingGuestName, cc.State())

	cc.CancelGuestClaim()
	assert.Equal(t, client.StateUnclaimed, cc.State())
}

func TestClaimRace(t *testing.T) {
	api := newFakeAPI(t)
	owner, _ := api.addUser("alice", "Alice")
	first, firstToken := api.addUser("bob", "Bob")
	second, secondToken := api.addUser("carol", "Carol")
	list := api.addWishlist(owner, "Birthday", true)
	item := api.addItem(list.ID, "Socks")

	// Both viewers start from the same unclaimed snapshot.
	winner := client.NewClaimCoordinator(api.userClient(t, first, firstToken), item)
	loser := client.NewClaimCoordinator(api.userClient(t, second, secondToken), item)

	require.NoError(t, winner.RequestClaim(context.Background()))

	err := loser.RequestClaim(context.Background())
	require.ErrorIs(t, err, client.ErrClaimFailed)

	// The failed attempt resynced: the loser now sees the winner's claim and
	// may not release it.
	assert.Equal(t, client.StateClaimed, loser.State())
	require.NotNil(t, loser.Item().ClaimedByUserID)
	assert.Equal(t, first.ID, *loser.Item().ClaimedByUserID)
	assert.False(t, loser.CanUnclaim(""))
}

func TestAuthedUnclaimByNonClaimant(t *testing.T) {
	api := newFakeAPI(t)
	owner, _ := api.addUser("alice", "Alice")
	claimant, claimantToken := api.addUser("bob", "Bob")
	other, otherToken := api.addUser("carol", "Carol")
	list := api.addWishlist(owner, "Birthday", true)
	item := api.addItem(list.ID, "Socks")

	cc := client.NewClaimCoordinator(api.userClient(t, claimant, claimantToken), item)
	require.NoError(t, cc.RequestClaim(context.Background()))

	intruder := client.NewClaimCoordinator(api.userClient(t, other, otherToken), cc.Item())
	err := intruder.RequestUnclaim(context.Background(), "")
	require.ErrorIs(t, err, client.ErrClaimFailed)
	assert.Equal(t, client.StateClaimed, intruder.State())
}

func TestGuestUnclaimWrongName(t *testing.T) {
	api := newFakeAPI(t)
	owner, _ := api.addUser("alice", "Alice")
	list := api.addWishlist(owner, "Birthday", true)
	item := api.addItem(list.ID, "Socks")

	sam := client.NewClaimCoordinator(api.anonClient(t), item)
	require.NoError(t, sam.RequestClaim(context.Background()))
	require.NoError(t, sam.ConfirmGuestClaim(context.Background(), "Sam"))

	alex := client.NewClaimCoordinator(api.anonClient(t), sam.Item())
	assert.False(t, alex.CanUnclaim("Alex"))
	err := alex.RequestUnclaim(context.Background(), "Alex")
	require.ErrorIs(t, err, client.ErrClaimFailed)
	assert.Equal(t, client.StateClaimed, alex.State())
	assert.Equal(t, "Sam", alex.Item().ClaimedByName)
}

// Guest identity is only the self-reported name, so a fresh anonymous session
// that types the claimant's name can release the claim. That is the accepted
// trust boundary, not a bug.
func TestGuestUnclaimByMatchingName(t *testing.T) {
	api := newFakeAPI(t)
	owner, _ := api.addUser("alice", "Alice")
	list := api.addWishlist(owner, "Birthday", true)
	item := api.addItem(list.ID, "Socks")

	sam := client.NewClaimCoordinator(api.anonClient(t), item)
	require.NoError(t, sam.RequestClaim(context.Background()))
	require.NoError(t, sam.ConfirmGuestClaim(context.Background(), "Sam"))

	other := client.NewClaimCoordinator(api.anonClient(t), sam.Item())
	assert.True(t, other.CanUnclaim("Sam"))
	require.NoError(t, other.RequestUnclaim(context.Background(), "Sam"))
	assert.Equal(t, client.StateUnclaimed, other.State())
	assert.False(t, other.Item().Claimed())
}

func TestAnonUnclaimBlankName(t *testing.T) {
	api := newFakeAPI(t)
	owner, _ := api.addUser("alice", "Alice")
	list := api.addWishlist(owner, "Birthday", true)
	item := api.addItem(list.ID, "Socks")

	sam := client.NewClaimCoordinator(api.anonClient(t), item)
	require.NoError(t, sam.RequestClaim(context.Background()))
	require.NoError(t, sam.ConfirmGuestClaim(context.Background(), "Sam"))

	other := client.NewClaimCoordinator(api.anonClient(t), sam.Item())
	before := api.requestCount()
	err := other.RequestUnclaim(context.Background(), "  ")
	require.ErrorIs(t, err, client.ErrGuestNameRequired)
	assert.Equal(t, before, api.requestCount())
}
