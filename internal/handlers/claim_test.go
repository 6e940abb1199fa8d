package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"giftwish/internal/database"
	"giftwish/internal/models"
)

func doClaim(t *testing.T, method, itemID, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, "/wishlist/"+itemID+"/claim", bytes.NewBufferString(body))
	req.SetPathValue("id", itemID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	if method == http.MethodPost {
		ClaimItemHandler(w, req)
	} else {
		UnclaimItemHandler(w, req)
	}
	return w
}

// TestClaimFlow exercises claim exclusivity end to end: first writer wins,
// the owner never sees claims, and guest claims are released by name.
func TestClaimFlow(t *testing.T) {
	setupTestDB(t)

	alice, aliceToken := createTestUser(t, "alice")
	bob, bobToken := createTestUser(t, "bob")

	list := models.Wishlist{OwnerID: alice.ID, Title: "Birthday", IsPublic: true}
	if err := database.CreateWishlist(context.Background(), &list, nil); err != nil {
		t.Fatalf("CreateWishlist failed: %v", err)
	}
	item := models.WishlistItem{WishlistID: list.ID, Name: "Socks", Priority: models.PriorityDefault}
	if err := database.CreateItem(context.Background(), alice.ID, &item, nil); err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}

	// bob claims the item
	w := doClaim(t, http.MethodPost, item.ID.String(), `{"user_id":"`+bob.ID.String()+`"}`, bobToken)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 ok, got %d, body=%s", w.Code, w.Body.String())
	}
	var claimed models.WishlistItem
	if err := json.Unmarshal(w.Body.Bytes(), &claimed); err != nil {
		t.Fatalf("failed to decode item: %v", err)
	}
	if claimed.ClaimedByUserID == nil || *claimed.ClaimedByUserID != bob.ID {
		t.Fatalf("expected item claimed by bob, got %+v", claimed)
	}

	// a racing guest claim loses with a conflict
	w2 := doClaim(t, http.MethodPost, item.ID.String(), `{"guest_name":"Carol"}`, "")
	if w2.Code != http.StatusConflict {
		t.Fatalf("expected 409 conflict, got %d, body=%s", w2.Code, w2.Body.String())
	}

	// the owner's own item listing hides the claim
	req := httptest.NewRequest("GET", "/wishlist/", nil)
	req.Header.Set("Authorization", "Bearer "+aliceToken)
	w3 := httptest.NewRecorder()
	ListMyItemsHandler(w3, req)
	if w3.Code != http.StatusOK {
		t.Fatalf("expected 200 ok, got %d, body=%s", w3.Code, w3.Body.String())
	}
	var ownItems []models.WishlistItem
	if err := json.Unmarshal(w3.Body.Bytes(), &ownItems); err != nil {
		t.Fatalf("failed to decode items: %v", err)
	}
	for _, it := range ownItems {
		if it.ID == item.ID && it.Claimed() {
			t.Fatalf("owner can see the claim on item %s", it.ID)
		}
	}

	// other viewers see it through the public listing
	req2 := httptest.NewRequest("GET", "/wishlist/public/"+list.ID.String(), nil)
	req2.SetPathValue("wishlistId", list.ID.String())
	w4 := httptest.NewRecorder()
	PublicWishlistItemsHandler(w4, req2)
	if w4.Code != http.StatusOK {
		t.Fatalf("expected 200 ok, got %d, body=%s", w4.Code, w4.Body.String())
	}
	var publicItems []models.WishlistItem
	if err := json.Unmarshal(w4.Body.Bytes(), &publicItems); err != nil {
		t.Fatalf("failed to decode items: %v", err)
	}
	seen := false
	for _, it := range publicItems {
		if it.ID == item.ID && it.Claimed() {
			seen = true
		}
	}
	if !seen {
		t.Fatalf("expected the claim to be visible in the public listing")
	}

	// bob releases his claim
	w5 := doClaim(t, http.MethodDelete, item.ID.String(), `{"user_id":"`+bob.ID.String()+`"}`, bobToken)
	if w5.Code != http.StatusOK {
		t.Fatalf("expected 200 ok, got %d, body=%s", w5.Code, w5.Body.String())
	}

	// guest claim cycle: claim as Sam, wrong name rejected, right name wins
	w6 := doClaim(t, http.MethodPost, item.ID.String(), `{"guest_name":"Sam"}`, "")
	if w6.Code != http.StatusOK {
		t.Fatalf("expected 200 ok, got %d, body=%s", w6.Code, w6.Body.String())
	}
	w7 := doClaim(t, http.MethodDelete, item.ID.String(), `{"guest_name":"Alex"}`, "")
	if w7.Code != http.StatusConflict {
		t.Fatalf("expected 409 conflict, got %d, body=%s", w7.Code, w7.Body.String())
	}
	w8 := doClaim(t, http.MethodDelete, item.ID.String(), `{"guest_name":"Sam"}`, "")
	if w8.Code != http.StatusOK {
		t.Fatalf("expected 200 ok, got %d, body=%s", w8.Code, w8.Body.String())
	}
	var released models.WishlistItem
	if err := json.Unmarshal(w8.Body.Bytes(), &released); err != nil {
		t.Fatalf("failed to decode item: %v", err)
	}
	if released.Claimed() {
		t.Fatalf("expected item unclaimed after release, got %+v", released)
	}

	// releasing again reports that no claim exists, not a claimant mismatch
	w9 := doClaim(t, http.MethodDelete, item.ID.String(), `{"guest_name":"Sam"}`, "")
	if w9.Code != http.StatusConflict {
		t.Fatalf("expected 409 conflict, got %d, body=%s", w9.Code, w9.Body.String())
	}
	if !strings.Contains(w9.Body.String(), "not claimed") {
		t.Fatalf("expected a not-claimed conflict, body=%s", w9.Body.String())
	}

	// the owner may not claim on their own list
	w10 := doClaim(t, http.MethodPost, item.ID.String(), `{"user_id":"`+alice.ID.String()+`"}`, aliceToken)
	if w10.Code != http.StatusForbidden {
		t.Fatalf("expected 403 forbidden, got %d, body=%s", w10.Code, w10.Body.String())
	}
}
