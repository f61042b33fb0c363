package domain_test

import (
	"testing"

	"github.com/wishfox/notifier/internal/domain"
)

func strPtr(s string) *string { return &s }

func sampleContext() *domain.WishContext {
	return &domain.WishContext{
		Wish: domain.Wish{
			ID:          7,
			WishlistID:  3,
			Title:       "Mechanical keyboard",
			Description: strPtr("Brown switches, please"),
			URL:         strPtr("https://example.com/kb"),
			Price:       strPtr("129.99"),
			ImageURL:    strPtr("https://example.com/kb.jpg"),
			Priority:    "high",
			Status:      "planned",
			Tags:        []string{"tech", "gift"},
		},
		Wishlist: domain.Wishlist{
			ID:         3,
			OwnerID:    1,
			Title:      "Birthday",
			Visibility: domain.VisibilityPublic,
		},
		Owner: domain.User{
			ID:          1,
			TgUsername:  strPtr("alice_tg"),
			DisplayName: "Alice",
			Locale:      "en",
		},
	}
}

func TestBuildPayload(t *testing.T) {
	p := domain.BuildPayload(sampleContext(), "wishfox_bot")

	if p.WishID != 7 || p.Title != "Mechanical keyboard" {
		t.Fatalf("unexpected wish fields: %+v", p)
	}
	if p.Owner.ID != 1 || p.Owner.DisplayName != "Alice" || p.Owner.Username != "alice_tg" {
		t.Fatalf("unexpected owner: %+v", p.Owner)
	}
	if p.Wishlist.Title != "Birthday" || p.Wishlist.Visibility != domain.VisibilityPublic {
		t.Fatalf("unexpected wishlist: %+v", p.Wishlist)
	}
	if p.DeepLink == nil || *p.DeepLink != "https://t.me/wishfox_bot?startapp=alice_tg" {
		t.Fatalf("unexpected deep link: %v", p.DeepLink)
	}
	if len(p.Tags) != 2 {
		t.Fatalf("expected 2 tags, got %v", p.Tags)
	}
}

func TestBuildPayload_DeepLinkFallsBackToCustomUsername(t *testing.T) {
	wc := sampleContext()
	wc.Owner.TgUsername = nil
	wc.Owner.CustomUsername = strPtr("alice")

	p := domain.BuildPayload(wc, "wishfox_bot")
	if p.DeepLink == nil || *p.DeepLink != "https://t.me/wishfox_bot?startapp=alice" {
		t.Fatalf("expected custom-username deep link, got %v", p.DeepLink)
	}
	if p.Owner.Username != "alice" {
		t.Fatalf("expected handle alice, got %q", p.Owner.Username)
	}
}

func TestBuildPayload_NoHandleNoDeepLink(t *testing.T) {
	wc := sampleContext()
	wc.Owner.TgUsername = nil
	wc.Owner.CustomUsername = nil

	p := domain.BuildPayload(wc, "wishfox_bot")
	if p.DeepLink != nil {
		t.Fatalf("expected no deep link, got %v", *p.DeepLink)
	}
	if p.Owner.Username != "" {
		t.Fatalf("expected empty handle, got %q", p.Owner.Username)
	}
}

func TestBuildPayload_OptionalFieldsAbsent(t *testing.T) {
	wc := sampleContext()
	wc.Wish.Description = nil
	wc.Wish.URL = nil
	wc.Wish.Price = nil
	wc.Wish.ImageURL = nil
	wc.Wish.Tags = nil

	p := domain.BuildPayload(wc, "wishfox_bot")
	if p.Description != nil || p.URL != nil || p.Price != nil || p.ImageURL != nil {
		t.Fatalf("expected absent optional fields, got %+v", p)
	}
	if p.Tags != nil {
		t.Fatalf("expected nil tags, got %v", p.Tags)
	}
}

func TestBuildPayload_SnapshotImmutableAfterSourceMutation(t *testing.T) {
	wc := sampleContext()
	p := domain.BuildPayload(wc, "wishfox_bot")

	wc.Wish.Title = "changed"
	*wc.Wish.Description = "changed"
	wc.Wish.Tags[0] = "changed"
	wc.Owner.DisplayName = "changed"

	if p.Title != "Mechanical keyboard" {
		t.Fatalf("title leaked mutation: %q", p.Title)
	}
	if *p.Description != "Brown switches, please" {
		t.Fatalf("description leaked mutation: %q", *p.Description)
	}
	if p.Tags[0] != "tech" {
		t.Fatalf("tags leaked mutation: %v", p.Tags)
	}
	if p.Owner.DisplayName != "Alice" {
		t.Fatalf("owner leaked mutation: %q", p.Owner.DisplayName)
	}
}

func TestVisibility_Notifiable(t *testing.T) {
	tests := []struct {
		visibility domain.Visibility
		want       bool
	}{
		{domain.VisibilityPublic, true},
		{domain.VisibilityUnlisted, true},
		{domain.VisibilityPrivate, false},
	}
	for _, tc := range tests {
		if got := tc.visibility.Notifiable(); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.visibility, tc.want, got)
		}
	}
}

func TestEventAction_NotificationType(t *testing.T) {
	if domain.ActionCreate.NotificationType() != domain.TypeWishCreated {
		t.Fatal("create should map to wish_created")
	}
	if domain.ActionUpdate.NotificationType() != domain.TypeWishUpdated {
		t.Fatal("update should map to wish_updated")
	}
}
