package service_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/wishfox/notifier/internal/domain"
	"github.com/wishfox/notifier/internal/queue"
	"github.com/wishfox/notifier/internal/repository"
	"github.com/wishfox/notifier/internal/service"
)

func strPtr(s string) *string { return &s }

func newService() (*service.FanOutService, *repository.MockNotificationRepository, *repository.MockDirectoryRepository, *queue.Queue) {
	store := repository.NewMockNotificationRepository()
	directory := repository.NewMockDirectoryRepository()
	q := queue.New(100)
	svc := service.NewFanOutService(store, directory, q, "wishfox_bot", zap.NewNop(), nil)
	return svc, store, directory, q
}

func seedWish(directory *repository.MockDirectoryRepository, visibility domain.Visibility) {
	directory.SetWishContext(7, &domain.WishContext{
		Wish: domain.Wish{
			ID:         7,
			WishlistID: 3,
			Title:      "Mechanical keyboard",
			Priority:   "high",
			Status:     "planned",
		},
		Wishlist: domain.Wishlist{ID: 3, OwnerID: 1, Title: "Birthday", Visibility: visibility},
		Owner:    domain.User{ID: 1, TgUsername: strPtr("alice"), DisplayName: "Alice", Locale: "en"},
	})
}

func TestOnWishEvent_FansOutToAllFollowers(t *testing.T) {
	svc, store, directory, q := newService()
	ctx := context.Background()

	seedWish(directory, domain.VisibilityPublic)
	directory.SetFollowers(1, 10, 11)

	count, err := svc.OnWishEvent(ctx, 7, domain.ActionCreate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 notifications, got %d", count)
	}
	if q.Depth() != 2 {
		t.Fatalf("expected 2 enqueued work items, got %d", q.Depth())
	}

	for _, recipient := range []int64{10, 11} {
		notifications, _, err := store.ListByRecipient(ctx, domain.ListFilter{RecipientID: recipient})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(notifications) != 1 {
			t.Fatalf("recipient %d: expected 1 notification, got %d", recipient, len(notifications))
		}
		n := notifications[0]
		if n.Status != domain.StatusPending {
			t.Fatalf("expected pending, got %s", n.Status)
		}
		if n.Type != domain.TypeWishCreated {
			t.Fatalf("expected wish_created, got %s", n.Type)
		}
		if n.Payload.Title != "Mechanical keyboard" {
			t.Fatalf("unexpected payload title %q", n.Payload.Title)
		}
		if n.Payload.DeepLink == nil || *n.Payload.DeepLink != "https://t.me/wishfox_bot?startapp=alice" {
			t.Fatalf("unexpected deep link %v", n.Payload.DeepLink)
		}
	}
}

func TestOnWishEvent_PrivateWishlistLeaksNothing(t *testing.T) {
	svc, store, directory, q := newService()
	ctx := context.Background()

	seedWish(directory, domain.VisibilityPrivate)
	directory.SetFollowers(1, 10, 11)

	count, err := svc.OnWishEvent(ctx, 7, domain.ActionCreate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 notifications, got %d", count)
	}
	if q.Depth() != 0 {
		t.Fatalf("expected empty queue, got depth %d", q.Depth())
	}
	notifications, _, _ := store.ListByRecipient(ctx, domain.ListFilter{RecipientID: 10})
	if len(notifications) != 0 {
		t.Fatalf("expected no records, got %d", len(notifications))
	}
}

func TestOnWishEvent_UnlistedWishlistNotifies(t *testing.T) {
	svc, _, directory, _ := newService()

	seedWish(directory, domain.VisibilityUnlisted)
	directory.SetFollowers(1, 10)

	count, err := svc.OnWishEvent(context.Background(), 7, domain.ActionUpdate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 notification, got %d", count)
	}
}

func TestOnWishEvent_SkipsSelfFollow(t *testing.T) {
	svc, store, directory, _ := newService()
	ctx := context.Background()

	seedWish(directory, domain.VisibilityPublic)
	directory.SetFollowers(1, 1, 10) // owner somehow follows themself

	count, err := svc.OnWishEvent(ctx, 7, domain.ActionCreate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected self-follow skipped, got %d notifications", count)
	}
	owned, _, _ := store.ListByRecipient(ctx, domain.ListFilter{RecipientID: 1})
	if len(owned) != 0 {
		t.Fatal("owner must not be notified about their own wish")
	}
}

func TestOnWishEvent_NoFollowersNoWrites(t *testing.T) {
	svc, _, directory, q := newService()

	seedWish(directory, domain.VisibilityPublic)

	count, err := svc.OnWishEvent(context.Background(), 7, domain.ActionCreate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 || q.Depth() != 0 {
		t.Fatalf("expected nothing created, got count=%d depth=%d", count, q.Depth())
	}
}

func TestOnWishEvent_UpdateProducesUpdatedType(t *testing.T) {
	svc, store, directory, _ := newService()
	ctx := context.Background()

	seedWish(directory, domain.VisibilityPublic)
	directory.SetFollowers(1, 10)

	if _, err := svc.OnWishEvent(ctx, 7, domain.ActionUpdate); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	notifications, _, _ := store.ListByRecipient(ctx, domain.ListFilter{RecipientID: 10})
	if len(notifications) != 1 || notifications[0].Type != domain.TypeWishUpdated {
		t.Fatalf("expected one wish_updated notification, got %+v", notifications)
	}
}

func TestOnWishEvent_InvalidAction(t *testing.T) {
	svc, _, directory, _ := newService()
	seedWish(directory, domain.VisibilityPublic)

	_, err := svc.OnWishEvent(context.Background(), 7, "delete")
	if !errors.Is(err, domain.ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
}

func TestOnWishEvent_UnknownWish(t *testing.T) {
	svc, _, _, _ := newService()

	_, err := svc.OnWishEvent(context.Background(), 99, domain.ActionCreate)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOnWishEvent_StoreFailurePropagates(t *testing.T) {
	svc, store, directory, q := newService()

	seedWish(directory, domain.VisibilityPublic)
	directory.SetFollowers(1, 10)
	store.CreateFanOutErr = errors.New("connection lost")

	_, err := svc.OnWishEvent(context.Background(), 7, domain.ActionCreate)
	if err == nil {
		t.Fatal("expected error when the fan-out transaction fails")
	}
	if q.Depth() != 0 {
		t.Fatal("nothing may be enqueued when the transaction fails")
	}
}

func TestOnWishEvent_SharedSnapshotSurvivesLaterEdits(t *testing.T) {
	svc, store, directory, _ := newService()
	ctx := context.Background()

	seedWish(directory, domain.VisibilityPublic)
	directory.SetFollowers(1, 10)

	if _, err := svc.OnWishEvent(ctx, 7, domain.ActionCreate); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Edit the wish after fan-out, then trigger again.
	directory.SetWishContext(7, &domain.WishContext{
		Wish:     domain.Wish{ID: 7, WishlistID: 3, Title: "Renamed wish", Priority: "low", Status: "ordered"},
		Wishlist: domain.Wishlist{ID: 3, OwnerID: 1, Title: "Birthday", Visibility: domain.VisibilityPublic},
		Owner:    domain.User{ID: 1, TgUsername: strPtr("alice"), DisplayName: "Alice"},
	})
	if _, err := svc.OnWishEvent(ctx, 7, domain.ActionUpdate); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	notifications, _, _ := store.ListByRecipient(ctx, domain.ListFilter{RecipientID: 10})
	if len(notifications) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notifications))
	}

	titles := map[domain.NotificationType]string{}
	for _, n := range notifications {
		titles[n.Type] = n.Payload.Title
	}
	if titles[domain.TypeWishCreated] != "Mechanical keyboard" {
		t.Fatalf("first snapshot changed retroactively: %q", titles[domain.TypeWishCreated])
	}
	if titles[domain.TypeWishUpdated] != "Renamed wish" {
		t.Fatalf("second snapshot wrong: %q", titles[domain.TypeWishUpdated])
	}
}
