package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wishfox/notifier/internal/domain"
	"github.com/wishfox/notifier/internal/queue"
	"github.com/wishfox/notifier/internal/repository"
)

// FanOutService turns a wish event into one durable pending notification per
// follower and hands the resulting work to the delivery queue.
//
// The protocol is strictly two-phase: durable write first (event row plus
// notification rows, one transaction), enqueue only after commit. A work item
// therefore never references a row that could still roll back.
type FanOutService struct {
	store     repository.NotificationRepository
	directory repository.DirectoryRepository
	q         *queue.Queue
	botName   string
	logger    *zap.Logger

	// Hook for metrics — injected by main so the service stays metrics-agnostic.
	onFanOut func(typ domain.NotificationType, count int)
}

func NewFanOutService(
	store repository.NotificationRepository,
	directory repository.DirectoryRepository,
	q *queue.Queue,
	botName string,
	logger *zap.Logger,
	onFanOut func(domain.NotificationType, int),
) *FanOutService {
	if onFanOut == nil {
		onFanOut = func(domain.NotificationType, int) {}
	}
	return &FanOutService{
		store:     store,
		directory: directory,
		q:         q,
		botName:   botName,
		logger:    logger,
		onFanOut:  onFanOut,
	}
}

// OnWishEvent is the trigger called by the CRUD collaborator after a wish
// mutation. It returns the number of notifications created.
//
// Events on a private wishlist produce zero notifications and zero writes;
// that is a normal outcome, not a fault. Delivery outcome never propagates
// back to the triggering request — only a failure of the fan-out transaction
// itself does.
func (s *FanOutService) OnWishEvent(ctx context.Context, wishID int64, action domain.EventAction) (int, error) {
	if !action.IsValid() {
		return 0, domain.ErrInvalidAction
	}

	wc, err := s.directory.WishContext(ctx, wishID)
	if err != nil {
		return 0, fmt.Errorf("load wish context: %w", err)
	}

	if !wc.Wishlist.Visibility.Notifiable() {
		return 0, nil
	}

	followers, err := s.directory.FollowersOf(ctx, wc.Owner.ID)
	if err != nil {
		return 0, fmt.Errorf("resolve audience: %w", err)
	}

	// Self-follows are impossible upstream; tolerate and skip if one appears.
	recipients := make([]int64, 0, len(followers))
	for _, id := range followers {
		if id != wc.Owner.ID {
			recipients = append(recipients, id)
		}
	}
	if len(recipients) == 0 {
		return 0, nil
	}

	typ := action.NotificationType()
	payload := domain.BuildPayload(wc, s.botName)

	event := &domain.Event{
		ID:       uuid.New().String(),
		ActorID:  wc.Owner.ID,
		Entity:   "wish",
		EntityID: wishID,
		Action:   action,
	}

	notifications, err := s.store.CreateFanOut(ctx, event, recipients, typ, payload)
	if err != nil {
		return 0, fmt.Errorf("persist fan-out: %w", err)
	}

	// Rows are committed; from here on nothing fails the triggering action.
	for _, n := range notifications {
		if err := s.q.Enqueue(queue.Item{NotificationID: n.ID}); err != nil {
			// The row stays pending; the reconciler re-enqueues it later.
			s.logger.Warn("queue full: notification will remain pending",
				zap.String("notification_id", n.ID), zap.Error(err))
		}
	}

	s.onFanOut(typ, len(notifications))
	s.logger.Info("fan-out complete",
		zap.Int64("wish_id", wishID),
		zap.String("type", string(typ)),
		zap.Int("notifications", len(notifications)),
	)
	return len(notifications), nil
}

func (s *FanOutService) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	return s.store.GetByID(ctx, id)
}

func (s *FanOutService) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Notification, int, error) {
	return s.store.ListByRecipient(ctx, filter)
}
