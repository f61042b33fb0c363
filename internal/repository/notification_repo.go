package repository

import (
	"context"
	"time"

	"github.com/wishfox/notifier/internal/domain"
)

// NotificationRepository is the durable record of pending/sent notifications
// and the sole cross-worker serialization point.
// The pgx implementation is in pg_notification_repo.go.
// Tests use a hand-written mock (mock_notification_repo.go).
type NotificationRepository interface {
	// CreateFanOut inserts the triggering event row plus one pending
	// notification per recipient, all in a single transaction. If the
	// transaction rolls back, no notifications exist.
	CreateFanOut(ctx context.Context, event *domain.Event, recipients []int64, typ domain.NotificationType, payload domain.Payload) ([]*domain.Notification, error)

	GetByID(ctx context.Context, id string) (*domain.Notification, error)
	ListByRecipient(ctx context.Context, filter domain.ListFilter) ([]*domain.Notification, int, error)

	// Claim atomically transitions pending → sending and returns the claimed
	// record. ok=false on a missing or already-claimed/terminal record: that
	// is a normal "nothing to do" outcome, not an error. Only the caller that
	// got ok=true may invoke the transport.
	Claim(ctx context.Context, id string) (*domain.Notification, bool, error)

	// FinalizeSent records the terminal sent state after a transport success.
	FinalizeSent(ctx context.Context, id string, sentAt time.Time) error

	// MarkSuppressed terminalizes a claimed notification that can never be
	// delivered (unreachable recipient, permanent transport failure).
	MarkSuppressed(ctx context.Context, id, reason string) error

	// RevertToPending releases a claim when the transport was provably never
	// invoked, making the notification eligible for redelivery.
	RevertToPending(ctx context.Context, id string) error

	// FindStalePending returns IDs of pending notifications older than age —
	// rows whose work item the queue dropped or lost across a restart.
	FindStalePending(ctx context.Context, age time.Duration, limit int) ([]string, error)

	// FindStaleClaims returns IDs of sending notifications claimed longer
	// than age ago — workers that died or exhausted their retries.
	FindStaleClaims(ctx context.Context, age time.Duration, limit int) ([]string, error)
}
