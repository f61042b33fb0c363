package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wishfox/notifier/internal/domain"
)

type pgNotificationRepository struct {
	pool *pgxpool.Pool
}

// NewPgNotificationRepository returns a NotificationRepository backed by PostgreSQL.
func NewPgNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &pgNotificationRepository{pool: pool}
}

func (r *pgNotificationRepository) CreateFanOut(
	ctx context.Context,
	event *domain.Event,
	recipients []int64,
	typ domain.NotificationType,
	payload domain.Payload,
) ([]*domain.Notification, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	now := time.Now().UTC()
	event.CreatedAt = now

	_, err = tx.Exec(ctx, `
		INSERT INTO events (id, actor_id, entity, entity_id, action, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		event.ID, event.ActorID, event.Entity, event.EntityID, event.Action, event.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	notifications := make([]*domain.Notification, 0, len(recipients))
	for _, recipientID := range recipients {
		n := &domain.Notification{
			ID:          uuid.New().String(),
			RecipientID: recipientID,
			Type:        typ,
			Payload:     payload,
			Status:      domain.StatusPending,
			CreatedAt:   now,
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO notifications (id, recipient_id, type, payload, status, created_at)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			n.ID, n.RecipientID, n.Type, n.Payload, n.Status, n.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("insert notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit fan-out: %w", err)
	}

	return notifications, nil
}

func (r *pgNotificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, recipient_id, type, payload, status, error, claimed_at, sent_at, created_at
		FROM notifications WHERE id = $1`, id)

	n, err := scanNotification(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return n, err
}

func (r *pgNotificationRepository) ListByRecipient(ctx context.Context, f domain.ListFilter) ([]*domain.Notification, int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = $1`, f.RecipientID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	offset := (f.Page - 1) * f.Limit
	rows, err := r.pool.Query(ctx, `
		SELECT id, recipient_id, type, payload, status, error, claimed_at, sent_at, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, f.RecipientID, f.Limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications, err := scanNotifications(rows)
	return notifications, total, err
}

// Claim is a single conditional UPDATE, not read-then-write: concurrent
// claims of the same ID race on this statement and exactly one matches the
// status predicate.
func (r *pgNotificationRepository) Claim(ctx context.Context, id string) (*domain.Notification, bool, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE notifications
		SET status = 'sending', claimed_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING id, recipient_id, type, payload, status, error, claimed_at, sent_at, created_at`, id)

	n, err := scanNotification(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("claim notification: %w", err)
	}
	return n, true, nil
}

func (r *pgNotificationRepository) FinalizeSent(ctx context.Context, id string, sentAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET status = 'sent', sent_at = $1, error = NULL
		WHERE id = $2 AND status = 'sending'`, sentAt, id)
	return err
}

func (r *pgNotificationRepository) MarkSuppressed(ctx context.Context, id, reason string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET status = 'suppressed', error = $1
		WHERE id = $2 AND status = 'sending'`, reason, id)
	return err
}

func (r *pgNotificationRepository) RevertToPending(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET status = 'pending', claimed_at = NULL
		WHERE id = $1 AND status = 'sending'`, id)
	return err
}

func (r *pgNotificationRepository) FindStalePending(ctx context.Context, age time.Duration, limit int) ([]string, error) {
	cutoff := time.Now().UTC().Add(-age)
	rows, err := r.pool.Query(ctx, `
		SELECT id FROM notifications
		WHERE status = 'pending' AND created_at <= $1
		LIMIT $2`, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("find stale pending: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

func (r *pgNotificationRepository) FindStaleClaims(ctx context.Context, age time.Duration, limit int) ([]string, error) {
	cutoff := time.Now().UTC().Add(-age)
	rows, err := r.pool.Query(ctx, `
		SELECT id FROM notifications
		WHERE status = 'sending' AND claimed_at <= $1
		LIMIT $2`, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("find stale claims: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

// ---- helpers ----

// scanNotification reads a single notification row from any pgx row type.
func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var n domain.Notification
	err := row.Scan(
		&n.ID, &n.RecipientID, &n.Type, &n.Payload, &n.Status,
		&n.Error, &n.ClaimedAt, &n.SentAt, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func scanNotifications(rows pgx.Rows) ([]*domain.Notification, error) {
	var result []*domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func scanIDs(rows pgx.Rows) ([]string, error) {
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
