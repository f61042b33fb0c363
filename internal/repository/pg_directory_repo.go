package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wishfox/notifier/internal/domain"
)

type pgDirectoryRepository struct {
	pool *pgxpool.Pool
}

// NewPgDirectoryRepository returns a DirectoryRepository backed by PostgreSQL.
func NewPgDirectoryRepository(pool *pgxpool.Pool) DirectoryRepository {
	return &pgDirectoryRepository{pool: pool}
}

func (r *pgDirectoryRepository) WishContext(ctx context.Context, wishID int64) (*domain.WishContext, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT w.id, w.wishlist_id, w.title, w.description, w.url,
		       w.price::text, w.image_url, w.priority, w.status, w.tags,
		       l.id, l.owner_id, l.title, l.visibility,
		       u.id, u.tg_user_id, u.tg_username, u.custom_username, u.display_name, u.locale
		FROM wishes w
		JOIN wishlists l ON l.id = w.wishlist_id
		JOIN users u ON u.id = l.owner_id
		WHERE w.id = $1`, wishID)

	var wc domain.WishContext
	err := row.Scan(
		&wc.Wish.ID, &wc.Wish.WishlistID, &wc.Wish.Title, &wc.Wish.Description, &wc.Wish.URL,
		&wc.Wish.Price, &wc.Wish.ImageURL, &wc.Wish.Priority, &wc.Wish.Status, &wc.Wish.Tags,
		&wc.Wishlist.ID, &wc.Wishlist.OwnerID, &wc.Wishlist.Title, &wc.Wishlist.Visibility,
		&wc.Owner.ID, &wc.Owner.TgUserID, &wc.Owner.TgUsername, &wc.Owner.CustomUsername,
		&wc.Owner.DisplayName, &wc.Owner.Locale,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load wish context: %w", err)
	}
	return &wc, nil
}

func (r *pgDirectoryRepository) FollowersOf(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT follower_id FROM subscriptions WHERE target_user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("load followers: %w", err)
	}
	defer rows.Close()

	var followers []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		followers = append(followers, id)
	}
	return followers, rows.Err()
}

func (r *pgDirectoryRepository) Recipient(ctx context.Context, userID int64) (*domain.Recipient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, tg_user_id, locale FROM users WHERE id = $1`, userID)

	var rec domain.Recipient
	err := row.Scan(&rec.UserID, &rec.ChatID, &rec.Locale)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load recipient: %w", err)
	}
	return &rec, nil
}
