package repository

import (
	"context"

	"github.com/wishfox/notifier/internal/domain"
)

// DirectoryRepository is the read surface over the external collaborators'
// tables: the wish/wishlist/user snapshot, the subscription graph, and
// recipient chat identity. The core never writes through this interface.
type DirectoryRepository interface {
	// WishContext loads the joined wish → wishlist → owner snapshot used to
	// build the notification payload. Returns domain.ErrNotFound when the
	// wish does not exist.
	WishContext(ctx context.Context, wishID int64) (*domain.WishContext, error)

	// FollowersOf returns the distinct follower IDs of the given user.
	FollowersOf(ctx context.Context, userID int64) ([]int64, error)

	// Recipient resolves a follower's external chat identity and locale.
	// A recipient with a nil chat ID is unreachable, which is a valid state.
	Recipient(ctx context.Context, userID int64) (*domain.Recipient, error)
}
