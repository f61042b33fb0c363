package domain

import "time"

// NotificationType identifies the wish event that produced a notification.
type NotificationType string

const (
	TypeWishCreated NotificationType = "wish_created"
	TypeWishUpdated NotificationType = "wish_updated"
)

func (t NotificationType) IsValid() bool {
	switch t {
	case TypeWishCreated, TypeWishUpdated:
		return true
	}
	return false
}

// Status tracks the delivery lifecycle of a notification.
//
// Legal transitions:
//
//	pending → sending     (atomic claim; the only path into delivery)
//	sending → sent        (transport acknowledged)
//	sending → suppressed  (permanent failure or unreachable recipient)
//	sending → pending     (explicit revert when the transport was provably
//	                       never invoked, or the reconciler expired a stale claim)
//
// sent and suppressed are terminal. Notifications are never deleted here;
// retention is an external concern.
type Status string

const (
	StatusPending    Status = "pending"
	StatusSending    Status = "sending"
	StatusSent       Status = "sent"
	StatusSuppressed Status = "suppressed"
)

// Notification is the per-follower unit of delivery work.
// The payload is a snapshot taken at fan-out time; later edits to the wish
// never change it.
type Notification struct {
	ID          string           `json:"id"`
	RecipientID int64            `json:"recipient_id"`
	Type        NotificationType `json:"type"`
	Payload     Payload          `json:"payload"`
	Status      Status           `json:"status"`
	Error       *string          `json:"error,omitempty"`
	ClaimedAt   *time.Time       `json:"claimed_at,omitempty"`
	SentAt      *time.Time       `json:"sent_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Payload is the immutable snapshot embedded in every notification of a
// fan-out batch. JSON keys mirror the persisted record shape.
type Payload struct {
	WishID      int64           `json:"wish_id"`
	Title       string          `json:"title"`
	Description *string         `json:"description,omitempty"`
	URL         *string         `json:"url,omitempty"`
	Price       *string         `json:"price,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	Priority    string          `json:"priority,omitempty"`
	Status      string          `json:"status,omitempty"`
	Owner       PayloadOwner    `json:"owner"`
	Wishlist    PayloadWishlist `json:"wishlist"`
	DeepLink    *string         `json:"deep_link,omitempty"`
	ImageURL    *string         `json:"image_url,omitempty"`
}

// PayloadOwner captures the wish owner's identity at fan-out time.
type PayloadOwner struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
	Username    string `json:"username"`
}

// PayloadWishlist captures the containing wishlist at fan-out time.
type PayloadWishlist struct {
	ID         int64      `json:"id"`
	Title      string     `json:"title"`
	Visibility Visibility `json:"visibility"`
}

// ListFilter holds query parameters for the per-recipient notification feed.
type ListFilter struct {
	RecipientID int64
	Page        int
	Limit       int
}
