package domain

import "time"

// Visibility controls who may see a wishlist and, by extension,
// whether events on it fan out to followers.
type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityUnlisted Visibility = "unlisted"
	VisibilityPrivate  Visibility = "private"
)

// Notifiable reports whether wish events on a list with this visibility
// may produce notifications. Private lists never leak.
func (v Visibility) Notifiable() bool {
	return v == VisibilityPublic || v == VisibilityUnlisted
}

// EventAction is the wish mutation that triggered a fan-out.
type EventAction string

const (
	ActionCreate EventAction = "create"
	ActionUpdate EventAction = "update"
)

func (a EventAction) IsValid() bool {
	return a == ActionCreate || a == ActionUpdate
}

// NotificationType maps an action to the notification type it produces.
func (a EventAction) NotificationType() NotificationType {
	if a == ActionUpdate {
		return TypeWishUpdated
	}
	return TypeWishCreated
}

// User is a read model over the identity collaborator's users table.
// TgUserID is the external chat identity; nil means the user cannot be
// reached through the bot.
type User struct {
	ID             int64
	TgUserID       *int64
	TgUsername     *string
	CustomUsername *string
	DisplayName    string
	Locale         string
}

// Handle returns the owner's public handle used for deep links:
// the Telegram username when present, the custom username as fallback,
// empty when neither exists.
func (u *User) Handle() string {
	if u.TgUsername != nil && *u.TgUsername != "" {
		return *u.TgUsername
	}
	if u.CustomUsername != nil && *u.CustomUsername != "" {
		return *u.CustomUsername
	}
	return ""
}

// Wishlist is a read model over the persistence collaborator's wishlists.
type Wishlist struct {
	ID         int64
	OwnerID    int64
	Title      string
	Visibility Visibility
}

// Wish is a read model over the persistence collaborator's wishes.
// Price is carried as its decimal string representation.
type Wish struct {
	ID          int64
	WishlistID  int64
	Title       string
	Description *string
	URL         *string
	Price       *string
	ImageURL    *string
	Priority    string
	Status      string
	Tags        []string
}

// WishContext is the joined wish → wishlist → owner snapshot read once at
// fan-out time. No live back-references are kept after the payload is built.
type WishContext struct {
	Wish     Wish
	Wishlist Wishlist
	Owner    User
}

// Recipient is a follower resolved through the identity collaborator.
type Recipient struct {
	UserID int64
	ChatID *int64
	Locale string
}

// Reachable reports whether the recipient has an external chat identity.
func (r *Recipient) Reachable() bool {
	return r.ChatID != nil
}

// Event is the audit row recorded in the same transaction as a fan-out
// batch; the event and its notifications commit or roll back together.
type Event struct {
	ID        string      `json:"id"`
	ActorID   int64       `json:"actor_id"`
	Entity    string      `json:"entity"`
	EntityID  int64       `json:"entity_id"`
	Action    EventAction `json:"action"`
	CreatedAt time.Time   `json:"created_at"`
}
