package queue

// Item is the minimal data placed on the queue: the notification ID only.
// Workers fetch the full Notification from the DB using the ID, so a stale
// or duplicated item is harmless — the store's atomic claim deduplicates.
type Item struct {
	NotificationID string
}
