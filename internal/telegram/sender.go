package telegram

import (
	"context"
	"errors"
)

// Classification errors for transport outcomes. The worker's reaction depends
// on which of these wraps the send failure:
//
//   - ErrPermanent: the recipient is unreachable for good (bot blocked,
//     unknown chat). Retrying is wasted work; the notification is suppressed.
//   - ErrNotAttempted: the request never left the process (circuit breaker
//     open). The claim is safe to revert because no remote side effect can exist.
//   - anything else is transient: retried up to the attempt cap, then left
//     claimed for the reconciler.
var (
	ErrPermanent    = errors.New("permanent delivery failure")
	ErrNotAttempted = errors.New("send not attempted")
)

// Sender abstracts message delivery to the external bot API.
// Mocking this interface in tests gives full control over transport
// behaviour without making real HTTP calls.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}
