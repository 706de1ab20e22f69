package bus

import (
	"context"
)

// Notifier is the process-local notification channel toward UI layers: it
// signals "reload state for this contact" and "a new contact appeared".
// Implementations must be safe for concurrent use.
type Notifier interface {
	// NotifyNewMessage signals that a message arrived (or was sent) for the
	// given contact.
	NotifyNewMessage(ctx context.Context, contactID int64) error
	// NotifyNewContact signals that a contact was created for an unknown
	// sender; listeners refresh any contact listing.
	NotifyNewContact(ctx context.Context) error
}

// NoopNotifier discards all notifications. Used where core logic runs without
// a bus, and as the test double.
type NoopNotifier struct{}

func (NoopNotifier) NotifyNewMessage(ctx context.Context, contactID int64) error { return nil }

func (NoopNotifier) NotifyNewContact(ctx context.Context) error { return nil }
