package usecases

import (
	"context"
	"time"
)

// ProcessedEventStore remembers provider event IDs whose handling
// completed, so redelivered webhooks become no-ops before any business
// logic runs. An event is recorded only after its handler succeeds; a
// failed delivery leaves no trace, so the provider's redelivery of it is
// processed normally. Entries expire after the retention window; handlers
// stay idempotent on their own, so an expired entry only costs a harmless
// reprocess.
type ProcessedEventStore interface {
	// IsProcessed reports whether the event ID was already recorded.
	IsProcessed(ctx context.Context, eventID string) (bool, error)
	// MarkProcessed records the event ID. It returns true when the ID was
	// newly recorded and false when it was already present.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
}

// TrialEndingNotifier tells a user their trial is about to convert into a
// paid subscription. Delivery failures are logged, never surfaced to the
// provider.
type TrialEndingNotifier interface {
	NotifyTrialEnding(ctx context.Context, userID uint, planID string, trialEnd time.Time) error
}

// UserDirectory resolves the account fields the billing flows need when
// creating provider customers and sending notifications. The accounts
// system implements it.
type UserDirectory interface {
	GetUserEmail(ctx context.Context, userID uint) (email string, name string, err error)
}
