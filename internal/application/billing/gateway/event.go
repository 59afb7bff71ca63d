package gateway

import "time"

// EventKind classifies verified provider events into the cases the webhook
// processor handles. Everything else maps to EventUnhandled and is
// acknowledged without side effects.
type EventKind string

const (
	EventCheckoutCompleted   EventKind = "checkout-completed"
	EventSubscriptionCreated EventKind = "subscription-created"
	EventSubscriptionUpdated EventKind = "subscription-updated"
	EventSubscriptionDeleted EventKind = "subscription-deleted"
	EventInvoicePaid         EventKind = "invoice-paid"
	EventInvoiceFailed       EventKind = "invoice-failed"
	EventTrialWillEnd        EventKind = "trial-will-end"
	EventUnhandled           EventKind = "unhandled"
)

// Event is a verified, parsed provider notification. Only the fields the
// kind needs are populated.
type Event struct {
	ID   string
	Kind EventKind
	// RawType is the provider's own event type string, kept for logging.
	RawType string

	CustomerRef string
	SubRef      string

	// Checkout-completed correlation data.
	PlanIDMetadata string
	UserIDMetadata string

	// Subscription snapshot carried by subscription events.
	Subscription *Subscription

	// CanceledAt is set for subscription-deleted events.
	CanceledAt time.Time
}
