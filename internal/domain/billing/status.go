package billing

// SubscriptionStatus is the lifecycle status of a user's subscription as
// mirrored from the billing provider.
type SubscriptionStatus string

const (
	StatusTrial    SubscriptionStatus = "trial"
	StatusActive   SubscriptionStatus = "active"
	StatusPastDue  SubscriptionStatus = "past_due"
	StatusCanceled SubscriptionStatus = "canceled"
)

// ValidStatuses enumerates the statuses accepted from persistence.
var ValidStatuses = map[SubscriptionStatus]bool{
	StatusTrial:    true,
	StatusActive:   true,
	StatusPastDue:  true,
	StatusCanceled: true,
}

func (s SubscriptionStatus) IsValid() bool {
	return ValidStatuses[s]
}

// Blocks reports whether this status denies metered actions outright,
// regardless of remaining quota.
func (s SubscriptionStatus) Blocks() bool {
	return s == StatusPastDue || s == StatusCanceled
}

// String returns the string representation.
func (s SubscriptionStatus) String() string {
	return string(s)
}
