package billing

import (
	"fmt"
	"time"
)

// SubscriptionSnapshot is the provider-reported state folded into a record.
// CancelAt and CanceledAt carry the provider's values verbatim; nil means
// the provider reported none.
type SubscriptionSnapshot struct {
	PlanID             string
	ProviderPriceRef   string
	Status             SubscriptionStatus
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	CancelAt           *time.Time
	CanceledAt         *time.Time
}

func (s SubscriptionSnapshot) validate() error {
	if s.PlanID == "" {
		return fmt.Errorf("plan ID is required")
	}
	if !s.Status.IsValid() {
		return fmt.Errorf("invalid subscription status: %s", s.Status)
	}
	return nil
}

// SubscriptionRecord is the audit-grade mirror of one provider subscription.
// Keyed by the provider's subscription reference; upserted by the webhook
// processor. Out-of-order provider events are reconciled with a latest-wins
// rule on the billing period end.
type SubscriptionRecord struct {
	id                 uint
	userID             uint
	planID             string
	providerSubRef     string
	providerPriceRef   string
	status             SubscriptionStatus
	currentPeriodStart time.Time
	currentPeriodEnd   time.Time
	cancelAt           *time.Time
	canceledAt         *time.Time
	version            int
	createdAt          time.Time
	updatedAt          time.Time
}

// NewSubscriptionRecord creates a record from the first provider event seen
// for a subscription.
func NewSubscriptionRecord(userID uint, providerSubRef string, snap SubscriptionSnapshot) (*SubscriptionRecord, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user ID cannot be zero")
	}
	if providerSubRef == "" {
		return nil, fmt.Errorf("provider subscription reference is required")
	}
	if err := snap.validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &SubscriptionRecord{
		userID:             userID,
		planID:             snap.PlanID,
		providerSubRef:     providerSubRef,
		providerPriceRef:   snap.ProviderPriceRef,
		status:             snap.Status,
		currentPeriodStart: snap.CurrentPeriodStart,
		currentPeriodEnd:   snap.CurrentPeriodEnd,
		cancelAt:           snap.CancelAt,
		canceledAt:         snap.CanceledAt,
		version:            1,
		createdAt:          now,
		updatedAt:          now,
	}, nil
}

// ReconstructSubscriptionRecord reconstructs a record from persistence.
func ReconstructSubscriptionRecord(
	id, userID uint,
	planID, providerSubRef, providerPriceRef string,
	status SubscriptionStatus,
	currentPeriodStart, currentPeriodEnd time.Time,
	cancelAt, canceledAt *time.Time,
	version int,
	createdAt, updatedAt time.Time,
) (*SubscriptionRecord, error) {
	if id == 0 {
		return nil, fmt.Errorf("record ID cannot be zero")
	}
	if providerSubRef == "" {
		return nil, fmt.Errorf("provider subscription reference is required")
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid subscription status: %s", status)
	}
	return &SubscriptionRecord{
		id:                 id,
		userID:             userID,
		planID:             planID,
		providerSubRef:     providerSubRef,
		providerPriceRef:   providerPriceRef,
		status:             status,
		currentPeriodStart: currentPeriodStart,
		currentPeriodEnd:   currentPeriodEnd,
		cancelAt:           cancelAt,
		canceledAt:         canceledAt,
		version:            version,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}, nil
}

func (r *SubscriptionRecord) ID() uint {
	return r.id
}
func (r *SubscriptionRecord) UserID() uint {
	return r.userID
}
func (r *SubscriptionRecord) PlanID() string {
	return r.planID
}
func (r *SubscriptionRecord) ProviderSubRef() string {
	return r.providerSubRef
}
func (r *SubscriptionRecord) ProviderPriceRef() string {
	return r.providerPriceRef
}
func (r *SubscriptionRecord) Status() SubscriptionStatus {
	return r.status
}
func (r *SubscriptionRecord) CurrentPeriodStart() time.Time {
	return r.currentPeriodStart
}
func (r *SubscriptionRecord) CurrentPeriodEnd() time.Time {
	return r.currentPeriodEnd
}
func (r *SubscriptionRecord) CancelAt() *time.Time {
	return r.cancelAt
}
func (r *SubscriptionRecord) CanceledAt() *time.Time {
	return r.canceledAt
}
func (r *SubscriptionRecord) Version() int {
	return r.version
}
func (r *SubscriptionRecord) CreatedAt() time.Time {
	return r.createdAt
}
func (r *SubscriptionRecord) UpdatedAt() time.Time {
	return r.updatedAt
}

// SetID sets the surrogate ID after persistence
func (r *SubscriptionRecord) SetID(id uint) error {
	if r.id != 0 {
		return fmt.Errorf("record ID already set")
	}
	if id == 0 {
		return fmt.Errorf("record ID cannot be zero")
	}
	r.id = id
	return nil
}

// ApplyProviderState folds a provider snapshot into the record. Snapshots
// whose period end is older than what the record already holds are stale
// deliveries and are ignored; the return value reports whether the record
// changed.
func (r *SubscriptionRecord) ApplyProviderState(snap SubscriptionSnapshot) (bool, error) {
	if err := snap.validate(); err != nil {
		return false, err
	}
	if snap.CurrentPeriodEnd.Before(r.currentPeriodEnd) {
		return false, nil
	}
	r.planID = snap.PlanID
	r.providerPriceRef = snap.ProviderPriceRef
	r.status = snap.Status
	r.currentPeriodStart = snap.CurrentPeriodStart
	r.currentPeriodEnd = snap.CurrentPeriodEnd
	r.cancelAt = snap.CancelAt
	if snap.CanceledAt != nil {
		r.canceledAt = snap.CanceledAt
	}
	r.touch()
	return true, nil
}

// MarkCanceled terminates the record. Cancellation always applies, even for
// stale deliveries; a canceled subscription never comes back.
func (r *SubscriptionRecord) MarkCanceled(at time.Time) {
	if r.status == StatusCanceled {
		return
	}
	r.status = StatusCanceled
	if r.canceledAt == nil {
		r.canceledAt = &at
	}
	r.touch()
}

func (r *SubscriptionRecord) touch() {
	r.version++
	r.updatedAt = time.Now().UTC()
}
