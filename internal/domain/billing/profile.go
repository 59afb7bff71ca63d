package billing

import (
	"fmt"
	"time"
)

// UserBillingProfile is the per-user billing projection the application
// reads for entitlement checks. It is maintained exclusively by the webhook
// processor and the checkout flow; nothing else writes it.
type UserBillingProfile struct {
	id                  uint
	userID              uint
	planID              string
	status              SubscriptionStatus
	providerCustomerRef string
	currentPeriodEnd    *time.Time
	version             int
	createdAt           time.Time
	updatedAt           time.Time
}

// NewUserBillingProfile bootstraps a profile on the free plan. Every user
// gets exactly one profile; it is created lazily the first time billing
// state is needed.
func NewUserBillingProfile(userID uint, freePlanID string) (*UserBillingProfile, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user ID cannot be zero")
	}
	if freePlanID == "" {
		return nil, fmt.Errorf("free plan ID is required")
	}
	now := time.Now().UTC()
	return &UserBillingProfile{
		userID:    userID,
		planID:    freePlanID,
		status:    StatusActive,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructUserBillingProfile reconstructs a profile from persistence.
func ReconstructUserBillingProfile(
	id, userID uint,
	planID string,
	status SubscriptionStatus,
	providerCustomerRef string,
	currentPeriodEnd *time.Time,
	version int,
	createdAt, updatedAt time.Time,
) (*UserBillingProfile, error) {
	if id == 0 {
		return nil, fmt.Errorf("profile ID cannot be zero")
	}
	if userID == 0 {
		return nil, fmt.Errorf("user ID cannot be zero")
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid subscription status: %s", status)
	}
	return &UserBillingProfile{
		id:                  id,
		userID:              userID,
		planID:              planID,
		status:              status,
		providerCustomerRef: providerCustomerRef,
		currentPeriodEnd:    currentPeriodEnd,
		version:             version,
		createdAt:           createdAt,
		updatedAt:           updatedAt,
	}, nil
}

func (p *UserBillingProfile) ID() uint {
	return p.id
}
func (p *UserBillingProfile) UserID() uint {
	return p.userID
}
func (p *UserBillingProfile) PlanID() string {
	return p.planID
}
func (p *UserBillingProfile) Status() SubscriptionStatus {
	return p.status
}
func (p *UserBillingProfile) ProviderCustomerRef() string {
	return p.providerCustomerRef
}
func (p *UserBillingProfile) CurrentPeriodEnd() *time.Time {
	return p.currentPeriodEnd
}
func (p *UserBillingProfile) Version() int {
	return p.version
}
func (p *UserBillingProfile) CreatedAt() time.Time {
	return p.createdAt
}
func (p *UserBillingProfile) UpdatedAt() time.Time {
	return p.updatedAt
}

// SetID sets the surrogate ID after persistence
func (p *UserBillingProfile) SetID(id uint) error {
	if p.id != 0 {
		return fmt.Errorf("profile ID already set")
	}
	if id == 0 {
		return fmt.Errorf("profile ID cannot be zero")
	}
	p.id = id
	return nil
}

// SetProviderCustomerRef records the provider-side customer created for
// this user. A profile keeps one customer for its lifetime; replacing an
// existing reference is a bug.
func (p *UserBillingProfile) SetProviderCustomerRef(ref string) error {
	if ref == "" {
		return fmt.Errorf("provider customer reference cannot be empty")
	}
	if p.providerCustomerRef != "" && p.providerCustomerRef != ref {
		return fmt.Errorf("profile already bound to customer %s", p.providerCustomerRef)
	}
	p.providerCustomerRef = ref
	p.touch()
	return nil
}

// ApplySubscription moves the profile onto a plan with the given status and
// period end. Used when provider events report a live subscription.
func (p *UserBillingProfile) ApplySubscription(planID string, status SubscriptionStatus, periodEnd *time.Time) error {
	if planID == "" {
		return fmt.Errorf("plan ID is required")
	}
	if !status.IsValid() {
		return fmt.Errorf("invalid subscription status: %s", status)
	}
	p.planID = planID
	p.status = status
	p.currentPeriodEnd = periodEnd
	p.touch()
	return nil
}

// MarkPastDue flags the profile after a failed payment. The plan is kept;
// access decisions come from Status().Blocks().
func (p *UserBillingProfile) MarkPastDue() {
	p.status = StatusPastDue
	p.touch()
}

// MarkActive restores the profile after a successful payment.
func (p *UserBillingProfile) MarkActive() {
	p.status = StatusActive
	p.touch()
}

// CancelToFree returns the profile to the free plan after the provider
// subscription ends. The status moves to canceled, which blocks metered
// actions until a later payment or resubscribe restores it. The customer
// reference is kept so a resubscribe reuses the same provider customer.
func (p *UserBillingProfile) CancelToFree(freePlanID string) error {
	if freePlanID == "" {
		return fmt.Errorf("free plan ID is required")
	}
	p.planID = freePlanID
	p.status = StatusCanceled
	p.currentPeriodEnd = nil
	p.touch()
	return nil
}

// IsBlocked reports whether billing state alone denies paid features.
func (p *UserBillingProfile) IsBlocked() bool {
	return p.status.Blocks()
}

func (p *UserBillingProfile) touch() {
	p.version++
	p.updatedAt = time.Now().UTC()
}
