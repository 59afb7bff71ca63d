// Package gateway defines the payment-provider port the billing use cases
// depend on. The Stripe adapter in infrastructure implements it; tests use
// hand-written fakes.
package gateway

import (
	"context"
	"time"
)

// Product is the provider-side representation of a plan.
type Product struct {
	Ref      string
	Name     string
	Active   bool
	Metadata map[string]string
}

// Price is a provider price object. Provider prices are immutable; changing
// a plan's price always creates a new one.
type Price struct {
	Ref             string
	ProductRef      string
	UnitAmountMinor int64
	Currency        string
	Interval        string
	Active          bool
}

// Subscription is the provider-side subscription snapshot used by the
// webhook processor to resolve plan and period data. CancelAt and
// CanceledAt are the provider's values verbatim; nil means the provider
// reported none.
type Subscription struct {
	Ref                string
	CustomerRef        string
	PriceRef           string
	Status             string
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	CancelAt           *time.Time
	CanceledAt         *time.Time
	PlanIDMetadata     string
}

// CreateProductParams creates a provider product tagged with the local plan
// ID so later runs can adopt it by metadata.
type CreateProductParams struct {
	Name        string
	Description string
	PlanID      string
	Quota       int
}

type CreatePriceParams struct {
	ProductRef      string
	UnitAmountMinor int64
	Currency        string
	PlanID          string
}

// CheckoutParams starts a provider-hosted checkout for one plan.
type CheckoutParams struct {
	CustomerRef     string
	PriceRef        string
	PlanID          string
	UserID          uint
	TrialPeriodDays int64
	SuccessURL      string
	CancelURL       string
}

type PortalParams struct {
	CustomerRef string
	ReturnURL   string
}

// HostedSession is a provider-hosted checkout session the browser is
// redirected to. Ref lets callers reconcile the session later.
type HostedSession struct {
	Ref string
	URL string
}

type CreateCustomerParams struct {
	Email  string
	Name   string
	UserID uint
}

// ProviderGateway is the outbound port to the payment provider. Adapters
// translate provider SDK types into the neutral structs above so use cases
// never import the SDK.
type ProviderGateway interface {
	// Catalog.
	FindProductByPlanID(ctx context.Context, planID string) (*Product, error)
	CreateProduct(ctx context.Context, params CreateProductParams) (*Product, error)
	ListActivePrices(ctx context.Context, productRef string) ([]Price, error)
	CreatePrice(ctx context.Context, params CreatePriceParams) (*Price, error)
	DeactivatePrice(ctx context.Context, priceRef string) error
	DeactivateProduct(ctx context.Context, productRef string) error

	// Customers and subscriptions.
	CreateCustomer(ctx context.Context, params CreateCustomerParams) (string, error)
	GetSubscription(ctx context.Context, subRef string) (*Subscription, error)

	// Hosted sessions.
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*HostedSession, error)
	CreatePortalSession(ctx context.Context, params PortalParams) (string, error)

	// VerifyEvent checks the provider signature over the raw payload and
	// parses it into a neutral event. Verification failure is terminal;
	// the payload must not be inspected first.
	VerifyEvent(payload []byte, signature string) (*Event, error)
}
