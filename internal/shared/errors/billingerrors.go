package errors

import "errors"

// Billing error taxonomy. Webhook processing distinguishes four outcomes:
// a bad signature is rejected and never retried, an uncorrelatable event is
// logged and dropped, a transient dependency failure is propagated so the
// provider redelivers, and a business rule violation is returned to the
// caller synchronously.
var (
	// ErrPlanNotPurchasable indicates checkout was requested for a plan that
	// is inactive or free.
	ErrPlanNotPurchasable = errors.New("plan is not purchasable")

	// ErrPlanHasNoPrice indicates checkout was requested for a plan that has
	// not been synchronized to the provider yet.
	ErrPlanHasNoPrice = errors.New("plan has no provider price")

	// ErrNoProviderCustomer indicates the user has no provider customer
	// reference and therefore no portal or checkout can be minted.
	ErrNoProviderCustomer = errors.New("user has no provider customer")
)

// NewSignatureError wraps a signature verification failure as an
// authentication error. The provider is told not to bother retrying since
// the payload will never become valid.
func NewSignatureError(details string) *AppError {
	return NewUnauthorizedError("webhook signature verification failed", details)
}
