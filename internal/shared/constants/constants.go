package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// Default pagination
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// HTTP Headers
	HeaderContentType     = "Content-Type"
	HeaderAuthorization   = "Authorization"
	HeaderXRequestID      = "X-Request-ID"
	HeaderStripeSignature = "Stripe-Signature"

	// Content Types
	ContentTypeJSON = "application/json"

	// Context keys
	ContextKeyUserID    = "user_id"
	ContextKeyRequestID = "request_id"

	// Database table names
	TablePlans               = "plans"
	TableBillingProfiles     = "user_billing_profiles"
	TableSubscriptionRecords = "subscription_records"
	TableArticles            = "articles"

	// Default values
	DefaultCurrency   = "usd"
	DefaultFreePlanID = "free"

	// Provider metadata keys. The synchronizer writes these onto provider
	// products so a later run can adopt objects created by a partially
	// failed run, and the checkout issuer writes user_id/plan_id onto
	// sessions so the webhook processor can correlate events.
	MetadataKeyPlanID        = "plan_id"
	MetadataKeyIncludedQuota = "included_quota"
	MetadataKeyUserID        = "user_id"

	// Error messages
	ErrMsgInternalServerError = "Internal server error occurred"
	ErrMsgResourceNotFound    = "Resource not found"
	ErrMsgValidationFailed    = "Validation failed"
)
