package billing

import (
	"fmt"
	"time"
)

// CTABehavior describes what the pricing surface does when a plan's
// call-to-action is clicked. Display-only; billing logic never branches on it.
type CTABehavior string

const (
	CTACheckout   CTABehavior = "checkout"
	CTAContact    CTABehavior = "contact"
	CTAFreeSignup CTABehavior = "free-signup"
)

var validCTABehaviors = map[CTABehavior]bool{
	CTACheckout:   true,
	CTAContact:    true,
	CTAFreeSignup: true,
}

var validCurrencies = map[string]bool{
	"usd": true,
	"eur": true,
	"gbp": true,
}

// Plan represents a sellable tier. The business key is PlanID (a stable
// slug like "free" or "pro"), not the surrogate database ID. Provider
// product/price references are opaque identifiers minted by the payment
// provider and attached by the catalog synchronizer.
type Plan struct {
	id                 uint
	planID             string
	name               string
	description        string
	priceMinorUnits    int64
	currency           string
	includedQuota      int
	isActive           bool
	isVisible          bool
	isHighlighted      bool
	sortOrder          int
	ctaText            string
	ctaBehavior        CTABehavior
	providerProductRef string
	providerPriceRef   string
	features           []PlanFeature
	version            int
	createdAt          time.Time
	updatedAt          time.Time
}

// NewPlan creates a new plan. priceMinorUnits of zero makes a free plan;
// free plans are never represented at the provider.
func NewPlan(planID, name, description string, priceMinorUnits int64, currency string, includedQuota int) (*Plan, error) {
	if planID == "" {
		return nil, fmt.Errorf("plan ID is required")
	}
	if len(planID) > 50 {
		return nil, fmt.Errorf("plan ID too long (max 50 characters)")
	}
	if name == "" {
		return nil, fmt.Errorf("plan name is required")
	}
	if len(name) > 100 {
		return nil, fmt.Errorf("plan name too long (max 100 characters)")
	}
	if priceMinorUnits < 0 {
		return nil, fmt.Errorf("price cannot be negative")
	}
	if !validCurrencies[currency] {
		return nil, fmt.Errorf("invalid currency code: %s", currency)
	}
	if includedQuota < 0 {
		return nil, fmt.Errorf("included quota cannot be negative")
	}

	now := time.Now().UTC()
	return &Plan{
		planID:          planID,
		name:            name,
		description:     description,
		priceMinorUnits: priceMinorUnits,
		currency:        currency,
		includedQuota:   includedQuota,
		isActive:        true,
		isVisible:       true,
		ctaText:         "Get started",
		ctaBehavior:     defaultCTA(priceMinorUnits),
		version:         1,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

func defaultCTA(priceMinorUnits int64) CTABehavior {
	if priceMinorUnits == 0 {
		return CTAFreeSignup
	}
	return CTACheckout
}

// ReconstructPlan reconstructs a plan from persistence.
func ReconstructPlan(
	id uint,
	planID, name, description string,
	priceMinorUnits int64,
	currency string,
	includedQuota int,
	isActive, isVisible, isHighlighted bool,
	sortOrder int,
	ctaText string,
	ctaBehavior CTABehavior,
	providerProductRef, providerPriceRef string,
	features []PlanFeature,
	version int,
	createdAt, updatedAt time.Time,
) (*Plan, error) {
	if id == 0 {
		return nil, fmt.Errorf("plan ID cannot be zero")
	}
	if planID == "" {
		return nil, fmt.Errorf("plan business key is required")
	}
	if ctaBehavior != "" && !validCTABehaviors[ctaBehavior] {
		return nil, fmt.Errorf("invalid CTA behavior: %s", ctaBehavior)
	}
	if priceMinorUnits == 0 && (providerProductRef != "" || providerPriceRef != "") {
		return nil, fmt.Errorf("free plan %s must not carry provider references", planID)
	}

	return &Plan{
		id:                 id,
		planID:             planID,
		name:               name,
		description:        description,
		priceMinorUnits:    priceMinorUnits,
		currency:           currency,
		includedQuota:      includedQuota,
		isActive:           isActive,
		isVisible:          isVisible,
		isHighlighted:      isHighlighted,
		sortOrder:          sortOrder,
		ctaText:            ctaText,
		ctaBehavior:        ctaBehavior,
		providerProductRef: providerProductRef,
		providerPriceRef:   providerPriceRef,
		features:           features,
		version:            version,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}, nil
}

func (p *Plan) ID() uint {
	return p.id
}
func (p *Plan) PlanID() string {
	return p.planID
}
func (p *Plan) Name() string {
	return p.name
}
func (p *Plan) Description() string {
	return p.description
}
func (p *Plan) PriceMinorUnits() int64 {
	return p.priceMinorUnits
}
func (p *Plan) Currency() string {
	return p.currency
}
func (p *Plan) IncludedQuota() int {
	return p.includedQuota
}
func (p *Plan) IsActive() bool {
	return p.isActive
}
func (p *Plan) IsVisible() bool {
	return p.isVisible
}
func (p *Plan) IsHighlighted() bool {
	return p.isHighlighted
}
func (p *Plan) SortOrder() int {
	return p.sortOrder
}
func (p *Plan) CTAText() string {
	return p.ctaText
}
func (p *Plan) CTABehavior() CTABehavior {
	return p.ctaBehavior
}
func (p *Plan) ProviderProductRef() string {
	return p.providerProductRef
}
func (p *Plan) ProviderPriceRef() string {
	return p.providerPriceRef
}
func (p *Plan) Features() []PlanFeature {
	return p.features
}
func (p *Plan) Version() int {
	return p.version
}
func (p *Plan) CreatedAt() time.Time {
	return p.createdAt
}
func (p *Plan) UpdatedAt() time.Time {
	return p.updatedAt
}

// SetID sets the surrogate ID after persistence
func (p *Plan) SetID(id uint) error {
	if p.id != 0 {
		return fmt.Errorf("plan ID already set")
	}
	if id == 0 {
		return fmt.Errorf("plan ID cannot be zero")
	}
	p.id = id
	return nil
}

// IsFree reports whether this plan has no charge and therefore no provider
// representation.
func (p *Plan) IsFree() bool {
	return p.priceMinorUnits == 0
}

// IsPurchasable reports whether a new checkout may be started for this plan.
func (p *Plan) IsPurchasable() bool {
	return p.isActive && !p.IsFree()
}

// NeedsSync reports whether the catalog synchronizer still has work to do
// for this plan.
func (p *Plan) NeedsSync() bool {
	if !p.IsPurchasable() {
		return false
	}
	return p.providerProductRef == "" || p.providerPriceRef == ""
}

// AdoptProviderProduct attaches a provider product reference. Free plans
// never carry provider references.
func (p *Plan) AdoptProviderProduct(ref string) error {
	if p.IsFree() {
		return fmt.Errorf("free plan %s cannot reference a provider product", p.planID)
	}
	if ref == "" {
		return fmt.Errorf("provider product reference cannot be empty")
	}
	p.providerProductRef = ref
	p.touch()
	return nil
}

// AdoptProviderPrice attaches a provider price reference. The reference is
// replaced wholesale, never mutated in place: provider prices are immutable,
// so a price change always mints a new provider price object.
func (p *Plan) AdoptProviderPrice(ref string) error {
	if p.IsFree() {
		return fmt.Errorf("free plan %s cannot reference a provider price", p.planID)
	}
	if ref == "" {
		return fmt.Errorf("provider price reference cannot be empty")
	}
	p.providerPriceRef = ref
	p.touch()
	return nil
}

// ChangePrice updates the local price and clears the provider price
// reference so the next synchronization mints a replacement price object.
func (p *Plan) ChangePrice(priceMinorUnits int64) error {
	if priceMinorUnits < 0 {
		return fmt.Errorf("price cannot be negative")
	}
	if priceMinorUnits == p.priceMinorUnits {
		return nil
	}
	p.priceMinorUnits = priceMinorUnits
	if p.IsFree() {
		p.providerProductRef = ""
	}
	p.providerPriceRef = ""
	p.touch()
	return nil
}

// UpdateDetails updates the display fields.
func (p *Plan) UpdateDetails(name, description string) error {
	if name == "" {
		return fmt.Errorf("plan name is required")
	}
	if len(name) > 100 {
		return fmt.Errorf("plan name too long (max 100 characters)")
	}
	p.name = name
	p.description = description
	p.touch()
	return nil
}

// UpdateQuota updates the included quota per usage period.
func (p *Plan) UpdateQuota(includedQuota int) error {
	if includedQuota < 0 {
		return fmt.Errorf("included quota cannot be negative")
	}
	p.includedQuota = includedQuota
	p.touch()
	return nil
}

// UpdateDisplay updates pricing-surface presentation fields.
func (p *Plan) UpdateDisplay(isVisible, isHighlighted bool, sortOrder int) {
	p.isVisible = isVisible
	p.isHighlighted = isHighlighted
	p.sortOrder = sortOrder
	p.touch()
}

// UpdateCTA updates the call-to-action.
func (p *Plan) UpdateCTA(text string, behavior CTABehavior) error {
	if !validCTABehaviors[behavior] {
		return fmt.Errorf("invalid CTA behavior: %s", behavior)
	}
	p.ctaText = text
	p.ctaBehavior = behavior
	p.touch()
	return nil
}

// ReplaceFeatures swaps the ordered display bullets.
func (p *Plan) ReplaceFeatures(features []PlanFeature) {
	p.features = features
	p.touch()
}

// Deactivate soft-deletes the plan: it remains for historical subscriptions
// but cannot be newly purchased and disappears from the pricing surface.
func (p *Plan) Deactivate() {
	p.isActive = false
	p.isVisible = false
	p.touch()
}

// Activate makes the plan purchasable again.
func (p *Plan) Activate() {
	p.isActive = true
	p.touch()
}

func (p *Plan) touch() {
	p.version++
	p.updatedAt = time.Now().UTC()
}
