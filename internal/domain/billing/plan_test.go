package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

func newPaidPlan(t *testing.T) *Plan {
	t.Helper()
	p, err := NewPlan("pro", "Pro", "For working writers", 2900, "usd", 200)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func newFreePlan(t *testing.T) *Plan {
	t.Helper()
	p, err := NewPlan("free", "Free", "Get a taste", 0, "usd", 20)
	require.NoError(t, err)
	return p
}

func TestNewPlan(t *testing.T) {
	tests := []struct {
		name          string
		planID        string
		planName      string
		price         int64
		currency      string
		quota         int
		expectError   bool
		errorContains string
	}{
		{
			name:     "valid paid plan",
			planID:   "pro",
			planName: "Pro",
			price:    2900,
			currency: "usd",
			quota:    200,
		},
		{
			name:     "valid free plan",
			planID:   "free",
			planName: "Free",
			price:    0,
			currency: "usd",
			quota:    20,
		},
		{
			name:          "empty plan ID",
			planID:        "",
			planName:      "Pro",
			price:         2900,
			currency:      "usd",
			quota:         200,
			expectError:   true,
			errorContains: "plan ID is required",
		},
		{
			name:          "empty name",
			planID:        "pro",
			planName:      "",
			price:         2900,
			currency:      "usd",
			quota:         200,
			expectError:   true,
			errorContains: "plan name is required",
		},
		{
			name:          "negative price",
			planID:        "pro",
			planName:      "Pro",
			price:         -1,
			currency:      "usd",
			quota:         200,
			expectError:   true,
			errorContains: "price cannot be negative",
		},
		{
			name:          "invalid currency",
			planID:        "pro",
			planName:      "Pro",
			price:         2900,
			currency:      "xyz",
			quota:         200,
			expectError:   true,
			errorContains: "invalid currency",
		},
		{
			name:          "negative quota",
			planID:        "pro",
			planName:      "Pro",
			price:         2900,
			currency:      "usd",
			quota:         -5,
			expectError:   true,
			errorContains: "quota cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPlan(tt.planID, tt.planName, "", tt.price, tt.currency, tt.quota)
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.planID, p.PlanID())
			assert.True(t, p.IsActive())
			assert.True(t, p.IsVisible())
			assert.Equal(t, 1, p.Version())
		})
	}
}

func TestNewPlan_DefaultCTA(t *testing.T) {
	assert.Equal(t, CTACheckout, newPaidPlan(t).CTABehavior())
	assert.Equal(t, CTAFreeSignup, newFreePlan(t).CTABehavior())
}

func TestPlan_IsPurchasable(t *testing.T) {
	paid := newPaidPlan(t)
	assert.True(t, paid.IsPurchasable())

	paid.Deactivate()
	assert.False(t, paid.IsPurchasable())

	free := newFreePlan(t)
	assert.False(t, free.IsPurchasable(), "free plans are never purchasable via checkout")
}

func TestPlan_NeedsSync(t *testing.T) {
	p := newPaidPlan(t)
	assert.True(t, p.NeedsSync())

	require.NoError(t, p.AdoptProviderProduct("prod_123"))
	assert.True(t, p.NeedsSync(), "still missing a price reference")

	require.NoError(t, p.AdoptProviderPrice("price_123"))
	assert.False(t, p.NeedsSync())

	assert.False(t, newFreePlan(t).NeedsSync(), "free plans never sync")
}

func TestPlan_AdoptProviderRefs_FreePlanRejected(t *testing.T) {
	free := newFreePlan(t)

	err := free.AdoptProviderProduct("prod_123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "free plan")

	err = free.AdoptProviderPrice("price_123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "free plan")
}

func TestPlan_ChangePrice_ClearsPriceRef(t *testing.T) {
	p := newPaidPlan(t)
	require.NoError(t, p.AdoptProviderProduct("prod_123"))
	require.NoError(t, p.AdoptProviderPrice("price_old"))

	require.NoError(t, p.ChangePrice(4900))

	assert.Equal(t, int64(4900), p.PriceMinorUnits())
	assert.Empty(t, p.ProviderPriceRef(), "price reference must be cleared so a new provider price is minted")
	assert.Equal(t, "prod_123", p.ProviderProductRef(), "product reference survives a price change")
}

func TestPlan_ChangePrice_SamePriceIsNoop(t *testing.T) {
	p := newPaidPlan(t)
	require.NoError(t, p.AdoptProviderPrice("price_123"))
	v := p.Version()

	require.NoError(t, p.ChangePrice(2900))

	assert.Equal(t, "price_123", p.ProviderPriceRef())
	assert.Equal(t, v, p.Version())
}

func TestPlan_ChangePrice_ToFreeDropsProviderRefs(t *testing.T) {
	p := newPaidPlan(t)
	require.NoError(t, p.AdoptProviderProduct("prod_123"))
	require.NoError(t, p.AdoptProviderPrice("price_123"))

	require.NoError(t, p.ChangePrice(0))

	assert.True(t, p.IsFree())
	assert.Empty(t, p.ProviderProductRef())
	assert.Empty(t, p.ProviderPriceRef())
}

func TestPlan_Deactivate(t *testing.T) {
	p := newPaidPlan(t)
	p.Deactivate()

	assert.False(t, p.IsActive())
	assert.False(t, p.IsVisible())
	assert.Greater(t, p.Version(), 1)
}

func TestReconstructPlan_FreePlanWithProviderRefsRejected(t *testing.T) {
	now := time.Now().UTC()
	_, err := ReconstructPlan(
		1, "free", "Free", "", 0, "usd", 20,
		true, true, false, 0,
		"Get started", CTAFreeSignup,
		"prod_123", "", nil, 1, now, now,
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not carry provider references")
}

func TestReconstructPlan_Valid(t *testing.T) {
	now := time.Now().UTC()
	p, err := ReconstructPlan(
		7, "pro", "Pro", "For working writers", 2900, "usd", 200,
		true, true, true, 2,
		"Upgrade", CTACheckout,
		"prod_123", "price_123", nil, 3, now, now,
	)
	require.NoError(t, err)
	assert.Equal(t, uint(7), p.ID())
	assert.Equal(t, "price_123", p.ProviderPriceRef())
	assert.True(t, p.IsHighlighted())
	assert.Equal(t, 3, p.Version())
}
