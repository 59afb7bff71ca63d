package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFreeProfile(t *testing.T) *UserBillingProfile {
	t.Helper()
	p, err := NewUserBillingProfile(42, "free")
	require.NoError(t, err)
	return p
}

func TestNewUserBillingProfile(t *testing.T) {
	p := newFreeProfile(t)

	assert.Equal(t, uint(42), p.UserID())
	assert.Equal(t, "free", p.PlanID())
	assert.Equal(t, StatusActive, p.Status())
	assert.Empty(t, p.ProviderCustomerRef())
	assert.Nil(t, p.CurrentPeriodEnd())
	assert.False(t, p.IsBlocked())
}

func TestNewUserBillingProfile_Invalid(t *testing.T) {
	_, err := NewUserBillingProfile(0, "free")
	assert.Error(t, err)

	_, err = NewUserBillingProfile(42, "")
	assert.Error(t, err)
}

func TestProfile_SetProviderCustomerRef(t *testing.T) {
	p := newFreeProfile(t)

	require.NoError(t, p.SetProviderCustomerRef("cus_123"))
	assert.Equal(t, "cus_123", p.ProviderCustomerRef())

	// idempotent for the same ref
	require.NoError(t, p.SetProviderCustomerRef("cus_123"))

	// rebinding to a different customer is a bug
	err := p.SetProviderCustomerRef("cus_456")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already bound")
}

func TestProfile_ApplySubscription(t *testing.T) {
	p := newFreeProfile(t)
	end := time.Now().UTC().AddDate(0, 1, 0)

	require.NoError(t, p.ApplySubscription("pro", StatusTrial, &end))

	assert.Equal(t, "pro", p.PlanID())
	assert.Equal(t, StatusTrial, p.Status())
	require.NotNil(t, p.CurrentPeriodEnd())
	assert.True(t, p.CurrentPeriodEnd().Equal(end))
	assert.False(t, p.IsBlocked())
}

func TestProfile_PastDueBlocks(t *testing.T) {
	p := newFreeProfile(t)
	end := time.Now().UTC().AddDate(0, 1, 0)
	require.NoError(t, p.ApplySubscription("pro", StatusActive, &end))

	p.MarkPastDue()
	assert.Equal(t, StatusPastDue, p.Status())
	assert.Equal(t, "pro", p.PlanID(), "past due keeps the plan")
	assert.True(t, p.IsBlocked())

	p.MarkActive()
	assert.False(t, p.IsBlocked())
}

func TestProfile_CancelToFree(t *testing.T) {
	p := newFreeProfile(t)
	end := time.Now().UTC().AddDate(0, 1, 0)
	require.NoError(t, p.SetProviderCustomerRef("cus_123"))
	require.NoError(t, p.ApplySubscription("pro", StatusActive, &end))

	require.NoError(t, p.CancelToFree("free"))

	assert.Equal(t, "free", p.PlanID())
	assert.Equal(t, StatusCanceled, p.Status())
	assert.Nil(t, p.CurrentPeriodEnd())
	assert.Equal(t, "cus_123", p.ProviderCustomerRef(), "customer ref survives cancellation")
	assert.True(t, p.IsBlocked(), "canceled blocks metered actions until payment recovers it")
}

func TestReconstructUserBillingProfile_InvalidStatus(t *testing.T) {
	now := time.Now().UTC()
	_, err := ReconstructUserBillingProfile(1, 42, "pro", SubscriptionStatus("bogus"), "", nil, 1, now, now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid subscription status")
}
