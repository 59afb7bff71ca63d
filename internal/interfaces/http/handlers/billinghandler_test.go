package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Drafter5000/Drafter5000-sub000/internal/application/billing/dto"
	"github.com/Drafter5000/Drafter5000-sub000/internal/application/billing/usecases"
	"github.com/Drafter5000/Drafter5000-sub000/internal/interfaces/http/handlers/testutil"
	"github.com/Drafter5000/Drafter5000-sub000/internal/shared/constants"
	apperrors "github.com/Drafter5000/Drafter5000-sub000/internal/shared/errors"
)

// =====================================================================
// Mock use cases
// =====================================================================

type mockProcessWebhookUC struct {
	err     error
	lastCmd usecases.ProcessWebhookCommand
}

func (m *mockProcessWebhookUC) Execute(ctx context.Context, cmd usecases.ProcessWebhookCommand) error {
	m.lastCmd = cmd
	return m.err
}

type mockCreateCheckoutUC struct {
	result  *dto.SessionDTO
	err     error
	lastCmd usecases.CreateCheckoutCommand
}

func (m *mockCreateCheckoutUC) Execute(ctx context.Context, cmd usecases.CreateCheckoutCommand) (*dto.SessionDTO, error) {
	m.lastCmd = cmd
	return m.result, m.err
}

type mockCreatePortalUC struct {
	result *dto.SessionDTO
	err    error
}

func (m *mockCreatePortalUC) Execute(ctx context.Context, cmd usecases.CreatePortalCommand) (*dto.SessionDTO, error) {
	return m.result, m.err
}

type mockCheckUsageUC struct {
	result *dto.UsageDTO
	err    error
}

func (m *mockCheckUsageUC) Execute(ctx context.Context, cmd usecases.CheckUsageCommand) (*dto.UsageDTO, error) {
	return m.result, m.err
}

func newBillingHandler(
	webhookUC *mockProcessWebhookUC,
	checkoutUC *mockCreateCheckoutUC,
	portalUC *mockCreatePortalUC,
	usageUC *mockCheckUsageUC,
) *BillingHandler {
	return NewBillingHandler(webhookUC, checkoutUC, portalUC, usageUC, testutil.NewMockLogger())
}

// =====================================================================
// Webhook
// =====================================================================

func TestHandleWebhook_Success(t *testing.T) {
	webhookUC := &mockProcessWebhookUC{}
	h := newBillingHandler(webhookUC, &mockCreateCheckoutUC{}, &mockCreatePortalUC{}, &mockCheckUsageUC{})

	payload := []byte(`{"id":"evt_1","type":"invoice.paid"}`)
	c, w := testutil.NewRawTestContext(http.MethodPost, "/billing/webhook", payload, map[string]string{
		constants.HeaderStripeSignature: "t=1,v1=abc",
	})

	h.HandleWebhook(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, payload, webhookUC.lastCmd.Payload)
	assert.Equal(t, "t=1,v1=abc", webhookUC.lastCmd.Signature)
}

func TestHandleWebhook_MissingSignatureHeader(t *testing.T) {
	webhookUC := &mockProcessWebhookUC{}
	h := newBillingHandler(webhookUC, &mockCreateCheckoutUC{}, &mockCreatePortalUC{}, &mockCheckUsageUC{})

	c, w := testutil.NewRawTestContext(http.MethodPost, "/billing/webhook", []byte(`{}`), nil)

	h.HandleWebhook(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, webhookUC.lastCmd.Payload)
}

func TestHandleWebhook_InvalidSignature(t *testing.T) {
	webhookUC := &mockProcessWebhookUC{err: apperrors.NewSignatureError("signature mismatch")}
	h := newBillingHandler(webhookUC, &mockCreateCheckoutUC{}, &mockCreatePortalUC{}, &mockCheckUsageUC{})

	c, w := testutil.NewRawTestContext(http.MethodPost, "/billing/webhook", []byte(`{}`), map[string]string{
		constants.HeaderStripeSignature: "t=1,v1=bad",
	})

	h.HandleWebhook(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandleWebhook_TransientFailureReturnsError(t *testing.T) {
	webhookUC := &mockProcessWebhookUC{err: assert.AnError}
	h := newBillingHandler(webhookUC, &mockCreateCheckoutUC{}, &mockCreatePortalUC{}, &mockCheckUsageUC{})

	c, w := testutil.NewRawTestContext(http.MethodPost, "/billing/webhook", []byte(`{}`), map[string]string{
		constants.HeaderStripeSignature: "t=1,v1=abc",
	})

	h.HandleWebhook(c)

	// Non-2xx so the provider redelivers.
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// =====================================================================
// Checkout
// =====================================================================

func TestCreateCheckout_Success(t *testing.T) {
	checkoutUC := &mockCreateCheckoutUC{result: &dto.SessionDTO{SessionID: "cs_1", URL: "https://checkout.example/s/cs_1"}}
	h := newBillingHandler(&mockProcessWebhookUC{}, checkoutUC, &mockCreatePortalUC{}, &mockCheckUsageUC{})

	c, w := testutil.NewTestContext(http.MethodPost, "/billing/checkout", CreateCheckoutRequest{PlanID: "pro"})
	testutil.SetAuthContext(c, 42)

	h.CreateCheckout(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(42), checkoutUC.lastCmd.UserID)
	assert.Equal(t, "pro", checkoutUC.lastCmd.PlanID)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.True(t, resp.Success)
	assert.Contains(t, string(resp.Data), "cs_1")
}

func TestCreateCheckout_Unauthenticated(t *testing.T) {
	h := newBillingHandler(&mockProcessWebhookUC{}, &mockCreateCheckoutUC{}, &mockCreatePortalUC{}, &mockCheckUsageUC{})

	c, w := testutil.NewTestContext(http.MethodPost, "/billing/checkout", CreateCheckoutRequest{PlanID: "pro"})

	h.CreateCheckout(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateCheckout_MissingPlanID(t *testing.T) {
	h := newBillingHandler(&mockProcessWebhookUC{}, &mockCreateCheckoutUC{}, &mockCreatePortalUC{}, &mockCheckUsageUC{})

	c, w := testutil.NewTestContext(http.MethodPost, "/billing/checkout", map[string]string{})
	testutil.SetAuthContext(c, 42)

	h.CreateCheckout(c)

	assert.NotEqual(t, http.StatusOK, w.Code)
}

func TestCreateCheckout_PlanNotPurchasable(t *testing.T) {
	checkoutUC := &mockCreateCheckoutUC{err: apperrors.ErrPlanNotPurchasable}
	h := newBillingHandler(&mockProcessWebhookUC{}, checkoutUC, &mockCreatePortalUC{}, &mockCheckUsageUC{})

	c, w := testutil.NewTestContext(http.MethodPost, "/billing/checkout", CreateCheckoutRequest{PlanID: "free"})
	testutil.SetAuthContext(c, 42)

	h.CreateCheckout(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// =====================================================================
// Portal
// =====================================================================

func TestCreatePortal_Success(t *testing.T) {
	portalUC := &mockCreatePortalUC{result: &dto.SessionDTO{URL: "https://portal.example/s/bps_1"}}
	h := newBillingHandler(&mockProcessWebhookUC{}, &mockCreateCheckoutUC{}, portalUC, &mockCheckUsageUC{})

	c, w := testutil.NewTestContext(http.MethodPost, "/billing/portal", nil)
	testutil.SetAuthContext(c, 42)

	h.CreatePortal(c)

	require.Equal(t, http.StatusOK, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.Contains(t, string(resp.Data), "bps_1")
}

func TestCreatePortal_NoProviderCustomer(t *testing.T) {
	portalUC := &mockCreatePortalUC{err: apperrors.ErrNoProviderCustomer}
	h := newBillingHandler(&mockProcessWebhookUC{}, &mockCreateCheckoutUC{}, portalUC, &mockCheckUsageUC{})

	c, w := testutil.NewTestContext(http.MethodPost, "/billing/portal", nil)
	testutil.SetAuthContext(c, 42)

	h.CreatePortal(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// =====================================================================
// Usage
// =====================================================================

func TestGetUsage_Success(t *testing.T) {
	usageUC := &mockCheckUsageUC{result: &dto.UsageDTO{
		PlanID:        "pro",
		IncludedQuota: 200,
		Used:          19,
		Remaining:     181,
		Allowed:       true,
	}}
	h := newBillingHandler(&mockProcessWebhookUC{}, &mockCreateCheckoutUC{}, &mockCreatePortalUC{}, usageUC)

	c, w := testutil.NewTestContext(http.MethodGet, "/billing/usage", nil)
	testutil.SetAuthContext(c, 42)

	h.GetUsage(c)

	require.Equal(t, http.StatusOK, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.True(t, resp.Success)
	assert.Contains(t, string(resp.Data), `"remaining":181`)
}

func TestGetUsage_Unauthenticated(t *testing.T) {
	h := newBillingHandler(&mockProcessWebhookUC{}, &mockCreateCheckoutUC{}, &mockCreatePortalUC{}, &mockCheckUsageUC{})

	c, w := testutil.NewTestContext(http.MethodGet, "/billing/usage", nil)

	h.GetUsage(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
