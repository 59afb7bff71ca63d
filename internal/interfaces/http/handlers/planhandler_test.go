package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Drafter5000/Drafter5000-sub000/internal/application/billing/dto"
	"github.com/Drafter5000/Drafter5000-sub000/internal/application/billing/usecases"
	"github.com/Drafter5000/Drafter5000-sub000/internal/domain/billing"
	"github.com/Drafter5000/Drafter5000-sub000/internal/interfaces/http/handlers/testutil"
)

// =====================================================================
// Mock use cases
// =====================================================================

type mockCreatePlanUC struct {
	result  *dto.PlanDTO
	err     error
	lastCmd usecases.CreatePlanCommand
}

func (m *mockCreatePlanUC) Execute(ctx context.Context, cmd usecases.CreatePlanCommand) (*dto.PlanDTO, error) {
	m.lastCmd = cmd
	return m.result, m.err
}

type mockUpdatePlanUC struct {
	result  *dto.PlanDTO
	err     error
	lastCmd usecases.UpdatePlanCommand
}

func (m *mockUpdatePlanUC) Execute(ctx context.Context, cmd usecases.UpdatePlanCommand) (*dto.PlanDTO, error) {
	m.lastCmd = cmd
	return m.result, m.err
}

type mockDeactivatePlanUC struct {
	err     error
	lastCmd usecases.DeactivatePlanCommand
}

func (m *mockDeactivatePlanUC) Execute(ctx context.Context, cmd usecases.DeactivatePlanCommand) error {
	m.lastCmd = cmd
	return m.err
}

type mockGetPlanUC struct {
	result *dto.PlanDTO
	err    error
}

func (m *mockGetPlanUC) Execute(ctx context.Context, planID string) (*dto.PlanDTO, error) {
	return m.result, m.err
}

type mockListPlansUC struct {
	result  *usecases.ListPlansResult
	err     error
	lastCmd usecases.ListPlansCommand
}

func (m *mockListPlansUC) Execute(ctx context.Context, cmd usecases.ListPlansCommand) (*usecases.ListPlansResult, error) {
	m.lastCmd = cmd
	return m.result, m.err
}

type mockGetPublicPlansUC struct {
	result []*dto.PublicPlanDTO
	err    error
}

func (m *mockGetPublicPlansUC) Execute(ctx context.Context) ([]*dto.PublicPlanDTO, error) {
	return m.result, m.err
}

type mockSyncCatalogUC struct {
	report     *dto.SyncReport
	one        *dto.PlanSyncResult
	err        error
	lastPlanID string
}

func (m *mockSyncCatalogUC) Execute(ctx context.Context) (*dto.SyncReport, error) {
	return m.report, m.err
}

func (m *mockSyncCatalogUC) ExecuteOne(ctx context.Context, planID string) (*dto.PlanSyncResult, error) {
	m.lastPlanID = planID
	return m.one, m.err
}

type planHandlerMocks struct {
	create     *mockCreatePlanUC
	update     *mockUpdatePlanUC
	deactivate *mockDeactivatePlanUC
	get        *mockGetPlanUC
	list       *mockListPlansUC
	public     *mockGetPublicPlansUC
	sync       *mockSyncCatalogUC
}

func newPlanHandler() (*PlanHandler, *planHandlerMocks) {
	m := &planHandlerMocks{
		create:     &mockCreatePlanUC{},
		update:     &mockUpdatePlanUC{},
		deactivate: &mockDeactivatePlanUC{},
		get:        &mockGetPlanUC{},
		list:       &mockListPlansUC{},
		public:     &mockGetPublicPlansUC{},
		sync:       &mockSyncCatalogUC{},
	}
	h := NewPlanHandler(m.create, m.update, m.deactivate, m.get, m.list, m.public, m.sync, testutil.NewMockLogger())
	return h, m
}

// =====================================================================
// CRUD
// =====================================================================

func TestCreatePlanHandler_Success(t *testing.T) {
	h, m := newPlanHandler()
	m.create.result = &dto.PlanDTO{PlanID: "pro", Name: "Pro"}

	c, w := testutil.NewTestContext(http.MethodPost, "/plans", CreatePlanRequest{
		PlanID:          "pro",
		Name:            "Pro",
		PriceMinorUnits: 1900,
		Currency:        "usd",
		IncludedQuota:   200,
		IsVisible:       true,
	})

	h.CreatePlan(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "pro", m.create.lastCmd.PlanID)
	assert.Equal(t, int64(1900), m.create.lastCmd.PriceMinorUnits)
}

func TestCreatePlanHandler_DuplicatePlanID(t *testing.T) {
	h, m := newPlanHandler()
	m.create.err = billing.ErrPlanIDExists

	c, w := testutil.NewTestContext(http.MethodPost, "/plans", CreatePlanRequest{
		PlanID: "pro",
		Name:   "Pro",
	})

	h.CreatePlan(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreatePlanHandler_MissingRequiredFields(t *testing.T) {
	h, _ := newPlanHandler()

	c, w := testutil.NewTestContext(http.MethodPost, "/plans", map[string]string{"name": "Pro"})

	h.CreatePlan(c)

	assert.NotEqual(t, http.StatusCreated, w.Code)
}

func TestCreatePlanHandler_RejectsInvalidFields(t *testing.T) {
	cases := []struct {
		name string
		req  CreatePlanRequest
	}{
		{"negative price", CreatePlanRequest{PlanID: "pro", Name: "Pro", PriceMinorUnits: -100}},
		{"bad currency code", CreatePlanRequest{PlanID: "pro", Name: "Pro", Currency: "dollars"}},
		{"unknown cta behavior", CreatePlanRequest{PlanID: "pro", Name: "Pro", CTABehavior: "popup"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, m := newPlanHandler()

			c, w := testutil.NewTestContext(http.MethodPost, "/plans", tc.req)
			h.CreatePlan(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, m.create.lastCmd.PlanID, "invalid request must not reach the use case")
		})
	}
}

func TestUpdatePlanHandler_Success(t *testing.T) {
	h, m := newPlanHandler()
	m.update.result = &dto.PlanDTO{PlanID: "pro", Name: "Pro"}

	quota := 500
	c, w := testutil.NewTestContext(http.MethodPut, "/plans/pro", UpdatePlanRequest{IncludedQuota: &quota})
	testutil.SetURLParam(c, "id", "pro")

	h.UpdatePlan(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pro", m.update.lastCmd.PlanID)
	require.NotNil(t, m.update.lastCmd.IncludedQuota)
	assert.Equal(t, 500, *m.update.lastCmd.IncludedQuota)
}

func TestUpdatePlanHandler_SyncToStripeTriggersSingleSync(t *testing.T) {
	h, m := newPlanHandler()
	m.update.result = &dto.PlanDTO{PlanID: "pro", Name: "Pro"}
	m.sync.one = &dto.PlanSyncResult{PlanID: "pro"}

	price := int64(2900)
	c, w := testutil.NewTestContext(http.MethodPut, "/plans/pro", UpdatePlanRequest{
		PriceMinorUnits: &price,
		SyncToStripe:    true,
	})
	testutil.SetURLParam(c, "id", "pro")

	h.UpdatePlan(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pro", m.sync.lastPlanID, "flag should sync only the edited plan")
}

func TestUpdatePlanHandler_WithoutFlagDoesNotSync(t *testing.T) {
	h, m := newPlanHandler()
	m.update.result = &dto.PlanDTO{PlanID: "pro", Name: "Pro"}

	c, w := testutil.NewTestContext(http.MethodPut, "/plans/pro", UpdatePlanRequest{})
	testutil.SetURLParam(c, "id", "pro")

	h.UpdatePlan(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, m.sync.lastPlanID)
}

func TestUpdatePlanHandler_NotFound(t *testing.T) {
	h, m := newPlanHandler()
	m.update.err = billing.ErrPlanNotFound

	c, w := testutil.NewTestContext(http.MethodPut, "/plans/ghost", UpdatePlanRequest{})
	testutil.SetURLParam(c, "id", "ghost")

	h.UpdatePlan(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeactivatePlanHandler_Success(t *testing.T) {
	h, m := newPlanHandler()

	c, w := testutil.NewTestContext(http.MethodDelete, "/plans/pro", nil)
	testutil.SetURLParam(c, "id", "pro")

	h.DeactivatePlan(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pro", m.deactivate.lastCmd.PlanID)
}

func TestGetPlanHandler_Success(t *testing.T) {
	h, m := newPlanHandler()
	m.get.result = &dto.PlanDTO{PlanID: "pro", Name: "Pro"}

	c, w := testutil.NewTestContext(http.MethodGet, "/plans/pro", nil)
	testutil.SetURLParam(c, "id", "pro")

	h.GetPlan(c)

	require.Equal(t, http.StatusOK, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.Contains(t, string(resp.Data), `"plan_id":"pro"`)
}

func TestGetPlanHandler_MissingID(t *testing.T) {
	h, _ := newPlanHandler()

	c, w := testutil.NewTestContext(http.MethodGet, "/plans/", nil)

	h.GetPlan(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListPlansHandler_ParsesFilters(t *testing.T) {
	h, m := newPlanHandler()
	m.list.result = &usecases.ListPlansResult{Plans: []*dto.PlanDTO{}, Total: 0}

	c, w := testutil.NewTestContext(http.MethodGet, "/plans", nil)
	testutil.SetQueryParams(c, map[string]string{
		"is_active": "true",
		"page":      "2",
		"page_size": "10",
	})

	h.ListPlans(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, m.list.lastCmd.IsActive)
	assert.True(t, *m.list.lastCmd.IsActive)
	assert.Equal(t, 2, m.list.lastCmd.Page)
	assert.Equal(t, 10, m.list.lastCmd.PageSize)
}

func TestListPlansHandler_InvalidPage(t *testing.T) {
	h, _ := newPlanHandler()

	c, w := testutil.NewTestContext(http.MethodGet, "/plans", nil)
	testutil.SetQueryParams(c, map[string]string{"page": "zero"})

	h.ListPlans(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPublicPlansHandler_Success(t *testing.T) {
	h, m := newPlanHandler()
	m.public.result = []*dto.PublicPlanDTO{
		{PlanID: "free", Name: "Free"},
		{PlanID: "pro", Name: "Pro"},
	}

	c, w := testutil.NewTestContext(http.MethodGet, "/plans/public", nil)

	h.GetPublicPlans(c)

	require.Equal(t, http.StatusOK, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.Contains(t, string(resp.Data), `"plan_id":"free"`)
	assert.Contains(t, string(resp.Data), `"plan_id":"pro"`)
}

// =====================================================================
// Catalog sync
// =====================================================================

func TestSyncCatalogHandler_Success(t *testing.T) {
	h, m := newPlanHandler()
	report := &dto.SyncReport{}
	report.Add("pro", dto.SyncOutcomeSynced, "")
	m.sync.report = report

	c, w := testutil.NewTestContext(http.MethodPost, "/plans/sync", nil)

	h.SyncCatalog(c)

	require.Equal(t, http.StatusOK, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.Contains(t, string(resp.Data), `"synced":1`)
}

func TestSyncPlanHandler_Success(t *testing.T) {
	h, m := newPlanHandler()
	m.sync.one = &dto.PlanSyncResult{PlanID: "pro", Outcome: dto.SyncOutcomeSynced}

	c, w := testutil.NewTestContext(http.MethodPost, "/plans/pro/sync", nil)
	testutil.SetURLParam(c, "id", "pro")

	h.SyncPlan(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pro", m.sync.lastPlanID)
}

func TestSyncPlanHandler_UnknownPlan(t *testing.T) {
	h, m := newPlanHandler()
	m.sync.err = billing.ErrPlanNotFound

	c, w := testutil.NewTestContext(http.MethodPost, "/plans/ghost/sync", nil)
	testutil.SetURLParam(c, "id", "ghost")

	h.SyncPlan(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
