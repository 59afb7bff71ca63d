package usecases

import (
	"context"
	"time"

	"github.com/Drafter5000/Drafter5000-sub000/internal/application/billing/gateway"
	"github.com/Drafter5000/Drafter5000-sub000/internal/domain/billing"
)

// --- in-memory repositories ---

type mockPlanRepo struct {
	plans map[string]*billing.Plan
	err   error

	updateCalls int
	createCalls int
}

func newMockPlanRepo(plans ...*billing.Plan) *mockPlanRepo {
	m := &mockPlanRepo{plans: make(map[string]*billing.Plan)}
	for _, p := range plans {
		m.plans[p.PlanID()] = p
	}
	return m
}

func (m *mockPlanRepo) Create(ctx context.Context, plan *billing.Plan) error {
	if m.err != nil {
		return m.err
	}
	m.createCalls++
	m.plans[plan.PlanID()] = plan
	return nil
}

func (m *mockPlanRepo) GetByID(ctx context.Context, id uint) (*billing.Plan, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.plans {
		if p.ID() == id {
			return p, nil
		}
	}
	return nil, billing.ErrPlanNotFound
}

func (m *mockPlanRepo) GetByPlanID(ctx context.Context, planID string) (*billing.Plan, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.plans[planID]
	if !ok {
		return nil, billing.ErrPlanNotFound
	}
	return p, nil
}

func (m *mockPlanRepo) GetByProviderPriceRef(ctx context.Context, priceRef string) (*billing.Plan, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.plans {
		if p.ProviderPriceRef() != "" && p.ProviderPriceRef() == priceRef {
			return p, nil
		}
	}
	return nil, billing.ErrPlanNotFound
}

func (m *mockPlanRepo) Update(ctx context.Context, plan *billing.Plan) error {
	if m.err != nil {
		return m.err
	}
	m.updateCalls++
	m.plans[plan.PlanID()] = plan
	return nil
}

func (m *mockPlanRepo) Delete(ctx context.Context, id uint) error { return m.err }

func (m *mockPlanRepo) GetActiveVisiblePlans(ctx context.Context) ([]*billing.Plan, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*billing.Plan
	for _, p := range m.plans {
		if p.IsActive() && p.IsVisible() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPlanRepo) GetAllActive(ctx context.Context) ([]*billing.Plan, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*billing.Plan
	for _, p := range m.plans {
		if p.IsActive() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPlanRepo) List(ctx context.Context, filter billing.PlanFilter) ([]*billing.Plan, int64, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	var out []*billing.Plan
	for _, p := range m.plans {
		if filter.IsActive != nil && p.IsActive() != *filter.IsActive {
			continue
		}
		if filter.IsVisible != nil && p.IsVisible() != *filter.IsVisible {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (m *mockPlanRepo) ExistsByPlanID(ctx context.Context, planID string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.plans[planID]
	return ok, nil
}

type mockProfileRepo struct {
	byUser map[uint]*billing.UserBillingProfile
	err    error

	updateCalls int
}

func newMockProfileRepo(profiles ...*billing.UserBillingProfile) *mockProfileRepo {
	m := &mockProfileRepo{byUser: make(map[uint]*billing.UserBillingProfile)}
	for _, p := range profiles {
		m.byUser[p.UserID()] = p
	}
	return m
}

func (m *mockProfileRepo) Create(ctx context.Context, profile *billing.UserBillingProfile) error {
	if m.err != nil {
		return m.err
	}
	m.byUser[profile.UserID()] = profile
	return nil
}

func (m *mockProfileRepo) GetByUserID(ctx context.Context, userID uint) (*billing.UserBillingProfile, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.byUser[userID]
	if !ok {
		return nil, billing.ErrProfileNotFound
	}
	return p, nil
}

func (m *mockProfileRepo) GetByProviderCustomerRef(ctx context.Context, ref string) (*billing.UserBillingProfile, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.byUser {
		if p.ProviderCustomerRef() == ref {
			return p, nil
		}
	}
	return nil, billing.ErrProfileNotFound
}

func (m *mockProfileRepo) Update(ctx context.Context, profile *billing.UserBillingProfile) error {
	if m.err != nil {
		return m.err
	}
	m.updateCalls++
	m.byUser[profile.UserID()] = profile
	return nil
}

type mockRecordRepo struct {
	bySubRef map[string]*billing.SubscriptionRecord
	err      error
}

func newMockRecordRepo(records ...*billing.SubscriptionRecord) *mockRecordRepo {
	m := &mockRecordRepo{bySubRef: make(map[string]*billing.SubscriptionRecord)}
	for _, r := range records {
		m.bySubRef[r.ProviderSubRef()] = r
	}
	return m
}

func (m *mockRecordRepo) Create(ctx context.Context, record *billing.SubscriptionRecord) error {
	if m.err != nil {
		return m.err
	}
	m.bySubRef[record.ProviderSubRef()] = record
	return nil
}

func (m *mockRecordRepo) GetByProviderSubRef(ctx context.Context, ref string) (*billing.SubscriptionRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.bySubRef[ref]
	if !ok {
		return nil, billing.ErrRecordNotFound
	}
	return r, nil
}

func (m *mockRecordRepo) GetByUserID(ctx context.Context, userID uint) ([]*billing.SubscriptionRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*billing.SubscriptionRecord
	for _, r := range m.bySubRef {
		if r.UserID() == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRecordRepo) Update(ctx context.Context, record *billing.SubscriptionRecord) error {
	if m.err != nil {
		return m.err
	}
	m.bySubRef[record.ProviderSubRef()] = record
	return nil
}

type mockUsageRepo struct {
	count int64
	err   error
}

func (m *mockUsageRepo) CountByUserInPeriod(ctx context.Context, userID uint, periodStart, periodEnd time.Time) (int64, error) {
	return m.count, m.err
}

// --- provider gateway ---

type mockGateway struct {
	findProductFn    func(ctx context.Context, planID string) (*gateway.Product, error)
	createProductFn  func(ctx context.Context, params gateway.CreateProductParams) (*gateway.Product, error)
	listPricesFn     func(ctx context.Context, productRef string) ([]gateway.Price, error)
	createPriceFn    func(ctx context.Context, params gateway.CreatePriceParams) (*gateway.Price, error)
	deactivateFn     func(ctx context.Context, priceRef string) error
	createCustomerFn func(ctx context.Context, params gateway.CreateCustomerParams) (string, error)
	getSubFn         func(ctx context.Context, subRef string) (*gateway.Subscription, error)
	checkoutFn       func(ctx context.Context, params gateway.CheckoutParams) (*gateway.HostedSession, error)
	portalFn         func(ctx context.Context, params gateway.PortalParams) (string, error)
	verifyFn         func(payload []byte, signature string) (*gateway.Event, error)

	deactivatedPriceRefs   []string
	deactivatedProductRefs []string
	createdPrices          []gateway.CreatePriceParams
	createdProducts        []gateway.CreateProductParams
}

func (m *mockGateway) FindProductByPlanID(ctx context.Context, planID string) (*gateway.Product, error) {
	if m.findProductFn != nil {
		return m.findProductFn(ctx, planID)
	}
	return nil, nil
}

func (m *mockGateway) CreateProduct(ctx context.Context, params gateway.CreateProductParams) (*gateway.Product, error) {
	m.createdProducts = append(m.createdProducts, params)
	if m.createProductFn != nil {
		return m.createProductFn(ctx, params)
	}
	return &gateway.Product{Ref: "prod_" + params.PlanID, Active: true}, nil
}

func (m *mockGateway) ListActivePrices(ctx context.Context, productRef string) ([]gateway.Price, error) {
	if m.listPricesFn != nil {
		return m.listPricesFn(ctx, productRef)
	}
	return nil, nil
}

func (m *mockGateway) CreatePrice(ctx context.Context, params gateway.CreatePriceParams) (*gateway.Price, error) {
	m.createdPrices = append(m.createdPrices, params)
	if m.createPriceFn != nil {
		return m.createPriceFn(ctx, params)
	}
	return &gateway.Price{
		Ref:             "price_new_" + params.PlanID,
		ProductRef:      params.ProductRef,
		UnitAmountMinor: params.UnitAmountMinor,
		Currency:        params.Currency,
		Interval:        "month",
		Active:          true,
	}, nil
}

func (m *mockGateway) DeactivatePrice(ctx context.Context, priceRef string) error {
	m.deactivatedPriceRefs = append(m.deactivatedPriceRefs, priceRef)
	if m.deactivateFn != nil {
		return m.deactivateFn(ctx, priceRef)
	}
	return nil
}

func (m *mockGateway) DeactivateProduct(ctx context.Context, productRef string) error {
	m.deactivatedProductRefs = append(m.deactivatedProductRefs, productRef)
	return nil
}

func (m *mockGateway) CreateCustomer(ctx context.Context, params gateway.CreateCustomerParams) (string, error) {
	if m.createCustomerFn != nil {
		return m.createCustomerFn(ctx, params)
	}
	return "cus_new", nil
}

func (m *mockGateway) GetSubscription(ctx context.Context, subRef string) (*gateway.Subscription, error) {
	if m.getSubFn != nil {
		return m.getSubFn(ctx, subRef)
	}
	return nil, nil
}

func (m *mockGateway) CreateCheckoutSession(ctx context.Context, params gateway.CheckoutParams) (*gateway.HostedSession, error) {
	if m.checkoutFn != nil {
		return m.checkoutFn(ctx, params)
	}
	return &gateway.HostedSession{Ref: "cs_test", URL: "https://pay.example.com/session"}, nil
}

func (m *mockGateway) CreatePortalSession(ctx context.Context, params gateway.PortalParams) (string, error) {
	if m.portalFn != nil {
		return m.portalFn(ctx, params)
	}
	return "https://pay.example.com/portal", nil
}

func (m *mockGateway) VerifyEvent(payload []byte, signature string) (*gateway.Event, error) {
	if m.verifyFn != nil {
		return m.verifyFn(payload, signature)
	}
	return nil, nil
}

// --- supporting fakes ---

type mockEventStore struct {
	seen map[string]bool
	err  error

	markCalls int
}

func newMockEventStore() *mockEventStore {
	return &mockEventStore{seen: make(map[string]bool)}
}

func (m *mockEventStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.seen[eventID], nil
}

func (m *mockEventStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	m.markCalls++
	if m.seen[eventID] {
		return false, nil
	}
	m.seen[eventID] = true
	return true, nil
}

type mockTxManager struct{}

func (mockTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockNotifier struct {
	calls []uint
	err   error
}

func (m *mockNotifier) NotifyTrialEnding(ctx context.Context, userID uint, planID string, trialEnd time.Time) error {
	m.calls = append(m.calls, userID)
	return m.err
}

type mockUserDirectory struct {
	email string
	name  string
	err   error
}

func (m *mockUserDirectory) GetUserEmail(ctx context.Context, userID uint) (string, string, error) {
	return m.email, m.name, m.err
}
