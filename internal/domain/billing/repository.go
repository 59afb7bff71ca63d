package billing

import (
	"context"
	"time"
)

type PlanRepository interface {
	Create(ctx context.Context, plan *Plan) error
	GetByID(ctx context.Context, id uint) (*Plan, error)
	GetByPlanID(ctx context.Context, planID string) (*Plan, error)
	Update(ctx context.Context, plan *Plan) error
	Delete(ctx context.Context, id uint) error

	GetByProviderPriceRef(ctx context.Context, priceRef string) (*Plan, error)

	GetActiveVisiblePlans(ctx context.Context) ([]*Plan, error)
	GetAllActive(ctx context.Context) ([]*Plan, error)
	List(ctx context.Context, filter PlanFilter) ([]*Plan, int64, error)

	ExistsByPlanID(ctx context.Context, planID string) (bool, error)
}

type PlanFilter struct {
	IsActive  *bool
	IsVisible *bool
	Page      int
	PageSize  int
	SortBy    string
	SortDesc  bool
}

type BillingProfileRepository interface {
	Create(ctx context.Context, profile *UserBillingProfile) error
	GetByUserID(ctx context.Context, userID uint) (*UserBillingProfile, error)
	GetByProviderCustomerRef(ctx context.Context, ref string) (*UserBillingProfile, error)
	Update(ctx context.Context, profile *UserBillingProfile) error
}

type SubscriptionRecordRepository interface {
	Create(ctx context.Context, record *SubscriptionRecord) error
	GetByProviderSubRef(ctx context.Context, ref string) (*SubscriptionRecord, error)
	GetByUserID(ctx context.Context, userID uint) ([]*SubscriptionRecord, error)
	Update(ctx context.Context, record *SubscriptionRecord) error
}

// ArticleUsageRepository counts the metered action for the usage gate. The
// billing package owns only the counting view of articles; authoring lives
// elsewhere.
type ArticleUsageRepository interface {
	CountByUserInPeriod(ctx context.Context, userID uint, periodStart, periodEnd time.Time) (int64, error)
}

// TxManager runs fn inside one datastore transaction. Repositories resolved
// through the callback's context join that transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
