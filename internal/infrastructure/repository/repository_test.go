package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Drafter5000/Drafter5000-sub000/internal/domain/billing"
	"github.com/Drafter5000/Drafter5000-sub000/internal/infrastructure/persistence/models"
	"github.com/Drafter5000/Drafter5000-sub000/internal/shared/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.PlanModel{},
		&models.BillingProfileModel{},
		&models.SubscriptionRecordModel{},
		&models.ArticleModel{},
	)
	require.NoError(t, err)

	return db
}

func createTestPlan(t *testing.T, planID string, price int64, quota int) *billing.Plan {
	t.Helper()
	plan, err := billing.NewPlan(planID, planID, "test plan", price, "usd", quota)
	require.NoError(t, err)
	return plan
}

func TestPlanRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlanRepository(db, logger.NewLogger())
	ctx := context.Background()

	plan := createTestPlan(t, "pro", 2900, 200)
	f, err := billing.NewPlanFeature("200 articles per month", true, 1)
	require.NoError(t, err)
	plan.ReplaceFeatures([]billing.PlanFeature{*f})

	require.NoError(t, repo.Create(ctx, plan))
	assert.NotZero(t, plan.ID())

	found, err := repo.GetByPlanID(ctx, "pro")
	require.NoError(t, err)
	assert.Equal(t, "pro", found.PlanID())
	assert.Equal(t, int64(2900), found.PriceMinorUnits())
	assert.Equal(t, 200, found.IncludedQuota())
	require.Len(t, found.Features(), 1)
	assert.Equal(t, "200 articles per month", found.Features()[0].Text())

	byID, err := repo.GetByID(ctx, plan.ID())
	require.NoError(t, err)
	assert.Equal(t, "pro", byID.PlanID())
}

func TestPlanRepository_GetByPlanID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlanRepository(db, logger.NewLogger())

	_, err := repo.GetByPlanID(context.Background(), "nope")
	assert.ErrorIs(t, err, billing.ErrPlanNotFound)
}

func TestPlanRepository_DuplicatePlanID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlanRepository(db, logger.NewLogger())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, createTestPlan(t, "pro", 2900, 200)))
	err := repo.Create(ctx, createTestPlan(t, "pro", 1900, 100))
	assert.Error(t, err)
}

func TestPlanRepository_UpdateRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlanRepository(db, logger.NewLogger())
	ctx := context.Background()

	plan := createTestPlan(t, "pro", 2900, 200)
	require.NoError(t, repo.Create(ctx, plan))

	require.NoError(t, plan.AdoptProviderProduct("prod_pro"))
	require.NoError(t, plan.AdoptProviderPrice("price_pro"))
	require.NoError(t, repo.Update(ctx, plan))

	found, err := repo.GetByPlanID(ctx, "pro")
	require.NoError(t, err)
	assert.Equal(t, "prod_pro", found.ProviderProductRef())
	assert.Equal(t, "price_pro", found.ProviderPriceRef())
	assert.Equal(t, plan.Version(), found.Version())
}

func TestPlanRepository_GetByProviderPriceRef(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlanRepository(db, logger.NewLogger())
	ctx := context.Background()

	plan := createTestPlan(t, "pro", 2900, 200)
	require.NoError(t, plan.AdoptProviderProduct("prod_pro"))
	require.NoError(t, plan.AdoptProviderPrice("price_pro_live"))
	require.NoError(t, repo.Create(ctx, plan))

	found, err := repo.GetByProviderPriceRef(ctx, "price_pro_live")
	require.NoError(t, err)
	assert.Equal(t, "pro", found.PlanID())

	_, err = repo.GetByProviderPriceRef(ctx, "price_unknown")
	assert.ErrorIs(t, err, billing.ErrPlanNotFound)
}

func TestPlanRepository_ListAndFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlanRepository(db, logger.NewLogger())
	ctx := context.Background()

	free := createTestPlan(t, "free", 0, 20)
	free.UpdateDisplay(true, false, 1)
	pro := createTestPlan(t, "pro", 2900, 200)
	pro.UpdateDisplay(true, true, 2)
	legacy := createTestPlan(t, "legacy", 1900, 100)
	legacy.Deactivate()

	require.NoError(t, repo.Create(ctx, free))
	require.NoError(t, repo.Create(ctx, pro))
	require.NoError(t, repo.Create(ctx, legacy))

	visible, err := repo.GetActiveVisiblePlans(ctx)
	require.NoError(t, err)
	require.Len(t, visible, 2)
	assert.Equal(t, "free", visible[0].PlanID(), "sorted by sort order")

	active, err := repo.GetAllActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	isActive := false
	inactive, total, err := repo.List(ctx, billing.PlanFilter{IsActive: &isActive})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, inactive, 1)
	assert.Equal(t, "legacy", inactive[0].PlanID())

	reloaded, err := repo.GetByPlanID(ctx, "legacy")
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive(), "plan created inactive must persist as inactive")
	assert.False(t, reloaded.IsVisible())

	exists, err := repo.ExistsByPlanID(ctx, "pro")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestBillingProfileRepository_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBillingProfileRepository(db, logger.NewLogger())
	ctx := context.Background()

	profile, err := billing.NewUserBillingProfile(42, "free")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, profile))
	assert.NotZero(t, profile.ID())

	require.NoError(t, profile.SetProviderCustomerRef("cus_42"))
	end := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, profile.ApplySubscription("pro", billing.StatusTrial, &end))
	require.NoError(t, repo.Update(ctx, profile))

	byUser, err := repo.GetByUserID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "pro", byUser.PlanID())
	assert.Equal(t, billing.StatusTrial, byUser.Status())
	require.NotNil(t, byUser.CurrentPeriodEnd())

	byRef, err := repo.GetByProviderCustomerRef(ctx, "cus_42")
	require.NoError(t, err)
	assert.Equal(t, uint(42), byRef.UserID())
}

func TestBillingProfileRepository_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBillingProfileRepository(db, logger.NewLogger())
	ctx := context.Background()

	_, err := repo.GetByUserID(ctx, 999)
	assert.ErrorIs(t, err, billing.ErrProfileNotFound)

	_, err = repo.GetByProviderCustomerRef(ctx, "cus_nobody")
	assert.ErrorIs(t, err, billing.ErrProfileNotFound)
}

func TestBillingProfileRepository_OneProfilePerUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBillingProfileRepository(db, logger.NewLogger())
	ctx := context.Background()

	first, err := billing.NewUserBillingProfile(42, "free")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, first))

	second, err := billing.NewUserBillingProfile(42, "free")
	require.NoError(t, err)
	assert.Error(t, repo.Create(ctx, second))
}

func TestSubscriptionRecordRepository_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubscriptionRecordRepository(db, logger.NewLogger())
	ctx := context.Background()

	end := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	cancelAt := end.AddDate(0, 0, -1)
	record, err := billing.NewSubscriptionRecord(42, "sub_1", billing.SubscriptionSnapshot{
		PlanID:             "pro",
		ProviderPriceRef:   "price_pro",
		Status:             billing.StatusActive,
		CurrentPeriodStart: end.AddDate(0, -1, 0),
		CurrentPeriodEnd:   end,
		CancelAt:           &cancelAt,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, record))

	canceledAt := time.Now().UTC().Truncate(time.Second)
	record.MarkCanceled(canceledAt)
	require.NoError(t, repo.Update(ctx, record))

	found, err := repo.GetByProviderSubRef(ctx, "sub_1")
	require.NoError(t, err)
	assert.Equal(t, billing.StatusCanceled, found.Status())
	assert.Equal(t, "price_pro", found.ProviderPriceRef())
	assert.True(t, found.CurrentPeriodStart().Equal(end.AddDate(0, -1, 0)))
	require.NotNil(t, found.CancelAt())
	assert.True(t, found.CancelAt().Equal(cancelAt))
	require.NotNil(t, found.CanceledAt())

	list, err := repo.GetByUserID(ctx, 42)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSubscriptionRecordRepository_UniqueSubRef(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubscriptionRecordRepository(db, logger.NewLogger())
	ctx := context.Background()

	end := time.Now().UTC()
	snap := billing.SubscriptionSnapshot{
		PlanID: "pro", Status: billing.StatusActive, CurrentPeriodEnd: end,
	}
	r1, err := billing.NewSubscriptionRecord(42, "sub_1", snap)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, r1))

	r2, err := billing.NewSubscriptionRecord(43, "sub_1", snap)
	require.NoError(t, err)
	assert.Error(t, repo.Create(ctx, r2))
}

func TestArticleUsageRepository_CountWindow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewArticleUsageRepository(db, logger.NewLogger())
	ctx := context.Background()

	periodStart := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2026, 9, 30, 23, 59, 59, 0, time.UTC)

	rows := []models.ArticleModel{
		{SID: "art_1", UserID: 42, CreatedAt: periodStart.Add(time.Hour)},
		{SID: "art_2", UserID: 42, CreatedAt: periodStart.AddDate(0, 0, 15)},
		{SID: "art_3", UserID: 42, CreatedAt: periodStart.AddDate(0, -1, 0)},
		{SID: "art_4", UserID: 7, CreatedAt: periodStart.Add(time.Hour)},
	}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}

	count, err := repo.CountByUserInPeriod(ctx, 42, periodStart, periodEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count, "only this user's articles inside the window count")
}

func TestArticleUsageRepository_SoftDeletedStillCounts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewArticleUsageRepository(db, logger.NewLogger())
	ctx := context.Background()

	periodStart := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2026, 9, 30, 23, 59, 59, 0, time.UTC)

	row := models.ArticleModel{SID: "art_1", UserID: 42, CreatedAt: periodStart.Add(time.Hour)}
	require.NoError(t, db.Create(&row).Error)
	require.NoError(t, db.Delete(&row).Error)

	count, err := repo.CountByUserInPeriod(ctx, 42, periodStart, periodEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "deleting an article must not refund quota")
}

func TestGormTxManager_RollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	tx := NewGormTxManager(db)
	profileRepo := NewBillingProfileRepository(db, logger.NewLogger())
	recordRepo := NewSubscriptionRecordRepository(db, logger.NewLogger())
	ctx := context.Background()

	profile, err := billing.NewUserBillingProfile(42, "free")
	require.NoError(t, err)

	snap := billing.SubscriptionSnapshot{
		PlanID: "pro", Status: billing.StatusActive, CurrentPeriodEnd: time.Now().UTC(),
	}
	err = tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := profileRepo.Create(ctx, profile); err != nil {
			return err
		}
		// second insert with a duplicate sub ref forces a failure
		r1, err := billing.NewSubscriptionRecord(42, "sub_dup", snap)
		if err != nil {
			return err
		}
		if err := recordRepo.Create(ctx, r1); err != nil {
			return err
		}
		r2, err := billing.NewSubscriptionRecord(43, "sub_dup", snap)
		if err != nil {
			return err
		}
		return recordRepo.Create(ctx, r2)
	})
	require.Error(t, err)

	_, err = profileRepo.GetByUserID(ctx, 42)
	assert.ErrorIs(t, err, billing.ErrProfileNotFound, "the profile insert must roll back with the failed record insert")
}

func TestGormTxManager_CommitsOnSuccess(t *testing.T) {
	db := setupTestDB(t)
	tx := NewGormTxManager(db)
	profileRepo := NewBillingProfileRepository(db, logger.NewLogger())
	ctx := context.Background()

	profile, err := billing.NewUserBillingProfile(42, "free")
	require.NoError(t, err)

	err = tx.WithinTx(ctx, func(ctx context.Context) error {
		return profileRepo.Create(ctx, profile)
	})
	require.NoError(t, err)

	found, err := profileRepo.GetByUserID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, uint(42), found.UserID())
}
