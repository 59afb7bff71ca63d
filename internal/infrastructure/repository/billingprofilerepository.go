package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Drafter5000/Drafter5000-sub000/internal/domain/billing"
	"github.com/Drafter5000/Drafter5000-sub000/internal/infrastructure/persistence/models"
	"github.com/Drafter5000/Drafter5000-sub000/internal/shared/logger"
)

type BillingProfileRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewBillingProfileRepository(db *gorm.DB, logger logger.Interface) billing.BillingProfileRepository {
	return &BillingProfileRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *BillingProfileRepositoryImpl) Create(ctx context.Context, profile *billing.UserBillingProfile) error {
	model := r.toModel(profile)

	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create billing profile", "error", err, "user_id", profile.UserID())
		return fmt.Errorf("failed to create billing profile: %w", err)
	}

	if err := profile.SetID(model.ID); err != nil {
		return err
	}

	r.logger.Infow("billing profile created", "id", model.ID, "user_id", profile.UserID())
	return nil
}

func (r *BillingProfileRepositoryImpl) GetByUserID(ctx context.Context, userID uint) (*billing.UserBillingProfile, error) {
	var model models.BillingProfileModel
	if err := dbFrom(ctx, r.db).Where("user_id = ?", userID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrProfileNotFound
		}
		r.logger.Errorw("failed to get billing profile", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to get billing profile: %w", err)
	}
	return r.toEntity(&model)
}

func (r *BillingProfileRepositoryImpl) GetByProviderCustomerRef(ctx context.Context, ref string) (*billing.UserBillingProfile, error) {
	var model models.BillingProfileModel
	if err := dbFrom(ctx, r.db).Where("provider_customer_ref = ?", ref).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrProfileNotFound
		}
		r.logger.Errorw("failed to get billing profile by customer ref", "error", err, "customer_ref", ref)
		return nil, fmt.Errorf("failed to get billing profile by customer ref: %w", err)
	}
	return r.toEntity(&model)
}

func (r *BillingProfileRepositoryImpl) Update(ctx context.Context, profile *billing.UserBillingProfile) error {
	model := r.toModel(profile)

	result := dbFrom(ctx, r.db).Model(&models.BillingProfileModel{}).
		Where("id = ?", profile.ID()).
		Updates(map[string]interface{}{
			"plan_id":               model.PlanID,
			"status":                model.Status,
			"provider_customer_ref": model.ProviderCustomerRef,
			"current_period_end":    model.CurrentPeriodEnd,
			"version":               model.Version,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update billing profile", "error", result.Error, "user_id", profile.UserID())
		return fmt.Errorf("failed to update billing profile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return billing.ErrProfileNotFound
	}
	return nil
}

func (r *BillingProfileRepositoryImpl) toModel(profile *billing.UserBillingProfile) *models.BillingProfileModel {
	return &models.BillingProfileModel{
		ID:                  profile.ID(),
		UserID:              profile.UserID(),
		PlanID:              profile.PlanID(),
		Status:              string(profile.Status()),
		ProviderCustomerRef: profile.ProviderCustomerRef(),
		CurrentPeriodEnd:    profile.CurrentPeriodEnd(),
		Version:             profile.Version(),
		CreatedAt:           profile.CreatedAt(),
		UpdatedAt:           profile.UpdatedAt(),
	}
}

func (r *BillingProfileRepositoryImpl) toEntity(model *models.BillingProfileModel) (*billing.UserBillingProfile, error) {
	return billing.ReconstructUserBillingProfile(
		model.ID,
		model.UserID,
		model.PlanID,
		billing.SubscriptionStatus(model.Status),
		model.ProviderCustomerRef,
		model.CurrentPeriodEnd,
		model.Version,
		model.CreatedAt,
		model.UpdatedAt,
	)
}
