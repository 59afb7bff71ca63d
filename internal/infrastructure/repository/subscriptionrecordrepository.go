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

type SubscriptionRecordRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewSubscriptionRecordRepository(db *gorm.DB, logger logger.Interface) billing.SubscriptionRecordRepository {
	return &SubscriptionRecordRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *SubscriptionRecordRepositoryImpl) Create(ctx context.Context, record *billing.SubscriptionRecord) error {
	model := r.toModel(record)

	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create subscription record",
			"error", err, "sub_ref", record.ProviderSubRef())
		return fmt.Errorf("failed to create subscription record: %w", err)
	}

	if err := record.SetID(model.ID); err != nil {
		return err
	}
	return nil
}

func (r *SubscriptionRecordRepositoryImpl) GetByProviderSubRef(ctx context.Context, ref string) (*billing.SubscriptionRecord, error) {
	var model models.SubscriptionRecordModel
	if err := dbFrom(ctx, r.db).Where("provider_sub_ref = ?", ref).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrRecordNotFound
		}
		r.logger.Errorw("failed to get subscription record", "error", err, "sub_ref", ref)
		return nil, fmt.Errorf("failed to get subscription record: %w", err)
	}
	return r.toEntity(&model)
}

func (r *SubscriptionRecordRepositoryImpl) GetByUserID(ctx context.Context, userID uint) ([]*billing.SubscriptionRecord, error) {
	var modelList []models.SubscriptionRecordModel
	err := dbFrom(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&modelList).Error
	if err != nil {
		r.logger.Errorw("failed to list subscription records", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to list subscription records: %w", err)
	}

	records := make([]*billing.SubscriptionRecord, 0, len(modelList))
	for i := range modelList {
		record, err := r.toEntity(&modelList[i])
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *SubscriptionRecordRepositoryImpl) Update(ctx context.Context, record *billing.SubscriptionRecord) error {
	model := r.toModel(record)

	result := dbFrom(ctx, r.db).Model(&models.SubscriptionRecordModel{}).
		Where("id = ?", record.ID()).
		Updates(map[string]interface{}{
			"plan_id":              model.PlanID,
			"provider_price_ref":   model.ProviderPriceRef,
			"status":               model.Status,
			"current_period_start": model.CurrentPeriodStart,
			"current_period_end":   model.CurrentPeriodEnd,
			"cancel_at":            model.CancelAt,
			"canceled_at":          model.CanceledAt,
			"version":              model.Version,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update subscription record",
			"error", result.Error, "sub_ref", record.ProviderSubRef())
		return fmt.Errorf("failed to update subscription record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return billing.ErrRecordNotFound
	}
	return nil
}

func (r *SubscriptionRecordRepositoryImpl) toModel(record *billing.SubscriptionRecord) *models.SubscriptionRecordModel {
	return &models.SubscriptionRecordModel{
		ID:                 record.ID(),
		UserID:             record.UserID(),
		PlanID:             record.PlanID(),
		ProviderSubRef:     record.ProviderSubRef(),
		ProviderPriceRef:   record.ProviderPriceRef(),
		Status:             string(record.Status()),
		CurrentPeriodStart: record.CurrentPeriodStart(),
		CurrentPeriodEnd:   record.CurrentPeriodEnd(),
		CancelAt:           record.CancelAt(),
		CanceledAt:         record.CanceledAt(),
		Version:            record.Version(),
		CreatedAt:          record.CreatedAt(),
		UpdatedAt:          record.UpdatedAt(),
	}
}

func (r *SubscriptionRecordRepositoryImpl) toEntity(model *models.SubscriptionRecordModel) (*billing.SubscriptionRecord, error) {
	return billing.ReconstructSubscriptionRecord(
		model.ID,
		model.UserID,
		model.PlanID,
		model.ProviderSubRef,
		model.ProviderPriceRef,
		billing.SubscriptionStatus(model.Status),
		model.CurrentPeriodStart,
		model.CurrentPeriodEnd,
		model.CancelAt,
		model.CanceledAt,
		model.Version,
		model.CreatedAt,
		model.UpdatedAt,
	)
}
