package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Drafter5000/Drafter5000-sub000/internal/domain/billing"
	"github.com/Drafter5000/Drafter5000-sub000/internal/infrastructure/persistence/models"
	"github.com/Drafter5000/Drafter5000-sub000/internal/shared/logger"
)

type PlanRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewPlanRepository(db *gorm.DB, logger logger.Interface) billing.PlanRepository {
	return &PlanRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *PlanRepositoryImpl) Create(ctx context.Context, plan *billing.Plan) error {
	model, err := r.toModel(plan)
	if err != nil {
		return fmt.Errorf("failed to convert plan to model: %w", err)
	}

	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create plan", "error", err, "plan_id", plan.PlanID())
		return fmt.Errorf("failed to create plan: %w", err)
	}

	if err := plan.SetID(model.ID); err != nil {
		return err
	}

	r.logger.Infow("plan created", "id", model.ID, "plan_id", plan.PlanID())
	return nil
}

func (r *PlanRepositoryImpl) GetByID(ctx context.Context, id uint) (*billing.Plan, error) {
	var model models.PlanModel
	if err := dbFrom(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrPlanNotFound
		}
		r.logger.Errorw("failed to get plan by ID", "error", err, "id", id)
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return r.toEntity(&model)
}

func (r *PlanRepositoryImpl) GetByPlanID(ctx context.Context, planID string) (*billing.Plan, error) {
	var model models.PlanModel
	if err := dbFrom(ctx, r.db).Where("plan_id = ?", planID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrPlanNotFound
		}
		r.logger.Errorw("failed to get plan by plan ID", "error", err, "plan_id", planID)
		return nil, fmt.Errorf("failed to get plan by plan ID: %w", err)
	}
	return r.toEntity(&model)
}

// GetByProviderPriceRef finds the plan whose adopted provider price matches
// exactly. The webhook processor uses this to derive the plan from a
// subscription's price reference.
func (r *PlanRepositoryImpl) GetByProviderPriceRef(ctx context.Context, priceRef string) (*billing.Plan, error) {
	var model models.PlanModel
	if err := dbFrom(ctx, r.db).Where("provider_price_ref = ?", priceRef).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrPlanNotFound
		}
		r.logger.Errorw("failed to get plan by provider price ref", "error", err, "price_ref", priceRef)
		return nil, fmt.Errorf("failed to get plan by provider price ref: %w", err)
	}
	return r.toEntity(&model)
}

func (r *PlanRepositoryImpl) Update(ctx context.Context, plan *billing.Plan) error {
	model, err := r.toModel(plan)
	if err != nil {
		return fmt.Errorf("failed to convert plan to model: %w", err)
	}

	result := dbFrom(ctx, r.db).Model(&models.PlanModel{}).
		Where("id = ?", plan.ID()).
		Updates(map[string]interface{}{
			"name":                 model.Name,
			"description":          model.Description,
			"price_minor_units":    model.PriceMinorUnits,
			"currency":             model.Currency,
			"included_quota":       model.IncludedQuota,
			"is_active":            model.IsActive,
			"is_visible":           model.IsVisible,
			"is_highlighted":       model.IsHighlighted,
			"sort_order":           model.SortOrder,
			"cta_text":             model.CTAText,
			"cta_behavior":         model.CTABehavior,
			"provider_product_ref": model.ProviderProductRef,
			"provider_price_ref":   model.ProviderPriceRef,
			"features":             model.Features,
			"version":              model.Version,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update plan", "error", result.Error, "plan_id", plan.PlanID())
		return fmt.Errorf("failed to update plan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return billing.ErrPlanNotFound
	}
	return nil
}

func (r *PlanRepositoryImpl) Delete(ctx context.Context, id uint) error {
	result := dbFrom(ctx, r.db).Delete(&models.PlanModel{}, id)
	if result.Error != nil {
		r.logger.Errorw("failed to delete plan", "error", result.Error, "id", id)
		return fmt.Errorf("failed to delete plan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return billing.ErrPlanNotFound
	}
	return nil
}

func (r *PlanRepositoryImpl) GetActiveVisiblePlans(ctx context.Context) ([]*billing.Plan, error) {
	var modelList []models.PlanModel
	err := dbFrom(ctx, r.db).
		Where("is_active = ? AND is_visible = ?", true, true).
		Order("sort_order ASC").
		Find(&modelList).Error
	if err != nil {
		r.logger.Errorw("failed to get visible plans", "error", err)
		return nil, fmt.Errorf("failed to get visible plans: %w", err)
	}
	return r.toEntities(modelList)
}

func (r *PlanRepositoryImpl) GetAllActive(ctx context.Context) ([]*billing.Plan, error) {
	var modelList []models.PlanModel
	err := dbFrom(ctx, r.db).
		Where("is_active = ?", true).
		Order("sort_order ASC").
		Find(&modelList).Error
	if err != nil {
		r.logger.Errorw("failed to get active plans", "error", err)
		return nil, fmt.Errorf("failed to get active plans: %w", err)
	}
	return r.toEntities(modelList)
}

func (r *PlanRepositoryImpl) List(ctx context.Context, filter billing.PlanFilter) ([]*billing.Plan, int64, error) {
	query := dbFrom(ctx, r.db).Model(&models.PlanModel{})
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.IsVisible != nil {
		query = query.Where("is_visible = ?", *filter.IsVisible)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count plans: %w", err)
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "sort_order"
	}
	order := sortBy + " ASC"
	if filter.SortDesc {
		order = sortBy + " DESC"
	}
	query = query.Order(order)

	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var modelList []models.PlanModel
	if err := query.Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to list plans", "error", err)
		return nil, 0, fmt.Errorf("failed to list plans: %w", err)
	}

	plans, err := r.toEntities(modelList)
	if err != nil {
		return nil, 0, err
	}
	return plans, total, nil
}

func (r *PlanRepositoryImpl) ExistsByPlanID(ctx context.Context, planID string) (bool, error) {
	var count int64
	err := dbFrom(ctx, r.db).Model(&models.PlanModel{}).
		Where("plan_id = ?", planID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check plan existence: %w", err)
	}
	return count > 0, nil
}

func (r *PlanRepositoryImpl) toModel(plan *billing.Plan) (*models.PlanModel, error) {
	featureJSON := make([]models.FeatureJSON, 0, len(plan.Features()))
	for _, f := range plan.Features() {
		featureJSON = append(featureJSON, models.FeatureJSON{
			Text:      f.Text(),
			Included:  f.Included(),
			SortOrder: f.SortOrder(),
		})
	}
	featureBytes, err := json.Marshal(featureJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal features: %w", err)
	}

	isActive := plan.IsActive()
	isVisible := plan.IsVisible()

	return &models.PlanModel{
		ID:                 plan.ID(),
		PlanID:             plan.PlanID(),
		Name:               plan.Name(),
		Description:        plan.Description(),
		PriceMinorUnits:    plan.PriceMinorUnits(),
		Currency:           plan.Currency(),
		IncludedQuota:      plan.IncludedQuota(),
		IsActive:           &isActive,
		IsVisible:          &isVisible,
		IsHighlighted:      plan.IsHighlighted(),
		SortOrder:          plan.SortOrder(),
		CTAText:            plan.CTAText(),
		CTABehavior:        string(plan.CTABehavior()),
		ProviderProductRef: plan.ProviderProductRef(),
		ProviderPriceRef:   plan.ProviderPriceRef(),
		Features:           featureBytes,
		Version:            plan.Version(),
		CreatedAt:          plan.CreatedAt(),
		UpdatedAt:          plan.UpdatedAt(),
	}, nil
}

func (r *PlanRepositoryImpl) toEntity(model *models.PlanModel) (*billing.Plan, error) {
	var features []billing.PlanFeature
	if len(model.Features) > 0 {
		var featureJSON []models.FeatureJSON
		if err := json.Unmarshal(model.Features, &featureJSON); err != nil {
			return nil, fmt.Errorf("failed to unmarshal features for plan %s: %w", model.PlanID, err)
		}
		for i, fj := range featureJSON {
			f, err := billing.ReconstructPlanFeature(uint(i+1), model.ID, fj.Text, fj.Included, fj.SortOrder, model.CreatedAt)
			if err != nil {
				return nil, fmt.Errorf("invalid feature for plan %s: %w", model.PlanID, err)
			}
			features = append(features, *f)
		}
	}

	isActive := model.IsActive == nil || *model.IsActive
	isVisible := model.IsVisible == nil || *model.IsVisible

	return billing.ReconstructPlan(
		model.ID,
		model.PlanID,
		model.Name,
		model.Description,
		model.PriceMinorUnits,
		model.Currency,
		model.IncludedQuota,
		isActive,
		isVisible,
		model.IsHighlighted,
		model.SortOrder,
		model.CTAText,
		billing.CTABehavior(model.CTABehavior),
		model.ProviderProductRef,
		model.ProviderPriceRef,
		features,
		model.Version,
		model.CreatedAt,
		model.UpdatedAt,
	)
}

func (r *PlanRepositoryImpl) toEntities(modelList []models.PlanModel) ([]*billing.Plan, error) {
	plans := make([]*billing.Plan, 0, len(modelList))
	for i := range modelList {
		plan, err := r.toEntity(&modelList[i])
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}
