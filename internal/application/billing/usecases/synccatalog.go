package usecases

import (
	"context"
	"fmt"

	"github.com/Drafter5000/Drafter5000-sub000/internal/application/billing/dto"
	"github.com/Drafter5000/Drafter5000-sub000/internal/application/billing/gateway"
	"github.com/Drafter5000/Drafter5000-sub000/internal/domain/billing"
	"github.com/Drafter5000/Drafter5000-sub000/internal/shared/logger"
)

// monthlyInterval is the only billing recurrence the catalog sells.
const monthlyInterval = "month"

// SyncCatalogUseCase pushes the local plan catalog to the payment provider:
// one product per paid plan, adopted by plan-ID metadata when it already
// exists, and one active price matching the local amount. Provider prices
// are immutable, so an amount change mints a new price and deactivates the
// old one. The run is idempotent; a clean catalog produces no writes.
type SyncCatalogUseCase struct {
	planRepo billing.PlanRepository
	gateway  gateway.ProviderGateway
	logger   logger.Interface
}

func NewSyncCatalogUseCase(
	planRepo billing.PlanRepository,
	gw gateway.ProviderGateway,
	logger logger.Interface,
) *SyncCatalogUseCase {
	return &SyncCatalogUseCase{
		planRepo: planRepo,
		gateway:  gw,
		logger:   logger,
	}
}

// Execute synchronizes every active plan. Failures are isolated per plan:
// one plan's provider error is recorded in the report and the run moves on.
func (uc *SyncCatalogUseCase) Execute(ctx context.Context) (*dto.SyncReport, error) {
	plans, err := uc.planRepo.GetAllActive(ctx)
	if err != nil {
		uc.logger.Errorw("failed to load plans for catalog sync", "error", err)
		return nil, fmt.Errorf("failed to load plans: %w", err)
	}

	report := &dto.SyncReport{}
	for _, plan := range plans {
		outcome, detail := uc.syncPlan(ctx, plan)
		report.Add(plan.PlanID(), outcome, detail)
	}

	uc.logger.Infow("catalog sync finished",
		"synced", report.Synced,
		"skipped", report.Skipped,
		"errors", report.Errors,
	)
	return report, nil
}

// ExecuteOne synchronizes a single plan by business key.
func (uc *SyncCatalogUseCase) ExecuteOne(ctx context.Context, planID string) (*dto.PlanSyncResult, error) {
	plan, err := uc.planRepo.GetByPlanID(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan %s: %w", planID, err)
	}
	outcome, detail := uc.syncPlan(ctx, plan)
	return &dto.PlanSyncResult{PlanID: planID, Outcome: outcome, Detail: detail}, nil
}

func (uc *SyncCatalogUseCase) syncPlan(ctx context.Context, plan *billing.Plan) (dto.PlanSyncOutcome, string) {
	if plan.IsFree() {
		return dto.SyncOutcomeSkipped, "free plan has no provider representation"
	}
	if !plan.IsActive() {
		return dto.SyncOutcomeSkipped, "plan is inactive"
	}

	changed, err := uc.ensureProduct(ctx, plan)
	if err != nil {
		uc.logger.Errorw("product sync failed", "error", err, "plan_id", plan.PlanID())
		return dto.SyncOutcomeError, err.Error()
	}

	priceChanged, err := uc.ensurePrice(ctx, plan)
	if err != nil {
		// The product reference may have been adopted above; persist it so
		// the next run resumes from the price step.
		if changed {
			if saveErr := uc.planRepo.Update(ctx, plan); saveErr != nil {
				uc.logger.Errorw("failed to persist product reference after price failure",
					"error", saveErr, "plan_id", plan.PlanID())
			}
		}
		uc.logger.Errorw("price sync failed", "error", err, "plan_id", plan.PlanID())
		return dto.SyncOutcomeError, err.Error()
	}

	if !changed && !priceChanged {
		return dto.SyncOutcomeSkipped, "already in sync"
	}

	if err := uc.planRepo.Update(ctx, plan); err != nil {
		uc.logger.Errorw("failed to persist synced plan", "error", err, "plan_id", plan.PlanID())
		return dto.SyncOutcomeError, fmt.Sprintf("failed to persist plan: %v", err)
	}

	uc.logger.Infow("plan synced to provider",
		"plan_id", plan.PlanID(),
		"product_ref", plan.ProviderProductRef(),
		"price_ref", plan.ProviderPriceRef(),
	)
	return dto.SyncOutcomeSynced, ""
}

// ensureProduct guarantees the plan references a provider product. An
// existing product tagged with the plan ID is adopted rather than
// duplicated.
func (uc *SyncCatalogUseCase) ensureProduct(ctx context.Context, plan *billing.Plan) (bool, error) {
	if plan.ProviderProductRef() != "" {
		return false, nil
	}

	existing, err := uc.gateway.FindProductByPlanID(ctx, plan.PlanID())
	if err != nil {
		return false, fmt.Errorf("failed to search provider products: %w", err)
	}
	if existing != nil {
		uc.logger.Infow("adopting existing provider product",
			"plan_id", plan.PlanID(), "product_ref", existing.Ref)
		return true, plan.AdoptProviderProduct(existing.Ref)
	}

	product, err := uc.gateway.CreateProduct(ctx, gateway.CreateProductParams{
		Name:        plan.Name(),
		Description: plan.Description(),
		PlanID:      plan.PlanID(),
		Quota:       plan.IncludedQuota(),
	})
	if err != nil {
		return false, fmt.Errorf("failed to create provider product: %w", err)
	}
	return true, plan.AdoptProviderProduct(product.Ref)
}

// ensurePrice guarantees exactly one active provider price matching the
// plan's amount, currency, and monthly recurrence. A matching active price
// is adopted; otherwise a new price is created and stale active prices are
// deactivated.
func (uc *SyncCatalogUseCase) ensurePrice(ctx context.Context, plan *billing.Plan) (bool, error) {
	prices, err := uc.gateway.ListActivePrices(ctx, plan.ProviderProductRef())
	if err != nil {
		return false, fmt.Errorf("failed to list provider prices: %w", err)
	}

	var match *gateway.Price
	var stale []gateway.Price
	for i := range prices {
		p := prices[i]
		// One-time and non-monthly prices never serve checkout, whatever
		// their amount.
		if p.UnitAmountMinor == plan.PriceMinorUnits() &&
			p.Currency == plan.Currency() &&
			p.Interval == monthlyInterval {
			if match == nil {
				match = &prices[i]
				continue
			}
		}
		stale = append(stale, p)
	}

	changed := false
	if match == nil {
		created, err := uc.gateway.CreatePrice(ctx, gateway.CreatePriceParams{
			ProductRef:      plan.ProviderProductRef(),
			UnitAmountMinor: plan.PriceMinorUnits(),
			Currency:        plan.Currency(),
			PlanID:          plan.PlanID(),
		})
		if err != nil {
			return false, fmt.Errorf("failed to create provider price: %w", err)
		}
		match = created
	}

	if plan.ProviderPriceRef() != match.Ref {
		if err := plan.AdoptProviderPrice(match.Ref); err != nil {
			return false, err
		}
		changed = true
	}

	for _, p := range stale {
		if err := uc.gateway.DeactivatePrice(ctx, p.Ref); err != nil {
			// Stale active prices are cosmetic clutter at the provider; the
			// plan only ever sells through its adopted reference.
			uc.logger.Warnw("failed to deactivate stale provider price",
				"error", err, "plan_id", plan.PlanID(), "price_ref", p.Ref)
		}
	}

	return changed, nil
}
