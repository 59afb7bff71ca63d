package usecases

import (
	"context"
	"fmt"

	"github.com/Drafter5000/Drafter5000-sub000/internal/application/billing/gateway"
	"github.com/Drafter5000/Drafter5000-sub000/internal/domain/billing"
	"github.com/Drafter5000/Drafter5000-sub000/internal/shared/logger"
)

type DeactivatePlanCommand struct {
	PlanID string
}

// DeactivatePlanUseCase soft-deletes a plan. The row survives so existing
// subscriptions keep resolving; the plan just stops being sellable and
// visible. The provider product is archived best effort.
type DeactivatePlanUseCase struct {
	planRepo      billing.PlanRepository
	gateway       gateway.ProviderGateway
	defaultPlanID string
	logger        logger.Interface
}

func NewDeactivatePlanUseCase(planRepo billing.PlanRepository, gw gateway.ProviderGateway, defaultPlanID string, logger logger.Interface) *DeactivatePlanUseCase {
	return &DeactivatePlanUseCase{
		planRepo:      planRepo,
		gateway:       gw,
		defaultPlanID: defaultPlanID,
		logger:        logger,
	}
}

func (uc *DeactivatePlanUseCase) Execute(ctx context.Context, cmd DeactivatePlanCommand) error {
	if cmd.PlanID == uc.defaultPlanID {
		return fmt.Errorf("the default plan %s cannot be deactivated", uc.defaultPlanID)
	}

	plan, err := uc.planRepo.GetByPlanID(ctx, cmd.PlanID)
	if err != nil {
		return fmt.Errorf("failed to load plan %s: %w", cmd.PlanID, err)
	}

	plan.Deactivate()
	if err := uc.planRepo.Update(ctx, plan); err != nil {
		uc.logger.Errorw("failed to persist plan deactivation", "error", err, "plan_id", cmd.PlanID)
		return fmt.Errorf("failed to persist plan: %w", err)
	}

	if ref := plan.ProviderProductRef(); ref != "" {
		// Local deactivation is the source of truth; a provider failure
		// here is surfaced in logs and corrected by a later sync.
		if err := uc.gateway.DeactivateProduct(ctx, ref); err != nil {
			uc.logger.Warnw("failed to deactivate provider product",
				"plan_id", cmd.PlanID, "product_ref", ref, "error", err)
		}
	}

	uc.logger.Infow("plan deactivated", "plan_id", cmd.PlanID)
	return nil
}
