package usecases

import (
	"context"
	"fmt"
	"sort"

	"github.com/Drafter5000/Drafter5000-sub000/internal/application/billing/dto"
	"github.com/Drafter5000/Drafter5000-sub000/internal/domain/billing"
)

// GetPublicPlansUseCase serves the pricing surface: active, visible plans
// ordered by sort order, stripped of provider references.
type GetPublicPlansUseCase struct {
	planRepo billing.PlanRepository
}

func NewGetPublicPlansUseCase(planRepo billing.PlanRepository) *GetPublicPlansUseCase {
	return &GetPublicPlansUseCase{planRepo: planRepo}
}

func (uc *GetPublicPlansUseCase) Execute(ctx context.Context) ([]*dto.PublicPlanDTO, error) {
	plans, err := uc.planRepo.GetActiveVisiblePlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load public plans: %w", err)
	}

	sort.SliceStable(plans, func(i, j int) bool {
		return plans[i].SortOrder() < plans[j].SortOrder()
	})

	out := make([]*dto.PublicPlanDTO, 0, len(plans))
	for _, p := range plans {
		out = append(out, dto.PlanToPublicDTO(p))
	}
	return out, nil
}
