package usecases

import (
	"context"
	"fmt"

	"github.com/Drafter5000/Drafter5000-sub000/internal/application/billing/dto"
	"github.com/Drafter5000/Drafter5000-sub000/internal/domain/billing"
)

type GetPlanUseCase struct {
	planRepo billing.PlanRepository
}

func NewGetPlanUseCase(planRepo billing.PlanRepository) *GetPlanUseCase {
	return &GetPlanUseCase{planRepo: planRepo}
}

func (uc *GetPlanUseCase) Execute(ctx context.Context, planID string) (*dto.PlanDTO, error) {
	plan, err := uc.planRepo.GetByPlanID(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan %s: %w", planID, err)
	}
	return dto.PlanToDTO(plan), nil
}
