package usecases

import (
	"context"
	"fmt"

	"github.com/Drafter5000/Drafter5000-sub000/internal/application/billing/dto"
	"github.com/Drafter5000/Drafter5000-sub000/internal/domain/billing"
	"github.com/Drafter5000/Drafter5000-sub000/internal/shared/constants"
)

type ListPlansCommand struct {
	IsActive  *bool
	IsVisible *bool
	Page      int
	PageSize  int
	SortBy    string
	SortDesc  bool
}

type ListPlansResult struct {
	Plans []*dto.PlanDTO `json:"plans"`
	Total int64          `json:"total"`
}

type ListPlansUseCase struct {
	planRepo billing.PlanRepository
}

func NewListPlansUseCase(planRepo billing.PlanRepository) *ListPlansUseCase {
	return &ListPlansUseCase{planRepo: planRepo}
}

func (uc *ListPlansUseCase) Execute(ctx context.Context, cmd ListPlansCommand) (*ListPlansResult, error) {
	if cmd.Page < 1 {
		cmd.Page = constants.DefaultPage
	}
	if cmd.PageSize < 1 {
		cmd.PageSize = constants.DefaultPageSize
	}
	if cmd.PageSize > constants.MaxPageSize {
		cmd.PageSize = constants.MaxPageSize
	}

	plans, total, err := uc.planRepo.List(ctx, billing.PlanFilter{
		IsActive:  cmd.IsActive,
		IsVisible: cmd.IsVisible,
		Page:      cmd.Page,
		PageSize:  cmd.PageSize,
		SortBy:    cmd.SortBy,
		SortDesc:  cmd.SortDesc,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	out := make([]*dto.PlanDTO, 0, len(plans))
	for _, p := range plans {
		out = append(out, dto.PlanToDTO(p))
	}
	return &ListPlansResult{Plans: out, Total: total}, nil
}
