package usecases

import (
	"context"
	"fmt"

	"github.com/Drafter5000/Drafter5000-sub000/internal/application/billing/dto"
	"github.com/Drafter5000/Drafter5000-sub000/internal/domain/billing"
	"github.com/Drafter5000/Drafter5000-sub000/internal/shared/logger"
)

type CreatePlanCommand struct {
	PlanID          string
	Name            string
	Description     string
	PriceMinorUnits int64
	Currency        string
	IncludedQuota   int
	IsVisible       bool
	IsHighlighted   bool
	SortOrder       int
	CTAText         string
	CTABehavior     string
	Features        []dto.FeatureInput
}

type CreatePlanUseCase struct {
	planRepo billing.PlanRepository
	logger   logger.Interface
}

func NewCreatePlanUseCase(planRepo billing.PlanRepository, logger logger.Interface) *CreatePlanUseCase {
	return &CreatePlanUseCase{planRepo: planRepo, logger: logger}
}

func (uc *CreatePlanUseCase) Execute(ctx context.Context, cmd CreatePlanCommand) (*dto.PlanDTO, error) {
	exists, err := uc.planRepo.ExistsByPlanID(ctx, cmd.PlanID)
	if err != nil {
		uc.logger.Errorw("failed to check plan ID existence", "error", err, "plan_id", cmd.PlanID)
		return nil, fmt.Errorf("failed to check plan ID existence: %w", err)
	}
	if exists {
		return nil, billing.ErrPlanIDExists
	}

	plan, err := billing.NewPlan(cmd.PlanID, cmd.Name, cmd.Description, cmd.PriceMinorUnits, cmd.Currency, cmd.IncludedQuota)
	if err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}

	plan.UpdateDisplay(cmd.IsVisible, cmd.IsHighlighted, cmd.SortOrder)
	if cmd.CTAText != "" || cmd.CTABehavior != "" {
		if err := plan.UpdateCTA(cmd.CTAText, billing.CTABehavior(cmd.CTABehavior)); err != nil {
			return nil, fmt.Errorf("invalid CTA: %w", err)
		}
	}

	features, err := buildFeatures(cmd.Features)
	if err != nil {
		return nil, err
	}
	if len(features) > 0 {
		plan.ReplaceFeatures(features)
	}

	if err := uc.planRepo.Create(ctx, plan); err != nil {
		uc.logger.Errorw("failed to persist plan", "error", err, "plan_id", cmd.PlanID)
		return nil, fmt.Errorf("failed to persist plan: %w", err)
	}

	uc.logger.Infow("plan created", "plan_id", plan.PlanID(), "price_minor_units", plan.PriceMinorUnits())
	return dto.PlanToDTO(plan), nil
}

func buildFeatures(inputs []dto.FeatureInput) ([]billing.PlanFeature, error) {
	features := make([]billing.PlanFeature, 0, len(inputs))
	for i, in := range inputs {
		f, err := billing.NewPlanFeature(in.Text, in.Included, in.SortOrder)
		if err != nil {
			return nil, fmt.Errorf("invalid feature at index %d: %w", i, err)
		}
		features = append(features, *f)
	}
	return features, nil
}
