package usecases

import (
	"context"
	"fmt"

	"github.com/Drafter5000/Drafter5000-sub000/internal/application/billing/dto"
	"github.com/Drafter5000/Drafter5000-sub000/internal/domain/billing"
	"github.com/Drafter5000/Drafter5000-sub000/internal/shared/logger"
)

// UpdatePlanCommand carries partial updates; nil pointers leave the field
// unchanged.
type UpdatePlanCommand struct {
	PlanID          string
	Name            *string
	Description     *string
	PriceMinorUnits *int64
	IncludedQuota   *int
	IsVisible       *bool
	IsHighlighted   *bool
	SortOrder       *int
	CTAText         *string
	CTABehavior     *string
	Features        []dto.FeatureInput
}

type UpdatePlanUseCase struct {
	planRepo billing.PlanRepository
	logger   logger.Interface
}

func NewUpdatePlanUseCase(planRepo billing.PlanRepository, logger logger.Interface) *UpdatePlanUseCase {
	return &UpdatePlanUseCase{planRepo: planRepo, logger: logger}
}

func (uc *UpdatePlanUseCase) Execute(ctx context.Context, cmd UpdatePlanCommand) (*dto.PlanDTO, error) {
	plan, err := uc.planRepo.GetByPlanID(ctx, cmd.PlanID)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan %s: %w", cmd.PlanID, err)
	}

	if cmd.Name != nil {
		desc := plan.Description()
		if cmd.Description != nil {
			desc = *cmd.Description
		}
		if err := plan.UpdateDetails(*cmd.Name, desc); err != nil {
			return nil, err
		}
	} else if cmd.Description != nil {
		if err := plan.UpdateDetails(plan.Name(), *cmd.Description); err != nil {
			return nil, err
		}
	}

	priceChanged := false
	if cmd.PriceMinorUnits != nil && *cmd.PriceMinorUnits != plan.PriceMinorUnits() {
		if err := plan.ChangePrice(*cmd.PriceMinorUnits); err != nil {
			return nil, err
		}
		priceChanged = true
	}

	if cmd.IncludedQuota != nil {
		if err := plan.UpdateQuota(*cmd.IncludedQuota); err != nil {
			return nil, err
		}
	}

	if cmd.IsVisible != nil || cmd.IsHighlighted != nil || cmd.SortOrder != nil {
		visible := plan.IsVisible()
		highlighted := plan.IsHighlighted()
		sortOrder := plan.SortOrder()
		if cmd.IsVisible != nil {
			visible = *cmd.IsVisible
		}
		if cmd.IsHighlighted != nil {
			highlighted = *cmd.IsHighlighted
		}
		if cmd.SortOrder != nil {
			sortOrder = *cmd.SortOrder
		}
		plan.UpdateDisplay(visible, highlighted, sortOrder)
	}

	if cmd.CTAText != nil || cmd.CTABehavior != nil {
		text := plan.CTAText()
		behavior := plan.CTABehavior()
		if cmd.CTAText != nil {
			text = *cmd.CTAText
		}
		if cmd.CTABehavior != nil {
			behavior = billing.CTABehavior(*cmd.CTABehavior)
		}
		if err := plan.UpdateCTA(text, behavior); err != nil {
			return nil, fmt.Errorf("invalid CTA: %w", err)
		}
	}

	if cmd.Features != nil {
		features, err := buildFeatures(cmd.Features)
		if err != nil {
			return nil, err
		}
		plan.ReplaceFeatures(features)
	}

	if err := uc.planRepo.Update(ctx, plan); err != nil {
		uc.logger.Errorw("failed to persist plan update", "error", err, "plan_id", cmd.PlanID)
		return nil, fmt.Errorf("failed to persist plan: %w", err)
	}

	if priceChanged {
		uc.logger.Infow("plan price changed, provider price will be replaced on next sync",
			"plan_id", plan.PlanID(), "price_minor_units", plan.PriceMinorUnits())
	}
	return dto.PlanToDTO(plan), nil
}
