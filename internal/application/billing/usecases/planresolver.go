package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/Drafter5000/Drafter5000-sub000/internal/domain/billing"
	"github.com/Drafter5000/Drafter5000-sub000/internal/shared/logger"
)

// PlanResolver looks up plans by business key with a configured-default
// fallback. Every lookup that feeds entitlement goes through here so a
// missing or renamed plan degrades to the default plan instead of failing,
// and so every fallback is logged in one place.
type PlanResolver struct {
	planRepo      billing.PlanRepository
	defaultPlanID string
	logger        logger.Interface
}

func NewPlanResolver(planRepo billing.PlanRepository, defaultPlanID string, logger logger.Interface) *PlanResolver {
	return &PlanResolver{
		planRepo:      planRepo,
		defaultPlanID: defaultPlanID,
		logger:        logger,
	}
}

// ResolveOrDefault returns the plan for planID, falling back to the default
// plan when planID is empty or unknown. A repository failure is surfaced;
// only a clean miss falls back.
func (r *PlanResolver) ResolveOrDefault(ctx context.Context, planID string) (*billing.Plan, error) {
	if planID != "" {
		plan, err := r.planRepo.GetByPlanID(ctx, planID)
		if err == nil {
			return plan, nil
		}
		if !errors.Is(err, billing.ErrPlanNotFound) {
			return nil, fmt.Errorf("failed to look up plan %s: %w", planID, err)
		}
		r.logger.Warnw("plan not found, falling back to default plan",
			"plan_id", planID,
			"default_plan_id", r.defaultPlanID,
		)
	} else {
		r.logger.Warnw("empty plan ID, falling back to default plan",
			"default_plan_id", r.defaultPlanID,
		)
	}

	plan, err := r.planRepo.GetByPlanID(ctx, r.defaultPlanID)
	if err != nil {
		return nil, fmt.Errorf("failed to load default plan %s: %w", r.defaultPlanID, err)
	}
	return plan, nil
}

// ResolveByPriceRef derives the plan from a provider price reference by
// exact match on the adopted provider price, the authoritative signal a
// subscription carries. When no plan holds that price the lookup degrades
// to the plan-ID hint and then to the default plan; a drifted catalog is
// logged here so the fallback is never silent.
func (r *PlanResolver) ResolveByPriceRef(ctx context.Context, priceRef, planIDHint string) (*billing.Plan, error) {
	if priceRef != "" {
		plan, err := r.planRepo.GetByProviderPriceRef(ctx, priceRef)
		if err == nil {
			return plan, nil
		}
		if !errors.Is(err, billing.ErrPlanNotFound) {
			return nil, fmt.Errorf("failed to look up plan by price %s: %w", priceRef, err)
		}
		r.logger.Warnw("no plan matches provider price, catalog drift suspected",
			"price_ref", priceRef,
			"plan_id_hint", planIDHint,
		)
	}
	return r.ResolveOrDefault(ctx, planIDHint)
}

// DefaultPlanID returns the configured fallback plan key.
func (r *PlanResolver) DefaultPlanID() string {
	return r.defaultPlanID
}
