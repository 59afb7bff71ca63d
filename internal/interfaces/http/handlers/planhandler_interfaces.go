package handlers

import (
	"context"

	"github.com/Drafter5000/Drafter5000-sub000/internal/application/billing/dto"
	"github.com/Drafter5000/Drafter5000-sub000/internal/application/billing/usecases"
)

// Use case interfaces for PlanHandler

type createPlanUseCase interface {
	Execute(ctx context.Context, cmd usecases.CreatePlanCommand) (*dto.PlanDTO, error)
}

type updatePlanUseCase interface {
	Execute(ctx context.Context, cmd usecases.UpdatePlanCommand) (*dto.PlanDTO, error)
}

type deactivatePlanUseCase interface {
	Execute(ctx context.Context, cmd usecases.DeactivatePlanCommand) error
}

type getPlanUseCase interface {
	Execute(ctx context.Context, planID string) (*dto.PlanDTO, error)
}

type listPlansUseCase interface {
	Execute(ctx context.Context, cmd usecases.ListPlansCommand) (*usecases.ListPlansResult, error)
}

type getPublicPlansUseCase interface {
	Execute(ctx context.Context) ([]*dto.PublicPlanDTO, error)
}

type syncCatalogUseCase interface {
	Execute(ctx context.Context) (*dto.SyncReport, error)
	ExecuteOne(ctx context.Context, planID string) (*dto.PlanSyncResult, error)
}
