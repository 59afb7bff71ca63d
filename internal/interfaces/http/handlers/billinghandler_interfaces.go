package handlers

import (
	"context"

	"github.com/Drafter5000/Drafter5000-sub000/internal/application/billing/dto"
	"github.com/Drafter5000/Drafter5000-sub000/internal/application/billing/usecases"
)

// Use case interfaces for BillingHandler

type processWebhookUseCase interface {
	Execute(ctx context.Context, cmd usecases.ProcessWebhookCommand) error
}

type createCheckoutUseCase interface {
	Execute(ctx context.Context, cmd usecases.CreateCheckoutCommand) (*dto.SessionDTO, error)
}

type createPortalUseCase interface {
	Execute(ctx context.Context, cmd usecases.CreatePortalCommand) (*dto.SessionDTO, error)
}

type checkUsageUseCase interface {
	Execute(ctx context.Context, cmd usecases.CheckUsageCommand) (*dto.UsageDTO, error)
}
