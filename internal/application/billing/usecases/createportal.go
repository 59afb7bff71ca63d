package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/Drafter5000/Drafter5000-sub000/internal/application/billing/dto"
	"github.com/Drafter5000/Drafter5000-sub000/internal/application/billing/gateway"
	"github.com/Drafter5000/Drafter5000-sub000/internal/domain/billing"
	apperrors "github.com/Drafter5000/Drafter5000-sub000/internal/shared/errors"
	"github.com/Drafter5000/Drafter5000-sub000/internal/shared/logger"
)

type CreatePortalCommand struct {
	UserID uint
}

// CreatePortalUseCase issues a provider-hosted billing portal session where
// the user manages payment methods and cancellation. Requires an existing
// provider customer; a user who never checked out has nothing to manage.
type CreatePortalUseCase struct {
	profileRepo billing.BillingProfileRepository
	gateway     gateway.ProviderGateway
	returnURL   string
	logger      logger.Interface
}

func NewCreatePortalUseCase(
	profileRepo billing.BillingProfileRepository,
	gw gateway.ProviderGateway,
	returnURL string,
	logger logger.Interface,
) *CreatePortalUseCase {
	return &CreatePortalUseCase{
		profileRepo: profileRepo,
		gateway:     gw,
		returnURL:   returnURL,
		logger:      logger,
	}
}

func (uc *CreatePortalUseCase) Execute(ctx context.Context, cmd CreatePortalCommand) (*dto.SessionDTO, error) {
	if cmd.UserID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}

	profile, err := uc.profileRepo.GetByUserID(ctx, cmd.UserID)
	if err != nil {
		if errors.Is(err, billing.ErrProfileNotFound) {
			return nil, apperrors.ErrNoProviderCustomer
		}
		return nil, fmt.Errorf("failed to load billing profile: %w", err)
	}
	if profile.ProviderCustomerRef() == "" {
		return nil, apperrors.ErrNoProviderCustomer
	}

	url, err := uc.gateway.CreatePortalSession(ctx, gateway.PortalParams{
		CustomerRef: profile.ProviderCustomerRef(),
		ReturnURL:   uc.returnURL,
	})
	if err != nil {
		uc.logger.Errorw("failed to create portal session",
			"error", err, "user_id", cmd.UserID)
		return nil, fmt.Errorf("failed to create portal session: %w", err)
	}

	return &dto.SessionDTO{URL: url}, nil
}
