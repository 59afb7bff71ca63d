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

type CreateCheckoutCommand struct {
	UserID uint
	PlanID string
}

// CreateCheckoutUseCase issues a provider-hosted checkout session for one
// paid plan. The session carries the local user ID and plan ID as metadata;
// the webhook processor uses them later to correlate the resulting
// subscription back to the user.
type CreateCheckoutUseCase struct {
	planRepo        billing.PlanRepository
	profileRepo     billing.BillingProfileRepository
	gateway         gateway.ProviderGateway
	users           UserDirectory
	defaultPlanID   string
	trialPeriodDays int64
	successURL      string
	cancelURL       string
	logger          logger.Interface
}

func NewCreateCheckoutUseCase(
	planRepo billing.PlanRepository,
	profileRepo billing.BillingProfileRepository,
	gw gateway.ProviderGateway,
	users UserDirectory,
	defaultPlanID string,
	trialPeriodDays int64,
	successURL, cancelURL string,
	logger logger.Interface,
) *CreateCheckoutUseCase {
	return &CreateCheckoutUseCase{
		planRepo:        planRepo,
		profileRepo:     profileRepo,
		gateway:         gw,
		users:           users,
		defaultPlanID:   defaultPlanID,
		trialPeriodDays: trialPeriodDays,
		successURL:      successURL,
		cancelURL:       cancelURL,
		logger:          logger,
	}
}

func (uc *CreateCheckoutUseCase) Execute(ctx context.Context, cmd CreateCheckoutCommand) (*dto.SessionDTO, error) {
	if cmd.UserID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}

	plan, err := uc.planRepo.GetByPlanID(ctx, cmd.PlanID)
	if err != nil {
		if errors.Is(err, billing.ErrPlanNotFound) {
			return nil, apperrors.ErrPlanNotPurchasable
		}
		return nil, fmt.Errorf("failed to load plan %s: %w", cmd.PlanID, err)
	}
	if !plan.IsPurchasable() {
		return nil, apperrors.ErrPlanNotPurchasable
	}
	if plan.ProviderPriceRef() == "" {
		uc.logger.Errorw("purchasable plan has no provider price, catalog sync pending",
			"plan_id", plan.PlanID())
		return nil, apperrors.ErrPlanHasNoPrice
	}

	profile, err := uc.ensureProfileWithCustomer(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	session, err := uc.gateway.CreateCheckoutSession(ctx, gateway.CheckoutParams{
		CustomerRef:     profile.ProviderCustomerRef(),
		PriceRef:        plan.ProviderPriceRef(),
		PlanID:          plan.PlanID(),
		UserID:          cmd.UserID,
		TrialPeriodDays: uc.trialPeriodDays,
		SuccessURL:      uc.successURL,
		CancelURL:       uc.cancelURL,
	})
	if err != nil {
		uc.logger.Errorw("failed to create checkout session",
			"error", err, "user_id", cmd.UserID, "plan_id", plan.PlanID())
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	uc.logger.Infow("checkout session created",
		"user_id", cmd.UserID, "plan_id", plan.PlanID(), "session_id", session.Ref)
	return &dto.SessionDTO{SessionID: session.Ref, URL: session.URL}, nil
}

// ensureProfileWithCustomer loads or bootstraps the user's profile and
// guarantees it carries a provider customer reference.
func (uc *CreateCheckoutUseCase) ensureProfileWithCustomer(ctx context.Context, userID uint) (*billing.UserBillingProfile, error) {
	profile, err := uc.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, billing.ErrProfileNotFound) {
			return nil, fmt.Errorf("failed to load billing profile: %w", err)
		}
		profile, err = billing.NewUserBillingProfile(userID, uc.defaultPlanID)
		if err != nil {
			return nil, err
		}
		if err := uc.profileRepo.Create(ctx, profile); err != nil {
			return nil, fmt.Errorf("failed to create billing profile: %w", err)
		}
	}

	if profile.ProviderCustomerRef() != "" {
		return profile, nil
	}

	email, name, err := uc.users.GetUserEmail(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user %d: %w", userID, err)
	}
	customerRef, err := uc.gateway.CreateCustomer(ctx, gateway.CreateCustomerParams{
		Email:  email,
		Name:   name,
		UserID: userID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create provider customer: %w", err)
	}
	if err := profile.SetProviderCustomerRef(customerRef); err != nil {
		return nil, err
	}
	if err := uc.profileRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to persist billing profile: %w", err)
	}
	return profile, nil
}
