package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Drafter5000/Drafter5000-sub000/internal/application/billing/dto"
	"github.com/Drafter5000/Drafter5000-sub000/internal/domain/billing"
	"github.com/Drafter5000/Drafter5000-sub000/internal/shared/biztime"
	"github.com/Drafter5000/Drafter5000-sub000/internal/shared/logger"
)

type CheckUsageCommand struct {
	UserID uint
}

// CheckUsageUseCase decides whether a user may perform one more metered
// article generation in the current calendar month. The gate is a hard
// block and fails closed: any doubt about billing state or the usage count
// denies the action.
//
// The check and the eventual usage write are not atomic; two simultaneous
// requests at the quota boundary can both pass. One article of overshoot
// is accepted rather than serializing every generation.
type CheckUsageUseCase struct {
	profileRepo  billing.BillingProfileRepository
	usageRepo    billing.ArticleUsageRepository
	planResolver *PlanResolver
	logger       logger.Interface
}

func NewCheckUsageUseCase(
	profileRepo billing.BillingProfileRepository,
	usageRepo billing.ArticleUsageRepository,
	planResolver *PlanResolver,
	logger logger.Interface,
) *CheckUsageUseCase {
	return &CheckUsageUseCase{
		profileRepo:  profileRepo,
		usageRepo:    usageRepo,
		planResolver: planResolver,
		logger:       logger,
	}
}

// Execute reports the user's quota position for the current period. A user
// without a profile is treated as being on the default plan.
func (uc *CheckUsageUseCase) Execute(ctx context.Context, cmd CheckUsageCommand) (*dto.UsageDTO, error) {
	if cmd.UserID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}

	planID := ""
	status := billing.StatusActive
	profile, err := uc.profileRepo.GetByUserID(ctx, cmd.UserID)
	if err != nil {
		if !errors.Is(err, billing.ErrProfileNotFound) {
			return nil, fmt.Errorf("failed to load billing profile: %w", err)
		}
	} else {
		planID = profile.PlanID()
		status = profile.Status()
	}

	plan, err := uc.planResolver.ResolveOrDefault(ctx, planID)
	if err != nil {
		return nil, err
	}

	periodStart, periodEnd := biztime.UsagePeriod(time.Now())
	used, err := uc.usageRepo.CountByUserInPeriod(ctx, cmd.UserID, periodStart, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to count usage: %w", err)
	}

	usage := &dto.UsageDTO{
		PlanID:        plan.PlanID(),
		Status:        string(status),
		IncludedQuota: plan.IncludedQuota(),
		Used:          used,
		Remaining:     max64(int64(plan.IncludedQuota())-used, 0),
		PeriodStart:   periodStart,
		PeriodEnd:     periodEnd,
	}
	if quota := plan.IncludedQuota(); quota > 0 {
		usage.PercentageUsed = float64(used) / float64(quota) * 100
	}

	switch {
	case status.Blocks():
		// Hard block: quota math does not apply while billing is unresolved.
		usage.Reason = fmt.Sprintf("subscription is %s", status)
		usage.IncludedQuota = 0
		usage.Remaining = 0
		usage.PercentageUsed = 0
	case plan.IncludedQuota() == 0:
		usage.Reason = "plan includes no article generations"
	case used >= int64(plan.IncludedQuota()):
		usage.Reason = fmt.Sprintf("monthly limit of %d articles reached", plan.IncludedQuota())
	default:
		usage.Allowed = true
	}

	if !usage.Allowed {
		uc.logger.Infow("article generation blocked",
			"user_id", cmd.UserID, "plan_id", plan.PlanID(),
			"status", string(status), "used", used, "quota", plan.IncludedQuota())
	}
	return usage, nil
}

// Allow is the gate form of Execute: nil means the action may proceed.
func (uc *CheckUsageUseCase) Allow(ctx context.Context, userID uint) error {
	usage, err := uc.Execute(ctx, CheckUsageCommand{UserID: userID})
	if err != nil {
		// Fail closed: an undecidable check denies the action.
		return fmt.Errorf("usage check failed: %w", err)
	}
	if !usage.Allowed {
		return fmt.Errorf("%w: %s", billing.ErrUsageLimitExceeded, usage.Reason)
	}
	return nil
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
