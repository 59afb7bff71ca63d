package usecases

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Drafter5000/Drafter5000-sub000/internal/application/billing/gateway"
	"github.com/Drafter5000/Drafter5000-sub000/internal/domain/billing"
	apperrors "github.com/Drafter5000/Drafter5000-sub000/internal/shared/errors"
	"github.com/Drafter5000/Drafter5000-sub000/internal/shared/logger"
)

// processedEventTTL is how long a handled provider event ID is remembered.
// Providers stop retrying well inside this window; after expiry the
// idempotent handlers absorb any straggler.
const processedEventTTL = 72 * time.Hour

type ProcessWebhookCommand struct {
	Payload   []byte
	Signature string
}

// ProcessWebhookUseCase turns verified provider events into local billing
// state. Handlers are idempotent and tolerate out-of-order delivery, so the
// provider can redeliver freely. Events that cannot be correlated to a
// local user are logged and acknowledged; returning an error would only
// make the provider retry a payload that can never succeed.
type ProcessWebhookUseCase struct {
	gateway      gateway.ProviderGateway
	profileRepo  billing.BillingProfileRepository
	recordRepo   billing.SubscriptionRecordRepository
	planResolver *PlanResolver
	eventStore   ProcessedEventStore
	notifier     TrialEndingNotifier
	tx           billing.TxManager
	logger       logger.Interface
}

func NewProcessWebhookUseCase(
	gw gateway.ProviderGateway,
	profileRepo billing.BillingProfileRepository,
	recordRepo billing.SubscriptionRecordRepository,
	planResolver *PlanResolver,
	eventStore ProcessedEventStore,
	notifier TrialEndingNotifier,
	tx billing.TxManager,
	logger logger.Interface,
) *ProcessWebhookUseCase {
	return &ProcessWebhookUseCase{
		gateway:      gw,
		profileRepo:  profileRepo,
		recordRepo:   recordRepo,
		planResolver: planResolver,
		eventStore:   eventStore,
		notifier:     notifier,
		tx:           tx,
		logger:       logger,
	}
}

// Execute verifies, deduplicates, and dispatches one webhook delivery. The
// signature is checked before the payload is parsed or inspected in any
// other way.
func (uc *ProcessWebhookUseCase) Execute(ctx context.Context, cmd ProcessWebhookCommand) error {
	event, err := uc.gateway.VerifyEvent(cmd.Payload, cmd.Signature)
	if err != nil {
		uc.logger.Warnw("webhook signature verification failed", "error", err)
		return apperrors.NewSignatureError(err.Error())
	}

	if uc.eventStore != nil {
		seen, err := uc.eventStore.IsProcessed(ctx, event.ID)
		if err != nil {
			// The dedup store is an optimization; the handlers below are
			// idempotent, so a store outage only costs duplicate work.
			uc.logger.Warnw("processed-event store unavailable, continuing",
				"error", err, "event_id", event.ID)
		} else if seen {
			uc.logger.Infow("duplicate webhook delivery ignored",
				"event_id", event.ID, "event_type", event.RawType)
			return nil
		}
	}

	uc.logger.Infow("processing webhook event",
		"event_id", event.ID, "event_type", event.RawType, "kind", string(event.Kind))

	if err := uc.dispatch(ctx, event); err != nil {
		return err
	}

	// Recorded only after the handler succeeds. A failed delivery leaves no
	// dedup entry, so the provider's redelivery is processed, not absorbed.
	if uc.eventStore != nil {
		if _, err := uc.eventStore.MarkProcessed(ctx, event.ID, processedEventTTL); err != nil {
			uc.logger.Warnw("failed to record processed event",
				"error", err, "event_id", event.ID)
		}
	}
	return nil
}

func (uc *ProcessWebhookUseCase) dispatch(ctx context.Context, event *gateway.Event) error {
	switch event.Kind {
	case gateway.EventCheckoutCompleted:
		return uc.handleCheckoutCompleted(ctx, event)
	case gateway.EventSubscriptionCreated, gateway.EventSubscriptionUpdated:
		return uc.handleSubscriptionSnapshot(ctx, event)
	case gateway.EventSubscriptionDeleted:
		return uc.handleSubscriptionDeleted(ctx, event)
	case gateway.EventInvoicePaid:
		return uc.handleInvoicePaid(ctx, event)
	case gateway.EventInvoiceFailed:
		return uc.handleInvoiceFailed(ctx, event)
	case gateway.EventTrialWillEnd:
		return uc.handleTrialWillEnd(ctx, event)
	default:
		uc.logger.Debugw("unhandled webhook event acknowledged",
			"event_id", event.ID, "event_type", event.RawType)
		return nil
	}
}

// handleCheckoutCompleted binds the provider customer to the local user and
// folds in the created subscription. Correlation comes from the user-ID
// metadata the checkout session was created with.
func (uc *ProcessWebhookUseCase) handleCheckoutCompleted(ctx context.Context, event *gateway.Event) error {
	userID, err := strconv.ParseUint(event.UserIDMetadata, 10, 32)
	if err != nil || userID == 0 {
		uc.logger.Warnw("checkout event without usable user correlation, dropping",
			"event_id", event.ID, "user_metadata", event.UserIDMetadata)
		return nil
	}

	var sub *gateway.Subscription
	if event.SubRef != "" {
		sub, err = uc.gateway.GetSubscription(ctx, event.SubRef)
		if err != nil {
			return fmt.Errorf("failed to fetch subscription %s: %w", event.SubRef, err)
		}
	}

	plan, err := uc.resolveEventPlan(ctx, event, sub)
	if err != nil {
		return err
	}

	return uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		profile, err := uc.loadOrCreateProfile(ctx, uint(userID))
		if err != nil {
			return err
		}

		if event.CustomerRef != "" {
			if err := profile.SetProviderCustomerRef(event.CustomerRef); err != nil {
				return fmt.Errorf("failed to bind provider customer: %w", err)
			}
		}

		if sub != nil {
			status := mapProviderStatus(sub.Status)
			periodEnd := sub.CurrentPeriodEnd
			if err := profile.ApplySubscription(plan.PlanID(), status, &periodEnd); err != nil {
				return err
			}
			if _, err := uc.upsertRecord(ctx, uint(userID), plan.PlanID(), sub); err != nil {
				return err
			}
		}

		if err := uc.profileRepo.Update(ctx, profile); err != nil {
			return fmt.Errorf("failed to persist billing profile: %w", err)
		}

		uc.logger.Infow("checkout completed applied",
			"user_id", userID, "plan_id", plan.PlanID(), "sub_ref", event.SubRef)
		return nil
	})
}

// handleSubscriptionSnapshot applies created/updated subscription events.
// The two kinds share one handler on purpose: either may arrive first.
func (uc *ProcessWebhookUseCase) handleSubscriptionSnapshot(ctx context.Context, event *gateway.Event) error {
	sub := event.Subscription
	if sub == nil {
		uc.logger.Warnw("subscription event without snapshot, dropping", "event_id", event.ID)
		return nil
	}

	profile, ok, err := uc.profileByCustomer(ctx, sub.CustomerRef, event.ID)
	if err != nil || !ok {
		return err
	}

	plan, err := uc.resolveEventPlan(ctx, event, sub)
	if err != nil {
		return err
	}
	status := mapProviderStatus(sub.Status)

	return uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		applied, err := uc.upsertRecord(ctx, profile.UserID(), plan.PlanID(), sub)
		if err != nil {
			return err
		}
		if !applied {
			uc.logger.Infow("stale subscription snapshot ignored",
				"event_id", event.ID, "sub_ref", sub.Ref)
			return nil
		}

		periodEnd := sub.CurrentPeriodEnd
		if err := profile.ApplySubscription(plan.PlanID(), status, &periodEnd); err != nil {
			return err
		}
		if err := uc.profileRepo.Update(ctx, profile); err != nil {
			return fmt.Errorf("failed to persist billing profile: %w", err)
		}

		uc.logger.Infow("subscription snapshot applied",
			"user_id", profile.UserID(), "plan_id", plan.PlanID(),
			"status", string(status), "sub_ref", sub.Ref)
		return nil
	})
}

func (uc *ProcessWebhookUseCase) handleSubscriptionDeleted(ctx context.Context, event *gateway.Event) error {
	canceledAt := event.CanceledAt
	if canceledAt.IsZero() {
		canceledAt = time.Now().UTC()
	}

	return uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		record, err := uc.recordRepo.GetByProviderSubRef(ctx, event.SubRef)
		if err != nil && !errors.Is(err, billing.ErrRecordNotFound) {
			return fmt.Errorf("failed to load subscription record: %w", err)
		}
		if record != nil {
			record.MarkCanceled(canceledAt)
			if err := uc.recordRepo.Update(ctx, record); err != nil {
				return fmt.Errorf("failed to persist canceled record: %w", err)
			}
		}

		profile, ok, err := uc.profileByCustomer(ctx, event.CustomerRef, event.ID)
		if err != nil || !ok {
			return err
		}
		if err := profile.CancelToFree(uc.planResolver.DefaultPlanID()); err != nil {
			return err
		}
		if err := uc.profileRepo.Update(ctx, profile); err != nil {
			return fmt.Errorf("failed to persist billing profile: %w", err)
		}

		uc.logger.Infow("subscription canceled, profile returned to default plan",
			"user_id", profile.UserID(), "sub_ref", event.SubRef)
		return nil
	})
}

func (uc *ProcessWebhookUseCase) handleInvoicePaid(ctx context.Context, event *gateway.Event) error {
	profile, ok, err := uc.profileByCustomer(ctx, event.CustomerRef, event.ID)
	if err != nil || !ok {
		return err
	}
	if !profile.IsBlocked() {
		return nil
	}
	if profile.Status() == billing.StatusCanceled {
		// A payment for an already-canceled profile is a stale delivery.
		uc.logger.Infow("ignoring payment for canceled profile",
			"user_id", profile.UserID(), "event_id", event.ID)
		return nil
	}

	profile.MarkActive()
	if err := uc.profileRepo.Update(ctx, profile); err != nil {
		return fmt.Errorf("failed to persist billing profile: %w", err)
	}
	uc.logger.Infow("payment recovered, profile reactivated", "user_id", profile.UserID())
	return nil
}

func (uc *ProcessWebhookUseCase) handleInvoiceFailed(ctx context.Context, event *gateway.Event) error {
	profile, ok, err := uc.profileByCustomer(ctx, event.CustomerRef, event.ID)
	if err != nil || !ok {
		return err
	}
	if profile.Status() == billing.StatusPastDue || profile.Status() == billing.StatusCanceled {
		return nil
	}

	profile.MarkPastDue()
	if err := uc.profileRepo.Update(ctx, profile); err != nil {
		return fmt.Errorf("failed to persist billing profile: %w", err)
	}
	uc.logger.Warnw("payment failed, profile marked past due", "user_id", profile.UserID())
	return nil
}

func (uc *ProcessWebhookUseCase) handleTrialWillEnd(ctx context.Context, event *gateway.Event) error {
	profile, ok, err := uc.profileByCustomer(ctx, event.CustomerRef, event.ID)
	if err != nil || !ok {
		return err
	}
	if uc.notifier == nil {
		return nil
	}

	trialEnd := time.Now().UTC()
	if event.Subscription != nil {
		trialEnd = event.Subscription.CurrentPeriodEnd
	}
	if err := uc.notifier.NotifyTrialEnding(ctx, profile.UserID(), profile.PlanID(), trialEnd); err != nil {
		// Notification is best effort; never bounce the webhook over it.
		uc.logger.Warnw("failed to send trial ending notification",
			"error", err, "user_id", profile.UserID())
	}
	return nil
}

// profileByCustomer resolves the local profile for a provider customer.
// An unknown customer is a correlation failure: logged, acknowledged, and
// dropped, since retrying cannot make the customer known.
func (uc *ProcessWebhookUseCase) profileByCustomer(ctx context.Context, customerRef, eventID string) (*billing.UserBillingProfile, bool, error) {
	if customerRef == "" {
		uc.logger.Warnw("event without customer reference, dropping", "event_id", eventID)
		return nil, false, nil
	}
	profile, err := uc.profileRepo.GetByProviderCustomerRef(ctx, customerRef)
	if err != nil {
		if errors.Is(err, billing.ErrProfileNotFound) {
			uc.logger.Warnw("event for unknown provider customer, dropping",
				"event_id", eventID, "customer_ref", customerRef)
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to load billing profile: %w", err)
	}
	return profile, true, nil
}

func (uc *ProcessWebhookUseCase) loadOrCreateProfile(ctx context.Context, userID uint) (*billing.UserBillingProfile, error) {
	profile, err := uc.profileRepo.GetByUserID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, billing.ErrProfileNotFound) {
		return nil, fmt.Errorf("failed to load billing profile: %w", err)
	}

	profile, err = billing.NewUserBillingProfile(userID, uc.planResolver.DefaultPlanID())
	if err != nil {
		return nil, err
	}
	if err := uc.profileRepo.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create billing profile: %w", err)
	}
	return profile, nil
}

// resolveEventPlan picks the plan for an event. The subscription's price
// reference is authoritative: a portal-side plan change moves the price
// while metadata goes stale. Plan-ID metadata is the secondary signal, and
// the resolver's default-plan fallback catches the rest.
func (uc *ProcessWebhookUseCase) resolveEventPlan(ctx context.Context, event *gateway.Event, sub *gateway.Subscription) (*billing.Plan, error) {
	priceRef := ""
	planID := event.PlanIDMetadata
	if sub != nil {
		priceRef = sub.PriceRef
		if sub.PlanIDMetadata != "" {
			planID = sub.PlanIDMetadata
		}
	}
	return uc.planResolver.ResolveByPriceRef(ctx, priceRef, planID)
}

// upsertRecord folds a provider snapshot into the audit record keyed by the
// provider subscription reference, with latest-wins reconciliation. The
// provider's cancel timestamps pass through verbatim. The return value
// reports whether the snapshot applied; a stale delivery returns false.
func (uc *ProcessWebhookUseCase) upsertRecord(ctx context.Context, userID uint, planID string, sub *gateway.Subscription) (bool, error) {
	snap := billing.SubscriptionSnapshot{
		PlanID:             planID,
		ProviderPriceRef:   sub.PriceRef,
		Status:             mapProviderStatus(sub.Status),
		CurrentPeriodStart: sub.CurrentPeriodStart,
		CurrentPeriodEnd:   sub.CurrentPeriodEnd,
		CancelAt:           sub.CancelAt,
		CanceledAt:         sub.CanceledAt,
	}

	record, err := uc.recordRepo.GetByProviderSubRef(ctx, sub.Ref)
	if err != nil {
		if !errors.Is(err, billing.ErrRecordNotFound) {
			return false, fmt.Errorf("failed to load subscription record: %w", err)
		}
		record, err = billing.NewSubscriptionRecord(userID, sub.Ref, snap)
		if err != nil {
			return false, err
		}
		if err := uc.recordRepo.Create(ctx, record); err != nil {
			return false, fmt.Errorf("failed to create subscription record: %w", err)
		}
		return true, nil
	}

	changed, err := record.ApplyProviderState(snap)
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}
	if err := uc.recordRepo.Update(ctx, record); err != nil {
		return false, fmt.Errorf("failed to persist subscription record: %w", err)
	}
	return true, nil
}

// mapProviderStatus maps the provider's subscription status vocabulary onto
// the local one. Unknown statuses map to past_due so an unrecognized state
// never silently grants access.
func mapProviderStatus(s string) billing.SubscriptionStatus {
	switch s {
	case "trialing":
		return billing.StatusTrial
	case "active":
		return billing.StatusActive
	case "past_due", "unpaid", "incomplete":
		return billing.StatusPastDue
	case "canceled", "incomplete_expired":
		return billing.StatusCanceled
	default:
		return billing.StatusPastDue
	}
}
