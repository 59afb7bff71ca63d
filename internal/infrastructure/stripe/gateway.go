// Package stripe adapts the Stripe SDK to the provider gateway port. All
// SDK types stay inside this package; use cases only ever see the neutral
// gateway structs.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	stripesdk "github.com/stripe/stripe-go/v76"
	portalsession "github.com/stripe/stripe-go/v76/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/customer"
	"github.com/stripe/stripe-go/v76/price"
	"github.com/stripe/stripe-go/v76/product"
	"github.com/stripe/stripe-go/v76/subscription"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/Drafter5000/Drafter5000-sub000/internal/application/billing/gateway"
	"github.com/Drafter5000/Drafter5000-sub000/internal/shared/config"
	"github.com/Drafter5000/Drafter5000-sub000/internal/shared/constants"
	"github.com/Drafter5000/Drafter5000-sub000/internal/shared/logger"
)

type Gateway struct {
	webhookSecret string
	timeout       time.Duration
	logger        logger.Interface
}

func NewGateway(cfg *config.StripeConfig, logger logger.Interface) *Gateway {
	stripesdk.Key = cfg.APIKey
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Gateway{
		webhookSecret: cfg.WebhookSecret,
		timeout:       timeout,
		logger:        logger,
	}
}

func (g *Gateway) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, g.timeout)
}

// FindProductByPlanID searches active products tagged with the plan ID.
func (g *Gateway) FindProductByPlanID(ctx context.Context, planID string) (*gateway.Product, error) {
	ctx, cancel := g.callCtx(ctx)
	defer cancel()

	params := &stripesdk.ProductSearchParams{
		SearchParams: stripesdk.SearchParams{
			Query:   fmt.Sprintf("active:'true' AND metadata['%s']:'%s'", constants.MetadataKeyPlanID, planID),
			Context: ctx,
		},
	}
	iter := product.Search(params)
	for iter.Next() {
		p := iter.Product()
		return &gateway.Product{
			Ref:      p.ID,
			Name:     p.Name,
			Active:   p.Active,
			Metadata: p.Metadata,
		}, nil
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("product search failed: %w", err)
	}
	return nil, nil
}

func (g *Gateway) CreateProduct(ctx context.Context, params gateway.CreateProductParams) (*gateway.Product, error) {
	ctx, cancel := g.callCtx(ctx)
	defer cancel()

	p, err := product.New(&stripesdk.ProductParams{
		Params: stripesdk.Params{
			Context:        ctx,
			IdempotencyKey: stripesdk.String(uuid.NewString()),
		},
		Name:        stripesdk.String(params.Name),
		Description: stripesdk.String(params.Description),
		Metadata: map[string]string{
			constants.MetadataKeyPlanID:        params.PlanID,
			constants.MetadataKeyIncludedQuota: strconv.Itoa(params.Quota),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("product create failed: %w", err)
	}
	return &gateway.Product{Ref: p.ID, Name: p.Name, Active: p.Active, Metadata: p.Metadata}, nil
}

func (g *Gateway) ListActivePrices(ctx context.Context, productRef string) ([]gateway.Price, error) {
	ctx, cancel := g.callCtx(ctx)
	defer cancel()

	params := &stripesdk.PriceListParams{
		ListParams: stripesdk.ListParams{Context: ctx},
		Product:    stripesdk.String(productRef),
		Active:     stripesdk.Bool(true),
	}
	var out []gateway.Price
	iter := price.List(params)
	for iter.Next() {
		p := iter.Price()
		out = append(out, toGatewayPrice(p))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("price list failed: %w", err)
	}
	return out, nil
}

func (g *Gateway) CreatePrice(ctx context.Context, params gateway.CreatePriceParams) (*gateway.Price, error) {
	ctx, cancel := g.callCtx(ctx)
	defer cancel()

	p, err := price.New(&stripesdk.PriceParams{
		Params: stripesdk.Params{
			Context:        ctx,
			IdempotencyKey: stripesdk.String(uuid.NewString()),
		},
		Product:    stripesdk.String(params.ProductRef),
		Currency:   stripesdk.String(params.Currency),
		UnitAmount: stripesdk.Int64(params.UnitAmountMinor),
		Recurring: &stripesdk.PriceRecurringParams{
			Interval: stripesdk.String(string(stripesdk.PriceRecurringIntervalMonth)),
		},
		Metadata: map[string]string{
			constants.MetadataKeyPlanID: params.PlanID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("price create failed: %w", err)
	}
	gp := toGatewayPrice(p)
	return &gp, nil
}

func (g *Gateway) DeactivatePrice(ctx context.Context, priceRef string) error {
	ctx, cancel := g.callCtx(ctx)
	defer cancel()

	_, err := price.Update(priceRef, &stripesdk.PriceParams{
		Params: stripesdk.Params{Context: ctx},
		Active: stripesdk.Bool(false),
	})
	if err != nil {
		return fmt.Errorf("price deactivate failed: %w", err)
	}
	return nil
}

func (g *Gateway) DeactivateProduct(ctx context.Context, productRef string) error {
	ctx, cancel := g.callCtx(ctx)
	defer cancel()

	_, err := product.Update(productRef, &stripesdk.ProductParams{
		Params: stripesdk.Params{Context: ctx},
		Active: stripesdk.Bool(false),
	})
	if err != nil {
		return fmt.Errorf("product deactivate failed: %w", err)
	}
	return nil
}

func (g *Gateway) CreateCustomer(ctx context.Context, params gateway.CreateCustomerParams) (string, error) {
	ctx, cancel := g.callCtx(ctx)
	defer cancel()

	c, err := customer.New(&stripesdk.CustomerParams{
		Params: stripesdk.Params{
			Context:        ctx,
			IdempotencyKey: stripesdk.String(uuid.NewString()),
		},
		Email: stripesdk.String(params.Email),
		Name:  stripesdk.String(params.Name),
		Metadata: map[string]string{
			constants.MetadataKeyUserID: strconv.FormatUint(uint64(params.UserID), 10),
		},
	})
	if err != nil {
		return "", fmt.Errorf("customer create failed: %w", err)
	}
	return c.ID, nil
}

func (g *Gateway) GetSubscription(ctx context.Context, subRef string) (*gateway.Subscription, error) {
	ctx, cancel := g.callCtx(ctx)
	defer cancel()

	s, err := subscription.Get(subRef, &stripesdk.SubscriptionParams{
		Params: stripesdk.Params{Context: ctx},
	})
	if err != nil {
		return nil, fmt.Errorf("subscription fetch failed: %w", err)
	}
	return toGatewaySubscription(s), nil
}

func (g *Gateway) CreateCheckoutSession(ctx context.Context, params gateway.CheckoutParams) (*gateway.HostedSession, error) {
	ctx, cancel := g.callCtx(ctx)
	defer cancel()

	userID := strconv.FormatUint(uint64(params.UserID), 10)
	metadata := map[string]string{
		constants.MetadataKeyPlanID: params.PlanID,
		constants.MetadataKeyUserID: userID,
	}

	sessionParams := &stripesdk.CheckoutSessionParams{
		Params: stripesdk.Params{
			Context:        ctx,
			IdempotencyKey: stripesdk.String(uuid.NewString()),
		},
		Mode:       stripesdk.String(string(stripesdk.CheckoutSessionModeSubscription)),
		SuccessURL: stripesdk.String(params.SuccessURL),
		CancelURL:  stripesdk.String(params.CancelURL),
		LineItems: []*stripesdk.CheckoutSessionLineItemParams{
			{
				Price:    stripesdk.String(params.PriceRef),
				Quantity: stripesdk.Int64(1),
			},
		},
		AllowPromotionCodes: stripesdk.Bool(true),
		Metadata:            metadata,
		SubscriptionData: &stripesdk.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		},
	}
	if params.CustomerRef != "" {
		sessionParams.Customer = stripesdk.String(params.CustomerRef)
	}
	if params.TrialPeriodDays > 0 {
		sessionParams.SubscriptionData.TrialPeriodDays = stripesdk.Int64(params.TrialPeriodDays)
	}

	sess, err := checkoutsession.New(sessionParams)
	if err != nil {
		return nil, fmt.Errorf("checkout session create failed: %w", err)
	}
	return &gateway.HostedSession{Ref: sess.ID, URL: sess.URL}, nil
}

func (g *Gateway) CreatePortalSession(ctx context.Context, params gateway.PortalParams) (string, error) {
	ctx, cancel := g.callCtx(ctx)
	defer cancel()

	sess, err := portalsession.New(&stripesdk.BillingPortalSessionParams{
		Params:    stripesdk.Params{Context: ctx},
		Customer:  stripesdk.String(params.CustomerRef),
		ReturnURL: stripesdk.String(params.ReturnURL),
	})
	if err != nil {
		return "", fmt.Errorf("portal session create failed: %w", err)
	}
	return sess.URL, nil
}

// VerifyEvent checks the webhook signature and converts the payload into a
// neutral event. Nothing in the payload is trusted before ConstructEvent
// succeeds.
func (g *Gateway) VerifyEvent(payload []byte, signature string) (*gateway.Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}
	return g.translateEvent(&event), nil
}

// translateEvent maps a verified Stripe event to the neutral shape. A
// payload that fails to unmarshal was still signed by Stripe; it is
// acknowledged as unhandled rather than bounced forever.
func (g *Gateway) translateEvent(event *stripesdk.Event) *gateway.Event {
	out := &gateway.Event{
		ID:      event.ID,
		Kind:    gateway.EventUnhandled,
		RawType: string(event.Type),
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripesdk.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			g.logger.Warnw("failed to unmarshal checkout session", "error", err, "event_id", event.ID)
			return out
		}
		out.Kind = gateway.EventCheckoutCompleted
		if sess.Customer != nil {
			out.CustomerRef = sess.Customer.ID
		}
		if sess.Subscription != nil {
			out.SubRef = sess.Subscription.ID
		}
		out.PlanIDMetadata = sess.Metadata[constants.MetadataKeyPlanID]
		out.UserIDMetadata = sess.Metadata[constants.MetadataKeyUserID]

	case "customer.subscription.created", "customer.subscription.updated",
		"customer.subscription.deleted", "customer.subscription.trial_will_end":
		var sub stripesdk.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			g.logger.Warnw("failed to unmarshal subscription", "error", err, "event_id", event.ID)
			return out
		}
		switch event.Type {
		case "customer.subscription.created":
			out.Kind = gateway.EventSubscriptionCreated
		case "customer.subscription.updated":
			out.Kind = gateway.EventSubscriptionUpdated
		case "customer.subscription.deleted":
			out.Kind = gateway.EventSubscriptionDeleted
			if sub.CanceledAt > 0 {
				out.CanceledAt = time.Unix(sub.CanceledAt, 0).UTC()
			}
		case "customer.subscription.trial_will_end":
			out.Kind = gateway.EventTrialWillEnd
		}
		out.SubRef = sub.ID
		if sub.Customer != nil {
			out.CustomerRef = sub.Customer.ID
		}
		out.Subscription = toGatewaySubscription(&sub)

	case "invoice.paid", "invoice.payment_succeeded":
		if ref, ok := g.invoiceCustomer(event); ok {
			out.Kind = gateway.EventInvoicePaid
			out.CustomerRef = ref
		}

	case "invoice.payment_failed":
		if ref, ok := g.invoiceCustomer(event); ok {
			out.Kind = gateway.EventInvoiceFailed
			out.CustomerRef = ref
		}
	}

	return out
}

func (g *Gateway) invoiceCustomer(event *stripesdk.Event) (string, bool) {
	var inv stripesdk.Invoice
	if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
		g.logger.Warnw("failed to unmarshal invoice", "error", err, "event_id", event.ID)
		return "", false
	}
	if inv.Customer == nil {
		return "", false
	}
	return inv.Customer.ID, true
}

func toGatewayPrice(p *stripesdk.Price) gateway.Price {
	gp := gateway.Price{
		Ref:             p.ID,
		UnitAmountMinor: p.UnitAmount,
		Currency:        string(p.Currency),
		Active:          p.Active,
	}
	if p.Product != nil {
		gp.ProductRef = p.Product.ID
	}
	if p.Recurring != nil {
		gp.Interval = string(p.Recurring.Interval)
	}
	return gp
}

func toGatewaySubscription(s *stripesdk.Subscription) *gateway.Subscription {
	out := &gateway.Subscription{
		Ref:                s.ID,
		Status:             string(s.Status),
		CurrentPeriodStart: time.Unix(s.CurrentPeriodStart, 0).UTC(),
		CurrentPeriodEnd:   time.Unix(s.CurrentPeriodEnd, 0).UTC(),
		CancelAt:           unixOrNil(s.CancelAt),
		CanceledAt:         unixOrNil(s.CanceledAt),
		PlanIDMetadata:     s.Metadata[constants.MetadataKeyPlanID],
	}
	if s.Customer != nil {
		out.CustomerRef = s.Customer.ID
	}
	if s.Items != nil && len(s.Items.Data) > 0 && s.Items.Data[0].Price != nil {
		out.PriceRef = s.Items.Data[0].Price.ID
	}
	return out
}

// unixOrNil maps Stripe's zero-valued optional timestamps to nil.
func unixOrNil(ts int64) *time.Time {
	if ts == 0 {
		return nil
	}
	t := time.Unix(ts, 0).UTC()
	return &t
}
