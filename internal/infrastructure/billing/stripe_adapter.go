// Package billing integrates Stripe Checkout for featured listing purchases.
package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"

	marketplaceapp "github.com/bidboard/backend/internal/application/marketplace"
	"github.com/bidboard/backend/internal/infrastructure/config"
)

// Ensure StripeAdapter implements CheckoutProvider
var _ marketplaceapp.CheckoutProvider = (*StripeAdapter)(nil)

// Webhook event types the listing flow cares about
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"
)

// CheckoutEvent is a verified webhook callback reduced to what the
// listing service needs.
type CheckoutEvent struct {
	Type      string
	SessionID string
}

// StripeAdapter creates hosted checkout sessions and verifies webhooks
type StripeAdapter struct {
	webhookSecret string
	logger        *zap.Logger
}

// NewStripeAdapter creates a Stripe adapter and sets the global API key
func NewStripeAdapter(cfg *config.BillingConfig, logger *zap.Logger) (*StripeAdapter, error) {
	if cfg == nil || cfg.SecretKey == "" {
		return nil, errors.New("stripe secret key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	stripe.Key = cfg.SecretKey
	return &StripeAdapter{
		webhookSecret: cfg.WebhookSecret,
		logger:        logger,
	}, nil
}

// CreateListingCheckout creates a one-time payment session for a featured listing
func (a *StripeAdapter) CreateListingCheckout(ctx context.Context, input marketplaceapp.CreateCheckoutInput) (*marketplaceapp.CheckoutSession, error) {
	a.logger.Debug("Creating Stripe checkout session",
		zap.String("listing_id", input.ListingID.String()),
		zap.String("amount", input.Amount.String()))

	// Stripe wants the amount in the currency's smallest unit
	unitAmount := input.Amount.Shift(2).IntPart()

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(input.SuccessURL),
		CancelURL:  stripe.String(input.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(input.Currency),
					UnitAmount: stripe.Int64(unitAmount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String("Featured listing"),
						Description: stripe.String(fmt.Sprintf("Front page placement for %q", input.RfpTitle)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Metadata = map[string]string{
		"listing_id": input.ListingID.String(),
	}

	sess, err := session.New(params)
	if err != nil {
		a.logger.Error("Failed to create Stripe checkout session",
			zap.String("listing_id", input.ListingID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create checkout session: %w", err)
	}

	a.logger.Info("Created Stripe checkout session",
		zap.String("listing_id", input.ListingID.String()),
		zap.String("session_id", sess.ID))

	return &marketplaceapp.CheckoutSession{
		SessionID: sess.ID,
		URL:       sess.URL,
	}, nil
}

// VerifyWebhook checks the signature on a webhook payload and extracts the
// checkout session it refers to. Events the listing flow does not handle
// come back with an empty SessionID.
func (a *StripeAdapter) VerifyWebhook(payload []byte, signature string) (*CheckoutEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, a.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("stripe: webhook verification failed: %w", err)
	}

	result := &CheckoutEvent{Type: string(event.Type)}
	switch result.Type {
	case EventCheckoutCompleted, EventCheckoutExpired:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("stripe: failed to parse checkout session: %w", err)
		}
		result.SessionID = sess.ID
	}
	return result, nil
}
