package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	marketplaceapp "github.com/bidboard/backend/internal/application/marketplace"
	"github.com/bidboard/backend/internal/infrastructure/billing"
)

// Maximum webhook payload size (64KB - Stripe webhooks are typically small)
const maxWebhookPayloadSize = 65536

// WebhookVerifier checks a webhook signature and extracts the checkout event
type WebhookVerifier interface {
	VerifyWebhook(payload []byte, signature string) (*billing.CheckoutEvent, error)
}

// StripeWebhookHandler handles Stripe webhook endpoints. These endpoints
// are called by Stripe and do not require authentication.
type StripeWebhookHandler struct {
	BaseHandler
	verifier       WebhookVerifier
	listingService *marketplaceapp.ListingService
	logger         *zap.Logger
}

// NewStripeWebhookHandler creates a new StripeWebhookHandler
func NewStripeWebhookHandler(verifier WebhookVerifier, listingService *marketplaceapp.ListingService, logger *zap.Logger) *StripeWebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StripeWebhookHandler{
		verifier:       verifier,
		listingService: listingService,
		logger:         logger,
	}
}

// StripeWebhookResponse represents the response for a Stripe webhook call
type StripeWebhookResponse struct {
	Received  bool   `json:"received"`
	EventType string `json:"event_type,omitempty"`
	Message   string `json:"message,omitempty"`
}

// HandleWebhook receives and processes checkout events from Stripe
func (h *StripeWebhookHandler) HandleWebhook(c *gin.Context) {
	// Stripe requires the raw body for signature verification
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookPayloadSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, StripeWebhookResponse{
			Received: false,
			Message:  "Failed to read request body",
		})
		return
	}
	if len(payload) > maxWebhookPayloadSize {
		c.JSON(http.StatusRequestEntityTooLarge, StripeWebhookResponse{
			Received: false,
			Message:  "Payload too large",
		})
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		c.JSON(http.StatusUnauthorized, StripeWebhookResponse{
			Received: false,
			Message:  "Missing Stripe-Signature header",
		})
		return
	}

	event, err := h.verifier.VerifyWebhook(payload, signature)
	if err != nil {
		c.JSON(http.StatusUnauthorized, StripeWebhookResponse{
			Received: false,
			Message:  "Webhook signature verification failed",
		})
		return
	}
	if event == nil {
		// an event type we don't handle; acknowledge so Stripe stops sending it
		c.JSON(http.StatusOK, StripeWebhookResponse{Received: true})
		return
	}

	switch event.Type {
	case billing.EventCheckoutCompleted:
		err = h.listingService.CompleteCheckout(c.Request.Context(), event.SessionID)
	case billing.EventCheckoutExpired:
		err = h.listingService.ExpireCheckout(c.Request.Context(), event.SessionID)
	}
	if err != nil {
		// Return 200 regardless: Stripe retries on non-2xx and a retry will
		// not fix a session we cannot match.
		h.logger.Error("stripe webhook processing failed",
			zap.String("event_type", event.Type),
			zap.String("session_id", event.SessionID),
			zap.Error(err))
		c.JSON(http.StatusOK, StripeWebhookResponse{
			Received:  true,
			EventType: event.Type,
			Message:   "Webhook received but processing encountered an issue",
		})
		return
	}

	c.JSON(http.StatusOK, StripeWebhookResponse{
		Received:  true,
		EventType: event.Type,
	})
}
