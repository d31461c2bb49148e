package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	marketplaceapp "github.com/bidboard/backend/internal/application/marketplace"
)

// ListingHandler handles featured listing purchase endpoints
type ListingHandler struct {
	BaseHandler
	listingService *marketplaceapp.ListingService
}

// NewListingHandler creates a new ListingHandler
func NewListingHandler(listingService *marketplaceapp.ListingService) *ListingHandler {
	return &ListingHandler{listingService: listingService}
}

// StartCheckout creates a checkout session for featuring an RFP. The
// response points the buyer at the hosted payment page; the purchase
// completes through the payment webhook.
func (h *ListingHandler) StartCheckout(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	rfpID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid RFP ID")
		return
	}

	checkout, err := h.listingService.StartCheckout(c.Request.Context(), userID, rfpID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, checkout)
}
