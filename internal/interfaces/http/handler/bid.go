package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	marketplaceapp "github.com/bidboard/backend/internal/application/marketplace"
)

// BidHandler handles bid request API endpoints
type BidHandler struct {
	BaseHandler
	bidService *marketplaceapp.BidService
}

// NewBidHandler creates a new BidHandler
func NewBidHandler(bidService *marketplaceapp.BidService) *BidHandler {
	return &BidHandler{bidService: bidService}
}

// SubmitBidRequest represents a contractor's request for bid documents
type SubmitBidRequest struct {
	Message string `json:"message" binding:"max=5000"`
}

// RespondBidRequest represents the poster's answer to a bid request
type RespondBidRequest struct {
	Answer string `json:"answer" binding:"required,min=1,max=5000"`
}

// Submit creates a bid request against an open RFP
func (h *BidHandler) Submit(c *gin.Context) {
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

	var req SubmitBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	request, err := h.bidService.Submit(c.Request.Context(), userID, rfpID, req.Message)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, request)
}

// Respond records the poster's answer to a bid request
func (h *BidHandler) Respond(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bid request ID")
		return
	}

	var req RespondBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	request, err := h.bidService.Respond(c.Request.Context(), userID, requestID, req.Answer)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, request)
}

// Withdraw lets a contractor withdraw their own pending request
func (h *BidHandler) Withdraw(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bid request ID")
		return
	}

	if err := h.bidService.Withdraw(c.Request.Context(), userID, requestID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListForRfp returns all bid requests on an RFP, visible to the poster only
func (h *BidHandler) ListForRfp(c *gin.Context) {
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

	requests, err := h.bidService.ListForRfp(c.Request.Context(), userID, rfpID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, requests)
}

// ListMine returns the calling contractor's own bid requests
func (h *BidHandler) ListMine(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	requests, err := h.bidService.ListForContractor(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, requests)
}
