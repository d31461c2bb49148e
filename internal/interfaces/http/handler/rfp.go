package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	marketplaceapp "github.com/bidboard/backend/internal/application/marketplace"
	"github.com/bidboard/backend/internal/interfaces/http/dto"
)

// RfpHandler handles RFP listing API endpoints
type RfpHandler struct {
	BaseHandler
	rfpService *marketplaceapp.RfpService
}

// NewRfpHandler creates a new RfpHandler
func NewRfpHandler(rfpService *marketplaceapp.RfpService) *RfpHandler {
	return &RfpHandler{rfpService: rfpService}
}

// CreateRfpRequest represents a request to create a new RFP draft
type CreateRfpRequest struct {
	Title         string     `json:"title" binding:"required,min=1,max=200"`
	Description   string     `json:"description" binding:"max=10000"`
	TradeCategory string     `json:"trade_category" binding:"required,min=1,max=100"`
	City          string     `json:"city" binding:"max=100"`
	State         string     `json:"state" binding:"max=50"`
	BidDeadline   time.Time  `json:"bid_deadline" binding:"required"`
	QADeadline    *time.Time `json:"qa_deadline"`
	SiteVisitAt   *time.Time `json:"site_visit_at"`
}

// AwardRfpRequest represents a request to award an RFP to a contractor
type AwardRfpRequest struct {
	ContractorID string `json:"contractor_id" binding:"required,uuid"`
}

// SearchRfpRequest represents the public listing search parameters
type SearchRfpRequest struct {
	dto.ListRequest
	TradeCategory string `form:"trade_category"`
	City          string `form:"city"`
	State         string `form:"state"`
	Query         string `form:"q"`
	FeaturedOnly  bool   `form:"featured_only"`
}

// Create creates a draft RFP
func (h *RfpHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateRfpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	rfp, err := h.rfpService.Create(c.Request.Context(), userID, marketplaceapp.CreateRfpInput{
		Title:         req.Title,
		Description:   req.Description,
		TradeCategory: req.TradeCategory,
		City:          req.City,
		State:         req.State,
		BidDeadline:   req.BidDeadline,
		QADeadline:    req.QADeadline,
		SiteVisitAt:   req.SiteVisitAt,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, rfp)
}

// Publish opens a draft RFP for bidding
func (h *RfpHandler) Publish(c *gin.Context) {
	h.transition(c, h.rfpService.Publish)
}

// Close closes an open RFP without awarding it
func (h *RfpHandler) Close(c *gin.Context) {
	h.transition(c, h.rfpService.Close)
}

// Award awards the RFP to a contractor
func (h *RfpHandler) Award(c *gin.Context) {
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

	var req AwardRfpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	contractorID, err := uuid.Parse(req.ContractorID)
	if err != nil {
		h.BadRequest(c, "Invalid contractor ID")
		return
	}

	rfp, err := h.rfpService.Award(c.Request.Context(), userID, rfpID, contractorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rfp)
}

// GetByID returns the RFP detail with bid count and documents
func (h *RfpHandler) GetByID(c *gin.Context) {
	rfpID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid RFP ID")
		return
	}

	detail, err := h.rfpService.Get(c.Request.Context(), rfpID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

// Search returns a page of open listings matching the filter
func (h *RfpHandler) Search(c *gin.Context) {
	var req SearchRfpRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Normalize()

	rfps, total, err := h.rfpService.Search(c.Request.Context(), marketplaceapp.SearchInput{
		TradeCategory: req.TradeCategory,
		City:          req.City,
		State:         req.State,
		Query:         req.Query,
		FeaturedOnly:  req.FeaturedOnly,
		Page:          req.Page,
		PageSize:      req.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, rfps, total, req.Page, req.PageSize)
}

// ListMine returns the RFPs posted by the calling user
func (h *RfpHandler) ListMine(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	rfps, err := h.rfpService.ListMine(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rfps)
}

// transition runs a status transition that needs only the caller and RFP ID
func (h *RfpHandler) transition(c *gin.Context, fn func(ctx context.Context, userID, rfpID uuid.UUID) (*marketplaceapp.RfpDTO, error)) {
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

	rfp, err := fn(c.Request.Context(), userID, rfpID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rfp)
}
