package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	marketplaceapp "github.com/bidboard/backend/internal/application/marketplace"
)

// DocumentHandler handles RFP document API endpoints. Uploads go straight
// to object storage through presigned URLs; the API only hands out tickets
// and confirms arrivals.
type DocumentHandler struct {
	BaseHandler
	documentService *marketplaceapp.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentService *marketplaceapp.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// InitiateUploadRequest represents a request for a document upload ticket
type InitiateUploadRequest struct {
	Kind        string `json:"kind" binding:"required,oneof=plan_set addendum other"`
	FileName    string `json:"file_name" binding:"required,min=1,max=255"`
	ContentType string `json:"content_type" binding:"required"`
	FileSize    int64  `json:"file_size" binding:"required,min=1"`
}

// InitiateUpload creates a pending document and returns a presigned upload URL
func (h *DocumentHandler) InitiateUpload(c *gin.Context) {
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

	var req InitiateUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ticket, err := h.documentService.InitiateUpload(c.Request.Context(), userID, rfpID, marketplaceapp.InitiateUploadInput{
		Kind:        req.Kind,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		FileSize:    req.FileSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ticket)
}

// ConfirmUpload verifies the file landed in storage and activates the document
func (h *DocumentHandler) ConfirmUpload(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	document, err := h.documentService.ConfirmUpload(c.Request.Context(), userID, documentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, document)
}

// ListForRfp returns the active documents of an RFP with download URLs
func (h *DocumentHandler) ListForRfp(c *gin.Context) {
	rfpID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid RFP ID")
		return
	}

	documents, err := h.documentService.ListForRfp(c.Request.Context(), rfpID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, documents)
}

// Delete removes a document record and its storage object
func (h *DocumentHandler) Delete(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), userID, documentID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
