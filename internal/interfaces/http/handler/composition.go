package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	mfgapp "github.com/goldpos/backend/internal/application/manufacturing"
	"github.com/goldpos/backend/internal/domain/manufacturing"
	"github.com/goldpos/backend/internal/interfaces/http/middleware"
)

// CompositionHandler handles raw material composition API endpoints
type CompositionHandler struct {
	BaseHandler
	compositionService *mfgapp.CompositionService
}

// NewCompositionHandler creates a new CompositionHandler
func NewCompositionHandler(compositionService *mfgapp.CompositionService) *CompositionHandler {
	return &CompositionHandler{
		compositionService: compositionService,
	}
}

// AddContributionRequest represents a request to record one material contribution
type AddContributionRequest struct {
	RawProductID        string `json:"raw_product_id" binding:"required,uuid"`
	QuantityUsed        string `json:"quantity_used" binding:"required,decimal"`
	UnitCost            string `json:"unit_cost" binding:"required,decimal"`
	ContributionPercent string `json:"contribution_percent" binding:"required,decimal"`
	SourceType          string `json:"source_type" binding:"required"`
	SourceID            string `json:"source_id" binding:"required,uuid"`
	SourceOwnershipID   string `json:"source_ownership_id" binding:"omitempty,uuid"`
	Notes               string `json:"notes" binding:"max=500"`
}

// Add records a raw material contribution against a manufacturing record
func (h *CompositionHandler) Add(c *gin.Context) {
	recordID, ok := h.parseRecordID(c)
	if !ok {
		return
	}

	var req AddContributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	quantity, err := decimal.NewFromString(req.QuantityUsed)
	if err != nil {
		h.BadRequest(c, "Invalid quantity_used")
		return
	}
	unitCost, err := decimal.NewFromString(req.UnitCost)
	if err != nil {
		h.BadRequest(c, "Invalid unit_cost")
		return
	}
	percent, err := decimal.NewFromString(req.ContributionPercent)
	if err != nil {
		h.BadRequest(c, "Invalid contribution_percent")
		return
	}

	appReq := mfgapp.AddContributionRequest{
		RecordID:            recordID,
		RawProductID:        uuid.MustParse(req.RawProductID),
		QuantityUsed:        quantity,
		UnitCost:            unitCost,
		ContributionPercent: percent,
		SourceType:          manufacturing.ContributionSourceType(req.SourceType),
		SourceID:            uuid.MustParse(req.SourceID),
		Notes:               req.Notes,
	}
	if req.SourceOwnershipID != "" {
		ownershipID := uuid.MustParse(req.SourceOwnershipID)
		appReq.SourceOwnershipID = &ownershipID
	}

	contribution, err := h.compositionService.AddContribution(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, contribution)
}

// List returns all contributions recorded against a manufacturing record
func (h *CompositionHandler) List(c *gin.Context) {
	recordID, ok := h.parseRecordID(c)
	if !ok {
		return
	}

	contributions, err := h.compositionService.ListContributions(c.Request.Context(), recordID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, contributions)
}

// Total returns the percentage sum across a record's contributions.
// An unbalanced sum is reported, never rejected.
func (h *CompositionHandler) Total(c *gin.Context) {
	recordID, ok := h.parseRecordID(c)
	if !ok {
		return
	}

	total, err := h.compositionService.TotalPercentage(c.Request.Context(), recordID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, total)
}

// Remove deletes a single contribution entry
func (h *CompositionHandler) Remove(c *gin.Context) {
	contributionID, err := uuid.Parse(c.Param("contributionId"))
	if err != nil {
		h.BadRequest(c, "Invalid contribution ID")
		return
	}

	if err := h.compositionService.RemoveContribution(c.Request.Context(), contributionID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

func (h *CompositionHandler) parseRecordID(c *gin.Context) (uuid.UUID, bool) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid record ID")
		return uuid.Nil, false
	}
	return recordID, true
}
