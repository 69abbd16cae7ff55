package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	mfgapp "github.com/goldpos/backend/internal/application/manufacturing"
	"github.com/goldpos/backend/internal/domain/manufacturing"
	"github.com/goldpos/backend/internal/domain/shared"
	"github.com/goldpos/backend/internal/interfaces/http/middleware"
)

// parseDate parses a date string in RFC3339 or ISO date format
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// ManufacturingHandler handles manufacturing record API endpoints
type ManufacturingHandler struct {
	BaseHandler
	manufacturingService *mfgapp.ManufacturingService
}

// NewManufacturingHandler creates a new ManufacturingHandler
func NewManufacturingHandler(manufacturingService *mfgapp.ManufacturingService) *ManufacturingHandler {
	return &ManufacturingHandler{
		manufacturingService: manufacturingService,
	}
}

// CreateRecordRequest represents a request to start a manufacturing batch
type CreateRecordRequest struct {
	BatchNumber             string `json:"batch_number" binding:"required,max=50"`
	ProductID               string `json:"product_id" binding:"required,uuid"`
	SourceLotID             string `json:"source_lot_id" binding:"required,uuid"`
	BranchID                string `json:"branch_id" binding:"required,uuid"`
	TechnicianID            string `json:"technician_id" binding:"omitempty,uuid"`
	QuantityToProduce       int    `json:"quantity_to_produce" binding:"required,gt=0"`
	ConsumedWeight          string `json:"consumed_weight" binding:"required,decimal"`
	WastageWeight           string `json:"wastage_weight" binding:"omitempty,decimal"`
	CostPerGram             string `json:"cost_per_gram" binding:"required,decimal"`
	Priority                string `json:"priority" binding:"omitempty,oneof=LOW NORMAL HIGH URGENT"`
	EstimatedCompletionDate string `json:"estimated_completion_date"`
	Notes                   string `json:"notes" binding:"max=1000"`
}

// RecordListFilter represents query parameters for listing records
type RecordListFilter struct {
	Page        int    `form:"page"`
	PageSize    int    `form:"page_size"`
	OrderBy     string `form:"order_by"`
	OrderDir    string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search      string `form:"search"`
	ProductID   string `form:"product_id" binding:"omitempty,uuid"`
	BranchID    string `form:"branch_id" binding:"omitempty,uuid"`
	Status      string `form:"status"`
	BatchNumber string `form:"batch_number"`
	BatchPrefix string `form:"batch_prefix"`
}

// Create starts a new manufacturing batch, reserving the consumed weight
// from the source lot in the same transaction
func (h *ManufacturingHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	consumed, err := decimal.NewFromString(req.ConsumedWeight)
	if err != nil {
		h.BadRequest(c, "Invalid consumed_weight")
		return
	}
	wastage := decimal.Zero
	if req.WastageWeight != "" {
		if wastage, err = decimal.NewFromString(req.WastageWeight); err != nil {
			h.BadRequest(c, "Invalid wastage_weight")
			return
		}
	}
	costPerGram, err := decimal.NewFromString(req.CostPerGram)
	if err != nil {
		h.BadRequest(c, "Invalid cost_per_gram")
		return
	}

	appReq := mfgapp.CreateRecordRequest{
		BatchNumber:       req.BatchNumber,
		ProductID:         uuid.MustParse(req.ProductID),
		SourceLotID:       uuid.MustParse(req.SourceLotID),
		BranchID:          uuid.MustParse(req.BranchID),
		QuantityToProduce: req.QuantityToProduce,
		ConsumedWeight:    consumed,
		WastageWeight:     wastage,
		CostPerGram:       costPerGram,
		Priority:          manufacturing.Priority(req.Priority),
		Notes:             req.Notes,
	}
	if req.TechnicianID != "" {
		technicianID := uuid.MustParse(req.TechnicianID)
		appReq.TechnicianID = &technicianID
	}
	if req.EstimatedCompletionDate != "" {
		estimated, err := parseDate(req.EstimatedCompletionDate)
		if err != nil {
			h.BadRequest(c, "Invalid estimated_completion_date")
			return
		}
		appReq.EstimatedCompletionDate = &estimated
	}

	actor := manufacturing.Actor{UserID: userID, UserName: getUserName(c)}

	record, err := h.manufacturingService.Create(c.Request.Context(), appReq, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, record)
}

// Get returns a single manufacturing record by ID
func (h *ManufacturingHandler) Get(c *gin.Context) {
	recordID, ok := h.parseRecordID(c)
	if !ok {
		return
	}

	record, err := h.manufacturingService.GetByID(c.Request.Context(), recordID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, record)
}

// List returns manufacturing records with filtering and pagination
func (h *ManufacturingHandler) List(c *gin.Context) {
	var filter RecordListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.Status != "" && !manufacturing.ManufacturingStatus(filter.Status).IsValid() {
		h.BadRequest(c, "Invalid status")
		return
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  map[string]any{},
	}
	if filter.ProductID != "" {
		domainFilter.Filters["product_id"] = filter.ProductID
	}
	if filter.BranchID != "" {
		domainFilter.Filters["branch_id"] = filter.BranchID
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.BatchNumber != "" {
		domainFilter.Filters["batch_number"] = filter.BatchNumber
	}
	if filter.BatchPrefix != "" {
		domainFilter.Filters["batch_prefix"] = filter.BatchPrefix
	}

	result, err := h.manufacturingService.List(c.Request.Context(), domainFilter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Summary returns per-status record counts and total costs,
// optionally narrowed to one product
func (h *ManufacturingHandler) Summary(c *gin.Context) {
	var productID *uuid.UUID
	if raw := c.Query("product_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid product_id")
			return
		}
		productID = &id
	}

	summary, err := h.manufacturingService.Summary(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// SearchByBatch returns records whose batch number starts with the given prefix
func (h *ManufacturingHandler) SearchByBatch(c *gin.Context) {
	prefix := c.Query("prefix")
	if prefix == "" {
		h.BadRequest(c, "Missing prefix query parameter")
		return
	}

	records, err := h.manufacturingService.ListByBatch(c.Request.Context(), prefix, true)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, records)
}

// Delete removes a pre-production record and releases its reserved weight
// back to the source lot
func (h *ManufacturingHandler) Delete(c *gin.Context) {
	recordID, ok := h.parseRecordID(c)
	if !ok {
		return
	}

	if err := h.manufacturingService.Delete(c.Request.Context(), recordID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

func (h *ManufacturingHandler) parseRecordID(c *gin.Context) (uuid.UUID, bool) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid record ID")
		return uuid.Nil, false
	}
	return recordID, true
}
