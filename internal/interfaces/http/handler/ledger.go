package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	mfgapp "github.com/goldpos/backend/internal/application/manufacturing"
	"github.com/goldpos/backend/internal/domain/manufacturing"
	"github.com/goldpos/backend/internal/domain/shared"
	"github.com/goldpos/backend/internal/domain/shared/valueobject"
	"github.com/goldpos/backend/internal/interfaces/http/middleware"
)

// LedgerHandler handles raw gold lot and weight ledger API endpoints
type LedgerHandler struct {
	BaseHandler
	ledgerService *mfgapp.WeightLedgerService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledgerService *mfgapp.WeightLedgerService) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
	}
}

// RegisterLotRequest represents a request to record a received purchase lot
type RegisterLotRequest struct {
	PurchaseOrderID     string `json:"purchase_order_id" binding:"required,uuid"`
	PurchaseOrderItemID string `json:"purchase_order_item_id" binding:"required,uuid"`
	BranchID            string `json:"branch_id" binding:"required,uuid"`
	KaratType           string `json:"karat_type" binding:"required,karat"`
	WeightOrdered       string `json:"weight_ordered" binding:"required,decimal"`
	WeightReceived      string `json:"weight_received" binding:"required,decimal"`
}

// LotListFilter represents query parameters for listing lots
type LotListFilter struct {
	Page            int    `form:"page"`
	PageSize        int    `form:"page_size"`
	OrderBy         string `form:"order_by"`
	OrderDir        string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	BranchID        string `form:"branch_id" binding:"omitempty,uuid"`
	KaratType       string `form:"karat_type"`
	PurchaseOrderID string `form:"purchase_order_id" binding:"omitempty,uuid"`
}

// RemainingWeightResponse reports the unconsumed weight of a lot
type RemainingWeightResponse struct {
	LotID           string `json:"lot_id"`
	RemainingWeight string `json:"remaining_weight"`
}

// SufficiencyResponse reports whether a lot can cover a requested weight
type SufficiencyResponse struct {
	LotID           string `json:"lot_id"`
	RequestedWeight string `json:"requested_weight"`
	Sufficient      bool   `json:"sufficient"`
}

// RegisterLot records a newly received purchase lot in the weight ledger
func (h *LedgerHandler) RegisterLot(c *gin.Context) {
	var req RegisterLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	ordered, err := decimal.NewFromString(req.WeightOrdered)
	if err != nil {
		h.BadRequest(c, "Invalid weight_ordered")
		return
	}
	received, err := decimal.NewFromString(req.WeightReceived)
	if err != nil {
		h.BadRequest(c, "Invalid weight_received")
		return
	}

	lot, err := h.ledgerService.RegisterLot(c.Request.Context(), mfgapp.RegisterLotRequest{
		PurchaseOrderID:     uuid.MustParse(req.PurchaseOrderID),
		PurchaseOrderItemID: uuid.MustParse(req.PurchaseOrderItemID),
		BranchID:            uuid.MustParse(req.BranchID),
		KaratType:           manufacturing.KaratType(req.KaratType),
		WeightOrdered:       ordered,
		WeightReceived:      received,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, lot)
}

// Get returns a single lot by ID
func (h *LedgerHandler) Get(c *gin.Context) {
	lotID, ok := h.parseLotID(c)
	if !ok {
		return
	}

	lot, err := h.ledgerService.GetLot(c.Request.Context(), lotID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, lot)
}

// List returns lots with filtering and pagination
func (h *LedgerHandler) List(c *gin.Context) {
	var filter LotListFilter
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

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  map[string]any{},
	}
	if filter.BranchID != "" {
		domainFilter.Filters["branch_id"] = filter.BranchID
	}
	if filter.KaratType != "" {
		domainFilter.Filters["karat_type"] = filter.KaratType
	}
	if filter.PurchaseOrderID != "" {
		domainFilter.Filters["purchase_order_id"] = filter.PurchaseOrderID
	}

	result, err := h.ledgerService.ListLots(c.Request.Context(), domainFilter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// ListAvailable returns lots that still have unconsumed weight
func (h *LedgerHandler) ListAvailable(c *gin.Context) {
	var branchID *uuid.UUID
	if raw := c.Query("branch_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid branch_id")
			return
		}
		branchID = &id
	}

	var karat *manufacturing.KaratType
	if raw := c.Query("karat_type"); raw != "" {
		k := manufacturing.KaratType(raw)
		if !k.IsValid() {
			h.BadRequest(c, "Invalid karat_type")
			return
		}
		karat = &k
	}

	lots, err := h.ledgerService.ListAvailableLots(c.Request.Context(), branchID, karat)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, lots)
}

// RemainingWeight returns the unconsumed weight of a lot
func (h *LedgerHandler) RemainingWeight(c *gin.Context) {
	lotID, ok := h.parseLotID(c)
	if !ok {
		return
	}

	remaining, err := h.ledgerService.RemainingWeight(c.Request.Context(), lotID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, RemainingWeightResponse{
		LotID:           lotID.String(),
		RemainingWeight: remaining.StringFixed(),
	})
}

// CheckSufficient reports whether a lot can cover a requested weight.
// The check is advisory: the authoritative re-validation happens inside
// the reservation transaction.
func (h *LedgerHandler) CheckSufficient(c *gin.Context) {
	lotID, ok := h.parseLotID(c)
	if !ok {
		return
	}

	raw := c.Query("weight")
	if raw == "" {
		h.BadRequest(c, "Missing weight query parameter")
		return
	}
	weight, err := valueobject.NewWeightFromString(raw)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	sufficient, err := h.ledgerService.CheckSufficient(c.Request.Context(), lotID, weight)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, SufficiencyResponse{
		LotID:           lotID.String(),
		RequestedWeight: weight.StringFixed(),
		Sufficient:      sufficient,
	})
}

func (h *LedgerHandler) parseLotID(c *gin.Context) (uuid.UUID, bool) {
	lotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lot ID")
		return uuid.Nil, false
	}
	return lotID, true
}
