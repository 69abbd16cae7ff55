package manufacturing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/goldpos/backend/internal/domain/manufacturing"
)

// CreateRecordRequest carries the validated inputs for creating a batch
type CreateRecordRequest struct {
	BatchNumber             string
	ProductID               uuid.UUID
	SourceLotID             uuid.UUID
	BranchID                uuid.UUID
	TechnicianID            *uuid.UUID
	QuantityToProduce       int
	ConsumedWeight          decimal.Decimal
	WastageWeight           decimal.Decimal
	CostPerGram             decimal.Decimal
	Priority                manufacturing.Priority
	EstimatedCompletionDate *time.Time
	Notes                   string
}

// RegisterLotRequest carries the inputs for recording a received purchase lot
type RegisterLotRequest struct {
	PurchaseOrderID     uuid.UUID
	PurchaseOrderItemID uuid.UUID
	BranchID            uuid.UUID
	KaratType           manufacturing.KaratType
	WeightOrdered       decimal.Decimal
	WeightReceived      decimal.Decimal
}

// AddContributionRequest carries the inputs for one composition entry
type AddContributionRequest struct {
	RecordID            uuid.UUID
	RawProductID        uuid.UUID
	QuantityUsed        decimal.Decimal
	UnitCost            decimal.Decimal
	ContributionPercent decimal.Decimal
	SourceType          manufacturing.ContributionSourceType
	SourceID            uuid.UUID
	SourceOwnershipID   *uuid.UUID
	Notes               string
}

// CompositionTotal reports the percentage sum across a record's contributions.
// Balanced is advisory: contributions may legitimately be entered
// incrementally, so an unbalanced sum is surfaced as a warning, never an error.
type CompositionTotal struct {
	RecordID          uuid.UUID       `json:"record_id"`
	TotalPercent      decimal.Decimal `json:"total_percent"`
	Balanced          bool            `json:"balanced"`
	ContributionCount int             `json:"contribution_count"`
}
