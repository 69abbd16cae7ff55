package manufacturing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/goldpos/backend/internal/domain/shared"
	"github.com/goldpos/backend/internal/domain/shared/valueobject"
)

// ManufacturingRecord is the workflow aggregate: one batch converting raw
// gold from a source lot into finished product units. Status, notes and
// completion metadata mutate through the workflow methods below; the
// source lot linkage and consumed weight are immutable after creation
// (corrections happen via a new record, never mutation).
type ManufacturingRecord struct {
	shared.BaseAggregateRoot
	BatchNumber             string                 `gorm:"type:varchar(50);not null;index" json:"batch_number"`
	ProductID               uuid.UUID              `gorm:"type:uuid;not null;index" json:"product_id"`
	SourceLotID             uuid.UUID              `gorm:"type:uuid;not null;index" json:"source_lot_id"`
	BranchID                uuid.UUID              `gorm:"type:uuid;not null;index" json:"branch_id"`
	TechnicianID            *uuid.UUID             `gorm:"type:uuid" json:"technician_id"`
	QuantityToProduce       int                    `gorm:"not null" json:"quantity_to_produce"`
	ConsumedWeight          decimal.Decimal        `gorm:"type:decimal(12,3);not null" json:"consumed_weight"`
	WastageWeight           decimal.Decimal        `gorm:"type:decimal(12,3);not null;default:0" json:"wastage_weight"`
	CostPerGram             decimal.Decimal        `gorm:"type:decimal(12,2);not null" json:"cost_per_gram"`
	TotalCost               decimal.Decimal        `gorm:"type:decimal(14,2);not null" json:"total_cost"`
	Status                  ManufacturingStatus    `gorm:"type:varchar(20);not null;index" json:"status"`
	Priority                Priority               `gorm:"type:varchar(10);not null;default:'NORMAL'" json:"priority"`
	EstimatedCompletionDate *time.Time             `json:"estimated_completion_date"`
	Notes                   string                 `gorm:"type:varchar(1000)" json:"notes"`
	CreatedBy               uuid.UUID              `gorm:"type:uuid;not null" json:"created_by"`
	History                 []WorkflowHistoryEntry `gorm:"foreignKey:RecordID" json:"history,omitempty"`
}

// TableName returns the table name for GORM
func (ManufacturingRecord) TableName() string {
	return "manufacturing_records"
}

// NewManufacturingRecordParams carries the validated inputs for creation
type NewManufacturingRecordParams struct {
	BatchNumber             string
	ProductID               uuid.UUID
	SourceLotID             uuid.UUID
	BranchID                uuid.UUID
	TechnicianID            *uuid.UUID
	QuantityToProduce       int
	ConsumedWeight          valueobject.Weight
	WastageWeight           valueobject.Weight
	CostPerGram             decimal.Decimal
	Priority                Priority
	EstimatedCompletionDate *time.Time
	Notes                   string
	Actor                   Actor
}

// NewManufacturingRecord creates a record in the initial Draft status.
// The total manufacturing cost is always computed here from consumed
// weight and cost per gram; caller-supplied totals are never trusted.
func NewManufacturingRecord(p NewManufacturingRecordParams) (*ManufacturingRecord, error) {
	if p.BatchNumber == "" {
		return nil, shared.NewDomainError("INVALID_BATCH_NUMBER", "Batch number cannot be empty")
	}
	if p.ProductID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if p.SourceLotID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SOURCE_LOT", "Source lot ID cannot be empty")
	}
	if p.BranchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if p.QuantityToProduce < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity to produce must be at least 1")
	}
	if !p.ConsumedWeight.IsPositive() {
		return nil, shared.NewDomainError("INVALID_WEIGHT", "Consumed weight must be positive")
	}
	if p.CostPerGram.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Cost per gram cannot be negative")
	}
	if p.Priority == "" {
		p.Priority = PriorityNormal
	}
	if !p.Priority.IsValid() {
		return nil, shared.NewDomainError("INVALID_PRIORITY", "Unknown priority: "+p.Priority.String())
	}
	if p.Actor.UserID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Creating user is required")
	}

	record := &ManufacturingRecord{
		BaseAggregateRoot:       shared.NewBaseAggregateRoot(),
		BatchNumber:             p.BatchNumber,
		ProductID:               p.ProductID,
		SourceLotID:             p.SourceLotID,
		BranchID:                p.BranchID,
		TechnicianID:            p.TechnicianID,
		QuantityToProduce:       p.QuantityToProduce,
		ConsumedWeight:          p.ConsumedWeight.Grams().Round(valueobject.WeightScale),
		WastageWeight:           p.WastageWeight.Grams().Round(valueobject.WeightScale),
		CostPerGram:             p.CostPerGram.Round(2),
		Status:                  StatusDraft,
		Priority:                p.Priority,
		EstimatedCompletionDate: p.EstimatedCompletionDate,
		Notes:                   p.Notes,
		CreatedBy:               p.Actor.UserID,
	}
	record.TotalCost = record.ConsumedWeight.Mul(record.CostPerGram).Round(2)

	entry := newHistoryEntry(record.ID, nil, StatusDraft, EntryTypeCreated, p.Actor, p.Notes)
	record.History = append(record.History, entry)

	record.AddDomainEvent(NewRecordCreatedEvent(record))
	return record, nil
}

// ConsumedWeightValue returns the consumed weight as a value object
func (r *ManufacturingRecord) ConsumedWeightValue() valueobject.Weight {
	return valueobject.MustNewWeight(r.ConsumedWeight)
}

// AvailableTransitions returns the legal target statuses from the current status
func (r *ManufacturingRecord) AvailableTransitions() []ManufacturingStatus {
	return r.Status.AvailableTransitions()
}

// CanDelete returns true while the record is still pre-production.
// Past that point the batch has physically entered quality control and
// the ledger deduction can no longer be reversed by deletion.
func (r *ManufacturingRecord) CanDelete() bool {
	return r.Status.IsPreProduction()
}

// TransitionTo performs a generic workflow transition to the target status.
// Returns the appended history entry on success.
func (r *ManufacturingRecord) TransitionTo(target ManufacturingStatus, actor Actor, notes string) (*WorkflowHistoryEntry, error) {
	if !target.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Unknown status: "+target.String())
	}
	if !r.Status.CanTransitionTo(target) {
		return nil, shared.ErrInvalidTransition
	}
	return r.applyTransition(target, EntryTypeTransition, actor, notes)
}

// PerformQualityCheck records a quality check outcome. Only legal in the
// QualityCheck status: pass moves to FinalApproval, fail routes the batch
// back to InProgress for rework.
func (r *ManufacturingRecord) PerformQualityCheck(passed bool, actor Actor, notes string) (*WorkflowHistoryEntry, error) {
	if r.Status != StatusQualityCheck {
		return nil, shared.ErrInvalidTransition
	}
	target := StatusFinalApproval
	if !passed {
		target = StatusInProgress
	}
	return r.applyTransition(target, EntryTypeQualityCheck, actor, notes)
}

// PerformFinalApproval records an approval decision. Only legal in the
// FinalApproval status: approval completes the batch, rejection sends it
// back through quality check.
func (r *ManufacturingRecord) PerformFinalApproval(approved bool, actor Actor, notes string) (*WorkflowHistoryEntry, error) {
	if r.Status != StatusFinalApproval {
		return nil, shared.ErrInvalidTransition
	}
	target := StatusCompleted
	if !approved {
		target = StatusQualityCheck
	}
	return r.applyTransition(target, EntryTypeFinalApproval, actor, notes)
}

// Cancel abandons the batch from any non-terminal status
func (r *ManufacturingRecord) Cancel(actor Actor, notes string) (*WorkflowHistoryEntry, error) {
	return r.TransitionTo(StatusCancelled, actor, notes)
}

func (r *ManufacturingRecord) applyTransition(target ManufacturingStatus, entryType HistoryEntryType, actor Actor, notes string) (*WorkflowHistoryEntry, error) {
	if actor.UserID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Acting user is required")
	}

	from := r.Status
	r.Status = target
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	entry := newHistoryEntry(r.ID, &from, target, entryType, actor, notes)
	r.History = append(r.History, entry)

	r.AddDomainEvent(NewStatusTransitionedEvent(r, from, target, entryType))
	return &r.History[len(r.History)-1], nil
}
