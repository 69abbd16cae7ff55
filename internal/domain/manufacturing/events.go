package manufacturing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/goldpos/backend/internal/domain/shared"
	"github.com/goldpos/backend/internal/domain/shared/valueobject"
)

// Aggregate type constants
const (
	AggregateTypeRawGoldLot          = "RawGoldLot"
	AggregateTypeManufacturingRecord = "ManufacturingRecord"
)

// Event type constants
const (
	EventTypeWeightReserved     = "WeightReserved"
	EventTypeWeightReleased     = "WeightReleased"
	EventTypeRecordCreated      = "ManufacturingRecordCreated"
	EventTypeRecordDeleted      = "ManufacturingRecordDeleted"
	EventTypeStatusTransitioned = "ManufacturingStatusTransitioned"
)

// WeightReservedEvent is raised when weight is deducted from a lot
type WeightReservedEvent struct {
	shared.BaseDomainEvent
	LotID           uuid.UUID       `json:"lot_id"`
	BranchID        uuid.UUID       `json:"branch_id"`
	Weight          decimal.Decimal `json:"weight"`
	RemainingWeight decimal.Decimal `json:"remaining_weight"`
}

// NewWeightReservedEvent creates a new WeightReservedEvent
func NewWeightReservedEvent(lot *RawGoldLot, w valueobject.Weight) *WeightReservedEvent {
	return &WeightReservedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWeightReserved, lot.ID, AggregateTypeRawGoldLot),
		LotID:           lot.ID,
		BranchID:        lot.BranchID,
		Weight:          w.Grams(),
		RemainingWeight: lot.RemainingWeight().Grams(),
	}
}

// EventType returns the event type name
func (e *WeightReservedEvent) EventType() string {
	return EventTypeWeightReserved
}

// WeightReleasedEvent is raised when reserved weight is credited back to a lot
type WeightReleasedEvent struct {
	shared.BaseDomainEvent
	LotID           uuid.UUID       `json:"lot_id"`
	BranchID        uuid.UUID       `json:"branch_id"`
	Weight          decimal.Decimal `json:"weight"`
	RemainingWeight decimal.Decimal `json:"remaining_weight"`
}

// NewWeightReleasedEvent creates a new WeightReleasedEvent
func NewWeightReleasedEvent(lot *RawGoldLot, w valueobject.Weight) *WeightReleasedEvent {
	return &WeightReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWeightReleased, lot.ID, AggregateTypeRawGoldLot),
		LotID:           lot.ID,
		BranchID:        lot.BranchID,
		Weight:          w.Grams(),
		RemainingWeight: lot.RemainingWeight().Grams(),
	}
}

// EventType returns the event type name
func (e *WeightReleasedEvent) EventType() string {
	return EventTypeWeightReleased
}

// RecordCreatedEvent is raised when a manufacturing record enters Draft
type RecordCreatedEvent struct {
	shared.BaseDomainEvent
	RecordID       uuid.UUID       `json:"record_id"`
	BatchNumber    string          `json:"batch_number"`
	ProductID      uuid.UUID       `json:"product_id"`
	SourceLotID    uuid.UUID       `json:"source_lot_id"`
	ConsumedWeight decimal.Decimal `json:"consumed_weight"`
	TotalCost      decimal.Decimal `json:"total_cost"`
}

// NewRecordCreatedEvent creates a new RecordCreatedEvent
func NewRecordCreatedEvent(record *ManufacturingRecord) *RecordCreatedEvent {
	return &RecordCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRecordCreated, record.ID, AggregateTypeManufacturingRecord),
		RecordID:        record.ID,
		BatchNumber:     record.BatchNumber,
		ProductID:       record.ProductID,
		SourceLotID:     record.SourceLotID,
		ConsumedWeight:  record.ConsumedWeight,
		TotalCost:       record.TotalCost,
	}
}

// EventType returns the event type name
func (e *RecordCreatedEvent) EventType() string {
	return EventTypeRecordCreated
}

// RecordDeletedEvent is raised when a pre-production record is deleted
// and its ledger reservation reversed
type RecordDeletedEvent struct {
	shared.BaseDomainEvent
	RecordID       uuid.UUID       `json:"record_id"`
	BatchNumber    string          `json:"batch_number"`
	SourceLotID    uuid.UUID       `json:"source_lot_id"`
	ReleasedWeight decimal.Decimal `json:"released_weight"`
}

// NewRecordDeletedEvent creates a new RecordDeletedEvent
func NewRecordDeletedEvent(record *ManufacturingRecord) *RecordDeletedEvent {
	return &RecordDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRecordDeleted, record.ID, AggregateTypeManufacturingRecord),
		RecordID:        record.ID,
		BatchNumber:     record.BatchNumber,
		SourceLotID:     record.SourceLotID,
		ReleasedWeight:  record.ConsumedWeight,
	}
}

// EventType returns the event type name
func (e *RecordDeletedEvent) EventType() string {
	return EventTypeRecordDeleted
}

// StatusTransitionedEvent is raised on every successful workflow transition
type StatusTransitionedEvent struct {
	shared.BaseDomainEvent
	RecordID    uuid.UUID           `json:"record_id"`
	BatchNumber string              `json:"batch_number"`
	FromStatus  ManufacturingStatus `json:"from_status"`
	ToStatus    ManufacturingStatus `json:"to_status"`
	EntryType   HistoryEntryType    `json:"entry_type"`
}

// NewStatusTransitionedEvent creates a new StatusTransitionedEvent
func NewStatusTransitionedEvent(record *ManufacturingRecord, from, to ManufacturingStatus, entryType HistoryEntryType) *StatusTransitionedEvent {
	return &StatusTransitionedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStatusTransitioned, record.ID, AggregateTypeManufacturingRecord),
		RecordID:        record.ID,
		BatchNumber:     record.BatchNumber,
		FromStatus:      from,
		ToStatus:        to,
		EntryType:       entryType,
	}
}

// EventType returns the event type name
func (e *StatusTransitionedEvent) EventType() string {
	return EventTypeStatusTransitioned
}
