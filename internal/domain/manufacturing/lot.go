package manufacturing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/goldpos/backend/internal/domain/shared"
	"github.com/goldpos/backend/internal/domain/shared/valueobject"
)

// KaratType represents the purity grade of a raw gold lot
type KaratType string

const (
	Karat18 KaratType = "18K"
	Karat21 KaratType = "21K"
	Karat22 KaratType = "22K"
	Karat24 KaratType = "24K"
)

// IsValid checks if the karat type is a valid KaratType
func (k KaratType) IsValid() bool {
	switch k {
	case Karat18, Karat21, Karat22, Karat24:
		return true
	}
	return false
}

// String returns the string representation of KaratType
func (k KaratType) String() string {
	return string(k)
}

// RawGoldLot is the weight ledger aggregate: one purchase-order line item
// of raw gold and the cumulative weight manufacturing has drawn from it.
// The ledger is the only component permitted to mutate WeightConsumed;
// ordered/received weights are owned by the purchasing subsystem.
type RawGoldLot struct {
	shared.BaseAggregateRoot
	PurchaseOrderID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchase_order_id"`
	PurchaseOrderItemID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"purchase_order_item_id"`
	BranchID            uuid.UUID       `gorm:"type:uuid;not null;index" json:"branch_id"`
	KaratType           KaratType       `gorm:"type:varchar(10);not null" json:"karat_type"`
	WeightOrdered       decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"weight_ordered"`
	WeightReceived      decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"weight_received"`
	WeightConsumed      decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0" json:"weight_consumed"`
}

// TableName returns the table name for GORM
func (RawGoldLot) TableName() string {
	return "raw_gold_lots"
}

// NewRawGoldLot creates a new raw gold lot with zero consumed weight
func NewRawGoldLot(purchaseOrderID, purchaseOrderItemID, branchID uuid.UUID, karat KaratType, ordered, received decimal.Decimal) (*RawGoldLot, error) {
	if purchaseOrderID == uuid.Nil || purchaseOrderItemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Purchase order and item IDs are required")
	}
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if !karat.IsValid() {
		return nil, shared.NewDomainError("INVALID_KARAT", "Unknown karat type: "+karat.String())
	}
	if ordered.IsNegative() || received.IsNegative() {
		return nil, shared.NewDomainError("INVALID_WEIGHT", "Lot weights cannot be negative")
	}

	return &RawGoldLot{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		PurchaseOrderID:     purchaseOrderID,
		PurchaseOrderItemID: purchaseOrderItemID,
		BranchID:            branchID,
		KaratType:           karat,
		WeightOrdered:       ordered.Round(valueobject.WeightScale),
		WeightReceived:      received.Round(valueobject.WeightScale),
		WeightConsumed:      decimal.Zero,
	}, nil
}

// RemainingWeight returns the unconsumed weight still available on the lot
func (l *RawGoldLot) RemainingWeight() valueobject.Weight {
	remaining := l.WeightReceived.Sub(l.WeightConsumed)
	if remaining.IsNegative() {
		// Guarded against by Reserve/Release; never expose a negative balance
		return valueobject.ZeroWeight()
	}
	return valueobject.MustNewWeight(remaining)
}

// CanSupply returns true if the lot can cover the requested weight.
// Pure read with exact decimal comparison; equality counts as sufficient.
func (l *RawGoldLot) CanSupply(w valueobject.Weight) bool {
	return l.RemainingWeight().SufficientFor(w)
}

// Reserve atomically validates sufficiency and increments consumed weight.
// The caller must persist the lot with a version-guarded save so a racing
// reservation surfaces as a concurrency conflict rather than a double spend.
func (l *RawGoldLot) Reserve(w valueobject.Weight) error {
	if !w.IsPositive() {
		return shared.NewDomainError("INVALID_WEIGHT", "Reserved weight must be positive")
	}
	if !l.CanSupply(w) {
		return shared.ErrInsufficientWeight
	}

	l.WeightConsumed = l.WeightConsumed.Add(w.Grams())
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	l.AddDomainEvent(NewWeightReservedEvent(l, w))
	return nil
}

// Release credits previously reserved weight back to the lot.
// A release that would drive consumed weight negative indicates a broken
// reserve/release pairing and returns the fatal ledger corruption error
// without mutating anything.
func (l *RawGoldLot) Release(w valueobject.Weight) error {
	if !w.IsPositive() {
		return shared.NewDomainError("INVALID_WEIGHT", "Released weight must be positive")
	}
	if l.WeightConsumed.LessThan(w.Grams()) {
		return shared.ErrLedgerCorruption
	}

	l.WeightConsumed = l.WeightConsumed.Sub(w.Grams())
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	l.AddDomainEvent(NewWeightReleasedEvent(l, w))
	return nil
}
