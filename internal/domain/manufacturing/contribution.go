package manufacturing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/goldpos/backend/internal/domain/shared"
	"github.com/goldpos/backend/internal/domain/shared/valueobject"
)

// ContributionSourceType identifies where a contributing raw material came from
type ContributionSourceType string

const (
	SourcePurchaseOrder ContributionSourceType = "PURCHASE_ORDER"
	SourceManufacturing ContributionSourceType = "MANUFACTURING"
	SourceTransfer      ContributionSourceType = "TRANSFER"
)

// IsValid checks if the source type is a valid ContributionSourceType
func (t ContributionSourceType) IsValid() bool {
	switch t {
	case SourcePurchaseOrder, SourceManufacturing, SourceTransfer:
		return true
	}
	return false
}

// String returns the string representation of ContributionSourceType
func (t ContributionSourceType) String() string {
	return string(t)
}

// RawMaterialContribution declares one contributing raw material of a
// multi-source batch, with its cost and percentage share. Used purely for
// costing and traceability; independent of the single-source weight ledger.
type RawMaterialContribution struct {
	shared.BaseEntity
	RecordID            uuid.UUID              `gorm:"type:uuid;not null;index" json:"record_id"`
	RawProductID        uuid.UUID              `gorm:"type:uuid;not null" json:"raw_product_id"`
	QuantityUsed        decimal.Decimal        `gorm:"type:decimal(12,3);not null" json:"quantity_used"`
	UnitCost            decimal.Decimal        `gorm:"type:decimal(12,2);not null" json:"unit_cost"`
	ContributionPercent decimal.Decimal        `gorm:"type:decimal(5,2);not null" json:"contribution_percent"`
	SourceType          ContributionSourceType `gorm:"type:varchar(20);not null" json:"source_type"`
	SourceID            uuid.UUID              `gorm:"type:uuid;not null" json:"source_id"`
	SourceOwnershipID   *uuid.UUID             `gorm:"type:uuid" json:"source_ownership_id"`
	Notes               string                 `gorm:"type:varchar(500)" json:"notes"`
}

// TableName returns the table name for GORM
func (RawMaterialContribution) TableName() string {
	return "raw_material_contributions"
}

var percentHundred = decimal.NewFromInt(100)

// NewRawMaterialContribution creates a validated contribution entry
func NewRawMaterialContribution(recordID, rawProductID uuid.UUID, quantityUsed valueobject.Weight, unitCost, percent decimal.Decimal, sourceType ContributionSourceType, sourceID uuid.UUID, sourceOwnershipID *uuid.UUID, notes string) (*RawMaterialContribution, error) {
	if recordID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RECORD", "Manufacturing record ID cannot be empty")
	}
	if rawProductID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Raw product ID cannot be empty")
	}
	if !quantityUsed.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity used must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	if percent.IsNegative() || percent.GreaterThan(percentHundred) {
		return nil, shared.NewDomainError("INVALID_PERCENTAGE", "Contribution percentage must be between 0 and 100")
	}
	if !sourceType.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE_TYPE", "Unknown source type: "+sourceType.String())
	}
	if sourceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Source ID cannot be empty")
	}

	return &RawMaterialContribution{
		BaseEntity:          shared.NewBaseEntity(),
		RecordID:            recordID,
		RawProductID:        rawProductID,
		QuantityUsed:        quantityUsed.Grams().Round(valueobject.WeightScale),
		UnitCost:            unitCost.Round(2),
		ContributionPercent: percent.Round(2),
		SourceType:          sourceType,
		SourceID:            sourceID,
		SourceOwnershipID:   sourceOwnershipID,
		Notes:               notes,
	}, nil
}

// TotalCost returns quantityUsed x unitCost for this contribution
func (c *RawMaterialContribution) TotalCost() decimal.Decimal {
	return c.QuantityUsed.Mul(c.UnitCost).Round(2)
}
