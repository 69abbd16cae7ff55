package manufacturing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/goldpos/backend/internal/domain/shared"
)

// RawGoldLotRepository defines persistence operations for the weight ledger
type RawGoldLotRepository interface {
	// FindByID retrieves a lot by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*RawGoldLot, error)

	// FindByPurchaseOrderItem retrieves the lot backing a purchase order line item
	FindByPurchaseOrderItem(ctx context.Context, itemID uuid.UUID) (*RawGoldLot, error)

	// List retrieves lots with filtering and pagination
	List(ctx context.Context, filter shared.Filter) (shared.Paginated[RawGoldLot], error)

	// ListAvailable retrieves lots with unconsumed weight, optionally
	// narrowed to a branch and karat type
	ListAvailable(ctx context.Context, branchID *uuid.UUID, karat *KaratType) ([]RawGoldLot, error)

	// Save persists a lot without a version check
	Save(ctx context.Context, lot *RawGoldLot) error

	// SaveWithLock persists a lot with an optimistic-lock version check.
	// Returns shared.ErrConcurrencyConflict if the version has moved on.
	SaveWithLock(ctx context.Context, lot *RawGoldLot) error
}

// StatusSummary is one row of the per-status aggregation
type StatusSummary struct {
	Status    ManufacturingStatus `json:"status"`
	Count     int64               `json:"count"`
	TotalCost decimal.Decimal     `json:"total_cost"`
}

// ManufacturingRecordRepository defines persistence operations for manufacturing records
type ManufacturingRecordRepository interface {
	// Create persists a new manufacturing record
	Create(ctx context.Context, record *ManufacturingRecord) error

	// FindByID retrieves a record by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*ManufacturingRecord, error)

	// List retrieves records with filtering and pagination. Supported
	// filter keys: product_id, branch_id, status, batch_number (exact),
	// batch_prefix (prefix match).
	List(ctx context.Context, filter shared.Filter) (shared.Paginated[ManufacturingRecord], error)

	// ListByProduct retrieves all records for a product
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]ManufacturingRecord, error)

	// ListByBatchNumber retrieves records by exact batch number
	ListByBatchNumber(ctx context.Context, batchNumber string) ([]ManufacturingRecord, error)

	// SearchByBatchPrefix retrieves records whose batch number starts with the prefix
	SearchByBatchPrefix(ctx context.Context, prefix string) ([]ManufacturingRecord, error)

	// ListByBranch retrieves all records for a branch
	ListByBranch(ctx context.Context, branchID uuid.UUID) ([]ManufacturingRecord, error)

	// Summary returns count and total cost grouped by status,
	// optionally filtered by product
	Summary(ctx context.Context, productID *uuid.UUID) ([]StatusSummary, error)

	// SaveWithLock persists a record with an optimistic-lock version check.
	// Returns shared.ErrConcurrencyConflict if the version has moved on.
	SaveWithLock(ctx context.Context, record *ManufacturingRecord) error

	// Delete removes a record permanently
	Delete(ctx context.Context, id uuid.UUID) error
}

// WorkflowHistoryRepository defines persistence for the append-only audit trail
type WorkflowHistoryRepository interface {
	// Create appends a history entry; entries are never updated
	Create(ctx context.Context, entry *WorkflowHistoryEntry) error

	// ListByRecord retrieves all entries for a record ordered by creation time ascending
	ListByRecord(ctx context.Context, recordID uuid.UUID) ([]WorkflowHistoryEntry, error)

	// DeleteByRecord purges the trail of a deleted pre-production record
	DeleteByRecord(ctx context.Context, recordID uuid.UUID) error
}

// ContributionRepository defines persistence for the composition tracker
type ContributionRepository interface {
	// Create persists a new contribution
	Create(ctx context.Context, contribution *RawMaterialContribution) error

	// FindByID retrieves a contribution by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*RawMaterialContribution, error)

	// ListByRecord retrieves all contributions for a manufacturing record
	ListByRecord(ctx context.Context, recordID uuid.UUID) ([]RawMaterialContribution, error)

	// Delete removes a contribution
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByRecord removes all contributions of a deleted record
	DeleteByRecord(ctx context.Context, recordID uuid.UUID) error
}
