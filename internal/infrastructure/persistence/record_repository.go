package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/goldpos/backend/internal/domain/manufacturing"
	"github.com/goldpos/backend/internal/domain/shared"
)

// GormManufacturingRecordRepository implements ManufacturingRecordRepository using GORM
type GormManufacturingRecordRepository struct {
	db *gorm.DB
}

// NewGormManufacturingRecordRepository creates a new GormManufacturingRecordRepository
func NewGormManufacturingRecordRepository(db *gorm.DB) *GormManufacturingRecordRepository {
	return &GormManufacturingRecordRepository{db: db}
}

// Create persists a new manufacturing record. History entries are
// persisted explicitly through the WorkflowHistoryRepository, never
// through the association.
func (r *GormManufacturingRecordRepository) Create(ctx context.Context, record *manufacturing.ManufacturingRecord) error {
	return r.db.WithContext(ctx).Omit("History").Create(record).Error
}

// FindByID retrieves a record by its ID
func (r *GormManufacturingRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*manufacturing.ManufacturingRecord, error) {
	var record manufacturing.ManufacturingRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// List retrieves records with filtering and pagination
func (r *GormManufacturingRecordRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[manufacturing.ManufacturingRecord], error) {
	var records []manufacturing.ManufacturingRecord
	var total int64

	query := r.db.WithContext(ctx).Model(&manufacturing.ManufacturingRecord{})
	query = r.applyRecordFilters(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[manufacturing.ManufacturingRecord]{}, err
	}

	query = applyFilter(query, filter, ManufacturingRecordSortFields)
	if err := query.Find(&records).Error; err != nil {
		return shared.Paginated[manufacturing.ManufacturingRecord]{}, err
	}

	return shared.NewPaginated(records, total, filter.Page, filter.PageSize), nil
}

// ListByProduct retrieves all records for a product
func (r *GormManufacturingRecordRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]manufacturing.ManufacturingRecord, error) {
	var records []manufacturing.ManufacturingRecord
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ListByBatchNumber retrieves records by exact batch number
func (r *GormManufacturingRecordRepository) ListByBatchNumber(ctx context.Context, batchNumber string) ([]manufacturing.ManufacturingRecord, error) {
	var records []manufacturing.ManufacturingRecord
	err := r.db.WithContext(ctx).
		Where("batch_number = ?", batchNumber).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// SearchByBatchPrefix retrieves records whose batch number starts with the prefix
func (r *GormManufacturingRecordRepository) SearchByBatchPrefix(ctx context.Context, prefix string) ([]manufacturing.ManufacturingRecord, error) {
	var records []manufacturing.ManufacturingRecord
	err := r.db.WithContext(ctx).
		Where("batch_number LIKE ?", prefix+"%").
		Order("batch_number ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ListByBranch retrieves all records for a branch
func (r *GormManufacturingRecordRepository) ListByBranch(ctx context.Context, branchID uuid.UUID) ([]manufacturing.ManufacturingRecord, error) {
	var records []manufacturing.ManufacturingRecord
	err := r.db.WithContext(ctx).
		Where("branch_id = ?", branchID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Summary returns count and total cost grouped by status
func (r *GormManufacturingRecordRepository) Summary(ctx context.Context, productID *uuid.UUID) ([]manufacturing.StatusSummary, error) {
	var rows []manufacturing.StatusSummary
	query := r.db.WithContext(ctx).
		Model(&manufacturing.ManufacturingRecord{}).
		Select("status, COUNT(*) as count, COALESCE(SUM(total_cost), 0) as total_cost").
		Group("status")
	if productID != nil {
		query = query.Where("product_id = ?", *productID)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SaveWithLock persists a record with an optimistic-lock version check
func (r *GormManufacturingRecordRepository) SaveWithLock(ctx context.Context, record *manufacturing.ManufacturingRecord) error {
	result := r.db.WithContext(ctx).
		Model(record).
		Where("id = ? AND version = ?", record.ID, record.Version-1).
		Updates(map[string]interface{}{
			"status":                    record.Status,
			"priority":                  record.Priority,
			"technician_id":             record.TechnicianID,
			"estimated_completion_date": record.EstimatedCompletionDate,
			"notes":                     record.Notes,
			"consumed_weight":           record.ConsumedWeight,
			"wastage_weight":            record.WastageWeight,
			"total_cost":                record.TotalCost,
			"version":                   record.Version,
			"updated_at":                record.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete removes a record permanently
func (r *GormManufacturingRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&manufacturing.ManufacturingRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormManufacturingRecordRepository) applyRecordFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "branch_id":
			query = query.Where("branch_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "batch_number":
			query = query.Where("batch_number = ?", value)
		case "batch_prefix":
			if prefix, ok := value.(string); ok {
				query = query.Where("batch_number LIKE ?", prefix+"%")
			}
		}
	}
	if filter.Search != "" {
		query = query.Where("batch_number LIKE ?", "%"+filter.Search+"%")
	}
	return query
}

// Ensure GormManufacturingRecordRepository implements ManufacturingRecordRepository
var _ manufacturing.ManufacturingRecordRepository = (*GormManufacturingRecordRepository)(nil)
