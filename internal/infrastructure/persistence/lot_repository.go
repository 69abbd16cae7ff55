package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/goldpos/backend/internal/domain/manufacturing"
	"github.com/goldpos/backend/internal/domain/shared"
)

// GormRawGoldLotRepository implements RawGoldLotRepository using GORM
type GormRawGoldLotRepository struct {
	db *gorm.DB
}

// NewGormRawGoldLotRepository creates a new GormRawGoldLotRepository
func NewGormRawGoldLotRepository(db *gorm.DB) *GormRawGoldLotRepository {
	return &GormRawGoldLotRepository{db: db}
}

// FindByID retrieves a lot by its ID
func (r *GormRawGoldLotRepository) FindByID(ctx context.Context, id uuid.UUID) (*manufacturing.RawGoldLot, error) {
	var lot manufacturing.RawGoldLot
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&lot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &lot, nil
}

// FindByPurchaseOrderItem retrieves the lot backing a purchase order line item
func (r *GormRawGoldLotRepository) FindByPurchaseOrderItem(ctx context.Context, itemID uuid.UUID) (*manufacturing.RawGoldLot, error) {
	var lot manufacturing.RawGoldLot
	err := r.db.WithContext(ctx).Where("purchase_order_item_id = ?", itemID).First(&lot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &lot, nil
}

// List retrieves lots with filtering and pagination
func (r *GormRawGoldLotRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[manufacturing.RawGoldLot], error) {
	var lots []manufacturing.RawGoldLot
	var total int64

	query := r.db.WithContext(ctx).Model(&manufacturing.RawGoldLot{})
	query = r.applyLotFilters(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[manufacturing.RawGoldLot]{}, err
	}

	query = applyFilter(query, filter, RawGoldLotSortFields)
	if err := query.Find(&lots).Error; err != nil {
		return shared.Paginated[manufacturing.RawGoldLot]{}, err
	}

	return shared.NewPaginated(lots, total, filter.Page, filter.PageSize), nil
}

// ListAvailable retrieves lots that still have unconsumed weight
func (r *GormRawGoldLotRepository) ListAvailable(ctx context.Context, branchID *uuid.UUID, karat *manufacturing.KaratType) ([]manufacturing.RawGoldLot, error) {
	var lots []manufacturing.RawGoldLot
	query := r.db.WithContext(ctx).
		Where("weight_received > weight_consumed")
	if branchID != nil {
		query = query.Where("branch_id = ?", *branchID)
	}
	if karat != nil {
		query = query.Where("karat_type = ?", *karat)
	}
	if err := query.Order("created_at ASC").Find(&lots).Error; err != nil {
		return nil, err
	}
	return lots, nil
}

// Save persists a lot without a version check
func (r *GormRawGoldLotRepository) Save(ctx context.Context, lot *manufacturing.RawGoldLot) error {
	return r.db.WithContext(ctx).Save(lot).Error
}

// SaveWithLock persists a lot with an optimistic-lock version check.
// The aggregate has already incremented its version; the guard matches
// the version the caller read.
func (r *GormRawGoldLotRepository) SaveWithLock(ctx context.Context, lot *manufacturing.RawGoldLot) error {
	result := r.db.WithContext(ctx).
		Model(lot).
		Where("id = ? AND version = ?", lot.ID, lot.Version-1).
		Updates(map[string]interface{}{
			"weight_ordered":  lot.WeightOrdered,
			"weight_received": lot.WeightReceived,
			"weight_consumed": lot.WeightConsumed,
			"version":         lot.Version,
			"updated_at":      lot.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

func (r *GormRawGoldLotRepository) applyLotFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "branch_id":
			query = query.Where("branch_id = ?", value)
		case "karat_type":
			query = query.Where("karat_type = ?", value)
		case "purchase_order_id":
			query = query.Where("purchase_order_id = ?", value)
		}
	}
	return query
}

// Ensure GormRawGoldLotRepository implements RawGoldLotRepository
var _ manufacturing.RawGoldLotRepository = (*GormRawGoldLotRepository)(nil)
