package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/goldpos/backend/internal/domain/manufacturing"
)

// GormWorkflowHistoryRepository implements WorkflowHistoryRepository using GORM
type GormWorkflowHistoryRepository struct {
	db *gorm.DB
}

// NewGormWorkflowHistoryRepository creates a new GormWorkflowHistoryRepository
func NewGormWorkflowHistoryRepository(db *gorm.DB) *GormWorkflowHistoryRepository {
	return &GormWorkflowHistoryRepository{db: db}
}

// Create appends a history entry
func (r *GormWorkflowHistoryRepository) Create(ctx context.Context, entry *manufacturing.WorkflowHistoryEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByRecord retrieves all entries for a record, oldest first
func (r *GormWorkflowHistoryRepository) ListByRecord(ctx context.Context, recordID uuid.UUID) ([]manufacturing.WorkflowHistoryEntry, error) {
	var entries []manufacturing.WorkflowHistoryEntry
	err := r.db.WithContext(ctx).
		Where("record_id = ?", recordID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// DeleteByRecord purges all entries for a record
func (r *GormWorkflowHistoryRepository) DeleteByRecord(ctx context.Context, recordID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("record_id = ?", recordID).
		Delete(&manufacturing.WorkflowHistoryEntry{}).Error
}

// Ensure GormWorkflowHistoryRepository implements WorkflowHistoryRepository
var _ manufacturing.WorkflowHistoryRepository = (*GormWorkflowHistoryRepository)(nil)
