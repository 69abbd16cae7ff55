package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/goldpos/backend/internal/domain/manufacturing"
	"github.com/goldpos/backend/internal/domain/shared"
)

// GormContributionRepository implements ContributionRepository using GORM
type GormContributionRepository struct {
	db *gorm.DB
}

// NewGormContributionRepository creates a new GormContributionRepository
func NewGormContributionRepository(db *gorm.DB) *GormContributionRepository {
	return &GormContributionRepository{db: db}
}

// Create persists a new contribution
func (r *GormContributionRepository) Create(ctx context.Context, contribution *manufacturing.RawMaterialContribution) error {
	return r.db.WithContext(ctx).Create(contribution).Error
}

// FindByID retrieves a contribution by its ID
func (r *GormContributionRepository) FindByID(ctx context.Context, id uuid.UUID) (*manufacturing.RawMaterialContribution, error) {
	var contribution manufacturing.RawMaterialContribution
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&contribution).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &contribution, nil
}

// ListByRecord retrieves all contributions for a manufacturing record
func (r *GormContributionRepository) ListByRecord(ctx context.Context, recordID uuid.UUID) ([]manufacturing.RawMaterialContribution, error) {
	var contributions []manufacturing.RawMaterialContribution
	err := r.db.WithContext(ctx).
		Where("record_id = ?", recordID).
		Order("created_at ASC").
		Find(&contributions).Error
	if err != nil {
		return nil, err
	}
	return contributions, nil
}

// Delete removes a contribution
func (r *GormContributionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&manufacturing.RawMaterialContribution{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByRecord removes all contributions of a record
func (r *GormContributionRepository) DeleteByRecord(ctx context.Context, recordID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("record_id = ?", recordID).
		Delete(&manufacturing.RawMaterialContribution{}).Error
}

// Ensure GormContributionRepository implements ContributionRepository
var _ manufacturing.ContributionRepository = (*GormContributionRepository)(nil)
