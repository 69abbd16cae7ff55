package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	appmfg "github.com/goldpos/backend/internal/application/manufacturing"
	"github.com/goldpos/backend/internal/domain/shared"
)

// GormDirectory resolves products, branches and technicians from the shared
// POS database. These tables are owned by the catalog and identity
// subsystems; manufacturing only reads them.
type GormDirectory struct {
	db *gorm.DB
}

// NewGormDirectory creates a new GormDirectory
func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{db: db}
}

var _ appmfg.ProductDirectory = (*GormDirectory)(nil)
var _ appmfg.BranchDirectory = (*GormDirectory)(nil)
var _ appmfg.TechnicianDirectory = (*GormDirectory)(nil)

// GetProduct returns the manufacturing-relevant slice of a catalog product
func (d *GormDirectory) GetProduct(ctx context.Context, id uuid.UUID) (*appmfg.ProductInfo, error) {
	var info appmfg.ProductInfo
	err := d.db.WithContext(ctx).
		Table("products").
		Select("id, name, karat_type, weight").
		Where("id = ?", id).
		First(&info).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &info, nil
}

// BranchExists reports whether the branch exists
func (d *GormDirectory) BranchExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).
		Table("branches").
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// TechnicianExists reports whether the technician exists
func (d *GormDirectory) TechnicianExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).
		Table("technicians").
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
