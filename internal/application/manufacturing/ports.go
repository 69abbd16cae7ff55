package manufacturing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/goldpos/backend/internal/domain/manufacturing"
)

// ProductInfo is the slice of the product catalog this subsystem needs
type ProductInfo struct {
	ID        uuid.UUID
	Name      string
	KaratType manufacturing.KaratType
	Weight    decimal.Decimal
}

// ProductDirectory looks up products owned by the catalog subsystem
type ProductDirectory interface {
	// GetProduct returns product info or shared.ErrNotFound
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductInfo, error)
}

// BranchDirectory looks up branches owned by the identity subsystem
type BranchDirectory interface {
	// BranchExists reports whether the branch exists
	BranchExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// TechnicianDirectory looks up technicians owned by the identity subsystem
type TechnicianDirectory interface {
	// TechnicianExists reports whether the technician exists
	TechnicianExists(ctx context.Context, id uuid.UUID) (bool, error)
}
