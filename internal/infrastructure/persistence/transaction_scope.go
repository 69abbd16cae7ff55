package persistence

import (
	"context"

	"gorm.io/gorm"

	appmfg "github.com/goldpos/backend/internal/application/manufacturing"
	"github.com/goldpos/backend/internal/domain/manufacturing"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appmfg.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// LotRepo returns the raw gold lot repository scoped to the current transaction.
func (r *gormTransactionalRepositories) LotRepo() manufacturing.RawGoldLotRepository {
	return NewGormRawGoldLotRepository(r.tx)
}

// RecordRepo returns the manufacturing record repository scoped to the current transaction.
func (r *gormTransactionalRepositories) RecordRepo() manufacturing.ManufacturingRecordRepository {
	return NewGormManufacturingRecordRepository(r.tx)
}

// HistoryRepo returns the workflow history repository scoped to the current transaction.
func (r *gormTransactionalRepositories) HistoryRepo() manufacturing.WorkflowHistoryRepository {
	return NewGormWorkflowHistoryRepository(r.tx)
}

// ContributionRepo returns the contribution repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ContributionRepo() manufacturing.ContributionRepository {
	return NewGormContributionRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appmfg.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appmfg.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
