package manufacturing

import (
	"context"

	"github.com/goldpos/backend/internal/domain/manufacturing"
)

// TransactionScope provides transactional access to manufacturing repositories.
// When a function is executed within a transaction scope, all repository operations
// will be part of the same database transaction and will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all manufacturing repositories
// within a transaction. All repositories returned share the same underlying
// database transaction.
//
// The weight ledger write (lot reserve/release) and the record write it pays
// for must always travel through the same Execute call: a record must never
// become durable without its reservation, and a deletion must never commit
// without its release.
type TransactionalRepositories interface {
	// LotRepo returns the raw gold lot repository scoped to the current transaction
	LotRepo() manufacturing.RawGoldLotRepository
	// RecordRepo returns the manufacturing record repository scoped to the current transaction
	RecordRepo() manufacturing.ManufacturingRecordRepository
	// HistoryRepo returns the workflow history repository scoped to the current transaction
	HistoryRepo() manufacturing.WorkflowHistoryRepository
	// ContributionRepo returns the contribution repository scoped to the current transaction
	ContributionRepo() manufacturing.ContributionRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	lotRepo          manufacturing.RawGoldLotRepository
	recordRepo       manufacturing.ManufacturingRecordRepository
	historyRepo      manufacturing.WorkflowHistoryRepository
	contributionRepo manufacturing.ContributionRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	lotRepo manufacturing.RawGoldLotRepository,
	recordRepo manufacturing.ManufacturingRecordRepository,
	historyRepo manufacturing.WorkflowHistoryRepository,
	contributionRepo manufacturing.ContributionRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		lotRepo:          lotRepo,
		recordRepo:       recordRepo,
		historyRepo:      historyRepo,
		contributionRepo: contributionRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// LotRepo returns the raw gold lot repository.
func (s *NoOpTransactionScope) LotRepo() manufacturing.RawGoldLotRepository {
	return s.lotRepo
}

// RecordRepo returns the manufacturing record repository.
func (s *NoOpTransactionScope) RecordRepo() manufacturing.ManufacturingRecordRepository {
	return s.recordRepo
}

// HistoryRepo returns the workflow history repository.
func (s *NoOpTransactionScope) HistoryRepo() manufacturing.WorkflowHistoryRepository {
	return s.historyRepo
}

// ContributionRepo returns the contribution repository.
func (s *NoOpTransactionScope) ContributionRepo() manufacturing.ContributionRepository {
	return s.contributionRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
