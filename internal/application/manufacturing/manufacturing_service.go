package manufacturing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/goldpos/backend/internal/domain/manufacturing"
	"github.com/goldpos/backend/internal/domain/shared"
	"github.com/goldpos/backend/internal/domain/shared/valueobject"
)

// ManufacturingService is the orchestrator: the one entry point callers use
// to create and delete manufacturing batches. It couples the weight ledger
// write and the record write under a single transaction boundary, so a
// record can never become durable without its lot reservation and a
// deletion can never commit without the matching release.
type ManufacturingService struct {
	recordRepo     manufacturing.ManufacturingRecordRepository
	txScope        TransactionScope
	products       ProductDirectory
	branches       BranchDirectory
	technicians    TechnicianDirectory
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewManufacturingService creates a new ManufacturingService
func NewManufacturingService(
	recordRepo manufacturing.ManufacturingRecordRepository,
	txScope TransactionScope,
	products ProductDirectory,
	branches BranchDirectory,
	technicians TechnicianDirectory,
	logger *zap.Logger,
) *ManufacturingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ManufacturingService{
		recordRepo:  recordRepo,
		txScope:     txScope,
		products:    products,
		branches:    branches,
		technicians: technicians,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ManufacturingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create validates the request, reserves the consumed weight on the source
// lot and persists the record plus its creation history entry in one
// transaction. If the reservation loses a race to a concurrent creation the
// whole transaction is retried once against fresh lot state; a reservation
// that fails on sufficiency surfaces as InsufficientWeight with nothing
// persisted.
func (s *ManufacturingService) Create(ctx context.Context, req CreateRecordRequest, actor manufacturing.Actor) (*manufacturing.ManufacturingRecord, error) {
	consumed, err := newWeight(req.ConsumedWeight)
	if err != nil {
		return nil, err
	}
	wastage, err := newWeight(req.WastageWeight)
	if err != nil {
		return nil, err
	}

	product, err := s.products.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_PRODUCT", "Product does not exist")
		}
		return nil, err
	}

	if exists, err := s.branches.BranchExists(ctx, req.BranchID); err != nil {
		return nil, err
	} else if !exists {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch does not exist")
	}

	if req.TechnicianID != nil {
		if exists, err := s.technicians.TechnicianExists(ctx, *req.TechnicianID); err != nil {
			return nil, err
		} else if !exists {
			return nil, shared.NewDomainError("INVALID_TECHNICIAN", "Technician does not exist")
		}
	}

	record, err := s.createOnce(ctx, req, product, consumed, wastage, actor)
	if errors.Is(err, shared.ErrConcurrencyConflict) {
		s.logger.Debug("Creation lost a reservation race, retrying once",
			zap.String("source_lot_id", req.SourceLotID.String()),
		)
		record, err = s.createOnce(ctx, req, product, consumed, wastage, actor)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("Manufacturing record created",
		zap.String("record_id", record.ID.String()),
		zap.String("batch_number", record.BatchNumber),
		zap.String("consumed_weight", record.ConsumedWeight.String()),
	)
	return record, nil
}

func (s *ManufacturingService) createOnce(ctx context.Context, req CreateRecordRequest, product *ProductInfo, consumed, wastage valueobject.Weight, actor manufacturing.Actor) (*manufacturing.ManufacturingRecord, error) {
	var result *manufacturing.ManufacturingRecord
	var events []shared.DomainEvent

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		lot, err := repos.LotRepo().FindByID(ctx, req.SourceLotID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("INVALID_SOURCE_LOT", "Source lot does not exist")
			}
			return err
		}
		if lot.KaratType != product.KaratType {
			return shared.NewDomainError("KARAT_MISMATCH", "Source lot karat does not match the product")
		}

		if err := lot.Reserve(consumed); err != nil {
			return err
		}
		if err := repos.LotRepo().SaveWithLock(ctx, lot); err != nil {
			return err
		}

		record, err := manufacturing.NewManufacturingRecord(manufacturing.NewManufacturingRecordParams{
			BatchNumber:             req.BatchNumber,
			ProductID:               req.ProductID,
			SourceLotID:             req.SourceLotID,
			BranchID:                req.BranchID,
			TechnicianID:            req.TechnicianID,
			QuantityToProduce:       req.QuantityToProduce,
			ConsumedWeight:          consumed,
			WastageWeight:           wastage,
			CostPerGram:             req.CostPerGram,
			Priority:                req.Priority,
			EstimatedCompletionDate: req.EstimatedCompletionDate,
			Notes:                   req.Notes,
			Actor:                   actor,
		})
		if err != nil {
			return err
		}

		if err := repos.RecordRepo().Create(ctx, record); err != nil {
			return err
		}
		for i := range record.History {
			if err := repos.HistoryRepo().Create(ctx, &record.History[i]); err != nil {
				return err
			}
		}

		events = append(lot.GetDomainEvents(), record.GetDomainEvents()...)
		lot.ClearDomainEvents()
		record.ClearDomainEvents()
		result = record
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, events)
	return result, nil
}

// Delete removes a pre-production record, releasing exactly the weight its
// creation reserved back to the source lot, and purging the history trail
// and contributions, all in one transaction. Records past the
// pre-production stage fail with NotDeletable.
func (s *ManufacturingService) Delete(ctx context.Context, recordID uuid.UUID) error {
	err := s.deleteOnce(ctx, recordID)
	if errors.Is(err, shared.ErrConcurrencyConflict) {
		err = s.deleteOnce(ctx, recordID)
	}
	if errors.Is(err, shared.ErrLedgerCorruption) {
		s.logger.Error("Ledger corruption detected while deleting record",
			zap.String("record_id", recordID.String()),
		)
	}
	return err
}

func (s *ManufacturingService) deleteOnce(ctx context.Context, recordID uuid.UUID) error {
	var events []shared.DomainEvent

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		record, err := repos.RecordRepo().FindByID(ctx, recordID)
		if err != nil {
			return err
		}
		if !record.CanDelete() {
			return shared.ErrNotDeletable
		}

		lot, err := repos.LotRepo().FindByID(ctx, record.SourceLotID)
		if err != nil {
			return err
		}
		if err := lot.Release(record.ConsumedWeightValue()); err != nil {
			return err
		}
		if err := repos.LotRepo().SaveWithLock(ctx, lot); err != nil {
			return err
		}

		if err := repos.HistoryRepo().DeleteByRecord(ctx, recordID); err != nil {
			return err
		}
		if err := repos.ContributionRepo().DeleteByRecord(ctx, recordID); err != nil {
			return err
		}
		if err := repos.RecordRepo().Delete(ctx, recordID); err != nil {
			return err
		}

		events = append(lot.GetDomainEvents(), manufacturing.NewRecordDeletedEvent(record))
		lot.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return err
	}

	s.publishEvents(ctx, events)
	s.logger.Info("Manufacturing record deleted", zap.String("record_id", recordID.String()))
	return nil
}

// GetByID retrieves a record by its ID
func (s *ManufacturingService) GetByID(ctx context.Context, id uuid.UUID) (*manufacturing.ManufacturingRecord, error) {
	return s.recordRepo.FindByID(ctx, id)
}

// List retrieves records with filtering and pagination
func (s *ManufacturingService) List(ctx context.Context, filter shared.Filter) (shared.Paginated[manufacturing.ManufacturingRecord], error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
		filter.OrderDir = "desc"
	}
	return s.recordRepo.List(ctx, filter)
}

// ListByProduct retrieves all records for a product
func (s *ManufacturingService) ListByProduct(ctx context.Context, productID uuid.UUID) ([]manufacturing.ManufacturingRecord, error) {
	return s.recordRepo.ListByProduct(ctx, productID)
}

// ListByBatch retrieves records by batch number; prefix toggles between
// exact and prefix matching
func (s *ManufacturingService) ListByBatch(ctx context.Context, batchNumber string, prefix bool) ([]manufacturing.ManufacturingRecord, error) {
	if batchNumber == "" {
		return nil, shared.NewDomainError("INVALID_BATCH_NUMBER", "Batch number cannot be empty")
	}
	if prefix {
		return s.recordRepo.SearchByBatchPrefix(ctx, batchNumber)
	}
	return s.recordRepo.ListByBatchNumber(ctx, batchNumber)
}

// ListByBranch retrieves all records for a branch
func (s *ManufacturingService) ListByBranch(ctx context.Context, branchID uuid.UUID) ([]manufacturing.ManufacturingRecord, error) {
	return s.recordRepo.ListByBranch(ctx, branchID)
}

// Summary returns count and total cost grouped by status, optionally
// filtered by product
func (s *ManufacturingService) Summary(ctx context.Context, productID *uuid.UUID) ([]manufacturing.StatusSummary, error) {
	return s.recordRepo.Summary(ctx, productID)
}

func (s *ManufacturingService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish manufacturing events", zap.Error(err))
	}
}

// newWeight converts a raw decimal into the Weight value object, mapping
// the negative-value failure to a validation error
func newWeight(d decimal.Decimal) (valueobject.Weight, error) {
	w, err := valueobject.NewWeight(d)
	if err != nil {
		return valueobject.Weight{}, shared.NewDomainError("INVALID_WEIGHT", err.Error())
	}
	return w, nil
}
