package manufacturing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goldpos/backend/internal/domain/manufacturing"
	"github.com/goldpos/backend/internal/domain/shared"
	"github.com/goldpos/backend/internal/domain/shared/valueobject"
)

// WeightLedgerService is the single entry point for reading and mutating
// raw gold lot balances. Reads go straight to the repository; every mutation
// runs inside one transaction with a version-guarded save, so two concurrent
// reservations against the same lot cannot both observe the stale balance.
type WeightLedgerService struct {
	lotRepo        manufacturing.RawGoldLotRepository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewWeightLedgerService creates a new WeightLedgerService
func NewWeightLedgerService(lotRepo manufacturing.RawGoldLotRepository, txScope TransactionScope, logger *zap.Logger) *WeightLedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeightLedgerService{
		lotRepo: lotRepo,
		txScope: txScope,
		logger:  logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *WeightLedgerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// RegisterLot records a newly received purchase lot in the ledger.
// Called by purchase receiving when raw gold arrives at a branch.
func (s *WeightLedgerService) RegisterLot(ctx context.Context, req RegisterLotRequest) (*manufacturing.RawGoldLot, error) {
	lot, err := manufacturing.NewRawGoldLot(
		req.PurchaseOrderID,
		req.PurchaseOrderItemID,
		req.BranchID,
		req.KaratType,
		req.WeightOrdered,
		req.WeightReceived,
	)
	if err != nil {
		return nil, err
	}
	if err := s.lotRepo.Save(ctx, lot); err != nil {
		return nil, err
	}
	events := lot.GetDomainEvents()
	lot.ClearDomainEvents()
	s.publishEvents(ctx, events)
	return lot, nil
}

// RemainingWeight returns the unconsumed weight of a lot. Pure read.
func (s *WeightLedgerService) RemainingWeight(ctx context.Context, lotID uuid.UUID) (valueobject.Weight, error) {
	lot, err := s.lotRepo.FindByID(ctx, lotID)
	if err != nil {
		return valueobject.Weight{}, err
	}
	return lot.RemainingWeight(), nil
}

// CheckSufficient reports whether the lot can cover the requested weight.
// Pure read - safe to call speculatively; the authoritative check happens
// again inside Reserve at commit time.
func (s *WeightLedgerService) CheckSufficient(ctx context.Context, lotID uuid.UUID, w valueobject.Weight) (bool, error) {
	lot, err := s.lotRepo.FindByID(ctx, lotID)
	if err != nil {
		return false, err
	}
	return lot.CanSupply(w), nil
}

// GetLot returns the lot aggregate. Pure read.
func (s *WeightLedgerService) GetLot(ctx context.Context, lotID uuid.UUID) (*manufacturing.RawGoldLot, error) {
	return s.lotRepo.FindByID(ctx, lotID)
}

// ListLots retrieves lots with filtering and pagination
func (s *WeightLedgerService) ListLots(ctx context.Context, filter shared.Filter) (shared.Paginated[manufacturing.RawGoldLot], error) {
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
	return s.lotRepo.List(ctx, filter)
}

// ListAvailableLots retrieves lots that still have unconsumed weight,
// optionally narrowed to a branch and karat type
func (s *WeightLedgerService) ListAvailableLots(ctx context.Context, branchID *uuid.UUID, karat *manufacturing.KaratType) ([]manufacturing.RawGoldLot, error) {
	return s.lotRepo.ListAvailable(ctx, branchID, karat)
}

// Reserve atomically re-validates sufficiency and deducts the weight from
// the lot. A lost optimistic-lock race is retried once with a fresh read;
// the second conflict is surfaced to the caller.
func (s *WeightLedgerService) Reserve(ctx context.Context, lotID uuid.UUID, w valueobject.Weight) error {
	err := s.reserveOnce(ctx, lotID, w)
	if errors.Is(err, shared.ErrConcurrencyConflict) {
		s.logger.Debug("Reservation conflict, retrying once",
			zap.String("lot_id", lotID.String()),
			zap.String("weight", w.String()),
		)
		err = s.reserveOnce(ctx, lotID, w)
	}
	return err
}

func (s *WeightLedgerService) reserveOnce(ctx context.Context, lotID uuid.UUID, w valueobject.Weight) error {
	var events []shared.DomainEvent
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		lot, err := repos.LotRepo().FindByID(ctx, lotID)
		if err != nil {
			return err
		}
		if err := lot.Reserve(w); err != nil {
			return err
		}
		if err := repos.LotRepo().SaveWithLock(ctx, lot); err != nil {
			return err
		}
		events = lot.GetDomainEvents()
		lot.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return err
	}
	s.publishEvents(ctx, events)
	return nil
}

// Release credits previously reserved weight back to the lot. The fatal
// ledger corruption condition is escalated to the error log before being
// returned - it indicates a broken reserve/release pairing, never user error.
func (s *WeightLedgerService) Release(ctx context.Context, lotID uuid.UUID, w valueobject.Weight) error {
	err := s.releaseOnce(ctx, lotID, w)
	if errors.Is(err, shared.ErrConcurrencyConflict) {
		err = s.releaseOnce(ctx, lotID, w)
	}
	if errors.Is(err, shared.ErrLedgerCorruption) {
		s.logger.Error("Ledger corruption detected on release",
			zap.String("lot_id", lotID.String()),
			zap.String("weight", w.String()),
		)
	}
	return err
}

func (s *WeightLedgerService) releaseOnce(ctx context.Context, lotID uuid.UUID, w valueobject.Weight) error {
	var events []shared.DomainEvent
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		lot, err := repos.LotRepo().FindByID(ctx, lotID)
		if err != nil {
			return err
		}
		if err := lot.Release(w); err != nil {
			return err
		}
		if err := repos.LotRepo().SaveWithLock(ctx, lot); err != nil {
			return err
		}
		events = lot.GetDomainEvents()
		lot.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return err
	}
	s.publishEvents(ctx, events)
	return nil
}

func (s *WeightLedgerService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish ledger events", zap.Error(err))
	}
}
