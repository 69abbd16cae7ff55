package manufacturing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goldpos/backend/internal/domain/manufacturing"
	"github.com/goldpos/backend/internal/domain/shared"
)

// WorkflowService drives manufacturing records through the status state
// machine. Every mutation re-reads the record inside its transaction (never
// acting on a cached status), applies the aggregate method, saves with the
// optimistic-lock version guard and appends the history entry atomically.
// A lost race is retried once against fresh state; the second conflict is
// surfaced as a concurrency conflict.
type WorkflowService struct {
	recordRepo     manufacturing.ManufacturingRecordRepository
	historyRepo    manufacturing.WorkflowHistoryRepository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(
	recordRepo manufacturing.ManufacturingRecordRepository,
	historyRepo manufacturing.WorkflowHistoryRepository,
	txScope TransactionScope,
	logger *zap.Logger,
) *WorkflowService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkflowService{
		recordRepo:  recordRepo,
		historyRepo: historyRepo,
		txScope:     txScope,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *WorkflowService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// AvailableTransitions returns the legal target statuses for a record,
// computed purely from its current status
func (s *WorkflowService) AvailableTransitions(ctx context.Context, recordID uuid.UUID) ([]manufacturing.ManufacturingStatus, error) {
	record, err := s.recordRepo.FindByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	return record.AvailableTransitions(), nil
}

// Transition performs a generic workflow transition to the target status
func (s *WorkflowService) Transition(ctx context.Context, recordID uuid.UUID, target manufacturing.ManufacturingStatus, actor manufacturing.Actor, notes string) (*manufacturing.ManufacturingRecord, error) {
	return s.mutate(ctx, recordID, func(record *manufacturing.ManufacturingRecord) (*manufacturing.WorkflowHistoryEntry, error) {
		return record.TransitionTo(target, actor, notes)
	})
}

// PerformQualityCheck records a quality check outcome: pass advances to
// final approval, fail routes the batch back to in-progress for rework
func (s *WorkflowService) PerformQualityCheck(ctx context.Context, recordID uuid.UUID, passed bool, actor manufacturing.Actor, notes string) (*manufacturing.ManufacturingRecord, error) {
	return s.mutate(ctx, recordID, func(record *manufacturing.ManufacturingRecord) (*manufacturing.WorkflowHistoryEntry, error) {
		return record.PerformQualityCheck(passed, actor, notes)
	})
}

// PerformFinalApproval records an approval decision: approval completes the
// batch, rejection sends it back through quality check
func (s *WorkflowService) PerformFinalApproval(ctx context.Context, recordID uuid.UUID, approved bool, actor manufacturing.Actor, notes string) (*manufacturing.ManufacturingRecord, error) {
	return s.mutate(ctx, recordID, func(record *manufacturing.ManufacturingRecord) (*manufacturing.WorkflowHistoryEntry, error) {
		return record.PerformFinalApproval(approved, actor, notes)
	})
}

// Cancel abandons the batch from any non-terminal status
func (s *WorkflowService) Cancel(ctx context.Context, recordID uuid.UUID, actor manufacturing.Actor, notes string) (*manufacturing.ManufacturingRecord, error) {
	return s.mutate(ctx, recordID, func(record *manufacturing.ManufacturingRecord) (*manufacturing.WorkflowHistoryEntry, error) {
		return record.Cancel(actor, notes)
	})
}

// History returns the append-only audit trail of a record, ordered by
// creation time ascending
func (s *WorkflowService) History(ctx context.Context, recordID uuid.UUID) ([]manufacturing.WorkflowHistoryEntry, error) {
	if _, err := s.recordRepo.FindByID(ctx, recordID); err != nil {
		return nil, err
	}
	return s.historyRepo.ListByRecord(ctx, recordID)
}

// mutate runs one workflow mutation with the retry-once conflict policy
func (s *WorkflowService) mutate(ctx context.Context, recordID uuid.UUID, apply func(*manufacturing.ManufacturingRecord) (*manufacturing.WorkflowHistoryEntry, error)) (*manufacturing.ManufacturingRecord, error) {
	record, err := s.mutateOnce(ctx, recordID, apply)
	if errors.Is(err, shared.ErrConcurrencyConflict) {
		s.logger.Debug("Workflow transition conflict, retrying once",
			zap.String("record_id", recordID.String()),
		)
		record, err = s.mutateOnce(ctx, recordID, apply)
	}
	return record, err
}

func (s *WorkflowService) mutateOnce(ctx context.Context, recordID uuid.UUID, apply func(*manufacturing.ManufacturingRecord) (*manufacturing.WorkflowHistoryEntry, error)) (*manufacturing.ManufacturingRecord, error) {
	var result *manufacturing.ManufacturingRecord
	var events []shared.DomainEvent

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		record, err := repos.RecordRepo().FindByID(ctx, recordID)
		if err != nil {
			return err
		}

		entry, err := apply(record)
		if err != nil {
			return err
		}

		if err := repos.RecordRepo().SaveWithLock(ctx, record); err != nil {
			return err
		}
		if err := repos.HistoryRepo().Create(ctx, entry); err != nil {
			return err
		}

		events = record.GetDomainEvents()
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

func (s *WorkflowService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish workflow events", zap.Error(err))
	}
}
