package manufacturing

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/goldpos/backend/internal/domain/manufacturing"
	"github.com/goldpos/backend/internal/domain/shared"
)

// MockLotRepository is a testify mock of manufacturing.RawGoldLotRepository
type MockLotRepository struct {
	mock.Mock
}

func (m *MockLotRepository) FindByID(ctx context.Context, id uuid.UUID) (*manufacturing.RawGoldLot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*manufacturing.RawGoldLot), args.Error(1)
}

func (m *MockLotRepository) FindByPurchaseOrderItem(ctx context.Context, itemID uuid.UUID) (*manufacturing.RawGoldLot, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*manufacturing.RawGoldLot), args.Error(1)
}

func (m *MockLotRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[manufacturing.RawGoldLot], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[manufacturing.RawGoldLot]), args.Error(1)
}

func (m *MockLotRepository) ListAvailable(ctx context.Context, branchID *uuid.UUID, karat *manufacturing.KaratType) ([]manufacturing.RawGoldLot, error) {
	args := m.Called(ctx, branchID, karat)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]manufacturing.RawGoldLot), args.Error(1)
}

func (m *MockLotRepository) Save(ctx context.Context, lot *manufacturing.RawGoldLot) error {
	args := m.Called(ctx, lot)
	return args.Error(0)
}

func (m *MockLotRepository) SaveWithLock(ctx context.Context, lot *manufacturing.RawGoldLot) error {
	args := m.Called(ctx, lot)
	return args.Error(0)
}

// MockRecordRepository is a testify mock of manufacturing.ManufacturingRecordRepository
type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) Create(ctx context.Context, record *manufacturing.ManufacturingRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*manufacturing.ManufacturingRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*manufacturing.ManufacturingRecord), args.Error(1)
}

func (m *MockRecordRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[manufacturing.ManufacturingRecord], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[manufacturing.ManufacturingRecord]), args.Error(1)
}

func (m *MockRecordRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]manufacturing.ManufacturingRecord, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]manufacturing.ManufacturingRecord), args.Error(1)
}

func (m *MockRecordRepository) ListByBatchNumber(ctx context.Context, batchNumber string) ([]manufacturing.ManufacturingRecord, error) {
	args := m.Called(ctx, batchNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]manufacturing.ManufacturingRecord), args.Error(1)
}

func (m *MockRecordRepository) SearchByBatchPrefix(ctx context.Context, prefix string) ([]manufacturing.ManufacturingRecord, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]manufacturing.ManufacturingRecord), args.Error(1)
}

func (m *MockRecordRepository) ListByBranch(ctx context.Context, branchID uuid.UUID) ([]manufacturing.ManufacturingRecord, error) {
	args := m.Called(ctx, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]manufacturing.ManufacturingRecord), args.Error(1)
}

func (m *MockRecordRepository) Summary(ctx context.Context, productID *uuid.UUID) ([]manufacturing.StatusSummary, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]manufacturing.StatusSummary), args.Error(1)
}

func (m *MockRecordRepository) SaveWithLock(ctx context.Context, record *manufacturing.ManufacturingRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockHistoryRepository is a testify mock of manufacturing.WorkflowHistoryRepository
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Create(ctx context.Context, entry *manufacturing.WorkflowHistoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockHistoryRepository) ListByRecord(ctx context.Context, recordID uuid.UUID) ([]manufacturing.WorkflowHistoryEntry, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]manufacturing.WorkflowHistoryEntry), args.Error(1)
}

func (m *MockHistoryRepository) DeleteByRecord(ctx context.Context, recordID uuid.UUID) error {
	args := m.Called(ctx, recordID)
	return args.Error(0)
}

// MockContributionRepository is a testify mock of manufacturing.ContributionRepository
type MockContributionRepository struct {
	mock.Mock
}

func (m *MockContributionRepository) Create(ctx context.Context, contribution *manufacturing.RawMaterialContribution) error {
	args := m.Called(ctx, contribution)
	return args.Error(0)
}

func (m *MockContributionRepository) FindByID(ctx context.Context, id uuid.UUID) (*manufacturing.RawMaterialContribution, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*manufacturing.RawMaterialContribution), args.Error(1)
}

func (m *MockContributionRepository) ListByRecord(ctx context.Context, recordID uuid.UUID) ([]manufacturing.RawMaterialContribution, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]manufacturing.RawMaterialContribution), args.Error(1)
}

func (m *MockContributionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockContributionRepository) DeleteByRecord(ctx context.Context, recordID uuid.UUID) error {
	args := m.Called(ctx, recordID)
	return args.Error(0)
}

// MockEventPublisher records published events for assertions
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (m *MockEventPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) Events() []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]shared.DomainEvent, len(m.events))
	copy(out, m.events)
	return out
}

// MockProductDirectory is a testify mock of ProductDirectory
type MockProductDirectory struct {
	mock.Mock
}

func (m *MockProductDirectory) GetProduct(ctx context.Context, id uuid.UUID) (*ProductInfo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ProductInfo), args.Error(1)
}

// MockBranchDirectory is a testify mock of BranchDirectory
type MockBranchDirectory struct {
	mock.Mock
}

func (m *MockBranchDirectory) BranchExists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockTechnicianDirectory is a testify mock of TechnicianDirectory
type MockTechnicianDirectory struct {
	mock.Mock
}

func (m *MockTechnicianDirectory) TechnicianExists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
