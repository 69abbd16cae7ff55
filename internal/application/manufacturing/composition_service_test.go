package manufacturing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/goldpos/backend/internal/domain/manufacturing"
	"github.com/goldpos/backend/internal/domain/shared"
)

func newCompositionFixture() (*CompositionService, *MockContributionRepository, *MockRecordRepository) {
	contribRepo := new(MockContributionRepository)
	recordRepo := new(MockRecordRepository)
	return NewCompositionService(contribRepo, recordRepo), contribRepo, recordRepo
}

func validContributionRequest(recordID uuid.UUID, percent string) AddContributionRequest {
	return AddContributionRequest{
		RecordID:            recordID,
		RawProductID:        uuid.New(),
		QuantityUsed:        decimal.RequireFromString("5.000"),
		UnitCost:            decimal.RequireFromString("8.00"),
		ContributionPercent: decimal.RequireFromString(percent),
		SourceType:          manufacturing.SourcePurchaseOrder,
		SourceID:            uuid.New(),
	}
}

func TestCompositionServiceAddContribution(t *testing.T) {
	record := mustRecord(t, manufacturing.StatusDraft)

	t.Run("persists a valid contribution", func(t *testing.T) {
		svc, contribRepo, recordRepo := newCompositionFixture()
		recordRepo.On("FindByID", mock.Anything, record.ID).Return(record, nil)
		contribRepo.On("Create", mock.Anything, mock.AnythingOfType("*manufacturing.RawMaterialContribution")).Return(nil).Once()

		c, err := svc.AddContribution(context.Background(), validContributionRequest(record.ID, "60"))
		require.NoError(t, err)
		assert.Equal(t, record.ID, c.RecordID)
		assert.Equal(t, "60.00", c.ContributionPercent.StringFixed(2))
		contribRepo.AssertExpectations(t)
	})

	t.Run("unknown record", func(t *testing.T) {
		svc, contribRepo, recordRepo := newCompositionFixture()
		id := uuid.New()
		recordRepo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

		_, err := svc.AddContribution(context.Background(), validContributionRequest(id, "60"))
		assert.ErrorIs(t, err, shared.ErrNotFound)
		contribRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("percentage above 100 is rejected", func(t *testing.T) {
		svc, _, recordRepo := newCompositionFixture()
		recordRepo.On("FindByID", mock.Anything, record.ID).Return(record, nil)

		_, err := svc.AddContribution(context.Background(), validContributionRequest(record.ID, "100.5"))
		assert.Error(t, err)
	})
}

func TestCompositionServiceRemoveContribution(t *testing.T) {
	t.Run("removes existing contribution", func(t *testing.T) {
		svc, contribRepo, _ := newCompositionFixture()
		c := &manufacturing.RawMaterialContribution{BaseEntity: shared.NewBaseEntity()}
		contribRepo.On("FindByID", mock.Anything, c.ID).Return(c, nil)
		contribRepo.On("Delete", mock.Anything, c.ID).Return(nil).Once()

		require.NoError(t, svc.RemoveContribution(context.Background(), c.ID))
		contribRepo.AssertExpectations(t)
	})

	t.Run("missing contribution", func(t *testing.T) {
		svc, contribRepo, _ := newCompositionFixture()
		id := uuid.New()
		contribRepo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

		err := svc.RemoveContribution(context.Background(), id)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		contribRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestCompositionServiceTotalPercentage(t *testing.T) {
	record := mustRecord(t, manufacturing.StatusDraft)

	contribution := func(percent string) manufacturing.RawMaterialContribution {
		return manufacturing.RawMaterialContribution{
			BaseEntity:          shared.NewBaseEntity(),
			RecordID:            record.ID,
			ContributionPercent: decimal.RequireFromString(percent),
		}
	}

	t.Run("balanced at exactly 100", func(t *testing.T) {
		svc, contribRepo, recordRepo := newCompositionFixture()
		recordRepo.On("FindByID", mock.Anything, record.ID).Return(record, nil)
		contribRepo.On("ListByRecord", mock.Anything, record.ID).Return([]manufacturing.RawMaterialContribution{
			contribution("60.00"), contribution("39.99"), contribution("0.01"),
		}, nil)

		total, err := svc.TotalPercentage(context.Background(), record.ID)
		require.NoError(t, err)
		assert.True(t, total.Balanced)
		assert.Equal(t, "100.00", total.TotalPercent.StringFixed(2))
		assert.Equal(t, 3, total.ContributionCount)
	})

	t.Run("partial entry is unbalanced but not an error", func(t *testing.T) {
		svc, contribRepo, recordRepo := newCompositionFixture()
		recordRepo.On("FindByID", mock.Anything, record.ID).Return(record, nil)
		contribRepo.On("ListByRecord", mock.Anything, record.ID).Return([]manufacturing.RawMaterialContribution{
			contribution("60.00"),
		}, nil)

		total, err := svc.TotalPercentage(context.Background(), record.ID)
		require.NoError(t, err)
		assert.False(t, total.Balanced)
		assert.Equal(t, "60.00", total.TotalPercent.StringFixed(2))
	})

	t.Run("no contributions", func(t *testing.T) {
		svc, contribRepo, recordRepo := newCompositionFixture()
		recordRepo.On("FindByID", mock.Anything, record.ID).Return(record, nil)
		contribRepo.On("ListByRecord", mock.Anything, record.ID).Return([]manufacturing.RawMaterialContribution{}, nil)

		total, err := svc.TotalPercentage(context.Background(), record.ID)
		require.NoError(t, err)
		assert.False(t, total.Balanced)
		assert.True(t, total.TotalPercent.IsZero())
		assert.Equal(t, 0, total.ContributionCount)
	})
}
