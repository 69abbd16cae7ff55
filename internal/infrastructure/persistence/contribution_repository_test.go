package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldpos/backend/internal/domain/manufacturing"
	"github.com/goldpos/backend/internal/domain/shared"
	"github.com/goldpos/backend/internal/domain/shared/valueobject"
)

func newTestContribution(t *testing.T, recordID uuid.UUID, percent string) *manufacturing.RawMaterialContribution {
	contribution, err := manufacturing.NewRawMaterialContribution(
		recordID,
		uuid.New(),
		valueobject.MustWeightFromString("5.000"),
		decimal.RequireFromString("8.00"),
		decimal.RequireFromString(percent),
		manufacturing.SourcePurchaseOrder,
		uuid.New(),
		nil,
		"",
	)
	require.NoError(t, err)
	return contribution
}

func TestGormContributionRepository(t *testing.T) {
	db := setupManufacturingTestDB(t)
	repo := NewGormContributionRepository(db)
	ctx := context.Background()

	recordID := uuid.New()
	otherRecordID := uuid.New()

	first := newTestContribution(t, recordID, "60.00")
	second := newTestContribution(t, recordID, "40.00")
	other := newTestContribution(t, otherRecordID, "100.00")

	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, other))

	t.Run("finds by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, recordID, found.RecordID)
		assert.True(t, found.ContributionPercent.Equal(decimal.RequireFromString("60.00")))
	})

	t.Run("lists contributions per record", func(t *testing.T) {
		listed, err := repo.ListByRecord(ctx, recordID)
		require.NoError(t, err)
		assert.Len(t, listed, 2)
	})

	t.Run("deletes a single contribution", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, second.ID))

		_, err := repo.FindByID(ctx, second.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		assert.ErrorIs(t, repo.Delete(ctx, second.ID), shared.ErrNotFound)
	})

	t.Run("purges by record without touching others", func(t *testing.T) {
		require.NoError(t, repo.DeleteByRecord(ctx, recordID))

		listed, err := repo.ListByRecord(ctx, recordID)
		require.NoError(t, err)
		assert.Empty(t, listed)

		remaining, err := repo.ListByRecord(ctx, otherRecordID)
		require.NoError(t, err)
		assert.Len(t, remaining, 1)
	})
}
