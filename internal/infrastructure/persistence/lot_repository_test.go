package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/goldpos/backend/internal/domain/manufacturing"
	"github.com/goldpos/backend/internal/domain/shared"
	"github.com/goldpos/backend/internal/domain/shared/valueobject"
)

// newMockLotRepository creates a GormRawGoldLotRepository with a mocked SQL connection
func newMockLotRepository(t *testing.T) (*GormRawGoldLotRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormRawGoldLotRepository(gormDB), mock, mockDB
}

func lotRows(lotID uuid.UUID) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "purchase_order_id", "purchase_order_item_id", "branch_id",
		"karat_type", "weight_ordered", "weight_received", "weight_consumed", "version",
	}).AddRow(
		lotID, uuid.New(), uuid.New(), uuid.New(),
		"21K", decimal.RequireFromString("100.000"), decimal.RequireFromString("100.000"),
		decimal.RequireFromString("10.000"), 1,
	)
}

func TestGormRawGoldLotRepository_FindByID(t *testing.T) {
	t.Run("finds existing lot", func(t *testing.T) {
		repo, mock, mockDB := newMockLotRepository(t)
		defer mockDB.Close()

		lotID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "raw_gold_lots" WHERE id = \$1`).
			WithArgs(lotID, 1).
			WillReturnRows(lotRows(lotID))

		lot, err := repo.FindByID(context.Background(), lotID)

		assert.NoError(t, err)
		require.NotNil(t, lot)
		assert.Equal(t, lotID, lot.ID)
		assert.Equal(t, "90.000", lot.RemainingWeight().StringFixed())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for missing lot", func(t *testing.T) {
		repo, mock, mockDB := newMockLotRepository(t)
		defer mockDB.Close()

		lotID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "raw_gold_lots" WHERE id = \$1`).
			WithArgs(lotID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		lot, err := repo.FindByID(context.Background(), lotID)

		assert.Nil(t, lot)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormRawGoldLotRepository_FindByPurchaseOrderItem(t *testing.T) {
	t.Run("finds lot by purchase order item", func(t *testing.T) {
		repo, mock, mockDB := newMockLotRepository(t)
		defer mockDB.Close()

		lotID := uuid.New()
		itemID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "raw_gold_lots" WHERE purchase_order_item_id = \$1`).
			WithArgs(itemID, 1).
			WillReturnRows(lotRows(lotID))

		lot, err := repo.FindByPurchaseOrderItem(context.Background(), itemID)

		assert.NoError(t, err)
		require.NotNil(t, lot)
		assert.Equal(t, lotID, lot.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormRawGoldLotRepository_List(t *testing.T) {
	t.Run("orders by an allowlisted column", func(t *testing.T) {
		repo, mock, mockDB := newMockLotRepository(t)
		defer mockDB.Close()

		lotID := uuid.New()
		mock.ExpectQuery(`SELECT count\(\*\) FROM "raw_gold_lots"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`SELECT \* FROM "raw_gold_lots" ORDER BY weight_received ASC LIMIT \$1`).
			WithArgs(20).
			WillReturnRows(lotRows(lotID))

		result, err := repo.List(context.Background(), shared.Filter{
			Page:     1,
			PageSize: 20,
			OrderBy:  "weight_received",
			OrderDir: "asc",
		})

		assert.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("falls back to created_at for order_by values outside the allowlist", func(t *testing.T) {
		repo, mock, mockDB := newMockLotRepository(t)
		defer mockDB.Close()

		lotID := uuid.New()
		mock.ExpectQuery(`SELECT count\(\*\) FROM "raw_gold_lots"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`SELECT \* FROM "raw_gold_lots" ORDER BY created_at DESC LIMIT \$1`).
			WithArgs(20).
			WillReturnRows(lotRows(lotID))

		result, err := repo.List(context.Background(), shared.Filter{
			Page:     1,
			PageSize: 20,
			OrderBy:  "(SELECT count(*) FROM raw_gold_lots)",
			OrderDir: "desc",
		})

		assert.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormRawGoldLotRepository_SaveWithLock(t *testing.T) {
	newReservedLot := func(t *testing.T) *manufacturing.RawGoldLot {
		lot, err := manufacturing.NewRawGoldLot(
			uuid.New(), uuid.New(), uuid.New(), manufacturing.Karat21,
			decimal.RequireFromString("100.000"), decimal.RequireFromString("100.000"),
		)
		require.NoError(t, err)
		require.NoError(t, lot.Reserve(valueobject.MustWeightFromString("10.000")))
		return lot
	}

	t.Run("persists version-guarded update", func(t *testing.T) {
		repo, mock, mockDB := newMockLotRepository(t)
		defer mockDB.Close()

		lot := newReservedLot(t)

		mock.ExpectExec(`UPDATE "raw_gold_lots" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SaveWithLock(context.Background(), lot)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns concurrency conflict when version has moved on", func(t *testing.T) {
		repo, mock, mockDB := newMockLotRepository(t)
		defer mockDB.Close()

		lot := newReservedLot(t)

		mock.ExpectExec(`UPDATE "raw_gold_lots" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveWithLock(context.Background(), lot)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
