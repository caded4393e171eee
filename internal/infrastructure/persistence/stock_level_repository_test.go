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

	"github.com/stockbooks/backend/internal/domain/ledger"
	"github.com/stockbooks/backend/internal/domain/shared"
)

func newMockStockLevelRepo(t *testing.T) (*GormStockLevelRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

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

	return NewGormStockLevelRepository(gormDB), mock, mockDB
}

func testStockLevel(t *testing.T) *ledger.StockLevel {
	t.Helper()
	level, err := ledger.NewStockLevel(uuid.New(), uuid.New())
	require.NoError(t, err)
	require.NoError(t, level.ApplyReceipt(decimal.NewFromInt(100), decimal.NewFromInt(1000)))
	return level
}

func TestSaveWithLock(t *testing.T) {
	t.Run("updates the row guarded by the loaded version", func(t *testing.T) {
		repo, mock, mockDB := newMockStockLevelRepo(t)
		defer mockDB.Close()

		level := testStockLevel(t)

		mock.ExpectExec(`UPDATE "stock_levels" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.SaveWithLock(context.Background(), level))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports a conflict when no row matches the version", func(t *testing.T) {
		repo, mock, mockDB := newMockStockLevelRepo(t)
		defer mockDB.Close()

		level := testStockLevel(t)

		// another movement bumped the version between read and write
		mock.ExpectExec(`UPDATE "stock_levels" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveWithLock(context.Background(), level)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFindByKey(t *testing.T) {
	t.Run("maps a missing row to not found", func(t *testing.T) {
		repo, mock, mockDB := newMockStockLevelRepo(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT .* FROM "stock_levels"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindByKey(context.Background(), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
