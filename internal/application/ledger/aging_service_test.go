package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockbooks/backend/internal/domain/ledger"
)

func agedLot(t *testing.T, itemID, warehouseID uuid.UUID, qty, unitCost string, ageDays int) *ledger.StockLot {
	t.Helper()
	lot, err := ledger.NewStockLot(itemID, warehouseID, dec(qty), dec(unitCost))
	require.NoError(t, err)
	lot.ReceivedAt = time.Now().AddDate(0, 0, -ageDays)
	return lot
}

func TestAgingServiceReport(t *testing.T) {
	itemID, warehouseID := uuid.New(), uuid.New()

	t.Run("buckets remaining lots by age", func(t *testing.T) {
		lots := newFakeLotRepo()
		ctx := context.Background()
		require.NoError(t, lots.Save(ctx, agedLot(t, itemID, warehouseID, "100", "10.00", 10)))
		require.NoError(t, lots.Save(ctx, agedLot(t, itemID, warehouseID, "50", "14.00", 45)))
		require.NoError(t, lots.Save(ctx, agedLot(t, itemID, warehouseID, "20", "9.00", 200)))

		report, err := NewAgingService(lots).Report(ctx, itemID, warehouseID)
		require.NoError(t, err)
		require.Len(t, report.Buckets, len(DefaultAgingBuckets))

		assert.Equal(t, "0-30", report.Buckets[0].Label)
		assert.True(t, report.Buckets[0].Qty.Equal(dec("100")))
		assert.True(t, report.Buckets[0].Value.Equal(dec("1000.00")))
		assert.Equal(t, 1, report.Buckets[0].LotCount)

		assert.Equal(t, "31-60", report.Buckets[1].Label)
		assert.True(t, report.Buckets[1].Qty.Equal(dec("50")))

		assert.Equal(t, "180+", report.Buckets[4].Label)
		assert.True(t, report.Buckets[4].Qty.Equal(dec("20")))
		assert.True(t, report.Buckets[4].Value.Equal(dec("180.00")))

		assert.True(t, report.Buckets[2].Qty.IsZero())
		assert.True(t, report.Buckets[3].Qty.IsZero())
	})

	t.Run("ages the remaining quantity, not the original receipt", func(t *testing.T) {
		lots := newFakeLotRepo()
		ctx := context.Background()
		lot := agedLot(t, itemID, warehouseID, "100", "10.00", 40)
		lot.Deduct(dec("70"))
		require.NoError(t, lots.Save(ctx, lot))

		report, err := NewAgingService(lots).Report(ctx, itemID, warehouseID)
		require.NoError(t, err)

		assert.True(t, report.Buckets[1].Qty.Equal(dec("30")))
		assert.True(t, report.Buckets[1].Value.Equal(dec("300.00")))
	})

	t.Run("excludes consumed lots", func(t *testing.T) {
		lots := newFakeLotRepo()
		ctx := context.Background()
		lot := agedLot(t, itemID, warehouseID, "100", "10.00", 10)
		lot.Deduct(dec("100"))
		require.NoError(t, lots.Save(ctx, lot))

		report, err := NewAgingService(lots).Report(ctx, itemID, warehouseID)
		require.NoError(t, err)
		for _, bucket := range report.Buckets {
			assert.True(t, bucket.Qty.IsZero())
			assert.Zero(t, bucket.LotCount)
		}
	})

	t.Run("uses the provided reference time", func(t *testing.T) {
		lots := newFakeLotRepo()
		ctx := context.Background()
		lot := agedLot(t, itemID, warehouseID, "10", "5.00", 0)
		require.NoError(t, lots.Save(ctx, lot))

		report, err := NewAgingService(lots).ReportAsOf(ctx, itemID, warehouseID, time.Now().AddDate(0, 0, 100))
		require.NoError(t, err)
		assert.True(t, report.Buckets[3].Qty.Equal(dec("10")), "91-180 bucket as of +100 days")
	})
}
