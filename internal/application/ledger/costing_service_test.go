package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockbooks/backend/internal/domain/ledger"
	"github.com/stockbooks/backend/internal/domain/shared"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type costingFixture struct {
	service     *CostingService
	items       *fakeItemRepo
	levels      *fakeStockLevelRepo
	entries     *fakeEntryRepo
	lots        *fakeLotRepo
	item        *ledger.Item
	warehouseID uuid.UUID
	userID      uuid.UUID
}

func newCostingFixture(t *testing.T, defaultMethod ledger.CostingMethod) *costingFixture {
	t.Helper()

	items := newFakeItemRepo()
	levels := newFakeStockLevelRepo()
	entries := newFakeEntryRepo()
	lots := newFakeLotRepo()
	scope := NewNoOpTransactionScope(levels, entries, lots)

	service, err := NewCostingService(scope, items, levels, entries, lots, defaultMethod)
	require.NoError(t, err)

	item, err := ledger.NewItem("RM-001", "Steel Plate", "kg", ledger.ItemTypeRawMaterial)
	require.NoError(t, err)
	require.NoError(t, items.Save(context.Background(), item))

	return &costingFixture{
		service:     service,
		items:       items,
		levels:      levels,
		entries:     entries,
		lots:        lots,
		item:        item,
		warehouseID: uuid.New(),
		userID:      uuid.New(),
	}
}

func (f *costingFixture) receive(t *testing.T, qty, unitCost string) *MovementResult {
	t.Helper()
	result, err := f.service.Receive(context.Background(), ReceiveCommand{
		ItemID:      f.item.ID,
		WarehouseID: f.warehouseID,
		Qty:         dec(qty),
		UnitCost:    dec(unitCost),
		RefType:     ledger.RefTypePurchase,
		RefID:       "PO-001",
		UserID:      f.userID,
	})
	require.NoError(t, err)
	return result
}

func (f *costingFixture) issue(qty string) (*MovementResult, error) {
	return f.service.Issue(context.Background(), IssueCommand{
		ItemID:      f.item.ID,
		WarehouseID: f.warehouseID,
		Qty:         dec(qty),
		RefType:     ledger.RefTypeSale,
		RefID:       "SO-001",
		UserID:      f.userID,
	})
}

func TestNewCostingService(t *testing.T) {
	f := newCostingFixture(t, ledger.CostingMethodWeightedAvg)
	assert.NotNil(t, f.service)

	_, err := NewCostingService(
		NewNoOpTransactionScope(f.levels, f.entries, f.lots),
		f.items, f.levels, f.entries, f.lots,
		ledger.CostingMethod("LIFO"),
	)
	require.Error(t, err)
}

func TestCostingServiceReceive(t *testing.T) {
	t.Run("appends an IN entry and updates the running balance", func(t *testing.T) {
		f := newCostingFixture(t, ledger.CostingMethodWeightedAvg)

		result := f.receive(t, "100", "10.00")
		assert.True(t, result.Value.Equal(dec("1000.00")))
		assert.True(t, result.RunningQty.Equal(dec("100")))
		assert.True(t, result.RunningAvgCost.Equal(dec("10")))
		assert.Equal(t, ledger.CostingMethodWeightedAvg, result.CostingMethod)

		result = f.receive(t, "50", "14.00")
		assert.True(t, result.RunningQty.Equal(dec("150")))
		assert.True(t, result.RunningValue.Equal(dec("1700.00")))
		assert.True(t, result.RunningAvgCost.Equal(dec("11.3333")))

		entries := f.entries.forKey(f.item.ID, f.warehouseID)
		require.Len(t, entries, 2)
		assert.Equal(t, ledger.DirectionIn, entries[0].Direction)
		assert.Equal(t, int64(1), entries[0].Seq)
		assert.Equal(t, int64(2), entries[1].Seq)
	})

	t.Run("opens a lot per receipt under any policy", func(t *testing.T) {
		f := newCostingFixture(t, ledger.CostingMethodWeightedAvg)
		f.receive(t, "100", "10.00")
		f.receive(t, "50", "14.00")

		lots, err := f.lots.FindOpen(context.Background(), f.item.ID, f.warehouseID)
		require.NoError(t, err)
		require.Len(t, lots, 2)
		assert.True(t, lots[0].RemainingQty.Equal(dec("100")))
		assert.True(t, lots[1].RemainingQty.Equal(dec("50")))
	})

	t.Run("rejects invalid quantity before writing", func(t *testing.T) {
		f := newCostingFixture(t, ledger.CostingMethodWeightedAvg)

		_, err := f.service.Receive(context.Background(), ReceiveCommand{
			ItemID:      f.item.ID,
			WarehouseID: f.warehouseID,
			Qty:         decimal.Zero,
			UnitCost:    dec("10.00"),
			RefType:     ledger.RefTypePurchase,
			RefID:       "PO-001",
			UserID:      f.userID,
		})
		assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
		assert.Empty(t, f.entries.entries)
	})

	t.Run("rejects unknown items", func(t *testing.T) {
		f := newCostingFixture(t, ledger.CostingMethodWeightedAvg)

		_, err := f.service.Receive(context.Background(), ReceiveCommand{
			ItemID:      uuid.New(),
			WarehouseID: f.warehouseID,
			Qty:         dec("1"),
			UnitCost:    dec("1"),
			RefType:     ledger.RefTypePurchase,
			RefID:       "PO-001",
			UserID:      f.userID,
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestCostingServiceIssueWeightedAverage(t *testing.T) {
	t.Run("costs the issue at the running average", func(t *testing.T) {
		f := newCostingFixture(t, ledger.CostingMethodWeightedAvg)
		f.receive(t, "100", "10.00")
		f.receive(t, "50", "14.00")

		result, err := f.issue("120")
		require.NoError(t, err)

		assert.True(t, result.Value.Equal(dec("1360.00")), "got %s", result.Value)
		assert.True(t, result.UnitCost.Equal(dec("11.3333")))
		assert.True(t, result.RunningQty.Equal(dec("30")))
		assert.True(t, result.RunningValue.Equal(dec("340.00")))
		assert.True(t, result.RunningAvgCost.Equal(dec("11.3333")))
	})

	t.Run("signed entry sums reproduce the running balance", func(t *testing.T) {
		f := newCostingFixture(t, ledger.CostingMethodWeightedAvg)
		f.receive(t, "100", "10.00")
		f.receive(t, "50", "14.00")
		_, err := f.issue("120")
		require.NoError(t, err)

		qtySum, valueSum := decimal.Zero, decimal.Zero
		for _, entry := range f.entries.forKey(f.item.ID, f.warehouseID) {
			qtySum = qtySum.Add(entry.SignedQty())
			valueSum = valueSum.Add(entry.SignedValue())
		}

		onHand, err := f.service.OnHand(context.Background(), f.item.ID, f.warehouseID)
		require.NoError(t, err)
		assert.True(t, qtySum.Equal(onHand.OnHandQty))
		assert.True(t, valueSum.Equal(onHand.OnHandValue))
	})

	t.Run("insufficient stock writes nothing", func(t *testing.T) {
		f := newCostingFixture(t, ledger.CostingMethodWeightedAvg)
		f.receive(t, "100", "10.00")

		_, err := f.issue("100.0001")
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)

		entries := f.entries.forKey(f.item.ID, f.warehouseID)
		assert.Len(t, entries, 1)
		onHand, err := f.service.OnHand(context.Background(), f.item.ID, f.warehouseID)
		require.NoError(t, err)
		assert.True(t, onHand.OnHandQty.Equal(dec("100")))
	})

	t.Run("issue against a key with no stock fails", func(t *testing.T) {
		f := newCostingFixture(t, ledger.CostingMethodWeightedAvg)

		_, err := f.issue("1")
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})
}

func TestCostingServiceIssueFIFO(t *testing.T) {
	t.Run("consumes the oldest lots first", func(t *testing.T) {
		f := newCostingFixture(t, ledger.CostingMethodFIFO)
		f.receive(t, "100", "10.00")
		f.receive(t, "50", "14.00")

		result, err := f.issue("120")
		require.NoError(t, err)

		assert.True(t, result.Value.Equal(dec("1280.00")), "got %s", result.Value)
		assert.True(t, result.UnitCost.Equal(dec("10.6667")), "got %s", result.UnitCost)
		assert.True(t, result.RunningQty.Equal(dec("30")))
		assert.Equal(t, ledger.CostingMethodFIFO, result.CostingMethod)
	})

	t.Run("decrements each lot exactly once", func(t *testing.T) {
		f := newCostingFixture(t, ledger.CostingMethodFIFO)
		f.receive(t, "100", "10.00")
		f.receive(t, "50", "14.00")

		_, err := f.issue("120")
		require.NoError(t, err)

		lots, err := f.lots.FindOpen(context.Background(), f.item.ID, f.warehouseID)
		require.NoError(t, err)
		require.Len(t, lots, 1, "first lot fully consumed and closed")
		assert.True(t, lots[0].RemainingQty.Equal(dec("30")))
		assert.True(t, lots[0].UnitCost.Equal(dec("14.00")))
		assert.True(t, lots[0].RemainingValue().Equal(dec("420.00")))
	})

	t.Run("per-item override beats the system default", func(t *testing.T) {
		f := newCostingFixture(t, ledger.CostingMethodWeightedAvg)
		require.NoError(t, f.item.SetCostingMethod(ledger.CostingMethodFIFO))
		require.NoError(t, f.items.Save(context.Background(), f.item))

		f.receive(t, "100", "10.00")
		f.receive(t, "50", "14.00")

		result, err := f.issue("120")
		require.NoError(t, err)
		assert.Equal(t, ledger.CostingMethodFIFO, result.CostingMethod)
		assert.True(t, result.Value.Equal(dec("1280.00")))
	})
}

func TestCostingServiceConflictRetry(t *testing.T) {
	t.Run("retries a lost append race and succeeds", func(t *testing.T) {
		f := newCostingFixture(t, ledger.CostingMethodWeightedAvg)
		recorder := &fakeRecorder{}
		f.service.SetMovementRecorder(recorder)
		f.levels.conflictsLeft = 2

		result := f.receive(t, "10", "5.00")
		assert.True(t, result.RunningQty.Equal(dec("10")))
		assert.Equal(t, 3, f.levels.lockSaves)
		assert.Equal(t, []int{2}, recorder.retriedAttempts)

		onHand, err := f.service.OnHand(context.Background(), f.item.ID, f.warehouseID)
		require.NoError(t, err)
		assert.True(t, onHand.OnHandQty.Equal(dec("10")))
	})

	t.Run("surfaces the conflict after bounded retries", func(t *testing.T) {
		f := newCostingFixture(t, ledger.CostingMethodWeightedAvg)
		f.levels.conflictsLeft = 10

		_, err := f.service.Receive(context.Background(), ReceiveCommand{
			ItemID:      f.item.ID,
			WarehouseID: f.warehouseID,
			Qty:         dec("10"),
			UnitCost:    dec("5.00"),
			RefType:     ledger.RefTypePurchase,
			RefID:       "PO-001",
			UserID:      f.userID,
		})
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.Equal(t, 4, f.levels.lockSaves, "initial attempt plus three retries")
	})
}

func TestCostingServiceTransfer(t *testing.T) {
	t.Run("moves value without creating or destroying it", func(t *testing.T) {
		f := newCostingFixture(t, ledger.CostingMethodWeightedAvg)
		f.receive(t, "100", "10.00")
		f.receive(t, "50", "14.00")
		dest := uuid.New()

		result, err := f.service.Transfer(context.Background(), TransferCommand{
			ItemID:          f.item.ID,
			FromWarehouseID: f.warehouseID,
			ToWarehouseID:   dest,
			Qty:             dec("60"),
			RefID:           "TR-001",
			UserID:          f.userID,
		})
		require.NoError(t, err)

		assert.True(t, result.Out.Value.Equal(result.In.Value))
		assert.True(t, result.Out.Value.Equal(dec("680.00")), "got %s", result.Out.Value)
		assert.True(t, result.Out.RunningQty.Equal(dec("90")))
		assert.True(t, result.In.RunningQty.Equal(dec("60")))

		outEntries := f.entries.forKey(f.item.ID, f.warehouseID)
		inEntries := f.entries.forKey(f.item.ID, dest)
		require.Len(t, outEntries, 3)
		require.Len(t, inEntries, 1)
		assert.Equal(t, ledger.RefTypeTransfer, outEntries[2].RefType)
		assert.Equal(t, "TR-001", inEntries[0].RefID)

		// total value across both warehouses is conserved
		sourceOnHand, err := f.service.OnHand(context.Background(), f.item.ID, f.warehouseID)
		require.NoError(t, err)
		destOnHand, err := f.service.OnHand(context.Background(), f.item.ID, dest)
		require.NoError(t, err)
		total := sourceOnHand.OnHandValue.Add(destOnHand.OnHandValue)
		assert.True(t, total.Equal(dec("1700.00")), "got %s", total)
	})

	t.Run("opens a destination lot at the transferred cost", func(t *testing.T) {
		f := newCostingFixture(t, ledger.CostingMethodFIFO)
		f.receive(t, "100", "10.00")
		dest := uuid.New()

		_, err := f.service.Transfer(context.Background(), TransferCommand{
			ItemID:          f.item.ID,
			FromWarehouseID: f.warehouseID,
			ToWarehouseID:   dest,
			Qty:             dec("40"),
			RefID:           "TR-002",
			UserID:          f.userID,
		})
		require.NoError(t, err)

		destLots, err := f.lots.FindOpen(context.Background(), f.item.ID, dest)
		require.NoError(t, err)
		require.Len(t, destLots, 1)
		assert.True(t, destLots[0].RemainingQty.Equal(dec("40")))
		assert.True(t, destLots[0].UnitCost.Equal(dec("10")))
	})

	t.Run("rejects same-warehouse transfers", func(t *testing.T) {
		f := newCostingFixture(t, ledger.CostingMethodWeightedAvg)
		f.receive(t, "100", "10.00")

		_, err := f.service.Transfer(context.Background(), TransferCommand{
			ItemID:          f.item.ID,
			FromWarehouseID: f.warehouseID,
			ToWarehouseID:   f.warehouseID,
			Qty:             dec("10"),
			RefID:           "TR-003",
			UserID:          f.userID,
		})
		require.Error(t, err)
	})

	t.Run("rejects transfers beyond source stock", func(t *testing.T) {
		f := newCostingFixture(t, ledger.CostingMethodWeightedAvg)
		f.receive(t, "100", "10.00")

		_, err := f.service.Transfer(context.Background(), TransferCommand{
			ItemID:          f.item.ID,
			FromWarehouseID: f.warehouseID,
			ToWarehouseID:   uuid.New(),
			Qty:             dec("101"),
			RefID:           "TR-004",
			UserID:          f.userID,
		})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})
}

func TestCostingServiceOpeningBalance(t *testing.T) {
	f := newCostingFixture(t, ledger.CostingMethodWeightedAvg)

	result, err := f.service.OpeningBalance(context.Background(),
		f.item.ID, f.warehouseID, dec("25"), dec("8.00"), "OB-2026", f.userID)
	require.NoError(t, err)

	assert.True(t, result.Value.Equal(dec("200.00")))
	entries := f.entries.forKey(f.item.ID, f.warehouseID)
	require.Len(t, entries, 1)
	assert.Equal(t, ledger.RefTypeOpeningBalance, entries[0].RefType)
	assert.Equal(t, "OB-2026", entries[0].RefID)
}

func TestCostingServiceStockCard(t *testing.T) {
	f := newCostingFixture(t, ledger.CostingMethodWeightedAvg)
	f.receive(t, "100", "10.00")
	f.receive(t, "50", "14.00")
	_, err := f.issue("120")
	require.NoError(t, err)

	rows, err := f.service.StockCard(context.Background(), StockCardQuery{
		ItemID:      f.item.ID,
		WarehouseID: f.warehouseID,
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, ledger.DirectionIn, rows[0].Direction)
	assert.Equal(t, ledger.DirectionOut, rows[2].Direction)
	assert.True(t, rows[2].RunningQty.Equal(dec("30")))
	assert.True(t, rows[2].RunningValue.Equal(dec("340.00")))
}

func TestCostingServiceOnHand(t *testing.T) {
	f := newCostingFixture(t, ledger.CostingMethodWeightedAvg)

	t.Run("unknown key reports zero", func(t *testing.T) {
		onHand, err := f.service.OnHand(context.Background(), f.item.ID, f.warehouseID)
		require.NoError(t, err)
		assert.True(t, onHand.OnHandQty.IsZero())
		assert.True(t, onHand.OnHandValue.IsZero())
	})

	t.Run("reports the latest snapshot", func(t *testing.T) {
		f.receive(t, "100", "10.00")
		onHand, err := f.service.OnHand(context.Background(), f.item.ID, f.warehouseID)
		require.NoError(t, err)
		assert.True(t, onHand.OnHandQty.Equal(dec("100")))
		assert.True(t, onHand.AvgUnitCost.Equal(dec("10")))
	})
}
