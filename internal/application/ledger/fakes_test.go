package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockbooks/backend/internal/domain/ledger"
	"github.com/stockbooks/backend/internal/domain/shared"
)

type fakeItemRepo struct {
	items map[uuid.UUID]*ledger.Item
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: make(map[uuid.UUID]*ledger.Item)}
}

func (r *fakeItemRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.Item, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return item, nil
}

func (r *fakeItemRepo) FindBySKU(_ context.Context, sku string) (*ledger.Item, error) {
	for _, item := range r.items {
		if item.SKU == sku {
			return item, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeItemRepo) FindAll(_ context.Context, _ shared.Filter) ([]ledger.Item, error) {
	items := make([]ledger.Item, 0, len(r.items))
	for _, item := range r.items {
		items = append(items, *item)
	}
	return items, nil
}

func (r *fakeItemRepo) Save(_ context.Context, item *ledger.Item) error {
	r.items[item.ID] = item
	return nil
}

func (r *fakeItemRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.items)), nil
}

type levelKey struct {
	itemID      uuid.UUID
	warehouseID uuid.UUID
}

type fakeStockLevelRepo struct {
	levels map[levelKey]*ledger.StockLevel

	// remaining SaveWithLock calls to fail with a version conflict
	conflictsLeft int
	lockSaves     int
}

func newFakeStockLevelRepo() *fakeStockLevelRepo {
	return &fakeStockLevelRepo{levels: make(map[levelKey]*ledger.StockLevel)}
}

func (r *fakeStockLevelRepo) FindByKey(_ context.Context, itemID, warehouseID uuid.UUID) (*ledger.StockLevel, error) {
	level, ok := r.levels[levelKey{itemID, warehouseID}]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *level
	return &copied, nil
}

func (r *fakeStockLevelRepo) GetOrCreate(ctx context.Context, itemID, warehouseID uuid.UUID) (*ledger.StockLevel, error) {
	if level, err := r.FindByKey(ctx, itemID, warehouseID); err == nil {
		return level, nil
	}
	level, err := ledger.NewStockLevel(itemID, warehouseID)
	if err != nil {
		return nil, err
	}
	r.levels[levelKey{itemID, warehouseID}] = level
	copied := *level
	return &copied, nil
}

func (r *fakeStockLevelRepo) Save(_ context.Context, level *ledger.StockLevel) error {
	copied := *level
	r.levels[levelKey{level.ItemID, level.WarehouseID}] = &copied
	return nil
}

func (r *fakeStockLevelRepo) SaveWithLock(ctx context.Context, level *ledger.StockLevel) error {
	r.lockSaves++
	if r.conflictsLeft > 0 {
		r.conflictsLeft--
		return shared.ErrConcurrencyConflict
	}
	return r.Save(ctx, level)
}

func (r *fakeStockLevelRepo) SumValueByWarehouse(_ context.Context, warehouseID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for key, level := range r.levels {
		if key.warehouseID == warehouseID {
			total = total.Add(level.OnHandValue)
		}
	}
	return total, nil
}

type fakeEntryRepo struct {
	entries []ledger.LedgerEntry
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{}
}

func (r *fakeEntryRepo) Append(_ context.Context, entry *ledger.LedgerEntry) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeEntryRepo) Latest(_ context.Context, itemID, warehouseID uuid.UUID) (*ledger.LedgerEntry, error) {
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].ItemID == itemID && r.entries[i].WarehouseID == warehouseID {
			copied := r.entries[i]
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeEntryRepo) Replay(_ context.Context, itemID, warehouseID uuid.UUID, from, to time.Time) ([]ledger.LedgerEntry, error) {
	matched := make([]ledger.LedgerEntry, 0)
	for _, entry := range r.entries {
		if entry.ItemID != itemID || entry.WarehouseID != warehouseID {
			continue
		}
		if !from.IsZero() && entry.PostedAt.Before(from) {
			continue
		}
		if !to.IsZero() && entry.PostedAt.After(to) {
			continue
		}
		matched = append(matched, entry)
	}
	return matched, nil
}

func (r *fakeEntryRepo) FindByRef(_ context.Context, refType ledger.RefType, refID string) ([]ledger.LedgerEntry, error) {
	matched := make([]ledger.LedgerEntry, 0)
	for _, entry := range r.entries {
		if entry.RefType == refType && entry.RefID == refID {
			matched = append(matched, entry)
		}
	}
	return matched, nil
}

func (r *fakeEntryRepo) forKey(itemID, warehouseID uuid.UUID) []ledger.LedgerEntry {
	matched := make([]ledger.LedgerEntry, 0)
	for _, entry := range r.entries {
		if entry.ItemID == itemID && entry.WarehouseID == warehouseID {
			matched = append(matched, entry)
		}
	}
	return matched
}

type fakeLotRepo struct {
	lots map[uuid.UUID]*ledger.StockLot
}

func newFakeLotRepo() *fakeLotRepo {
	return &fakeLotRepo{lots: make(map[uuid.UUID]*ledger.StockLot)}
}

func (r *fakeLotRepo) FindOpen(_ context.Context, itemID, warehouseID uuid.UUID) ([]ledger.StockLot, error) {
	open := make([]ledger.StockLot, 0)
	for _, lot := range r.lots {
		if lot.ItemID == itemID && lot.WarehouseID == warehouseID && lot.IsOpen() {
			open = append(open, *lot)
		}
	}
	sort.Slice(open, func(i, j int) bool {
		if !open[i].ReceivedAt.Equal(open[j].ReceivedAt) {
			return open[i].ReceivedAt.Before(open[j].ReceivedAt)
		}
		return open[i].CreatedAt.Before(open[j].CreatedAt)
	})
	return open, nil
}

func (r *fakeLotRepo) Save(_ context.Context, lot *ledger.StockLot) error {
	copied := *lot
	r.lots[lot.ID] = &copied
	return nil
}

func (r *fakeLotRepo) SaveAll(ctx context.Context, lots []*ledger.StockLot) error {
	for _, lot := range lots {
		if err := r.Save(ctx, lot); err != nil {
			return err
		}
	}
	return nil
}

type fakeRecorder struct {
	receipts        int
	issues          int
	retriedAttempts []int
}

func (r *fakeRecorder) RecordReceipt(context.Context, ledger.CostingMethod, decimal.Decimal) {
	r.receipts++
}

func (r *fakeRecorder) RecordIssue(context.Context, ledger.CostingMethod, decimal.Decimal) {
	r.issues++
}

func (r *fakeRecorder) RecordConflictRetry(_ context.Context, attempts int) {
	r.retriedAttempts = append(r.retriedAttempts, attempts)
}

var (
	_ ledger.ItemRepository        = (*fakeItemRepo)(nil)
	_ ledger.StockLevelRepository  = (*fakeStockLevelRepo)(nil)
	_ ledger.LedgerEntryRepository = (*fakeEntryRepo)(nil)
	_ ledger.StockLotRepository    = (*fakeLotRepo)(nil)
	_ MovementRecorder             = (*fakeRecorder)(nil)
)
