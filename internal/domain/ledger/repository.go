package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockbooks/backend/internal/domain/shared"
)

// ItemRepository defines the interface for item persistence
type ItemRepository interface {
	// FindByID finds an item by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)

	// FindBySKU finds an item by its SKU
	FindBySKU(ctx context.Context, sku string) (*Item, error)

	// FindAll finds items matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Item, error)

	// Save creates or updates an item
	Save(ctx context.Context, item *Item) error

	// Count counts items matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// WarehouseRepository defines the interface for warehouse persistence
type WarehouseRepository interface {
	// FindByID finds a warehouse by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Warehouse, error)

	// FindByCode finds a warehouse by its code
	FindByCode(ctx context.Context, code string) (*Warehouse, error)

	// FindAll finds warehouses matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Warehouse, error)

	// Save creates or updates a warehouse
	Save(ctx context.Context, warehouse *Warehouse) error
}

// StockLevelRepository defines the interface for running-balance persistence.
// SaveWithLock must fail with shared.ErrConcurrencyConflict when the row was
// modified since it was read; callers retry the whole movement.
type StockLevelRepository interface {
	// FindByKey finds the stock level for an (item, warehouse) key
	FindByKey(ctx context.Context, itemID, warehouseID uuid.UUID) (*StockLevel, error)

	// GetOrCreate returns the stock level for a key, creating a zero
	// balance row if none exists yet
	GetOrCreate(ctx context.Context, itemID, warehouseID uuid.UUID) (*StockLevel, error)

	// Save creates or updates a stock level without a version check
	Save(ctx context.Context, level *StockLevel) error

	// SaveWithLock updates the stock level only if the stored version
	// matches the version the aggregate was loaded with
	SaveWithLock(ctx context.Context, level *StockLevel) error

	// SumValueByWarehouse sums on-hand value across a warehouse
	SumValueByWarehouse(ctx context.Context, warehouseID uuid.UUID) (decimal.Decimal, error)
}

// LedgerEntryRepository defines the interface for the append-only valued
// ledger. Entries are never updated or deleted.
type LedgerEntryRepository interface {
	// Append persists a new ledger entry
	Append(ctx context.Context, entry *LedgerEntry) error

	// Latest returns the most recent entry for a key, or shared.ErrNotFound
	// when the key has no entries yet
	Latest(ctx context.Context, itemID, warehouseID uuid.UUID) (*LedgerEntry, error)

	// Replay returns the ordered entries for a key within [from, to],
	// ordered by posted-at with insertion order breaking ties
	Replay(ctx context.Context, itemID, warehouseID uuid.UUID, from, to time.Time) ([]LedgerEntry, error)

	// FindByRef returns all entries originating from one business document
	FindByRef(ctx context.Context, refType RefType, refID string) ([]LedgerEntry, error)
}

// StockLotRepository defines the interface for open-lot persistence
type StockLotRepository interface {
	// FindOpen returns the open lots for a key ordered oldest-first
	FindOpen(ctx context.Context, itemID, warehouseID uuid.UUID) ([]StockLot, error)

	// Save creates or updates a single lot
	Save(ctx context.Context, lot *StockLot) error

	// SaveAll creates or updates multiple lots
	SaveAll(ctx context.Context, lots []*StockLot) error
}
