package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockbooks/backend/internal/domain/shared"
)

// StockLot is a persisted open receipt lot for a (item, warehouse) key.
// Lots back FIFO costing and the inventory aging report: every receipt opens
// a lot, every issue decrements the oldest open lots exactly once, so the
// remaining lot quantities always reflect true on-hand stock by receipt age.
type StockLot struct {
	shared.BaseEntity
	ItemID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_lot_key,priority:1"`
	WarehouseID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_lot_key,priority:2"`
	Qty          decimal.Decimal `gorm:"type:decimal(18,4);not null"` // quantity originally received
	RemainingQty decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReceivedAt   time.Time       `gorm:"type:timestamptz;not null;index:idx_stock_lot_key,priority:3"`
	Consumed     bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (StockLot) TableName() string {
	return "stock_lots"
}

// NewStockLot opens a new lot for a received quantity
func NewStockLot(itemID, warehouseID uuid.UUID, qty, unitCost decimal.Decimal) (*StockLot, error) {
	if qty.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidQuantity
	}
	if unitCost.IsNegative() {
		return nil, shared.ErrInvalidQuantity
	}

	return &StockLot{
		BaseEntity:   shared.NewBaseEntity(),
		ItemID:       itemID,
		WarehouseID:  warehouseID,
		Qty:          qty,
		RemainingQty: qty,
		UnitCost:     unitCost,
		ReceivedAt:   time.Now(),
		Consumed:     false,
	}, nil
}

// Deduct reduces the lot's remaining quantity and returns the quantity
// actually taken (capped at what the lot still holds).
func (l *StockLot) Deduct(qty decimal.Decimal) decimal.Decimal {
	if qty.GreaterThanOrEqual(l.RemainingQty) {
		taken := l.RemainingQty
		l.RemainingQty = decimal.Zero
		l.Consumed = true
		l.UpdatedAt = time.Now()
		return taken
	}

	l.RemainingQty = l.RemainingQty.Sub(qty)
	l.UpdatedAt = time.Now()
	return qty
}

// RemainingValue returns the value of the remaining quantity at lot cost
func (l *StockLot) RemainingValue() decimal.Decimal {
	return l.RemainingQty.Mul(l.UnitCost)
}

// IsOpen returns true if the lot still holds stock
func (l *StockLot) IsOpen() bool {
	return !l.Consumed && l.RemainingQty.GreaterThan(decimal.Zero)
}

// AgeDays returns the lot age in whole days as of the given time
func (l *StockLot) AgeDays(asOf time.Time) int {
	return int(asOf.Sub(l.ReceivedAt).Hours() / 24)
}
