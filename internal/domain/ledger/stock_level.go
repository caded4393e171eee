package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockbooks/backend/internal/domain/shared"
)

// AvgCostScale is the rounding scale for running average cost
const AvgCostScale = 4

// ValueScale is the rounding scale for monetary values
const ValueScale = 2

// StockLevel is the running balance per (item, warehouse) key. It is the
// correctness-critical shared resource: concurrent movements against the same
// key are serialized through its version column, and every committed change
// is paired with exactly one appended ledger entry.
type StockLevel struct {
	shared.BaseAggregateRoot
	ItemID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_level_key,priority:1"`
	WarehouseID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_level_key,priority:2"`
	OnHandQty   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	OnHandValue decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	AvgUnitCost decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LastSeq     int64           `gorm:"not null;default:0"` // sequence of the latest ledger entry for this key
}

// TableName returns the table name for GORM
func (StockLevel) TableName() string {
	return "stock_levels"
}

// NewStockLevel creates a zero-balance stock level for a key
func NewStockLevel(itemID, warehouseID uuid.UUID) (*StockLevel, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}

	return &StockLevel{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ItemID:            itemID,
		WarehouseID:       warehouseID,
		OnHandQty:         decimal.Zero,
		OnHandValue:       decimal.Zero,
		AvgUnitCost:       decimal.Zero,
	}, nil
}

// NextSeq returns the sequence number the next ledger entry should carry
func (s *StockLevel) NextSeq() int64 {
	return s.LastSeq + 1
}

// ApplyReceipt adds the received quantity and value to the running balance
// and recomputes the weighted average cost:
// newAvg = (onHandValue + value) / (onHandQty + qty).
func (s *StockLevel) ApplyReceipt(qty, value decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidQuantity
	}
	if value.IsNegative() {
		return shared.ErrInvalidQuantity
	}

	s.OnHandQty = s.OnHandQty.Add(qty)
	s.OnHandValue = s.OnHandValue.Add(value)
	s.AvgUnitCost = s.OnHandValue.Div(s.OnHandQty).Round(AvgCostScale)
	s.LastSeq++
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// ApplyIssue removes the issued quantity and value from the running balance.
// The average cost of the remaining stock is invariant under a proportional
// removal, so it is only recomputed from the remaining totals (and reset to
// zero when the key is emptied).
func (s *StockLevel) ApplyIssue(qty, value decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidQuantity
	}
	if qty.GreaterThan(s.OnHandQty) {
		return shared.ErrInsufficientStock
	}

	s.OnHandQty = s.OnHandQty.Sub(qty)
	s.OnHandValue = s.OnHandValue.Sub(value)
	if s.OnHandQty.IsZero() {
		// avoid stranding rounding residue on an empty key
		s.OnHandValue = decimal.Zero
		s.AvgUnitCost = decimal.Zero
	} else {
		s.AvgUnitCost = s.OnHandValue.Div(s.OnHandQty).Round(AvgCostScale)
	}
	s.LastSeq++
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// CanIssue returns true if the on-hand quantity can cover the requested issue
func (s *StockLevel) CanIssue(qty decimal.Decimal) bool {
	return s.OnHandQty.GreaterThanOrEqual(qty)
}

// IsEmpty returns true if no stock is on hand
func (s *StockLevel) IsEmpty() bool {
	return s.OnHandQty.IsZero()
}
