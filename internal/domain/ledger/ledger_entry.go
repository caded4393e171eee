package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockbooks/backend/internal/domain/shared"
)

// Direction indicates whether a ledger entry moves stock in or out
type Direction string

const (
	// DirectionIn represents stock coming into the warehouse
	DirectionIn Direction = "IN"
	// DirectionOut represents stock leaving the warehouse
	DirectionOut Direction = "OUT"
)

// String returns the string representation of Direction
func (d Direction) String() string {
	return string(d)
}

// IsValid returns true if the direction is valid
func (d Direction) IsValid() bool {
	return d == DirectionIn || d == DirectionOut
}

// RefType identifies the business event that originated a ledger entry
type RefType string

const (
	RefTypePurchase       RefType = "PURCHASE"
	RefTypeProduction     RefType = "PRODUCTION"
	RefTypeSale           RefType = "SALE"
	RefTypeAdjustment     RefType = "ADJUSTMENT"
	RefTypeTransfer       RefType = "TRANSFER"
	RefTypeOpeningBalance RefType = "OPENING_BALANCE"
)

// String returns the string representation of RefType
func (r RefType) String() string {
	return string(r)
}

// IsValid returns true if the reference type is valid
func (r RefType) IsValid() bool {
	switch r {
	case RefTypePurchase, RefTypeProduction, RefTypeSale,
		RefTypeAdjustment, RefTypeTransfer, RefTypeOpeningBalance:
		return true
	}
	return false
}

// LedgerEntry is one immutable valued stock movement. Each entry carries the
// running quantity/value/average-cost snapshot after applying itself, computed
// relative to the immediately preceding entry for the same (item, warehouse)
// key. Once written, entries are never updated or deleted - corrections are
// new entries.
type LedgerEntry struct {
	shared.BaseEntity
	ItemID         uuid.UUID       `gorm:"type:uuid;not null;index:idx_ledger_key_posted,priority:1"`
	WarehouseID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_ledger_key_posted,priority:2"`
	Direction      Direction       `gorm:"type:varchar(3);not null"`
	Qty            decimal.Decimal `gorm:"type:decimal(18,4);not null"` // always a positive magnitude
	UnitCost       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Value          decimal.Decimal `gorm:"type:decimal(18,2);not null"` // magnitude; sign comes from Direction
	RunningQty     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RunningValue   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	RunningAvgCost decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RefType        RefType         `gorm:"type:varchar(20);not null;index:idx_ledger_ref"`
	RefID          string          `gorm:"type:varchar(50);not null;index:idx_ledger_ref"`
	CostingMethod  CostingMethod   `gorm:"type:varchar(20);not null"`
	Seq            int64           `gorm:"not null;index:idx_ledger_key_posted,priority:4"` // per-key insertion order, breaks PostedAt ties
	PostedAt       time.Time       `gorm:"type:timestamptz;not null;index:idx_ledger_key_posted,priority:3"`
	UserID         uuid.UUID       `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// NewLedgerEntry creates a new valued ledger entry. The running snapshot
// fields must already reflect the state after applying this movement.
func NewLedgerEntry(
	itemID, warehouseID uuid.UUID,
	direction Direction,
	qty, unitCost, value decimal.Decimal,
	runningQty, runningValue, runningAvgCost decimal.Decimal,
	refType RefType,
	refID string,
	method CostingMethod,
	seq int64,
	userID uuid.UUID,
) (*LedgerEntry, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if !direction.IsValid() {
		return nil, shared.NewDomainError("INVALID_DIRECTION", "Invalid ledger direction")
	}
	if qty.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidQuantity
	}
	if unitCost.IsNegative() {
		return nil, shared.ErrInvalidQuantity
	}
	if runningQty.IsNegative() {
		return nil, shared.ErrInsufficientStock
	}
	if !refType.IsValid() {
		return nil, shared.NewDomainError("INVALID_REF_TYPE", "Invalid reference type")
	}
	if refID == "" {
		return nil, shared.NewDomainError("INVALID_REF_ID", "Reference ID cannot be empty")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_COSTING_METHOD", "Invalid costing method")
	}

	return &LedgerEntry{
		BaseEntity:     shared.NewBaseEntity(),
		ItemID:         itemID,
		WarehouseID:    warehouseID,
		Direction:      direction,
		Qty:            qty,
		UnitCost:       unitCost,
		Value:          value,
		RunningQty:     runningQty,
		RunningValue:   runningValue,
		RunningAvgCost: runningAvgCost,
		RefType:        refType,
		RefID:          refID,
		CostingMethod:  method,
		Seq:            seq,
		PostedAt:       time.Now(),
		UserID:         userID,
	}, nil
}

// SignedQty returns the quantity signed by direction (IN positive, OUT negative)
func (e *LedgerEntry) SignedQty() decimal.Decimal {
	if e.Direction == DirectionOut {
		return e.Qty.Neg()
	}
	return e.Qty
}

// SignedValue returns the value signed by direction
func (e *LedgerEntry) SignedValue() decimal.Decimal {
	if e.Direction == DirectionOut {
		return e.Value.Neg()
	}
	return e.Value
}

// IsInbound returns true for IN entries
func (e *LedgerEntry) IsInbound() bool {
	return e.Direction == DirectionIn
}

// IsOutbound returns true for OUT entries
func (e *LedgerEntry) IsOutbound() bool {
	return e.Direction == DirectionOut
}
