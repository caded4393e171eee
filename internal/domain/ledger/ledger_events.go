package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockbooks/backend/internal/domain/shared"
)

// Event types for the ledger context
const (
	EventTypeStockReceived = "ledger.stock_received"
	EventTypeStockIssued   = "ledger.stock_issued"
)

// StockReceivedEvent is emitted when an IN entry is appended
type StockReceivedEvent struct {
	shared.BaseDomainEvent
	ItemID      uuid.UUID       `json:"item_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Qty         decimal.Decimal `json:"qty"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Value       decimal.Decimal `json:"value"`
	RefType     RefType         `json:"ref_type"`
	RefID       string          `json:"ref_id"`
}

// NewStockReceivedEvent creates a new StockReceivedEvent from the appended entry
func NewStockReceivedEvent(entry *LedgerEntry) *StockReceivedEvent {
	return &StockReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReceived, "StockLevel", entry.ID),
		ItemID:          entry.ItemID,
		WarehouseID:     entry.WarehouseID,
		Qty:             entry.Qty,
		UnitCost:        entry.UnitCost,
		Value:           entry.Value,
		RefType:         entry.RefType,
		RefID:           entry.RefID,
	}
}

// StockIssuedEvent is emitted when an OUT entry is appended
type StockIssuedEvent struct {
	shared.BaseDomainEvent
	ItemID      uuid.UUID       `json:"item_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Qty         decimal.Decimal `json:"qty"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Value       decimal.Decimal `json:"value"`
	RefType     RefType         `json:"ref_type"`
	RefID       string          `json:"ref_id"`
}

// NewStockIssuedEvent creates a new StockIssuedEvent from the appended entry
func NewStockIssuedEvent(entry *LedgerEntry) *StockIssuedEvent {
	return &StockIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockIssued, "StockLevel", entry.ID),
		ItemID:          entry.ItemID,
		WarehouseID:     entry.WarehouseID,
		Qty:             entry.Qty,
		UnitCost:        entry.UnitCost,
		Value:           entry.Value,
		RefType:         entry.RefType,
		RefID:           entry.RefID,
	}
}
