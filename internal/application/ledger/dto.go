package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockbooks/backend/internal/domain/ledger"
)

// ReceiveCommand describes an inbound stock movement
type ReceiveCommand struct {
	ItemID      uuid.UUID
	WarehouseID uuid.UUID
	Qty         decimal.Decimal
	UnitCost    decimal.Decimal
	RefType     ledger.RefType
	RefID       string
	UserID      uuid.UUID
}

// IssueCommand describes an outbound stock movement; the cost is computed
// by the configured policy, never supplied by the caller
type IssueCommand struct {
	ItemID      uuid.UUID
	WarehouseID uuid.UUID
	Qty         decimal.Decimal
	RefType     ledger.RefType
	RefID       string
	UserID      uuid.UUID
}

// TransferCommand moves stock between two warehouses under one reference
type TransferCommand struct {
	ItemID          uuid.UUID
	FromWarehouseID uuid.UUID
	ToWarehouseID   uuid.UUID
	Qty             decimal.Decimal
	RefID           string
	UserID          uuid.UUID
}

// MovementResult is what the costing engine hands back to the caller; the
// journal lines for the business event are built from these amounts
type MovementResult struct {
	EntryID        uuid.UUID            `json:"entry_id"`
	UnitCost       decimal.Decimal      `json:"unit_cost"`
	Value          decimal.Decimal      `json:"value"`
	RunningQty     decimal.Decimal      `json:"running_qty"`
	RunningValue   decimal.Decimal      `json:"running_value"`
	RunningAvgCost decimal.Decimal      `json:"running_avg_cost"`
	CostingMethod  ledger.CostingMethod `json:"costing_method"`
}

// TransferResult carries both legs of a warehouse transfer
type TransferResult struct {
	Out *MovementResult `json:"out"`
	In  *MovementResult `json:"in"`
}

// StockCardQuery selects the entries to replay for one key
type StockCardQuery struct {
	ItemID      uuid.UUID
	WarehouseID uuid.UUID
	From        time.Time
	To          time.Time
}

// StockCardRow is one replayed movement on the stock card
type StockCardRow struct {
	EntryID        uuid.UUID        `json:"entry_id"`
	PostedAt       time.Time        `json:"posted_at"`
	Direction      ledger.Direction `json:"direction"`
	Qty            decimal.Decimal  `json:"qty"`
	UnitCost       decimal.Decimal  `json:"unit_cost"`
	Value          decimal.Decimal  `json:"value"`
	RunningQty     decimal.Decimal  `json:"running_qty"`
	RunningValue   decimal.Decimal  `json:"running_value"`
	RunningAvgCost decimal.Decimal  `json:"running_avg_cost"`
	RefType        ledger.RefType   `json:"ref_type"`
	RefID          string           `json:"ref_id"`
}

// StockOnHand is the latest snapshot for one key
type StockOnHand struct {
	ItemID      uuid.UUID       `json:"item_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	OnHandQty   decimal.Decimal `json:"on_hand_qty"`
	OnHandValue decimal.Decimal `json:"on_hand_value"`
	AvgUnitCost decimal.Decimal `json:"avg_unit_cost"`
}

// AgingBucket is one age band of remaining on-hand stock
type AgingBucket struct {
	Label    string          `json:"label"` // e.g. "0-30"
	MinDays  int             `json:"min_days"`
	MaxDays  int             `json:"max_days"` // -1 = unbounded
	Qty      decimal.Decimal `json:"qty"`
	Value    decimal.Decimal `json:"value"`
	LotCount int             `json:"lot_count"`
}

// AgingReport is the age-bucketed remaining quantity for one key, computed
// from the persisted open lots (lots are decremented by issues, so the
// report reflects current on-hand stock, not all-time receipts)
type AgingReport struct {
	ItemID      uuid.UUID     `json:"item_id"`
	WarehouseID uuid.UUID     `json:"warehouse_id"`
	AsOf        time.Time     `json:"as_of"`
	Buckets     []AgingBucket `json:"buckets"`
}

// ToStockCardRows maps replayed entries to stock card rows
func ToStockCardRows(entries []ledger.LedgerEntry) []StockCardRow {
	rows := make([]StockCardRow, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		rows = append(rows, StockCardRow{
			EntryID:        e.ID,
			PostedAt:       e.PostedAt,
			Direction:      e.Direction,
			Qty:            e.Qty,
			UnitCost:       e.UnitCost,
			Value:          e.Value,
			RunningQty:     e.RunningQty,
			RunningValue:   e.RunningValue,
			RunningAvgCost: e.RunningAvgCost,
			RefType:        e.RefType,
			RefID:          e.RefID,
		})
	}
	return rows
}
