package handler

import (
	"github.com/shopspring/decimal"
)

// ReceiveRequest is the payload for posting an inbound stock movement
type ReceiveRequest struct {
	ItemID      string          `json:"item_id" binding:"required,uuid"`
	WarehouseID string          `json:"warehouse_id" binding:"required,uuid"`
	Qty         decimal.Decimal `json:"qty" binding:"required,gt=0"`
	UnitCost    decimal.Decimal `json:"unit_cost" binding:"gte=0"`
	RefType     string          `json:"ref_type" binding:"required,oneof=PURCHASE PRODUCTION ADJUSTMENT OPENING_BALANCE"`
	RefID       string          `json:"ref_id" binding:"required"`
}

// IssueRequest is the payload for posting an outbound stock movement.
// No cost field: the costing policy decides what the issue is worth.
type IssueRequest struct {
	ItemID      string          `json:"item_id" binding:"required,uuid"`
	WarehouseID string          `json:"warehouse_id" binding:"required,uuid"`
	Qty         decimal.Decimal `json:"qty" binding:"required,gt=0"`
	RefType     string          `json:"ref_type" binding:"required,oneof=SALE PRODUCTION ADJUSTMENT"`
	RefID       string          `json:"ref_id" binding:"required"`
}

// TransferRequest is the payload for moving stock between warehouses
type TransferRequest struct {
	ItemID          string          `json:"item_id" binding:"required,uuid"`
	FromWarehouseID string          `json:"from_warehouse_id" binding:"required,uuid"`
	ToWarehouseID   string          `json:"to_warehouse_id" binding:"required,uuid"`
	Qty             decimal.Decimal `json:"qty" binding:"required,gt=0"`
	RefID           string          `json:"ref_id" binding:"required"`
}

// OpeningBalanceRequest is the payload for loading an initial balance
type OpeningBalanceRequest struct {
	ItemID      string          `json:"item_id" binding:"required,uuid"`
	WarehouseID string          `json:"warehouse_id" binding:"required,uuid"`
	Qty         decimal.Decimal `json:"qty" binding:"required,gt=0"`
	UnitCost    decimal.Decimal `json:"unit_cost" binding:"required,gte=0"`
	RefID       string          `json:"ref_id" binding:"required"`
}

// StockKeyRequest identifies one (item, warehouse) key in the path
type StockKeyRequest struct {
	ItemID      string `uri:"item_id" binding:"required,uuid"`
	WarehouseID string `uri:"warehouse_id" binding:"required,uuid"`
}

// StockCardRequest selects the replay window for a stock card
type StockCardRequest struct {
	From string `form:"from" binding:"omitempty"`
	To   string `form:"to" binding:"omitempty"`
}
