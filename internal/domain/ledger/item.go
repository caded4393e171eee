package ledger

import (
	"time"

	"github.com/stockbooks/backend/internal/domain/shared"
)

// ItemType classifies a stock-keeping unit by its role in production
type ItemType string

const (
	ItemTypeRawMaterial  ItemType = "RAW_MATERIAL"
	ItemTypeWIP          ItemType = "WIP"
	ItemTypeFinishedGood ItemType = "FINISHED_GOOD"
	ItemTypeConsumable   ItemType = "CONSUMABLE"
)

// String returns the string representation of ItemType
func (t ItemType) String() string {
	return string(t)
}

// IsValid returns true if the item type is valid
func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeRawMaterial, ItemTypeWIP, ItemTypeFinishedGood, ItemTypeConsumable:
		return true
	}
	return false
}

// Item identifies a stock-keeping unit. Identity is immutable once created;
// the costing method may be set per item or left empty to use the system default.
type Item struct {
	shared.BaseAggregateRoot
	SKU           string        `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name          string        `gorm:"type:varchar(255);not null"`
	Unit          string        `gorm:"type:varchar(20);not null"`
	ItemType      ItemType      `gorm:"type:varchar(20);not null"`
	CostingMethod CostingMethod `gorm:"type:varchar(20)"` // empty = system default
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "items"
}

// NewItem creates a new item
func NewItem(sku, name, unit string, itemType ItemType) (*Item, error) {
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Item name cannot be empty")
	}
	if unit == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit of measure cannot be empty")
	}
	if !itemType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ITEM_TYPE", "Invalid item type")
	}

	return &Item{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               sku,
		Name:              name,
		Unit:              unit,
		ItemType:          itemType,
	}, nil
}

// SetCostingMethod overrides the system default costing method for this item
func (i *Item) SetCostingMethod(method CostingMethod) error {
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_COSTING_METHOD", "Invalid costing method")
	}
	i.CostingMethod = method
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
	return nil
}

// ResolveCostingMethod returns the item's costing method, falling back to
// the given system default when the item has no override.
func (i *Item) ResolveCostingMethod(systemDefault CostingMethod) CostingMethod {
	if i.CostingMethod.IsValid() {
		return i.CostingMethod
	}
	return systemDefault
}
