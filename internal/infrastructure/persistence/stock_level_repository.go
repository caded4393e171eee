package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockbooks/backend/internal/domain/ledger"
	"github.com/stockbooks/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockLevelRepository implements StockLevelRepository using GORM
type GormStockLevelRepository struct {
	db *gorm.DB
}

// NewGormStockLevelRepository creates a new GormStockLevelRepository
func NewGormStockLevelRepository(db *gorm.DB) *GormStockLevelRepository {
	return &GormStockLevelRepository{db: db}
}

// FindByKey finds the stock level for an (item, warehouse) key
func (r *GormStockLevelRepository) FindByKey(ctx context.Context, itemID, warehouseID uuid.UUID) (*ledger.StockLevel, error) {
	var level ledger.StockLevel
	if err := r.db.WithContext(ctx).
		Where("item_id = ? AND warehouse_id = ?", itemID, warehouseID).
		First(&level).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &level, nil
}

// GetOrCreate gets the existing stock level or creates a zero balance row
func (r *GormStockLevelRepository) GetOrCreate(ctx context.Context, itemID, warehouseID uuid.UUID) (*ledger.StockLevel, error) {
	level, err := r.FindByKey(ctx, itemID, warehouseID)
	if err == nil {
		return level, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	level, err = ledger.NewStockLevel(itemID, warehouseID)
	if err != nil {
		return nil, err
	}

	// ON CONFLICT handles the race where two movements create the key at once
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "item_id"}, {Name: "warehouse_id"}},
			DoNothing: true,
		}).
		Create(level).Error; err != nil {
		return nil, err
	}

	return r.FindByKey(ctx, itemID, warehouseID)
}

// Save creates or updates a stock level without a version check
func (r *GormStockLevelRepository) Save(ctx context.Context, level *ledger.StockLevel) error {
	return r.db.WithContext(ctx).Save(level).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormStockLevelRepository) SaveWithLock(ctx context.Context, level *ledger.StockLevel) error {
	result := r.db.WithContext(ctx).
		Model(level).
		Where("id = ? AND version = ?", level.ID, level.Version-1).
		Updates(map[string]interface{}{
			"on_hand_qty":   level.OnHandQty,
			"on_hand_value": level.OnHandValue,
			"avg_unit_cost": level.AvgUnitCost,
			"last_seq":      level.LastSeq,
			"version":       level.Version,
			"updated_at":    level.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// SumValueByWarehouse sums on-hand value across a warehouse
func (r *GormStockLevelRepository) SumValueByWarehouse(ctx context.Context, warehouseID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&ledger.StockLevel{}).
		Select("COALESCE(SUM(on_hand_value), 0) as total").
		Where("warehouse_id = ?", warehouseID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// Ensure GormStockLevelRepository implements StockLevelRepository
var _ ledger.StockLevelRepository = (*GormStockLevelRepository)(nil)
