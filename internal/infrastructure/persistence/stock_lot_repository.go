package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockbooks/backend/internal/domain/ledger"
	"gorm.io/gorm"
)

// GormStockLotRepository implements StockLotRepository using GORM
type GormStockLotRepository struct {
	db *gorm.DB
}

// NewGormStockLotRepository creates a new GormStockLotRepository
func NewGormStockLotRepository(db *gorm.DB) *GormStockLotRepository {
	return &GormStockLotRepository{db: db}
}

// FindOpen returns the open lots for a key ordered oldest-first. Creation
// order breaks ties between lots received at the same instant.
func (r *GormStockLotRepository) FindOpen(ctx context.Context, itemID, warehouseID uuid.UUID) ([]ledger.StockLot, error) {
	var lots []ledger.StockLot
	if err := r.db.WithContext(ctx).
		Where("item_id = ? AND warehouse_id = ? AND consumed = ? AND remaining_qty > 0", itemID, warehouseID, false).
		Order("received_at ASC, created_at ASC").
		Find(&lots).Error; err != nil {
		return nil, err
	}
	return lots, nil
}

// Save creates or updates a single lot
func (r *GormStockLotRepository) Save(ctx context.Context, lot *ledger.StockLot) error {
	return r.db.WithContext(ctx).Save(lot).Error
}

// SaveAll creates or updates multiple lots
func (r *GormStockLotRepository) SaveAll(ctx context.Context, lots []*ledger.StockLot) error {
	for _, lot := range lots {
		if err := r.db.WithContext(ctx).Save(lot).Error; err != nil {
			return err
		}
	}
	return nil
}

// Ensure GormStockLotRepository implements StockLotRepository
var _ ledger.StockLotRepository = (*GormStockLotRepository)(nil)
