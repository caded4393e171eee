package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stockbooks/backend/internal/domain/ledger"
	"github.com/stockbooks/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormLedgerEntryRepository implements LedgerEntryRepository using GORM.
// The table is append-only: no update or delete path exists.
type GormLedgerEntryRepository struct {
	db *gorm.DB
}

// NewGormLedgerEntryRepository creates a new GormLedgerEntryRepository
func NewGormLedgerEntryRepository(db *gorm.DB) *GormLedgerEntryRepository {
	return &GormLedgerEntryRepository{db: db}
}

// Append persists a new ledger entry
func (r *GormLedgerEntryRepository) Append(ctx context.Context, entry *ledger.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// Latest returns the most recent entry for a key
func (r *GormLedgerEntryRepository) Latest(ctx context.Context, itemID, warehouseID uuid.UUID) (*ledger.LedgerEntry, error) {
	var entry ledger.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("item_id = ? AND warehouse_id = ?", itemID, warehouseID).
		Order("posted_at DESC, seq DESC").
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// Replay returns the ordered entries for a key within [from, to]. Seq breaks
// ties between entries sharing a posted-at timestamp, so replaying in this
// order reproduces every running balance exactly.
func (r *GormLedgerEntryRepository) Replay(ctx context.Context, itemID, warehouseID uuid.UUID, from, to time.Time) ([]ledger.LedgerEntry, error) {
	var entries []ledger.LedgerEntry
	query := r.db.WithContext(ctx).
		Where("item_id = ? AND warehouse_id = ?", itemID, warehouseID)
	if !from.IsZero() {
		query = query.Where("posted_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("posted_at <= ?", to)
	}

	if err := query.Order("posted_at ASC, seq ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByRef returns all entries originating from one business document
func (r *GormLedgerEntryRepository) FindByRef(ctx context.Context, refType ledger.RefType, refID string) ([]ledger.LedgerEntry, error) {
	var entries []ledger.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("ref_type = ? AND ref_id = ?", refType, refID).
		Order("posted_at ASC, seq ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Ensure GormLedgerEntryRepository implements LedgerEntryRepository
var _ ledger.LedgerEntryRepository = (*GormLedgerEntryRepository)(nil)
