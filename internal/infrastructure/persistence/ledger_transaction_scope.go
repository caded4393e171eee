package persistence

import (
	"context"

	appledger "github.com/stockbooks/backend/internal/application/ledger"
	"github.com/stockbooks/backend/internal/domain/ledger"
	"gorm.io/gorm"
)

// GormLedgerTransactionScope implements the ledger TransactionScope using
// GORM transactions. Every stock movement commits its running balance, its
// ledger entry and its lot changes in one transaction.
type GormLedgerTransactionScope struct {
	db *gorm.DB
}

// NewGormLedgerTransactionScope creates a new GormLedgerTransactionScope
func NewGormLedgerTransactionScope(db *gorm.DB) *GormLedgerTransactionScope {
	return &GormLedgerTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormLedgerTransactionScope) Execute(ctx context.Context, fn func(repos appledger.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormLedgerRepositories{tx: tx})
	})
}

// gormLedgerRepositories provides repositories scoped to one transaction
type gormLedgerRepositories struct {
	tx *gorm.DB
}

// StockLevelRepo returns the stock level repository scoped to the current transaction
func (r *gormLedgerRepositories) StockLevelRepo() ledger.StockLevelRepository {
	return NewGormStockLevelRepository(r.tx)
}

// EntryRepo returns the ledger entry repository scoped to the current transaction
func (r *gormLedgerRepositories) EntryRepo() ledger.LedgerEntryRepository {
	return NewGormLedgerEntryRepository(r.tx)
}

// LotRepo returns the stock lot repository scoped to the current transaction
func (r *gormLedgerRepositories) LotRepo() ledger.StockLotRepository {
	return NewGormStockLotRepository(r.tx)
}

// Ensure GormLedgerTransactionScope implements TransactionScope
var _ appledger.TransactionScope = (*GormLedgerTransactionScope)(nil)

// Ensure gormLedgerRepositories implements TransactionalRepositories
var _ appledger.TransactionalRepositories = (*gormLedgerRepositories)(nil)
