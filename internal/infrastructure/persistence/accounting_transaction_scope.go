package persistence

import (
	"context"

	appacct "github.com/stockbooks/backend/internal/application/accounting"
	"github.com/stockbooks/backend/internal/domain/accounting"
	"gorm.io/gorm"
)

// GormAccountingTransactionScope implements the accounting TransactionScope
// using GORM transactions. Journal number allocation and the journal insert
// share one transaction so no number is ever burned by a failed post.
type GormAccountingTransactionScope struct {
	db *gorm.DB
}

// NewGormAccountingTransactionScope creates a new GormAccountingTransactionScope
func NewGormAccountingTransactionScope(db *gorm.DB) *GormAccountingTransactionScope {
	return &GormAccountingTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormAccountingTransactionScope) Execute(ctx context.Context, fn func(repos appacct.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormAccountingRepositories{tx: tx})
	})
}

// gormAccountingRepositories provides repositories scoped to one transaction
type gormAccountingRepositories struct {
	tx *gorm.DB
}

// AccountRepo returns the account repository scoped to the current transaction
func (r *gormAccountingRepositories) AccountRepo() accounting.AccountRepository {
	return NewGormAccountRepository(r.tx)
}

// JournalRepo returns the journal repository scoped to the current transaction
func (r *gormAccountingRepositories) JournalRepo() accounting.JournalRepository {
	return NewGormJournalRepository(r.tx)
}

// Ensure GormAccountingTransactionScope implements TransactionScope
var _ appacct.TransactionScope = (*GormAccountingTransactionScope)(nil)

// Ensure gormAccountingRepositories implements TransactionalRepositories
var _ appacct.TransactionalRepositories = (*gormAccountingRepositories)(nil)
