package ledger

import (
	"context"

	"github.com/stockbooks/backend/internal/domain/ledger"
)

// TransactionScope provides transactional access to ledger repositories.
// When a function is executed within a scope, all repository operations are
// part of the same database transaction and commit or roll back atomically.
// The running-balance read, the lot updates and the entry append for one
// movement must all happen inside a single Execute call.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the ledger repositories
// scoped to one transaction.
type TransactionalRepositories interface {
	// StockLevelRepo returns the running-balance repository
	StockLevelRepo() ledger.StockLevelRepository
	// EntryRepo returns the append-only valued ledger repository
	EntryRepo() ledger.LedgerEntryRepository
	// LotRepo returns the open-lot repository
	LotRepo() ledger.StockLotRepository
}

// NoOpTransactionScope runs the function against fixed repositories without
// a real transaction. Used by unit tests with in-memory fakes.
type NoOpTransactionScope struct {
	levelRepo ledger.StockLevelRepository
	entryRepo ledger.LedgerEntryRepository
	lotRepo   ledger.StockLotRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	levelRepo ledger.StockLevelRepository,
	entryRepo ledger.LedgerEntryRepository,
	lotRepo ledger.StockLotRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		levelRepo: levelRepo,
		entryRepo: entryRepo,
		lotRepo:   lotRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// StockLevelRepo returns the stock level repository
func (s *NoOpTransactionScope) StockLevelRepo() ledger.StockLevelRepository {
	return s.levelRepo
}

// EntryRepo returns the ledger entry repository
func (s *NoOpTransactionScope) EntryRepo() ledger.LedgerEntryRepository {
	return s.entryRepo
}

// LotRepo returns the stock lot repository
func (s *NoOpTransactionScope) LotRepo() ledger.StockLotRepository {
	return s.lotRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
