package accounting

import (
	"context"

	"github.com/stockbooks/backend/internal/domain/accounting"
)

// TransactionScope provides transactional access to accounting repositories.
// Allocating the journal number and persisting the journal with all of its
// lines must happen inside a single Execute call so a failure writes nothing.
type TransactionScope interface {
	// Execute runs the given function within a database transaction
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the accounting repositories
// scoped to one transaction.
type TransactionalRepositories interface {
	// AccountRepo returns the chart-of-accounts repository
	AccountRepo() accounting.AccountRepository
	// JournalRepo returns the journal repository
	JournalRepo() accounting.JournalRepository
}

// NoOpTransactionScope runs the function against fixed repositories without
// a real transaction. Used by unit tests with in-memory fakes.
type NoOpTransactionScope struct {
	accountRepo accounting.AccountRepository
	journalRepo accounting.JournalRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	accountRepo accounting.AccountRepository,
	journalRepo accounting.JournalRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		accountRepo: accountRepo,
		journalRepo: journalRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// AccountRepo returns the account repository
func (s *NoOpTransactionScope) AccountRepo() accounting.AccountRepository {
	return s.accountRepo
}

// JournalRepo returns the journal repository
func (s *NoOpTransactionScope) JournalRepo() accounting.JournalRepository {
	return s.journalRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
