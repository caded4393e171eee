package accounting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stockbooks/backend/internal/domain/shared"
	"github.com/stockbooks/backend/internal/domain/shared/valueobject"
)

// AccountRepository defines the interface for chart-of-accounts persistence.
// The chart is read-mostly: accounts are created during setup and looked up
// on every journal post.
type AccountRepository interface {
	// FindByID finds an account by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// FindByCode finds an account by its stable external code
	FindByCode(ctx context.Context, code string) (*Account, error)

	// FindByCodes resolves multiple codes in one round trip; the result
	// map only contains codes that exist
	FindByCodes(ctx context.Context, codes []string) (map[string]*Account, error)

	// FindAll finds accounts matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Account, error)

	// Save creates or updates an account
	Save(ctx context.Context, account *Account) error
}

// AccountBalance is one row of a trial balance: the debit/credit sums for
// an account over a date range.
type AccountBalance struct {
	AccountID   uuid.UUID
	Code        string
	Name        string
	AccountType AccountType
	TotalDebit  valueobject.Money
	TotalCredit valueobject.Money
}

// JournalRepository defines the interface for journal persistence. Journals
// and their lines are created exactly once and never mutated.
type JournalRepository interface {
	// NextJournalNo allocates the next sequential journal number. The
	// allocation must be safe against concurrent posters.
	NextJournalNo(ctx context.Context) (string, error)

	// Create persists a journal and all of its lines atomically
	Create(ctx context.Context, journal *Journal) error

	// FindByID finds a journal with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*Journal, error)

	// FindByJournalNo finds a journal by its human-readable number
	FindByJournalNo(ctx context.Context, journalNo string) (*Journal, error)

	// FindByDateRange finds journals posted within [from, to]
	FindByDateRange(ctx context.Context, from, to time.Time, filter shared.Filter) ([]Journal, error)

	// SumByAccount computes per-account debit/credit sums over a date
	// range; feeds the trial balance and statement views
	SumByAccount(ctx context.Context, from, to time.Time) ([]AccountBalance, error)
}
