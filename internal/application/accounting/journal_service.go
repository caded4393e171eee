package accounting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockbooks/backend/internal/domain/accounting"
	"github.com/stockbooks/backend/internal/domain/shared"
	"github.com/stockbooks/backend/internal/domain/shared/valueobject"
)

// JournalLineInput is one requested journal line, addressed by account code
type JournalLineInput struct {
	AccountCode string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	RefType     string
	RefID       string
}

// PostJournalCommand is a request to post one balanced journal
type PostJournalCommand struct {
	Date   time.Time
	Memo   string
	UserID uuid.UUID
	Lines  []JournalLineInput
}

// JournalService is the journal poster: it resolves account codes, validates
// the double-entry balance and persists the journal with all of its lines
// atomically. No update or delete is exposed; corrections are new journals
// with swapped debit/credit legs, composed by the caller.
type JournalService struct {
	scope    TransactionScope
	registry *AccountRegistry
}

// NewJournalService creates a new JournalService
func NewJournalService(scope TransactionScope, registry *AccountRegistry) *JournalService {
	return &JournalService{
		scope:    scope,
		registry: registry,
	}
}

// Post validates and persists a balanced journal, returning its ID.
// Validation failures (unknown account, unbalanced totals, malformed lines)
// reject the command before anything is written.
func (s *JournalService) Post(ctx context.Context, cmd PostJournalCommand) (uuid.UUID, error) {
	return s.post(ctx, s.scope, cmd)
}

// PostWithScope posts the journal inside the caller's transaction scope, so a
// business event's stock movement and its journal commit or roll back together.
func (s *JournalService) PostWithScope(ctx context.Context, scope TransactionScope, cmd PostJournalCommand) (uuid.UUID, error) {
	return s.post(ctx, scope, cmd)
}

func (s *JournalService) post(ctx context.Context, scope TransactionScope, cmd PostJournalCommand) (uuid.UUID, error) {
	if len(cmd.Lines) == 0 {
		return uuid.Nil, shared.NewDomainError("EMPTY_JOURNAL", "Journal must have at least one line")
	}

	codes := make([]string, 0, len(cmd.Lines))
	for _, line := range cmd.Lines {
		codes = append(codes, line.AccountCode)
	}
	accounts, err := s.registry.ResolveAll(ctx, codes)
	if err != nil {
		return uuid.Nil, err
	}

	lines := make([]accounting.LineInput, 0, len(cmd.Lines))
	for _, line := range cmd.Lines {
		lines = append(lines, accounting.LineInput{
			AccountID: accounts[line.AccountCode].ID,
			Debit:     valueobject.NewMoney(line.Debit),
			Credit:    valueobject.NewMoney(line.Credit),
			RefType:   line.RefType,
			RefID:     line.RefID,
		})
	}

	date := cmd.Date
	if date.IsZero() {
		date = time.Now()
	}

	var journalID uuid.UUID
	err = scope.Execute(ctx, func(repos TransactionalRepositories) error {
		journalNo, err := repos.JournalRepo().NextJournalNo(ctx)
		if err != nil {
			return err
		}

		journal, err := accounting.NewJournal(journalNo, date, cmd.Memo, cmd.UserID, lines)
		if err != nil {
			return err
		}

		if err := repos.JournalRepo().Create(ctx, journal); err != nil {
			return err
		}
		journalID = journal.ID
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return journalID, nil
}

// PostReversal posts the offsetting journal for an already-posted journal
func (s *JournalService) PostReversal(ctx context.Context, originalID uuid.UUID, memo string, userID uuid.UUID) (uuid.UUID, error) {
	var reversalID uuid.UUID
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		original, err := repos.JournalRepo().FindByID(ctx, originalID)
		if err != nil {
			return err
		}

		journalNo, err := repos.JournalRepo().NextJournalNo(ctx)
		if err != nil {
			return err
		}

		reversal, err := original.Reverse(journalNo, time.Now(), memo, userID)
		if err != nil {
			return err
		}

		if err := repos.JournalRepo().Create(ctx, reversal); err != nil {
			return err
		}
		reversalID = reversal.ID
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return reversalID, nil
}

// Get returns a journal with its lines
func (s *JournalService) Get(ctx context.Context, id uuid.UUID) (*accounting.Journal, error) {
	var journal *accounting.Journal
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		found, err := repos.JournalRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		journal = found
		return nil
	})
	return journal, err
}
