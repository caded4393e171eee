package accounting

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/stockbooks/backend/internal/domain/accounting"
	"github.com/stockbooks/backend/internal/domain/shared"
	"github.com/stockbooks/backend/internal/domain/shared/valueobject"
)

type fakeAccountRepo struct {
	accounts map[string]*accounting.Account
	calls    int
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[string]*accounting.Account)}
}

func (r *fakeAccountRepo) add(account *accounting.Account) {
	r.accounts[account.Code] = account
}

func (r *fakeAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*accounting.Account, error) {
	for _, account := range r.accounts {
		if account.ID == id {
			return account, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeAccountRepo) FindByCode(_ context.Context, code string) (*accounting.Account, error) {
	r.calls++
	account, ok := r.accounts[code]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return account, nil
}

func (r *fakeAccountRepo) FindByCodes(_ context.Context, codes []string) (map[string]*accounting.Account, error) {
	r.calls++
	found := make(map[string]*accounting.Account)
	for _, code := range codes {
		if account, ok := r.accounts[code]; ok {
			found[code] = account
		}
	}
	return found, nil
}

func (r *fakeAccountRepo) FindAll(_ context.Context, _ shared.Filter) ([]accounting.Account, error) {
	accounts := make([]accounting.Account, 0, len(r.accounts))
	for _, account := range r.accounts {
		accounts = append(accounts, *account)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Code < accounts[j].Code })
	return accounts, nil
}

func (r *fakeAccountRepo) Save(_ context.Context, account *accounting.Account) error {
	r.accounts[account.Code] = account
	return nil
}

type fakeJournalRepo struct {
	accounts *fakeAccountRepo
	journals []*accounting.Journal
	nextSeq  int64
}

func newFakeJournalRepo(accounts *fakeAccountRepo) *fakeJournalRepo {
	return &fakeJournalRepo{accounts: accounts}
}

func (r *fakeJournalRepo) NextJournalNo(_ context.Context) (string, error) {
	r.nextSeq++
	return accounting.FormatJournalNo(r.nextSeq), nil
}

func (r *fakeJournalRepo) Create(_ context.Context, journal *accounting.Journal) error {
	r.journals = append(r.journals, journal)
	return nil
}

func (r *fakeJournalRepo) FindByID(_ context.Context, id uuid.UUID) (*accounting.Journal, error) {
	for _, journal := range r.journals {
		if journal.ID == id {
			return journal, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeJournalRepo) FindByJournalNo(_ context.Context, journalNo string) (*accounting.Journal, error) {
	for _, journal := range r.journals {
		if journal.JournalNo == journalNo {
			return journal, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeJournalRepo) FindByDateRange(_ context.Context, from, to time.Time, _ shared.Filter) ([]accounting.Journal, error) {
	matched := make([]accounting.Journal, 0)
	for _, journal := range r.journals {
		if journal.Date.Before(from) || journal.Date.After(to) {
			continue
		}
		matched = append(matched, *journal)
	}
	return matched, nil
}

func (r *fakeJournalRepo) SumByAccount(ctx context.Context, from, to time.Time) ([]accounting.AccountBalance, error) {
	sums := make(map[uuid.UUID]*accounting.AccountBalance)
	for _, journal := range r.journals {
		if journal.Date.Before(from) || journal.Date.After(to) {
			continue
		}
		for i := range journal.Lines {
			line := &journal.Lines[i]
			balance, ok := sums[line.AccountID]
			if !ok {
				account, err := r.accounts.FindByID(ctx, line.AccountID)
				if err != nil {
					return nil, err
				}
				balance = &accounting.AccountBalance{
					AccountID:   account.ID,
					Code:        account.Code,
					Name:        account.Name,
					AccountType: account.AccountType,
					TotalDebit:  valueobject.ZeroMoney(),
					TotalCredit: valueobject.ZeroMoney(),
				}
				sums[line.AccountID] = balance
			}
			balance.TotalDebit = balance.TotalDebit.Add(line.Debit)
			balance.TotalCredit = balance.TotalCredit.Add(line.Credit)
		}
	}

	balances := make([]accounting.AccountBalance, 0, len(sums))
	for _, balance := range sums {
		balances = append(balances, *balance)
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].Code < balances[j].Code })
	return balances, nil
}

var (
	_ accounting.AccountRepository = (*fakeAccountRepo)(nil)
	_ accounting.JournalRepository = (*fakeJournalRepo)(nil)
)
