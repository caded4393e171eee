package accounting

import (
	"context"
	"time"

	"github.com/stockbooks/backend/internal/domain/accounting"
	"github.com/stockbooks/backend/internal/domain/shared/valueobject"
)

// TrialBalanceRow is one account's summarized position over a period
type TrialBalanceRow struct {
	Code        string                 `json:"code"`
	Name        string                 `json:"name"`
	AccountType accounting.AccountType `json:"accountType"`
	TotalDebit  valueobject.Money      `json:"totalDebit"`
	TotalCredit valueobject.Money      `json:"totalCredit"`
	Net         valueobject.Money      `json:"net"`
}

// TrialBalance is the debit/credit summary across all posted journals in a
// period. A balanced ledger always has TotalDebit equal to TotalCredit.
type TrialBalance struct {
	From        time.Time         `json:"from"`
	To          time.Time         `json:"to"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  valueobject.Money `json:"totalDebit"`
	TotalCredit valueobject.Money `json:"totalCredit"`
}

// TrialBalanceService aggregates posted journal lines into per-account sums
type TrialBalanceService struct {
	journalRepo accounting.JournalRepository
}

// NewTrialBalanceService creates a new TrialBalanceService
func NewTrialBalanceService(journalRepo accounting.JournalRepository) *TrialBalanceService {
	return &TrialBalanceService{journalRepo: journalRepo}
}

// Report computes the trial balance for [from, to]
func (s *TrialBalanceService) Report(ctx context.Context, from, to time.Time) (*TrialBalance, error) {
	balances, err := s.journalRepo.SumByAccount(ctx, from, to)
	if err != nil {
		return nil, err
	}

	report := &TrialBalance{
		From:        from,
		To:          to,
		Rows:        make([]TrialBalanceRow, 0, len(balances)),
		TotalDebit:  valueobject.ZeroMoney(),
		TotalCredit: valueobject.ZeroMoney(),
	}
	for _, balance := range balances {
		// Net follows the account's normal balance side so asset and
		// expense rows read positive when debited.
		net := balance.TotalDebit.Subtract(balance.TotalCredit)
		if balance.AccountType.NormalBalance() == accounting.NormalBalanceCredit {
			net = balance.TotalCredit.Subtract(balance.TotalDebit)
		}
		report.Rows = append(report.Rows, TrialBalanceRow{
			Code:        balance.Code,
			Name:        balance.Name,
			AccountType: balance.AccountType,
			TotalDebit:  balance.TotalDebit,
			TotalCredit: balance.TotalCredit,
			Net:         net,
		})
		report.TotalDebit = report.TotalDebit.Add(balance.TotalDebit)
		report.TotalCredit = report.TotalCredit.Add(balance.TotalCredit)
	}
	return report, nil
}
