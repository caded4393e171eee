package accounting

import (
	"context"
	"errors"
	"sync"

	"github.com/stockbooks/backend/internal/domain/accounting"
	"github.com/stockbooks/backend/internal/domain/shared"
)

// Well-known account codes that orchestrating callers use when building
// journal lines for stock movements. They are seeded configuration, not
// hard-coded by the posting engine itself.
const (
	CodeInventory               = "1300"
	CodeWorkInProgress          = "1310"
	CodeFinishedGoods           = "1320"
	CodeAccountsReceivable      = "1100"
	CodeCash                    = "1000"
	CodeAccountsPayable         = "2100"
	CodeCostOfSales             = "5000"
	CodeDepreciationExpense     = "6100"
	CodeAccumulatedDepreciation = "1510"
	CodeDisposalGainLoss        = "7100"
)

// AccountRegistry is the read-only lookup from a stable account code to the
// internal account and its classification. Resolved accounts are cached in
// process; the chart of accounts is effectively immutable at runtime.
type AccountRegistry struct {
	repo accounting.AccountRepository

	mu    sync.RWMutex
	cache map[string]*accounting.Account
}

// NewAccountRegistry creates a new AccountRegistry
func NewAccountRegistry(repo accounting.AccountRepository) *AccountRegistry {
	return &AccountRegistry{
		repo:  repo,
		cache: make(map[string]*accounting.Account),
	}
}

// Resolve returns the account for a code, or shared.ErrUnknownAccount
func (r *AccountRegistry) Resolve(ctx context.Context, code string) (*accounting.Account, error) {
	r.mu.RLock()
	if account, ok := r.cache[code]; ok {
		r.mu.RUnlock()
		return account, nil
	}
	r.mu.RUnlock()

	account, err := r.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnknownAccount
		}
		return nil, err
	}

	r.mu.Lock()
	r.cache[code] = account
	r.mu.Unlock()
	return account, nil
}

// ResolveAll resolves a set of codes; it fails with shared.ErrUnknownAccount
// if any code is unresolvable.
func (r *AccountRegistry) ResolveAll(ctx context.Context, codes []string) (map[string]*accounting.Account, error) {
	resolved := make(map[string]*accounting.Account, len(codes))
	missing := make([]string, 0)

	r.mu.RLock()
	for _, code := range codes {
		if account, ok := r.cache[code]; ok {
			resolved[code] = account
		} else {
			missing = append(missing, code)
		}
	}
	r.mu.RUnlock()

	if len(missing) > 0 {
		fetched, err := r.repo.FindByCodes(ctx, missing)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		for _, code := range missing {
			account, ok := fetched[code]
			if !ok {
				r.mu.Unlock()
				return nil, shared.ErrUnknownAccount
			}
			r.cache[code] = account
			resolved[code] = account
		}
		r.mu.Unlock()
	}

	return resolved, nil
}

// Invalidate clears the cache; used after chart-of-accounts maintenance
func (r *AccountRegistry) Invalidate() {
	r.mu.Lock()
	r.cache = make(map[string]*accounting.Account)
	r.mu.Unlock()
}

// seedAccount describes one chart-of-accounts row created during setup
type seedAccount struct {
	Code string
	Name string
	Type accounting.AccountType
}

var defaultChart = []seedAccount{
	{CodeCash, "Cash and Bank", accounting.AccountTypeCurrentAssets},
	{CodeAccountsReceivable, "Accounts Receivable", accounting.AccountTypeTradeReceivables},
	{CodeInventory, "Inventory", accounting.AccountTypeCurrentAssets},
	{CodeWorkInProgress, "Work in Progress", accounting.AccountTypeCurrentAssets},
	{CodeFinishedGoods, "Finished Goods", accounting.AccountTypeCurrentAssets},
	{CodeAccumulatedDepreciation, "Accumulated Depreciation", accounting.AccountTypeNonCurrentAssets},
	{CodeAccountsPayable, "Accounts Payable", accounting.AccountTypeTradePayables},
	{"3000", "Share Capital", accounting.AccountTypeEquity},
	{"4000", "Sales Revenue", accounting.AccountTypeIncome},
	{CodeDisposalGainLoss, "Gain/Loss on Disposal", accounting.AccountTypeOtherIncome},
	{CodeCostOfSales, "Cost of Goods Sold", accounting.AccountTypeCostOfSales},
	{CodeDepreciationExpense, "Depreciation Expense", accounting.AccountTypeExpenses},
	{"6000", "Operating Expenses", accounting.AccountTypeExpenses},
}

// SeedDefaultChart creates the default chart of accounts, skipping codes
// that already exist. Called by the migrate command.
func SeedDefaultChart(ctx context.Context, repo accounting.AccountRepository) error {
	for _, row := range defaultChart {
		if _, err := repo.FindByCode(ctx, row.Code); err == nil {
			continue
		} else if !errors.Is(err, shared.ErrNotFound) {
			return err
		}

		account, err := accounting.NewAccount(row.Code, row.Name, row.Type)
		if err != nil {
			return err
		}
		if err := repo.Save(ctx, account); err != nil {
			return err
		}
	}
	return nil
}
