package handler

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockbooks/backend/internal/domain/accounting"
	"github.com/stockbooks/backend/internal/domain/ledger"
	"github.com/stockbooks/backend/internal/domain/shared"
	"github.com/stockbooks/backend/internal/domain/shared/valueobject"
)

// In-memory repositories backing the services under test.

type memItemRepo struct {
	items map[uuid.UUID]*ledger.Item
}

func (r *memItemRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.Item, error) {
	if item, ok := r.items[id]; ok {
		return item, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memItemRepo) FindBySKU(_ context.Context, sku string) (*ledger.Item, error) {
	for _, item := range r.items {
		if item.SKU == sku {
			return item, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memItemRepo) FindAll(_ context.Context, _ shared.Filter) ([]ledger.Item, error) {
	items := make([]ledger.Item, 0, len(r.items))
	for _, item := range r.items {
		items = append(items, *item)
	}
	return items, nil
}

func (r *memItemRepo) Save(_ context.Context, item *ledger.Item) error {
	r.items[item.ID] = item
	return nil
}

func (r *memItemRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.items)), nil
}

type memLevelKey struct {
	itemID      uuid.UUID
	warehouseID uuid.UUID
}

type memLevelRepo struct {
	levels map[memLevelKey]*ledger.StockLevel
}

func (r *memLevelRepo) FindByKey(_ context.Context, itemID, warehouseID uuid.UUID) (*ledger.StockLevel, error) {
	if level, ok := r.levels[memLevelKey{itemID, warehouseID}]; ok {
		copied := *level
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memLevelRepo) GetOrCreate(ctx context.Context, itemID, warehouseID uuid.UUID) (*ledger.StockLevel, error) {
	if level, err := r.FindByKey(ctx, itemID, warehouseID); err == nil {
		return level, nil
	}
	level, err := ledger.NewStockLevel(itemID, warehouseID)
	if err != nil {
		return nil, err
	}
	r.levels[memLevelKey{itemID, warehouseID}] = level
	copied := *level
	return &copied, nil
}

func (r *memLevelRepo) Save(_ context.Context, level *ledger.StockLevel) error {
	copied := *level
	r.levels[memLevelKey{level.ItemID, level.WarehouseID}] = &copied
	return nil
}

func (r *memLevelRepo) SaveWithLock(ctx context.Context, level *ledger.StockLevel) error {
	return r.Save(ctx, level)
}

func (r *memLevelRepo) SumValueByWarehouse(_ context.Context, warehouseID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for key, level := range r.levels {
		if key.warehouseID == warehouseID {
			total = total.Add(level.OnHandValue)
		}
	}
	return total, nil
}

type memEntryRepo struct {
	entries []ledger.LedgerEntry
}

func (r *memEntryRepo) Append(_ context.Context, entry *ledger.LedgerEntry) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memEntryRepo) Latest(_ context.Context, itemID, warehouseID uuid.UUID) (*ledger.LedgerEntry, error) {
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].ItemID == itemID && r.entries[i].WarehouseID == warehouseID {
			copied := r.entries[i]
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memEntryRepo) Replay(_ context.Context, itemID, warehouseID uuid.UUID, from, to time.Time) ([]ledger.LedgerEntry, error) {
	matched := make([]ledger.LedgerEntry, 0)
	for _, entry := range r.entries {
		if entry.ItemID != itemID || entry.WarehouseID != warehouseID {
			continue
		}
		if !from.IsZero() && entry.PostedAt.Before(from) {
			continue
		}
		if !to.IsZero() && entry.PostedAt.After(to) {
			continue
		}
		matched = append(matched, entry)
	}
	return matched, nil
}

func (r *memEntryRepo) FindByRef(_ context.Context, refType ledger.RefType, refID string) ([]ledger.LedgerEntry, error) {
	matched := make([]ledger.LedgerEntry, 0)
	for _, entry := range r.entries {
		if entry.RefType == refType && entry.RefID == refID {
			matched = append(matched, entry)
		}
	}
	return matched, nil
}

type memLotRepo struct {
	lots map[uuid.UUID]*ledger.StockLot
}

func (r *memLotRepo) FindOpen(_ context.Context, itemID, warehouseID uuid.UUID) ([]ledger.StockLot, error) {
	open := make([]ledger.StockLot, 0)
	for _, lot := range r.lots {
		if lot.ItemID == itemID && lot.WarehouseID == warehouseID && lot.IsOpen() {
			open = append(open, *lot)
		}
	}
	sort.Slice(open, func(i, j int) bool { return open[i].ReceivedAt.Before(open[j].ReceivedAt) })
	return open, nil
}

func (r *memLotRepo) Save(_ context.Context, lot *ledger.StockLot) error {
	copied := *lot
	r.lots[lot.ID] = &copied
	return nil
}

func (r *memLotRepo) SaveAll(ctx context.Context, lots []*ledger.StockLot) error {
	for _, lot := range lots {
		if err := r.Save(ctx, lot); err != nil {
			return err
		}
	}
	return nil
}

type memAccountRepo struct {
	accounts map[string]*accounting.Account
}

func (r *memAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*accounting.Account, error) {
	for _, account := range r.accounts {
		if account.ID == id {
			return account, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memAccountRepo) FindByCode(_ context.Context, code string) (*accounting.Account, error) {
	if account, ok := r.accounts[code]; ok {
		return account, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memAccountRepo) FindByCodes(_ context.Context, codes []string) (map[string]*accounting.Account, error) {
	found := make(map[string]*accounting.Account)
	for _, code := range codes {
		if account, ok := r.accounts[code]; ok {
			found[code] = account
		}
	}
	return found, nil
}

func (r *memAccountRepo) FindAll(_ context.Context, _ shared.Filter) ([]accounting.Account, error) {
	accounts := make([]accounting.Account, 0, len(r.accounts))
	for _, account := range r.accounts {
		accounts = append(accounts, *account)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Code < accounts[j].Code })
	return accounts, nil
}

func (r *memAccountRepo) Save(_ context.Context, account *accounting.Account) error {
	r.accounts[account.Code] = account
	return nil
}

type memJournalRepo struct {
	accounts *memAccountRepo
	journals []*accounting.Journal
	nextSeq  int64
}

func (r *memJournalRepo) NextJournalNo(_ context.Context) (string, error) {
	r.nextSeq++
	return accounting.FormatJournalNo(r.nextSeq), nil
}

func (r *memJournalRepo) Create(_ context.Context, journal *accounting.Journal) error {
	r.journals = append(r.journals, journal)
	return nil
}

func (r *memJournalRepo) FindByID(_ context.Context, id uuid.UUID) (*accounting.Journal, error) {
	for _, journal := range r.journals {
		if journal.ID == id {
			return journal, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memJournalRepo) FindByJournalNo(_ context.Context, journalNo string) (*accounting.Journal, error) {
	for _, journal := range r.journals {
		if journal.JournalNo == journalNo {
			return journal, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memJournalRepo) FindByDateRange(_ context.Context, from, to time.Time, _ shared.Filter) ([]accounting.Journal, error) {
	matched := make([]accounting.Journal, 0)
	for _, journal := range r.journals {
		if journal.Date.Before(from) || journal.Date.After(to) {
			continue
		}
		matched = append(matched, *journal)
	}
	return matched, nil
}

func (r *memJournalRepo) SumByAccount(_ context.Context, from, to time.Time) ([]accounting.AccountBalance, error) {
	byAccount := make(map[uuid.UUID]*accounting.AccountBalance)
	for _, journal := range r.journals {
		if journal.Date.Before(from) || journal.Date.After(to) {
			continue
		}
		for _, line := range journal.Lines {
			balance, ok := byAccount[line.AccountID]
			if !ok {
				balance = &accounting.AccountBalance{
					AccountID:   line.AccountID,
					TotalDebit:  valueobject.ZeroMoney(),
					TotalCredit: valueobject.ZeroMoney(),
				}
				for _, account := range r.accounts.accounts {
					if account.ID == line.AccountID {
						balance.Code = account.Code
						balance.Name = account.Name
						balance.AccountType = account.AccountType
					}
				}
				byAccount[line.AccountID] = balance
			}
			balance.TotalDebit = balance.TotalDebit.Add(line.Debit)
			balance.TotalCredit = balance.TotalCredit.Add(line.Credit)
		}
	}

	balances := make([]accounting.AccountBalance, 0, len(byAccount))
	for _, balance := range byAccount {
		balances = append(balances, *balance)
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].Code < balances[j].Code })
	return balances, nil
}

var (
	_ ledger.ItemRepository        = (*memItemRepo)(nil)
	_ ledger.StockLevelRepository  = (*memLevelRepo)(nil)
	_ ledger.LedgerEntryRepository = (*memEntryRepo)(nil)
	_ ledger.StockLotRepository    = (*memLotRepo)(nil)
	_ accounting.AccountRepository = (*memAccountRepo)(nil)
	_ accounting.JournalRepository = (*memJournalRepo)(nil)
)
