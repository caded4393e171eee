package accounting

import (
	"github.com/stockbooks/backend/internal/domain/shared"
)

// AccountType is the classification bucket used by financial statements
type AccountType string

const (
	AccountTypeCurrentAssets       AccountType = "CURRENT_ASSETS"
	AccountTypeNonCurrentAssets    AccountType = "NON_CURRENT_ASSETS"
	AccountTypeTradeReceivables    AccountType = "TRADE_RECEIVABLES"
	AccountTypeCurrentLiability    AccountType = "CURRENT_LIABILITY"
	AccountTypeNonCurrentLiability AccountType = "NON_CURRENT_LIABILITY"
	AccountTypeTradePayables       AccountType = "TRADE_PAYABLES"
	AccountTypeEquity              AccountType = "EQUITY"
	AccountTypeIncome              AccountType = "INCOME"
	AccountTypeOtherIncome         AccountType = "OTHER_INCOME"
	AccountTypeCostOfSales         AccountType = "COST_OF_SALES"
	AccountTypeExpenses            AccountType = "EXPENSES"
)

// String returns the string representation of AccountType
func (t AccountType) String() string {
	return string(t)
}

// IsValid returns true if the account type is valid
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeCurrentAssets, AccountTypeNonCurrentAssets, AccountTypeTradeReceivables,
		AccountTypeCurrentLiability, AccountTypeNonCurrentLiability, AccountTypeTradePayables,
		AccountTypeEquity, AccountTypeIncome, AccountTypeOtherIncome,
		AccountTypeCostOfSales, AccountTypeExpenses:
		return true
	}
	return false
}

// IsAsset returns true for asset classifications
func (t AccountType) IsAsset() bool {
	switch t {
	case AccountTypeCurrentAssets, AccountTypeNonCurrentAssets, AccountTypeTradeReceivables:
		return true
	}
	return false
}

// IsLiability returns true for liability classifications
func (t AccountType) IsLiability() bool {
	switch t {
	case AccountTypeCurrentLiability, AccountTypeNonCurrentLiability, AccountTypeTradePayables:
		return true
	}
	return false
}

// IsIncome returns true for income classifications
func (t AccountType) IsIncome() bool {
	return t == AccountTypeIncome || t == AccountTypeOtherIncome
}

// IsExpense returns true for expense classifications
func (t AccountType) IsExpense() bool {
	return t == AccountTypeCostOfSales || t == AccountTypeExpenses
}

const (
	NormalBalanceDebit  = "DEBIT"
	NormalBalanceCredit = "CREDIT"
)

// NormalBalance returns the side on which the account's balance grows
func (t AccountType) NormalBalance() string {
	if t.IsAsset() || t.IsExpense() {
		return NormalBalanceDebit
	}
	return NormalBalanceCredit
}

// Account is one chart-of-accounts row. The code is the stable external key
// callers use when building journal lines; it never changes once assigned.
type Account struct {
	shared.BaseAggregateRoot
	Code        string      `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name        string      `gorm:"type:varchar(255);not null"`
	AccountType AccountType `gorm:"type:varchar(30);not null;index"`
}

// TableName returns the table name for GORM
func (Account) TableName() string {
	return "accounts"
}

// NewAccount creates a new chart-of-accounts entry
func NewAccount(code, name string, accountType AccountType) (*Account, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Account code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Account name cannot be empty")
	}
	if !accountType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_TYPE", "Invalid account type")
	}

	return &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		AccountType:       accountType,
	}, nil
}
