package handler

import (
	"github.com/shopspring/decimal"
)

// JournalLineRequest is one requested journal line
type JournalLineRequest struct {
	AccountCode string          `json:"account_code" binding:"required"`
	Debit       decimal.Decimal `json:"debit" binding:"gte=0"`
	Credit      decimal.Decimal `json:"credit" binding:"gte=0"`
	RefType     string          `json:"ref_type"`
	RefID       string          `json:"ref_id"`
}

// PostJournalRequest is the payload for posting a balanced journal
type PostJournalRequest struct {
	Date  string               `json:"date" binding:"omitempty"`
	Memo  string               `json:"memo"`
	Lines []JournalLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ReverseJournalRequest is the payload for posting an offsetting journal
type ReverseJournalRequest struct {
	Memo string `json:"memo"`
}

// TrialBalanceRequest selects the reporting period
type TrialBalanceRequest struct {
	From string `form:"from" binding:"required"`
	To   string `form:"to" binding:"required"`
}
