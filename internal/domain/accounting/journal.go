package accounting

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stockbooks/backend/internal/domain/shared"
	"github.com/stockbooks/backend/internal/domain/shared/valueobject"
)

// JournalNoPrefix is the prefix of the human-readable journal number
const JournalNoPrefix = "JRN"

// FormatJournalNo renders a sequence number as a journal number (JRN-000001)
func FormatJournalNo(seq int64) string {
	return fmt.Sprintf("%s-%06d", JournalNoPrefix, seq)
}

// JournalLine debits or credits exactly one account. By convention exactly
// one of Debit/Credit is non-zero; the other is zero.
type JournalLine struct {
	shared.BaseEntity
	JournalID uuid.UUID         `gorm:"type:uuid;not null;index"`
	AccountID uuid.UUID         `gorm:"type:uuid;not null;index"`
	Debit     valueobject.Money `gorm:"type:decimal(18,2);not null;default:0"`
	Credit    valueobject.Money `gorm:"type:decimal(18,2);not null;default:0"`
	RefType   string            `gorm:"type:varchar(20)"`
	RefID     string            `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (JournalLine) TableName() string {
	return "journal_lines"
}

// IsDebit returns true if this line carries a debit amount
func (l *JournalLine) IsDebit() bool {
	return l.Debit.IsPositive()
}

// Amount returns the non-zero side of the line
func (l *JournalLine) Amount() valueobject.Money {
	if l.IsDebit() {
		return l.Debit
	}
	return l.Credit
}

// Journal is a balanced double-entry accounting record. Journals are
// immutable once posted; corrections are new, offsetting journals.
type Journal struct {
	shared.BaseAggregateRoot
	JournalNo string        `gorm:"type:varchar(20);not null;uniqueIndex"`
	Date      time.Time     `gorm:"type:timestamptz;not null;index"`
	Memo      string        `gorm:"type:varchar(255)"`
	UserID    uuid.UUID     `gorm:"type:uuid;not null"`
	Lines     []JournalLine `gorm:"foreignKey:JournalID;references:ID"`
}

// TableName returns the table name for GORM
func (Journal) TableName() string {
	return "journals"
}

// LineInput is one unvalidated journal line prior to posting
type LineInput struct {
	AccountID uuid.UUID
	Debit     valueobject.Money
	Credit    valueobject.Money
	RefType   string
	RefID     string
}

// NewJournal builds and validates a journal from its lines. It enforces the
// double-entry invariants: at least one line, one non-zero side per line,
// no negative amounts, and exact debit/credit balance.
func NewJournal(journalNo string, date time.Time, memo string, userID uuid.UUID, lines []LineInput) (*Journal, error) {
	if journalNo == "" {
		return nil, shared.NewDomainError("INVALID_JOURNAL_NO", "Journal number cannot be empty")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_JOURNAL", "Journal must have at least one line")
	}

	journal := &Journal{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		JournalNo:         journalNo,
		Date:              date,
		Memo:              memo,
		UserID:            userID,
		Lines:             make([]JournalLine, 0, len(lines)),
	}

	totalDebit := valueobject.ZeroMoney()
	totalCredit := valueobject.ZeroMoney()

	for _, in := range lines {
		if in.AccountID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_LINE", "Journal line account cannot be empty")
		}
		if in.Debit.IsNegative() || in.Credit.IsNegative() {
			return nil, shared.NewDomainError("INVALID_LINE", "Journal line amounts cannot be negative")
		}
		debitSet := in.Debit.IsPositive()
		creditSet := in.Credit.IsPositive()
		if debitSet == creditSet {
			return nil, shared.NewDomainError("INVALID_LINE", "Exactly one of debit/credit must be non-zero per line")
		}

		line := JournalLine{
			BaseEntity: shared.NewBaseEntity(),
			JournalID:  journal.ID,
			AccountID:  in.AccountID,
			Debit:      in.Debit,
			Credit:     in.Credit,
			RefType:    in.RefType,
			RefID:      in.RefID,
		}
		journal.Lines = append(journal.Lines, line)
		totalDebit = totalDebit.Add(in.Debit)
		totalCredit = totalCredit.Add(in.Credit)
	}

	// exact equality, not rounded-approximate
	if !totalDebit.Equal(totalCredit) {
		return nil, shared.ErrUnbalancedJournal
	}

	return journal, nil
}

// TotalDebit returns the sum of all debit amounts
func (j *Journal) TotalDebit() valueobject.Money {
	total := valueobject.ZeroMoney()
	for i := range j.Lines {
		total = total.Add(j.Lines[i].Debit)
	}
	return total
}

// TotalCredit returns the sum of all credit amounts
func (j *Journal) TotalCredit() valueobject.Money {
	total := valueobject.ZeroMoney()
	for i := range j.Lines {
		total = total.Add(j.Lines[i].Credit)
	}
	return total
}

// IsBalanced returns true if debit and credit totals match exactly
func (j *Journal) IsBalanced() bool {
	return j.TotalDebit().Equal(j.TotalCredit())
}

// Reverse builds the offsetting journal with swapped debit/credit legs.
// The original journal is untouched; the reversal is a new journal that the
// caller posts like any other.
func (j *Journal) Reverse(journalNo string, date time.Time, memo string, userID uuid.UUID) (*Journal, error) {
	lines := make([]LineInput, 0, len(j.Lines))
	for i := range j.Lines {
		lines = append(lines, LineInput{
			AccountID: j.Lines[i].AccountID,
			Debit:     j.Lines[i].Credit,
			Credit:    j.Lines[i].Debit,
			RefType:   j.Lines[i].RefType,
			RefID:     j.Lines[i].RefID,
		})
	}
	return NewJournal(journalNo, date, memo, userID, lines)
}
