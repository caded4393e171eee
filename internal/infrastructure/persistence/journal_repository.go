package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stockbooks/backend/internal/domain/accounting"
	"github.com/stockbooks/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// journalSequenceName is the single sequence row backing journal numbering
const journalSequenceName = "journal_no"

// JournalSequence is a named counter row. Incrementing it inside the posting
// transaction serializes concurrent posters on the row lock, so allocated
// journal numbers are unique and gapless for committed journals.
type JournalSequence struct {
	Name  string `gorm:"type:varchar(30);primaryKey"`
	Value int64  `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (JournalSequence) TableName() string {
	return "journal_sequences"
}

// GormJournalRepository implements JournalRepository using GORM. Journals are
// created once with their lines and never updated.
type GormJournalRepository struct {
	db *gorm.DB
}

// NewGormJournalRepository creates a new GormJournalRepository
func NewGormJournalRepository(db *gorm.DB) *GormJournalRepository {
	return &GormJournalRepository{db: db}
}

// NextJournalNo allocates the next sequential journal number. Must run inside
// the posting transaction: the incremented row stays locked until commit.
func (r *GormJournalRepository) NextJournalNo(ctx context.Context) (string, error) {
	result := r.db.WithContext(ctx).
		Model(&JournalSequence{}).
		Where("name = ?", journalSequenceName).
		Update("value", gorm.Expr("value + 1"))
	if result.Error != nil {
		return "", result.Error
	}

	if result.RowsAffected == 0 {
		// First allocation ever: seed the counter row, racing creators collapse
		// onto the same row via ON CONFLICT.
		if err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&JournalSequence{Name: journalSequenceName, Value: 0}).Error; err != nil {
			return "", err
		}
		result = r.db.WithContext(ctx).
			Model(&JournalSequence{}).
			Where("name = ?", journalSequenceName).
			Update("value", gorm.Expr("value + 1"))
		if result.Error != nil {
			return "", result.Error
		}
	}

	var seq JournalSequence
	if err := r.db.WithContext(ctx).First(&seq, "name = ?", journalSequenceName).Error; err != nil {
		return "", err
	}
	return accounting.FormatJournalNo(seq.Value), nil
}

// Create persists a journal and all of its lines atomically
func (r *GormJournalRepository) Create(ctx context.Context, journal *accounting.Journal) error {
	return r.db.WithContext(ctx).Create(journal).Error
}

// FindByID finds a journal with its lines
func (r *GormJournalRepository) FindByID(ctx context.Context, id uuid.UUID) (*accounting.Journal, error) {
	var journal accounting.Journal
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&journal, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &journal, nil
}

// FindByJournalNo finds a journal by its human-readable number
func (r *GormJournalRepository) FindByJournalNo(ctx context.Context, journalNo string) (*accounting.Journal, error) {
	var journal accounting.Journal
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&journal, "journal_no = ?", journalNo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &journal, nil
}

// FindByDateRange finds journals posted within [from, to]
func (r *GormJournalRepository) FindByDateRange(ctx context.Context, from, to time.Time, filter shared.Filter) ([]accounting.Journal, error) {
	var journals []accounting.Journal
	query := r.db.WithContext(ctx).
		Preload("Lines").
		Where("date >= ? AND date <= ?", from, to)
	query = applyListing(query, filter, JournalSortFields, "date")

	if err := query.Find(&journals).Error; err != nil {
		return nil, err
	}
	return journals, nil
}

// SumByAccount computes per-account debit/credit sums over a date range
func (r *GormJournalRepository) SumByAccount(ctx context.Context, from, to time.Time) ([]accounting.AccountBalance, error) {
	var balances []accounting.AccountBalance
	if err := r.db.WithContext(ctx).
		Table("journal_lines").
		Select(`accounts.id as account_id,
			accounts.code as code,
			accounts.name as name,
			accounts.account_type as account_type,
			COALESCE(SUM(journal_lines.debit), 0) as total_debit,
			COALESCE(SUM(journal_lines.credit), 0) as total_credit`).
		Joins("JOIN journals ON journals.id = journal_lines.journal_id").
		Joins("JOIN accounts ON accounts.id = journal_lines.account_id").
		Where("journals.date >= ? AND journals.date <= ?", from, to).
		Group("accounts.id, accounts.code, accounts.name, accounts.account_type").
		Order("accounts.code ASC").
		Scan(&balances).Error; err != nil {
		return nil, err
	}
	return balances, nil
}

// Ensure GormJournalRepository implements JournalRepository
var _ accounting.JournalRepository = (*GormJournalRepository)(nil)
