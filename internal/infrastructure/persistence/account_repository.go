package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stockbooks/backend/internal/domain/accounting"
	"github.com/stockbooks/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormAccountRepository implements AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByID finds an account by its ID
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*accounting.Account, error) {
	var account accounting.Account
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindByCode finds an account by its stable external code
func (r *GormAccountRepository) FindByCode(ctx context.Context, code string) (*accounting.Account, error) {
	var account accounting.Account
	if err := r.db.WithContext(ctx).First(&account, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindByCodes resolves multiple codes in one round trip
func (r *GormAccountRepository) FindByCodes(ctx context.Context, codes []string) (map[string]*accounting.Account, error) {
	result := make(map[string]*accounting.Account, len(codes))
	if len(codes) == 0 {
		return result, nil
	}

	var accounts []accounting.Account
	if err := r.db.WithContext(ctx).
		Where("code IN ?", codes).
		Find(&accounts).Error; err != nil {
		return nil, err
	}
	for i := range accounts {
		result[accounts[i].Code] = &accounts[i]
	}
	return result, nil
}

// FindAll finds accounts matching the filter
func (r *GormAccountRepository) FindAll(ctx context.Context, filter shared.Filter) ([]accounting.Account, error) {
	var accounts []accounting.Account
	query := r.db.WithContext(ctx).Model(&accounting.Account{})
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("LOWER(code) LIKE LOWER(?) OR LOWER(name) LIKE LOWER(?)", pattern, pattern)
	}
	if accountType, ok := filter.Filters["account_type"]; ok {
		query = query.Where("account_type = ?", accountType)
	}
	query = applyListing(query, filter, AccountSortFields, "code")

	if err := query.Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// Save creates or updates an account
func (r *GormAccountRepository) Save(ctx context.Context, account *accounting.Account) error {
	return r.db.WithContext(ctx).Save(account).Error
}

// Ensure GormAccountRepository implements AccountRepository
var _ accounting.AccountRepository = (*GormAccountRepository)(nil)
