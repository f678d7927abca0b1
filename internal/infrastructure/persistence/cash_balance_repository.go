package persistence

import (
	"context"
	"errors"

	"github.com/kahawa/backend/internal/domain/finance"
	"github.com/kahawa/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormCashBalanceRepository implements CashBalanceRepository using GORM.
// The drawer balance is a single-row projection over the cash ledger.
type GormCashBalanceRepository struct {
	db *gorm.DB
}

// NewGormCashBalanceRepository creates a new GormCashBalanceRepository
func NewGormCashBalanceRepository(db *gorm.DB) *GormCashBalanceRepository {
	return &GormCashBalanceRepository{db: db}
}

func (r *GormCashBalanceRepository) conn(ctx context.Context) *gorm.DB {
	return DBFromContext(ctx, r.db).WithContext(ctx)
}

// Get returns the single balance row, or nil if none exists yet
func (r *GormCashBalanceRepository) Get(ctx context.Context) (*finance.CashBalance, error) {
	var balance finance.CashBalance
	if err := r.conn(ctx).First(&balance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &balance, nil
}

// Save creates or updates the balance row
func (r *GormCashBalanceRepository) Save(ctx context.Context, balance *finance.CashBalance) error {
	return r.conn(ctx).Save(balance).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormCashBalanceRepository) SaveWithLock(ctx context.Context, balance *finance.CashBalance) error {
	result := r.conn(ctx).
		Model(balance).
		Where("id = ? AND version = ?", balance.ID, balance.Version-1).
		Updates(balance)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

var _ finance.CashBalanceRepository = (*GormCashBalanceRepository)(nil)
