package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/kahawa/backend/internal/domain/finance"
	"github.com/kahawa/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormCashTransactionRepository implements CashTransactionRepository using GORM
type GormCashTransactionRepository struct {
	db *gorm.DB
}

// NewGormCashTransactionRepository creates a new GormCashTransactionRepository
func NewGormCashTransactionRepository(db *gorm.DB) *GormCashTransactionRepository {
	return &GormCashTransactionRepository{db: db}
}

func (r *GormCashTransactionRepository) conn(ctx context.Context) *gorm.DB {
	return DBFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds a transaction by its ID
func (r *GormCashTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.CashTransaction, error) {
	var tx finance.CashTransaction
	if err := r.conn(ctx).First(&tx, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tx, nil
}

// FindAll finds transactions ordered by occurrence, newest first
func (r *GormCashTransactionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.CashTransaction, error) {
	var txs []finance.CashTransaction
	query := r.conn(ctx).Model(&finance.CashTransaction{})

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	query = query.Order("occurred_at DESC")

	if err := query.Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// FindByDateRange finds confirmed transactions within a date range
func (r *GormCashTransactionRepository) FindByDateRange(ctx context.Context, from, to time.Time) ([]finance.CashTransaction, error) {
	var txs []finance.CashTransaction
	if err := r.conn(ctx).
		Where("confirmed = ? AND occurred_at >= ? AND occurred_at <= ?", true, from, to).
		Order("occurred_at ASC").
		Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// Save appends a transaction to the ledger
func (r *GormCashTransactionRepository) Save(ctx context.Context, tx *finance.CashTransaction) error {
	return r.conn(ctx).Save(tx).Error
}

// SumConfirmed sums the signed amounts of all confirmed transactions
func (r *GormCashTransactionRepository) SumConfirmed(ctx context.Context) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.conn(ctx).
		Model(&finance.CashTransaction{}).
		Select("SUM(amount)").
		Where("confirmed = ?", true).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

var _ finance.CashTransactionRepository = (*GormCashTransactionRepository)(nil)
