package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kahawa/backend/internal/domain/finance"
	"github.com/kahawa/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRecordRepository implements PaymentRecordRepository using GORM
type GormPaymentRecordRepository struct {
	db *gorm.DB
}

// NewGormPaymentRecordRepository creates a new GormPaymentRecordRepository
func NewGormPaymentRecordRepository(db *gorm.DB) *GormPaymentRecordRepository {
	return &GormPaymentRecordRepository{db: db}
}

func (r *GormPaymentRecordRepository) conn(ctx context.Context) *gorm.DB {
	return DBFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds a payment by its ID
func (r *GormPaymentRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.PaymentRecord, error) {
	var payment finance.PaymentRecord
	if err := r.conn(ctx).First(&payment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// FindByBatchID finds the payment for a batch, if any.
// A unique index on batch_id guarantees at most one row.
func (r *GormPaymentRecordRepository) FindByBatchID(ctx context.Context, batchID uuid.UUID) (*finance.PaymentRecord, error) {
	var payment finance.PaymentRecord
	if err := r.conn(ctx).
		Where("batch_id = ?", batchID).
		First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// FindAll finds payments matching the filter, newest first
func (r *GormPaymentRecordRepository) FindAll(ctx context.Context, filter finance.PaymentRecordFilter) ([]finance.PaymentRecord, error) {
	var payments []finance.PaymentRecord
	query := r.conn(ctx).Model(&finance.PaymentRecord{})

	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Method != nil {
		query = query.Where("method = ?", *filter.Method)
	}
	if filter.FromDate != nil {
		query = query.Where("created_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("created_at <= ?", *filter.ToDate)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("payment_number ILIKE ? OR batch_number ILIKE ? OR supplier_name ILIKE ?",
			pattern, pattern, pattern)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	query = query.Order("created_at DESC")

	if err := query.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// Save creates or updates a payment record
func (r *GormPaymentRecordRepository) Save(ctx context.Context, payment *finance.PaymentRecord) error {
	return r.conn(ctx).Save(payment).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormPaymentRecordRepository) SaveWithLock(ctx context.Context, payment *finance.PaymentRecord) error {
	result := r.conn(ctx).
		Model(payment).
		Where("id = ? AND version = ?", payment.ID, payment.Version-1).
		Updates(payment)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// GeneratePaymentNumber generates the next sequential payment number ("PAY-001")
func (r *GormPaymentRecordRepository) GeneratePaymentNumber(ctx context.Context) (string, error) {
	var last string
	err := r.conn(ctx).
		Model(&finance.PaymentRecord{}).
		Select("payment_number").
		Order("created_at DESC").
		Limit(1).
		Scan(&last).Error
	if err != nil {
		return "", err
	}

	next := 1
	if last != "" {
		if n, err := strconv.Atoi(strings.TrimPrefix(last, "PAY-")); err == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("PAY-%03d", next), nil
}

var _ finance.PaymentRecordRepository = (*GormPaymentRecordRepository)(nil)
