package persistence

import (
	"context"
	"errors"

	"github.com/kahawa/backend/internal/domain/finance"
	"github.com/kahawa/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSupplierAdvanceRepository implements SupplierAdvanceRepository using GORM
type GormSupplierAdvanceRepository struct {
	db *gorm.DB
}

// NewGormSupplierAdvanceRepository creates a new GormSupplierAdvanceRepository
func NewGormSupplierAdvanceRepository(db *gorm.DB) *GormSupplierAdvanceRepository {
	return &GormSupplierAdvanceRepository{db: db}
}

func (r *GormSupplierAdvanceRepository) conn(ctx context.Context) *gorm.DB {
	return DBFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds an advance by its ID
func (r *GormSupplierAdvanceRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.SupplierAdvance, error) {
	var advance finance.SupplierAdvance
	if err := r.conn(ctx).First(&advance, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &advance, nil
}

// FindOpenBySupplier finds open advances for a supplier, oldest first.
// Recovery applies advances in issue order, so ordering matters here.
func (r *GormSupplierAdvanceRepository) FindOpenBySupplier(ctx context.Context, supplierID uuid.UUID) ([]*finance.SupplierAdvance, error) {
	var advances []*finance.SupplierAdvance
	if err := r.conn(ctx).
		Where("supplier_id = ? AND outstanding > 0 AND closed_at IS NULL", supplierID).
		Order("issued_at ASC").
		Find(&advances).Error; err != nil {
		return nil, err
	}
	return advances, nil
}

// FindAll finds advances matching the filter, newest first
func (r *GormSupplierAdvanceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.SupplierAdvance, error) {
	var advances []finance.SupplierAdvance
	query := r.conn(ctx).Model(&finance.SupplierAdvance{})

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	query = query.Order("issued_at DESC")

	if err := query.Find(&advances).Error; err != nil {
		return nil, err
	}
	return advances, nil
}

// Save creates or updates an advance
func (r *GormSupplierAdvanceRepository) Save(ctx context.Context, advance *finance.SupplierAdvance) error {
	return r.conn(ctx).Save(advance).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormSupplierAdvanceRepository) SaveWithLock(ctx context.Context, advance *finance.SupplierAdvance) error {
	result := r.conn(ctx).
		Model(advance).
		Where("id = ? AND version = ?", advance.ID, advance.Version-1).
		Updates(advance)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

var _ finance.SupplierAdvanceRepository = (*GormSupplierAdvanceRepository)(nil)
