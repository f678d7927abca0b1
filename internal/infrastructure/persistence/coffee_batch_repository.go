package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kahawa/backend/internal/domain/procurement"
	"github.com/kahawa/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCoffeeBatchRepository implements CoffeeBatchRepository using GORM
type GormCoffeeBatchRepository struct {
	db *gorm.DB
}

// NewGormCoffeeBatchRepository creates a new GormCoffeeBatchRepository
func NewGormCoffeeBatchRepository(db *gorm.DB) *GormCoffeeBatchRepository {
	return &GormCoffeeBatchRepository{db: db}
}

func (r *GormCoffeeBatchRepository) conn(ctx context.Context) *gorm.DB {
	return DBFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds a batch by its ID
func (r *GormCoffeeBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.CoffeeBatch, error) {
	var batch procurement.CoffeeBatch
	if err := r.conn(ctx).First(&batch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &batch, nil
}

// FindByBatchNumber finds a batch by its human-readable number
func (r *GormCoffeeBatchRepository) FindByBatchNumber(ctx context.Context, batchNumber string) (*procurement.CoffeeBatch, error) {
	var batch procurement.CoffeeBatch
	if err := r.conn(ctx).
		Where("batch_number = ?", strings.ToUpper(batchNumber)).
		First(&batch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &batch, nil
}

// FindAll finds batches matching the filter, newest first
func (r *GormCoffeeBatchRepository) FindAll(ctx context.Context, filter procurement.CoffeeBatchFilter) ([]procurement.CoffeeBatch, error) {
	var batches []procurement.CoffeeBatch
	query := r.applyFilter(r.conn(ctx).Model(&procurement.CoffeeBatch{}), filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	query = query.Order("received_at DESC")

	if err := query.Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// Save creates or updates a batch
func (r *GormCoffeeBatchRepository) Save(ctx context.Context, batch *procurement.CoffeeBatch) error {
	return r.conn(ctx).Save(batch).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormCoffeeBatchRepository) SaveWithLock(ctx context.Context, batch *procurement.CoffeeBatch) error {
	result := r.conn(ctx).
		Model(batch).
		Where("id = ? AND version = ?", batch.ID, batch.Version-1).
		Updates(batch)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Count counts batches matching the filter
func (r *GormCoffeeBatchRepository) Count(ctx context.Context, filter procurement.CoffeeBatchFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.conn(ctx).Model(&procurement.CoffeeBatch{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateBatchNumber generates the next sequential batch number ("CF-001")
func (r *GormCoffeeBatchRepository) GenerateBatchNumber(ctx context.Context) (string, error) {
	var last string
	err := r.conn(ctx).
		Model(&procurement.CoffeeBatch{}).
		Select("batch_number").
		Order("created_at DESC").
		Limit(1).
		Scan(&last).Error
	if err != nil {
		return "", err
	}

	next := 1
	if last != "" {
		if n, err := strconv.Atoi(strings.TrimPrefix(last, "CF-")); err == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("CF-%03d", next), nil
}

func (r *GormCoffeeBatchRepository) applyFilter(query *gorm.DB, filter procurement.CoffeeBatchFilter) *gorm.DB {
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CoffeeType != nil {
		query = query.Where("coffee_type = ?", *filter.CoffeeType)
	}
	if filter.FromDate != nil {
		query = query.Where("received_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("received_at <= ?", *filter.ToDate)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("batch_number ILIKE ? OR supplier_name ILIKE ?", pattern, pattern)
	}
	return query
}

var _ procurement.CoffeeBatchRepository = (*GormCoffeeBatchRepository)(nil)
