package persistence

import (
	"context"
	"errors"

	"github.com/kahawa/backend/internal/domain/finance"
	"github.com/kahawa/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormApprovalRequestRepository implements ApprovalRequestRepository using GORM
type GormApprovalRequestRepository struct {
	db *gorm.DB
}

// NewGormApprovalRequestRepository creates a new GormApprovalRequestRepository
func NewGormApprovalRequestRepository(db *gorm.DB) *GormApprovalRequestRepository {
	return &GormApprovalRequestRepository{db: db}
}

func (r *GormApprovalRequestRepository) conn(ctx context.Context) *gorm.DB {
	return DBFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds a request by its ID
func (r *GormApprovalRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.ApprovalRequest, error) {
	var request finance.ApprovalRequest
	if err := r.conn(ctx).First(&request, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// FindPending finds pending requests, oldest first, optionally filtered by type
func (r *GormApprovalRequestRepository) FindPending(ctx context.Context, reqType *finance.ApprovalRequestType, filter shared.Filter) ([]finance.ApprovalRequest, error) {
	var requests []finance.ApprovalRequest
	query := r.conn(ctx).
		Model(&finance.ApprovalRequest{}).
		Where("status = ?", finance.ApprovalStatusPending)

	if reqType != nil {
		query = query.Where("type = ?", *reqType)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	query = query.Order("created_at ASC")

	if err := query.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// FindBySubject finds requests attached to a subject aggregate
func (r *GormApprovalRequestRepository) FindBySubject(ctx context.Context, subjectID uuid.UUID) ([]finance.ApprovalRequest, error) {
	var requests []finance.ApprovalRequest
	if err := r.conn(ctx).
		Where("subject_id = ?", subjectID).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// Save creates or updates a request
func (r *GormApprovalRequestRepository) Save(ctx context.Context, request *finance.ApprovalRequest) error {
	return r.conn(ctx).Save(request).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormApprovalRequestRepository) SaveWithLock(ctx context.Context, request *finance.ApprovalRequest) error {
	result := r.conn(ctx).
		Model(request).
		Where("id = ? AND version = ?", request.ID, request.Version-1).
		Updates(request)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

var _ finance.ApprovalRequestRepository = (*GormApprovalRequestRepository)(nil)
