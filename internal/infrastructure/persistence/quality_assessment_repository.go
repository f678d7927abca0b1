package persistence

import (
	"context"
	"errors"

	"github.com/kahawa/backend/internal/domain/procurement"
	"github.com/kahawa/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormQualityAssessmentRepository implements QualityAssessmentRepository using GORM
type GormQualityAssessmentRepository struct {
	db *gorm.DB
}

// NewGormQualityAssessmentRepository creates a new GormQualityAssessmentRepository
func NewGormQualityAssessmentRepository(db *gorm.DB) *GormQualityAssessmentRepository {
	return &GormQualityAssessmentRepository{db: db}
}

func (r *GormQualityAssessmentRepository) conn(ctx context.Context) *gorm.DB {
	return DBFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds an assessment by its ID
func (r *GormQualityAssessmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.QualityAssessment, error) {
	var assessment procurement.QualityAssessment
	if err := r.conn(ctx).First(&assessment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &assessment, nil
}

// FindByBatchID finds the assessment belonging to a batch
func (r *GormQualityAssessmentRepository) FindByBatchID(ctx context.Context, batchID uuid.UUID) (*procurement.QualityAssessment, error) {
	var assessment procurement.QualityAssessment
	if err := r.conn(ctx).
		Where("batch_id = ?", batchID).
		First(&assessment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &assessment, nil
}

// FindByStatus finds assessments by status, oldest submission first
func (r *GormQualityAssessmentRepository) FindByStatus(ctx context.Context, status procurement.AssessmentStatus, filter shared.Filter) ([]procurement.QualityAssessment, error) {
	var assessments []procurement.QualityAssessment
	query := r.conn(ctx).
		Model(&procurement.QualityAssessment{}).
		Where("status = ?", status)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	query = query.Order("submitted_at ASC")

	if err := query.Find(&assessments).Error; err != nil {
		return nil, err
	}
	return assessments, nil
}

// Save creates or updates an assessment
func (r *GormQualityAssessmentRepository) Save(ctx context.Context, assessment *procurement.QualityAssessment) error {
	return r.conn(ctx).Save(assessment).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormQualityAssessmentRepository) SaveWithLock(ctx context.Context, assessment *procurement.QualityAssessment) error {
	result := r.conn(ctx).
		Model(assessment).
		Where("id = ? AND version = ?", assessment.ID, assessment.Version-1).
		Updates(assessment)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

var _ procurement.QualityAssessmentRepository = (*GormQualityAssessmentRepository)(nil)
