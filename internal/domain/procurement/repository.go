package procurement

import (
	"context"
	"time"

	"github.com/kahawa/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CoffeeBatchFilter defines filtering options for batch queries
type CoffeeBatchFilter struct {
	shared.Filter
	SupplierID *uuid.UUID
	Status     *BatchStatus
	CoffeeType *CoffeeType
	FromDate   *time.Time
	ToDate     *time.Time
}

// CoffeeBatchRepository defines the interface for coffee batch persistence
type CoffeeBatchRepository interface {
	// FindByID finds a batch by ID
	FindByID(ctx context.Context, id uuid.UUID) (*CoffeeBatch, error)

	// FindByBatchNumber finds a batch by its human-readable number
	FindByBatchNumber(ctx context.Context, batchNumber string) (*CoffeeBatch, error)

	// FindAll finds batches with filtering
	FindAll(ctx context.Context, filter CoffeeBatchFilter) ([]CoffeeBatch, error)

	// Save creates or updates a batch
	Save(ctx context.Context, batch *CoffeeBatch) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, batch *CoffeeBatch) error

	// Count counts batches matching the filter
	Count(ctx context.Context, filter CoffeeBatchFilter) (int64, error)

	// GenerateBatchNumber generates the next sequential batch number ("CF-001")
	GenerateBatchNumber(ctx context.Context) (string, error)
}

// QualityAssessmentRepository defines the interface for assessment persistence
type QualityAssessmentRepository interface {
	// FindByID finds an assessment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*QualityAssessment, error)

	// FindByBatchID finds the assessment belonging to a batch
	FindByBatchID(ctx context.Context, batchID uuid.UUID) (*QualityAssessment, error)

	// FindByStatus finds assessments by status
	FindByStatus(ctx context.Context, status AssessmentStatus, filter shared.Filter) ([]QualityAssessment, error)

	// Save creates or updates an assessment
	Save(ctx context.Context, assessment *QualityAssessment) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, assessment *QualityAssessment) error
}

// SupplierRepository defines the interface for supplier persistence
type SupplierRepository interface {
	// FindByID finds a supplier by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)

	// FindByCode finds a supplier by code
	FindByCode(ctx context.Context, code string) (*Supplier, error)

	// FindAll finds suppliers with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Supplier, error)

	// Save creates or updates a supplier
	Save(ctx context.Context, supplier *Supplier) error
}
