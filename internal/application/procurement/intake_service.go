// Package procurement contains the application services for coffee intake.
package procurement

import (
	"context"
	"fmt"

	"github.com/kahawa/backend/internal/domain/procurement"
	"github.com/kahawa/backend/internal/domain/shared"
	"github.com/kahawa/backend/internal/domain/shared/valueobject"
	"github.com/kahawa/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// IntakeService handles coffee batch registration and quality grading
type IntakeService struct {
	batchRepo      procurement.CoffeeBatchRepository
	assessmentRepo procurement.QualityAssessmentRepository
	supplierRepo   procurement.SupplierRepository
	txManager      shared.TransactionManager
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewIntakeService creates a new IntakeService
func NewIntakeService(
	batchRepo procurement.CoffeeBatchRepository,
	assessmentRepo procurement.QualityAssessmentRepository,
	supplierRepo procurement.SupplierRepository,
	txManager shared.TransactionManager,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *IntakeService {
	return &IntakeService{
		batchRepo:      batchRepo,
		assessmentRepo: assessmentRepo,
		supplierRepo:   supplierRepo,
		txManager:      txManager,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// RegisterBatchRequest represents a request to register a delivered batch
type RegisterBatchRequest struct {
	SupplierID uuid.UUID
	CoffeeType procurement.CoffeeType
	WeightKg   decimal.Decimal
	BagCount   int
}

// RecordAssessmentRequest represents a grading result for a received batch
type RecordAssessmentRequest struct {
	BatchID            uuid.UUID
	MoisturePct        decimal.Decimal
	DefectPct          decimal.Decimal
	Outturn            decimal.Decimal
	SuggestedUnitPrice decimal.Decimal
	SubmittedBy        uuid.UUID
}

// RegisterBatch records a coffee delivery from a supplier and assigns the
// next batch number.
func (s *IntakeService) RegisterBatch(ctx context.Context, req RegisterBatchRequest) (*procurement.CoffeeBatch, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "intake", "register_batch")
	defer span.End()

	telemetry.SetAttribute(span, telemetry.SpanAttrSupplierID, req.SupplierID.String())

	supplier, err := s.supplierRepo.FindByID(ctx, req.SupplierID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to find supplier: %w", err)
	}
	if supplier == nil {
		err := shared.NewDomainError("SUPPLIER_NOT_FOUND", "Supplier not found")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !supplier.Active {
		err := shared.NewDomainError("SUPPLIER_INACTIVE", "Cannot register batches for a deactivated supplier")
		telemetry.RecordError(span, err)
		return nil, err
	}

	var batch *procurement.CoffeeBatch
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		batchNumber, err := s.batchRepo.GenerateBatchNumber(txCtx)
		if err != nil {
			return fmt.Errorf("failed to generate batch number: %w", err)
		}

		batch, err = procurement.NewCoffeeBatch(batchNumber, supplier.ID, supplier.Name, req.CoffeeType, req.WeightKg, req.BagCount)
		if err != nil {
			return err
		}

		if err := s.batchRepo.Save(txCtx, batch); err != nil {
			return fmt.Errorf("failed to save batch: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, batch)

	s.logger.Info("Batch registered",
		zap.String("batch_number", batch.BatchNumber),
		zap.String("supplier", supplier.Name),
		zap.String("weight_kg", req.WeightKg.String()))

	return batch, nil
}

// RecordAssessment stores grading results for a received batch and submits
// the suggested price to the pricing queue. A batch has at most one
// assessment; regrading a graded batch is not allowed.
func (s *IntakeService) RecordAssessment(ctx context.Context, req RecordAssessmentRequest) (*procurement.QualityAssessment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "intake", "record_assessment")
	defer span.End()

	telemetry.SetAttribute(span, telemetry.SpanAttrBatchID, req.BatchID.String())

	var assessment *procurement.QualityAssessment
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		batch, err := s.batchRepo.FindByID(txCtx, req.BatchID)
		if err != nil {
			return fmt.Errorf("failed to find batch: %w", err)
		}
		if batch == nil {
			return shared.NewDomainError("BATCH_NOT_FOUND", "Coffee batch not found")
		}
		// The batch stays RECEIVED until the pricing decision; only that
		// decision grades or rejects it.
		if batch.Status != procurement.BatchStatusReceived {
			return shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("Cannot assess a batch in %s status", batch.Status))
		}

		existing, err := s.assessmentRepo.FindByBatchID(txCtx, req.BatchID)
		if err != nil {
			return fmt.Errorf("failed to check existing assessment: %w", err)
		}
		if existing != nil {
			return shared.NewDomainError("ALREADY_GRADED", "Batch already has a quality assessment")
		}

		assessment, err = procurement.NewQualityAssessment(
			batch.ID, batch.BatchNumber,
			req.MoisturePct, req.DefectPct, req.Outturn,
			valueobject.NewMoneyUGX(req.SuggestedUnitPrice),
			req.SubmittedBy,
		)
		if err != nil {
			return err
		}

		if err := s.assessmentRepo.Save(txCtx, assessment); err != nil {
			return fmt.Errorf("failed to save assessment: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, assessment)

	s.logger.Info("Assessment recorded",
		zap.String("batch_number", assessment.BatchNumber),
		zap.String("suggested_price", req.SuggestedUnitPrice.String()),
		zap.String("submitted_by", req.SubmittedBy.String()))

	return assessment, nil
}

// GetBatch returns a batch by ID
func (s *IntakeService) GetBatch(ctx context.Context, id uuid.UUID) (*procurement.CoffeeBatch, error) {
	batch, err := s.batchRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, shared.NewDomainError("BATCH_NOT_FOUND", "Coffee batch not found")
	}
	return batch, nil
}

// ListBatches returns batches matching the filter
func (s *IntakeService) ListBatches(ctx context.Context, filter procurement.CoffeeBatchFilter) ([]procurement.CoffeeBatch, int64, error) {
	batches, err := s.batchRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.batchRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return batches, total, nil
}

func (s *IntakeService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range aggregate.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	aggregate.ClearDomainEvents()
}
