// Package grading contains the application services for quality grading and
// price approval.
package grading

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kahawa/backend/internal/domain/finance"
	"github.com/kahawa/backend/internal/domain/procurement"
	"github.com/kahawa/backend/internal/domain/shared"
	"github.com/kahawa/backend/internal/domain/shared/valueobject"
	"github.com/kahawa/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PricingApprovalService handles the admin's pricing decisions on submitted
// quality assessments. The pricing decision is what settles the batch status:
// approval grades the batch, rejection rejects it.
type PricingApprovalService struct {
	assessmentRepo procurement.QualityAssessmentRepository
	batchRepo      procurement.CoffeeBatchRepository
	approvalRepo   finance.ApprovalRequestRepository
	txManager      shared.TransactionManager
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPricingApprovalService creates a new PricingApprovalService
func NewPricingApprovalService(
	assessmentRepo procurement.QualityAssessmentRepository,
	batchRepo procurement.CoffeeBatchRepository,
	approvalRepo finance.ApprovalRequestRepository,
	txManager shared.TransactionManager,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *PricingApprovalService {
	return &PricingApprovalService{
		assessmentRepo: assessmentRepo,
		batchRepo:      batchRepo,
		approvalRepo:   approvalRepo,
		txManager:      txManager,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// ApprovePriceRequest represents a request to approve a suggested price
type ApprovePriceRequest struct {
	AssessmentID uuid.UUID
	FinalPrice   decimal.Decimal
	ApprovedBy   uuid.UUID
	Comments     string
}

// RejectPriceRequest represents a request to reject a suggested price
type RejectPriceRequest struct {
	AssessmentID uuid.UUID
	RejectedBy   uuid.UUID
	Reason       string
}

// PriceCorrectionRequest represents a request to correct an approved price.
// Corrections are not applied directly; they queue a PRICE_CHANGE approval.
type PriceCorrectionRequest struct {
	AssessmentID  uuid.UUID
	ProposedPrice decimal.Decimal
	RequestedBy   uuid.UUID
	Reason        string
}

// ApprovePrice finalizes the unit price on a pending assessment. The batch
// becomes payable once this commits.
func (s *PricingApprovalService) ApprovePrice(ctx context.Context, req ApprovePriceRequest) (*procurement.QualityAssessment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "pricing", "approve_price")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrAssessmentID, req.AssessmentID.String(),
		telemetry.SpanAttrAmount, req.FinalPrice.String(),
	)

	var assessment *procurement.QualityAssessment
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		var err error
		assessment, err = s.assessmentRepo.FindByID(txCtx, req.AssessmentID)
		if err != nil {
			return fmt.Errorf("failed to find assessment: %w", err)
		}
		if assessment == nil {
			return shared.NewDomainError("ASSESSMENT_NOT_FOUND", "Quality assessment not found")
		}

		if err := assessment.ApprovePrice(valueobject.NewMoneyUGX(req.FinalPrice), req.ApprovedBy, req.Comments); err != nil {
			return err
		}

		if err := s.assessmentRepo.SaveWithLock(txCtx, assessment); err != nil {
			return fmt.Errorf("failed to save assessment: %w", err)
		}

		return s.settleBatch(txCtx, assessment.BatchID, true)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, assessment)

	s.logger.Info("Price approved",
		zap.String("assessment_id", assessment.ID.String()),
		zap.String("batch_number", assessment.BatchNumber),
		zap.String("final_price", req.FinalPrice.String()),
		zap.String("approved_by", req.ApprovedBy.String()))

	return assessment, nil
}

// RejectPrice rejects a suggested price with a mandatory reason. The batch
// stays unpayable and the grader must resubmit.
func (s *PricingApprovalService) RejectPrice(ctx context.Context, req RejectPriceRequest) (*procurement.QualityAssessment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "pricing", "reject_price")
	defer span.End()

	telemetry.SetAttribute(span, telemetry.SpanAttrAssessmentID, req.AssessmentID.String())

	var assessment *procurement.QualityAssessment
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		var err error
		assessment, err = s.assessmentRepo.FindByID(txCtx, req.AssessmentID)
		if err != nil {
			return fmt.Errorf("failed to find assessment: %w", err)
		}
		if assessment == nil {
			return shared.NewDomainError("ASSESSMENT_NOT_FOUND", "Quality assessment not found")
		}

		if err := assessment.RejectPrice(req.RejectedBy, req.Reason); err != nil {
			return err
		}

		if err := s.assessmentRepo.SaveWithLock(txCtx, assessment); err != nil {
			return fmt.Errorf("failed to save assessment: %w", err)
		}

		return s.settleBatch(txCtx, assessment.BatchID, false)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, assessment)

	s.logger.Info("Price rejected",
		zap.String("assessment_id", assessment.ID.String()),
		zap.String("batch_number", assessment.BatchNumber),
		zap.String("reason", req.Reason))

	return assessment, nil
}

// SubmitPriceCorrection queues a PRICE_CHANGE approval request for an
// already-approved assessment instead of mutating the price in place.
func (s *PricingApprovalService) SubmitPriceCorrection(ctx context.Context, req PriceCorrectionRequest) (*finance.ApprovalRequest, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "pricing", "submit_price_correction")
	defer span.End()

	telemetry.SetAttribute(span, telemetry.SpanAttrAssessmentID, req.AssessmentID.String())

	if req.ProposedPrice.LessThanOrEqual(decimal.Zero) {
		err := shared.NewDomainError("INVALID_PRICE", "Proposed price must be positive")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if req.Reason == "" {
		err := shared.NewDomainError("INVALID_REASON", "Correction reason is required")
		telemetry.RecordError(span, err)
		return nil, err
	}

	assessment, err := s.assessmentRepo.FindByID(ctx, req.AssessmentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to find assessment: %w", err)
	}
	if assessment == nil {
		err := shared.NewDomainError("ASSESSMENT_NOT_FOUND", "Quality assessment not found")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if assessment.Status != procurement.AssessmentStatusApproved {
		err := shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Price corrections only apply to approved assessments, not %s", assessment.Status))
		telemetry.RecordError(span, err)
		return nil, err
	}

	details, err := json.Marshal(map[string]string{
		"batch_number":   assessment.BatchNumber,
		"current_price":  assessment.FinalUnitPrice.String(),
		"proposed_price": req.ProposedPrice.String(),
		"reason":         req.Reason,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to marshal correction details: %w", err)
	}

	request, err := finance.NewApprovalRequest(finance.ApprovalTypePriceChange, assessment.ID, details, req.RequestedBy)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.approvalRepo.Save(ctx, request); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save approval request: %w", err)
	}

	s.logger.Info("Price correction queued",
		zap.String("assessment_id", assessment.ID.String()),
		zap.String("proposed_price", req.ProposedPrice.String()),
		zap.String("requested_by", req.RequestedBy.String()))

	return request, nil
}

// ListPendingAssessments returns assessments awaiting a pricing decision
func (s *PricingApprovalService) ListPendingAssessments(ctx context.Context, filter shared.Filter) ([]procurement.QualityAssessment, error) {
	return s.assessmentRepo.FindByStatus(ctx, procurement.AssessmentStatusPendingPricing, filter)
}

// settleBatch applies the pricing decision to the batch in the same
// transaction: approval grades it, rejection rejects it.
func (s *PricingApprovalService) settleBatch(ctx context.Context, batchID uuid.UUID, approved bool) error {
	batch, err := s.batchRepo.FindByID(ctx, batchID)
	if err != nil {
		return fmt.Errorf("failed to find batch: %w", err)
	}
	if batch == nil {
		return shared.NewDomainError("BATCH_NOT_FOUND", "Coffee batch not found")
	}

	if approved {
		err = batch.MarkGraded()
	} else {
		err = batch.MarkRejected()
	}
	if err != nil {
		return err
	}

	if err := s.batchRepo.SaveWithLock(ctx, batch); err != nil {
		return fmt.Errorf("failed to save batch: %w", err)
	}
	return nil
}

func (s *PricingApprovalService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
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
