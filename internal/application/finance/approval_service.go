package finance

import (
	"context"
	"fmt"

	"github.com/kahawa/backend/internal/domain/finance"
	"github.com/kahawa/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ApprovalService exposes the approval queue: pending requests and rejection.
// Bank transfer confirmations run through PaymentService so the payment and
// the decision commit together.
type ApprovalService struct {
	approvalRepo finance.ApprovalRequestRepository
	txManager    shared.TransactionManager
	logger       *zap.Logger
}

// NewApprovalService creates a new ApprovalService
func NewApprovalService(
	approvalRepo finance.ApprovalRequestRepository,
	txManager shared.TransactionManager,
	logger *zap.Logger,
) *ApprovalService {
	return &ApprovalService{
		approvalRepo: approvalRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

// ListPending returns pending approval requests, optionally filtered by type
func (s *ApprovalService) ListPending(ctx context.Context, reqType *finance.ApprovalRequestType, filter shared.Filter) ([]finance.ApprovalRequest, error) {
	return s.approvalRepo.FindPending(ctx, reqType, filter)
}

// GetRequest returns an approval request by ID
func (s *ApprovalService) GetRequest(ctx context.Context, id uuid.UUID) (*finance.ApprovalRequest, error) {
	request, err := s.approvalRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, shared.NewDomainError("REQUEST_NOT_FOUND", "Approval request not found")
	}
	return request, nil
}

// RejectRequest rejects a pending request with a mandatory reason. The
// subject aggregate is left untouched; rejected transfers stay PROCESSING
// until resubmitted or cancelled by finance.
func (s *ApprovalService) RejectRequest(ctx context.Context, id, decidedBy uuid.UUID, reason string) (*finance.ApprovalRequest, error) {
	var request *finance.ApprovalRequest
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		var err error
		request, err = s.approvalRepo.FindByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("failed to find approval request: %w", err)
		}
		if request == nil {
			return shared.NewDomainError("REQUEST_NOT_FOUND", "Approval request not found")
		}

		if err := request.Reject(decidedBy, reason); err != nil {
			return err
		}

		if err := s.approvalRepo.SaveWithLock(txCtx, request); err != nil {
			return fmt.Errorf("failed to save approval request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Approval request rejected",
		zap.String("request_id", request.ID.String()),
		zap.String("type", string(request.Type)),
		zap.String("reason", reason))

	return request, nil
}
