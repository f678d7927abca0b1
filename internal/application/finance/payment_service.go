// Package finance contains the application services for supplier payments,
// the cash drawer and the approval queue.
package finance

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

// PaymentService orchestrates supplier payments for approved coffee batches.
// The monetary steps (balance debit, advance recovery, payment record, cash
// ledger lines) commit atomically; bookkeeping that follows the money
// (assessment status, day-book) runs after commit and surfaces failures as
// warnings on the result rather than rolling back a completed payment.
type PaymentService struct {
	assessmentRepo  procurement.QualityAssessmentRepository
	batchRepo       procurement.CoffeeBatchRepository
	paymentRepo     finance.PaymentRecordRepository
	cashTxRepo      finance.CashTransactionRepository
	balanceRepo     finance.CashBalanceRepository
	advanceRepo     finance.SupplierAdvanceRepository
	approvalRepo    finance.ApprovalRequestRepository
	daybookRepo     finance.DaybookRepository
	outboxRepo      shared.OutboxRepository
	recoveryService *finance.AdvanceRecoveryService
	txManager       shared.TransactionManager
	logger          *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	assessmentRepo procurement.QualityAssessmentRepository,
	batchRepo procurement.CoffeeBatchRepository,
	paymentRepo finance.PaymentRecordRepository,
	cashTxRepo finance.CashTransactionRepository,
	balanceRepo finance.CashBalanceRepository,
	advanceRepo finance.SupplierAdvanceRepository,
	approvalRepo finance.ApprovalRequestRepository,
	daybookRepo finance.DaybookRepository,
	outboxRepo shared.OutboxRepository,
	recoveryService *finance.AdvanceRecoveryService,
	txManager shared.TransactionManager,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		assessmentRepo:  assessmentRepo,
		batchRepo:       batchRepo,
		paymentRepo:     paymentRepo,
		cashTxRepo:      cashTxRepo,
		balanceRepo:     balanceRepo,
		advanceRepo:     advanceRepo,
		approvalRepo:    approvalRepo,
		daybookRepo:     daybookRepo,
		outboxRepo:      outboxRepo,
		recoveryService: recoveryService,
		txManager:       txManager,
		logger:          logger,
	}
}

// ProcessPaymentRequest represents a request to pay a supplier for a batch.
// Amount defaults to the batch's graded value (weight times approved unit
// price) when zero. AdvanceRecovery caps how much is withheld against open
// advances: nil withholds as much as the amount covers, zero withholds
// nothing, and a request beyond the outstanding total recovers only what is
// outstanding.
type ProcessPaymentRequest struct {
	BatchID         uuid.UUID
	Method          finance.PaymentMethod
	Amount          decimal.Decimal
	AdvanceRecovery *decimal.Decimal
	Notes           string
	ProcessedBy     uuid.UUID
}

// PaymentResult represents the outcome of a payment run
type PaymentResult struct {
	PaymentID         uuid.UUID                    `json:"payment_id"`
	PaymentNumber     string                       `json:"payment_number"`
	BatchNumber       string                       `json:"batch_number"`
	SupplierName      string                       `json:"supplier_name"`
	GrossAmount       decimal.Decimal              `json:"gross_amount"`
	AdvanceRecovered  decimal.Decimal              `json:"advance_recovered"`
	NetAmount         decimal.Decimal              `json:"net_amount"`
	Method            finance.PaymentMethod        `json:"method"`
	Status            finance.PaymentStatus        `json:"status"`
	Applications      []finance.AdvanceApplication `json:"applications,omitempty"`
	ApprovalRequestID *uuid.UUID                   `json:"approval_request_id,omitempty"`
	Warnings          []string                     `json:"warnings,omitempty"`
}

// ProcessPayment pays a supplier for one approved batch. Cash payments debit
// the drawer immediately; bank transfers create a PROCESSING record plus a
// BANK_TRANSFER approval request and move no money until a second authorizer
// confirms. Open advances are withheld oldest first in both cases.
func (s *PaymentService) ProcessPayment(ctx context.Context, req ProcessPaymentRequest) (*PaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "process")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrBatchID, req.BatchID.String(),
		telemetry.SpanAttrMethod, string(req.Method),
	)

	if !req.Method.IsValid() {
		err := shared.NewDomainError("INVALID_METHOD", fmt.Sprintf("Invalid payment method: %s", req.Method))
		telemetry.RecordError(span, err)
		return nil, err
	}
	if req.ProcessedBy == uuid.Nil {
		err := shared.NewDomainError("INVALID_USER", "Processing user ID is required")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if req.Amount.IsNegative() {
		err := shared.NewDomainError("INVALID_AMOUNT", "Payment amount cannot be negative")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if req.AdvanceRecovery != nil && req.AdvanceRecovery.IsNegative() {
		err := shared.NewDomainError("INVALID_AMOUNT", "Advance recovery cannot be negative")
		telemetry.RecordError(span, err)
		return nil, err
	}

	var (
		result     *PaymentResult
		payment    *finance.PaymentRecord
		assessment *procurement.QualityAssessment
	)

	var operationErr error
	telemetry.WithProfilingLabels(ctx, telemetry.PaymentOperationLabels(telemetry.OperationProcessPayment, string(req.Method)), func(c context.Context) {
		result, payment, assessment, operationErr = s.processPayment(c, req)
	})
	if operationErr != nil {
		telemetry.RecordError(span, operationErr)
		return nil, operationErr
	}

	// Post-commit bookkeeping. The payment is final at this point; failures
	// here must not undo it, so they come back as warnings.
	if payment.IsPaid() {
		result.Warnings = append(result.Warnings, s.markAssessmentPaid(ctx, assessment)...)
		result.Warnings = append(result.Warnings, s.appendPaymentDaybook(ctx, payment)...)
	} else {
		result.Warnings = append(result.Warnings, s.submitAssessmentToFinance(ctx, assessment)...)
	}

	s.logger.Info("Payment processed",
		zap.String("payment_number", payment.PaymentNumber),
		zap.String("batch_number", payment.BatchNumber),
		zap.String("method", string(payment.Method)),
		zap.String("status", string(payment.Status)),
		zap.String("gross", payment.GrossAmount.String()),
		zap.String("recovered", payment.AdvanceRecovered.String()),
		zap.String("net", payment.NetAmount.String()),
		zap.Int("warnings", len(result.Warnings)))

	return result, nil
}

func (s *PaymentService) processPayment(ctx context.Context, req ProcessPaymentRequest) (*PaymentResult, *finance.PaymentRecord, *procurement.QualityAssessment, error) {
	var (
		result     *PaymentResult
		payment    *finance.PaymentRecord
		assessment *procurement.QualityAssessment
	)

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		batch, err := s.batchRepo.FindByID(txCtx, req.BatchID)
		if err != nil {
			return fmt.Errorf("failed to find batch: %w", err)
		}
		if batch == nil {
			return shared.NewDomainError("BATCH_NOT_FOUND", "Coffee batch not found")
		}

		assessment, err = s.assessmentRepo.FindByBatchID(txCtx, req.BatchID)
		if err != nil {
			return fmt.Errorf("failed to find assessment: %w", err)
		}
		if assessment == nil {
			return shared.NewDomainError("NOT_GRADED", "Batch has no quality assessment")
		}
		// SUBMITTED_TO_FINANCE means a bank transfer is in flight; the
		// stalled record can still be retried in place.
		switch assessment.Status {
		case procurement.AssessmentStatusApproved, procurement.AssessmentStatusSubmittedToFinance:
		case procurement.AssessmentStatusPaid:
			return shared.ErrAlreadyPaid
		default:
			return shared.NewDomainError("NOT_PAYABLE",
				fmt.Sprintf("Batch is not payable while its assessment is %s", assessment.Status))
		}

		existing, err := s.paymentRepo.FindByBatchID(txCtx, req.BatchID)
		if err != nil {
			return fmt.Errorf("failed to check existing payment: %w", err)
		}
		if existing != nil && existing.Status.IsTerminal() {
			return shared.ErrAlreadyPaid
		}

		gross := valueobject.NewMoneyUGX(batch.WeightKg.Mul(*assessment.FinalUnitPrice))
		if req.Amount.IsPositive() {
			gross = valueobject.NewMoneyUGX(req.Amount)
		}

		// Default is to withhold as much as the payment covers; the caller
		// can narrow that to an explicit amount, including zero.
		requested := gross
		if req.AdvanceRecovery != nil {
			requested = valueobject.NewMoneyUGX(*req.AdvanceRecovery)
		}

		advances, err := s.advanceRepo.FindOpenBySupplier(txCtx, batch.SupplierID)
		if err != nil {
			return fmt.Errorf("failed to load open advances: %w", err)
		}

		recovery, err := s.recoveryService.Recover(gross, requested, advances)
		if err != nil {
			return fmt.Errorf("failed to resolve advance recovery: %w", err)
		}

		if existing != nil {
			// A stalled non-terminal record is retried in place, keeping one
			// row per batch.
			if err := existing.Revise(gross, recovery.TotalRecovered, recovery.NetPayable, req.Method, req.ProcessedBy); err != nil {
				return err
			}
			payment = existing
		} else {
			paymentNumber, err := s.paymentRepo.GeneratePaymentNumber(txCtx)
			if err != nil {
				return fmt.Errorf("failed to generate payment number: %w", err)
			}

			payment, err = finance.NewPaymentRecord(
				paymentNumber,
				batch.ID, batch.BatchNumber,
				batch.SupplierID, batch.SupplierName,
				gross, recovery.TotalRecovered, recovery.NetPayable,
				req.Method, req.ProcessedBy,
			)
			if err != nil {
				return err
			}
		}
		payment.Notes = req.Notes

		switch req.Method {
		case finance.PaymentMethodCash:
			if err := s.settleCash(txCtx, payment, recovery, req.ProcessedBy); err != nil {
				return err
			}
		case finance.PaymentMethodBankTransfer:
			// No disbursement yet, but the withheld portion is settled now so
			// the advance balances and the cash ledger stay in step.
			if err := s.postBankRecovery(txCtx, payment, recovery, req.ProcessedBy); err != nil {
				return err
			}
		}

		// Payment decided either way; the batch moves into store.
		if batch.Status != procurement.BatchStatusInventory {
			if err := batch.MoveToInventory(); err != nil {
				return err
			}
			if err := s.batchRepo.SaveWithLock(txCtx, batch); err != nil {
				return fmt.Errorf("failed to save batch: %w", err)
			}
		}

		for _, adv := range advances {
			if err := s.advanceRepo.SaveWithLock(txCtx, adv); err != nil {
				return fmt.Errorf("failed to save advance: %w", err)
			}
		}

		if existing != nil {
			if err := s.paymentRepo.SaveWithLock(txCtx, payment); err != nil {
				return fmt.Errorf("failed to save payment: %w", err)
			}
		} else if err := s.paymentRepo.Save(txCtx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}

		result = &PaymentResult{
			PaymentID:        payment.ID,
			PaymentNumber:    payment.PaymentNumber,
			BatchNumber:      payment.BatchNumber,
			SupplierName:     payment.SupplierName,
			GrossAmount:      payment.GrossAmount,
			AdvanceRecovered: payment.AdvanceRecovered,
			NetAmount:        payment.NetAmount,
			Method:           payment.Method,
			Status:           payment.Status,
			Applications:     recovery.Applications,
		}

		if req.Method == finance.PaymentMethodBankTransfer {
			request, err := s.queueBankApproval(txCtx, payment, req.ProcessedBy)
			if err != nil {
				return err
			}
			result.ApprovalRequestID = &request.ID
		} else {
			if err := s.enqueueCompletionEvents(txCtx, payment); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return result, payment, assessment, nil
}

// loadDrawer returns the drawer projection, repairing it from the confirmed
// ledger when the row is missing or reads zero. A zero projection alongside
// confirmed deposits means the projection is stale, not that the drawer is
// empty.
func (s *PaymentService) loadDrawer(ctx context.Context) (*finance.CashBalance, error) {
	balance, err := s.balanceRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load cash balance: %w", err)
	}
	if balance == nil {
		balance = finance.NewCashBalance()
		if err := s.balanceRepo.Save(ctx, balance); err != nil {
			return nil, fmt.Errorf("failed to create cash balance: %w", err)
		}
	}

	if balance.Balance.IsZero() {
		sum, err := s.cashTxRepo.SumConfirmed(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to sum cash ledger: %w", err)
		}
		if sum.IsPositive() {
			if err := balance.Credit(valueobject.NewMoneyUGX(sum)); err != nil {
				return nil, err
			}
			if err := s.balanceRepo.Save(ctx, balance); err != nil {
				return nil, fmt.Errorf("failed to save cash balance: %w", err)
			}
		}
	}

	return balance, nil
}

// settleCash debits the drawer and writes the cash ledger lines. The drawer
// must cover the full gross amount before any line is posted; the balance row
// is saved with a version check so two concurrent payments cannot both spend
// the same funds.
func (s *PaymentService) settleCash(ctx context.Context, payment *finance.PaymentRecord, recovery *finance.RecoveryResult, processedBy uuid.UUID) error {
	balance, err := s.loadDrawer(ctx)
	if err != nil {
		return err
	}

	gross := payment.GetGrossMoney()
	if !balance.CanCover(gross) {
		return shared.ErrInsufficientFunds
	}

	// Ledger: recovered portion in first as ADVANCE_RECOVERY, then the gross
	// out as PAYMENT. The two lines net to the amount actually handed over.
	before := balance.Balance
	running := before
	if recovery.TotalRecovered.IsPositive() {
		running = running.Add(recovery.TotalRecovered.Amount())
		recoveryLine, err := finance.NewCashTransaction(
			finance.CashTransactionAdvanceRecovery,
			recovery.TotalRecovered,
			valueobject.NewMoneyUGX(running),
			fmt.Sprintf("Advances recovered from payment %s", payment.PaymentNumber),
			&payment.ID,
			processedBy,
		)
		if err != nil {
			return err
		}
		if err := s.cashTxRepo.Save(ctx, recoveryLine); err != nil {
			return fmt.Errorf("failed to save recovery ledger line: %w", err)
		}
	}

	running = running.Sub(gross.Amount())
	paymentLine, err := finance.NewCashTransaction(
		finance.CashTransactionPayment,
		gross,
		valueobject.NewMoneyUGX(running),
		fmt.Sprintf("Payment %s for batch %s (%s)", payment.PaymentNumber, payment.BatchNumber, payment.SupplierName),
		&payment.ID,
		processedBy,
	)
	if err != nil {
		return err
	}
	if err := s.cashTxRepo.Save(ctx, paymentLine); err != nil {
		return fmt.Errorf("failed to save payment ledger line: %w", err)
	}

	net := payment.GetNetMoney()
	if net.IsPositive() {
		if err := balance.Debit(net); err != nil {
			return err
		}
	} else {
		// Fully recovered payment leaves the drawer untouched, but the save
		// still claims the version so concurrent payments serialize.
		balance.IncrementVersion()
	}

	if err := s.balanceRepo.SaveWithLock(ctx, balance); err != nil {
		return fmt.Errorf("failed to save cash balance: %w", err)
	}

	return nil
}

// postBankRecovery settles the withheld portion of a bank transfer in cash
// terms: the advances were just applied, so the matching ADVANCE_RECOVERY
// line is posted and the drawer credited in the same transaction.
func (s *PaymentService) postBankRecovery(ctx context.Context, payment *finance.PaymentRecord, recovery *finance.RecoveryResult, processedBy uuid.UUID) error {
	if !recovery.TotalRecovered.IsPositive() {
		return nil
	}

	balance, err := s.loadDrawer(ctx)
	if err != nil {
		return err
	}
	if err := balance.Credit(recovery.TotalRecovered); err != nil {
		return err
	}

	recoveryLine, err := finance.NewCashTransaction(
		finance.CashTransactionAdvanceRecovery,
		recovery.TotalRecovered,
		balance.GetBalanceMoney(),
		fmt.Sprintf("Advances recovered from payment %s", payment.PaymentNumber),
		&payment.ID,
		processedBy,
	)
	if err != nil {
		return err
	}
	if err := s.cashTxRepo.Save(ctx, recoveryLine); err != nil {
		return fmt.Errorf("failed to save recovery ledger line: %w", err)
	}

	if err := s.balanceRepo.SaveWithLock(ctx, balance); err != nil {
		return fmt.Errorf("failed to save cash balance: %w", err)
	}

	return nil
}

func (s *PaymentService) queueBankApproval(ctx context.Context, payment *finance.PaymentRecord, requestedBy uuid.UUID) (*finance.ApprovalRequest, error) {
	details, err := json.Marshal(map[string]string{
		"payment_number": payment.PaymentNumber,
		"batch_number":   payment.BatchNumber,
		"supplier_name":  payment.SupplierName,
		"net_amount":     payment.NetAmount.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal approval details: %w", err)
	}

	request, err := finance.NewApprovalRequest(finance.ApprovalTypeBankTransfer, payment.ID, details, requestedBy)
	if err != nil {
		return nil, err
	}
	if err := s.approvalRepo.Save(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to save approval request: %w", err)
	}
	return request, nil
}

// enqueueCompletionEvents writes the payment's domain events to the outbox in
// the same transaction, so supplier notification survives a crash after commit.
func (s *PaymentService) enqueueCompletionEvents(ctx context.Context, payment *finance.PaymentRecord) error {
	for _, event := range payment.GetDomainEvents() {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to serialize %s event: %w", event.EventType(), err)
		}
		if err := s.outboxRepo.Save(ctx, shared.NewOutboxEntry(event, payload)); err != nil {
			return fmt.Errorf("failed to enqueue %s event: %w", event.EventType(), err)
		}
	}
	payment.ClearDomainEvents()
	return nil
}

func (s *PaymentService) markAssessmentPaid(ctx context.Context, assessment *procurement.QualityAssessment) []string {
	if err := assessment.MarkPaid(); err != nil {
		return []string{fmt.Sprintf("assessment status not updated: %v", err)}
	}
	if err := s.assessmentRepo.SaveWithLock(ctx, assessment); err != nil {
		return []string{fmt.Sprintf("assessment status not saved: %v", err)}
	}
	return nil
}

func (s *PaymentService) submitAssessmentToFinance(ctx context.Context, assessment *procurement.QualityAssessment) []string {
	if assessment.Status == procurement.AssessmentStatusSubmittedToFinance {
		return nil
	}
	if err := assessment.SubmitToFinance(); err != nil {
		return []string{fmt.Sprintf("assessment status not updated: %v", err)}
	}
	if err := s.assessmentRepo.SaveWithLock(ctx, assessment); err != nil {
		return []string{fmt.Sprintf("assessment status not saved: %v", err)}
	}
	return nil
}

func (s *PaymentService) appendPaymentDaybook(ctx context.Context, payment *finance.PaymentRecord) []string {
	entry, err := finance.NewDaybookEntry(
		"PAYMENT",
		fmt.Sprintf("Payment %s to %s for batch %s", payment.PaymentNumber, payment.SupplierName, payment.BatchNumber),
		payment.NetAmount, decimal.Zero,
		&payment.ID,
		payment.ProcessedBy,
	)
	if err != nil {
		return []string{fmt.Sprintf("day-book entry not created: %v", err)}
	}
	if err := s.daybookRepo.Save(ctx, entry); err != nil {
		return []string{fmt.Sprintf("day-book entry not saved: %v", err)}
	}
	return nil
}

// ConfirmBankTransferRequest represents a second authorizer's confirmation
type ConfirmBankTransferRequest struct {
	ApprovalRequestID uuid.UUID
	DecidedBy         uuid.UUID
	BankReference     string
}

// ConfirmBankTransfer completes a bank transfer payment once a second
// authorizer approves it. The requester cannot confirm their own transfer.
func (s *PaymentService) ConfirmBankTransfer(ctx context.Context, req ConfirmBankTransferRequest) (*PaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "confirm_bank_transfer")
	defer span.End()

	var (
		payment    *finance.PaymentRecord
		assessment *procurement.QualityAssessment
	)

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		request, err := s.approvalRepo.FindByID(txCtx, req.ApprovalRequestID)
		if err != nil {
			return fmt.Errorf("failed to find approval request: %w", err)
		}
		if request == nil {
			return shared.NewDomainError("REQUEST_NOT_FOUND", "Approval request not found")
		}
		if request.Type != finance.ApprovalTypeBankTransfer {
			return shared.NewDomainError("INVALID_TYPE", "Approval request is not a bank transfer")
		}

		if err := request.Approve(req.DecidedBy); err != nil {
			return err
		}

		payment, err = s.paymentRepo.FindByID(txCtx, request.SubjectID)
		if err != nil {
			return fmt.Errorf("failed to find payment: %w", err)
		}
		if payment == nil {
			return shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment record not found")
		}

		if err := payment.ConfirmTransfer(req.BankReference); err != nil {
			return err
		}

		assessment, err = s.assessmentRepo.FindByBatchID(txCtx, payment.BatchID)
		if err != nil {
			return fmt.Errorf("failed to find assessment: %w", err)
		}

		if err := s.approvalRepo.SaveWithLock(txCtx, request); err != nil {
			return fmt.Errorf("failed to save approval request: %w", err)
		}
		if err := s.paymentRepo.SaveWithLock(txCtx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}
		return s.enqueueCompletionEvents(txCtx, payment)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result := &PaymentResult{
		PaymentID:        payment.ID,
		PaymentNumber:    payment.PaymentNumber,
		BatchNumber:      payment.BatchNumber,
		SupplierName:     payment.SupplierName,
		GrossAmount:      payment.GrossAmount,
		AdvanceRecovered: payment.AdvanceRecovered,
		NetAmount:        payment.NetAmount,
		Method:           payment.Method,
		Status:           payment.Status,
	}

	if assessment != nil {
		result.Warnings = append(result.Warnings, s.markAssessmentPaid(ctx, assessment)...)
	}
	result.Warnings = append(result.Warnings, s.appendPaymentDaybook(ctx, payment)...)

	s.logger.Info("Bank transfer confirmed",
		zap.String("payment_number", payment.PaymentNumber),
		zap.String("reference", req.BankReference),
		zap.String("decided_by", req.DecidedBy.String()))

	return result, nil
}

// GetPayment returns a payment record by ID
func (s *PaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*finance.PaymentRecord, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment record not found")
	}
	return payment, nil
}

// ListPayments returns payments matching the filter
func (s *PaymentService) ListPayments(ctx context.Context, filter finance.PaymentRecordFilter) ([]finance.PaymentRecord, error) {
	return s.paymentRepo.FindAll(ctx, filter)
}
