package finance

import (
	"context"
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

// AdvanceService manages supplier advances: issuing them from the cash drawer
// and listing what remains open.
type AdvanceService struct {
	advanceRepo  finance.SupplierAdvanceRepository
	supplierRepo procurement.SupplierRepository
	balanceRepo  finance.CashBalanceRepository
	cashTxRepo   finance.CashTransactionRepository
	txManager    shared.TransactionManager
	logger       *zap.Logger
}

// NewAdvanceService creates a new AdvanceService
func NewAdvanceService(
	advanceRepo finance.SupplierAdvanceRepository,
	supplierRepo procurement.SupplierRepository,
	balanceRepo finance.CashBalanceRepository,
	cashTxRepo finance.CashTransactionRepository,
	txManager shared.TransactionManager,
	logger *zap.Logger,
) *AdvanceService {
	return &AdvanceService{
		advanceRepo:  advanceRepo,
		supplierRepo: supplierRepo,
		balanceRepo:  balanceRepo,
		cashTxRepo:   cashTxRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

// IssueAdvanceRequest represents a request to pre-pay a supplier
type IssueAdvanceRequest struct {
	SupplierID uuid.UUID
	Amount     decimal.Decimal
	Purpose    string
	IssuedBy   uuid.UUID
}

// IssueAdvance disburses an advance from the cash drawer. The drawer must
// cover the full principal.
func (s *AdvanceService) IssueAdvance(ctx context.Context, req IssueAdvanceRequest) (*finance.SupplierAdvance, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "advance", "issue")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrSupplierID, req.SupplierID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

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

	var advance *finance.SupplierAdvance
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		balance, err := s.balanceRepo.Get(txCtx)
		if err != nil {
			return fmt.Errorf("failed to load cash balance: %w", err)
		}
		if balance == nil {
			return shared.ErrInsufficientFunds
		}

		amount := valueobject.NewMoneyUGX(req.Amount)
		if err := balance.Debit(amount); err != nil {
			return err
		}
		if err := s.balanceRepo.SaveWithLock(txCtx, balance); err != nil {
			return fmt.Errorf("failed to save cash balance: %w", err)
		}

		advance, err = finance.NewSupplierAdvance(req.SupplierID, amount, req.Purpose, req.IssuedBy)
		if err != nil {
			return err
		}
		if err := s.advanceRepo.Save(txCtx, advance); err != nil {
			return fmt.Errorf("failed to save advance: %w", err)
		}

		line, err := finance.NewCashTransaction(
			finance.CashTransactionExpense,
			amount,
			balance.GetBalanceMoney(),
			fmt.Sprintf("Advance to %s: %s", supplier.Name, req.Purpose),
			&advance.ID,
			req.IssuedBy,
		)
		if err != nil {
			return err
		}
		if err := s.cashTxRepo.Save(txCtx, line); err != nil {
			return fmt.Errorf("failed to save ledger line: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Advance issued",
		zap.String("supplier", supplier.Name),
		zap.String("amount", req.Amount.String()),
		zap.String("issued_by", req.IssuedBy.String()))

	return advance, nil
}

// OpenAdvances returns a supplier's open advances, oldest first
func (s *AdvanceService) OpenAdvances(ctx context.Context, supplierID uuid.UUID) ([]*finance.SupplierAdvance, error) {
	return s.advanceRepo.FindOpenBySupplier(ctx, supplierID)
}

// OutstandingTotal returns the total outstanding across a supplier's advances
func (s *AdvanceService) OutstandingTotal(ctx context.Context, supplierID uuid.UUID) (valueobject.Money, error) {
	advances, err := s.advanceRepo.FindOpenBySupplier(ctx, supplierID)
	if err != nil {
		return valueobject.ZeroUGX(), err
	}
	total := decimal.Zero
	for _, adv := range advances {
		total = total.Add(adv.Outstanding)
	}
	return valueobject.NewMoneyUGX(total), nil
}
