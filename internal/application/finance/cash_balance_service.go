package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/kahawa/backend/internal/domain/finance"
	"github.com/kahawa/backend/internal/domain/shared"
	"github.com/kahawa/backend/internal/domain/shared/valueobject"
	"github.com/kahawa/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CashBalanceService manages the cash drawer: deposits, expenses and the
// current balance.
type CashBalanceService struct {
	balanceRepo finance.CashBalanceRepository
	cashTxRepo  finance.CashTransactionRepository
	daybookRepo finance.DaybookRepository
	txManager   shared.TransactionManager
	logger      *zap.Logger
}

// NewCashBalanceService creates a new CashBalanceService
func NewCashBalanceService(
	balanceRepo finance.CashBalanceRepository,
	cashTxRepo finance.CashTransactionRepository,
	daybookRepo finance.DaybookRepository,
	txManager shared.TransactionManager,
	logger *zap.Logger,
) *CashBalanceService {
	return &CashBalanceService{
		balanceRepo: balanceRepo,
		cashTxRepo:  cashTxRepo,
		daybookRepo: daybookRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// RecordDepositRequest represents cash brought into the drawer
type RecordDepositRequest struct {
	Amount      decimal.Decimal
	Description string
	RecordedBy  uuid.UUID
}

// RecordExpenseRequest represents an operational expense paid from the drawer
type RecordExpenseRequest struct {
	Amount      decimal.Decimal
	Description string
	RecordedBy  uuid.UUID
}

// CurrentBalance returns the drawer balance. It reads the materialized
// projection when it holds funds and falls back to summing the confirmed
// ledger when the row is missing or reads zero. A zero projection alongside
// confirmed deposits means the projection is stale, not that the drawer is
// empty.
func (s *CashBalanceService) CurrentBalance(ctx context.Context) (valueobject.Money, error) {
	balance, err := s.balanceRepo.Get(ctx)
	if err != nil {
		return valueobject.ZeroUGX(), fmt.Errorf("failed to load cash balance: %w", err)
	}
	if balance != nil && !balance.Balance.IsZero() {
		return balance.GetBalanceMoney(), nil
	}

	sum, err := s.cashTxRepo.SumConfirmed(ctx)
	if err != nil {
		return valueobject.ZeroUGX(), fmt.Errorf("failed to sum cash ledger: %w", err)
	}
	return valueobject.NewMoneyUGX(sum), nil
}

// RecordDeposit credits the drawer and writes the matching ledger line
func (s *CashBalanceService) RecordDeposit(ctx context.Context, req RecordDepositRequest) (*finance.CashTransaction, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cash", "record_deposit")
	defer span.End()

	telemetry.SetAttribute(span, telemetry.SpanAttrAmount, req.Amount.String())

	var line *finance.CashTransaction
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		balance, err := s.loadOrCreateBalance(txCtx)
		if err != nil {
			return err
		}

		if err := balance.Credit(valueobject.NewMoneyUGX(req.Amount)); err != nil {
			return err
		}
		if err := s.balanceRepo.SaveWithLock(txCtx, balance); err != nil {
			return fmt.Errorf("failed to save cash balance: %w", err)
		}

		line, err = finance.NewCashTransaction(
			finance.CashTransactionDeposit,
			valueobject.NewMoneyUGX(req.Amount),
			balance.GetBalanceMoney(),
			req.Description,
			nil,
			req.RecordedBy,
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

	s.appendDaybook(ctx, "DEPOSIT", req.Description, decimal.Zero, req.Amount, line.ID, req.RecordedBy)

	s.logger.Info("Deposit recorded",
		zap.String("amount", req.Amount.String()),
		zap.String("description", req.Description))

	return line, nil
}

// RecordExpense debits the drawer for an operational expense. The drawer can
// never go negative; an expense beyond the balance is refused outright.
func (s *CashBalanceService) RecordExpense(ctx context.Context, req RecordExpenseRequest) (*finance.CashTransaction, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cash", "record_expense")
	defer span.End()

	telemetry.SetAttribute(span, telemetry.SpanAttrAmount, req.Amount.String())

	var line *finance.CashTransaction
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		balance, err := s.loadOrCreateBalance(txCtx)
		if err != nil {
			return err
		}

		if err := balance.Debit(valueobject.NewMoneyUGX(req.Amount)); err != nil {
			return err
		}
		if err := s.balanceRepo.SaveWithLock(txCtx, balance); err != nil {
			return fmt.Errorf("failed to save cash balance: %w", err)
		}

		line, err = finance.NewCashTransaction(
			finance.CashTransactionExpense,
			valueobject.NewMoneyUGX(req.Amount),
			balance.GetBalanceMoney(),
			req.Description,
			nil,
			req.RecordedBy,
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

	s.appendDaybook(ctx, "EXPENSE", req.Description, req.Amount, decimal.Zero, line.ID, req.RecordedBy)

	s.logger.Info("Expense recorded",
		zap.String("amount", req.Amount.String()),
		zap.String("description", req.Description))

	return line, nil
}

// ListTransactions returns ledger lines, newest first
func (s *CashBalanceService) ListTransactions(ctx context.Context, filter shared.Filter) ([]finance.CashTransaction, error) {
	return s.cashTxRepo.FindAll(ctx, filter)
}

// Daybook returns the day-book entries for a given day, oldest first
func (s *CashBalanceService) Daybook(ctx context.Context, date time.Time) ([]finance.DaybookEntry, error) {
	return s.daybookRepo.FindByDate(ctx, date)
}

func (s *CashBalanceService) loadOrCreateBalance(ctx context.Context) (*finance.CashBalance, error) {
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
	return balance, nil
}

func (s *CashBalanceService) appendDaybook(ctx context.Context, category, description string, debit, credit decimal.Decimal, refID, recordedBy uuid.UUID) {
	entry, err := finance.NewDaybookEntry(category, description, debit, credit, &refID, recordedBy)
	if err == nil {
		err = s.daybookRepo.Save(ctx, entry)
	}
	if err != nil {
		s.logger.Warn("Day-book entry not recorded",
			zap.String("category", category),
			zap.Error(err))
	}
}
