package finance

import (
	"fmt"
	"time"

	"github.com/kahawa/backend/internal/domain/shared"
	"github.com/kahawa/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashTransactionType classifies movements through the cash drawer
type CashTransactionType string

const (
	CashTransactionDeposit         CashTransactionType = "DEPOSIT"          // Cash brought into the drawer
	CashTransactionPayment         CashTransactionType = "PAYMENT"          // Supplier payment out of the drawer
	CashTransactionAdvanceRecovery CashTransactionType = "ADVANCE_RECOVERY" // Advance withheld from a payment
	CashTransactionExpense         CashTransactionType = "EXPENSE"          // Operational expense
)

// IsValid checks if the transaction type is valid
func (t CashTransactionType) IsValid() bool {
	switch t {
	case CashTransactionDeposit, CashTransactionPayment, CashTransactionAdvanceRecovery, CashTransactionExpense:
		return true
	}
	return false
}

// String returns the string representation of CashTransactionType
func (t CashTransactionType) String() string {
	return string(t)
}

// IsCashIn returns true for types that increase the drawer balance.
// Advance recovery is cash-in: the recovered portion never leaves the drawer.
func (t CashTransactionType) IsCashIn() bool {
	return t == CashTransactionDeposit || t == CashTransactionAdvanceRecovery
}

// CashTransaction is one immutable ledger line in the cash book. Amount is
// signed: positive for cash-in, negative for cash-out. BalanceAfter snapshots
// the running balance at the moment the line was written.
type CashTransaction struct {
	shared.BaseAggregateRoot
	Type         CashTransactionType `gorm:"type:varchar(30);not null;index"`
	Amount       decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	BalanceAfter decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Currency     string              `gorm:"type:varchar(3);not null;default:'UGX'"`
	Description  string              `gorm:"type:varchar(500);not null"`
	ReferenceID  *uuid.UUID          `gorm:"type:uuid;index"` // Payment or advance this line settles
	RecordedBy   uuid.UUID           `gorm:"type:uuid;not null"`
	Confirmed    bool                `gorm:"not null;default:true"`
	OccurredAt   time.Time           `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (CashTransaction) TableName() string {
	return "cash_transactions"
}

// NewCashTransaction creates a ledger line. The magnitude must be positive;
// the sign is derived from the transaction type.
func NewCashTransaction(
	txType CashTransactionType,
	amount valueobject.Money,
	balanceAfter valueobject.Money,
	description string,
	referenceID *uuid.UUID,
	recordedBy uuid.UUID,
) (*CashTransaction, error) {
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", fmt.Sprintf("Invalid cash transaction type: %s", txType))
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Transaction amount must be positive")
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Transaction description is required")
	}
	if recordedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Recording user ID is required")
	}

	signed := amount.Amount()
	if !txType.IsCashIn() {
		signed = signed.Neg()
	}

	return &CashTransaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              txType,
		Amount:            signed,
		BalanceAfter:      balanceAfter.Amount(),
		Currency:          string(amount.Currency()),
		Description:       description,
		ReferenceID:       referenceID,
		RecordedBy:        recordedBy,
		Confirmed:         true,
		OccurredAt:        time.Now(),
	}, nil
}

// GetSignedMoney returns the signed amount as Money
func (t *CashTransaction) GetSignedMoney() valueobject.Money {
	return valueobject.NewMoneyUGX(t.Amount)
}
