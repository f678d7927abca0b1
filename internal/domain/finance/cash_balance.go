package finance

import (
	"github.com/kahawa/backend/internal/domain/shared"
	"github.com/kahawa/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CashBalance is the materialized running balance of the cash drawer. The
// company keeps a single drawer, so exactly one row exists; it is updated
// under optimistic locking so concurrent payments cannot both spend the
// same shillings.
type CashBalance struct {
	shared.BaseAggregateRoot
	Balance  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Currency string          `gorm:"type:varchar(3);not null;default:'UGX'"`
}

// TableName returns the table name for GORM
func (CashBalance) TableName() string {
	return "cash_balances"
}

// NewCashBalance creates the drawer projection with a zero balance
func NewCashBalance() *CashBalance {
	return &CashBalance{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Balance:           decimal.Zero,
		Currency:          string(valueobject.UGX),
	}
}

// GetBalanceMoney returns the current balance as Money
func (b *CashBalance) GetBalanceMoney() valueobject.Money {
	return valueobject.NewMoneyUGX(b.Balance)
}

// CanCover returns true if the drawer holds at least the requested amount
func (b *CashBalance) CanCover(amount valueobject.Money) bool {
	return b.Balance.GreaterThanOrEqual(amount.Amount())
}

// Credit increases the balance by the given amount
func (b *CashBalance) Credit(amount valueobject.Money) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Credit amount must be positive")
	}
	b.Balance = b.Balance.Add(amount.Amount())
	b.IncrementVersion()
	return nil
}

// Debit decreases the balance, refusing to let the drawer go negative
func (b *CashBalance) Debit(amount valueobject.Money) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Debit amount must be positive")
	}
	if !b.CanCover(amount) {
		return shared.ErrInsufficientFunds
	}
	b.Balance = b.Balance.Sub(amount.Amount())
	b.IncrementVersion()
	return nil
}
