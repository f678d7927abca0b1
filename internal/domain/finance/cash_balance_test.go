package finance

import (
	"testing"

	"github.com/kahawa/backend/internal/domain/shared"
	"github.com/kahawa/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCashBalance(t *testing.T) {
	t.Run("starts at zero", func(t *testing.T) {
		b := NewCashBalance()
		assert.True(t, b.Balance.IsZero())
		assert.Equal(t, "UGX", b.Currency)
	})

	t.Run("credit and debit move the balance", func(t *testing.T) {
		b := NewCashBalance()

		require.NoError(t, b.Credit(valueobject.NewMoneyUGXFromInt(1000000)))
		assert.True(t, b.Balance.Equal(decimal.NewFromInt(1000000)))

		require.NoError(t, b.Debit(valueobject.NewMoneyUGXFromInt(300000)))
		assert.True(t, b.Balance.Equal(decimal.NewFromInt(700000)))
	})

	t.Run("debit beyond balance is refused and leaves balance untouched", func(t *testing.T) {
		b := NewCashBalance()
		require.NoError(t, b.Credit(valueobject.NewMoneyUGXFromInt(50000)))

		err := b.Debit(valueobject.NewMoneyUGXFromInt(50001))
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInsufficientFunds)
		assert.True(t, b.Balance.Equal(decimal.NewFromInt(50000)))
	})

	t.Run("debit of exact balance empties the drawer", func(t *testing.T) {
		b := NewCashBalance()
		require.NoError(t, b.Credit(valueobject.NewMoneyUGXFromInt(50000)))
		require.NoError(t, b.Debit(valueobject.NewMoneyUGXFromInt(50000)))
		assert.True(t, b.Balance.IsZero())
	})

	t.Run("non-positive amounts are rejected", func(t *testing.T) {
		b := NewCashBalance()
		assert.Error(t, b.Credit(valueobject.ZeroUGX()))
		assert.Error(t, b.Debit(valueobject.ZeroUGX()))
	})

	t.Run("mutations bump the version for optimistic locking", func(t *testing.T) {
		b := NewCashBalance()
		v := b.GetVersion()
		require.NoError(t, b.Credit(valueobject.NewMoneyUGXFromInt(100)))
		assert.Equal(t, v+1, b.GetVersion())
	})
}

func TestCashTransaction(t *testing.T) {
	recordedBy := uuid.New()

	t.Run("payment amounts are stored negative", func(t *testing.T) {
		tx, err := NewCashTransaction(CashTransactionPayment,
			valueobject.NewMoneyUGXFromInt(300000),
			valueobject.NewMoneyUGXFromInt(700000),
			"Payment for batch CF-001", nil, recordedBy)
		require.NoError(t, err)

		assert.True(t, tx.Amount.Equal(decimal.NewFromInt(-300000)))
		assert.True(t, tx.BalanceAfter.Equal(decimal.NewFromInt(700000)))
		assert.True(t, tx.Confirmed)
	})

	t.Run("deposit and advance recovery are stored positive", func(t *testing.T) {
		dep, err := NewCashTransaction(CashTransactionDeposit,
			valueobject.NewMoneyUGXFromInt(1000000),
			valueobject.NewMoneyUGXFromInt(1000000),
			"Morning float", nil, recordedBy)
		require.NoError(t, err)
		assert.True(t, dep.Amount.IsPositive())

		rec, err := NewCashTransaction(CashTransactionAdvanceRecovery,
			valueobject.NewMoneyUGXFromInt(200000),
			valueobject.NewMoneyUGXFromInt(1200000),
			"Advance recovered from batch CF-001", nil, recordedBy)
		require.NoError(t, err)
		assert.True(t, rec.Amount.IsPositive())
	})

	t.Run("validates type, amount and description", func(t *testing.T) {
		amount := valueobject.NewMoneyUGXFromInt(1000)
		after := valueobject.NewMoneyUGXFromInt(1000)

		_, err := NewCashTransaction("TRANSFER", amount, after, "desc", nil, recordedBy)
		assert.Error(t, err)

		_, err = NewCashTransaction(CashTransactionDeposit, valueobject.ZeroUGX(), after, "desc", nil, recordedBy)
		assert.Error(t, err)

		_, err = NewCashTransaction(CashTransactionDeposit, amount, after, "", nil, recordedBy)
		assert.Error(t, err)
	})
}
