package finance

import (
	"testing"
	"time"

	"github.com/kahawa/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdvanceIssuedAt(t *testing.T, principal int64, issuedAt time.Time) *SupplierAdvance {
	t.Helper()
	a, err := NewSupplierAdvance(uuid.New(), valueobject.NewMoneyUGXFromInt(principal), "seed money", uuid.New())
	require.NoError(t, err)
	a.IssuedAt = issuedAt
	return a
}

func TestAdvanceRecoveryService_Recover(t *testing.T) {
	svc := NewAdvanceRecoveryService()
	now := time.Now()

	t.Run("oldest advance is exhausted before the next is touched", func(t *testing.T) {
		older := newAdvanceIssuedAt(t, 30000, now.Add(-48*time.Hour))
		newer := newAdvanceIssuedAt(t, 50000, now.Add(-24*time.Hour))

		result, err := svc.Recover(valueobject.NewMoneyUGXFromInt(40000), valueobject.NewMoneyUGXFromInt(40000), []*SupplierAdvance{newer, older})
		require.NoError(t, err)

		assert.True(t, result.TotalRecovered.Amount().Equal(decimal.NewFromInt(40000)))
		assert.True(t, result.NetPayable.IsZero())

		require.Len(t, result.Applications, 2)
		assert.Equal(t, older.ID, result.Applications[0].AdvanceID)
		assert.True(t, result.Applications[0].Applied.Equal(decimal.NewFromInt(30000)))
		assert.True(t, result.Applications[0].Closed)

		assert.Equal(t, newer.ID, result.Applications[1].AdvanceID)
		assert.True(t, result.Applications[1].Applied.Equal(decimal.NewFromInt(10000)))
		assert.False(t, result.Applications[1].Closed)
		assert.True(t, newer.Outstanding.Equal(decimal.NewFromInt(20000)))

		assert.True(t, older.IsClosed())
		assert.False(t, newer.IsClosed())
	})

	t.Run("gross exceeding all advances leaves the remainder payable", func(t *testing.T) {
		a1 := newAdvanceIssuedAt(t, 200000, now.Add(-time.Hour))

		result, err := svc.Recover(valueobject.NewMoneyUGXFromInt(500000), valueobject.NewMoneyUGXFromInt(500000), []*SupplierAdvance{a1})
		require.NoError(t, err)

		assert.True(t, result.TotalRecovered.Amount().Equal(decimal.NewFromInt(200000)))
		assert.True(t, result.NetPayable.Amount().Equal(decimal.NewFromInt(300000)))
		assert.True(t, a1.IsClosed())
	})

	t.Run("no open advances means full gross payable", func(t *testing.T) {
		result, err := svc.Recover(valueobject.NewMoneyUGXFromInt(100000), valueobject.NewMoneyUGXFromInt(100000), nil)
		require.NoError(t, err)

		assert.True(t, result.TotalRecovered.IsZero())
		assert.True(t, result.NetPayable.Amount().Equal(decimal.NewFromInt(100000)))
		assert.Empty(t, result.Applications)
	})

	t.Run("closed advances are skipped", func(t *testing.T) {
		closed := newAdvanceIssuedAt(t, 10000, now.Add(-72*time.Hour))
		require.NoError(t, closed.Recover(valueobject.NewMoneyUGXFromInt(10000)))
		open := newAdvanceIssuedAt(t, 25000, now.Add(-24*time.Hour))

		result, err := svc.Recover(valueobject.NewMoneyUGXFromInt(20000), valueobject.NewMoneyUGXFromInt(20000), []*SupplierAdvance{closed, open})
		require.NoError(t, err)

		require.Len(t, result.Applications, 1)
		assert.Equal(t, open.ID, result.Applications[0].AdvanceID)
		assert.True(t, result.TotalRecovered.Amount().Equal(decimal.NewFromInt(20000)))
		assert.True(t, result.NetPayable.IsZero())
		assert.True(t, open.Outstanding.Equal(decimal.NewFromInt(5000)))
	})

	t.Run("recovered plus payable always equals gross", func(t *testing.T) {
		advances := []*SupplierAdvance{
			newAdvanceIssuedAt(t, 12345, now.Add(-3*time.Hour)),
			newAdvanceIssuedAt(t, 67890, now.Add(-2*time.Hour)),
			newAdvanceIssuedAt(t, 11111, now.Add(-1*time.Hour)),
		}
		gross := valueobject.NewMoneyUGXFromInt(55000)

		result, err := svc.Recover(gross, gross, advances)
		require.NoError(t, err)

		sum := result.TotalRecovered.Amount().Add(result.NetPayable.Amount())
		assert.True(t, sum.Equal(gross.Amount()))
	})

	t.Run("requested amount caps the withheld total", func(t *testing.T) {
		adv := newAdvanceIssuedAt(t, 80000, now.Add(-time.Hour))

		result, err := svc.Recover(valueobject.NewMoneyUGXFromInt(100000), valueobject.NewMoneyUGXFromInt(30000), []*SupplierAdvance{adv})
		require.NoError(t, err)

		assert.True(t, result.TotalRecovered.Amount().Equal(decimal.NewFromInt(30000)))
		assert.True(t, result.NetPayable.Amount().Equal(decimal.NewFromInt(70000)))
		assert.True(t, adv.Outstanding.Equal(decimal.NewFromInt(50000)))
		assert.False(t, adv.IsClosed())
	})

	t.Run("requested beyond outstanding recovers only what is outstanding", func(t *testing.T) {
		adv := newAdvanceIssuedAt(t, 20000, now.Add(-time.Hour))

		result, err := svc.Recover(valueobject.NewMoneyUGXFromInt(100000), valueobject.NewMoneyUGXFromInt(90000), []*SupplierAdvance{adv})
		require.NoError(t, err)

		assert.True(t, result.TotalRecovered.Amount().Equal(decimal.NewFromInt(20000)))
		assert.True(t, result.NetPayable.Amount().Equal(decimal.NewFromInt(80000)))
		assert.True(t, adv.IsClosed())
	})

	t.Run("zero requested withholds nothing", func(t *testing.T) {
		adv := newAdvanceIssuedAt(t, 20000, now.Add(-time.Hour))

		result, err := svc.Recover(valueobject.NewMoneyUGXFromInt(100000), valueobject.ZeroUGX(), []*SupplierAdvance{adv})
		require.NoError(t, err)

		assert.True(t, result.TotalRecovered.IsZero())
		assert.True(t, result.NetPayable.Amount().Equal(decimal.NewFromInt(100000)))
		assert.Empty(t, result.Applications)
		assert.True(t, adv.Outstanding.Equal(decimal.NewFromInt(20000)))
	})

	t.Run("requested beyond gross is capped at gross", func(t *testing.T) {
		adv := newAdvanceIssuedAt(t, 500000, now.Add(-time.Hour))

		result, err := svc.Recover(valueobject.NewMoneyUGXFromInt(60000), valueobject.NewMoneyUGXFromInt(999999), []*SupplierAdvance{adv})
		require.NoError(t, err)

		assert.True(t, result.TotalRecovered.Amount().Equal(decimal.NewFromInt(60000)))
		assert.True(t, result.NetPayable.IsZero())
		assert.True(t, adv.Outstanding.Equal(decimal.NewFromInt(440000)))
	})

	t.Run("input slice order is not mutated", func(t *testing.T) {
		newer := newAdvanceIssuedAt(t, 50000, now.Add(-24*time.Hour))
		older := newAdvanceIssuedAt(t, 30000, now.Add(-48*time.Hour))
		input := []*SupplierAdvance{newer, older}

		_, err := svc.Recover(valueobject.NewMoneyUGXFromInt(10000), valueobject.NewMoneyUGXFromInt(10000), input)
		require.NoError(t, err)

		assert.Equal(t, newer.ID, input[0].ID)
		assert.Equal(t, older.ID, input[1].ID)
	})
}
