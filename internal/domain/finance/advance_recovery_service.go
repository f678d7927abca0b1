package finance

import (
	"sort"

	"github.com/kahawa/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdvanceApplication records how much of a payment was withheld against one
// advance, and whether that closed it.
type AdvanceApplication struct {
	AdvanceID uuid.UUID
	Applied   decimal.Decimal
	Remaining decimal.Decimal
	Closed    bool
}

// RecoveryResult is the outcome of resolving a gross payment against a
// supplier's open advances. TotalRecovered + NetPayable always equals the
// gross amount.
type RecoveryResult struct {
	TotalRecovered valueobject.Money
	NetPayable     valueobject.Money
	Applications   []AdvanceApplication
}

// AdvanceRecoveryService resolves how much of a gross payment is withheld
// against the supplier's open advances. It is a pure domain service: it
// mutates the advance aggregates passed in but performs no persistence.
type AdvanceRecoveryService struct{}

// NewAdvanceRecoveryService creates a new advance recovery service
func NewAdvanceRecoveryService() *AdvanceRecoveryService {
	return &AdvanceRecoveryService{}
}

// Recover withholds up to the requested amount against the open advances,
// oldest advance first. The withheld total never exceeds the gross (net pay
// cannot go negative) nor the outstanding sum; a request beyond either is
// capped, not an error. An advance is only partially recovered when the
// budget runs out; all advances before it in issue order are closed. Closed
// advances in the input are skipped.
func (s *AdvanceRecoveryService) Recover(gross, requested valueobject.Money, advances []*SupplierAdvance) (*RecoveryResult, error) {
	result := &RecoveryResult{
		TotalRecovered: valueobject.Zero(gross.Currency()),
		NetPayable:     gross,
		Applications:   make([]AdvanceApplication, 0, len(advances)),
	}

	budget := decimal.Min(requested.Amount(), gross.Amount())
	if !budget.IsPositive() || len(advances) == 0 {
		return result, nil
	}

	ordered := make([]*SupplierAdvance, len(advances))
	copy(ordered, advances)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].IssuedAt.Before(ordered[j].IssuedAt)
	})

	recovered := decimal.Zero

	for _, adv := range ordered {
		if budget.IsZero() {
			break
		}
		if adv.IsClosed() {
			continue
		}

		applied := decimal.Min(budget, adv.Outstanding)
		if err := adv.Recover(valueobject.NewMoneyUGX(applied)); err != nil {
			return nil, err
		}

		budget = budget.Sub(applied)
		recovered = recovered.Add(applied)

		result.Applications = append(result.Applications, AdvanceApplication{
			AdvanceID: adv.ID,
			Applied:   applied,
			Remaining: adv.Outstanding,
			Closed:    adv.IsClosed(),
		})
	}

	result.TotalRecovered = valueobject.NewMoneyUGX(recovered)
	result.NetPayable = valueobject.NewMoneyUGX(gross.Amount().Sub(recovered))
	return result, nil
}
