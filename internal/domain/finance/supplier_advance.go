package finance

import (
	"fmt"
	"time"

	"github.com/kahawa/backend/internal/domain/shared"
	"github.com/kahawa/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SupplierAdvance is a pre-payment issued to a supplier against future coffee
// deliveries. Outstanding tracks what remains to be withheld from payments;
// the advance is closed when it reaches zero.
type SupplierAdvance struct {
	shared.BaseAggregateRoot
	SupplierID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Principal   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Outstanding decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Currency    string          `gorm:"type:varchar(3);not null;default:'UGX'"`
	Purpose     string          `gorm:"type:varchar(500)"`
	IssuedBy    uuid.UUID       `gorm:"type:uuid;not null"`
	IssuedAt    time.Time       `gorm:"not null;index"`
	ClosedAt    *time.Time
}

// TableName returns the table name for GORM
func (SupplierAdvance) TableName() string {
	return "supplier_advances"
}

// NewSupplierAdvance issues an advance with the full principal outstanding
func NewSupplierAdvance(supplierID uuid.UUID, principal valueobject.Money, purpose string, issuedBy uuid.UUID) (*SupplierAdvance, error) {
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if !principal.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Advance principal must be positive")
	}
	if issuedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Issuing user ID is required")
	}

	a := &SupplierAdvance{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SupplierID:        supplierID,
		Principal:         principal.Amount(),
		Outstanding:       principal.Amount(),
		Currency:          string(principal.Currency()),
		Purpose:           purpose,
		IssuedBy:          issuedBy,
		IssuedAt:          time.Now(),
	}

	a.AddDomainEvent(NewAdvanceIssuedEvent(a))

	return a, nil
}

// IsClosed returns true once the full principal has been recovered
func (a *SupplierAdvance) IsClosed() bool {
	return a.Outstanding.IsZero()
}

// GetOutstandingMoney returns the outstanding amount as Money
func (a *SupplierAdvance) GetOutstandingMoney() valueobject.Money {
	return valueobject.NewMoneyUGX(a.Outstanding)
}

// Recover reduces the outstanding amount by the recovered sum. The amount
// must not exceed what is outstanding; the resolver splits recoveries across
// advances before calling this.
func (a *SupplierAdvance) Recover(amount valueobject.Money) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Recovery amount must be positive")
	}
	if amount.Amount().GreaterThan(a.Outstanding) {
		return shared.NewDomainError("INVALID_AMOUNT",
			fmt.Sprintf("Recovery of %s exceeds outstanding %s", amount.Amount(), a.Outstanding))
	}
	a.Outstanding = a.Outstanding.Sub(amount.Amount())
	now := time.Now()
	if a.Outstanding.IsZero() {
		a.ClosedAt = &now
	}
	a.UpdatedAt = now
	a.IncrementVersion()
	return nil
}
