package finance

import (
	"fmt"
	"time"

	"github.com/kahawa/backend/internal/domain/shared"
	"github.com/kahawa/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a supplier payment is settled
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"          // Settled immediately from the cash drawer
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER" // Requires second-authorizer approval
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// PaymentStatus represents the status of a payment record
type PaymentStatus string

const (
	PaymentStatusProcessing PaymentStatus = "PROCESSING" // Bank transfer awaiting approval
	PaymentStatusPaid       PaymentStatus = "PAID"       // Funds disbursed
)

// paymentTransitions is the closed transition table for payment statuses
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusProcessing: {PaymentStatusPaid},
	PaymentStatusPaid:       {},
}

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	_, ok := paymentTransitions[s]
	return ok
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further transition is allowed
func (s PaymentStatus) IsTerminal() bool {
	return len(paymentTransitions[s]) == 0
}

// CanTransitionTo returns true if the transition is listed in the table
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// PaymentRecord is the authoritative record of one supplier payment for one
// coffee batch. The unique index on BatchID enforces at most one payment per
// batch at the persistence layer; callers must also check before creating.
type PaymentRecord struct {
	shared.BaseAggregateRoot
	PaymentNumber    string          `gorm:"type:varchar(30);uniqueIndex;not null"`
	BatchID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	BatchNumber      string          `gorm:"type:varchar(30);not null"`
	SupplierID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	SupplierName     string          `gorm:"type:varchar(255);not null"`
	GrossAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Weight x approved unit price
	AdvanceRecovered decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Withheld against open advances
	NetAmount        decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Actually disbursed to the supplier
	Currency         string          `gorm:"type:varchar(3);not null;default:'UGX'"`
	Method           PaymentMethod   `gorm:"type:varchar(20);not null"`
	Status           PaymentStatus   `gorm:"type:varchar(20);not null;index"`
	ProcessedBy      uuid.UUID       `gorm:"type:uuid;not null"`
	Reference        string          `gorm:"type:varchar(100)"` // Bank reference for transfers
	Notes            string          `gorm:"type:text"`
	PaidAt           *time.Time
}

// TableName returns the table name for GORM
func (PaymentRecord) TableName() string {
	return "payment_records"
}

// NewPaymentRecord creates a payment record for an approved batch.
// Cash payments start PAID; bank transfers start PROCESSING until a second
// authorizer confirms the transfer.
func NewPaymentRecord(
	paymentNumber string,
	batchID uuid.UUID,
	batchNumber string,
	supplierID uuid.UUID,
	supplierName string,
	gross, advanceRecovered, net valueobject.Money,
	method PaymentMethod,
	processedBy uuid.UUID,
) (*PaymentRecord, error) {
	if paymentNumber == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT_NUMBER", "Payment number cannot be empty")
	}
	if batchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BATCH", "Batch ID cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", fmt.Sprintf("Invalid payment method: %s", method))
	}
	if processedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Processing user ID is required")
	}
	if !gross.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Gross amount must be positive")
	}
	if advanceRecovered.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Recovered amount cannot be negative")
	}
	if net.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Net amount cannot be negative")
	}
	expectedNet, err := gross.Subtract(advanceRecovered)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_AMOUNT", err.Error())
	}
	if !net.Equals(expectedNet) {
		return nil, shared.NewDomainError("INVALID_AMOUNT",
			"Net amount must equal gross amount minus recovered advances")
	}

	p := &PaymentRecord{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PaymentNumber:     paymentNumber,
		BatchID:           batchID,
		BatchNumber:       batchNumber,
		SupplierID:        supplierID,
		SupplierName:      supplierName,
		GrossAmount:       gross.Amount(),
		AdvanceRecovered:  advanceRecovered.Amount(),
		NetAmount:         net.Amount(),
		Currency:          string(gross.Currency()),
		Method:            method,
		ProcessedBy:       processedBy,
	}

	switch method {
	case PaymentMethodCash:
		now := time.Now()
		p.Status = PaymentStatusPaid
		p.PaidAt = &now
		p.AddDomainEvent(NewPaymentCompletedEvent(p))
	case PaymentMethodBankTransfer:
		p.Status = PaymentStatusProcessing
	}

	return p, nil
}

// Revise replaces the amounts and method of a non-terminal record with a new
// settlement attempt. The record keeps its identity and payment number, so a
// retried payment stays one row per batch. A cash revision settles
// immediately, same as a freshly created cash record.
func (p *PaymentRecord) Revise(gross, advanceRecovered, net valueobject.Money, method PaymentMethod, processedBy uuid.UUID) error {
	if p.Status.IsTerminal() {
		return shared.ErrAlreadyPaid
	}
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_METHOD", fmt.Sprintf("Invalid payment method: %s", method))
	}
	if !gross.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Gross amount must be positive")
	}
	expectedNet, err := gross.Subtract(advanceRecovered)
	if err != nil {
		return shared.NewDomainError("INVALID_AMOUNT", err.Error())
	}
	if !net.Equals(expectedNet) {
		return shared.NewDomainError("INVALID_AMOUNT",
			"Net amount must equal gross amount minus recovered advances")
	}

	p.GrossAmount = gross.Amount()
	p.AdvanceRecovered = advanceRecovered.Amount()
	p.NetAmount = net.Amount()
	p.Method = method
	p.ProcessedBy = processedBy
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	if method == PaymentMethodCash {
		now := time.Now()
		p.Status = PaymentStatusPaid
		p.PaidAt = &now
		p.AddDomainEvent(NewPaymentCompletedEvent(p))
	}

	return nil
}

// ConfirmTransfer marks a processing bank transfer as paid, recording the
// bank reference supplied by the approving authorizer.
func (p *PaymentRecord) ConfirmTransfer(reference string) error {
	if !p.Status.CanTransitionTo(PaymentStatusPaid) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot confirm payment in %s status", p.Status))
	}
	now := time.Now()
	p.Reference = reference
	p.Status = PaymentStatusPaid
	p.PaidAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPaymentCompletedEvent(p))

	return nil
}

// IsPaid returns true if the funds have been disbursed
func (p *PaymentRecord) IsPaid() bool {
	return p.Status == PaymentStatusPaid
}

// GetNetMoney returns the net amount as Money
func (p *PaymentRecord) GetNetMoney() valueobject.Money {
	return valueobject.NewMoneyUGX(p.NetAmount)
}

// GetGrossMoney returns the gross amount as Money
func (p *PaymentRecord) GetGrossMoney() valueobject.Money {
	return valueobject.NewMoneyUGX(p.GrossAmount)
}

// GetRecoveredMoney returns the recovered advance amount as Money
func (p *PaymentRecord) GetRecoveredMoney() valueobject.Money {
	return valueobject.NewMoneyUGX(p.AdvanceRecovered)
}
