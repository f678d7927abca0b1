package finance

import (
	"time"

	"github.com/kahawa/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentCompletedEvent is raised when funds are actually disbursed. Handlers
// use it for supplier notification and downstream bookkeeping.
type PaymentCompletedEvent struct {
	shared.BaseDomainEvent
	PaymentID        uuid.UUID       `json:"payment_id"`
	PaymentNumber    string          `json:"payment_number"`
	BatchID          uuid.UUID       `json:"batch_id"`
	BatchNumber      string          `json:"batch_number"`
	SupplierID       uuid.UUID       `json:"supplier_id"`
	SupplierName     string          `json:"supplier_name"`
	GrossAmount      decimal.Decimal `json:"gross_amount"`
	AdvanceRecovered decimal.Decimal `json:"advance_recovered"`
	NetAmount        decimal.Decimal `json:"net_amount"`
	Method           PaymentMethod   `json:"method"`
	PaidAt           time.Time       `json:"paid_at"`
}

// EventType returns the event type name
func (e *PaymentCompletedEvent) EventType() string {
	return "PaymentCompleted"
}

// NewPaymentCompletedEvent creates a new PaymentCompletedEvent
func NewPaymentCompletedEvent(p *PaymentRecord) *PaymentCompletedEvent {
	e := &PaymentCompletedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent("PaymentCompleted", "PaymentRecord", p.ID),
		PaymentID:        p.ID,
		PaymentNumber:    p.PaymentNumber,
		BatchID:          p.BatchID,
		BatchNumber:      p.BatchNumber,
		SupplierID:       p.SupplierID,
		SupplierName:     p.SupplierName,
		GrossAmount:      p.GrossAmount,
		AdvanceRecovered: p.AdvanceRecovered,
		NetAmount:        p.NetAmount,
		Method:           p.Method,
	}
	if p.PaidAt != nil {
		e.PaidAt = *p.PaidAt
	}
	return e
}

// AdvanceIssuedEvent is raised when a supplier advance is disbursed
type AdvanceIssuedEvent struct {
	shared.BaseDomainEvent
	AdvanceID  uuid.UUID       `json:"advance_id"`
	SupplierID uuid.UUID       `json:"supplier_id"`
	Principal  decimal.Decimal `json:"principal"`
	IssuedBy   uuid.UUID       `json:"issued_by"`
}

// EventType returns the event type name
func (e *AdvanceIssuedEvent) EventType() string {
	return "AdvanceIssued"
}

// NewAdvanceIssuedEvent creates a new AdvanceIssuedEvent
func NewAdvanceIssuedEvent(a *SupplierAdvance) *AdvanceIssuedEvent {
	return &AdvanceIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("AdvanceIssued", "SupplierAdvance", a.ID),
		AdvanceID:       a.ID,
		SupplierID:      a.SupplierID,
		Principal:       a.Principal,
		IssuedBy:        a.IssuedBy,
	}
}
