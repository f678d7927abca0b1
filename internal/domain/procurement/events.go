package procurement

import (
	"time"

	"github.com/kahawa/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BatchReceivedEvent is raised when a new coffee batch is registered at intake
type BatchReceivedEvent struct {
	shared.BaseDomainEvent
	BatchID      uuid.UUID       `json:"batch_id"`
	BatchNumber  string          `json:"batch_number"`
	SupplierID   uuid.UUID       `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	CoffeeType   CoffeeType      `json:"coffee_type"`
	WeightKg     decimal.Decimal `json:"weight_kg"`
	BagCount     int             `json:"bag_count"`
}

// EventType returns the event type name
func (e *BatchReceivedEvent) EventType() string {
	return "BatchReceived"
}

// NewBatchReceivedEvent creates a new BatchReceivedEvent
func NewBatchReceivedEvent(b *CoffeeBatch) *BatchReceivedEvent {
	return &BatchReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("BatchReceived", "CoffeeBatch", b.ID),
		BatchID:         b.ID,
		BatchNumber:     b.BatchNumber,
		SupplierID:      b.SupplierID,
		SupplierName:    b.SupplierName,
		CoffeeType:      b.CoffeeType,
		WeightKg:        b.WeightKg,
		BagCount:        b.BagCount,
	}
}

// AssessmentSubmittedEvent is raised when a grading result enters the pricing queue
type AssessmentSubmittedEvent struct {
	shared.BaseDomainEvent
	AssessmentID   uuid.UUID       `json:"assessment_id"`
	BatchID        uuid.UUID       `json:"batch_id"`
	BatchNumber    string          `json:"batch_number"`
	SuggestedPrice decimal.Decimal `json:"suggested_price"`
	SubmittedBy    uuid.UUID       `json:"submitted_by"`
}

// EventType returns the event type name
func (e *AssessmentSubmittedEvent) EventType() string {
	return "AssessmentSubmitted"
}

// NewAssessmentSubmittedEvent creates a new AssessmentSubmittedEvent
func NewAssessmentSubmittedEvent(qa *QualityAssessment) *AssessmentSubmittedEvent {
	return &AssessmentSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("AssessmentSubmitted", "QualityAssessment", qa.ID),
		AssessmentID:    qa.ID,
		BatchID:         qa.BatchID,
		BatchNumber:     qa.BatchNumber,
		SuggestedPrice:  qa.SuggestedUnitPrice,
		SubmittedBy:     qa.SubmittedBy,
	}
}

// AssessmentPriceApprovedEvent is raised when a final price is approved.
// The payment workflow treats this as the batch becoming payable.
type AssessmentPriceApprovedEvent struct {
	shared.BaseDomainEvent
	AssessmentID   uuid.UUID       `json:"assessment_id"`
	BatchID        uuid.UUID       `json:"batch_id"`
	BatchNumber    string          `json:"batch_number"`
	FinalUnitPrice decimal.Decimal `json:"final_unit_price"`
	ApprovedBy     uuid.UUID       `json:"approved_by"`
	ApprovedAt     time.Time       `json:"approved_at"`
}

// EventType returns the event type name
func (e *AssessmentPriceApprovedEvent) EventType() string {
	return "AssessmentPriceApproved"
}

// NewAssessmentPriceApprovedEvent creates a new AssessmentPriceApprovedEvent
func NewAssessmentPriceApprovedEvent(qa *QualityAssessment) *AssessmentPriceApprovedEvent {
	e := &AssessmentPriceApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("AssessmentPriceApproved", "QualityAssessment", qa.ID),
		AssessmentID:    qa.ID,
		BatchID:         qa.BatchID,
		BatchNumber:     qa.BatchNumber,
	}
	if qa.FinalUnitPrice != nil {
		e.FinalUnitPrice = *qa.FinalUnitPrice
	}
	if qa.ApprovedBy != nil {
		e.ApprovedBy = *qa.ApprovedBy
	}
	if qa.DecidedAt != nil {
		e.ApprovedAt = *qa.DecidedAt
	}
	return e
}

// AssessmentPriceRejectedEvent is raised when a suggested price is rejected
type AssessmentPriceRejectedEvent struct {
	shared.BaseDomainEvent
	AssessmentID uuid.UUID `json:"assessment_id"`
	BatchID      uuid.UUID `json:"batch_id"`
	BatchNumber  string    `json:"batch_number"`
	RejectedBy   uuid.UUID `json:"rejected_by"`
	Reason       string    `json:"reason"`
}

// EventType returns the event type name
func (e *AssessmentPriceRejectedEvent) EventType() string {
	return "AssessmentPriceRejected"
}

// NewAssessmentPriceRejectedEvent creates a new AssessmentPriceRejectedEvent
func NewAssessmentPriceRejectedEvent(qa *QualityAssessment) *AssessmentPriceRejectedEvent {
	e := &AssessmentPriceRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("AssessmentPriceRejected", "QualityAssessment", qa.ID),
		AssessmentID:    qa.ID,
		BatchID:         qa.BatchID,
		BatchNumber:     qa.BatchNumber,
		Reason:          qa.RejectionReason,
	}
	if qa.ApprovedBy != nil {
		e.RejectedBy = *qa.ApprovedBy
	}
	return e
}
