package procurement

import (
	"fmt"
	"time"

	"github.com/kahawa/backend/internal/domain/shared"
	"github.com/kahawa/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssessmentStatus represents the status of a quality assessment
type AssessmentStatus string

const (
	AssessmentStatusPendingPricing     AssessmentStatus = "PENDING_ADMIN_PRICING" // Graded, awaiting price decision
	AssessmentStatusApproved           AssessmentStatus = "APPROVED"              // Final price set, batch payable
	AssessmentStatusRejected           AssessmentStatus = "REJECTED"              // Price rejected, terminal
	AssessmentStatusPaid               AssessmentStatus = "PAID"                  // Cash payment completed, immutable
	AssessmentStatusSubmittedToFinance AssessmentStatus = "SUBMITTED_TO_FINANCE"  // Bank transfer pending second authorizer
)

// assessmentTransitions is the closed transition table for assessment statuses
var assessmentTransitions = map[AssessmentStatus][]AssessmentStatus{
	AssessmentStatusPendingPricing:     {AssessmentStatusApproved, AssessmentStatusRejected},
	AssessmentStatusApproved:           {AssessmentStatusPaid, AssessmentStatusSubmittedToFinance},
	AssessmentStatusSubmittedToFinance: {AssessmentStatusPaid},
	AssessmentStatusRejected:           {},
	AssessmentStatusPaid:               {},
}

// IsValid checks if the status is a valid AssessmentStatus
func (s AssessmentStatus) IsValid() bool {
	_, ok := assessmentTransitions[s]
	return ok
}

// String returns the string representation of AssessmentStatus
func (s AssessmentStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further transition is allowed
func (s AssessmentStatus) IsTerminal() bool {
	return len(assessmentTransitions[s]) == 0
}

// CanTransitionTo returns true if the transition is listed in the table
func (s AssessmentStatus) CanTransitionTo(target AssessmentStatus) bool {
	for _, allowed := range assessmentTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// PriceApprovalDecision captures the outcome of a pricing decision
type PriceApprovalDecision struct {
	AssessmentID    uuid.UUID       `json:"assessment_id"`
	FinalUnitPrice  decimal.Decimal `json:"final_unit_price"`
	DecidedBy       uuid.UUID       `json:"decided_by"`
	Approved        bool            `json:"approved"`
	Comments        string          `json:"comments,omitempty"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	DecidedAt       time.Time       `json:"decided_at"`
}

// QualityAssessment holds the graded attributes and pricing for one coffee batch.
// There is exactly one assessment per batch per payable cycle; it becomes
// immutable once the batch is paid.
type QualityAssessment struct {
	shared.BaseAggregateRoot
	BatchID            uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex"`
	BatchNumber        string           `gorm:"type:varchar(30);not null"`
	MoisturePct        decimal.Decimal  `gorm:"type:decimal(5,2);not null"`
	DefectPct          decimal.Decimal  `gorm:"type:decimal(5,2);not null"`
	Outturn            decimal.Decimal  `gorm:"type:decimal(5,2);not null"` // Clean-coffee yield percentage
	SuggestedUnitPrice decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	FinalUnitPrice     *decimal.Decimal `gorm:"type:decimal(18,4)"`
	SubmittedBy        uuid.UUID        `gorm:"type:uuid;not null"`
	ApprovedBy         *uuid.UUID       `gorm:"type:uuid"`
	Status             AssessmentStatus `gorm:"type:varchar(30);not null;default:'PENDING_ADMIN_PRICING';index"`
	Comments           string           `gorm:"type:varchar(500)"`
	RejectionReason    string           `gorm:"type:varchar(500)"`
	DecidedAt          *time.Time
}

// TableName returns the table name for GORM
func (QualityAssessment) TableName() string {
	return "quality_assessments"
}

// NewQualityAssessment creates a new assessment for a received batch
func NewQualityAssessment(
	batchID uuid.UUID,
	batchNumber string,
	moisturePct, defectPct, outturn decimal.Decimal,
	suggestedPrice valueobject.Money,
	submittedBy uuid.UUID,
) (*QualityAssessment, error) {
	if batchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BATCH", "Batch ID cannot be empty")
	}
	if batchNumber == "" {
		return nil, shared.NewDomainError("INVALID_BATCH_NUMBER", "Batch number cannot be empty")
	}
	if moisturePct.IsNegative() || moisturePct.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_MOISTURE", "Moisture percentage must be between 0 and 100")
	}
	if defectPct.IsNegative() || defectPct.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_DEFECTS", "Defect percentage must be between 0 and 100")
	}
	if outturn.IsNegative() || outturn.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_OUTTURN", "Outturn must be between 0 and 100")
	}
	if suggestedPrice.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_PRICE", "Suggested price must be positive")
	}
	if submittedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Submitting user ID is required")
	}

	qa := &QualityAssessment{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		BatchID:            batchID,
		BatchNumber:        batchNumber,
		MoisturePct:        moisturePct,
		DefectPct:          defectPct,
		Outturn:            outturn,
		SuggestedUnitPrice: suggestedPrice.Amount(),
		SubmittedBy:        submittedBy,
		Status:             AssessmentStatusPendingPricing,
	}

	qa.AddDomainEvent(NewAssessmentSubmittedEvent(qa))

	return qa, nil
}

// ApprovePrice finalizes the unit price for this assessment.
// The approver may not be the party who submitted the price (self-approval block).
func (qa *QualityAssessment) ApprovePrice(finalPrice valueobject.Money, approvedBy uuid.UUID, comments string) error {
	if !qa.Status.CanTransitionTo(AssessmentStatusApproved) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot approve price for assessment in %s status", qa.Status))
	}
	if finalPrice.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_PRICE", "Final price must be positive")
	}
	if approvedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Approving user ID is required")
	}
	if approvedBy == qa.SubmittedBy {
		return shared.NewDomainError("SELF_APPROVAL",
			"Price cannot be approved by the party who submitted it")
	}

	now := time.Now()
	amount := finalPrice.Amount()
	qa.FinalUnitPrice = &amount
	qa.ApprovedBy = &approvedBy
	qa.Comments = comments
	qa.Status = AssessmentStatusApproved
	qa.DecidedAt = &now
	qa.UpdatedAt = now
	qa.IncrementVersion()

	qa.AddDomainEvent(NewAssessmentPriceApprovedEvent(qa))

	return nil
}

// RejectPrice rejects the suggested price with a mandatory reason
func (qa *QualityAssessment) RejectPrice(rejectedBy uuid.UUID, reason string) error {
	if !qa.Status.CanTransitionTo(AssessmentStatusRejected) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot reject assessment in %s status", qa.Status))
	}
	if rejectedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Rejecting user ID is required")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}

	now := time.Now()
	qa.ApprovedBy = &rejectedBy
	qa.RejectionReason = reason
	qa.Status = AssessmentStatusRejected
	qa.DecidedAt = &now
	qa.UpdatedAt = now
	qa.IncrementVersion()

	qa.AddDomainEvent(NewAssessmentPriceRejectedEvent(qa))

	return nil
}

// MarkPaid marks the assessment as paid (cash payment completed)
func (qa *QualityAssessment) MarkPaid() error {
	if !qa.Status.CanTransitionTo(AssessmentStatusPaid) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot mark assessment paid in %s status", qa.Status))
	}
	qa.Status = AssessmentStatusPaid
	qa.UpdatedAt = time.Now()
	qa.IncrementVersion()
	return nil
}

// SubmitToFinance marks the assessment as awaiting bank transfer confirmation
func (qa *QualityAssessment) SubmitToFinance() error {
	if !qa.Status.CanTransitionTo(AssessmentStatusSubmittedToFinance) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot submit assessment to finance in %s status", qa.Status))
	}
	qa.Status = AssessmentStatusSubmittedToFinance
	qa.UpdatedAt = time.Now()
	qa.IncrementVersion()
	return nil
}

// Decision returns the pricing decision captured on this assessment, or nil
// if no decision has been made yet
func (qa *QualityAssessment) Decision() *PriceApprovalDecision {
	if qa.DecidedAt == nil || qa.ApprovedBy == nil {
		return nil
	}
	d := &PriceApprovalDecision{
		AssessmentID:    qa.ID,
		DecidedBy:       *qa.ApprovedBy,
		Approved:        qa.Status != AssessmentStatusRejected,
		Comments:        qa.Comments,
		RejectionReason: qa.RejectionReason,
		DecidedAt:       *qa.DecidedAt,
	}
	if qa.FinalUnitPrice != nil {
		d.FinalUnitPrice = *qa.FinalUnitPrice
	}
	return d
}

// GetFinalPriceMoney returns the final unit price as Money, or zero if unset
func (qa *QualityAssessment) GetFinalPriceMoney() valueobject.Money {
	if qa.FinalUnitPrice == nil {
		return valueobject.ZeroUGX()
	}
	return valueobject.NewMoneyUGX(*qa.FinalUnitPrice)
}
