package finance

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kahawa/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ApprovalRequestType classifies what the request asks an authorizer to do
type ApprovalRequestType string

const (
	ApprovalTypeBankTransfer ApprovalRequestType = "BANK_TRANSFER" // Second authorizer for a bank payment
	ApprovalTypePriceChange  ApprovalRequestType = "PRICE_CHANGE"  // Correction of an already-approved price
)

// IsValid checks if the request type is valid
func (t ApprovalRequestType) IsValid() bool {
	switch t {
	case ApprovalTypeBankTransfer, ApprovalTypePriceChange:
		return true
	}
	return false
}

// String returns the string representation of ApprovalRequestType
func (t ApprovalRequestType) String() string {
	return string(t)
}

// ApprovalRequestStatus represents the status of an approval request
type ApprovalRequestStatus string

const (
	ApprovalStatusPending  ApprovalRequestStatus = "PENDING"
	ApprovalStatusApproved ApprovalRequestStatus = "APPROVED"
	ApprovalStatusRejected ApprovalRequestStatus = "REJECTED"
)

// approvalTransitions is the closed transition table for approval statuses
var approvalTransitions = map[ApprovalRequestStatus][]ApprovalRequestStatus{
	ApprovalStatusPending:  {ApprovalStatusApproved, ApprovalStatusRejected},
	ApprovalStatusApproved: {},
	ApprovalStatusRejected: {},
}

// IsValid checks if the status is a valid ApprovalRequestStatus
func (s ApprovalRequestStatus) IsValid() bool {
	_, ok := approvalTransitions[s]
	return ok
}

// String returns the string representation of ApprovalRequestStatus
func (s ApprovalRequestStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further transition is allowed
func (s ApprovalRequestStatus) IsTerminal() bool {
	return len(approvalTransitions[s]) == 0
}

// CanTransitionTo returns true if the transition is listed in the table
func (s ApprovalRequestStatus) CanTransitionTo(target ApprovalRequestStatus) bool {
	for _, allowed := range approvalTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// ApprovalRequest is a queued request for an authorizer's decision. The
// requester may never decide their own request.
type ApprovalRequest struct {
	shared.BaseAggregateRoot
	Type        ApprovalRequestType   `gorm:"type:varchar(30);not null;index"`
	Status      ApprovalRequestStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	SubjectID   uuid.UUID             `gorm:"type:uuid;not null;index"` // Payment or assessment awaiting the decision
	Details     json.RawMessage       `gorm:"type:jsonb"`
	RequestedBy uuid.UUID             `gorm:"type:uuid;not null"`
	DecidedBy   *uuid.UUID            `gorm:"type:uuid"`
	Reason      string                `gorm:"type:varchar(500)"`
	DecidedAt   *time.Time
}

// TableName returns the table name for GORM
func (ApprovalRequest) TableName() string {
	return "approval_requests"
}

// NewApprovalRequest queues a request for an authorizer
func NewApprovalRequest(reqType ApprovalRequestType, subjectID uuid.UUID, details json.RawMessage, requestedBy uuid.UUID) (*ApprovalRequest, error) {
	if !reqType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", fmt.Sprintf("Invalid approval request type: %s", reqType))
	}
	if subjectID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "Approval subject ID cannot be empty")
	}
	if requestedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Requesting user ID is required")
	}

	return &ApprovalRequest{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              reqType,
		Status:            ApprovalStatusPending,
		SubjectID:         subjectID,
		Details:           details,
		RequestedBy:       requestedBy,
	}, nil
}

// Approve marks the request approved. The decider may not be the requester.
func (r *ApprovalRequest) Approve(decidedBy uuid.UUID) error {
	return r.decide(ApprovalStatusApproved, decidedBy, "")
}

// Reject marks the request rejected with a mandatory reason
func (r *ApprovalRequest) Reject(decidedBy uuid.UUID, reason string) error {
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}
	return r.decide(ApprovalStatusRejected, decidedBy, reason)
}

func (r *ApprovalRequest) decide(target ApprovalRequestStatus, decidedBy uuid.UUID, reason string) error {
	if !r.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot decide approval request in %s status", r.Status))
	}
	if decidedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Deciding user ID is required")
	}
	if decidedBy == r.RequestedBy {
		return shared.NewDomainError("SELF_APPROVAL",
			"Approval request cannot be decided by its requester")
	}

	now := time.Now()
	r.Status = target
	r.DecidedBy = &decidedBy
	r.Reason = reason
	r.DecidedAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()
	return nil
}

// IsPending returns true if the request still awaits a decision
func (r *ApprovalRequest) IsPending() bool {
	return r.Status == ApprovalStatusPending
}
