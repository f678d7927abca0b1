package procurement

import (
	"fmt"
	"time"

	"github.com/kahawa/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BatchStatus represents the lifecycle status of a coffee batch
type BatchStatus string

const (
	BatchStatusReceived  BatchStatus = "RECEIVED"  // Delivered and weighed at intake
	BatchStatusGraded    BatchStatus = "GRADED"    // Quality assessed, price approved, payable
	BatchStatusInventory BatchStatus = "INVENTORY" // Payment decided, goods in store
	BatchStatusRejected  BatchStatus = "REJECTED"  // Price rejected, terminal
)

// batchTransitions is the closed transition table for batch statuses.
// Any transition not listed here is rejected.
var batchTransitions = map[BatchStatus][]BatchStatus{
	BatchStatusReceived:  {BatchStatusGraded, BatchStatusRejected},
	BatchStatusGraded:    {BatchStatusInventory, BatchStatusRejected},
	BatchStatusInventory: {},
	BatchStatusRejected:  {},
}

// IsValid checks if the status is a valid BatchStatus
func (s BatchStatus) IsValid() bool {
	_, ok := batchTransitions[s]
	return ok
}

// String returns the string representation of BatchStatus
func (s BatchStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further transition is allowed
func (s BatchStatus) IsTerminal() bool {
	return len(batchTransitions[s]) == 0
}

// CanTransitionTo returns true if the transition is listed in the table
func (s BatchStatus) CanTransitionTo(target BatchStatus) bool {
	for _, allowed := range batchTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// CoffeeType represents the variety of coffee in a batch
type CoffeeType string

const (
	CoffeeTypeArabica CoffeeType = "ARABICA"
	CoffeeTypeRobusta CoffeeType = "ROBUSTA"
)

// IsValid checks if the coffee type is valid
func (t CoffeeType) IsValid() bool {
	return t == CoffeeTypeArabica || t == CoffeeTypeRobusta
}

// CoffeeBatch represents one intake lot of coffee from a supplier.
// Batches are never deleted, only status-transitioned.
type CoffeeBatch struct {
	shared.BaseAggregateRoot
	BatchNumber  string          `gorm:"type:varchar(30);not null;uniqueIndex"`
	SupplierID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	SupplierName string          `gorm:"type:varchar(200);not null"`
	CoffeeType   CoffeeType      `gorm:"type:varchar(20);not null"`
	WeightKg     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	BagCount     int             `gorm:"not null"`
	Status       BatchStatus     `gorm:"type:varchar(20);not null;default:'RECEIVED';index"`
	ReceivedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CoffeeBatch) TableName() string {
	return "coffee_batches"
}

// NewCoffeeBatch creates a new coffee batch at intake
func NewCoffeeBatch(
	batchNumber string,
	supplierID uuid.UUID,
	supplierName string,
	coffeeType CoffeeType,
	weightKg decimal.Decimal,
	bagCount int,
) (*CoffeeBatch, error) {
	if batchNumber == "" {
		return nil, shared.NewDomainError("INVALID_BATCH_NUMBER", "Batch number cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if supplierName == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER_NAME", "Supplier name cannot be empty")
	}
	if !coffeeType.IsValid() {
		return nil, shared.NewDomainError("INVALID_COFFEE_TYPE", "Coffee type is not valid")
	}
	if weightKg.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_WEIGHT", "Weight must be positive")
	}
	if bagCount <= 0 {
		return nil, shared.NewDomainError("INVALID_BAG_COUNT", "Bag count must be positive")
	}

	b := &CoffeeBatch{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BatchNumber:       batchNumber,
		SupplierID:        supplierID,
		SupplierName:      supplierName,
		CoffeeType:        coffeeType,
		WeightKg:          weightKg,
		BagCount:          bagCount,
		Status:            BatchStatusReceived,
		ReceivedAt:        time.Now(),
	}

	b.AddDomainEvent(NewBatchReceivedEvent(b))

	return b, nil
}

// transitionTo moves the batch to the target status, enforcing the transition table
func (b *CoffeeBatch) transitionTo(target BatchStatus) error {
	if !b.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot transition batch from %s to %s", b.Status, target))
	}
	b.Status = target
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// MarkGraded marks the batch as graded with an approved price (payable)
func (b *CoffeeBatch) MarkGraded() error {
	return b.transitionTo(BatchStatusGraded)
}

// MarkRejected marks the batch as rejected, a terminal state.
// No payment is ever generated for a rejected batch.
func (b *CoffeeBatch) MarkRejected() error {
	return b.transitionTo(BatchStatusRejected)
}

// MoveToInventory marks the batch as payment-complete. Physical receipt of
// goods is not gated on bank transfer completion, only on the payment decision.
func (b *CoffeeBatch) MoveToInventory() error {
	return b.transitionTo(BatchStatusInventory)
}

// IsPayable returns true if the batch is eligible for payment processing
func (b *CoffeeBatch) IsPayable() bool {
	return b.Status == BatchStatusGraded
}
