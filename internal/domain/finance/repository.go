package finance

import (
	"context"
	"time"

	"github.com/kahawa/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRecordFilter defines filtering options for payment queries
type PaymentRecordFilter struct {
	shared.Filter
	SupplierID *uuid.UUID
	Status     *PaymentStatus
	Method     *PaymentMethod
	FromDate   *time.Time
	ToDate     *time.Time
}

// PaymentRecordRepository defines the interface for payment persistence
type PaymentRecordRepository interface {
	// FindByID finds a payment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentRecord, error)

	// FindByBatchID finds the payment for a batch, if any
	FindByBatchID(ctx context.Context, batchID uuid.UUID) (*PaymentRecord, error)

	// FindAll finds payments with filtering
	FindAll(ctx context.Context, filter PaymentRecordFilter) ([]PaymentRecord, error)

	// Save creates or updates a payment record
	Save(ctx context.Context, payment *PaymentRecord) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, payment *PaymentRecord) error

	// GeneratePaymentNumber generates the next sequential payment number ("PAY-001")
	GeneratePaymentNumber(ctx context.Context) (string, error)
}

// CashTransactionRepository defines the interface for cash ledger persistence
type CashTransactionRepository interface {
	// FindByID finds a transaction by ID
	FindByID(ctx context.Context, id uuid.UUID) (*CashTransaction, error)

	// FindAll finds transactions ordered by occurrence, newest first
	FindAll(ctx context.Context, filter shared.Filter) ([]CashTransaction, error)

	// FindByDateRange finds confirmed transactions within a date range
	FindByDateRange(ctx context.Context, from, to time.Time) ([]CashTransaction, error)

	// Save appends a transaction to the ledger
	Save(ctx context.Context, tx *CashTransaction) error

	// SumConfirmed sums the signed amounts of all confirmed transactions.
	// Used as the fallback balance when the projection row is missing.
	SumConfirmed(ctx context.Context) (decimal.Decimal, error)
}

// CashBalanceRepository defines the interface for the drawer balance projection
type CashBalanceRepository interface {
	// Get returns the single balance row, or nil if none exists yet
	Get(ctx context.Context) (*CashBalance, error)

	// Save creates or updates the balance row
	Save(ctx context.Context, balance *CashBalance) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, balance *CashBalance) error
}

// SupplierAdvanceRepository defines the interface for advance persistence
type SupplierAdvanceRepository interface {
	// FindByID finds an advance by ID
	FindByID(ctx context.Context, id uuid.UUID) (*SupplierAdvance, error)

	// FindOpenBySupplier finds open advances for a supplier, oldest first
	FindOpenBySupplier(ctx context.Context, supplierID uuid.UUID) ([]*SupplierAdvance, error)

	// FindAll finds advances with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]SupplierAdvance, error)

	// Save creates or updates an advance
	Save(ctx context.Context, advance *SupplierAdvance) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, advance *SupplierAdvance) error
}

// ApprovalRequestRepository defines the interface for approval queue persistence
type ApprovalRequestRepository interface {
	// FindByID finds a request by ID
	FindByID(ctx context.Context, id uuid.UUID) (*ApprovalRequest, error)

	// FindPending finds pending requests, optionally filtered by type
	FindPending(ctx context.Context, reqType *ApprovalRequestType, filter shared.Filter) ([]ApprovalRequest, error)

	// FindBySubject finds requests attached to a subject aggregate
	FindBySubject(ctx context.Context, subjectID uuid.UUID) ([]ApprovalRequest, error)

	// Save creates or updates a request
	Save(ctx context.Context, request *ApprovalRequest) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, request *ApprovalRequest) error
}

// DaybookRepository defines the interface for daybook persistence
type DaybookRepository interface {
	// Save appends an entry
	Save(ctx context.Context, entry *DaybookEntry) error

	// FindByDate finds all entries for a given day
	FindByDate(ctx context.Context, date time.Time) ([]DaybookEntry, error)
}
