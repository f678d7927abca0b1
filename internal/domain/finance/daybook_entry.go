package finance

import (
	"time"

	"github.com/kahawa/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DaybookEntry is one line in the chronological daybook the accountant reads
// at close of business. Entries are append-only; corrections get their own
// contra line rather than editing history.
type DaybookEntry struct {
	shared.BaseEntity
	EntryDate   time.Time       `gorm:"type:date;not null;index"`
	Category    string          `gorm:"type:varchar(50);not null"` // PAYMENT, DEPOSIT, EXPENSE, ADVANCE
	Description string          `gorm:"type:varchar(500);not null"`
	Debit       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Credit      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReferenceID *uuid.UUID      `gorm:"type:uuid;index"`
	RecordedBy  uuid.UUID       `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (DaybookEntry) TableName() string {
	return "daybook_entries"
}

// NewDaybookEntry appends a line to the daybook
func NewDaybookEntry(category, description string, debit, credit decimal.Decimal, referenceID *uuid.UUID, recordedBy uuid.UUID) (*DaybookEntry, error) {
	if category == "" {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Daybook category is required")
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Daybook description is required")
	}
	if debit.IsNegative() || credit.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Daybook amounts cannot be negative")
	}
	if recordedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Recording user ID is required")
	}

	return &DaybookEntry{
		BaseEntity:  shared.NewBaseEntity(),
		EntryDate:   time.Now().Truncate(24 * time.Hour),
		Category:    category,
		Description: description,
		Debit:       debit,
		Credit:      credit,
		ReferenceID: referenceID,
		RecordedBy:  recordedBy,
	}, nil
}
