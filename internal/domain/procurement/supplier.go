package procurement

import (
	"github.com/kahawa/backend/internal/domain/shared"
)

// Supplier represents a coffee supplier (farmer or trader) delivering batches
type Supplier struct {
	shared.BaseAggregateRoot
	Code   string `gorm:"type:varchar(30);not null;uniqueIndex"`
	Name   string `gorm:"type:varchar(200);not null"`
	Phone  string `gorm:"type:varchar(30)"` // SMS notification target
	Region string `gorm:"type:varchar(100)"`
	Active bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// NewSupplier creates a new supplier
func NewSupplier(code, name, phone, region string) (*Supplier, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER_CODE", "Supplier code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER_NAME", "Supplier name cannot be empty")
	}

	return &Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Phone:             phone,
		Region:            region,
		Active:            true,
	}, nil
}

// Deactivate marks the supplier as inactive; inactive suppliers cannot deliver new batches
func (s *Supplier) Deactivate() {
	s.Active = false
	s.IncrementVersion()
}

// CanReceiveSMS returns true if the supplier has a phone number on file
func (s *Supplier) CanReceiveSMS() bool {
	return s.Phone != ""
}
