package persistence

import (
	"github.com/kahawa/backend/internal/domain/finance"
	"github.com/kahawa/backend/internal/domain/procurement"
	"github.com/kahawa/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the schema for all aggregates.
// Production deployments run versioned SQL migrations instead; this is
// used by tests and local development.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&procurement.Supplier{},
		&procurement.CoffeeBatch{},
		&procurement.QualityAssessment{},
		&finance.PaymentRecord{},
		&finance.CashTransaction{},
		&finance.CashBalance{},
		&finance.SupplierAdvance{},
		&finance.ApprovalRequest{},
		&finance.DaybookEntry{},
		&shared.OutboxEntry{},
	)
}
