package procurement

import (
	"context"
	"fmt"
	"strings"

	"github.com/kahawa/backend/internal/domain/procurement"
	"github.com/kahawa/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SupplierService manages the supplier register
type SupplierService struct {
	supplierRepo procurement.SupplierRepository
	logger       *zap.Logger
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(supplierRepo procurement.SupplierRepository, logger *zap.Logger) *SupplierService {
	return &SupplierService{
		supplierRepo: supplierRepo,
		logger:       logger,
	}
}

// RegisterSupplierRequest represents a request to register a supplier
type RegisterSupplierRequest struct {
	Code   string
	Name   string
	Phone  string
	Region string
}

// RegisterSupplier adds a supplier to the register. Codes are unique and
// stored uppercase.
func (s *SupplierService) RegisterSupplier(ctx context.Context, req RegisterSupplierRequest) (*procurement.Supplier, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))

	existing, err := s.supplierRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to check supplier code: %w", err)
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", fmt.Sprintf("Supplier code %s is already in use", code))
	}

	supplier, err := procurement.NewSupplier(code, req.Name, req.Phone, req.Region)
	if err != nil {
		return nil, err
	}

	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, fmt.Errorf("failed to save supplier: %w", err)
	}

	s.logger.Info("Supplier registered",
		zap.String("code", supplier.Code),
		zap.String("name", supplier.Name))

	return supplier, nil
}

// GetSupplier returns a supplier by ID
func (s *SupplierService) GetSupplier(ctx context.Context, id uuid.UUID) (*procurement.Supplier, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, shared.NewDomainError("SUPPLIER_NOT_FOUND", "Supplier not found")
	}
	return supplier, nil
}

// ListSuppliers returns suppliers matching the filter
func (s *SupplierService) ListSuppliers(ctx context.Context, filter shared.Filter) ([]procurement.Supplier, error) {
	return s.supplierRepo.FindAll(ctx, filter)
}

// DeactivateSupplier marks a supplier inactive. Existing batches and open
// advances are unaffected; new deliveries are refused at intake.
func (s *SupplierService) DeactivateSupplier(ctx context.Context, id uuid.UUID) (*procurement.Supplier, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, shared.NewDomainError("SUPPLIER_NOT_FOUND", "Supplier not found")
	}

	supplier.Deactivate()
	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, fmt.Errorf("failed to save supplier: %w", err)
	}

	s.logger.Info("Supplier deactivated", zap.String("code", supplier.Code))

	return supplier, nil
}
