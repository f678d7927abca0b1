package handler

import (
	procurementapp "github.com/kahawa/backend/internal/application/procurement"
	"github.com/kahawa/backend/internal/domain/procurement"
	"github.com/kahawa/backend/internal/domain/shared"
	"github.com/kahawa/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SupplierHandler handles the supplier register endpoints
type SupplierHandler struct {
	BaseHandler
	service *procurementapp.SupplierService
}

// NewSupplierHandler creates a new SupplierHandler
func NewSupplierHandler(service *procurementapp.SupplierService) *SupplierHandler {
	return &SupplierHandler{service: service}
}

// RegisterRoutes registers supplier routes
func (h *SupplierHandler) RegisterRoutes(rg *gin.RouterGroup) {
	suppliers := rg.Group("/suppliers")
	{
		suppliers.POST("", h.RegisterSupplier)
		suppliers.GET("", h.ListSuppliers)
		suppliers.GET("/:id", h.GetSupplier)
		suppliers.POST("/:id/deactivate", h.DeactivateSupplier)
	}
}

// RegisterSupplierRequest represents a request to register a supplier
type RegisterSupplierRequest struct {
	Code   string `json:"code" binding:"required,max=30"`
	Name   string `json:"name" binding:"required,max=200"`
	Phone  string `json:"phone" binding:"omitempty,max=30"`
	Region string `json:"region" binding:"omitempty,max=100"`
}

// SupplierResponse represents a supplier in API responses
type SupplierResponse struct {
	ID     string `json:"id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Phone  string `json:"phone,omitempty"`
	Region string `json:"region,omitempty"`
	Active bool   `json:"active"`
}

func toSupplierResponse(s *procurement.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:     s.ID.String(),
		Code:   s.Code,
		Name:   s.Name,
		Phone:  s.Phone,
		Region: s.Region,
		Active: s.Active,
	}
}

// RegisterSupplier handles POST /suppliers
func (h *SupplierHandler) RegisterSupplier(c *gin.Context) {
	var req RegisterSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	supplier, err := h.service.RegisterSupplier(c.Request.Context(), procurementapp.RegisterSupplierRequest{
		Code:   req.Code,
		Name:   req.Name,
		Phone:  req.Phone,
		Region: req.Region,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toSupplierResponse(supplier))
}

// ListSuppliers handles GET /suppliers
func (h *SupplierHandler) ListSuppliers(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	req.Normalize()

	suppliers, err := h.service.ListSuppliers(c.Request.Context(), shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		Search:   req.Search,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]SupplierResponse, len(suppliers))
	for i := range suppliers {
		responses[i] = toSupplierResponse(&suppliers[i])
	}

	h.Success(c, responses)
}

// GetSupplier handles GET /suppliers/:id
func (h *SupplierHandler) GetSupplier(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid supplier ID")
		return
	}

	supplier, err := h.service.GetSupplier(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toSupplierResponse(supplier))
}

// DeactivateSupplier handles POST /suppliers/:id/deactivate
func (h *SupplierHandler) DeactivateSupplier(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid supplier ID")
		return
	}

	supplier, err := h.service.DeactivateSupplier(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toSupplierResponse(supplier))
}
