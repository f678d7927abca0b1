package handler

import (
	"time"

	financeapp "github.com/kahawa/backend/internal/application/finance"
	"github.com/kahawa/backend/internal/domain/finance"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdvanceHandler handles supplier advance endpoints
type AdvanceHandler struct {
	BaseHandler
	service *financeapp.AdvanceService
}

// NewAdvanceHandler creates a new AdvanceHandler
func NewAdvanceHandler(service *financeapp.AdvanceService) *AdvanceHandler {
	return &AdvanceHandler{service: service}
}

// RegisterRoutes registers advance routes
func (h *AdvanceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	advances := rg.Group("/advances")
	{
		advances.POST("", h.IssueAdvance)
	}
	rg.GET("/suppliers/:id/advances", h.ListOpenAdvances)
	rg.GET("/suppliers/:id/advances/outstanding", h.GetOutstandingTotal)
}

// IssueAdvanceRequest represents a request to pre-pay a supplier
type IssueAdvanceRequest struct {
	SupplierID string          `json:"supplier_id" binding:"required,uuid"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	Purpose    string          `json:"purpose" binding:"required"`
}

// AdvanceResponse represents a supplier advance in API responses
type AdvanceResponse struct {
	ID          string     `json:"id"`
	SupplierID  string     `json:"supplier_id"`
	Principal   string     `json:"principal"`
	Outstanding string     `json:"outstanding"`
	Currency    string     `json:"currency"`
	Purpose     string     `json:"purpose,omitempty"`
	IssuedAt    time.Time  `json:"issued_at"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	Version     int        `json:"version"`
}

// OutstandingResponse represents a supplier's total open advance balance
type OutstandingResponse struct {
	SupplierID  string `json:"supplier_id"`
	Outstanding string `json:"outstanding"`
	Currency    string `json:"currency"`
}

func toAdvanceResponse(a *finance.SupplierAdvance) AdvanceResponse {
	return AdvanceResponse{
		ID:          a.ID.String(),
		SupplierID:  a.SupplierID.String(),
		Principal:   a.Principal.String(),
		Outstanding: a.Outstanding.String(),
		Currency:    a.Currency,
		Purpose:     a.Purpose,
		IssuedAt:    a.IssuedAt,
		ClosedAt:    a.ClosedAt,
		Version:     a.Version,
	}
}

// IssueAdvance handles POST /advances
func (h *AdvanceHandler) IssueAdvance(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	var req IssueAdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID")
		return
	}

	advance, err := h.service.IssueAdvance(c.Request.Context(), financeapp.IssueAdvanceRequest{
		SupplierID: supplierID,
		Amount:     req.Amount,
		Purpose:    req.Purpose,
		IssuedBy:   userID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toAdvanceResponse(advance))
}

// ListOpenAdvances handles GET /suppliers/:id/advances
func (h *AdvanceHandler) ListOpenAdvances(c *gin.Context) {
	supplierID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid supplier ID")
		return
	}

	advances, err := h.service.OpenAdvances(c.Request.Context(), supplierID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]AdvanceResponse, len(advances))
	for i, adv := range advances {
		responses[i] = toAdvanceResponse(adv)
	}

	h.Success(c, responses)
}

// GetOutstandingTotal handles GET /suppliers/:id/advances/outstanding
func (h *AdvanceHandler) GetOutstandingTotal(c *gin.Context) {
	supplierID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid supplier ID")
		return
	}

	total, err := h.service.OutstandingTotal(c.Request.Context(), supplierID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, OutstandingResponse{
		SupplierID:  supplierID.String(),
		Outstanding: total.Amount().String(),
		Currency:    string(total.Currency()),
	})
}
