package handler

import (
	"time"

	financeapp "github.com/kahawa/backend/internal/application/finance"
	"github.com/kahawa/backend/internal/domain/finance"
	"github.com/kahawa/backend/internal/domain/shared"
	"github.com/kahawa/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentHandler handles supplier payment endpoints
type PaymentHandler struct {
	BaseHandler
	service *financeapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(service *financeapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// RegisterRoutes registers payment routes
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.POST("", h.ProcessPayment)
		payments.GET("", h.ListPayments)
		payments.GET("/:id", h.GetPayment)
	}
}

// ProcessPaymentRequest represents a request to pay a supplier for a batch.
// Amount overrides the graded batch value when set; advance_recovery caps how
// much is withheld against open advances, with zero meaning withhold nothing.
type ProcessPaymentRequest struct {
	BatchID         string           `json:"batch_id" binding:"required,uuid"`
	Method          string           `json:"method" binding:"required,oneof=CASH BANK_TRANSFER"`
	Amount          decimal.Decimal  `json:"amount"`
	AdvanceRecovery *decimal.Decimal `json:"advance_recovery"`
	Notes           string           `json:"notes" binding:"max=2000"`
}

// PaymentFilterRequest represents filter parameters for the payment list
type PaymentFilterRequest struct {
	dto.ListRequest
	SupplierID string `form:"supplier_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=PROCESSING PAID"`
	Method     string `form:"method" binding:"omitempty,oneof=CASH BANK_TRANSFER"`
}

// PaymentResponse represents a payment record in API responses
type PaymentResponse struct {
	ID               string     `json:"id"`
	PaymentNumber    string     `json:"payment_number"`
	BatchID          string     `json:"batch_id"`
	BatchNumber      string     `json:"batch_number"`
	SupplierID       string     `json:"supplier_id"`
	SupplierName     string     `json:"supplier_name"`
	GrossAmount      string     `json:"gross_amount"`
	AdvanceRecovered string     `json:"advance_recovered"`
	NetAmount        string     `json:"net_amount"`
	Currency         string     `json:"currency"`
	Method           string     `json:"method"`
	Status           string     `json:"status"`
	Reference        string     `json:"reference,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	PaidAt           *time.Time `json:"paid_at,omitempty"`
	Version          int        `json:"version"`
}

func toPaymentResponse(p *finance.PaymentRecord) PaymentResponse {
	return PaymentResponse{
		ID:               p.ID.String(),
		PaymentNumber:    p.PaymentNumber,
		BatchID:          p.BatchID.String(),
		BatchNumber:      p.BatchNumber,
		SupplierID:       p.SupplierID.String(),
		SupplierName:     p.SupplierName,
		GrossAmount:      p.GrossAmount.String(),
		AdvanceRecovered: p.AdvanceRecovered.String(),
		NetAmount:        p.NetAmount.String(),
		Currency:         p.Currency,
		Method:           string(p.Method),
		Status:           string(p.Status),
		Reference:        p.Reference,
		Notes:            p.Notes,
		PaidAt:           p.PaidAt,
		Version:          p.Version,
	}
}

// ProcessPayment handles POST /payments
func (h *PaymentHandler) ProcessPayment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	var req ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	batchID, err := uuid.Parse(req.BatchID)
	if err != nil {
		h.BadRequest(c, "Invalid batch ID")
		return
	}

	result, err := h.service.ProcessPayment(c.Request.Context(), financeapp.ProcessPaymentRequest{
		BatchID:         batchID,
		Method:          finance.PaymentMethod(req.Method),
		Amount:          req.Amount,
		AdvanceRecovery: req.AdvanceRecovery,
		Notes:           req.Notes,
		ProcessedBy:     userID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// ListPayments handles GET /payments
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	var req PaymentFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	req.Normalize()

	filter := finance.PaymentRecordFilter{
		Filter: shared.Filter{
			Page:     req.Page,
			PageSize: req.PageSize,
			Search:   req.Search,
		},
	}
	if req.SupplierID != "" {
		id, _ := uuid.Parse(req.SupplierID)
		filter.SupplierID = &id
	}
	if req.Status != "" {
		status := finance.PaymentStatus(req.Status)
		filter.Status = &status
	}
	if req.Method != "" {
		method := finance.PaymentMethod(req.Method)
		filter.Method = &method
	}

	payments, err := h.service.ListPayments(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = toPaymentResponse(&payments[i])
	}

	h.Success(c, responses)
}

// GetPayment handles GET /payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	payment, err := h.service.GetPayment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toPaymentResponse(payment))
}
