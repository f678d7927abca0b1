package handler

import (
	"encoding/json"
	"time"

	financeapp "github.com/kahawa/backend/internal/application/finance"
	"github.com/kahawa/backend/internal/domain/finance"
	"github.com/kahawa/backend/internal/domain/shared"
	"github.com/kahawa/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ApprovalHandler handles the approval request queue. Bank transfer
// confirmations go through PaymentService so the payment and the decision
// commit together.
type ApprovalHandler struct {
	BaseHandler
	approvalService *financeapp.ApprovalService
	paymentService  *financeapp.PaymentService
}

// NewApprovalHandler creates a new ApprovalHandler
func NewApprovalHandler(approvalService *financeapp.ApprovalService, paymentService *financeapp.PaymentService) *ApprovalHandler {
	return &ApprovalHandler{
		approvalService: approvalService,
		paymentService:  paymentService,
	}
}

// RegisterRoutes registers approval queue routes
func (h *ApprovalHandler) RegisterRoutes(rg *gin.RouterGroup) {
	approvals := rg.Group("/approvals")
	{
		approvals.GET("", h.ListPending)
		approvals.GET("/:id", h.GetRequest)
		approvals.POST("/:id/confirm-transfer", h.ConfirmTransfer)
		approvals.POST("/:id/reject", h.RejectRequest)
	}
}

// ConfirmTransferRequest represents a second authorizer's confirmation
type ConfirmTransferRequest struct {
	BankReference string `json:"bank_reference" binding:"required"`
}

// RejectApprovalRequest represents a rejection with a mandatory reason
type RejectApprovalRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ApprovalFilterRequest represents filter parameters for the pending queue
type ApprovalFilterRequest struct {
	dto.ListRequest
	Type string `form:"type" binding:"omitempty,oneof=BANK_TRANSFER PRICE_CHANGE"`
}

// ApprovalRequestResponse represents an approval request in API responses
type ApprovalRequestResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Status      string          `json:"status"`
	SubjectID   string          `json:"subject_id"`
	Details     json.RawMessage `json:"details,omitempty"`
	RequestedBy string          `json:"requested_by"`
	DecidedBy   *string         `json:"decided_by,omitempty"`
	Reason      string          `json:"reason,omitempty"`
	DecidedAt   *time.Time      `json:"decided_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	Version     int             `json:"version"`
}

func toApprovalRequestResponse(r *finance.ApprovalRequest) ApprovalRequestResponse {
	resp := ApprovalRequestResponse{
		ID:          r.ID.String(),
		Type:        string(r.Type),
		Status:      string(r.Status),
		SubjectID:   r.SubjectID.String(),
		Details:     r.Details,
		RequestedBy: r.RequestedBy.String(),
		Reason:      r.Reason,
		DecidedAt:   r.DecidedAt,
		CreatedAt:   r.CreatedAt,
		Version:     r.Version,
	}
	if r.DecidedBy != nil {
		decidedBy := r.DecidedBy.String()
		resp.DecidedBy = &decidedBy
	}
	return resp
}

// ListPending handles GET /approvals
func (h *ApprovalHandler) ListPending(c *gin.Context) {
	var req ApprovalFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	req.Normalize()

	var reqType *finance.ApprovalRequestType
	if req.Type != "" {
		t := finance.ApprovalRequestType(req.Type)
		reqType = &t
	}

	requests, err := h.approvalService.ListPending(c.Request.Context(), reqType, shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]ApprovalRequestResponse, len(requests))
	for i := range requests {
		responses[i] = toApprovalRequestResponse(&requests[i])
	}

	h.Success(c, responses)
}

// GetRequest handles GET /approvals/:id
func (h *ApprovalHandler) GetRequest(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid request ID")
		return
	}

	request, err := h.approvalService.GetRequest(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toApprovalRequestResponse(request))
}

// ConfirmTransfer handles POST /approvals/:id/confirm-transfer
func (h *ApprovalHandler) ConfirmTransfer(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid request ID")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	var req ConfirmTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.paymentService.ConfirmBankTransfer(c.Request.Context(), financeapp.ConfirmBankTransferRequest{
		ApprovalRequestID: id,
		DecidedBy:         userID,
		BankReference:     req.BankReference,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RejectRequest handles POST /approvals/:id/reject
func (h *ApprovalHandler) RejectRequest(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid request ID")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	var req RejectApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	request, err := h.approvalService.RejectRequest(c.Request.Context(), id, userID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toApprovalRequestResponse(request))
}
