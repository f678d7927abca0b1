package handler

import (
	gradingapp "github.com/kahawa/backend/internal/application/grading"
	"github.com/kahawa/backend/internal/domain/shared"
	"github.com/kahawa/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PricingHandler handles the admin's pricing decisions on submitted
// quality assessments.
type PricingHandler struct {
	BaseHandler
	service *gradingapp.PricingApprovalService
}

// NewPricingHandler creates a new PricingHandler
func NewPricingHandler(service *gradingapp.PricingApprovalService) *PricingHandler {
	return &PricingHandler{service: service}
}

// RegisterRoutes registers pricing routes
func (h *PricingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/pricing/pending", h.ListPending)

	assessments := rg.Group("/assessments")
	{
		assessments.POST("/:id/approve-price", h.ApprovePrice)
		assessments.POST("/:id/reject-price", h.RejectPrice)
		assessments.POST("/:id/price-corrections", h.SubmitPriceCorrection)
	}
}

// ApprovePriceRequest represents a request to approve a suggested price
type ApprovePriceRequest struct {
	FinalPrice decimal.Decimal `json:"final_price" binding:"required"`
	Comments   string          `json:"comments"`
}

// RejectPriceRequest represents a request to reject a suggested price
type RejectPriceRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// PriceCorrectionRequest represents a proposed correction to an approved price
type PriceCorrectionRequest struct {
	ProposedPrice decimal.Decimal `json:"proposed_price" binding:"required"`
	Reason        string          `json:"reason" binding:"required"`
}

// ListPending handles GET /pricing/pending
func (h *PricingHandler) ListPending(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	req.Normalize()

	assessments, err := h.service.ListPendingAssessments(c.Request.Context(), shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]AssessmentResponse, len(assessments))
	for i := range assessments {
		responses[i] = toAssessmentResponse(&assessments[i])
	}

	h.Success(c, responses)
}

// ApprovePrice handles POST /assessments/:id/approve-price
func (h *PricingHandler) ApprovePrice(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid assessment ID")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	var req ApprovePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	assessment, err := h.service.ApprovePrice(c.Request.Context(), gradingapp.ApprovePriceRequest{
		AssessmentID: id,
		FinalPrice:   req.FinalPrice,
		ApprovedBy:   userID,
		Comments:     req.Comments,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toAssessmentResponse(assessment))
}

// RejectPrice handles POST /assessments/:id/reject-price
func (h *PricingHandler) RejectPrice(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid assessment ID")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	var req RejectPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	assessment, err := h.service.RejectPrice(c.Request.Context(), gradingapp.RejectPriceRequest{
		AssessmentID: id,
		RejectedBy:   userID,
		Reason:       req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toAssessmentResponse(assessment))
}

// SubmitPriceCorrection handles POST /assessments/:id/price-corrections
func (h *PricingHandler) SubmitPriceCorrection(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid assessment ID")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	var req PriceCorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	request, err := h.service.SubmitPriceCorrection(c.Request.Context(), gradingapp.PriceCorrectionRequest{
		AssessmentID:  id,
		ProposedPrice: req.ProposedPrice,
		RequestedBy:   userID,
		Reason:        req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toApprovalRequestResponse(request))
}
