package handler

import (
	"time"

	procurementapp "github.com/kahawa/backend/internal/application/procurement"
	"github.com/kahawa/backend/internal/domain/procurement"
	"github.com/kahawa/backend/internal/domain/shared"
	"github.com/kahawa/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IntakeHandler handles coffee batch registration and grading endpoints
type IntakeHandler struct {
	BaseHandler
	service *procurementapp.IntakeService
}

// NewIntakeHandler creates a new IntakeHandler
func NewIntakeHandler(service *procurementapp.IntakeService) *IntakeHandler {
	return &IntakeHandler{service: service}
}

// RegisterRoutes registers intake routes
func (h *IntakeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	batches := rg.Group("/batches")
	{
		batches.POST("", h.RegisterBatch)
		batches.GET("", h.ListBatches)
		batches.GET("/:id", h.GetBatch)
		batches.POST("/:id/assessments", h.RecordAssessment)
	}
}

// RegisterBatchRequest represents a request to register a delivered batch
type RegisterBatchRequest struct {
	SupplierID string          `json:"supplier_id" binding:"required,uuid"`
	CoffeeType string          `json:"coffee_type" binding:"required,oneof=ARABICA ROBUSTA"`
	WeightKg   decimal.Decimal `json:"weight_kg" binding:"required"`
	BagCount   int             `json:"bag_count" binding:"required,gt=0"`
}

// RecordAssessmentRequest represents grading results for a batch
type RecordAssessmentRequest struct {
	MoisturePct        decimal.Decimal `json:"moisture_pct" binding:"required"`
	DefectPct          decimal.Decimal `json:"defect_pct"`
	Outturn            decimal.Decimal `json:"outturn" binding:"required"`
	SuggestedUnitPrice decimal.Decimal `json:"suggested_unit_price" binding:"required"`
}

// BatchFilterRequest represents filter parameters for the batch list
type BatchFilterRequest struct {
	dto.ListRequest
	SupplierID string `form:"supplier_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=RECEIVED GRADED INVENTORY REJECTED"`
	CoffeeType string `form:"coffee_type" binding:"omitempty,oneof=ARABICA ROBUSTA"`
	FromDate   string `form:"from_date"`
	ToDate     string `form:"to_date"`
}

// BatchResponse represents a coffee batch in API responses
type BatchResponse struct {
	ID           string          `json:"id"`
	BatchNumber  string          `json:"batch_number"`
	SupplierID   string          `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	CoffeeType   string          `json:"coffee_type"`
	WeightKg     decimal.Decimal `json:"weight_kg"`
	BagCount     int             `json:"bag_count"`
	Status       string          `json:"status"`
	ReceivedAt   time.Time       `json:"received_at"`
	Version      int             `json:"version"`
}

// AssessmentResponse represents a quality assessment in API responses
type AssessmentResponse struct {
	ID                 string           `json:"id"`
	BatchID            string           `json:"batch_id"`
	BatchNumber        string           `json:"batch_number"`
	MoisturePct        decimal.Decimal  `json:"moisture_pct"`
	DefectPct          decimal.Decimal  `json:"defect_pct"`
	Outturn            decimal.Decimal  `json:"outturn"`
	SuggestedUnitPrice decimal.Decimal  `json:"suggested_unit_price"`
	FinalUnitPrice     *decimal.Decimal `json:"final_unit_price,omitempty"`
	Status             string           `json:"status"`
	Comments           string           `json:"comments,omitempty"`
	RejectionReason    string           `json:"rejection_reason,omitempty"`
	DecidedAt          *time.Time       `json:"decided_at,omitempty"`
	Version            int              `json:"version"`
}

func toBatchResponse(b *procurement.CoffeeBatch) BatchResponse {
	return BatchResponse{
		ID:           b.ID.String(),
		BatchNumber:  b.BatchNumber,
		SupplierID:   b.SupplierID.String(),
		SupplierName: b.SupplierName,
		CoffeeType:   string(b.CoffeeType),
		WeightKg:     b.WeightKg,
		BagCount:     b.BagCount,
		Status:       string(b.Status),
		ReceivedAt:   b.ReceivedAt,
		Version:      b.Version,
	}
}

func toAssessmentResponse(a *procurement.QualityAssessment) AssessmentResponse {
	return AssessmentResponse{
		ID:                 a.ID.String(),
		BatchID:            a.BatchID.String(),
		BatchNumber:        a.BatchNumber,
		MoisturePct:        a.MoisturePct,
		DefectPct:          a.DefectPct,
		Outturn:            a.Outturn,
		SuggestedUnitPrice: a.SuggestedUnitPrice,
		FinalUnitPrice:     a.FinalUnitPrice,
		Status:             string(a.Status),
		Comments:           a.Comments,
		RejectionReason:    a.RejectionReason,
		DecidedAt:          a.DecidedAt,
		Version:            a.Version,
	}
}

// RegisterBatch handles POST /batches
func (h *IntakeHandler) RegisterBatch(c *gin.Context) {
	var req RegisterBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID")
		return
	}

	batch, err := h.service.RegisterBatch(c.Request.Context(), procurementapp.RegisterBatchRequest{
		SupplierID: supplierID,
		CoffeeType: procurement.CoffeeType(req.CoffeeType),
		WeightKg:   req.WeightKg,
		BagCount:   req.BagCount,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toBatchResponse(batch))
}

// ListBatches handles GET /batches
func (h *IntakeHandler) ListBatches(c *gin.Context) {
	var req BatchFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	req.Normalize()

	filter := procurement.CoffeeBatchFilter{
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
		status := procurement.BatchStatus(req.Status)
		filter.Status = &status
	}
	if req.CoffeeType != "" {
		coffeeType := procurement.CoffeeType(req.CoffeeType)
		filter.CoffeeType = &coffeeType
	}
	if req.FromDate != "" {
		from, err := time.Parse("2006-01-02", req.FromDate)
		if err != nil {
			h.BadRequest(c, "Invalid from_date, expected YYYY-MM-DD")
			return
		}
		filter.FromDate = &from
	}
	if req.ToDate != "" {
		to, err := time.Parse("2006-01-02", req.ToDate)
		if err != nil {
			h.BadRequest(c, "Invalid to_date, expected YYYY-MM-DD")
			return
		}
		filter.ToDate = &to
	}

	batches, total, err := h.service.ListBatches(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]BatchResponse, len(batches))
	for i := range batches {
		responses[i] = toBatchResponse(&batches[i])
	}

	h.SuccessWithMeta(c, responses, total, req.Page, req.PageSize)
}

// GetBatch handles GET /batches/:id
func (h *IntakeHandler) GetBatch(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid batch ID")
		return
	}

	batch, err := h.service.GetBatch(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toBatchResponse(batch))
}

// RecordAssessment handles POST /batches/:id/assessments
func (h *IntakeHandler) RecordAssessment(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid batch ID")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	var req RecordAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	assessment, err := h.service.RecordAssessment(c.Request.Context(), procurementapp.RecordAssessmentRequest{
		BatchID:            id,
		MoisturePct:        req.MoisturePct,
		DefectPct:          req.DefectPct,
		Outturn:            req.Outturn,
		SuggestedUnitPrice: req.SuggestedUnitPrice,
		SubmittedBy:        userID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toAssessmentResponse(assessment))
}
