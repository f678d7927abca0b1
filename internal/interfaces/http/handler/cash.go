package handler

import (
	"time"

	financeapp "github.com/kahawa/backend/internal/application/finance"
	"github.com/kahawa/backend/internal/domain/finance"
	"github.com/kahawa/backend/internal/domain/shared"
	"github.com/kahawa/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CashHandler handles cash drawer endpoints
type CashHandler struct {
	BaseHandler
	service *financeapp.CashBalanceService
}

// NewCashHandler creates a new CashHandler
func NewCashHandler(service *financeapp.CashBalanceService) *CashHandler {
	return &CashHandler{service: service}
}

// RegisterRoutes registers cash drawer routes
func (h *CashHandler) RegisterRoutes(rg *gin.RouterGroup) {
	cash := rg.Group("/cash")
	{
		cash.GET("/balance", h.GetBalance)
		cash.POST("/deposits", h.RecordDeposit)
		cash.POST("/expenses", h.RecordExpense)
		cash.GET("/transactions", h.ListTransactions)
		cash.GET("/daybook", h.GetDaybook)
	}
}

// CashMovementRequest represents a deposit or expense
type CashMovementRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description" binding:"required"`
}

// BalanceResponse represents the current drawer balance
type BalanceResponse struct {
	Balance  string `json:"balance"`
	Currency string `json:"currency"`
}

// CashTransactionResponse represents a ledger line in API responses
type CashTransactionResponse struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Amount       string    `json:"amount"`
	BalanceAfter string    `json:"balance_after"`
	Currency     string    `json:"currency"`
	Description  string    `json:"description"`
	ReferenceID  *string   `json:"reference_id,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// DaybookEntryResponse represents a day-book line in API responses
type DaybookEntryResponse struct {
	ID          string    `json:"id"`
	EntryDate   time.Time `json:"entry_date"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Debit       string    `json:"debit"`
	Credit      string    `json:"credit"`
	ReferenceID *string   `json:"reference_id,omitempty"`
}

func toCashTransactionResponse(t *finance.CashTransaction) CashTransactionResponse {
	resp := CashTransactionResponse{
		ID:           t.ID.String(),
		Type:         string(t.Type),
		Amount:       t.Amount.String(),
		BalanceAfter: t.BalanceAfter.String(),
		Currency:     t.Currency,
		Description:  t.Description,
		OccurredAt:   t.OccurredAt,
	}
	if t.ReferenceID != nil {
		ref := t.ReferenceID.String()
		resp.ReferenceID = &ref
	}
	return resp
}

func toDaybookEntryResponse(e *finance.DaybookEntry) DaybookEntryResponse {
	resp := DaybookEntryResponse{
		ID:          e.ID.String(),
		EntryDate:   e.EntryDate,
		Category:    e.Category,
		Description: e.Description,
		Debit:       e.Debit.String(),
		Credit:      e.Credit.String(),
	}
	if e.ReferenceID != nil {
		ref := e.ReferenceID.String()
		resp.ReferenceID = &ref
	}
	return resp
}

// GetBalance handles GET /cash/balance
func (h *CashHandler) GetBalance(c *gin.Context) {
	balance, err := h.service.CurrentBalance(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, BalanceResponse{
		Balance:  balance.Amount().String(),
		Currency: string(balance.Currency()),
	})
}

// RecordDeposit handles POST /cash/deposits
func (h *CashHandler) RecordDeposit(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	var req CashMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	line, err := h.service.RecordDeposit(c.Request.Context(), financeapp.RecordDepositRequest{
		Amount:      req.Amount,
		Description: req.Description,
		RecordedBy:  userID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toCashTransactionResponse(line))
}

// RecordExpense handles POST /cash/expenses
func (h *CashHandler) RecordExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	var req CashMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	line, err := h.service.RecordExpense(c.Request.Context(), financeapp.RecordExpenseRequest{
		Amount:      req.Amount,
		Description: req.Description,
		RecordedBy:  userID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toCashTransactionResponse(line))
}

// ListTransactions handles GET /cash/transactions
func (h *CashHandler) ListTransactions(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	req.Normalize()

	lines, err := h.service.ListTransactions(c.Request.Context(), shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]CashTransactionResponse, len(lines))
	for i := range lines {
		responses[i] = toCashTransactionResponse(&lines[i])
	}

	h.Success(c, responses)
}

// GetDaybook handles GET /cash/daybook?date=YYYY-MM-DD
func (h *CashHandler) GetDaybook(c *gin.Context) {
	dateStr := c.DefaultQuery("date", time.Now().Format("2006-01-02"))
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		h.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
		return
	}

	entries, err := h.service.Daybook(c.Request.Context(), date)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]DaybookEntryResponse, len(entries))
	for i := range entries {
		responses[i] = toDaybookEntryResponse(&entries[i])
	}

	h.Success(c, responses)
}
