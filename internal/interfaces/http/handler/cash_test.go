package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	financeapp "github.com/kahawa/backend/internal/application/finance"
	"github.com/kahawa/backend/internal/domain/finance"
	"github.com/kahawa/backend/internal/domain/shared"
	"github.com/kahawa/backend/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// passthroughTxManager runs the function without a real transaction
type passthroughTxManager struct{}

func (passthroughTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type MockCashBalanceRepository struct {
	mock.Mock
}

func (m *MockCashBalanceRepository) Get(ctx context.Context) (*finance.CashBalance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.CashBalance), args.Error(1)
}

func (m *MockCashBalanceRepository) Save(ctx context.Context, balance *finance.CashBalance) error {
	args := m.Called(ctx, balance)
	return args.Error(0)
}

func (m *MockCashBalanceRepository) SaveWithLock(ctx context.Context, balance *finance.CashBalance) error {
	args := m.Called(ctx, balance)
	return args.Error(0)
}

type MockCashTransactionRepository struct {
	mock.Mock
}

func (m *MockCashTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.CashTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.CashTransaction), args.Error(1)
}

func (m *MockCashTransactionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.CashTransaction, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]finance.CashTransaction), args.Error(1)
}

func (m *MockCashTransactionRepository) FindByDateRange(ctx context.Context, from, to time.Time) ([]finance.CashTransaction, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]finance.CashTransaction), args.Error(1)
}

func (m *MockCashTransactionRepository) Save(ctx context.Context, tx *finance.CashTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockCashTransactionRepository) SumConfirmed(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockDaybookRepository struct {
	mock.Mock
}

func (m *MockDaybookRepository) Save(ctx context.Context, entry *finance.DaybookEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockDaybookRepository) FindByDate(ctx context.Context, date time.Time) ([]finance.DaybookEntry, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]finance.DaybookEntry), args.Error(1)
}

func newCashTestServer(balanceRepo *MockCashBalanceRepository, cashTxRepo *MockCashTransactionRepository, daybookRepo *MockDaybookRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)

	service := financeapp.NewCashBalanceService(balanceRepo, cashTxRepo, daybookRepo, passthroughTxManager{}, zap.NewNop())
	handler := NewCashHandler(service)

	engine := gin.New()
	handler.RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func fundedBalance(t *testing.T, amount int64) *finance.CashBalance {
	t.Helper()
	balance := finance.NewCashBalance()
	require.NoError(t, balance.Credit(valueobject.NewMoneyUGXFromInt(amount)))
	return balance
}

func TestCashHandler_GetBalance(t *testing.T) {
	t.Run("returns the projection balance", func(t *testing.T) {
		balanceRepo := new(MockCashBalanceRepository)
		cashTxRepo := new(MockCashTransactionRepository)
		daybookRepo := new(MockDaybookRepository)
		balanceRepo.On("Get", mock.Anything).Return(fundedBalance(t, 750000), nil)

		engine := newCashTestServer(balanceRepo, cashTxRepo, daybookRepo)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cash/balance", nil)
		engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Success bool            `json:"success"`
			Data    BalanceResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "750000", resp.Data.Balance)
		assert.Equal(t, "UGX", resp.Data.Currency)
	})

	t.Run("falls back to the ledger sum when no projection exists", func(t *testing.T) {
		balanceRepo := new(MockCashBalanceRepository)
		cashTxRepo := new(MockCashTransactionRepository)
		daybookRepo := new(MockDaybookRepository)
		balanceRepo.On("Get", mock.Anything).Return(nil, nil)
		cashTxRepo.On("SumConfirmed", mock.Anything).Return(decimal.NewFromInt(120000), nil)

		engine := newCashTestServer(balanceRepo, cashTxRepo, daybookRepo)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cash/balance", nil)
		engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "120000")
	})
}

func TestCashHandler_RecordDeposit(t *testing.T) {
	t.Run("credits the drawer and returns the ledger line", func(t *testing.T) {
		balanceRepo := new(MockCashBalanceRepository)
		cashTxRepo := new(MockCashTransactionRepository)
		daybookRepo := new(MockDaybookRepository)
		balanceRepo.On("Get", mock.Anything).Return(fundedBalance(t, 100000), nil)
		balanceRepo.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil)
		cashTxRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		daybookRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		engine := newCashTestServer(balanceRepo, cashTxRepo, daybookRepo)

		body, _ := json.Marshal(CashMovementRequest{
			Amount:      decimal.NewFromInt(50000),
			Description: "Morning float",
		})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cash/deposits", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", uuid.NewString())
		engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			Data CashTransactionResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "DEPOSIT", resp.Data.Type)
		assert.Equal(t, "50000", resp.Data.Amount)
		assert.Equal(t, "150000", resp.Data.BalanceAfter)

		balanceRepo.AssertExpectations(t)
		cashTxRepo.AssertExpectations(t)
	})

	t.Run("requires the acting user header", func(t *testing.T) {
		engine := newCashTestServer(new(MockCashBalanceRepository), new(MockCashTransactionRepository), new(MockDaybookRepository))

		body, _ := json.Marshal(CashMovementRequest{
			Amount:      decimal.NewFromInt(50000),
			Description: "Morning float",
		})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cash/deposits", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestCashHandler_RecordExpense(t *testing.T) {
	t.Run("refuses an expense beyond the drawer balance", func(t *testing.T) {
		balanceRepo := new(MockCashBalanceRepository)
		cashTxRepo := new(MockCashTransactionRepository)
		daybookRepo := new(MockDaybookRepository)
		balanceRepo.On("Get", mock.Anything).Return(fundedBalance(t, 10000), nil)

		engine := newCashTestServer(balanceRepo, cashTxRepo, daybookRepo)

		body, _ := json.Marshal(CashMovementRequest{
			Amount:      decimal.NewFromInt(500000),
			Description: "Generator fuel",
		})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cash/expenses", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", uuid.NewString())
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "INSUFFICIENT_FUNDS")

		balanceRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
		cashTxRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}
