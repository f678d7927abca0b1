package finance

import (
	"context"
	"time"

	domainfinance "github.com/kahawa/backend/internal/domain/finance"
	"github.com/kahawa/backend/internal/domain/procurement"
	"github.com/kahawa/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// passthroughTxManager runs the function directly, standing in for a real
// database transaction in service tests.
type passthroughTxManager struct{}

func (passthroughTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type MockAssessmentRepository struct {
	mock.Mock
}

func (m *MockAssessmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.QualityAssessment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.QualityAssessment), args.Error(1)
}

func (m *MockAssessmentRepository) FindByBatchID(ctx context.Context, batchID uuid.UUID) (*procurement.QualityAssessment, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.QualityAssessment), args.Error(1)
}

func (m *MockAssessmentRepository) FindByStatus(ctx context.Context, status procurement.AssessmentStatus, filter shared.Filter) ([]procurement.QualityAssessment, error) {
	args := m.Called(ctx, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.QualityAssessment), args.Error(1)
}

func (m *MockAssessmentRepository) Save(ctx context.Context, assessment *procurement.QualityAssessment) error {
	args := m.Called(ctx, assessment)
	return args.Error(0)
}

func (m *MockAssessmentRepository) SaveWithLock(ctx context.Context, assessment *procurement.QualityAssessment) error {
	args := m.Called(ctx, assessment)
	return args.Error(0)
}

type MockBatchRepository struct {
	mock.Mock
}

func (m *MockBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.CoffeeBatch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.CoffeeBatch), args.Error(1)
}

func (m *MockBatchRepository) FindByBatchNumber(ctx context.Context, batchNumber string) (*procurement.CoffeeBatch, error) {
	args := m.Called(ctx, batchNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.CoffeeBatch), args.Error(1)
}

func (m *MockBatchRepository) FindAll(ctx context.Context, filter procurement.CoffeeBatchFilter) ([]procurement.CoffeeBatch, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.CoffeeBatch), args.Error(1)
}

func (m *MockBatchRepository) Save(ctx context.Context, batch *procurement.CoffeeBatch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *MockBatchRepository) SaveWithLock(ctx context.Context, batch *procurement.CoffeeBatch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *MockBatchRepository) Count(ctx context.Context, filter procurement.CoffeeBatchFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBatchRepository) GenerateBatchNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindByCode(ctx context.Context, code string) (*procurement.Supplier, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindAll(ctx context.Context, filter shared.Filter) ([]procurement.Supplier, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) Save(ctx context.Context, supplier *procurement.Supplier) error {
	args := m.Called(ctx, supplier)
	return args.Error(0)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domainfinance.PaymentRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainfinance.PaymentRecord), args.Error(1)
}

func (m *MockPaymentRepository) FindByBatchID(ctx context.Context, batchID uuid.UUID) (*domainfinance.PaymentRecord, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainfinance.PaymentRecord), args.Error(1)
}

func (m *MockPaymentRepository) FindAll(ctx context.Context, filter domainfinance.PaymentRecordFilter) ([]domainfinance.PaymentRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domainfinance.PaymentRecord), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *domainfinance.PaymentRecord) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) SaveWithLock(ctx context.Context, payment *domainfinance.PaymentRecord) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) GeneratePaymentNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type MockCashTransactionRepository struct {
	mock.Mock
}

func (m *MockCashTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domainfinance.CashTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainfinance.CashTransaction), args.Error(1)
}

func (m *MockCashTransactionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]domainfinance.CashTransaction, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domainfinance.CashTransaction), args.Error(1)
}

func (m *MockCashTransactionRepository) FindByDateRange(ctx context.Context, from, to time.Time) ([]domainfinance.CashTransaction, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domainfinance.CashTransaction), args.Error(1)
}

func (m *MockCashTransactionRepository) Save(ctx context.Context, tx *domainfinance.CashTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockCashTransactionRepository) SumConfirmed(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockCashBalanceRepository struct {
	mock.Mock
}

func (m *MockCashBalanceRepository) Get(ctx context.Context) (*domainfinance.CashBalance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainfinance.CashBalance), args.Error(1)
}

func (m *MockCashBalanceRepository) Save(ctx context.Context, balance *domainfinance.CashBalance) error {
	args := m.Called(ctx, balance)
	return args.Error(0)
}

func (m *MockCashBalanceRepository) SaveWithLock(ctx context.Context, balance *domainfinance.CashBalance) error {
	args := m.Called(ctx, balance)
	return args.Error(0)
}

type MockAdvanceRepository struct {
	mock.Mock
}

func (m *MockAdvanceRepository) FindByID(ctx context.Context, id uuid.UUID) (*domainfinance.SupplierAdvance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainfinance.SupplierAdvance), args.Error(1)
}

func (m *MockAdvanceRepository) FindOpenBySupplier(ctx context.Context, supplierID uuid.UUID) ([]*domainfinance.SupplierAdvance, error) {
	args := m.Called(ctx, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domainfinance.SupplierAdvance), args.Error(1)
}

func (m *MockAdvanceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]domainfinance.SupplierAdvance, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domainfinance.SupplierAdvance), args.Error(1)
}

func (m *MockAdvanceRepository) Save(ctx context.Context, advance *domainfinance.SupplierAdvance) error {
	args := m.Called(ctx, advance)
	return args.Error(0)
}

func (m *MockAdvanceRepository) SaveWithLock(ctx context.Context, advance *domainfinance.SupplierAdvance) error {
	args := m.Called(ctx, advance)
	return args.Error(0)
}

type MockApprovalRepository struct {
	mock.Mock
}

func (m *MockApprovalRepository) FindByID(ctx context.Context, id uuid.UUID) (*domainfinance.ApprovalRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainfinance.ApprovalRequest), args.Error(1)
}

func (m *MockApprovalRepository) FindPending(ctx context.Context, reqType *domainfinance.ApprovalRequestType, filter shared.Filter) ([]domainfinance.ApprovalRequest, error) {
	args := m.Called(ctx, reqType, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domainfinance.ApprovalRequest), args.Error(1)
}

func (m *MockApprovalRepository) FindBySubject(ctx context.Context, subjectID uuid.UUID) ([]domainfinance.ApprovalRequest, error) {
	args := m.Called(ctx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domainfinance.ApprovalRequest), args.Error(1)
}

func (m *MockApprovalRepository) Save(ctx context.Context, request *domainfinance.ApprovalRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockApprovalRepository) SaveWithLock(ctx context.Context, request *domainfinance.ApprovalRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

type MockDaybookRepository struct {
	mock.Mock
}

func (m *MockDaybookRepository) Save(ctx context.Context, entry *domainfinance.DaybookEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockDaybookRepository) FindByDate(ctx context.Context, date time.Time) ([]domainfinance.DaybookEntry, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domainfinance.DaybookEntry), args.Error(1)
}

type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) Save(ctx context.Context, entries ...*shared.OutboxEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockOutboxRepository) FindPending(ctx context.Context, limit int) ([]*shared.OutboxEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*shared.OutboxEntry), args.Error(1)
}

func (m *MockOutboxRepository) FindRetryable(ctx context.Context, before time.Time, limit int) ([]*shared.OutboxEntry, error) {
	args := m.Called(ctx, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*shared.OutboxEntry), args.Error(1)
}

func (m *MockOutboxRepository) FindDead(ctx context.Context, page, pageSize int) ([]*shared.OutboxEntry, int64, error) {
	args := m.Called(ctx, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*shared.OutboxEntry), args.Get(1).(int64), args.Error(2)
}

func (m *MockOutboxRepository) FindByID(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.OutboxEntry), args.Error(1)
}

func (m *MockOutboxRepository) MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*shared.OutboxEntry, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*shared.OutboxEntry), args.Error(1)
}

func (m *MockOutboxRepository) Update(ctx context.Context, entry *shared.OutboxEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockOutboxRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOutboxRepository) CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[shared.OutboxStatus]int64), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendSMS(ctx context.Context, phone, message string) error {
	args := m.Called(ctx, phone, message)
	return args.Error(0)
}

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, eventID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
