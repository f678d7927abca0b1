package procurement

import (
	"context"
	"testing"

	domainproc "github.com/kahawa/backend/internal/domain/procurement"
	"github.com/kahawa/backend/internal/domain/shared"
	"github.com/kahawa/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type passthroughTxManager struct{}

func (passthroughTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type MockBatchRepository struct {
	mock.Mock
}

func (m *MockBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*domainproc.CoffeeBatch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainproc.CoffeeBatch), args.Error(1)
}

func (m *MockBatchRepository) FindByBatchNumber(ctx context.Context, batchNumber string) (*domainproc.CoffeeBatch, error) {
	args := m.Called(ctx, batchNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainproc.CoffeeBatch), args.Error(1)
}

func (m *MockBatchRepository) FindAll(ctx context.Context, filter domainproc.CoffeeBatchFilter) ([]domainproc.CoffeeBatch, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domainproc.CoffeeBatch), args.Error(1)
}

func (m *MockBatchRepository) Save(ctx context.Context, batch *domainproc.CoffeeBatch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *MockBatchRepository) SaveWithLock(ctx context.Context, batch *domainproc.CoffeeBatch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *MockBatchRepository) Count(ctx context.Context, filter domainproc.CoffeeBatchFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBatchRepository) GenerateBatchNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type MockAssessmentRepository struct {
	mock.Mock
}

func (m *MockAssessmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domainproc.QualityAssessment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainproc.QualityAssessment), args.Error(1)
}

func (m *MockAssessmentRepository) FindByBatchID(ctx context.Context, batchID uuid.UUID) (*domainproc.QualityAssessment, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainproc.QualityAssessment), args.Error(1)
}

func (m *MockAssessmentRepository) FindByStatus(ctx context.Context, status domainproc.AssessmentStatus, filter shared.Filter) ([]domainproc.QualityAssessment, error) {
	args := m.Called(ctx, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domainproc.QualityAssessment), args.Error(1)
}

func (m *MockAssessmentRepository) Save(ctx context.Context, assessment *domainproc.QualityAssessment) error {
	args := m.Called(ctx, assessment)
	return args.Error(0)
}

func (m *MockAssessmentRepository) SaveWithLock(ctx context.Context, assessment *domainproc.QualityAssessment) error {
	args := m.Called(ctx, assessment)
	return args.Error(0)
}

type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*domainproc.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainproc.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindByCode(ctx context.Context, code string) (*domainproc.Supplier, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainproc.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindAll(ctx context.Context, filter shared.Filter) ([]domainproc.Supplier, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domainproc.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) Save(ctx context.Context, supplier *domainproc.Supplier) error {
	args := m.Called(ctx, supplier)
	return args.Error(0)
}

func newIntakeService(batchRepo *MockBatchRepository, assessmentRepo *MockAssessmentRepository, supplierRepo *MockSupplierRepository) *IntakeService {
	return NewIntakeService(batchRepo, assessmentRepo, supplierRepo, passthroughTxManager{}, nil, zap.NewNop())
}

func TestIntakeService_RegisterBatch(t *testing.T) {
	t.Run("registers a batch for an active supplier", func(t *testing.T) {
		batchRepo := new(MockBatchRepository)
		supplierRepo := new(MockSupplierRepository)
		svc := newIntakeService(batchRepo, new(MockAssessmentRepository), supplierRepo)

		supplier, err := domainproc.NewSupplier("SUP-001", "Kyagalanyi Estate", "+256700000001", "Masaka")
		require.NoError(t, err)

		supplierRepo.On("FindByID", mock.Anything, supplier.ID).Return(supplier, nil)
		batchRepo.On("GenerateBatchNumber", mock.Anything).Return("CF-007", nil)
		batchRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		batch, err := svc.RegisterBatch(context.Background(), RegisterBatchRequest{
			SupplierID: supplier.ID,
			CoffeeType: domainproc.CoffeeTypeArabica,
			WeightKg:   decimal.NewFromInt(850),
			BagCount:   17,
		})
		require.NoError(t, err)

		assert.Equal(t, "CF-007", batch.BatchNumber)
		assert.Equal(t, domainproc.BatchStatusReceived, batch.Status)
		assert.Equal(t, supplier.Name, batch.SupplierName)
	})

	t.Run("deactivated supplier cannot deliver", func(t *testing.T) {
		batchRepo := new(MockBatchRepository)
		supplierRepo := new(MockSupplierRepository)
		svc := newIntakeService(batchRepo, new(MockAssessmentRepository), supplierRepo)

		supplier, err := domainproc.NewSupplier("SUP-002", "Walkover Farm", "", "Mbale")
		require.NoError(t, err)
		supplier.Deactivate()

		supplierRepo.On("FindByID", mock.Anything, supplier.ID).Return(supplier, nil)

		_, err = svc.RegisterBatch(context.Background(), RegisterBatchRequest{
			SupplierID: supplier.ID,
			CoffeeType: domainproc.CoffeeTypeRobusta,
			WeightKg:   decimal.NewFromInt(100),
			BagCount:   2,
		})
		require.Error(t, err)
		batchRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestIntakeService_RecordAssessment(t *testing.T) {
	receivedBatch := func(t *testing.T) *domainproc.CoffeeBatch {
		t.Helper()
		b, err := domainproc.NewCoffeeBatch("CF-008", uuid.New(), "Bugisu Co-op",
			domainproc.CoffeeTypeArabica, decimal.NewFromInt(400), 8)
		require.NoError(t, err)
		b.ClearDomainEvents()
		return b
	}

	t.Run("queues the price and leaves the batch received", func(t *testing.T) {
		batchRepo := new(MockBatchRepository)
		assessmentRepo := new(MockAssessmentRepository)
		svc := newIntakeService(batchRepo, assessmentRepo, new(MockSupplierRepository))
		batch := receivedBatch(t)

		batchRepo.On("FindByID", mock.Anything, batch.ID).Return(batch, nil)
		assessmentRepo.On("FindByBatchID", mock.Anything, batch.ID).Return(nil, nil)
		assessmentRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		qa, err := svc.RecordAssessment(context.Background(), RecordAssessmentRequest{
			BatchID:            batch.ID,
			MoisturePct:        decimal.NewFromFloat(11.5),
			DefectPct:          decimal.NewFromFloat(1.8),
			Outturn:            decimal.NewFromFloat(83.0),
			SuggestedUnitPrice: decimal.NewFromInt(9200),
			SubmittedBy:        uuid.New(),
		})
		require.NoError(t, err)

		// Grading is a pricing decision; the batch stays RECEIVED until the
		// admin approves or rejects the price.
		assert.Equal(t, domainproc.AssessmentStatusPendingPricing, qa.Status)
		assert.Equal(t, domainproc.BatchStatusReceived, batch.Status)
		batchRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("a rejected batch cannot be assessed", func(t *testing.T) {
		batchRepo := new(MockBatchRepository)
		assessmentRepo := new(MockAssessmentRepository)
		svc := newIntakeService(batchRepo, assessmentRepo, new(MockSupplierRepository))
		batch := receivedBatch(t)
		require.NoError(t, batch.MarkRejected())

		batchRepo.On("FindByID", mock.Anything, batch.ID).Return(batch, nil)

		_, err := svc.RecordAssessment(context.Background(), RecordAssessmentRequest{
			BatchID:            batch.ID,
			MoisturePct:        decimal.NewFromFloat(11.5),
			DefectPct:          decimal.NewFromFloat(1.8),
			Outturn:            decimal.NewFromFloat(83.0),
			SuggestedUnitPrice: decimal.NewFromInt(9200),
			SubmittedBy:        uuid.New(),
		})
		require.Error(t, err)
		assessmentRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("a batch cannot be graded twice", func(t *testing.T) {
		batchRepo := new(MockBatchRepository)
		assessmentRepo := new(MockAssessmentRepository)
		svc := newIntakeService(batchRepo, assessmentRepo, new(MockSupplierRepository))
		batch := receivedBatch(t)

		existing, err := domainproc.NewQualityAssessment(batch.ID, batch.BatchNumber,
			decimal.NewFromInt(12), decimal.NewFromInt(3), decimal.NewFromInt(80),
			valueobject.NewMoneyUGXFromInt(9000), uuid.New())
		require.NoError(t, err)

		batchRepo.On("FindByID", mock.Anything, batch.ID).Return(batch, nil)
		assessmentRepo.On("FindByBatchID", mock.Anything, batch.ID).Return(existing, nil)

		_, err = svc.RecordAssessment(context.Background(), RecordAssessmentRequest{
			BatchID:            batch.ID,
			MoisturePct:        decimal.NewFromInt(12),
			DefectPct:          decimal.NewFromInt(3),
			Outturn:            decimal.NewFromInt(80),
			SuggestedUnitPrice: decimal.NewFromInt(9000),
			SubmittedBy:        uuid.New(),
		})
		require.Error(t, err)
		assessmentRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}
