package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kahawa/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

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

func pendingEntry(t *testing.T, serializer *EventSerializer) *shared.OutboxEntry {
	t.Helper()
	event := completedEvent(t)
	payload, err := serializer.Serialize(event)
	require.NoError(t, err)
	return shared.NewOutboxEntry(event, payload)
}

func TestOutboxProcessor_ProcessBatch(t *testing.T) {
	t.Run("delivers a pending entry and marks it sent", func(t *testing.T) {
		serializer := NewEventSerializer()
		repo := new(MockOutboxRepository)
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{types: []string{"PaymentCompleted"}}
		bus.Subscribe(handler)

		entry := pendingEntry(t, serializer)
		repo.On("FindPending", mock.Anything, 100).Return([]*shared.OutboxEntry{entry}, nil)
		repo.On("FindRetryable", mock.Anything, mock.Anything, 100).Return([]*shared.OutboxEntry{}, nil)
		repo.On("MarkProcessing", mock.Anything, []uuid.UUID{entry.ID}).Return([]*shared.OutboxEntry{entry}, nil)
		repo.On("Update", mock.Anything, entry).Return(nil)

		processor := NewOutboxProcessor(repo, bus, serializer, DefaultOutboxProcessorConfig(), zap.NewNop())
		processor.ProcessBatch(context.Background())

		assert.Len(t, handler.events, 1)
		assert.Equal(t, shared.OutboxStatusSent, entry.Status)
		require.NotNil(t, entry.ProcessedAt)
	})

	t.Run("handler failure schedules a retry with backoff", func(t *testing.T) {
		serializer := NewEventSerializer()
		repo := new(MockOutboxRepository)
		bus := NewInMemoryEventBus(zap.NewNop())
		bus.Subscribe(&recordingHandler{types: []string{"PaymentCompleted"}, err: errors.New("sms gateway timeout")})

		entry := pendingEntry(t, serializer)
		repo.On("FindPending", mock.Anything, 100).Return([]*shared.OutboxEntry{entry}, nil)
		repo.On("FindRetryable", mock.Anything, mock.Anything, 100).Return([]*shared.OutboxEntry{}, nil)
		repo.On("MarkProcessing", mock.Anything, []uuid.UUID{entry.ID}).Return([]*shared.OutboxEntry{entry}, nil)
		repo.On("Update", mock.Anything, entry).Return(nil)

		processor := NewOutboxProcessor(repo, bus, serializer, DefaultOutboxProcessorConfig(), zap.NewNop())
		processor.ProcessBatch(context.Background())

		assert.Equal(t, shared.OutboxStatusFailed, entry.Status)
		assert.Equal(t, 1, entry.RetryCount)
		assert.Contains(t, entry.LastError, "sms gateway timeout")
		require.NotNil(t, entry.NextRetryAt)
	})

	t.Run("exhausted retries move the entry to the dead letter queue", func(t *testing.T) {
		serializer := NewEventSerializer()
		repo := new(MockOutboxRepository)
		bus := NewInMemoryEventBus(zap.NewNop())
		bus.Subscribe(&recordingHandler{types: []string{"PaymentCompleted"}, err: errors.New("still down")})

		entry := pendingEntry(t, serializer)
		entry.RetryCount = entry.MaxRetries - 1
		entry.Status = shared.OutboxStatusFailed

		repo.On("FindPending", mock.Anything, 100).Return([]*shared.OutboxEntry{}, nil)
		repo.On("FindRetryable", mock.Anything, mock.Anything, 100).Return([]*shared.OutboxEntry{entry}, nil)
		repo.On("MarkProcessing", mock.Anything, []uuid.UUID{entry.ID}).Return([]*shared.OutboxEntry{entry}, nil)
		repo.On("Update", mock.Anything, entry).Return(nil)

		processor := NewOutboxProcessor(repo, bus, serializer, DefaultOutboxProcessorConfig(), zap.NewNop())
		processor.ProcessBatch(context.Background())

		assert.True(t, entry.IsDead())
	})

	t.Run("unknown event types fail instead of panicking", func(t *testing.T) {
		serializer := NewEventSerializer()
		repo := new(MockOutboxRepository)
		bus := NewInMemoryEventBus(zap.NewNop())

		entry := pendingEntry(t, serializer)
		entry.EventType = "SomethingUnmapped"

		repo.On("FindPending", mock.Anything, 100).Return([]*shared.OutboxEntry{entry}, nil)
		repo.On("FindRetryable", mock.Anything, mock.Anything, 100).Return([]*shared.OutboxEntry{}, nil)
		repo.On("MarkProcessing", mock.Anything, []uuid.UUID{entry.ID}).Return([]*shared.OutboxEntry{entry}, nil)
		repo.On("Update", mock.Anything, entry).Return(nil)

		processor := NewOutboxProcessor(repo, bus, serializer, DefaultOutboxProcessorConfig(), zap.NewNop())
		processor.ProcessBatch(context.Background())

		assert.Equal(t, shared.OutboxStatusFailed, entry.Status)
		assert.Contains(t, entry.LastError, "unknown event type")
	})
}

func TestEventSerializer_RoundTrip(t *testing.T) {
	serializer := NewEventSerializer()
	event := completedEvent(t)

	payload, err := serializer.Serialize(event)
	require.NoError(t, err)

	restored, err := serializer.Deserialize("PaymentCompleted", payload)
	require.NoError(t, err)
	assert.Equal(t, "PaymentCompleted", restored.EventType())
}
