package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	BaseDomainEvent
}

func newTestEvent() *testEvent {
	return &testEvent{
		BaseDomainEvent: NewBaseDomainEvent("TestEvent", "TestAggregate", uuid.New()),
	}
}

func TestNewOutboxEntry(t *testing.T) {
	event := newTestEvent()
	payload := []byte(`{"foo":"bar"}`)

	entry := NewOutboxEntry(event, payload)

	assert.Equal(t, event.EventID(), entry.EventID)
	assert.Equal(t, "TestEvent", entry.EventType)
	assert.Equal(t, event.AggregateID(), entry.AggregateID)
	assert.Equal(t, "TestAggregate", entry.AggregateType)
	assert.Equal(t, payload, entry.Payload)
	assert.Equal(t, OutboxStatusPending, entry.Status)
	assert.Equal(t, 0, entry.RetryCount)
	assert.Equal(t, DefaultMaxRetries, entry.MaxRetries)
}

func TestOutboxEntry_MarkProcessing(t *testing.T) {
	t.Run("pending entry can be marked processing", func(t *testing.T) {
		entry := NewOutboxEntry(newTestEvent(), nil)
		require.NoError(t, entry.MarkProcessing())
		assert.Equal(t, OutboxStatusProcessing, entry.Status)
	})

	t.Run("sent entry cannot be marked processing", func(t *testing.T) {
		entry := NewOutboxEntry(newTestEvent(), nil)
		entry.MarkSent()
		assert.Error(t, entry.MarkProcessing())
	})
}

func TestOutboxEntry_MarkFailed(t *testing.T) {
	t.Run("schedules retry with exponential backoff", func(t *testing.T) {
		entry := NewOutboxEntry(newTestEvent(), nil)

		entry.MarkFailed("boom")

		assert.Equal(t, OutboxStatusFailed, entry.Status)
		assert.Equal(t, 1, entry.RetryCount)
		assert.Equal(t, "boom", entry.LastError)
		require.NotNil(t, entry.NextRetryAt)
		assert.True(t, entry.CanRetry())

		first := *entry.NextRetryAt
		entry.MarkFailed("boom again")
		require.NotNil(t, entry.NextRetryAt)
		// Second backoff (2s) is longer than the first (1s).
		assert.True(t, entry.NextRetryAt.After(first))
	})

	t.Run("moves to dead letter after max retries", func(t *testing.T) {
		entry := NewOutboxEntry(newTestEvent(), nil)
		for i := 0; i < DefaultMaxRetries; i++ {
			entry.MarkFailed("still failing")
		}

		assert.Equal(t, OutboxStatusDead, entry.Status)
		assert.True(t, entry.IsDead())
		assert.False(t, entry.CanRetry())
	})
}

func TestOutboxEntry_MarkSent(t *testing.T) {
	entry := NewOutboxEntry(newTestEvent(), nil)

	entry.MarkSent()

	assert.Equal(t, OutboxStatusSent, entry.Status)
	require.NotNil(t, entry.ProcessedAt)
	assert.WithinDuration(t, time.Now(), *entry.ProcessedAt, time.Second)
}

func TestOutboxEntry_ResetForRetry(t *testing.T) {
	t.Run("dead entry can be reset", func(t *testing.T) {
		entry := NewOutboxEntry(newTestEvent(), nil)
		for i := 0; i < DefaultMaxRetries; i++ {
			entry.MarkFailed("failing")
		}
		require.True(t, entry.IsDead())

		require.NoError(t, entry.ResetForRetry())

		assert.Equal(t, OutboxStatusPending, entry.Status)
		assert.Equal(t, 0, entry.RetryCount)
		assert.Empty(t, entry.LastError)
		assert.Nil(t, entry.NextRetryAt)
	})

	t.Run("pending entry cannot be reset", func(t *testing.T) {
		entry := NewOutboxEntry(newTestEvent(), nil)
		assert.Error(t, entry.ResetForRetry())
	})
}
