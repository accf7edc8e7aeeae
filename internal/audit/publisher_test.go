package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memberlink/internal/platform/kafka/producer"
)

func TestPublisherSyncFillsDefaults(t *testing.T) {
	store := NewInMemoryStore()
	p := NewPublisher(store)

	require.NoError(t, p.Emit(context.Background(), Event{Action: EventMemberLinked, RunID: "run-1", Email: "bob@example.com"}))

	events, err := p.ListByRun(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.NotEmpty(t, events[0].ID)
	assert.False(t, events[0].Timestamp.IsZero())

	byEmail, err := store.ListByEmail(context.Background(), "bob@example.com")
	require.NoError(t, err)
	assert.Len(t, byEmail, 1)
}

func TestPublisherAsyncDrainsOnClose(t *testing.T) {
	store := NewInMemoryStore()
	p := NewPublisher(store, WithAsyncBuffer(16))
	for range 5 {
		require.NoError(t, p.Emit(context.Background(), Event{Action: EventSyncRunCompleted}))
	}
	p.Close()
	assert.Len(t, store.All(), 5)
}

type appendOnly struct{}

func (appendOnly) Append(context.Context, Event) error { return nil }

func TestListByRunUnsupported(t *testing.T) {
	_, err := NewPublisher(appendOnly{}).ListByRun(context.Background(), "x")
	assert.ErrorIs(t, err, errListUnsupported)
}

type recordingProducer struct {
	msgs []*producer.Message
	err  error
}

func (r *recordingProducer) Produce(_ context.Context, msg *producer.Message) error {
	r.msgs = append(r.msgs, msg)
	return r.err
}

func TestKafkaStore(t *testing.T) {
	t.Run("keys by email and tags the event type", func(t *testing.T) {
		rp := &recordingProducer{}
		store := NewKafkaStore(rp, "identity.audit")
		require.NoError(t, store.Append(context.Background(), Event{ID: "e1", Action: EventAccountInvited, Email: "alice@example.com"}))

		require.Len(t, rp.msgs, 1)
		msg := rp.msgs[0]
		assert.Equal(t, "identity.audit", msg.Topic)
		assert.Equal(t, "alice@example.com", string(msg.Key))
		assert.Equal(t, "account_invited", msg.Headers["event_type"])

		var decoded Event
		require.NoError(t, json.Unmarshal(msg.Value, &decoded))
		assert.Equal(t, EventAccountInvited, decoded.Action)
	})

	t.Run("run events key by run id", func(t *testing.T) {
		rp := &recordingProducer{}
		require.NoError(t, NewKafkaStore(rp, "t").Append(context.Background(), Event{Action: EventSyncRunCompleted, RunID: "run-9"}))
		assert.Equal(t, "run-9", string(rp.msgs[0].Key))
	})

	t.Run("wraps producer errors", func(t *testing.T) {
		rp := &recordingProducer{err: errors.New("broker down")}
		err := NewKafkaStore(rp, "t").Append(context.Background(), Event{Action: EventSyncRunCompleted})
		assert.ErrorContains(t, err, "broker down")
	})
}
