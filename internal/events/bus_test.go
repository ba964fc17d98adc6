package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/kashvi-silver/backend-kashvi/internal/events"
)

type stubStore struct {
	lastTopic     string
	lastAggregate uuid.UUID
	lastPayload   []byte
}

func (s *stubStore) InsertEvent(_ context.Context, topic string, aggregateID uuid.UUID, payload []byte) (events.Event, error) {
	s.lastTopic = topic
	s.lastAggregate = aggregateID
	s.lastPayload = payload
	return events.Event{
		ID:          uuid.New(),
		Topic:       topic,
		AggregateID: aggregateID,
		Payload:     payload,
		OccurredAt:  time.Now(),
	}, nil
}

type captureNotifier struct {
	events []events.Event
	err    error
}

func (c *captureNotifier) Notify(_ context.Context, event events.Event) error {
	c.events = append(c.events, event)
	return c.err
}

func TestEmitPersistsEvent(t *testing.T) {
	store := &stubStore{}
	notifier := &captureNotifier{}
	bus := events.Bus{Store: store, Notifiers: []events.Notifier{notifier}}

	aggregate := uuid.New()
	payload := map[string]any{"orderNumber": "ORD-1A2B3C"}
	event, err := bus.Emit(context.Background(), events.TopicOrderCreated, aggregate, payload)
	require.NoError(t, err)
	require.Equal(t, events.TopicOrderCreated, store.lastTopic)
	require.Equal(t, aggregate, store.lastAggregate)
	require.JSONEq(t, `{"orderNumber":"ORD-1A2B3C"}`, string(store.lastPayload))
	require.Len(t, notifier.events, 1)
	require.Equal(t, event.ID, notifier.events[0].ID)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(event.Payload, &decoded))
	require.Equal(t, "ORD-1A2B3C", decoded["orderNumber"])
}

func TestEmitNotifierFailureDoesNotDropEvent(t *testing.T) {
	store := &stubStore{}
	failing := &captureNotifier{err: errors.New("smtp down")}
	ok := &captureNotifier{}
	bus := events.Bus{Store: store, Notifiers: []events.Notifier{failing, ok}}

	event, err := bus.Emit(context.Background(), events.TopicOrderStatusChanged, uuid.New(), nil)
	require.Error(t, err)
	require.NotEqual(t, uuid.Nil, event.ID)
	require.Len(t, ok.events, 1)
}

func TestEmitRejectsEmptyTopic(t *testing.T) {
	bus := events.Bus{Store: &stubStore{}}
	_, err := bus.Emit(context.Background(), "  ", uuid.New(), nil)
	require.Error(t, err)
}
