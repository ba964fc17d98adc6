package notify_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/kashvi-silver/backend-kashvi/internal/common"
	"github.com/kashvi-silver/backend-kashvi/internal/events"
	"github.com/kashvi-silver/backend-kashvi/internal/notify"
)

func TestNotifySendsOrderConfirmation(t *testing.T) {
	mail := &common.InMemoryEmail{}
	n := notify.EmailNotifier{Mail: mail, Enabled: true}

	err := n.Notify(context.Background(), events.Event{
		ID:          uuid.New(),
		Topic:       events.TopicOrderCreated,
		AggregateID: uuid.New(),
		Payload:     []byte(`{"email":"buyer@example.com","orderNumber":"ORD-1A2B3C","total":948}`),
		OccurredAt:  time.Now(),
	})
	require.NoError(t, err)
	require.Len(t, mail.Outbox, 1)
	require.Equal(t, "buyer@example.com", mail.Outbox[0].To)
	require.Equal(t, "Order ORD-1A2B3C confirmed", mail.Outbox[0].Subject)
	require.Contains(t, mail.Outbox[0].HTML, "ORD-1A2B3C")
}

func TestNotifySkipsWithoutRecipient(t *testing.T) {
	mail := &common.InMemoryEmail{}
	n := notify.EmailNotifier{Mail: mail, Enabled: true}

	err := n.Notify(context.Background(), events.Event{
		Topic:   events.TopicRateUpdated,
		Payload: []byte(`{"ratePerGram":80}`),
	})
	require.NoError(t, err)
	require.Empty(t, mail.Outbox)
}

func TestNotifyDisabled(t *testing.T) {
	mail := &common.InMemoryEmail{}
	n := notify.EmailNotifier{Mail: mail, Enabled: false}

	err := n.Notify(context.Background(), events.Event{
		Topic:   events.TopicOrderCreated,
		Payload: []byte(`{"email":"buyer@example.com"}`),
	})
	require.NoError(t, err)
	require.Empty(t, mail.Outbox)
}
