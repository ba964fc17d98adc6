package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists domain events to Postgres.
type Store struct {
	Pool *pgxpool.Pool
}

// InsertEvent implements EventStore.
func (s *Store) InsertEvent(ctx context.Context, topic string, aggregateID uuid.UUID, payload []byte) (Event, error) {
	if s == nil || s.Pool == nil {
		return Event{}, errors.New("event store not configured")
	}
	var (
		ev      Event
		idText  string
		aggText string
	)
	err := s.Pool.QueryRow(ctx, `
		INSERT INTO domain_events (topic, aggregate_id, payload)
		VALUES ($1, $2, $3)
		RETURNING id, topic, aggregate_id, payload, occurred_at`,
		topic, aggregateID.String(), payload,
	).Scan(&idText, &ev.Topic, &aggText, &ev.Payload, &ev.OccurredAt)
	if err != nil {
		return Event{}, fmt.Errorf("insert domain event: %w", err)
	}
	if ev.ID, err = uuid.Parse(idText); err != nil {
		return Event{}, fmt.Errorf("parse event id: %w", err)
	}
	if ev.AggregateID, err = uuid.Parse(aggText); err != nil {
		return Event{}, fmt.Errorf("parse aggregate id: %w", err)
	}
	return ev, nil
}
