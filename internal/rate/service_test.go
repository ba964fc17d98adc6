package rate

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/kashvi-silver/backend-kashvi/internal/events"
)

type fakeRateStore struct {
	rate         float64
	updatedAt    time.Time
	err          error
	currentCalls int
	updated      []float64
}

func (f *fakeRateStore) Current(context.Context) (float64, time.Time, error) {
	f.currentCalls++
	return f.rate, f.updatedAt, f.err
}

func (f *fakeRateStore) Update(_ context.Context, ratePerGram float64) error {
	f.updated = append(f.updated, ratePerGram)
	f.rate = ratePerGram
	return nil
}

type stubEventStore struct {
	topics []string
}

func (s *stubEventStore) InsertEvent(_ context.Context, topic string, aggregateID uuid.UUID, payload []byte) (events.Event, error) {
	s.topics = append(s.topics, topic)
	return events.Event{ID: uuid.New(), Topic: topic, AggregateID: aggregateID, Payload: payload, OccurredAt: time.Now()}, nil
}

func newTestService(t *testing.T, store *fakeRateStore) (*Service, *miniredis.Miniredis, *stubEventStore) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	evStore := &stubEventStore{}
	svc := &Service{
		Store: store,
		R:     client,
		TTL:   time.Minute,
		Bus:   &events.Bus{Store: evStore},
	}
	return svc, mr, evStore
}

func TestSnapshotCachesStoreRead(t *testing.T) {
	store := &fakeRateStore{rate: 80, updatedAt: time.Now()}
	svc, mr, _ := newTestService(t, store)
	ctx := context.Background()

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, 80.0, snap.RatePerGram)
	require.Equal(t, 1, store.currentCalls)
	require.True(t, mr.Exists(cacheKey))

	// second read comes from redis, not the store
	again, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, 80.0, again.RatePerGram)
	require.Equal(t, 1, store.currentCalls)
}

func TestSnapshotRefetchesAfterTTL(t *testing.T) {
	store := &fakeRateStore{rate: 80, updatedAt: time.Now()}
	svc, mr, _ := newTestService(t, store)
	ctx := context.Background()

	_, err := svc.Snapshot(ctx)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	store.rate = 95
	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, 95.0, snap.RatePerGram)
	require.Equal(t, 2, store.currentCalls)
}

func TestCurrentPropagatesNotSet(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeRateStore{err: ErrNotSet})

	_, err := svc.Current(context.Background())
	require.ErrorIs(t, err, ErrNotSet)
}

func TestUpdateRejectsNonPositive(t *testing.T) {
	store := &fakeRateStore{}
	svc, _, _ := newTestService(t, store)

	_, err := svc.Update(context.Background(), 0)
	require.ErrorIs(t, err, ErrInvalidRate)
	_, err = svc.Update(context.Background(), -4)
	require.ErrorIs(t, err, ErrInvalidRate)
	require.Empty(t, store.updated)
}

func TestUpdateInvalidatesCacheAndEmits(t *testing.T) {
	store := &fakeRateStore{rate: 80, updatedAt: time.Now()}
	svc, mr, evStore := newTestService(t, store)
	ctx := context.Background()

	_, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	require.True(t, mr.Exists(cacheKey))

	snap, err := svc.Update(ctx, 92.5)
	require.NoError(t, err)
	require.Equal(t, 92.5, snap.RatePerGram)
	require.Equal(t, []float64{92.5}, store.updated)
	require.False(t, mr.Exists(cacheKey))
	require.Equal(t, []string{events.TopicRateUpdated}, evStore.topics)

	// the next read sees the new rate
	fresh, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, 92.5, fresh.RatePerGram)
}

func TestUpdateWithoutStoreFails(t *testing.T) {
	var svc *Service
	_, err := svc.Update(context.Background(), 10)
	require.Error(t, err)
}
