package rate

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/kashvi-silver/backend-kashvi/internal/events"
	"github.com/kashvi-silver/backend-kashvi/internal/obs"
)

const cacheKey = "rate:silver"

// ErrInvalidRate is returned when an update carries a non-positive rate.
var ErrInvalidRate = errors.New("rate must be positive")

// Snapshot is the public representation of the live rate.
type Snapshot struct {
	RatePerGram float64   `json:"ratePerGram"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// RateStore abstracts the persistence layer for tests.
type RateStore interface {
	Current(ctx context.Context) (float64, time.Time, error)
	Update(ctx context.Context, ratePerGram float64) error
}

// Service serves the market rate with a short, explicit redis TTL. The rate
// changes frequently and is read on every price computation; the TTL bounds
// how stale a served price can be.
type Service struct {
	Store RateStore
	R     *redis.Client
	TTL   time.Duration
	Bus   *events.Bus
	Log   zerolog.Logger
}

// Current returns the live rate per gram, preferring the cache.
func (s *Service) Current(ctx context.Context) (float64, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return snap.RatePerGram, nil
}

// Snapshot returns the live rate together with its update timestamp.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	if s == nil || s.Store == nil {
		return Snapshot{}, errors.New("rate service not configured")
	}
	if cached, ok := s.fromCache(ctx); ok {
		return cached, nil
	}
	value, updatedAt, err := s.Store.Current(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{RatePerGram: value, UpdatedAt: updatedAt}
	s.toCache(ctx, snap)
	return snap, nil
}

// Update validates and persists a new rate, drops the cache entry, and
// emits a rate.updated event.
func (s *Service) Update(ctx context.Context, ratePerGram float64) (Snapshot, error) {
	if s == nil || s.Store == nil {
		return Snapshot{}, errors.New("rate service not configured")
	}
	if !(ratePerGram > 0) {
		return Snapshot{}, ErrInvalidRate
	}
	if err := s.Store.Update(ctx, ratePerGram); err != nil {
		return Snapshot{}, err
	}
	if s.R != nil {
		if err := s.R.Del(ctx, cacheKey).Err(); err != nil {
			s.Log.Warn().Err(err).Msg("invalidate rate cache")
		}
	}
	if obs.SilverRateUpdatesTotal != nil {
		obs.SilverRateUpdatesTotal.Inc()
	}
	snap := Snapshot{RatePerGram: ratePerGram, UpdatedAt: time.Now()}
	if s.Bus != nil {
		_, _ = s.Bus.Emit(ctx, events.TopicRateUpdated, uuid.Nil, map[string]any{
			"ratePerGram": ratePerGram,
		})
	}
	return snap, nil
}

func (s *Service) fromCache(ctx context.Context) (Snapshot, bool) {
	if s.R == nil || s.TTL <= 0 {
		return Snapshot{}, false
	}
	data, err := s.R.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.Log.Warn().Err(err).Msg("read rate cache")
		}
		return Snapshot{}, false
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false
	}
	return snap, true
}

func (s *Service) toCache(ctx context.Context, snap Snapshot) {
	if s.R == nil || s.TTL <= 0 {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := s.R.Set(ctx, cacheKey, data, s.TTL).Err(); err != nil {
		s.Log.Warn().Err(err).Msg("write rate cache")
	}
}
