package distance

import (
	"context"
	"math"
	"time"

	"field-scheduler/internal/cache"
	"field-scheduler/internal/logger"
	"field-scheduler/internal/metrics"
	"field-scheduler/internal/models"
)

// DefaultTTL is how long a successful drive-time lookup is reused
const DefaultTTL = time.Hour

// CacheName labels the drive-time cache in logs and metrics
const CacheName = "drive_time"

// Estimator returns cached drive-time estimates between location keys.
// Estimates are directional: A to B and B to A are looked up and cached
// separately. Failures are never cached.
type Estimator struct {
	provider Provider
	cache    *cache.TTL[models.TravelEstimate]
	log      logger.Logger
	metrics  metrics.Recorder
}

// NewEstimator creates an estimator. A nil cache gets a private one with DefaultTTL.
func NewEstimator(provider Provider, c *cache.TTL[models.TravelEstimate], log logger.Logger, rec metrics.Recorder) *Estimator {
	if c == nil {
		c = cache.NewTTL[models.TravelEstimate](CacheName, DefaultTTL)
	}
	return &Estimator{
		provider: provider,
		cache:    c,
		log:      logger.OrNop(log),
		metrics:  metrics.OrNop(rec),
	}
}

func cacheKey(origin, dest string) string {
	return origin + "|" + dest
}

// GetDriveTime returns the estimate from origin to dest, or nil when the
// provider cannot answer. It never returns an error.
func (e *Estimator) GetDriveTime(ctx context.Context, origin, dest string) *models.TravelEstimate {
	if origin == "" || dest == "" {
		return nil
	}
	if origin == dest {
		return &models.TravelEstimate{}
	}

	key := cacheKey(origin, dest)
	if cached, ok := e.cache.Get(key); ok {
		e.metrics.CacheLookup(CacheName, true)
		cached.Cached = true
		return &cached
	}
	e.metrics.CacheLookup(CacheName, false)

	if e.provider == nil {
		return nil
	}

	result, err := e.provider.DriveTime(ctx, origin, dest)
	if err != nil {
		outcome := metrics.OutcomeFailed
		if ctx.Err() != nil {
			outcome = metrics.OutcomeTimeout
		}
		e.metrics.ProviderRequest(e.provider.Name(), outcome)
		e.log.Warnf("drive time failed: %s -> %s: %v", origin, dest, err)
		return nil
	}
	e.metrics.ProviderRequest(e.provider.Name(), metrics.OutcomeOK)

	estimate := models.TravelEstimate{
		DurationMinutes: int(math.Ceil(result.DurationSecs / 60)),
		DistanceMiles:   math.Round(result.DistanceMeters/MetersPerMile*10) / 10,
	}
	e.cache.Set(key, estimate)
	e.log.Debugf("drive time: %s -> %s minutes=%d miles=%.1f", origin, dest, estimate.DurationMinutes, estimate.DistanceMiles)
	return &estimate
}

// Reset clears the drive-time cache. Intended for test harnesses.
func (e *Estimator) Reset() {
	e.cache.Reset()
}
