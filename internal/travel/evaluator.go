// Package travel annotates candidate appointment slots with advisory
// drive-time warnings. Evaluation is fail-open: provider errors and
// timeouts produce no warning, never an error.
package travel

import (
	"context"
	"time"

	"field-scheduler/internal/logger"
	"field-scheduler/internal/metrics"
	"field-scheduler/internal/models"
)

const (
	DefaultBufferMinutes           = 15
	DefaultUnknownThresholdMinutes = 40
	DefaultConcurrency             = 5
	DefaultCallTimeout             = 5 * time.Second
	DefaultBatchTimeout            = 15 * time.Second
)

// ResolveFunc turns a location reference into a "lat,lng" key
type ResolveFunc func(ctx context.Context, ref models.LocationRef) (string, bool)

// LocationResolver is satisfied by *geocoding.Resolver
type LocationResolver interface {
	ResolveLocation(ctx context.Context, ref models.LocationRef) (string, bool)
}

// DriveTimer is satisfied by *distance.Estimator
type DriveTimer interface {
	GetDriveTime(ctx context.Context, origin, dest string) *models.TravelEstimate
}

// Config tunes the evaluator. Non-positive values select the defaults,
// except BufferMinutes where zero is a valid buffer.
type Config struct {
	BufferMinutes           int
	UnknownThresholdMinutes int
	Concurrency             int
	CallTimeout             time.Duration
	BatchTimeout            time.Duration
}

func (c *Config) setDefaults() {
	if c.BufferMinutes < 0 {
		c.BufferMinutes = DefaultBufferMinutes
	}
	if c.UnknownThresholdMinutes <= 0 {
		c.UnknownThresholdMinutes = DefaultUnknownThresholdMinutes
	}
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = DefaultCallTimeout
	}
	if c.BatchTimeout <= 0 {
		c.BatchTimeout = DefaultBatchTimeout
	}
}

// DefaultConfig returns the evaluator defaults
func DefaultConfig() Config {
	return Config{
		BufferMinutes:           DefaultBufferMinutes,
		UnknownThresholdMinutes: DefaultUnknownThresholdMinutes,
		Concurrency:             DefaultConcurrency,
		CallTimeout:             DefaultCallTimeout,
		BatchTimeout:            DefaultBatchTimeout,
	}
}

// Evaluator judges slot feasibility against a person's adjacent bookings
type Evaluator struct {
	resolver  LocationResolver
	estimator DriveTimer
	cfg       Config
	log       logger.Logger
	metrics   metrics.Recorder
}

// NewEvaluator creates an evaluator. With a nil resolver or estimator the
// evaluator is disabled and every call is a no-op.
func NewEvaluator(resolver LocationResolver, estimator DriveTimer, cfg Config, log logger.Logger, rec metrics.Recorder) *Evaluator {
	cfg.setDefaults()
	return &Evaluator{
		resolver:  resolver,
		estimator: estimator,
		cfg:       cfg,
		log:       logger.OrNop(log),
		metrics:   metrics.OrNop(rec),
	}
}

// Enabled reports whether providers are configured
func (e *Evaluator) Enabled() bool {
	return e != nil && e.resolver != nil && e.estimator != nil
}

// Config returns the effective configuration
func (e *Evaluator) Config() Config { return e.cfg }

// SlotInput describes one slot and its neighbouring bookings
type SlotInput struct {
	Candidate               models.LocationRef
	Start                   time.Time
	End                     time.Time
	Prev                    *models.PersonBooking
	Next                    *models.PersonBooking
	BufferMinutes           int
	UnknownThresholdMinutes int
}

type sideResult struct {
	fired   bool
	tight   bool
	gap     int
	minutes *int
}

// EvaluateSlot judges a single slot using the evaluator's resolver directly
func (e *Evaluator) EvaluateSlot(ctx context.Context, in SlotInput) *models.TravelWarning {
	if !e.Enabled() {
		return nil
	}
	return EvaluateSlot(ctx, in, e.resolver.ResolveLocation, e.estimator)
}

// EvaluateSlot returns a warning when travel to or from an adjacent booking
// does not fit in the gap, or cannot be determined. It returns nil when
// neither side produced a finding.
func EvaluateSlot(ctx context.Context, in SlotInput, resolve ResolveFunc, drive DriveTimer) *models.TravelWarning {
	var before, after sideResult

	if in.Prev != nil {
		gap := minutesBetween(in.Prev.End, in.Start)
		before = evaluateSide(ctx, in, gap, in.Prev.Location, in.Candidate, resolve, drive)
	}
	if in.Next != nil {
		gap := minutesBetween(in.End, in.Next.Start)
		after = evaluateSide(ctx, in, gap, in.Candidate, in.Next.Location, resolve, drive)
	}

	if !before.fired && !after.fired {
		return nil
	}

	w := &models.TravelWarning{Type: models.WarningUnknown}
	if before.tight || after.tight {
		w.Type = models.WarningTight
	}

	switch {
	case before.fired && after.fired:
		w.Direction = models.DirectionBoth
	case before.fired:
		w.Direction = models.DirectionBefore
	default:
		w.Direction = models.DirectionAfter
	}

	if before.fired {
		gap := before.gap
		w.PrevJob = &models.AdjacentJob{Name: in.Prev.Name, Time: in.Prev.End, TravelMinutes: before.minutes}
		w.AvailableMinutesBefore = &gap
	}
	if after.fired {
		gap := after.gap
		w.NextJob = &models.AdjacentJob{Name: in.Next.Name, Time: in.Next.Start, TravelMinutes: after.minutes}
		w.AvailableMinutesAfter = &gap
	}
	return w
}

// evaluateSide checks travel from "from" to "to" against gap minutes
func evaluateSide(ctx context.Context, in SlotInput, gap int, from, to models.LocationRef, resolve ResolveFunc, drive DriveTimer) sideResult {
	if in.UnknownThresholdMinutes > 0 && gap >= in.UnknownThresholdMinutes {
		return sideResult{}
	}

	unknown := sideResult{fired: true, gap: gap}

	origin, ok := resolve(ctx, from)
	if !ok {
		return unknown
	}
	dest, ok := resolve(ctx, to)
	if !ok {
		return unknown
	}

	est := drive.GetDriveTime(ctx, origin, dest)
	if est == nil {
		return sideResult{}
	}

	minutes := est.DurationMinutes
	if minutes+in.BufferMinutes > gap {
		return sideResult{fired: true, tight: true, gap: gap, minutes: &minutes}
	}
	return sideResult{}
}

func minutesBetween(from, to time.Time) int {
	return int(to.Sub(from) / time.Minute)
}
