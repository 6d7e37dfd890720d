package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fieldsched"

// PromRecorder records events in Prometheus collectors.
type PromRecorder struct {
	providerRequests *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
	travelWarnings   *prometheus.CounterVec
	travelTimeouts   *prometheus.CounterVec
	batchDuration    prometheus.Histogram
	scheduleEntries  prometheus.Counter
	scheduleSkipped  prometheus.Counter
}

// NewPromRecorder registers the collectors on reg. If reg is nil, the
// default registerer is used. Collectors that are already registered are reused.
func NewPromRecorder(reg prometheus.Registerer) (*PromRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	r := &PromRecorder{}
	var err error

	if r.providerRequests, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_requests_total",
		Help:      "Geocoding and distance provider calls by outcome",
	}, []string{"provider", "outcome"})); err != nil {
		return nil, err
	}
	if r.cacheLookups, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Travel cache lookups by cache and result",
	}, []string{"cache", "hit"})); err != nil {
		return nil, err
	}
	if r.travelWarnings, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "travel_warnings_total",
		Help:      "Travel warnings attached to candidate slots",
	}, []string{"type"})); err != nil {
		return nil, err
	}
	if r.travelTimeouts, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "travel_timeouts_total",
		Help:      "Slot evaluations abandoned on timeout",
	}, []string{"scope"})); err != nil {
		return nil, err
	}
	if r.batchDuration, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "travel_batch_duration_seconds",
		Help:      "Wall time of batch slot evaluations",
		Buckets:   prometheus.DefBuckets,
	})); err != nil {
		return nil, err
	}
	if r.scheduleEntries, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "schedule_entries_total",
		Help:      "Projects placed on crews by the optimizer",
	})); err != nil {
		return nil, err
	}
	if r.scheduleSkipped, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "schedule_skipped_total",
		Help:      "Projects the optimizer could not place",
	})); err != nil {
		return nil, err
	}

	return r, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (r *PromRecorder) ProviderRequest(provider, outcome string) {
	r.providerRequests.WithLabelValues(provider, outcome).Inc()
}

func (r *PromRecorder) CacheLookup(cache string, hit bool) {
	r.cacheLookups.WithLabelValues(cache, strconv.FormatBool(hit)).Inc()
}

func (r *PromRecorder) TravelWarning(warningType string) {
	r.travelWarnings.WithLabelValues(warningType).Inc()
}

func (r *PromRecorder) TravelTimeout(scope string) {
	r.travelTimeouts.WithLabelValues(scope).Inc()
}

func (r *PromRecorder) BatchDuration(d time.Duration) {
	r.batchDuration.Observe(d.Seconds())
}

func (r *PromRecorder) ScheduleResult(entries, skipped int) {
	r.scheduleEntries.Add(float64(entries))
	r.scheduleSkipped.Add(float64(skipped))
}
