// Package metrics records scheduling and travel-evaluation activity.
package metrics

import "time"

// Outcome labels for provider requests
const (
	OutcomeOK      = "ok"
	OutcomeFailed  = "failed"
	OutcomeTimeout = "timeout"
)

// Timeout scopes
const (
	ScopeCall  = "call"
	ScopeBatch = "batch"
)

// Recorder receives observability events from the scheduling core.
// Implementations must be safe for concurrent use.
type Recorder interface {
	ProviderRequest(provider, outcome string)
	CacheLookup(cache string, hit bool)
	TravelWarning(warningType string)
	TravelTimeout(scope string)
	BatchDuration(d time.Duration)
	ScheduleResult(entries, skipped int)
}

// Nop discards all events.
type Nop struct{}

func (Nop) ProviderRequest(string, string) {}
func (Nop) CacheLookup(string, bool)       {}
func (Nop) TravelWarning(string)           {}
func (Nop) TravelTimeout(string)           {}
func (Nop) BatchDuration(time.Duration)    {}
func (Nop) ScheduleResult(int, int)        {}

// OrNop returns r, or Nop when r is nil.
func OrNop(r Recorder) Recorder {
	if r == nil {
		return Nop{}
	}
	return r
}
