package travel

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"field-scheduler/internal/metrics"
	"field-scheduler/internal/models"
)

// BatchRequest is a set of candidate slots for one candidate address
type BatchRequest struct {
	Slots            []models.Slot
	BookingsByPerson map[string][]models.PersonBooking
	Candidate        models.LocationRef
	// BufferMinutes overrides the configured buffer when set
	BufferMinutes    *int
}

// BatchStats summarises a batch run
type BatchStats struct {
	BatchID             string `json:"batchId"`
	Slots               int    `json:"slots"`
	Evaluated           int    `json:"evaluated"`
	Warned              int    `json:"warned"`
	TimedOut            int    `json:"timedOut"`
	Unannotated         int    `json:"unannotated"`
	SkippedNoNeighbours int    `json:"skippedNoNeighbours"`
	Disabled            bool   `json:"disabled,omitempty"`
}

type slotState int

const (
	statePending slotState = iota
	stateNoNeighbours
	stateEvaluated
	stateCallTimeout
	stateBatchTimeout
)

type slotOutcome struct {
	state   slotState
	warning *models.TravelWarning
}

// EvaluateBatch evaluates every slot under a bounded semaphore and attaches
// a TravelWarning in place to each slot that produced a finding. Slots
// still pending when the batch deadline passes are left unannotated.
func (e *Evaluator) EvaluateBatch(ctx context.Context, req BatchRequest) BatchStats {
	stats := BatchStats{BatchID: uuid.NewString(), Slots: len(req.Slots)}
	if !e.Enabled() {
		stats.Disabled = true
		stats.Unannotated = len(req.Slots)
		return stats
	}
	if len(req.Slots) == 0 {
		return stats
	}

	started := time.Now()
	defer func() { e.metrics.BatchDuration(time.Since(started)) }()

	buffer := e.cfg.BufferMinutes
	if req.BufferMinutes != nil && *req.BufferMinutes >= 0 {
		buffer = *req.BufferMinutes
	}

	batchCtx, cancel := context.WithTimeout(ctx, e.cfg.BatchTimeout)
	defer cancel()

	memo := newMemoResolver(batchCtx, e.resolver.ResolveLocation)
	sem := semaphore.NewWeighted(int64(e.cfg.Concurrency))
	outcomes := make([]slotOutcome, len(req.Slots))
	var wg sync.WaitGroup

	inputs := make([]SlotInput, len(req.Slots))
	work := make([]int, 0, len(req.Slots))
	for i, slot := range req.Slots {
		prev, next := adjacentBookings(req.BookingsByPerson[slot.Person], slot.Start, slot.End)
		if prev == nil && next == nil {
			outcomes[i].state = stateNoNeighbours
			continue
		}
		inputs[i] = SlotInput{
			Candidate:               req.Candidate,
			Start:                   slot.Start,
			End:                     slot.End,
			Prev:                    prev,
			Next:                    next,
			BufferMinutes:           buffer,
			UnknownThresholdMinutes: e.cfg.UnknownThresholdMinutes,
		}
		work = append(work, i)
	}

	for n, i := range work {
		if err := sem.Acquire(batchCtx, 1); err != nil {
			e.log.Warnf("travel batch: batch=%s deadline reached, %d slots not started", stats.BatchID, len(work)-n)
			break
		}

		wg.Add(1)
		go func(i int, in SlotInput) {
			defer wg.Done()
			defer sem.Release(1)
			outcomes[i] = e.evaluateWithTimeout(batchCtx, in, memo)
		}(i, inputs[i])
	}
	wg.Wait()

	for i, o := range outcomes {
		switch o.state {
		case stateNoNeighbours:
			stats.SkippedNoNeighbours++
		case stateEvaluated:
			stats.Evaluated++
			if o.warning != nil {
				req.Slots[i].TravelWarning = o.warning
				stats.Warned++
				e.metrics.TravelWarning(string(o.warning.Type))
			}
		case stateCallTimeout:
			stats.TimedOut++
			e.metrics.TravelTimeout(metrics.ScopeCall)
		case stateBatchTimeout, statePending:
			stats.Unannotated++
		}
	}
	if stats.Unannotated > 0 {
		e.metrics.TravelTimeout(metrics.ScopeBatch)
	}

	e.log.Infof("travel batch: batch=%s slots=%d evaluated=%d warned=%d timed_out=%d unannotated=%d locations=%d elapsed=%s",
		stats.BatchID, stats.Slots, stats.Evaluated, stats.Warned, stats.TimedOut, stats.Unannotated, memo.size(), time.Since(started))
	return stats
}

// evaluateWithTimeout runs one slot evaluation bounded by the per-call
// timeout. Expiry cancels the evaluation's provider calls and yields no
// warning.
func (e *Evaluator) evaluateWithTimeout(batchCtx context.Context, in SlotInput, memo *memoResolver) slotOutcome {
	callCtx, cancel := context.WithTimeout(batchCtx, e.cfg.CallTimeout)
	defer cancel()

	done := make(chan *models.TravelWarning, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				e.log.Errorf("travel evaluation panicked: %v", r)
				done <- nil
			}
		}()
		done <- EvaluateSlot(callCtx, in, memo.resolve, e.estimator)
	}()

	select {
	case w := <-done:
		if callCtx.Err() != nil {
			// finished after its deadline; provider answers were abandoned
			return timedOut(batchCtx)
		}
		return slotOutcome{state: stateEvaluated, warning: w}
	case <-callCtx.Done():
		return timedOut(batchCtx)
	}
}

func timedOut(batchCtx context.Context) slotOutcome {
	if batchCtx.Err() != nil {
		return slotOutcome{state: stateBatchTimeout}
	}
	return slotOutcome{state: stateCallTimeout}
}

// adjacentBookings returns the booking ending latest at or before start and
// the booking starting earliest at or after end. Bookings overlapping the
// slot are ignored.
func adjacentBookings(bookings []models.PersonBooking, start, end time.Time) (prev, next *models.PersonBooking) {
	for i := range bookings {
		b := &bookings[i]
		if !b.End.After(start) {
			if prev == nil || b.End.After(prev.End) {
				prev = b
			}
			continue
		}
		if !b.Start.Before(end) {
			if next == nil || b.Start.Before(next.Start) {
				next = b
			}
		}
	}
	return prev, next
}
