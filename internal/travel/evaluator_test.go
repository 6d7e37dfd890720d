package travel

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"field-scheduler/internal/models"
)

var slotDay = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return slotDay.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

type stubDrive struct {
	mu      sync.Mutex
	minutes map[string]int
	calls   int
}

func (s *stubDrive) GetDriveTime(ctx context.Context, origin, dest string) *models.TravelEstimate {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	m, ok := s.minutes[origin+"|"+dest]
	if !ok {
		return nil
	}
	return &models.TravelEstimate{DurationMinutes: m}
}

// resolveByAddress treats the address itself as the location key; "" fails
func resolveByAddress(ctx context.Context, ref models.LocationRef) (string, bool) {
	if ref.Coordinates != nil {
		return ref.Coordinates.Key(), true
	}
	return ref.Address, ref.Address != ""
}

func booking(name, addr string, start, end time.Time) *models.PersonBooking {
	return &models.PersonBooking{Name: name, Start: start, End: end, Location: models.LocationRef{Address: addr}}
}

func slotInput(prev, next *models.PersonBooking) SlotInput {
	return SlotInput{
		Candidate:               models.LocationRef{Address: "cand"},
		Start:                   at(9, 30),
		End:                     at(10, 30),
		Prev:                    prev,
		Next:                    next,
		BufferMinutes:           15,
		UnknownThresholdMinutes: 40,
	}
}

func TestEvaluateSlotTightBefore(t *testing.T) {
	drive := &stubDrive{minutes: map[string]int{"prev|cand": 30}}
	in := slotInput(booking("Morning install", "prev", at(8, 0), at(9, 0)), nil)

	w := EvaluateSlot(context.Background(), in, resolveByAddress, drive)
	require.NotNil(t, w)
	assert.Equal(t, models.WarningTight, w.Type)
	assert.Equal(t, models.DirectionBefore, w.Direction)
	require.NotNil(t, w.PrevJob)
	assert.Equal(t, "Morning install", w.PrevJob.Name)
	assert.Equal(t, at(9, 0), w.PrevJob.Time)
	require.NotNil(t, w.PrevJob.TravelMinutes)
	assert.Equal(t, 30, *w.PrevJob.TravelMinutes)
	require.NotNil(t, w.AvailableMinutesBefore)
	assert.Equal(t, 30, *w.AvailableMinutesBefore)
	assert.Nil(t, w.NextJob)
	assert.Nil(t, w.AvailableMinutesAfter)
}

func TestEvaluateSlotGapAtThresholdIsSkipped(t *testing.T) {
	drive := &stubDrive{minutes: map[string]int{"prev|cand": 30}}
	in := slotInput(booking("Morning install", "prev", at(8, 0), at(8, 50)), nil)

	assert.Nil(t, EvaluateSlot(context.Background(), in, resolveByAddress, drive))
	assert.Equal(t, 0, drive.calls)
}

func TestEvaluateSlotEnoughTime(t *testing.T) {
	drive := &stubDrive{minutes: map[string]int{"prev|cand": 10}}
	in := slotInput(booking("Morning install", "prev", at(8, 0), at(8, 55)), nil)

	assert.Nil(t, EvaluateSlot(context.Background(), in, resolveByAddress, drive))
	assert.Equal(t, 1, drive.calls)
}

func TestEvaluateSlotExactFitIsNotTight(t *testing.T) {
	drive := &stubDrive{minutes: map[string]int{"prev|cand": 15}}
	in := slotInput(booking("Morning install", "prev", at(8, 0), at(9, 0)), nil)

	assert.Nil(t, EvaluateSlot(context.Background(), in, resolveByAddress, drive))
}

func TestEvaluateSlotUnresolvableIsUnknown(t *testing.T) {
	drive := &stubDrive{}
	in := slotInput(nil, booking("Afternoon", "", at(10, 45), at(12, 0)))

	w := EvaluateSlot(context.Background(), in, resolveByAddress, drive)
	require.NotNil(t, w)
	assert.Equal(t, models.WarningUnknown, w.Type)
	assert.Equal(t, models.DirectionAfter, w.Direction)
	require.NotNil(t, w.NextJob)
	assert.Nil(t, w.NextJob.TravelMinutes)
	require.NotNil(t, w.AvailableMinutesAfter)
	assert.Equal(t, 15, *w.AvailableMinutesAfter)
	assert.Equal(t, 0, drive.calls)
}

func TestEvaluateSlotDriveTimeFailureHasNoFinding(t *testing.T) {
	drive := &stubDrive{minutes: map[string]int{}}
	in := slotInput(booking("Morning install", "prev", at(8, 0), at(9, 0)), nil)

	assert.Nil(t, EvaluateSlot(context.Background(), in, resolveByAddress, drive))
	assert.Equal(t, 1, drive.calls)
}

func TestEvaluateSlotBothSides(t *testing.T) {
	drive := &stubDrive{minutes: map[string]int{"prev|cand": 10}}
	in := slotInput(
		booking("Morning install", "prev", at(8, 0), at(9, 10)),
		booking("Afternoon", "", at(10, 40), at(12, 0)),
	)

	w := EvaluateSlot(context.Background(), in, resolveByAddress, drive)
	require.NotNil(t, w)
	assert.Equal(t, models.WarningTight, w.Type)
	assert.Equal(t, models.DirectionBoth, w.Direction)
	assert.NotNil(t, w.PrevJob)
	assert.NotNil(t, w.NextJob)
}

func TestEvaluateSlotTightAfterUsesForwardDirection(t *testing.T) {
	drive := &stubDrive{minutes: map[string]int{"cand|next": 25, "next|cand": 1}}
	in := slotInput(nil, booking("Afternoon", "next", at(11, 0), at(12, 0)))

	w := EvaluateSlot(context.Background(), in, resolveByAddress, drive)
	require.NotNil(t, w)
	assert.Equal(t, models.WarningTight, w.Type)
	assert.Equal(t, models.DirectionAfter, w.Direction)
	assert.Equal(t, 25, *w.NextJob.TravelMinutes)
}

func TestEvaluateSlotNoNeighbours(t *testing.T) {
	drive := &stubDrive{}
	assert.Nil(t, EvaluateSlot(context.Background(), slotInput(nil, nil), resolveByAddress, drive))
}

func TestEvaluatorDisabledSlot(t *testing.T) {
	e := NewEvaluator(nil, nil, Config{}, nil, nil)
	assert.False(t, e.Enabled())
	assert.Nil(t, e.EvaluateSlot(context.Background(), slotInput(booking("x", "prev", at(8, 0), at(9, 0)), nil)))
}

func TestConfigDefaults(t *testing.T) {
	e := NewEvaluator(nil, nil, Config{BufferMinutes: -1}, nil, nil)
	assert.Equal(t, DefaultConfig(), e.Config())

	zero := NewEvaluator(nil, nil, Config{}, nil, nil)
	assert.Equal(t, 0, zero.Config().BufferMinutes)
}
