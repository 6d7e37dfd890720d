// Package scheduling places pending projects onto installation crews.
package scheduling

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"field-scheduler/internal/businessday"
	"field-scheduler/internal/logger"
	"field-scheduler/internal/metrics"
	"field-scheduler/internal/models"
	"field-scheduler/internal/priority"
)

// Options controls a single optimization run
type Options struct {
	StartDate        time.Time
	Preset           priority.Preset
	ExistingBookings []models.ExistingBooking
}

// Request contains the input for an optimization run. The location-keyed
// maps are snapshots supplied by the caller and are not modified.
type Request struct {
	Projects            []models.Project
	CrewsByLocation     map[string][]models.Crew
	DirectorsByLocation map[string]string
	TimezonesByLocation map[string]string
	Options             Options
}

// Result contains the placed entries and the projects that could not be placed
type Result struct {
	RunID    string                  `json:"runId"`
	Entries  []models.ScheduleEntry  `json:"entries"`
	Skipped  []models.SkippedProject `json:"skipped"`
	CrewLoad map[string]int          `json:"crewLoad"`
}

// Optimizer assigns projects to crews by priority
type Optimizer struct {
	log     logger.Logger
	metrics metrics.Recorder
}

// NewOptimizer creates an optimizer. Nil dependencies are replaced with no-ops.
func NewOptimizer(log logger.Logger, rec metrics.Recorder) *Optimizer {
	return &Optimizer{
		log:     logger.OrNop(log),
		metrics: metrics.OrNop(rec),
	}
}

type scoredProject struct {
	project    *models.Project
	score      float64
	components priority.Components
}

// crewState tracks when a crew is next free and every span it is booked for
type crewState struct {
	crew   models.Crew
	cursor time.Time
	spans  []businessday.Span // sorted by start
}

// Optimize scores, sorts and assigns projects. It never fails: projects that
// cannot be placed are reported in Result.Skipped.
func (o *Optimizer) Optimize(req Request) *Result {
	runID := uuid.NewString()
	result := &Result{
		RunID:    runID,
		Entries:  []models.ScheduleEntry{},
		Skipped:  []models.SkippedProject{},
		CrewLoad: make(map[string]int),
	}

	if len(req.Projects) == 0 {
		o.log.Infof("optimize: run=%s no projects to schedule", runID)
		return result
	}

	preset := req.Options.Preset
	if !preset.Valid() {
		preset = priority.PresetBalanced
	}
	startDate := businessday.Normalize(req.Options.StartDate)

	o.log.Infof("optimize: run=%s projects=%d locations=%d bookings=%d preset=%s start=%s",
		runID, len(req.Projects), len(req.CrewsByLocation), len(req.Options.ExistingBookings),
		preset, businessday.Format(startDate))

	scored := scoreProjects(req.Projects, preset)
	crews := o.buildCrewStates(req.CrewsByLocation, req.Options.ExistingBookings, startDate)
	rotation := make(map[string]int)

	for _, sp := range scored {
		p := sp.project
		loc := strings.TrimSpace(p.Location)

		if loc == "" {
			result.Skipped = append(result.Skipped, models.SkippedProject{
				ProjectID:   p.ID,
				ProjectName: p.Name,
				Reason:      models.SkipNoLocation,
				Message:     "project has no location",
			})
			continue
		}

		locCrews := req.CrewsByLocation[loc]
		if len(locCrews) == 0 {
			result.Skipped = append(result.Skipped, models.SkippedProject{
				ProjectID:   p.ID,
				ProjectName: p.Name,
				Location:    loc,
				Reason:      models.SkipNoCrews,
				Message:     fmt.Sprintf("no crews configured for location %s", loc),
			})
			continue
		}

		days := p.InstallDays()
		state, span := pickCrew(crews, locCrews, rotation, loc, startDate, days)

		state.spans = insertSpan(state.spans, span)
		state.cursor = businessday.NextBusinessDayAfter(span.End)
		result.CrewLoad[state.crew.Name]++

		entry := models.ScheduleEntry{
			ProjectID:    p.ID,
			ProjectName:  p.Name,
			Address:      p.Address,
			Location:     loc,
			Crew:         state.crew.Name,
			CrewColor:    state.crew.Color,
			StartDate:    span.Start,
			EndDate:      span.End,
			Days:         days,
			AssigneeName: req.DirectorsByLocation[loc],
			Timezone:     req.TimezonesByLocation[loc],
			Score:        sp.score,
			Components:   sp.components.Map(),
		}
		result.Entries = append(result.Entries, entry)

		o.log.Debugf("optimize: run=%s project=%s crew=%s start=%s end=%s score=%.1f",
			runID, p.ID, state.crew.Name, businessday.Format(span.Start), businessday.Format(span.End), sp.score)
	}

	for _, s := range result.Skipped {
		o.log.Warnf("optimize: run=%s skipped project=%s reason=%s", runID, s.ProjectID, s.Reason)
	}
	o.log.Infof("optimize: run=%s complete entries=%d skipped=%d", runID, len(result.Entries), len(result.Skipped))
	o.metrics.ScheduleResult(len(result.Entries), len(result.Skipped))

	return result
}

// scoreProjects scores every project and sorts descending; ties keep input order
func scoreProjects(projects []models.Project, preset priority.Preset) []scoredProject {
	weights := preset.Weights()
	scored := make([]scoredProject, len(projects))
	for i := range projects {
		c := priority.ComputeComponents(&projects[i])
		scored[i] = scoredProject{
			project:    &projects[i],
			score:      c.Total(weights),
			components: c,
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	return scored
}

// buildCrewStates seeds a cursor per configured crew and moves it past any
// existing booking that covers it. Crews are keyed by name; a name repeated
// across locations refers to the same team.
func (o *Optimizer) buildCrewStates(crewsByLocation map[string][]models.Crew, bookings []models.ExistingBooking, startDate time.Time) map[string]*crewState {
	states := make(map[string]*crewState)

	locations := make([]string, 0, len(crewsByLocation))
	for loc := range crewsByLocation {
		locations = append(locations, loc)
	}
	sort.Strings(locations)

	for _, loc := range locations {
		for _, c := range crewsByLocation[loc] {
			if _, exists := states[c.Name]; exists {
				o.log.Debugf("optimize: crew %s configured at more than one location", c.Name)
				continue
			}
			states[c.Name] = &crewState{crew: c, cursor: startDate}
		}
	}

	for _, b := range bookings {
		state, ok := states[b.Crew]
		if !ok {
			o.log.Debugf("optimize: ignoring booking for unknown crew %s", b.Crew)
			continue
		}
		state.spans = insertSpan(state.spans, businessday.NewSpan(b.StartDate, b.Days))
	}

	for _, state := range states {
		for _, span := range state.spans {
			if !span.Start.After(state.cursor) && !span.End.Before(state.cursor) {
				state.cursor = businessday.NextBusinessDayAfter(span.End)
			}
		}
	}

	return states
}

// pickCrew chooses the crew at a location that can start the job earliest.
// Ties rotate round robin so equally available crews share the work.
func pickCrew(states map[string]*crewState, locCrews []models.Crew, rotation map[string]int, loc string, startDate time.Time, days int) (*crewState, businessday.Span) {
	n := len(locCrews)
	offset := rotation[loc] % n

	var best *crewState
	var bestSpan businessday.Span
	bestIdx := -1

	for k := 0; k < n; k++ {
		idx := (offset + k) % n
		state := states[locCrews[idx].Name]

		from := state.cursor
		if from.Before(startDate) {
			from = startDate
		}
		span := firstFreeSpan(state.spans, from, days)

		if best == nil || span.Start.Before(bestSpan.Start) {
			best = state
			bestSpan = span
			bestIdx = idx
		}
	}

	rotation[loc] = (bestIdx + 1) % n
	return best, bestSpan
}

// firstFreeSpan returns the earliest span starting on or after from that
// does not overlap any booked span. Spans are sorted by start, so each
// conflict pushes the start strictly forward and the loop ends within
// len(spans) iterations.
func firstFreeSpan(spans []businessday.Span, from time.Time, days int) businessday.Span {
	candidate := businessday.NewSpan(businessday.Normalize(from), days)
	for {
		moved := false
		for _, booked := range spans {
			if candidate.Overlaps(booked) {
				candidate = businessday.NewSpan(businessday.NextBusinessDayAfter(booked.End), days)
				moved = true
				break
			}
		}
		if !moved {
			return candidate
		}
	}
}

func insertSpan(spans []businessday.Span, s businessday.Span) []businessday.Span {
	i := sort.Search(len(spans), func(i int) bool { return spans[i].Start.After(s.Start) })
	spans = append(spans, businessday.Span{})
	copy(spans[i+1:], spans[i:])
	spans[i] = s
	return spans
}
