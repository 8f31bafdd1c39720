package scheduler

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// Options tunes the engine. The zero value applies no lunch rule and the full
// five-day week.
type Options struct {
	// LunchBreakStart marks any slot starting at this time as non-schedulable,
	// in addition to slots flagged IsBreak.
	LunchBreakStart *Clock
	MaxDays         int
	// StreamExclusive stops two academic lectures of the same stream sharing a
	// (day, slot).
	StreamExclusive bool
}

// ParseOptions builds Options from configuration values. An empty lunch
// start disables the lunch rule.
func ParseOptions(lunchBreakStart string, maxDays int, streamExclusive bool) (Options, error) {
	opts := Options{MaxDays: maxDays, StreamExclusive: streamExclusive}
	if lunchBreakStart != "" {
		lunch, err := ParseClock(lunchBreakStart)
		if err != nil {
			return Options{}, fmt.Errorf("lunch break start: %w", err)
		}
		opts.LunchBreakStart = &lunch
	}
	return opts, nil
}

// Schedulable reports whether lectures may be placed in slot.
func (o Options) Schedulable(slot TimeSlot) bool {
	if slot.IsBreak {
		return false
	}
	return o.LunchBreakStart == nil || slot.Start != *o.LunchBreakStart
}

// Engine places lectures with a deterministic nested first-fit search:
// day, then slot, then professor, then location.
type Engine struct {
	opts Options
}

// NewEngine builds an engine.
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Options returns the engine configuration.
func (e *Engine) Options() Options {
	return e.opts
}

// Run places every stream's lectures. It returns an *IncompleteError when a
// base collection is empty and a *PlacementError for the first lecture that
// cannot be placed; no partial result is returned in either case.
func (e *Engine) Run(snapshot Snapshot) (*Result, error) {
	if err := checkComplete(snapshot); err != nil {
		return nil, err
	}

	slots := make([]TimeSlot, len(snapshot.TimeSlots))
	copy(slots, snapshot.TimeSlots)
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Start < slots[j].Start })
	slots = lo.Filter(slots, func(slot TimeSlot, _ int) bool { return e.opts.Schedulable(slot) })

	state := newRunState(snapshot.Professors)
	for _, stream := range snapshot.Streams {
		days := Days(stream.NumberOfDays, e.opts.MaxDays)
		academic := lo.Filter(stream.Subjects, func(s Subject, _ int) bool { return !s.NonAcademic })
		for _, subject := range academic {
			candidates := lo.Filter(snapshot.Locations, func(loc Location, _ int) bool {
				return loc.Type == subject.LocationType()
			})
			for i := 0; i < subject.LecturesPerWeek; i++ {
				if !e.placeAcademic(state, stream, subject, days, slots, candidates) {
					return nil, &PlacementError{
						Pass:        PassAcademic,
						StreamID:    stream.ID,
						StreamName:  stream.Name,
						SubjectID:   subject.ID,
						SubjectName: subject.Name,
						Instance:    i + 1,
						Required:    subject.LecturesPerWeek,
					}
				}
			}
		}

		nonAcademic := lo.Filter(stream.Subjects, func(s Subject, _ int) bool { return s.NonAcademic })
		for _, subject := range nonAcademic {
			for i := 0; i < stream.NonAcademicLecturesPerWeek; i++ {
				if !placeNonAcademic(state, stream, subject, days, slots) {
					return nil, &PlacementError{
						Pass:        PassNonAcademic,
						StreamID:    stream.ID,
						StreamName:  stream.Name,
						SubjectID:   subject.ID,
						SubjectName: subject.Name,
						Instance:    i + 1,
						Required:    stream.NonAcademicLecturesPerWeek,
					}
				}
			}
		}
	}

	return state.result(), nil
}

func (e *Engine) placeAcademic(state *runState, stream Stream, subject Subject, days []Day, slots []TimeSlot, locations []Location) bool {
	for _, day := range days {
		for _, slot := range slots {
			if e.opts.StreamExclusive && state.streamBusy(stream.ID, day, slot.ID) {
				continue
			}
			for _, professorID := range subject.ProfessorIDs {
				if !state.professorAvailable(professorID, day, slot.ID) {
					continue
				}
				location, ok := lo.Find(locations, func(loc Location) bool {
					return !state.locationBusy(loc.ID, day, slot.ID)
				})
				if !ok {
					continue
				}
				state.place(Placement{
					StreamID:    stream.ID,
					SubjectID:   subject.ID,
					ProfessorID: professorID,
					LocationID:  location.ID,
					Day:         day,
					TimeSlotID:  slot.ID,
				})
				return true
			}
		}
	}
	return false
}

func placeNonAcademic(state *runState, stream Stream, subject Subject, days []Day, slots []TimeSlot) bool {
	for _, day := range days {
		for _, slot := range slots {
			if state.streamBusy(stream.ID, day, slot.ID) {
				continue
			}
			state.place(Placement{
				StreamID:   stream.ID,
				SubjectID:  subject.ID,
				Day:        day,
				TimeSlotID: slot.ID,
			})
			return true
		}
	}
	return false
}

func checkComplete(snapshot Snapshot) error {
	var missing []string
	if len(snapshot.TimeSlots) == 0 {
		missing = append(missing, "time slots")
	}
	if len(snapshot.Locations) == 0 {
		missing = append(missing, "locations")
	}
	if len(snapshot.Professors) == 0 {
		missing = append(missing, "professors")
	}
	if len(snapshot.Streams) == 0 {
		missing = append(missing, "streams")
	}
	if len(missing) > 0 {
		return &IncompleteError{Missing: missing}
	}
	return nil
}
