package scheduler

type slotKey struct {
	day  Day
	slot string
}

type streamSlotKey struct {
	stream string
	slotKey
}

// runState is the conflict index of a single run. It is discarded when Run
// returns.
type runState struct {
	caps       map[string]int
	load       map[string]int
	professors map[slotKey]map[string]struct{}
	locations  map[slotKey]map[string]struct{}
	streams    map[streamSlotKey]int
	placements []Placement
}

func newRunState(professors []Professor) *runState {
	caps := make(map[string]int, len(professors))
	for _, p := range professors {
		caps[p.ID] = p.WeeklyCap
	}
	return &runState{
		caps:       caps,
		load:       make(map[string]int, len(professors)),
		professors: make(map[slotKey]map[string]struct{}),
		locations:  make(map[slotKey]map[string]struct{}),
		streams:    make(map[streamSlotKey]int),
	}
}

// professorAvailable rejects unknown professors, exhausted caps and
// (day, slot) clashes.
func (s *runState) professorAvailable(id string, day Day, slotID string) bool {
	limit, ok := s.caps[id]
	if !ok || s.load[id] >= limit {
		return false
	}
	_, busy := s.professors[slotKey{day, slotID}][id]
	return !busy
}

func (s *runState) locationBusy(id string, day Day, slotID string) bool {
	_, busy := s.locations[slotKey{day, slotID}][id]
	return busy
}

func (s *runState) streamBusy(streamID string, day Day, slotID string) bool {
	return s.streams[streamSlotKey{streamID, slotKey{day, slotID}}] > 0
}

func (s *runState) place(p Placement) {
	key := slotKey{p.Day, p.TimeSlotID}
	if p.ProfessorID != "" {
		if s.professors[key] == nil {
			s.professors[key] = make(map[string]struct{})
		}
		s.professors[key][p.ProfessorID] = struct{}{}
		s.load[p.ProfessorID]++
	}
	if p.LocationID != "" {
		if s.locations[key] == nil {
			s.locations[key] = make(map[string]struct{})
		}
		s.locations[key][p.LocationID] = struct{}{}
	}
	s.streams[streamSlotKey{p.StreamID, key}]++
	s.placements = append(s.placements, p)
}

func (s *runState) result() *Result {
	counts := make(map[string]int)
	for _, p := range s.placements {
		counts[p.StreamID]++
	}
	load := make(map[string]int, len(s.load))
	for id, n := range s.load {
		load[id] = n
	}
	return &Result{
		Placements:    s.placements,
		ProfessorLoad: load,
		StreamCounts:  counts,
	}
}
