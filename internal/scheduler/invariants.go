package scheduler

import (
	"fmt"

	"github.com/samber/lo"
)

// Violation describes a placement set that breaks a timetable rule.
type Violation struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Rule names reported by CheckInvariants.
const (
	RuleProfessorDoubleBooked = "professor_double_booked"
	RuleLocationDoubleBooked  = "location_double_booked"
	RuleProfessorCapExceeded  = "professor_cap_exceeded"
	RuleBreakSlotUsed         = "break_slot_used"
	RuleUnqualifiedProfessor  = "unqualified_professor"
)

// CheckInvariants audits placements against the snapshot they were built
// from. An empty result means the timetable is sound.
func CheckInvariants(snapshot Snapshot, opts Options, placements []Placement) []Violation {
	var violations []Violation

	slots := lo.KeyBy(snapshot.TimeSlots, func(s TimeSlot) string { return s.ID })
	professors := lo.KeyBy(snapshot.Professors, func(p Professor) string { return p.ID })
	qualified := make(map[string]map[string]bool)
	for _, stream := range snapshot.Streams {
		for _, subject := range stream.Subjects {
			set := qualified[subject.ID]
			if set == nil {
				set = make(map[string]bool)
				qualified[subject.ID] = set
			}
			for _, id := range subject.ProfessorIDs {
				set[id] = true
			}
		}
	}

	professorSeen := make(map[string]bool)
	locationSeen := make(map[string]bool)
	load := make(map[string]int)

	for _, p := range placements {
		cell := fmt.Sprintf("%s/%s", p.Day, p.TimeSlotID)
		if slot, ok := slots[p.TimeSlotID]; ok && !opts.Schedulable(slot) {
			violations = append(violations, Violation{
				Rule:    RuleBreakSlotUsed,
				Message: fmt.Sprintf("stream %s uses break slot %s on %s", p.StreamID, slot.Label(), p.Day),
			})
		}
		if p.ProfessorID != "" {
			key := cell + "/" + p.ProfessorID
			if professorSeen[key] {
				violations = append(violations, Violation{
					Rule:    RuleProfessorDoubleBooked,
					Message: fmt.Sprintf("professor %s booked twice at %s", p.ProfessorID, cell),
				})
			}
			professorSeen[key] = true
			load[p.ProfessorID]++
			if !qualified[p.SubjectID][p.ProfessorID] {
				violations = append(violations, Violation{
					Rule:    RuleUnqualifiedProfessor,
					Message: fmt.Sprintf("professor %s is not qualified for subject %s", p.ProfessorID, p.SubjectID),
				})
			}
		}
		if p.LocationID != "" {
			key := cell + "/" + p.LocationID
			if locationSeen[key] {
				violations = append(violations, Violation{
					Rule:    RuleLocationDoubleBooked,
					Message: fmt.Sprintf("location %s booked twice at %s", p.LocationID, cell),
				})
			}
			locationSeen[key] = true
		}
	}

	for _, professor := range snapshot.Professors {
		if load[professor.ID] > professor.WeeklyCap {
			violations = append(violations, Violation{
				Rule:    RuleProfessorCapExceeded,
				Message: fmt.Sprintf("professor %s has %d lectures, cap %d", professor.Name, load[professor.ID], professor.WeeklyCap),
			})
		}
	}
	for id, n := range load {
		if _, known := professors[id]; !known {
			violations = append(violations, Violation{
				Rule:    RuleProfessorCapExceeded,
				Message: fmt.Sprintf("professor %s has %d lectures and no known cap", id, n),
			})
		}
	}

	return violations
}
