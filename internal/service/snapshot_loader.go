package service

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/noah-isme/uni-timetable-api/internal/models"
	"github.com/noah-isme/uni-timetable-api/internal/scheduler"
)

type timeSlotLister interface {
	List(ctx context.Context) ([]models.TimeSlot, error)
}

type locationLister interface {
	List(ctx context.Context, filter models.LocationFilter) ([]models.Location, error)
}

type professorLister interface {
	List(ctx context.Context, filter models.ProfessorFilter) ([]models.Professor, error)
}

type subjectLister interface {
	List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error)
}

type streamLister interface {
	List(ctx context.Context, filter models.StreamFilter) ([]models.Stream, error)
}

// SnapshotLoader reads the catalog into an engine snapshot.
type SnapshotLoader struct {
	timeSlots  timeSlotLister
	locations  locationLister
	professors professorLister
	subjects   subjectLister
	streams    streamLister
}

// NewSnapshotLoader wires the catalog readers.
func NewSnapshotLoader(timeSlots timeSlotLister, locations locationLister, professors professorLister, subjects subjectLister, streams streamLister) *SnapshotLoader {
	return &SnapshotLoader{timeSlots: timeSlots, locations: locations, professors: professors, subjects: subjects, streams: streams}
}

// Load returns the catalog in the stable order the engine relies on.
func (l *SnapshotLoader) Load(ctx context.Context) (scheduler.Snapshot, error) {
	var snapshot scheduler.Snapshot

	slots, err := l.timeSlots.List(ctx)
	if err != nil {
		return snapshot, err
	}
	for _, slot := range slots {
		converted, err := toEngineSlot(slot)
		if err != nil {
			return snapshot, err
		}
		snapshot.TimeSlots = append(snapshot.TimeSlots, converted)
	}

	locations, err := l.locations.List(ctx, models.LocationFilter{})
	if err != nil {
		return snapshot, err
	}
	snapshot.Locations = lo.Map(locations, func(loc models.Location, _ int) scheduler.Location {
		return scheduler.Location{ID: loc.ID, Name: loc.Name, Type: scheduler.LocationType(loc.LocationType), Floor: loc.Floor}
	})

	professors, err := l.professors.List(ctx, models.ProfessorFilter{})
	if err != nil {
		return snapshot, err
	}
	snapshot.Professors = lo.Map(professors, func(p models.Professor, _ int) scheduler.Professor {
		return scheduler.Professor{ID: p.ID, Name: p.Name, WeeklyCap: p.TotalWeeklyLectures}
	})

	subjects, err := l.subjects.List(ctx, models.SubjectFilter{})
	if err != nil {
		return snapshot, err
	}
	byID := lo.KeyBy(subjects, func(s models.Subject) string { return s.ID })

	streams, err := l.streams.List(ctx, models.StreamFilter{})
	if err != nil {
		return snapshot, err
	}
	for _, stream := range streams {
		converted := scheduler.Stream{
			ID:                         stream.ID,
			Name:                       stream.Name,
			NumberOfDays:               stream.NumberOfDays,
			NonAcademicLecturesPerWeek: stream.NonAcademicLecturesPerWeek,
		}
		for _, id := range stream.SubjectIDs {
			if subject, ok := byID[id]; ok {
				converted.Subjects = append(converted.Subjects, toEngineSubject(subject))
			}
		}
		snapshot.Streams = append(snapshot.Streams, converted)
	}

	return snapshot, nil
}

func toEngineSlot(slot models.TimeSlot) (scheduler.TimeSlot, error) {
	start, err := scheduler.ParseClock(slot.StartTime)
	if err != nil {
		return scheduler.TimeSlot{}, fmt.Errorf("time slot %s: %w", slot.ID, err)
	}
	end, err := scheduler.ParseClock(slot.EndTime)
	if err != nil {
		return scheduler.TimeSlot{}, fmt.Errorf("time slot %s: %w", slot.ID, err)
	}
	return scheduler.TimeSlot{ID: slot.ID, Start: start, End: end, IsBreak: slot.IsBreak}, nil
}

func toEngineSubject(subject models.Subject) scheduler.Subject {
	converted := scheduler.Subject{
		ID:              subject.ID,
		Name:            subject.Name,
		Code:            subject.Code,
		LecturesPerWeek: subject.LecturesPerWeek,
		NonAcademic:     subject.IsNonAcademic,
		ProfessorIDs:    append([]string(nil), subject.ProfessorIDs...),
	}
	if subject.RequiredLocationType != nil {
		converted.RequiredLocationType = scheduler.LocationType(*subject.RequiredLocationType)
	}
	return converted
}
