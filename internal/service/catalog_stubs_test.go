package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

type slotStore struct {
	slots []models.TimeSlot
}

func (s *slotStore) List(ctx context.Context) ([]models.TimeSlot, error) {
	return s.slots, nil
}

func (s *slotStore) FindByID(ctx context.Context, id string) (*models.TimeSlot, error) {
	slot, ok := lo.Find(s.slots, func(v models.TimeSlot) bool { return v.ID == id })
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &slot, nil
}

func (s *slotStore) Create(ctx context.Context, slot *models.TimeSlot) error {
	slot.ID = fmt.Sprintf("slot-%d", len(s.slots)+1)
	s.slots = append(s.slots, *slot)
	return nil
}

func (s *slotStore) Update(ctx context.Context, slot *models.TimeSlot) error {
	for i := range s.slots {
		if s.slots[i].ID == slot.ID {
			s.slots[i] = *slot
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *slotStore) Delete(ctx context.Context, id string) error {
	s.slots = lo.Reject(s.slots, func(v models.TimeSlot, _ int) bool { return v.ID == id })
	return nil
}

type locationStore struct {
	locations []models.Location
	deleteErr error
}

func (s *locationStore) List(ctx context.Context, filter models.LocationFilter) ([]models.Location, error) {
	return lo.Filter(s.locations, func(v models.Location, _ int) bool {
		return (filter.Type == "" || v.LocationType == filter.Type) && (filter.Floor == nil || v.Floor == *filter.Floor)
	}), nil
}

func (s *locationStore) FindByID(ctx context.Context, id string) (*models.Location, error) {
	location, ok := lo.Find(s.locations, func(v models.Location) bool { return v.ID == id })
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &location, nil
}

func (s *locationStore) Create(ctx context.Context, location *models.Location) error {
	location.ID = fmt.Sprintf("loc-%d", len(s.locations)+1)
	s.locations = append(s.locations, *location)
	return nil
}

func (s *locationStore) Update(ctx context.Context, location *models.Location) error {
	for i := range s.locations {
		if s.locations[i].ID == location.ID {
			s.locations[i] = *location
		}
	}
	return nil
}

func (s *locationStore) Delete(ctx context.Context, id string) error {
	return s.deleteErr
}

type professorStore struct {
	professors []models.Professor
	loads      []models.ProfessorLoad
}

func (s *professorStore) List(ctx context.Context, filter models.ProfessorFilter) ([]models.Professor, error) {
	return lo.Filter(s.professors, func(v models.Professor, _ int) bool {
		return filter.DepartmentID == "" || lo.Contains(v.DepartmentIDs, filter.DepartmentID)
	}), nil
}

func (s *professorStore) FindByID(ctx context.Context, id string) (*models.Professor, error) {
	professor, ok := lo.Find(s.professors, func(v models.Professor) bool { return v.ID == id })
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &professor, nil
}

func (s *professorStore) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	return lo.ContainsBy(s.professors, func(v models.Professor) bool {
		return strings.EqualFold(v.Email, email) && v.ID != excludeID
	}), nil
}

func (s *professorStore) Create(ctx context.Context, professor *models.Professor) error {
	professor.ID = fmt.Sprintf("prof-%d", len(s.professors)+1)
	s.professors = append(s.professors, *professor)
	return nil
}

func (s *professorStore) Update(ctx context.Context, professor *models.Professor) error {
	for i := range s.professors {
		if s.professors[i].ID == professor.ID {
			s.professors[i] = *professor
		}
	}
	return nil
}

func (s *professorStore) Delete(ctx context.Context, id string) error {
	return nil
}

func (s *professorStore) Loads(ctx context.Context) ([]models.ProfessorLoad, error) {
	return s.loads, nil
}

type subjectStore struct {
	subjects []models.Subject
}

func (s *subjectStore) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error) {
	return s.subjects, nil
}

func (s *subjectStore) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	subject, ok := lo.Find(s.subjects, func(v models.Subject) bool { return v.ID == id })
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &subject, nil
}

func (s *subjectStore) ExistsByCode(ctx context.Context, code, excludeID string) (bool, error) {
	return lo.ContainsBy(s.subjects, func(v models.Subject) bool { return v.Code == code && v.ID != excludeID }), nil
}

func (s *subjectStore) Create(ctx context.Context, subject *models.Subject) error {
	subject.ID = fmt.Sprintf("sub-%d", len(s.subjects)+1)
	s.subjects = append(s.subjects, *subject)
	return nil
}

func (s *subjectStore) Update(ctx context.Context, subject *models.Subject) error {
	for i := range s.subjects {
		if s.subjects[i].ID == subject.ID {
			s.subjects[i] = *subject
		}
	}
	return nil
}

func (s *subjectStore) Delete(ctx context.Context, id string) error {
	return nil
}

func (s *subjectStore) IsQualified(ctx context.Context, subjectID, professorID string) (bool, error) {
	subject, err := s.FindByID(ctx, subjectID)
	if err != nil {
		return false, nil
	}
	return lo.Contains(subject.ProfessorIDs, professorID), nil
}

type streamStore struct {
	streams []models.Stream
}

func (s *streamStore) List(ctx context.Context, filter models.StreamFilter) ([]models.Stream, error) {
	return lo.Filter(s.streams, func(v models.Stream, _ int) bool {
		return (filter.DepartmentID == "" || v.DepartmentID == filter.DepartmentID) &&
			(filter.Semester == nil || v.Semester == *filter.Semester)
	}), nil
}

func (s *streamStore) FindByID(ctx context.Context, id string) (*models.Stream, error) {
	stream, ok := lo.Find(s.streams, func(v models.Stream) bool { return v.ID == id })
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &stream, nil
}

func (s *streamStore) Semesters(ctx context.Context, departmentID string) ([]int, error) {
	streams, _ := s.List(ctx, models.StreamFilter{DepartmentID: departmentID})
	return lo.Uniq(lo.Map(streams, func(v models.Stream, _ int) int { return v.Semester })), nil
}

func (s *streamStore) Divisions(ctx context.Context, departmentID string, semester int) ([]string, error) {
	streams, _ := s.List(ctx, models.StreamFilter{DepartmentID: departmentID, Semester: &semester})
	var divisions []string
	for _, stream := range streams {
		if stream.Division != nil {
			divisions = append(divisions, *stream.Division)
		}
	}
	return lo.Uniq(divisions), nil
}

func (s *streamStore) Create(ctx context.Context, stream *models.Stream) error {
	stream.ID = fmt.Sprintf("stream-%d", len(s.streams)+1)
	s.streams = append(s.streams, *stream)
	return nil
}

func (s *streamStore) Update(ctx context.Context, stream *models.Stream) error {
	for i := range s.streams {
		if s.streams[i].ID == stream.ID {
			s.streams[i] = *stream
		}
	}
	return nil
}

func (s *streamStore) Delete(ctx context.Context, id string) error {
	return nil
}

// catalogFixture is a small department: one stream with a lecture, a lab and
// sports, two professors and three rooms.
type catalogFixture struct {
	slots      *slotStore
	locations  *locationStore
	professors *professorStore
	subjects   *subjectStore
	streams    *streamStore
}

func newCatalogFixture() *catalogFixture {
	labType := "lab"
	return &catalogFixture{
		slots: &slotStore{slots: []models.TimeSlot{
			{ID: "t1", StartTime: "09:00:00", EndTime: "10:00:00"},
			{ID: "t2", StartTime: "10:00:00", EndTime: "11:00:00"},
			{ID: "tb", StartTime: "11:00:00", EndTime: "11:15:00", IsBreak: true},
			{ID: "lunch", StartTime: "12:15:00", EndTime: "13:00:00"},
		}},
		locations: &locationStore{locations: []models.Location{
			{ID: "r1", Name: "Room 101", LocationType: "classroom", Floor: 1},
			{ID: "r2", Name: "Room 102", LocationType: "classroom", Floor: 1},
			{ID: "lab1", Name: "Lab A", LocationType: "lab", Floor: 2},
		}},
		professors: &professorStore{professors: []models.Professor{
			{ID: "p1", Name: "Dr. Rao", Email: "rao@uni.edu", WorkingHoursStart: "09:00:00", WorkingHoursEnd: "17:00:00", TotalWeeklyLectures: 10, DepartmentIDs: []string{"d1"}},
			{ID: "p2", Name: "Dr. Iyer", Email: "iyer@uni.edu", WorkingHoursStart: "09:00:00", WorkingHoursEnd: "17:00:00", TotalWeeklyLectures: 10, DepartmentIDs: []string{"d1"}},
		}},
		subjects: &subjectStore{subjects: []models.Subject{
			{ID: "ds", Name: "Data Structures", Code: "CS201", LecturesPerWeek: 3, ProfessorIDs: []string{"p1", "p2"}},
			{ID: "dsl", Name: "DS Lab", Code: "CS201L", LecturesPerWeek: 1, RequiredLocationType: &labType, ProfessorIDs: []string{"p2"}},
			{ID: "sports", Name: "Sports", Code: "NA1", IsNonAcademic: true},
		}},
		streams: &streamStore{streams: []models.Stream{
			{ID: "s1", Name: "CS Sem 3 A", DepartmentID: "d1", Semester: 3, NumberOfDays: 5, NonAcademicLecturesPerWeek: 2, SubjectIDs: []string{"ds", "dsl", "sports"}},
			{ID: "s2", Name: "CS Sem 3 B", DepartmentID: "d1", Semester: 3, NumberOfDays: 3, NonAcademicLecturesPerWeek: 0, SubjectIDs: []string{"ds"}},
		}},
	}
}
