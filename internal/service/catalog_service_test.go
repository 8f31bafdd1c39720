package service

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

func TestSubjectServiceCreateNormalisesCode(t *testing.T) {
	catalog := newCatalogFixture()
	svc := NewSubjectService(catalog.subjects, validator.New(), zap.NewNop())

	subject, err := svc.Create(context.Background(), SubjectRequest{
		Name:            "Networks Lab",
		Code:            " cs305l ",
		LecturesPerWeek: 2,
		ProfessorIDs:    []string{"p1", "p2", "p1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "CS305L", subject.Code)
	assert.Equal(t, 60, subject.LectureDurationMinutes)
	require.NotNil(t, subject.RequiredLocationType)
	assert.Equal(t, "lab", *subject.RequiredLocationType)
	assert.Equal(t, []string{"p1", "p2"}, subject.ProfessorIDs)

	_, err = svc.Create(context.Background(), SubjectRequest{Name: "Duplicate", Code: "cs201", LecturesPerWeek: 1})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestSubjectServiceNonAcademicHasNoResources(t *testing.T) {
	catalog := newCatalogFixture()
	svc := NewSubjectService(catalog.subjects, nil, nil)

	subject, err := svc.Create(context.Background(), SubjectRequest{
		Name:          "Yoga",
		Code:          "NA2",
		IsNonAcademic: true,
		ProfessorIDs:  []string{"p1"},
	})
	require.NoError(t, err)
	assert.Nil(t, subject.RequiredLocationType)
	assert.Empty(t, subject.ProfessorIDs)
}

func TestSubjectServiceExplicitLocationTypeWins(t *testing.T) {
	catalog := newCatalogFixture()
	svc := NewSubjectService(catalog.subjects, nil, nil)

	subject, err := svc.Update(context.Background(), "ds", SubjectRequest{
		Name:                 "Data Structures Lab",
		Code:                 "CS201",
		LecturesPerWeek:      3,
		RequiredLocationType: lo.ToPtr("auditorium"),
	})
	require.NoError(t, err)
	assert.Equal(t, "auditorium", *subject.RequiredLocationType)
}

func TestStreamServiceDefaultsAndOptions(t *testing.T) {
	catalog := newCatalogFixture()
	svc := NewStreamService(catalog.streams, nil, nil)

	stream, err := svc.Create(context.Background(), StreamRequest{
		Name:         "CS Sem 5 A",
		DepartmentID: "d1",
		Division:     lo.ToPtr("A"),
		Semester:     5,
		AcademicYear: "2025-26",
		SubjectIDs:   []string{"ds", "ds", "sports"},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, stream.NumberOfDays)
	assert.Equal(t, []string{"ds", "sports"}, stream.SubjectIDs)

	_, err = svc.Create(context.Background(), StreamRequest{Name: "Bad", DepartmentID: "d1", Semester: 1, AcademicYear: "2025", NumberOfDays: 6})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	options, err := svc.Options(context.Background(), "d1", lo.ToPtr(5))
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{3, 5}, options.Semesters)
	assert.Equal(t, []string{"A"}, options.Divisions)

	_, err = svc.Options(context.Background(), "", nil)
	require.Error(t, err)
}

func TestTimeSlotServiceRequiresOrderedTimes(t *testing.T) {
	catalog := newCatalogFixture()
	svc := NewTimeSlotService(catalog.slots, nil, nil)

	slot, err := svc.Create(context.Background(), TimeSlotRequest{StartTime: "14:00:00", EndTime: "15:00"})
	require.NoError(t, err)
	assert.Equal(t, "14:00", slot.StartTime)
	assert.Equal(t, "15:00", slot.EndTime)

	_, err = svc.Create(context.Background(), TimeSlotRequest{StartTime: "15:00", EndTime: "14:00"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Update(context.Background(), "missing", TimeSlotRequest{StartTime: "08:00", EndTime: "09:00"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestProfessorServiceEmailAndHours(t *testing.T) {
	catalog := newCatalogFixture()
	svc := NewProfessorService(catalog.professors, nil, nil)

	_, err := svc.Create(context.Background(), ProfessorRequest{
		Name: "Dr. Clone", Email: "RAO@uni.edu", WorkingHoursStart: "09:00", WorkingHoursEnd: "17:00", TotalWeeklyLectures: 5,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(context.Background(), ProfessorRequest{
		Name: "Dr. Late", Email: "late@uni.edu", WorkingHoursStart: "17:00", WorkingHoursEnd: "09:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	professor, err := svc.Update(context.Background(), "p1", ProfessorRequest{
		Name: "Dr. Rao", Email: "rao@uni.edu", WorkingHoursStart: "08:00", WorkingHoursEnd: "16:00", TotalWeeklyLectures: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, 12, professor.TotalWeeklyLectures)
}

func TestLocationServiceDeleteStillReferenced(t *testing.T) {
	catalog := newCatalogFixture()
	catalog.locations.deleteErr = &pq.Error{Code: "23503"}
	svc := NewLocationService(catalog.locations, nil, nil)

	err := svc.Delete(context.Background(), "r1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)

	err = svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCatalogErrorMapping(t *testing.T) {
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(writeError(&pq.Error{Code: "23505"}, "create", "department")).Code)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(writeError(&pq.Error{Code: "23503"}, "create", "stream")).Code)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(writeError(errors.New("boom"), "update", "stream")).Code)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(lookupError(&pq.Error{Code: "22P02"}, "stream")).Code)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(lookupError(errors.New("boom"), "stream")).Code)
}
