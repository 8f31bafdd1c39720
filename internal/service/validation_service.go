package service

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/internal/dto"
	"github.com/noah-isme/uni-timetable-api/internal/models"
	"github.com/noah-isme/uni-timetable-api/internal/scheduler"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

type professorLoadReader interface {
	professorLister
	Loads(ctx context.Context) ([]models.ProfessorLoad, error)
}

// ValidationService checks that the catalog can produce a timetable before a
// generation run touches the database.
type ValidationService struct {
	timeSlots  timeSlotLister
	locations  locationLister
	professors professorLoadReader
	subjects   subjectLister
	streams    streamLister
	maxDays    int
	logger     *zap.Logger
	now        func() time.Time
}

// NewValidationService constructs a ValidationService.
func NewValidationService(timeSlots timeSlotLister, locations locationLister, professors professorLoadReader, subjects subjectLister, streams streamLister, maxDays int, logger *zap.Logger) *ValidationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxDays <= 0 || maxDays > len(scheduler.Weekdays()) {
		maxDays = len(scheduler.Weekdays())
	}
	return &ValidationService{
		timeSlots:  timeSlots,
		locations:  locations,
		professors: professors,
		subjects:   subjects,
		streams:    streams,
		maxDays:    maxDays,
		logger:     logger,
		now:        time.Now,
	}
}

// Validate runs every check and reports all problems found.
func (s *ValidationService) Validate(ctx context.Context) (*dto.ValidationReport, error) {
	var problems []string

	subjects, err := s.subjects.List(ctx, models.SubjectFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subjects")
	}
	locations, err := s.locations.List(ctx, models.LocationFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load locations")
	}
	locationTypes := lo.SliceToMap(locations, func(loc models.Location) (string, bool) { return loc.LocationType, true })

	for _, subject := range subjects {
		if subject.IsNonAcademic {
			continue
		}
		if len(subject.ProfessorIDs) == 0 {
			problems = append(problems, fmt.Sprintf("Subject %s has no assigned professors", subject.Name))
		}
		if subject.LecturesPerWeek <= 0 {
			problems = append(problems, fmt.Sprintf("Subject %s has invalid lectures per week", subject.Name))
		}
		required := toEngineSubject(subject).LocationType()
		if len(locations) > 0 && !locationTypes[string(required)] {
			problems = append(problems, fmt.Sprintf("Subject %s needs a %s but none exists", subject.Name, required))
		}
	}

	streams, err := s.streams.List(ctx, models.StreamFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load streams")
	}
	for _, stream := range streams {
		if len(stream.SubjectIDs) == 0 {
			problems = append(problems, fmt.Sprintf("Stream %s has no subjects", stream.Name))
		}
		if stream.NumberOfDays < 1 || stream.NumberOfDays > s.maxDays {
			problems = append(problems, fmt.Sprintf("Stream %s has number of days %d outside 1..%d", stream.Name, stream.NumberOfDays, s.maxDays))
		}
	}

	loads, err := s.professors.Loads(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professor workloads")
	}
	for _, load := range loads {
		if load.RequiredTotal > load.Cap {
			problems = append(problems, fmt.Sprintf("Professor %s is assigned more lectures (%d) than allowed (%d)", load.Name, load.RequiredTotal, load.Cap))
		}
	}

	professors, err := s.professors.List(ctx, models.ProfessorFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professors")
	}
	for _, professor := range professors {
		if !workingHoursValid(professor.WorkingHoursStart, professor.WorkingHoursEnd) {
			problems = append(problems, fmt.Sprintf("Professor %s has invalid working hours", professor.Name))
		}
	}

	if len(locations) == 0 {
		problems = append(problems, "No locations defined")
	}

	slots, err := s.timeSlots.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slots")
	}
	if len(slots) == 0 {
		problems = append(problems, "No time slots defined")
	}

	report := &dto.ValidationReport{
		Valid:     len(problems) == 0,
		Errors:    problems,
		CheckedAt: s.now().UTC(),
	}
	if report.Errors == nil {
		report.Errors = []string{}
	}
	if !report.Valid {
		s.logger.Info("timetable data validation failed", zap.Int("problems", len(problems)))
	}
	return report, nil
}

// Check returns VALIDATION_FAILED carrying the problem list when the data is invalid.
func (s *ValidationService) Check(ctx context.Context) error {
	report, err := s.Validate(ctx)
	if err != nil {
		return err
	}
	if !report.Valid {
		return appErrors.WithDetails(appErrors.ErrValidationFailed, "", dto.GenerationFailure{
			Kind:    dto.FailureValidation,
			Message: appErrors.ErrValidationFailed.Message,
			Reasons: report.Errors,
		})
	}
	return nil
}

func workingHoursValid(start, end string) bool {
	from, err := scheduler.ParseClock(start)
	if err != nil {
		return false
	}
	to, err := scheduler.ParseClock(end)
	if err != nil {
		return false
	}
	return from < to
}
