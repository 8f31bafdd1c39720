package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/internal/dto"
	"github.com/noah-isme/uni-timetable-api/internal/models"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

type streamRepository interface {
	List(ctx context.Context, filter models.StreamFilter) ([]models.Stream, error)
	FindByID(ctx context.Context, id string) (*models.Stream, error)
	Semesters(ctx context.Context, departmentID string) ([]int, error)
	Divisions(ctx context.Context, departmentID string, semester int) ([]string, error)
	Create(ctx context.Context, stream *models.Stream) error
	Update(ctx context.Context, stream *models.Stream) error
	Delete(ctx context.Context, id string) error
}

// StreamRequest captures fields for creating or updating streams. SubjectIDs
// is the curriculum in scheduling order.
type StreamRequest struct {
	Name                       string   `json:"name" validate:"required,max=150"`
	DepartmentID               string   `json:"department_id" validate:"required"`
	Division                   *string  `json:"division" validate:"omitempty,max=10"`
	Semester                   int      `json:"semester" validate:"required,min=1,max=12"`
	AcademicYear               string   `json:"academic_year" validate:"required,max=20"`
	NumberOfDays               int      `json:"number_of_days" validate:"omitempty,min=1,max=5"`
	NonAcademicLecturesPerWeek int      `json:"non_academic_lectures_per_week" validate:"min=0,max=20"`
	CoordinatorID              *string  `json:"coordinator_id"`
	SubjectIDs                 []string `json:"subject_ids" validate:"dive,required"`
}

// StreamService handles stream workflows.
type StreamService struct {
	repo      streamRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStreamService creates a new stream service.
func NewStreamService(repo streamRepository, validate *validator.Validate, logger *zap.Logger) *StreamService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StreamService{repo: repo, validator: validate, logger: logger}
}

// List returns streams matching the department, semester and division filter.
func (s *StreamService) List(ctx context.Context, filter models.StreamFilter) ([]models.Stream, error) {
	streams, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list streams")
	}
	return streams, nil
}

// Options returns the semesters of a department and, once a semester is
// chosen, its divisions.
func (s *StreamService) Options(ctx context.Context, departmentID string, semester *int) (*dto.StreamOptions, error) {
	if departmentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "department_id is required")
	}
	semesters, err := s.repo.Semesters(ctx, departmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list semesters")
	}
	options := &dto.StreamOptions{Semesters: semesters, Divisions: []string{}}
	if options.Semesters == nil {
		options.Semesters = []int{}
	}
	if semester != nil {
		divisions, err := s.repo.Divisions(ctx, departmentID, *semester)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list divisions")
		}
		if divisions != nil {
			options.Divisions = divisions
		}
	}
	return options, nil
}

// Get returns a stream by id.
func (s *StreamService) Get(ctx context.Context, id string) (*models.Stream, error) {
	stream, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "stream")
	}
	return stream, nil
}

// Create adds a stream with its curriculum.
func (s *StreamService) Create(ctx context.Context, req StreamRequest) (*models.Stream, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid stream payload")
	}
	stream := &models.Stream{}
	applyStreamRequest(stream, req)
	if err := s.repo.Create(ctx, stream); err != nil {
		return nil, writeError(err, "create", "stream")
	}
	return stream, nil
}

// Update modifies a stream and replaces its curriculum.
func (s *StreamService) Update(ctx context.Context, id string, req StreamRequest) (*models.Stream, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid stream payload")
	}
	stream, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyStreamRequest(stream, req)
	if err := s.repo.Update(ctx, stream); err != nil {
		return nil, writeError(err, "update", "stream")
	}
	return stream, nil
}

// Delete removes a stream and its timetable entries.
func (s *StreamService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "delete", "stream")
	}
	return nil
}

func applyStreamRequest(stream *models.Stream, req StreamRequest) {
	stream.Name = strings.TrimSpace(req.Name)
	stream.DepartmentID = req.DepartmentID
	stream.Division = nonEmpty(req.Division)
	stream.Semester = req.Semester
	stream.AcademicYear = strings.TrimSpace(req.AcademicYear)
	stream.NumberOfDays = req.NumberOfDays
	if stream.NumberOfDays == 0 {
		stream.NumberOfDays = 5
	}
	stream.NonAcademicLecturesPerWeek = req.NonAcademicLecturesPerWeek
	stream.CoordinatorID = nonEmpty(req.CoordinatorID)
	stream.SubjectIDs = lo.Uniq(req.SubjectIDs)
}
