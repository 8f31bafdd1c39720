package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/internal/models"
	"github.com/noah-isme/uni-timetable-api/internal/scheduler"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

type subjectRepository interface {
	List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	ExistsByCode(ctx context.Context, code, excludeID string) (bool, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id string) error
}

// SubjectRequest captures fields for creating or updating subjects.
// ProfessorIDs is the preference order used by the generator.
type SubjectRequest struct {
	Name                   string   `json:"name" validate:"required,max=150"`
	Code                   string   `json:"code" validate:"required,max=20"`
	LecturesPerWeek        int      `json:"lectures_per_week" validate:"min=0,max=40"`
	LectureDurationMinutes int      `json:"lecture_duration_minutes" validate:"omitempty,min=15,max=240"`
	IsNonAcademic          bool     `json:"is_non_academic"`
	RequiredLocationType   *string  `json:"required_location_type" validate:"omitempty,oneof=classroom lab auditorium hall"`
	ProfessorIDs           []string `json:"professor_ids" validate:"dive,required"`
}

// SubjectService handles subject workflows.
type SubjectService struct {
	repo      subjectRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService creates a new subject service.
func NewSubjectService(repo subjectRepository, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, validator: validate, logger: logger}
}

// List returns subjects in stored order.
func (s *SubjectService) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error) {
	subjects, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	return subjects, nil
}

// Get returns subject by identifier.
func (s *SubjectService) Get(ctx context.Context, id string) (*models.Subject, error) {
	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "subject")
	}
	return subject, nil
}

// Create adds a new subject ensuring code uniqueness.
func (s *SubjectService) Create(ctx context.Context, req SubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if err := s.ensureUniqueCode(ctx, code, ""); err != nil {
		return nil, err
	}

	subject := &models.Subject{}
	applySubjectRequest(subject, req, code)
	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, writeError(err, "create", "subject")
	}
	return subject, nil
}

// Update modifies an existing subject.
func (s *SubjectService) Update(ctx context.Context, id string, req SubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}

	subject, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if err := s.ensureUniqueCode(ctx, code, id); err != nil {
		return nil, err
	}

	applySubjectRequest(subject, req, code)
	if err := s.repo.Update(ctx, subject); err != nil {
		return nil, writeError(err, "update", "subject")
	}
	return subject, nil
}

// Delete removes a subject.
func (s *SubjectService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "delete", "subject")
	}
	return nil
}

func (s *SubjectService) ensureUniqueCode(ctx context.Context, code, excludeID string) error {
	exists, err := s.repo.ExistsByCode(ctx, code, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject code")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "subject code already exists")
	}
	return nil
}

// applySubjectRequest copies the request. Academic subjects without an explicit
// room type get one from the name.
func applySubjectRequest(subject *models.Subject, req SubjectRequest, code string) {
	subject.Name = strings.TrimSpace(req.Name)
	subject.Code = code
	subject.LecturesPerWeek = req.LecturesPerWeek
	subject.LectureDurationMinutes = req.LectureDurationMinutes
	if subject.LectureDurationMinutes == 0 {
		subject.LectureDurationMinutes = 60
	}
	subject.IsNonAcademic = req.IsNonAcademic
	subject.RequiredLocationType = nil
	switch {
	case req.RequiredLocationType != nil:
		locationType := *req.RequiredLocationType
		subject.RequiredLocationType = &locationType
	case !req.IsNonAcademic:
		locationType := string(scheduler.InferLocationType(subject.Name))
		subject.RequiredLocationType = &locationType
	}
	subject.ProfessorIDs = lo.Uniq(req.ProfessorIDs)
	if req.IsNonAcademic {
		subject.ProfessorIDs = nil
	}
}
