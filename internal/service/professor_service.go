package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/internal/models"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

type professorRepository interface {
	List(ctx context.Context, filter models.ProfessorFilter) ([]models.Professor, error)
	FindByID(ctx context.Context, id string) (*models.Professor, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, professor *models.Professor) error
	Update(ctx context.Context, professor *models.Professor) error
	Delete(ctx context.Context, id string) error
	Loads(ctx context.Context) ([]models.ProfessorLoad, error)
}

// ProfessorRequest captures fields for creating or updating professors.
type ProfessorRequest struct {
	Name                string   `json:"name" validate:"required,max=150"`
	Email               string   `json:"email" validate:"required,email"`
	WorkingHoursStart   string   `json:"working_hours_start" validate:"required"`
	WorkingHoursEnd     string   `json:"working_hours_end" validate:"required"`
	TotalWeeklyLectures int      `json:"total_weekly_lectures" validate:"min=0,max=60"`
	DepartmentIDs       []string `json:"department_ids" validate:"dive,required"`
}

// ProfessorService handles professor workflows.
type ProfessorService struct {
	repo      professorRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProfessorService creates a new professor service.
func NewProfessorService(repo professorRepository, validate *validator.Validate, logger *zap.Logger) *ProfessorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfessorService{repo: repo, validator: validate, logger: logger}
}

// List returns professors filtered by department or search term.
func (s *ProfessorService) List(ctx context.Context, filter models.ProfessorFilter) ([]models.Professor, error) {
	professors, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list professors")
	}
	return professors, nil
}

// Get returns a professor by id.
func (s *ProfessorService) Get(ctx context.Context, id string) (*models.Professor, error) {
	professor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "professor")
	}
	return professor, nil
}

// Loads reports each professor's assigned weekly lectures against the cap.
func (s *ProfessorService) Loads(ctx context.Context) ([]models.ProfessorLoad, error) {
	loads, err := s.repo.Loads(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professor workloads")
	}
	return loads, nil
}

// Create adds a professor ensuring the email is unique.
func (s *ProfessorService) Create(ctx context.Context, req ProfessorRequest) (*models.Professor, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.ensureUniqueEmail(ctx, email, ""); err != nil {
		return nil, err
	}

	professor := &models.Professor{}
	applyProfessorRequest(professor, req, email)
	if err := s.repo.Create(ctx, professor); err != nil {
		return nil, writeError(err, "create", "professor")
	}
	return professor, nil
}

// Update modifies a professor and replaces its departments.
func (s *ProfessorService) Update(ctx context.Context, id string, req ProfessorRequest) (*models.Professor, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	professor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.ensureUniqueEmail(ctx, email, id); err != nil {
		return nil, err
	}

	applyProfessorRequest(professor, req, email)
	if err := s.repo.Update(ctx, professor); err != nil {
		return nil, writeError(err, "update", "professor")
	}
	return professor, nil
}

// Delete removes a professor and its timetable entries.
func (s *ProfessorService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "delete", "professor")
	}
	return nil
}

func (s *ProfessorService) validate(req ProfessorRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid professor payload")
	}
	if !workingHoursValid(req.WorkingHoursStart, req.WorkingHoursEnd) {
		return appErrors.Clone(appErrors.ErrValidation, "working hours start must be before end")
	}
	return nil
}

func (s *ProfessorService) ensureUniqueEmail(ctx context.Context, email, excludeID string) error {
	exists, err := s.repo.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check professor email")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "professor email already exists")
	}
	return nil
}

func applyProfessorRequest(professor *models.Professor, req ProfessorRequest, email string) {
	professor.Name = strings.TrimSpace(req.Name)
	professor.Email = email
	professor.WorkingHoursStart = req.WorkingHoursStart
	professor.WorkingHoursEnd = req.WorkingHoursEnd
	professor.TotalWeeklyLectures = req.TotalWeeklyLectures
	professor.DepartmentIDs = lo.Uniq(req.DepartmentIDs)
}
