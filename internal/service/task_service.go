package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/internal/dto"
	"github.com/noah-isme/uni-timetable-api/internal/models"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

type taskRepository interface {
	txProvider
	Create(ctx context.Context, task *models.Task) error
	ListOpen(ctx context.Context, exec sqlx.ExtContext, userID string) ([]models.Task, error)
	FindByID(ctx context.Context, userID, id string) (*models.Task, error)
	MarkCompleted(ctx context.Context, userID, id string) error
	UnscheduleOpen(ctx context.Context, exec sqlx.ExtContext, userID string) error
	MarkScheduled(ctx context.Context, exec sqlx.ExtContext, ids []string) error
}

// TaskService manages a user's personal tasks and fits them into free time.
type TaskService struct {
	repo      taskRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTaskService creates a new task service.
func NewTaskService(repo taskRepository, validate *validator.Validate, logger *zap.Logger) *TaskService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{repo: repo, validator: validate, logger: logger}
}

// Create adds a pending task. Priority defaults to 1, the most urgent.
func (s *TaskService) Create(ctx context.Context, userID string, req dto.CreateTaskRequest) (*models.Task, error) {
	if req.Priority == 0 {
		req.Priority = 1
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid task payload")
	}
	task := &models.Task{
		UserID:           userID,
		Title:            strings.TrimSpace(req.Title),
		Description:      strings.TrimSpace(req.Description),
		Priority:         req.Priority,
		EstimatedMinutes: req.EstimatedMinutes,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create task")
	}
	return task, nil
}

// Board splits the user's open tasks into scheduled and pending.
func (s *TaskService) Board(ctx context.Context, userID string) (*dto.TaskBoard, error) {
	tasks, err := s.repo.ListOpen(ctx, nil, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tasks")
	}
	scheduled, pending := lo.FilterReject(tasks, func(t models.Task, _ int) bool { return t.IsScheduled })
	return &dto.TaskBoard{Scheduled: orEmpty(scheduled), Pending: orEmpty(pending)}, nil
}

// Complete marks one of the user's tasks as done.
func (s *TaskService) Complete(ctx context.Context, userID, id string) error {
	if _, err := s.repo.FindByID(ctx, userID, id); err != nil {
		return lookupError(err, "task")
	}
	if err := s.repo.MarkCompleted(ctx, userID, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to complete task")
	}
	return nil
}

// Reschedule clears the schedule and refills it in priority order until the
// first task that no longer fits the remaining minutes.
func (s *TaskService) Reschedule(ctx context.Context, userID string, req dto.RescheduleRequest) (result *dto.RescheduleResult, err error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reschedule payload")
	}

	tx, err := s.repo.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.repo.UnscheduleOpen(ctx, tx, userID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear schedule")
	}
	pending, err := s.repo.ListOpen(ctx, tx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tasks")
	}

	remaining := req.AvailableMinutes
	scheduled := make([]models.Task, 0, len(pending))
	for _, task := range pending {
		if task.EstimatedMinutes > remaining {
			break
		}
		remaining -= task.EstimatedMinutes
		task.IsScheduled = true
		scheduled = append(scheduled, task)
	}

	ids := lo.Map(scheduled, func(t models.Task, _ int) string { return t.ID })
	if err = s.repo.MarkScheduled(ctx, tx, ids); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to schedule tasks")
	}
	if err = tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit schedule")
	}

	s.logger.Debug("tasks rescheduled", zap.String("user_id", userID), zap.Int("scheduled", len(scheduled)))
	return &dto.RescheduleResult{
		Scheduled:        scheduled,
		UsedMinutes:      req.AvailableMinutes - remaining,
		RemainingMinutes: remaining,
	}, nil
}

func orEmpty(tasks []models.Task) []models.Task {
	if tasks == nil {
		return []models.Task{}
	}
	return tasks
}
