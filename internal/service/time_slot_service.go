package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/internal/models"
	"github.com/noah-isme/uni-timetable-api/internal/scheduler"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

type timeSlotRepository interface {
	List(ctx context.Context) ([]models.TimeSlot, error)
	FindByID(ctx context.Context, id string) (*models.TimeSlot, error)
	Create(ctx context.Context, slot *models.TimeSlot) error
	Update(ctx context.Context, slot *models.TimeSlot) error
	Delete(ctx context.Context, id string) error
}

// TimeSlotRequest captures a teaching period. Times are HH:MM.
type TimeSlotRequest struct {
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	IsBreak   bool   `json:"is_break"`
}

// TimeSlotService handles time slot workflows.
type TimeSlotService struct {
	repo      timeSlotRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimeSlotService creates a new time slot service.
func NewTimeSlotService(repo timeSlotRepository, validate *validator.Validate, logger *zap.Logger) *TimeSlotService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimeSlotService{repo: repo, validator: validate, logger: logger}
}

// List returns slots by start time.
func (s *TimeSlotService) List(ctx context.Context) ([]models.TimeSlot, error) {
	slots, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list time slots")
	}
	return slots, nil
}

// Get returns a slot by id.
func (s *TimeSlotService) Get(ctx context.Context, id string) (*models.TimeSlot, error) {
	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "time slot")
	}
	return slot, nil
}

// Create adds a slot.
func (s *TimeSlotService) Create(ctx context.Context, req TimeSlotRequest) (*models.TimeSlot, error) {
	start, end, err := s.parse(req)
	if err != nil {
		return nil, err
	}
	slot := &models.TimeSlot{StartTime: start.String(), EndTime: end.String(), IsBreak: req.IsBreak}
	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, writeError(err, "create", "time slot")
	}
	return slot, nil
}

// Update modifies a slot.
func (s *TimeSlotService) Update(ctx context.Context, id string, req TimeSlotRequest) (*models.TimeSlot, error) {
	start, end, err := s.parse(req)
	if err != nil {
		return nil, err
	}
	slot, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	slot.StartTime = start.String()
	slot.EndTime = end.String()
	slot.IsBreak = req.IsBreak
	if err := s.repo.Update(ctx, slot); err != nil {
		return nil, writeError(err, "update", "time slot")
	}
	return slot, nil
}

// Delete removes a slot and the entries placed in it.
func (s *TimeSlotService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "delete", "time slot")
	}
	return nil
}

func (s *TimeSlotService) parse(req TimeSlotRequest) (scheduler.Clock, scheduler.Clock, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time slot payload")
	}
	start, err := scheduler.ParseClock(req.StartTime)
	if err != nil {
		return 0, 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start time")
	}
	end, err := scheduler.ParseClock(req.EndTime)
	if err != nil {
		return 0, 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid end time")
	}
	if start >= end {
		return 0, 0, appErrors.Clone(appErrors.ErrValidation, "start time must be before end time")
	}
	return start, end, nil
}
