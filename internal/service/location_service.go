package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/internal/models"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

type locationRepository interface {
	List(ctx context.Context, filter models.LocationFilter) ([]models.Location, error)
	FindByID(ctx context.Context, id string) (*models.Location, error)
	Create(ctx context.Context, location *models.Location) error
	Update(ctx context.Context, location *models.Location) error
	Delete(ctx context.Context, id string) error
}

// LocationRequest captures fields for creating or updating rooms.
type LocationRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	LocationType string `json:"location_type" validate:"required,oneof=classroom lab auditorium hall"`
	Floor        int    `json:"floor" validate:"min=0,max=200"`
}

// LocationService handles room workflows.
type LocationService struct {
	repo      locationRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLocationService creates a new location service.
func NewLocationService(repo locationRepository, validate *validator.Validate, logger *zap.Logger) *LocationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocationService{repo: repo, validator: validate, logger: logger}
}

// List returns rooms filtered by type and floor.
func (s *LocationService) List(ctx context.Context, filter models.LocationFilter) ([]models.Location, error) {
	locations, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list locations")
	}
	return locations, nil
}

// Get returns a room by id.
func (s *LocationService) Get(ctx context.Context, id string) (*models.Location, error) {
	location, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "location")
	}
	return location, nil
}

// Create adds a room.
func (s *LocationService) Create(ctx context.Context, req LocationRequest) (*models.Location, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid location payload")
	}
	location := &models.Location{Name: strings.TrimSpace(req.Name), LocationType: req.LocationType, Floor: req.Floor}
	if err := s.repo.Create(ctx, location); err != nil {
		return nil, writeError(err, "create", "location")
	}
	return location, nil
}

// Update modifies a room.
func (s *LocationService) Update(ctx context.Context, id string, req LocationRequest) (*models.Location, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid location payload")
	}
	location, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	location.Name = strings.TrimSpace(req.Name)
	location.LocationType = req.LocationType
	location.Floor = req.Floor
	if err := s.repo.Update(ctx, location); err != nil {
		return nil, writeError(err, "update", "location")
	}
	return location, nil
}

// Delete removes a room.
func (s *LocationService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "delete", "location")
	}
	return nil
}
