package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

const locationColumns = `id, name, location_type, floor, created_at, updated_at`

// LocationRepository provides database access for rooms.
type LocationRepository struct {
	db *sqlx.DB
}

// NewLocationRepository creates a new instance of LocationRepository.
func NewLocationRepository(db *sqlx.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// List returns locations in stored order, optionally filtered by type and floor.
func (r *LocationRepository) List(ctx context.Context, filter models.LocationFilter) ([]models.Location, error) {
	var conditions []string
	var args []interface{}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, fmt.Sprintf("location_type = $%d", len(args)))
	}
	if filter.Floor != nil {
		args = append(args, *filter.Floor)
		conditions = append(conditions, fmt.Sprintf("floor = $%d", len(args)))
	}

	query := "SELECT " + locationColumns + " FROM locations"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at ASC, id ASC"

	var locations []models.Location
	if err := r.db.SelectContext(ctx, &locations, query, args...); err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return locations, nil
}

// FindByID returns a location by identifier.
func (r *LocationRepository) FindByID(ctx context.Context, id string) (*models.Location, error) {
	query := "SELECT " + locationColumns + " FROM locations WHERE id = $1"
	var location models.Location
	if err := r.db.GetContext(ctx, &location, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find location: %w", err)
	}
	return &location, nil
}

// Create inserts a location.
func (r *LocationRepository) Create(ctx context.Context, location *models.Location) error {
	if location.ID == "" {
		location.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	location.CreatedAt = now
	location.UpdatedAt = now

	const query = `INSERT INTO locations (id, name, location_type, floor, created_at, updated_at) VALUES (:id, :name, :location_type, :floor, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, location); err != nil {
		return fmt.Errorf("create location: %w", err)
	}
	return nil
}

// Update modifies a location.
func (r *LocationRepository) Update(ctx context.Context, location *models.Location) error {
	location.UpdatedAt = time.Now().UTC()
	const query = `UPDATE locations SET name = :name, location_type = :location_type, floor = :floor, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, location); err != nil {
		return fmt.Errorf("update location: %w", err)
	}
	return nil
}

// Delete removes a location and, by cascade, its timetable entries.
func (r *LocationRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM locations WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete location: %w", err)
	}
	return nil
}
