package dto

import "github.com/noah-isme/uni-timetable-api/internal/models"

// UpdateRoleRequest changes a user's role.
type UpdateRoleRequest struct {
	Role models.UserRole `json:"role" validate:"required"`
}
