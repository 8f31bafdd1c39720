package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/internal/dto"
	"github.com/noah-isme/uni-timetable-api/internal/models"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

type userRepoStub struct {
	users      map[string]*models.User
	lastFilter models.UserFilter
	updated    models.UserRole
}

func (r *userRepoStub) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	r.lastFilter = filter
	var users []models.User
	for _, u := range r.users {
		users = append(users, *u)
	}
	return users, len(users), nil
}

func (r *userRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *userRepoStub) UpdateRole(ctx context.Context, id string, role models.UserRole) error {
	r.updated = role
	return nil
}

func TestUserServiceListPagination(t *testing.T) {
	repo := &userRepoStub{users: map[string]*models.User{"u1": {ID: "u1"}, "u2": {ID: "u2"}}}
	svc := NewUserService(repo, nil, nil)

	users, pagination, err := svc.List(context.Background(), models.UserFilter{PageSize: 500})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, &models.Pagination{Page: 1, PageSize: 100, TotalCount: 2}, pagination)
}

func TestUserServiceUpdateRole(t *testing.T) {
	repo := &userRepoStub{users: map[string]*models.User{"u1": {ID: "u1", Role: models.RoleStudent}}}
	svc := NewUserService(repo, nil, nil)

	user, err := svc.UpdateRole(context.Background(), models.RoleAdmin, "u1", dto.UpdateRoleRequest{Role: models.RoleTeacher})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, user.Role)
	assert.Equal(t, models.RoleTeacher, repo.updated)
}

func TestUserServiceUpdateRoleRules(t *testing.T) {
	repo := &userRepoStub{users: map[string]*models.User{"u1": {ID: "u1", Role: models.RoleStudent}}}
	svc := NewUserService(repo, nil, nil)

	_, err := svc.UpdateRole(context.Background(), models.RoleTeacher, "u1", dto.UpdateRoleRequest{Role: models.RoleAdmin})
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.UpdateRole(context.Background(), models.RoleAdmin, "u1", dto.UpdateRoleRequest{Role: "SUPERUSER"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.UpdateRole(context.Background(), models.RoleAdmin, "ghost", dto.UpdateRoleRequest{Role: models.RoleTeacher})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.updated)
}
