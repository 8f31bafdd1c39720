package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/internal/dto"
	"github.com/noah-isme/uni-timetable-api/internal/models"
)

type taskMock struct {
	userID    string
	created   dto.CreateTaskRequest
	completed string
	budget    int
}

func (m *taskMock) Create(ctx context.Context, userID string, req dto.CreateTaskRequest) (*models.Task, error) {
	m.userID = userID
	m.created = req
	return &models.Task{ID: "task-1", UserID: userID, Title: req.Title}, nil
}

func (m *taskMock) Board(ctx context.Context, userID string) (*dto.TaskBoard, error) {
	m.userID = userID
	return &dto.TaskBoard{Scheduled: []models.Task{}, Pending: []models.Task{{ID: "task-1"}}}, nil
}

func (m *taskMock) Complete(ctx context.Context, userID, id string) error {
	m.userID = userID
	m.completed = id
	return nil
}

func (m *taskMock) Reschedule(ctx context.Context, userID string, req dto.RescheduleRequest) (*dto.RescheduleResult, error) {
	m.userID = userID
	m.budget = req.AvailableMinutes
	return &dto.RescheduleResult{Scheduled: []models.Task{}, RemainingMinutes: req.AvailableMinutes}, nil
}

func TestTaskCreateUsesCaller(t *testing.T) {
	mockSvc := &taskMock{}
	handler := &TaskHandler{service: mockSvc}
	body := mustJSON(t, dto.CreateTaskRequest{Title: "Read chapter 4", Priority: 2, EstimatedMinutes: 45})
	c, w := testContext(http.MethodPost, "/tasks", body, studentClaims())

	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "student-1", mockSvc.userID)
	assert.Equal(t, 45, mockSvc.created.EstimatedMinutes)
}

func TestTaskCreateInvalidPayload(t *testing.T) {
	handler := &TaskHandler{service: &taskMock{}}
	c, w := testContext(http.MethodPost, "/tasks", []byte(`{"title":`), studentClaims())

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskBoardRequiresClaims(t *testing.T) {
	mockSvc := &taskMock{}
	handler := &TaskHandler{service: mockSvc}
	c, w := testContext(http.MethodGet, "/tasks", nil, nil)

	handler.Board(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, mockSvc.userID)
}

func TestTaskCompleteAndReschedule(t *testing.T) {
	mockSvc := &taskMock{}
	handler := &TaskHandler{service: mockSvc}

	c, w := testContext(http.MethodPost, "/tasks/task-7/complete", nil, studentClaims())
	c.Params = gin.Params{{Key: "id", Value: "task-7"}}
	handler.Complete(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "task-7", mockSvc.completed)

	c, w = testContext(http.MethodPost, "/tasks/reschedule", []byte(`{"availableMinutes":90}`), studentClaims())
	handler.Reschedule(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 90, mockSvc.budget)
	assert.Contains(t, w.Body.String(), `"remainingMinutes":90`)
}
