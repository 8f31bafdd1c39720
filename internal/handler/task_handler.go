package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-timetable-api/internal/dto"
	"github.com/noah-isme/uni-timetable-api/internal/models"
	"github.com/noah-isme/uni-timetable-api/internal/service"
	"github.com/noah-isme/uni-timetable-api/pkg/response"
)

type taskService interface {
	Create(ctx context.Context, userID string, req dto.CreateTaskRequest) (*models.Task, error)
	Board(ctx context.Context, userID string) (*dto.TaskBoard, error)
	Complete(ctx context.Context, userID, id string) error
	Reschedule(ctx context.Context, userID string, req dto.RescheduleRequest) (*dto.RescheduleResult, error)
}

// TaskHandler serves the caller's personal task board.
type TaskHandler struct {
	service taskService
}

// NewTaskHandler constructs the handler.
func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{service: svc}
}

// Create godoc
// @Summary Add a personal task
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateTaskRequest true "Task payload"
// @Success 201 {object} response.Envelope
// @Router /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.CreateTaskRequest
	if !bindJSON(c, &req, "invalid task payload") {
		return
	}
	task, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, task)
}

// Board godoc
// @Summary Open tasks split into scheduled and pending
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /tasks [get]
func (h *TaskHandler) Board(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	board, err := h.service.Board(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, board, nil)
}

// Complete godoc
// @Summary Mark a task done
// @Tags Tasks
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Success 204
// @Router /tasks/{id}/complete [post]
func (h *TaskHandler) Complete(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.service.Complete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Reschedule godoc
// @Summary Fill the available minutes with pending tasks by priority
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.RescheduleRequest true "Time budget"
// @Success 200 {object} response.Envelope
// @Router /tasks/reschedule [post]
func (h *TaskHandler) Reschedule(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.RescheduleRequest
	if !bindJSON(c, &req, "invalid reschedule payload") {
		return
	}
	result, err := h.service.Reschedule(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
