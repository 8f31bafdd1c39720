package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-timetable-api/internal/models"
	"github.com/noah-isme/uni-timetable-api/internal/service"
	"github.com/noah-isme/uni-timetable-api/pkg/response"
)

// StreamHandler exposes streams and their curricula.
type StreamHandler struct {
	service *service.StreamService
}

// NewStreamHandler constructs the handler.
func NewStreamHandler(svc *service.StreamService) *StreamHandler {
	return &StreamHandler{service: svc}
}

// List godoc
// @Summary List streams
// @Tags Streams
// @Produce json
// @Security BearerAuth
// @Param department_id query string false "Department"
// @Param semester query int false "Semester"
// @Param division query string false "Division"
// @Success 200 {object} response.Envelope
// @Router /streams [get]
func (h *StreamHandler) List(c *gin.Context) {
	filter := models.StreamFilter{
		DepartmentID: c.Query("department_id"),
		Semester:     queryInt(c, "semester"),
		Division:     strings.TrimSpace(c.Query("division")),
	}
	streams, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, streams, nil)
}

// Options godoc
// @Summary Semester and division choices for a department
// @Tags Streams
// @Produce json
// @Security BearerAuth
// @Param department_id query string true "Department"
// @Param semester query int false "Semester, narrows the divisions"
// @Success 200 {object} response.Envelope
// @Router /streams/options [get]
func (h *StreamHandler) Options(c *gin.Context) {
	options, err := h.service.Options(c.Request.Context(), c.Query("department_id"), queryInt(c, "semester"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, options, nil)
}

// Get godoc
// @Summary Get stream by id
// @Tags Streams
// @Produce json
// @Security BearerAuth
// @Param id path string true "Stream ID"
// @Success 200 {object} response.Envelope
// @Router /streams/{id} [get]
func (h *StreamHandler) Get(c *gin.Context) {
	stream, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stream, nil)
}

// Create godoc
// @Summary Create stream
// @Tags Streams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.StreamRequest true "Stream payload"
// @Success 201 {object} response.Envelope
// @Router /streams [post]
func (h *StreamHandler) Create(c *gin.Context) {
	var req service.StreamRequest
	if !bindJSON(c, &req, "invalid payload") {
		return
	}
	stream, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, stream)
}

// Update godoc
// @Summary Update stream
// @Tags Streams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Stream ID"
// @Param payload body service.StreamRequest true "Stream payload"
// @Success 200 {object} response.Envelope
// @Router /streams/{id} [put]
func (h *StreamHandler) Update(c *gin.Context) {
	var req service.StreamRequest
	if !bindJSON(c, &req, "invalid payload") {
		return
	}
	stream, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stream, nil)
}

// Delete godoc
// @Summary Delete stream
// @Tags Streams
// @Security BearerAuth
// @Param id path string true "Stream ID"
// @Success 204
// @Router /streams/{id} [delete]
func (h *StreamHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
