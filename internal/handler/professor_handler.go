package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-timetable-api/internal/models"
	"github.com/noah-isme/uni-timetable-api/internal/service"
	"github.com/noah-isme/uni-timetable-api/pkg/response"
)

// ProfessorHandler exposes professor management.
type ProfessorHandler struct {
	service *service.ProfessorService
}

// NewProfessorHandler constructs the handler.
func NewProfessorHandler(svc *service.ProfessorService) *ProfessorHandler {
	return &ProfessorHandler{service: svc}
}

// List godoc
// @Summary List professors
// @Tags Professors
// @Produce json
// @Security BearerAuth
// @Param department_id query string false "Department"
// @Param search query string false "Search name or email"
// @Success 200 {object} response.Envelope
// @Router /professors [get]
func (h *ProfessorHandler) List(c *gin.Context) {
	filter := models.ProfessorFilter{
		DepartmentID: c.Query("department_id"),
		Search:       strings.TrimSpace(c.Query("search")),
	}
	professors, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, professors, nil)
}

// Loads godoc
// @Summary Weekly lecture load per professor
// @Tags Professors
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /professors/loads [get]
func (h *ProfessorHandler) Loads(c *gin.Context) {
	loads, err := h.service.Loads(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, loads, nil)
}

// Get godoc
// @Summary Get professor by id
// @Tags Professors
// @Produce json
// @Security BearerAuth
// @Param id path string true "Professor ID"
// @Success 200 {object} response.Envelope
// @Router /professors/{id} [get]
func (h *ProfessorHandler) Get(c *gin.Context) {
	professor, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, professor, nil)
}

// Create godoc
// @Summary Create professor
// @Tags Professors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.ProfessorRequest true "Professor payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /professors [post]
func (h *ProfessorHandler) Create(c *gin.Context) {
	var req service.ProfessorRequest
	if !bindJSON(c, &req, "invalid payload") {
		return
	}
	professor, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, professor)
}

// Update godoc
// @Summary Update professor
// @Tags Professors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Professor ID"
// @Param payload body service.ProfessorRequest true "Professor payload"
// @Success 200 {object} response.Envelope
// @Router /professors/{id} [put]
func (h *ProfessorHandler) Update(c *gin.Context) {
	var req service.ProfessorRequest
	if !bindJSON(c, &req, "invalid payload") {
		return
	}
	professor, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, professor, nil)
}

// Delete godoc
// @Summary Delete professor
// @Tags Professors
// @Security BearerAuth
// @Param id path string true "Professor ID"
// @Success 204
// @Router /professors/{id} [delete]
func (h *ProfessorHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
