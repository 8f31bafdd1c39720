package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-timetable-api/internal/models"
	"github.com/noah-isme/uni-timetable-api/internal/service"
	"github.com/noah-isme/uni-timetable-api/pkg/response"
)

// LocationHandler exposes rooms and labs.
type LocationHandler struct {
	service *service.LocationService
}

// NewLocationHandler constructs the handler.
func NewLocationHandler(svc *service.LocationService) *LocationHandler {
	return &LocationHandler{service: svc}
}

func locationFilter(c *gin.Context) models.LocationFilter {
	return models.LocationFilter{
		Type:  strings.ToLower(strings.TrimSpace(c.Query("type"))),
		Floor: queryInt(c, "floor"),
	}
}

// List godoc
// @Summary List locations
// @Tags Locations
// @Produce json
// @Security BearerAuth
// @Param type query string false "classroom, lab, auditorium or hall"
// @Param floor query int false "Floor"
// @Success 200 {object} response.Envelope
// @Router /locations [get]
func (h *LocationHandler) List(c *gin.Context) {
	locations, err := h.service.List(c.Request.Context(), locationFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, locations, nil)
}

// Get godoc
// @Summary Get location by id
// @Tags Locations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Location ID"
// @Success 200 {object} response.Envelope
// @Router /locations/{id} [get]
func (h *LocationHandler) Get(c *gin.Context) {
	location, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, location, nil)
}

// Create godoc
// @Summary Create location
// @Tags Locations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.LocationRequest true "Location payload"
// @Success 201 {object} response.Envelope
// @Router /locations [post]
func (h *LocationHandler) Create(c *gin.Context) {
	var req service.LocationRequest
	if !bindJSON(c, &req, "invalid payload") {
		return
	}
	location, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, location)
}

// Update godoc
// @Summary Update location
// @Tags Locations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Location ID"
// @Param payload body service.LocationRequest true "Location payload"
// @Success 200 {object} response.Envelope
// @Router /locations/{id} [put]
func (h *LocationHandler) Update(c *gin.Context) {
	var req service.LocationRequest
	if !bindJSON(c, &req, "invalid payload") {
		return
	}
	location, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, location, nil)
}

// Delete godoc
// @Summary Delete location
// @Tags Locations
// @Security BearerAuth
// @Param id path string true "Location ID"
// @Success 204
// @Router /locations/{id} [delete]
func (h *LocationHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
