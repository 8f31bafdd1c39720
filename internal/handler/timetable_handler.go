package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-timetable-api/internal/dto"
	"github.com/noah-isme/uni-timetable-api/internal/models"
	"github.com/noah-isme/uni-timetable-api/internal/service"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
	"github.com/noah-isme/uni-timetable-api/pkg/response"
)

type timetableService interface {
	ListForViewer(ctx context.Context, role models.UserRole, filter models.TimetableFilter) ([]models.TimetableEntryDetail, error)
	Setup(ctx context.Context) (*dto.TimetableSetup, error)
	EligibleProfessors(ctx context.Context, streamID, day, slotID string) ([]models.Professor, error)
	EligibleLocations(ctx context.Context, streamID, day, slotID string) ([]models.Location, error)
	SaveEntry(ctx context.Context, req dto.SaveEntryRequest) (*models.TimetableEntry, error)
	DeleteEntry(ctx context.Context, streamID, day, slotID string) error
	ExportCSV(ctx context.Context, streamID string) (*service.Export, error)
	ExportPDF(ctx context.Context, streamID string) (*service.Export, error)
	LocationSheetCSV(ctx context.Context, filter models.LocationFilter) (*service.Export, error)
}

// TimetableHandler serves the stored timetable grid and its manual edits.
type TimetableHandler struct {
	service timetableService
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// List godoc
// @Summary List timetable entries
// @Description Non-admin callers without a stream filter receive the first stream's timetable.
// @Tags Timetable
// @Produce json
// @Security BearerAuth
// @Param streamId query string false "Stream"
// @Param day query string false "mon, tue, wed, thu or fri"
// @Success 200 {object} response.Envelope
// @Router /timetable [get]
func (h *TimetableHandler) List(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	filter := models.TimetableFilter{
		StreamID:  c.Query("streamId"),
		DayOfWeek: strings.ToLower(c.Query("day")),
	}
	entries, err := h.service.ListForViewer(c.Request.Context(), claims.Role, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Setup godoc
// @Summary Grid scaffold: days, slots and streams
// @Tags Timetable
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /timetable/setup [get]
func (h *TimetableHandler) Setup(c *gin.Context) {
	setup, err := h.service.Setup(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, setup, nil)
}

func bindCell(c *gin.Context) (dto.EntryCellQuery, bool) {
	var q dto.EntryCellQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid cell query"))
		return q, false
	}
	if q.StreamID == "" || q.DayOfWeek == "" || q.TimeSlotID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "streamId, day and timeSlotId are required"))
		return q, false
	}
	return q, true
}

// EligibleProfessors godoc
// @Summary Professors free for a grid cell
// @Tags Timetable
// @Produce json
// @Security BearerAuth
// @Param streamId query string true "Stream"
// @Param day query string true "Day code"
// @Param timeSlotId query string true "Time slot"
// @Success 200 {object} response.Envelope
// @Router /timetable/eligible/professors [get]
func (h *TimetableHandler) EligibleProfessors(c *gin.Context) {
	q, ok := bindCell(c)
	if !ok {
		return
	}
	professors, err := h.service.EligibleProfessors(c.Request.Context(), q.StreamID, q.DayOfWeek, q.TimeSlotID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, professors, nil)
}

// EligibleLocations godoc
// @Summary Locations free for a grid cell
// @Tags Timetable
// @Produce json
// @Security BearerAuth
// @Param streamId query string true "Stream"
// @Param day query string true "Day code"
// @Param timeSlotId query string true "Time slot"
// @Success 200 {object} response.Envelope
// @Router /timetable/eligible/locations [get]
func (h *TimetableHandler) EligibleLocations(c *gin.Context) {
	q, ok := bindCell(c)
	if !ok {
		return
	}
	locations, err := h.service.EligibleLocations(c.Request.Context(), q.StreamID, q.DayOfWeek, q.TimeSlotID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, locations, nil)
}

// SaveEntry godoc
// @Summary Set the lecture in a grid cell
// @Tags Timetable
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.SaveEntryRequest true "Entry payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetable/entries [put]
func (h *TimetableHandler) SaveEntry(c *gin.Context) {
	var req dto.SaveEntryRequest
	if !bindJSON(c, &req, "invalid entry payload") {
		return
	}
	entry, err := h.service.SaveEntry(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// DeleteEntry godoc
// @Summary Clear a grid cell
// @Tags Timetable
// @Security BearerAuth
// @Param streamId query string true "Stream"
// @Param day query string true "Day code"
// @Param timeSlotId query string true "Time slot"
// @Success 204
// @Router /timetable/entries [delete]
func (h *TimetableHandler) DeleteEntry(c *gin.Context) {
	q, ok := bindCell(c)
	if !ok {
		return
	}
	if err := h.service.DeleteEntry(c.Request.Context(), q.StreamID, q.DayOfWeek, q.TimeSlotID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ExportCSV godoc
// @Summary Download a stream timetable as CSV
// @Tags Timetable
// @Produce text/csv
// @Security BearerAuth
// @Param streamId query string true "Stream"
// @Success 200 {file} file
// @Router /timetable/export/csv [get]
func (h *TimetableHandler) ExportCSV(c *gin.Context) {
	h.export(c, h.service.ExportCSV)
}

// ExportPDF godoc
// @Summary Download a stream timetable as PDF
// @Tags Timetable
// @Produce application/pdf
// @Security BearerAuth
// @Param streamId query string true "Stream"
// @Success 200 {file} file
// @Router /timetable/export/pdf [get]
func (h *TimetableHandler) ExportPDF(c *gin.Context) {
	h.export(c, h.service.ExportPDF)
}

func (h *TimetableHandler) export(c *gin.Context, render func(context.Context, string) (*service.Export, error)) {
	streamID := c.Query("streamId")
	if streamID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "streamId is required"))
		return
	}
	file, err := render(c.Request.Context(), streamID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// LocationSheet godoc
// @Summary Download the location roster as CSV
// @Tags Timetable
// @Produce text/csv
// @Security BearerAuth
// @Param type query string false "Location type"
// @Param floor query int false "Floor"
// @Success 200 {file} file
// @Router /timetable/export/locations [get]
func (h *TimetableHandler) LocationSheet(c *gin.Context) {
	file, err := h.service.LocationSheetCSV(c.Request.Context(), locationFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
