package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-timetable-api/internal/dto"
	"github.com/noah-isme/uni-timetable-api/internal/models"
	"github.com/noah-isme/uni-timetable-api/internal/service"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
	"github.com/noah-isme/uni-timetable-api/pkg/response"
)

type timetableGenerator interface {
	Generate(ctx context.Context, opts service.GenerateOptions) (*dto.GenerationResult, error)
	LatestRun(ctx context.Context) (*models.TimetableRun, error)
	ListRuns(ctx context.Context, limit int) ([]models.TimetableRun, error)
}

type preconditionValidator interface {
	Validate(ctx context.Context) (*dto.ValidationReport, error)
}

// GeneratorHandler triggers and inspects timetable generation runs.
type GeneratorHandler struct {
	generator timetableGenerator
	validator preconditionValidator
}

// NewGeneratorHandler constructs the handler.
func NewGeneratorHandler(generator *service.TimetableGeneratorService, validator *service.ValidationService) *GeneratorHandler {
	return &GeneratorHandler{generator: generator, validator: validator}
}

// Generate godoc
// @Summary Regenerate the whole timetable
// @Description Replaces every stored entry in one transaction. A failed run leaves the existing timetable untouched.
// @Tags Generator
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.GenerateRequest false "Run options"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /timetable/generate [post]
func (h *GeneratorHandler) Generate(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}

	result, err := h.generator.Generate(c.Request.Context(), service.GenerateOptions{
		SkipValidation: req.SkipValidation,
		TriggeredBy:    claims.UserID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Validate godoc
// @Summary Check generation preconditions without running
// @Tags Generator
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /timetable/validate [get]
func (h *GeneratorHandler) Validate(c *gin.Context) {
	report, err := h.validator.Validate(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// LatestRun godoc
// @Summary Most recent generation run
// @Tags Generator
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetable/runs/latest [get]
func (h *GeneratorHandler) LatestRun(c *gin.Context) {
	run, err := h.generator.LatestRun(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, run, nil)
}

// ListRuns godoc
// @Summary Recent generation runs
// @Tags Generator
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum runs, default 20"
// @Success 200 {object} response.Envelope
// @Router /timetable/runs [get]
func (h *GeneratorHandler) ListRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		limit = 20
	}
	runs, err := h.generator.ListRuns(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, runs, nil)
}
