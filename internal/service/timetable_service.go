package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/internal/dto"
	"github.com/noah-isme/uni-timetable-api/internal/events"
	"github.com/noah-isme/uni-timetable-api/internal/models"
	"github.com/noah-isme/uni-timetable-api/internal/scheduler"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
	"github.com/noah-isme/uni-timetable-api/pkg/export"
)

type timetableEntryRepository interface {
	List(ctx context.Context, filter models.TimetableFilter) ([]models.TimetableEntryDetail, error)
	FindBySlot(ctx context.Context, streamID, day, slotID string) (*models.TimetableEntry, error)
	Save(ctx context.Context, entry *models.TimetableEntry) error
	DeleteBySlot(ctx context.Context, streamID, day, slotID string) (int64, error)
	BusyProfessorIDs(ctx context.Context, day, slotID, excludeEntryID string) ([]string, error)
	BusyLocationIDs(ctx context.Context, day, slotID, excludeEntryID string) ([]string, error)
}

type timetableStreamReader interface {
	streamLister
	FindByID(ctx context.Context, id string) (*models.Stream, error)
}

type timetableSubjectReader interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	IsQualified(ctx context.Context, subjectID, professorID string) (bool, error)
}

type timetableSlotReader interface {
	timeSlotLister
	FindByID(ctx context.Context, id string) (*models.TimeSlot, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// TimetableConfig tunes timetable reads and edits.
type TimetableConfig struct {
	Engine scheduler.Options
}

// Export is a rendered download.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

// TimetableService reads, edits and exports the stored timetable.
type TimetableService struct {
	entries    timetableEntryRepository
	streams    timetableStreamReader
	subjects   timetableSubjectReader
	professors professorLister
	locations  locationLister
	slots      timetableSlotReader
	cache      *CacheService
	events     eventDispatcher
	csv        csvRenderer
	pdf        pdfRenderer
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        TimetableConfig
}

// NewTimetableService constructs a TimetableService. cache and dispatcher may be nil.
func NewTimetableService(
	entries timetableEntryRepository,
	streams timetableStreamReader,
	subjects timetableSubjectReader,
	professors professorLister,
	locations locationLister,
	slots timetableSlotReader,
	cache *CacheService,
	dispatcher eventDispatcher,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg TimetableConfig,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		entries:    entries,
		streams:    streams,
		subjects:   subjects,
		professors: professors,
		locations:  locations,
		slots:      slots,
		cache:      cache,
		events:     dispatcher,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		validator:  validate,
		logger:     logger,
		cfg:        cfg,
	}
}

// List returns entries ordered by day, then slot start.
func (s *TimetableService) List(ctx context.Context, filter models.TimetableFilter) ([]models.TimetableEntryDetail, error) {
	if filter.DayOfWeek != "" {
		day, err := scheduler.ParseDay(filter.DayOfWeek)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid day")
		}
		filter.DayOfWeek = string(day)
	}

	key := timetableCacheKey(filter)
	var cached []models.TimetableEntryDetail
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	entries, err := s.entries.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable")
	}
	if entries == nil {
		entries = []models.TimetableEntryDetail{}
	}
	_ = s.cache.Set(ctx, key, entries, 0)
	return entries, nil
}

// ListForViewer scopes non-admin viewers without a stream filter to the first stream.
func (s *TimetableService) ListForViewer(ctx context.Context, role models.UserRole, filter models.TimetableFilter) ([]models.TimetableEntryDetail, error) {
	if role != models.RoleAdmin && filter.StreamID == "" {
		streams, err := s.streams.List(ctx, models.StreamFilter{})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list streams")
		}
		if len(streams) == 0 {
			return []models.TimetableEntryDetail{}, nil
		}
		filter.StreamID = streams[0].ID
	}
	return s.List(ctx, filter)
}

// EligibleProfessors lists professors of the stream's department who are free at (day, slot).
func (s *TimetableService) EligibleProfessors(ctx context.Context, streamID, day, slotID string) ([]models.Professor, error) {
	stream, err := s.getStream(ctx, streamID)
	if err != nil {
		return nil, err
	}
	code, err := scheduler.ParseDay(day)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid day")
	}
	professors, err := s.professors.List(ctx, models.ProfessorFilter{DepartmentID: stream.DepartmentID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list professors")
	}
	current, err := s.cellEntryID(ctx, stream.ID, string(code), slotID)
	if err != nil {
		return nil, err
	}
	busy, err := s.entries.BusyProfessorIDs(ctx, string(code), slotID, current)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check professor availability")
	}
	return lo.Filter(professors, func(p models.Professor, _ int) bool { return !lo.Contains(busy, p.ID) }), nil
}

// EligibleLocations lists locations free at (day, slot). The entry currently
// held by streamID in that cell does not count as a booking.
func (s *TimetableService) EligibleLocations(ctx context.Context, streamID, day, slotID string) ([]models.Location, error) {
	code, err := scheduler.ParseDay(day)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid day")
	}
	locations, err := s.locations.List(ctx, models.LocationFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list locations")
	}
	current, err := s.cellEntryID(ctx, streamID, string(code), slotID)
	if err != nil {
		return nil, err
	}
	busy, err := s.entries.BusyLocationIDs(ctx, string(code), slotID, current)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check location availability")
	}
	return lo.Filter(locations, func(l models.Location, _ int) bool { return !lo.Contains(busy, l.ID) }), nil
}

// SaveEntry sets the stream's lecture at (day, slot), replacing what was there.
func (s *TimetableService) SaveEntry(ctx context.Context, req dto.SaveEntryRequest) (*models.TimetableEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable entry payload")
	}

	day, err := scheduler.ParseDay(req.DayOfWeek)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid day")
	}

	stream, err := s.getStream(ctx, req.StreamID)
	if err != nil {
		return nil, err
	}
	if !lo.Contains(stream.SubjectIDs, req.SubjectID) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "subject is not part of the stream curriculum")
	}
	if !lo.Contains(scheduler.Days(stream.NumberOfDays, s.cfg.Engine.MaxDays), day) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "day is outside the stream's teaching week")
	}

	slot, err := s.slots.FindByID(ctx, req.TimeSlotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "time slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slot")
	}
	engineSlot, err := toEngineSlot(*slot)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "invalid stored time slot")
	}
	if !s.cfg.Engine.Schedulable(engineSlot) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "lectures cannot be placed in a break slot")
	}

	subject, err := s.subjects.FindByID(ctx, req.SubjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	entry := &models.TimetableEntry{
		StreamID:   stream.ID,
		SubjectID:  subject.ID,
		DayOfWeek:  string(day),
		TimeSlotID: &slot.ID,
	}
	existing, err := s.entries.FindBySlot(ctx, stream.ID, entry.DayOfWeek, slot.ID)
	switch {
	case err == nil:
		entry.ID = existing.ID
		entry.CreatedAt = existing.CreatedAt
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable entry")
	}

	if !subject.IsNonAcademic {
		entry.ProfessorID = nonEmpty(req.ProfessorID)
		entry.LocationID = nonEmpty(req.LocationID)
		if err := s.checkEntryResources(ctx, entry); err != nil {
			return nil, err
		}
	}

	if err := s.entries.Save(ctx, entry); err != nil {
		// A concurrent edit can still take the professor or location first.
		if pqCode(err) == pqUniqueViolation {
			return nil, appErrors.Clone(appErrors.ErrConflict, "professor or location is already booked at this time")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save timetable entry")
	}
	s.changed(ctx, entry.StreamID, entry.DayOfWeek, slot.ID, "saved")
	return entry, nil
}

// DeleteEntry clears the stream's cell at (day, slot).
func (s *TimetableService) DeleteEntry(ctx context.Context, streamID, day, slotID string) error {
	code, err := scheduler.ParseDay(day)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "invalid day")
	}
	removed, err := s.entries.DeleteBySlot(ctx, streamID, string(code), slotID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable entry")
	}
	if removed == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "timetable entry not found")
	}
	s.changed(ctx, streamID, string(code), slotID, "deleted")
	return nil
}

// Setup returns the days, schedulable slots and streams a grid is built from.
func (s *TimetableService) Setup(ctx context.Context) (*dto.TimetableSetup, error) {
	slots, err := s.slots.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list time slots")
	}
	schedulable := make([]models.TimeSlot, 0, len(slots))
	for _, slot := range slots {
		converted, err := toEngineSlot(slot)
		if err != nil || !s.cfg.Engine.Schedulable(converted) {
			continue
		}
		schedulable = append(schedulable, slot)
	}

	streams, err := s.streams.List(ctx, models.StreamFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list streams")
	}
	if streams == nil {
		streams = []models.Stream{}
	}

	setup := &dto.TimetableSetup{
		Days: lo.Map(scheduler.Days(len(scheduler.Weekdays()), s.cfg.Engine.MaxDays), func(d scheduler.Day, _ int) dto.DayOption {
			return dto.DayOption{Code: string(d), Name: d.DisplayName()}
		}),
		TimeSlots: schedulable,
		Streams:   streams,
	}
	if s.cfg.Engine.LunchBreakStart != nil {
		setup.LunchBreakStart = s.cfg.Engine.LunchBreakStart.String()
	}
	return setup, nil
}

var timetableHeaders = []string{"Stream", "Day", "Time", "Subject", "Professor", "Location"}

// ExportCSV renders the timetable of streamID, or of every stream when empty.
func (s *TimetableService) ExportCSV(ctx context.Context, streamID string) (*Export, error) {
	dataset, name, err := s.timetableDataset(ctx, streamID)
	if err != nil {
		return nil, err
	}
	body, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return &Export{Filename: name + ".csv", ContentType: "text/csv", Body: body}, nil
}

// ExportPDF renders the same rows as ExportCSV into a printable sheet.
func (s *TimetableService) ExportPDF(ctx context.Context, streamID string) (*Export, error) {
	dataset, name, err := s.timetableDataset(ctx, streamID)
	if err != nil {
		return nil, err
	}
	body, err := s.pdf.Render(dataset, strings.ReplaceAll(name, "_", " "))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return &Export{Filename: name + ".pdf", ContentType: "application/pdf", Body: body}, nil
}

// LocationSheetCSV lists locations matching filter.
func (s *TimetableService) LocationSheetCSV(ctx context.Context, filter models.LocationFilter) (*Export, error) {
	locations, err := s.locations.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list locations")
	}
	dataset := export.Dataset{Headers: []string{"Name", "Type", "Floor"}}
	for _, loc := range locations {
		dataset.Append(loc.Name, loc.LocationType, strconv.Itoa(loc.Floor))
	}
	body, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return &Export{Filename: "location_sheet.csv", ContentType: "text/csv", Body: body}, nil
}

func (s *TimetableService) timetableDataset(ctx context.Context, streamID string) (export.Dataset, string, error) {
	dataset := export.Dataset{Headers: timetableHeaders}
	name := "timetable"
	if streamID != "" {
		stream, err := s.getStream(ctx, streamID)
		if err != nil {
			return dataset, "", err
		}
		name = "timetable_" + strings.ReplaceAll(strings.ToLower(stream.Name), " ", "_")
	}

	entries, err := s.List(ctx, models.TimetableFilter{StreamID: streamID})
	if err != nil {
		return dataset, "", err
	}
	for _, entry := range entries {
		dataset.Append(
			entry.StreamName,
			scheduler.Day(entry.DayOfWeek).DisplayName(),
			slotLabel(entry.StartTime, entry.EndTime),
			entry.SubjectName,
			orDash(entry.ProfessorName),
			orDash(entry.LocationName),
		)
	}
	return dataset, name, nil
}

func (s *TimetableService) checkEntryResources(ctx context.Context, entry *models.TimetableEntry) error {
	slotID := *entry.TimeSlotID
	if entry.ProfessorID != nil {
		qualified, err := s.subjects.IsQualified(ctx, entry.SubjectID, *entry.ProfessorID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check professor qualification")
		}
		if !qualified {
			return appErrors.Clone(appErrors.ErrValidation, "professor is not qualified for this subject")
		}
		busy, err := s.entries.BusyProfessorIDs(ctx, entry.DayOfWeek, slotID, entry.ID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check professor availability")
		}
		if lo.Contains(busy, *entry.ProfessorID) {
			return appErrors.Clone(appErrors.ErrConflict, "professor is already booked at this time")
		}
	}
	if entry.LocationID != nil {
		busy, err := s.entries.BusyLocationIDs(ctx, entry.DayOfWeek, slotID, entry.ID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check location availability")
		}
		if lo.Contains(busy, *entry.LocationID) {
			return appErrors.Clone(appErrors.ErrConflict, "location is already booked at this time")
		}
	}
	return nil
}

// cellEntryID returns the id of the entry streamID holds at (day, slot), or ""
// when the cell is empty.
func (s *TimetableService) cellEntryID(ctx context.Context, streamID, day, slotID string) (string, error) {
	existing, err := s.entries.FindBySlot(ctx, streamID, day, slotID)
	switch {
	case err == nil:
		return existing.ID, nil
	case errors.Is(err, sql.ErrNoRows):
		return "", nil
	default:
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable entry")
	}
}

func (s *TimetableService) getStream(ctx context.Context, id string) (*models.Stream, error) {
	stream, err := s.streams.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "stream not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load stream")
	}
	return stream, nil
}

func (s *TimetableService) changed(ctx context.Context, streamID, day, slotID, action string) {
	if err := s.cache.Invalidate(ctx, timetableCacheAll); err != nil {
		s.logger.Warn("failed to invalidate timetable cache", zap.Error(err))
	}
	if s.events != nil {
		s.events.Dispatch(events.New(events.TypeEntryChanged, events.EntryChangedPayload{
			StreamID:   streamID,
			DayOfWeek:  day,
			TimeSlotID: slotID,
			Action:     action,
		}).WithRequestID(ctx))
	}
}

func slotLabel(start, end *string) string {
	if start == nil || end == nil {
		return "-"
	}
	return fmt.Sprintf("%s - %s", *start, *end)
}

func orDash(v *string) string {
	if v == nil || *v == "" {
		return "-"
	}
	return *v
}

func nonEmpty(v *string) *string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	return &trimmed
}
