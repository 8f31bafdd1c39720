package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/internal/dto"
	"github.com/noah-isme/uni-timetable-api/internal/models"
	"github.com/noah-isme/uni-timetable-api/internal/service"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

type timetableMock struct {
	role       models.UserRole
	filter     models.TimetableFilter
	cell       [3]string
	saved      dto.SaveEntryRequest
	saveErr    error
	deleted    bool
	exportedID string
}

func (m *timetableMock) ListForViewer(ctx context.Context, role models.UserRole, filter models.TimetableFilter) ([]models.TimetableEntryDetail, error) {
	m.role = role
	m.filter = filter
	return []models.TimetableEntryDetail{{TimetableEntry: models.TimetableEntry{ID: "e1", StreamID: "s1", DayOfWeek: "mon"}, SubjectName: "Data Structures"}}, nil
}

func (m *timetableMock) Setup(ctx context.Context) (*dto.TimetableSetup, error) {
	return &dto.TimetableSetup{Days: []dto.DayOption{{Code: "mon", Name: "Monday"}}, LunchBreakStart: "12:15"}, nil
}

func (m *timetableMock) EligibleProfessors(ctx context.Context, streamID, day, slotID string) ([]models.Professor, error) {
	m.cell = [3]string{streamID, day, slotID}
	return []models.Professor{{ID: "p1", Name: "Ada"}}, nil
}

func (m *timetableMock) EligibleLocations(ctx context.Context, streamID, day, slotID string) ([]models.Location, error) {
	m.cell = [3]string{streamID, day, slotID}
	return []models.Location{{ID: "r1", Name: "Room 101"}}, nil
}

func (m *timetableMock) SaveEntry(ctx context.Context, req dto.SaveEntryRequest) (*models.TimetableEntry, error) {
	m.saved = req
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	return &models.TimetableEntry{ID: "e9", StreamID: req.StreamID, SubjectID: req.SubjectID, DayOfWeek: req.DayOfWeek}, nil
}

func (m *timetableMock) DeleteEntry(ctx context.Context, streamID, day, slotID string) error {
	m.cell = [3]string{streamID, day, slotID}
	m.deleted = true
	return nil
}

func (m *timetableMock) ExportCSV(ctx context.Context, streamID string) (*service.Export, error) {
	m.exportedID = streamID
	return &service.Export{Filename: "timetable-cs3a.csv", ContentType: "text/csv", Body: []byte("Day,Time\n")}, nil
}

func (m *timetableMock) ExportPDF(ctx context.Context, streamID string) (*service.Export, error) {
	m.exportedID = streamID
	return nil, appErrors.Clone(appErrors.ErrNotFound, "stream not found")
}

func (m *timetableMock) LocationSheetCSV(ctx context.Context, filter models.LocationFilter) (*service.Export, error) {
	return &service.Export{Filename: "locations.csv", ContentType: "text/csv", Body: []byte("Name\n")}, nil
}

func TestTimetableListPassesViewerRole(t *testing.T) {
	mockSvc := &timetableMock{}
	handler := &TimetableHandler{service: mockSvc}
	c, w := testContext(http.MethodGet, "/timetable?day=MON", nil, studentClaims())

	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.RoleStudent, mockSvc.role)
	assert.Equal(t, "mon", mockSvc.filter.DayOfWeek)
	assert.Empty(t, mockSvc.filter.StreamID)
	assert.Contains(t, w.Body.String(), "Data Structures")
}

func TestTimetableEligibleProfessorsBindsCell(t *testing.T) {
	mockSvc := &timetableMock{}
	handler := &TimetableHandler{service: mockSvc}
	c, w := testContext(http.MethodGet, "/timetable/eligible/professors?streamId=s1&day=tue&timeSlotId=t2", nil, adminClaims())

	handler.EligibleProfessors(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, [3]string{"s1", "tue", "t2"}, mockSvc.cell)
}

func TestTimetableCellQueryRequired(t *testing.T) {
	mockSvc := &timetableMock{}
	handler := &TimetableHandler{service: mockSvc}
	c, w := testContext(http.MethodDelete, "/timetable/entries?streamId=s1&day=mon", nil, adminClaims())

	handler.DeleteEntry(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, mockSvc.deleted)
}

func TestTimetableDeleteEntry(t *testing.T) {
	mockSvc := &timetableMock{}
	handler := &TimetableHandler{service: mockSvc}
	c, w := testContext(http.MethodDelete, "/timetable/entries?streamId=s1&day=mon&timeSlotId=t1", nil, adminClaims())

	handler.DeleteEntry(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, mockSvc.deleted)
}

func TestTimetableSaveEntry(t *testing.T) {
	mockSvc := &timetableMock{}
	handler := &TimetableHandler{service: mockSvc}
	prof := "p1"
	body := mustJSON(t, dto.SaveEntryRequest{StreamID: "s1", DayOfWeek: "mon", TimeSlotID: "t1", SubjectID: "ds", ProfessorID: &prof})
	c, w := testContext(http.MethodPut, "/timetable/entries", body, adminClaims())

	handler.SaveEntry(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mockSvc.saved.ProfessorID)
	assert.Equal(t, "p1", *mockSvc.saved.ProfessorID)
	assert.Nil(t, mockSvc.saved.LocationID)
}

func TestTimetableSaveEntryConflict(t *testing.T) {
	mockSvc := &timetableMock{saveErr: appErrors.Clone(appErrors.ErrConflict, "professor already teaching at this time")}
	handler := &TimetableHandler{service: mockSvc}
	body := mustJSON(t, dto.SaveEntryRequest{StreamID: "s1", DayOfWeek: "mon", TimeSlotID: "t1", SubjectID: "ds"})
	c, w := testContext(http.MethodPut, "/timetable/entries", body, adminClaims())

	handler.SaveEntry(c)

	require.Equal(t, http.StatusConflict, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "professor already teaching at this time", env.Error.Message)
}

func TestTimetableExportCSVAttachment(t *testing.T) {
	mockSvc := &timetableMock{}
	handler := &TimetableHandler{service: mockSvc}
	c, w := testContext(http.MethodGet, "/timetable/export/csv?streamId=s1", nil, studentClaims())

	handler.ExportCSV(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s1", mockSvc.exportedID)
	assert.Equal(t, `attachment; filename="timetable-cs3a.csv"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Equal(t, "Day,Time\n", w.Body.String())
}

func TestTimetableExportRequiresStream(t *testing.T) {
	handler := &TimetableHandler{service: &timetableMock{}}
	c, w := testContext(http.MethodGet, "/timetable/export/pdf", nil, studentClaims())

	handler.ExportPDF(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableExportPDFNotFound(t *testing.T) {
	handler := &TimetableHandler{service: &timetableMock{}}
	c, w := testContext(http.MethodGet, "/timetable/export/pdf?streamId=missing", nil, studentClaims())

	handler.ExportPDF(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, w.Header().Get("Content-Disposition"))
}

func TestTimetableSetup(t *testing.T) {
	handler := &TimetableHandler{service: &timetableMock{}}
	c, w := testContext(http.MethodGet, "/timetable/setup", nil, studentClaims())

	handler.Setup(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"lunchBreakStart":"12:15"`)
}
