package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-timetable-api/internal/middleware"
)

// Handlers bundles every HTTP handler mounted under the API prefix.
type Handlers struct {
	Auth       *AuthHandler
	Users      *UserHandler
	Department *DepartmentHandler
	Location   *LocationHandler
	Professor  *ProfessorHandler
	Subject    *SubjectHandler
	Stream     *StreamHandler
	TimeSlot   *TimeSlotHandler
	Timetable  *TimetableHandler
	Generator  *GeneratorHandler
	Task       *TaskHandler
	Metrics    *MetricsHandler
}

// RegisterRoutes mounts the API. Reads need any authenticated user; catalog
// writes, timetable edits and generation are admin only. Generation routes
// are skipped when h.Generator is nil.
func RegisterRoutes(api *gin.RouterGroup, h Handlers, auth middleware.TokenValidator) {
	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.Auth.Register)
	authGroup.POST("/login", h.Auth.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(auth))
	secured.GET("/auth/me", h.Auth.Me)

	admin := secured.Group("")
	admin.Use(middleware.AdminOnly())

	admin.GET("/users", h.Users.List)
	admin.PUT("/users/:id/role", h.Users.UpdateRole)

	secured.GET("/departments", h.Department.List)
	secured.GET("/departments/:id", h.Department.Get)
	admin.POST("/departments", h.Department.Create)
	admin.PUT("/departments/:id", h.Department.Update)
	admin.DELETE("/departments/:id", h.Department.Delete)

	secured.GET("/locations", h.Location.List)
	secured.GET("/locations/:id", h.Location.Get)
	admin.POST("/locations", h.Location.Create)
	admin.PUT("/locations/:id", h.Location.Update)
	admin.DELETE("/locations/:id", h.Location.Delete)

	secured.GET("/professors", h.Professor.List)
	secured.GET("/professors/loads", h.Professor.Loads)
	secured.GET("/professors/:id", h.Professor.Get)
	admin.POST("/professors", h.Professor.Create)
	admin.PUT("/professors/:id", h.Professor.Update)
	admin.DELETE("/professors/:id", h.Professor.Delete)

	secured.GET("/subjects", h.Subject.List)
	secured.GET("/subjects/:id", h.Subject.Get)
	admin.POST("/subjects", h.Subject.Create)
	admin.PUT("/subjects/:id", h.Subject.Update)
	admin.DELETE("/subjects/:id", h.Subject.Delete)

	secured.GET("/streams", h.Stream.List)
	secured.GET("/streams/options", h.Stream.Options)
	secured.GET("/streams/:id", h.Stream.Get)
	admin.POST("/streams", h.Stream.Create)
	admin.PUT("/streams/:id", h.Stream.Update)
	admin.DELETE("/streams/:id", h.Stream.Delete)

	secured.GET("/time-slots", h.TimeSlot.List)
	secured.GET("/time-slots/:id", h.TimeSlot.Get)
	admin.POST("/time-slots", h.TimeSlot.Create)
	admin.PUT("/time-slots/:id", h.TimeSlot.Update)
	admin.DELETE("/time-slots/:id", h.TimeSlot.Delete)

	secured.GET("/timetable", h.Timetable.List)
	secured.GET("/timetable/setup", h.Timetable.Setup)
	secured.GET("/timetable/export/csv", h.Timetable.ExportCSV)
	secured.GET("/timetable/export/pdf", h.Timetable.ExportPDF)
	secured.GET("/timetable/export/locations", h.Timetable.LocationSheet)
	admin.GET("/timetable/eligible/professors", h.Timetable.EligibleProfessors)
	admin.GET("/timetable/eligible/locations", h.Timetable.EligibleLocations)
	admin.PUT("/timetable/entries", h.Timetable.SaveEntry)
	admin.DELETE("/timetable/entries", h.Timetable.DeleteEntry)

	if h.Generator != nil {
		admin.POST("/timetable/generate", h.Generator.Generate)
		admin.GET("/timetable/validate", h.Generator.Validate)
		admin.GET("/timetable/runs", h.Generator.ListRuns)
		admin.GET("/timetable/runs/latest", h.Generator.LatestRun)
	}

	secured.GET("/tasks", h.Task.Board)
	secured.POST("/tasks", h.Task.Create)
	secured.POST("/tasks/reschedule", h.Task.Reschedule)
	secured.POST("/tasks/:id/complete", h.Task.Complete)

	admin.GET("/metrics/snapshot", h.Metrics.Snapshot)
}
