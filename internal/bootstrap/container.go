// Package bootstrap builds the repository and service graph shared by the
// HTTP server and the CLI.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/internal/events"
	"github.com/noah-isme/uni-timetable-api/internal/repository"
	"github.com/noah-isme/uni-timetable-api/internal/scheduler"
	"github.com/noah-isme/uni-timetable-api/internal/service"
	"github.com/noah-isme/uni-timetable-api/pkg/config"
)

const runLockKey = "timetable:generation:lock"

// Container holds the wired services.
type Container struct {
	Metrics     *service.MetricsService
	Cache       *service.CacheService
	Auth        *service.AuthService
	Users       *service.UserService
	Departments *service.DepartmentService
	Locations   *service.LocationService
	Professors  *service.ProfessorService
	Subjects    *service.SubjectService
	Streams     *service.StreamService
	TimeSlots   *service.TimeSlotService
	Validation  *service.ValidationService
	Generator   *service.TimetableGeneratorService
	Timetable   *service.TimetableService
	Tasks       *service.TaskService
	Dispatcher  *events.Dispatcher

	cacheRepo *repository.CacheRepository
}

// New wires every service. redisClient may be nil, in which case caching is
// off and the generation lock is process local.
func New(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, logger *zap.Logger) (*Container, error) {
	opts, err := scheduler.ParseOptions(cfg.Scheduler.LunchBreakStart, cfg.Scheduler.MaxDays, cfg.Scheduler.StreamExclusive)
	if err != nil {
		return nil, fmt.Errorf("scheduler options: %w", err)
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient, logger)
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Timetable.CacheTTL, logger, redisClient != nil)

	var lock interface {
		Acquire(ctx context.Context, ttl time.Duration) (string, bool, error)
		Release(ctx context.Context, token string) error
	}
	if redisClient != nil {
		lock = repository.NewRedisRunLock(redisClient, runLockKey)
	} else {
		lock = repository.NewLocalRunLock()
	}

	var dispatcher *events.Dispatcher
	if cfg.Events.Enabled {
		dispatcher = events.NewDispatcher(events.NewAMQPPublisher(cfg.Events.URL, cfg.Events.Queue), events.DispatcherConfig{
			Workers:    cfg.Events.Workers,
			Retries:    cfg.Events.Retries,
			RetryDelay: time.Second,
			Observe:    metrics.RecordEventPublish,
		}, logger)
	}

	users := repository.NewUserRepository(db)
	departments := repository.NewDepartmentRepository(db)
	locations := repository.NewLocationRepository(db)
	professors := repository.NewProfessorRepository(db)
	subjects := repository.NewSubjectRepository(db)
	streams := repository.NewStreamRepository(db)
	slots := repository.NewTimeSlotRepository(db)
	entries := repository.NewTimetableRepository(db)
	runs := repository.NewTimetableRunRepository(db)
	tasks := repository.NewTaskRepository(db)

	validation := service.NewValidationService(slots, locations, professors, subjects, streams, cfg.Scheduler.MaxDays, logger)
	snapshots := service.NewSnapshotLoader(slots, locations, professors, subjects, streams)

	c := &Container{
		Metrics: metrics,
		Cache:   cacheSvc,
		Auth: service.NewAuthService(users, validate, logger, service.AuthConfig{
			AccessTokenSecret: cfg.JWT.Secret,
			AccessTokenExpiry: cfg.JWT.Expiration,
			Issuer:            cfg.JWT.Issuer,
		}),
		Users:       service.NewUserService(users, validate, logger),
		Departments: service.NewDepartmentService(departments, validate, logger),
		Locations:   service.NewLocationService(locations, validate, logger),
		Professors:  service.NewProfessorService(professors, validate, logger),
		Subjects:    service.NewSubjectService(subjects, validate, logger),
		Streams:     service.NewStreamService(streams, validate, logger),
		TimeSlots:   service.NewTimeSlotService(slots, validate, logger),
		Validation:  validation,
		Generator: service.NewTimetableGeneratorService(
			scheduler.NewEngine(opts), snapshots, validation, entries, runs, db, lock,
			cacheSvc, dispatcher, metrics, logger,
			service.GeneratorConfig{LockTTL: cfg.Scheduler.LockTTL, ValidateFirst: cfg.Scheduler.ValidateFirst},
		),
		Timetable: service.NewTimetableService(
			entries, streams, subjects, professors, locations, slots,
			cacheSvc, dispatcher, validate, logger,
			service.TimetableConfig{Engine: opts},
		),
		Tasks:      service.NewTaskService(tasks, validate, logger),
		Dispatcher: dispatcher,
		cacheRepo:  cacheRepo,
	}
	return c, nil
}

// PingCache reports whether redis answers.
func (c *Container) PingCache(ctx context.Context) error {
	return c.cacheRepo.Ping(ctx)
}
