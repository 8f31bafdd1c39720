package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/internal/dto"
	"github.com/noah-isme/uni-timetable-api/internal/events"
	"github.com/noah-isme/uni-timetable-api/internal/models"
	"github.com/noah-isme/uni-timetable-api/internal/scheduler"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type runLock interface {
	Acquire(ctx context.Context, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, token string) error
}

type timetableWriter interface {
	DeleteAll(ctx context.Context, exec sqlx.ExtContext) (int64, error)
	BulkInsert(ctx context.Context, exec sqlx.ExtContext, entries []models.TimetableEntry) error
}

type timetableRunRepository interface {
	Create(ctx context.Context, run *models.TimetableRun) error
	Finish(ctx context.Context, run *models.TimetableRun) error
	Latest(ctx context.Context) (*models.TimetableRun, error)
	List(ctx context.Context, limit int) ([]models.TimetableRun, error)
}

type snapshotSource interface {
	Load(ctx context.Context) (scheduler.Snapshot, error)
}

type preconditionChecker interface {
	Check(ctx context.Context) error
}

type eventDispatcher interface {
	Dispatch(event events.Event)
}

// GeneratorConfig governs generation runs.
type GeneratorConfig struct {
	LockTTL       time.Duration
	ValidateFirst bool
}

// GenerateOptions tunes a single run.
type GenerateOptions struct {
	SkipValidation bool
	TriggeredBy    string
}

// TimetableGeneratorService replaces the whole timetable with a fresh engine
// run. Runs are serialised by a lock and persisted all-or-nothing.
type TimetableGeneratorService struct {
	engine    *scheduler.Engine
	snapshots snapshotSource
	checker   preconditionChecker
	entries   timetableWriter
	runs      timetableRunRepository
	tx        txProvider
	lock      runLock
	cache     *CacheService
	events    eventDispatcher
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       GeneratorConfig
}

// NewTimetableGeneratorService wires generator dependencies. cache, events and
// metrics may be nil.
func NewTimetableGeneratorService(
	engine *scheduler.Engine,
	snapshots snapshotSource,
	checker preconditionChecker,
	entries timetableWriter,
	runs timetableRunRepository,
	tx txProvider,
	lock runLock,
	cache *CacheService,
	dispatcher eventDispatcher,
	metrics *MetricsService,
	logger *zap.Logger,
	cfg GeneratorConfig,
) *TimetableGeneratorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 2 * time.Minute
	}
	return &TimetableGeneratorService{
		engine:    engine,
		snapshots: snapshots,
		checker:   checker,
		entries:   entries,
		runs:      runs,
		tx:        tx,
		lock:      lock,
		cache:     cache,
		events:    dispatcher,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
	}
}

// Generate runs the engine and swaps the stored timetable for its result.
func (s *TimetableGeneratorService) Generate(ctx context.Context, opts GenerateOptions) (*dto.GenerationResult, error) {
	started := time.Now()

	token, ok, err := s.lock.Acquire(ctx, s.cfg.LockTTL)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to acquire generation lock")
	}
	if !ok {
		s.logger.Warn("timetable generation rejected, run in progress")
		return nil, appErrors.Clone(appErrors.ErrRunInProgress, "")
	}
	defer func() {
		if err := s.lock.Release(context.Background(), token); err != nil {
			s.logger.Warn("failed to release generation lock", zap.Error(err))
		}
	}()

	if s.cfg.ValidateFirst && !opts.SkipValidation && s.checker != nil {
		if err := s.checker.Check(ctx); err != nil {
			s.metrics.RecordGeneration(false, dto.FailureValidation, 0, time.Since(started))
			return nil, err
		}
	}

	run := &models.TimetableRun{Status: models.RunStatusRunning}
	if opts.TriggeredBy != "" {
		run.TriggeredBy = &opts.TriggeredBy
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record generation run")
	}
	s.logger.Info("timetable generation started", zap.String("run_id", run.ID))

	loadStarted := time.Now()
	snapshot, err := s.snapshots.Load(ctx)
	s.metrics.ObserveDBQuery("load_snapshot", time.Since(loadStarted))
	if err != nil {
		return nil, s.abort(ctx, run, started, dto.GenerationFailure{Kind: dto.FailureInternal, Message: "failed to load scheduling data"}, err)
	}

	result, err := s.engine.Run(snapshot)
	if err != nil {
		return nil, s.abort(ctx, run, started, describeFailure(err), err)
	}

	entries := lo.Map(result.Placements, func(p scheduler.Placement, _ int) models.TimetableEntry {
		return toTimetableEntry(p)
	})

	writeStarted := time.Now()
	removed, err := s.replace(ctx, entries)
	s.metrics.ObserveDBQuery("replace_entries", time.Since(writeStarted))
	if err != nil {
		return nil, s.abort(ctx, run, started, dto.GenerationFailure{Kind: dto.FailureInternal, Message: "failed to store timetable"}, err)
	}

	run.Status = models.RunStatusCommitted
	run.EntriesCreated = len(entries)
	if err := s.runs.Finish(ctx, run); err != nil {
		s.logger.Error("failed to finish generation run", zap.String("run_id", run.ID), zap.Error(err))
	}

	if err := s.cache.Invalidate(ctx, timetableCacheAll); err != nil {
		s.logger.Warn("failed to invalidate timetable cache", zap.Error(err))
	}

	duration := time.Since(started)
	s.metrics.RecordGeneration(true, "", len(entries), duration)
	s.dispatch(events.New(events.TypeTimetableGenerated, events.GeneratedPayload{
		RunID:          run.ID,
		EntriesCreated: len(entries),
		StreamCounts:   result.StreamCounts,
	}).WithRequestID(ctx))
	s.logger.Info("timetable generation committed",
		zap.String("run_id", run.ID),
		zap.Int("entries", len(entries)),
		zap.Int64("removed", removed),
		zap.Duration("duration", duration),
	)

	return &dto.GenerationResult{
		RunID:          run.ID,
		EntriesCreated: len(entries),
		EntriesRemoved: removed,
		StreamCounts:   result.StreamCounts,
		ProfessorLoads: professorLoadViews(snapshot.Professors, result.ProfessorLoad),
		DurationMs:     duration.Milliseconds(),
	}, nil
}

// LatestRun returns the most recent run.
func (s *TimetableGeneratorService) LatestRun(ctx context.Context) (*models.TimetableRun, error) {
	run, err := s.runs.Latest(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no generation runs yet")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load generation run")
	}
	return run, nil
}

// ListRuns returns recent runs, newest first.
func (s *TimetableGeneratorService) ListRuns(ctx context.Context, limit int) ([]models.TimetableRun, error) {
	runs, err := s.runs.List(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list generation runs")
	}
	return runs, nil
}

func (s *TimetableGeneratorService) replace(ctx context.Context, entries []models.TimetableEntry) (removed int64, err error) {
	if s.tx == nil {
		return 0, errors.New("transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	removed, err = s.entries.DeleteAll(ctx, tx)
	if err != nil {
		return 0, err
	}
	if err = s.entries.BulkInsert(ctx, tx, entries); err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return removed, nil
}

// abort marks the run aborted and converts cause into the error returned to
// the caller.
func (s *TimetableGeneratorService) abort(ctx context.Context, run *models.TimetableRun, started time.Time, failure dto.GenerationFailure, cause error) error {
	fields := []zap.Field{zap.String("run_id", run.ID), zap.String("kind", failure.Kind), zap.Error(cause)}
	if failure.Placement != nil {
		fields = append(fields,
			zap.String("stream", failure.Placement.StreamName),
			zap.String("subject", failure.Placement.SubjectName),
			zap.String("pass", string(failure.Placement.Pass)),
		)
	}
	s.logger.Warn("timetable generation aborted", fields...)

	run.Status = models.RunStatusAborted
	if raw, err := json.Marshal(failure); err == nil {
		run.Failure = types.JSONText(raw)
	}
	if err := s.runs.Finish(ctx, run); err != nil {
		s.logger.Error("failed to finish generation run", zap.String("run_id", run.ID), zap.Error(err))
	}

	s.metrics.RecordGeneration(false, failure.Kind, 0, time.Since(started))
	s.dispatch(events.New(events.TypeGenerationFailed, events.FailedPayload{RunID: run.ID, Reason: failure.Message}).WithRequestID(ctx))

	switch failure.Kind {
	case dto.FailureConfigurationIncomplete:
		return appErrors.WithDetails(appErrors.ErrConfigurationIncomplete, failure.Message, failure)
	case dto.FailurePlacementInfeasible:
		return appErrors.WithDetails(appErrors.ErrPlacementInfeasible, failure.Message, failure)
	default:
		return appErrors.Wrap(cause, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, failure.Message)
	}
}

func (s *TimetableGeneratorService) dispatch(event events.Event) {
	if s.events == nil {
		return
	}
	s.events.Dispatch(event)
}

func describeFailure(err error) dto.GenerationFailure {
	var incomplete *scheduler.IncompleteError
	if errors.As(err, &incomplete) {
		return dto.GenerationFailure{Kind: dto.FailureConfigurationIncomplete, Message: err.Error(), Missing: incomplete.Missing}
	}
	var placement *scheduler.PlacementError
	if errors.As(err, &placement) {
		return dto.GenerationFailure{Kind: dto.FailurePlacementInfeasible, Message: err.Error(), Placement: placement}
	}
	return dto.GenerationFailure{Kind: dto.FailureInternal, Message: "timetable engine failed"}
}

func toTimetableEntry(p scheduler.Placement) models.TimetableEntry {
	slotID := p.TimeSlotID
	entry := models.TimetableEntry{
		StreamID:   p.StreamID,
		SubjectID:  p.SubjectID,
		DayOfWeek:  string(p.Day),
		TimeSlotID: &slotID,
	}
	if p.ProfessorID != "" {
		professorID := p.ProfessorID
		entry.ProfessorID = &professorID
	}
	if p.LocationID != "" {
		locationID := p.LocationID
		entry.LocationID = &locationID
	}
	return entry
}

func professorLoadViews(professors []scheduler.Professor, load map[string]int) []dto.ProfessorLoadView {
	return lo.Map(professors, func(p scheduler.Professor, _ int) dto.ProfessorLoadView {
		return dto.ProfessorLoadView{ProfessorID: p.ID, Name: p.Name, Placed: load[p.ID], Cap: p.WeeklyCap}
	})
}
