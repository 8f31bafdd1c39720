package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/internal/bootstrap"
	"github.com/noah-isme/uni-timetable-api/internal/scheduler"
	"github.com/noah-isme/uni-timetable-api/internal/service"
	"github.com/noah-isme/uni-timetable-api/pkg/cache"
	"github.com/noah-isme/uni-timetable-api/pkg/config"
	"github.com/noah-isme/uni-timetable-api/pkg/database"
	"github.com/noah-isme/uni-timetable-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(cfg, logr).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(cfg *config.Config, logr *zap.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:          "timetable-cli",
		Short:        "Validate, generate and simulate university timetables",
		SilenceUsage: true,
	}

	defaults := scheduler.Options{MaxDays: cfg.Scheduler.MaxDays, StreamExclusive: cfg.Scheduler.StreamExclusive}
	root.AddCommand(
		newValidateCommand(cfg, logr),
		newGenerateCommand(cfg, logr),
		newSimulateCommand(defaults, cfg.Scheduler.LunchBreakStart),
	)
	return root
}

func newValidateCommand(cfg *config.Config, logr *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the stored catalog against generation preconditions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd.Context(), cfg, logr, func(c *bootstrap.Container) error {
				report, err := c.Validation.Validate(cmd.Context())
				if err != nil {
					return err
				}
				if err := printJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
				if !report.Valid {
					return fmt.Errorf("%d validation problems", len(report.Errors))
				}
				return nil
			})
		},
	}
}

func newGenerateCommand(cfg *config.Config, logr *zap.Logger) *cobra.Command {
	var skipValidation bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Replace the stored timetable with a fresh engine run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd.Context(), cfg, logr, func(c *bootstrap.Container) error {
				result, err := c.Generator.Generate(cmd.Context(), service.GenerateOptions{
					SkipValidation: skipValidation,
					TriggeredBy:    "cli",
				})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}
	cmd.Flags().BoolVar(&skipValidation, "skip-validation", false, "run the engine even when preconditions fail")
	return cmd
}

// withContainer opens the database and optional redis, wires services and
// runs fn.
func withContainer(ctx context.Context, cfg *config.Config, logr *zap.Logger, fn func(*bootstrap.Container) error) error {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, using local lock", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	container, err := bootstrap.New(cfg, db, redisClient, logr)
	if err != nil {
		return err
	}
	container.Dispatcher.Start(ctx)
	defer func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		container.Dispatcher.Stop(drainCtx)
	}()

	if err := fn(container); err != nil {
		logr.Error("command failed", zap.Error(err))
		return err
	}
	return nil
}

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
