// Package cli implements the coverage command line tool.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/facilityops/facility-ops/internal/bootstrap"
	"github.com/facilityops/facility-ops/internal/config"
	"github.com/facilityops/facility-ops/internal/observability"
	"github.com/facilityops/facility-ops/internal/service"
)

// Env is the set of services a command runs against.
type Env struct {
	Schedules *service.ScheduleService
	Staff     *service.StaffService
	Close     func()
}

// Opener builds an Env. Tests substitute one backed by in-memory stores.
type Opener func(ctx context.Context) (*Env, error)

// NewRootCommand creates the root command. A nil open uses the configured stores.
func NewRootCommand(open Opener) *cobra.Command {
	if open == nil {
		open = OpenFromConfig
	}
	var date string

	rootCmd := &cobra.Command{
		Use:   "coverage",
		Short: "Inspect and enforce facility schedule coverage",
		Long: `coverage runs the scheduling engine against the configured stores.

Examples:
  coverage enforce --date 2024-06-01
  coverage snapshot --date 2024-06-01
  coverage availability --date 2024-06-01 --start 09:00 --end 12:00 --location "Block A - Cells"
  coverage validate --date 2024-06-01 --location "Control Room" --start 09:00 --end 17:00 --staff S1`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	rootCmd.PersistentFlags().StringVar(&date, "date", time.Now().Format("2006-01-02"), "Schedule date (YYYY-MM-DD)")

	dateFlag := func() string { return date }
	rootCmd.AddCommand(newEnforceCommand(open, dateFlag))
	rootCmd.AddCommand(newSnapshotCommand(open, dateFlag))
	rootCmd.AddCommand(newAvailabilityCommand(open, dateFlag))
	rootCmd.AddCommand(newValidateCommand(open, dateFlag))
	return rootCmd
}

// OpenFromConfig loads env configuration and opens postgres or the in-memory stores.
// Coverage sweeps run inline, so the post-commit auto sweep setting does not apply.
func OpenFromConfig(ctx context.Context) (*Env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}
	stores, err := bootstrap.OpenStores(ctx, *cfg, logger)
	if err != nil {
		return nil, err
	}

	return &Env{
		Schedules: service.NewScheduleService(*cfg, service.ScheduleDependencies{
			ScheduleRepo: stores.Schedules,
			StaffRepo:    stores.Staff,
			Locker:       stores.Locker,
			Logger:       logger,
		}),
		Staff: service.NewStaffService(service.StaffDependencies{StaffRepo: stores.Staff, Logger: logger}),
		Close: func() {
			stores.Close()
			_ = logger.Sync()
		},
	}, nil
}

// withEnv opens the env, runs fn with a bounded context and closes the env.
func withEnv(cmd *cobra.Command, open Opener, fn func(ctx context.Context, env *Env) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	env, err := open(ctx)
	if err != nil {
		return err
	}
	if env.Close != nil {
		defer env.Close()
	}
	return fn(ctx, env)
}

// Execute runs the root command.
func Execute() {
	rootCmd := NewRootCommand(nil)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
