// Package bootstrap opens the stores shared by the HTTP service and the coverage CLI.
package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/facilityops/facility-ops/internal/config"
	"github.com/facilityops/facility-ops/internal/domain"
	"github.com/facilityops/facility-ops/internal/persistence"
	"github.com/facilityops/facility-ops/internal/repository"
	"github.com/facilityops/facility-ops/internal/repository/memory"
	"github.com/facilityops/facility-ops/internal/scheduling"
)

// Stores holds the repositories and infrastructure clients for one process.
type Stores struct {
	Schedules repository.ScheduleRepository
	Staff     repository.StaffRepository
	Postgres  *persistence.Postgres
	Redis     *persistence.Redis
	// Locker is nil when redis is not configured.
	Locker scheduling.SweepLocker
}

// OpenStores connects to postgres when a DSN is configured and falls back to the
// in-memory stores seeded from the roster file otherwise.
func OpenStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Stores, error) {
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, err
	}
	stores := &Stores{Postgres: pg}

	if pg.Enabled() {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				pg.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		stores.Schedules = repository.NewScheduleRepository(pg.PoolHandle())
		stores.Staff = repository.NewStaffRepository(pg.PoolHandle())
	} else {
		var roster []domain.StaffMember
		if path := cfg.Scheduling.SeedRosterPath; path != "" {
			roster, err = memory.LoadRoster(path)
			if err != nil {
				return nil, err
			}
		}
		logger.Info("using in-memory stores", zap.Int("roster_size", len(roster)))
		schedules := memory.NewScheduleStore()
		stores.Schedules = schedules
		stores.Staff = memory.NewStaffStore(schedules, roster...)
	}

	stores.Redis = persistence.NewRedis(cfg.Redis, logger)
	if stores.Redis != nil {
		stores.Locker = persistence.NewSweepLock(stores.Redis.Client, cfg.Scheduling.SweepLockTTL(), logger)
	}
	return stores, nil
}

// Close releases the postgres pool and redis client.
func (s *Stores) Close() {
	s.Redis.Close()
	s.Postgres.Close()
}
