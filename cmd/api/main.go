package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/facilityops/facility-ops/internal/api/dto"
	httptransport "github.com/facilityops/facility-ops/internal/api/http"
	"github.com/facilityops/facility-ops/internal/api/http/handlers"
	"github.com/facilityops/facility-ops/internal/auth"
	"github.com/facilityops/facility-ops/internal/bootstrap"
	"github.com/facilityops/facility-ops/internal/config"
	"github.com/facilityops/facility-ops/internal/events"
	"github.com/facilityops/facility-ops/internal/observability"
	"github.com/facilityops/facility-ops/internal/service"
	"github.com/facilityops/facility-ops/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, err := bootstrap.OpenStores(ctx, *cfg, logger)
	if err != nil {
		logger.Fatal("failed to open stores", zap.Error(err))
	}
	defer stores.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	alerts := worker.NewAlertLog(0)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService, dispatcher, alerts)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		StaffRepo: stores.Staff,
		Logger:    logger,
	})
	staffService := service.NewStaffService(service.StaffDependencies{
		StaffRepo:  stores.Staff,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	scheduleService := service.NewScheduleService(*cfg, service.ScheduleDependencies{
		ScheduleRepo: stores.Schedules,
		StaffRepo:    stores.Staff,
		Locker:       stores.Locker,
		Dispatcher:   dispatcher,
		Metrics:      metrics,
		Logger:       logger,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), stores.Staff)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	validator := dto.NewValidator()
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, stores.Postgres, stores.Redis, metrics),
		Staff:          handlers.NewStaffHandler(authService, staffService, validator),
		Schedules:      handlers.NewScheduleHandler(scheduleService, alerts, validator),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
