package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/facilityops/facility-ops/internal/api/http/handlers"
	"github.com/facilityops/facility-ops/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Staff          *handlers.StaffHandler
	Schedules      *handlers.ScheduleHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Reads need any authenticated staff member;
// writes and enforcement need a scheduler role.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/staff/login", cfg.Staff.Login)

	app.Get("/metrics", cfg.AuthMiddleware.Handle, auth.RequireScheduler(), cfg.Health.Metrics)

	schedules := app.Group("/schedules", cfg.AuthMiddleware.Handle)
	schedules.Get("/", cfg.Schedules.List)
	schedules.Get("/summary", cfg.Schedules.Summary)
	schedules.Get("/alerts", cfg.Schedules.Alerts)
	schedules.Post("/validate", cfg.Schedules.Validate)
	schedules.Post("/enforce", auth.RequireScheduler(), cfg.Schedules.Enforce)
	schedules.Post("/", auth.RequireScheduler(), cfg.Schedules.Create)
	schedules.Get("/:id", cfg.Schedules.Get)
	schedules.Put("/:id", auth.RequireScheduler(), cfg.Schedules.Update)
	schedules.Delete("/:id", auth.RequireScheduler(), cfg.Schedules.Delete)

	staff := app.Group("/staff", cfg.AuthMiddleware.Handle)
	staff.Get("/", cfg.Staff.ListStaff)
	staff.Get("/available", cfg.Staff.Available)
	staff.Get("/:id", cfg.Staff.GetStaff)
	staff.Put("/:id/block", auth.RequireScheduler(), cfg.Staff.AssignBlock)
}
