package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/customer-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Metrics   *handlers.MetricsHandler
	Customers *handlers.CustomersHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	if cfg.Health != nil {
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
	}
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics.Snapshot)
	}

	customers := app.Group("/customers")
	customers.Get("", cfg.Customers.List)
	customers.Post("", cfg.Customers.Create)
	customers.Get("/:id", cfg.Customers.Get)
	customers.Put("/:id", cfg.Customers.Update)
	customers.Delete("/:id", cfg.Customers.Delete)
	customers.Get("/:id/tier", cfg.Customers.Tier)
}
