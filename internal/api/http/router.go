package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/resolvease/complaint-service/internal/api/http/handlers"
	"github.com/resolvease/complaint-service/internal/auth"
	"github.com/resolvease/complaint-service/internal/domain"
	"github.com/resolvease/complaint-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Auth            *handlers.AuthHandler
	Complaints      *handlers.ComplaintsHandler
	AdminComplaints *handlers.AdminComplaintsHandler
	AdminUsers      *handlers.AdminUsersHandler
	AuthMiddleware  *auth.AuthMiddleware
	Metrics         *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/profile", cfg.AuthMiddleware.Handle, cfg.Auth.Profile)
	authGroup.Put("/profile", cfg.AuthMiddleware.Handle, cfg.Auth.UpdateProfile)

	users := api.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireRole())
	users.Post("/complaints", cfg.Complaints.Submit)
	users.Get("/mycomplaints", cfg.Complaints.ListMine)
	users.Get("/complaints/:id", cfg.Complaints.Get)

	admin := api.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	admin.Get("/users", cfg.AdminUsers.List)
	admin.Get("/users/:id", cfg.AdminUsers.Get)
	admin.Put("/users/:id", cfg.AdminUsers.Update)
	admin.Delete("/users/:id", cfg.AdminUsers.Delete)

	admin.Get("/complaints", cfg.AdminComplaints.List)
	admin.Get("/complaints/:id", cfg.AdminComplaints.Get)
	admin.Get("/complaints/:id/history", cfg.AdminComplaints.History)
	admin.Put("/complaints/:id/status", cfg.AdminComplaints.UpdateStatus)
	admin.Put("/complaints/:id/assign", cfg.AdminComplaints.Assign)
	admin.Post("/complaints/:id/reply", cfg.AdminComplaints.Reply)
}
