package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ottocrm/ottocrm/internal/api/http/handlers"
	"github.com/ottocrm/ottocrm/internal/auth"
	"github.com/ottocrm/ottocrm/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Profiles       *handlers.ProfilesHandler
	Tickets        *handlers.TicketsHandler
	Stream         *handlers.StreamHandler
	Documents      *handlers.DocumentsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/sign-up", cfg.Auth.SignUp)
	authGroup.Post("/sign-in", cfg.Auth.SignIn)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	protected.Post("/auth/sign-out", cfg.Auth.SignOut)
	protected.Post("/auth/password/change", cfg.Auth.ChangePassword)

	protected.Get("/profiles/me", cfg.Profiles.Me)
	protected.Patch("/profiles/me", cfg.Profiles.UpdateMe)
	protected.Patch("/profiles/:id/role", auth.RequireRole(domain.RoleAdmin), cfg.Profiles.UpdateRole)
	protected.Post("/profiles/sync", auth.RequireRole(domain.RoleAdmin), cfg.Profiles.Sync)
	protected.Get("/customers", auth.RequireStaff(), cfg.Profiles.ListCustomers)
	protected.Get("/agents", auth.RequireStaff(), cfg.Profiles.ListAgents)

	tickets := protected.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Get("/:id/events", cfg.Stream.StreamTicket)
	tickets.Patch("/:id/status", auth.RequireStaff(), cfg.Tickets.UpdateStatus)
	tickets.Patch("/:id/priority", auth.RequireStaff(), cfg.Tickets.UpdatePriority)
	tickets.Patch("/:id/assignee", auth.RequireRole(domain.RoleAdmin), cfg.Tickets.UpdateAssignee)
	tickets.Get("/:id/messages", cfg.Tickets.ListMessages)
	tickets.Post("/:id/messages", cfg.Tickets.AddMessage)

	documents := protected.Group("/documents")
	documents.Get("", cfg.Documents.List)
	documents.Get("/:id", cfg.Documents.Get)
	documents.Post("", auth.RequireRole(domain.RoleAdmin), cfg.Documents.Create)
	documents.Patch("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Documents.Update)
}
