package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queuesmart/internal/api/http/handlers"
	"github.com/spec-kit/queuesmart/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Staff          *handlers.StaffHandler
	Customers      *handlers.CustomersHandler
	Tickets        *handlers.TicketsHandler
	StaffTickets   *handlers.StaffTicketsHandler
	Appointments   *handlers.AppointmentsHandler
	Reports        *handlers.ReportsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Everything outside /health and the
// login endpoint requires a staff token; staff administration, reports and
// the audit log additionally require the Manager role.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Staff.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/auth/me", cfg.Staff.Me)
	protected.Get("/auth/me/tickets", cfg.StaffTickets.MyTickets)
	protected.Post("/auth/password/change", cfg.Staff.ChangePassword)

	customers := protected.Group("/customers")
	customers.Post("/", cfg.Customers.Create)
	customers.Get("/", cfg.Customers.List)
	customers.Get("/:id", cfg.Customers.Get)
	customers.Put("/:id", cfg.Customers.Update)
	customers.Delete("/:id", cfg.Customers.Delete)
	customers.Get("/:id/tickets", cfg.Customers.Tickets)
	customers.Get("/:id/appointments", cfg.Customers.Appointments)

	tickets := protected.Group("/tickets")
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/dashboard", cfg.Tickets.Dashboard)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Delete("/:id", cfg.Tickets.DeleteTicket)
	tickets.Post("/:id/assignee", cfg.StaffTickets.Assign)
	tickets.Delete("/:id/assignee", cfg.StaffTickets.Unassign)

	appointments := protected.Group("/appointments")
	appointments.Post("/", cfg.Appointments.Book)
	appointments.Get("/:id", cfg.Appointments.Get)
	appointments.Put("/:id", cfg.Appointments.Reschedule)
	appointments.Delete("/:id", cfg.Appointments.Cancel)

	staff := protected.Group("/staff")
	staff.Get("/:id/appointments", cfg.Appointments.Schedule)
	staff.Get("/:id/tickets", cfg.StaffTickets.StaffTickets)

	managers := protected.Group("", auth.RequireManager())
	managers.Post("/staff", cfg.Staff.CreateStaff)
	managers.Get("/staff", cfg.Staff.ListStaff)
	managers.Get("/staff/:id", cfg.Staff.GetStaff)
	managers.Patch("/staff/:id/role", cfg.Staff.ChangeRole)
	managers.Delete("/staff/:id", cfg.Staff.DeleteStaff)

	managers.Get("/reports/weekly", cfg.Reports.Weekly)
	managers.Get("/reports/close-times", cfg.Reports.CloseTimes)
	managers.Get("/reports/busiest-dates", cfg.Reports.BusiestDates)
	managers.Get("/audit", cfg.Reports.Audit)
}
