// Package httpx wires the HTTP surface: middlewares, the health probe, and
// the project routes.
package httpx

import (
	"github.com/gofiber/fiber/v2"

	"freelanceflow/internal/httpx/mw"
	"freelanceflow/internal/httpx/projects"
	"freelanceflow/internal/redisx"
	"freelanceflow/internal/repo"
)

// Options carries the optional route dependencies. The zero value mounts a
// repository-only API with an in-process rate limiter.
type Options struct {
	Providers projects.Providers
	RDB       *redisx.Client

	RateWindowSec int
	RateMax       int
}

// Register mounts all routes on the app.
func Register(app *fiber.App, r *repo.Repository, opts ...Options) {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.RateWindowSec <= 0 {
		o.RateWindowSec = 60
	}
	if o.RateMax <= 0 {
		o.RateMax = 120
	}

	app.Get("/health", HealthHandler)

	api := app.Group("/api", mw.RateLimitDefault(o.RDB, o.RateWindowSec, o.RateMax))

	api.Get("/dashboard", projects.DashboardHandler(r))
	api.Get("/payments", projects.PaymentsHandler(r))

	// Static segments are registered before the :id wildcard.
	api.Get("/projects/export", projects.ExportCSVHandler(r))
	api.Get("/projects/search", projects.SearchProjectsHandler(r, o.Providers))

	api.Get("/projects", projects.ListProjectsHandler(r))
	api.Post("/projects", projects.CreateProjectHandler(r, o.Providers))
	api.Put("/projects/:id", projects.UpdateProjectHandler(r, o.Providers))
	api.Delete("/projects/:id", projects.DeleteProjectHandler(r, o.Providers))
	api.Post("/projects/:id/invoice", projects.InvoiceHandler(r, o.Providers))
}
