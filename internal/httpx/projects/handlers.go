// Package projects provides the HTTP handlers for project records and the
// views derived from them.
package projects

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"freelanceflow/internal/esx"
	"freelanceflow/internal/export"
	"freelanceflow/internal/httpx/kit"
	"freelanceflow/internal/invoice"
	"freelanceflow/internal/logx"
	"freelanceflow/internal/mqx"
	"freelanceflow/internal/project"
	"freelanceflow/internal/repo"
	"freelanceflow/internal/views"
)

var projLogger = logx.GetScope("httpx.projects")

// Providers bundles the optional side-channel dependencies. Any field may be
// nil; handlers degrade to the repository alone.
type Providers struct {
	MQ mqx.Publisher
	ES *esx.Client
}

// ProjectRequest is the request body for creating or updating a project
// swagger:model ProjectRequest
type ProjectRequest struct {
	Name          string  `json:"name"`
	Client        string  `json:"client"`
	StartDate     string  `json:"startDate,omitempty"`
	EndDate       string  `json:"endDate,omitempty"`
	Amount        float64 `json:"amount,omitempty"`
	Status        string  `json:"status,omitempty"`
	PaymentStatus string  `json:"paymentStatus,omitempty"`
	PaidAmount    float64 `json:"paidAmount,omitempty"`
}

func (r ProjectRequest) input() project.Input {
	return project.Input{
		Name:          strings.TrimSpace(r.Name),
		Client:        strings.TrimSpace(r.Client),
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		Amount:        r.Amount,
		Status:        project.Status(r.Status),
		PaymentStatus: project.PaymentStatus(r.PaymentStatus),
		PaidAmount:    r.PaidAmount,
	}
}

// ListProjectsHandler returns the full project list, optionally narrowed by
// status and a name/client search term. The wire shape is a plain JSON array.
//
//	@Summary      List projects
//	@Description  Returns all projects, optionally filtered
//	@Tags         projects
//	@Produce      json
//	@Param        status  query  string  false  "exact status or 'all'"
//	@Param        q       query  string  false  "substring match on name or client"
//	@Success      200  {array}  project.Project
//	@Router       /api/projects [get]
func ListProjectsHandler(r *repo.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()

		list, err := r.List(ctx)
		if err != nil {
			// Stale data beats no data; flag it for the client.
			c.Set("X-Stale", "true")
			projLogger.Warn("serving stale project list", zap.Error(err))
		}

		f := views.Filter{Status: c.Query("status"), Search: c.Query("q")}
		out := f.Apply(list)
		if out == nil {
			out = []project.Project{}
		}
		if len(out) == 0 {
			c.Set("X-Empty", "true")
		}
		return kit.OK(c, out)
	}
}

// CreateProjectHandler adds a project.
//
//	@Summary      Create project
//	@Tags         projects
//	@Accept       json
//	@Produce      json
//	@Param        body  body  projects.ProjectRequest  true  "project payload"
//	@Success      201  {object}  map[string]string
//	@Failure      400  {object}  map[string]string
//	@Router       /api/projects [post]
func CreateProjectHandler(r *repo.Repository, pv Providers) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req ProjectRequest
		if err := c.BodyParser(&req); err != nil ||
			strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Client) == "" {
			return kit.BadRequest("name and client required")
		}

		ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()

		created, err := r.Create(ctx, req.input())
		if err != nil {
			return kit.FromStorage(err)
		}

		if err := esx.IndexProject(ctx, pv.ES, created); err != nil {
			projLogger.Warn("index project failed", zap.String("id", created.ID), zap.Error(err))
		}
		if err := mqx.PublishJSON(ctx, pv.MQ, mqx.EventProjectCreated, created); err != nil {
			projLogger.Warn("publish project.created failed", zap.Error(err))
		}

		return kit.Created(c, fiber.Map{
			"message": "Project added successfully",
			"id":      created.ID,
		})
	}
}

// UpdateProjectHandler replaces the project with the given id.
//
//	@Summary      Update project
//	@Tags         projects
//	@Accept       json
//	@Produce      json
//	@Param        id    path  string                   true  "project id"
//	@Param        body  body  projects.ProjectRequest  true  "project payload"
//	@Success      200  {object}  map[string]string
//	@Failure      400  {object}  map[string]string
//	@Failure      404  {object}  map[string]string
//	@Router       /api/projects/{id} [put]
func UpdateProjectHandler(r *repo.Repository, pv Providers) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var req ProjectRequest
		if err := c.BodyParser(&req); err != nil ||
			strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Client) == "" {
			return kit.BadRequest("name and client required")
		}

		ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()

		if err := r.Update(ctx, id, req.input()); err != nil {
			return kit.FromStorage(err)
		}

		if updated, ok := r.Get(id); ok {
			if err := esx.IndexProject(ctx, pv.ES, updated); err != nil {
				projLogger.Warn("index project failed", zap.String("id", id), zap.Error(err))
			}
			if err := mqx.PublishJSON(ctx, pv.MQ, mqx.EventProjectUpdated, updated); err != nil {
				projLogger.Warn("publish project.updated failed", zap.Error(err))
			}
		}

		return kit.Message(c, "Project updated successfully")
	}
}

// DeleteProjectHandler removes the project with the given id. The destructive
// call requires explicit confirmation via ?confirm=true.
//
//	@Summary      Delete project
//	@Tags         projects
//	@Produce      json
//	@Param        id       path   string  true   "project id"
//	@Param        confirm  query  bool    false  "must be true"
//	@Success      200  {object}  map[string]string
//	@Failure      400  {object}  map[string]string
//	@Failure      404  {object}  map[string]string
//	@Router       /api/projects/{id} [delete]
func DeleteProjectHandler(r *repo.Repository, pv Providers) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()
		if c.QueryBool("confirm") {
			ctx = repo.WithDeleteConfirmation(ctx)
		}

		if err := r.Delete(ctx, id); err != nil {
			return kit.FromStorage(err)
		}

		if err := esx.RemoveProject(ctx, pv.ES, id); err != nil {
			projLogger.Warn("remove project from index failed", zap.String("id", id), zap.Error(err))
		}
		if err := mqx.PublishJSON(ctx, pv.MQ, mqx.EventProjectDeleted, fiber.Map{"id": id}); err != nil {
			projLogger.Warn("publish project.deleted failed", zap.Error(err))
		}

		return kit.Message(c, "Project deleted successfully")
	}
}

// DashboardHandler returns the stat-card aggregates, recent projects, and the
// status distribution.
//
//	@Summary      Dashboard aggregates
//	@Tags         views
//	@Produce      json
//	@Success      200  {object}  views.Dashboard
//	@Router       /api/dashboard [get]
func DashboardHandler(r *repo.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()

		list, err := r.List(ctx)
		if err != nil {
			c.Set("X-Stale", "true")
		}
		return kit.OK(c, views.BuildDashboard(list))
	}
}

// PaymentsHandler returns the payments ledger over the full list.
//
//	@Summary      Payments ledger
//	@Tags         views
//	@Produce      json
//	@Success      200  {object}  views.Ledger
//	@Router       /api/payments [get]
func PaymentsHandler(r *repo.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()

		list, err := r.List(ctx)
		if err != nil {
			c.Set("X-Stale", "true")
		}
		return kit.OK(c, views.BuildLedger(list))
	}
}

// ExportCSVHandler streams the full project list as a CSV attachment.
//
//	@Summary      Export projects as CSV
//	@Tags         projects
//	@Produce      text/csv
//	@Success      200  {string}  string
//	@Failure      400  {object}  map[string]string
//	@Router       /api/projects/export [get]
func ExportCSVHandler(r *repo.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()

		list, err := r.List(ctx)
		if err != nil {
			c.Set("X-Stale", "true")
		}

		var buf bytes.Buffer
		if err := export.WriteCSV(&buf, list); err != nil {
			return kit.BadRequest(err.Error())
		}

		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+export.Filename+`"`)
		return c.Send(buf.Bytes())
	}
}

// InvoiceHandler renders the PDF invoice for a paid project and streams it.
//
//	@Summary      Generate invoice PDF
//	@Tags         projects
//	@Produce      application/pdf
//	@Param        id  path  string  true  "project id"
//	@Success      200  {string}  string
//	@Failure      400  {object}  map[string]string
//	@Failure      404  {object}  map[string]string
//	@Router       /api/projects/{id}/invoice [post]
func InvoiceHandler(r *repo.Repository, pv Providers) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()

		p, ok := r.Get(id)
		if !ok {
			// Cold cache: sync once before reporting the miss.
			if _, err := r.List(ctx); err == nil {
				p, ok = r.Get(id)
			}
			if !ok {
				return kit.NotFound("project not found")
			}
		}

		var buf bytes.Buffer
		if err := invoice.Render(&buf, p, time.Now()); err != nil {
			return kit.BadRequest(err.Error())
		}

		if err := mqx.PublishJSON(ctx, pv.MQ, mqx.EventInvoiceGenerated, fiber.Map{
			"id":     p.ID,
			"number": invoice.Number(p.ID),
		}); err != nil {
			projLogger.Warn("publish invoice.generated failed", zap.Error(err))
		}

		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+invoice.Filename(p)+`"`)
		return c.Send(buf.Bytes())
	}
}

// SearchProjectsHandler searches the index for projects by name or client.
// Without a configured search backend it falls back to the in-memory filter.
//
//	@Summary      Search projects
//	@Tags         projects
//	@Produce      json
//	@Param        q     query  string  true   "search term"
//	@Param        from  query  int     false  "offset"     default(0)
//	@Param        size  query  int     false  "page size"  default(20)
//	@Success      200  {object}  map[string]interface{}
//	@Failure      400  {object}  map[string]string
//	@Router       /api/projects/search [get]
func SearchProjectsHandler(r *repo.Repository, pv Providers) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := strings.TrimSpace(c.Query("q"))
		if q == "" {
			return kit.BadRequest("q required")
		}

		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()

		if pv.ES != nil {
			res, err := esx.SearchProjects(ctx, pv.ES, q, c.QueryInt("from", 0), c.QueryInt("size", 20))
			if err != nil {
				projLogger.Warn("search backend failed, falling back to in-memory filter",
					zap.String("q", q), zap.Error(err))
			} else {
				return kit.OK(c, res)
			}
		}

		list, err := r.List(ctx)
		if err != nil {
			c.Set("X-Stale", "true")
		}
		out := views.Filter{Search: q}.Apply(list)
		if out == nil {
			out = []project.Project{}
		}
		return kit.OK(c, fiber.Map{"hits": out, "total": len(out)})
	}
}
