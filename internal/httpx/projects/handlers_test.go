package projects

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"freelanceflow/internal/httpx/kit/testutil"
	"freelanceflow/internal/repo"
	"freelanceflow/internal/storage/sqlite"
)

func newTestRepo(t *testing.T) *repo.Repository {
	t.Helper()
	store, closer, err := sqlite.Open("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(closer)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repo.New(store)
}

func newTestApp(r *repo.Repository) *fiber.App {
	var pv Providers
	return testutil.NewApp(
		func(app *fiber.App) { app.Get("/api/projects", ListProjectsHandler(r)) },
		func(app *fiber.App) { app.Post("/api/projects", CreateProjectHandler(r, pv)) },
		func(app *fiber.App) { app.Put("/api/projects/:id", UpdateProjectHandler(r, pv)) },
		func(app *fiber.App) { app.Delete("/api/projects/:id", DeleteProjectHandler(r, pv)) },
		func(app *fiber.App) { app.Get("/api/dashboard", DashboardHandler(r)) },
		func(app *fiber.App) { app.Get("/api/payments", PaymentsHandler(r)) },
		func(app *fiber.App) { app.Get("/api/export", ExportCSVHandler(r)) },
		func(app *fiber.App) { app.Post("/api/projects/:id/invoice", InvoiceHandler(r, pv)) },
		func(app *fiber.App) { app.Get("/api/search", SearchProjectsHandler(r, pv)) },
	)
}

func postJSON(t *testing.T, app *fiber.App, method, path string, body map[string]any) *http.Response {
	t.Helper()
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return res
}

func createProject(t *testing.T, app *fiber.App, body map[string]any) string {
	t.Helper()
	res := postJSON(t, app, http.MethodPost, "/api/projects", body)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create status=%d", res.StatusCode)
	}
	var out struct {
		Message string `json:"message"`
		ID      string `json:"id"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode create: %v", err)
	}
	if out.Message != "Project added successfully" {
		t.Fatalf("message=%q", out.Message)
	}
	if out.ID == "" {
		t.Fatal("empty id")
	}
	return out.ID
}

func TestProjects_CRUDFlow(t *testing.T) {
	r := newTestRepo(t)
	app := newTestApp(r)

	id := createProject(t, app, map[string]any{
		"name": "Site Redesign", "client": "Acme", "amount": 5000.0,
	})

	// List: plain array with defaults applied.
	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/projects", nil))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list status=%d", res.StatusCode)
	}
	var list []map[string]any
	if err := json.NewDecoder(res.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("want 1 project, got %d", len(list))
	}
	if list[0]["status"] != "Pending" || list[0]["paymentStatus"] != "Unpaid" {
		t.Fatalf("defaults not applied: %v", list[0])
	}

	// Update to Paid: paidAmount is forced to the full amount.
	ures := postJSON(t, app, http.MethodPut, "/api/projects/"+id, map[string]any{
		"name": "Site Redesign", "client": "Acme", "amount": 5000.0,
		"status": "Completed", "paymentStatus": "Paid",
	})
	if ures.StatusCode != http.StatusOK {
		t.Fatalf("update status=%d", ures.StatusCode)
	}

	res2, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/projects", nil))
	if err := json.NewDecoder(res2.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if got := list[0]["paidAmount"].(float64); got != 5000 {
		t.Fatalf("paidAmount=%v", got)
	}

	// Delete without confirm is refused with the error object shape.
	dres, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/api/projects/"+id, nil))
	if dres.StatusCode != http.StatusBadRequest {
		t.Fatalf("unconfirmed delete status=%d", dres.StatusCode)
	}
	var apiErr struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(dres.Body).Decode(&apiErr); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if apiErr.Error == "" {
		t.Fatal("missing error message")
	}

	// Confirmed delete succeeds.
	dres2, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/api/projects/"+id+"?confirm=true", nil))
	if dres2.StatusCode != http.StatusOK {
		t.Fatalf("confirmed delete status=%d", dres2.StatusCode)
	}

	res3, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/projects", nil))
	if res3.Header.Get("X-Empty") != "true" {
		t.Fatal("expected X-Empty header on empty list")
	}
	if err := json.NewDecoder(res3.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("want empty list, got %d", len(list))
	}
}

func TestProjects_CreateRequiresNameAndClient(t *testing.T) {
	r := newTestRepo(t)
	app := newTestApp(r)

	res := postJSON(t, app, http.MethodPost, "/api/projects", map[string]any{"name": "No Client"})
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status=%d", res.StatusCode)
	}
	var apiErr struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(res.Body).Decode(&apiErr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if apiErr.Error != "name and client required" {
		t.Fatalf("error=%q", apiErr.Error)
	}
}

func TestProjects_UpdateUnknownIDIs404(t *testing.T) {
	r := newTestRepo(t)
	app := newTestApp(r)

	res := postJSON(t, app, http.MethodPut, "/api/projects/nope", map[string]any{
		"name": "X", "client": "Y",
	})
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status=%d", res.StatusCode)
	}
}

func TestProjects_ListFilters(t *testing.T) {
	r := newTestRepo(t)
	app := newTestApp(r)

	createProject(t, app, map[string]any{"name": "Logo", "client": "Acme", "status": "Completed"})
	createProject(t, app, map[string]any{"name": "App", "client": "Globex", "status": "In Progress"})

	res, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/projects?status=Completed&q=acme", nil))
	var list []map[string]any
	if err := json.NewDecoder(res.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 1 || list[0]["name"] != "Logo" {
		t.Fatalf("filter result: %v", list)
	}
}

func TestProjects_Dashboard(t *testing.T) {
	r := newTestRepo(t)
	app := newTestApp(r)

	createProject(t, app, map[string]any{
		"name": "A", "client": "C1", "amount": 1000.0, "status": "Completed",
		"paymentStatus": "Partial", "paidAmount": 400.0,
	})
	createProject(t, app, map[string]any{"name": "B", "client": "C2", "amount": 500.0})

	res, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", res.StatusCode)
	}
	var d struct {
		Total           int     `json:"total"`
		Completed       int     `json:"completed"`
		Pending         int     `json:"pending"`
		PendingPayments float64 `json:"pendingPayments"`
	}
	if err := json.NewDecoder(res.Body).Decode(&d); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d.Total != 2 || d.Completed != 1 || d.Pending != 1 {
		t.Fatalf("counts: %+v", d)
	}
	if d.PendingPayments != 1100 {
		t.Fatalf("pendingPayments=%v", d.PendingPayments)
	}
}

func TestProjects_Payments(t *testing.T) {
	r := newTestRepo(t)
	app := newTestApp(r)

	createProject(t, app, map[string]any{
		"name": "A", "client": "C", "amount": 1000.0,
		"paymentStatus": "Partial", "paidAmount": 400.0,
	})

	res, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/payments", nil))
	var ledger struct {
		Rows         []map[string]any `json:"rows"`
		TotalEarned  float64          `json:"totalEarned"`
		TotalPending float64          `json:"totalPending"`
	}
	if err := json.NewDecoder(res.Body).Decode(&ledger); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(ledger.Rows) != 1 || ledger.TotalEarned != 400 || ledger.TotalPending != 600 {
		t.Fatalf("ledger: %+v", ledger)
	}
}

func TestProjects_ExportCSV(t *testing.T) {
	r := newTestRepo(t)
	app := newTestApp(r)

	// Empty list is a 400 notice, not an empty file.
	res, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/export", nil))
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty export status=%d", res.StatusCode)
	}

	createProject(t, app, map[string]any{"name": "A", "client": "C", "amount": 100.0})

	res2, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/export", nil))
	if res2.StatusCode != http.StatusOK {
		t.Fatalf("export status=%d", res2.StatusCode)
	}
	if ct := res2.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type=%q", ct)
	}
	body, _ := io.ReadAll(res2.Body)
	if !strings.HasPrefix(string(body), "Project Name,Client") {
		t.Fatalf("csv body: %q", string(body)[:min(40, len(body))])
	}
}

func TestProjects_Invoice(t *testing.T) {
	r := newTestRepo(t)
	app := newTestApp(r)

	unpaid := createProject(t, app, map[string]any{"name": "Unpaid Job", "client": "C", "amount": 100.0})
	paid := createProject(t, app, map[string]any{
		"name": "Paid Job", "client": "C", "amount": 100.0, "paymentStatus": "Paid",
	})

	res, _ := app.Test(httptest.NewRequest(http.MethodPost, "/api/projects/nope/invoice", nil))
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown id status=%d", res.StatusCode)
	}

	res2, _ := app.Test(httptest.NewRequest(http.MethodPost, "/api/projects/"+unpaid+"/invoice", nil))
	if res2.StatusCode != http.StatusBadRequest {
		t.Fatalf("unpaid status=%d", res2.StatusCode)
	}

	res3, _ := app.Test(httptest.NewRequest(http.MethodPost, "/api/projects/"+paid+"/invoice", nil))
	if res3.StatusCode != http.StatusOK {
		t.Fatalf("paid status=%d", res3.StatusCode)
	}
	if ct := res3.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content type=%q", ct)
	}
	body, _ := io.ReadAll(res3.Body)
	if !bytes.HasPrefix(body, []byte("%PDF")) {
		t.Fatal("not a pdf")
	}
}

func TestProjects_SearchFallsBackWithoutBackend(t *testing.T) {
	r := newTestRepo(t)
	app := newTestApp(r)

	createProject(t, app, map[string]any{"name": "Brand Refresh", "client": "Acme"})
	createProject(t, app, map[string]any{"name": "App", "client": "Globex"})

	res, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/search?q=acme", nil))
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", res.StatusCode)
	}
	var out struct {
		Hits  []map[string]any `json:"hits"`
		Total int              `json:"total"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Total != 1 || out.Hits[0]["client"] != "Acme" {
		t.Fatalf("search: %+v", out)
	}

	res2, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/search", nil))
	if res2.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing q status=%d", res2.StatusCode)
	}
}
