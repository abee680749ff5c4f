// Package views computes the derived read models: dashboard aggregates, the
// filtered project list, and the payments ledger. Everything here is a pure
// function of an immutable snapshot; nothing mutates the input slice.
package views

import (
	"math"
	"sort"
	"strings"

	"github.com/samber/lo"

	"freelanceflow/internal/project"
)

// StatusShare is one bar of the dashboard status distribution.
type StatusShare struct {
	Status  project.Status `json:"status"`
	Count   int            `json:"count"`
	Percent int            `json:"percent"`
}

// Dashboard holds the stat-card aggregates, the five most recent projects,
// and the status distribution.
type Dashboard struct {
	Total           int               `json:"total"`
	Ongoing         int               `json:"ongoing"`
	Completed       int               `json:"completed"`
	Pending         int               `json:"pending"`
	PendingPayments float64           `json:"pendingPayments"`
	Recent          []project.Project `json:"recent"`
	Distribution    []StatusShare     `json:"distribution"`
}

// BuildDashboard computes the dashboard from a snapshot. The pending-payments
// total sums amount minus paidAmount without clamping, so an overpaid project
// subtracts. Recency orders by createdAt descending with a stable sort; a
// zero createdAt sorts oldest.
func BuildDashboard(ps []project.Project) Dashboard {
	counts := lo.CountValuesBy(ps, func(p project.Project) project.Status { return p.Status })

	d := Dashboard{
		Total:     len(ps),
		Ongoing:   counts[project.StatusInProgress],
		Completed: counts[project.StatusCompleted],
		Pending:   counts[project.StatusPending],
		PendingPayments: lo.SumBy(ps, func(p project.Project) float64 {
			return p.Balance()
		}),
	}

	sorted := make([]project.Project, len(ps))
	copy(sorted, ps)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	d.Recent = sorted[:min(5, len(sorted))]

	d.Distribution = lo.Map(project.Statuses, func(s project.Status, _ int) StatusShare {
		count := counts[s]
		percent := 0
		if d.Total > 0 {
			percent = int(math.Round(float64(count) / float64(d.Total) * 100))
		}
		return StatusShare{Status: s, Count: count, Percent: percent}
	})
	return d
}

// Filter selects projects for the list view. Status is either "all" (or
// empty) or an exact status; Search is a case-insensitive substring matched
// against name OR client. The two predicates are independent and ANDed.
type Filter struct {
	Status string
	Search string
}

// Apply returns the subset of the snapshot matching the filter.
func (f Filter) Apply(ps []project.Project) []project.Project {
	needle := strings.ToLower(f.Search)
	return lo.Filter(ps, func(p project.Project, _ int) bool {
		if f.Status != "" && f.Status != "all" && string(p.Status) != f.Status {
			return false
		}
		if needle == "" {
			return true
		}
		return strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Client), needle)
	})
}

// LedgerRow is one payments-ledger line.
type LedgerRow struct {
	ID            string                `json:"id"`
	Name          string                `json:"name"`
	Client        string                `json:"client"`
	Amount        float64               `json:"amount"`
	PaymentStatus project.PaymentStatus `json:"paymentStatus"`
	Balance       float64               `json:"balance"`
}

// Ledger is the payments view: one row per project plus running totals over
// the unfiltered full list.
type Ledger struct {
	Rows         []LedgerRow `json:"rows"`
	TotalEarned  float64     `json:"totalEarned"`
	TotalPending float64     `json:"totalPending"`
}

// BuildLedger computes the payments ledger from a snapshot.
func BuildLedger(ps []project.Project) Ledger {
	return Ledger{
		Rows: lo.Map(ps, func(p project.Project, _ int) LedgerRow {
			return LedgerRow{
				ID:            p.ID,
				Name:          p.Name,
				Client:        p.Client,
				Amount:        p.Amount,
				PaymentStatus: p.PaymentStatus,
				Balance:       p.Balance(),
			}
		}),
		TotalEarned:  lo.SumBy(ps, func(p project.Project) float64 { return p.PaidAmount }),
		TotalPending: lo.SumBy(ps, func(p project.Project) float64 { return p.Balance() }),
	}
}
