// Package export serializes the project list to CSV.
package export

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"

	"freelanceflow/internal/project"
)

// ErrNoProjects is returned when there is nothing to export. Callers surface
// it as a notice instead of producing an empty file.
var ErrNoProjects = errors.New("no projects to export")

// Header is the fixed 8-column CSV header.
var Header = []string{
	"Project Name", "Client", "Start Date", "End Date",
	"Amount (₹)", "Status", "Payment Status", "Paid Amount (₹)",
}

// Filename is the suggested download name.
const Filename = "freelance_projects.csv"

// WriteCSV writes the full unfiltered project list as RFC-4180 CSV. Fields
// containing the delimiter or quotes are quoted with internal quotes doubled.
func WriteCSV(w io.Writer, ps []project.Project) error {
	if len(ps) == 0 {
		return ErrNoProjects
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, p := range ps {
		row := []string{
			p.Name,
			p.Client,
			p.StartDate,
			p.EndDate,
			formatAmount(p.Amount),
			string(p.Status),
			string(p.PaymentStatus),
			formatAmount(p.PaidAmount),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// formatAmount renders amounts the way the wire does: no trailing zeros, no
// exponent for typical invoice magnitudes.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
