// Package invoice renders the fixed-layout, single-page PDF invoice for a
// paid project.
package invoice

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"freelanceflow/internal/logx"
	"freelanceflow/internal/project"
	"freelanceflow/pkg"
)

var invLogger = logx.GetScope("invoice")

// ErrNotPaid is returned when an invoice is requested for a project whose
// payment status is not Paid.
var ErrNotPaid = errors.New("invoice requires a paid project")

var spaces = regexp.MustCompile(`\s+`)

// Number derives the invoice number from the project id: "#" plus the first
// six characters, uppercased. An empty id falls back to "#000001".
func Number(id string) string {
	if id == "" {
		return "#000001"
	}
	n := min(6, len(id))
	return "#" + strings.ToUpper(id[:n])
}

// Filename is the suggested name for the generated document.
func Filename(p project.Project) string {
	return "Invoice_" + spaces.ReplaceAllString(p.Name, "_") + ".pdf"
}

// Render writes the invoice PDF for a paid project to w. The layout is
// fixed: branding header, billed-to block with a placeholder address, the
// invoice number and issue date, a one-line item table, a total line, and
// the static contact footer.
func Render(w io.Writer, p project.Project, issued time.Time) error {
	if p.PaymentStatus != project.PaymentPaid {
		return ErrNotPaid
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Header branding
	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetTextColor(128, 0, 128)
	pdf.Text(40, 30, "FreeLanceFlow")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(40, 40, 40)
	pdf.Text(40, 35, "Project Management")

	pdf.SetFont("Helvetica", "", 16)
	pdf.Text(160, 60, "INVOICE")

	const startY = 80.0

	// Billed to
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Text(20, startY, "Billed to")
	pdf.SetFont("Helvetica", "", 10)
	client := p.Client
	if client == "" {
		client = "Client Name"
	}
	pdf.Text(20, startY+7, client)
	pdf.Text(20, startY+12, "123 Client Address")
	pdf.Text(20, startY+17, "City, State, Zip")

	// Invoice number and issue date
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Text(140, startY, "Invoice number")
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(140, startY+7, Number(p.ID))
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Text(140, startY+17, "Date of issue")
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(140, startY+24, issued.Format("Jan 2, 06"))

	// Item table: a single line item for the project itself.
	tableTop := startY + 40
	amount := "Rs. " + pkg.FormatINR(p.Amount)

	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(20, tableTop, 190, tableTop)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Text(25, tableTop+8, "Description")
	pdf.Text(100, tableTop+8, "Price")
	pdf.Text(160, tableTop+8, "Amount")
	pdf.Line(20, tableTop+12, 190, tableTop+12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(25, tableTop+22, p.Name)
	pdf.Text(100, tableTop+22, amount)
	pdf.Text(160, tableTop+22, amount)
	pdf.Line(20, tableTop+35, 190, tableTop+35)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.Text(130, tableTop+45, "Total :")
	pdf.Text(160, tableTop+45, amount)

	// Static footer
	_, pageH := pdf.GetPageSize()
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(100, 100, 100)

	pdf.Text(20, pageH-30, "Come and join us 2900")
	pdf.Text(20, pageH-26, "Park Ave. Sacramento,")
	pdf.Text(20, pageH-22, "CA 95817")

	pdf.SetDrawColor(255, 69, 0)
	pdf.Line(75, pageH-30, 80, pageH-20)

	pdf.Text(85, pageH-28, "For more info please")
	pdf.Text(85, pageH-24, "call 916-494-3347")

	pdf.Line(135, pageH-30, 140, pageH-20)

	pdf.Text(145, pageH-28, "itsoftware.com")
	pdf.Text(145, pageH-24, "info@itsoftware.com")

	return pdf.Output(w)
}

// Generator writes invoice files into OutDir. Now is injectable for tests.
type Generator struct {
	OutDir string
	Now    func() time.Time
}

// Generate renders the invoice for p into OutDir and returns the file path.
func (g *Generator) Generate(p project.Project) (string, error) {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	if err := os.MkdirAll(g.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("invoice dir: %w", err)
	}

	path := filepath.Join(g.OutDir, Filename(p))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("invoice file: %w", err)
	}
	defer f.Close()

	if err := Render(f, p, now()); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	invLogger.Sugar().Infow("invoice generated", "id", p.ID, "path", path)
	return path, nil
}
