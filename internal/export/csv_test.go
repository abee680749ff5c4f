package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freelanceflow/internal/project"
)

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, nil)
	assert.ErrorIs(t, err, ErrNoProjects)
	assert.Zero(t, buf.Len(), "empty list must not produce a file")
}

func TestWriteCSV_Header(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []project.Project{{Name: "Site", Client: "Acme"}}))
	first := strings.SplitN(buf.String(), "\n", 2)[0]
	assert.Equal(t, "Project Name,Client,Start Date,End Date,Amount (₹),Status,Payment Status,Paid Amount (₹)", strings.TrimRight(first, "\r"))
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	ps := []project.Project{
		{Name: `Site "v2", relaunch`, Client: "Acme, Inc.", StartDate: "2025-01-01", EndDate: "2025-02-01",
			Amount: 1000.5, Status: project.StatusCompleted, PaymentStatus: project.PaymentPartial, PaidAmount: 400},
		{Name: "Logo", Client: "Beta", Amount: 500, Status: project.StatusPending, PaymentStatus: project.PaymentUnpaid},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, ps))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3) // header + 2 rows

	for i, p := range ps {
		row := records[i+1]
		assert.Equal(t, p.Name, row[0])
		assert.Equal(t, p.Client, row[1])
		assert.Equal(t, formatAmount(p.Amount), row[4])
		assert.Equal(t, string(p.Status), row[5])
		assert.Equal(t, string(p.PaymentStatus), row[6])
		assert.Equal(t, formatAmount(p.PaidAmount), row[7])
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1000", formatAmount(1000))
	assert.Equal(t, "1000.5", formatAmount(1000.5))
	assert.Equal(t, "0", formatAmount(0))
}
