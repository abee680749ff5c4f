package project

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_PaidAmountDerivation(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want float64
	}{
		{"paid forces full amount", Input{Amount: 1000, PaymentStatus: PaymentPaid, PaidAmount: 42}, 1000},
		{"paid ignores client paid amount", Input{Amount: 0, PaymentStatus: PaymentPaid, PaidAmount: 999}, 0},
		{"unpaid forces zero", Input{Amount: 1000, PaymentStatus: PaymentUnpaid, PaidAmount: 500}, 0},
		{"partial keeps supplied value", Input{Amount: 1000, PaymentStatus: PaymentPartial, PaidAmount: 400}, 400},
		{"partial is not clamped", Input{Amount: 1000, PaymentStatus: PaymentPartial, PaidAmount: 1500}, 1500},
		{"empty payment status defaults to unpaid", Input{Amount: 1000, PaidAmount: 300}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize().PaidAmount)
		})
	}
}

func TestNormalize_Defaults(t *testing.T) {
	got := Input{Name: "Site", Client: "Acme"}.Normalize()
	assert.Equal(t, StatusPending, got.Status)
	assert.Equal(t, PaymentUnpaid, got.PaymentStatus)
}

func TestMaterialize(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	in := Input{Name: "Site", Client: "Acme", Amount: 1000, PaymentStatus: PaymentPartial, PaidAmount: 400}.Normalize()
	p := in.Materialize("abc123", now)
	assert.Equal(t, "abc123", p.ID)
	assert.Equal(t, now, p.CreatedAt)
	assert.Equal(t, 600.0, p.Balance())
}
