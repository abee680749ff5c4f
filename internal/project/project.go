// Package project defines the core business record and its write-time rules.
package project

import (
	"strings"
	"time"
)

// Status is the delivery state of a project.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// PaymentStatus is the billing state of a project.
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "Unpaid"
	PaymentPartial PaymentStatus = "Partial"
	PaymentPaid    PaymentStatus = "Paid"
)

// Statuses lists the delivery states in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// Project is a single client engagement. Dates are ISO-8601 date strings and
// may be empty; endDate is not validated against startDate.
type Project struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Client        string        `json:"client"`
	StartDate     string        `json:"startDate"`
	EndDate       string        `json:"endDate"`
	Amount        float64       `json:"amount"`
	Status        Status        `json:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	PaidAmount    float64       `json:"paidAmount"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// Balance is the outstanding amount. Not clamped: an overpaid project
// contributes a negative balance.
func (p Project) Balance() float64 {
	return p.Amount - p.PaidAmount
}

// Input is the client-supplied payload for create and update. ID and
// CreatedAt are never taken from the client.
type Input struct {
	Name          string        `json:"name"`
	Client        string        `json:"client"`
	StartDate     string        `json:"startDate"`
	EndDate       string        `json:"endDate"`
	Amount        float64       `json:"amount"`
	Status        Status        `json:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	PaidAmount    float64       `json:"paidAmount"`
}

// Normalize applies the write-time rules: empty enums default to Pending /
// Unpaid, and paidAmount is derived from paymentStatus. Paid forces
// paidAmount to the full amount, Unpaid forces zero, Partial keeps the
// supplied value as-is.
func (in Input) Normalize() Input {
	out := in
	if strings.TrimSpace(string(out.Status)) == "" {
		out.Status = StatusPending
	}
	if strings.TrimSpace(string(out.PaymentStatus)) == "" {
		out.PaymentStatus = PaymentUnpaid
	}
	switch out.PaymentStatus {
	case PaymentPaid:
		out.PaidAmount = out.Amount
	case PaymentPartial:
		// user-entered value, unclamped
	default:
		out.PaidAmount = 0
	}
	return out
}

// Materialize builds a Project from a normalized input with the given
// identity and creation time.
func (in Input) Materialize(id string, createdAt time.Time) Project {
	return Project{
		ID:            id,
		Name:          in.Name,
		Client:        in.Client,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		Amount:        in.Amount,
		Status:        in.Status,
		PaymentStatus: in.PaymentStatus,
		PaidAmount:    in.PaidAmount,
		CreatedAt:     createdAt,
	}
}
