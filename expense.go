package fiado

import (
	"errors"
	"fmt"

	"github.com/etnz/fiado/date"
)

// ExpenseStatus is derived from the payment and due dates, it is never stored.
type ExpenseStatus string

const (
	ExpensePending ExpenseStatus = "PENDING"
	ExpensePaid    ExpenseStatus = "PAID"
	ExpenseOverdue ExpenseStatus = "OVERDUE"
)

// Expense is a bill of the business itself.
type Expense struct {
	ID          string        `json:"id,omitempty"`
	Category    string        `json:"category" validate:"required"`
	Description string        `json:"description"`
	Value       Amount        `json:"value"`
	DueDate     date.Date     `json:"dueDate"`
	PaidDate    date.Date     `json:"paidDate"`
	PaidValue   *Amount       `json:"paidValue"`
	Status      ExpenseStatus `json:"status,omitempty"` // filled on read
	CreatedAt   Instant       `json:"createdAt"`

	version int64
}

// StatusOn derives the expense status for a given day.
func (e Expense) StatusOn(today date.Date) ExpenseStatus {
	switch {
	case !e.PaidDate.IsZero():
		return ExpensePaid
	case !e.DueDate.IsZero() && e.DueDate.Before(today):
		return ExpenseOverdue
	default:
		return ExpensePending
	}
}

// Validate checks the expense before it is written.
func (e Expense) Validate(p Policy) error {
	var errs error
	if err := validate.Struct(e); err != nil {
		errs = errors.Join(errs, fmt.Errorf("%w: %w", ErrInvalid, err))
	}
	if e.DueDate.IsZero() && !p.lenient {
		errs = errors.Join(errs, fmt.Errorf("%w: due date is missing", ErrInvalid))
	}
	for _, v := range []*Amount{&e.Value, e.PaidValue} {
		switch {
		case v == nil, p.lenient:
		case v.IsMalformed():
			errs = errors.Join(errs, fmt.Errorf("%w: %s", ErrMalformedAmount, v.raw))
		case p.RejectNegative && v.IsNegative():
			errs = errors.Join(errs, fmt.Errorf("%w: %s", ErrNegativeAmount, v.Decimal()))
		}
	}
	if errs != nil {
		return fmt.Errorf("invalid expense %q: %w", e.Description, errs)
	}
	return nil
}
