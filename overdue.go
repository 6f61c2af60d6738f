package fiado

import (
	"cmp"
	"slices"

	"github.com/etnz/fiado/date"
)

// OverdueAfterDays is the age, in days, past which an unsettled account is overdue.
const OverdueAfterDays = 60

// OverdueStatus is the delinquency signal of a customer.
type OverdueStatus struct {
	IsOverdue bool `json:"isOverdue"`
	Days      int  `json:"days"` // days since the last relevant activity
}

// Overdue computes whether the customer's debt aged past OverdueAfterDays.
//
// The reference date is the most recent sale, or the most recent payment
// made after it. Settled customers and customers without history are never
// overdue.
func Overdue(c Customer, today date.Date) OverdueStatus {
	if len(c.Transactions) == 0 || Balance(c.Transactions).LessThanOrEqual(ZeroTolerance) {
		return OverdueStatus{}
	}

	sorted := slices.Clone(c.Transactions)
	// Most recent first, same day transactions keep their relative order.
	slices.SortStableFunc(sorted, func(a, b Transaction) int { return b.Date.Compare(a.Date) })

	i := slices.IndexFunc(sorted, func(tx Transaction) bool { return tx.Type == Sale })
	if i < 0 {
		return OverdueStatus{}
	}
	reference := sorted[i].Date
	// sorted[:i] only holds payments dated on or after the sale.
	for _, tx := range sorted[:i] {
		if tx.Type == Payment && tx.Date.After(reference) {
			reference = tx.Date
			break
		}
	}

	days := today.Sub(reference)
	if days < 0 {
		days = -days
	}
	return OverdueStatus{IsOverdue: days > OverdueAfterDays, Days: days}
}

// OverdueCustomer pairs a customer with its overdue status.
type OverdueCustomer struct {
	Customer Customer      `json:"customer"`
	Status   OverdueStatus `json:"status"`
}

// OverdueCustomers returns the overdue customers, oldest debt first.
func OverdueCustomers(customers []Customer, today date.Date) []OverdueCustomer {
	var out []OverdueCustomer
	for _, c := range customers {
		if s := Overdue(c, today); s.IsOverdue {
			out = append(out, OverdueCustomer{Customer: c, Status: s})
		}
	}
	slices.SortStableFunc(out, func(a, b OverdueCustomer) int {
		return cmp.Compare(b.Status.Days, a.Status.Days)
	})
	return out
}
