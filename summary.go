package fiado

import (
	"slices"

	"github.com/etnz/fiado/date"
	"github.com/shopspring/decimal"
)

// TopDebtorsCount caps Summary.TopDebtors.
const TopDebtorsCount = 5

// Summary holds the figures of the ledger dashboard.
type Summary struct {
	Customers       int               `json:"customers"`
	Receivables     decimal.Decimal   `json:"receivables"` // sum of all balances
	Sales           decimal.Decimal   `json:"sales"`
	Payments        decimal.Decimal   `json:"payments"`
	Expenses        decimal.Decimal   `json:"expenses"`
	PendingExpenses decimal.Decimal   `json:"pendingExpenses"` // expenses not paid yet
	PaidExpenses    decimal.Decimal   `json:"paidExpenses"`    // sum of paid values
	TopDebtors      []Customer        `json:"topDebtors"`      // largest positive balances first
	Overdue         []OverdueCustomer `json:"overdue"`
}

// Summarize computes the dashboard figures.
func Summarize(customers []Customer, expenses []Expense, today date.Date) Summary {
	s := Summary{Customers: len(customers)}

	var debtors []Customer
	for _, c := range customers {
		balance := Balance(c.Transactions)
		s.Receivables = s.Receivables.Add(balance)
		for _, tx := range c.Transactions {
			if tx.Type == Sale {
				s.Sales = s.Sales.Add(tx.Value.Decimal())
			} else {
				s.Payments = s.Payments.Add(tx.Value.Decimal())
			}
		}
		if balance.IsPositive() {
			c.Balance = balance
			debtors = append(debtors, c)
		}
	}
	slices.SortStableFunc(debtors, func(a, b Customer) int { return b.Balance.Cmp(a.Balance) })
	if len(debtors) > TopDebtorsCount {
		debtors = debtors[:TopDebtorsCount]
	}
	s.TopDebtors = debtors

	for _, e := range expenses {
		s.Expenses = s.Expenses.Add(e.Value.Decimal())
		if e.StatusOn(today) != ExpensePaid {
			s.PendingExpenses = s.PendingExpenses.Add(e.Value.Decimal())
		} else if e.PaidValue != nil {
			s.PaidExpenses = s.PaidExpenses.Add(e.PaidValue.Decimal())
		}
	}
	s.Overdue = OverdueCustomers(customers, today)
	return s
}
