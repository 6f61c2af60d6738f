package renderer

import (
	"github.com/etnz/fiado"
	"github.com/etnz/fiado/date"
	"github.com/shopspring/decimal"
)

// OverdueList is the view of overdue customers.
type OverdueList struct {
	Date  date.Date
	After int // days
	Rows  []OverdueRow
	Total decimal.Decimal
}

// OverdueRow is a single overdue customer.
type OverdueRow struct {
	ID      string
	Name    string
	Phone   string
	Balance decimal.Decimal
	Days    int
}

func overdueRows(overdue []fiado.OverdueCustomer) ([]OverdueRow, decimal.Decimal) {
	var rows []OverdueRow
	total := decimal.Zero
	for _, o := range overdue {
		total = total.Add(o.Customer.Balance)
		rows = append(rows, OverdueRow{
			ID:      o.Customer.ID,
			Name:    o.Customer.Name,
			Phone:   o.Customer.PhonePrimary,
			Balance: o.Customer.Balance,
			Days:    o.Status.Days,
		})
	}
	return rows, total
}

// NewOverdueList builds the view of overdue customers, in the order given.
func NewOverdueList(overdue []fiado.OverdueCustomer, today date.Date) *OverdueList {
	rows, total := overdueRows(overdue)
	return &OverdueList{Date: today, After: fiado.OverdueAfterDays, Rows: rows, Total: total}
}

// Dashboard is the view of the ledger figures.
type Dashboard struct {
	Date            date.Date
	Customers       int
	Receivables     decimal.Decimal
	Sales           decimal.Decimal
	Payments        decimal.Decimal
	Expenses        decimal.Decimal
	PendingExpenses decimal.Decimal
	PaidExpenses    decimal.Decimal
	TopDebtors      []CustomerRow
	Overdue         *OverdueList
}

// NewDashboard builds the view of a summary.
func NewDashboard(s fiado.Summary, today date.Date) *Dashboard {
	d := &Dashboard{
		Date:            today,
		Customers:       s.Customers,
		Receivables:     s.Receivables,
		Sales:           s.Sales,
		Payments:        s.Payments,
		Expenses:        s.Expenses,
		PendingExpenses: s.PendingExpenses,
		PaidExpenses:    s.PaidExpenses,
	}
	for _, c := range s.TopDebtors {
		d.TopDebtors = append(d.TopDebtors, CustomerRow{ID: c.ID, Name: c.Name, Phone: c.PhonePrimary, Balance: c.Balance})
	}
	d.Overdue = NewOverdueList(s.Overdue, today)
	return d
}

// ExpenseList is the view of the business expenses.
type ExpenseList struct {
	Date    date.Date
	Rows    []ExpenseRow
	Total   decimal.Decimal
	Pending decimal.Decimal
}

// ExpenseRow is a single expense.
type ExpenseRow struct {
	ID          string
	DueDate     date.Date
	Category    string
	Description string
	Value       decimal.Decimal
	Status      fiado.ExpenseStatus
	PaidDate    date.Date
}

// NewExpenseList builds the view of expenses, in the order given.
func NewExpenseList(expenses []fiado.Expense, today date.Date) *ExpenseList {
	l := &ExpenseList{Date: today}
	for _, e := range expenses {
		st := e.StatusOn(today)
		l.Total = l.Total.Add(e.Value.Decimal())
		if st != fiado.ExpensePaid {
			l.Pending = l.Pending.Add(e.Value.Decimal())
		}
		l.Rows = append(l.Rows, ExpenseRow{
			ID:          e.ID,
			DueDate:     e.DueDate,
			Category:    e.Category,
			Description: e.Description,
			Value:       e.Value.Decimal(),
			Status:      st,
			PaidDate:    e.PaidDate,
		})
	}
	return l
}

// UserList is the view of registered users.
type UserList struct {
	Rows []fiado.User
}

// NewUserList builds the view of users.
func NewUserList(users []fiado.User) *UserList { return &UserList{Rows: users} }
