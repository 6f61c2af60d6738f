package renderer

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/etnz/fiado"
	"github.com/etnz/fiado/date"
	"github.com/shopspring/decimal"
)

// CustomerList is the view of all customers at a given day.
type CustomerList struct {
	Date  date.Date
	Rows  []CustomerRow
	Total decimal.Decimal // sum of balances
}

// CustomerRow is a single customer of a CustomerList.
type CustomerRow struct {
	ID      string
	Name    string
	Phone   string
	Balance decimal.Decimal
	Status  string
}

// status describes the account state in a few words.
func status(c fiado.Customer, today date.Date) string {
	o := fiado.Overdue(c, today)
	switch {
	case o.IsOverdue:
		return fmt.Sprintf("overdue, %d days", o.Days)
	case c.Balance.IsZero():
		return "settled"
	case c.Balance.IsNegative():
		return "in credit"
	default:
		return "open"
	}
}

// NewCustomerList builds the view of customers, in the order given.
func NewCustomerList(customers []fiado.Customer, today date.Date) *CustomerList {
	l := &CustomerList{Date: today}
	for _, c := range customers {
		l.Total = l.Total.Add(c.Balance)
		l.Rows = append(l.Rows, CustomerRow{
			ID:      c.ID,
			Name:    c.Name,
			Phone:   c.PhonePrimary,
			Balance: c.Balance,
			Status:  status(c, today),
		})
	}
	return l
}

// Statement is the detailed view of a single customer.
type Statement struct {
	Date           date.Date
	ID             string
	Name           string
	CPF            string
	PhonePrimary   string
	PhoneSecondary string
	Address        string
	Notes          string
	Balance        decimal.Decimal
	Status         string
	Sales          decimal.Decimal
	Payments       decimal.Decimal
	Transactions   []TransactionRow // most recent first
}

// TransactionRow is a single line of a Statement.
type TransactionRow struct {
	ID          string
	Date        date.Date
	Description string
	Type        fiado.TransactionType
	Value       string
	Malformed   bool
}

// NewStatement builds the view of a customer.
func NewStatement(c fiado.Customer, today date.Date) *Statement {
	s := &Statement{
		Date:           today,
		ID:             c.ID,
		Name:           c.Name,
		CPF:            c.CPF,
		PhonePrimary:   c.PhonePrimary,
		PhoneSecondary: c.PhoneSecondary,
		Address:        c.Address,
		Notes:          c.Notes,
		Balance:        c.Balance,
		Status:         status(c, today),
	}
	txs := slices.Clone(c.Transactions)
	slices.SortStableFunc(txs, func(a, b fiado.Transaction) int {
		return cmp.Or(b.Date.Compare(a.Date), cmp.Compare(b.CreatedAt, a.CreatedAt))
	})
	for _, tx := range txs {
		if tx.Type == fiado.Sale {
			s.Sales = s.Sales.Add(tx.Value.Decimal())
		} else {
			s.Payments = s.Payments.Add(tx.Value.Decimal())
		}
		value := tx.Value.String()
		if tx.Value.IsMalformed() {
			value = "invalid"
		}
		s.Transactions = append(s.Transactions, TransactionRow{
			ID:          tx.ID,
			Date:        tx.Date,
			Description: tx.Description,
			Type:        tx.Type,
			Value:       value,
			Malformed:   tx.Value.IsMalformed(),
		})
	}
	return s
}

// Within keeps only the transactions dated in r. Balance and totals still
// cover the whole history.
func (s *Statement) Within(r date.Range) *Statement {
	s.Transactions = slices.DeleteFunc(s.Transactions, func(row TransactionRow) bool { return !r.Contains(row.Date) })
	return s
}
