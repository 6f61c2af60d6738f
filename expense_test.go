package fiado

import (
	"errors"
	"testing"

	"github.com/etnz/fiado/date"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

func TestExpenseStatus(t *testing.T) {
	tests := []struct {
		name string
		e    Expense
		want ExpenseStatus
	}{
		{"paid", Expense{DueDate: date.MustParse("2025-06-01"), PaidDate: date.MustParse("2025-06-02")}, ExpensePaid},
		{"past due", Expense{DueDate: date.MustParse("2025-06-29")}, ExpenseOverdue},
		{"due today", Expense{DueDate: testToday}, ExpensePending},
		{"future", Expense{DueDate: date.MustParse("2025-07-10")}, ExpensePending},
		{"paid early", Expense{DueDate: date.MustParse("2025-07-10"), PaidDate: date.MustParse("2025-06-02")}, ExpensePaid},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.e.StatusOn(testToday); got != tc.want {
				t.Errorf("StatusOn() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestExpenses(t *testing.T) {
	ctx := t.Context()
	l := newTestLedger(t, Policy{})

	if err := l.SaveExpense(ctx, &Expense{Category: "rent", Value: A(1)}); !errors.Is(err, ErrInvalid) {
		t.Errorf("expense without due date: got %v, want %v", err, ErrInvalid)
	}

	rent := Expense{Category: "rent", Value: A(1200), DueDate: date.MustParse("2025-07-10")}
	power := Expense{Category: "power", Value: A(300), DueDate: date.MustParse("2025-06-10")}
	for _, e := range []*Expense{&rent, &power} {
		if err := l.SaveExpense(ctx, e); err != nil {
			t.Fatal(err)
		}
	}
	if rent.Status != ExpensePending || power.Status != ExpenseOverdue {
		t.Errorf("statuses after save = %s, %s", rent.Status, power.Status)
	}

	expenses, err := l.Expenses(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, e := range expenses {
		got = append(got, e.Category+" "+string(e.Status))
	}
	if diff := cmp.Diff([]string{"power OVERDUE", "rent PENDING"}, got); diff != "" {
		t.Errorf("Expenses() mismatch (-want +got):\n%s", diff)
	}

	if ok, err := l.PayExpense(ctx, power.ID, testToday, nil); !ok || err != nil {
		t.Fatalf("PayExpense() = %v, %v", ok, err)
	}
	partial := A(1000)
	if ok, err := l.PayExpense(ctx, rent.ID, testToday, &partial); !ok || err != nil {
		t.Fatalf("PayExpense(partial) = %v, %v", ok, err)
	}
	if ok, err := l.PayExpense(ctx, "missing", testToday, nil); ok || err != nil {
		t.Errorf("PayExpense(missing) = %v, %v, want false, nil", ok, err)
	}

	paid, _, _ := l.Expense(ctx, power.ID)
	if paid.Status != ExpensePaid || !paid.PaidValue.Decimal().Equal(decimal.NewFromInt(300)) || !paid.PaidDate.Equal(testToday) {
		t.Errorf("paid expense = %+v", paid)
	}

	expenses, _ = l.Expenses(ctx)
	s := Summarize(nil, expenses, testToday)
	if !s.Expenses.Equal(decimal.NewFromInt(1500)) || !s.PaidExpenses.Equal(decimal.NewFromInt(1300)) || !s.PendingExpenses.IsZero() {
		t.Errorf("summary = %+v", s)
	}

	if ok, err := l.DeleteExpense(ctx, rent.ID); !ok || err != nil {
		t.Errorf("DeleteExpense() = %v, %v", ok, err)
	}
	if ok, err := l.DeleteExpense(ctx, rent.ID); ok || err != nil {
		t.Errorf("DeleteExpense(deleted) = %v, %v, want false, nil", ok, err)
	}
}

func TestSummarize(t *testing.T) {
	customers := []Customer{
		{Name: "Ana", Transactions: []Transaction{sale("2025-01-01", 150), payment("2025-02-01", 50)}},
		{Name: "Bia", Transactions: []Transaction{sale("2025-06-01", 300)}},
		{Name: "Caio", Transactions: []Transaction{payment("2025-06-01", 20)}},
		{Name: "Dani", Transactions: []Transaction{sale("2025-06-01", 10), payment("2025-06-02", 9.95)}},
	}
	expenses := []Expense{{Value: A(100), DueDate: date.MustParse("2025-07-01")}}
	s := Summarize(customers, expenses, testToday)

	figures := map[string]decimal.Decimal{
		"receivables": s.Receivables, "sales": s.Sales, "payments": s.Payments,
		"expenses": s.Expenses, "pending": s.PendingExpenses, "paid": s.PaidExpenses,
	}
	want := map[string]string{
		"receivables": "380", "sales": "460", "payments": "79.95",
		"expenses": "100", "pending": "100", "paid": "0",
	}
	for k, v := range want {
		if !figures[k].Equal(decimal.RequireFromString(v)) {
			t.Errorf("%s = %s, want %s", k, figures[k], v)
		}
	}
	var debtors []string
	for _, c := range s.TopDebtors {
		debtors = append(debtors, c.Name)
	}
	if diff := cmp.Diff([]string{"Bia", "Ana"}, debtors); diff != "" {
		t.Errorf("TopDebtors mismatch (-want +got):\n%s", diff)
	}
	if s.Customers != 4 || len(s.Overdue) != 1 || s.Overdue[0].Customer.Name != "Ana" {
		t.Errorf("summary = %+v", s)
	}
}
