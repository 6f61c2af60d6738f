package fiado

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestOverdue(t *testing.T) {
	tests := []struct {
		name string
		txs  []Transaction
		want OverdueStatus
	}{
		{"no history", nil, OverdueStatus{}},
		{"settled", []Transaction{sale("2025-01-01", 100), payment("2025-01-02", 99.95)}, OverdueStatus{}},
		{"in credit", []Transaction{payment("2025-01-01", 50)}, OverdueStatus{}},
		{"old sale", []Transaction{sale("2025-01-01", 150)}, OverdueStatus{IsOverdue: true, Days: 180}},
		{"recent sale", []Transaction{sale("2025-05-15", 150)}, OverdueStatus{Days: 46}},
		{"exactly the limit", []Transaction{sale("2025-05-01", 150)}, OverdueStatus{Days: 60}},
		{"one day past the limit", []Transaction{sale("2025-04-30", 150)}, OverdueStatus{IsOverdue: true, Days: 61}},
		{"recent payment after the sale", []Transaction{sale("2025-01-01", 150), payment("2025-06-01", 50)}, OverdueStatus{Days: 29}},
		{"payment before the sale", []Transaction{payment("2024-12-01", 10), sale("2025-01-01", 150)}, OverdueStatus{IsOverdue: true, Days: 180}},
		{"balance at the tolerance", []Transaction{sale("2025-01-01", 100.10), payment("2025-01-01", 100)}, OverdueStatus{}},
		{"balance above the tolerance", []Transaction{sale("2025-01-01", 100.11), payment("2025-01-01", 100)}, OverdueStatus{IsOverdue: true, Days: 180}},
		{"payment on the sale day", []Transaction{sale("2025-01-01", 150), payment("2025-01-01", 50)}, OverdueStatus{IsOverdue: true, Days: 180}},
		{"payment listed first on the sale day", []Transaction{payment("2025-01-01", 50), sale("2025-01-01", 150)}, OverdueStatus{IsOverdue: true, Days: 180}},
		{"latest sale counts", []Transaction{sale("2025-05-15", 20), sale("2025-01-01", 150)}, OverdueStatus{Days: 46}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Overdue(Customer{Name: "Ana", Transactions: tc.txs}, testToday)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Overdue() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOverdueCustomers(t *testing.T) {
	customers := []Customer{
		{Name: "Ana", Transactions: []Transaction{sale("2025-03-01", 10)}},
		{Name: "Bia", Transactions: []Transaction{sale("2025-06-01", 10)}},
		{Name: "Caio", Transactions: []Transaction{sale("2024-12-01", 10)}},
	}
	var got []string
	for _, o := range OverdueCustomers(customers, testToday) {
		got = append(got, o.Customer.Name)
	}
	if diff := cmp.Diff([]string{"Caio", "Ana"}, got); diff != "" {
		t.Errorf("OverdueCustomers() mismatch (-want +got):\n%s", diff)
	}
}
