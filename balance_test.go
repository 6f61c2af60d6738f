package fiado

import (
	"slices"
	"testing"

	"github.com/shopspring/decimal"
)

func TestBalance(t *testing.T) {
	tests := []struct {
		name string
		txs  []Transaction
		want string
	}{
		{"empty", nil, "0"},
		{"sale", []Transaction{sale("2025-01-01", 150)}, "150"},
		{"inside tolerance", []Transaction{sale("2025-01-01", 100), payment("2025-01-02", 99.95)}, "0"},
		{"outside tolerance", []Transaction{sale("2025-01-01", 100), payment("2025-01-02", 99.80)}, "0.2"},
		{"credit", []Transaction{payment("2025-01-02", 50)}, "-50"},
		{"negative inside tolerance", []Transaction{sale("2025-01-01", 10), payment("2025-01-02", 10.09)}, "0"},
		{"rounded to cents", []Transaction{sale("2025-01-01", 10.005)}, "10.01"},
		{"rounded half away from zero", []Transaction{payment("2025-01-01", 10.005)}, "-10.01"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Balance(tc.txs)
			if want := decimal.RequireFromString(tc.want); !got.Equal(want) {
				t.Errorf("Balance() = %s, want %s", got, want)
			}
		})
	}
}

func TestBalanceMalformed(t *testing.T) {
	txs := []Transaction{
		sale("2025-01-01", 100),
		{ID: "x", Type: Sale, Value: malformed(t, `"abc"`)},
		{ID: "y", Type: Payment, Value: malformed(t, `{"v":1}`)},
	}
	if got := Balance(txs); !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Balance() = %s, want 100", got)
	}
}

func TestBalanceOrderIndependent(t *testing.T) {
	txs := []Transaction{
		sale("2025-01-01", 10.10),
		payment("2025-01-02", 3.33),
		sale("2025-01-03", 0.07),
		payment("2025-01-04", 1.11),
		sale("2025-01-05", 99.99),
	}
	want := Balance(txs)
	for i := range txs {
		rotated := append(slices.Clone(txs[i:]), txs[:i]...)
		if got := Balance(rotated); !got.Equal(want) {
			t.Errorf("rotation %d: Balance() = %s, want %s", i, got, want)
		}
		slices.Reverse(rotated)
		if got := Balance(rotated); !got.Equal(want) {
			t.Errorf("reversed rotation %d: Balance() = %s, want %s", i, got, want)
		}
	}
}

func TestIsSettled(t *testing.T) {
	for v, want := range map[string]bool{"0": true, "0.09": true, "-0.09": true, "0.10": false, "-0.10": false, "5": false} {
		if got := IsSettled(decimal.RequireFromString(v)); got != want {
			t.Errorf("IsSettled(%s) = %v, want %v", v, got, want)
		}
	}
}
