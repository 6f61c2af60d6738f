package fiado

import "github.com/shopspring/decimal"

// ZeroTolerance is the magnitude under which a balance counts as settled.
//
// It is ten cents, not one: balances that small are shown as zero and a
// customer within the band can be deleted.
var ZeroTolerance = decimal.RequireFromString("0.10")

// Balance computes the amount owed from a list of transactions.
//
// Sales add, payments subtract, malformed values count as zero. The total is
// rounded to cents and clamped to zero when inside ZeroTolerance. The result
// does not depend on the order of the transactions.
func Balance(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		v := tx.Value.Decimal()
		if tx.Type == Sale {
			total = total.Add(v)
		} else {
			total = total.Sub(v)
		}
	}
	total = total.Round(2)
	if total.Abs().LessThan(ZeroTolerance) {
		return decimal.Zero
	}
	return total
}

// IsSettled reports whether a balance is inside the zero tolerance band.
func IsSettled(balance decimal.Decimal) bool {
	return balance.Abs().LessThan(ZeroTolerance)
}
