// Package fiado keeps the credit accounts ("fiado") of a small shop's customers.
//
// Every customer accumulates sales, that increase what they owe, and payments,
// that decrease it. The package provides:
//   - Balance Computation: a pure, order independent sum of a customer's
//     transactions, rounded to cents, with a zero tolerance band
//     (ZeroTolerance) under which an account counts as settled.
//   - Overdue Detection: a coarse signal raised when the last relevant activity
//     of an unsettled account is older than OverdueAfterDays.
//   - Ledger: read and write access to customers, users and expenses stored
//     in a DocumentStore, with business rules enforced on every write
//     (validation, settled-to-delete, optimistic versioning).
//   - Backup: export of the whole ledger into a portable JSON document, and
//     import of such documents back into a ledger.
//
// Balances are projections: they are recomputed from the transaction history
// on every read and every write, the stored value is never trusted.
package fiado
