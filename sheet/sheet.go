// Package sheet exports a ledger as an xlsx workbook.
package sheet

import (
	"fmt"
	"io"

	"github.com/etnz/fiado"
	"github.com/etnz/fiado/date"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the workbook.
const (
	CustomersSheet    = "Customers"
	TransactionsSheet = "Transactions"
	ExpensesSheet     = "Expenses"
)

var (
	customerHeaders    = []any{"ID", "Name", "CPF", "Phone", "Other phone", "Address", "Notes", "Balance", "Overdue days"}
	transactionHeaders = []any{"Customer ID", "Customer", "Date", "Description", "Type", "Value", "ID"}
	expenseHeaders     = []any{"ID", "Due", "Category", "Description", "Value", "Status", "Paid on", "Paid value"}
)

// writeRows writes the header then the rows, starting at A1.
func writeRows(f *excelize.File, sheet string, headers []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	last, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", last, 16)
}

// day returns an empty cell for a zero date.
func day(d date.Date) any {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

// Write exports customers, their transactions and expenses to w.
// Overdue days and expense statuses are computed at today.
func Write(w io.Writer, b *fiado.Backup, today date.Date) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", CustomersSheet); err != nil {
		return fmt.Errorf("could not create workbook: %w", err)
	}
	for _, name := range []string{TransactionsSheet, ExpensesSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("could not create sheet %q: %w", name, err)
		}
	}

	var customers, transactions, expenses [][]any
	for _, c := range b.Customers {
		overdue := ""
		if o := fiado.Overdue(c, today); o.IsOverdue {
			overdue = fmt.Sprint(o.Days)
		}
		customers = append(customers, []any{
			c.ID, c.Name, c.CPF, c.PhonePrimary, c.PhoneSecondary, c.Address, c.Notes,
			c.Balance.InexactFloat64(), overdue,
		})
		for _, tx := range c.Transactions {
			transactions = append(transactions, []any{
				c.ID, c.Name, day(tx.Date), tx.Description, string(tx.Type), tx.Value.Decimal().InexactFloat64(), tx.ID,
			})
		}
	}
	for _, e := range b.Expenses {
		var paid any = ""
		if e.PaidValue != nil {
			paid = e.PaidValue.Decimal().InexactFloat64()
		}
		expenses = append(expenses, []any{
			e.ID, day(e.DueDate), e.Category, e.Description, e.Value.Decimal().InexactFloat64(),
			string(e.StatusOn(today)), day(e.PaidDate), paid,
		})
	}

	for _, s := range []struct {
		name    string
		headers []any
		rows    [][]any
	}{
		{CustomersSheet, customerHeaders, customers},
		{TransactionsSheet, transactionHeaders, transactions},
		{ExpensesSheet, expenseHeaders, expenses},
	} {
		if err := writeRows(f, s.name, s.headers, s.rows); err != nil {
			return fmt.Errorf("could not write sheet %q: %w", s.name, err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("could not write workbook: %w", err)
	}
	return nil
}
