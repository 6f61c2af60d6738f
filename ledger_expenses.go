package fiado

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/etnz/fiado/date"
)

func decodeExpense(d Document, today date.Date) (Expense, error) {
	var e Expense
	if err := json.Unmarshal(d.Data, &e); err != nil {
		return Expense{}, fmt.Errorf("expense %q is corrupted: %w", d.ID, err)
	}
	e.ID, e.version = d.ID, d.Version
	e.Status = e.StatusOn(today)
	return e, nil
}

// Expenses lists the expenses by due date, with their status as of today.
func (l *Ledger) Expenses(ctx context.Context) ([]Expense, error) {
	docs, err := l.docs.List(ctx, Expenses)
	if err != nil {
		return nil, fmt.Errorf("could not list expenses: %w", err)
	}
	today := l.Today()
	expenses := make([]Expense, 0, len(docs))
	for _, d := range docs {
		e, err := decodeExpense(d, today)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	slices.SortStableFunc(expenses, func(a, b Expense) int { return a.DueDate.Compare(b.DueDate) })
	return expenses, nil
}

// Expense returns a single expense. It returns false if it does not exist.
func (l *Ledger) Expense(ctx context.Context, id string) (Expense, bool, error) {
	d, err := l.docs.Get(ctx, Expenses, id)
	if errors.Is(err, ErrNotFound) {
		return Expense{}, false, nil
	}
	if err != nil {
		return Expense{}, false, fmt.Errorf("could not load expense %q: %w", id, err)
	}
	e, err := decodeExpense(d, l.Today())
	return e, err == nil, err
}

// SaveExpense validates and writes the whole expense. An expense without id
// is created and receives its id and creation time.
func (l *Ledger) SaveExpense(ctx context.Context, e *Expense) error {
	return l.saveExpense(ctx, e, l.policy)
}

func (l *Ledger) saveExpense(ctx context.Context, e *Expense, p Policy) error {
	if err := e.Validate(p); err != nil {
		return err
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = InstantOf(l.now())
	}
	stored := *e
	stored.Status = "" // derived, never stored
	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("could not encode expense %q: %w", e.Description, err)
	}
	var d Document
	if e.ID == "" {
		d, err = l.docs.Create(ctx, Expenses, data)
	} else {
		d, err = l.docs.Put(ctx, Expenses, e.ID, data, AnyVersion)
	}
	if err != nil {
		return fmt.Errorf("could not save expense %q: %w", e.Description, err)
	}
	e.ID, e.version = d.ID, d.Version
	e.Status = e.StatusOn(l.Today())
	return nil
}

// PayExpense records the payment of an expense. A nil value pays the full
// amount. It returns false if the expense does not exist.
func (l *Ledger) PayExpense(ctx context.Context, id string, on date.Date, value *Amount) (bool, error) {
	e, ok, err := l.Expense(ctx, id)
	if err != nil || !ok {
		return false, err
	}
	if value == nil {
		v := e.Value
		value = &v
	}
	e.PaidDate, e.PaidValue = on, value
	if err := e.Validate(l.policy); err != nil {
		return true, err
	}
	e.Status = ""
	data, err := json.Marshal(e)
	if err != nil {
		return true, fmt.Errorf("could not encode expense %q: %w", e.Description, err)
	}
	if _, err := l.docs.Put(ctx, Expenses, id, data, e.version); err != nil {
		return true, fmt.Errorf("could not pay expense %q: %w", id, err)
	}
	return true, nil
}

// DeleteExpense removes an expense. It returns false if it does not exist.
func (l *Ledger) DeleteExpense(ctx context.Context, id string) (bool, error) {
	err := l.docs.Delete(ctx, Expenses, id, AnyVersion)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("could not delete expense %q: %w", id, err)
	}
	return true, nil
}
