// Package renderer formats ledger reports as markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/fiado"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.md
var embedded embed.FS

var templates, _ = fs.Sub(embedded, "templates")

// funcs are available to every template.
var funcs = template.FuncMap{
	"cell":  cell,
	"money": money,
}

// cell escapes a value for a markdown table cell.
func cell(s string) string {
	s = strings.NewReplacer("|", `\|`, "\r", "", "\n", " ").Replace(s)
	return strings.TrimSpace(s)
}

// money formats a value in fiado.DefaultCurrency.
func money(v decimal.Decimal) string { return fiado.FormatMoney(v, fiado.DefaultCurrency) }

// RenderCustomers renders the list of customers with their balance.
func RenderCustomers(l *CustomerList) string {
	return renderTemplate("customers", "customers.md", nil, l)
}

// RenderStatement renders a customer's details and transaction history.
func RenderStatement(s *Statement) string {
	partials := map[string]string{
		"transactions_table": "transactions_table.md",
	}
	return renderTemplate("statement", "statement.md", partials, s)
}

// RenderOverdue renders the list of overdue customers.
func RenderOverdue(o *OverdueList) string {
	partials := map[string]string{
		"overdue_table": "overdue_table.md",
	}
	return renderTemplate("overdue", "overdue.md", partials, o)
}

// RenderDashboard renders the ledger figures.
func RenderDashboard(d *Dashboard) string {
	partials := map[string]string{
		"overdue_table": "overdue_table.md",
	}
	return renderTemplate("dashboard", "dashboard.md", partials, d)
}

// RenderExpenses renders the business expenses.
func RenderExpenses(e *ExpenseList) string {
	return renderTemplate("expenses", "expenses.md", nil, e)
}

// RenderUsers renders the registered users.
func RenderUsers(u *UserList) string {
	return renderTemplate("users", "users.md", nil, u)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
