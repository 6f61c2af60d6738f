package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/etnz/fiado"
	"github.com/etnz/fiado/date"
	"github.com/etnz/fiado/scan"
	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
)

func init() { gin.SetMode(gin.TestMode) }

// fakeScanner always reads the same entries.
type fakeScanner struct {
	entries []fiado.Entry
	err     error
}

func (f fakeScanner) Scan(ctx context.Context, image []byte, mimeType string) ([]fiado.Entry, error) {
	return f.entries, f.err
}

type client struct {
	t       *testing.T
	handler http.Handler
}

func newClient(t *testing.T, scanner scan.Scanner) *client {
	t.Helper()
	return &client{t: t, handler: New(fiado.NewLedger(fiado.NewMemoryStore(), fiado.Policy{}), scanner)}
}

// do sends a request and decodes the response body in out, unless out is nil.
func (c *client) do(method, path string, body any, out any, headers ...string) int {
	c.t.Helper()
	var r *bytes.Reader
	switch b := body.(type) {
	case nil:
		r = bytes.NewReader(nil)
	case string:
		r = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			c.t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	if out != nil && w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			c.t.Fatalf("%s %s: cannot decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w.Code
}

func (c *client) createCustomer(name string) fiado.Customer {
	c.t.Helper()
	var got fiado.Customer
	if code := c.do("POST", "/api/customers", map[string]any{"name": name, "phonePrimary": "1199"}, &got); code != http.StatusCreated {
		c.t.Fatalf("POST /api/customers = %d, want 201", code)
	}
	return got
}

func TestCustomerLifecycle(t *testing.T) {
	c := newClient(t, nil)
	ana := c.createCustomer("Ana")
	if ana.ID == "" {
		t.Fatal("created customer has no id")
	}

	var sale fiado.Transaction
	code := c.do("POST", "/api/customers/"+ana.ID+"/transactions", map[string]any{"description": "Anel", "value": "150.00", "type": "sale"}, &sale)
	if code != http.StatusCreated {
		t.Fatalf("add sale = %d, want 201", code)
	}
	if sale.Date != date.Today() {
		t.Errorf("sale date = %s, want today", sale.Date)
	}

	var got fiado.Customer
	if code := c.do("GET", "/api/customers/"+ana.ID, nil, &got); code != http.StatusOK {
		t.Fatalf("GET customer = %d, want 200", code)
	}
	if got.Balance.String() != "150" {
		t.Errorf("balance = %s, want 150", got.Balance)
	}

	if code := c.do("DELETE", "/api/customers/"+ana.ID, nil, nil); code != http.StatusConflict {
		t.Errorf("delete indebted customer = %d, want 409", code)
	}

	code = c.do("POST", "/api/customers/"+ana.ID+"/transactions", map[string]any{"value": 149.95, "type": "PAYMENT"}, nil)
	if code != http.StatusCreated {
		t.Fatalf("add payment = %d, want 201", code)
	}
	if code := c.do("DELETE", "/api/customers/"+ana.ID, nil, nil); code != http.StatusNoContent {
		t.Errorf("delete settled customer = %d, want 204", code)
	}
	if code := c.do("GET", "/api/customers/"+ana.ID, nil, nil); code != http.StatusNotFound {
		t.Errorf("GET deleted customer = %d, want 404", code)
	}
}

func TestValidationErrors(t *testing.T) {
	c := newClient(t, nil)
	ana := c.createCustomer("Ana")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"missing name", "POST", "/api/customers", map[string]any{"phonePrimary": "1"}, http.StatusBadRequest},
		{"not json", "POST", "/api/customers", "{", http.StatusBadRequest},
		{"unknown type", "POST", "/api/customers/" + ana.ID + "/transactions", map[string]any{"value": 1, "type": "gift"}, http.StatusBadRequest},
		{"malformed value", "POST", "/api/customers/" + ana.ID + "/transactions", map[string]any{"value": "abc", "type": "SALE"}, http.StatusBadRequest},
		{"unknown customer", "POST", "/api/customers/nobody/transactions", map[string]any{"value": 1, "type": "SALE"}, http.StatusNotFound},
		{"unknown transaction", "PUT", "/api/customers/" + ana.ID + "/transactions/nope", map[string]any{"date": "2024-01-01", "value": 1, "type": "SALE"}, http.StatusNotFound},
		{"batch without token", "POST", "/api/customers/" + ana.ID + "/transactions/batch", map[string]any{"entries": []any{}}, http.StatusBadRequest},
		{"scan disabled", "POST", "/api/scan", map[string]any{"image": "aGk="}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e apiError
			if got := c.do(tt.method, tt.path, tt.body, &e); got != tt.want {
				t.Errorf("%s %s = %d (%s), want %d", tt.method, tt.path, got, e.Detail, tt.want)
			}
			if e.Detail == "" {
				t.Error("error response has no detail")
			}
		})
	}
}

func TestScanAndIngest(t *testing.T) {
	entries := []fiado.Entry{
		{Date: date.New(2024, 3, 5), Description: "Anel", Value: fiado.A(150), Type: fiado.Sale},
		{Date: date.New(2024, 3, 6), Description: "Pix", Value: fiado.A(50), Type: fiado.Payment},
	}
	c := newClient(t, fakeScanner{entries: entries})
	ana := c.createCustomer("Ana")

	var scanned []fiado.Entry
	if code := c.do("POST", "/api/scan", map[string]any{"image": "data:image/png;base64,aGk="}, &scanned); code != http.StatusOK {
		t.Fatalf("scan = %d, want 200", code)
	}
	if diff := cmp.Diff(entries, scanned); diff != "" {
		t.Errorf("scan mismatch (-want +got):\n%s", diff)
	}

	path := "/api/customers/" + ana.ID + "/transactions/batch"
	for i, wantAdded := range []int{2, 0} {
		var report fiado.IngestReport
		if code := c.do("POST", path, map[string]any{"entries": scanned}, &report, IdempotencyHeader, "page-1"); code != http.StatusOK {
			t.Fatalf("attempt %d: ingest = %d, want 200", i, code)
		}
		if len(report.Added) != wantAdded {
			t.Errorf("attempt %d: added %d, want %d", i, len(report.Added), wantAdded)
		}
	}
	var got fiado.Customer
	c.do("GET", "/api/customers/"+ana.ID, nil, &got)
	if len(got.Transactions) != 2 || got.Balance.String() != "100" {
		t.Errorf("after retries: %d transactions, balance %s, want 2 and 100", len(got.Transactions), got.Balance)
	}
}

func TestScanErrors(t *testing.T) {
	c := newClient(t, fakeScanner{err: scan.ErrInvalidKey})
	if code := c.do("POST", "/api/scan", map[string]any{"image": "aGk="}, nil); code != http.StatusBadGateway {
		t.Errorf("scan with an invalid key = %d, want 502", code)
	}
	if code := c.do("POST", "/api/scan", map[string]any{"image": "not base64!"}, nil); code != http.StatusBadRequest {
		t.Errorf("scan with a broken image = %d, want 400", code)
	}
}

func TestBackupRoundTrip(t *testing.T) {
	c := newClient(t, nil)
	ana := c.createCustomer("Ana")
	c.do("POST", "/api/customers/"+ana.ID+"/transactions", map[string]any{"value": 10, "type": "SALE"}, nil)

	req := httptest.NewRequest("GET", "/api/backup", nil)
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET backup = %d, want 200", w.Code)
	}
	backup := w.Body.String()

	other := newClient(t, nil)
	var resp importResponse
	if code := other.do("POST", "/api/backup", backup, &resp); code != http.StatusOK {
		t.Fatalf("POST backup = %d (%s), want 200", code, resp.Detail)
	}
	if resp.Report.Customers != 1 {
		t.Errorf("imported %d customers, want 1", resp.Report.Customers)
	}
	var customers []fiado.Customer
	other.do("GET", "/api/customers", nil, &customers)
	if len(customers) != 1 || customers[0].ID != ana.ID || customers[0].Balance.String() != "10" {
		t.Errorf("imported customers = %+v, want Ana with balance 10", customers)
	}

	xlsx := httptest.NewRecorder()
	c.handler.ServeHTTP(xlsx, httptest.NewRequest("GET", "/api/backup/xlsx", nil))
	if xlsx.Code != http.StatusOK || xlsx.Header().Get("Content-Type") != xlsxContentType || xlsx.Body.Len() == 0 {
		t.Errorf("GET backup/xlsx = %d %q, %d bytes", xlsx.Code, xlsx.Header().Get("Content-Type"), xlsx.Body.Len())
	}
}

func TestExpenses(t *testing.T) {
	c := newClient(t, nil)
	var e fiado.Expense
	code := c.do("POST", "/api/expenses", map[string]any{"category": "rent", "value": 500, "dueDate": date.Today().Add(10).String()}, &e)
	if code != http.StatusCreated {
		t.Fatalf("create expense = %d, want 201", code)
	}
	if e.Status != fiado.ExpensePending {
		t.Errorf("status = %s, want PENDING", e.Status)
	}
	var paid fiado.Expense
	if code := c.do("POST", "/api/expenses/"+e.ID+"/pay", nil, &paid); code != http.StatusOK {
		t.Fatalf("pay expense = %d, want 200", code)
	}
	if paid.Status != fiado.ExpensePaid || paid.PaidValue == nil || paid.PaidValue.Decimal().String() != "500" {
		t.Errorf("paid expense = %+v, want PAID with the full value", paid)
	}
	if code := c.do("DELETE", "/api/expenses/"+e.ID, nil, nil); code != http.StatusNoContent {
		t.Errorf("delete expense = %d, want 204", code)
	}
	if code := c.do("POST", "/api/expenses/"+e.ID+"/pay", nil, nil); code != http.StatusNotFound {
		t.Errorf("pay deleted expense = %d, want 404", code)
	}
}

func TestUsers(t *testing.T) {
	c := newClient(t, nil)
	var u fiado.User
	if code := c.do("POST", "/api/users", map[string]any{"name": "Bia", "username": "bia", "password": "secret", "role": "admin"}, &u); code != http.StatusCreated {
		t.Fatalf("register = %d, want 201", code)
	}
	if u.Role != fiado.RoleUser || u.Approved || u.Password != "" {
		t.Errorf("registered user = %+v, want an unapproved user without password", u)
	}
	if code := c.do("POST", "/api/users", map[string]any{"name": "Bia 2", "username": "bia"}, nil); code != http.StatusConflict {
		t.Errorf("register a taken username = %d, want 409", code)
	}
	if code := c.do("POST", "/api/users/"+u.ID+"/approve", nil, nil); code != http.StatusNoContent {
		t.Errorf("approve = %d, want 204", code)
	}
	var users []fiado.User
	c.do("GET", "/api/users", nil, &users)
	if len(users) != 1 || !users[0].Approved || users[0].Password != "" {
		t.Errorf("users = %+v, want bia approved without password", users)
	}
	var updated fiado.User
	if code := c.do("PUT", "/api/users/"+u.ID, map[string]any{"name": "Bia Souza", "username": "other", "email": "bia@example.com", "role": "admin"}, &updated); code != http.StatusOK {
		t.Fatalf("update = %d, want 200", code)
	}
	if updated.Name != "Bia Souza" || updated.Username != "bia" || updated.Role != fiado.RoleUser || !updated.Approved {
		t.Errorf("updated user = %+v, want a new name only", updated)
	}
	if code := c.do("PUT", "/api/users/missing", map[string]any{"name": "X", "username": "x"}, nil); code != http.StatusNotFound {
		t.Errorf("update a missing user = %d, want 404", code)
	}
	if code := c.do("DELETE", "/api/users/"+u.ID, nil, nil, UserHeader, u.ID); code != http.StatusForbidden {
		t.Errorf("self delete = %d, want 403", code)
	}
	if code := c.do("DELETE", "/api/users/"+u.ID, nil, nil, UserHeader, "admin"); code != http.StatusNoContent {
		t.Errorf("delete = %d, want 204", code)
	}
}
