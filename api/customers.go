package api

import (
	"net/http"

	"github.com/etnz/fiado"
	"github.com/etnz/fiado/date"
	"github.com/gin-gonic/gin"
)

func (s *server) listCustomers(c *gin.Context) {
	customers, err := s.ledger.Customers(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

func (s *server) getCustomer(c *gin.Context) {
	customer, ok, err := s.ledger.Customer(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if !ok {
		notFound(c, "customer")
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (s *server) createCustomer(c *gin.Context) {
	var customer fiado.Customer
	if err := c.ShouldBindJSON(&customer); err != nil {
		badRequest(c, err)
		return
	}
	customer.ID = ""
	if err := s.ledger.SaveCustomer(c.Request.Context(), &customer); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// putCustomer replaces the whole customer record, transactions included.
func (s *server) putCustomer(c *gin.Context) {
	var customer fiado.Customer
	if err := c.ShouldBindJSON(&customer); err != nil {
		badRequest(c, err)
		return
	}
	customer.ID = c.Param("id")
	if err := s.ledger.SaveCustomer(c.Request.Context(), &customer); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (s *server) deleteCustomer(c *gin.Context) {
	ok, err := s.ledger.DeleteCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if !ok {
		notFound(c, "customer")
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *server) customerOverdue(c *gin.Context) {
	customer, ok, err := s.ledger.Customer(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if !ok {
		notFound(c, "customer")
		return
	}
	c.JSON(http.StatusOK, fiado.Overdue(customer, s.ledger.Today()))
}

// transactionRequest is the body of a new transaction. A missing date means today.
type transactionRequest struct {
	Date        date.Date    `json:"date"`
	Description string       `json:"description"`
	Value       fiado.Amount `json:"value"`
	Type        string       `json:"type" binding:"required"`
}

func (s *server) addTransaction(c *gin.Context) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	typ, err := fiado.ParseTransactionType(req.Type)
	if err != nil {
		badRequest(c, err)
		return
	}
	if req.Date.IsZero() {
		req.Date = s.ledger.Today()
	}
	tx, ok, err := s.ledger.AddTransaction(c.Request.Context(), c.Param("id"), req.Description, req.Value, typ, req.Date)
	if err != nil {
		fail(c, err)
		return
	}
	if !ok {
		notFound(c, "customer")
		return
	}
	c.JSON(http.StatusCreated, tx)
}

// batchRequest is the body of a batch of scanned entries.
type batchRequest struct {
	Token   string        `json:"token"`
	Entries []fiado.Entry `json:"entries" binding:"required"`
}

func (s *server) ingestTransactions(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if key := c.GetHeader(IdempotencyHeader); key != "" {
		req.Token = key
	}
	if req.Token == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, apiError{Detail: "a batch token is required, in the body or the " + IdempotencyHeader + " header"})
		return
	}
	report, ok, err := s.ledger.IngestTransactions(c.Request.Context(), c.Param("id"), req.Entries, req.Token)
	if err != nil {
		fail(c, err)
		return
	}
	if !ok {
		notFound(c, "customer")
		return
	}
	if report.Added == nil {
		report.Added = []fiado.Transaction{}
	}
	c.JSON(http.StatusOK, report)
}

func (s *server) editTransaction(c *gin.Context) {
	var tx fiado.Transaction
	if err := c.ShouldBindJSON(&tx); err != nil {
		badRequest(c, err)
		return
	}
	tx.ID = c.Param("tx")
	ok, err := s.ledger.EditTransaction(c.Request.Context(), c.Param("id"), tx)
	if err != nil {
		fail(c, err)
		return
	}
	if !ok {
		notFound(c, "transaction")
		return
	}
	c.JSON(http.StatusOK, tx)
}

func (s *server) deleteTransaction(c *gin.Context) {
	ok, err := s.ledger.DeleteTransaction(c.Request.Context(), c.Param("id"), c.Param("tx"))
	if err != nil {
		fail(c, err)
		return
	}
	if !ok {
		notFound(c, "customer")
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *server) overdue(c *gin.Context) {
	customers, err := s.ledger.Customers(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	overdue := fiado.OverdueCustomers(customers, s.ledger.Today())
	if overdue == nil {
		overdue = []fiado.OverdueCustomer{}
	}
	c.JSON(http.StatusOK, overdue)
}

func (s *server) dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	customers, err := s.ledger.Customers(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	expenses, err := s.ledger.Expenses(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, fiado.Summarize(customers, expenses, s.ledger.Today()))
}

// scanRequest holds a photo, raw base64 or as a data URL.
type scanRequest struct {
	Image    string `json:"image" binding:"required"`
	MIMEType string `json:"mimeType"`
}

func (s *server) scan(c *gin.Context) {
	if s.scanner == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, apiError{Detail: "scanning is not configured"})
		return
	}
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	image, err := decodeImage(req.Image)
	if err != nil {
		badRequest(c, err)
		return
	}
	entries, err := s.scanner.Scan(c.Request.Context(), image, req.MIMEType)
	if err != nil {
		fail(c, err)
		return
	}
	if entries == nil {
		entries = []fiado.Entry{}
	}
	c.JSON(http.StatusOK, entries)
}
