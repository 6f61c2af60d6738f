// Package api serves the ledger as a JSON HTTP API.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/etnz/fiado"
	"github.com/etnz/fiado/scan"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// UserHeader carries the id of the user acting on the API.
const UserHeader = "X-Fiado-User"

// IdempotencyHeader carries the token of a transaction batch.
const IdempotencyHeader = "Idempotency-Key"

type server struct {
	ledger  *fiado.Ledger
	scanner scan.Scanner // nil disables /api/scan
}

// New returns the API routes over a ledger. scanner may be nil.
func New(ledger *fiado.Ledger, scanner scan.Scanner) *gin.Engine {
	r := gin.New()
	r.Use(logger(), recovery())
	s := &server{ledger: ledger, scanner: scanner}

	api := r.Group("/api")
	api.GET("/customers", s.listCustomers)
	api.POST("/customers", s.createCustomer)
	api.GET("/customers/:id", s.getCustomer)
	api.PUT("/customers/:id", s.putCustomer)
	api.DELETE("/customers/:id", s.deleteCustomer)
	api.GET("/customers/:id/overdue", s.customerOverdue)

	api.POST("/customers/:id/transactions", s.addTransaction)
	api.POST("/customers/:id/transactions/batch", s.ingestTransactions)
	api.PUT("/customers/:id/transactions/:tx", s.editTransaction)
	api.DELETE("/customers/:id/transactions/:tx", s.deleteTransaction)

	api.GET("/overdue", s.overdue)
	api.GET("/dashboard", s.dashboard)
	api.POST("/scan", s.scan)

	api.GET("/backup", s.exportBackup)
	api.GET("/backup/xlsx", s.exportSheet)
	api.POST("/backup", s.importBackup)

	api.GET("/expenses", s.listExpenses)
	api.POST("/expenses", s.createExpense)
	api.GET("/expenses/:id", s.getExpense)
	api.PUT("/expenses/:id", s.putExpense)
	api.POST("/expenses/:id/pay", s.payExpense)
	api.DELETE("/expenses/:id", s.deleteExpense)

	api.GET("/users", s.listUsers)
	api.POST("/users", s.registerUser)
	api.PUT("/users/:id", s.updateUser)
	api.POST("/users/:id/approve", s.approveUser)
	api.DELETE("/users/:id", s.deleteUser)
	return r
}

// apiError is the body of every 4xx and 5xx response.
type apiError struct {
	Detail string `json:"detail"`
}

// statusOf maps an error to its HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, fiado.ErrInvalid), errors.Is(err, fiado.ErrMalformedAmount), errors.Is(err, fiado.ErrNegativeAmount):
		return http.StatusBadRequest
	case errors.Is(err, fiado.ErrOutstandingBalance), errors.Is(err, fiado.ErrConflict), errors.Is(err, fiado.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, fiado.ErrSelfDelete):
		return http.StatusForbidden
	case errors.Is(err, scan.ErrMissingKey):
		return http.StatusServiceUnavailable
	case errors.Is(err, scan.ErrInvalidKey), errors.Is(err, scan.ErrScanFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// detailOf returns the message sent to the client. Store failures are logged
// and reported without details.
func detailOf(c *gin.Context, status int, err error) string {
	if status != http.StatusInternalServerError {
		return err.Error()
	}
	log.Error().Err(err).Str("method", c.Request.Method).Str("path", c.FullPath()).Msg("request failed")
	return "internal error"
}

// fail writes the response matching err.
func fail(c *gin.Context, err error) {
	status := statusOf(err)
	c.AbortWithStatusJSON(status, apiError{Detail: detailOf(c, status, err)})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, apiError{Detail: err.Error()})
}

func notFound(c *gin.Context, what string) {
	c.AbortWithStatusJSON(http.StatusNotFound, apiError{Detail: what + " not found"})
}

// logger logs each request with method, path, status and latency.
func logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// recovery turns panics into 500 responses.
func recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, apiError{Detail: "internal error"})
			}
		}()
		c.Next()
	}
}
