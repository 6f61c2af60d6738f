package api

import (
	"net/http"

	"github.com/etnz/fiado"
	"github.com/etnz/fiado/date"
	"github.com/gin-gonic/gin"
)

func (s *server) listExpenses(c *gin.Context) {
	expenses, err := s.ledger.Expenses(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, expenses)
}

func (s *server) getExpense(c *gin.Context) {
	e, ok, err := s.ledger.Expense(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if !ok {
		notFound(c, "expense")
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *server) saveExpense(c *gin.Context, id string, status int) {
	var e fiado.Expense
	if err := c.ShouldBindJSON(&e); err != nil {
		badRequest(c, err)
		return
	}
	e.ID = id
	if err := s.ledger.SaveExpense(c.Request.Context(), &e); err != nil {
		fail(c, err)
		return
	}
	e.Status = e.StatusOn(s.ledger.Today())
	c.JSON(status, e)
}

func (s *server) createExpense(c *gin.Context) { s.saveExpense(c, "", http.StatusCreated) }
func (s *server) putExpense(c *gin.Context)    { s.saveExpense(c, c.Param("id"), http.StatusOK) }

// payRequest pays an expense. A missing date means today, a missing value
// the full expense value.
type payRequest struct {
	Date  date.Date     `json:"date"`
	Value *fiado.Amount `json:"value"`
}

func (s *server) payExpense(c *gin.Context) {
	var req payRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	if req.Date.IsZero() {
		req.Date = s.ledger.Today()
	}
	ok, err := s.ledger.PayExpense(c.Request.Context(), c.Param("id"), req.Date, req.Value)
	if err != nil {
		fail(c, err)
		return
	}
	if !ok {
		notFound(c, "expense")
		return
	}
	s.getExpense(c)
}

func (s *server) deleteExpense(c *gin.Context) {
	ok, err := s.ledger.DeleteExpense(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if !ok {
		notFound(c, "expense")
		return
	}
	c.Status(http.StatusNoContent)
}
