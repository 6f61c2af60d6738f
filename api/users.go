package api

import (
	"net/http"

	"github.com/etnz/fiado"
	"github.com/gin-gonic/gin"
)

// Passwords never leave the API.
func (s *server) listUsers(c *gin.Context) {
	users, err := s.ledger.Users(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	for i := range users {
		users[i].Password = ""
	}
	c.JSON(http.StatusOK, users)
}

func (s *server) registerUser(c *gin.Context) {
	var u fiado.User
	if err := c.ShouldBindJSON(&u); err != nil {
		badRequest(c, err)
		return
	}
	if err := s.ledger.RegisterUser(c.Request.Context(), &u); err != nil {
		fail(c, err)
		return
	}
	u.Password = ""
	c.JSON(http.StatusCreated, u)
}

func (s *server) updateUser(c *gin.Context) {
	var u fiado.User
	if err := c.ShouldBindJSON(&u); err != nil {
		badRequest(c, err)
		return
	}
	u.ID = c.Param("id")
	ok, err := s.ledger.UpdateUser(c.Request.Context(), u)
	if err != nil {
		fail(c, err)
		return
	}
	if !ok {
		notFound(c, "user")
		return
	}
	updated, _, err := s.ledger.User(c.Request.Context(), u.ID)
	if err != nil {
		fail(c, err)
		return
	}
	updated.Password = ""
	c.JSON(http.StatusOK, updated)
}

func (s *server) approveUser(c *gin.Context) {
	ok, err := s.ledger.ApproveUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if !ok {
		notFound(c, "user")
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *server) deleteUser(c *gin.Context) {
	ok, err := s.ledger.DeleteUser(c.Request.Context(), c.Param("id"), c.GetHeader(UserHeader))
	if err != nil {
		fail(c, err)
		return
	}
	if !ok {
		notFound(c, "user")
		return
	}
	c.Status(http.StatusNoContent)
}
