package api

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/etnz/fiado"
	"github.com/etnz/fiado/sheet"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// decodeImage accepts a data URL as is, the scanner reads it, or raw base64.
func decodeImage(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		return []byte(s), nil
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("image is neither a data URL nor base64: %w", err)
	}
	return b, nil
}

func (s *server) exportBackup(c *gin.Context) {
	b, err := s.ledger.Export(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"fiado_backup_%s.json\"", s.ledger.Today()))
	c.Header("Content-Type", "application/json; charset=utf-8")
	c.Status(http.StatusOK)
	if err := fiado.EncodeBackup(c.Writer, b); err != nil {
		c.Error(err)
	}
}

func (s *server) exportSheet(c *gin.Context) {
	b, err := s.ledger.Export(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"fiado_%s.xlsx\"", s.ledger.Today()))
	c.Status(http.StatusOK)
	if err := sheet.Write(c.Writer, b, s.ledger.Today()); err != nil {
		c.Error(err)
	}
}

// importResponse tells what an import committed, even when it stopped early.
type importResponse struct {
	Report fiado.ImportReport `json:"report"`
	Detail string             `json:"detail,omitempty"`
}

// importBackup merges a backup document. ?deduplicate=true merges into
// matching customers instead of inserting them again.
func (s *server) importBackup(c *gin.Context) {
	dedup, _ := strconv.ParseBool(c.DefaultQuery("deduplicate", "false"))
	b, err := fiado.DecodeBackup(c.Request.Body)
	if err != nil {
		badRequest(c, err)
		return
	}
	report, err := s.ledger.Import(c.Request.Context(), b, fiado.ImportOptions{Deduplicate: dedup})
	if err != nil {
		status := statusOf(err)
		c.AbortWithStatusJSON(status, importResponse{Report: report, Detail: detailOf(c, status, err)})
		return
	}
	c.JSON(http.StatusOK, importResponse{Report: report})
}
