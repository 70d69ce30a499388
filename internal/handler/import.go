package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wordvault/api/internal/middleware"
	"github.com/wordvault/api/internal/vocab"
)

type ImportHandler struct {
	importer *vocab.Importer
}

func NewImportHandler(importer *vocab.Importer) *ImportHandler {
	return &ImportHandler{importer: importer}
}

type ImportRequest struct {
	Text string `json:"text" binding:"required"`
}

// Import runs a bulk import and reports counts. Partial success is normal:
// the report says how many lines made it, the caller shows it to the user.
func (h *ImportHandler) Import(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	report, err := h.importer.Run(c.Request.Context(), userID, req.Text)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run import"})
		return
	}

	middleware.RecordImport(report.Imported, report.Skipped, report.Failed)
	c.JSON(http.StatusOK, report)
}
