package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wordvault/api/internal/middleware"
	"github.com/wordvault/api/internal/model"
	"github.com/wordvault/api/internal/store"
	"github.com/wordvault/api/internal/vocab"
)

type ExportHandler struct {
	store store.Store
}

func NewExportHandler(s store.Store) *ExportHandler {
	return &ExportHandler{store: s}
}

// Export downloads the user's entries for offline study. The scope query
// param accepts the same values as the quiz scope: all, favorites, or a
// category id.
func (h *ExportHandler) Export(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	format := c.DefaultQuery("format", "json")
	scope := c.DefaultQuery("scope", vocab.ScopeAll)

	entries, err := h.store.ListEntries(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load entries"})
		return
	}

	selected := vocab.Apply(vocab.ApplyScope(entries, scope), vocab.FilterState{})

	switch format {
	case "json":
		h.exportJSON(c, selected)
	case "csv":
		h.exportCSV(c, selected)
	case "md", "markdown":
		h.exportMarkdown(c, selected)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid format. Use json, csv, or md"})
	}
}

func (h *ExportHandler) exportJSON(c *gin.Context, entries []model.VocabEntry) {
	c.Header("Content-Disposition", "attachment; filename=vocabulary.json")
	c.JSON(http.StatusOK, entries)
}

func (h *ExportHandler) exportCSV(c *gin.Context, entries []model.VocabEntry) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	writer.Write([]string{"Word", "Part of Speech", "Definition", "Example", "Example Translation", "Favorite"})

	for _, e := range entries {
		favorite := ""
		if e.Favorite {
			favorite = "yes"
		}
		writer.Write([]string{
			e.Word,
			e.PartOfSpeech,
			e.Definition,
			e.ExampleSentence,
			e.ExampleTranslation,
			favorite,
		})
	}

	writer.Flush()

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=vocabulary.csv")
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

func (h *ExportHandler) exportMarkdown(c *gin.Context, entries []model.VocabEntry) {
	var buf bytes.Buffer

	buf.WriteString("# Vocabulary\n\n")
	buf.WriteString(fmt.Sprintf("**Exported:** %s\n\n", time.Now().Format("2006-01-02 15:04:05")))

	for i, e := range entries {
		buf.WriteString(fmt.Sprintf("### %d. %s *(%s)*\n\n", i+1, e.Word, e.PartOfSpeech))
		buf.WriteString(fmt.Sprintf("**Definition:** %s\n\n", e.Definition))

		if e.ExampleSentence != "" {
			buf.WriteString(fmt.Sprintf("**Example:** %s\n\n", e.ExampleSentence))
			if e.ExampleTranslation != "" {
				buf.WriteString(fmt.Sprintf("> %s\n\n", e.ExampleTranslation))
			}
		}

		buf.WriteString("---\n\n")
	}

	c.Header("Content-Type", "text/markdown")
	c.Header("Content-Disposition", "attachment; filename=vocabulary.md")
	c.Data(http.StatusOK, "text/markdown", buf.Bytes())
}
