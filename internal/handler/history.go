package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wordvault/api/internal/history"
	"github.com/wordvault/api/internal/middleware"
	"github.com/wordvault/api/internal/model"
	"gorm.io/gorm"
)

type HistoryHandler struct {
	db      *gorm.DB
	flusher *history.Flusher
}

func NewHistoryHandler(db *gorm.DB, flusher *history.Flusher) *HistoryHandler {
	return &HistoryHandler{db: db, flusher: flusher}
}

type HistoryResponse struct {
	Data       []model.DrillHistoryDaily `json:"data"`
	Page       int                       `json:"page"`
	Limit      int                       `json:"limit"`
	TotalCount int64                     `json:"totalCount"`
	TotalPages int                       `json:"totalPages"`
}

// List returns daily drill history for the authenticated user, newest date
// first. Pending Redis buffers are flushed first so today's activity shows
// up without waiting for the scheduler.
func (h *HistoryHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if h.flusher != nil {
		if err := h.flusher.FlushUser(c.Request.Context(), userID); err != nil {
			// Stale history is still history; keep serving.
			c.Header("X-History-Flush", "failed")
		}
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "30"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 30
	}

	var totalCount int64
	if err := h.db.Model(&model.DrillHistoryDaily{}).Where("user_id = ?", userID).Count(&totalCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count history"})
		return
	}

	var days []model.DrillHistoryDaily
	if err := h.db.Where("user_id = ?", userID).
		Order("date DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&days).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}

	totalPages := int((totalCount + int64(limit) - 1) / int64(limit))
	c.JSON(http.StatusOK, HistoryResponse{
		Data:       days,
		Page:       page,
		Limit:      limit,
		TotalCount: totalCount,
		TotalPages: totalPages,
	})
}
