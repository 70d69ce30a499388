package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wordvault/api/internal/middleware"
	"github.com/wordvault/api/internal/model"
	"github.com/wordvault/api/internal/store"
	"github.com/wordvault/api/internal/vocab"
)

type CategoryHandler struct {
	store      store.Store
	membership *vocab.Membership
}

func NewCategoryHandler(s store.Store) *CategoryHandler {
	return &CategoryHandler{
		store:      s,
		membership: vocab.NewMembership(s),
	}
}

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

type categoryWithCount struct {
	model.Category
	MemberCount int `json:"memberCount"`
}

// List returns the user's categories with live member counts, recomputed on
// every request.
func (h *CategoryHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	categories, err := h.store.ListCategories(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load categories"})
		return
	}

	entries, err := h.store.ListEntries(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load entries"})
		return
	}

	out := make([]categoryWithCount, len(categories))
	for i, category := range categories {
		out[i] = categoryWithCount{
			Category:    category,
			MemberCount: vocab.CountMembers(category.ID, entries),
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": out})
}

func (h *CategoryHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	category, err := h.store.CreateCategory(c.Request.Context(), userID, strings.TrimSpace(req.Name))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	c.JSON(http.StatusCreated, category)
}

// Delete removes the category record only. Member entries keep their
// reference; cmd/audit reports dangling ids.
func (h *CategoryHandler) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	err := h.membership.DeleteCategory(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		c.JSON(writeStatus(err), gin.H{"error": "Failed to delete category"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}
