package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wordvault/api/internal/cache"
	"github.com/wordvault/api/internal/middleware"
	"github.com/wordvault/api/internal/model"
	"github.com/wordvault/api/internal/store"
	"github.com/wordvault/api/internal/vocab"
)

// snapshotCache is the per-user entry snapshot kept in Redis.
type snapshotCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

type EntryHandler struct {
	store      store.Store
	cache      snapshotCache
	membership *vocab.Membership
}

func NewEntryHandler(s store.Store, redisCache *cache.RedisCache) *EntryHandler {
	h := &EntryHandler{
		store:      s,
		membership: vocab.NewMembership(s),
	}
	// A nil concrete pointer must not become a non-nil interface
	if redisCache != nil {
		h.cache = redisCache
	}
	return h
}

type CreateEntryRequest struct {
	Word               string   `json:"word" binding:"required"`
	PartOfSpeech       string   `json:"partOfSpeech"`
	Definition         string   `json:"definition" binding:"required"`
	ExampleSentence    string   `json:"exampleSentence"`
	ExampleTranslation string   `json:"exampleTranslation"`
	CategoryIDs        []string `json:"categoryIds"`
}

type UpdateEntryRequest struct {
	Word               *string `json:"word"`
	PartOfSpeech       *string `json:"partOfSpeech"`
	Definition         *string `json:"definition"`
	ExampleSentence    *string `json:"exampleSentence"`
	ExampleTranslation *string `json:"exampleTranslation"`
	Favorite           *bool   `json:"favorite"`
}

// List returns the user's entries with the display filter applied. Filter
// state comes from query params: search, pos, scope (all|favorites|category
// id), favoritesOnly.
func (h *EntryHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	entries, err := h.loadEntries(c, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load entries"})
		return
	}

	state := vocab.FilterState{
		SearchText:    c.Query("search"),
		PartOfSpeech:  c.DefaultQuery("pos", vocab.ScopeAll),
		CategoryScope: c.DefaultQuery("scope", vocab.ScopeAll),
		FavoritesOnly: c.Query("favoritesOnly") == "true",
	}

	filtered := vocab.Apply(entries, state)
	c.JSON(http.StatusOK, gin.H{
		"data":  filtered,
		"total": len(entries),
	})
}

func (h *EntryHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "word and definition are required"})
		return
	}

	entry, err := vocab.Normalize(vocab.EntryInput{
		Word:               req.Word,
		PartOfSpeech:       req.PartOfSpeech,
		Definition:         req.Definition,
		ExampleSentence:    req.ExampleSentence,
		ExampleTranslation: req.ExampleTranslation,
		CategoryIDs:        req.CategoryIDs,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.store.CreateEntry(c.Request.Context(), userID, entry)
	middleware.RecordEntryWrite("create", err == nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save entry"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *EntryHandler) Update(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	patch := store.EntryPatch{
		Word:               req.Word,
		PartOfSpeech:       req.PartOfSpeech,
		Definition:         req.Definition,
		ExampleSentence:    req.ExampleSentence,
		ExampleTranslation: req.ExampleTranslation,
		Favorite:           req.Favorite,
	}

	updated, err := h.store.UpdateEntry(c.Request.Context(), userID, c.Param("id"), patch)
	middleware.RecordEntryWrite("update", err == nil)
	if err != nil {
		c.JSON(writeStatus(err), gin.H{"error": "Failed to update entry"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete removes an entry. The UI gates deletion behind a confirmation
// dialog; the confirm flag makes that gate explicit at the API boundary.
func (h *EntryHandler) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if c.Query("confirm") != "true" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deletion requires confirm=true"})
		return
	}

	err := h.store.DeleteEntry(c.Request.Context(), userID, c.Param("id"))
	middleware.RecordEntryWrite("delete", err == nil)
	if err != nil {
		c.JSON(writeStatus(err), gin.H{"error": "Failed to delete entry"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Entry deleted"})
}

func (h *EntryHandler) AddCategory(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	err := h.membership.Add(c.Request.Context(), userID, c.Param("id"), c.Param("categoryId"))
	middleware.RecordEntryWrite("add_category", err == nil)
	if err != nil {
		c.JSON(writeStatus(err), gin.H{"error": "Failed to add entry to category"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Added to category"})
}

func (h *EntryHandler) RemoveCategory(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	err := h.membership.Remove(c.Request.Context(), userID, c.Param("id"), c.Param("categoryId"))
	middleware.RecordEntryWrite("remove_category", err == nil)
	if err != nil {
		c.JSON(writeStatus(err), gin.H{"error": "Failed to remove entry from category"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Removed from category"})
}

// loadEntries serves the full snapshot from the Redis cache when possible,
// falling back to the store. The cache is refreshed by the entry feed
// subscription wired in main.
func (h *EntryHandler) loadEntries(c *gin.Context, userID int64) ([]model.VocabEntry, error) {
	ctx := c.Request.Context()

	if h.cache != nil {
		if data, err := h.cache.Get(ctx, cache.EntrySnapshotKey(userID)); err == nil {
			var entries []model.VocabEntry
			if json.Unmarshal(data, &entries) == nil {
				return entries, nil
			}
		}
	}

	entries, err := h.store.ListEntries(ctx, userID)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if data, err := json.Marshal(entries); err == nil {
			if err := h.cache.Set(ctx, cache.EntrySnapshotKey(userID), data); err != nil {
				log.Printf("Warning: failed to fill entry snapshot for user %d: %v", userID, err)
			}
		}
	}
	return entries, nil
}

func writeStatus(err error) int {
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
