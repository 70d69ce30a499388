package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wordvault/api/internal/cache"
	"github.com/wordvault/api/internal/middleware"
	"github.com/wordvault/api/internal/model"
	"github.com/wordvault/api/internal/quiz"
	"github.com/wordvault/api/internal/store"
	"github.com/wordvault/api/internal/vocab"
	"gorm.io/gorm"
)

type QuizHandler struct {
	manager *quiz.Manager
	store   store.Store
	db      *gorm.DB
	cache   *cache.RedisCache
	delay   time.Duration
}

func NewQuizHandler(manager *quiz.Manager, s store.Store, db *gorm.DB, redisCache *cache.RedisCache, delay time.Duration) *QuizHandler {
	if delay <= 0 {
		delay = quiz.DefaultAdvanceDelay
	}
	return &QuizHandler{
		manager: manager,
		store:   s,
		db:      db,
		cache:   redisCache,
		delay:   delay,
	}
}

type StartQuizRequest struct {
	RangeScope    string      `json:"rangeScope"`
	Mode          string      `json:"mode" binding:"required"`
	QuestionLimit interface{} `json:"questionLimit"`
}

type AnswerRequest struct {
	OptionID string `json:"optionId" binding:"required"`
}

type QuizFavoriteRequest struct {
	EntryID  string `json:"entryId" binding:"required"`
	Favorite bool   `json:"favorite"`
}

// Start builds the candidate pool from the requested scope and opens a new
// session. A too-small pool keeps the client on its configuration screen.
func (h *QuizHandler) Start(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req StartQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode is required"})
		return
	}

	mode := quiz.Mode(req.Mode)
	if mode != quiz.ModeChoice && mode != quiz.ModeCard {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be choice or card"})
		return
	}

	scope := req.RangeScope
	if scope == "" {
		scope = vocab.ScopeAll
	}

	entries, err := h.store.ListEntries(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load entries"})
		return
	}
	pool := vocab.ApplyScope(entries, scope)

	session, err := h.manager.Start(userID, pool, mode, scope, parseLimit(req.QuestionLimit))
	if err != nil {
		var poolErr *quiz.InsufficientPoolError
		if errors.As(err, &poolErr) {
			c.JSON(http.StatusConflict, gin.H{
				"error":    poolErr.Error(),
				"code":     "INSUFFICIENT_POOL",
				"required": poolErr.Required,
				"got":      poolErr.Got,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start quiz"})
		return
	}

	middleware.RecordQuizStart(string(mode))
	h.renderCurrent(c, session, http.StatusCreated)
}

// Current returns the question at the cursor.
func (h *QuizHandler) Current(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	h.renderCurrent(c, session, http.StatusOK)
}

// Answer records a choice-mode selection. The session advances by itself
// after the feedback delay; repeated selections for the same question are
// ignored.
func (h *QuizHandler) Answer(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "optionId is required"})
		return
	}

	correct, err := h.manager.Answer(userID, c.Param("id"), req.OptionID)
	switch {
	case err == nil:
	case errors.Is(err, quiz.ErrAlreadyAnswered):
		c.JSON(http.StatusOK, gin.H{"ignored": true})
		return
	case errors.Is(err, quiz.ErrNoSession):
		c.JSON(http.StatusNotFound, gin.H{"error": "Quiz session not found"})
		return
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"correct":     correct,
		"advanceInMs": h.delay.Milliseconds(),
	})
}

// Next moves a card-mode session forward; past the last card the session
// finishes.
func (h *QuizHandler) Next(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	state, err := session.Next()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if state == quiz.StateResult {
		c.JSON(http.StatusOK, gin.H{"state": state})
		return
	}
	h.renderCurrent(c, session, http.StatusOK)
}

// Prev moves a card-mode session back one card.
func (h *QuizHandler) Prev(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	if err := session.Prev(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.renderCurrent(c, session, http.StatusOK)
}

// Favorite toggles the favorite flag of an entry mid-session. The store
// write happens immediately; the in-session copy is patched so the card
// reflects it without a reload.
func (h *QuizHandler) Favorite(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	session, err := h.manager.Get(userID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Quiz session not found"})
		return
	}

	var req QuizFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entryId is required"})
		return
	}

	_, err = h.store.UpdateEntry(c.Request.Context(), userID, req.EntryID, store.EntryPatch{Favorite: &req.Favorite})
	middleware.RecordEntryWrite("favorite", err == nil)
	if err != nil {
		c.JSON(writeStatus(err), gin.H{"error": "Failed to update favorite"})
		return
	}

	session.SetFavorite(req.EntryID, req.Favorite)
	c.JSON(http.StatusOK, gin.H{"entryId": req.EntryID, "favorite": req.Favorite})
}

// Result reports the finished session. The first successful call persists
// the outcome and buffers the drilled words for the daily history.
func (h *QuizHandler) Result(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	session, err := h.manager.Get(userID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Quiz session not found"})
		return
	}

	report, err := session.Report()
	if errors.Is(err, quiz.ErrNotFinished) {
		c.JSON(http.StatusConflict, gin.H{"error": "Quiz still in progress"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build result"})
		return
	}

	if session.MarkRecorded() {
		h.recordCompletion(c, userID, session, report)
	}

	c.JSON(http.StatusOK, report)
}

// Restart discards the session; the client returns to its configuration
// screen. A pending auto-advance is canceled with it.
func (h *QuizHandler) Restart(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if _, err := h.manager.Get(userID, c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Quiz session not found"})
		return
	}

	h.manager.Remove(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"state": "config"})
}

// Results lists the user's recent persisted quiz outcomes.
func (h *QuizHandler) Results(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}

	var results []model.QuizResult
	if err := h.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load quiz results"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": results})
}

func (h *QuizHandler) recordCompletion(c *gin.Context, userID int64, session *quiz.Session, report quiz.Report) {
	if report.Mode == quiz.ModeChoice {
		middleware.RecordQuizScore(report.Percent)
	}

	reviewJSON, _ := json.Marshal(report.Review)
	result := model.QuizResult{
		UserID:  userID,
		Mode:    string(report.Mode),
		Scope:   session.Scope,
		Total:   report.Total,
		Score:   report.Score,
		Percent: report.Percent,
		Review:  reviewJSON,
	}
	if err := h.db.Create(&result).Error; err != nil {
		log.Printf("Warning: failed to persist quiz result for user %d: %v", userID, err)
	}

	if h.cache != nil {
		now := time.Now()
		drills := make([]cache.DrillEntry, 0, report.Total)
		for _, entry := range session.Reviewed() {
			drills = append(drills, cache.DrillEntry{
				Word:       entry.Word,
				Definition: entry.Definition,
				DrilledAt:  now,
			})
		}
		if err := h.cache.AppendDrills(c.Request.Context(), userID, drills); err != nil {
			log.Printf("Warning: failed to buffer drill history for user %d: %v", userID, err)
		}
	}
}

func (h *QuizHandler) session(c *gin.Context) (*quiz.Session, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}

	session, err := h.manager.Get(userID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Quiz session not found"})
		return nil, false
	}
	return session, true
}

type quizOption struct {
	ID         string `json:"id"`
	Definition string `json:"definition"`
}

func (h *QuizHandler) renderCurrent(c *gin.Context, session *quiz.Session, status int) {
	question, index, total, err := session.Current()
	if errors.Is(err, quiz.ErrFinished) {
		c.JSON(status, gin.H{
			"sessionId": session.ID,
			"mode":      session.Mode,
			"state":     quiz.StateResult,
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load question"})
		return
	}

	resp := gin.H{
		"sessionId": session.ID,
		"mode":      session.Mode,
		"state":     quiz.StatePlaying,
		"index":     index,
		"total":     total,
	}

	if session.Mode == quiz.ModeChoice {
		// The full target entry would leak the answer; choice mode exposes
		// the prompt word and definition-only options.
		options := make([]quizOption, len(question.Options))
		for i, opt := range question.Options {
			options[i] = quizOption{ID: opt.ID, Definition: opt.Definition}
		}
		// No target id in the prompt: the correct option shares it.
		resp["prompt"] = gin.H{
			"word":         question.Target.Word,
			"partOfSpeech": question.Target.PartOfSpeech,
			"favorite":     question.Target.Favorite,
		}
		resp["options"] = options
	} else {
		resp["entry"] = question.Target
	}

	c.JSON(status, resp)
}

// parseLimit accepts a JSON number or the string "all" (treated as no
// limit), mirroring the value the frontend sends.
func parseLimit(v interface{}) int {
	switch limit := v.(type) {
	case float64:
		if limit > 0 {
			return int(limit)
		}
	case string:
		if limit == "all" || limit == "" {
			return 0
		}
		if n, err := strconv.Atoi(limit); err == nil && n > 0 {
			return n
		}
	}
	return 0
}
