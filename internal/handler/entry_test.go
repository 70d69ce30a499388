package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/wordvault/api/internal/model"
	"github.com/wordvault/api/internal/store"
	"github.com/wordvault/api/internal/vocab"
)

type failingCache struct{}

func (failingCache) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func (failingCache) Set(ctx context.Context, key string, value []byte) error {
	return errors.New("connection refused")
}

type stubCache struct {
	data map[string][]byte
}

func (c *stubCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := c.data[key]; ok {
		return v, nil
	}
	return nil, errors.New("nil")
}

func (c *stubCache) Set(ctx context.Context, key string, value []byte) error {
	c.data[key] = value
	return nil
}

func listEntries(t *testing.T, h *EntryHandler, userID int64) (int, []model.VocabEntry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/entries", nil)
	c.Set("userID", userID)

	h.List(c)

	var body struct {
		Data []model.VocabEntry `json:"data"`
	}
	if w.Code == http.StatusOK {
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return w.Code, body.Data
}

func TestListSurvivesCacheFailure(t *testing.T) {
	s := store.NewMemoryStore()
	entry, _ := vocab.Normalize(vocab.EntryInput{Word: "apple", Definition: "a fruit"})
	if _, err := s.CreateEntry(context.Background(), 1, entry); err != nil {
		t.Fatalf("seed: %v", err)
	}

	h := NewEntryHandler(s, nil)
	h.cache = failingCache{}

	code, data := listEntries(t, h, 1)
	if code != http.StatusOK {
		t.Fatalf("cache failure must not break listing, got status %d", code)
	}
	if len(data) != 1 || data[0].Word != "apple" {
		t.Fatalf("expected the stored entry, got %+v", data)
	}
}

func TestListFillsAndServesSnapshotCache(t *testing.T) {
	s := store.NewMemoryStore()
	entry, _ := vocab.Normalize(vocab.EntryInput{Word: "bear", Definition: "an animal"})
	if _, err := s.CreateEntry(context.Background(), 1, entry); err != nil {
		t.Fatalf("seed: %v", err)
	}

	cached := &stubCache{data: make(map[string][]byte)}
	h := NewEntryHandler(s, nil)
	h.cache = cached

	if code, _ := listEntries(t, h, 1); code != http.StatusOK {
		t.Fatalf("first list: status %d", code)
	}
	if len(cached.data) != 1 {
		t.Fatalf("snapshot cache should be filled after a miss, got %d keys", len(cached.data))
	}

	// Second read is served from the cache
	code, data := listEntries(t, h, 1)
	if code != http.StatusOK || len(data) != 1 || data[0].Word != "bear" {
		t.Fatalf("cached read: status %d data %+v", code, data)
	}
}

func TestListWithoutCache(t *testing.T) {
	s := store.NewMemoryStore()
	entry, _ := vocab.Normalize(vocab.EntryInput{Word: "cedar", Definition: "a tree"})
	if _, err := s.CreateEntry(context.Background(), 1, entry); err != nil {
		t.Fatalf("seed: %v", err)
	}

	h := NewEntryHandler(s, nil)

	code, data := listEntries(t, h, 1)
	if code != http.StatusOK || len(data) != 1 {
		t.Fatalf("nil cache must behave as a plain store read: status %d data %+v", code, data)
	}
}
