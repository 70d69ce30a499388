package vocab

import (
	"errors"
	"testing"
)

func TestNormalizeDefaults(t *testing.T) {
	entry, err := Normalize(EntryInput{Word: " apple ", Definition: " 蘋果 "})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if entry.Word != "apple" || entry.Definition != "蘋果" {
		t.Fatalf("fields not trimmed: %+v", entry)
	}
	if entry.PartOfSpeech != "n." {
		t.Fatalf("pos default: got %q", entry.PartOfSpeech)
	}
	if entry.Favorite {
		t.Fatal("favorite must default to false")
	}
	if len(entry.CategoryIDs) != 0 {
		t.Fatalf("category ids must default empty, got %v", entry.CategoryIDs)
	}
}

func TestNormalizeRejections(t *testing.T) {
	if _, err := Normalize(EntryInput{Definition: "x"}); !errors.Is(err, ErrEmptyWord) {
		t.Fatalf("expected ErrEmptyWord, got %v", err)
	}
	if _, err := Normalize(EntryInput{Word: "apple", Definition: "  "}); !errors.Is(err, ErrEmptyDefinition) {
		t.Fatalf("expected ErrEmptyDefinition, got %v", err)
	}
}

func TestNormalizeDeduplicatesCategories(t *testing.T) {
	entry, err := Normalize(EntryInput{
		Word:        "apple",
		Definition:  "蘋果",
		CategoryIDs: []string{"cat-1", "cat-1", "", "cat-2"},
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(entry.CategoryIDs) != 2 || entry.CategoryIDs[0] != "cat-1" || entry.CategoryIDs[1] != "cat-2" {
		t.Fatalf("category set wrong: %v", entry.CategoryIDs)
	}
}
