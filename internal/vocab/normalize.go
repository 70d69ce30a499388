package vocab

import (
	"errors"
	"strings"

	"github.com/wordvault/api/internal/model"
)

// DefaultPartOfSpeech is applied when an entry is submitted without one.
const DefaultPartOfSpeech = "n."

var (
	ErrEmptyWord       = errors.New("word must not be empty")
	ErrEmptyDefinition = errors.New("definition must not be empty")
)

// EntryInput is a raw entry as submitted by a form or an import line,
// before defaults are applied.
type EntryInput struct {
	Word               string
	PartOfSpeech       string
	Definition         string
	ExampleSentence    string
	ExampleTranslation string
	CategoryIDs        []string
}

// Normalize validates and default-fills an entry input in one step,
// returning a fully populated record or a rejection reason. Duplicate
// category ids collapse to one.
func Normalize(in EntryInput) (model.VocabEntry, error) {
	word := strings.TrimSpace(in.Word)
	if word == "" {
		return model.VocabEntry{}, ErrEmptyWord
	}
	definition := strings.TrimSpace(in.Definition)
	if definition == "" {
		return model.VocabEntry{}, ErrEmptyDefinition
	}

	pos := strings.TrimSpace(in.PartOfSpeech)
	if pos == "" {
		pos = DefaultPartOfSpeech
	}

	seen := make(map[string]bool, len(in.CategoryIDs))
	categoryIDs := make([]string, 0, len(in.CategoryIDs))
	for _, id := range in.CategoryIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		categoryIDs = append(categoryIDs, id)
	}

	return model.VocabEntry{
		Word:               word,
		PartOfSpeech:       pos,
		Definition:         definition,
		ExampleSentence:    strings.TrimSpace(in.ExampleSentence),
		ExampleTranslation: strings.TrimSpace(in.ExampleTranslation),
		Favorite:           false,
		CategoryIDs:        categoryIDs,
	}, nil
}
