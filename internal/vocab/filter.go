package vocab

import (
	"sort"
	"strings"

	"github.com/wordvault/api/internal/model"
)

// Scope values accepted wherever a category scope is expected. Anything else
// is treated as a category id.
const (
	ScopeAll       = "all"
	ScopeFavorites = "favorites"
)

// FilterState is the full display-filter configuration. Zero values mean
// "no constraint".
type FilterState struct {
	SearchText    string
	PartOfSpeech  string // "all" (or empty) for no constraint, otherwise exact match
	CategoryScope string // "all", "favorites", or a category id
	FavoritesOnly bool
}

// Apply derives the displayed subset of entries from the filter state. It is
// a pure function: the input slice is never mutated and identical inputs
// yield identical output order.
//
// Word search is case-insensitive, definition search is case-sensitive.
// Results are sorted by CreatedAt descending; entries without a timestamp
// sort as if created at time zero.
func Apply(entries []model.VocabEntry, state FilterState) []model.VocabEntry {
	needle := strings.ToLower(state.SearchText)

	out := make([]model.VocabEntry, 0, len(entries))
	for _, e := range entries {
		if !inScope(&e, state.CategoryScope) {
			continue
		}
		if state.FavoritesOnly && !e.Favorite {
			continue
		}
		if state.PartOfSpeech != "" && state.PartOfSpeech != ScopeAll && e.PartOfSpeech != state.PartOfSpeech {
			continue
		}
		if state.SearchText != "" &&
			!strings.Contains(strings.ToLower(e.Word), needle) &&
			!strings.Contains(e.Definition, state.SearchText) {
			continue
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// ApplyScope keeps only the entries matching a quiz/category scope: "all",
// "favorites", or a specific category id. This is the pool-building step for
// the quiz engine; no text search or part-of-speech filter applies.
func ApplyScope(entries []model.VocabEntry, scope string) []model.VocabEntry {
	out := make([]model.VocabEntry, 0, len(entries))
	for _, e := range entries {
		if inScope(&e, scope) {
			out = append(out, e)
		}
	}
	return out
}

func inScope(e *model.VocabEntry, scope string) bool {
	switch scope {
	case "", ScopeAll:
		return true
	case ScopeFavorites:
		return e.Favorite
	default:
		return e.HasCategory(scope)
	}
}

// CountMembers returns the number of entries belonging to the category.
// Recomputed on every call; never cached.
func CountMembers(categoryID string, entries []model.VocabEntry) int {
	count := 0
	for _, e := range entries {
		if e.HasCategory(categoryID) {
			count++
		}
	}
	return count
}
