package vocab

import (
	"reflect"
	"testing"
	"time"

	"github.com/wordvault/api/internal/model"
)

func entryAt(id, word, pos, definition string, createdAt int64) model.VocabEntry {
	e := model.VocabEntry{
		ID:           id,
		Word:         word,
		PartOfSpeech: pos,
		Definition:   definition,
	}
	if createdAt > 0 {
		e.CreatedAt = time.Unix(createdAt, 0)
	}
	return e
}

func TestApplySortsByCreatedAtDescending(t *testing.T) {
	entries := []model.VocabEntry{
		entryAt("a", "apple", "n.", "x", 100),
		entryAt("b", "banana", "n.", "y", 300),
		entryAt("c", "cherry", "n.", "z", 200),
	}

	got := Apply(entries, FilterState{})

	wantOrder := []string{"b", "c", "a"}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Fatalf("position %d: got %s, want %s (full order %v)", i, got[i].ID, id, ids(got))
		}
	}
}

func TestApplyMissingTimestampSortsOldest(t *testing.T) {
	entries := []model.VocabEntry{
		entryAt("zero", "no-time", "n.", "x", 0),
		entryAt("a", "apple", "n.", "x", 100),
		entryAt("b", "banana", "n.", "y", 300),
	}

	got := Apply(entries, FilterState{})
	if got[len(got)-1].ID != "zero" {
		t.Fatalf("entry without createdAt should sort last, got order %v", ids(got))
	}
}

func TestApplyIsPure(t *testing.T) {
	entries := []model.VocabEntry{
		entryAt("a", "Apple", "n.", "fruit", 100),
		entryAt("b", "banana", "n.", "fruit", 300),
		entryAt("c", "run", "v.", "move fast", 200),
	}
	state := FilterState{SearchText: "a", PartOfSpeech: "n."}

	first := Apply(entries, state)
	second := Apply(entries, state)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated calls differ: %v vs %v", ids(first), ids(second))
	}

	// The input slice must not be reordered
	if entries[0].ID != "a" || entries[1].ID != "b" || entries[2].ID != "c" {
		t.Fatalf("input slice was mutated: %v", ids(entries))
	}
}

func TestApplyPartOfSpeechExactMatch(t *testing.T) {
	entries := []model.VocabEntry{
		entryAt("a", "run", "v.", "x", 100),
		entryAt("b", "runner", "n.", "y", 200),
		entryAt("c", "quickly", "adv.", "z", 300),
	}

	cases := []struct {
		name string
		pos  string
		want []string
	}{
		{"all passes everything", "all", []string{"c", "b", "a"}},
		{"verb only", "v.", []string{"a"}},
		{"no partial match", "adj.", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Apply(entries, FilterState{PartOfSpeech: tc.pos})
			if !reflect.DeepEqual(ids(got), tc.want) {
				t.Fatalf("got %v, want %v", ids(got), tc.want)
			}
		})
	}
}

func TestApplySearchCaseRules(t *testing.T) {
	entries := []model.VocabEntry{
		entryAt("a", "Abandon", "v.", "to give up", 100),
		entryAt("b", "keep", "v.", "to Hold", 200),
	}

	// Word match is case-insensitive
	got := Apply(entries, FilterState{SearchText: "aban"})
	if !reflect.DeepEqual(ids(got), []string{"a"}) {
		t.Fatalf("word search: got %v", ids(got))
	}

	// Definition match is case-sensitive
	got = Apply(entries, FilterState{SearchText: "Hold"})
	if !reflect.DeepEqual(ids(got), []string{"b"}) {
		t.Fatalf("definition search (matching case): got %v", ids(got))
	}
	got = Apply(entries, FilterState{SearchText: "hold"})
	if len(got) != 0 {
		t.Fatalf("definition search should be case-sensitive, got %v", ids(got))
	}
}

func TestApplyScopes(t *testing.T) {
	fav := entryAt("fav", "star", "n.", "x", 100)
	fav.Favorite = true
	tagged := entryAt("tag", "apple", "n.", "y", 200)
	tagged.CategoryIDs = []string{"cat-1"}
	plain := entryAt("plain", "rock", "n.", "z", 300)

	entries := []model.VocabEntry{fav, tagged, plain}

	cases := []struct {
		name  string
		state FilterState
		want  []string
	}{
		{"favorites scope", FilterState{CategoryScope: ScopeFavorites}, []string{"fav"}},
		{"favorites flag", FilterState{FavoritesOnly: true}, []string{"fav"}},
		{"category scope", FilterState{CategoryScope: "cat-1"}, []string{"tag"}},
		{"unknown category matches nothing", FilterState{CategoryScope: "gone"}, nil},
		{"all", FilterState{CategoryScope: ScopeAll}, []string{"plain", "tag", "fav"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Apply(entries, tc.state)
			if !reflect.DeepEqual(ids(got), tc.want) {
				t.Fatalf("got %v, want %v", ids(got), tc.want)
			}
		})
	}
}

func TestApplyScope(t *testing.T) {
	fav := entryAt("fav", "star", "n.", "x", 100)
	fav.Favorite = true
	plain := entryAt("plain", "rock", "n.", "z", 300)

	pool := ApplyScope([]model.VocabEntry{fav, plain}, ScopeFavorites)
	if len(pool) != 1 || pool[0].ID != "fav" {
		t.Fatalf("favorites pool: got %v", ids(pool))
	}

	pool = ApplyScope([]model.VocabEntry{fav, plain}, ScopeAll)
	if len(pool) != 2 {
		t.Fatalf("all pool: got %v", ids(pool))
	}
}

func TestCountMembers(t *testing.T) {
	a := entryAt("a", "apple", "n.", "x", 100)
	a.CategoryIDs = []string{"cat-1", "cat-2"}
	b := entryAt("b", "banana", "n.", "y", 200)
	b.CategoryIDs = []string{"cat-1"}
	c := entryAt("c", "cherry", "n.", "z", 300)

	entries := []model.VocabEntry{a, b, c}

	if got := CountMembers("cat-1", entries); got != 2 {
		t.Fatalf("cat-1: got %d, want 2", got)
	}
	if got := CountMembers("cat-2", entries); got != 1 {
		t.Fatalf("cat-2: got %d, want 1", got)
	}
	if got := CountMembers("gone", entries); got != 0 {
		t.Fatalf("unknown: got %d, want 0", got)
	}
}

func ids(entries []model.VocabEntry) []string {
	if len(entries) == 0 {
		return nil
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}
