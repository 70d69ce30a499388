package vocab

import (
	"context"
	"testing"

	"github.com/wordvault/api/internal/store"
)

func TestParseImportMinimumFields(t *testing.T) {
	cases := []struct {
		name      string
		input     string
		wantLines int
		wantTotal int
	}{
		{"two fields skipped", "apple; n.", 0, 1},
		{"three fields accepted", "apple; n.; 蘋果", 1, 1},
		{"empty word skipped", "; n.; 蘋果", 0, 1},
		{"empty definition skipped", "apple; n.; ", 0, 1},
		{"blank lines not counted", "\n\napple; n.; 蘋果\n\n", 1, 1},
		{"mixed batch", "apple; n.; 蘋果\nbroken line\nbanana; n.; 香蕉", 2, 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lines, total := ParseImport(tc.input)
			if len(lines) != tc.wantLines {
				t.Fatalf("got %d valid lines, want %d", len(lines), tc.wantLines)
			}
			if total != tc.wantTotal {
				t.Fatalf("got total %d, want %d", total, tc.wantTotal)
			}
		})
	}
}

func TestParseImportDefaults(t *testing.T) {
	lines, _ := ParseImport("apple; ; 蘋果")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].PartOfSpeech != "n." {
		t.Fatalf("empty pos should default to n., got %q", lines[0].PartOfSpeech)
	}
	if lines[0].ExampleSentence != "" || lines[0].ExampleTranslation != "" || lines[0].CategoryName != "" {
		t.Fatalf("missing trailing fields should stay empty: %+v", lines[0])
	}
}

func TestParseImportFullLine(t *testing.T) {
	lines, _ := ParseImport("abandon; v.; 放棄; He abandoned his dream.; 他放棄了夢想; Verbs")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	l := lines[0]
	if l.Word != "abandon" || l.PartOfSpeech != "v." || l.Definition != "放棄" {
		t.Fatalf("mandatory fields wrong: %+v", l)
	}
	if l.ExampleSentence != "He abandoned his dream." || l.ExampleTranslation != "他放棄了夢想" {
		t.Fatalf("example fields wrong: %+v", l)
	}
	if l.CategoryName != "Verbs" {
		t.Fatalf("category name wrong: %q", l.CategoryName)
	}
}

func TestImporterCreatesNewCategoryOnce(t *testing.T) {
	s := store.NewMemoryStore()
	importer := NewImporter(s)

	report, err := importer.Run(context.Background(), 1, "a; n.; x; ; ; Fruits\nb; n.; y; ; ; Fruits")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Imported != 2 || report.Total != 2 || report.Skipped != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}

	categories, _ := s.ListCategories(context.Background(), 1)
	if len(categories) != 1 {
		t.Fatalf("expected exactly one Fruits category, got %d", len(categories))
	}
	if categories[0].Name != "Fruits" {
		t.Fatalf("category name: got %q", categories[0].Name)
	}

	entries, _ := s.ListEntries(context.Background(), 1)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	for _, e := range entries {
		if len(e.CategoryIDs) != 1 || e.CategoryIDs[0] != categories[0].ID {
			t.Fatalf("entry %q should reference the shared category, got %v", e.Word, e.CategoryIDs)
		}
	}
}

func TestImporterReusesExistingCategory(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	existing, err := s.CreateCategory(ctx, 1, "Fruits")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	importer := NewImporter(s)
	if _, err := importer.Run(ctx, 1, "a; n.; x; ; ; Fruits"); err != nil {
		t.Fatalf("run: %v", err)
	}

	categories, _ := s.ListCategories(ctx, 1)
	if len(categories) != 1 {
		t.Fatalf("import must not duplicate an existing category, got %d", len(categories))
	}

	entries, _ := s.ListEntries(ctx, 1)
	if len(entries) != 1 || entries[0].CategoryIDs[0] != existing.ID {
		t.Fatalf("entry should reference the pre-existing category id %s: %+v", existing.ID, entries)
	}
}

func TestImporterCategoryMatchIsCaseSensitive(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	if _, err := s.CreateCategory(ctx, 1, "fruits"); err != nil {
		t.Fatalf("create category: %v", err)
	}

	importer := NewImporter(s)
	if _, err := importer.Run(ctx, 1, "a; n.; x; ; ; Fruits"); err != nil {
		t.Fatalf("run: %v", err)
	}

	categories, _ := s.ListCategories(ctx, 1)
	if len(categories) != 2 {
		t.Fatalf("Fruits and fruits are distinct, expected 2 categories, got %d", len(categories))
	}
}

func TestImporterCountsSkipped(t *testing.T) {
	s := store.NewMemoryStore()
	importer := NewImporter(s)

	report, err := importer.Run(context.Background(), 1, "apple; n.; 蘋果\nbroken\nbanana; n.; 香蕉\nx; y")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Imported != 2 || report.Skipped != 2 || report.Total != 4 {
		t.Fatalf("unexpected report: %+v", report)
	}
}
