package vocab

import (
	"context"
	"log"
	"strings"

	"github.com/wordvault/api/internal/store"
)

// ImportLine is one parsed line of a bulk import blob.
type ImportLine struct {
	Word               string
	PartOfSpeech       string
	Definition         string
	ExampleSentence    string
	ExampleTranslation string
	CategoryName       string
}

// ImportReport summarizes one import run. The operation is not atomic:
// partial success is reported by count, never rolled back.
type ImportReport struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
	Total    int `json:"total"`
}

// ParseImport splits a text blob into import lines. Fields are separated by
// ";" and trimmed:
//
//	word; partOfSpeech; definition; exampleSentence; exampleTranslation; categoryName
//
// A line is valid iff it yields at least 3 fields with a non-empty word and
// definition. An empty part-of-speech field defaults to "n.". Invalid lines
// are skipped silently; the second return value is the count of non-blank
// lines seen.
func ParseImport(text string) ([]ImportLine, int) {
	var lines []ImportLine
	total := 0

	for _, raw := range strings.Split(text, "\n") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		total++

		fields := strings.Split(raw, ";")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		if len(fields) < 3 || fields[0] == "" || fields[2] == "" {
			continue
		}

		line := ImportLine{
			Word:         fields[0],
			PartOfSpeech: fields[1],
			Definition:   fields[2],
		}
		if line.PartOfSpeech == "" {
			line.PartOfSpeech = DefaultPartOfSpeech
		}
		if len(fields) > 3 {
			line.ExampleSentence = fields[3]
		}
		if len(fields) > 4 {
			line.ExampleTranslation = fields[4]
		}
		if len(fields) > 5 {
			line.CategoryName = fields[5]
		}

		lines = append(lines, line)
	}

	return lines, total
}

// Importer turns bulk import text into stored entries, resolving category
// names against the user's existing categories.
type Importer struct {
	store store.Store
}

func NewImporter(s store.Store) *Importer {
	return &Importer{store: s}
}

// Run imports a text blob for one user. Category names are matched
// case-sensitively; a name with no match is created once per run, so two
// lines naming the same new category resolve to the same id. Per-line store
// failures are counted and logged, and the rest of the batch proceeds.
func (im *Importer) Run(ctx context.Context, userID int64, text string) (ImportReport, error) {
	lines, total := ParseImport(text)
	report := ImportReport{Total: total, Skipped: total - len(lines)}

	categories, err := im.store.ListCategories(ctx, userID)
	if err != nil {
		return report, err
	}
	// Pre-existing names win; among duplicates the oldest is kept, matching
	// the order ListCategories returns.
	nameToID := make(map[string]string, len(categories))
	for _, c := range categories {
		if _, ok := nameToID[c.Name]; !ok {
			nameToID[c.Name] = c.ID
		}
	}

	for _, line := range lines {
		var categoryIDs []string
		if line.CategoryName != "" {
			id, ok := nameToID[line.CategoryName]
			if !ok {
				created, err := im.store.CreateCategory(ctx, userID, line.CategoryName)
				if err != nil {
					log.Printf("Warning: failed to create category %q during import: %v", line.CategoryName, err)
				} else {
					id = created.ID
					nameToID[line.CategoryName] = id
					ok = true
				}
			}
			if ok {
				categoryIDs = []string{id}
			}
		}

		entry, err := Normalize(EntryInput{
			Word:               line.Word,
			PartOfSpeech:       line.PartOfSpeech,
			Definition:         line.Definition,
			ExampleSentence:    line.ExampleSentence,
			ExampleTranslation: line.ExampleTranslation,
			CategoryIDs:        categoryIDs,
		})
		if err != nil {
			report.Skipped++
			continue
		}

		if _, err := im.store.CreateEntry(ctx, userID, entry); err != nil {
			log.Printf("Warning: failed to import %q: %v", line.Word, err)
			report.Failed++
			continue
		}
		report.Imported++
	}

	return report, nil
}
