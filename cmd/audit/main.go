package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"
	"github.com/wordvault/api/internal/config"
	"github.com/wordvault/api/internal/database"
	"github.com/wordvault/api/internal/model"
	"gorm.io/gorm"
)

// Reports vocabulary entries whose category_ids reference categories that no
// longer exist. Category deletion intentionally leaves these references in
// place; this tool makes them visible and, with -fix, removes them.
func main() {
	fix := flag.Bool("fix", false, "Remove dangling category references instead of only reporting them")
	flag.Parse()

	godotenv.Load()
	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	var entries []model.VocabEntry
	if err := db.Find(&entries).Error; err != nil {
		log.Fatalf("Failed to load entries: %v", err)
	}

	var categories []model.Category
	if err := db.Find(&categories).Error; err != nil {
		log.Fatalf("Failed to load categories: %v", err)
	}

	known := make(map[string]bool, len(categories))
	for _, c := range categories {
		known[c.ID] = true
	}

	log.Printf("Auditing %d entries against %d categories", len(entries), len(categories))

	danglingEntries := 0
	danglingRefs := 0

	for _, entry := range entries {
		var dangling []string
		for _, id := range entry.CategoryIDs {
			if !known[id] {
				dangling = append(dangling, id)
			}
		}
		if len(dangling) == 0 {
			continue
		}

		danglingEntries++
		danglingRefs += len(dangling)
		log.Printf("  user=%d entry=%s word=%q dangling=%v", entry.UserID, entry.ID, entry.Word, dangling)

		if *fix {
			if err := removeRefs(db, entry.ID, dangling); err != nil {
				log.Printf("  Failed to fix entry %s: %v", entry.ID, err)
			}
		}
	}

	if danglingEntries == 0 {
		log.Println("Audit complete: no dangling category references found")
		return
	}

	if *fix {
		log.Printf("Audit complete: cleaned %d references across %d entries", danglingRefs, danglingEntries)
	} else {
		log.Printf("Audit complete: %d dangling references across %d entries (run with -fix to clean)", danglingRefs, danglingEntries)
	}
}

func removeRefs(db *gorm.DB, entryID string, ids []string) error {
	for _, id := range ids {
		err := db.Exec(`
			UPDATE vocab_entries
			SET category_ids = array_remove(category_ids, ?::text)
			WHERE id = ?
		`, id, entryID).Error
		if err != nil {
			return err
		}
	}
	return nil
}
