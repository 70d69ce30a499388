package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/wordvault/api/internal/config"
	"github.com/wordvault/api/internal/database"
	"github.com/wordvault/api/internal/store"
	"github.com/wordvault/api/internal/vocab"
)

// Seeds a user's collection from a semicolon-delimited vocabulary file,
// using the same parser and category resolution as the bulk import API.
func main() {
	filePath := flag.String("file", "data/starter_vocab.txt", "Path to semicolon-delimited vocabulary file")
	userID := flag.Int64("user", 0, "User id to seed entries for")
	flag.Parse()

	if *userID == 0 {
		log.Fatal("-user is required")
	}

	godotenv.Load()
	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatalf("Failed to read vocabulary file: %v", err)
	}

	importer := vocab.NewImporter(store.NewGormStore(db))
	report, err := importer.Run(context.Background(), *userID, string(data))
	if err != nil {
		log.Fatalf("Seed import failed: %v", err)
	}

	log.Printf("Seeding complete for user %d: imported=%d skipped=%d failed=%d total=%d",
		*userID, report.Imported, report.Skipped, report.Failed, report.Total)
}
