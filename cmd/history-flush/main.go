package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/wordvault/api/internal/cache"
	"github.com/wordvault/api/internal/config"
	"github.com/wordvault/api/internal/database"
	"github.com/wordvault/api/internal/history"
)

// Flushes buffered drill history from Redis to the database. Normally the
// in-server scheduler does this; the binary exists for cron setups and for
// draining before a Redis migration.
func main() {
	dryRun := flag.Bool("dry-run", false, "Show what would be flushed without actually flushing")
	flag.Parse()

	startTime := time.Now()
	log.Println("Starting drill history flush job...")

	godotenv.Load()
	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	redisCache, err := cache.NewRedisCache(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisCache.Close()

	ctx := context.Background()

	activeUsers, err := redisCache.GetActiveUsers(ctx)
	if err != nil {
		log.Fatalf("Failed to get active users: %v", err)
	}

	log.Printf("Found %d users with pending drill history", len(activeUsers))

	if *dryRun {
		log.Println("[DRY RUN] Showing what would be flushed:")
		for _, userID := range activeUsers {
			entries, err := redisCache.GetAllDrills(ctx, userID)
			if err != nil {
				log.Printf("  User %d: error getting buffer: %v", userID, err)
				continue
			}
			log.Printf("  User %d: %d entries", userID, len(entries))
		}
		log.Println("[DRY RUN] No changes made")
		return
	}

	flusher := history.NewFlusher(db, redisCache)

	flushedCount, err := flusher.FlushAll(ctx)
	if err != nil {
		log.Fatalf("Failed to flush drill history: %v", err)
	}

	elapsed := time.Since(startTime)
	log.Printf("Drill history flush complete. Flushed %d users in %v", flushedCount, elapsed)
}
