package database

import (
	"github.com/wordvault/api/internal/config"
	"github.com/wordvault/api/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.VocabEntry{},
		&model.Category{},
		&model.DrillHistoryDaily{},
		&model.QuizResult{},
	)
	if err != nil {
		return err
	}

	// Create unique index for users (provider, provider_id)
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_users_provider_provider_id ON users(provider, provider_id)")

	// GIN index so category membership lookups don't scan the whole collection
	db.Exec("CREATE INDEX IF NOT EXISTS idx_vocab_entries_category_ids ON vocab_entries USING GIN (category_ids)")

	return nil
}
