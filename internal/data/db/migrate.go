package db

import (
	"fmt"

	types "github.com/iapss/iapss-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(types.Models()...)
}

// EnsureHistoryIndexes adds the listing indexes gorm tags cannot express.
// Both statements are valid on postgres and sqlite.
func EnsureHistoryIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_history_owner_kind_created
		ON history_record (user_id, kind, created_at DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_history_owner_kind_created: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_history_owner_favorite
		ON history_record (user_id, is_favorite);
	`).Error; err != nil {
		return fmt.Errorf("create idx_history_owner_favorite: %w", err)
	}
	return nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...", "driver", s.driver)
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsureHistoryIndexes(s.db); err != nil {
		s.log.Error("History index migration failed", "error", err)
		return err
	}
	return nil
}
