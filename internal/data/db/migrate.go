package db

import (
	"fmt"

	types "github.com/yungbote/brandlens-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(types.Models()...)
}

// EnsurePerceptionIndexes adds the composite indexes used by scan loading and
// result listing. Postgres only; other dialects rely on the gorm tag indexes.
func EnsurePerceptionIndexes(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	stmts := []struct {
		name string
		sql  string
	}{
		{"idx_generated_prompt_active_priority", `
			CREATE INDEX IF NOT EXISTS idx_generated_prompt_active_priority
			ON generated_prompt (profile_id, is_active, priority DESC);`},
		{"idx_perception_result_scan_platform", `
			CREATE INDEX IF NOT EXISTS idx_perception_result_scan_platform
			ON perception_result (scan_id, platform);`},
		{"idx_perception_scan_profile_created", `
			CREATE INDEX IF NOT EXISTS idx_perception_scan_profile_created
			ON perception_scan (profile_id, created_at DESC);`},
		{"idx_customer_persona_profile_name", `
			CREATE INDEX IF NOT EXISTS idx_customer_persona_profile_name
			ON customer_persona (profile_id, lower(name));`},
	}
	for _, s := range stmts {
		if err := db.Exec(s.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", s.name, err)
		}
	}
	return nil
}
