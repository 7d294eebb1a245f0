package brand

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
)

// upsertByProfile writes a one-per-profile row keyed on profile_id and returns
// the persisted row. Associations are never written here.
func upsertByProfile[T any](dbc dbctx.Context, db *gorm.DB, row *T, profileID uuid.UUID) (*T, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = db
	}
	if err := transaction.WithContext(dbc.Ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "profile_id"}},
			UpdateAll: true,
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	var out T
	if err := transaction.WithContext(dbc.Ctx).
		Where("profile_id = ?", profileID).
		First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// findByProfile returns nil, nil when the profile has no row yet.
func findByProfile[T any](dbc dbctx.Context, db *gorm.DB, profileID uuid.UUID) (*T, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = db
	}
	var out T
	res := transaction.WithContext(dbc.Ctx).
		Where("profile_id = ?", profileID).
		Limit(1).
		Find(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &out, nil
}
