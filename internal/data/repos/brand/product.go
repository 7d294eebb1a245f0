package brand

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/brandlens-backend/internal/domain"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

type ProductRepo interface {
	// UpsertBySlug writes a product keyed on (profile_id, slug) and returns the stored row.
	UpsertBySlug(dbc dbctx.Context, product *types.Product) (*types.Product, error)
	UpsertCategory(dbc dbctx.Context, category *types.ProductCategory) (*types.ProductCategory, error)
	ListByProfile(dbc dbctx.Context, profileID uuid.UUID) ([]*types.Product, error)
	ListCategories(dbc dbctx.Context, profileID uuid.UUID) ([]*types.ProductCategory, error)
}

type productRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	return &productRepo{db: db, log: baseLog.With("repo", "ProductRepo")}
}

func (r *productRepo) UpsertBySlug(dbc dbctx.Context, product *types.Product) (*types.Product, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "profile_id"}, {Name: "slug"}},
			UpdateAll: true,
		}).
		Create(product).Error; err != nil {
		return nil, err
	}
	var out types.Product
	if err := transaction.WithContext(dbc.Ctx).
		Where("profile_id = ? AND slug = ?", product.ProfileID, product.Slug).
		First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *productRepo) UpsertCategory(dbc dbctx.Context, category *types.ProductCategory) (*types.ProductCategory, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "profile_id"}, {Name: "slug"}},
			UpdateAll: true,
		}).
		Create(category).Error; err != nil {
		return nil, err
	}
	var out types.ProductCategory
	if err := transaction.WithContext(dbc.Ctx).
		Where("profile_id = ? AND slug = ?", category.ProfileID, category.Slug).
		First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *productRepo) ListByProfile(dbc dbctx.Context, profileID uuid.UUID) ([]*types.Product, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Product
	if err := transaction.WithContext(dbc.Ctx).
		Where("profile_id = ?", profileID).
		Order("is_hero DESC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *productRepo) ListCategories(dbc dbctx.Context, profileID uuid.UUID) ([]*types.ProductCategory, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ProductCategory
	if err := transaction.WithContext(dbc.Ctx).
		Where("profile_id = ?", profileID).
		Order("level ASC, name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
