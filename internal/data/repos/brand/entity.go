package brand

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/brandlens-backend/internal/domain"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

type EntityHomeRepo interface {
	Upsert(dbc dbctx.Context, home *types.EntityHome) (*types.EntityHome, error)
	GetByProfile(dbc dbctx.Context, profileID uuid.UUID) (*types.EntityHome, error)
}

type entityHomeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEntityHomeRepo(db *gorm.DB, baseLog *logger.Logger) EntityHomeRepo {
	return &entityHomeRepo{db: db, log: baseLog.With("repo", "EntityHomeRepo")}
}

func (r *entityHomeRepo) Upsert(dbc dbctx.Context, home *types.EntityHome) (*types.EntityHome, error) {
	return upsertByProfile(dbc, r.db, home, home.ProfileID)
}

func (r *entityHomeRepo) GetByProfile(dbc dbctx.Context, profileID uuid.UUID) (*types.EntityHome, error) {
	return findByProfile[types.EntityHome](dbc, r.db, profileID)
}

type OrganizationSchemaRepo interface {
	Upsert(dbc dbctx.Context, org *types.OrganizationSchema) (*types.OrganizationSchema, error)
	GetByProfile(dbc dbctx.Context, profileID uuid.UUID) (*types.OrganizationSchema, error)
}

type organizationSchemaRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOrganizationSchemaRepo(db *gorm.DB, baseLog *logger.Logger) OrganizationSchemaRepo {
	return &organizationSchemaRepo{db: db, log: baseLog.With("repo", "OrganizationSchemaRepo")}
}

func (r *organizationSchemaRepo) Upsert(dbc dbctx.Context, org *types.OrganizationSchema) (*types.OrganizationSchema, error) {
	return upsertByProfile(dbc, r.db, org, org.ProfileID)
}

func (r *organizationSchemaRepo) GetByProfile(dbc dbctx.Context, profileID uuid.UUID) (*types.OrganizationSchema, error) {
	return findByProfile[types.OrganizationSchema](dbc, r.db, profileID)
}
