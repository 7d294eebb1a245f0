package brand

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/brandlens-backend/internal/domain"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

// IdentityRepo stores the three vibecheck outputs. Each is one row per profile.
type IdentityRepo interface {
	UpsertPrism(dbc dbctx.Context, prism *types.BrandIdentityPrism) (*types.BrandIdentityPrism, error)
	UpsertArchetype(dbc dbctx.Context, archetype *types.BrandArchetype) (*types.BrandArchetype, error)
	UpsertVoice(dbc dbctx.Context, voice *types.BrandVoiceProfile) (*types.BrandVoiceProfile, error)
	GetPrism(dbc dbctx.Context, profileID uuid.UUID) (*types.BrandIdentityPrism, error)
	GetArchetype(dbc dbctx.Context, profileID uuid.UUID) (*types.BrandArchetype, error)
	GetVoice(dbc dbctx.Context, profileID uuid.UUID) (*types.BrandVoiceProfile, error)
}

type identityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIdentityRepo(db *gorm.DB, baseLog *logger.Logger) IdentityRepo {
	return &identityRepo{db: db, log: baseLog.With("repo", "IdentityRepo")}
}

func (r *identityRepo) UpsertPrism(dbc dbctx.Context, prism *types.BrandIdentityPrism) (*types.BrandIdentityPrism, error) {
	return upsertByProfile(dbc, r.db, prism, prism.ProfileID)
}

func (r *identityRepo) UpsertArchetype(dbc dbctx.Context, archetype *types.BrandArchetype) (*types.BrandArchetype, error) {
	return upsertByProfile(dbc, r.db, archetype, archetype.ProfileID)
}

func (r *identityRepo) UpsertVoice(dbc dbctx.Context, voice *types.BrandVoiceProfile) (*types.BrandVoiceProfile, error) {
	return upsertByProfile(dbc, r.db, voice, voice.ProfileID)
}

func (r *identityRepo) GetPrism(dbc dbctx.Context, profileID uuid.UUID) (*types.BrandIdentityPrism, error) {
	return findByProfile[types.BrandIdentityPrism](dbc, r.db, profileID)
}

func (r *identityRepo) GetArchetype(dbc dbctx.Context, profileID uuid.UUID) (*types.BrandArchetype, error) {
	return findByProfile[types.BrandArchetype](dbc, r.db, profileID)
}

func (r *identityRepo) GetVoice(dbc dbctx.Context, profileID uuid.UUID) (*types.BrandVoiceProfile, error) {
	return findByProfile[types.BrandVoiceProfile](dbc, r.db, profileID)
}
