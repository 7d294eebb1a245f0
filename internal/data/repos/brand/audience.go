package brand

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/brandlens-backend/internal/domain"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

type PersonaRepo interface {
	// Append inserts personas (and their pain points) next to any existing ones.
	Append(dbc dbctx.Context, profileID uuid.UUID, personas []*types.CustomerPersona) ([]*types.CustomerPersona, error)
	// ReplaceAll removes the profile's personas and pain points, then inserts the new set.
	ReplaceAll(dbc dbctx.Context, profileID uuid.UUID, personas []*types.CustomerPersona) ([]*types.CustomerPersona, error)
	ListByProfile(dbc dbctx.Context, profileID uuid.UUID) ([]*types.CustomerPersona, error)
}

type personaRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPersonaRepo(db *gorm.DB, baseLog *logger.Logger) PersonaRepo {
	return &personaRepo{db: db, log: baseLog.With("repo", "PersonaRepo")}
}

func (r *personaRepo) Append(dbc dbctx.Context, profileID uuid.UUID, personas []*types.CustomerPersona) ([]*types.CustomerPersona, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(personas) == 0 {
		return []*types.CustomerPersona{}, nil
	}
	for _, p := range personas {
		p.ProfileID = profileID
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&personas).Error; err != nil {
		return nil, err
	}
	return personas, nil
}

func (r *personaRepo) ReplaceAll(dbc dbctx.Context, profileID uuid.UUID, personas []*types.CustomerPersona) ([]*types.CustomerPersona, error) {
	var out []*types.CustomerPersona
	replace := func(tx *gorm.DB) error {
		sub := tx.Model(&types.CustomerPersona{}).Select("id").Where("profile_id = ?", profileID)
		if err := tx.WithContext(dbc.Ctx).
			Where("persona_id IN (?)", sub).
			Delete(&types.PainPoint{}).Error; err != nil {
			return err
		}
		if err := tx.WithContext(dbc.Ctx).
			Where("profile_id = ?", profileID).
			Delete(&types.CustomerPersona{}).Error; err != nil {
			return err
		}
		var err error
		out, err = r.Append(dbctx.Context{Ctx: dbc.Ctx, Tx: tx}, profileID, personas)
		return err
	}
	var err error
	if dbc.Tx != nil {
		err = replace(dbc.Tx)
	} else {
		err = r.db.WithContext(dbc.Ctx).Transaction(replace)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *personaRepo) ListByProfile(dbc dbctx.Context, profileID uuid.UUID) ([]*types.CustomerPersona, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.CustomerPersona
	if err := transaction.WithContext(dbc.Ctx).
		Preload("PainPoints").
		Where("profile_id = ?", profileID).
		Order("priority ASC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type AudienceRepo interface {
	Upsert(dbc dbctx.Context, audience *types.TargetAudience) (*types.TargetAudience, error)
	GetByProfile(dbc dbctx.Context, profileID uuid.UUID) (*types.TargetAudience, error)
}

type audienceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAudienceRepo(db *gorm.DB, baseLog *logger.Logger) AudienceRepo {
	return &audienceRepo{db: db, log: baseLog.With("repo", "AudienceRepo")}
}

func (r *audienceRepo) Upsert(dbc dbctx.Context, audience *types.TargetAudience) (*types.TargetAudience, error) {
	return upsertByProfile(dbc, r.db, audience, audience.ProfileID)
}

func (r *audienceRepo) GetByProfile(dbc dbctx.Context, profileID uuid.UUID) (*types.TargetAudience, error) {
	return findByProfile[types.TargetAudience](dbc, r.db, profileID)
}
