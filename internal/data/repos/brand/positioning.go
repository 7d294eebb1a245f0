package brand

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/brandlens-backend/internal/domain"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

type PositioningRepo interface {
	// Upsert writes the positioning row and replaces its value propositions and proof points.
	Upsert(dbc dbctx.Context, positioning *types.MarketPositioning) (*types.MarketPositioning, error)
	GetByProfile(dbc dbctx.Context, profileID uuid.UUID) (*types.MarketPositioning, error)
}

type positioningRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPositioningRepo(db *gorm.DB, baseLog *logger.Logger) PositioningRepo {
	return &positioningRepo{db: db, log: baseLog.With("repo", "PositioningRepo")}
}

func (r *positioningRepo) Upsert(dbc dbctx.Context, positioning *types.MarketPositioning) (*types.MarketPositioning, error) {
	props := positioning.ValuePropositions
	proofs := positioning.ProofPoints
	var out *types.MarketPositioning
	write := func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		saved, err := upsertByProfile(inner, r.db, positioning, positioning.ProfileID)
		if err != nil {
			return err
		}
		if err := tx.WithContext(dbc.Ctx).Where("positioning_id = ?", saved.ID).Delete(&types.ValueProposition{}).Error; err != nil {
			return err
		}
		if err := tx.WithContext(dbc.Ctx).Where("positioning_id = ?", saved.ID).Delete(&types.ProofPoint{}).Error; err != nil {
			return err
		}
		for i := range props {
			props[i].ID = uuid.Nil
			props[i].PositioningID = saved.ID
		}
		for i := range proofs {
			proofs[i].ID = uuid.Nil
			proofs[i].PositioningID = saved.ID
		}
		if len(props) > 0 {
			if err := tx.WithContext(dbc.Ctx).Create(&props).Error; err != nil {
				return err
			}
		}
		if len(proofs) > 0 {
			if err := tx.WithContext(dbc.Ctx).Create(&proofs).Error; err != nil {
				return err
			}
		}
		saved.ValuePropositions = props
		saved.ProofPoints = proofs
		out = saved
		return nil
	}
	var err error
	if dbc.Tx != nil {
		err = write(dbc.Tx)
	} else {
		err = r.db.WithContext(dbc.Ctx).Transaction(write)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *positioningRepo) GetByProfile(dbc dbctx.Context, profileID uuid.UUID) (*types.MarketPositioning, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.MarketPositioning
	if err := transaction.WithContext(dbc.Ctx).
		Preload("ValuePropositions").
		Preload("ProofPoints").
		Where("profile_id = ?", profileID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}
