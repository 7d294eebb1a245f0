package brand

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/brandlens-backend/internal/domain"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

// ClaimRepo holds the locked marketing claims a brand wants verified.
type ClaimRepo interface {
	ReplaceAll(dbc dbctx.Context, profileID uuid.UUID, claims []*types.Claim) ([]*types.Claim, error)
	ListByProfile(dbc dbctx.Context, profileID uuid.UUID) ([]*types.Claim, error)
}

type claimRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClaimRepo(db *gorm.DB, baseLog *logger.Logger) ClaimRepo {
	return &claimRepo{db: db, log: baseLog.With("repo", "ClaimRepo")}
}

func (r *claimRepo) ReplaceAll(dbc dbctx.Context, profileID uuid.UUID, claims []*types.Claim) ([]*types.Claim, error) {
	kept := make([]*types.Claim, 0, len(claims))
	for _, c := range claims {
		if c == nil || strings.TrimSpace(c.ClaimText) == "" {
			continue
		}
		c.ID = uuid.Nil
		c.ProfileID = profileID
		c.ClaimText = strings.TrimSpace(c.ClaimText)
		kept = append(kept, c)
	}
	replace := func(tx *gorm.DB) error {
		if err := tx.WithContext(dbc.Ctx).Where("profile_id = ?", profileID).Delete(&types.Claim{}).Error; err != nil {
			return err
		}
		if len(kept) == 0 {
			return nil
		}
		return tx.WithContext(dbc.Ctx).Create(&kept).Error
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
	return kept, nil
}

func (r *claimRepo) ListByProfile(dbc dbctx.Context, profileID uuid.UUID) ([]*types.Claim, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Claim
	if err := transaction.WithContext(dbc.Ctx).
		Where("profile_id = ?", profileID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type RiskFactorsRepo interface {
	Upsert(dbc dbctx.Context, risk *types.RiskFactors) (*types.RiskFactors, error)
	GetByProfile(dbc dbctx.Context, profileID uuid.UUID) (*types.RiskFactors, error)
}

type riskFactorsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRiskFactorsRepo(db *gorm.DB, baseLog *logger.Logger) RiskFactorsRepo {
	return &riskFactorsRepo{db: db, log: baseLog.With("repo", "RiskFactorsRepo")}
}

func (r *riskFactorsRepo) Upsert(dbc dbctx.Context, risk *types.RiskFactors) (*types.RiskFactors, error) {
	return upsertByProfile(dbc, r.db, risk, risk.ProfileID)
}

func (r *riskFactorsRepo) GetByProfile(dbc dbctx.Context, profileID uuid.UUID) (*types.RiskFactors, error) {
	return findByProfile[types.RiskFactors](dbc, r.db, profileID)
}
