package brand

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/brandlens-backend/internal/domain"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

type CompetitorRepo interface {
	UpsertGraph(dbc dbctx.Context, graph *types.CompetitorGraph) (*types.CompetitorGraph, error)
	// ReplaceCompetitors swaps the full competitor set of a graph in one transaction.
	ReplaceCompetitors(dbc dbctx.Context, graphID uuid.UUID, competitors []*types.Competitor) ([]*types.Competitor, error)
	GetGraph(dbc dbctx.Context, profileID uuid.UUID) (*types.CompetitorGraph, error)
	ListByProfile(dbc dbctx.Context, profileID uuid.UUID) ([]*types.Competitor, error)
}

type competitorRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCompetitorRepo(db *gorm.DB, baseLog *logger.Logger) CompetitorRepo {
	return &competitorRepo{db: db, log: baseLog.With("repo", "CompetitorRepo")}
}

func (r *competitorRepo) UpsertGraph(dbc dbctx.Context, graph *types.CompetitorGraph) (*types.CompetitorGraph, error) {
	return upsertByProfile(dbc, r.db, graph, graph.ProfileID)
}

func (r *competitorRepo) ReplaceCompetitors(dbc dbctx.Context, graphID uuid.UUID, competitors []*types.Competitor) ([]*types.Competitor, error) {
	replace := func(tx *gorm.DB) error {
		if err := tx.WithContext(dbc.Ctx).
			Where("graph_id = ?", graphID).
			Delete(&types.Competitor{}).Error; err != nil {
			return err
		}
		if len(competitors) == 0 {
			return nil
		}
		for _, c := range competitors {
			c.GraphID = graphID
		}
		return tx.WithContext(dbc.Ctx).Create(&competitors).Error
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
	if competitors == nil {
		competitors = []*types.Competitor{}
	}
	return competitors, nil
}

func (r *competitorRepo) GetGraph(dbc dbctx.Context, profileID uuid.UUID) (*types.CompetitorGraph, error) {
	return findByProfile[types.CompetitorGraph](dbc, r.db, profileID)
}

func (r *competitorRepo) ListByProfile(dbc dbctx.Context, profileID uuid.UUID) ([]*types.Competitor, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Competitor
	graphs := transaction.WithContext(dbc.Ctx).
		Model(&types.CompetitorGraph{}).
		Select("id").
		Where("profile_id = ?", profileID)
	if err := transaction.WithContext(dbc.Ctx).
		Where("graph_id IN (?)", graphs).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
