package perception

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/brandlens-backend/internal/domain"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

type ResultRepo interface {
	Create(dbc dbctx.Context, result *types.PerceptionResult) (*types.PerceptionResult, error)
	ListByScan(dbc dbctx.Context, scanID uuid.UUID) ([]*types.PerceptionResult, error)
}

type resultRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResultRepo(db *gorm.DB, baseLog *logger.Logger) ResultRepo {
	return &resultRepo{db: db, log: baseLog.With("repo", "ResultRepo")}
}

func (r *resultRepo) Create(dbc dbctx.Context, result *types.PerceptionResult) (*types.PerceptionResult, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func (r *resultRepo) ListByScan(dbc dbctx.Context, scanID uuid.UUID) ([]*types.PerceptionResult, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.PerceptionResult
	if err := transaction.WithContext(dbc.Ctx).
		Where("scan_id = ?", scanID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
