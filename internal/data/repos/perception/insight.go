package perception

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/brandlens-backend/internal/domain"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
	errs "github.com/yungbote/brandlens-backend/internal/pkg/errors"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

type InsightRepo interface {
	Create(dbc dbctx.Context, insights []*types.PerceptionInsight) ([]*types.PerceptionInsight, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.PerceptionInsight, error)
	ListByScan(dbc dbctx.Context, scanID uuid.UUID) ([]*types.PerceptionInsight, error)
	SetStatus(dbc dbctx.Context, id uuid.UUID, status string) error
}

type insightRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInsightRepo(db *gorm.DB, baseLog *logger.Logger) InsightRepo {
	return &insightRepo{db: db, log: baseLog.With("repo", "InsightRepo")}
}

func (r *insightRepo) Create(dbc dbctx.Context, insights []*types.PerceptionInsight) ([]*types.PerceptionInsight, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(insights) == 0 {
		return []*types.PerceptionInsight{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&insights).Error; err != nil {
		return nil, err
	}
	return insights, nil
}

func (r *insightRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.PerceptionInsight, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var in types.PerceptionInsight
	err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).First(&in).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("insight %s: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &in, nil
}

func (r *insightRepo) ListByScan(dbc dbctx.Context, scanID uuid.UUID) ([]*types.PerceptionInsight, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.PerceptionInsight
	if err := transaction.WithContext(dbc.Ctx).
		Where("scan_id = ?", scanID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *insightRepo) SetStatus(dbc dbctx.Context, id uuid.UUID, status string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.PerceptionInsight{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("insight %s: %w", id, errs.ErrNotFound)
	}
	return nil
}
