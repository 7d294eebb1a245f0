package perception

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/brandlens-backend/internal/domain"
	"github.com/yungbote/brandlens-backend/internal/domain/perception"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
	errs "github.com/yungbote/brandlens-backend/internal/pkg/errors"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

type ScanRepo interface {
	Create(dbc dbctx.Context, scan *types.PerceptionScan) (*types.PerceptionScan, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.PerceptionScan, error)
	ListByProfile(dbc dbctx.Context, profileID uuid.UUID, limit int) ([]*types.PerceptionScan, error)
	// SetCompletedCount only ever raises completed_count.
	SetCompletedCount(dbc dbctx.Context, id uuid.UUID, completed int) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	MarkFailed(dbc dbctx.Context, id uuid.UUID, reason string) error
}

type scanRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScanRepo(db *gorm.DB, baseLog *logger.Logger) ScanRepo {
	return &scanRepo{db: db, log: baseLog.With("repo", "ScanRepo")}
}

func (r *scanRepo) Create(dbc dbctx.Context, scan *types.PerceptionScan) (*types.PerceptionScan, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if scan.Status == "" {
		scan.Status = perception.ScanRunning
	}
	if scan.StartedAt.IsZero() {
		scan.StartedAt = time.Now()
	}
	if err := transaction.WithContext(dbc.Ctx).Create(scan).Error; err != nil {
		return nil, err
	}
	return scan, nil
}

func (r *scanRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.PerceptionScan, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var s types.PerceptionScan
	err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("scan %s: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *scanRepo) ListByProfile(dbc dbctx.Context, profileID uuid.UUID, limit int) ([]*types.PerceptionScan, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 20
	}
	var out []*types.PerceptionScan
	if err := transaction.WithContext(dbc.Ctx).
		Where("profile_id = ?", profileID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *scanRepo) SetCompletedCount(dbc dbctx.Context, id uuid.UUID, completed int) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.PerceptionScan{}).
		Where("id = ? AND completed_count < ?", id, completed).
		Updates(map[string]interface{}{
			"completed_count": completed,
			"updated_at":      time.Now(),
		}).Error
}

func (r *scanRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now()
	return transaction.WithContext(dbc.Ctx).
		Model(&types.PerceptionScan{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *scanRepo) MarkFailed(dbc dbctx.Context, id uuid.UUID, reason string) error {
	now := time.Now()
	return r.UpdateFields(dbc, id, map[string]interface{}{
		"status":       perception.ScanFailed,
		"error":        reason,
		"completed_at": now,
	})
}
