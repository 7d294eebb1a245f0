package perception

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/brandlens-backend/internal/domain"
	"github.com/yungbote/brandlens-backend/internal/domain/perception"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
	errs "github.com/yungbote/brandlens-backend/internal/pkg/errors"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

type CorrectionFilter struct {
	Status      perception.CorrectionStatus
	ProblemType string
	Limit       int
	Offset      int
}

type CorrectionRepo interface {
	Create(dbc dbctx.Context, corrections []*types.Correction) ([]*types.Correction, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Correction, error)
	List(dbc dbctx.Context, profileID uuid.UUID, f CorrectionFilter) ([]*types.Correction, error)
	// Transition moves a correction one step through its state machine under a row lock.
	Transition(dbc dbctx.Context, id uuid.UUID, to perception.CorrectionStatus, notes string) (*types.Correction, error)
	SetPostFixScore(dbc dbctx.Context, id uuid.UUID, score float64) error
	// Funnel returns a count for every status, zero included.
	Funnel(dbc dbctx.Context, profileID uuid.UUID) (map[perception.CorrectionStatus]int64, error)
}

type correctionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCorrectionRepo(db *gorm.DB, baseLog *logger.Logger) CorrectionRepo {
	return &correctionRepo{db: db, log: baseLog.With("repo", "CorrectionRepo")}
}

func (r *correctionRepo) Create(dbc dbctx.Context, corrections []*types.Correction) ([]*types.Correction, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(corrections) == 0 {
		return []*types.Correction{}, nil
	}
	for _, c := range corrections {
		if c.Status == "" {
			c.Status = perception.CorrectionSuggested
		}
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&corrections).Error; err != nil {
		return nil, err
	}
	return corrections, nil
}

func (r *correctionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Correction, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var c types.Correction
	err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("correction %s: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *correctionRepo) List(dbc dbctx.Context, profileID uuid.UUID, f CorrectionFilter) ([]*types.Correction, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).Where("profile_id = ?", profileID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ProblemType != "" {
		q = q.Where("problem_type = ?", f.ProblemType)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	var out []*types.Correction
	if err := q.Order("created_at DESC").
		Limit(limit).
		Offset(f.Offset).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *correctionRepo) Transition(dbc dbctx.Context, id uuid.UUID, to perception.CorrectionStatus, notes string) (*types.Correction, error) {
	var out types.Correction
	move := func(tx *gorm.DB) error {
		q := tx.WithContext(dbc.Ctx)
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.Where("id = ?", id).First(&out).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("correction %s: %w", id, errs.ErrNotFound)
			}
			return err
		}
		if !perception.CanTransition(out.Status, to) {
			return fmt.Errorf("correction %s: %s -> %s: %w", id, out.Status, to, errs.ErrInvalidTransition)
		}
		now := time.Now()
		updates := map[string]interface{}{
			"status":     to,
			"updated_at": now,
		}
		switch to {
		case perception.CorrectionApproved:
			updates["approved_at"] = now
		case perception.CorrectionImplemented:
			updates["implemented_at"] = now
		case perception.CorrectionVerified:
			updates["verified_at"] = now
		case perception.CorrectionDismissed:
			updates["dismissed_at"] = now
		}
		if notes != "" {
			updates["notes"] = notes
		}
		if err := tx.WithContext(dbc.Ctx).
			Model(&types.Correction{}).
			Where("id = ?", id).
			Updates(updates).Error; err != nil {
			return err
		}
		return tx.WithContext(dbc.Ctx).Where("id = ?", id).First(&out).Error
	}
	var err error
	if dbc.Tx != nil {
		err = move(dbc.Tx)
	} else {
		err = r.db.WithContext(dbc.Ctx).Transaction(move)
	}
	if err != nil {
		return nil, err
	}
	r.log.Info("Correction transitioned", "correction_id", id, "to", to)
	return &out, nil
}

func (r *correctionRepo) SetPostFixScore(dbc dbctx.Context, id uuid.UUID, score float64) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Correction{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"post_fix_score": score, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("correction %s: %w", id, errs.ErrNotFound)
	}
	return nil
}

func (r *correctionRepo) Funnel(dbc dbctx.Context, profileID uuid.UUID) (map[perception.CorrectionStatus]int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []struct {
		Status string
		Count  int64
	}
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Correction{}).
		Select("status, COUNT(*) AS count").
		Where("profile_id = ?", profileID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[perception.CorrectionStatus]int64, len(perception.CorrectionStatuses))
	for _, s := range perception.CorrectionStatuses {
		out[s] = 0
	}
	for _, row := range rows {
		out[perception.CorrectionStatus(row.Status)] = row.Count
	}
	return out, nil
}
