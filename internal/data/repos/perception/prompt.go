package perception

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/brandlens-backend/internal/domain"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

type PromptRepo interface {
	Create(dbc dbctx.Context, prompts []*types.GeneratedPrompt) ([]*types.GeneratedPrompt, error)
	// ListActive returns the profile's active prompts, highest priority first.
	ListActive(dbc dbctx.Context, profileID uuid.UUID) ([]*types.GeneratedPrompt, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.GeneratedPrompt, error)
	Deactivate(dbc dbctx.Context, profileID uuid.UUID) (int64, error)
}

type promptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPromptRepo(db *gorm.DB, baseLog *logger.Logger) PromptRepo {
	return &promptRepo{db: db, log: baseLog.With("repo", "PromptRepo")}
}

func (r *promptRepo) Create(dbc dbctx.Context, prompts []*types.GeneratedPrompt) ([]*types.GeneratedPrompt, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(prompts) == 0 {
		return []*types.GeneratedPrompt{}, nil
	}
	for _, p := range prompts {
		p.IsActive = true
	}
	if err := transaction.WithContext(dbc.Ctx).CreateInBatches(&prompts, 100).Error; err != nil {
		return nil, err
	}
	return prompts, nil
}

func (r *promptRepo) ListActive(dbc dbctx.Context, profileID uuid.UUID) ([]*types.GeneratedPrompt, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.GeneratedPrompt
	if err := transaction.WithContext(dbc.Ctx).
		Where("profile_id = ? AND is_active = ?", profileID, true).
		Order("priority DESC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *promptRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.GeneratedPrompt, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.GeneratedPrompt
	if len(ids) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *promptRepo) Deactivate(dbc dbctx.Context, profileID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.GeneratedPrompt{}).
		Where("profile_id = ? AND is_active = ?", profileID, true).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}
