package brand

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/brandlens-backend/internal/data/dberr"
	types "github.com/yungbote/brandlens-backend/internal/domain"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
	errs "github.com/yungbote/brandlens-backend/internal/pkg/errors"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

type BrandProfileRepo interface {
	GetOrCreateByOrganization(dbc dbctx.Context, organizationID, websiteURL, brandName string) (*types.BrandProfile, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.BrandProfile, error)
	UpdateScores(dbc dbctx.Context, id uuid.UUID, completion, entityHealth int, analyzedAt time.Time) error
	MarkCrawled(dbc dbctx.Context, id uuid.UUID, at time.Time) error
	SetIndustry(dbc dbctx.Context, id uuid.UUID, industry string) error
}

type brandProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBrandProfileRepo(db *gorm.DB, baseLog *logger.Logger) BrandProfileRepo {
	return &brandProfileRepo{
		db:  db,
		log: baseLog.With("repo", "BrandProfileRepo"),
	}
}

// GetOrCreateByOrganization returns the organization's profile, creating it
// when absent. A concurrent creator that wins the insert is read back instead
// of surfacing the unique violation.
func (r *brandProfileRepo) GetOrCreateByOrganization(dbc dbctx.Context, organizationID, websiteURL, brandName string) (*types.BrandProfile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	organizationID = strings.TrimSpace(organizationID)
	if organizationID == "" {
		return nil, fmt.Errorf("organization id: %w", errs.ErrInvalidArgument)
	}
	var p types.BrandProfile
	err := transaction.WithContext(dbc.Ctx).
		Where("organization_id = ?", organizationID).
		First(&p).Error
	if err == nil {
		return r.refresh(dbc, transaction, &p, websiteURL, brandName)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return r.create(dbc, transaction, organizationID, websiteURL, brandName)
}

func (r *brandProfileRepo) create(dbc dbctx.Context, transaction *gorm.DB, organizationID, websiteURL, brandName string) (*types.BrandProfile, error) {
	p := types.BrandProfile{
		OrganizationID: organizationID,
		WebsiteURL:     websiteURL,
		BrandName:      brandName,
	}
	res := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "organization_id"}},
			DoNothing: true,
		}).
		Create(&p)
	if res.Error != nil && !dberr.IsUniqueViolation(res.Error) {
		return nil, res.Error
	}
	if res.Error == nil && res.RowsAffected == 1 {
		r.log.Info("Created brand profile", "profile_id", p.ID, "organization_id", organizationID)
		return &p, nil
	}

	r.log.Debug("Brand profile created concurrently; reloading", "organization_id", organizationID)
	var existing types.BrandProfile
	if err := transaction.WithContext(dbc.Ctx).
		Where("organization_id = ?", organizationID).
		First(&existing).Error; err != nil {
		return nil, fmt.Errorf("reload brand profile %s: %w", organizationID, err)
	}
	return r.refresh(dbc, transaction, &existing, websiteURL, brandName)
}

// refresh applies a non-empty website URL or brand name that differs from
// the stored one.
func (r *brandProfileRepo) refresh(dbc dbctx.Context, transaction *gorm.DB, p *types.BrandProfile, websiteURL, brandName string) (*types.BrandProfile, error) {
	updates := map[string]interface{}{}
	if websiteURL != "" && websiteURL != p.WebsiteURL {
		updates["website_url"] = websiteURL
		p.WebsiteURL = websiteURL
	}
	if brandName != "" && brandName != p.BrandName {
		updates["brand_name"] = brandName
		p.BrandName = brandName
	}
	if len(updates) == 0 {
		return p, nil
	}
	updates["updated_at"] = time.Now()
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.BrandProfile{}).
		Where("id = ?", p.ID).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (r *brandProfileRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.BrandProfile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var p types.BrandProfile
	err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("brand profile %s: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *brandProfileRepo) UpdateScores(dbc dbctx.Context, id uuid.UUID, completion, entityHealth int, analyzedAt time.Time) error {
	return r.update(dbc, id, map[string]interface{}{
		"completion_score":    completion,
		"entity_health_score": entityHealth,
		"last_analyzed_at":    analyzedAt,
	})
}

func (r *brandProfileRepo) MarkCrawled(dbc dbctx.Context, id uuid.UUID, at time.Time) error {
	return r.update(dbc, id, map[string]interface{}{"last_agent_crawl_at": at})
}

func (r *brandProfileRepo) SetIndustry(dbc dbctx.Context, id uuid.UUID, industry string) error {
	return r.update(dbc, id, map[string]interface{}{"industry": strings.TrimSpace(industry)})
}

func (r *brandProfileRepo) update(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	updates["updated_at"] = time.Now()
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.BrandProfile{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("brand profile %s: %w", id, errs.ErrNotFound)
	}
	return nil
}
