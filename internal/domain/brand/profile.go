package brand

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BrandProfile is the ground-truth root. One per organization, created lazily
// on the first discovery run and never deleted by the pipeline.
type BrandProfile struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID    string         `gorm:"column:organization_id;not null;uniqueIndex" json:"organization_id"`
	BrandName         string         `gorm:"column:brand_name" json:"brand_name,omitempty"`
	WebsiteURL        string         `gorm:"column:website_url" json:"website_url,omitempty"`
	Industry          string         `gorm:"column:industry" json:"industry,omitempty"`
	CompletionScore   int            `gorm:"column:completion_score;not null;default:0" json:"completion_score"`
	EntityHealthScore int            `gorm:"column:entity_health_score;not null;default:0" json:"entity_health_score"`
	LastAgentCrawlAt  *time.Time     `gorm:"column:last_agent_crawl_at" json:"last_agent_crawl_at,omitempty"`
	LastAnalyzedAt    *time.Time     `gorm:"column:last_analyzed_at" json:"last_analyzed_at,omitempty"`
	CreatedAt         time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null;index" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (BrandProfile) TableName() string { return "brand_profile" }

func (p *BrandProfile) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
