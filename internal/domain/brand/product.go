package brand

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProductCategory struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID    uuid.UUID `gorm:"type:uuid;column:profile_id;not null;uniqueIndex:idx_category_profile_slug" json:"profile_id"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	Slug         string    `gorm:"column:slug;not null;uniqueIndex:idx_category_profile_slug" json:"slug"`
	ParentSlug   string    `gorm:"column:parent_slug" json:"parent_slug,omitempty"`
	Level        int       `gorm:"column:level;not null;default:0" json:"level"`
	ProductCount int       `gorm:"column:product_count;not null;default:0" json:"product_count"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (ProductCategory) TableName() string { return "product_category" }

func (c *ProductCategory) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type PricingTier struct {
	Name          string   `json:"name"`
	Price         *float64 `json:"price"`
	Currency      string   `json:"currency"`
	BillingPeriod string   `json:"billingPeriod"`
	Features      []string `json:"features"`
}

// Product is upserted by (profile, slug) so re-running discovery updates rows in place.
type Product struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID        uuid.UUID      `gorm:"type:uuid;column:profile_id;not null;uniqueIndex:idx_product_profile_slug" json:"profile_id"`
	CategoryID       *uuid.UUID     `gorm:"type:uuid;column:category_id;index" json:"category_id,omitempty"`
	Name             string         `gorm:"column:name;not null" json:"name"`
	Slug             string         `gorm:"column:slug;not null;uniqueIndex:idx_product_profile_slug" json:"slug"`
	Description      string         `gorm:"column:description" json:"description,omitempty"`
	ShortDescription string         `gorm:"column:short_description" json:"short_description,omitempty"`
	Category         string         `gorm:"column:category" json:"category,omitempty"`
	Subcategory      string         `gorm:"column:subcategory" json:"subcategory,omitempty"`
	Features         datatypes.JSON `gorm:"column:features;type:jsonb" json:"features"`
	Benefits         datatypes.JSON `gorm:"column:benefits;type:jsonb" json:"benefits"`
	UseCases         datatypes.JSON `gorm:"column:use_cases;type:jsonb" json:"use_cases"`
	TargetAudience   datatypes.JSON `gorm:"column:target_audience;type:jsonb" json:"target_audience"`
	PricingModel     string         `gorm:"column:pricing_model" json:"pricing_model,omitempty"`
	PricingTiers     datatypes.JSON `gorm:"column:pricing_tiers;type:jsonb" json:"pricing_tiers"`
	SchemaJSON       datatypes.JSON `gorm:"column:schema_json;type:jsonb" json:"schema_json"`
	SourceURL        string         `gorm:"column:source_url" json:"source_url,omitempty"`
	IsHero           bool           `gorm:"column:is_hero;not null;default:false" json:"is_hero"`
	Confidence       float64        `gorm:"column:confidence;not null;default:0" json:"confidence"`
	CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
}

func (Product) TableName() string { return "product" }

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
