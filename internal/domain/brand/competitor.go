package brand

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	CompetitorDirect       = "direct"
	CompetitorIndirect     = "indirect"
	CompetitorAspirational = "aspirational"

	ThreatCritical = "critical"
	ThreatHigh     = "high"
	ThreatMedium   = "medium"
	ThreatLow      = "low"

	PositionLeader     = "leader"
	PositionChallenger = "challenger"
	PositionNiche      = "niche"
	PositionEmerging   = "emerging"
)

// CompetitorGraph is one per profile. Its competitors are replaced wholesale
// on every discovery run.
type CompetitorGraph struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID       uuid.UUID      `gorm:"type:uuid;column:profile_id;not null;uniqueIndex" json:"profile_id"`
	MarketPosition  string         `gorm:"column:market_position" json:"market_position"`
	Differentiators datatypes.JSON `gorm:"column:differentiators;type:jsonb" json:"differentiators"`
	DiscoverySource string         `gorm:"column:discovery_source" json:"discovery_source"`
	LastCrawled     *time.Time     `gorm:"column:last_crawled" json:"last_crawled,omitempty"`
	Competitors     []Competitor   `gorm:"foreignKey:GraphID" json:"competitors,omitempty"`
	CreatedAt       time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null" json:"updated_at"`
}

func (CompetitorGraph) TableName() string { return "competitor_graph" }

func (g *CompetitorGraph) BeforeCreate(*gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

type Competitor struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	GraphID        uuid.UUID      `gorm:"type:uuid;column:graph_id;not null;index" json:"graph_id"`
	Name           string         `gorm:"column:name;not null" json:"name"`
	Website        string         `gorm:"column:website" json:"website,omitempty"`
	Description    string         `gorm:"column:description" json:"description,omitempty"`
	CompetitorType string         `gorm:"column:competitor_type;not null" json:"competitor_type"`
	ThreatLevel    string         `gorm:"column:threat_level;not null" json:"threat_level"`
	MarketPosition string         `gorm:"column:market_position" json:"market_position,omitempty"`
	PricingTier    string         `gorm:"column:pricing_tier" json:"pricing_tier,omitempty"`
	Strengths      datatypes.JSON `gorm:"column:strengths;type:jsonb" json:"strengths"`
	Weaknesses     datatypes.JSON `gorm:"column:weaknesses;type:jsonb" json:"weaknesses"`
	Rationale      string         `gorm:"column:rationale" json:"rationale,omitempty"`
	DiscoveredBy   string         `gorm:"column:discovered_by" json:"discovered_by"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
}

func (Competitor) TableName() string { return "competitor" }

func (c *Competitor) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
