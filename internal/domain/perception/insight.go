package perception

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	InsightHallucination       = "hallucination"
	InsightAccuracy            = "accuracy"
	InsightMissingInfo         = "missing_info"
	InsightVisibility          = "visibility"
	InsightSentiment           = "sentiment"
	InsightVoice               = "voice"
	InsightCompetitive         = "competitive"
	InsightCompetitorConfusion = "competitor_confusion"

	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityLow      = "low"

	InsightOpen       = "open"
	InsightInProgress = "in_progress"
	InsightResolved   = "resolved"
	InsightDismissed  = "dismissed"
)

// PerceptionInsight is derived from one scan's aggregates. Older insights are
// left in place when a new scan runs.
type PerceptionInsight struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID          uuid.UUID      `gorm:"type:uuid;column:profile_id;not null;index" json:"profile_id"`
	ScanID             uuid.UUID      `gorm:"type:uuid;column:scan_id;not null;index" json:"scan_id"`
	Category           string         `gorm:"column:category;not null" json:"category"`
	Priority           string         `gorm:"column:priority;not null" json:"priority"`
	Title              string         `gorm:"column:title;not null" json:"title"`
	Description        string         `gorm:"column:description" json:"description"`
	Impact             string         `gorm:"column:impact" json:"impact"`
	Recommendation     string         `gorm:"column:recommendation" json:"recommendation"`
	Effort             string         `gorm:"column:effort" json:"effort"`
	Platforms          datatypes.JSON `gorm:"column:platforms;type:jsonb" json:"platforms"`
	AffectedCategories datatypes.JSON `gorm:"column:affected_categories;type:jsonb" json:"affected_categories"`
	CurrentValue       float64        `gorm:"column:current_value" json:"current_value"`
	TargetValue        float64        `gorm:"column:target_value" json:"target_value"`
	Unit               string         `gorm:"column:unit" json:"unit"`
	Status             string         `gorm:"column:status;not null;default:'open'" json:"status"`
	CreatedAt          time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null" json:"updated_at"`
}

func (PerceptionInsight) TableName() string { return "perception_insight" }

func (i *PerceptionInsight) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
