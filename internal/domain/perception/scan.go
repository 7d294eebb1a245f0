package perception

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ScanRunning   = "running"
	ScanCompleted = "completed"
	ScanFailed    = "failed"
)

type Quadrant string

const (
	QuadrantDominant   Quadrant = "dominant"
	QuadrantVulnerable Quadrant = "vulnerable"
	QuadrantNiche      Quadrant = "niche"
	QuadrantInvisible  Quadrant = "invisible"
)

// PerceptionScan is one evaluation campaign. PromptCount and CompletedCount only grow.
type PerceptionScan struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID        uuid.UUID      `gorm:"type:uuid;column:profile_id;not null;index" json:"profile_id"`
	Status           string         `gorm:"column:status;not null;index" json:"status"`
	Platforms        datatypes.JSON `gorm:"column:platforms;type:jsonb" json:"platforms"`
	PromptCount      int            `gorm:"column:prompt_count;not null;default:0" json:"prompt_count"`
	CompletedCount   int            `gorm:"column:completed_count;not null;default:0" json:"completed_count"`
	OverallScore     *int           `gorm:"column:overall_score" json:"overall_score,omitempty"`
	PlatformScores   datatypes.JSON `gorm:"column:platform_scores;type:jsonb" json:"platform_scores"`
	CategoryScores   datatypes.JSON `gorm:"column:category_scores;type:jsonb" json:"category_scores"`
	MetricScores     datatypes.JSON `gorm:"column:metric_scores;type:jsonb" json:"metric_scores"`
	QuadrantPosition Quadrant       `gorm:"column:quadrant_position" json:"quadrant_position,omitempty"`
	Error            string         `gorm:"column:error" json:"error,omitempty"`
	StartedAt        time.Time      `gorm:"column:started_at;not null" json:"started_at"`
	CompletedAt      *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt        time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
}

func (PerceptionScan) TableName() string { return "perception_scan" }

func (s *PerceptionScan) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// PerceptionResult is one (prompt, platform) evaluation inside a scan.
type PerceptionResult struct {
	ID                   uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ScanID               uuid.UUID      `gorm:"type:uuid;column:scan_id;not null;index" json:"scan_id"`
	PromptID             uuid.UUID      `gorm:"type:uuid;column:prompt_id;not null;index" json:"prompt_id"`
	Platform             string         `gorm:"column:platform;not null" json:"platform"`
	Model                string         `gorm:"column:model" json:"model"`
	Response             string         `gorm:"column:response;type:text" json:"response"`
	ResponseTimeMs       int64          `gorm:"column:response_time_ms" json:"response_time_ms"`
	TokensUsed           int            `gorm:"column:tokens_used" json:"tokens_used,omitempty"`
	FaithfulnessScore    float64        `gorm:"column:faithfulness_score" json:"faithfulness_score"`
	ShareOfVoice         float64        `gorm:"column:share_of_voice" json:"share_of_voice"`
	Sentiment            float64        `gorm:"column:sentiment" json:"sentiment"`
	VoiceAlignment       float64        `gorm:"column:voice_alignment" json:"voice_alignment"`
	HallucinationScore   float64        `gorm:"column:hallucination_score" json:"hallucination_score"`
	OverallScore         int            `gorm:"column:overall_score" json:"overall_score"`
	BrandMentioned       bool           `gorm:"column:brand_mentioned;not null;default:false" json:"brand_mentioned"`
	BrandPosition        *int           `gorm:"column:brand_position" json:"brand_position,omitempty"`
	CompetitorsMentioned datatypes.JSON `gorm:"column:competitors_mentioned;type:jsonb" json:"competitors_mentioned"`
	CompetitorPositions  datatypes.JSON `gorm:"column:competitor_positions;type:jsonb" json:"competitor_positions"`
	Hallucinations       datatypes.JSON `gorm:"column:hallucinations;type:jsonb" json:"hallucinations"`
	FaithfulnessErrors   datatypes.JSON `gorm:"column:faithfulness_errors;type:jsonb" json:"faithfulness_errors"`
	AspectSentiments     datatypes.JSON `gorm:"column:aspect_sentiments;type:jsonb" json:"aspect_sentiments"`
	VoiceDeviations      datatypes.JSON `gorm:"column:voice_deviations;type:jsonb" json:"voice_deviations"`
	PassedTrapTest       *bool          `gorm:"column:passed_trap_test" json:"passed_trap_test,omitempty"`
	KeyThemes            datatypes.JSON `gorm:"column:key_themes;type:jsonb" json:"key_themes"`
	MissingInformation   datatypes.JSON `gorm:"column:missing_information;type:jsonb" json:"missing_information"`
	Opportunities        datatypes.JSON `gorm:"column:opportunities;type:jsonb" json:"opportunities"`
	Reasoning            datatypes.JSON `gorm:"column:reasoning;type:jsonb" json:"reasoning"`
	CreatedAt            time.Time      `gorm:"not null;index" json:"created_at"`
}

func (PerceptionResult) TableName() string { return "perception_result" }

func (r *PerceptionResult) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
