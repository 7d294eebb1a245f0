package brand

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MarketPositioning is one per profile; value propositions and proof points
// are rewritten together with it.
type MarketPositioning struct {
	ID                       uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID                uuid.UUID          `gorm:"type:uuid;column:profile_id;not null;uniqueIndex" json:"profile_id"`
	PositioningStatement     string             `gorm:"column:positioning_statement" json:"positioning_statement"`
	TargetAudienceSummary    string             `gorm:"column:target_audience_summary" json:"target_audience_summary,omitempty"`
	CategoryDefinition       string             `gorm:"column:category_definition" json:"category_definition,omitempty"`
	PrimaryBenefit           string             `gorm:"column:primary_benefit" json:"primary_benefit,omitempty"`
	CompetitiveAlternative   string             `gorm:"column:competitive_alternative" json:"competitive_alternative,omitempty"`
	ReasonToBelieve          string             `gorm:"column:reason_to_believe" json:"reason_to_believe,omitempty"`
	CategoryPosition         string             `gorm:"column:category_position" json:"category_position"`
	PrimaryDifferentiator    string             `gorm:"column:primary_differentiator" json:"primary_differentiator,omitempty"`
	SecondaryDifferentiators datatypes.JSON     `gorm:"column:secondary_differentiators;type:jsonb" json:"secondary_differentiators"`
	ElevatorPitch            string             `gorm:"column:elevator_pitch" json:"elevator_pitch,omitempty"`
	PricingPosition          string             `gorm:"column:pricing_position" json:"pricing_position"`
	BeforeState              string             `gorm:"column:before_state" json:"before_state,omitempty"`
	AfterState               string             `gorm:"column:after_state" json:"after_state,omitempty"`
	Confidence               float64            `gorm:"column:confidence;not null;default:0" json:"confidence"`
	ValuePropositions        []ValueProposition `gorm:"foreignKey:PositioningID" json:"value_propositions,omitempty"`
	ProofPoints              []ProofPoint       `gorm:"foreignKey:PositioningID" json:"proof_points,omitempty"`
	CreatedAt                time.Time          `gorm:"not null" json:"created_at"`
	UpdatedAt                time.Time          `gorm:"not null" json:"updated_at"`
}

func (MarketPositioning) TableName() string { return "market_positioning" }

func (m *MarketPositioning) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

type ValueProposition struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PositioningID uuid.UUID `gorm:"type:uuid;column:positioning_id;not null;index" json:"positioning_id"`
	Headline      string    `gorm:"column:headline;not null" json:"headline"`
	Description   string    `gorm:"column:description" json:"description,omitempty"`
	Type          string    `gorm:"column:type" json:"type,omitempty"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
}

func (ValueProposition) TableName() string { return "value_proposition" }

func (v *ValueProposition) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

type ProofPoint struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PositioningID uuid.UUID `gorm:"type:uuid;column:positioning_id;not null;index" json:"positioning_id"`
	Type          string    `gorm:"column:type" json:"type,omitempty"`
	Title         string    `gorm:"column:title;not null" json:"title"`
	MetricValue   string    `gorm:"column:metric_value" json:"metric_value,omitempty"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
}

func (ProofPoint) TableName() string { return "proof_point" }

func (p *ProofPoint) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
