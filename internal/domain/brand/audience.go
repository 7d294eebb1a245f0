package brand

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	PersonaPrimary   = "primary"
	PersonaSecondary = "secondary"
	PersonaTertiary  = "tertiary"
	PersonaAnti      = "anti"
)

// PersonaTypeForPriority maps the 1/2/3 priority an extractor assigns to a persona type.
func PersonaTypeForPriority(priority int) string {
	switch priority {
	case 1:
		return PersonaPrimary
	case 3:
		return PersonaTertiary
	default:
		return PersonaSecondary
	}
}

// TargetAudience is the market-level audience summary. One per profile.
type TargetAudience struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID         uuid.UUID      `gorm:"type:uuid;column:profile_id;not null;uniqueIndex" json:"profile_id"`
	PrimaryMarket     string         `gorm:"column:primary_market" json:"primary_market"`
	GeographicFocus   datatypes.JSON `gorm:"column:geographic_focus;type:jsonb" json:"geographic_focus"`
	TargetIndustries  datatypes.JSON `gorm:"column:target_industries;type:jsonb" json:"target_industries"`
	TargetCompanySize datatypes.JSON `gorm:"column:target_company_size;type:jsonb" json:"target_company_size"`
	TargetJobTitles   datatypes.JSON `gorm:"column:target_job_titles;type:jsonb" json:"target_job_titles"`
	TargetDepartments datatypes.JSON `gorm:"column:target_departments;type:jsonb" json:"target_departments"`
	AgeRange          string         `gorm:"column:age_range" json:"age_range,omitempty"`
	IncomeLevel       string         `gorm:"column:income_level" json:"income_level,omitempty"`
	Confidence        float64        `gorm:"column:confidence;not null;default:0" json:"confidence"`
	CreatedAt         time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null" json:"updated_at"`
}

func (TargetAudience) TableName() string { return "target_audience" }

func (a *TargetAudience) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// CustomerPersona rows are appended across discovery runs unless the
// discovery persona policy says to replace them.
type CustomerPersona struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID          uuid.UUID      `gorm:"type:uuid;column:profile_id;not null;index" json:"profile_id"`
	Name               string         `gorm:"column:name;not null" json:"name"`
	Title              string         `gorm:"column:title" json:"title,omitempty"`
	Archetype          string         `gorm:"column:archetype" json:"archetype,omitempty"`
	PersonaType        string         `gorm:"column:persona_type;not null;default:'secondary'" json:"persona_type"`
	Priority           int            `gorm:"column:priority;not null;default:2" json:"priority"`
	Description        string         `gorm:"column:description" json:"description,omitempty"`
	Demographics       datatypes.JSON `gorm:"column:demographics;type:jsonb" json:"demographics"`
	Personality        string         `gorm:"column:personality" json:"personality,omitempty"`
	Values             datatypes.JSON `gorm:"column:persona_values;type:jsonb" json:"values"`
	Motivations        datatypes.JSON `gorm:"column:motivations;type:jsonb" json:"motivations"`
	Frustrations       datatypes.JSON `gorm:"column:frustrations;type:jsonb" json:"frustrations"`
	Goals              datatypes.JSON `gorm:"column:goals;type:jsonb" json:"goals"`
	BuyingRole         string         `gorm:"column:buying_role" json:"buying_role,omitempty"`
	BuyingCriteria     datatypes.JSON `gorm:"column:buying_criteria;type:jsonb" json:"buying_criteria"`
	BuyingTimeline     string         `gorm:"column:buying_timeline" json:"buying_timeline,omitempty"`
	InformationSources datatypes.JSON `gorm:"column:information_sources;type:jsonb" json:"information_sources"`
	CurrentSolution    string         `gorm:"column:current_solution" json:"current_solution,omitempty"`
	Objections         datatypes.JSON `gorm:"column:objections;type:jsonb" json:"objections"`
	KeyMessages        datatypes.JSON `gorm:"column:key_messages;type:jsonb" json:"key_messages"`
	CommonQuestions    datatypes.JSON `gorm:"column:common_questions;type:jsonb" json:"common_questions"`
	Confidence         float64        `gorm:"column:confidence;not null;default:0" json:"confidence"`
	PainPoints         []PainPoint    `gorm:"foreignKey:PersonaID" json:"pain_points,omitempty"`
	CreatedAt          time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null" json:"updated_at"`
}

func (CustomerPersona) TableName() string { return "customer_persona" }

func (p *CustomerPersona) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type PainPoint struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PersonaID   uuid.UUID `gorm:"type:uuid;column:persona_id;not null;index" json:"persona_id"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Description string    `gorm:"column:description" json:"description,omitempty"`
	Severity    string    `gorm:"column:severity" json:"severity,omitempty"`
	Category    string    `gorm:"column:category" json:"category,omitempty"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

func (PainPoint) TableName() string { return "pain_point" }

func (p *PainPoint) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
