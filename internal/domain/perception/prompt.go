package perception

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Category string

const (
	CategoryNavigational Category = "navigational"
	CategoryFunctional   Category = "functional"
	CategoryComparative  Category = "comparative"
	CategoryVoice        Category = "voice"
	CategoryAdversarial  Category = "adversarial"
)

// AllCategories is the canonical category order.
var AllCategories = []Category{
	CategoryNavigational,
	CategoryFunctional,
	CategoryComparative,
	CategoryVoice,
	CategoryAdversarial,
}

func (c Category) Valid() bool {
	for _, v := range AllCategories {
		if c == v {
			return true
		}
	}
	return false
}

// GeneratedPrompt is immutable once created.
type GeneratedPrompt struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID           uuid.UUID      `gorm:"type:uuid;column:profile_id;not null;index" json:"profile_id"`
	Category            Category       `gorm:"column:category;not null;index" json:"category"`
	CategoryLabel       string         `gorm:"column:category_label" json:"category_label"`
	Intent              string         `gorm:"column:intent" json:"intent"`
	Template            string         `gorm:"column:template" json:"template"`
	RenderedPrompt      string         `gorm:"column:rendered_prompt;not null" json:"rendered_prompt"`
	ExpectedThemes      datatypes.JSON `gorm:"column:expected_themes;type:jsonb" json:"expected_themes"`
	ExpectedEntities    datatypes.JSON `gorm:"column:expected_entities;type:jsonb" json:"expected_entities"`
	ExpectedCitations   bool           `gorm:"column:expected_citations;not null;default:false" json:"expected_citations"`
	AdversarialTwist    string         `gorm:"column:adversarial_twist" json:"adversarial_twist,omitempty"`
	HallucinationTest   bool           `gorm:"column:hallucination_test;not null;default:false" json:"hallucination_test"`
	Priority            int            `gorm:"column:priority;not null;default:0;index" json:"priority"`
	IsCustom            bool           `gorm:"column:is_custom;not null;default:false" json:"is_custom"`
	IsActive            bool           `gorm:"column:is_active;not null;default:true;index" json:"is_active"`
	TargetPersona       string         `gorm:"column:target_persona" json:"target_persona,omitempty"`
	TargetCompetitor    string         `gorm:"column:target_competitor" json:"target_competitor,omitempty"`
	TargetClaim         string         `gorm:"column:target_claim" json:"target_claim,omitempty"`
	TargetProduct       string         `gorm:"column:target_product" json:"target_product,omitempty"`
	TargetReviewWebsite string         `gorm:"column:target_review_website" json:"target_review_website,omitempty"`
	ExpectedTone        string         `gorm:"column:expected_tone" json:"expected_tone,omitempty"`
	ExpectedVocabulary  string         `gorm:"column:expected_vocabulary" json:"expected_vocabulary,omitempty"`
	CreatedAt           time.Time      `gorm:"not null;index" json:"created_at"`
}

func (GeneratedPrompt) TableName() string { return "generated_prompt" }

func (p *GeneratedPrompt) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
