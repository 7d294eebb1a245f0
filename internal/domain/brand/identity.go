package brand

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Personality is the five-score Aaker model stored on the identity prism.
type Personality struct {
	Sincerity      int `json:"sincerity"`
	Excitement     int `json:"excitement"`
	Competence     int `json:"competence"`
	Sophistication int `json:"sophistication"`
	Ruggedness     int `json:"ruggedness"`
}

// BrandIdentityPrism is the six-facet Kapferer model: physique, personality,
// culture, relationship, reflection and self-image.
type BrandIdentityPrism struct {
	ID                       uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID                uuid.UUID      `gorm:"type:uuid;column:profile_id;not null;uniqueIndex" json:"profile_id"`
	PhysiqueAttributes       datatypes.JSON `gorm:"column:physique_attributes;type:jsonb" json:"physique_attributes"`
	PhysiqueDescription      string         `gorm:"column:physique_description" json:"physique_description,omitempty"`
	PersonalityScores        datatypes.JSON `gorm:"column:personality_scores;type:jsonb" json:"personality_scores"`
	PersonalityTraits        datatypes.JSON `gorm:"column:personality_traits;type:jsonb" json:"personality_traits"`
	CultureValues            datatypes.JSON `gorm:"column:culture_values;type:jsonb" json:"culture_values"`
	CultureDescription       string         `gorm:"column:culture_description" json:"culture_description,omitempty"`
	RelationshipType         string         `gorm:"column:relationship_type" json:"relationship_type,omitempty"`
	RelationshipDescription  string         `gorm:"column:relationship_description" json:"relationship_description,omitempty"`
	ReflectionDemographics   string         `gorm:"column:reflection_demographics" json:"reflection_demographics,omitempty"`
	ReflectionPsychographics string         `gorm:"column:reflection_psychographics" json:"reflection_psychographics,omitempty"`
	ReflectionLifestyle      string         `gorm:"column:reflection_lifestyle" json:"reflection_lifestyle,omitempty"`
	SelfImage                string         `gorm:"column:self_image" json:"self_image,omitempty"`
	InferredByAgent          bool           `gorm:"column:inferred_by_agent;not null;default:false" json:"inferred_by_agent"`
	Confidence               float64        `gorm:"column:confidence;not null;default:0" json:"confidence"`
	CreatedAt                time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt                time.Time      `gorm:"not null" json:"updated_at"`
}

func (BrandIdentityPrism) TableName() string { return "brand_identity_prism" }

func (p *BrandIdentityPrism) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type BrandArchetype struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID          uuid.UUID      `gorm:"type:uuid;column:profile_id;not null;uniqueIndex" json:"profile_id"`
	PrimaryArchetype   string         `gorm:"column:primary_archetype" json:"primary_archetype"`
	PrimaryScore       int            `gorm:"column:primary_score" json:"primary_score"`
	SecondaryArchetype string         `gorm:"column:secondary_archetype" json:"secondary_archetype,omitempty"`
	SecondaryScore     int            `gorm:"column:secondary_score" json:"secondary_score,omitempty"`
	ArchetypeScores    datatypes.JSON `gorm:"column:archetype_scores;type:jsonb" json:"archetype_scores"`
	ExpectedTone       datatypes.JSON `gorm:"column:expected_tone;type:jsonb" json:"expected_tone"`
	ContentDepth       string         `gorm:"column:content_depth" json:"content_depth"`
	UseCitations       bool           `gorm:"column:use_citations;not null;default:false" json:"use_citations"`
	HumorLevel         string         `gorm:"column:humor_level" json:"humor_level"`
	InferredByAgent    bool           `gorm:"column:inferred_by_agent;not null;default:false" json:"inferred_by_agent"`
	Confidence         float64        `gorm:"column:confidence;not null;default:0" json:"confidence"`
	CreatedAt          time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null" json:"updated_at"`
}

func (BrandArchetype) TableName() string { return "brand_archetype" }

func (a *BrandArchetype) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// BrandVoiceProfile stores four 1-10 tone spectrums plus vocabulary guidance.
type BrandVoiceProfile struct {
	ID                       uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID                uuid.UUID      `gorm:"type:uuid;column:profile_id;not null;uniqueIndex" json:"profile_id"`
	FormalCasual             int            `gorm:"column:formal_casual" json:"formal_casual"`
	SeriousPlayful           int            `gorm:"column:serious_playful" json:"serious_playful"`
	RespectfulIrreverent     int            `gorm:"column:respectful_irreverent" json:"respectful_irreverent"`
	EnthusiasticMatterOfFact int            `gorm:"column:enthusiastic_matter_of_fact" json:"enthusiastic_matter_of_fact"`
	PrimaryTone              string         `gorm:"column:primary_tone" json:"primary_tone"`
	SecondaryTones           datatypes.JSON `gorm:"column:secondary_tones;type:jsonb" json:"secondary_tones"`
	VocabularyLevel          string         `gorm:"column:vocabulary_level" json:"vocabulary_level"`
	SentenceStyle            string         `gorm:"column:sentence_style" json:"sentence_style"`
	ApprovedPhrases          datatypes.JSON `gorm:"column:approved_phrases;type:jsonb" json:"approved_phrases"`
	BannedPhrases            datatypes.JSON `gorm:"column:banned_phrases;type:jsonb" json:"banned_phrases"`
	VoiceSamples             datatypes.JSON `gorm:"column:voice_samples;type:jsonb" json:"voice_samples"`
	InferredByAgent          bool           `gorm:"column:inferred_by_agent;not null;default:false" json:"inferred_by_agent"`
	Confidence               float64        `gorm:"column:confidence;not null;default:0" json:"confidence"`
	CreatedAt                time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt                time.Time      `gorm:"not null" json:"updated_at"`
}

func (BrandVoiceProfile) TableName() string { return "brand_voice_profile" }

func (v *BrandVoiceProfile) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
