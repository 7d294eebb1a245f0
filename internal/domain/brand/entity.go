package brand

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EntityHome holds the canonical URL and the brand's profile links.
// Written by the crawl stage only.
type EntityHome struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID        uuid.UUID      `gorm:"type:uuid;column:profile_id;not null;uniqueIndex" json:"profile_id"`
	CanonicalURL     string         `gorm:"column:canonical_url" json:"canonical_url,omitempty"`
	LinkedInURL      string         `gorm:"column:linkedin_url" json:"linkedin_url,omitempty"`
	TwitterURL       string         `gorm:"column:twitter_url" json:"twitter_url,omitempty"`
	FacebookURL      string         `gorm:"column:facebook_url" json:"facebook_url,omitempty"`
	YouTubeURL       string         `gorm:"column:youtube_url" json:"youtube_url,omitempty"`
	GitHubURL        string         `gorm:"column:github_url" json:"github_url,omitempty"`
	InstagramURL     string         `gorm:"column:instagram_url" json:"instagram_url,omitempty"`
	CrunchbaseURL    string         `gorm:"column:crunchbase_url" json:"crunchbase_url,omitempty"`
	WikipediaURL     string         `gorm:"column:wikipedia_url" json:"wikipedia_url,omitempty"`
	WikidataID       string         `gorm:"column:wikidata_id" json:"wikidata_id,omitempty"`
	GoogleKGID       string         `gorm:"column:google_kg_id" json:"google_kg_id,omitempty"`
	WikidataVerified bool           `gorm:"column:wikidata_verified;not null;default:false" json:"wikidata_verified"`
	SchemaValidated  bool           `gorm:"column:schema_validated;not null;default:false" json:"schema_validated"`
	SocialConsistent bool           `gorm:"column:social_consistent;not null;default:false" json:"social_consistent"`
	AlternateNames   datatypes.JSON `gorm:"column:alternate_names;type:jsonb" json:"alternate_names"`
	FormerNames      datatypes.JSON `gorm:"column:former_names;type:jsonb" json:"former_names"`
	CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
}

func (EntityHome) TableName() string { return "entity_home" }

func (e *EntityHome) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// SocialLinkCount counts the five links that feed the entity health score.
func (e *EntityHome) SocialLinkCount() int {
	if e == nil {
		return 0
	}
	n := 0
	for _, u := range []string{e.LinkedInURL, e.TwitterURL, e.FacebookURL, e.YouTubeURL, e.GitHubURL} {
		if u != "" {
			n++
		}
	}
	return n
}

type Founder struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// OrganizationSchema holds structured organization facts.
type OrganizationSchema struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID         uuid.UUID      `gorm:"type:uuid;column:profile_id;not null;uniqueIndex" json:"profile_id"`
	SchemaType        string         `gorm:"column:schema_type" json:"schema_type"`
	LegalName         string         `gorm:"column:legal_name" json:"legal_name"`
	Name              string         `gorm:"column:name" json:"name"`
	AlternateName     string         `gorm:"column:alternate_name" json:"alternate_name,omitempty"`
	Description       string         `gorm:"column:description" json:"description,omitempty"`
	Slogan            string         `gorm:"column:slogan" json:"slogan,omitempty"`
	FoundingDate      *time.Time     `gorm:"column:founding_date" json:"founding_date,omitempty"`
	FoundingLocation  string         `gorm:"column:founding_location" json:"founding_location,omitempty"`
	Founders          datatypes.JSON `gorm:"column:founders;type:jsonb" json:"founders"`
	Address           datatypes.JSON `gorm:"column:address;type:jsonb" json:"address"`
	NumberOfEmployees string         `gorm:"column:number_of_employees" json:"number_of_employees,omitempty"`
	Awards            datatypes.JSON `gorm:"column:awards;type:jsonb" json:"awards"`
	JSONLD            datatypes.JSON `gorm:"column:json_ld;type:jsonb" json:"json_ld"`
	CreatedAt         time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null" json:"updated_at"`
}

func (OrganizationSchema) TableName() string { return "organization_schema" }

func (o *OrganizationSchema) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
