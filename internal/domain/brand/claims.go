package brand

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Claim is a verified statement the brand stands behind. Entered by operators.
type Claim struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID   uuid.UUID `gorm:"type:uuid;column:profile_id;not null;index" json:"profile_id"`
	ClaimText   string    `gorm:"column:claim_text;not null" json:"claim_text"`
	ClaimType   string    `gorm:"column:claim_type" json:"claim_type,omitempty"`
	EvidenceURL string    `gorm:"column:evidence_url" json:"evidence_url,omitempty"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (Claim) TableName() string { return "claim" }

func (c *Claim) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// RiskFactors lists known misconceptions and negative associations.
type RiskFactors struct {
	ID                   uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID            uuid.UUID      `gorm:"type:uuid;column:profile_id;not null;uniqueIndex" json:"profile_id"`
	CommonMisconceptions datatypes.JSON `gorm:"column:common_misconceptions;type:jsonb" json:"common_misconceptions"`
	NegativeKeywords     datatypes.JSON `gorm:"column:negative_keywords;type:jsonb" json:"negative_keywords"`
	CreatedAt            time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"not null" json:"updated_at"`
}

func (RiskFactors) TableName() string { return "risk_factors" }

func (r *RiskFactors) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
