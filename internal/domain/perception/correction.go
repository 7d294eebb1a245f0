package perception

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CorrectionStatus string

const (
	CorrectionSuggested   CorrectionStatus = "suggested"
	CorrectionApproved    CorrectionStatus = "approved"
	CorrectionImplemented CorrectionStatus = "implemented"
	CorrectionVerified    CorrectionStatus = "verified"
	CorrectionDismissed   CorrectionStatus = "dismissed"
)

// CorrectionStatuses is the funnel order.
var CorrectionStatuses = []CorrectionStatus{
	CorrectionSuggested,
	CorrectionApproved,
	CorrectionImplemented,
	CorrectionVerified,
	CorrectionDismissed,
}

var correctionTransitions = map[CorrectionStatus][]CorrectionStatus{
	CorrectionSuggested:   {CorrectionApproved, CorrectionDismissed},
	CorrectionApproved:    {CorrectionImplemented, CorrectionDismissed},
	CorrectionImplemented: {CorrectionVerified},
}

// CanTransition reports whether a correction may move from one status to another.
// Moves are one step forward; verified and dismissed are terminal.
func CanTransition(from, to CorrectionStatus) bool {
	for _, next := range correctionTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s CorrectionStatus) Terminal() bool {
	return len(correctionTransitions[s]) == 0
}

func (s CorrectionStatus) Valid() bool {
	for _, v := range CorrectionStatuses {
		if s == v {
			return true
		}
	}
	return false
}

const (
	ProblemHallucination       = "hallucination"
	ProblemMissingInfo         = "missing_info"
	ProblemWrongSentiment      = "wrong_sentiment"
	ProblemCompetitorConfusion = "competitor_confusion"
)

type Correction struct {
	ID                 uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID          uuid.UUID        `gorm:"type:uuid;column:profile_id;not null;index" json:"profile_id"`
	InsightID          *uuid.UUID       `gorm:"type:uuid;column:insight_id;index" json:"insight_id,omitempty"`
	ProblemType        string           `gorm:"column:problem_type;not null;index" json:"problem_type"`
	ProblemDescription string           `gorm:"column:problem_description" json:"problem_description"`
	Status             CorrectionStatus `gorm:"column:status;not null;index" json:"status"`
	AffectedPlatforms  datatypes.JSON   `gorm:"column:affected_platforms;type:jsonb" json:"affected_platforms"`
	PreFixScore        *float64         `gorm:"column:pre_fix_score" json:"pre_fix_score,omitempty"`
	PostFixScore       *float64         `gorm:"column:post_fix_score" json:"post_fix_score,omitempty"`
	SchemaOrgFix       string           `gorm:"column:schema_org_fix;type:text" json:"schema_org_fix,omitempty"`
	FAQPageFix         string           `gorm:"column:faq_page_fix;type:text" json:"faq_page_fix,omitempty"`
	ContentFix         string           `gorm:"column:content_fix;type:text" json:"content_fix,omitempty"`
	WikipediaFix       string           `gorm:"column:wikipedia_fix;type:text" json:"wikipedia_fix,omitempty"`
	Notes              string           `gorm:"column:notes" json:"notes,omitempty"`
	ApprovedAt         *time.Time       `gorm:"column:approved_at" json:"approved_at,omitempty"`
	ImplementedAt      *time.Time       `gorm:"column:implemented_at" json:"implemented_at,omitempty"`
	VerifiedAt         *time.Time       `gorm:"column:verified_at" json:"verified_at,omitempty"`
	DismissedAt        *time.Time       `gorm:"column:dismissed_at" json:"dismissed_at,omitempty"`
	CreatedAt          time.Time        `gorm:"not null;index" json:"created_at"`
	UpdatedAt          time.Time        `gorm:"not null" json:"updated_at"`
}

func (Correction) TableName() string { return "correction" }

func (c *Correction) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
