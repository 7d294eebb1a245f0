package discovery

import (
	"bytes"

	"gorm.io/datatypes"

	"github.com/yungbote/brandlens-backend/internal/domain/brand"
	"github.com/yungbote/brandlens-backend/internal/pkg/jsonx"
)

// CompletionScore sums fixed weights over the facets present on a profile:
// entity home 15, organization schema 10, identity prism 20, archetype 10,
// voice 10, competitors 15, personas 10, products 5, claims 5. Capped at 100.
func CompletionScore(gt *brand.GroundTruth) int {
	if gt == nil {
		return 0
	}
	score := 0

	if eh := gt.EntityHome; eh != nil {
		score += 5
		if eh.WikidataVerified {
			score += 5
		}
		if eh.SchemaValidated {
			score += 5
		}
	}

	if org := gt.OrgSchema; org != nil {
		score += 5
		if len(jsonx.Decode[[]brand.Founder](org.Founders)) > 0 {
			score += 3
		}
		if org.FoundingDate != nil {
			score += 2
		}
	}

	if p := gt.Prism; p != nil {
		score += 10
		if present(p.PersonalityScores) {
			score += 5
		}
		if len(jsonx.Strings(p.CultureValues)) > 0 {
			score += 5
		}
	}

	if a := gt.Archetype; a != nil {
		score += 5
		if a.PrimaryScore > 70 {
			score += 5
		}
	}

	if v := gt.Voice; v != nil {
		score += 5
		if len(jsonx.Strings(v.VoiceSamples)) > 0 {
			score += 5
		}
	}

	score += min(len(gt.Competitors)*3, 15)
	score += min(len(gt.Personas)*5, 10)
	score += min(len(gt.Products), 5)
	score += min(len(gt.Claims), 5)

	return min(score, 100)
}

// EntityHealthScore only looks at the entity home: canonical URL 20,
// knowledge-graph ids 30, schema validation 20, social links 20 and
// Wikipedia 10. A profile without an entity home scores 0.
func EntityHealthScore(eh *brand.EntityHome) int {
	if eh == nil {
		return 0
	}
	score := 0
	if eh.CanonicalURL != "" {
		score += 20
	}
	if eh.GoogleKGID != "" {
		score += 15
	}
	if eh.WikidataID != "" {
		score += 15
	}
	if eh.SchemaValidated {
		score += 20
	}
	if eh.SocialConsistent {
		score += 10
	}
	score += min(eh.SocialLinkCount()*2, 10)
	if eh.WikipediaURL != "" {
		score += 10
	}
	return min(score, 100)
}

func present(raw datatypes.JSON) bool {
	t := bytes.TrimSpace(raw)
	if len(t) == 0 {
		return false
	}
	switch string(t) {
	case "null", "{}", "[]":
		return false
	}
	return true
}
