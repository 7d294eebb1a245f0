package brand

import (
	"net/url"
	"strings"
)

// GroundTruth is the fully loaded profile read by prompt generation and scans.
// Nil facets were never discovered.
type GroundTruth struct {
	Profile     BrandProfile
	EntityHome  *EntityHome
	OrgSchema   *OrganizationSchema
	Prism       *BrandIdentityPrism
	Archetype   *BrandArchetype
	Voice       *BrandVoiceProfile
	Graph       *CompetitorGraph
	Competitors []Competitor
	Products    []Product
	Categories  []ProductCategory
	Personas    []CustomerPersona
	Audience    *TargetAudience
	Positioning *MarketPositioning
	Claims      []Claim
	Risk        *RiskFactors
}

// BrandName resolves the display name: organization schema name, then the
// canonical URL host, then the name given at discovery time.
func (g *GroundTruth) BrandName() string {
	if g == nil {
		return "Unknown Brand"
	}
	if g.OrgSchema != nil && strings.TrimSpace(g.OrgSchema.Name) != "" {
		return strings.TrimSpace(g.OrgSchema.Name)
	}
	if g.EntityHome != nil && g.EntityHome.CanonicalURL != "" {
		if u, err := url.Parse(g.EntityHome.CanonicalURL); err == nil && u.Hostname() != "" {
			return u.Hostname()
		}
	}
	if strings.TrimSpace(g.Profile.BrandName) != "" {
		return strings.TrimSpace(g.Profile.BrandName)
	}
	return "Unknown Brand"
}
