package domain

import (
	"github.com/yungbote/brandlens-backend/internal/domain/brand"
	"github.com/yungbote/brandlens-backend/internal/domain/perception"
)

// Ground truth
type BrandProfile = brand.BrandProfile
type EntityHome = brand.EntityHome
type OrganizationSchema = brand.OrganizationSchema
type Founder = brand.Founder
type BrandIdentityPrism = brand.BrandIdentityPrism
type Personality = brand.Personality
type BrandArchetype = brand.BrandArchetype
type BrandVoiceProfile = brand.BrandVoiceProfile
type CompetitorGraph = brand.CompetitorGraph
type Competitor = brand.Competitor
type ProductCategory = brand.ProductCategory
type Product = brand.Product
type PricingTier = brand.PricingTier
type TargetAudience = brand.TargetAudience
type CustomerPersona = brand.CustomerPersona
type PainPoint = brand.PainPoint
type MarketPositioning = brand.MarketPositioning
type ValueProposition = brand.ValueProposition
type ProofPoint = brand.ProofPoint
type Claim = brand.Claim
type RiskFactors = brand.RiskFactors
type GroundTruth = brand.GroundTruth

// Perception
type PromptCategory = perception.Category
type GeneratedPrompt = perception.GeneratedPrompt
type PerceptionScan = perception.PerceptionScan
type PerceptionResult = perception.PerceptionResult
type PerceptionInsight = perception.PerceptionInsight
type Quadrant = perception.Quadrant
type Correction = perception.Correction
type CorrectionStatus = perception.CorrectionStatus

// Models lists every persisted type in migration order.
func Models() []any {
	return []any{
		&BrandProfile{},
		&EntityHome{},
		&OrganizationSchema{},
		&BrandIdentityPrism{},
		&BrandArchetype{},
		&BrandVoiceProfile{},
		&CompetitorGraph{},
		&Competitor{},
		&ProductCategory{},
		&Product{},
		&TargetAudience{},
		&CustomerPersona{},
		&PainPoint{},
		&MarketPositioning{},
		&ValueProposition{},
		&ProofPoint{},
		&Claim{},
		&RiskFactors{},

		&GeneratedPrompt{},
		&PerceptionScan{},
		&PerceptionResult{},
		&PerceptionInsight{},
		&Correction{},
	}
}
