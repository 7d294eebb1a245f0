package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/brandlens-backend/internal/data/repos/brand"
	"github.com/yungbote/brandlens-backend/internal/data/repos/perception"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

type BrandProfileRepo = brand.BrandProfileRepo
type EntityHomeRepo = brand.EntityHomeRepo
type OrganizationSchemaRepo = brand.OrganizationSchemaRepo
type IdentityRepo = brand.IdentityRepo
type CompetitorRepo = brand.CompetitorRepo
type ProductRepo = brand.ProductRepo
type PersonaRepo = brand.PersonaRepo
type AudienceRepo = brand.AudienceRepo
type PositioningRepo = brand.PositioningRepo
type ClaimRepo = brand.ClaimRepo
type RiskFactorsRepo = brand.RiskFactorsRepo
type GroundTruthLoader = brand.GroundTruthLoader

type PromptRepo = perception.PromptRepo
type ScanRepo = perception.ScanRepo
type ResultRepo = perception.ResultRepo
type InsightRepo = perception.InsightRepo
type CorrectionRepo = perception.CorrectionRepo
type CorrectionFilter = perception.CorrectionFilter

func NewBrandProfileRepo(db *gorm.DB, log *logger.Logger) BrandProfileRepo {
	return brand.NewBrandProfileRepo(db, log)
}
func NewEntityHomeRepo(db *gorm.DB, log *logger.Logger) EntityHomeRepo {
	return brand.NewEntityHomeRepo(db, log)
}
func NewOrganizationSchemaRepo(db *gorm.DB, log *logger.Logger) OrganizationSchemaRepo {
	return brand.NewOrganizationSchemaRepo(db, log)
}
func NewIdentityRepo(db *gorm.DB, log *logger.Logger) IdentityRepo {
	return brand.NewIdentityRepo(db, log)
}
func NewCompetitorRepo(db *gorm.DB, log *logger.Logger) CompetitorRepo {
	return brand.NewCompetitorRepo(db, log)
}
func NewProductRepo(db *gorm.DB, log *logger.Logger) ProductRepo {
	return brand.NewProductRepo(db, log)
}
func NewPersonaRepo(db *gorm.DB, log *logger.Logger) PersonaRepo {
	return brand.NewPersonaRepo(db, log)
}
func NewAudienceRepo(db *gorm.DB, log *logger.Logger) AudienceRepo {
	return brand.NewAudienceRepo(db, log)
}
func NewPositioningRepo(db *gorm.DB, log *logger.Logger) PositioningRepo {
	return brand.NewPositioningRepo(db, log)
}
func NewClaimRepo(db *gorm.DB, log *logger.Logger) ClaimRepo {
	return brand.NewClaimRepo(db, log)
}
func NewRiskFactorsRepo(db *gorm.DB, log *logger.Logger) RiskFactorsRepo {
	return brand.NewRiskFactorsRepo(db, log)
}

func NewPromptRepo(db *gorm.DB, log *logger.Logger) PromptRepo {
	return perception.NewPromptRepo(db, log)
}
func NewScanRepo(db *gorm.DB, log *logger.Logger) ScanRepo {
	return perception.NewScanRepo(db, log)
}
func NewResultRepo(db *gorm.DB, log *logger.Logger) ResultRepo {
	return perception.NewResultRepo(db, log)
}
func NewInsightRepo(db *gorm.DB, log *logger.Logger) InsightRepo {
	return perception.NewInsightRepo(db, log)
}
func NewCorrectionRepo(db *gorm.DB, log *logger.Logger) CorrectionRepo {
	return perception.NewCorrectionRepo(db, log)
}

// Set bundles every repository the services need.
type Set struct {
	Profiles    BrandProfileRepo
	EntityHomes EntityHomeRepo
	OrgSchemas  OrganizationSchemaRepo
	Identity    IdentityRepo
	Competitors CompetitorRepo
	Products    ProductRepo
	Personas    PersonaRepo
	Audiences   AudienceRepo
	Positioning PositioningRepo
	Claims      ClaimRepo
	Risk        RiskFactorsRepo
	Prompts     PromptRepo
	Scans       ScanRepo
	Results     ResultRepo
	Insights    InsightRepo
	Corrections CorrectionRepo
	GroundTruth *GroundTruthLoader
}

func NewSet(db *gorm.DB, log *logger.Logger) *Set {
	s := &Set{
		Profiles:    NewBrandProfileRepo(db, log),
		EntityHomes: NewEntityHomeRepo(db, log),
		OrgSchemas:  NewOrganizationSchemaRepo(db, log),
		Identity:    NewIdentityRepo(db, log),
		Competitors: NewCompetitorRepo(db, log),
		Products:    NewProductRepo(db, log),
		Personas:    NewPersonaRepo(db, log),
		Audiences:   NewAudienceRepo(db, log),
		Positioning: NewPositioningRepo(db, log),
		Claims:      NewClaimRepo(db, log),
		Risk:        NewRiskFactorsRepo(db, log),
		Prompts:     NewPromptRepo(db, log),
		Scans:       NewScanRepo(db, log),
		Results:     NewResultRepo(db, log),
		Insights:    NewInsightRepo(db, log),
		Corrections: NewCorrectionRepo(db, log),
	}
	s.GroundTruth = brand.NewGroundTruthLoader(
		s.Profiles, s.EntityHomes, s.OrgSchemas, s.Identity, s.Competitors,
		s.Products, s.Personas, s.Audiences, s.Positioning, s.Claims, s.Risk, log,
	)
	return s
}
