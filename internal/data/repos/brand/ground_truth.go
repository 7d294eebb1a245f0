package brand

import (
	"fmt"

	"github.com/google/uuid"

	types "github.com/yungbote/brandlens-backend/internal/domain"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

// GroundTruthLoader assembles everything known about a brand into one aggregate.
type GroundTruthLoader struct {
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

	log *logger.Logger
}

func NewGroundTruthLoader(
	profiles BrandProfileRepo,
	entityHomes EntityHomeRepo,
	orgSchemas OrganizationSchemaRepo,
	identity IdentityRepo,
	competitors CompetitorRepo,
	products ProductRepo,
	personas PersonaRepo,
	audiences AudienceRepo,
	positioning PositioningRepo,
	claims ClaimRepo,
	risk RiskFactorsRepo,
	baseLog *logger.Logger,
) *GroundTruthLoader {
	return &GroundTruthLoader{
		Profiles:    profiles,
		EntityHomes: entityHomes,
		OrgSchemas:  orgSchemas,
		Identity:    identity,
		Competitors: competitors,
		Products:    products,
		Personas:    personas,
		Audiences:   audiences,
		Positioning: positioning,
		Claims:      claims,
		Risk:        risk,
		log:         baseLog.With("component", "GroundTruthLoader"),
	}
}

func (l *GroundTruthLoader) Load(dbc dbctx.Context, profileID uuid.UUID) (*types.GroundTruth, error) {
	profile, err := l.Profiles.GetByID(dbc, profileID)
	if err != nil {
		return nil, err
	}
	gt := &types.GroundTruth{Profile: *profile}

	if gt.EntityHome, err = l.EntityHomes.GetByProfile(dbc, profileID); err != nil {
		return nil, fmt.Errorf("load entity home: %w", err)
	}
	if gt.OrgSchema, err = l.OrgSchemas.GetByProfile(dbc, profileID); err != nil {
		return nil, fmt.Errorf("load organization schema: %w", err)
	}
	if gt.Prism, err = l.Identity.GetPrism(dbc, profileID); err != nil {
		return nil, fmt.Errorf("load prism: %w", err)
	}
	if gt.Archetype, err = l.Identity.GetArchetype(dbc, profileID); err != nil {
		return nil, fmt.Errorf("load archetype: %w", err)
	}
	if gt.Voice, err = l.Identity.GetVoice(dbc, profileID); err != nil {
		return nil, fmt.Errorf("load voice: %w", err)
	}
	if gt.Graph, err = l.Competitors.GetGraph(dbc, profileID); err != nil {
		return nil, fmt.Errorf("load competitor graph: %w", err)
	}
	comps, err := l.Competitors.ListByProfile(dbc, profileID)
	if err != nil {
		return nil, fmt.Errorf("load competitors: %w", err)
	}
	for _, c := range comps {
		gt.Competitors = append(gt.Competitors, *c)
	}
	products, err := l.Products.ListByProfile(dbc, profileID)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	for _, p := range products {
		gt.Products = append(gt.Products, *p)
	}
	cats, err := l.Products.ListCategories(dbc, profileID)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	for _, c := range cats {
		gt.Categories = append(gt.Categories, *c)
	}
	personas, err := l.Personas.ListByProfile(dbc, profileID)
	if err != nil {
		return nil, fmt.Errorf("load personas: %w", err)
	}
	for _, p := range personas {
		gt.Personas = append(gt.Personas, *p)
	}
	if gt.Audience, err = l.Audiences.GetByProfile(dbc, profileID); err != nil {
		return nil, fmt.Errorf("load audience: %w", err)
	}
	if gt.Positioning, err = l.Positioning.GetByProfile(dbc, profileID); err != nil {
		return nil, fmt.Errorf("load positioning: %w", err)
	}
	claims, err := l.Claims.ListByProfile(dbc, profileID)
	if err != nil {
		return nil, fmt.Errorf("load claims: %w", err)
	}
	for _, c := range claims {
		gt.Claims = append(gt.Claims, *c)
	}
	if gt.Risk, err = l.Risk.GetByProfile(dbc, profileID); err != nil {
		return nil, fmt.Errorf("load risk factors: %w", err)
	}
	l.log.Debug("Loaded ground truth",
		"profile_id", profileID,
		"competitors", len(gt.Competitors),
		"products", len(gt.Products),
		"personas", len(gt.Personas),
	)
	return gt, nil
}
