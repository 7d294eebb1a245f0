package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/brandlens-backend/internal/domain"
	"github.com/yungbote/brandlens-backend/internal/domain/brand"
	"github.com/yungbote/brandlens-backend/internal/domain/perception"
	"github.com/yungbote/brandlens-backend/internal/pkg/jsonx"
)

func SeedProfile(tb testing.TB, ctx context.Context, tx *gorm.DB, brandName string) *types.BrandProfile {
	tb.Helper()
	p := &types.BrandProfile{
		OrganizationID: "org-" + uuid.NewString(),
		BrandName:      brandName,
		WebsiteURL:     "https://example.com",
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	return p
}

func SeedCompetitor(tb testing.TB, ctx context.Context, tx *gorm.DB, profileID uuid.UUID, name, threat string) *types.Competitor {
	tb.Helper()
	var g types.CompetitorGraph
	res := tx.WithContext(ctx).Where("profile_id = ?", profileID).Limit(1).Find(&g)
	if res.Error != nil {
		tb.Fatalf("find graph: %v", res.Error)
	}
	if res.RowsAffected == 0 {
		g = types.CompetitorGraph{ProfileID: profileID, MarketPosition: brand.PositionChallenger, DiscoverySource: "agent"}
		if err := tx.WithContext(ctx).Create(&g).Error; err != nil {
			tb.Fatalf("seed graph: %v", err)
		}
	}
	c := &types.Competitor{
		GraphID:        g.ID,
		Name:           name,
		CompetitorType: brand.CompetitorDirect,
		ThreatLevel:    threat,
		Strengths:      jsonx.Encode([]string{}),
		Weaknesses:     jsonx.Encode([]string{}),
		DiscoveredBy:   "agent",
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed competitor: %v", err)
	}
	return c
}

func SeedProduct(tb testing.TB, ctx context.Context, tx *gorm.DB, profileID uuid.UUID, name, slug string, hero bool) *types.Product {
	tb.Helper()
	p := &types.Product{
		ProfileID: profileID,
		Name:      name,
		Slug:      slug,
		Category:  "software",
		Features:  jsonx.Encode([]string{"automation"}),
		Benefits:  jsonx.Encode([]string{"save time"}),
		UseCases:  jsonx.Encode([]string{"reporting"}),
		IsHero:    hero,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed product: %v", err)
	}
	return p
}

func SeedPersona(tb testing.TB, ctx context.Context, tx *gorm.DB, profileID uuid.UUID, name string, priority int) *types.CustomerPersona {
	tb.Helper()
	p := &types.CustomerPersona{
		ProfileID:   profileID,
		Name:        name,
		PersonaType: brand.PersonaTypeForPriority(priority),
		Priority:    priority,
		Goals:       jsonx.Encode([]string{"grow revenue"}),
		PainPoints:  []types.PainPoint{{Title: "manual work"}},
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed persona: %v", err)
	}
	return p
}

func SeedPrompt(tb testing.TB, ctx context.Context, tx *gorm.DB, profileID uuid.UUID, category perception.Category, priority int, text string) *types.GeneratedPrompt {
	tb.Helper()
	p := &types.GeneratedPrompt{
		ProfileID:        profileID,
		Category:         category,
		RenderedPrompt:   text,
		Priority:         priority,
		IsActive:         true,
		ExpectedThemes:   jsonx.Encode([]string{}),
		ExpectedEntities: jsonx.Encode([]string{}),
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed prompt: %v", err)
	}
	return p
}

func SeedScan(tb testing.TB, ctx context.Context, tx *gorm.DB, profileID uuid.UUID, promptCount int) *types.PerceptionScan {
	tb.Helper()
	s := &types.PerceptionScan{
		ProfileID:   profileID,
		Status:      perception.ScanRunning,
		Platforms:   jsonx.Encode([]string{"chatgpt"}),
		PromptCount: promptCount,
		StartedAt:   time.Now(),
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed scan: %v", err)
	}
	return s
}

func SeedInsight(tb testing.TB, ctx context.Context, tx *gorm.DB, profileID, scanID uuid.UUID, category, priority, title string) *types.PerceptionInsight {
	tb.Helper()
	in := &types.PerceptionInsight{
		ProfileID: profileID,
		ScanID:    scanID,
		Category:  category,
		Priority:  priority,
		Title:     title,
		Status:    perception.InsightOpen,
		Platforms: jsonx.Encode([]string{"chatgpt"}),
	}
	if err := tx.WithContext(ctx).Create(in).Error; err != nil {
		tb.Fatalf("seed insight: %v", err)
	}
	return in
}

func SeedCorrection(tb testing.TB, ctx context.Context, tx *gorm.DB, profileID uuid.UUID, status perception.CorrectionStatus) *types.Correction {
	tb.Helper()
	c := &types.Correction{
		ProfileID:         profileID,
		ProblemType:       perception.ProblemMissingInfo,
		Status:            status,
		AffectedPlatforms: jsonx.Encode([]string{"chatgpt"}),
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed correction: %v", err)
	}
	return c
}
