package brand

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/brandlens-backend/internal/data/repos/testutil"
	types "github.com/yungbote/brandlens-backend/internal/domain"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
	errs "github.com/yungbote/brandlens-backend/internal/pkg/errors"
	"github.com/yungbote/brandlens-backend/internal/pkg/jsonx"
)

func TestBrandProfileRepo_CreateLosesRace(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewBrandProfileRepo(db, testutil.Logger(t)).(*brandProfileRepo)

	org := "org-" + uuid.NewString()
	seeded := &types.BrandProfile{OrganizationID: org, WebsiteURL: "https://acme.test", BrandName: "Acme"}
	if err := tx.Create(seeded).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	// A run that read before the seeded insert committed goes straight to create.
	got, err := repo.create(dbc, tx, org, "https://acme.test", "Acme Corp")
	if err != nil {
		t.Fatalf("create after concurrent insert: %v", err)
	}
	if got.ID != seeded.ID || got.BrandName != "Acme Corp" {
		t.Fatalf("expected the seeded profile with a refreshed name, got %+v", got)
	}

	again, err := repo.GetOrCreateByOrganization(dbc, org, "", "")
	if err != nil {
		t.Fatalf("GetOrCreateByOrganization: %v", err)
	}
	if again.ID != seeded.ID || again.BrandName != "Acme Corp" {
		t.Fatalf("second call returned %+v", again)
	}

	var count int64
	if err := tx.Model(&types.BrandProfile{}).Where("organization_id = ?", org).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one profile row, got %d", count)
	}
}

func TestBrandProfileRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewBrandProfileRepo(db, testutil.Logger(t))

	org := "org-" + uuid.NewString()
	p1, err := repo.GetOrCreateByOrganization(dbc, org, "https://acme.test", "Acme")
	if err != nil {
		t.Fatalf("GetOrCreateByOrganization: %v", err)
	}
	p2, err := repo.GetOrCreateByOrganization(dbc, org, "https://acme.test", "")
	if err != nil {
		t.Fatalf("GetOrCreateByOrganization again: %v", err)
	}
	if p1.ID != p2.ID {
		t.Fatalf("expected same profile, got %s and %s", p1.ID, p2.ID)
	}
	if p2.BrandName != "Acme" {
		t.Fatalf("blank brand name must not overwrite, got %q", p2.BrandName)
	}

	if _, err := repo.GetOrCreateByOrganization(dbc, "  ", "", ""); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}

	if err := repo.UpdateScores(dbc, p1.ID, 64, 40, time.Now()); err != nil {
		t.Fatalf("UpdateScores: %v", err)
	}
	if err := repo.SetIndustry(dbc, p1.ID, " fintech "); err != nil {
		t.Fatalf("SetIndustry: %v", err)
	}
	got, err := repo.GetByID(dbc, p1.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.CompletionScore != 64 || got.EntityHealthScore != 40 || got.LastAnalyzedAt == nil {
		t.Fatalf("scores not persisted: %+v", got)
	}
	if got.Industry != "fintech" {
		t.Fatalf("industry=%q", got.Industry)
	}

	if _, err := repo.GetByID(dbc, uuid.New()); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.MarkCrawled(dbc, uuid.New(), time.Now()); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on missing profile, got %v", err)
	}
}

func TestEntityHomeRepo_UpsertKeepsOneRow(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewEntityHomeRepo(db, testutil.Logger(t))
	p := testutil.SeedProfile(t, ctx, tx, "Acme")

	if got, err := repo.GetByProfile(dbc, p.ID); err != nil || got != nil {
		t.Fatalf("expected no entity home yet, got %+v err=%v", got, err)
	}

	first, err := repo.Upsert(dbc, &types.EntityHome{ProfileID: p.ID, CanonicalURL: "https://acme.test", TwitterURL: "https://twitter.com/acme"})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	second, err := repo.Upsert(dbc, &types.EntityHome{ProfileID: p.ID, CanonicalURL: "https://acme.test", LinkedInURL: "https://linkedin.com/company/acme"})
	if err != nil {
		t.Fatalf("Upsert again: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("upsert created a second row")
	}
	if second.LinkedInURL == "" || second.TwitterURL != "" {
		t.Fatalf("upsert should overwrite the row: %+v", second)
	}
	var n int64
	if err := tx.Model(&types.EntityHome{}).Where("profile_id = ?", p.ID).Count(&n).Error; err != nil || n != 1 {
		t.Fatalf("count=%d err=%v", n, err)
	}
}

func TestCompetitorRepo_ReplaceCompetitors(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewCompetitorRepo(db, testutil.Logger(t))
	p := testutil.SeedProfile(t, ctx, tx, "Acme")

	g, err := repo.UpsertGraph(dbc, &types.CompetitorGraph{ProfileID: p.ID, MarketPosition: "niche", DiscoverySource: "agent"})
	if err != nil {
		t.Fatalf("UpsertGraph: %v", err)
	}
	mk := func(name string) *types.Competitor {
		return &types.Competitor{Name: name, CompetitorType: "direct", ThreatLevel: "high", DiscoveredBy: "agent"}
	}
	if _, err := repo.ReplaceCompetitors(dbc, g.ID, []*types.Competitor{mk("A"), mk("B"), mk("C")}); err != nil {
		t.Fatalf("ReplaceCompetitors: %v", err)
	}
	if _, err := repo.ReplaceCompetitors(dbc, g.ID, []*types.Competitor{mk("D")}); err != nil {
		t.Fatalf("ReplaceCompetitors again: %v", err)
	}
	list, err := repo.ListByProfile(dbc, p.ID)
	if err != nil {
		t.Fatalf("ListByProfile: %v", err)
	}
	if len(list) != 1 || list[0].Name != "D" {
		t.Fatalf("expected only D after replace, got %d rows", len(list))
	}

	if _, err := repo.ReplaceCompetitors(dbc, g.ID, nil); err != nil {
		t.Fatalf("ReplaceCompetitors empty: %v", err)
	}
	if list, _ := repo.ListByProfile(dbc, p.ID); len(list) != 0 {
		t.Fatalf("expected empty set, got %d", len(list))
	}
}

func TestPersonaRepo_AppendAndReplace(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewPersonaRepo(db, testutil.Logger(t))
	p := testutil.SeedProfile(t, ctx, tx, "Acme")

	mk := func(name string, prio int) *types.CustomerPersona {
		return &types.CustomerPersona{
			Name:       name,
			Priority:   prio,
			PainPoints: []types.PainPoint{{Title: name + " pain"}},
		}
	}
	if _, err := repo.Append(dbc, p.ID, []*types.CustomerPersona{mk("Ops Olivia", 1)}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if _, err := repo.Append(dbc, p.ID, []*types.CustomerPersona{mk("Dev Dan", 2)}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	list, err := repo.ListByProfile(dbc, p.ID)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListByProfile: err=%v len=%d", err, len(list))
	}
	if list[0].Name != "Ops Olivia" || len(list[0].PainPoints) != 1 {
		t.Fatalf("expected priority order with pain points, got %+v", list[0])
	}

	if _, err := repo.ReplaceAll(dbc, p.ID, []*types.CustomerPersona{mk("CFO Carla", 1)}); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	list, _ = repo.ListByProfile(dbc, p.ID)
	if len(list) != 1 || list[0].Name != "CFO Carla" {
		t.Fatalf("ReplaceAll left %d personas", len(list))
	}
	var own int64
	if err := tx.Model(&types.PainPoint{}).Where("persona_id = ?", list[0].ID).Count(&own).Error; err != nil {
		t.Fatalf("count pain points: %v", err)
	}
	if own != 1 {
		t.Fatalf("expected one pain point for the new persona, got %d", own)
	}
	var all int64
	if err := tx.Model(&types.PainPoint{}).Count(&all).Error; err != nil || all != 1 {
		t.Fatalf("old pain points left behind: count=%d err=%v", all, err)
	}
}

func TestPositioningRepo_UpsertReplacesChildren(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewPositioningRepo(db, testutil.Logger(t))
	p := testutil.SeedProfile(t, ctx, tx, "Acme")

	_, err := repo.Upsert(dbc, &types.MarketPositioning{
		ProfileID:         p.ID,
		CategoryPosition:  "challenger",
		ValuePropositions: []types.ValueProposition{{Headline: "Fast"}, {Headline: "Cheap"}},
		ProofPoints:       []types.ProofPoint{{Title: "10k customers"}},
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	_, err = repo.Upsert(dbc, &types.MarketPositioning{
		ProfileID:         p.ID,
		CategoryPosition:  "leader",
		ValuePropositions: []types.ValueProposition{{Headline: "Reliable"}},
	})
	if err != nil {
		t.Fatalf("Upsert again: %v", err)
	}
	got, err := repo.GetByProfile(dbc, p.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByProfile: %v", err)
	}
	if got.CategoryPosition != "leader" {
		t.Fatalf("category position=%q", got.CategoryPosition)
	}
	if len(got.ValuePropositions) != 1 || got.ValuePropositions[0].Headline != "Reliable" {
		t.Fatalf("value propositions not replaced: %+v", got.ValuePropositions)
	}
	if len(got.ProofPoints) != 0 {
		t.Fatalf("proof points not cleared: %d", len(got.ProofPoints))
	}
}

func TestClaimRepo_ReplaceAllDropsBlank(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewClaimRepo(db, testutil.Logger(t))
	p := testutil.SeedProfile(t, ctx, tx, "Acme")

	saved, err := repo.ReplaceAll(dbc, p.ID, []*types.Claim{{ClaimText: " fastest onboarding "}, {ClaimText: "  "}, nil})
	if err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	if len(saved) != 1 || saved[0].ClaimText != "fastest onboarding" {
		t.Fatalf("unexpected claims: %+v", saved)
	}
}

func TestGroundTruthLoader_Load(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	log := testutil.Logger(t)

	p := testutil.SeedProfile(t, ctx, tx, "Acme")
	testutil.SeedCompetitor(t, ctx, tx, p.ID, "Globex", "high")
	testutil.SeedCompetitor(t, ctx, tx, p.ID, "Initech", "low")
	testutil.SeedProduct(t, ctx, tx, p.ID, "Acme Cloud", "acme-cloud", true)
	testutil.SeedPersona(t, ctx, tx, p.ID, "Ops Olivia", 1)

	risk := NewRiskFactorsRepo(db, log)
	if _, err := risk.Upsert(dbc, &types.RiskFactors{
		ProfileID:            p.ID,
		CommonMisconceptions: jsonx.Encode([]string{"only for enterprises"}),
		NegativeKeywords:     jsonx.Encode([]string{"outage"}),
	}); err != nil {
		t.Fatalf("risk upsert: %v", err)
	}

	loader := NewGroundTruthLoader(
		NewBrandProfileRepo(db, log),
		NewEntityHomeRepo(db, log),
		NewOrganizationSchemaRepo(db, log),
		NewIdentityRepo(db, log),
		NewCompetitorRepo(db, log),
		NewProductRepo(db, log),
		NewPersonaRepo(db, log),
		NewAudienceRepo(db, log),
		NewPositioningRepo(db, log),
		NewClaimRepo(db, log),
		risk,
		log,
	)
	gt, err := loader.Load(dbc, p.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	names := []string{}
	for _, c := range gt.Competitors {
		names = append(names, c.Name)
	}
	sort.Strings(names)
	if len(names) != 2 || names[0] != "Globex" || names[1] != "Initech" {
		t.Fatalf("competitors=%v", names)
	}
	if len(gt.Products) != 1 || !gt.Products[0].IsHero {
		t.Fatalf("products=%+v", gt.Products)
	}
	if len(gt.Personas) != 1 || len(gt.Personas[0].PainPoints) != 1 {
		t.Fatalf("personas=%+v", gt.Personas)
	}
	if gt.Risk == nil || len(jsonx.Strings(gt.Risk.NegativeKeywords)) != 1 {
		t.Fatalf("risk factors not loaded")
	}
	if gt.EntityHome != nil || gt.Voice != nil {
		t.Fatalf("absent rows must load as nil")
	}
	if gt.BrandName() != "Acme" {
		t.Fatalf("BrandName=%q", gt.BrandName())
	}

	if _, err := loader.Load(dbc, uuid.New()); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown profile, got %v", err)
	}
}
