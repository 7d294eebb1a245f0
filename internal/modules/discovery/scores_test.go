package discovery

import (
	"testing"
	"time"

	"github.com/yungbote/brandlens-backend/internal/domain/brand"
	"github.com/yungbote/brandlens-backend/internal/pkg/jsonx"
)

func TestCompletionScore_KnownFixture(t *testing.T) {
	founded := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	gt := &brand.GroundTruth{
		EntityHome: &brand.EntityHome{WikidataVerified: true, SchemaValidated: true},
		OrgSchema: &brand.OrganizationSchema{
			Founders:     jsonx.Encode([]brand.Founder{{Name: "Ada"}}),
			FoundingDate: &founded,
		},
		Prism: &brand.BrandIdentityPrism{
			PersonalityScores: jsonx.Encode(brand.Personality{Sincerity: 80}),
			CultureValues:     jsonx.Encode([]string{"craft"}),
		},
		Archetype:   &brand.BrandArchetype{PrimaryScore: 82},
		Voice:       &brand.BrandVoiceProfile{VoiceSamples: jsonx.Encode([]string{"Hello there."})},
		Competitors: make([]brand.Competitor, 6),
		Personas:    make([]brand.CustomerPersona, 1),
		Products:    make([]brand.Product, 3),
	}
	// 15 + 10 + 20 + 10 + 10 + 15 + 5 + 3 + 0
	if got := CompletionScore(gt); got != 88 {
		t.Fatalf("CompletionScore=%d want 88", got)
	}
}

func TestCompletionScore_ShallowFacets(t *testing.T) {
	gt := &brand.GroundTruth{
		EntityHome: &brand.EntityHome{},
		OrgSchema:  &brand.OrganizationSchema{Founders: jsonx.Encode([]brand.Founder{})},
		Prism:      &brand.BrandIdentityPrism{PersonalityScores: []byte("null"), CultureValues: jsonx.Encode([]string{" "})},
		Archetype:  &brand.BrandArchetype{PrimaryScore: 70},
		Voice:      &brand.BrandVoiceProfile{},
		Claims:     make([]brand.Claim, 2),
	}
	// 5 + 5 + 10 + 5 + 5 + 2
	if got := CompletionScore(gt); got != 32 {
		t.Fatalf("CompletionScore=%d want 32", got)
	}
}

func TestCompletionScore_CapsAndEmpty(t *testing.T) {
	if got := CompletionScore(nil); got != 0 {
		t.Fatalf("nil profile scored %d", got)
	}
	if got := CompletionScore(&brand.GroundTruth{}); got != 0 {
		t.Fatalf("empty profile scored %d", got)
	}
	gt := &brand.GroundTruth{
		Competitors: make([]brand.Competitor, 40),
		Personas:    make([]brand.CustomerPersona, 40),
		Products:    make([]brand.Product, 40),
		Claims:      make([]brand.Claim, 40),
	}
	if got := CompletionScore(gt); got != 35 {
		t.Fatalf("list facets should cap at 15+10+5+5, got %d", got)
	}
}

func TestEntityHealthScore(t *testing.T) {
	cases := []struct {
		name string
		eh   *brand.EntityHome
		want int
	}{
		{"missing", nil, 0},
		{"empty", &brand.EntityHome{}, 0},
		{"canonical only", &brand.EntityHome{CanonicalURL: "https://acme.test"}, 20},
		{
			"three links",
			&brand.EntityHome{
				CanonicalURL:     "https://acme.test",
				GoogleKGID:       "/g/11abc",
				WikidataID:       "Q42",
				SchemaValidated:  true,
				SocialConsistent: true,
				LinkedInURL:      "https://linkedin.com/company/acme",
				TwitterURL:       "https://x.com/acme",
				GitHubURL:        "https://github.com/acme",
				InstagramURL:     "https://instagram.com/acme",
				WikipediaURL:     "https://en.wikipedia.org/wiki/Acme",
			},
			96,
		},
		{
			"everything",
			&brand.EntityHome{
				CanonicalURL:     "https://acme.test",
				GoogleKGID:       "/g/11abc",
				WikidataID:       "Q42",
				SchemaValidated:  true,
				SocialConsistent: true,
				LinkedInURL:      "l",
				TwitterURL:       "t",
				FacebookURL:      "f",
				YouTubeURL:       "y",
				GitHubURL:        "g",
				WikipediaURL:     "w",
			},
			100,
		},
	}
	for _, tc := range cases {
		if got := EntityHealthScore(tc.eh); got != tc.want {
			t.Fatalf("%s: EntityHealthScore=%d want %d", tc.name, got, tc.want)
		}
	}
}
