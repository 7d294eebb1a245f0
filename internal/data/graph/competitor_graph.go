package graph

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/brandlens-backend/internal/domain/brand"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
	"github.com/yungbote/brandlens-backend/internal/platform/neo4jdb"
)

// CompetitorGraphSync mirrors a profile's competitive set into Neo4j as
// (:Brand)-[:COMPETES_WITH]->(:Competitor). A nil client makes every sync a
// no-op.
type CompetitorGraphSync struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

func NewCompetitorGraphSync(client *neo4jdb.Client, log *logger.Logger) *CompetitorGraphSync {
	return &CompetitorGraphSync{client: client, log: log.With("component", "CompetitorGraphSync")}
}

// Sync replaces the brand's COMPETES_WITH edges with the given competitors.
// Competitor nodes are keyed by lowercased name so brands that share a
// competitor share the node.
func (g *CompetitorGraphSync) Sync(ctx context.Context, profile *brand.BrandProfile, competitors []brand.Competitor) error {
	if g == nil || g.client == nil || g.client.Driver == nil {
		return nil
	}
	if profile == nil || profile.ID == uuid.Nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	brandNode := brandRecord(profile, now)
	rels := competitorRecords(competitors, now)

	session := g.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: g.client.Database,
	})
	defer session.Close(ctx)

	for _, q := range []string{
		`CREATE CONSTRAINT brand_id_unique IF NOT EXISTS FOR (b:Brand) REQUIRE b.id IS UNIQUE`,
		`CREATE CONSTRAINT competitor_key_unique IF NOT EXISTS FOR (c:Competitor) REQUIRE c.key IS UNIQUE`,
	} {
		if res, err := session.Run(ctx, q, nil); err != nil {
			g.log.Warn("neo4j schema init failed (continuing)", "error", err)
		} else {
			_, _ = res.Consume(ctx)
		}
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MERGE (b:Brand {id: $brand.id})
SET b += $brand
WITH b
OPTIONAL MATCH (b)-[old:COMPETES_WITH]->(:Competitor)
DELETE old
`, map[string]any{"brand": brandNode})
		if err != nil {
			return nil, err
		}
		if _, err := res.Consume(ctx); err != nil {
			return nil, err
		}

		if len(rels) == 0 {
			return nil, nil
		}
		res, err = tx.Run(ctx, `
MATCH (b:Brand {id: $brand_id})
UNWIND $rels AS r
MERGE (c:Competitor {key: r.key})
SET c.name = r.name,
    c.website = r.website,
    c.market_position = r.market_position,
    c.pricing_tier = r.pricing_tier,
    c.synced_at = r.synced_at
MERGE (b)-[e:COMPETES_WITH]->(c)
SET e.id = r.id,
    e.threatLevel = r.threat_level,
    e.type = r.competitor_type,
    e.discovered_by = r.discovered_by,
    e.synced_at = r.synced_at
`, map[string]any{"brand_id": brandNode["id"], "rels": rels})
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	if err != nil {
		return err
	}
	g.log.Debug("Competitor graph synced", "profile_id", profile.ID, "competitors", len(rels))
	return nil
}

func brandRecord(p *brand.BrandProfile, now string) map[string]any {
	return map[string]any{
		"id":              p.ID.String(),
		"organization_id": p.OrganizationID,
		"name":            p.BrandName,
		"website":         p.WebsiteURL,
		"industry":        p.Industry,
		"synced_at":       now,
	}
}

// competitorRecords drops unnamed competitors and keeps the first of any
// names that collide case-insensitively.
func competitorRecords(competitors []brand.Competitor, now string) []map[string]any {
	seen := map[string]bool{}
	out := make([]map[string]any, 0, len(competitors))
	for _, c := range competitors {
		name := strings.TrimSpace(c.Name)
		key := strings.ToLower(name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, map[string]any{
			"id":              c.ID.String(),
			"key":             key,
			"name":            name,
			"website":         c.Website,
			"market_position": c.MarketPosition,
			"pricing_tier":    c.PricingTier,
			"threat_level":    c.ThreatLevel,
			"competitor_type": c.CompetitorType,
			"discovered_by":   c.DiscoveredBy,
			"synced_at":       now,
		})
	}
	return out
}
