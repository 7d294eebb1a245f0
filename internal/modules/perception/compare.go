package perception

import (
	"sort"

	"github.com/google/uuid"

	model "github.com/yungbote/brandlens-backend/internal/domain/perception"
)

// Comparison diffs a later scan against an earlier one. Deltas are next
// minus base.
type Comparison struct {
	BaseScanID       uuid.UUID      `json:"baseScanId"`
	NextScanID       uuid.UUID      `json:"nextScanId"`
	OverallDelta     int            `json:"overallDelta"`
	BaseQuadrant     model.Quadrant `json:"baseQuadrant"`
	NextQuadrant     model.Quadrant `json:"nextQuadrant"`
	QuadrantChanged  bool           `json:"quadrantChanged"`
	PlatformDeltas   map[string]int `json:"platformDeltas"`
	MetricDeltas     MetricScores   `json:"metricDeltas"`
	NewInsights      []string       `json:"newInsights"`
	ResolvedInsights []string       `json:"resolvedInsights"`
}

// CompareScans only reports platform deltas for platforms both scans scored.
func CompareScans(base, next *ScanResult) Comparison {
	a, b := base.AggregatedScores, next.AggregatedScores
	c := Comparison{
		BaseScanID:      base.ScanID,
		NextScanID:      next.ScanID,
		OverallDelta:    b.Overall - a.Overall,
		BaseQuadrant:    base.QuadrantPosition,
		NextQuadrant:    next.QuadrantPosition,
		QuadrantChanged: base.QuadrantPosition != next.QuadrantPosition,
		PlatformDeltas:  map[string]int{},
		MetricDeltas: MetricScores{
			Faithfulness:      b.ByMetric.Faithfulness - a.ByMetric.Faithfulness,
			ShareOfVoice:      b.ByMetric.ShareOfVoice - a.ByMetric.ShareOfVoice,
			Sentiment:         b.ByMetric.Sentiment - a.ByMetric.Sentiment,
			VoiceAlignment:    b.ByMetric.VoiceAlignment - a.ByMetric.VoiceAlignment,
			HallucinationRisk: b.ByMetric.HallucinationRisk - a.ByMetric.HallucinationRisk,
		},
		NewInsights:      difference(next.Insights, base.Insights),
		ResolvedInsights: difference(base.Insights, next.Insights),
	}
	for p, v := range b.ByPlatform {
		if old, ok := a.ByPlatform[p]; ok {
			c.PlatformDeltas[p] = v - old
		}
	}
	return c
}

// difference lists titles in a but not b, sorted.
func difference(a, b []string) []string {
	have := make(map[string]bool, len(b))
	for _, t := range b {
		have[t] = true
	}
	out := []string{}
	for _, t := range a {
		if !have[t] {
			out = append(out, t)
			have[t] = true
		}
	}
	sort.Strings(out)
	return out
}
