// Package profiles reads a brand's ground truth and takes the curated
// claims and risk factors that discovery cannot infer.
package profiles

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/brandlens-backend/internal/data/repos"
	"github.com/yungbote/brandlens-backend/internal/domain/brand"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
	errs "github.com/yungbote/brandlens-backend/internal/pkg/errors"
	"github.com/yungbote/brandlens-backend/internal/pkg/jsonx"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

type Service struct {
	log   *logger.Logger
	repos *repos.Set
}

func NewService(log *logger.Logger, rs *repos.Set) *Service {
	return &Service{log: log.With("component", "Profiles"), repos: rs}
}

type ClaimInput struct {
	ClaimText   string `json:"claimText"`
	ClaimType   string `json:"claimType,omitempty"`
	EvidenceURL string `json:"evidenceUrl,omitempty"`
}

type RiskInput struct {
	CommonMisconceptions []string `json:"commonMisconceptions"`
	NegativeKeywords     []string `json:"negativeKeywords"`
}

func (s *Service) GroundTruth(ctx context.Context, profileID uuid.UUID) (*brand.GroundTruth, error) {
	return s.repos.GroundTruth.Load(dbctx.Context{Ctx: ctx}, profileID)
}

// ReplaceClaims swaps the profile's claims for the given set. Blank claims
// are dropped; duplicates (case-insensitive) keep the first.
func (s *Service) ReplaceClaims(ctx context.Context, profileID uuid.UUID, in []ClaimInput) ([]*brand.Claim, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := s.repos.Profiles.GetByID(dbc, profileID); err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	claims := make([]*brand.Claim, 0, len(in))
	for _, c := range in {
		text := strings.TrimSpace(c.ClaimText)
		key := strings.ToLower(text)
		if text == "" || seen[key] {
			continue
		}
		seen[key] = true
		claims = append(claims, &brand.Claim{
			ProfileID:   profileID,
			ClaimText:   text,
			ClaimType:   strings.TrimSpace(c.ClaimType),
			EvidenceURL: strings.TrimSpace(c.EvidenceURL),
		})
	}
	out, err := s.repos.Claims.ReplaceAll(dbc, profileID, claims)
	if err != nil {
		return nil, fmt.Errorf("replace claims: %w", err)
	}
	s.log.Info("Claims replaced", "profile_id", profileID, "count", len(out))
	return out, nil
}

func (s *Service) SetRiskFactors(ctx context.Context, profileID uuid.UUID, in RiskInput) (*brand.RiskFactors, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := s.repos.Profiles.GetByID(dbc, profileID); err != nil {
		return nil, err
	}
	misconceptions := clean(in.CommonMisconceptions)
	keywords := clean(in.NegativeKeywords)
	if len(misconceptions) == 0 && len(keywords) == 0 {
		return nil, fmt.Errorf("risk factors: nothing to store: %w", errs.ErrInvalidArgument)
	}
	out, err := s.repos.Risk.Upsert(dbc, &brand.RiskFactors{
		ProfileID:            profileID,
		CommonMisconceptions: jsonx.Encode(misconceptions),
		NegativeKeywords:     jsonx.Encode(keywords),
	})
	if err != nil {
		return nil, fmt.Errorf("upsert risk factors: %w", err)
	}
	return out, nil
}

func clean(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
