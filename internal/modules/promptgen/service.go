package promptgen

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/brandlens-backend/internal/data/repos"
	"github.com/yungbote/brandlens-backend/internal/domain/perception"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

// Service generates prompts from a stored profile and persists them.
type Service struct {
	log   *logger.Logger
	repos *repos.Set
}

func NewService(log *logger.Logger, rs *repos.Set) *Service {
	return &Service{log: log.With("component", "PromptGenerator"), repos: rs}
}

type Request struct {
	Options
	// Regenerate deactivates the profile's current prompts first.
	Regenerate bool `json:"regenerate"`
}

// GenerateForProfile loads the profile's ground truth, renders prompts and
// stores them as active. The returned prompts carry their assigned ids.
func (s *Service) GenerateForProfile(ctx context.Context, profileID uuid.UUID, req Request) (Result, error) {
	dbc := dbctx.Context{Ctx: ctx}
	gt, err := s.repos.GroundTruth.Load(dbc, profileID)
	if err != nil {
		return Result{}, fmt.Errorf("load ground truth: %w", err)
	}
	res, err := Generate(gt, gt.BrandName(), req.Options)
	if err != nil {
		return Result{}, err
	}

	if req.Regenerate {
		n, err := s.repos.Prompts.Deactivate(dbc, profileID)
		if err != nil {
			return Result{}, fmt.Errorf("deactivate prompts: %w", err)
		}
		s.log.Debug("Deactivated prompts", "profile_id", profileID, "count", n)
	}

	rows := make([]*perception.GeneratedPrompt, len(res.Prompts))
	for i := range res.Prompts {
		p := res.Prompts[i]
		p.ProfileID = profileID
		rows[i] = &p
	}
	created, err := s.repos.Prompts.Create(dbc, rows)
	if err != nil {
		return Result{}, fmt.Errorf("save prompts: %w", err)
	}
	for i, p := range created {
		res.Prompts[i] = *p
	}

	s.log.Info("Prompts generated",
		"profile_id", profileID,
		"total", res.TotalGenerated,
		"regenerate", req.Regenerate,
	)
	return res, nil
}
