package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/brandlens-backend/internal/app"
	model "github.com/yungbote/brandlens-backend/internal/domain/perception"
	"github.com/yungbote/brandlens-backend/internal/modules/perception"
	"github.com/yungbote/brandlens-backend/internal/modules/promptgen"
)

func newPromptsCmd() *cobra.Command {
	var (
		req        promptgen.Request
		categories []string
	)
	cmd := &cobra.Command{
		Use:   "prompts <profile-id>",
		Short: "Generate and store test prompts for a brand profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profileID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid profile id: %w", err)
			}
			req.Categories = toCategories(categories)
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				res, err := a.Services.Prompts.GenerateForProfile(ctx, profileID, req)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&categories, "categories", nil, "prompt categories (default all)")
	f.IntVar(&req.MaxPerCategory, "max-per-category", 0, "cap on prompts per category")
	f.StringSliceVar(&req.ReviewSites, "review-sites", nil, "review websites for the trust pass (up to five)")
	f.BoolVar(&req.Regenerate, "regenerate", false, "deactivate current prompts first")
	return cmd
}

func newScanCmd() *cobra.Command {
	var (
		opts       perception.Options
		categories []string
		useReal    bool
		compareTo  string
	)
	cmd := &cobra.Command{
		Use:   "scan <profile-id>",
		Short: "Run a perception scan for a brand profile",
		Long: `Asks every selected prompt on every platform, judges the answers against
the profile's ground truth and stores scores and insights.

Example:
  brandlens scan 3f0c... --platforms chatgpt,gemini --max-prompts 20 --real`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profileID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid profile id: %w", err)
			}
			var baseline uuid.UUID
			if compareTo != "" {
				if baseline, err = uuid.Parse(compareTo); err != nil {
					return fmt.Errorf("invalid --compare-to scan id: %w", err)
				}
			}
			opts.Categories = toCategories(categories)
			if cmd.Flags().Changed("real") {
				mock := !useReal
				opts.MockExternalPlatforms = &mock
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				res, err := a.Services.Scanner.Run(ctx, profileID, opts, stderrProgress(cmd.ErrOrStderr()))
				if err != nil {
					return err
				}
				if baseline == uuid.Nil {
					return printJSON(cmd.OutOrStdout(), res)
				}
				comparison, err := a.Services.Scanner.Compare(ctx, baseline, res.ScanID)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{"scan": res, "comparison": comparison})
			})
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&opts.Platforms, "platforms", nil, "platforms to query (default chatgpt)")
	f.IntVar(&opts.MaxPrompts, "max-prompts", 0, "balanced cap on prompts")
	f.StringSliceVar(&categories, "categories", nil, "only prompts in these categories")
	f.IntVar(&opts.Concurrency, "concurrency", 0, "pairs evaluated in parallel")
	f.BoolVar(&useReal, "real", false, "query every platform with a configured adapter instead of mocks")
	f.StringVar(&compareTo, "compare-to", "", "earlier scan id to compare the new scan against")
	return cmd
}

func toCategories(in []string) []model.Category {
	out := make([]model.Category, 0, len(in))
	for _, c := range in {
		out = append(out, model.Category(c))
	}
	return out
}
