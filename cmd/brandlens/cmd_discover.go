package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/brandlens-backend/internal/app"
	"github.com/yungbote/brandlens-backend/internal/modules/discovery"
)

func newDiscoverCmd() *cobra.Command {
	var (
		in     discovery.Input
		policy string
	)
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Run brand discovery for a website",
		Long: `Crawls the website, analyzes identity, competitors, products and audience,
and stores the results on the organization's brand profile.

Example:
  brandlens discover --org acme --url https://acme.example --brand Acme --max-pages 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(in.WebsiteURL) == "" {
				return fmt.Errorf("--url is required")
			}
			if policy != "" {
				in.Options.PersonaPolicy = discovery.ParsePersonaPolicy(policy)
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				res, err := a.Services.Discovery.Run(ctx, in, stderrProgress(cmd.ErrOrStderr()))
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.OrganizationID, "org", "", "organization id owning the profile")
	f.StringVar(&in.WebsiteURL, "url", "", "brand website URL")
	f.StringVar(&in.BrandName, "brand", "", "brand name (derived from the site when empty)")
	f.IntVar(&in.Options.MaxPages, "max-pages", 0, "crawl up to this many pages (0 scrapes the home page only)")
	f.IntVar(&in.Options.MaxProducts, "max-products", 0, "cap on extracted products")
	f.IntVar(&in.Options.MaxPersonas, "max-personas", 0, "cap on generated personas")
	f.StringVar(&policy, "persona-policy", "", "append or replace existing personas")
	f.BoolVar(&in.Options.SkipCrawler, "skip-crawler", false, "skip the crawl stage")
	f.BoolVar(&in.Options.SkipVibeCheck, "skip-vibe-check", false, "skip the identity stage")
	f.BoolVar(&in.Options.SkipCompetitors, "skip-competitors", false, "skip the competitor stage")
	f.BoolVar(&in.Options.SkipProducts, "skip-products", false, "skip the product stage")
	f.BoolVar(&in.Options.SkipAudience, "skip-audience", false, "skip the audience stage")
	return cmd
}
