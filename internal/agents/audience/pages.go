package audience

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// candidatePaths are probed under the site root, homepage first.
var candidatePaths = []string{
	"",
	"/about",
	"/about-us",
	"/company",
	"/customers",
	"/case-studies",
	"/solutions",
	"/industries",
	"/for-enterprise",
	"/for-startups",
	"/for-agencies",
	"/for-business",
	"/pricing",
	"/why-us",
	"/why",
	"/features",
	"/product",
	"/products",
}

// Pages whose markdown is at most minPageChars long are ignored.
const minPageChars = 200

type Page struct {
	URL     string
	Content string
}

// CandidateURLs lists every page the agent will try for websiteURL.
func CandidateURLs(websiteURL string) []string {
	base := strings.TrimSuffix(strings.TrimSpace(websiteURL), "/")
	out := make([]string, 0, len(candidatePaths))
	for _, p := range candidatePaths {
		out = append(out, base+p)
	}
	return out
}

// crawlPages fetches all candidate pages concurrently, each under its own
// timeout. Failed and thin pages are omitted; the rest keep candidate order.
func (a *Agent) crawlPages(ctx context.Context, websiteURL string, timeout time.Duration) []Page {
	urls := CandidateURLs(websiteURL)
	found := make([]*Page, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(gctx, timeout)
			defer cancel()
			page, err := a.fetcher.Scrape(pctx, u, []string{"markdown"})
			if err != nil {
				a.log.Debug("Audience page skipped", "url", u, "error", err)
				return nil
			}
			if page == nil || len(page.Markdown) <= minPageChars {
				return nil
			}
			found[i] = &Page{URL: u, Content: page.Markdown}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]Page, 0, len(found))
	for _, p := range found {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}

// combine renders pages as "### url" sections, clipping each page to perPage
// bytes and the whole to total.
func combine(pages []Page, perPage, total int) string {
	var b strings.Builder
	for i, p := range pages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		content := p.Content
		if len(content) > perPage {
			content = content[:perPage]
		}
		fmt.Fprintf(&b, "### %s\n%s", p.URL, content)
	}
	s := b.String()
	if len(s) > total {
		s = s[:total]
	}
	return strings.ToValidUTF8(s, "")
}
