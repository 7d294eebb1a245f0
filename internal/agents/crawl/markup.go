package crawl

import (
	"encoding/json"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Markup is one decoded JSON-LD object.
type Markup map[string]any

// Types returns the @type values, which JSON-LD allows as a string or a list.
func (m Markup) Types() []string {
	switch t := m["@type"].(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, v := range t {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func (m Markup) Is(types ...string) bool {
	for _, have := range m.Types() {
		for _, want := range types {
			if have == want {
				return true
			}
		}
	}
	return false
}

func (m Markup) String(key string) string {
	if s, ok := m[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// ExtractSchemaMarkup decodes every application/ld+json script in the page.
// Arrays and @graph containers are flattened; invalid JSON is skipped.
func ExtractSchemaMarkup(page string) []Markup {
	var out []Markup
	z := html.NewTokenizer(strings.NewReader(page))
	inLD := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			return out
		case html.StartTagToken:
			name, hasAttr := z.TagName()
			inLD = false
			if string(name) != "script" || !hasAttr {
				continue
			}
			for {
				key, val, more := z.TagAttr()
				if string(key) == "type" && strings.EqualFold(strings.TrimSpace(string(val)), "application/ld+json") {
					inLD = true
				}
				if !more {
					break
				}
			}
		case html.TextToken:
			if !inLD {
				continue
			}
			inLD = false
			out = append(out, decodeLD(strings.TrimSpace(string(z.Text())))...)
		case html.EndTagToken:
			inLD = false
		}
	}
}

func decodeLD(raw string) []Markup {
	if raw == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil
	}
	return flattenLD(v)
}

func flattenLD(v any) []Markup {
	switch t := v.(type) {
	case []any:
		var out []Markup
		for _, item := range t {
			out = append(out, flattenLD(item)...)
		}
		return out
	case map[string]any:
		if graph, ok := t["@graph"].([]any); ok {
			return flattenLD(graph)
		}
		return []Markup{Markup(t)}
	}
	return nil
}

var socialPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)https?://(www\.)?linkedin\.com/company/[^\s"'<>]+`),
	regexp.MustCompile(`(?i)https?://(www\.)?(twitter|x)\.com/[^\s"'<>]+`),
	regexp.MustCompile(`(?i)https?://(www\.)?facebook\.com/[^\s"'<>]+`),
	regexp.MustCompile(`(?i)https?://(www\.)?youtube\.com/(channel|c|user|@)[^\s"'<>]+`),
	regexp.MustCompile(`(?i)https?://(www\.)?github\.com/[^\s"'<>]+`),
	regexp.MustCompile(`(?i)https?://(www\.)?instagram\.com/[^\s"'<>]+`),
	regexp.MustCompile(`(?i)https?://(www\.)?crunchbase\.com/organization/[^\s"'<>]+`),
}

// ExtractSocialLinks finds profile links on the known social networks, deduplicated
// in pattern order with trailing slashes removed.
func ExtractSocialLinks(page string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, re := range socialPatterns {
		for _, m := range re.FindAllString(page, -1) {
			link := strings.TrimRight(m, "/")
			if link == "" || seen[link] {
				continue
			}
			seen[link] = true
			out = append(out, link)
		}
	}
	return out
}

// Meta holds the page-level facts used when no Organization markup exists.
type Meta struct {
	Title         string
	Description   string
	OGTitle       string
	OGDescription string
	OGSiteName    string
}

// ExtractMeta reads <title>, the description meta tag and the og: properties.
// Entities are decoded by the parser.
func ExtractMeta(page string) Meta {
	var m Meta
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return m
	}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if m.Title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					m.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				name, prop, content := "", "", ""
				for _, a := range n.Attr {
					switch strings.ToLower(a.Key) {
					case "name":
						name = strings.ToLower(a.Val)
					case "property":
						prop = strings.ToLower(a.Val)
					case "content":
						content = strings.TrimSpace(a.Val)
					}
				}
				switch {
				case name == "description" && m.Description == "":
					m.Description = content
				case prop == "og:title" && m.OGTitle == "":
					m.OGTitle = content
				case prop == "og:description" && m.OGDescription == "":
					m.OGDescription = content
				case prop == "og:site_name" && m.OGSiteName == "":
					m.OGSiteName = content
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return m
}
