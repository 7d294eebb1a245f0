package perception

import (
	"strconv"
	"strings"

	"github.com/yungbote/brandlens-backend/internal/domain/brand"
	"github.com/yungbote/brandlens-backend/internal/pkg/jsonx"
)

// Facts is the slice of the ground truth a judge scores answers against.
type Facts struct {
	BrandName        string
	FoundingYear     string
	Founders         []string
	Values           []string
	Products         []ProductFacts
	Claims           []string
	Competitors      []string
	Voice            VoiceFacts
	Misconceptions   []string
	NegativeKeywords []string
}

type ProductFacts struct {
	Name     string
	Features []string
	Benefits []string
}

type VoiceFacts struct {
	PrimaryTone     string
	VocabularyLevel string
	ApprovedPhrases []string
	BannedPhrases   []string
}

// FactsFrom flattens a loaded profile. Voice tone and vocabulary default to
// professional and moderate.
func FactsFrom(gt *brand.GroundTruth) Facts {
	f := Facts{
		BrandName: gt.BrandName(),
		Voice:     VoiceFacts{PrimaryTone: "professional", VocabularyLevel: "moderate"},
	}
	if gt == nil {
		return f
	}
	if org := gt.OrgSchema; org != nil {
		if org.FoundingDate != nil {
			f.FoundingYear = strconv.Itoa(org.FoundingDate.Year())
		}
		for _, fd := range jsonx.Decode[[]brand.Founder](org.Founders) {
			if n := strings.TrimSpace(fd.Name); n != "" {
				f.Founders = append(f.Founders, n)
			}
		}
	}
	if gt.Prism != nil {
		f.Values = jsonx.Strings(gt.Prism.CultureValues)
	}
	for _, p := range gt.Products {
		f.Products = append(f.Products, ProductFacts{
			Name:     p.Name,
			Features: jsonx.Strings(p.Features),
			Benefits: jsonx.Strings(p.Benefits),
		})
	}
	for _, c := range gt.Claims {
		if t := strings.TrimSpace(c.ClaimText); t != "" {
			f.Claims = append(f.Claims, t)
		}
	}
	for _, c := range gt.Competitors {
		if n := strings.TrimSpace(c.Name); n != "" {
			f.Competitors = append(f.Competitors, n)
		}
	}
	if v := gt.Voice; v != nil {
		if v.PrimaryTone != "" {
			f.Voice.PrimaryTone = v.PrimaryTone
		}
		if v.VocabularyLevel != "" {
			f.Voice.VocabularyLevel = v.VocabularyLevel
		}
		f.Voice.ApprovedPhrases = jsonx.Strings(v.ApprovedPhrases)
		f.Voice.BannedPhrases = jsonx.Strings(v.BannedPhrases)
	}
	if r := gt.Risk; r != nil {
		f.Misconceptions = jsonx.Strings(r.CommonMisconceptions)
		f.NegativeKeywords = jsonx.Strings(r.NegativeKeywords)
	}
	return f
}

// Format renders the facts block embedded in the judge prompt.
func (f Facts) Format() string {
	var lines []string
	lines = append(lines, "Brand Name: "+f.BrandName)
	if f.FoundingYear != "" {
		lines = append(lines, "Founded: "+f.FoundingYear)
	}
	if len(f.Founders) > 0 {
		lines = append(lines, "Founders: "+strings.Join(f.Founders, ", "))
	}
	if len(f.Values) > 0 {
		lines = append(lines, "Core Values: "+strings.Join(f.Values, ", "))
	}
	if len(f.Products) > 0 {
		lines = append(lines, "\nProducts:")
		for _, p := range f.Products {
			lines = append(lines, "- "+p.Name)
			if len(p.Features) > 0 {
				lines = append(lines, "  Features: "+strings.Join(p.Features, ", "))
			}
			if len(p.Benefits) > 0 {
				lines = append(lines, "  Benefits: "+strings.Join(p.Benefits, ", "))
			}
		}
	}
	if len(f.Claims) > 0 {
		lines = append(lines, "\nVerified Claims:")
		for _, c := range f.Claims {
			lines = append(lines, "- "+c)
		}
	}
	if len(f.Competitors) > 0 {
		lines = append(lines, "\nKnown Competitors: "+strings.Join(f.Competitors, ", "))
	}
	return strings.Join(lines, "\n")
}

// Format renders the voice block embedded in the judge prompt.
func (v VoiceFacts) Format() string {
	var lines []string
	if v.PrimaryTone != "" {
		lines = append(lines, "Primary Tone: "+v.PrimaryTone)
	}
	if v.VocabularyLevel != "" {
		lines = append(lines, "Vocabulary Level: "+v.VocabularyLevel)
	}
	if len(v.ApprovedPhrases) > 0 {
		lines = append(lines, "Approved Phrases: "+strings.Join(v.ApprovedPhrases, ", "))
	}
	if len(v.BannedPhrases) > 0 {
		lines = append(lines, "Banned Phrases: "+strings.Join(v.BannedPhrases, ", "))
	}
	if len(lines) == 0 {
		return "No specific voice profile defined"
	}
	return strings.Join(lines, "\n")
}
