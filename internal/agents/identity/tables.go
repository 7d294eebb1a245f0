package identity

import "github.com/yungbote/brandlens-backend/internal/domain/brand"

// Archetypes are the twelve Jungian labels, in the order the model is shown them.
var Archetypes = []string{
	"innocent", "sage", "explorer", "outlaw", "magician", "hero",
	"lover", "jester", "everyman", "caregiver", "ruler", "creator",
}

// ArchetypeParams describes the content a given archetype implies.
type ArchetypeParams struct {
	Tone         []string
	ContentDepth string
	UseCitations bool
	HumorLevel   string
}

var archetypeParams = map[string]ArchetypeParams{
	"innocent":  {Tone: []string{"optimistic", "simple", "honest"}, ContentDepth: "surface", HumorLevel: "none"},
	"sage":      {Tone: []string{"analytical", "educational", "thoughtful"}, ContentDepth: "deep", UseCitations: true, HumorLevel: "none"},
	"explorer":  {Tone: []string{"adventurous", "independent", "ambitious"}, ContentDepth: "moderate", HumorLevel: "subtle"},
	"outlaw":    {Tone: []string{"rebellious", "disruptive", "bold"}, ContentDepth: "moderate", HumorLevel: "subtle"},
	"magician":  {Tone: []string{"visionary", "transformative", "charismatic"}, ContentDepth: "deep", HumorLevel: "subtle"},
	"hero":      {Tone: []string{"confident", "inspiring", "bold"}, ContentDepth: "moderate", HumorLevel: "none"},
	"lover":     {Tone: []string{"passionate", "intimate", "sensual"}, ContentDepth: "moderate", HumorLevel: "subtle"},
	"jester":    {Tone: []string{"witty", "playful", "irreverent"}, ContentDepth: "surface", HumorLevel: "prominent"},
	"everyman":  {Tone: []string{"friendly", "humble", "relatable"}, ContentDepth: "surface", HumorLevel: "subtle"},
	"caregiver": {Tone: []string{"nurturing", "supportive", "empathetic"}, ContentDepth: "moderate", HumorLevel: "none"},
	"ruler":     {Tone: []string{"authoritative", "commanding", "premium"}, ContentDepth: "moderate", UseCitations: true, HumorLevel: "none"},
	"creator":   {Tone: []string{"innovative", "visionary", "artistic"}, ContentDepth: "deep", HumorLevel: "subtle"},
}

// ParamsFor returns the parameters for archetype, falling back to sage.
func ParamsFor(archetype string) ArchetypeParams {
	if p, ok := archetypeParams[archetype]; ok {
		return p
	}
	return archetypeParams["sage"]
}

// DefaultArchetypeScores is used whenever the model omits the distribution.
func DefaultArchetypeScores() map[string]int {
	return map[string]int{
		"innocent":  30,
		"sage":      50,
		"explorer":  40,
		"outlaw":    20,
		"magician":  35,
		"hero":      45,
		"lover":     25,
		"jester":    20,
		"everyman":  40,
		"caregiver": 35,
		"ruler":     30,
		"creator":   45,
	}
}

func DefaultPersonality() brand.Personality {
	return brand.Personality{Sincerity: 50, Excitement: 50, Competence: 50, Sophistication: 50, Ruggedness: 50}
}

// Spectrums are the four 1-10 voice axes.
type Spectrums struct {
	FormalCasual             int `json:"formal_casual"`
	SeriousPlayful           int `json:"serious_playful"`
	RespectfulIrreverent     int `json:"respectful_irreverent"`
	EnthusiasticMatterOfFact int `json:"enthusiastic_matter_of_fact"`
}

func DefaultSpectrums() Spectrums {
	return Spectrums{FormalCasual: 5, SeriousPlayful: 5, RespectfulIrreverent: 3, EnthusiasticMatterOfFact: 5}
}

var traitsByDimension = []struct {
	score  func(brand.Personality) int
	traits []string
}{
	{func(p brand.Personality) int { return p.Sincerity }, []string{"honest", "genuine", "cheerful"}},
	{func(p brand.Personality) int { return p.Excitement }, []string{"daring", "spirited", "imaginative"}},
	{func(p brand.Personality) int { return p.Competence }, []string{"reliable", "intelligent", "successful"}},
	{func(p brand.Personality) int { return p.Sophistication }, []string{"upper-class", "charming", "elegant"}},
	{func(p brand.Personality) int { return p.Ruggedness }, []string{"outdoorsy", "tough", "rugged"}},
}

// Traits lists the adjectives for every personality dimension scoring above 70.
func Traits(p brand.Personality) []string {
	out := []string{}
	for _, d := range traitsByDimension {
		if d.score(p) > 70 {
			out = append(out, d.traits...)
		}
	}
	return out
}
