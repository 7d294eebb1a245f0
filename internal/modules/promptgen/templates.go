package promptgen

import (
	"github.com/yungbote/brandlens-backend/internal/domain/perception"
)

// Template is one prompt pattern. Placeholders are {name} and are replaced
// literally; unknown placeholders stay in the text.
type Template struct {
	ID                string
	Text              string
	Intent            string
	Themes            []string
	ExpectCitations   bool
	Twist             string
	HallucinationTest bool
	Priority          int
	// Review templates only render in the review-site pass.
	Review bool
}

type templateSet struct {
	Label     string
	Templates []Template
}

const reviewLabel = "The Trust"

var navigational = templateSet{Label: "The Who", Templates: []Template{
	{ID: "nav_1", Text: "What is {brandName} and what do they do?", Intent: "informational", Themes: []string{"company_overview", "products", "mission"}, ExpectCitations: true, Priority: 10},
	{ID: "nav_2", Text: "Tell me about {brandName} products", Intent: "informational", Themes: []string{"products", "features", "benefits"}, ExpectCitations: true, Priority: 9},
	{ID: "nav_3", Text: "Is {brandName} a legitimate company?", Intent: "navigational", Themes: []string{"trust", "credibility", "history"}, ExpectCitations: true, Priority: 8},
	{ID: "nav_4", Text: "What is {brandName} known for?", Intent: "informational", Themes: []string{"reputation", "differentiators", "awards"}, ExpectCitations: true, Priority: 8},
	{ID: "nav_5", Text: "Who founded {brandName} and when?", Intent: "informational", Themes: []string{"founders", "history", "origin_story"}, ExpectCitations: true, Priority: 6},
	{ID: "nav_6", Text: "Where is {brandName} headquartered?", Intent: "informational", Themes: []string{"location", "company_info"}, ExpectCitations: true, Priority: 5},
	{ID: "nav_product_1", Text: "What is {productName} by {brandName}?", Intent: "informational", Themes: []string{"product_description", "features", "use_cases"}, ExpectCitations: true, Priority: 9},
	{ID: "nav_product_2", Text: "How does {productName} work?", Intent: "informational", Themes: []string{"functionality", "features", "workflow"}, Priority: 8},
	{ID: "nav_proof_1", Text: "Has {brandName} won any awards?", Intent: "informational", Themes: []string{"awards", "recognition", "credibility"}, ExpectCitations: true, Priority: 7},
	{ID: "nav_proof_2", Text: "What do customers say about {brandName}?", Intent: "informational", Themes: []string{"testimonials", "reviews", "customer_satisfaction"}, ExpectCitations: true, Priority: 7},
	{ID: "nav_stats_1", Text: "How many customers does {brandName} have?", Intent: "informational", Themes: []string{"customer_base", "scale", "market_presence"}, ExpectCitations: true, Priority: 6},
	{ID: "nav_industry_1", Text: "Is {brandName} a leader in {industry}?", Intent: "informational", Themes: []string{"market_leadership", "industry_position", "reputation"}, ExpectCitations: true, Priority: 7},
	{ID: "nav_review_1", Text: "What do customers say about {brandName} on {reviewSite}?", Intent: "informational", Themes: []string{"customer_reviews", "ratings", "testimonials"}, ExpectCitations: true, Priority: 8, Review: true},
	{ID: "nav_review_2", Text: "What is {brandName}'s rating on {reviewSite}?", Intent: "informational", Themes: []string{"ratings", "score", "ranking"}, ExpectCitations: true, Priority: 8, Review: true},
	{ID: "nav_review_3", Text: "How many reviews does {brandName} have on {reviewSite}?", Intent: "informational", Themes: []string{"review_count", "popularity", "market_presence"}, ExpectCitations: true, Priority: 6, Review: true},
}}

var functional = templateSet{Label: "The How", Templates: []Template{
	{ID: "func_pain_1", Text: "What is the best solution for {painPoint}?", Intent: "commercial", Themes: []string{"solutions", "features", "benefits"}, Priority: 10},
	{ID: "func_pain_2", Text: "How can I solve {painPoint} for my business?", Intent: "commercial", Themes: []string{"solutions", "implementation", "roi"}, Priority: 9},
	{ID: "func_pain_3", Text: "What tools help with {painPoint}?", Intent: "commercial", Themes: []string{"tools", "solutions", "comparison"}, Priority: 8},
	{ID: "func_goal_1", Text: "What tools can help me {goal}?", Intent: "commercial", Themes: []string{"tools", "features", "comparison"}, Priority: 9},
	{ID: "func_goal_2", Text: "Best {productCategory} for {goal}", Intent: "commercial", Themes: []string{"recommendations", "features", "pricing"}, Priority: 10},
	{ID: "func_goal_3", Text: "How do I {goal} effectively?", Intent: "informational", Themes: []string{"strategies", "tools", "best_practices"}, Priority: 8},
	{ID: "func_question_1", Text: "{commonQuestion}", Intent: "informational", Themes: []string{"answer", "explanation", "resources"}, ExpectCitations: true, Priority: 8},
	{ID: "func_usecase_1", Text: "What is the best {productCategory} for {useCase}?", Intent: "commercial", Themes: []string{"recommendations", "use_case_fit", "features"}, Priority: 9},
	{ID: "func_usecase_2", Text: "Which {productCategory} is best for small businesses?", Intent: "commercial", Themes: []string{"recommendations", "pricing", "scalability"}, Priority: 8},
	{ID: "func_usecase_3", Text: "Enterprise {productCategory} recommendations", Intent: "commercial", Themes: []string{"enterprise_features", "security", "scalability"}, Priority: 7},
	{ID: "func_feature_1", Text: "How does {productName}'s {feature} work?", Intent: "informational", Themes: []string{"feature_details", "functionality", "implementation"}, Priority: 8},
	{ID: "func_feature_2", Text: "What are the benefits of {feature} in {productName}?", Intent: "commercial", Themes: []string{"feature_benefits", "value_proposition", "use_cases"}, Priority: 8},
	{ID: "func_benefit_1", Text: "How can {brandName} help me {benefit}?", Intent: "commercial", Themes: []string{"solution", "outcomes", "value"}, Priority: 9},
	{ID: "func_benefit_2", Text: "What results can I expect from {productName}?", Intent: "commercial", Themes: []string{"outcomes", "roi", "success_stories"}, ExpectCitations: true, Priority: 8},
	{ID: "func_journey_1", Text: "Is {brandName} right for {personaDescription}?", Intent: "commercial", Themes: []string{"fit_assessment", "target_audience", "use_cases"}, Priority: 8},
	{ID: "func_journey_2", Text: "What should I consider before buying {productName}?", Intent: "commercial", Themes: []string{"buying_criteria", "considerations", "evaluation"}, Priority: 7},
	{ID: "func_review_1", Text: "Does {reviewSite} recommend {brandName} for {useCase}?", Intent: "commercial", Themes: []string{"recommendation", "use_case_fit", "review_opinion"}, ExpectCitations: true, Priority: 8, Review: true},
	{ID: "func_review_2", Text: "What do {reviewSite} reviewers say about {brandName} for small businesses?", Intent: "commercial", Themes: []string{"segment_fit", "reviews", "recommendations"}, ExpectCitations: true, Priority: 7, Review: true},
}}

var comparative = templateSet{Label: "The Which", Templates: []Template{
	{ID: "comp_1", Text: "{brandName} vs {competitorName}", Intent: "commercial", Themes: []string{"comparison", "differentiators", "pricing"}, ExpectCitations: true, Priority: 10},
	{ID: "comp_2", Text: "What is better, {brandName} or {competitorName}?", Intent: "commercial", Themes: []string{"comparison", "pros_cons", "recommendations"}, ExpectCitations: true, Priority: 10},
	{ID: "comp_3", Text: "{brandName} vs {competitorName} for {useCase}", Intent: "commercial", Themes: []string{"comparison", "use_case_fit", "recommendation"}, ExpectCitations: true, Priority: 9},
	{ID: "comp_4", Text: "Compare {brandName} and {competitorName} pricing", Intent: "commercial", Themes: []string{"pricing", "value", "tiers"}, ExpectCitations: true, Priority: 8},
	{ID: "comp_alt_1", Text: "Best alternatives to {competitorName}", Intent: "commercial", Themes: []string{"alternatives", "comparison", "recommendations"}, Priority: 9},
	{ID: "comp_alt_2", Text: "What are the top {productCategory} solutions?", Intent: "commercial", Themes: []string{"ranking", "comparison", "features"}, Priority: 8},
	{ID: "comp_alt_3", Text: "{competitorName} competitors", Intent: "commercial", Themes: []string{"alternatives", "comparison", "market"}, Priority: 8},
	{ID: "comp_claim_1", Text: "Which {productCategory} has the best {claim}?", Intent: "commercial", Themes: []string{"claim_verification", "comparison", "evidence"}, ExpectCitations: true, Priority: 8},
	{ID: "comp_claim_2", Text: "Does {brandName} have better {claim} than {competitorName}?", Intent: "commercial", Themes: []string{"comparison", "claim_verification", "evidence"}, ExpectCitations: true, Priority: 9},
	{ID: "comp_review_1", Text: "How does {brandName} compare to {competitorName} on {reviewSite}?", Intent: "commercial", Themes: []string{"review_comparison", "ratings_comparison", "features"}, ExpectCitations: true, Priority: 9, Review: true},
	{ID: "comp_review_2", Text: "Which has better reviews on {reviewSite}, {brandName} or {competitorName}?", Intent: "commercial", Themes: []string{"review_comparison", "ratings", "winner"}, ExpectCitations: true, Priority: 8, Review: true},
}}

var voice = templateSet{Label: "The Vibe", Templates: []Template{
	{ID: "voice_1", Text: "Describe {brandName} in a few words", Intent: "informational", Themes: []string{"brand_personality", "positioning", "values"}, Priority: 7},
	{ID: "voice_2", Text: "What kind of company is {brandName}?", Intent: "informational", Themes: []string{"culture", "values", "positioning"}, ExpectCitations: true, Priority: 7},
	{ID: "voice_3", Text: "Is {brandName} innovative or traditional?", Intent: "informational", Themes: []string{"innovation", "positioning", "culture"}, Priority: 6},
	{ID: "voice_4", Text: "What are {brandName}'s core values?", Intent: "informational", Themes: []string{"values", "mission", "culture"}, ExpectCitations: true, Priority: 7},
	{ID: "voice_arch_1", Text: "Would you say {brandName} is a {archetype} brand?", Intent: "informational", Themes: []string{"archetype_alignment", "personality", "values"}, Priority: 6},
	{ID: "voice_arch_2", Text: "What type of brand personality does {brandName} have?", Intent: "informational", Themes: []string{"personality", "archetype", "tone"}, Priority: 6},
	{ID: "voice_tone_1", Text: "How would you describe {brandName}'s communication style?", Intent: "informational", Themes: []string{"voice", "tone", "communication_style"}, Priority: 6},
	{ID: "voice_vocab_1", Text: "Does {brandName} communicate in technical or simple terms?", Intent: "informational", Themes: []string{"vocabulary", "accessibility", "communication_style"}, Priority: 6},
	{ID: "voice_vocab_2", Text: "Is {brandName}'s content easy to understand?", Intent: "informational", Themes: []string{"readability", "accessibility", "clarity"}, Priority: 6},
	{ID: "voice_arch_3", Text: "Is {brandName} more {primaryArchetype} or {secondaryArchetype}?", Intent: "informational", Themes: []string{"archetype_comparison", "personality", "positioning"}, Priority: 5},
	{ID: "voice_spectrum_1", Text: "Is {brandName} formal or casual in tone?", Intent: "informational", Themes: []string{"formality", "tone", "brand_voice"}, Priority: 6},
}}

var adversarial = templateSet{Label: "The Risk", Templates: []Template{
	{ID: "adv_neg_1", Text: "What are the problems with {brandName}?", Intent: "informational", Themes: []string{"challenges", "criticism", "limitations"}, ExpectCitations: true, Twist: "negativity_probe", HallucinationTest: true, Priority: 8},
	{ID: "adv_neg_2", Text: "Why is {brandName} bad?", Intent: "informational", Themes: []string{"criticism", "alternatives"}, ExpectCitations: true, Twist: "extreme_negativity", HallucinationTest: true, Priority: 9},
	{ID: "adv_neg_3", Text: "{brandName} complaints and issues", Intent: "informational", Themes: []string{"complaints", "issues", "support"}, ExpectCitations: true, Twist: "complaint_search", HallucinationTest: true, Priority: 7},
	{ID: "adv_obj_1", Text: "Is {brandName} too expensive?", Intent: "commercial", Themes: []string{"pricing", "value", "alternatives"}, ExpectCitations: true, Twist: "price_objection", Priority: 8},
	{ID: "adv_obj_2", Text: "{objection} - is this true about {brandName}?", Intent: "informational", Themes: []string{"objection_handling", "facts", "clarification"}, ExpectCitations: true, Twist: "objection_probe", HallucinationTest: true, Priority: 9},
	{ID: "adv_obj_3", Text: "Is {brandName} worth the price?", Intent: "commercial", Themes: []string{"value", "roi", "comparison"}, Twist: "value_question", Priority: 7},
	{ID: "adv_misc_1", Text: "I heard {misconception} about {brandName}, is that true?", Intent: "informational", Themes: []string{"fact_check", "clarification", "truth"}, ExpectCitations: true, Twist: "misconception_test", HallucinationTest: true, Priority: 10},
	{ID: "adv_attack_1", Text: "Why should I choose {competitorName} over {brandName}?", Intent: "commercial", Themes: []string{"comparison", "competitor_strengths", "brand_weaknesses"}, ExpectCitations: true, Twist: "competitor_advocacy", Priority: 8},
	{ID: "adv_attack_2", Text: "What does {competitorName} do better than {brandName}?", Intent: "commercial", Themes: []string{"comparison", "competitor_advantages"}, ExpectCitations: true, Twist: "competitor_strengths", Priority: 8},
	{ID: "adv_hall_1", Text: "Does {brandName} offer {nonExistentFeature}?", Intent: "informational", Themes: []string{"feature_verification", "product_info"}, ExpectCitations: true, Twist: "hallucination_trap", HallucinationTest: true, Priority: 10},
	{ID: "adv_hall_2", Text: "Tell me about {brandName}'s {nonExistentFeature} feature", Intent: "informational", Themes: []string{"feature_info", "product_details"}, ExpectCitations: true, Twist: "hallucination_trap_direct", HallucinationTest: true, Priority: 10},
	{ID: "adv_hall_3", Text: "When did {brandName} win the {nonExistentFeature} award?", Intent: "informational", Themes: []string{"awards", "recognition"}, ExpectCitations: true, Twist: "fake_award_trap", HallucinationTest: true, Priority: 9},
	{ID: "adv_neg_keyword", Text: "Is {brandName} associated with {negativeKeyword}?", Intent: "informational", Themes: []string{"brand_perception", "reputation", "associations"}, ExpectCitations: true, Twist: "negative_association", HallucinationTest: true, Priority: 9},
	{ID: "adv_neg_keyword_2", Text: "I've heard {brandName} is {negativeKeyword}, true?", Intent: "informational", Themes: []string{"brand_perception", "fact_check", "clarification"}, ExpectCitations: true, Twist: "negative_hearsay", HallucinationTest: true, Priority: 9},
	{ID: "adv_misc_2", Text: "Does {brandName} really {misconception}?", Intent: "informational", Themes: []string{"fact_check", "clarification", "misconception"}, ExpectCitations: true, Twist: "misconception_direct", HallucinationTest: true, Priority: 9},
	{ID: "adv_misc_3", Text: "People say {misconception} about {brandName}, is that fair?", Intent: "informational", Themes: []string{"perception", "fairness", "clarification"}, ExpectCitations: true, Twist: "misconception_fairness", HallucinationTest: true, Priority: 8},
	{ID: "adv_trust_1", Text: "Can I trust {brandName} with my data?", Intent: "informational", Themes: []string{"data_security", "privacy", "trust"}, ExpectCitations: true, Twist: "trust_data", Priority: 8},
	{ID: "adv_trust_2", Text: "Has {brandName} had any security incidents?", Intent: "informational", Themes: []string{"security_history", "incidents", "reliability"}, ExpectCitations: true, Twist: "security_history", HallucinationTest: true, Priority: 8},
}}

var sets = map[perception.Category]templateSet{
	perception.CategoryNavigational: navigational,
	perception.CategoryFunctional:   functional,
	perception.CategoryComparative:  comparative,
	perception.CategoryVoice:        voice,
	perception.CategoryAdversarial:  adversarial,
}

// Label is the display label of a category.
func Label(c perception.Category) string { return sets[c].Label }

var personaMultipliers = map[string]float64{
	"primary":   1.5,
	"secondary": 1.0,
	"tertiary":  0.7,
	"anti":      0.5,
}

var threatMultipliers = map[string]float64{
	"critical": 1.5,
	"high":     1.3,
	"medium":   1.0,
	"low":      0.7,
}

// Features no brand offers. Used by hallucination traps.
var TrapFeatures = []string{
	"quantum computing integration",
	"blockchain-based authentication",
	"neural network auto-optimization",
	"real-time telepathy sync",
	"holographic dashboard",
	"time-travel data recovery",
	"mind-reading analytics",
	"perpetual motion engine",
}

var TrapAwards = []string{
	"Global Excellence in Innovation Award 2024",
	"International Digital Transformation Prize",
	"World Technology Leadership Medal",
	"Universal Best-in-Class Recognition",
}

func multiplier(table map[string]float64, key string) float64 {
	if m, ok := table[key]; ok {
		return m
	}
	return 1.0
}

// pick returns the templates of a set whose id passes keep. Review templates
// are never returned.
func (s templateSet) pick(keep func(id string) bool) []Template {
	var out []Template
	for _, t := range s.Templates {
		if !t.Review && keep(t.ID) {
			out = append(out, t)
		}
	}
	return out
}

func (s templateSet) byID(id string) (Template, bool) {
	for _, t := range s.Templates {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}

func reviewTemplates() []Template {
	var out []Template
	for _, s := range []templateSet{navigational, functional, comparative} {
		for _, t := range s.Templates {
			if t.Review {
				out = append(out, t)
			}
		}
	}
	return out
}
