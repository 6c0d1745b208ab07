package ai

import (
	"context"
	"regexp"
	"strings"
)

var (
	improvementKeywords = []string{"improve", "learn", "training", "study", "upskill"}

	improvementQuery = regexp.MustCompile(`(?i)(?:improve|learn|study|upskill)\s+(?:in\s+|as\s+(?:an?\s+)?)?(?:my\s+)?(.+?)(?:\.|$)`)
	jobQuery         = regexp.MustCompile(`(?i)(?:work as|job as|become|find work(?: as)?|looking for)\s+(?:an?\s+)?(.+?)(?:\.|$)`)
	location         = regexp.MustCompile(`(?i)\s+(?:in|near|around)\s+([\p{L}][\p{L}\s,]*?)\s*(?:\.|$)`)
	jobTitle         = regexp.MustCompile(`(?i)developer|engineer|manager|analyst|designer|architect|administrator|specialist`)
	skillSeparators  = regexp.MustCompile(`(?i)\s*(?:,|/|\band\b|&)\s*`)
	trainingSplit    = regexp.MustCompile(`(?i)\s*(?:,|/|\band\b|&|\bin\b)\s*`)

	// skillTerms are never read as a place after "in", so "analysis in
	// python" keeps python as a skill.
	skillTerms = map[string]bool{
		"php": true, "laravel": true, "react": true, "javascript": true,
		"typescript": true, "node": true, "nodejs": true, "python": true,
		"java": true, "go": true, "golang": true, "rust": true, "ruby": true,
		"sql": true, "mysql": true, "postgresql": true, "mongodb": true,
		"docker": true, "kubernetes": true, "aws": true, "azure": true,
		"excel": true, "git": true, "html": true, "css": true, "vue": true,
		"angular": true, "agile": true, "scrum": true,
	}
)

// Heuristic classifies prompts with keyword rules. It never fails and is
// the fallback whenever a language model is unavailable.
type Heuristic struct{}

// NewHeuristic returns the keyword based classifier.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

func (h *Heuristic) Name() string { return "heuristic" }

func (h *Heuristic) ClassifyIntent(_ context.Context, prompt string) (*Classification, error) {
	lower := strings.ToLower(prompt)

	intent := IntentJobSearch
	pattern := jobQuery
	for _, kw := range improvementKeywords {
		if strings.Contains(lower, kw) {
			intent = IntentSkillImprovement
			pattern = improvementQuery
			break
		}
	}

	query := prompt
	if m := pattern.FindStringSubmatch(prompt); m != nil {
		query = m[1]
	}

	return &Classification{Intent: intent, Query: NormalizeQuery(query), Source: h.Name()}, nil
}

func (h *Heuristic) ExtractJobParams(ctx context.Context, prompt string) (*JobParams, error) {
	c, _ := h.ClassifyIntent(ctx, prompt)
	query, loc := splitLocation(c.Query)
	return &JobParams{Query: query, Location: loc, Source: h.Name()}, nil
}

func (h *Heuristic) ExtractTrainingParams(ctx context.Context, prompt string) (*TrainingParams, error) {
	c, _ := h.ClassifyIntent(ctx, prompt)
	query, loc := splitLocation(c.Query)

	params := &TrainingParams{Location: loc, Source: h.Name()}
	if IsJobTitle(query) {
		params.Role = query
		return params, nil
	}

	for _, skill := range trainingSplit.Split(query, -1) {
		skill = strings.ToLower(NormalizeQuery(skill))
		if skill != "" {
			params.Skills = append(params.Skills, skill)
		}
	}
	return params, nil
}

// IsJobTitle reports whether the query reads like a role rather than a skill.
func IsJobTitle(query string) bool {
	return jobTitle.MatchString(query)
}

func splitLocation(query string) (string, string) {
	m := location.FindStringSubmatchIndex(query)
	if m == nil {
		return query, ""
	}
	place := NormalizeQuery(query[m[2]:m[3]])
	if mentionsSkill(place) {
		return query, ""
	}
	return NormalizeQuery(query[:m[0]]), place
}

func mentionsSkill(place string) bool {
	for _, part := range skillSeparators.Split(strings.ToLower(place), -1) {
		if skillTerms[part] {
			return true
		}
	}
	return false
}
