package catalog

import (
	"regexp"
	"strings"

	"github.com/spigell/skillmatch/internal/matching"
)

var jobKeywords = []string{
	"php", "laravel", "react", "javascript", "typescript", "node", "nodejs",
	"python", "java", "sql", "mysql", "postgresql", "mongodb", "docker",
	"kubernetes", "aws", "azure", "git", "api", "rest", "html", "css",
	"tailwind", "bootstrap", "vue", "angular", "agile", "scrum",
	"leadership", "communication",
}

var trainingKeywords = []string{
	"php", "laravel", "react", "javascript", "typescript", "node", "python",
	"java", "sql", "docker", "kubernetes", "aws", "leadership",
	"communication", "project management", "agile",
}

var (
	jobKeywordPatterns      = compileKeywords(jobKeywords)
	trainingKeywordPatterns = compileKeywords(trainingKeywords)
)

type keywordPattern struct {
	skill string
	re    *regexp.Regexp
}

// Keywords match on word boundaries so "java" is not found in "javascript".
func compileKeywords(keywords []string) []keywordPattern {
	out := make([]keywordPattern, 0, len(keywords))
	for _, kw := range keywords {
		out = append(out, keywordPattern{
			skill: kw,
			re:    regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`),
		})
	}
	return out
}

func extractKeywords(patterns []keywordPattern, texts ...string) []string {
	text := strings.Join(texts, " ")
	var skills []string
	for _, p := range patterns {
		if p.re.MatchString(text) {
			skills = append(skills, p.skill)
		}
	}
	return skills
}

// ExtractJobSkills finds known skills mentioned in a job title or description.
func ExtractJobSkills(texts ...string) []string {
	return extractKeywords(jobKeywordPatterns, texts...)
}

// ExtractTrainingSkills finds known skills mentioned in a training title or description.
func ExtractTrainingSkills(texts ...string) []string {
	return extractKeywords(trainingKeywordPatterns, texts...)
}

// skillNames normalizes a list whose entries are strings or {name: ...} objects.
func skillNames(raw []any) []string {
	var out []string
	for _, item := range raw {
		var name string
		switch v := item.(type) {
		case string:
			name = v
		case map[string]any:
			name, _ = v["name"].(string)
		}
		if name = matching.NormalizeSkill(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}
