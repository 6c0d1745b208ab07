// Package ai defines the intent classification and parameter extraction
// contract used by the workflow, with a keyword heuristic implementation
// and a language-model backed one.
package ai

import (
	"context"
	"fmt"
	"strings"
)

// Intent is what the user wants from a request.
type Intent string

const (
	IntentJobSearch        Intent = "JOB_SEARCH"
	IntentSkillImprovement Intent = "SKILL_IMPROVEMENT"
)

// ParseIntent converts a raw label into an Intent.
func ParseIntent(raw string) (Intent, error) {
	switch Intent(strings.ToUpper(strings.TrimSpace(raw))) {
	case IntentJobSearch:
		return IntentJobSearch, nil
	case IntentSkillImprovement:
		return IntentSkillImprovement, nil
	default:
		return "", fmt.Errorf("unknown intent %q", raw)
	}
}

// Classification is the result of intent classification.
type Classification struct {
	Intent Intent
	Query  string
	Raw    string
	// Source names the classifier that produced the result.
	Source string
}

// JobParams are the job search parameters found in a prompt.
type JobParams struct {
	Query    string
	Location string
	Source   string
}

// TrainingParams are the training search parameters found in a prompt.
// Role is set instead of Skills when the prompt names a job title whose
// skills must be inferred.
type TrainingParams struct {
	Skills   []string
	Role     string
	Location string
	Source   string
}

// Classifier turns a free text prompt into structured parameters.
type Classifier interface {
	ClassifyIntent(ctx context.Context, prompt string) (*Classification, error)
	ExtractJobParams(ctx context.Context, prompt string) (*JobParams, error)
	ExtractTrainingParams(ctx context.Context, prompt string) (*TrainingParams, error)
	// Name identifies the implementation in logs.
	Name() string
}

// NormalizeQuery collapses whitespace and strips trailing punctuation.
func NormalizeQuery(query string) string {
	query = strings.Join(strings.Fields(query), " ")
	return strings.TrimRight(query, ".?!,;: ")
}
