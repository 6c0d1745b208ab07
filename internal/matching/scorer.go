// Package matching scores and ranks job postings against a candidate's
// validated skills.
package matching

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidArgument marks caller configuration errors, such as a job
// without required skills.
var ErrInvalidArgument = errors.New("invalid argument")

// RejectionNoOverlap is set when no required skill is validated by the candidate.
const RejectionNoOverlap = "no_overlap"

// Coverage labels, ordered from worst to best.
const (
	LabelNoValidatedSkills = "No validated skills"
	LabelLargeGaps         = "Some skills, but large gaps"
	LabelMostCovered       = "Most skills covered"
	LabelFullyCovered      = "Fully covered"
)

// MatchResult is the outcome of comparing one job with one candidate.
type MatchResult struct {
	Rejected        bool           `json:"rejected"`
	RejectionReason string         `json:"rejection_reason,omitempty"`
	MatchedPairs    map[string]int `json:"matched_pairs"`
	MissingSkills   []string       `json:"missing_skills"`
	ScoreRaw        int            `json:"score_raw"`
	Score           float64        `json:"score"`
	Coverage        float64        `json:"coverage"`
	CoverageLabel   string         `json:"coverage_label"`
	Breadth         int            `json:"breadth"`
	EvidenceSum     int            `json:"evidence_sum"`
}

// MatchedSkills returns the matched skill names in alphabetical order.
func (r MatchResult) MatchedSkills() []string {
	skills := make([]string, 0, len(r.MatchedPairs))
	for skill := range r.MatchedPairs {
		skills = append(skills, skill)
	}
	sort.Strings(skills)
	return skills
}

// Compute scores the overlap between the required skills of a job and the
// candidate's validated evidence. It fails with ErrInvalidArgument when no
// usable required skill is given.
func Compute(requiredSkills []string, evidence []CandidateSkillEvidence) (MatchResult, error) {
	required := normalizeSet(requiredSkills)
	if len(required) == 0 {
		return MatchResult{}, fmt.Errorf("%w: job must require at least one skill", ErrInvalidArgument)
	}

	validated := ValidatedSkills(evidence)

	result := MatchResult{
		MatchedPairs: make(map[string]int),
		Breadth:      len(validated),
	}

	for _, skill := range required {
		weight, ok := validated[skill]
		if !ok {
			result.MissingSkills = append(result.MissingSkills, skill)
			continue
		}
		result.MatchedPairs[skill] = weight
		result.EvidenceSum += weight
	}

	result.ScoreRaw = len(result.MatchedPairs)
	if result.ScoreRaw == 0 {
		result.Rejected = true
		result.RejectionReason = RejectionNoOverlap
		result.CoverageLabel = coverageLabel(0)
		return result, nil
	}

	result.Coverage = float64(result.ScoreRaw) / float64(len(required))
	result.Score = result.Coverage * 100
	result.CoverageLabel = coverageLabel(result.Coverage)

	return result, nil
}

// coverageLabel buckets coverage in [0,1] into half-open tiers:
// (-inf,0] none, (0,0.5) large gaps, [0.5,1) most, [1,+inf) full.
func coverageLabel(coverage float64) string {
	switch {
	case coverage <= 0:
		return LabelNoValidatedSkills
	case coverage < 0.5:
		return LabelLargeGaps
	case coverage < 1:
		return LabelMostCovered
	default:
		return LabelFullyCovered
	}
}

// normalizeSet returns the distinct normalized skills, sorted.
func normalizeSet(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		name := NormalizeSkill(s)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
