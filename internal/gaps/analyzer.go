// Package gaps derives aggregate match quality and missing skills from a
// candidate's ranked job results.
package gaps

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/spigell/skillmatch/internal/matching"
)

var (
	// ErrMalformedInput is returned for ranked results that could not have
	// been produced by the ranker.
	ErrMalformedInput = errors.New("malformed gap analysis input")
	// ErrInvalidConfig is returned for missing or out of range thresholds.
	ErrInvalidConfig = errors.New("invalid gap analysis config")
)

// Severity is a tiered indicator of how far the candidate is from the
// required number of good matches.
type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// Config holds the thresholds used to classify matches.
type Config struct {
	// GoodMatchThreshold is a percentage in (0, 100].
	GoodMatchThreshold float64 `mapstructure:"good-match-threshold" validate:"gt=0,lte=100"`
	MinGoodMatches     int     `mapstructure:"min-good-matches" validate:"gte=1"`
	// Limit caps the number of reported gaps. Zero keeps all of them.
	Limit int `mapstructure:"gap-limit" validate:"gte=0"`
}

// Validate checks the thresholds.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Analysis is the outcome of a gap analysis.
type Analysis struct {
	AverageMatchScore float64  `json:"average_match_score"`
	GoodMatches       int      `json:"good_matches"`
	HasGoodMatches    bool     `json:"has_good_matches"`
	SkillGaps         []string `json:"skill_gaps"`
	GapSeverity       Severity `json:"gap_severity"`
	NeedsTraining     bool     `json:"needs_training"`
}

// IsGoodMatch reports whether a score reaches the percentage threshold.
func IsGoodMatch(score, threshold float64) bool {
	return score >= threshold
}

// Analyze computes match quality over all ranked jobs and collects the
// skills missing from jobs that are not good matches, most frequent first.
func Analyze(ranked []matching.RankedJob, evidence []matching.CandidateSkillEvidence, cfg Config) (*Analysis, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := matching.ValidateEvidence(evidence); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}

	validated := matching.ValidatedSkills(evidence)
	counter := newFrequency()

	var total float64
	good := 0
	for i, job := range ranked {
		if strings.TrimSpace(job.ID) == "" {
			return nil, fmt.Errorf("%w: ranked job at position %d has empty id", ErrMalformedInput, i)
		}

		total += job.Result.Score
		if IsGoodMatch(job.Result.Score, cfg.GoodMatchThreshold) {
			good++
			continue
		}

		seen := make(map[string]struct{})
		for _, skill := range job.Job.RequiredSkills {
			name := matching.NormalizeSkill(skill)
			if name == "" {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			if _, ok := validated[name]; ok {
				continue
			}
			counter.add(name)
		}
	}

	analysis := &Analysis{
		GoodMatches:    good,
		HasGoodMatches: good >= cfg.MinGoodMatches,
		SkillGaps:      counter.ordered(cfg.Limit),
	}

	if len(ranked) > 0 {
		analysis.AverageMatchScore = total / float64(len(ranked))
	}

	switch {
	case analysis.HasGoodMatches:
		analysis.GapSeverity = SeverityLow
	case good == 0:
		analysis.GapSeverity = SeverityHigh
	default:
		analysis.GapSeverity = SeverityMedium
	}

	analysis.NeedsTraining = !analysis.HasGoodMatches

	return analysis, nil
}

// frequency counts skills and remembers the order they were first seen in.
type frequency struct {
	counts map[string]int
	order  []string
}

func newFrequency() *frequency {
	return &frequency{counts: make(map[string]int)}
}

func (f *frequency) add(skill string) {
	if _, ok := f.counts[skill]; !ok {
		f.order = append(f.order, skill)
	}
	f.counts[skill]++
}

func (f *frequency) ordered(limit int) []string {
	skills := make([]string, len(f.order))
	copy(skills, f.order)

	sort.SliceStable(skills, func(i, j int) bool {
		return f.counts[skills[i]] > f.counts[skills[j]]
	})

	if limit > 0 && len(skills) > limit {
		skills = skills[:limit]
	}
	return skills
}
