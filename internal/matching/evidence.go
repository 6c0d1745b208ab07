package matching

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedEvidence is returned when candidate evidence carries values
// that cannot come from a real profile, such as negative counts.
var ErrMalformedEvidence = errors.New("malformed candidate evidence")

// CandidateSkillEvidence is the evidence a candidate holds for one skill.
type CandidateSkillEvidence struct {
	Skill           string `json:"skill" mapstructure:"skill"`
	CredentialCount int    `json:"credential_count" mapstructure:"credential_count"`
	ExperienceCount int    `json:"experience_count" mapstructure:"experience_count"`
}

// IsValidated reports whether the skill is backed by at least one
// credential or one experience record.
func IsValidated(e CandidateSkillEvidence) bool {
	return e.CredentialCount > 0 || e.ExperienceCount > 0
}

// Weight is the evidence weight of a skill: credentials plus experiences.
// Unvalidated skills weigh nothing.
func Weight(e CandidateSkillEvidence) int {
	if !IsValidated(e) {
		return 0
	}
	return max(e.CredentialCount, 0) + max(e.ExperienceCount, 0)
}

// NormalizeSkill lowercases the name, trims it and collapses inner whitespace.
func NormalizeSkill(skill string) string {
	return strings.Join(strings.Fields(strings.ToLower(skill)), " ")
}

// ValidateEvidence rejects entries with negative counts.
func ValidateEvidence(evidence []CandidateSkillEvidence) error {
	for _, e := range evidence {
		if e.CredentialCount < 0 || e.ExperienceCount < 0 {
			return fmt.Errorf("%w: skill %q has negative counts (credentials=%d, experiences=%d)",
				ErrMalformedEvidence, e.Skill, e.CredentialCount, e.ExperienceCount)
		}
	}
	return nil
}

// ValidatedSkills returns the normalized names of validated skills mapped to
// their evidence weight. Duplicate entries for one skill keep the strongest
// count of each kind.
func ValidatedSkills(evidence []CandidateSkillEvidence) map[string]int {
	merged := make(map[string]CandidateSkillEvidence, len(evidence))
	for _, e := range evidence {
		name := NormalizeSkill(e.Skill)
		if name == "" {
			continue
		}

		current, ok := merged[name]
		if !ok {
			merged[name] = CandidateSkillEvidence{
				Skill:           name,
				CredentialCount: max(e.CredentialCount, 0),
				ExperienceCount: max(e.ExperienceCount, 0),
			}
			continue
		}

		current.CredentialCount = max(current.CredentialCount, e.CredentialCount)
		current.ExperienceCount = max(current.ExperienceCount, e.ExperienceCount)
		merged[name] = current
	}

	validated := make(map[string]int, len(merged))
	for name, e := range merged {
		if IsValidated(e) {
			validated[name] = Weight(e)
		}
	}

	return validated
}
