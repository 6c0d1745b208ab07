// Package profile holds the candidate skill profile and its stores.
package profile

import (
	"context"
	"errors"
	"sort"

	"github.com/spigell/skillmatch/internal/matching"
)

// ErrNotFound is returned when the store has no profile for a user.
var ErrNotFound = errors.New("profile not found")

// Profile is a candidate's skill evidence plus self-reported proficiency.
type Profile struct {
	UserID      int
	Evidence    []matching.CandidateSkillEvidence
	Proficiency map[string]int
}

// Store loads candidate profiles.
type Store interface {
	LoadProfile(ctx context.Context, userID int) (*Profile, error)
}

// Skills returns the normalized names of validated skills, sorted.
func (p *Profile) Skills() []string {
	if p == nil {
		return nil
	}
	validated := matching.ValidatedSkills(p.Evidence)
	out := make([]string, 0, len(validated))
	for skill := range validated {
		out = append(out, skill)
	}
	sort.Strings(out)
	return out
}

// Builder accumulates evidence rows for a single user. Repeated skills are
// merged by keeping the larger count.
type Builder struct {
	userID      int
	order       []string
	evidence    map[string]*matching.CandidateSkillEvidence
	proficiency map[string]int
}

func NewBuilder(userID int) *Builder {
	return &Builder{
		userID:      userID,
		evidence:    make(map[string]*matching.CandidateSkillEvidence),
		proficiency: make(map[string]int),
	}
}

// Add records one skill row. Empty names are ignored.
func (b *Builder) Add(skill string, credentials, experiences, proficiency int) {
	name := matching.NormalizeSkill(skill)
	if name == "" {
		return
	}

	e, ok := b.evidence[name]
	if !ok {
		e = &matching.CandidateSkillEvidence{Skill: name}
		b.evidence[name] = e
		b.order = append(b.order, name)
	}
	e.CredentialCount = max(e.CredentialCount, credentials)
	e.ExperienceCount = max(e.ExperienceCount, experiences)

	if proficiency > 0 {
		b.proficiency[name] = max(b.proficiency[name], proficiency)
	}
}

func (b *Builder) Profile() *Profile {
	p := &Profile{
		UserID:      b.userID,
		Evidence:    make([]matching.CandidateSkillEvidence, 0, len(b.order)),
		Proficiency: b.proficiency,
	}
	for _, name := range b.order {
		p.Evidence = append(p.Evidence, *b.evidence[name])
	}
	return p
}
