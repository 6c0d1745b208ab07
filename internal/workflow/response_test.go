package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spigell/skillmatch/internal/ai"
	"github.com/spigell/skillmatch/internal/matching"
	"github.com/spigell/skillmatch/internal/training"
)

func TestJobWhy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result matching.MatchResult
		want   string
	}{
		{
			name:   "excellent",
			result: matching.MatchResult{Score: 100, ScoreRaw: 2},
			want:   "Excellent match! You have 2 of 2 required skills.",
		},
		{
			name:   "good",
			result: matching.MatchResult{Score: 75, ScoreRaw: 3, MissingSkills: []string{"aws"}},
			want:   "Good match. You have most required skills, only missing: aws.",
		},
		{
			name:   "partial",
			result: matching.MatchResult{Score: 20, ScoreRaw: 1, MissingSkills: []string{"a", "b", "c", "d"}},
			want:   "Partial match. Consider upskilling in: a, b, c.",
		},
		{
			name:   "none",
			result: matching.MatchResult{Rejected: true, MissingSkills: []string{"python"}},
			want:   "Skills not clearly specified, but matches your search query.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, JobWhy(tt.result))
		})
	}
}

func TestNewResponseTruncatesJobs(t *testing.T) {
	evidence := []matching.CandidateSkillEvidence{{Skill: "go", CredentialCount: 1}}
	var postings []matching.JobPosting
	for _, id := range []string{"a", "b", "c"} {
		postings = append(postings, matching.JobPosting{ID: id, Title: "Go " + id, RequiredSkills: []string{"go", "sql"}})
	}
	ranked, err := matching.Rank(evidence, postings, DefaultRankThreshold)
	assert.NoError(t, err)

	resp := NewResponse(&State{Intent: ai.IntentJobSearch, Jobs: ranked, DebugLogs: []string{"x"}}, 2, false)

	assert.Len(t, resp.Jobs, 2)
	assert.Equal(t, JobMatch{
		ID:            "a",
		Title:         "Go a",
		MatchScore:    50,
		Coverage:      0.5,
		CoverageLabel: matching.LabelMostCovered,
		MatchedSkills: []string{"go"},
		MissingSkills: []string{"sql"},
		Why:           "Partial match. Consider upskilling in: sql.",
	}, resp.Jobs[0])
	assert.Equal(t, []training.Match{}, resp.Trainings)
	assert.Nil(t, resp.DebugLogs)
}

func TestBuildUISkillImprovementWithoutTrainings(t *testing.T) {
	ui := BuildUI(State{Intent: ai.IntentSkillImprovement, Query: "rust"})

	assert.True(t, ui.ShowSkillGapPopup)
	assert.Equal(t, `We found 0 training programs to help you improve in "rust".`, ui.PopupBody)
	assert.Equal(t, []string{defaultNextStep}, ui.SuggestedNextSteps)
}
