package workflow

import (
	"fmt"
	"math"
	"strings"

	"github.com/spigell/skillmatch/internal/ai"
	"github.com/spigell/skillmatch/internal/matching"
	"github.com/spigell/skillmatch/internal/training"
)

const (
	maxWhyMissing   = 3
	maxPopupGaps    = 3
	maxLearnNext    = 2
	defaultNextStep = "Keep practicing your current skills and apply to matching opportunities"
)

// JobMatch is a ranked job as shown to the client.
type JobMatch struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Company       string   `json:"company"`
	Location      string   `json:"location"`
	URL           string   `json:"url,omitempty"`
	Lat           float64  `json:"lat"`
	Lng           float64  `json:"lng"`
	MatchScore    float64  `json:"matchScore"`
	Coverage      float64  `json:"coverage"`
	CoverageLabel string   `json:"coverageLabel"`
	MatchedSkills []string `json:"matchedSkills"`
	MissingSkills []string `json:"missingSkills"`
	Why           string   `json:"why"`
}

// Response is the result of one workflow run.
type Response struct {
	RequestID string           `json:"requestId"`
	Intent    ai.Intent        `json:"intent"`
	Query     string           `json:"query"`
	Jobs      []JobMatch       `json:"jobs"`
	Trainings []training.Match `json:"trainings"`
	UI        UIConfig         `json:"ui"`
	DebugLogs []string         `json:"debugLogs,omitempty"`
}

// NewResponse converts the final state, keeping the top maxJobs jobs.
func NewResponse(s *State, maxJobs int, withDebug bool) Response {
	if maxJobs <= 0 {
		maxJobs = DefaultMaxJobs
	}

	ranked := s.Jobs
	if len(ranked) > maxJobs {
		ranked = ranked[:maxJobs]
	}

	jobs := make([]JobMatch, 0, len(ranked))
	for _, r := range ranked {
		jobs = append(jobs, NewJobMatch(r))
	}

	trainings := s.Trainings
	if trainings == nil {
		trainings = []training.Match{}
	}

	resp := Response{
		RequestID: s.RequestID,
		Intent:    s.Intent,
		Query:     s.Query,
		Jobs:      jobs,
		Trainings: trainings,
		UI:        s.UI,
	}
	if withDebug {
		resp.DebugLogs = s.DebugLogs
	}
	return resp
}

func NewJobMatch(r matching.RankedJob) JobMatch {
	missing := r.Result.MissingSkills
	if missing == nil {
		missing = []string{}
	}
	return JobMatch{
		ID:            r.ID,
		Title:         r.Job.Title,
		Company:       r.Job.Company,
		Location:      r.Job.Location,
		URL:           r.Job.URL,
		Lat:           r.Job.Lat,
		Lng:           r.Job.Lng,
		MatchScore:    round1(r.Result.Score),
		Coverage:      r.Result.Coverage,
		CoverageLabel: r.Result.CoverageLabel,
		MatchedSkills: r.Result.MatchedSkills(),
		MissingSkills: missing,
		Why:           JobWhy(r.Result),
	}
}

// JobWhy explains a match score in one sentence.
func JobWhy(r matching.MatchResult) string {
	missing := r.MissingSkills
	if len(missing) > maxWhyMissing {
		missing = missing[:maxWhyMissing]
	}
	required := r.ScoreRaw + len(r.MissingSkills)

	switch {
	case r.Score >= 80:
		return fmt.Sprintf("Excellent match! You have %d of %d required skills.", r.ScoreRaw, required)
	case r.Score >= 60:
		return fmt.Sprintf("Good match. You have most required skills, only missing: %s.", strings.Join(missing, ", "))
	case r.Score > 0:
		return fmt.Sprintf("Partial match. Consider upskilling in: %s.", strings.Join(missing, ", "))
	default:
		return "Skills not clearly specified, but matches your search query."
	}
}

// BuildUI decides which popup and next steps the client shows.
func BuildUI(s State) UIConfig {
	var ui UIConfig

	switch s.Intent {
	case ai.IntentJobSearch:
		if s.NeedsTraining {
			ui.ShowSkillGapPopup = true
			ui.PopupTitle = "Skill Gap Detected"
			ui.PopupBody = fmt.Sprintf(
				"You match %d%% of requirements on average. We found %d training programs to help you upskill for %q roles. Top missing skills: %s.",
				int(math.Round(s.AverageMatchScore)), len(s.Trainings), s.Query, strings.Join(head(s.SkillGaps, maxPopupGaps), ", "),
			)
			if len(s.Trainings) > 0 {
				ui.SuggestedNextSteps = append(ui.SuggestedNextSteps, fmt.Sprintf("Complete %q to fill critical gaps", s.Trainings[0].Title))
			}
			if len(s.SkillGaps) > 0 {
				ui.SuggestedNextSteps = append(ui.SuggestedNextSteps, fmt.Sprintf("Consider learning %s for better job matches", strings.Join(head(s.SkillGaps, maxLearnNext), ", ")))
			}
		}
	default:
		ui.ShowSkillGapPopup = true
		ui.PopupTitle = "Upskilling Recommendations"
		ui.PopupBody = fmt.Sprintf("We found %d training programs to help you improve in %q.", len(s.Trainings), s.Query)
		if len(s.Trainings) > 0 {
			t := s.Trainings[0]
			ui.SuggestedNextSteps = append(ui.SuggestedNextSteps, fmt.Sprintf("Start with %q (%s%% match)", t.Title, formatScore(t.RelevanceScore)))
		}
		if len(s.Trainings) > 1 {
			ui.SuggestedNextSteps = append(ui.SuggestedNextSteps, fmt.Sprintf("Also consider %q", s.Trainings[1].Title))
		}
	}

	if len(ui.SuggestedNextSteps) == 0 {
		ui.SuggestedNextSteps = []string{defaultNextStep}
	}
	return ui
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func formatScore(v float64) string {
	return strings.TrimSuffix(fmt.Sprintf("%.1f", round1(v)), ".0")
}
