package matching

import (
	"fmt"
	"sort"
)

// JobPosting is a job offer as seen by the ranker. Only ID and
// RequiredSkills take part in scoring; the rest is carried for display.
type JobPosting struct {
	ID             string   `json:"id" mapstructure:"id"`
	Title          string   `json:"title,omitempty" mapstructure:"title"`
	Company        string   `json:"company,omitempty" mapstructure:"company"`
	Location       string   `json:"location,omitempty" mapstructure:"location"`
	Description    string   `json:"description,omitempty" mapstructure:"description"`
	URL            string   `json:"url,omitempty" mapstructure:"url"`
	Lat            float64  `json:"lat,omitempty" mapstructure:"lat"`
	Lng            float64  `json:"lng,omitempty" mapstructure:"lng"`
	RequiredSkills []string `json:"required_skills" mapstructure:"required_skills"`
}

// RankedJob pairs a posting with its match result.
type RankedJob struct {
	ID     string      `json:"id"`
	Job    JobPosting  `json:"job"`
	Result MatchResult `json:"result"`
}

// GoodMatch reports whether the job reaches threshold, given as a fraction
// of a full match (0.75 means 75%).
func (r RankedJob) GoodMatch(threshold float64) bool {
	return r.Result.Score/100 >= threshold
}

// Rank scores every job against the candidate and orders them by score,
// then evidence sum, then breadth, all descending. Jobs with equal keys
// keep their input order. The threshold never excludes a job; use
// RankedJob.GoodMatch to classify results.
func Rank(evidence []CandidateSkillEvidence, jobs []JobPosting, matchThreshold float64) ([]RankedJob, error) {
	ranked := make([]RankedJob, 0, len(jobs))
	for _, job := range jobs {
		result, err := Compute(job.RequiredSkills, evidence)
		if err != nil {
			return nil, fmt.Errorf("job %q: %w", job.ID, err)
		}
		ranked = append(ranked, RankedJob{ID: job.ID, Job: job, Result: result})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].Result, ranked[j].Result
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.EvidenceSum != b.EvidenceSum {
			return a.EvidenceSum > b.EvidenceSum
		}
		return a.Breadth > b.Breadth
	})

	return ranked, nil
}
