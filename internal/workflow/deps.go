package workflow

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/ai"
	"github.com/spigell/skillmatch/internal/gaps"
	"github.com/spigell/skillmatch/internal/matching"
	"github.com/spigell/skillmatch/internal/profile"
	"github.com/spigell/skillmatch/internal/training"
)

const (
	DefaultMaxJobs       = 10
	DefaultJobFetchLimit = 20
	DefaultRankThreshold = 0.75
	inferredSkillLimit   = 10
)

// JobSearcher finds postings for a role.
type JobSearcher interface {
	SearchJobs(ctx context.Context, query, city string, limit int) ([]matching.JobPosting, error)
}

// RoleSkills infers the skills a role usually asks for.
type RoleSkills interface {
	InferSkillsForRole(ctx context.Context, role string, limit int) ([]string, error)
}

// Timeouts bound each collaborator call. Zero means no limit.
type Timeouts struct {
	Profile  time.Duration `mapstructure:"profile"`
	Search   time.Duration `mapstructure:"search"`
	Classify time.Duration `mapstructure:"classify"`
	Training time.Duration `mapstructure:"training"`
}

// Deps are the collaborators and settings the pipeline nodes use.
type Deps struct {
	Classifier  ai.Classifier
	Profiles    profile.Store
	Jobs        JobSearcher
	RoleSkills  RoleSkills
	Recommender training.Recommender

	Gaps          gaps.Config
	RankThreshold float64
	MaxJobs       int
	JobFetchLimit int
	Timeouts      Timeouts

	logger    *zap.Logger
	heuristic *ai.Heuristic
}

func (d Deps) withDefaults(log *zap.Logger) Deps {
	d.logger = log
	d.heuristic = ai.NewHeuristic()
	if d.Classifier == nil {
		d.Classifier = d.heuristic
	} else if d.Classifier.Name() != d.heuristic.Name() {
		d.Classifier = ai.NewFallback(d.Classifier, d.heuristic, d.Timeouts.Classify, log)
	}
	if d.RankThreshold <= 0 {
		d.RankThreshold = DefaultRankThreshold
	}
	if d.MaxJobs <= 0 {
		d.MaxJobs = DefaultMaxJobs
	}
	if d.JobFetchLimit <= 0 {
		d.JobFetchLimit = DefaultJobFetchLimit
	}
	return d
}

func (d Deps) nodes() map[NodeID]Node {
	return map[NodeID]Node{
		NodeParseIntent:       d.parseIntent,
		NodeLoadProfile:       d.loadProfile,
		NodeJobSearch:         d.jobSearch,
		NodeGapAnalysis:       d.gapAnalysis,
		NodeTrainingRecommend: d.trainingRecommend,
		NodeAssembleResponse:  d.assembleResponse,
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
