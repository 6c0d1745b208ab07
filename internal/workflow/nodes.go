package workflow

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/ai"
	"github.com/spigell/skillmatch/internal/gaps"
	"github.com/spigell/skillmatch/internal/logger"
	"github.com/spigell/skillmatch/internal/matching"
	"github.com/spigell/skillmatch/internal/profile"
	"github.com/spigell/skillmatch/internal/training"
)

const maxLoggedSkills = 10

func (d Deps) nodeLogger(node NodeID, s State) *zap.Logger {
	return d.logger.With(append(logger.RequestFields(s.RequestID, s.UserID), zap.String(logger.FieldNode, string(node)))...)
}

func (d Deps) parseIntent(ctx context.Context, s State) (Update, error) {
	logs := newDebugLog(s, "ParseIntent: classifying prompt")

	c, err := d.Classifier.ClassifyIntent(ctx, s.Prompt)
	if err != nil {
		return Update{}, err
	}
	logs.add(fmt.Sprintf("Intent: %s, Query: %q (via %s)", c.Intent, c.Query, c.Source))

	u := Update{Intent: Set(c.Intent), Query: Set(c.Query)}

	switch c.Intent {
	case ai.IntentJobSearch:
		p, err := d.Classifier.ExtractJobParams(ctx, s.Prompt)
		if err != nil {
			return Update{}, err
		}
		if p.Query != "" {
			u.Query = Set(p.Query)
		}
		u.Location = Set(p.Location)
		logs.add(fmt.Sprintf("Job params: query %q, location %q (via %s)", u.Query.Value(), p.Location, p.Source))
	default:
		p, err := d.Classifier.ExtractTrainingParams(ctx, s.Prompt)
		if err != nil {
			return Update{}, err
		}
		if p.Role != "" {
			u.Query = Set(p.Role)
		}
		u.Location = Set(p.Location)
		u.TargetSkills = Set(p.Skills)
		logs.add(fmt.Sprintf("Training params: skills [%s], role %q (via %s)", strings.Join(p.Skills, ", "), p.Role, p.Source))
	}

	u.DebugLogs = logs.field()
	return u, nil
}

func (d Deps) loadProfile(ctx context.Context, s State) (Update, error) {
	log := d.nodeLogger(NodeLoadProfile, s)
	logs := newDebugLog(s, "LoadProfile: fetching user skills")

	var p *profile.Profile
	if d.Profiles != nil {
		pctx, cancel := withTimeout(ctx, d.Timeouts.Profile)
		var err error
		p, err = d.Profiles.LoadProfile(pctx, s.UserID)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return Update{}, ctx.Err()
			}
			log.Warn("failed to load profile, continuing without skills", zap.Error(err))
			logs.add(fmt.Sprintf("Error loading profile: %v", err))
			p = nil
		}
	}
	if p == nil {
		p = &profile.Profile{UserID: s.UserID}
	}

	skills := p.Skills()
	logs.add(fmt.Sprintf("Loaded %d validated skills for user %d", len(skills), s.UserID))
	if len(skills) > 0 {
		shown := skills
		suffix := ""
		if len(shown) > maxLoggedSkills {
			shown, suffix = shown[:maxLoggedSkills], "..."
		}
		logs.add(fmt.Sprintf("Skills: [%s%s]", strings.Join(shown, ", "), suffix))
	}

	proficiency := p.Proficiency
	if proficiency == nil {
		proficiency = map[string]int{}
	}

	return Update{
		Evidence:             Set(p.Evidence),
		UserSkills:           Set(skills),
		UserSkillProficiency: Set(proficiency),
		DebugLogs:            logs.field(),
	}, nil
}

func (d Deps) jobSearch(ctx context.Context, s State) (Update, error) {
	log := d.nodeLogger(NodeJobSearch, s)
	logs := newDebugLog(s, fmt.Sprintf("JobSearch: searching jobs for %q", s.Query))

	var postings []matching.JobPosting
	if d.Jobs != nil {
		sctx, cancel := withTimeout(ctx, d.Timeouts.Search)
		var err error
		postings, err = d.Jobs.SearchJobs(sctx, s.Query, s.Location, d.JobFetchLimit)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return Update{}, ctx.Err()
			}
			log.Warn("job search failed, continuing with no jobs", zap.Error(err))
			logs.add(fmt.Sprintf("Error in job search: %v", err))
			postings = nil
		}
	}
	postings, named := withJobIDs(postings)
	if named > 0 {
		log.Debug("named jobs without id", zap.Int("count", named))
		logs.add(fmt.Sprintf("Assigned ids to %d jobs without one", named))
	}
	logs.add(fmt.Sprintf("Found %d jobs", len(postings)))

	ranked, err := matching.Rank(s.Evidence, postings, d.RankThreshold)
	if err != nil {
		return Update{}, err
	}

	return Update{
		Jobs:      Set(ranked),
		DebugLogs: logs.field(),
	}, nil
}

// withJobIDs returns postings with blank ids replaced by their position,
// copying the slice only when something changes.
func withJobIDs(postings []matching.JobPosting) ([]matching.JobPosting, int) {
	named := 0
	var out []matching.JobPosting
	for i, p := range postings {
		if strings.TrimSpace(p.ID) != "" {
			continue
		}
		if out == nil {
			out = slices.Clone(postings)
		}
		out[i].ID = fmt.Sprintf("job-%d", i+1)
		named++
	}
	if out == nil {
		return postings, 0
	}
	return out, named
}

func (d Deps) gapAnalysis(_ context.Context, s State) (Update, error) {
	logs := newDebugLog(s, "GapAnalysis: analyzing skill gaps")

	a, err := gaps.Analyze(s.Jobs, s.Evidence, d.Gaps)
	if err != nil {
		return Update{}, err
	}

	logs.add(fmt.Sprintf("Average match score: %.1f%%", a.AverageMatchScore))
	logs.add(fmt.Sprintf("Good matches (>=%.0f%%): %d", d.Gaps.GoodMatchThreshold, a.GoodMatches))
	logs.add(fmt.Sprintf("Top missing skills: [%s]", strings.Join(a.SkillGaps, ", ")))
	logs.add(fmt.Sprintf("Gap severity: %s, needs training: %t", a.GapSeverity, a.NeedsTraining))

	return Update{
		AverageMatchScore: Set(a.AverageMatchScore),
		HasGoodMatches:    Set(a.HasGoodMatches),
		SkillGaps:         Set(a.SkillGaps),
		GapSeverity:       Set(a.GapSeverity),
		NeedsTraining:     Set(a.NeedsTraining),
		DebugLogs:         logs.field(),
	}, nil
}

func (d Deps) trainingRecommend(ctx context.Context, s State) (Update, error) {
	log := d.nodeLogger(NodeTrainingRecommend, s)
	logs := newDebugLog(s, "TrainingRecommend: finding relevant trainings")

	targets, err := d.trainingTargets(ctx, s, log, logs)
	if err != nil {
		return Update{}, err
	}

	var matches []training.Match
	if d.Recommender != nil {
		tctx, cancel := withTimeout(ctx, d.Timeouts.Training)
		matches, err = d.Recommender.Recommend(tctx, training.Request{
			SkillGaps:   targets,
			Location:    s.Location,
			Proficiency: s.UserSkillProficiency,
			Query:       s.Query,
		})
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return Update{}, ctx.Err()
			}
			log.Warn("training recommendation failed, continuing with none", zap.Error(err))
			logs.add(fmt.Sprintf("Error finding trainings: %v", err))
			matches = nil
		}
	}

	logs.add(fmt.Sprintf("Found %d trainings", len(matches)))
	if len(matches) > 0 {
		logs.add(fmt.Sprintf("Top training: %q (%.1f%%)", matches[0].Title, matches[0].RelevanceScore))
	}

	return Update{
		Trainings: Set(matches),
		DebugLogs: logs.field(),
	}, nil
}

func (d Deps) trainingTargets(ctx context.Context, s State, log *zap.Logger, logs *debugLog) ([]string, error) {
	fallback := []string{strings.ToLower(strings.TrimSpace(s.Query))}

	var targets []string
	switch {
	case s.Intent == ai.IntentJobSearch:
		targets = s.SkillGaps
	case ai.IsJobTitle(s.Query) && d.RoleSkills != nil:
		logs.add("Query looks like a job title, inferring skills")
		rctx, cancel := withTimeout(ctx, d.Timeouts.Search)
		inferred, err := d.RoleSkills.InferSkillsForRole(rctx, s.Query, inferredSkillLimit)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn("failed to infer role skills", zap.Error(err))
			logs.add(fmt.Sprintf("Error inferring skills: %v", err))
			return fallback, nil
		}
		logs.add(fmt.Sprintf("Inferred skills: [%s]", strings.Join(inferred, ", ")))
		targets = inferred
	default:
		targets = s.TargetSkills
	}

	if len(targets) == 0 {
		logs.add("No target skills identified, using query as-is")
		return fallback, nil
	}
	return targets, nil
}

func (d Deps) assembleResponse(_ context.Context, s State) (Update, error) {
	logs := newDebugLog(s, "AssembleResponse: building final response")

	ui := BuildUI(s)

	logs.add(fmt.Sprintf("Response assembled: %d jobs, %d trainings", min(len(s.Jobs), d.MaxJobs), len(s.Trainings)))
	logs.add(fmt.Sprintf("Popup: %t", ui.ShowSkillGapPopup))

	return Update{
		UI:        Set(ui),
		DebugLogs: logs.field(),
	}, nil
}
