package workflow

import (
	"github.com/spigell/skillmatch/internal/ai"
	"github.com/spigell/skillmatch/internal/gaps"
	"github.com/spigell/skillmatch/internal/matching"
	"github.com/spigell/skillmatch/internal/training"
)

// State is the record threaded through one workflow run.
type State struct {
	RequestID string
	UserID    int
	Prompt    string

	Intent       ai.Intent
	Query        string
	Location     string
	TargetSkills []string

	Evidence             []matching.CandidateSkillEvidence
	UserSkills           []string
	UserSkillProficiency map[string]int

	Jobs              []matching.RankedJob
	AverageMatchScore float64
	HasGoodMatches    bool
	SkillGaps         []string
	GapSeverity       gaps.Severity
	NeedsTraining     bool

	Trainings []training.Match
	UI        UIConfig

	DebugLogs []string
}

// UIConfig tells the client what to highlight.
type UIConfig struct {
	ShowSkillGapPopup  bool     `json:"showSkillGapPopup"`
	PopupTitle         string   `json:"popupTitle"`
	PopupBody          string   `json:"popupBody"`
	SuggestedNextSteps []string `json:"suggestedNextSteps"`
}

// Field is an optional value in an Update. Only set fields overwrite state.
type Field[T any] struct {
	value T
	set   bool
}

func Set[T any](v T) Field[T] {
	return Field[T]{value: v, set: true}
}

func (f Field[T]) IsSet() bool { return f.set }

func (f Field[T]) Value() T { return f.value }

func (f Field[T]) apply(dst *T) {
	if f.set {
		*dst = f.value
	}
}

// Update is what a node returns. The engine merges it into State field by
// field, last write wins.
type Update struct {
	Intent       Field[ai.Intent]
	Query        Field[string]
	Location     Field[string]
	TargetSkills Field[[]string]

	Evidence             Field[[]matching.CandidateSkillEvidence]
	UserSkills           Field[[]string]
	UserSkillProficiency Field[map[string]int]

	Jobs              Field[[]matching.RankedJob]
	AverageMatchScore Field[float64]
	HasGoodMatches    Field[bool]
	SkillGaps         Field[[]string]
	GapSeverity       Field[gaps.Severity]
	NeedsTraining     Field[bool]

	Trainings Field[[]training.Match]
	UI        Field[UIConfig]

	DebugLogs Field[[]string]
}

// Merge returns s with every set field of u applied.
func (s State) Merge(u Update) State {
	u.Intent.apply(&s.Intent)
	u.Query.apply(&s.Query)
	u.Location.apply(&s.Location)
	u.TargetSkills.apply(&s.TargetSkills)

	u.Evidence.apply(&s.Evidence)
	u.UserSkills.apply(&s.UserSkills)
	u.UserSkillProficiency.apply(&s.UserSkillProficiency)

	u.Jobs.apply(&s.Jobs)
	u.AverageMatchScore.apply(&s.AverageMatchScore)
	u.HasGoodMatches.apply(&s.HasGoodMatches)
	u.SkillGaps.apply(&s.SkillGaps)
	u.GapSeverity.apply(&s.GapSeverity)
	u.NeedsTraining.apply(&s.NeedsTraining)

	u.Trainings.apply(&s.Trainings)
	u.UI.apply(&s.UI)

	u.DebugLogs.apply(&s.DebugLogs)
	return s
}

// debugLog collects log lines on a copy of the state's DebugLogs.
type debugLog []string

func newDebugLog(s State, first string) *debugLog {
	logs := make(debugLog, len(s.DebugLogs), len(s.DebugLogs)+8)
	copy(logs, s.DebugLogs)
	logs = append(logs, first)
	return &logs
}

func (l *debugLog) add(line string) {
	*l = append(*l, line)
}

func (l *debugLog) field() Field[[]string] {
	return Set([]string(*l))
}
