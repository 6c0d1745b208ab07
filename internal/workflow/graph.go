package workflow

import (
	"context"
	"errors"

	"github.com/spigell/skillmatch/internal/ai"
)

var (
	// ErrUndefinedState means the engine reached a node with no registered
	// handler or transition.
	ErrUndefinedState = errors.New("undefined workflow state")
	// ErrCycle means a transition led back to an already visited node.
	ErrCycle = errors.New("workflow cycle detected")
)

type NodeID string

const (
	NodeParseIntent       NodeID = "ParseIntent"
	NodeLoadProfile       NodeID = "LoadProfile"
	NodeJobSearch         NodeID = "JobSearch"
	NodeGapAnalysis       NodeID = "GapAnalysis"
	NodeTrainingRecommend NodeID = "TrainingRecommend"
	NodeAssembleResponse  NodeID = "AssembleResponse"
	End                   NodeID = "END"
)

// Node transforms the current state into an update.
type Node func(ctx context.Context, s State) (Update, error)

// Branch routes to Next when When holds.
type Branch struct {
	Name string
	When func(State) bool
	Next NodeID
}

// Transition picks the first matching branch, or Default.
type Transition struct {
	Branches []Branch
	Default  NodeID
}

func (t Transition) next(s State) NodeID {
	for _, b := range t.Branches {
		if b.When(s) {
			return b.Next
		}
	}
	return t.Default
}

// Graph is a start node plus node handlers and the transition table.
type Graph struct {
	Start       NodeID
	Nodes       map[NodeID]Node
	Transitions map[NodeID]Transition
}

func isJobSearch(s State) bool   { return s.Intent == ai.IntentJobSearch }
func needsTraining(s State) bool { return s.NeedsTraining }

// Transitions is the fixed routing of the recommendation pipeline.
func Transitions() map[NodeID]Transition {
	return map[NodeID]Transition{
		NodeParseIntent: {Default: NodeLoadProfile},
		NodeLoadProfile: {
			Branches: []Branch{{Name: "job_search", When: isJobSearch, Next: NodeJobSearch}},
			Default:  NodeTrainingRecommend,
		},
		NodeJobSearch: {Default: NodeGapAnalysis},
		NodeGapAnalysis: {
			Branches: []Branch{{Name: "needs_training", When: needsTraining, Next: NodeTrainingRecommend}},
			Default:  NodeAssembleResponse,
		},
		NodeTrainingRecommend: {Default: NodeAssembleResponse},
		NodeAssembleResponse:  {Default: End},
	}
}
