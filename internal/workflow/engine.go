// Package workflow runs the recommendation pipeline: intent parsing,
// profile loading, job search, gap analysis, training recommendation and
// response assembly, routed by an explicit transition table.
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/logger"
)

type Engine struct {
	graph  Graph
	logger *zap.Logger
}

// NewEngine wires the pipeline nodes to deps. It fails when the gap
// analysis config is unusable.
func NewEngine(deps Deps, log *zap.Logger) (*Engine, error) {
	if err := deps.Gaps.Validate(); err != nil {
		return nil, err
	}

	log = logger.WithFields(log)
	deps = deps.withDefaults(log)
	return NewEngineWithGraph(Graph{
		Start:       NodeParseIntent,
		Nodes:       deps.nodes(),
		Transitions: Transitions(),
	}, log), nil
}

// NewEngineWithGraph runs an arbitrary graph. Used by tests and tools.
func NewEngineWithGraph(g Graph, log *zap.Logger) *Engine {
	return &Engine{graph: g, logger: logger.WithFields(log)}
}

// Run executes the graph for one request and returns the final state and
// the visited nodes in order.
func (e *Engine) Run(ctx context.Context, userID int, prompt string) (*State, []NodeID, error) {
	state := State{
		RequestID: uuid.NewString(),
		UserID:    userID,
		Prompt:    prompt,
	}
	log := e.logger.With(logger.RequestFields(state.RequestID, userID)...)
	log.Info("workflow started")
	started := time.Now()

	visited := make(map[NodeID]bool, len(e.graph.Nodes))
	var path []NodeID

	current := e.graph.Start
	for current != End {
		if err := ctx.Err(); err != nil {
			return &state, path, err
		}
		if visited[current] {
			return &state, path, fmt.Errorf("%w: %s", ErrCycle, current)
		}

		node, ok := e.graph.Nodes[current]
		if !ok {
			return &state, path, fmt.Errorf("%w: no node %q", ErrUndefinedState, current)
		}
		transition, ok := e.graph.Transitions[current]
		if !ok {
			return &state, path, fmt.Errorf("%w: no transition from %q", ErrUndefinedState, current)
		}

		visited[current] = true
		path = append(path, current)

		nodeStarted := time.Now()
		update, err := node(ctx, state)
		if err != nil {
			log.Error("node failed", zap.String(logger.FieldNode, string(current)), zap.Error(err))
			return &state, path, fmt.Errorf("node %s: %w", current, err)
		}
		state = state.Merge(update)

		next := transition.next(state)
		log.Debug("node finished",
			zap.String(logger.FieldNode, string(current)),
			zap.String("next", string(next)),
			zap.Duration("took", time.Since(nodeStarted)),
		)
		current = next
	}

	log.Info("workflow finished",
		zap.String("intent", string(state.Intent)),
		zap.Int("jobs", len(state.Jobs)),
		zap.Int("trainings", len(state.Trainings)),
		zap.Duration("took", time.Since(started)),
	)
	return &state, path, nil
}
