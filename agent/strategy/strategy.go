package strategy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/agent-coordination-engine/agent/contract"
	statex "github.com/tanpawarit/agent-coordination-engine/agent/state"
)

// Strategy drives the selected agents through one coordination pattern.
type Strategy interface {
	Pattern() statex.Pattern
	Run(ctx context.Context, agents []contractx.Agent, task string) (statex.Results, error)
}

// For returns the strategy implementing pattern.
func For(pattern statex.Pattern, client contractx.CompletionClient) (Strategy, error) {
	if client == nil {
		return nil, errors.New("completion client is required")
	}
	switch pattern {
	case statex.PatternSequential:
		return NewSequential(client), nil
	case statex.PatternParallel:
		return NewParallel(client), nil
	case statex.PatternHierarchical:
		return NewHierarchical(client), nil
	default:
		return nil, fmt.Errorf("%w: %q", statex.ErrUnsupportedPattern, pattern)
	}
}

// CheckPreconditions rejects agent sets a pattern cannot run with. It makes
// no completion calls.
func CheckPreconditions(pattern statex.Pattern, agents []contractx.Agent) error {
	if !pattern.IsValid() {
		return fmt.Errorf("%w: %q", statex.ErrUnsupportedPattern, pattern)
	}
	if len(agents) == 0 {
		return contractx.ErrNoSuitableAgents
	}
	if pattern == statex.PatternHierarchical {
		if _, _, ok := splitCoordinator(agents); !ok {
			return contractx.ErrNoCoordinator
		}
	}
	return nil
}

// splitCoordinator picks the first coordination agent; every other agent,
// including further coordination agents, is a specialist.
func splitCoordinator(agents []contractx.Agent) (contractx.Agent, []contractx.Agent, bool) {
	for i, a := range agents {
		if !a.IsCoordinator() {
			continue
		}
		specialists := make([]contractx.Agent, 0, len(agents)-1)
		specialists = append(specialists, agents[:i]...)
		specialists = append(specialists, agents[i+1:]...)
		return a, specialists, true
	}
	return contractx.Agent{}, nil, false
}

type invoker struct {
	client contractx.CompletionClient
	now    func() time.Time
}

func (iv invoker) step(ctx context.Context, agent contractx.Agent, input string) (statex.StepResult, error) {
	start := iv.now()
	out, err := iv.client.Complete(ctx, agent.Behavior, input)
	if err != nil {
		return statex.StepResult{}, fmt.Errorf("agent %s (%s): %w", agent.Name, agent.Specialization, err)
	}

	log.Ctx(ctx).Debug().
		Str("agent", agent.Name).
		Str("specialization", agent.Specialization).
		Dur("duration", iv.now().Sub(start)).
		Msg("agent step completed")

	return statex.StepResult{
		AgentName:      agent.Name,
		Specialization: agent.Specialization,
		Input:          input,
		Output:         out,
		Timestamp:      iv.now().UTC(),
	}, nil
}
