package strategy

import (
	"context"
	"time"

	contractx "github.com/tanpawarit/agent-coordination-engine/agent/contract"
	statex "github.com/tanpawarit/agent-coordination-engine/agent/state"
)

// Sequential feeds each agent the previous agent's output.
type Sequential struct {
	invoker
}

func NewSequential(client contractx.CompletionClient) *Sequential {
	return &Sequential{invoker{client: client, now: time.Now}}
}

func (s *Sequential) Pattern() statex.Pattern { return statex.PatternSequential }

func (s *Sequential) Run(ctx context.Context, agents []contractx.Agent, task string) (statex.Results, error) {
	steps := make([]statex.StepResult, 0, len(agents))
	current := task
	for _, agent := range agents {
		step, err := s.step(ctx, agent, current)
		if err != nil {
			return statex.Results{}, err
		}
		steps = append(steps, step)
		current = step.Output
	}

	return statex.Results{
		Pattern:     statex.PatternSequential,
		Steps:       steps,
		FinalOutput: current,
	}, nil
}
