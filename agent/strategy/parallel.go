package strategy

import (
	"context"
	"time"

	contractx "github.com/tanpawarit/agent-coordination-engine/agent/contract"
	promptx "github.com/tanpawarit/agent-coordination-engine/agent/prompt"
	statex "github.com/tanpawarit/agent-coordination-engine/agent/state"
	"golang.org/x/sync/errgroup"
)

// Parallel gives every agent the same task concurrently, then merges the
// outputs with a synthesizer call. The first failure cancels the rest.
type Parallel struct {
	invoker
	synthesizer string
}

func NewParallel(client contractx.CompletionClient) *Parallel {
	return &Parallel{
		invoker:     invoker{client: client, now: time.Now},
		synthesizer: promptx.Synthesizer(),
	}
}

func (p *Parallel) Pattern() statex.Pattern { return statex.PatternParallel }

func (p *Parallel) Run(ctx context.Context, agents []contractx.Agent, task string) (statex.Results, error) {
	steps := make([]statex.StepResult, len(agents))

	g, gctx := errgroup.WithContext(ctx)
	for i, agent := range agents {
		g.Go(func() error {
			step, err := p.step(gctx, agent, task)
			if err != nil {
				return err
			}
			steps[i] = step
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return statex.Results{}, err
	}

	input, err := promptx.ParallelSynthesis(task, steps)
	if err != nil {
		return statex.Results{}, err
	}
	synthesis, err := p.client.Complete(ctx, p.synthesizer, input)
	if err != nil {
		return statex.Results{}, err
	}

	return statex.Results{
		Pattern:     statex.PatternParallel,
		Steps:       steps,
		Synthesis:   synthesis,
		FinalOutput: synthesis,
	}, nil
}
