package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/agent-coordination-engine/agent/contract"
	promptx "github.com/tanpawarit/agent-coordination-engine/agent/prompt"
	statex "github.com/tanpawarit/agent-coordination-engine/agent/state"
)

// Hierarchical lets the coordinator plan, runs each specialist against the
// plan one at a time, and hands all outputs back to the coordinator.
type Hierarchical struct {
	invoker
}

func NewHierarchical(client contractx.CompletionClient) *Hierarchical {
	return &Hierarchical{invoker{client: client, now: time.Now}}
}

func (h *Hierarchical) Pattern() statex.Pattern { return statex.PatternHierarchical }

func (h *Hierarchical) Run(ctx context.Context, agents []contractx.Agent, task string) (statex.Results, error) {
	coordinator, specialists, ok := splitCoordinator(agents)
	if !ok {
		return statex.Results{}, contractx.ErrNoCoordinator
	}

	specializations := make([]string, 0, len(specialists))
	for _, a := range specialists {
		specializations = append(specializations, a.Specialization)
	}

	planInput, err := promptx.Plan(task, specializations)
	if err != nil {
		return statex.Results{}, err
	}
	plan, err := h.client.Complete(ctx, coordinator.Behavior, planInput)
	if err != nil {
		return statex.Results{}, fmt.Errorf("coordinator %s plan: %w", coordinator.Name, err)
	}
	log.Ctx(ctx).Debug().Str("agent", coordinator.Name).Int("specialists", len(specialists)).Msg("plan ready")

	steps := make([]statex.StepResult, 0, len(specialists))
	for _, agent := range specialists {
		input, err := promptx.Specialist(plan, agent.Specialization, task)
		if err != nil {
			return statex.Results{}, err
		}
		step, err := h.step(ctx, agent, input)
		if err != nil {
			return statex.Results{}, err
		}
		steps = append(steps, step)
	}

	synthesisInput, err := promptx.CoordinatorSynthesis(task, plan, steps)
	if err != nil {
		return statex.Results{}, err
	}
	synthesis, err := h.client.Complete(ctx, coordinator.Behavior, synthesisInput)
	if err != nil {
		return statex.Results{}, fmt.Errorf("coordinator %s synthesis: %w", coordinator.Name, err)
	}

	return statex.Results{
		Pattern:     statex.PatternHierarchical,
		Steps:       steps,
		Plan:        plan,
		Synthesis:   synthesis,
		FinalOutput: synthesis,
	}, nil
}
