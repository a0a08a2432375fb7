package coordinatornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/agent-coordination-engine/agent/contract"
	selectorx "github.com/tanpawarit/agent-coordination-engine/agent/selector"
)

func SelectAgents(
	ctx context.Context,
	in *GraphState,
	selector *selectorx.Selector,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	agents, err := selector.Select(ctx, in.Specializations)
	if err != nil {
		return nil, err
	}
	in.Agents = agents
	return in, nil
}
