package coordinatornode

import (
	"fmt"

	contractx "github.com/tanpawarit/agent-coordination-engine/agent/contract"
	strategyx "github.com/tanpawarit/agent-coordination-engine/agent/strategy"
)

// CheckPreconditions resolves the strategy and rejects agent sets it cannot
// run with, before any session exists.
func CheckPreconditions(in *GraphState, client contractx.CompletionClient) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	if err := strategyx.CheckPreconditions(in.Pattern, in.Agents); err != nil {
		return nil, err
	}
	strategy, err := strategyx.For(in.Pattern, client)
	if err != nil {
		return nil, err
	}
	in.Strategy = strategy
	return in, nil
}
