package coordinatornode

import (
	"fmt"

	contractx "github.com/tanpawarit/agent-coordination-engine/agent/contract"
	statex "github.com/tanpawarit/agent-coordination-engine/agent/state"
)

func BuildResponse(in *GraphState) (GraphOutput, error) {
	if in == nil || in.Session == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	if in.Session.Phase != statex.PhaseCompleted {
		return GraphOutput{}, fmt.Errorf("%w: session %s is %s", contractx.ErrValidation, in.Session.ID, in.Session.Phase)
	}

	used := make([]contractx.AgentRef, 0, len(in.Agents))
	for _, a := range in.Agents {
		used = append(used, a.Ref())
	}

	return GraphOutput{
		Success:             true,
		SessionID:           in.Session.ID,
		Results:             in.Results,
		AgentsUsed:          used,
		CoordinationPattern: in.Pattern,
		PerformanceScore:    in.Score,
	}, nil
}
