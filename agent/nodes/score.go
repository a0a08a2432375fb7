package coordinatornode

import (
	"fmt"

	contractx "github.com/tanpawarit/agent-coordination-engine/agent/contract"
	scoringx "github.com/tanpawarit/agent-coordination-engine/agent/scoring"
)

func Score(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	in.Score = scoringx.Score(in.Results)
	return in, nil
}
