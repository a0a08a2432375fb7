package coordinatornode

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/agent-coordination-engine/agent/contract"
	selectorx "github.com/tanpawarit/agent-coordination-engine/agent/selector"
	statex "github.com/tanpawarit/agent-coordination-engine/agent/state"
	strategyx "github.com/tanpawarit/agent-coordination-engine/agent/strategy"
)

type GraphInput = contractx.CoordinationRequest

type GraphOutput = contractx.CoordinationResponse

// GraphState is threaded through every node of one coordination run.
type GraphState struct {
	Task                  string
	UserID                string
	ConversationSessionID string
	Specializations       []string
	Pattern               statex.Pattern
	Now                   time.Time

	Agents   []contractx.Agent
	Strategy strategyx.Strategy
	Session  *statex.CoordinationSession

	Results statex.Results
	Score   float64
}

// ValidateRequest rejects blank fields. The task itself is carried through
// untouched: steps, session objective and memory all see the caller's text.
func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	if strings.TrimSpace(in.Task) == "" {
		return nil, fmt.Errorf("%w: task is empty", contractx.ErrValidation)
	}

	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is empty", contractx.ErrValidation)
	}

	specs := selectorx.Normalize(in.RequiredSpecializations)
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: required specializations must not be empty", contractx.ErrValidation)
	}

	pattern, err := statex.ParsePattern(string(in.CoordinationPattern))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", contractx.ErrValidation, err)
	}

	return &GraphState{
		Task:                  in.Task,
		UserID:                userID,
		ConversationSessionID: strings.TrimSpace(in.SessionID),
		Specializations:       specs,
		Pattern:               pattern,
		Now:                   nowFn().UTC(),
	}, nil
}
