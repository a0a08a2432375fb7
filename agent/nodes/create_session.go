package coordinatornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/agent-coordination-engine/agent/contract"
	statex "github.com/tanpawarit/agent-coordination-engine/agent/state"
)

func CreateSession(
	ctx context.Context,
	in *GraphState,
	store statex.Store,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	agentIDs := make([]string, 0, len(in.Agents))
	for _, a := range in.Agents {
		agentIDs = append(agentIDs, a.ID)
	}

	sess := statex.NewSession(in.UserID, in.Task, in.Pattern, agentIDs, in.Now)
	if in.ConversationSessionID != "" {
		sess.Context[statex.ContextKeyConversationSessionID] = in.ConversationSessionID
	}
	if err := sess.Start(); err != nil {
		return nil, err
	}

	if _, err := store.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("%w: create session: %v", contractx.ErrPersistence, err)
	}

	log.Ctx(ctx).Info().
		Str("session_id", sess.ID).
		Str("pattern", string(in.Pattern)).
		Int("agents", len(agentIDs)).
		Msg("coordination session created")

	in.Session = sess
	return in, nil
}
