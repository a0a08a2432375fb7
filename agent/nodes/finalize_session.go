package coordinatornode

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/agent-coordination-engine/agent/contract"
	statex "github.com/tanpawarit/agent-coordination-engine/agent/state"
)

// FinalizeSession writes results, score, phase and completion time in one update.
func FinalizeSession(
	ctx context.Context,
	in *GraphState,
	store statex.Store,
	nowFn func() time.Time,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	update := statex.CompletedUpdate(in.Results, in.Score, nowFn())
	if err := store.Update(ctx, in.Session.ID, update); err != nil {
		return nil, fmt.Errorf("%w: finalize session %s: %v", contractx.ErrPersistence, in.Session.ID, err)
	}
	if err := in.Session.Apply(update); err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().
		Str("session_id", in.Session.ID).
		Float64("score", in.Score).
		Msg("coordination session completed")
	return in, nil
}
