package coordinatornode

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/agent-coordination-engine/agent/contract"
	statex "github.com/tanpawarit/agent-coordination-engine/agent/state"
)

// RunStrategy executes the selected pattern. On failure the session is marked
// failed so it is not left running; the strategy error is what surfaces.
func RunStrategy(
	ctx context.Context,
	in *GraphState,
	store statex.Store,
	nowFn func() time.Time,
) (*GraphState, error) {
	if in == nil || in.Session == nil || in.Strategy == nil {
		return nil, fmt.Errorf("%w: graph session or strategy is nil", contractx.ErrValidation)
	}

	start := nowFn()
	results, err := in.Strategy.Run(ctx, in.Agents, in.Task)
	if err != nil {
		markFailed(ctx, store, in.Session.ID, err, nowFn())
		return nil, err
	}

	log.Ctx(ctx).Info().
		Str("session_id", in.Session.ID).
		Str("pattern", string(in.Pattern)).
		Int("steps", len(results.Steps)).
		Dur("duration", nowFn().Sub(start)).
		Msg("coordination strategy finished")

	in.Results = results
	return in, nil
}

func markFailed(ctx context.Context, store statex.Store, sessionID string, cause error, now time.Time) {
	// the request context may already be cancelled
	ctx = context.WithoutCancel(ctx)

	logger := log.Ctx(ctx).With().Str("session_id", sessionID).Logger()
	if err := store.Update(ctx, sessionID, statex.FailedUpdate(cause.Error(), now)); err != nil {
		logger.Error().Err(err).AnErr("cause", cause).Msg("mark session failed")
		return
	}
	logger.Warn().Err(cause).Msg("coordination session failed")
}
