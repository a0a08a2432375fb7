package coordinatornode

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/agent-coordination-engine/agent/contract"
)

const memoryKeyPrefix = "coordination_"

// WriteMemory appends one entry per completed session. Failures are logged
// and never fail the request.
func WriteMemory(
	ctx context.Context,
	in *GraphState,
	memory contractx.MemoryStore,
	importance float64,
	nowFn func() time.Time,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	now := nowFn().UTC()
	names := make([]string, 0, len(in.Agents))
	for _, a := range in.Agents {
		names = append(names, a.Name)
	}

	entry := contractx.MemoryEntry{
		SessionID:        in.Session.ID,
		Task:             in.Task,
		Agents:           names,
		Pattern:          in.Pattern,
		PerformanceScore: in.Score,
		Timestamp:        now,
	}
	key := memoryKeyPrefix + strconv.FormatInt(now.UnixMilli(), 10)

	if err := memory.Append(ctx, in.UserID, key, entry, importance); err != nil {
		log.Ctx(ctx).Warn().Err(err).
			Str("session_id", in.Session.ID).
			Str("memory_key", key).
			Msg("append coordination memory")
	}
	return in, nil
}
