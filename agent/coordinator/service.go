package coordinator

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/agent-coordination-engine/agent/contract"
	nodex "github.com/tanpawarit/agent-coordination-engine/agent/nodes"
	selectorx "github.com/tanpawarit/agent-coordination-engine/agent/selector"
	statex "github.com/tanpawarit/agent-coordination-engine/agent/state"
)

const DefaultMemoryImportance = 0.8

type Config struct {
	MemoryImportance float64 `envconfig:"MEMORY_IMPORTANCE" split_words:"true" default:"0.8"`
}

// Coordinator is the single entry point for coordination requests.
type Coordinator struct {
	selector *selectorx.Selector
	client   contractx.CompletionClient
	store    statex.Store
	memory   contractx.MemoryStore

	memoryImportance float64

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now func() time.Time
}

type Option func(*Coordinator)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

func New(
	registry contractx.AgentRegistry,
	client contractx.CompletionClient,
	store statex.Store,
	memory contractx.MemoryStore,
	cfg Config,
	opts ...Option,
) (*Coordinator, error) {
	if client == nil {
		return nil, errors.New("completion client is required")
	}
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if memory == nil {
		memory = noopMemoryStore{}
	}
	selector, err := selectorx.New(registry)
	if err != nil {
		return nil, err
	}

	importance := cfg.MemoryImportance
	if importance <= 0 {
		importance = DefaultMemoryImportance
	}

	c := &Coordinator{
		selector:         selector,
		client:           client,
		store:            store,
		memory:           memory,
		memoryImportance: importance,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	graphRunner, err := c.compileCoordinateGraph(context.Background())
	if err != nil {
		return nil, err
	}
	c.graphRunner = graphRunner

	return c, nil
}

// Coordinate runs one request end to end. The response is returned only when
// every step, including finalizing the session, succeeded.
func (c *Coordinator) Coordinate(ctx context.Context, req contractx.CoordinationRequest) (contractx.CoordinationResponse, error) {
	logger := log.Ctx(ctx).With().
		Str("user_id", req.UserID).
		Str("pattern", string(req.CoordinationPattern)).
		Logger()
	ctx = logger.WithContext(ctx)

	out, err := c.graphRunner.Invoke(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("coordination failed")
		return contractx.CoordinationResponse{}, err
	}
	return out, nil
}

// Session reads back a persisted coordination session.
func (c *Coordinator) Session(ctx context.Context, sessionID string) (*statex.CoordinationSession, error) {
	return c.store.Get(ctx, sessionID)
}

type noopMemoryStore struct{}

func (noopMemoryStore) Append(context.Context, string, string, contractx.MemoryEntry, float64) error {
	return nil
}
