package contract

import (
	"context"
)

// AgentRegistry is a read-through view of the agent catalog.
type AgentRegistry interface {
	ListActiveBySpecializations(ctx context.Context, specializations []string) ([]Agent, error)
}

// CompletionClient performs one stateless call: a behavior descriptor as the
// system turn and a single user turn. No history is carried between calls.
type CompletionClient interface {
	Complete(ctx context.Context, behavior string, input string) (string, error)
}

// CompletionFunc adapts a plain function to CompletionClient.
type CompletionFunc func(ctx context.Context, behavior string, input string) (string, error)

func (f CompletionFunc) Complete(ctx context.Context, behavior string, input string) (string, error) {
	return f(ctx, behavior, input)
}

// MemoryStore is append-only; the engine never reads it back.
type MemoryStore interface {
	Append(ctx context.Context, userID string, key string, entry MemoryEntry, importance float64) error
}
