package storage

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/tanpawarit/agent-coordination-engine/agent/contract"
	qstashx "github.com/tanpawarit/agent-coordination-engine/pkg/qstash"
)

// QStashMemoryStore hands memory entries to QStash for delivery to an
// external memory service instead of writing them locally.
type QStashMemoryStore struct {
	client      *qstashx.Client
	destination string
}

var _ contractx.MemoryStore = (*QStashMemoryStore)(nil)

type memoryMessage struct {
	UserID     string                `json:"user_id"`
	Key        string                `json:"key"`
	Value      contractx.MemoryEntry `json:"value"`
	Importance float64               `json:"importance"`
}

func NewQStashMemoryStore(client *qstashx.Client, destination string) (*QStashMemoryStore, error) {
	if client == nil {
		return nil, errors.New("qstash client is required")
	}
	if destination == "" {
		return nil, errors.New("memory destination is required")
	}
	return &QStashMemoryStore{client: client, destination: destination}, nil
}

func (q *QStashMemoryStore) Append(ctx context.Context, userID string, key string, entry contractx.MemoryEntry, importance float64) error {
	msg := memoryMessage{
		UserID:     userID,
		Key:        key,
		Value:      entry,
		Importance: importance,
	}
	if _, err := q.client.PublishJSON(ctx, q.destination, msg, dedupID(userID, key, entry.SessionID)); err != nil {
		return fmt.Errorf("publish memory: %w", err)
	}
	return nil
}

// dedupID is unique per coordination session so two runs finishing in the
// same millisecond are both delivered.
func dedupID(userID, key, sessionID string) string {
	if sessionID == "" {
		return userID + ":" + key
	}
	return userID + ":" + sessionID + ":" + key
}
