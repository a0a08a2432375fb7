package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	contractx "github.com/tanpawarit/agent-coordination-engine/agent/contract"
)

type memoryRow struct {
	bun.BaseModel `bun:"table:user_memories,alias:um"`

	ID         string                `bun:"id,pk"`
	UserID     string                `bun:"user_id,notnull"`
	Key        string                `bun:"memory_key,notnull"`
	Value      contractx.MemoryEntry `bun:"memory_value"`
	Importance float64               `bun:"importance,notnull"`
	CreatedAt  time.Time             `bun:"created_at,notnull"`
}

type MemoryRecord struct {
	Key        string
	Value      contractx.MemoryEntry
	Importance float64
	CreatedAt  time.Time
}

// MemoryStore appends user memories; rows are never updated.
type MemoryStore struct {
	db  *DB
	now func() time.Time
}

var _ contractx.MemoryStore = (*MemoryStore)(nil)

func NewMemoryStore(db *DB) *MemoryStore {
	return &MemoryStore{db: db, now: time.Now}
}

func (m *MemoryStore) Append(ctx context.Context, userID string, key string, entry contractx.MemoryEntry, importance float64) error {
	row := &memoryRow{
		ID:         uuid.NewString(),
		UserID:     userID,
		Key:        key,
		Value:      entry,
		Importance: importance,
		CreatedAt:  m.now().UTC(),
	}
	if _, err := m.db.bun.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert memory: %w", err)
	}
	return nil
}

func (m *MemoryStore) List(ctx context.Context, userID string) ([]MemoryRecord, error) {
	var rows []memoryRow
	err := m.db.bun.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select memories: %w", err)
	}

	out := make([]MemoryRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, MemoryRecord{
			Key:        row.Key,
			Value:      row.Value,
			Importance: row.Importance,
			CreatedAt:  row.CreatedAt,
		})
	}
	return out, nil
}
