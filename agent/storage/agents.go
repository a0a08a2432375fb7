package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	contractx "github.com/tanpawarit/agent-coordination-engine/agent/contract"
)

type agentRow struct {
	bun.BaseModel `bun:"table:agents,alias:a"`

	ID             string    `bun:"id,pk"`
	Name           string    `bun:"name,notnull"`
	Specialization string    `bun:"specialization,notnull"`
	Behavior       string    `bun:"behavior,notnull"`
	Active         bool      `bun:"active,notnull"`
	CreatedAt      time.Time `bun:"created_at,notnull"`
	UpdatedAt      time.Time `bun:"updated_at,notnull"`
}

func (r agentRow) toAgent() contractx.Agent {
	return contractx.Agent{
		ID:             r.ID,
		Name:           r.Name,
		Specialization: r.Specialization,
		Behavior:       r.Behavior,
		Active:         r.Active,
	}
}

// AgentRegistry reads the catalog fresh on every call; nothing is cached.
type AgentRegistry struct {
	db  *DB
	now func() time.Time
}

var _ contractx.AgentRegistry = (*AgentRegistry)(nil)

func NewAgentRegistry(db *DB) *AgentRegistry {
	return &AgentRegistry{db: db, now: time.Now}
}

func (r *AgentRegistry) ListActiveBySpecializations(ctx context.Context, specializations []string) ([]contractx.Agent, error) {
	if len(specializations) == 0 {
		return nil, nil
	}

	var rows []agentRow
	err := r.db.bun.NewSelect().
		Model(&rows).
		Where("specialization IN (?)", bun.In(specializations)).
		Where("active = ?", true).
		Order("created_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select agents: %w", err)
	}
	return toAgents(rows), nil
}

func (r *AgentRegistry) List(ctx context.Context) ([]contractx.Agent, error) {
	var rows []agentRow
	if err := r.db.bun.NewSelect().Model(&rows).Order("created_at ASC", "id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("select agents: %w", err)
	}
	return toAgents(rows), nil
}

// Upsert inserts agents or updates them in place, keeping created_at.
func (r *AgentRegistry) Upsert(ctx context.Context, agents ...contractx.Agent) error {
	if len(agents) == 0 {
		return nil
	}

	now := r.now().UTC()
	rows := make([]agentRow, 0, len(agents))
	for i, a := range agents {
		if strings.TrimSpace(a.ID) == "" || strings.TrimSpace(a.Specialization) == "" {
			return fmt.Errorf("%w: agent %d needs id and specialization", contractx.ErrValidation, i)
		}
		rows = append(rows, agentRow{
			ID:             strings.TrimSpace(a.ID),
			Name:           a.Name,
			Specialization: strings.TrimSpace(a.Specialization),
			Behavior:       a.Behavior,
			Active:         a.Active,
			// keeps catalog order stable for batch inserts
			CreatedAt: now.Add(time.Duration(i) * time.Microsecond),
			UpdatedAt: now,
		})
	}

	_, err := r.db.bun.NewInsert().
		Model(&rows).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("specialization = EXCLUDED.specialization").
		Set("behavior = EXCLUDED.behavior").
		Set("active = EXCLUDED.active").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert agents: %w", err)
	}
	return nil
}

func toAgents(rows []agentRow) []contractx.Agent {
	out := make([]contractx.Agent, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toAgent())
	}
	return out
}
