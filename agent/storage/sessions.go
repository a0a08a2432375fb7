package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	statex "github.com/tanpawarit/agent-coordination-engine/agent/state"
)

type sessionRow struct {
	bun.BaseModel `bun:"table:coordination_sessions,alias:cs"`

	ID               string          `bun:"id,pk"`
	UserID           string          `bun:"user_id,notnull"`
	Name             string          `bun:"session_name,notnull"`
	AgentIDs         []string        `bun:"agent_ids"`
	Objective        string          `bun:"primary_objective,notnull"`
	Pattern          string          `bun:"coordination_pattern,notnull"`
	Context          map[string]any  `bun:"session_context"`
	Phase            string          `bun:"current_phase,notnull"`
	Results          *statex.Results `bun:"results"`
	PerformanceScore *float64        `bun:"performance_score"`
	CreatedAt        time.Time       `bun:"created_at,notnull"`
	CompletedAt      *time.Time      `bun:"completed_at"`
}

func sessionRowFrom(s *statex.CoordinationSession) *sessionRow {
	return &sessionRow{
		ID:               s.ID,
		UserID:           s.UserID,
		Name:             s.Name,
		AgentIDs:         s.AgentIDs,
		Objective:        s.Objective,
		Pattern:          string(s.Pattern),
		Context:          s.Context,
		Phase:            string(s.Phase),
		Results:          s.Results,
		PerformanceScore: s.PerformanceScore,
		CreatedAt:        s.CreatedAt,
		CompletedAt:      s.CompletedAt,
	}
}

func (r *sessionRow) toSession() *statex.CoordinationSession {
	s := &statex.CoordinationSession{
		ID:               r.ID,
		UserID:           r.UserID,
		Name:             r.Name,
		AgentIDs:         r.AgentIDs,
		Objective:        r.Objective,
		Pattern:          statex.Pattern(r.Pattern),
		Context:          r.Context,
		Phase:            statex.Phase(r.Phase),
		Results:          r.Results,
		PerformanceScore: r.PerformanceScore,
		CreatedAt:        r.CreatedAt.UTC(),
	}
	if r.CompletedAt != nil {
		completedAt := r.CompletedAt.UTC()
		s.CompletedAt = &completedAt
	}
	return s
}

// SessionStore is the relational statex.Store.
type SessionStore struct {
	db *DB
}

var _ statex.Store = (*SessionStore)(nil)

func NewSessionStore(db *DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Create(ctx context.Context, sess *statex.CoordinationSession) (string, error) {
	if err := sess.Validate(); err != nil {
		return "", err
	}

	err := s.db.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*sessionRow)(nil)).Where("id = ?", sess.ID).Exists(ctx)
		if err != nil {
			return fmt.Errorf("check session: %w", err)
		}
		if exists {
			return fmt.Errorf("%w: %s", statex.ErrSessionExists, sess.ID)
		}
		if _, err := tx.NewInsert().Model(sessionRowFrom(sess)).Exec(ctx); err != nil {
			return fmt.Errorf("insert session: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return sess.ID, nil
}

// Update applies a terminal transition inside one transaction.
func (s *SessionStore) Update(ctx context.Context, sessionID string, update statex.SessionUpdate) error {
	return s.db.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row := new(sessionRow)
		q := tx.NewSelect().Model(row).Where("id = ?", sessionID)
		if s.db.isPostgres() {
			q = q.For("UPDATE")
		}
		if err := q.Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: %s", statex.ErrSessionNotFound, sessionID)
			}
			return fmt.Errorf("select session: %w", err)
		}

		sess := row.toSession()
		if err := sess.Apply(update); err != nil {
			return err
		}
		if err := sess.Validate(); err != nil {
			return fmt.Errorf("invalid session after update: %w", err)
		}

		_, err := tx.NewUpdate().
			Model(sessionRowFrom(sess)).
			Column("session_context", "current_phase", "results", "performance_score", "completed_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update session: %w", err)
		}
		return nil
	})
}

func (s *SessionStore) Get(ctx context.Context, sessionID string) (*statex.CoordinationSession, error) {
	row := new(sessionRow)
	if err := s.db.bun.NewSelect().Model(row).Where("id = ?", sessionID).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", statex.ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("select session: %w", err)
	}
	return row.toSession(), nil
}
