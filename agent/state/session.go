package state

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CoordinationSession is the persisted record of one coordination request.
// - Results + PerformanceScore + CompletedAt are written once, together with the terminal phase.
// - A session never leaves a terminal phase.
type CoordinationSession struct {
	// Identity
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Name   string `json:"session_name"`

	// Request snapshot
	AgentIDs  []string       `json:"agent_ids"`
	Objective string         `json:"primary_objective"`
	Pattern   Pattern        `json:"coordination_pattern"`
	Context   map[string]any `json:"session_context,omitempty"`

	// Outcome
	Phase            Phase      `json:"current_phase"`
	Results          *Results   `json:"results,omitempty"`
	PerformanceScore *float64   `json:"performance_score,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

type Phase string

const (
	PhaseCreated   Phase = "created"
	PhaseRunning   Phase = "running"
	PhaseCompleted Phase = "completed"
	PhaseFailed    Phase = "failed"
)

func (p Phase) IsTerminal() bool {
	return p == PhaseCompleted || p == PhaseFailed
}

const (
	ContextKeyTask                  = "task"
	ContextKeyConversationSessionID = "conversation_session_id"
	ContextKeyError                 = "error"

	sessionNamePrefix  = "Coordination: "
	sessionNameMaxRune = 50
)

var (
	ErrNilSession        = errors.New("session is nil")
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrIncompleteResult  = errors.New("completed session requires results, score and completion time")
)

// NewSession builds a session in the created phase with a fresh id.
func NewSession(userID, task string, pattern Pattern, agentIDs []string, now time.Time) *CoordinationSession {
	return &CoordinationSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      SessionName(task),
		AgentIDs:  append([]string(nil), agentIDs...),
		Objective: task,
		Pattern:   pattern,
		Context: map[string]any{
			ContextKeyTask: task,
		},
		Phase:     PhaseCreated,
		CreatedAt: now.UTC(),
	}
}

// SessionName derives a human readable name from the task.
func SessionName(task string) string {
	task = strings.TrimSpace(task)
	runes := []rune(task)
	if len(runes) <= sessionNameMaxRune {
		return sessionNamePrefix + task
	}
	return sessionNamePrefix + string(runes[:sessionNameMaxRune]) + "..."
}

// Start moves a created session to running. It is an in-memory transition only.
func (s *CoordinationSession) Start() error {
	if s == nil {
		return ErrNilSession
	}
	if s.Phase != PhaseCreated {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Phase, PhaseRunning)
	}
	s.Phase = PhaseRunning
	return nil
}

// SessionUpdate is the partial record written when a session reaches a terminal phase.
type SessionUpdate struct {
	Phase            Phase
	Results          *Results
	PerformanceScore *float64
	CompletedAt      *time.Time
	Context          map[string]any // merged into the existing context
}

func CompletedUpdate(results Results, score float64, now time.Time) SessionUpdate {
	completedAt := now.UTC()
	return SessionUpdate{
		Phase:            PhaseCompleted,
		Results:          &results,
		PerformanceScore: &score,
		CompletedAt:      &completedAt,
	}
}

func FailedUpdate(reason string, now time.Time) SessionUpdate {
	completedAt := now.UTC()
	return SessionUpdate{
		Phase:       PhaseFailed,
		CompletedAt: &completedAt,
		Context: map[string]any{
			ContextKeyError: reason,
		},
	}
}

// Apply validates the transition and mutates the session in place.
func (s *CoordinationSession) Apply(u SessionUpdate) error {
	if s == nil {
		return ErrNilSession
	}
	if s.Phase.IsTerminal() {
		return fmt.Errorf("%w: session %s already %s", ErrInvalidTransition, s.ID, s.Phase)
	}

	switch u.Phase {
	case PhaseCompleted:
		if u.Results == nil || u.PerformanceScore == nil || u.CompletedAt == nil {
			return ErrIncompleteResult
		}
	case PhaseFailed:
		if u.Results != nil || u.PerformanceScore != nil {
			return fmt.Errorf("%w: failed session cannot carry results", ErrInvalidTransition)
		}
	default:
		return fmt.Errorf("%w: %s -> %q", ErrInvalidTransition, s.Phase, u.Phase)
	}

	if len(u.Context) > 0 {
		if s.Context == nil {
			s.Context = make(map[string]any, len(u.Context))
		}
		maps.Copy(s.Context, u.Context)
	}

	s.Phase = u.Phase
	s.Results = u.Results
	s.PerformanceScore = u.PerformanceScore
	if u.CompletedAt != nil {
		completedAt := u.CompletedAt.UTC()
		s.CompletedAt = &completedAt
	}
	return nil
}

func (s *CoordinationSession) Validate() error {
	if s == nil {
		return ErrNilSession
	}
	if strings.TrimSpace(s.ID) == "" {
		return ErrInvalidSession
	}
	if !s.Pattern.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedPattern, s.Pattern)
	}
	switch s.Phase {
	case PhaseCreated, PhaseRunning:
		if s.Results != nil || s.PerformanceScore != nil {
			return fmt.Errorf("session %s in phase %s must not carry results", s.ID, s.Phase)
		}
	case PhaseCompleted:
		if s.Results == nil || s.PerformanceScore == nil || s.CompletedAt == nil {
			return fmt.Errorf("session %s: %w", s.ID, ErrIncompleteResult)
		}
	case PhaseFailed:
	default:
		return fmt.Errorf("session %s has unknown phase %q", s.ID, s.Phase)
	}
	return nil
}
