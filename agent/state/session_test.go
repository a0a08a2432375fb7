package state

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSessionName(t *testing.T) {
	t.Parallel()

	if got := SessionName("  launch message for product X "); got != "Coordination: launch message for product X" {
		t.Fatalf("SessionName() = %q", got)
	}

	long := strings.Repeat("é", 60)
	got := SessionName(long)
	want := "Coordination: " + strings.Repeat("é", 50) + "..."
	if got != want {
		t.Fatalf("SessionName() = %q, want %q", got, want)
	}
}

func TestNewSessionSnapshot(t *testing.T) {
	t.Parallel()

	ids := []string{"a1", "a2"}
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.FixedZone("ICT", 7*3600))
	sess := NewSession("user-1", "review landing page", PatternParallel, ids, now)
	ids[0] = "mutated"

	if sess.ID == "" {
		t.Fatal("expected generated id")
	}
	if sess.AgentIDs[0] != "a1" {
		t.Fatalf("agent ids must be copied, got %#v", sess.AgentIDs)
	}
	if sess.Context[ContextKeyTask] != "review landing page" {
		t.Fatalf("context must carry the task, got %#v", sess.Context)
	}
	if sess.Phase != PhaseCreated {
		t.Fatalf("phase = %s, want created", sess.Phase)
	}
	if sess.CreatedAt.Location() != time.UTC {
		t.Fatalf("created_at must be UTC, got %v", sess.CreatedAt.Location())
	}
	if sess.Results != nil || sess.PerformanceScore != nil {
		t.Fatal("new session must not carry results")
	}
}

func TestSessionStartOnlyFromCreated(t *testing.T) {
	t.Parallel()

	sess := NewSession("u", "t", PatternSequential, nil, time.Now())
	if err := sess.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := sess.Start(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second Start() error = %v, want ErrInvalidTransition", err)
	}
}

func TestSessionApplyCompleted(t *testing.T) {
	t.Parallel()

	now := time.Now()
	sess := NewSession("u", "t", PatternSequential, []string{"a"}, now)
	_ = sess.Start()

	results := Results{Pattern: PatternSequential, Steps: []StepResult{{AgentName: "A"}}, FinalOutput: "done"}
	if err := sess.Apply(CompletedUpdate(results, 0.7, now)); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if sess.Phase != PhaseCompleted || sess.Results == nil || *sess.PerformanceScore != 0.7 || sess.CompletedAt == nil {
		t.Fatalf("unexpected session after completion: %#v", sess)
	}
	if err := sess.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	err := sess.Apply(CompletedUpdate(results, 0.9, now))
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Apply() twice error = %v, want ErrInvalidTransition", err)
	}
	if *sess.PerformanceScore != 0.7 {
		t.Fatal("terminal session must not be mutated")
	}
}

func TestSessionApplyFailedMergesContext(t *testing.T) {
	t.Parallel()

	sess := NewSession("u", "t", PatternHierarchical, nil, time.Now())
	_ = sess.Start()

	if err := sess.Apply(FailedUpdate("upstream down", time.Now())); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if sess.Phase != PhaseFailed {
		t.Fatalf("phase = %s, want failed", sess.Phase)
	}
	if sess.Context[ContextKeyTask] != "t" || sess.Context[ContextKeyError] != "upstream down" {
		t.Fatalf("unexpected context: %#v", sess.Context)
	}
	if sess.Results != nil || sess.PerformanceScore != nil {
		t.Fatal("failed session must not carry results")
	}
}

func TestSessionApplyRejectsIncompleteCompletion(t *testing.T) {
	t.Parallel()

	sess := NewSession("u", "t", PatternParallel, nil, time.Now())
	_ = sess.Start()

	err := sess.Apply(SessionUpdate{Phase: PhaseCompleted})
	if !errors.Is(err, ErrIncompleteResult) {
		t.Fatalf("Apply() error = %v, want ErrIncompleteResult", err)
	}
	err = sess.Apply(SessionUpdate{Phase: PhaseRunning})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Apply() error = %v, want ErrInvalidTransition", err)
	}
}

func TestParsePattern(t *testing.T) {
	t.Parallel()

	p, err := ParsePattern(" Hierarchical ")
	if err != nil || p != PatternHierarchical {
		t.Fatalf("ParsePattern() = %q, %v", p, err)
	}
	if _, err := ParsePattern("round-robin"); !errors.Is(err, ErrUnsupportedPattern) {
		t.Fatalf("ParsePattern() error = %v, want ErrUnsupportedPattern", err)
	}
}
