package strategy

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	contractx "github.com/tanpawarit/agent-coordination-engine/agent/contract"
	scoringx "github.com/tanpawarit/agent-coordination-engine/agent/scoring"
	statex "github.com/tanpawarit/agent-coordination-engine/agent/state"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type completionCall struct {
	behavior string
	input    string
}

type fakeClient struct {
	mu      sync.Mutex
	calls   []completionCall
	respond func(ctx context.Context, behavior, input string) (string, error)
}

func (f *fakeClient) Complete(ctx context.Context, behavior, input string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, completionCall{behavior: behavior, input: input})
	f.mu.Unlock()
	if f.respond != nil {
		return f.respond(ctx, behavior, input)
	}
	return "out(" + behavior + ")", nil
}

func (f *fakeClient) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func agent(name, spec string) contractx.Agent {
	return contractx.Agent{ID: name, Name: name, Specialization: spec, Behavior: "behavior-" + name, Active: true}
}

func TestForUnknownPattern(t *testing.T) {
	t.Parallel()

	if _, err := For("round-robin", &fakeClient{}); !errors.Is(err, statex.ErrUnsupportedPattern) {
		t.Fatalf("For() error = %v, want ErrUnsupportedPattern", err)
	}
	s, err := For(statex.PatternParallel, &fakeClient{})
	if err != nil || s.Pattern() != statex.PatternParallel {
		t.Fatalf("For() = %v, %v", s, err)
	}
}

func TestCheckPreconditions(t *testing.T) {
	t.Parallel()

	specialists := []contractx.Agent{agent("seo", "seo"), agent("legal", "legal")}
	if err := CheckPreconditions(statex.PatternHierarchical, specialists); !errors.Is(err, contractx.ErrNoCoordinator) {
		t.Fatalf("CheckPreconditions() error = %v, want ErrNoCoordinator", err)
	}
	if err := CheckPreconditions(statex.PatternParallel, specialists); err != nil {
		t.Fatalf("CheckPreconditions() error = %v", err)
	}
	withCoord := append([]contractx.Agent{agent("lead", "coordination")}, specialists...)
	if err := CheckPreconditions(statex.PatternHierarchical, withCoord); err != nil {
		t.Fatalf("CheckPreconditions() error = %v", err)
	}
}

func TestSequentialChainInvariant(t *testing.T) {
	t.Parallel()

	client := &fakeClient{respond: func(ctx context.Context, behavior, input string) (string, error) {
		return input + " > " + behavior, nil
	}}
	agents := []contractx.Agent{agent("a", "research"), agent("b", "copywriting"), agent("c", "editing")}

	res, err := NewSequential(client).Run(context.Background(), agents, "task")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Pattern != statex.PatternSequential || len(res.Steps) != len(agents) {
		t.Fatalf("unexpected results: %#v", res)
	}
	if res.Steps[0].Input != "task" {
		t.Fatalf("first input = %q, want task", res.Steps[0].Input)
	}
	for i := 1; i < len(res.Steps); i++ {
		if res.Steps[i].Input != res.Steps[i-1].Output {
			t.Fatalf("step %d input %q != previous output %q", i, res.Steps[i].Input, res.Steps[i-1].Output)
		}
	}
	if res.FinalOutput != res.Steps[2].Output {
		t.Fatalf("final output = %q, want last step output", res.FinalOutput)
	}
	for i, a := range agents {
		if client.calls[i].behavior != a.Behavior {
			t.Fatalf("call %d used behavior %q, want %q", i, client.calls[i].behavior, a.Behavior)
		}
	}
}

func TestSequentialStopsAtFailingStep(t *testing.T) {
	t.Parallel()

	boom := fmt.Errorf("%w: quota", contractx.ErrModelInvoke)
	client := &fakeClient{respond: func(ctx context.Context, behavior, input string) (string, error) {
		if behavior == "behavior-b" {
			return "", boom
		}
		return "ok", nil
	}}
	agents := []contractx.Agent{agent("a", "x"), agent("b", "y"), agent("c", "z")}

	_, err := NewSequential(client).Run(context.Background(), agents, "task")
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("Run() error = %v, want ErrModelInvoke", err)
	}
	if client.count() != 2 {
		t.Fatalf("calls = %d, want 2", client.count())
	}
}

func TestParallelSameInputAndSynthesis(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	agents := []contractx.Agent{agent("seo", "seo"), agent("legal", "legal")}

	res, err := NewParallel(client).Run(context.Background(), agents, "review landing page")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Pattern != statex.PatternParallel || len(res.Steps) != 2 {
		t.Fatalf("unexpected results: %#v", res)
	}
	for i, step := range res.Steps {
		if step.Input != "review landing page" {
			t.Fatalf("step %d input = %q", i, step.Input)
		}
		if step.AgentName != agents[i].Name {
			t.Fatalf("step %d agent = %q, want %q", i, step.AgentName, agents[i].Name)
		}
	}
	if res.Synthesis == "" || res.FinalOutput != res.Synthesis {
		t.Fatalf("expected synthesis, got %#v", res)
	}
	if client.count() != 3 {
		t.Fatalf("calls = %d, want 3", client.count())
	}

	last := client.calls[len(client.calls)-1]
	for _, want := range []string{"out(behavior-seo)", "out(behavior-legal)", "[seo]", "[legal]"} {
		if !strings.Contains(last.input, want) {
			t.Fatalf("synthesis input missing %q: %q", want, last.input)
		}
	}
}

func TestParallelCallsOverlap(t *testing.T) {
	t.Parallel()

	const n = 3
	var started sync.WaitGroup
	started.Add(n)
	release := make(chan struct{})
	go func() {
		started.Wait()
		close(release)
	}()

	client := &fakeClient{respond: func(ctx context.Context, behavior, input string) (string, error) {
		if strings.HasPrefix(behavior, "behavior-") {
			started.Done()
			select {
			case <-release:
			case <-time.After(2 * time.Second):
				return "", errors.New("calls were not issued concurrently")
			}
		}
		return "ok", nil
	}}
	agents := []contractx.Agent{agent("a", "x"), agent("b", "y"), agent("c", "z")}

	if _, err := NewParallel(client).Run(context.Background(), agents, "task"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestParallelFailsFast(t *testing.T) {
	t.Parallel()

	client := &fakeClient{respond: func(ctx context.Context, behavior, input string) (string, error) {
		switch behavior {
		case "behavior-bad":
			return "", fmt.Errorf("%w: boom", contractx.ErrModelInvoke)
		case "behavior-slow":
			<-ctx.Done()
			return "", fmt.Errorf("%w: %v", contractx.ErrModelInvoke, ctx.Err())
		}
		return "ok", nil
	}}
	agents := []contractx.Agent{agent("slow", "x"), agent("bad", "y"), agent("good", "z")}

	res, err := NewParallel(client).Run(context.Background(), agents, "task")
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("Run() error = %v, want ErrModelInvoke", err)
	}
	if len(res.Steps) != 0 || res.Synthesis != "" {
		t.Fatalf("no partial results expected, got %#v", res)
	}
	for _, c := range client.calls {
		if strings.Contains(c.input, "Expert outputs") {
			t.Fatal("synthesis must not run after a failed branch")
		}
	}
}

func TestHierarchicalPlanExecuteSynthesize(t *testing.T) {
	t.Parallel()

	client := &fakeClient{respond: func(ctx context.Context, behavior, input string) (string, error) {
		switch {
		case behavior == "behavior-lead" && strings.HasPrefix(input, "Create an execution plan"):
			return "PLAN-1", nil
		case behavior == "behavior-lead":
			return "FINAL", nil
		}
		return "work of " + behavior, nil
	}}
	agents := []contractx.Agent{agent("writer", "copywriting"), agent("lead", "coordination"), agent("seo", "seo")}

	res, err := NewHierarchical(client).Run(context.Background(), agents, "launch message for product X")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Plan != "PLAN-1" || res.Synthesis != "FINAL" || res.FinalOutput != "FINAL" {
		t.Fatalf("unexpected results: %#v", res)
	}
	if len(res.Steps) != len(agents)-1 {
		t.Fatalf("steps = %d, want %d", len(res.Steps), len(agents)-1)
	}
	if res.Steps[0].AgentName != "writer" || res.Steps[1].AgentName != "seo" {
		t.Fatalf("specialists must keep registry order, got %#v", res.Steps)
	}
	for _, step := range res.Steps {
		if !strings.Contains(step.Input, "PLAN-1") || !strings.Contains(step.Input, "your job as "+step.Specialization+" is: launch message for product X") {
			t.Fatalf("unexpected specialist input: %q", step.Input)
		}
	}

	if client.count() != 4 {
		t.Fatalf("calls = %d, want 4", client.count())
	}
	if !strings.Contains(client.calls[0].input, "copywriting, seo") {
		t.Fatalf("plan input must list specialists: %q", client.calls[0].input)
	}
	final := client.calls[3]
	if final.behavior != "behavior-lead" || !strings.Contains(final.input, "work of behavior-writer") || !strings.Contains(final.input, "work of behavior-seo") {
		t.Fatalf("unexpected synthesis call: %#v", final)
	}
}

func TestHierarchicalWithoutCoordinatorMakesNoCalls(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	_, err := NewHierarchical(client).Run(context.Background(), []contractx.Agent{agent("seo", "seo")}, "task")
	if !errors.Is(err, contractx.ErrNoCoordinator) {
		t.Fatalf("Run() error = %v, want ErrNoCoordinator", err)
	}
	if client.count() != 0 {
		t.Fatalf("calls = %d, want 0", client.count())
	}
}

func TestHierarchicalCoordinatorOnly(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	agents := []contractx.Agent{agent("lead", "coordination")}

	res, err := NewHierarchical(client).Run(context.Background(), agents, "outline a quarterly plan")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Plan == "" || res.Synthesis == "" {
		t.Fatalf("plan and synthesis must be set: %#v", res)
	}
	if len(res.Steps) != 0 {
		t.Fatalf("steps = %#v, want none", res.Steps)
	}
	if client.count() != 2 {
		t.Fatalf("calls = %d, want 2", client.count())
	}
	if !strings.Contains(client.calls[0].input, "none") {
		t.Fatalf("plan input must say no specialists are available: %q", client.calls[0].input)
	}
	if got := scoringx.Score(res); math.Abs(got-0.7) > 1e-9 {
		t.Fatalf("score = %v, want 0.7", got)
	}
}

func TestHierarchicalExtraCoordinatorActsAsSpecialist(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	agents := []contractx.Agent{agent("lead", "coordination"), agent("deputy", "coordination")}

	res, err := NewHierarchical(client).Run(context.Background(), agents, "task")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(res.Steps) != 1 || res.Steps[0].AgentName != "deputy" {
		t.Fatalf("unexpected steps: %#v", res.Steps)
	}
}

func TestHierarchicalSpecialistFailureSkipsSynthesis(t *testing.T) {
	t.Parallel()

	client := &fakeClient{respond: func(ctx context.Context, behavior, input string) (string, error) {
		if behavior == "behavior-seo" {
			return "", fmt.Errorf("%w: down", contractx.ErrModelInvoke)
		}
		return "ok", nil
	}}
	agents := []contractx.Agent{agent("lead", "coordination"), agent("seo", "seo"), agent("legal", "legal")}

	_, err := NewHierarchical(client).Run(context.Background(), agents, "task")
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("Run() error = %v, want ErrModelInvoke", err)
	}
	if client.count() != 2 {
		t.Fatalf("calls = %d, want 2 (plan + failing specialist)", client.count())
	}
}
