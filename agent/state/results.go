package state

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Pattern string

const (
	PatternSequential   Pattern = "sequential"
	PatternParallel     Pattern = "parallel"
	PatternHierarchical Pattern = "hierarchical"
)

var ErrUnsupportedPattern = errors.New("unsupported coordination pattern")

func (p Pattern) IsValid() bool {
	switch p {
	case PatternSequential, PatternParallel, PatternHierarchical:
		return true
	default:
		return false
	}
}

func ParsePattern(raw string) (Pattern, error) {
	p := Pattern(strings.ToLower(strings.TrimSpace(raw)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedPattern, raw)
	}
	return p, nil
}

// StepResult records a single agent invocation.
type StepResult struct {
	AgentName      string    `json:"agent_name"`
	Specialization string    `json:"specialization"`
	Input          string    `json:"input"`
	Output         string    `json:"output"`
	Timestamp      time.Time `json:"timestamp"`
}

// Results is the pattern-tagged payload a strategy produces.
// Sequential fills Steps; parallel adds Synthesis; hierarchical adds Plan and Synthesis.
// FinalOutput always holds the answer the caller should read.
type Results struct {
	Pattern     Pattern      `json:"pattern"`
	Steps       []StepResult `json:"steps"`
	Plan        string       `json:"plan,omitempty"`
	Synthesis   string       `json:"synthesis,omitempty"`
	FinalOutput string       `json:"final_output,omitempty"`
}
