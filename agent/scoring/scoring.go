// Package scoring derives a structural placeholder score from a strategy's
// output shape. It says nothing about content quality.
package scoring

import (
	"strings"

	statex "github.com/tanpawarit/agent-coordination-engine/agent/state"
)

const (
	Base                   = 0.5
	StepBonus              = 0.2
	HierarchicalSynthBonus = 0.2
	ParallelSynthBonus     = 0.1
)

func Score(r statex.Results) float64 {
	score := Base
	if len(r.Steps) > 0 {
		score += StepBonus
	}
	hasSynthesis := strings.TrimSpace(r.Synthesis) != ""
	switch {
	case r.Pattern == statex.PatternHierarchical && hasSynthesis:
		score += HierarchicalSynthBonus
	case r.Pattern == statex.PatternParallel && hasSynthesis:
		score += ParallelSynthBonus
	}
	return clamp(score)
}

func clamp(v float64) float64 {
	return min(max(v, 0), 1)
}
