package contract

import (
	"time"

	statex "github.com/tanpawarit/agent-coordination-engine/agent/state"
)

// SpecializationCoordination marks the agent that plans and synthesizes in hierarchical runs.
const SpecializationCoordination = "coordination"

// Agent is a registry entry. The engine only ever reads it.
type Agent struct {
	ID             string `json:"id" yaml:"id"`
	Name           string `json:"name" yaml:"name"`
	Specialization string `json:"specialization" yaml:"specialization"`
	Behavior       string `json:"behavior" yaml:"behavior"`
	Active         bool   `json:"active" yaml:"active"`
}

func (a Agent) IsCoordinator() bool {
	return a.Specialization == SpecializationCoordination
}

func (a Agent) Ref() AgentRef {
	return AgentRef{Name: a.Name, Specialization: a.Specialization}
}

type AgentRef struct {
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
}

type CoordinationRequest struct {
	Task                    string         `json:"task"`
	UserID                  string         `json:"userId"`
	SessionID               string         `json:"sessionId,omitempty"`
	RequiredSpecializations []string       `json:"requiredSpecializations"`
	CoordinationPattern     statex.Pattern `json:"coordinationPattern"`
}

type CoordinationResponse struct {
	Success             bool           `json:"success"`
	SessionID           string         `json:"sessionId"`
	Results             statex.Results `json:"results"`
	AgentsUsed          []AgentRef     `json:"agentsUsed"`
	CoordinationPattern statex.Pattern `json:"coordinationPattern"`
	PerformanceScore    float64        `json:"performanceScore"`
}

// MemoryEntry is the value appended to the user memory store after a completed run.
type MemoryEntry struct {
	SessionID        string         `json:"session_id"`
	Task             string         `json:"task"`
	Agents           []string       `json:"agents"`
	Pattern          statex.Pattern `json:"pattern"`
	PerformanceScore float64        `json:"performance_score"`
	Timestamp        time.Time      `json:"timestamp"`
}
