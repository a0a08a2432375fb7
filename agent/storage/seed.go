package storage

import (
	"fmt"
	"os"

	contractx "github.com/tanpawarit/agent-coordination-engine/agent/contract"
	"gopkg.in/yaml.v3"
)

type agentsFile struct {
	Agents []agentSeed `yaml:"agents"`
}

type agentSeed struct {
	ID             string `yaml:"id"`
	Name           string `yaml:"name"`
	Specialization string `yaml:"specialization"`
	Behavior       string `yaml:"behavior"`
	Active         *bool  `yaml:"active"`
}

// LoadAgentsFile reads an agent catalog; agents are active unless stated otherwise.
func LoadAgentsFile(path string) ([]contractx.Agent, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read agents file: %w", err)
	}
	return ParseAgents(raw)
}

func ParseAgents(raw []byte) ([]contractx.Agent, error) {
	var file agentsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("%w: decode agents yaml: %v", contractx.ErrValidation, err)
	}

	agents := make([]contractx.Agent, 0, len(file.Agents))
	for i, seed := range file.Agents {
		if seed.ID == "" || seed.Specialization == "" {
			return nil, fmt.Errorf("%w: agents[%d] needs id and specialization", contractx.ErrValidation, i)
		}
		active := true
		if seed.Active != nil {
			active = *seed.Active
		}
		agents = append(agents, contractx.Agent{
			ID:             seed.ID,
			Name:           seed.Name,
			Specialization: seed.Specialization,
			Behavior:       seed.Behavior,
			Active:         active,
		})
	}
	return agents, nil
}
