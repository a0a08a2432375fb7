package selector

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/agent-coordination-engine/agent/contract"
)

type Selector struct {
	registry contractx.AgentRegistry
}

func New(registry contractx.AgentRegistry) (*Selector, error) {
	if registry == nil {
		return nil, errors.New("agent registry is required")
	}
	return &Selector{registry: registry}, nil
}

// Select returns the active agents whose specialization is requested, in
// registry order. An empty match is ErrNoSuitableAgents.
func (s *Selector) Select(ctx context.Context, specializations []string) ([]contractx.Agent, error) {
	wanted := Normalize(specializations)
	if len(wanted) == 0 {
		return nil, fmt.Errorf("%w: required specializations must not be empty", contractx.ErrValidation)
	}

	agents, err := s.registry.ListActiveBySpecializations(ctx, wanted)
	if err != nil {
		return nil, fmt.Errorf("%w: list agents: %v", contractx.ErrPersistence, err)
	}

	allowed := make(map[string]struct{}, len(wanted))
	for _, spec := range wanted {
		allowed[spec] = struct{}{}
	}

	selected := make([]contractx.Agent, 0, len(agents))
	for _, a := range agents {
		if _, ok := allowed[a.Specialization]; !ok || !a.Active {
			continue
		}
		selected = append(selected, a)
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: %s", contractx.ErrNoSuitableAgents, strings.Join(wanted, ", "))
	}

	log.Ctx(ctx).Debug().
		Strs("specializations", wanted).
		Int("agents", len(selected)).
		Msg("agents selected")
	return selected, nil
}

// Normalize trims, drops blanks and de-duplicates while keeping first-seen order.
func Normalize(specializations []string) []string {
	out := make([]string, 0, len(specializations))
	seen := make(map[string]struct{}, len(specializations))
	for _, raw := range specializations {
		spec := strings.TrimSpace(raw)
		if spec == "" {
			continue
		}
		if _, ok := seen[spec]; ok {
			continue
		}
		seen[spec] = struct{}{}
		out = append(out, spec)
	}
	return out
}
