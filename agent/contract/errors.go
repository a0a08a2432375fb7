package contract

import (
	"errors"

	statex "github.com/tanpawarit/agent-coordination-engine/agent/state"
)

var (
	ErrModelInvoke      = errors.New("model invoke failed")
	ErrSchemaViolation  = errors.New("model response violates schema")
	ErrValidation       = errors.New("validation failed")
	ErrNoSuitableAgents = errors.New("no suitable agents found")
	ErrNoCoordinator    = errors.New("hierarchical coordination requires a coordination agent")
	ErrPersistence      = errors.New("persistence failed")
)

var (
	ErrSessionNotFound    = statex.ErrSessionNotFound
	ErrUnsupportedPattern = statex.ErrUnsupportedPattern
)
