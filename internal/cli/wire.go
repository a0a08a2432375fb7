package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/agent-coordination-engine/agent/contract"
	coordinatorx "github.com/tanpawarit/agent-coordination-engine/agent/coordinator"
	llmx "github.com/tanpawarit/agent-coordination-engine/agent/llm"
	statex "github.com/tanpawarit/agent-coordination-engine/agent/state"
	storagex "github.com/tanpawarit/agent-coordination-engine/agent/storage"
	configx "github.com/tanpawarit/agent-coordination-engine/pkg/config"
	qstashx "github.com/tanpawarit/agent-coordination-engine/pkg/qstash"
)

const (
	backendSQL     = "sql"
	backendUpstash = "upstash"
	backendQStash  = "qstash"
	backendNone    = "none"
)

type AppConfig struct {
	SessionBackend    string `split_words:"true" default:"sql"`
	MemoryBackend     string `split_words:"true" default:"sql"`
	MemoryDestination string `split_words:"true"`
	AutoMigrate       bool   `split_words:"true" default:"true"`
}

type app struct {
	db          *storagex.DB
	registry    *storagex.AgentRegistry
	sessions    statex.Store
	memory      contractx.MemoryStore
	coordinator *coordinatorx.Coordinator
}

func (a *app) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Warn().Err(err).Msg("close database")
		}
	}
}

func loadAppConfig() (*AppConfig, error) {
	return configx.New[AppConfig]("APP")
}

func loadStoreConfig() (*storagex.Config, error) {
	return configx.New[storagex.Config]("STORE")
}

// openStorage opens the database and, when enabled, creates the schema.
func openStorage(ctx context.Context) (*storagex.DB, error) {
	storeCfg, err := loadStoreConfig()
	if err != nil {
		return nil, err
	}
	appCfg, err := loadAppConfig()
	if err != nil {
		return nil, err
	}

	db, err := storagex.Open(ctx, *storeCfg)
	if err != nil {
		return nil, err
	}
	if appCfg.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

// buildApp wires every collaborator of the coordinator from the environment.
func buildApp(ctx context.Context) (*app, error) {
	appCfg, err := loadAppConfig()
	if err != nil {
		return nil, err
	}

	db, err := openStorage(ctx)
	if err != nil {
		return nil, err
	}
	a := &app{db: db, registry: storagex.NewAgentRegistry(db)}

	if a.sessions, err = buildSessionStore(appCfg.SessionBackend, db); err != nil {
		a.Close()
		return nil, err
	}
	if a.memory, err = buildMemoryStore(appCfg, db); err != nil {
		a.Close()
		return nil, err
	}

	llmCfg, err := configx.New[llmx.Config]("LLM")
	if err != nil {
		a.Close()
		return nil, err
	}
	client, err := llmx.NewClient(ctx, *llmCfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	coordCfg, err := configx.New[coordinatorx.Config]("COORDINATOR")
	if err != nil {
		a.Close()
		return nil, err
	}
	a.coordinator, err = coordinatorx.New(a.registry, client, a.sessions, a.memory, *coordCfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	log.Info().
		Str("llm_provider", string(llmCfg.Provider)).
		Str("session_backend", appCfg.SessionBackend).
		Str("memory_backend", appCfg.MemoryBackend).
		Msg("coordinator ready")
	return a, nil
}

func buildSessionStore(backend string, db *storagex.DB) (statex.Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case backendSQL, "":
		return storagex.NewSessionStore(db), nil
	case backendUpstash:
		redisCfg, err := configx.New[statex.UpstashRedisConfig]("UPSTASH_REDIS")
		if err != nil {
			return nil, err
		}
		return statex.NewUpstashRedisStore(*redisCfg)
	default:
		return nil, fmt.Errorf("unknown session backend %q", backend)
	}
}

func buildMemoryStore(cfg *AppConfig, db *storagex.DB) (contractx.MemoryStore, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.MemoryBackend)) {
	case backendSQL, "":
		return storagex.NewMemoryStore(db), nil
	case backendQStash:
		if cfg.MemoryDestination == "" {
			return nil, errors.New("APP_MEMORY_DESTINATION is required for the qstash memory backend")
		}
		qCfg, err := configx.New[qstashx.Config]("QSTASH")
		if err != nil {
			return nil, err
		}
		client, err := qstashx.NewClient(*qCfg)
		if err != nil {
			return nil, err
		}
		return storagex.NewQStashMemoryStore(client, cfg.MemoryDestination)
	case backendNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown memory backend %q", cfg.MemoryBackend)
	}
}
