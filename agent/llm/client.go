package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	contractx "github.com/tanpawarit/agent-coordination-engine/agent/contract"
	openrouterx "github.com/tanpawarit/agent-coordination-engine/pkg/openrouter"
)

// NewClient builds the completion client for the configured provider and
// applies the timeout and retry decorators when they are enabled.
func NewClient(ctx context.Context, cfg Config) (contractx.CompletionClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		client contractx.CompletionClient
		err    error
	)
	switch cfg.provider() {
	case ProviderOpenRouter:
		orCfg := cfg.OpenRouter()
		chatModel, buildErr := orCfg.New(ctx)
		if buildErr != nil {
			return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, buildErr)
		}
		client, err = NewEinoClient(ctx, chatModel)
	case ProviderOpenAI:
		orCfg := cfg.OpenRouter()
		orCfg.BaseURL = cfg.BaseURL // empty falls back to the SDK default endpoint
		sdk := openrouterx.NewClient(orCfg)
		if sdk == nil {
			return nil, fmt.Errorf("%w: openai client requires an api key", contractx.ErrValidation)
		}
		client = NewOpenAIClient(sdk, cfg.Model, cfg.Temperature, cfg.MaxCompletionToken)
	case ProviderAnthropic:
		opts := []anthropicoption.RequestOption{
			anthropicoption.WithAPIKey(cfg.APIKey),
		}
		if cfg.Timeout > 0 {
			opts = append(opts, anthropicoption.WithRequestTimeout(cfg.Timeout))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropicoption.WithBaseURL(cfg.BaseURL))
		}
		sdk := anthropic.NewClient(opts...)
		client = NewAnthropicClient(&sdk, cfg.Model, cfg.Temperature, cfg.MaxCompletionToken)
	}
	if err != nil {
		return nil, err
	}

	client = WithLogging(client, string(cfg.provider()), cfg.Model)
	if cfg.CallTimeout > 0 {
		client = WithTimeout(client, cfg.CallTimeout)
	}
	if cfg.MaxAttempts > 1 {
		client = WithRetry(client, cfg.MaxAttempts, cfg.RetryBackoff)
	}
	return client, nil
}
