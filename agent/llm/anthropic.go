package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	contractx "github.com/tanpawarit/agent-coordination-engine/agent/contract"
)

type AnthropicClient struct {
	client      *anthropic.Client
	model       string
	temperature float32
	maxTokens   int64
}

var _ contractx.CompletionClient = (*AnthropicClient)(nil)

func NewAnthropicClient(client *anthropic.Client, model string, temperature float32, maxTokens int) *AnthropicClient {
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	return &AnthropicClient{
		client:      client,
		model:       model,
		temperature: temperature,
		maxTokens:   int64(maxTokens),
	}
}

func (c *AnthropicClient) Complete(ctx context.Context, behavior string, input string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(float64(c.temperature)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(input)),
		},
	}
	if strings.TrimSpace(behavior) != "" {
		params.System = []anthropic.TextBlockParam{{Text: behavior}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: anthropic: %v", contractx.ErrModelInvoke, err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}
	return textOrError(sb.String())
}
