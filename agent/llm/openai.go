package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	contractx "github.com/tanpawarit/agent-coordination-engine/agent/contract"
)

// OpenAIClient calls any OpenAI-compatible chat completions endpoint directly.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

var _ contractx.CompletionClient = (*OpenAIClient)(nil)

func NewOpenAIClient(client *openai.Client, model string, temperature float32, maxTokens int) *OpenAIClient {
	return &OpenAIClient{
		client:      client,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, behavior string, input string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(behavior),
			openai.UserMessage(input),
		},
		Temperature: openai.Float(float64(c.temperature)),
	}
	if c.maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(c.maxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: openai: %v", contractx.ErrModelInvoke, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai returned no choices", contractx.ErrSchemaViolation)
	}
	return textOrError(resp.Choices[0].Message.Content)
}
