package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/agent-coordination-engine/agent/contract"
)

type completionInput struct {
	Behavior string
	Input    string
}

// EinoClient runs every completion through a compiled
// build_messages -> model -> extract_text graph.
type EinoClient struct {
	runner compose.Runnable[completionInput, string]
}

var _ contractx.CompletionClient = (*EinoClient)(nil)

func NewEinoClient(ctx context.Context, chatModel einomodel.BaseChatModel) (*EinoClient, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}
	runner, err := compileCompletionGraph(ctx, chatModel)
	if err != nil {
		return nil, fmt.Errorf("%w: compile completion graph: %v", contractx.ErrModelInvoke, err)
	}
	return &EinoClient{runner: runner}, nil
}

func (c *EinoClient) Complete(ctx context.Context, behavior string, input string) (string, error) {
	out, err := c.runner.Invoke(ctx, completionInput{Behavior: behavior, Input: input})
	if err != nil {
		if errors.Is(err, contractx.ErrSchemaViolation) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	return out, nil
}

// Messages are built directly rather than through an FString template: behavior
// text is free-form and may contain braces.
func compileCompletionGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
) (compose.Runnable[completionInput, string], error) {
	graph := compose.NewGraph[completionInput, string]()

	if err := graph.AddLambdaNode("build_messages",
		compose.InvokableLambda(func(ctx context.Context, in completionInput) ([]*schema.Message, error) {
			return []*schema.Message{
				schema.SystemMessage(in.Behavior),
				schema.UserMessage(in.Input),
			}, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add node build_messages: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add node model: %w", err)
	}
	if err := graph.AddLambdaNode("extract_text",
		compose.InvokableLambda(func(ctx context.Context, msg *schema.Message) (string, error) {
			if msg == nil {
				return "", fmt.Errorf("%w: model returned no message", contractx.ErrSchemaViolation)
			}
			return textOrError(msg.Content)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node extract_text: %w", err)
	}

	edges := [][2]string{
		{compose.START, "build_messages"},
		{"build_messages", "model"},
		{"model", "extract_text"},
		{"extract_text", compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	return graph.Compile(ctx, compose.WithGraphName("llm.completion"))
}

func textOrError(content string) (string, error) {
	text := strings.TrimSpace(content)
	if text == "" {
		return "", fmt.Errorf("%w: completion is empty", contractx.ErrSchemaViolation)
	}
	return text, nil
}
