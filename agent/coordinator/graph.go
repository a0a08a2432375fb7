package coordinator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	nodex "github.com/tanpawarit/agent-coordination-engine/agent/nodes"
)

func (c *Coordinator) compileCoordinateGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in, c.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("select_agents",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.SelectAgents(ctx, in, c.selector)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node select_agents: %w", err)
	}

	if err := graph.AddLambdaNode("check_preconditions",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.CheckPreconditions(in, c.client)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node check_preconditions: %w", err)
	}

	if err := graph.AddLambdaNode("create_session",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.CreateSession(ctx, in, c.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node create_session: %w", err)
	}

	if err := graph.AddLambdaNode("run_strategy",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RunStrategy(ctx, in, c.store, c.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node run_strategy: %w", err)
	}

	if err := graph.AddLambdaNode("score",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.Score(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node score: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_session",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.FinalizeSession(ctx, in, c.store, c.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_session: %w", err)
	}

	if err := graph.AddLambdaNode("write_memory",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.WriteMemory(ctx, in, c.memory, c.memoryImportance, c.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node write_memory: %w", err)
	}

	if err := graph.AddLambdaNode("build_response",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.BuildResponse(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node build_response: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "select_agents"},
		{"select_agents", "check_preconditions"},
		{"check_preconditions", "create_session"},
		{"create_session", "run_strategy"},
		{"run_strategy", "score"},
		{"score", "finalize_session"},
		{"finalize_session", "write_memory"},
		{"write_memory", "build_response"},
		{"build_response", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("coordinator.coordinate"))
	if err != nil {
		return nil, fmt.Errorf("compile coordinator graph: %w", err)
	}
	return runner, nil
}
