package dispatcher

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	nodex "github.com/tanpawarit/golf-caddy-agent/agent/nodes/dispatch"
)

func (d *Dispatcher) compileDispatchGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode(nodex.NodeValidateRequest,
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in, d.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode(nodex.NodeValidateArguments,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ValidateArguments(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_arguments: %w", err)
	}

	if err := graph.AddLambdaNode(nodex.NodeExecute,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.Execute(ctx, in, d)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node execute: %w", err)
	}

	if err := graph.AddLambdaNode(nodex.NodeRespond,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.Respond(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node respond: %w", err)
	}

	// a failed stage jumps straight to respond
	branches := [][2]string{
		{nodex.NodeValidateRequest, nodex.NodeValidateArguments},
		{nodex.NodeValidateArguments, nodex.NodeExecute},
	}
	for _, b := range branches {
		route := nodex.Next(b[1])
		branch := compose.NewGraphBranch(
			func(ctx context.Context, in *nodex.GraphState) (string, error) {
				return route(in), nil
			},
			map[string]bool{b[1]: true, nodex.NodeRespond: true},
		)
		if err := graph.AddBranch(b[0], branch); err != nil {
			return nil, fmt.Errorf("add branch %s: %w", b[0], err)
		}
	}

	edges := [][2]string{
		{compose.START, nodex.NodeValidateRequest},
		{nodex.NodeExecute, nodex.NodeRespond},
		{nodex.NodeRespond, compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("dispatcher.dispatch"))
	if err != nil {
		return nil, fmt.Errorf("compile dispatch graph: %w", err)
	}
	return runner, nil
}
