package dispatchnode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/golf-caddy-agent/agent/contract"
	toolx "github.com/tanpawarit/golf-caddy-agent/agent/tool"
)

// Executor runs one validated tool call.
type Executor interface {
	Execute(ctx context.Context, kind toolx.Kind, call contractx.ToolCall, args any) (any, error)
}

// Execute runs the handler. A panic becomes an Internal error.
func Execute(ctx context.Context, in *GraphState, exec Executor) (out *GraphState, err error) {
	defer func() {
		if r := recover(); r != nil {
			in.Result = nil
			in.Err = contractx.NewToolError(contractx.KindInternal, "", fmt.Errorf("tool %s panicked: %v", in.Kind, r))
			out, err = in, nil
		}
	}()

	result, execErr := exec.Execute(ctx, in.Kind, in.Call, in.Args)
	if execErr != nil {
		in.Err = execErr
		return in, nil
	}
	in.Result = result
	return in, nil
}
