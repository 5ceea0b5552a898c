package dispatchnode

import (
	toolx "github.com/tanpawarit/golf-caddy-agent/agent/tool"
)

func ValidateArguments(in *GraphState) (*GraphState, error) {
	args, err := toolx.Decode(in.Kind, in.Call.Arguments)
	if err != nil {
		in.Err = err
		return in, nil
	}
	in.Args = args
	return in, nil
}
