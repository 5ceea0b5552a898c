package dispatchnode

import (
	"errors"

	contractx "github.com/tanpawarit/golf-caddy-agent/agent/contract"
)

func Respond(in *GraphState) (GraphOutput, error) {
	if !in.Failed() {
		return GraphOutput{Response: contractx.Success(in.Result)}, nil
	}
	kind := contractx.KindOf(in.Err)
	return GraphOutput{Response: contractx.Failure(kind, Message(kind, in.Err))}, nil
}

// Message picks the text handed back to the conversational model. Argument
// and tool-name errors are explained; infrastructure errors are not.
func Message(kind contractx.ErrorKind, err error) string {
	var te *contractx.ToolError
	if errors.As(err, &te) && te.Message != "" {
		return te.Message
	}
	switch kind {
	case contractx.KindInvalidArguments, contractx.KindUnknownTool:
		return err.Error()
	default:
		return contractx.Guidance(kind)
	}
}
