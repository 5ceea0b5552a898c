package dispatchnode

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/golf-caddy-agent/agent/contract"
	toolx "github.com/tanpawarit/golf-caddy-agent/agent/tool"
)

const (
	NodeValidateRequest   = "validate_request"
	NodeValidateArguments = "validate_arguments"
	NodeExecute           = "execute"
	NodeRespond           = "respond"
)

type GraphInput struct {
	Call contractx.ToolCall
}

type GraphOutput struct {
	Response contractx.ToolResponse
}

// GraphState travels through every node. Once Err is set the remaining
// stages are skipped and respond converts it into the envelope.
type GraphState struct {
	SessionID string
	Call      contractx.ToolCall
	Kind      toolx.Kind
	Args      any
	Now       time.Time

	Result any
	Err    error
}

func (s *GraphState) Failed() bool { return s.Err != nil }

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	st := &GraphState{
		SessionID: strings.TrimSpace(in.Call.SessionID),
		Call:      in.Call,
		Now:       nowFn().UTC(),
	}
	st.Call.SessionID = st.SessionID

	if st.SessionID == "" {
		st.Err = fmt.Errorf("%w: session_id is required", contractx.ErrInvalidArguments)
		return st, nil
	}
	kind, ok := toolx.ParseTool(in.Call.ToolName)
	if !ok {
		st.Err = fmt.Errorf("%w: %q", contractx.ErrUnknownTool, strings.TrimSpace(in.Call.ToolName))
		return st, nil
	}
	st.Kind = kind
	return st, nil
}

// Next routes to next unless the state already failed.
func Next(next string) func(*GraphState) string {
	return func(st *GraphState) string {
		if st.Failed() {
			return NodeRespond
		}
		return next
	}
}
