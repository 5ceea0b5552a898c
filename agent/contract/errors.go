package contract

import (
	"errors"
	"fmt"
)

// ErrorKind is the machine-readable failure class carried in a response envelope.
type ErrorKind string

const (
	KindInvalidArguments        ErrorKind = "InvalidArguments"
	KindUnknownTool             ErrorKind = "UnknownTool"
	KindBusy                    ErrorKind = "Busy"
	KindStoreUnavailable        ErrorKind = "StoreUnavailable"
	KindExternalServiceDegraded ErrorKind = "ExternalServiceDegraded"
	KindPlayerNotRegistered     ErrorKind = "PlayerNotRegistered"
	KindInternal                ErrorKind = "Internal"
)

var (
	ErrInvalidArguments    = errors.New("invalid tool arguments")
	ErrUnknownTool         = errors.New("unknown tool")
	ErrBusy                = errors.New("previous tool call still in flight")
	ErrStoreUnavailable    = errors.New("round store unavailable")
	ErrExternalDegraded    = errors.New("external service degraded")
	ErrPlayerNotRegistered = errors.New("player not registered")
)

// ToolError is a failure with an explicit envelope kind and a message that is
// safe to hand back to the conversational model.
type ToolError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ToolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ToolError) Unwrap() error { return e.Err }

func NewToolError(kind ErrorKind, message string, err error) *ToolError {
	return &ToolError{Kind: kind, Message: message, Err: err}
}

// KindOf classifies err. Errors that match no known sentinel are Internal.
func KindOf(err error) ErrorKind {
	var te *ToolError
	if errors.As(err, &te) && te.Kind != "" {
		return te.Kind
	}
	switch {
	case errors.Is(err, ErrInvalidArguments):
		return KindInvalidArguments
	case errors.Is(err, ErrUnknownTool):
		return KindUnknownTool
	case errors.Is(err, ErrBusy):
		return KindBusy
	case errors.Is(err, ErrStoreUnavailable):
		return KindStoreUnavailable
	case errors.Is(err, ErrExternalDegraded):
		return KindExternalServiceDegraded
	case errors.Is(err, ErrPlayerNotRegistered):
		return KindPlayerNotRegistered
	default:
		return KindInternal
	}
}

// guidance is the user-facing text for kinds that have no handler-specific message.
var guidance = map[ErrorKind]string{
	KindInvalidArguments:        "The tool arguments were missing or malformed. Check the required fields and try again.",
	KindUnknownTool:             "That tool is not available.",
	KindBusy:                    "Still working on the previous request. Try again once it completes.",
	KindStoreUnavailable:        "Score tracking is temporarily unavailable. Nothing was changed; please try again shortly.",
	KindExternalServiceDegraded: "That information is temporarily unavailable.",
	KindPlayerNotRegistered:     "Please introduce yourself first by saying your first name, for example \"I'm Ben\".",
	KindInternal:                "Something went wrong handling that request.",
}

// Guidance returns the default message for a kind.
func Guidance(kind ErrorKind) string {
	if msg, ok := guidance[kind]; ok {
		return msg
	}
	return guidance[KindInternal]
}
