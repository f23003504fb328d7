package orchestrator

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured means no completion provider is available.
	ErrNotConfigured = errors.New("completion provider not configured")
	// ErrEmptyConversation means the request carried no messages.
	ErrEmptyConversation = errors.New("conversation is empty")
	// ErrTransport wraps completion service failures.
	ErrTransport = errors.New("completion request failed")
	// ErrEmptyResponse means the final completion carried no text.
	ErrEmptyResponse = errors.New("empty completion response")
)

// User-facing text for aborted turns.
const (
	MessageNotConfigured     = "ERROR: Completion provider not configured. Please set an API key in the application settings."
	MessageEmptyConversation = "ERROR: No messages to send."
	MessageTransport         = "ERROR: The request to the completion service failed. Please try again."
	MessageEmptyResponse     = "ERROR: Received empty response from the completion service."
)

// TurnError is returned for every aborted turn. State is where the turn
// stopped.
type TurnError struct {
	State State
	Err   error
}

func (e *TurnError) Error() string {
	return fmt.Sprintf("turn aborted at %s: %v", e.State, e.Err)
}

func (e *TurnError) Unwrap() error {
	return e.Err
}

// UserMessage is the single explanatory message shown for the aborted turn.
func (e *TurnError) UserMessage() string {
	switch {
	case errors.Is(e.Err, ErrNotConfigured):
		return MessageNotConfigured
	case errors.Is(e.Err, ErrEmptyConversation):
		return MessageEmptyConversation
	case errors.Is(e.Err, ErrEmptyResponse):
		return MessageEmptyResponse
	default:
		return MessageTransport
	}
}

// UserMessage extracts the explanatory text from err, falling back to the
// transport message for errors that are not a TurnError.
func UserMessage(err error) string {
	var te *TurnError
	if errors.As(err, &te) {
		return te.UserMessage()
	}
	return MessageTransport
}
