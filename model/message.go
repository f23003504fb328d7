package model

import "time"

// Chat roles understood by every completion backend.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message represents a chat message in the conversation.
//
// An empty Content means the service sent no text (null content). A tool
// message must directly follow the assistant message whose ToolCalls it
// answers, and its ToolCallID must match one of those calls.
type Message struct {
	Role       string
	Content    string
	ToolCallID string
	ToolCalls  []ToolCall
	Timestamp  time.Time
}

// ToolCall is a structured request from the completion service to invoke a
// named tool. Arguments is the raw JSON text the service produced.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// HasToolCalls reports whether the message carries tool calls.
func (m Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// LastUserIndex returns the index of the last user message, or -1.
func LastUserIndex(messages []Message) int {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return i
		}
	}
	return -1
}

// CloneMessages returns a copy of messages that can be extended without
// aliasing the caller's backing array.
func CloneMessages(messages []Message) []Message {
	out := make([]Message, len(messages))
	copy(out, messages)
	return out
}
