// Package prompt assembles the outbound message list for a completion call.
package prompt

import (
	_ "embed"
	"strings"

	"pairpilot/model"
)

//go:embed base_prompt.md
var basePrompt string

// BasePrompt returns the built-in instructions.
func BasePrompt() string {
	return strings.TrimRight(basePrompt, "\n")
}

// Assembler injects the system prompt and retrieval snippets into a
// conversation.
type Assembler struct {
	base string
}

// NewAssembler uses the built-in instructions followed by extra, if any.
func NewAssembler(extra string) *Assembler {
	base := BasePrompt()
	if extra = strings.TrimSpace(extra); extra != "" {
		base += "\n\n" + extra
	}
	return &Assembler{base: base}
}

// Assemble returns a new message list; history is not modified.
//
// The combined system prompt (instructions + projectSummary) replaces the
// first system message in history, or is prepended when there is none. The
// memory snippet and then the structure snippet are inserted as system
// messages right before the last user message, or appended when there is no
// user message. Empty snippets are skipped.
func (a *Assembler) Assemble(history []model.Message, projectSummary, structureSnippet, memorySnippet string) []model.Message {
	system := a.base + projectSummary

	msgs := make([]model.Message, 0, len(history)+3)
	replaced := false
	for _, m := range history {
		if m.Role == model.RoleSystem && !replaced {
			m.Content = system
			replaced = true
		}
		msgs = append(msgs, m)
	}
	if !replaced {
		msgs = append([]model.Message{{Role: model.RoleSystem, Content: system}}, msgs...)
	}

	var snippets []model.Message
	for _, s := range []string{memorySnippet, structureSnippet} {
		if s != "" {
			snippets = append(snippets, model.Message{Role: model.RoleSystem, Content: s})
		}
	}
	if len(snippets) == 0 {
		return msgs
	}

	at := model.LastUserIndex(msgs)
	if at < 0 {
		return append(msgs, snippets...)
	}
	out := make([]model.Message, 0, len(msgs)+len(snippets))
	out = append(out, msgs[:at]...)
	out = append(out, snippets...)
	return append(out, msgs[at:]...)
}
