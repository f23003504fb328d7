package provider

import (
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/google/uuid"
	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"

	"pairpilot/mcp"
	"pairpilot/model"
)

// ConvertToOllamaMessages converts model messages to Ollama messages.
//
// Ollama correlates tool results by tool name rather than call ID, so each
// tool message carries the name of the call it answers, looked up from the
// preceding assistant message.
func ConvertToOllamaMessages(messages []model.Message) []api.Message {
	names := make(map[string]string)
	result := make([]api.Message, len(messages))
	for i, msg := range messages {
		out := api.Message{
			Role:    msg.Role,
			Content: msg.Content,
		}
		for _, call := range msg.ToolCalls {
			names[call.ID] = call.Name
			out.ToolCalls = append(out.ToolCalls, api.ToolCall{
				Function: api.ToolCallFunction{
					Name:      call.Name,
					Arguments: mcp.ParseOllamaArguments(call.Arguments),
				},
			})
		}
		if msg.Role == model.RoleTool {
			out.ToolName = names[msg.ToolCallID]
		}
		result[i] = out
	}
	return result
}

// ConvertFromOllamaMessage converts an Ollama reply. Ollama does not return
// call IDs, so a fresh one is generated for each tool call.
func ConvertFromOllamaMessage(msg api.Message) model.Message {
	out := model.Message{
		Role:    model.RoleAssistant,
		Content: msg.Content,
	}
	for _, call := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, model.ToolCall{
			ID:        "call_" + uuid.NewString(),
			Name:      call.Function.Name,
			Arguments: mcp.OllamaArguments(call),
		})
	}
	return out
}

// ConvertToOpenAIMessages converts model messages to the OpenAI chat format.
// OpenRouter accepts the same shape.
func ConvertToOpenAIMessages(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, len(messages))

	for i, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			result[i] = openai.SystemMessage(msg.Content)
		case model.RoleUser:
			result[i] = openai.UserMessage(msg.Content)
		case model.RoleAssistant:
			result[i] = openAIAssistantMessage(msg)
		case model.RoleTool:
			result[i] = openai.ToolMessage(msg.Content, msg.ToolCallID)
		default:
			result[i] = openai.UserMessage(msg.Content)
		}
	}

	return result
}

// openAIAssistantMessage keeps content null when the assistant only
// requested tools.
func openAIAssistantMessage(msg model.Message) openai.ChatCompletionMessageParamUnion {
	if !msg.HasToolCalls() {
		return openai.AssistantMessage(msg.Content)
	}

	asst := openai.ChatCompletionAssistantMessageParam{}
	if msg.Content != "" {
		asst.Content.OfString = openai.String(msg.Content)
	}
	for _, call := range msg.ToolCalls {
		asst.ToolCalls = append(asst.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
			OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
				ID: call.ID,
				Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
					Name:      call.Name,
					Arguments: call.Arguments,
				},
			},
		})
	}
	return openai.ChatCompletionMessageParamUnion{OfAssistant: &asst}
}

// ConvertFromOpenAIMessage converts the first choice of a chat completion.
func ConvertFromOpenAIMessage(msg openai.ChatCompletionMessage) model.Message {
	out := model.Message{
		Role:    model.RoleAssistant,
		Content: msg.Content,
	}
	for _, call := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, model.ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}
	return out
}

// ConvertToAnthropicMessages converts model messages to Anthropic format and
// returns the system blocks separately. Consecutive tool messages become one
// user message of tool_result blocks.
func ConvertToAnthropicMessages(messages []model.Message) ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	var system []anthropic.TextBlockParam
	out := make([]anthropic.MessageParam, 0, len(messages))
	var pendingResults []anthropic.ContentBlockParamUnion

	flush := func() {
		if len(pendingResults) > 0 {
			out = append(out, anthropic.NewUserMessage(pendingResults...))
			pendingResults = nil
		}
	}

	for _, msg := range messages {
		if msg.Role == model.RoleTool {
			pendingResults = append(pendingResults, anthropic.NewToolResultBlock(msg.ToolCallID, msg.Content, false))
			continue
		}
		if msg.Role == model.RoleSystem {
			// The system parameter is positionless; order among system
			// messages is kept.
			system = append(system, anthropic.TextBlockParam{Text: msg.Content})
			continue
		}
		flush()

		switch msg.Role {
		case model.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for _, call := range msg.ToolCalls {
				blocks = append(blocks, anthropic.NewToolUseBlock(call.ID, toolInput(call.Arguments), call.Name))
			}
			if len(blocks) == 0 {
				continue
			}
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		default:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	flush()

	return out, system
}

// toolInput passes valid JSON through untouched and falls back to an empty
// object.
func toolInput(arguments string) json.RawMessage {
	if arguments == "" || !json.Valid([]byte(arguments)) {
		return json.RawMessage("{}")
	}
	return json.RawMessage(arguments)
}

// ConvertFromAnthropicContent joins text blocks and collects tool_use blocks.
func ConvertFromAnthropicContent(content []anthropic.ContentBlockUnion) model.Message {
	out := model.Message{Role: model.RoleAssistant}
	for _, block := range content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			out.Content += b.Text
		case anthropic.ToolUseBlock:
			args := string(b.Input)
			if args == "" {
				args = "{}"
			}
			out.ToolCalls = append(out.ToolCalls, model.ToolCall{
				ID:        b.ID,
				Name:      b.Name,
				Arguments: args,
			})
		}
	}
	return out
}
