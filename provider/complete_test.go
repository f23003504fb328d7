package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"pairpilot/model"
	"pairpilot/provider/testutil"
)

// recorder is a fake completion endpoint that keeps the last request body.
type recorder struct {
	mu   sync.Mutex
	body map[string]any
	resp string
}

func (rec *recorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(data, &body)
	rec.mu.Lock()
	rec.body = body
	rec.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, rec.resp)
}

func (rec *recorder) last() map[string]any {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.body
}

const anthropicReply = `{
  "id": "msg_01",
  "type": "message",
  "role": "assistant",
  "model": "claude-sonnet-4-5-20250929",
  "content": [{"type": "text", "text": "Done."}],
  "stop_reason": "end_turn",
  "stop_sequence": null,
  "usage": {"input_tokens": 10, "output_tokens": 2}
}`

const openAIReply = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4.1-2025-04-14",
  "choices": [{
    "index": 0,
    "finish_reason": "stop",
    "logprobs": null,
    "message": {"role": "assistant", "content": "Done.", "refusal": null}
  }]
}`

func toolChoiceType(body map[string]any) string {
	tc, _ := body["tool_choice"].(map[string]any)
	s, _ := tc["type"].(string)
	return s
}

func TestAnthropicCompleteToolChoice(t *testing.T) {
	tests := []struct {
		name       string
		messages   []model.Message
		withTools  bool
		choice     model.ToolChoice
		wantTools  bool
		wantChoice string
	}{
		{name: "first call offers tools", messages: testutil.SingleUserMessage("Read a.ts"), withTools: true, choice: model.ToolChoiceAuto, wantTools: true, wantChoice: "auto"},
		{name: "second call keeps definitions but forbids use", messages: testutil.ToolRoundTrip(), withTools: true, choice: model.ToolChoiceNone, wantTools: true, wantChoice: "none"},
		{name: "no tools", messages: testutil.SingleUserMessage("Hello"), choice: model.ToolChoiceAuto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{resp: anthropicReply}
			srv := httptest.NewServer(rec)
			defer srv.Close()

			p, err := NewAnthropicProvider(srv.URL, "test-key", "")
			if err != nil {
				t.Fatalf("NewAnthropicProvider() error = %v", err)
			}
			tools := testutil.TestMCPTools()
			if !tt.withTools {
				tools = nil
			}

			reply, err := p.Complete(context.Background(), tt.messages, tools, tt.choice)
			if err != nil {
				t.Fatalf("Complete() error = %v", err)
			}
			if reply.Content != "Done." {
				t.Errorf("Complete() content = %q, want %q", reply.Content, "Done.")
			}

			body := rec.last()
			gotTools, _ := body["tools"].([]any)
			if tt.wantTools && len(gotTools) != len(tools) {
				t.Errorf("request tools = %d, want %d", len(gotTools), len(tools))
			}
			if !tt.wantTools && body["tools"] != nil {
				t.Errorf("request carries tools %v, want none", body["tools"])
			}
			if got := toolChoiceType(body); got != tt.wantChoice {
				t.Errorf("tool_choice.type = %q, want %q", got, tt.wantChoice)
			}
		})
	}
}

func TestAnthropicToolHistoryAlwaysHasDefinitions(t *testing.T) {
	rec := &recorder{resp: anthropicReply}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	p, err := NewAnthropicProvider(srv.URL, "test-key", "")
	if err != nil {
		t.Fatalf("NewAnthropicProvider() error = %v", err)
	}
	if _, err := p.Complete(context.Background(), testutil.ToolRoundTrip(), testutil.TestMCPTools(), model.ToolChoiceNone); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	body := rec.last()
	var toolBlocks int
	msgs, _ := body["messages"].([]any)
	for _, m := range msgs {
		content, _ := m.(map[string]any)["content"].([]any)
		for _, c := range content {
			switch c.(map[string]any)["type"] {
			case "tool_use", "tool_result":
				toolBlocks++
			}
		}
	}
	if toolBlocks == 0 {
		t.Fatal("round trip produced no tool_use/tool_result blocks")
	}
	if tools, _ := body["tools"].([]any); len(tools) == 0 {
		t.Errorf("request has %d tool blocks but no tool definitions", toolBlocks)
	}
}

func TestOpenAICompleteForbiddenToolsAreOmitted(t *testing.T) {
	rec := &recorder{resp: openAIReply}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	p, err := NewOpenAIProvider(srv.URL, "test-key", "")
	if err != nil {
		t.Fatalf("NewOpenAIProvider() error = %v", err)
	}

	if _, err := p.Complete(context.Background(), testutil.ToolRoundTrip(), testutil.TestMCPTools(), model.ToolChoiceNone); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if body := rec.last(); body["tools"] != nil || body["tool_choice"] != nil {
		t.Errorf("request = tools %v, tool_choice %v; want neither", body["tools"], body["tool_choice"])
	}

	reply, err := p.Complete(context.Background(), testutil.SingleUserMessage("Read a.ts"), testutil.TestMCPTools(), model.ToolChoiceAuto)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if reply.Content != "Done." {
		t.Errorf("Complete() content = %q, want %q", reply.Content, "Done.")
	}
	body := rec.last()
	if tools, _ := body["tools"].([]any); len(tools) != 2 {
		t.Errorf("request tools = %v, want 2 definitions", body["tools"])
	}
	if body["tool_choice"] != "auto" {
		t.Errorf("tool_choice = %v, want auto", body["tool_choice"])
	}
}
