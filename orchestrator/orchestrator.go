// Package orchestrator runs one chat turn: context loading, retrieval,
// prompt assembly, at most two completion calls and one round of tool use.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"pairpilot/appctx"
	"pairpilot/model"
	"pairpilot/prompt"
)

// ContextLoader produces the project summary and active project.
type ContextLoader interface {
	Load(ctx context.Context, activeProjectID *int64) appctx.Result
}

// Retriever produces the per-turn structure and memory snippets.
type Retriever interface {
	Retrieve(ctx context.Context, lastUserMessage string, project *model.Project, tree *model.DirectoryNode) model.RetrievalResult
}

// ToolRunner lists tool schemas and executes calls.
type ToolRunner interface {
	Tools() []mcptypes.Tool
	Dispatch(ctx context.Context, call model.ToolCall, project *model.Project) model.ToolExecutionResult
}

// Reindexer accepts deferred reindex requests.
type Reindexer interface {
	Schedule(project model.Project)
}

// Config wires the orchestrator's collaborators. Provider may be nil, in
// which case every turn aborts with ErrNotConfigured. Reindexer may be nil.
type Config struct {
	Provider  model.Provider
	Loader    ContextLoader
	Retriever Retriever
	Assembler *prompt.Assembler
	Tools     ToolRunner
	Reindexer Reindexer
	Logger    *zap.Logger
}

// Orchestrator runs turns sequentially. It holds no per-turn state and is
// not meant for concurrent turns.
type Orchestrator struct {
	provider  model.Provider
	loader    ContextLoader
	retriever Retriever
	assembler *prompt.Assembler
	tools     ToolRunner
	reindexer Reindexer
	logger    *zap.Logger
}

func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	assembler := cfg.Assembler
	if assembler == nil {
		assembler = prompt.NewAssembler("")
	}
	return &Orchestrator{
		provider:  cfg.Provider,
		loader:    cfg.Loader,
		retriever: cfg.Retriever,
		assembler: assembler,
		tools:     cfg.Tools,
		reindexer: cfg.Reindexer,
		logger:    logger.Named("orchestrator"),
	}
}

// SetProvider swaps the completion provider between turns.
func (o *Orchestrator) SetProvider(p model.Provider) {
	o.provider = p
}

// Request is the input of one turn.
type Request struct {
	// Messages is the conversation so far, ending with the new user message.
	Messages        []model.Message
	ActiveProjectID *int64
}

// ToolRun is one executed tool call.
type ToolRun struct {
	Call   model.ToolCall
	Result model.ToolExecutionResult
}

// Turn is the outcome of a completed turn.
type Turn struct {
	// Reply is the final assistant text.
	Reply string
	// Messages is the outbound list of the last completion call followed by
	// the final assistant message.
	Messages []model.Message
	// NewMessages are the messages to append to the stored conversation:
	// the assistant tool call message, the tool results and the reply.
	NewMessages      []model.Message
	ToolRuns         []ToolRun
	CompletionCalls  int
	IgnoredToolCalls int
	ReindexScheduled bool
	Diagnostics      model.Diagnostics
	States           []State
}

type turnRun struct {
	o       *Orchestrator
	turn    Turn
	project *model.Project
	log     *zap.Logger
}

func (r *turnRun) enter(s State) {
	r.turn.States = append(r.turn.States, s)
	r.log.Debug("turn state", zap.Stringer("state", s))
}

func (r *turnRun) abort(err error) (Turn, error) {
	failedAt := StateInit
	if n := len(r.turn.States); n > 0 {
		failedAt = r.turn.States[n-1]
	}
	r.enter(StateAborted)
	return r.turn, &TurnError{State: failedAt, Err: err}
}

// Run executes one turn. On failure the returned error is a *TurnError and
// the Turn holds what was done up to that point.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Turn, error) {
	r := &turnRun{o: o, log: o.logger}
	r.enter(StateInit)

	if o.provider == nil {
		r.log.Warn("turn rejected: no completion provider")
		return r.abort(ErrNotConfigured)
	}
	if len(req.Messages) == 0 {
		r.log.Warn("turn rejected: empty conversation")
		return r.abort(ErrEmptyConversation)
	}

	outbound := r.prepare(ctx, req)
	r.enter(StateContextLoaded)

	r.enter(StateFirstCallPending)
	var tools []mcptypes.Tool
	if o.tools != nil {
		tools = o.tools.Tools()
	}
	first, err := r.complete(ctx, outbound, tools, model.ToolChoiceAuto)
	if err != nil {
		return r.abort(err)
	}

	final := first
	if first.HasToolCalls() {
		r.enter(StateToolLoop)
		assistant := model.Message{
			Role:      model.RoleAssistant,
			Content:   first.Content,
			ToolCalls: first.ToolCalls,
			Timestamp: time.Now(),
		}
		outbound = append(outbound, assistant)
		r.turn.NewMessages = append(r.turn.NewMessages, assistant)

		results := r.runTools(ctx, first.ToolCalls, r.project)
		outbound = append(outbound, results...)
		r.turn.NewMessages = append(r.turn.NewMessages, results...)

		r.enter(StateSecondCallPending)
		// The definitions stay on the request so the tool history remains valid.
		final, err = r.complete(ctx, outbound, tools, model.ToolChoiceNone)
		if err != nil {
			return r.abort(err)
		}
		if final.HasToolCalls() {
			r.turn.IgnoredToolCalls = len(final.ToolCalls)
			r.log.Warn("ignoring tool calls on the second completion",
				zap.Int("count", len(final.ToolCalls)),
				zap.Strings("tools", callNames(final.ToolCalls)))
		}
	}

	r.enter(StateResponding)
	if strings.TrimSpace(final.Content) == "" {
		r.log.Warn("completion returned no content")
		return r.abort(ErrEmptyResponse)
	}

	reply := model.Message{Role: model.RoleAssistant, Content: final.Content, Timestamp: time.Now()}
	r.turn.Reply = final.Content
	r.turn.Messages = append(outbound, reply)
	r.turn.NewMessages = append(r.turn.NewMessages, reply)
	r.enter(StateDone)
	return r.turn, nil
}

// prepare loads context, retrieves snippets and assembles the prompt.
func (r *turnRun) prepare(ctx context.Context, req Request) []model.Message {
	var loaded appctx.Result
	if r.o.loader != nil {
		loaded = r.o.loader.Load(ctx, req.ActiveProjectID)
	}
	r.turn.Diagnostics = append(r.turn.Diagnostics, loaded.Diagnostics...)
	r.project = loaded.ActiveProject

	var snippets model.RetrievalResult
	if r.o.retriever != nil {
		snippets = r.o.retriever.Retrieve(ctx, lastUserText(req.Messages), loaded.ActiveProject, loaded.Tree)
	}

	return r.o.assembler.Assemble(req.Messages, loaded.SummaryText(), snippets.StructureSnippet, snippets.MemorySnippet)
}

func (r *turnRun) complete(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, choice model.ToolChoice) (model.Message, error) {
	r.turn.CompletionCalls++
	start := time.Now()
	msg, err := r.o.provider.Complete(ctx, messages, tools, choice)
	if err != nil {
		r.log.Error("completion failed",
			zap.Int("call", r.turn.CompletionCalls),
			zap.Int("messages", len(messages)),
			zap.Error(err))
		return model.Message{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	r.log.Debug("completion received",
		zap.Int("call", r.turn.CompletionCalls),
		zap.Int("tool_calls", len(msg.ToolCalls)),
		zap.Duration("took", time.Since(start)))
	return msg, nil
}

// runTools executes calls one at a time in the order given. A single
// reindex follows the loop when any call changed the tree.
func (r *turnRun) runTools(ctx context.Context, calls []model.ToolCall, project *model.Project) []model.Message {
	results := make([]model.Message, 0, len(calls))
	reindex := false

	for _, call := range calls {
		var res model.ToolExecutionResult
		if r.o.tools == nil {
			res = model.ToolExecutionResult{ResultText: fmt.Sprintf(`Error: Tool "%s" not found.`, call.Name)}
		} else {
			res = r.o.tools.Dispatch(ctx, call, project)
		}
		r.turn.ToolRuns = append(r.turn.ToolRuns, ToolRun{Call: call, Result: res})
		results = append(results, model.Message{
			Role:       model.RoleTool,
			Content:    res.ResultText,
			ToolCallID: call.ID,
			Timestamp:  time.Now(),
		})
		reindex = reindex || res.NeedsReindex
	}

	if reindex && project != nil && r.o.reindexer != nil {
		r.o.reindexer.Schedule(*project)
		r.turn.ReindexScheduled = true
	}
	return results
}

func lastUserText(messages []model.Message) string {
	if i := model.LastUserIndex(messages); i >= 0 {
		return strings.TrimSpace(messages[i].Content)
	}
	return ""
}

func callNames(calls []model.ToolCall) []string {
	names := make([]string, len(calls))
	for i, c := range calls {
		names[i] = c.Name
	}
	return names
}
