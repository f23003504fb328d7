// Package tools implements the tools the model may call and the dispatcher
// that runs them against the active project.
package tools

import (
	"context"
	"errors"
	"fmt"
	"sync"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"pairpilot/model"
)

// ErrToolAlreadyRegistered is returned when two handlers share a name.
var ErrToolAlreadyRegistered = errors.New("tool already registered")

// Scope is the filesystem context a handler runs in.
type Scope struct {
	// Base is the sandbox root every path argument resolves against.
	Base string
	// Description phrases Base for user facing messages.
	Description string
	// Project is the active project, nil when Base is the home directory.
	Project *model.Project
}

// ProjectID returns the active project's id, or nil.
func (s Scope) ProjectID() *int64 {
	if s.Project == nil {
		return nil
	}
	id := s.Project.ID
	return &id
}

// Handler runs one tool. Failures are reported in the result text, never
// as Go errors, so the model can read and react to them.
type Handler interface {
	Definition() mcptypes.Tool
	Execute(ctx context.Context, req mcptypes.CallToolRequest, scope Scope) model.ToolExecutionResult
}

// ProjectScoped is implemented by handlers that refuse to run without an
// active project.
type ProjectScoped interface {
	RequiresProject() bool
}

func requiresProject(h Handler) bool {
	ps, ok := h.(ProjectScoped)
	return ok && ps.RequiresProject()
}

// Registry maps tool names to handlers, keeping registration order for
// the schema list sent to the model.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	order    []string
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

func (r *Registry) Register(h Handler) error {
	name := h.Definition().Name
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handlers[name]; ok {
		return fmt.Errorf("%w: %s", ErrToolAlreadyRegistered, name)
	}
	r.handlers[name] = h
	r.order = append(r.order, name)
	return nil
}

func (r *Registry) Get(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Tools returns every schema in registration order.
func (r *Registry) Tools() []mcptypes.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]mcptypes.Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.handlers[name].Definition())
	}
	return out
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Limits bounds tool output.
type Limits struct {
	MaxReadChars     int
	MaxTreeChars     int
	DefaultTreeDepth int
}

// MemorySaver persists long-term memory.
type MemorySaver interface {
	Save(ctx context.Context, text string, sourceProjectID *int64) (int64, error)
}

// NewDefaultRegistry registers the built-in tools.
func NewDefaultRegistry(memory MemorySaver, limits Limits) *Registry {
	if limits.MaxReadChars <= 0 {
		limits.MaxReadChars = DefaultMaxReadChars
	}
	if limits.MaxTreeChars <= 0 {
		limits.MaxTreeChars = DefaultMaxTreeChars
	}
	if limits.DefaultTreeDepth <= 0 {
		limits.DefaultTreeDepth = DefaultTreeDepth
	}

	r := NewRegistry()
	for _, h := range []Handler{
		listDirectoryHandler{},
		listDirectoryRecursiveHandler{defaultDepth: limits.DefaultTreeDepth, maxChars: limits.MaxTreeChars},
		readFileHandler{maxChars: limits.MaxReadChars},
		createDirectoryHandler{},
		createFileHandler{},
		editFileHandler{},
		saveMemoryHandler{memory: memory},
		appendContextHandler{},
	} {
		// Names are distinct constants.
		_ = r.Register(h)
	}
	return r
}
