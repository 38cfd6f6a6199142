package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// registeredTool combines a tool definition with its compiled argument schema.
type registeredTool struct {
	tool   Tool
	schema *jsonschema.Schema
}

// Registry manages registered tools in registration order.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]registeredTool
	order []string
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]registeredTool),
	}
}

// Register adds a tool to the registry. It fails if a tool with the same
// name is already registered or if the tool's schema does not compile.
func (r *Registry) Register(t Tool) error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("tool: empty name")
	}
	schema, err := compileSchema(t)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[t.Name]; exists {
		return &ErrToolAlreadyRegistered{Name: t.Name}
	}
	r.tools[t.Name] = registeredTool{tool: t, schema: schema}
	r.order = append(r.order, t.Name)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(t Tool) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

// Add registers one or more tools and returns the registry for chaining.
// Panics if any tool cannot be registered.
//
// Example:
//
//	registry := tool.NewRegistry().Add(
//	    tool.Func("add", "Add two numbers", addFn),
//	    tool.Func("search", "Search the web", searchFn),
//	)
func (r *Registry) Add(tools ...Tool) *Registry {
	for _, t := range tools {
		r.MustRegister(t)
	}
	return r
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.tools[name]
	if !ok {
		return Tool{}, false
	}
	return rt.tool, true
}

// Has reports whether a tool with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Tools returns all registered tools in registration order.
func (r *Registry) Tools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.tools[name].tool)
	}
	return tools
}

// Names returns the names of all registered tools in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Describe renders the tool catalogue embedded into the decision prompt:
// one line per tool with its 1-based index, name, description and JSON
// argument schema.
func (r *Registry) Describe() string {
	lines := make([]string, 0, r.Len())
	for i, t := range r.Tools() {
		lines = append(lines, describeTool(i+1, t))
	}
	return strings.Join(lines, "\n")
}

func describeTool(idx int, t Tool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "(%d) %s", idx, t.Name)
	if t.Description != "" {
		desc := strings.NewReplacer("\r\n", "  ", "\n", "  ").Replace(t.Description)
		fmt.Fprintf(&b, ", whose description is <desc>%s</desc>.", desc)
	} else {
		b.WriteString(".")
	}
	args, err := json.Marshal(t.Args())
	if err != nil {
		args = []byte("{}")
	}
	fmt.Fprintf(&b, " It takes arguments %s in JSON format.", args)
	return b.String()
}

// Resolve maps a model-chosen tool name onto a registered one: an exact
// match wins, otherwise the closest registered name scoring at least
// DefaultCutoff. ok is false when nothing is close enough.
func (r *Registry) Resolve(name string) (resolved string, ok bool) {
	return r.ResolveWithCutoff(name, DefaultCutoff)
}

// ResolveWithCutoff is like Resolve with an explicit similarity threshold.
func (r *Registry) ResolveWithCutoff(name string, cutoff float64) (string, bool) {
	if r.Has(name) {
		return name, true
	}
	return ClosestName(name, r.Names(), cutoff)
}

// Execute validates args against the tool's schema and runs its handler.
// Failures are returned as *ErrToolExecution; an unknown name wraps
// *ErrToolNotFound. Handler panics are not recovered here, see Invoke.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	r.mu.RLock()
	rt, ok := r.tools[name]
	r.mu.RUnlock()

	if !ok {
		return "", &ErrToolExecution{Name: name, Err: &ErrToolNotFound{Name: name}}
	}
	if args == nil {
		args = map[string]any{}
	}
	if rt.schema != nil {
		if err := rt.schema.Validate(normalize(args)); err != nil {
			return "", &ErrToolExecution{Name: name, Err: &ErrInvalidArguments{Err: err}}
		}
	}

	out, err := rt.tool.Call(ctx, args)
	if err != nil {
		return "", &ErrToolExecution{Name: name, Err: err}
	}
	return out, nil
}

// Invoke runs a tool and always returns observation text. Validation
// failures, handler errors and panics are rendered as
// "Execution error in <name>: <cause>" so the loop can feed them back to the
// model.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (observation string) {
	defer func() {
		if p := recover(); p != nil {
			observation = (&ErrToolExecution{Name: name, Err: fmt.Errorf("panic: %v", p)}).Error()
		}
	}()

	out, err := r.Execute(ctx, name, args)
	if err != nil {
		return err.Error()
	}
	return out
}

func compileSchema(t Tool) (*jsonschema.Schema, error) {
	if len(bytes.TrimSpace(t.Parameters)) == 0 {
		return nil, nil
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(t.Parameters))
	if err != nil {
		return nil, fmt.Errorf("tool %s: parse schema: %w", t.Name, err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", doc); err != nil {
		return nil, fmt.Errorf("tool %s: add schema: %w", t.Name, err)
	}
	compiled, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("tool %s: compile schema: %w", t.Name, err)
	}
	return compiled, nil
}

// normalize round-trips args through JSON so Go values built by callers
// (ints, typed slices) validate the same way decoded model output does.
func normalize(args map[string]any) any {
	data, err := json.Marshal(args)
	if err != nil {
		return args
	}
	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return args
	}
	return v
}
