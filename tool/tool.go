package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	ai "github.com/spetersoncode/reactor"
)

// FinishName is the name of the synthetic tool that ends the iteration phase.
const FinishName = "finish"

// FinishObservation is the observation recorded when finish is invoked.
const FinishObservation = "Done"

// Handler executes a tool with arguments decoded from model-produced JSON.
// The returned string becomes the step's observation.
type Handler func(ctx context.Context, args map[string]any) (string, error)

// TypedHandler executes a tool with arguments decoded into T.
type TypedHandler[T any] func(ctx context.Context, args T) (string, error)

// Tool is a named callable with a description and a JSON schema describing
// its arguments.
type Tool struct {
	Name        string
	Description string
	// Parameters is a JSON schema object. Its properties are rendered into
	// the tool catalogue and incoming arguments are validated against it.
	Parameters json.RawMessage

	handler Handler
}

// Param declares one argument of an untyped tool.
type Param struct {
	Name string
	// Type is a JSON schema type such as "string" or "number". Empty
	// accepts any value.
	Type        string
	Description string
	Required    bool
}

// New creates a tool from a map-based handler and an explicit parameter list.
func New(name, description string, params []Param, fn Handler) Tool {
	props := make(map[string]any, len(params))
	var required []string
	for _, p := range params {
		prop := map[string]any{}
		if p.Type != "" {
			prop["type"] = p.Type
		}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		props[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	schema := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		schema["required"] = required
	}
	raw, _ := json.Marshal(schema)

	return Tool{Name: name, Description: description, Parameters: raw, handler: fn}
}

// FromSchema creates a tool from an existing JSON schema, such as one
// advertised by a remote tool server. An empty schema accepts any object.
func FromSchema(name, description string, schema json.RawMessage, fn Handler) Tool {
	return Tool{Name: name, Description: description, Parameters: schema, handler: fn}
}

// Bind creates a tool from a typed function. The argument schema is
// generated from struct tags on T, see [ai.SchemaFor].
//
// Example:
//
//	type SearchArgs struct {
//	    Query string `json:"query" desc:"Search query" required:"true"`
//	}
//
//	search, err := tool.Bind("search", "Search the web",
//	    func(ctx context.Context, args SearchArgs) (string, error) {
//	        return doSearch(args.Query), nil
//	    })
func Bind[T any](name, description string, fn TypedHandler[T]) (Tool, error) {
	schema, err := ai.SchemaFor[T]()
	if err != nil {
		return Tool{}, err
	}

	handler := func(ctx context.Context, args map[string]any) (string, error) {
		var typed T
		data, err := json.Marshal(args)
		if err != nil {
			return "", err
		}
		if err := json.Unmarshal(data, &typed); err != nil {
			return "", fmt.Errorf("decode arguments: %w", err)
		}
		return fn(ctx, typed)
	}

	return Tool{Name: name, Description: description, Parameters: schema, handler: handler}, nil
}

// Func is like Bind but panics if the schema cannot be generated.
func Func[T any](name, description string, fn TypedHandler[T]) Tool {
	t, err := Bind(name, description, fn)
	if err != nil {
		panic(err)
	}
	return t
}

// Finish returns the synthetic zero-argument tool that marks voluntary
// termination. Its description names the outputs that will be extracted.
func Finish(outputs []string) Tool {
	desc := "Marks the task as complete. That is, signals that all information for producing the outputs"
	if len(outputs) > 0 {
		desc += ", i.e. " + quoteNames(outputs) + ","
	}
	desc += " are now available to be extracted."

	return New(FinishName, desc, nil, func(context.Context, map[string]any) (string, error) {
		return FinishObservation, nil
	})
}

// Call runs the tool's handler. It does not validate arguments.
func (t Tool) Call(ctx context.Context, args map[string]any) (string, error) {
	if t.handler == nil {
		return "", fmt.Errorf("tool %s has no handler", t.Name)
	}
	if args == nil {
		args = map[string]any{}
	}
	return t.handler(ctx, args)
}

// Args returns the schema's properties map, the per-argument view shown to
// the model. It is empty for tools without arguments.
func (t Tool) Args() map[string]any {
	var schema struct {
		Properties map[string]any `json:"properties"`
	}
	if len(t.Parameters) > 0 {
		_ = json.Unmarshal(t.Parameters, &schema)
	}
	if schema.Properties == nil {
		return map[string]any{}
	}
	return schema.Properties
}

func quoteNames(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "`" + n + "`"
	}
	return strings.Join(quoted, ", ")
}
