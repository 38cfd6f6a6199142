// Package mcp connects reactor to the Model Context Protocol.
//
// MCP is a protocol that enables AI assistants to access external tools.
// This package works in both directions:
//
//   - Server: expose a react.Program, and optionally its tools, to MCP
//     clients such as desktop assistants.
//   - Client: connect to MCP servers and turn their tools into tool.Tool
//     values a Program can call, see [Remote].
//
// # Exposing a Program
//
//	program, _ := react.New(signature.MustParse("question -> answer"), provider, tools)
//	if err := mcp.ServeStdio(program, mcp.WithToolName("ask")); err != nil {
//	    log.Fatal(err)
//	}
//
// # Consuming MCP Servers
//
//	remote, err := mcp.NewRemote(ctx, "./my-mcp-server", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer remote.Close()
//
//	program, err := react.New(sig, provider, remote.Tools())
package mcp

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/spetersoncode/reactor/tool"
)

// ToMCPTool converts a tool to an MCP tool definition.
// The tool's JSON schema is used as the MCP tool's RawInputSchema.
func ToMCPTool(t tool.Tool) mcp.Tool {
	schema := t.Parameters
	if len(schema) == 0 {
		schema = json.RawMessage(`{"type":"object","properties":{}}`)
	}
	return mcp.NewToolWithRawSchema(t.Name, t.Description, schema)
}

// schemaOf extracts the JSON schema from either RawInputSchema or
// InputSchema.
func schemaOf(t mcp.Tool) json.RawMessage {
	if len(t.RawInputSchema) > 0 {
		return t.RawInputSchema
	}
	data, err := json.Marshal(t.InputSchema)
	if err != nil {
		return nil
	}
	return data
}

// resultText concatenates the text of an MCP tool result. Results flagged
// as errors are returned as an error carrying that text.
func resultText(result *mcp.CallToolResult) (string, error) {
	if result == nil {
		return "", errors.New("empty tool result")
	}

	var textParts []string
	for _, c := range result.Content {
		switch content := c.(type) {
		case mcp.TextContent:
			textParts = append(textParts, content.Text)
		case *mcp.TextContent:
			textParts = append(textParts, content.Text)
		default:
			// For non-text content, try to marshal as JSON
			if data, err := json.Marshal(content); err == nil {
				textParts = append(textParts, string(data))
			}
		}
	}

	if result.StructuredContent != nil {
		if data, err := json.Marshal(result.StructuredContent); err == nil {
			textParts = append(textParts, string(data))
		}
	}

	text := strings.Join(textParts, "\n")
	if result.IsError {
		if text == "" {
			text = "tool reported an error"
		}
		return "", errors.New(text)
	}
	return text, nil
}

// argumentsOf normalizes MCP call arguments into a JSON object.
func argumentsOf(raw any) (map[string]any, error) {
	if raw == nil {
		return map[string]any{}, nil
	}
	if m, ok := raw.(map[string]any); ok {
		return m, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var args map[string]any
	if err := json.Unmarshal(data, &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}
