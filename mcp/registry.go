package mcp

import (
	"context"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/spetersoncode/reactor/tool"
)

// Remote provides the tools of an MCP server as tool.Tool values whose
// handlers call the server.
//
// Remote is safe for concurrent use. The tool list is cached locally and
// can be refreshed with [Remote.Refresh].
type Remote struct {
	client *client.Client
	mu     sync.RWMutex
	tools  []mcp.Tool
}

// NewRemote connects to an MCP server via stdio.
// The command is the path to the MCP server executable, and args are passed to it.
func NewRemote(ctx context.Context, command string, env []string, args ...string) (*Remote, error) {
	c, err := client.NewStdioMCPClient(command, env, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP client: %w", err)
	}
	return NewRemoteFromClient(ctx, c)
}

// NewRemoteSSE connects to an MCP server via SSE.
func NewRemoteSSE(ctx context.Context, baseURL string) (*Remote, error) {
	c, err := client.NewSSEMCPClient(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSE MCP client: %w", err)
	}
	return NewRemoteFromClient(ctx, c)
}

// NewRemoteFromClient starts and initializes c, then fetches its tools.
func NewRemoteFromClient(ctx context.Context, c *client.Client) (*Remote, error) {
	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start MCP client: %w", err)
	}

	_, err := c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo: mcp.Implementation{
				Name:    "reactor",
				Version: "1.0.0",
			},
		},
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize MCP session: %w", err)
	}

	r := &Remote{client: c}
	if err := r.Refresh(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	return r, nil
}

// Close closes the connection to the MCP server.
func (r *Remote) Close() error {
	return r.client.Close()
}

// Refresh fetches the current list of tools from the MCP server.
func (r *Remote) Refresh(ctx context.Context) error {
	result, err := r.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools = append([]mcp.Tool(nil), result.Tools...)
	return nil
}

// Names returns the names of the server's tools in listing order.
func (r *Remote) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.tools))
	for i, t := range r.tools {
		names[i] = t.Name
	}
	return names
}

// Len returns the number of available tools.
func (r *Remote) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Tools returns the server's tools. Calling one forwards the arguments to
// the server; error results become handler errors.
func (r *Remote) Tools() []tool.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]tool.Tool, len(r.tools))
	for i, t := range r.tools {
		tools[i] = tool.FromSchema(t.Name, t.Description, schemaOf(t), r.handler(t.Name))
	}
	return tools
}

// Call invokes a tool on the server.
func (r *Remote) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	result, err := r.client.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	})
	if err != nil {
		return "", err
	}
	return resultText(result)
}

func (r *Remote) handler(name string) tool.Handler {
	return func(ctx context.Context, args map[string]any) (string, error) {
		return r.Call(ctx, name, args)
	}
}
