package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/spetersoncode/reactor/predict"
	"github.com/spetersoncode/reactor/react"
	"github.com/spetersoncode/reactor/tool"
)

// ServerOption configures a Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	name           string
	version        string
	toolName       string
	description    string
	exposeTools    bool
	withTrajectory bool
}

// WithName sets the server name reported to MCP clients.
func WithName(name string) ServerOption {
	return func(c *serverConfig) {
		c.name = name
	}
}

// WithVersion sets the server version reported to MCP clients.
func WithVersion(version string) ServerOption {
	return func(c *serverConfig) {
		c.version = version
	}
}

// WithToolName sets the MCP tool name of the program (default "react").
func WithToolName(name string) ServerOption {
	return func(c *serverConfig) {
		c.toolName = name
	}
}

// WithDescription sets the MCP tool description of the program.
func WithDescription(desc string) ServerOption {
	return func(c *serverConfig) {
		c.description = desc
	}
}

// WithTools also exposes the program's own tools, finish excluded.
func WithTools(enabled bool) ServerOption {
	return func(c *serverConfig) {
		c.exposeTools = enabled
	}
}

// WithTrajectory includes the trajectory in the program's result.
func WithTrajectory(enabled bool) ServerOption {
	return func(c *serverConfig) {
		c.withTrajectory = enabled
	}
}

// NewServer creates an MCP server exposing program as a single tool. The
// tool takes the signature inputs as required string arguments and returns
// the outputs as a JSON object.
//
// Example:
//
//	s := mcp.NewServer(program,
//	    mcp.WithName("research"),
//	    mcp.WithToolName("ask"),
//	)
//	server.ServeStdio(s)
func NewServer(program *react.Program, opts ...ServerOption) *server.MCPServer {
	cfg := &serverConfig{
		name:     "reactor",
		version:  "1.0.0",
		toolName: "react",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	s := server.NewMCPServer(
		cfg.name,
		cfg.version,
		server.WithToolCapabilities(true),
	)

	s.AddTool(programTool(program, cfg), programHandler(program, cfg))

	if cfg.exposeTools {
		registry := program.Registry()
		for _, t := range registry.Tools() {
			if t.Name == tool.FinishName {
				continue
			}
			s.AddTool(ToMCPTool(t), toolHandler(registry, t.Name))
		}
	}

	return s
}

func programTool(program *react.Program, cfg *serverConfig) mcp.Tool {
	sig := program.Signature()
	desc := cfg.description
	if desc == "" {
		desc = fmt.Sprintf("Runs a reasoning agent that produces %s.", sig.String())
		if instr := sig.Instructions(); instr != "" {
			desc += " " + instr
		}
	}

	toolOpts := []mcp.ToolOption{mcp.WithDescription(desc)}
	for _, f := range sig.Inputs() {
		propOpts := []mcp.PropertyOption{mcp.Required()}
		if f.Desc != "" {
			propOpts = append(propOpts, mcp.Description(f.Desc))
		}
		toolOpts = append(toolOpts, mcp.WithString(f.Name, propOpts...))
	}
	return mcp.NewTool(cfg.toolName, toolOpts...)
}

func programHandler(program *react.Program, cfg *serverConfig) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		inputs, err := argumentsOf(req.Params.Arguments)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		res, err := program.Run(ctx, inputs)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		out := predict.NewPrediction()
		for _, name := range program.Signature().OutputNames() {
			v, _ := res.Prediction.Get(name)
			out.Set(name, v)
		}
		if cfg.withTrajectory {
			out.Set(predict.TrajectoryKey, res.Trajectory)
		}
		data, err := json.Marshal(out)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

// toolHandler runs a registered tool. Validation and execution failures
// are returned as MCP error results.
func toolHandler(registry *tool.Registry, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := argumentsOf(req.Params.Arguments)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		out, err := registry.Execute(ctx, name, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(out), nil
	}
}

// ServeStdio serves program over stdin/stdout.
// This is the standard transport for MCP servers invoked as subprocesses.
func ServeStdio(program *react.Program, opts ...ServerOption) error {
	return server.ServeStdio(NewServer(program, opts...))
}
