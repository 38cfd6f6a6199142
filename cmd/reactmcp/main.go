// Command reactmcp serves a question answering ReAct program over MCP stdio.
//
// MCP clients see one "ask" tool taking a question and, with -tools, the
// program's own calculator and clock tools. Logs go to stderr since stdout
// carries the protocol.
//
// Configuration for an MCP client:
//
//	{
//	    "mcpServers": {
//	        "reactor": {
//	            "command": "go",
//	            "args": ["run", "./cmd/reactmcp"],
//	            "cwd": "/path/to/reactor",
//	            "env": {"LLM_PROVIDER": "openai", "OPENAI_API_KEY": "..."}
//	        }
//	    }
//	}
package main

import (
	"context"
	"flag"
	"os"

	"github.com/spetersoncode/reactor/config"
	"github.com/spetersoncode/reactor/internal/app"
	"github.com/spetersoncode/reactor/mcp"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	exposeTools := flag.Bool("tools", false, "also expose the program's tools")
	withTrajectory := flag.Bool("trajectory", false, "include the trajectory in results")
	flag.Parse()

	var (
		cfg config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	logger := app.NewLogger(os.Stderr, err == nil && cfg.Debug)
	if err != nil {
		logger.Error("configuration error", "error", err)
		os.Exit(1)
	}

	program, err := app.NewProgram(context.Background(), cfg, app.QuestionSignature(), app.DemoTools(), logger)
	if err != nil {
		logger.Error("failed to create program", "error", err)
		os.Exit(1)
	}

	if err := mcp.ServeStdio(program,
		mcp.WithName("reactor"),
		mcp.WithVersion("1.0.0"),
		mcp.WithToolName("ask"),
		mcp.WithTools(*exposeTools),
		mcp.WithTrajectory(*withTrajectory),
	); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
