package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// InitializeMCP initializes MCP servers based on the provided configurations
// and returns a list of available tools.
//
// It validates each configuration, establishes connections to MCP servers,
// and enumerates their available tools. If any server fails to initialize,
// the function returns an error immediately. Disabled configurations are skipped.
//
// The enumeration connection is closed before returning; each tool dials
// its server again when called.
//
// Example:
//
//	configs, err := mcp.LoadConfigs("mcp.yaml")
//	if err != nil {
//	    return err
//	}
//	tools, err := mcp.InitializeMCP(ctx, configs)
func InitializeMCP(ctx context.Context, configs []*Config) ([]Tool, error) {
	var tools []Tool

	for _, cfg := range configs {
		if cfg.Disabled {
			continue
		}

		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config for %s: %w", cfg.Name, err)
		}

		found, err := listTools(ctx, SpecDialer(cfg.spec()))
		if err != nil {
			return nil, fmt.Errorf("failed to load tools from %s: %w", cfg.Name, err)
		}
		tools = append(tools, found...)
	}

	return tools, nil
}

// NewInProcessTools lists the tools of a server running in this process.
// The chat agent uses it to reach the messages server without a subprocess.
func NewInProcessTools(ctx context.Context, srv *server.MCPServer) ([]Tool, error) {
	return listTools(ctx, InProcessDialer(srv))
}

func listTools(ctx context.Context, dial Dialer) ([]Tool, error) {
	c, err := connect(ctx, dial)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	toolsList, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}

	var tools []Tool
	for _, rt := range toolsList.Tools {
		if rt.Name == "" {
			continue
		}
		tools = append(tools, NewMCPTool(dial, rt.Name, rt.Description, rt.InputSchema))
	}
	return tools, nil
}
