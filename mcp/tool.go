package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// ErrToolFailed is returned when a server reports a tool error result.
var ErrToolFailed = errors.New("tool reported an error")

// MCPTool represents a tool provided by an MCP server.
// It implements the Tool interface.
type MCPTool struct {
	dial       Dialer
	remoteName string
	remoteDesc string
	argsSchema any
}

// NewMCPTool creates a new MCPTool instance.
func NewMCPTool(dial Dialer, remoteName, remoteDesc string, argsSchema any) *MCPTool {
	return &MCPTool{
		dial:       dial,
		remoteName: remoteName,
		remoteDesc: remoteDesc,
		argsSchema: argsSchema,
	}
}

// Name returns the name of the tool.
func (t *MCPTool) Name() string {
	return t.remoteName
}

// Description returns a formatted description of the tool including its name,
// description, and argument schema.
func (t *MCPTool) Description() string {
	argsJSON, _ := json.Marshal(t.argsSchema)
	return fmt.Sprintf("name: %s, desc: %s, args_schema: %s", t.remoteName, t.remoteDesc, string(argsJSON))
}

// Call opens a connection, calls the tool and returns its text content.
// A tool error result is returned as an error wrapping ErrToolFailed.
func (t *MCPTool) Call(ctx context.Context, args map[string]any) (string, error) {
	c, err := connect(ctx, t.dial)
	if err != nil {
		return "", err
	}
	defer c.Close()

	result, err := c.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      t.remoteName,
			Arguments: args,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to call tool %s: %w", t.remoteName, err)
	}

	text := resultText(result)
	if result.IsError {
		return "", fmt.Errorf("%w: %s: %s", ErrToolFailed, t.remoteName, text)
	}
	return text, nil
}

func resultText(result *mcp.CallToolResult) string {
	var parts []string
	for _, part := range result.Content {
		switch v := part.(type) {
		case mcp.TextContent:
			parts = append(parts, v.Text)
		case *mcp.TextContent:
			parts = append(parts, v.Text)
		case mcp.ImageContent:
			parts = append(parts, v.Data)
		case *mcp.ImageContent:
			parts = append(parts, v.Data)
		case mcp.AudioContent:
			parts = append(parts, v.Data)
		case *mcp.AudioContent:
			parts = append(parts, v.Data)
		}
	}
	return strings.Join(parts, "\n")
}
