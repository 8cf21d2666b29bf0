package mcp

import "context"

// Tool is the interface that all tools must implement.
// It provides a standard way for agents to interact with external tools.
type Tool interface {
	// Name returns the name of the tool.
	Name() string

	// Description returns a description of what the tool does.
	// This is used to help the LLM understand when and how to use the tool.
	Description() string

	// Call executes the tool with decoded JSON arguments and returns its text result.
	Call(ctx context.Context, args map[string]any) (string, error)
}
