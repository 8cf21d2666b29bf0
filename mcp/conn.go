package mcp

import (
	"context"
	"fmt"

	mcpclient "github.com/mark3labs/mcp-go/client"
	mcpxport "github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// clientName identifies this program to MCP servers.
const clientName = "llm"

// Dialer opens a started but uninitialized MCP client.
type Dialer func(ctx context.Context) (*mcpclient.Client, error)

// ConnSpec holds connection specifications for an MCP server.
type ConnSpec struct {
	Name      string
	Transport string
	Endpoint  string
	Command   string
	Args      []string
	Env       []string
}

// newTransportFromSpec creates a transport interface from a connection specification.
func newTransportFromSpec(spec ConnSpec) (mcpxport.Interface, error) {
	switch TransportType(spec.Transport) {
	case TransportSSE:
		if spec.Endpoint == "" {
			return nil, fmt.Errorf("endpoint is required for sse transport")
		}
		return mcpxport.NewSSE(spec.Endpoint)
	case TransportStreamableHTTP:
		if spec.Endpoint == "" {
			return nil, fmt.Errorf("endpoint is required for streamable_http transport")
		}
		return mcpxport.NewStreamableHTTP(spec.Endpoint)
	case TransportStdio:
		if spec.Command == "" {
			return nil, fmt.Errorf("command is required for stdio transport")
		}
		return mcpxport.NewStdio(spec.Command, spec.Env, spec.Args...), nil
	default:
		return nil, fmt.Errorf("unsupported transport type: %s", spec.Transport)
	}
}

// SpecDialer dials a remote server described by spec.
func SpecDialer(spec ConnSpec) Dialer {
	return func(ctx context.Context) (*mcpclient.Client, error) {
		transport, err := newTransportFromSpec(spec)
		if err != nil {
			return nil, fmt.Errorf("failed to create transport for %s: %w", spec.Name, err)
		}

		c := mcpclient.NewClient(transport)
		if err := c.Start(ctx); err != nil {
			return nil, fmt.Errorf("failed to start MCP client for %s: %w", spec.Name, err)
		}
		return c, nil
	}
}

// InProcessDialer connects to a server running in this process.
func InProcessDialer(srv *server.MCPServer) Dialer {
	return func(ctx context.Context) (*mcpclient.Client, error) {
		c, err := mcpclient.NewInProcessClient(srv)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-process MCP client: %w", err)
		}
		if err := c.Start(ctx); err != nil {
			return nil, fmt.Errorf("failed to start in-process MCP client: %w", err)
		}
		return c, nil
	}
}

// connect dials and runs the MCP initialize handshake.
func connect(ctx context.Context, dial Dialer) (*mcpclient.Client, error) {
	c, err := dial(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			ClientInfo:      mcp.Implementation{Name: clientName, Version: "1.0.0"},
		},
	}); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize MCP client: %w", err)
	}
	return c, nil
}
