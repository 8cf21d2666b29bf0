package mcp

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// TransportType represents the type of transport to use for MCP connections.
type TransportType string

const (
	// TransportSSE represents Server-Sent Events transport.
	TransportSSE TransportType = "sse"
	// TransportStreamableHTTP represents streamable HTTP transport.
	TransportStreamableHTTP TransportType = "streamable_http"
	// TransportStdio represents stdio transport.
	TransportStdio TransportType = "stdio"
)

// Config holds configuration for an MCP server connection.
type Config struct {
	// Name is a unique identifier for this MCP server configuration.
	Name string `mapstructure:"name" json:"name"`

	// URL is the endpoint URL (required for SSE and streamable_http transports).
	URL string `mapstructure:"url" json:"url,omitempty"`

	// Transport specifies the transport type: "sse", "streamable_http", or "stdio".
	Transport string `mapstructure:"transport" json:"transport"`

	Description string `mapstructure:"description" json:"description,omitempty"`

	// Disabled indicates whether this MCP server should be skipped during initialization.
	Disabled bool `mapstructure:"disabled" json:"disabled,omitempty"`

	// Command is the command to run (required for stdio transport).
	Command string `mapstructure:"command" json:"command,omitempty"`

	// Args are the command arguments (used for stdio transport).
	Args []string `mapstructure:"args" json:"args,omitempty"`

	// Env holds KEY=VALUE pairs for the stdio subprocess.
	Env []string `mapstructure:"env" json:"env,omitempty"`
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config name is required")
	}

	if c.Transport == "" {
		return fmt.Errorf("transport type is required")
	}

	switch TransportType(c.Transport) {
	case TransportSSE, TransportStreamableHTTP:
		if c.URL == "" {
			return fmt.Errorf("URL is required for %s transport", c.Transport)
		}
	case TransportStdio:
		if c.Command == "" {
			return fmt.Errorf("command is required for stdio transport")
		}
	default:
		return fmt.Errorf("unsupported transport type: %s", c.Transport)
	}

	return nil
}

func (c *Config) spec() ConnSpec {
	return ConnSpec{
		Name:      c.Name,
		Transport: c.Transport,
		Endpoint:  c.URL,
		Command:   c.Command,
		Args:      c.Args,
		Env:       c.Env,
	}
}

// LoadConfigs reads the mcp_servers list from a YAML, JSON or TOML file.
// Every entry is validated and all problems are reported together.
//
// Example file:
//
//	mcp_servers:
//	  - name: messages
//	    transport: stdio
//	    command: llm
//	    args: ["mcp-server"]
func LoadConfigs(path string) ([]*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read MCP config %s: %w", path, err)
	}

	var file struct {
		Servers []*Config `mapstructure:"mcp_servers"`
	}
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("failed to decode MCP config %s: %w", path, err)
	}

	var errs []error
	seen := make(map[string]bool, len(file.Servers))
	for i, cfg := range file.Servers {
		if err := cfg.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("mcp_servers[%d]: %w", i, err))
			continue
		}
		if seen[cfg.Name] {
			errs = append(errs, fmt.Errorf("mcp_servers[%d]: duplicate name %q", i, cfg.Name))
		}
		seen[cfg.Name] = true
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return file.Servers, nil
}
