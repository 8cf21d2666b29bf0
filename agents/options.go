package agents

import (
	"github.com/HuaTug/LLM/logger"
	"github.com/HuaTug/LLM/mcp"
	"github.com/HuaTug/LLM/memory"
)

// AgentOption is a function type for configuring an Agent.
type AgentOption func(*Agent)

// WithTools sets the tools that the agent can use.
// If not provided, the agent will be created without tools.
func WithTools(tools []mcp.Tool) AgentOption {
	return func(a *Agent) {
		a.tools = tools
	}
}

// WithMaxIterations sets the maximum number of tool-calling iterations.
// Default is 10. Values below 1 are ignored.
func WithMaxIterations(maxIter int) AgentOption {
	return func(a *Agent) {
		if maxIter > 0 {
			a.maxIter = maxIter
		}
	}
}

// WithMemory sets a custom memory implementation for the agent.
// If not provided, a default BufferMemory will be used.
//
// Example:
//
//	mem, _ := memory.NewRedisMemoryFromURL(ctx, "redis://localhost:6379/0", memory.RedisOptions{})
//	agent := agents.CreateReactAgent(llm,
//	    agents.WithTools(tools),
//	    agents.WithMemory(mem),
//	)
func WithMemory(mem memory.Memory) AgentOption {
	return func(a *Agent) {
		a.mem = mem
	}
}

// WithConversationID sets the conversation ID for this agent instance.
// This ID is used by the memory implementation to identify the conversation thread.
func WithConversationID(conversationID string) AgentOption {
	return func(a *Agent) {
		a.conversationID = conversationID
	}
}

// WithPrompt adds a system prompt after the tool instructions, e.g. a persona.
func WithPrompt(prompt string) AgentOption {
	return func(a *Agent) {
		a.extraPrompts = append(a.extraPrompts, prompt)
	}
}

// WithTokenCounter sets the counter used for token usage accounting
// when the model response carries no usage. Defaults to tiktoken cl100k_base.
func WithTokenCounter(counter memory.TokenCounter) AgentOption {
	return func(a *Agent) {
		a.counter = counter
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) AgentOption {
	return func(a *Agent) {
		if log != nil {
			a.log = log
		}
	}
}
