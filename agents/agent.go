// Package agents implements a ReAct-style agent that answers questions by
// calling MCP tools until the model produces a final answer.
package agents

import (
	"errors"
	"time"

	"github.com/HuaTug/LLM/llms"
	"github.com/HuaTug/LLM/logger"
	"github.com/HuaTug/LLM/mcp"
	"github.com/HuaTug/LLM/memory"
)

// DefaultMaxIterations bounds the number of model calls in one Run.
const DefaultMaxIterations = 10

// ErrMaxIterations is returned when the model keeps calling tools past the limit.
var ErrMaxIterations = errors.New("max iterations exceeded")

// Agent represents a ReAct-style agent that can use tools to answer questions.
// History is kept in its Memory under the agent's conversation ID.
// An Agent is not safe for concurrent use.
type Agent struct {
	llm            llms.LLM
	tools          []mcp.Tool
	extraPrompts   []string
	maxIter        int
	mem            memory.Memory
	conversationID string
	counter        memory.TokenCounter
	log            logger.Logger
	now            func() time.Time

	usage     Usage
	startTime time.Time
	endTime   time.Time
}

// CreateReactAgent creates a new ReAct-style agent with the given LLM.
//
// The agent uses a ReAct (Reasoning + Acting) approach where it can:
// 1. Think about what to do
// 2. Use tools to gather information
// 3. Provide final answers based on tool results
//
// Example:
//
//	configs, _ := mcp.LoadConfigs("mcp.yaml")
//	tools, _ := mcp.InitializeMCP(ctx, configs)
//	agent := agents.CreateReactAgent(llm,
//	    agents.WithTools(tools),
//	    agents.WithMemory(memory.NewBufferMemory()),
//	)
//	answer, err := agent.Run(ctx, "What happened in finance today?")
func CreateReactAgent(llm llms.LLM, opts ...AgentOption) *Agent {
	agent := &Agent{
		llm:     llm,
		tools:   []mcp.Tool{},
		maxIter: DefaultMaxIterations,
		mem:     memory.NewBufferMemory(),
		log:     logger.NopLogger(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(agent)
	}

	if agent.counter == nil {
		if tc, err := memory.DefaultTokenCounter(); err == nil {
			agent.counter = tc
		} else {
			agent.log.Warnw("tiktoken unavailable, counting words", "error", err)
			agent.counter = memory.WordCounter{}
		}
	}

	return agent
}

// Tools returns the tools the agent may call.
func (a *Agent) Tools() []mcp.Tool {
	return a.tools
}
