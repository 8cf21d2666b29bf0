package agents

import (
	"strings"

	"github.com/HuaTug/LLM/mcp"
	openai "github.com/sashabaranov/go-openai"
)

const toolInstructions = `You are an AI assistant. When you need external tools to complete a user request, reply as follows:
1) To call a tool, describe in at most 60 words what you will use it for, then return the JSON object:
{"action":"call_tool","tool":"<tool_name>","args":{...}}
example:
I will look up the finance messages from the last 24 hours.
{"action":"call_tool","tool":"get_latest_messages","args":{"hours_back":24,"categories":["finance"]}}
2) Otherwise answer directly.`

// buildSystemPrompt constructs the system prompt for the agent.
func buildSystemPrompt(tools []mcp.Tool) string {
	var sb strings.Builder
	sb.WriteString(toolInstructions)
	sb.WriteString("\n\nAvailable tools (use in the following format):\n")
	for _, tool := range tools {
		sb.WriteString(tool.Description())
		sb.WriteString("\n")
	}
	return sb.String()
}

// systemMessages returns the tool instructions followed by extra prompts.
func (a *Agent) systemMessages() []openai.ChatCompletionMessage {
	var msgs []openai.ChatCompletionMessage
	if len(a.tools) > 0 {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: buildSystemPrompt(a.tools),
		})
	}
	for _, p := range a.extraPrompts {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: p})
	}
	return msgs
}
