package agents

import (
	"context"
	"fmt"

	"github.com/HuaTug/LLM/llms"
	"github.com/HuaTug/LLM/mcp"
	openai "github.com/sashabaranov/go-openai"
)

// Run processes a user message and returns the agent's response.
// It handles tool calling iteratively until a final answer is reached or max iterations are exceeded.
//
// The exchange (user message, tool calls, tool results and the answer) is
// saved to memory only when Run succeeds. A failing tool does not abort the
// run: its error is reported back to the model as the tool result.
func (a *Agent) Run(ctx context.Context, message string) (string, error) {
	a.usage = Usage{}
	a.startTime = a.now()
	defer func() { a.endTime = a.now() }()

	history, err := a.mem.LoadMessages(ctx, a.conversationID)
	if err != nil {
		return "", fmt.Errorf("failed to load history: %w", err)
	}

	turn := []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: message}}
	base := append(a.systemMessages(), history...)

	for i := 0; i < a.maxIter; i++ {
		msgs := append(append([]openai.ChatCompletionMessage{}, base...), turn...)

		resp, err := a.llm.Chat(ctx, msgs)
		if err != nil {
			return "", fmt.Errorf("failed to get LLM response: %w", err)
		}
		reply, err := llms.ToReply(resp)
		if err != nil {
			return "", err
		}

		output := reply.Content
		a.recordUsage(reply.Usage, msgs, output)
		turn = append(turn, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: output})

		call, answer := parseAction(output)
		if call == nil {
			if err := a.mem.SaveMessages(ctx, a.conversationID, withAnswer(turn, answer)); err != nil {
				return "", fmt.Errorf("failed to save conversation: %w", err)
			}
			return answer, nil
		}

		result := a.callTool(ctx, call)
		turn = append(turn, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: fmt.Sprintf("Tool %s returned: %s", call.Tool, result),
		})
	}

	a.log.WarnwCtx(ctx, "agent gave up", "iterations", a.maxIter)
	return "", fmt.Errorf("%w (%d)", ErrMaxIterations, a.maxIter)
}

// finalTurn replaces the raw last output with the extracted answer.
func withAnswer(turn []openai.ChatCompletionMessage, answer string) []openai.ChatCompletionMessage {
	turn[len(turn)-1].Content = answer
	return turn
}

func (a *Agent) callTool(ctx context.Context, call *toolCall) string {
	tool := a.findTool(call.Tool)
	if tool == nil {
		a.log.WarnwCtx(ctx, "model asked for unknown tool", "tool", call.Tool)
		return fmt.Sprintf("error: tool not found: %s", call.Tool)
	}

	a.log.InfowCtx(ctx, "calling tool", "tool", call.Tool, "args", call.Args)
	result, err := tool.Call(ctx, call.Args)
	if err != nil {
		a.log.WarnwCtx(ctx, "tool call failed", "tool", call.Tool, "error", err)
		return "error: " + err.Error()
	}
	return result
}

// findTool finds a tool by name.
func (a *Agent) findTool(name string) mcp.Tool {
	for _, tool := range a.tools {
		if tool.Name() == name {
			return tool
		}
	}
	return nil
}
