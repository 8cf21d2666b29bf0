package agents

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/HuaTug/LLM/mcp"
	"github.com/HuaTug/LLM/memory"
	"github.com/HuaTug/LLM/messages"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedLLM struct {
	answers []string
	calls   [][]openai.ChatCompletionMessage
	usage   openai.Usage
}

func (s *scriptedLLM) Chat(_ context.Context, msgs []openai.ChatCompletionMessage) (openai.ChatCompletionResponse, error) {
	s.calls = append(s.calls, msgs)
	answer := s.answers[min(len(s.calls), len(s.answers))-1]
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Role: "assistant", Content: answer}}},
		Usage:   s.usage,
	}, nil
}

type fakeTool struct {
	name string
	args []map[string]any
	out  string
	err  error
}

func (f *fakeTool) Name() string        { return f.name }
func (f *fakeTool) Description() string { return "name: " + f.name + ", desc: fake" }
func (f *fakeTool) Call(_ context.Context, args map[string]any) (string, error) {
	f.args = append(f.args, args)
	return f.out, f.err
}

func newAgent(llm *scriptedLLM, tools ...mcp.Tool) *Agent {
	return CreateReactAgent(llm,
		WithTools(tools),
		WithConversationID("c1"),
		WithTokenCounter(memory.WordCounter{}),
	)
}

func TestRunDirectAnswer(t *testing.T) {
	llm := &scriptedLLM{answers: []string{"  Paris.  "}}
	agent := newAgent(llm)

	answer, err := agent.Run(context.Background(), "Capital of France?")
	require.NoError(t, err)
	assert.Equal(t, "Paris.", answer)
	require.Len(t, llm.calls, 1)
	assert.Len(t, llm.calls[0], 1, "no tools means no system prompt")

	history, _ := agent.GetMemory().LoadMessages(context.Background(), "c1")
	assert.Equal(t, []openai.ChatCompletionMessage{
		{Role: "user", Content: "Capital of France?"},
		{Role: "assistant", Content: "Paris."},
	}, history)
}

func TestRunCallsTool(t *testing.T) {
	llm := &scriptedLLM{answers: []string{
		"I will fetch finance messages.\n{\"action\": \"call_tool\", \"tool\": \"get_latest_messages\", \"args\": {\"hours_back\": 24, \"categories\": [\"finance\"]}}\nThanks",
		"Tech stocks rose 2.5%.",
	}}
	tool := &fakeTool{name: "get_latest_messages", out: `[{"title":"Stock market update"}]`}
	agent := newAgent(llm, tool)

	answer, err := agent.Run(context.Background(), "How are markets?")
	require.NoError(t, err)
	assert.Equal(t, "Tech stocks rose 2.5%.", answer)

	require.Len(t, tool.args, 1)
	assert.Equal(t, float64(24), tool.args[0]["hours_back"])
	assert.Equal(t, []any{"finance"}, tool.args[0]["categories"])

	require.Len(t, llm.calls, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, llm.calls[0][0].Role)
	assert.Contains(t, llm.calls[0][0].Content, "name: get_latest_messages")
	last := llm.calls[1][len(llm.calls[1])-1]
	assert.True(t, strings.HasPrefix(last.Content, "Tool get_latest_messages returned: [{"))

	history, _ := agent.GetMemory().LoadMessages(context.Background(), "c1")
	assert.Len(t, history, 4)
}

func TestRunFinalAnswerAction(t *testing.T) {
	llm := &scriptedLLM{answers: []string{`{"action":"final_answer","answer":"done"}`}}
	answer, err := newAgent(llm).Run(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "done", answer)
}

func TestRunToolErrorIsReportedToModel(t *testing.T) {
	llm := &scriptedLLM{answers: []string{
		`{"action":"call_tool","tool":"broken","args":{}}`,
		`{"action":"call_tool","tool":"missing","args":{}}`,
		"I could not get the data.",
	}}
	tool := &fakeTool{name: "broken", err: errors.New("connection refused")}
	agent := newAgent(llm, tool)

	answer, err := agent.Run(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "I could not get the data.", answer)
	assert.Contains(t, llm.calls[1][len(llm.calls[1])-1].Content, "error: connection refused")
	assert.Contains(t, llm.calls[2][len(llm.calls[2])-1].Content, "tool not found: missing")
}

func TestRunMaxIterations(t *testing.T) {
	llm := &scriptedLLM{answers: []string{`{"action":"call_tool","tool":"loop","args":{}}`}}
	agent := CreateReactAgent(llm,
		WithTools([]mcp.Tool{&fakeTool{name: "loop", out: "again"}}),
		WithMaxIterations(3),
		WithTokenCounter(memory.WordCounter{}),
	)

	_, err := agent.Run(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrMaxIterations)
	assert.Len(t, llm.calls, 3)

	history, _ := agent.GetMemory().LoadMessages(context.Background(), "")
	assert.Empty(t, history, "failed runs are not saved")
}

func TestRunUsesHistoryAndPrompt(t *testing.T) {
	ctx := context.Background()
	mem := memory.NewBufferMemory()
	require.NoError(t, mem.SaveMessages(ctx, "c2", []openai.ChatCompletionMessage{
		{Role: "user", Content: "I am Ada."},
		{Role: "assistant", Content: "Hello Ada."},
	}))

	llm := &scriptedLLM{answers: []string{"Ada."}}
	agent := CreateReactAgent(llm,
		WithMemory(mem),
		WithConversationID("other"),
		WithPrompt("You are a history teacher."),
		WithTokenCounter(memory.WordCounter{}),
	)
	agent.SetConversationID("c2")
	assert.Equal(t, "c2", agent.ConversationID())

	_, err := agent.Run(ctx, "What is my name?")
	require.NoError(t, err)
	require.Len(t, llm.calls[0], 4)
	assert.Equal(t, "You are a history teacher.", llm.calls[0][0].Content)
	assert.Equal(t, "I am Ada.", llm.calls[0][1].Content)

	require.NoError(t, agent.ClearHistory(ctx))
	history, _ := mem.LoadMessages(ctx, "c2")
	assert.Empty(t, history)
}

func TestUsage(t *testing.T) {
	ctx := context.Background()

	counted := newAgent(&scriptedLLM{answers: []string{"one two three"}})
	_, err := counted.Run(ctx, "four five")
	require.NoError(t, err)
	assert.Equal(t, Usage{PromptTokens: 2, CompletionTokens: 3, TotalTokens: 5}, counted.Usage())

	reported := newAgent(&scriptedLLM{
		answers: []string{"ok"},
		usage:   openai.Usage{PromptTokens: 10, CompletionTokens: 1, TotalTokens: 11},
	})
	_, err = reported.Run(ctx, "hi")
	require.NoError(t, err)
	meta := reported.GetMetadata()
	assert.Equal(t, "c1", meta.ConversationID)
	assert.Equal(t, 11, meta.Usage.TotalTokens)
	assert.GreaterOrEqual(t, meta.Duration, time.Duration(0))
	assert.False(t, meta.EndTime.Before(meta.StartTime))
}

func TestAgentWithMessagesServer(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	retriever := messages.NewDemoRetriever(messages.WithClock(func() time.Time { return now }))
	tools, err := mcp.NewInProcessTools(ctx, mcp.NewMessagesServer(retriever, nil))
	require.NoError(t, err)

	llm := &scriptedLLM{answers: []string{
		`{"action":"call_tool","tool":"get_latest_messages","args":{"hours_back":24,"categories":["feedback"]}}`,
		"Users want more customization.",
	}}
	agent := newAgent(llm, tools...)

	answer, err := agent.Run(ctx, "What do users say?")
	require.NoError(t, err)
	assert.Equal(t, "Users want more customization.", answer)
	assert.Contains(t, llm.calls[1][len(llm.calls[1])-1].Content, "User feedback")
}

func TestParseAction(t *testing.T) {
	call, answer := parseAction("plain text")
	assert.Nil(t, call)
	assert.Equal(t, "plain text", answer)

	call, _ = parseAction("{not json} then {\"action\":\"call_tool\",\"tool\":\"x\"}")
	require.NotNil(t, call)
	assert.Equal(t, "x", call.Tool)
	assert.Empty(t, call.Args)

	call, answer = parseAction(`{"action":"something_else"}`)
	assert.Nil(t, call)
	assert.Equal(t, `{"action":"something_else"}`, answer)
}
