package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/HuaTug/LLM/agents"
	"github.com/HuaTug/LLM/chains"
	"github.com/HuaTug/LLM/llms"
	"github.com/HuaTug/LLM/mcp"
	"github.com/HuaTug/LLM/memory"
	"github.com/HuaTug/LLM/messages"
	"github.com/spf13/cobra"
)

const (
	chatPersona   = "history_teacher"
	directCommand = "/direct "
	goodbye       = "AI: Goodbye! It was nice chatting with you!"
)

// answerer produces the reply to one chat line.
type answerer interface {
	answer(ctx context.Context, input string) (string, error)
}

type chainAnswerer struct{ chain *chains.ConversationChain }

func (c chainAnswerer) answer(ctx context.Context, input string) (string, error) {
	return c.chain.Predict(ctx, input)
}

type agentAnswerer struct{ agent *agents.Agent }

func (a agentAnswerer) answer(ctx context.Context, input string) (string, error) {
	return a.agent.Run(ctx, input)
}

func chatCmd(a *app) *cobra.Command {
	var mcpConfig string
	var messagesTool bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Terminal chat with a history teacher",
		Long: "chat talks to the configured model with conversation memory. Lines starting with " +
			"/direct bypass the memory. With --mcp-config or --messages-tool the model may call tools.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.validate(); err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			llm := a.chatModel()
			mem, closeMem, err := a.newMemory(ctx, llm)
			if err != nil {
				return err
			}
			defer closeMem()

			registry, err := a.personas()
			if err != nil {
				return err
			}
			persona, err := registry.Get(chatPersona)
			if err != nil {
				return err
			}

			var ans answerer
			tools, err := a.chatTools(ctx, mcpConfig, messagesTool)
			if err != nil {
				return err
			}
			if len(tools) > 0 {
				ans = agentAnswerer{agent: agents.CreateReactAgent(llm,
					agents.WithTools(tools),
					agents.WithMemory(mem),
					agents.WithConversationID(memory.DefaultConversationID),
					agents.WithPrompt("Answer as a patient, professional history teacher."),
					agents.WithTokenCounter(a.tokenCounter()),
					agents.WithLogger(a.log),
				)}
			} else {
				chain := chains.NewConversationChain(llm, mem, persona.Template)
				chain.Logger = a.log
				ans = chainAnswerer{chain: chain}
			}

			model := a.cfg.ChatModel()
			fmt.Fprintln(a.out, "🤖 LLM chat demo")
			fmt.Fprintf(a.out, "Model: %s (%s)\n", model.Model, model.Provider)
			if model.Provider == llms.ProviderAzure {
				fmt.Fprintf(a.out, "API version: %s\n", model.APIVersion)
			}
			if len(tools) > 0 {
				fmt.Fprintf(a.out, "Tools: %d\n", len(tools))
			}
			return runChat(ctx, a.in, a.out, ans, llm)
		},
	}

	cmd.Flags().StringVar(&mcpConfig, "mcp-config", "", "file listing mcp_servers whose tools the model may call")
	cmd.Flags().BoolVar(&messagesTool, "messages-tool", false, "let the model call get_latest_messages on the demo sources")
	return cmd
}

func (a *app) chatTools(ctx context.Context, mcpConfig string, messagesTool bool) ([]mcp.Tool, error) {
	if mcpConfig == "" {
		mcpConfig = a.cfg.MCP.ConfigPath
	}

	var tools []mcp.Tool
	if mcpConfig != "" {
		configs, err := mcp.LoadConfigs(mcpConfig)
		if err != nil {
			return nil, err
		}
		remote, err := mcp.InitializeMCP(ctx, configs)
		if err != nil {
			return nil, err
		}
		tools = append(tools, remote...)
	}

	if messagesTool {
		srv := mcp.NewMessagesServer(messages.NewDemoRetriever(messages.WithLogger(a.log)), a.log)
		local, err := mcp.NewInProcessTools(ctx, srv)
		if err != nil {
			return nil, err
		}
		tools = append(tools, local...)
	}
	return tools, nil
}

// runChat is the chat REPL. Errors are printed and the loop continues.
func runChat(ctx context.Context, in io.Reader, out io.Writer, ans answerer, direct llms.LLM) error {
	fmt.Fprintln(out, "Type 'quit', 'exit' or 'bye' to leave.")
	fmt.Fprintln(out, "Start a line with '/direct' to ask without memory.")
	fmt.Fprintln(out, strings.Repeat("-", 50))

	p := newPrompter(ctx, in, out)
	for {
		input, ok := p.next(ctx, "\nYou: ")
		if !ok {
			fmt.Fprintln(out, "\n\n"+goodbye)
			return nil
		}
		if isExitWord(input) {
			fmt.Fprintln(out, goodbye)
			return nil
		}
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, directCommand) {
			reply, err := chains.Direct(ctx, direct, strings.TrimSpace(input[len(directCommand):]))
			if err != nil {
				fmt.Fprintf(out, "\nError: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "\nAI (direct): %s\n", reply)
			continue
		}

		reply, err := ans.answer(ctx, input)
		if err != nil {
			fmt.Fprintf(out, "\nError: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "\nAI: %s\n", reply)
	}
}
