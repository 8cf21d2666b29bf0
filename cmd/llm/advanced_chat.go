package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/HuaTug/LLM/chains"
	"github.com/HuaTug/LLM/llms"
	"github.com/HuaTug/LLM/logger"
	"github.com/HuaTug/LLM/memory"
	"github.com/HuaTug/LLM/prompts"
	"github.com/HuaTug/LLM/session"
	"github.com/spf13/cobra"
)

const advancedHelp = `Commands:
  /persona <key>  - switch persona
  /personas       - list personas
  /save [file]    - save the conversation
  /load <file>    - load a conversation
  /memory         - show memory statistics
  /clear          - clear the conversation
  /help           - show this help
  /quit           - quit`

// advancedChat is a persona chat with summary buffer memory. Switching
// persona starts a fresh memory.
type advancedChat struct {
	llm       llms.LLM
	counter   memory.TokenCounter
	maxTokens int
	registry  *prompts.Registry
	log       logger.Logger
	now       func() time.Time

	persona prompts.Persona
	mem     *memory.SummaryBufferMemory
	chain   *chains.ConversationChain
}

func newAdvancedChat(llm llms.LLM, counter memory.TokenCounter, maxTokens int, registry *prompts.Registry, log logger.Logger) (*advancedChat, error) {
	c := &advancedChat{
		llm:       llm,
		counter:   counter,
		maxTokens: maxTokens,
		registry:  registry,
		log:       log,
		now:       time.Now,
	}
	if err := c.switchPersona(prompts.DefaultPersona); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *advancedChat) switchPersona(key string) error {
	persona, err := c.registry.Get(key)
	if err != nil {
		return err
	}
	c.persona = persona
	c.mem = memory.NewSummaryBufferMemory(c.llm, c.counter, memory.WithMaxTokenLimit(c.maxTokens))
	c.chain = chains.NewConversationChain(c.llm, c.mem, persona.Template)
	c.chain.Logger = c.log
	return nil
}

func (c *advancedChat) save(path string) (string, error) {
	s := session.FromMessages(c.persona.Key, c.mem.Messages(c.chain.ConversationID), c.now())
	return s.Save(path)
}

func (c *advancedChat) load(ctx context.Context, path string) error {
	s, err := session.Load(path)
	if err != nil {
		return err
	}
	if err := c.switchPersona(s.Persona); err != nil {
		return err
	}
	return s.Restore(ctx, c.mem, c.chain.ConversationID)
}

func (c *advancedChat) stats() string {
	id := c.chain.ConversationID
	return fmt.Sprintf("Messages: %d\nBuffer length: %d characters",
		len(c.mem.Messages(id)), utf8.RuneCountInString(c.mem.Buffer(id)))
}

// command runs a slash command and reports whether the REPL should stop.
func (c *advancedChat) command(ctx context.Context, out io.Writer, input string) bool {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/quit":
		fmt.Fprintf(out, "%s: Goodbye! It was nice chatting with you!\n", c.persona.Name)
		return true
	case "/help":
		fmt.Fprintln(out, advancedHelp)
	case "/personas":
		fmt.Fprintln(out, "Personas:")
		for _, p := range c.registry.List() {
			current := ""
			if p.Key == c.persona.Key {
				current = " (current)"
			}
			fmt.Fprintf(out, "  %s: %s%s\n", p.Key, p.Name, current)
		}
	case "/persona":
		if arg == "" {
			fmt.Fprintln(out, "System: usage: /persona <key>")
			break
		}
		if err := c.switchPersona(arg); err != nil {
			fmt.Fprintf(out, "System: %v\n", err)
			break
		}
		fmt.Fprintf(out, "System: switched to persona: %s\n", c.persona.Name)
	case "/save":
		path, err := c.save(arg)
		if err != nil {
			fmt.Fprintf(out, "System: save failed: %v\n", err)
			break
		}
		fmt.Fprintf(out, "System: conversation saved to %s\n", path)
	case "/load":
		if arg == "" {
			fmt.Fprintln(out, "System: usage: /load <file>")
			break
		}
		if err := c.load(ctx, arg); err != nil {
			fmt.Fprintf(out, "System: load failed: %v\n", err)
			break
		}
		fmt.Fprintf(out, "System: loaded conversation %s\n", arg)
	case "/memory":
		fmt.Fprintf(out, "System: %s\n", c.stats())
	case "/clear":
		if err := c.mem.ClearMessages(ctx, c.chain.ConversationID); err != nil {
			fmt.Fprintf(out, "System: %v\n", err)
			break
		}
		fmt.Fprintln(out, "System: conversation cleared")
	default:
		fmt.Fprintln(out, "System: unknown command, type /help for help")
	}
	return false
}

func (c *advancedChat) run(ctx context.Context, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "🤖 LLM advanced chat demo")
	fmt.Fprintf(out, "Persona: %s\n\n", c.persona.Name)
	fmt.Fprintln(out, advancedHelp)
	fmt.Fprintln(out, strings.Repeat("-", 60))

	p := newPrompter(ctx, in, out)
	for {
		input, ok := p.next(ctx, "\nYou: ")
		if !ok {
			fmt.Fprintf(out, "\n\n%s: Goodbye! It was nice chatting with you!\n", c.persona.Name)
			return nil
		}
		if input == "" {
			continue
		}
		if strings.HasPrefix(input, "/") {
			if c.command(ctx, out, input) {
				return nil
			}
			continue
		}

		reply, err := c.chain.Predict(ctx, input)
		if err != nil {
			reply = fmt.Sprintf("Sorry, an error occurred: %v", err)
		}
		fmt.Fprintf(out, "\n%s: %s\n", c.persona.Name, reply)
	}
}

func advancedChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "advanced-chat",
		Short: "Persona chat with summary memory and saved sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.validate(); err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			registry, err := a.personas()
			if err != nil {
				return err
			}
			chat, err := newAdvancedChat(a.chatModel(), a.tokenCounter(), a.cfg.Memory.MaxTokens, registry, a.log)
			if err != nil {
				return err
			}
			return chat.run(ctx, a.in, a.out)
		},
	}
}
