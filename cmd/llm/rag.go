package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/HuaTug/LLM/chains"
	"github.com/HuaTug/LLM/documents"
	"github.com/HuaTug/LLM/llms"
	"github.com/HuaTug/LLM/messages"
	"github.com/HuaTug/LLM/metrics"
	"github.com/spf13/cobra"
)

const (
	ragTemperature = 0.1
	contextCommand = "context "
	contextPreview = 200
)

// ragREPL answers questions from the latest messages.
type ragREPL struct {
	kb         *chains.KnowledgeBase
	hoursBack  int
	categories messages.CategorySet
}

func (r *ragREPL) update(ctx context.Context, out io.Writer) error {
	fmt.Fprintf(out, "Fetching messages from the last %d hours...\n", r.hoursBack)
	stats, err := r.kb.Update(ctx, r.hoursBack, r.categories)
	if err != nil {
		return err
	}
	if stats.Messages == 0 {
		fmt.Fprintln(out, "No recent messages found")
		return nil
	}
	metrics.SetKnowledgeBaseChunks(stats.Chunks)
	fmt.Fprintf(out, "Found %d messages, indexed %d chunks\n", stats.Messages, stats.Chunks)
	fmt.Fprintln(out, "Knowledge base updated!")
	return nil
}

func (r *ragREPL) printContext(ctx context.Context, out io.Writer, question string) error {
	docs, err := r.kb.Context(ctx, question)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nFound %d relevant documents:\n", len(docs))
	for i, doc := range docs {
		fmt.Fprintf(out, "\nDocument %d:\n", i+1)
		fmt.Fprintf(out, "Content: %s\n", truncate(doc.PageContent, contextPreview))
		fmt.Fprintf(out, "Metadata: %v\n", doc.Metadata)
	}
	return nil
}

func (r *ragREPL) run(ctx context.Context, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "🤖 Latest messages RAG demo")
	fmt.Fprintln(out, "Question answering over the latest messages")
	fmt.Fprintln(out, strings.Repeat("-", 50))

	fmt.Fprintln(out, "Initializing knowledge base...")
	if err := r.update(ctx, out); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nAsk away!")
	fmt.Fprintln(out, "Type 'quit', 'exit' or 'bye' to leave")
	fmt.Fprintln(out, "Type 'update' to refresh the knowledge base")
	fmt.Fprintln(out, "Type 'context <question>' to see the retrieved documents")
	fmt.Fprintln(out, strings.Repeat("-", 50))

	p := newPrompter(ctx, in, out)
	for {
		input, ok := p.next(ctx, "\nYou: ")
		if !ok {
			fmt.Fprintln(out, "\n\nAI: Goodbye!")
			return nil
		}
		if isExitWord(input) {
			fmt.Fprintln(out, "AI: Goodbye!")
			return nil
		}
		if input == "" {
			continue
		}

		lower := strings.ToLower(input)
		var err error
		switch {
		case lower == "update":
			err = r.update(ctx, out)
		case strings.HasPrefix(lower, contextCommand):
			err = r.printContext(ctx, out, input[len(contextCommand):])
		default:
			var result chains.Result
			result, err = r.kb.Ask(ctx, input)
			if errors.Is(err, chains.ErrKnowledgeBaseEmpty) {
				fmt.Fprintln(out, "\nAI: The knowledge base is empty, type 'update' first.")
				continue
			}
			if err == nil {
				fmt.Fprintf(out, "\nAI: %s\n", result.Answer)
			}
		}
		if err != nil {
			fmt.Fprintf(out, "\nError: %v\n", err)
		}
	}
}

func ragCmd(a *app) *cobra.Command {
	var hoursBack int
	var categories []string
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "rag",
		Short: "Ask questions about the latest messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("hours-back") {
				a.cfg.RAG.HoursBack = hoursBack
			}
			if err := a.validate(); err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			_, stopMetrics, err := a.serveMetrics(metricsAddr)
			if err != nil {
				return err
			}
			defer stopMetrics()

			rag := a.cfg.RAG
			splitter, err := documents.NewRecursiveCharacterSplitter(rag.ChunkSize, rag.ChunkOverlap)
			if err != nil {
				return err
			}
			store, closeStore, err := a.newStore(ctx, llms.NewEmbedder(a.cfg.EmbeddingModel()))
			if err != nil {
				return err
			}
			defer closeStore()

			llm := llms.WithTemperature(a.chatModel(), ragTemperature)
			retriever := messages.NewDemoRetriever(messages.WithLogger(a.log))
			repl := &ragREPL{
				kb:         chains.NewKnowledgeBase(retriever, splitter, store, llm, rag.TopK, a.log),
				hoursBack:  rag.HoursBack,
				categories: categoryFlag(cmd, categories),
			}
			return repl.run(ctx, a.in, a.out)
		},
	}

	cmd.Flags().IntVar(&hoursBack, "hours-back", messages.DefaultHoursBack, "look-back window in hours")
	cmd.Flags().StringSliceVar(&categories, "categories", nil, "only index these categories (technology, business, product, finance, feedback)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", metricsAddrUsage)
	return cmd
}
