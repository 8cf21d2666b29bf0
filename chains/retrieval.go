package chains

import (
	"context"
	"fmt"
	"strings"

	"github.com/HuaTug/LLM/documents"
	"github.com/HuaTug/LLM/llms"
	"github.com/HuaTug/LLM/prompts"
	openai "github.com/sashabaranov/go-openai"
)

// DocumentRetriever returns documents relevant to a query.
// *vectorstore.Retriever satisfies it.
type DocumentRetriever interface {
	Invoke(ctx context.Context, query string) ([]documents.Document, error)
}

// Result is the outcome of a retrieval chain run.
type Result struct {
	Input   string
	Context []documents.Document
	Answer  string
}

// RetrievalChain stuffs retrieved documents into a prompt's {context}
// and asks the LLM to answer {input}.
type RetrievalChain struct {
	Retriever DocumentRetriever
	LLM       llms.LLM
	Prompt    prompts.Template
}

// NewRetrievalChain creates a chain using prompts.RAGTemplate.
func NewRetrievalChain(retriever DocumentRetriever, llm llms.LLM) *RetrievalChain {
	return &RetrievalChain{
		Retriever: retriever,
		LLM:       llm,
		Prompt:    prompts.RAGTemplate,
	}
}

// Invoke retrieves context for input and answers from it.
func (c *RetrievalChain) Invoke(ctx context.Context, input string) (Result, error) {
	docs, err := c.Retriever.Invoke(ctx, input)
	if err != nil {
		return Result{}, fmt.Errorf("failed to retrieve documents: %w", err)
	}

	prompt, err := c.Prompt.Format(map[string]string{
		"context": StuffDocuments(docs),
		"input":   input,
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to format prompt: %w", err)
	}

	resp, err := c.LLM.Chat(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to get LLM response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, fmt.Errorf("no response from LLM")
	}

	return Result{
		Input:   input,
		Context: docs,
		Answer:  strings.TrimSpace(llms.Content(resp)),
	}, nil
}

// StuffDocuments joins page contents with blank lines.
func StuffDocuments(docs []documents.Document) string {
	parts := make([]string, len(docs))
	for i, d := range docs {
		parts[i] = d.PageContent
	}
	return strings.Join(parts, "\n\n")
}
