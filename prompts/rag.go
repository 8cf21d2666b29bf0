package prompts

// RAGTemplate answers a question from retrieved {context}.
var RAGTemplate = MustParse(`You are an intelligent assistant that answers questions based on the latest information.

Answer the user's question using the context below:

Context:
{context}

Question: {input}

Please note:
1. Base your answer mainly on the provided context
2. If the context has no relevant information, say so clearly
3. Keep the answer accurate, concise and useful
4. If possible, mention when and where the information came from

Answer:
`)

// SummaryTemplate progressively folds new conversation lines into a summary.
var SummaryTemplate = MustParse(`Progressively summarize the lines of conversation provided, adding onto the previous summary returning a new summary.

EXAMPLE
Current summary:
The human asks what the AI thinks of artificial intelligence. The AI thinks artificial intelligence is a force for good.

New lines of conversation:
Human: Why do you think artificial intelligence is a force for good?
AI: Because artificial intelligence will help humans reach their full potential.

New summary:
The human asks what the AI thinks of artificial intelligence. The AI thinks artificial intelligence is a force for good because it will help humans reach their full potential.
END OF EXAMPLE

Current summary:
{summary}

New lines of conversation:
{new_lines}

New summary:`)
