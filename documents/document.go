package documents

import (
	"fmt"
	"time"

	"github.com/HuaTug/LLM/messages"
)

// Document is a piece of text plus metadata that can be embedded and retrieved.
type Document struct {
	PageContent string         `json:"page_content"`
	Metadata    map[string]any `json:"metadata"`
}

// FromMessages converts aggregated messages into documents, one per message.
// The title and content form the page text; the remaining fields become metadata.
func FromMessages(msgs []messages.Message) []Document {
	docs := make([]Document, 0, len(msgs))
	for _, msg := range msgs {
		docs = append(docs, Document{
			PageContent: fmt.Sprintf("Title: %s\nContent: %s", msg.Title, msg.Content),
			Metadata: map[string]any{
				"title":     msg.Title,
				"timestamp": msg.Timestamp.Format(time.RFC3339),
				"source":    msg.Source,
				"category":  string(msg.Category),
			},
		})
	}
	return docs
}

func copyMetadata(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src)+1)
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
