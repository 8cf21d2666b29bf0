package documents

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/HuaTug/LLM/messages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTextWithOverlap(t *testing.T) {
	s := &RecursiveCharacterSplitter{ChunkSize: 10, ChunkOverlap: 3, Separators: []string{" "}}

	got := s.SplitText("aaa bbb ccc ddd")
	assert.Equal(t, []string{"aaa bbb", "bbb ccc", "ccc ddd"}, got)
}

func TestSplitTextShortInputIsOneChunk(t *testing.T) {
	s, err := NewRecursiveCharacterSplitter(DefaultChunkSize, DefaultChunkOverlap)
	require.NoError(t, err)

	got := s.SplitText("Title: hello\nContent: world")
	assert.Equal(t, []string{"Title: hello\nContent: world"}, got)
}

func TestSplitTextRespectsChunkSize(t *testing.T) {
	s, err := NewRecursiveCharacterSplitter(50, 10)
	require.NoError(t, err)

	paragraph := strings.Repeat("word ", 40)
	text := paragraph + "\n\n" + paragraph + "\n" + strings.Repeat("x", 120)

	chunks := s.SplitText(text)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 50, c)
		assert.NotEmpty(t, c)
	}
}

func TestSplitTextMultibyte(t *testing.T) {
	s := &RecursiveCharacterSplitter{ChunkSize: 4, ChunkOverlap: 0, Separators: []string{""}}

	got := s.SplitText("人工智能技术突破")
	assert.Equal(t, []string{"人工智能", "技术突破"}, got)
}

func TestSplitDocumentsStartIndex(t *testing.T) {
	s := &RecursiveCharacterSplitter{ChunkSize: 10, ChunkOverlap: 3, Separators: []string{" "}, AddStartIndex: true}
	docs := []Document{{PageContent: "aaa bbb ccc ddd", Metadata: map[string]any{"source": "x"}}}

	chunks := s.SplitDocuments(docs)
	require.Len(t, chunks, 3)

	wantStarts := []int{0, 4, 8}
	for i, c := range chunks {
		assert.Equal(t, wantStarts[i], c.Metadata["start_index"])
		assert.Equal(t, "x", c.Metadata["source"])
	}
	_, leaked := docs[0].Metadata["start_index"]
	assert.False(t, leaked, "source metadata must not be modified")
}

func TestValidate(t *testing.T) {
	_, err := NewRecursiveCharacterSplitter(100, 100)
	assert.Error(t, err)
	_, err = NewRecursiveCharacterSplitter(0, 0)
	assert.Error(t, err)
	_, err = NewRecursiveCharacterSplitter(100, -1)
	assert.Error(t, err)
}

func TestFromMessages(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	docs := FromMessages([]messages.Message{{
		Title:     "Stock market update",
		Content:   "Tech stocks rose 2.5% today.",
		Timestamp: ts,
		Source:    "market_feed",
		Category:  messages.CategoryFinance,
	}})

	require.Len(t, docs, 1)
	assert.Equal(t, "Title: Stock market update\nContent: Tech stocks rose 2.5% today.", docs[0].PageContent)
	assert.Equal(t, map[string]any{
		"title":     "Stock market update",
		"timestamp": "2024-01-02T03:04:05Z",
		"source":    "market_feed",
		"category":  "finance",
	}, docs[0].Metadata)
}
