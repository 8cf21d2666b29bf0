package documents

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Default chunking parameters for message documents.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// DefaultSeparators are tried in order, from paragraphs down to single characters.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// RecursiveCharacterSplitter splits text into chunks of at most ChunkSize
// characters. It splits on the first separator present in the text and
// recurses with the remaining separators for pieces that are still too long.
// Consecutive chunks share up to ChunkOverlap characters.
//
// Lengths are measured in runes.
type RecursiveCharacterSplitter struct {
	ChunkSize     int
	ChunkOverlap  int
	Separators    []string
	AddStartIndex bool
}

// NewRecursiveCharacterSplitter returns a splitter with the default separators.
//
// Example:
//
//	splitter, err := documents.NewRecursiveCharacterSplitter(1000, 200)
//	chunks := splitter.SplitDocuments(docs)
func NewRecursiveCharacterSplitter(chunkSize, chunkOverlap int) (*RecursiveCharacterSplitter, error) {
	s := &RecursiveCharacterSplitter{
		ChunkSize:     chunkSize,
		ChunkOverlap:  chunkOverlap,
		Separators:    DefaultSeparators,
		AddStartIndex: true,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the chunk parameters.
func (s *RecursiveCharacterSplitter) Validate() error {
	if s.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", s.ChunkSize)
	}
	if s.ChunkOverlap < 0 {
		return fmt.Errorf("chunk overlap must not be negative, got %d", s.ChunkOverlap)
	}
	if s.ChunkOverlap >= s.ChunkSize {
		return fmt.Errorf("chunk overlap (%d) must be smaller than chunk size (%d)", s.ChunkOverlap, s.ChunkSize)
	}
	return nil
}

// SplitText splits a single text into chunks.
func (s *RecursiveCharacterSplitter) SplitText(text string) []string {
	separators := s.Separators
	if len(separators) == 0 {
		separators = DefaultSeparators
	}
	return s.splitText(text, separators)
}

// SplitDocuments splits every document and copies its metadata onto each chunk.
// When AddStartIndex is set, chunks carry a "start_index" metadata entry with
// the rune offset of the chunk in the original page content (-1 if not found).
func (s *RecursiveCharacterSplitter) SplitDocuments(docs []Document) []Document {
	var out []Document
	for _, doc := range docs {
		searchFrom := 0
		for _, chunk := range s.SplitText(doc.PageContent) {
			meta := copyMetadata(doc.Metadata)
			if s.AddStartIndex {
				idx := -1
				if searchFrom <= len(doc.PageContent) {
					if pos := strings.Index(doc.PageContent[searchFrom:], chunk); pos >= 0 {
						byteIdx := searchFrom + pos
						idx = utf8.RuneCountInString(doc.PageContent[:byteIdx])
						_, size := utf8.DecodeRuneInString(doc.PageContent[byteIdx:])
						searchFrom = byteIdx + size
					}
				}
				meta["start_index"] = idx
			}
			out = append(out, Document{PageContent: chunk, Metadata: meta})
		}
	}
	return out
}

func (s *RecursiveCharacterSplitter) splitText(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var rest []string
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			separator = sep
			rest = separators[i+1:]
			break
		}
	}

	var splits []string
	for _, piece := range splitOn(text, separator) {
		if piece != "" {
			splits = append(splits, piece)
		}
	}

	var final, good []string
	for _, piece := range splits {
		if runeLen(piece) < s.ChunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			final = append(final, s.mergeSplits(good, separator)...)
			good = nil
		}
		if len(rest) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, s.splitText(piece, rest)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.mergeSplits(good, separator)...)
	}
	return final
}

// mergeSplits joins small pieces back into chunks no longer than ChunkSize,
// carrying the tail of each chunk into the next one as overlap.
func (s *RecursiveCharacterSplitter) mergeSplits(splits []string, separator string) []string {
	sepLen := runeLen(separator)

	var docs, current []string
	total := 0
	for _, piece := range splits {
		n := runeLen(piece)
		if total+n+joinCost(len(current), sepLen) > s.ChunkSize {
			if len(current) > 0 {
				if doc := strings.TrimSpace(strings.Join(current, separator)); doc != "" {
					docs = append(docs, doc)
				}
				for total > s.ChunkOverlap ||
					(total+n+joinCost(len(current), sepLen) > s.ChunkSize && total > 0) {
					total -= runeLen(current[0]) + joinCost(len(current)-1, sepLen)
					current = current[1:]
				}
			}
		}
		current = append(current, piece)
		total += n + joinCost(len(current)-1, sepLen)
	}
	if doc := strings.TrimSpace(strings.Join(current, separator)); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}

// joinCost is the separator length added when a piece joins count existing pieces.
func joinCost(count, sepLen int) int {
	if count > 0 {
		return sepLen
	}
	return 0
}

func splitOn(text, separator string) []string {
	if separator == "" {
		out := make([]string, 0, utf8.RuneCountInString(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}
	return strings.Split(text, separator)
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
