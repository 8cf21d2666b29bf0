package messages

import "time"

// Category is a topic tag attached to every message.
type Category string

const (
	CategoryTechnology Category = "technology"
	CategoryBusiness   Category = "business"
	CategoryProduct    Category = "product"
	CategoryFinance    Category = "finance"
	CategoryFeedback   Category = "feedback"
)

// Message is a short text record produced by a source.
// Messages are values; a source builds a fresh set on every call.
type Message struct {
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Category  Category  `json:"category"`
}

// Producer returns the current messages of one source.
type Producer func() ([]Message, error)

// CategorySet is an allow-list of categories. A nil set disables category filtering.
type CategorySet map[Category]struct{}

// NewCategorySet builds a CategorySet from the given tags.
// Calling it with no tags returns an empty, non-nil set, which matches nothing.
func NewCategorySet(categories ...Category) CategorySet {
	set := make(CategorySet, len(categories))
	for _, c := range categories {
		set[c] = struct{}{}
	}
	return set
}

// CategorySetOf converts plain strings into a non-nil CategorySet.
// An empty input matches nothing.
func CategorySetOf(values []string) CategorySet {
	set := make(CategorySet, len(values))
	for _, v := range values {
		set[Category(v)] = struct{}{}
	}
	return set
}

// Contains reports whether c passes the filter. A nil set allows every category.
func (s CategorySet) Contains(c Category) bool {
	if s == nil {
		return true
	}
	_, ok := s[c]
	return ok
}
