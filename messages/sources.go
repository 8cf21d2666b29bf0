package messages

import "time"

// Simulated feeds used by the RAG demo. In a real deployment these would be
// news APIs, database queries or message streams.

// NewDemoRetriever returns a Retriever preloaded with the demo sources:
// news, company_updates, market_data and user_messages.
func NewDemoRetriever(opts ...Option) *Retriever {
	r := NewRetriever(opts...)
	clock := r.now

	demo := map[string]func(time.Time) []Message{
		"news":            latestNews,
		"company_updates": companyUpdates,
		"market_data":     marketData,
		"user_messages":   userMessages,
	}
	for name, build := range demo {
		build := build
		// names are distinct literals, registration cannot fail
		_ = r.RegisterSource(name, func() ([]Message, error) {
			return build(clock()), nil
		})
	}
	return r
}

func latestNews(now time.Time) []Message {
	return []Message{
		{
			Title:     "AI technology breakthrough",
			Content:   "The latest AI models set new records on several benchmarks, showing strong reasoning ability.",
			Timestamp: now.Add(-2 * time.Hour),
			Source:    "tech_news",
			Category:  CategoryTechnology,
		},
		{
			Title:     "Cloud computing market growth",
			Content:   "The cloud computing market is expected to grow 25% in 2024, driven mainly by AI and data analytics demand.",
			Timestamp: now.Add(-1 * time.Hour),
			Source:    "business_news",
			Category:  CategoryBusiness,
		},
	}
}

func companyUpdates(now time.Time) []Message {
	return []Message{
		{
			Title:     "New product launch",
			Content:   "Next month the company will launch an AI-based customer service platform, expected to raise efficiency by 30%.",
			Timestamp: now.Add(-3 * time.Hour),
			Source:    "internal",
			Category:  CategoryProduct,
		},
	}
}

func marketData(now time.Time) []Message {
	return []Message{
		{
			Title:     "Stock market update",
			Content:   "Tech stocks rose 2.5% today, with AI companies leading. Investors remain optimistic about new technology.",
			Timestamp: now.Add(-30 * time.Minute),
			Source:    "market_feed",
			Category:  CategoryFinance,
		},
	}
}

func userMessages(now time.Time) []Message {
	return []Message{
		{
			Title:     "User feedback",
			Content:   "Users say the new interface is friendlier but would like more customization options.",
			Timestamp: now.Add(-4 * time.Hour),
			Source:    "user_feedback",
			Category:  CategoryFeedback,
		},
	}
}
