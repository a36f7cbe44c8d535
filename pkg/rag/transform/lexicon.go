package transform

import "strings"

// Static lexicons backing the deterministic classifier. Matching is
// case-insensitive substring over the normalized message.

var greetingTerms = []string{
	"hello", "hi", "hey", "howdy", "yo",
	"good morning", "good afternoon", "good evening", "greetings",
}

var thanksTerms = []string{
	"thanks", "thank you", "thx", "ty", "cheers", "much appreciated",
}

var documentTerms = []string{
	"zep", "graphiti", "rag", "temporal", "knowledge graph",
	"graph", "architecture", "paper", "document", "article",
	"table", "figure", "performance", "result", "methodology",
	"algorithm", "invalidation", "memory", "embedding", "vector",
	"similarity", "retrieval", "benchmark", "latency",
}

var inquiryKeywords = []string{
	"explain", "how", "what", "which", "where", "when", "why",
	"tell me", "describe", "show", "summarize", "compare",
	"want to know", "need to understand", "can you", "could you",
}

var contextualPronouns = []string{
	"this", "that", "these", "those", "it", "they", "them",
}

var assistantDocTerms = []string{
	"document", "page", "paper", "article", "section", "figure", "table",
}

func containsAny(message string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(message, term) {
			return true
		}
	}
	return false
}
