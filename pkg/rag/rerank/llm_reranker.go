package rerank

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ai-docchat-be/pkg/llm"
	"ai-docchat-be/pkg/store"
)

// LLMReranker asks a vision-capable model to pick the best candidates.
type LLMReranker struct {
	llmProvider   llm.LLMProvider
	logger        *log.Logger
	maxCandidates int
	maxTokens     int
	includeImages bool
}

var _ Reranker = &LLMReranker{}

// NewLLMReranker creates a reranker that evaluates at most maxCandidates.
func NewLLMReranker(llmProvider llm.LLMProvider, maxCandidates int, includeImages bool, logger *log.Logger) *LLMReranker {
	if maxCandidates <= 0 {
		maxCandidates = 10
	}
	return &LLMReranker{
		llmProvider:   llmProvider,
		logger:        logger,
		maxCandidates: maxCandidates,
		maxTokens:     512,
		includeImages: includeImages,
	}
}

func (r *LLMReranker) Rerank(ctx context.Context, query string, candidates []store.Candidate, maxSelected int) Decision {
	if len(candidates) == 0 {
		return Decision{
			Justification: "No candidates available",
			Indices:       []int{},
			Model:         "llm",
		}
	}

	// Cap candidates to keep the prompt within budget
	if len(candidates) > r.maxCandidates {
		candidates = candidates[:r.maxCandidates]
	}

	r.logger.Printf("[DEBUG] Reranking %d candidates for query: '%s'", len(candidates), query)

	if len(candidates) == 1 {
		return Decision{
			Selected: candidates[:1],
			Justification: fmt.Sprintf("Only candidate available: %s, page %d",
				candidates[0].DocumentName, candidates[0].PageNumber),
			Indices:         []int{0},
			TotalCandidates: 1,
			Model:           "llm",
		}
	}

	message := r.buildPrompt(query, candidates, maxSelected)

	responseText, err := r.llmProvider.Chat(ctx, []llm.Message{message},
		llm.WithTemperature(0.1),
		llm.WithMaxTokens(r.maxTokens),
	)
	if err != nil {
		r.logger.Printf("[WARN] Rerank LLM call failed, using order fallback: %v", err)
		return orderFallback(candidates, maxSelected, fmt.Sprintf("Fallback due to error: %v", err))
	}

	r.logger.Printf("[DEBUG] Rerank response: %s", responseText)

	indices, justification := parseResponse(responseText, len(candidates))
	if len(indices) > maxSelected {
		indices = indices[:maxSelected]
	}

	selected := make([]store.Candidate, len(indices))
	for i, idx := range indices {
		selected[i] = candidates[idx]
	}

	return Decision{
		Selected:        selected,
		Justification:   justification,
		Indices:         indices,
		TotalCandidates: len(candidates),
		Model:           "llm",
	}
}

// buildPrompt renders the candidate list as one multimodal user message.
// Image order matches the textual attachment markers.
func (r *LLMReranker) buildPrompt(query string, candidates []store.Candidate, maxSelected int) llm.Message {
	var pages []string
	for _, c := range candidates {
		pages = append(pages, fmt.Sprintf("%s (p.%d)", c.DocumentName, c.PageNumber))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Question: '%s'\n", query))
	sb.WriteString(fmt.Sprintf("Candidates (%d): %s\n\n", len(candidates), strings.Join(pages, ", ")))
	sb.WriteString(fmt.Sprintf("Select the %d most relevant documents to answer the question.\n", maxSelected))
	sb.WriteString(fmt.Sprintf("At most %d documents.\n\n", maxSelected))
	sb.WriteString("Response format:\n")
	sb.WriteString("SelectedIndices: [n] or [n1, n2]\n")
	sb.WriteString("Justification: [explain why these documents are the most relevant]\n\n")
	sb.WriteString("CANDIDATES:")

	var images [][]byte
	for i, c := range candidates {
		preview := c.Content
		ellipsis := ""
		if len(preview) > 300 {
			preview = preview[:300]
			ellipsis = "..."
		}

		sb.WriteString(fmt.Sprintf("\n=== CANDIDATE %d: %s - PAGE %d ===\n",
			i+1, strings.ToUpper(c.DocumentName), c.PageNumber))
		sb.WriteString(fmt.Sprintf("Similarity: %.4f\n", c.Similarity))
		sb.WriteString(fmt.Sprintf("Content: %s%s\n", preview, ellipsis))

		if r.includeImages && len(c.ImageData) > 0 {
			sb.WriteString(fmt.Sprintf("[Image for candidate %d attached]\n", i+1))
			images = append(images, c.ImageData)
		}
	}

	return llm.Message{Role: "user", Content: sb.String(), Images: images}
}

func orderFallback(candidates []store.Candidate, maxSelected int, justification string) Decision {
	n := maxSelected
	if n > len(candidates) {
		n = len(candidates)
	}
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return Decision{
		Selected:        candidates[:n],
		Justification:   justification,
		Indices:         indices,
		TotalCandidates: len(candidates),
		Model:           "llm",
	}
}
