package verify

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ai-docchat-be/pkg/llm"
	"ai-docchat-be/pkg/store"
)

// Verifier gates answer generation: it asks a cheap model whether the
// selected chunks actually contain the facts the question needs.
type Verifier struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewVerifier(llmProvider llm.LLMProvider, logger *log.Logger) *Verifier {
	return &Verifier{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Verify returns false only on an explicit negative verdict. A failed
// or unreadable model call lets the answer stage proceed, since a
// wrong "yes" costs less than silently dropping a good answer.
func (v *Verifier) Verify(ctx context.Context, query string, selected []store.Candidate) bool {
	if len(selected) == 0 {
		return false
	}

	prompt := buildVerifyPrompt(query, selected)

	response, err := v.llmProvider.Generate(ctx, prompt,
		llm.WithTemperature(0.0),
		llm.WithMaxTokens(5),
	)
	if err != nil {
		v.logger.Printf("[WARN] Relevance verification failed, assuming relevant: %v", err)
		return true
	}

	v.logger.Printf("[DEBUG] Relevance verdict: '%s'", strings.TrimSpace(response))
	return strings.Contains(strings.ToLower(response), "yes")
}

func buildVerifyPrompt(query string, selected []store.Candidate) string {
	var contextParts []string
	for _, doc := range selected {
		contextParts = append(contextParts, fmt.Sprintf("=== PAGE %d ===\n%s", doc.PageNumber, doc.Content))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Analyze the content to answer: \"%s\"\n\n", query))
	sb.WriteString("Content:\n---\n")
	sb.WriteString(strings.Join(contextParts, "\n\n"))
	sb.WriteString("\n---\n\n")
	sb.WriteString("Does the content contain factual information to answer the question? ")
	sb.WriteString("Answer only 'Yes' or 'No'.")
	return sb.String()
}
