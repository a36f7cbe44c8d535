package transform

import (
	"context"
	"log"
	"strings"

	"ai-docchat-be/pkg/llm"
)

// NotApplicable is the sentinel for conversational messages that need
// no retrieval at all (greetings, thanks).
const NotApplicable = "Not applicable"

// DocumentPrefix is prepended to general questions to anchor them to
// the indexed documents before embedding.
const DocumentPrefix = "About the document: "

// TransformedQuery is the classifier's verdict for one user message.
type TransformedQuery struct {
	Original       string
	Transformed    string
	NeedsRetrieval bool
}

// Transformer rewrites conversational messages into search queries.
// The deterministic lexicon path handles the common cases without any
// model call; the LLM only sees messages the lexicons cannot place.
type Transformer struct {
	llmProvider llm.LLMProvider
	cache       *fifoCache
	logger      *log.Logger
}

// NewTransformer creates a transformer with a bounded transformation cache.
func NewTransformer(llmProvider llm.LLMProvider, cacheSize int, logger *log.Logger) *Transformer {
	return &Transformer{
		llmProvider: llmProvider,
		cache:       newFifoCache(cacheSize),
		logger:      logger,
	}
}

// Transform classifies the latest user message against the full chat
// history. It is total: every failure path degrades to a usable query.
func (t *Transformer) Transform(ctx context.Context, history []llm.Message) TransformedQuery {
	lastMessage := lastUserMessage(history)
	if lastMessage == "" {
		t.logger.Printf("[DEBUG] No user message in history, skipping retrieval")
		return result(lastMessage, NotApplicable)
	}

	cacheKey := t.cacheKey(lastMessage, history)
	if cached, ok := t.cache.Get(cacheKey); ok {
		t.logger.Printf("[DEBUG] Transform cache hit: '%s'", truncate(cached, 50))
		return result(lastMessage, cached)
	}

	if transformed, ok := t.classify(lastMessage, history); ok {
		t.cache.Put(cacheKey, transformed)
		t.logger.Printf("[DEBUG] Deterministic classification: '%s'", truncate(transformed, 50))
		return result(lastMessage, transformed)
	}

	transformed := t.llmTransform(ctx, lastMessage, history)
	t.cache.Put(cacheKey, transformed)
	return result(lastMessage, transformed)
}

// NeedsRetrieval reports whether a transformed query should hit the index.
func (t *Transformer) NeedsRetrieval(transformed string) bool {
	return !strings.Contains(strings.ToLower(transformed), "not applicable")
}

// CacheSize exposes the current cache population for the stats endpoint.
func (t *Transformer) CacheSize() int {
	return t.cache.Len()
}

// classify runs the lexicon rules. The second return is false when the
// message needs the LLM.
func (t *Transformer) classify(message string, history []llm.Message) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(message))
	wordCount := len(strings.Fields(normalized))

	// Short greetings and thanks never need retrieval
	if wordCount <= 2 && containsAny(normalized, greetingTerms) {
		return NotApplicable, true
	}
	if wordCount <= 3 && containsAny(normalized, thanksTerms) {
		return NotApplicable, true
	}

	// Direct mentions of document vocabulary pass through untouched
	if containsAny(normalized, documentTerms) {
		return message, true
	}

	// General questions get anchored to the document corpus
	if containsAny(normalized, inquiryKeywords) || strings.Contains(normalized, "?") {
		return DocumentPrefix + message, true
	}

	// Pronouns are only meaningful when the assistant was just talking
	// about a document
	if containsAny(normalized, contextualPronouns) && hasDocumentContext(history) {
		return DocumentPrefix + message, true
	}

	return "", false
}

func (t *Transformer) llmTransform(ctx context.Context, message string, history []llm.Message) string {
	prompt := buildTransformPrompt(message, history)

	response, err := t.llmProvider.Generate(ctx, prompt,
		llm.WithTemperature(0.3),
		llm.WithMaxTokens(150),
	)
	if err != nil {
		t.logger.Printf("[WARN] LLM transform failed, using fallback: %v", err)
		return t.safeFallback(message)
	}

	transformed := cleanLLMOutput(response)
	if transformed == "" {
		return t.safeFallback(message)
	}

	t.logger.Printf("[DEBUG] LLM transform: '%s' -> '%s'", truncate(message, 50), truncate(transformed, 50))
	return transformed
}

func buildTransformPrompt(message string, history []llm.Message) string {
	var sb strings.Builder
	sb.WriteString("Turn the message into a specific question about academic documents.\n\n")
	sb.WriteString("RULES:\n")
	sb.WriteString("1. If it mentions specific technical terms, keep it as is\n")
	sb.WriteString("2. If it is a general question, add \"About the document:\"\n")
	sb.WriteString("3. If it references the previous conversation, combine the contexts\n")
	sb.WriteString("4. Be concise and direct\n\n")
	sb.WriteString("RECENT CONTEXT:\n")
	sb.WriteString(buildMinimalContext(history))
	sb.WriteString("\n\nMESSAGE: ")
	sb.WriteString(message)
	sb.WriteString("\n\nANSWER WITH THE TRANSFORMED QUESTION ONLY:")
	return sb.String()
}

// buildMinimalContext keeps the prompt cheap: last 4 turns, 100 chars each.
func buildMinimalContext(history []llm.Message) string {
	recent := history
	if len(recent) > 4 {
		recent = recent[len(recent)-4:]
	}

	var parts []string
	for _, msg := range recent {
		if msg.Role != "user" && msg.Role != "assistant" {
			continue
		}
		label := "User"
		if msg.Role == "assistant" {
			label = "Assistant"
		}
		parts = append(parts, label+": "+truncate(msg.Content, 100))
	}
	return strings.Join(parts, "\n")
}

func cleanLLMOutput(output string) string {
	cleaned := strings.TrimSpace(output)
	for _, prefix := range []string{"rag query:", "query:", "question:"} {
		if strings.HasPrefix(strings.ToLower(cleaned), prefix) {
			cleaned = strings.TrimSpace(cleaned[len(prefix):])
		}
	}
	return strings.Trim(cleaned, `"'`)
}

// safeFallback never returns the sentinel: when in doubt we search.
func (t *Transformer) safeFallback(message string) string {
	if containsAny(strings.ToLower(message), documentTerms) {
		return message
	}
	return DocumentPrefix + message
}

// cacheKey folds in whether recent turns touched document vocabulary,
// so the same words classify differently with and without context.
func (t *Transformer) cacheKey(message string, history []llm.Message) string {
	docContext := ""
	recent := history
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}
	for _, msg := range recent {
		if containsAny(strings.ToLower(msg.Content), documentTerms) {
			docContext = "doc_context"
			break
		}
	}
	return truncate(strings.ToLower(message), 50) + "||" + docContext
}

// hasDocumentContext checks the last 6 turns for assistant replies that
// were grounded in a document.
func hasDocumentContext(history []llm.Message) bool {
	recent := history
	if len(recent) > 6 {
		recent = recent[len(recent)-6:]
	}
	for _, msg := range recent {
		if msg.Role != "assistant" {
			continue
		}
		if containsAny(strings.ToLower(msg.Content), assistantDocTerms) {
			return true
		}
	}
	return false
}

func lastUserMessage(history []llm.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == "user" {
			return history[i].Content
		}
	}
	return ""
}

func result(original, transformed string) TransformedQuery {
	tq := TransformedQuery{
		Original:    original,
		Transformed: strings.TrimSpace(transformed),
	}
	tq.NeedsRetrieval = !strings.Contains(strings.ToLower(tq.Transformed), "not applicable")
	return tq
}

// truncate cuts on runes so multi-byte input never splits mid-character.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
