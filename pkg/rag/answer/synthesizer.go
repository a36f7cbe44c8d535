package answer

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ai-docchat-be/pkg/llm"
	"ai-docchat-be/pkg/store"
)

const noMarkdown = "Do NOT use Markdown formatting such as **, _, #. Write natural flowing text."

const baseInstructions = "You are an assistant specialized in analyzing academic and technical documents. " +
	"Analyze the provided documents and answer the question clearly and precisely. " +
	"Always cite the specific sources (document and page). " +
	noMarkdown + " " +
	"Use the context of the previous conversation to give more coherent answers."

// Synthesizer turns the selected chunks into the final answer.
type Synthesizer struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
	maxTokens   int
}

func NewSynthesizer(llmProvider llm.LLMProvider, logger *log.Logger) *Synthesizer {
	return &Synthesizer{
		llmProvider: llmProvider,
		logger:      logger,
		maxTokens:   2048,
	}
}

// Synthesize generates the answer from the selected candidates. It is
// total: a failed model call yields a degraded answer that still names
// the documents the search found.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, selected []store.Candidate, conversationContext string) string {
	var message llm.Message
	if len(selected) == 1 {
		message = s.buildSingleDocPrompt(query, selected[0], conversationContext)
	} else {
		message = s.buildMultiDocPrompt(query, selected, conversationContext)
	}

	response, err := s.llmProvider.Chat(ctx, []llm.Message{message},
		llm.WithTemperature(0.7),
		llm.WithMaxTokens(s.maxTokens),
	)
	if err != nil {
		s.logger.Printf("[ERROR] Answer generation failed: %v", err)
		return degradedAnswer(selected)
	}

	return strings.TrimSpace(response)
}

func (s *Synthesizer) buildSingleDocPrompt(query string, doc store.Candidate, conversationContext string) llm.Message {
	var sb strings.Builder
	sb.WriteString(baseInstructions)
	sb.WriteString("\n\n")
	sb.WriteString(conversationContext)
	sb.WriteString(fmt.Sprintf("CURRENT QUESTION: %s\n\n", query))
	sb.WriteString(fmt.Sprintf("Use ONLY the document '%s', page %d.\n", doc.DocumentName, doc.PageNumber))
	sb.WriteString(fmt.Sprintf("Content:\n%s\n\n", doc.Content))
	sb.WriteString("Instructions: answer clearly and directly, taking the conversation context into account. ")
	sb.WriteString(fmt.Sprintf("Cite the source: document '%s', page %d.", doc.DocumentName, doc.PageNumber))

	message := llm.Message{Role: "user", Content: sb.String()}
	if len(doc.ImageData) > 0 {
		message.Images = [][]byte{doc.ImageData}
	}
	return message
}

func (s *Synthesizer) buildMultiDocPrompt(query string, selected []store.Candidate, conversationContext string) llm.Message {
	var sources []string
	var contentParts []string
	for _, doc := range selected {
		sources = append(sources, fmt.Sprintf("%s p.%d", doc.DocumentName, doc.PageNumber))
		contentParts = append(contentParts,
			fmt.Sprintf("=== %s - PAGE %d ===\n%s", doc.DocumentName, doc.PageNumber, doc.Content))
	}

	var sb strings.Builder
	sb.WriteString(baseInstructions)
	sb.WriteString("\n\n")
	sb.WriteString(conversationContext)
	sb.WriteString(fmt.Sprintf("CURRENT QUESTION: %s\n\n", query))
	sb.WriteString(fmt.Sprintf("Use the documents: %s\n\n", strings.Join(sources, " and ")))
	sb.WriteString(fmt.Sprintf("Content:\n%s\n\n", strings.Join(contentParts, "\n\n")))
	sb.WriteString("Instructions: integrate the information from the documents, taking the conversation context into account, and cite every source used.")

	var images [][]byte
	for _, doc := range selected {
		if len(doc.ImageData) > 0 {
			sb.WriteString(fmt.Sprintf("\n--- IMAGE FROM PAGE %d ---", doc.PageNumber))
			images = append(images, doc.ImageData)
		}
	}

	return llm.Message{Role: "user", Content: sb.String(), Images: images}
}

// BuildConversationContext renders the memory summary and recent turns
// into the block the prompts prepend.
func BuildConversationContext(memoryContext string, recentTurns []llm.Message) string {
	var sb strings.Builder

	if memoryContext != "" {
		sb.WriteString("CONVERSATION CONTEXT:\n")
		sb.WriteString(memoryContext)
		sb.WriteString("\n")
	}

	if len(recentTurns) > 0 {
		recent := recentTurns
		if len(recent) > 5 {
			recent = recent[len(recent)-5:]
		}
		sb.WriteString("RECENT HISTORY:\n")
		for _, msg := range recent {
			switch msg.Role {
			case "user":
				sb.WriteString("User: " + msg.Content + "\n")
			case "assistant":
				sb.WriteString("Assistant: " + msg.Content + "\n")
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// degradedAnswer still tells the user what the search surfaced.
func degradedAnswer(selected []store.Candidate) string {
	docs := selected
	if len(docs) > 3 {
		docs = docs[:3]
	}
	var names []string
	seen := make(map[string]bool)
	for _, doc := range docs {
		if seen[doc.DocumentName] {
			continue
		}
		seen[doc.DocumentName] = true
		names = append(names, doc.DocumentName)
	}
	return fmt.Sprintf("Sorry, I could not process your question right now. "+
		"Based on the search, I found information in: %s. Please try rephrasing your question.",
		strings.Join(names, ", "))
}
