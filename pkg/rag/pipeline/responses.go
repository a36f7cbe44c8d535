package pipeline

import "strings"

// Canned replies for turns that never reach the index.

const (
	greetingReply = "Hello! I am your assistant for document questions. How can I help you today?"
	thanksReply   = "You're welcome! Happy to help. Is there anything else you would like to know?"
	genericReply  = "How can I help you with questions about the documents? Ask something specific and I will look up the relevant information."

	notFoundReply     = "I could not find specific information about your question in the available documents. Could you rephrase the question or be more specific?"
	embeddingFailMsg  = "A technical problem occurred while processing your question. Please try again in a moment."
	insufficientReply = "The requested information was not explicitly found in the documents."
	internalErrorMsg  = "Sorry, an internal error occurred. Please try again."
)

var simpleGreetings = []string{"hello", "hi", "hey", "good morning", "good afternoon", "good evening"}
var simpleThanks = []string{"thanks", "thank you", "thx", "cheers"}

// conversationalReply picks the canned answer for a no-retrieval turn.
func conversationalReply(query string) string {
	lower := strings.ToLower(query)
	for _, g := range simpleGreetings {
		if strings.Contains(lower, g) {
			return greetingReply
		}
	}
	for _, t := range simpleThanks {
		if strings.Contains(lower, t) {
			return thanksReply
		}
	}
	return genericReply
}
