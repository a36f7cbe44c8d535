package pipeline

import (
	"ai-docchat-be/pkg/store"
)

// ErrorKind classifies the terminal failure states a run can end in.
// All of them are values on the Result, never panics or Go errors
// surfaced to the caller.
type ErrorKind string

const (
	ErrKindEmbedding            ErrorKind = "embedding_failure"
	ErrKindNoCandidates         ErrorKind = "no_candidates_found"
	ErrKindInsufficientEvidence ErrorKind = "insufficient_evidence"
	ErrKindInternal             ErrorKind = "internal"
)

// ResultError describes why a run produced no grounded answer.
type ResultError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// Config echoes the knobs the run executed with.
type Config struct {
	MaxCandidates     int  `json:"max_candidates"`
	MaxSelected       int  `json:"max_selected"`
	RerankingEnabled  bool `json:"reranking_enabled"`
	ImageFetchEnabled bool `json:"image_fetching_enabled"`
}

// Result is the complete outcome of one pipeline run. Answer is always
// populated with user-facing text, including the failure states.
type Result struct {
	Query            string         `json:"query"`
	TransformedQuery string         `json:"transformed_query,omitempty"`
	Answer           string         `json:"answer"`
	RequiresRAG      bool           `json:"requires_rag"`
	Sources          []store.Source `json:"sources,omitempty"`
	SelectedPages    string         `json:"selected_pages,omitempty"`
	Justification    string         `json:"justification,omitempty"`
	TotalCandidates  int            `json:"total_candidates"`
	Config           Config         `json:"pipeline_config"`
	Err              *ResultError   `json:"error,omitempty"`
}

// Answered reports whether the run produced a grounded answer.
func (r *Result) Answered() bool {
	return r.Err == nil
}
