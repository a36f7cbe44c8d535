package rerank

import (
	"context"

	"ai-docchat-be/pkg/store"
)

// Decision is the outcome of reranking one candidate set. Selected is
// never empty when candidates were supplied.
type Decision struct {
	Selected        []store.Candidate
	Justification   string
	Indices         []int
	TotalCandidates int
	Model           string
}

// Reranker picks the strongest candidates for a query. Implementations
// must be total: a failed model call degrades to an order-based pick.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []store.Candidate, maxSelected int) Decision
}
