package rerank

import (
	"context"
	"fmt"
	"strings"

	"ai-docchat-be/pkg/store"
)

// SimilarityReranker picks candidates by vector similarity alone. It
// is the drop-in substitute when no rerank model is configured.
type SimilarityReranker struct {
	Threshold float64
}

var _ Reranker = &SimilarityReranker{}

func NewSimilarityReranker(threshold float64) *SimilarityReranker {
	return &SimilarityReranker{Threshold: threshold}
}

func (r *SimilarityReranker) Rerank(ctx context.Context, query string, candidates []store.Candidate, maxSelected int) Decision {
	if len(candidates) == 0 {
		return Decision{
			Justification: "No candidates available",
			Indices:       []int{},
			Model:         "similarity_based",
		}
	}

	var filtered []store.Candidate
	for _, c := range candidates {
		if c.Similarity >= r.Threshold {
			filtered = append(filtered, c)
		}
	}
	// Nothing above threshold: fall back to the best-ranked ones
	if len(filtered) == 0 {
		filtered = candidates
	}

	if len(filtered) > maxSelected {
		filtered = filtered[:maxSelected]
	}

	var justification string
	if len(filtered) == 1 {
		justification = fmt.Sprintf("Most similar document (score: %.3f)", filtered[0].Similarity)
	} else {
		scores := make([]string, len(filtered))
		for i, c := range filtered {
			scores[i] = fmt.Sprintf("%.3f", c.Similarity)
		}
		justification = fmt.Sprintf("Top %d documents by similarity (scores: %s)",
			len(filtered), strings.Join(scores, ", "))
	}

	indices := make([]int, len(filtered))
	for i := range indices {
		indices[i] = i
	}

	return Decision{
		Selected:        filtered,
		Justification:   justification,
		Indices:         indices,
		TotalCandidates: len(candidates),
		Model:           "similarity_based",
	}
}
