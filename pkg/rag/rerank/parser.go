package rerank

import (
	"regexp"
	"strconv"
	"strings"
)

var digitsPattern = regexp.MustCompile(`\d+`)

const fallbackJustification = "Fallback: automatic selection of the first candidate"

// parseResponse extracts 1-based selections and a justification from
// the model's two-line reply. It is total: malformed or empty output
// falls back to the first candidate.
func parseResponse(responseText string, totalCandidates int) (indices []int, justification string) {
	justification = "No justification provided."

	for _, line := range strings.Split(responseText, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)

		switch {
		case strings.HasPrefix(lower, "selectedindices"), strings.HasPrefix(lower, "selected_indices"),
			strings.HasPrefix(lower, "selected_pages"), strings.HasPrefix(lower, "selected pages"):
			for _, raw := range digitsPattern.FindAllString(line, -1) {
				n, err := strconv.Atoi(raw)
				if err != nil || n < 1 || n > totalCandidates {
					continue
				}
				indices = append(indices, n-1)
			}
		case strings.HasPrefix(lower, "justification:"):
			justification = strings.TrimSpace(line[len("justification:"):])
		}
	}

	if len(indices) == 0 {
		indices = []int{0}
		justification = fallbackJustification
	}

	return indices, justification
}
