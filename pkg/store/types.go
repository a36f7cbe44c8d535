package store

// Candidate is a document chunk pulled from the vector store, carrying
// everything the downstream rerank and answer stages need.
type Candidate struct {
	ID           string                 `json:"id"`
	Content      string                 `json:"content"`
	DocumentName string                 `json:"document_name"`
	PageNumber   int                    `json:"page_number"`
	Similarity   float64                `json:"similarity"`
	ImageRef     string                 `json:"image_ref,omitempty"`
	ImageData    []byte                 `json:"-"`
	HasImage     bool                   `json:"has_image"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// Source identifies where an answer came from, in selection order.
type Source struct {
	DocumentName string  `json:"document_name"`
	PageNumber   int     `json:"page_number"`
	Similarity   float64 `json:"similarity"`
	HasImage     bool    `json:"has_image"`
}

// SourceFromCandidate projects a candidate down to its citation fields.
func SourceFromCandidate(c Candidate) Source {
	return Source{
		DocumentName: c.DocumentName,
		PageNumber:   c.PageNumber,
		Similarity:   c.Similarity,
		HasImage:     c.HasImage,
	}
}
