package dto

import "ai-docchat-be/pkg/store"

type AskRequest struct {
	Message   string `json:"message" validate:"required"`
	SessionID string `json:"session_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
}

type AskResponse struct {
	Answer           string         `json:"answer"`
	Query            string         `json:"query"`
	TransformedQuery string         `json:"transformed_query,omitempty"`
	RequiresRAG      bool           `json:"requires_rag"`
	Sources          []store.Source `json:"sources,omitempty"`
	SelectedPages    string         `json:"selected_pages,omitempty"`
	Justification    string         `json:"justification,omitempty"`
	TotalCandidates  int            `json:"total_candidates,omitempty"`
	SessionID        string         `json:"session_id,omitempty"`
	ErrorKind        string         `json:"error_kind,omitempty"`
}

type SearchRequest struct {
	Query        string  `json:"query" validate:"required"`
	TopK         int     `json:"top_k,omitempty" validate:"omitempty,min=1,max=50"`
	Threshold    float64 `json:"threshold,omitempty" validate:"omitempty,min=0,max=1"`
	DocumentName string  `json:"document_name,omitempty"`
}

type SearchResultDTO struct {
	ID           string  `json:"id"`
	Content      string  `json:"content"`
	DocumentName string  `json:"document_name"`
	PageNumber   int     `json:"page_number"`
	Similarity   float64 `json:"similarity"`
	HasImage     bool    `json:"has_image"`
}

type SearchResponse struct {
	Query   string            `json:"query"`
	Results []SearchResultDTO `json:"results"`
	Total   int               `json:"total"`
}

type DocumentInfoDTO struct {
	Name       string `json:"name"`
	ChunkCount int64  `json:"chunk_count"`
	PageCount  int64  `json:"page_count"`
	ImageCount int64  `json:"image_count"`
}

type HistoryTurnDTO struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RecordTurnMessage is the payload published on the turn recording
// topic after each exchange.
type RecordTurnMessage struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
}

type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}
