// FILE: internal/service/chat_service.go
package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/repository/memory"
	"ai-docchat-be/pkg/embedding"
	"ai-docchat-be/pkg/events"
	pktNats "ai-docchat-be/pkg/nats"
	"ai-docchat-be/pkg/rag/pipeline"
	"ai-docchat-be/pkg/rag/search"
	"ai-docchat-be/pkg/rag/session"
	"ai-docchat-be/pkg/vectorstore"
)

// IChatService is the conversational entry point for the document
// question answering pipeline.
type IChatService interface {
	Ask(ctx context.Context, request *dto.AskRequest) (*dto.AskResponse, error)
	Search(ctx context.Context, request *dto.SearchRequest) (*dto.SearchResponse, error)
	ListDocuments(ctx context.Context) ([]*dto.DocumentInfoDTO, error)
	Stats(ctx context.Context) (map[string]interface{}, error)
	Health(ctx context.Context) *dto.HealthResponse
	CreateSession() string
	GetHistory(sessionID string) []dto.HistoryTurnDTO
	ClearHistory(sessionID string)
}

type chatService struct {
	ragPipeline    *pipeline.Pipeline
	retriever      *search.Retriever
	vectorStore    vectorstore.Store
	embedder       embedding.EmbeddingProvider
	sessionManager *session.Manager
	historyRepo    *memory.HistoryRepository
	publisher      IPublisherService
	eventPublisher *pktNats.Publisher
	ragLogger      *log.Logger
}

func NewChatService(
	ragPipeline *pipeline.Pipeline,
	retriever *search.Retriever,
	vectorStore vectorstore.Store,
	embedder embedding.EmbeddingProvider,
	sessionManager *session.Manager,
	historyRepo *memory.HistoryRepository,
	publisher IPublisherService,
	eventPublisher *pktNats.Publisher,
	ragLogger *log.Logger,
) IChatService {
	return &chatService{
		ragPipeline:    ragPipeline,
		retriever:      retriever,
		vectorStore:    vectorStore,
		embedder:       embedder,
		sessionManager: sessionManager,
		historyRepo:    historyRepo,
		publisher:      publisher,
		eventPublisher: eventPublisher,
		ragLogger:      ragLogger,
	}
}

// InitRagLogger opens the dedicated pipeline log file, falling back to
// stdout when the logs directory cannot be created.
func InitRagLogger(logDir string) *log.Logger {
	logPath := filepath.Join(logDir, "rag_pipeline.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[RAG] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}

func (cs *chatService) Ask(ctx context.Context, request *dto.AskRequest) (*dto.AskResponse, error) {
	sessionCtx := cs.sessionManager.Resolve(ctx, request.SessionID, request.UserID)

	windowKey := request.SessionID
	if windowKey == "" {
		windowKey = "anonymous"
	}
	window := cs.historyRepo.GetOrCreate(windowKey)

	// Prefer the in-process window. A resumed session with an empty
	// window is seeded from the memory service history.
	historyMessages := window.Messages()
	if len(historyMessages) == 0 && !sessionCtx.IsNewSession {
		historyMessages = cs.sessionManager.HistoryMessages(sessionCtx)
		for _, msg := range historyMessages {
			window.Append(msg.Role, msg.Content)
		}
	}

	conversationContext := cs.sessionManager.ContextBlock(sessionCtx)

	started := time.Now()
	result := cs.ragPipeline.SearchAndAnswerWithContext(ctx, request.Message, historyMessages, conversationContext)
	cs.publishExchange(ctx, sessionCtx.SessionID, result, time.Since(started))

	window.Append("user", request.Message)
	window.Append("assistant", result.Answer)

	cs.recordTurn(sessionCtx.SessionID, request.UserID, "user", request.Message)
	cs.recordTurn(sessionCtx.SessionID, request.UserID, "assistant", result.Answer)

	response := &dto.AskResponse{
		Answer:           result.Answer,
		Query:            result.Query,
		TransformedQuery: result.TransformedQuery,
		RequiresRAG:      result.RequiresRAG,
		Sources:          result.Sources,
		SelectedPages:    result.SelectedPages,
		Justification:    result.Justification,
		TotalCandidates:  result.TotalCandidates,
		SessionID:        sessionCtx.SessionID,
	}
	if result.Err != nil {
		response.ErrorKind = string(result.Err.Kind)
	}
	return response, nil
}

func (cs *chatService) publishExchange(ctx context.Context, sessionID string, result *pipeline.Result, elapsed time.Duration) {
	if cs.eventPublisher == nil {
		return
	}
	event := events.NewChatExchangeCompleted(sessionID, result.Query, elapsed, len(result.Sources), result.RequiresRAG)
	if err := cs.eventPublisher.Publish(ctx, event); err != nil {
		cs.ragLogger.Printf("[WARN] Failed to publish exchange event: %v", err)
	}
}

func (cs *chatService) CreateSession() string {
	sessionID := uuid.NewString()
	cs.historyRepo.GetOrCreate(sessionID)
	return sessionID
}

func (cs *chatService) recordTurn(sessionID, userID, role, content string) {
	if cs.publisher == nil || sessionID == "" {
		return
	}
	err := cs.publisher.PublishTurn(dto.RecordTurnMessage{
		SessionID: sessionID,
		UserID:    userID,
		Role:      role,
		Content:   content,
	})
	if err != nil {
		cs.ragLogger.Printf("[WARN] Failed to publish %s turn for session %s: %v", role, sessionID, err)
	}
}

func (cs *chatService) Search(ctx context.Context, request *dto.SearchRequest) (*dto.SearchResponse, error) {
	config := search.DefaultConfig()
	if request.TopK > 0 {
		config.TopK = request.TopK
	}
	if request.Threshold > 0 {
		config.Threshold = request.Threshold
	}

	candidates, err := cs.retriever.Retrieve(ctx, request.Query, vectorstore.Filter{DocumentName: request.DocumentName}, config)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]dto.SearchResultDTO, 0, len(candidates))
	for _, candidate := range candidates {
		results = append(results, dto.SearchResultDTO{
			ID:           candidate.ID,
			Content:      candidate.Content,
			DocumentName: candidate.DocumentName,
			PageNumber:   candidate.PageNumber,
			Similarity:   candidate.Similarity,
			HasImage:     candidate.HasImage,
		})
	}

	return &dto.SearchResponse{
		Query:   request.Query,
		Results: results,
		Total:   len(results),
	}, nil
}

func (cs *chatService) ListDocuments(ctx context.Context) ([]*dto.DocumentInfoDTO, error) {
	documents, err := cs.vectorStore.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	response := make([]*dto.DocumentInfoDTO, 0, len(documents))
	for _, doc := range documents {
		response = append(response, &dto.DocumentInfoDTO{
			Name:       doc.DocumentName,
			ChunkCount: doc.ChunkCount,
			PageCount:  doc.PageCount,
			ImageCount: doc.WithImages,
		})
	}
	return response, nil
}

func (cs *chatService) Stats(ctx context.Context) (map[string]interface{}, error) {
	indexStats, err := cs.vectorStore.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read index stats: %w", err)
	}

	stats := cs.ragPipeline.Stats()
	stats["index"] = indexStats
	return stats, nil
}

func (cs *chatService) Health(ctx context.Context) *dto.HealthResponse {
	components := map[string]string{}
	status := "healthy"

	if err := cs.vectorStore.Ping(ctx); err != nil {
		components["vector_store"] = fmt.Sprintf("unreachable: %v", err)
		status = "degraded"
	} else {
		components["vector_store"] = "ok"
	}

	if cs.embedder != nil {
		if _, err := cs.embedder.Generate("ping", "RETRIEVAL_QUERY"); err != nil {
			components["embedding_provider"] = fmt.Sprintf("unreachable: %v", err)
			status = "degraded"
		} else {
			components["embedding_provider"] = "ok"
		}
	}

	return &dto.HealthResponse{
		Status:     status,
		Components: components,
	}
}

func (cs *chatService) GetHistory(sessionID string) []dto.HistoryTurnDTO {
	window, found := cs.historyRepo.Get(sessionID)
	if !found {
		return []dto.HistoryTurnDTO{}
	}

	messages := window.Messages()
	turns := make([]dto.HistoryTurnDTO, 0, len(messages))
	for _, msg := range messages {
		turns = append(turns, dto.HistoryTurnDTO{Role: msg.Role, Content: msg.Content})
	}
	return turns
}

func (cs *chatService) ClearHistory(sessionID string) {
	cs.historyRepo.Delete(sessionID)
}
