package bootstrap

import (
	"log"
	"time"

	"ai-docchat-be/internal/config"
	"ai-docchat-be/internal/controller"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/internal/repository/memory"
	"ai-docchat-be/internal/service"
	"ai-docchat-be/pkg/embedding"
	"ai-docchat-be/pkg/llm"
	"ai-docchat-be/pkg/llm/factory"
	"ai-docchat-be/pkg/memoryservice"
	"ai-docchat-be/pkg/objectstore"
	"ai-docchat-be/pkg/rag/answer"
	"ai-docchat-be/pkg/rag/images"
	"ai-docchat-be/pkg/rag/pipeline"
	"ai-docchat-be/pkg/rag/rerank"
	"ai-docchat-be/pkg/rag/search"
	"ai-docchat-be/pkg/rag/session"
	"ai-docchat-be/pkg/rag/transform"
	"ai-docchat-be/pkg/rag/verify"
	"ai-docchat-be/pkg/vectorstore"

	pktNats "ai-docchat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Infrastructure handles main.go needs for shutdown
	NatsPublisher *pktNats.Publisher
	Logger        logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	ragLogger := service.InitRagLogger("logs")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Providers
	// Initialize Embedding Provider based on Config
	var embeddingProvider embedding.EmbeddingProvider
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.EmbeddingModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.EmbeddingModel)
	case "gemini":
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	default:
		embeddingProvider = embedding.NewVoyageProvider(cfg.Keys.Voyage, cfg.Ai.EmbeddingModel)
		log.Printf("[INFO] Using Embedding Provider: VOYAGE (%s)", cfg.Ai.EmbeddingModel)
	}

	// Separate LLM handles per pipeline stage so each stage runs its
	// own model.
	answerProvider := mustLLMProvider(cfg, cfg.Ai.AnswerModel)
	transformProvider := mustLLMProvider(cfg, cfg.Ai.TransformModel)
	rerankProvider := mustLLMProvider(cfg, cfg.Ai.RerankModel)
	log.Printf("[INFO] Using LLM Provider: %s (answer=%s transform=%s rerank=%s)",
		cfg.Ai.LLMProvider, cfg.Ai.AnswerModel, cfg.Ai.TransformModel, cfg.Ai.RerankModel)

	// 4. Storage and external services
	vectorStore := vectorstore.NewPgVectorStore(db)
	imageFetcher := objectstore.NewHTTPFetcher(
		cfg.Storage.Endpoint,
		cfg.Storage.AuthToken,
		time.Duration(cfg.Storage.TimeoutSeconds)*time.Second,
	)

	var memoryClient session.MemoryClient
	if cfg.Memory.BaseURL != "" {
		memoryClient = memoryservice.NewClient(cfg.Memory.BaseURL, cfg.Memory.APIKey)
		log.Printf("[INFO] Memory service enabled at %s", cfg.Memory.BaseURL)
	} else {
		log.Printf("[WARN] Memory service not configured, sessions run without long-term memory")
	}
	sessionManager := session.NewManager(memoryClient, cfg.Memory.RecentLimit, ragLogger)

	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// 5. Pipeline stages
	transformer := transform.NewTransformer(transformProvider, cfg.Pipeline.TransformCacheMax, ragLogger)
	retriever := search.NewRetriever(embeddingProvider, vectorStore, ragLogger)
	enricher := images.NewEnricher(imageFetcher, cfg.Pipeline.ImageCacheMax, ragLogger)
	verifier := verify.NewVerifier(answerProvider, ragLogger)
	synthesizer := answer.NewSynthesizer(answerProvider, ragLogger)

	var reranker rerank.Reranker
	if cfg.Pipeline.EnableReranking {
		reranker = rerank.NewLLMReranker(rerankProvider, cfg.Pipeline.MaxCandidates, cfg.Pipeline.EnableImageFetch, ragLogger)
	} else {
		reranker = rerank.NewSimilarityReranker(search.DefaultConfig().Threshold)
	}

	ragPipeline := pipeline.New(
		transformer,
		retriever,
		enricher,
		reranker,
		verifier,
		synthesizer,
		pipeline.Options{
			MaxCandidates:      cfg.Pipeline.MaxCandidates,
			MaxSelected:        cfg.Pipeline.MaxSelected,
			RetrievalThreshold: search.DefaultConfig().Threshold,
			EnableReranking:    cfg.Pipeline.EnableReranking,
			EnableImageFetch:   cfg.Pipeline.EnableImageFetch,
		},
		ragLogger,
	)

	// 6. Services
	historyRepo := memory.NewHistoryRepository(cfg.Pipeline.HistoryLimit)
	publisherService := service.NewPublisherService(pubSub, cfg.Keys.TurnTopicName)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.TurnTopicName,
		sessionManager,
		natsPub,
	)

	chatService := service.NewChatService(
		ragPipeline,
		retriever,
		vectorStore,
		embeddingProvider,
		sessionManager,
		historyRepo,
		publisherService,
		natsPub,
		ragLogger,
	)

	sysLogger.Info("bootstrap", "Container initialized", map[string]interface{}{
		"llm_provider":       cfg.Ai.LLMProvider,
		"embedding_provider": cfg.Ai.EmbeddingProvider,
		"reranking_enabled":  cfg.Pipeline.EnableReranking,
		"image_fetching":     cfg.Pipeline.EnableImageFetch,
	})

	// 7. Controllers
	return &Container{
		ChatController:  controller.NewChatController(chatService),
		ConsumerService: consumerService,
		NatsPublisher:   natsPub,
		Logger:          sysLogger,
	}
}

func mustLLMProvider(cfg *config.Config, modelName string) llm.LLMProvider {
	baseURL := cfg.Ai.LLMBaseURL
	if cfg.Ai.LLMProvider == "ollama" {
		baseURL = cfg.Ai.OllamaBaseURL
	}
	provider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, modelName, baseURL, cfg.Keys.OpenAI)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	return provider
}
