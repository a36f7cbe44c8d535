package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"ai-docchat-be/pkg/database"
	"ai-docchat-be/pkg/vectorstore"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPgVectorStoreConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err, "Failed to connect to GORM DB")

	store := vectorstore.NewPgVectorStore(gormDB)
	ctx := context.Background()

	err = store.Ping(ctx)
	require.NoError(t, err, "Ping should reach the database")

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.TotalChunks, int64(0))
	assert.GreaterOrEqual(t, stats.TotalDocuments, int64(0))

	docs, err := store.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, int(stats.TotalDocuments), len(docs))
}

func TestPgVectorStoreSearch(t *testing.T) {
	_ = godotenv.Load("../../.env")

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err)

	store := vectorstore.NewPgVectorStore(gormDB)
	ctx := context.Background()

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	if stats.TotalChunks == 0 {
		t.Skip("Skipping search test: index is empty")
	}

	queryVector := make([]float32, 1024)
	for i := range queryVector {
		queryVector[i] = 0.01
	}

	hits, err := store.SearchSimilar(ctx, queryVector, 5, vectorstore.Filter{})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(hits), 5)

	// Results must come back ordered by similarity
	for i := 1; i < len(hits); i++ {
		assert.LessOrEqual(t, hits[i].Similarity, hits[i-1].Similarity)
	}
}
