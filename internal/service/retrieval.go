package service

import (
	"context"
	"fmt"
	"time"

	"github.com/linsalefe/pos-plataform/internal/domain"
	"github.com/linsalefe/pos-plataform/internal/telemetry"
)

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// ChunkReader loads the embedded chunks of a channel.
type ChunkReader interface {
	ListChunksWithEmbedding(ctx context.Context, channelID int64) ([]domain.StoredChunk, error)
}

// KnowledgeRetriever finds the chunks of a channel's knowledge base that are
// closest to a query. Nothing is cached: every search embeds the query and
// reads the chunks again.
type KnowledgeRetriever struct {
	chunks   ChunkReader
	embedder EmbeddingClient
	timeout  time.Duration
}

// NewKnowledgeRetriever creates a KnowledgeRetriever. A zero timeout leaves
// the embedding call bounded only by the caller's context.
func NewKnowledgeRetriever(chunks ChunkReader, embedder EmbeddingClient, timeout time.Duration) *KnowledgeRetriever {
	return &KnowledgeRetriever{
		chunks:   chunks,
		embedder: embedder,
		timeout:  timeout,
	}
}

// Search returns up to topK chunks ranked by cosine similarity to query.
// A channel without embedded chunks yields an empty result and no embedding
// call is made.
func (r *KnowledgeRetriever) Search(ctx context.Context, query string, channelID int64, topK int) ([]domain.ScoredChunk, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeRetriever.Search", telemetry.SpanAttributes{
		ChannelID: channelID,
		Operation: "search",
	})
	defer span.End()

	if topK <= 0 {
		topK = DefaultTopK
	}

	corpus, err := r.chunks.ListChunksWithEmbedding(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge chunks: %w", err)
	}
	if len(corpus) == 0 {
		return []domain.ScoredChunk{}, nil
	}

	embedCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		embedCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	query = trimQuery(query)
	queryVec, err := r.embedder.GenerateEmbedding(embedCtx, query)
	if err != nil {
		return nil, err
	}

	return Rank(queryVec, corpus, topK), nil
}

func trimQuery(q string) string {
	const maxRunes = 8000
	runes := []rune(q)
	if len(runes) > maxRunes {
		return string(runes[:maxRunes])
	}
	return q
}
