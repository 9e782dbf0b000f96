package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/memora/internal/core/domain"
	"github.com/custodia-labs/memora/internal/core/ports/driven"
	"github.com/custodia-labs/memora/internal/core/ports/driving"
	"github.com/custodia-labs/memora/internal/logger"
	"github.com/custodia-labs/memora/internal/vector"
)

// Ensure QueryEngine implements the interface.
var _ driving.QueryService = (*QueryEngine)(nil)

// QueryEngine answers similarity queries with a brute-force cosine scan over
// the caller's chunk set. The candidate set is restricted to the requesting
// user before any scoring happens, so a query's cost never scales with other
// users' corpora and never touches their content.
type QueryEngine struct {
	repo     driven.Repository
	embedder driven.EmbeddingProvider
}

// NewQueryEngine creates a query engine. It must share the embedding
// provider (model and dimensionality) used at ingestion time.
func NewQueryEngine(repo driven.Repository, embedder driven.EmbeddingProvider) *QueryEngine {
	return &QueryEngine{
		repo:     repo,
		embedder: embedder,
	}
}

// Search embeds the query and returns the user's top-k most similar chunks.
func (e *QueryEngine) Search(
	ctx context.Context, userID, query string, opts domain.SearchOptions,
) ([]domain.QueryResult, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}

	logger.Section("Search")
	logger.Debug("User: %s, query: %q", userID, query)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.QueryResult{}, nil
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	if e.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	qvec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(qvec) != e.embedder.Dimensions() {
		return nil, fmt.Errorf("%w: query has %d dimensions, provider declares %d",
			domain.ErrDimensionMismatch, len(qvec), e.embedder.Dimensions())
	}

	chunks, err := e.repo.GetChunksForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: get chunks: %w", domain.ErrStorageUnavailable, err)
	}
	logger.Debug("Candidate chunks: %d", len(chunks))

	results, err := e.score(qvec, chunks)
	if err != nil {
		return nil, err
	}

	rankResults(results)
	if len(results) > topK {
		results = results[:topK]
	}

	logger.Info("Search returned %d results", len(results))
	return results, nil
}

// score computes cosine similarity for every embedded candidate. Chunks
// without a vector (pending or failed embedding) are skipped. A stored
// vector whose dimensionality disagrees with the query is a configuration
// error, never a silent truncation.
func (e *QueryEngine) score(qvec []float32, chunks []domain.KnowledgeChunk) ([]domain.QueryResult, error) {
	results := make([]domain.QueryResult, 0, len(chunks))
	for i := range chunks {
		if !chunks[i].Embedded() {
			continue
		}
		if len(chunks[i].Embedding) != len(qvec) {
			return nil, fmt.Errorf("%w: chunk %s stored with %d dimensions, query has %d",
				domain.ErrDimensionMismatch, chunks[i].ID, len(chunks[i].Embedding), len(qvec))
		}
		sim, err := vector.Cosine(qvec, chunks[i].Embedding)
		if err != nil {
			return nil, fmt.Errorf("score chunk %s: %w", chunks[i].ID, err)
		}
		results = append(results, domain.QueryResult{
			Chunk: chunks[i],
			Score: sim,
		})
	}
	return results, nil
}

// rankResults sorts by descending score; equal scores prefer the more
// recently created chunk, then the chunk id for a stable order.
func rankResults(results []domain.QueryResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if !results[i].Chunk.CreatedAt.Equal(results[j].Chunk.CreatedAt) {
			return results[i].Chunk.CreatedAt.After(results[j].Chunk.CreatedAt)
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})
}
