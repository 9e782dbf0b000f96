package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/memora/internal/core/domain"
)

func newTestServer(t *testing.T, knowledge *mockKnowledgeService, query *mockQueryService) *Server {
	t.Helper()
	server, err := NewServer(&Ports{Knowledge: knowledge, Query: query})
	require.NoError(t, err)
	return server
}

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns search results", func(t *testing.T) {
		query := &mockQueryService{
			results: []domain.QueryResult{
				{
					Chunk: domain.KnowledgeChunk{
						ID:         "chunk-1",
						DocumentID: "doc-1",
						Content:    "vectors measure meaning",
						Index:      2,
					},
					Score: 0.95,
				},
			},
		}
		server := newTestServer(t, &mockKnowledgeService{}, query)

		input := SearchInput{UserID: "alice", Query: "meaning", TopK: 5}
		_, output, err := server.handleSearch(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Results, 1)
		assert.Equal(t, "chunk-1", output.Results[0].ChunkID)
		assert.Equal(t, "doc-1", output.Results[0].DocumentID)
		assert.Equal(t, 2, output.Results[0].Index)
		assert.Equal(t, 0.95, output.Results[0].Score)
		assert.Equal(t, "vectors measure meaning", output.Results[0].Content)

		assert.Equal(t, "alice", query.lastUserID)
		assert.Equal(t, "meaning", query.lastQuery)
		assert.Equal(t, 5, query.lastOpts.TopK)
	})

	t.Run("zero top_k is passed through for the service default", func(t *testing.T) {
		query := &mockQueryService{}
		server := newTestServer(t, &mockKnowledgeService{}, query)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{UserID: "alice", Query: "q"})

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.Equal(t, 0, query.lastOpts.TopK)
	})

	t.Run("returns error on search failure", func(t *testing.T) {
		query := &mockQueryService{err: errors.New("search failed")}
		server := newTestServer(t, &mockKnowledgeService{}, query)

		_, _, err := server.handleSearch(ctx, nil, SearchInput{UserID: "alice", Query: "q"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "search failed")
	})
}

func TestServer_handleIngest(t *testing.T) {
	ctx := context.Background()

	t.Run("returns document id", func(t *testing.T) {
		knowledge := &mockKnowledgeService{docID: "doc-42"}
		server := newTestServer(t, knowledge, &mockQueryService{})

		input := IngestInput{
			UserID:   "alice",
			Filename: "notes.md",
			Content:  "remember this",
			Tags:     []string{"personal"},
		}
		_, output, err := server.handleIngest(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, "doc-42", output.DocumentID)
		assert.Equal(t, "alice", knowledge.lastUserID)
		assert.Equal(t, "notes.md", knowledge.lastFilename)
		assert.Equal(t, "remember this", knowledge.lastContent)
		assert.Equal(t, []string{"personal"}, knowledge.lastTags)
	})

	t.Run("propagates validation errors", func(t *testing.T) {
		knowledge := &mockKnowledgeService{err: domain.ErrInvalidInput}
		server := newTestServer(t, knowledge, &mockQueryService{})

		_, _, err := server.handleIngest(ctx, nil, IngestInput{UserID: "alice"})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestServer_handleListDocuments(t *testing.T) {
	ctx := context.Background()

	t.Run("returns documents", func(t *testing.T) {
		ingested := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		knowledge := &mockKnowledgeService{
			documents: []domain.DocumentMetadata{
				{
					ID:         "doc-1",
					UserID:     "alice",
					Filename:   "notes.md",
					FileType:   "md",
					FileSize:   128,
					ChunkCount: 3,
					Status:     domain.StatusPersisted,
					Tags:       []string{"work"},
					IngestedAt: ingested,
				},
			},
		}
		server := newTestServer(t, knowledge, &mockQueryService{})

		_, output, err := server.handleListDocuments(ctx, nil, ListDocumentsInput{UserID: "alice"})

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Documents, 1)
		assert.Equal(t, "doc-1", output.Documents[0].ID)
		assert.Equal(t, "notes.md", output.Documents[0].Filename)
		assert.Equal(t, "persisted", output.Documents[0].Status)
		assert.Equal(t, 3, output.Documents[0].ChunkCount)
		assert.Equal(t, "2026-03-01T12:00:00Z", output.Documents[0].IngestedAt)
	})

	t.Run("empty store returns empty list", func(t *testing.T) {
		server := newTestServer(t, &mockKnowledgeService{}, &mockQueryService{})

		_, output, err := server.handleListDocuments(ctx, nil, ListDocumentsInput{UserID: "alice"})

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.Empty(t, output.Documents)
	})
}

func TestServer_handleDeleteDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes the document", func(t *testing.T) {
		knowledge := &mockKnowledgeService{}
		server := newTestServer(t, knowledge, &mockQueryService{})

		input := DeleteDocumentInput{UserID: "alice", DocumentID: "doc-1"}
		_, output, err := server.handleDeleteDocument(ctx, nil, input)

		require.NoError(t, err)
		assert.True(t, output.Deleted)
		assert.Equal(t, "alice", knowledge.lastUserID)
		assert.Equal(t, "doc-1", knowledge.lastDocID)
	})

	t.Run("propagates scope violations", func(t *testing.T) {
		knowledge := &mockKnowledgeService{err: domain.ErrScopeViolation}
		server := newTestServer(t, knowledge, &mockQueryService{})

		_, _, err := server.handleDeleteDocument(ctx, nil, DeleteDocumentInput{
			UserID:     "mallory",
			DocumentID: "doc-1",
		})

		assert.ErrorIs(t, err, domain.ErrScopeViolation)
	})
}
