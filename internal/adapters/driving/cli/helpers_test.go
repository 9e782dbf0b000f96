package cli

import (
	"context"
	"time"

	"github.com/custodia-labs/memora/internal/core/domain"
)

// mockKnowledgeService is a mock implementation of driving.KnowledgeService.
type mockKnowledgeService struct {
	docID     string
	documents []domain.DocumentMetadata
	chunks    []domain.KnowledgeChunk
	reembed   int
	err       error

	lastUserID string
	lastDocID  string
}

func (m *mockKnowledgeService) Ingest(
	_ context.Context, userID, _, _ string, _ []string,
) (string, error) {
	m.lastUserID = userID
	return m.docID, m.err
}

func (m *mockKnowledgeService) Delete(_ context.Context, userID, documentID string) error {
	m.lastUserID = userID
	m.lastDocID = documentID
	return m.err
}

func (m *mockKnowledgeService) ListDocuments(_ context.Context, userID string) ([]domain.DocumentMetadata, error) {
	m.lastUserID = userID
	return m.documents, m.err
}

func (m *mockKnowledgeService) ListChunks(_ context.Context, userID, documentID string) ([]domain.KnowledgeChunk, error) {
	m.lastUserID = userID
	m.lastDocID = documentID
	return m.chunks, m.err
}

func (m *mockKnowledgeService) ReEmbed(_ context.Context, userID, documentID string) (int, error) {
	m.lastUserID = userID
	m.lastDocID = documentID
	return m.reembed, m.err
}

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	results []domain.QueryResult
	err     error

	lastQuery string
	lastOpts  domain.SearchOptions
}

func (m *mockQueryService) Search(
	_ context.Context, _, query string, opts domain.SearchOptions,
) ([]domain.QueryResult, error) {
	m.lastQuery = query
	m.lastOpts = opts
	return m.results, m.err
}

// mockConfigStore is an in-memory implementation of driven.ConfigStore.
type mockConfigStore struct {
	values map[string]any
	err    error
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{values: make(map[string]any)}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	if s, ok := m.values[key].(string); ok {
		return s
	}
	return ""
}

func (m *mockConfigStore) GetInt(key string) int {
	if n, ok := m.values[key].(int); ok {
		return n
	}
	return 0
}

func (m *mockConfigStore) GetStringSlice(key string) []string {
	if s, ok := m.values[key].([]string); ok {
		return s
	}
	return nil
}

func (m *mockConfigStore) Set(key string, value any) error {
	if m.err != nil {
		return m.err
	}
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Save() error { return m.err }
func (m *mockConfigStore) Load() error { return m.err }

func (m *mockConfigStore) Path() string { return "/tmp/memora-test/config.toml" }

// setupTestServices installs mock services and a default acting user.
// The returned cleanup restores the previous wiring.
func setupTestServices() func() {
	oldKnowledge := knowledgeService
	oldQuery := queryService
	oldConfig := configStore
	oldUser := userFlag

	knowledgeService = &mockKnowledgeService{
		docID: "doc-1",
		documents: []domain.DocumentMetadata{
			{
				ID:         "doc-1",
				UserID:     "alice",
				Filename:   "notes.md",
				FileType:   "md",
				FileSize:   64,
				ChunkCount: 2,
				Status:     domain.StatusPersisted,
				Tags:       []string{"work"},
				IngestedAt: time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC),
			},
		},
		chunks: []domain.KnowledgeChunk{
			{
				ID:             "chunk-1",
				DocumentID:     "doc-1",
				Content:        "first chunk",
				Index:          0,
				EmbeddingState: domain.EmbeddingDone,
			},
			{
				ID:             "chunk-2",
				DocumentID:     "doc-1",
				Content:        "second chunk",
				Index:          1,
				EmbeddingState: domain.EmbeddingFailed,
			},
		},
		reembed: 1,
	}
	queryService = &mockQueryService{
		results: []domain.QueryResult{
			{
				Chunk: domain.KnowledgeChunk{
					ID:         "chunk-1",
					DocumentID: "doc-1",
					Content:    "first chunk",
					Index:      0,
				},
				Score: 0.91,
			},
		},
	}
	configStore = newMockConfigStore()
	userFlag = "alice"

	return func() {
		knowledgeService = oldKnowledge
		queryService = oldQuery
		configStore = oldConfig
		userFlag = oldUser
	}
}
