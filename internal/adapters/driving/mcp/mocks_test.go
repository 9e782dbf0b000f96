package mcp

import (
	"context"

	"github.com/custodia-labs/memora/internal/core/domain"
)

// mockKnowledgeService is a mock implementation of driving.KnowledgeService.
type mockKnowledgeService struct {
	docID     string
	documents []domain.DocumentMetadata
	chunks    []domain.KnowledgeChunk
	reembed   int
	err       error

	lastUserID   string
	lastFilename string
	lastContent  string
	lastTags     []string
	lastDocID    string
}

func (m *mockKnowledgeService) Ingest(
	_ context.Context,
	userID, filename, content string,
	tags []string,
) (string, error) {
	m.lastUserID = userID
	m.lastFilename = filename
	m.lastContent = content
	m.lastTags = tags
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

	lastUserID string
	lastQuery  string
	lastOpts   domain.SearchOptions
}

func (m *mockQueryService) Search(
	_ context.Context,
	userID, query string,
	opts domain.SearchOptions,
) ([]domain.QueryResult, error) {
	m.lastUserID = userID
	m.lastQuery = query
	m.lastOpts = opts
	return m.results, m.err
}
