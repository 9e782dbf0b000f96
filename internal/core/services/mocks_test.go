package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/memora/internal/core/domain"
	"github.com/custodia-labs/memora/internal/core/ports/driven"
)

// mockEmbedder is a hand-rolled EmbeddingProvider for service tests.
// Behaviour is overridden per test via embedFn and batchFn; the defaults
// return a constant unit vector.
type mockEmbedder struct {
	mu         sync.Mutex
	dims       int
	embedFn    func(text string) ([]float32, error)
	batchFn    func(texts []string) ([][]float32, error)
	embedCalls int
	batchCalls int
}

var _ driven.EmbeddingProvider = (*mockEmbedder)(nil)

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{dims: 3}
}

func (m *mockEmbedder) defaultVector() []float32 {
	vec := make([]float32, m.dims)
	vec[0] = 1
	return vec
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.embedCalls++
	fn := m.embedFn
	m.mu.Unlock()
	if fn != nil {
		return fn(text)
	}
	return m.defaultVector(), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batchCalls++
	fn := m.batchFn
	m.mu.Unlock()
	if fn != nil {
		return fn(texts)
	}
	vecs := make([][]float32, len(texts))
	for i := range texts {
		vecs[i] = m.defaultVector()
	}
	return vecs, nil
}

func (m *mockEmbedder) Dimensions() int { return m.dims }

func (m *mockEmbedder) ModelName() string { return "mock-embed" }

func (m *mockEmbedder) Ping(context.Context) error { return nil }

func (m *mockEmbedder) Close() error { return nil }

func (m *mockEmbedder) calls() (embed, batch int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.embedCalls, m.batchCalls
}

// failingRepo wraps a Repository and fails selected operations.
type failingRepo struct {
	driven.Repository
	failPutChunks    bool
	failDeleteChunks bool
}

func (r *failingRepo) PutChunks(ctx context.Context, chunks []domain.KnowledgeChunk) error {
	if r.failPutChunks {
		return fmt.Errorf("disk full")
	}
	return r.Repository.PutChunks(ctx, chunks)
}

func (r *failingRepo) DeleteChunksForDocument(ctx context.Context, documentID string) error {
	if r.failDeleteChunks {
		return fmt.Errorf("disk full")
	}
	return r.Repository.DeleteChunksForDocument(ctx, documentID)
}

// recordingRepo captures the status carried by every document write.
type recordingRepo struct {
	driven.Repository
	statuses []domain.DocumentStatus
}

func (r *recordingRepo) PutDocument(ctx context.Context, doc *domain.DocumentMetadata) error {
	r.statuses = append(r.statuses, doc.Status)
	return r.Repository.PutDocument(ctx, doc)
}
