package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestDocumentMetadata_Searchable tests query visibility by status
func TestDocumentMetadata_Searchable(t *testing.T) {
	tests := []struct {
		status     DocumentStatus
		searchable bool
	}{
		{StatusPending, false},
		{StatusChunking, false},
		{StatusEmbedding, false},
		{StatusPersisted, true},
		{StatusFailed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			doc := DocumentMetadata{ID: "doc-1", UserID: "alice", Status: tt.status}
			assert.Equal(t, tt.searchable, doc.Searchable())
		})
	}
}

// TestKnowledgeChunk_Embedded tests the embedding presence check
func TestKnowledgeChunk_Embedded(t *testing.T) {
	chunk := KnowledgeChunk{
		ID:             "chunk-1",
		UserID:         "alice",
		DocumentID:     "doc-1",
		Content:        "some text",
		Index:          0,
		Embedding:      []float32{0.1, 0.2, 0.3},
		EmbeddingState: EmbeddingDone,
		CreatedAt:      time.Now(),
	}
	assert.True(t, chunk.Embedded())

	pending := KnowledgeChunk{EmbeddingState: EmbeddingPending}
	assert.False(t, pending.Embedded())

	failed := KnowledgeChunk{EmbeddingState: EmbeddingFailed}
	assert.False(t, failed.Embedded())

	// Inconsistent state: marked done but no vector.
	empty := KnowledgeChunk{EmbeddingState: EmbeddingDone}
	assert.False(t, empty.Embedded())
}
