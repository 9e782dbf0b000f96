// Package memory provides an in-memory Repository implementation.
// It backs tests and ephemeral runs; nothing survives process exit.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/memora/internal/core/domain"
	"github.com/custodia-labs/memora/internal/core/ports/driven"
)

// Ensure Repository implements the interface.
var _ driven.Repository = (*Repository)(nil)

// Repository is an in-memory implementation of driven.Repository.
type Repository struct {
	mu        sync.RWMutex
	documents map[string]domain.DocumentMetadata
	chunks    map[string][]domain.KnowledgeChunk // keyed by document id
}

// NewRepository creates a new in-memory repository.
func NewRepository() *Repository {
	return &Repository{
		documents: make(map[string]domain.DocumentMetadata),
		chunks:    make(map[string][]domain.KnowledgeChunk),
	}
}

// PutDocument stores or updates a document's metadata row.
func (r *Repository) PutDocument(_ context.Context, doc *domain.DocumentMetadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.documents[doc.ID] = *doc
	return nil
}

// GetDocument retrieves metadata by document id.
func (r *Repository) GetDocument(_ context.Context, documentID string) (*domain.DocumentMetadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.documents[documentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// DeleteDocument removes the metadata row.
func (r *Repository) DeleteDocument(_ context.Context, documentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.documents, documentID)
	return nil
}

// PutChunks stores chunks, replacing any existing row with the same chunk id.
func (r *Repository) PutChunks(_ context.Context, chunks []domain.KnowledgeChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, chunk := range chunks {
		existing := r.chunks[chunk.DocumentID]
		replaced := false
		for i := range existing {
			if existing[i].ID == chunk.ID {
				existing[i] = chunk
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, chunk)
		}
		r.chunks[chunk.DocumentID] = existing
	}
	return nil
}

// GetChunksForUser returns all query-visible chunks owned by the user,
// ordered by document id then chunk index. Chunks of documents that are not
// persisted are never returned.
func (r *Repository) GetChunksForUser(_ context.Context, userID string) ([]domain.KnowledgeChunk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.KnowledgeChunk
	for docID, chunks := range r.chunks {
		doc, ok := r.documents[docID]
		if !ok || !doc.Searchable() {
			continue
		}
		for i := range chunks {
			if chunks[i].UserID == userID {
				result = append(result, chunks[i])
			}
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].DocumentID != result[j].DocumentID {
			return result[i].DocumentID < result[j].DocumentID
		}
		return result[i].Index < result[j].Index
	})
	return result, nil
}

// DeleteChunksForDocument removes every chunk referencing the document.
func (r *Repository) DeleteChunksForDocument(_ context.Context, documentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.chunks, documentID)
	return nil
}

// ListDocuments returns metadata for all of a user's documents, ordered by
// ingestion time then document id.
func (r *Repository) ListDocuments(_ context.Context, userID string) ([]domain.DocumentMetadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var docs []domain.DocumentMetadata
	for id := range r.documents {
		doc := r.documents[id]
		if doc.UserID == userID {
			docs = append(docs, doc)
		}
	}

	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].IngestedAt.Equal(docs[j].IngestedAt) {
			return docs[i].IngestedAt.Before(docs[j].IngestedAt)
		}
		return docs[i].ID < docs[j].ID
	})
	return docs, nil
}

// Close releases resources.
func (r *Repository) Close() error {
	return nil
}
