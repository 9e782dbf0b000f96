package driven

import (
	"context"

	"github.com/custodia-labs/memora/internal/core/domain"
)

// Repository persists document metadata and chunks. The core never issues
// queries beyond this contract; indexing strategy (e.g. a secondary index on
// user id) is the implementation's responsibility.
//
// Visibility contract: GetChunksForUser returns only chunks whose owning
// document is in StatusPersisted. The knowledge service writes chunks first
// and flips the document status last, so readers never observe a
// partially-persisted document through this method.
type Repository interface {
	// PutDocument stores or updates a document's metadata row.
	PutDocument(ctx context.Context, doc *domain.DocumentMetadata) error

	// GetDocument retrieves metadata by document id.
	// Returns domain.ErrNotFound when absent.
	GetDocument(ctx context.Context, documentID string) (*domain.DocumentMetadata, error)

	// DeleteDocument removes the metadata row.
	DeleteDocument(ctx context.Context, documentID string) error

	// PutChunks stores chunks atomically: either all rows land or none do.
	PutChunks(ctx context.Context, chunks []domain.KnowledgeChunk) error

	// GetChunksForUser returns all query-visible chunks owned by the user,
	// ordered by document id then chunk index.
	GetChunksForUser(ctx context.Context, userID string) ([]domain.KnowledgeChunk, error)

	// DeleteChunksForDocument removes every chunk referencing the document.
	DeleteChunksForDocument(ctx context.Context, documentID string) error

	// ListDocuments returns metadata for all of a user's documents,
	// ordered by ingestion time then document id.
	ListDocuments(ctx context.Context, userID string) ([]domain.DocumentMetadata, error)

	// Close releases resources.
	Close() error
}
