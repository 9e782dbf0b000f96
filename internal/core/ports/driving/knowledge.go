package driving

import (
	"context"

	"github.com/custodia-labs/memora/internal/core/domain"
)

// KnowledgeService owns the document ingestion lifecycle.
type KnowledgeService interface {
	// Ingest chunks, embeds and persists a document for the user, returning
	// its deterministic id. Re-ingesting identical (user, filename, content)
	// is an idempotent no-op that returns the existing id.
	Ingest(ctx context.Context, userID, filename, content string, tags []string) (string, error)

	// Delete removes a document and all of its chunks. Fails with
	// domain.ErrScopeViolation when the document belongs to another user.
	Delete(ctx context.Context, userID, documentID string) error

	// ListDocuments returns the user's documents ordered by ingestion time.
	ListDocuments(ctx context.Context, userID string) ([]domain.DocumentMetadata, error)

	// ListChunks returns a document's chunks in index order, including
	// chunks whose embedding failed.
	ListChunks(ctx context.Context, userID, documentID string) ([]domain.KnowledgeChunk, error)

	// ReEmbed retries embedding for the document's chunks that have no
	// vector. Returns the number of chunks embedded.
	ReEmbed(ctx context.Context, userID, documentID string) (int, error)
}
