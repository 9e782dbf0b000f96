package domain

import "time"

// DocumentStatus tracks a document through the ingestion lifecycle.
// Only StatusPersisted documents are visible to queries.
type DocumentStatus string

// Document lifecycle states. Failed is absorbing until a re-ingest;
// Persisted is terminal until an explicit delete.
const (
	StatusPending   DocumentStatus = "pending"
	StatusChunking  DocumentStatus = "chunking"
	StatusEmbedding DocumentStatus = "embedding"
	StatusPersisted DocumentStatus = "persisted"
	StatusFailed    DocumentStatus = "failed"
)

// EmbeddingState tracks whether a chunk's vector has been computed.
type EmbeddingState string

const (
	// EmbeddingPending means no embedding attempt has succeeded yet.
	EmbeddingPending EmbeddingState = "pending"

	// EmbeddingDone means the chunk carries a valid vector.
	EmbeddingDone EmbeddingState = "embedded"

	// EmbeddingFailed means embedding failed permanently; the chunk is
	// persisted without a vector and excluded from search until a re-embed.
	EmbeddingFailed EmbeddingState = "failed"
)

// DocumentMetadata describes an ingested document. The descriptive fields
// are immutable once set; only ChunkCount and Status change, and only the
// knowledge service changes them.
type DocumentMetadata struct {
	// ID is the deterministic content hash of (user, filename, content).
	// See DocumentID.
	ID string

	// UserID is the owning user. Never empty; enforced on every read path.
	UserID string

	// Filename is the name the content was ingested under.
	Filename string

	// FileType is the lowercased extension without the dot ("md", "txt").
	FileType string

	// FileSize is the byte length of the original content.
	FileSize int64

	// ChunkCount is the number of chunks currently stored for the document.
	ChunkCount int

	// Status is the document's position in the ingestion lifecycle.
	Status DocumentStatus

	// Tags are free-form labels supplied at ingestion.
	Tags []string

	// IngestedAt is when the document was first ingested.
	IngestedAt time.Time
}

// Searchable reports whether the document's chunks may appear in results.
func (d *DocumentMetadata) Searchable() bool {
	return d.Status == StatusPersisted
}

// KnowledgeChunk is the atomic retrieval unit: a bounded fragment of a
// document's text plus its vector representation.
type KnowledgeChunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// UserID is the owning user, denormalised from the document so the
	// per-user read path never joins through metadata.
	UserID string

	// DocumentID links to the owning DocumentMetadata.
	DocumentID string

	// Content is the chunk's text, at most the configured max chunk size.
	Content string

	// Index is the 0-based position within the document. For a document the
	// indices are contiguous from 0 in source-text order.
	Index int

	// Metadata contains chunk-specific key-value pairs (source tags etc).
	Metadata map[string]any

	// Embedding is the vector representation. Nil while pending or after a
	// permanent embedding failure.
	Embedding []float32

	// EmbeddingState records whether Embedding is populated.
	EmbeddingState EmbeddingState

	// CreatedAt is when the chunk was created. Immutable.
	CreatedAt time.Time
}

// Embedded reports whether the chunk carries a usable vector.
func (c *KnowledgeChunk) Embedded() bool {
	return c.EmbeddingState == EmbeddingDone && len(c.Embedding) > 0
}
