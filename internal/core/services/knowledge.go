package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/memora/internal/chunker"
	"github.com/custodia-labs/memora/internal/core/domain"
	"github.com/custodia-labs/memora/internal/core/ports/driven"
	"github.com/custodia-labs/memora/internal/core/ports/driving"
	"github.com/custodia-labs/memora/internal/logger"
)

// Ensure KnowledgeStore implements the interface.
var _ driving.KnowledgeService = (*KnowledgeStore)(nil)

// Default ingestion limits.
const (
	// DefaultMaxDocumentSize is the largest accepted document in bytes.
	DefaultMaxDocumentSize = 10 << 20

	// DefaultEmbedAttempts is how many times a transient embedding failure
	// is retried before it is treated as permanent.
	DefaultEmbedAttempts = 3

	// DefaultEmbedBackoff is the initial delay between embedding retries.
	// The delay doubles on each attempt.
	DefaultEmbedBackoff = 500 * time.Millisecond
)

// KnowledgeStore owns the ingestion lifecycle: chunk, embed, persist.
// Concurrent ingestion of different documents proceeds in parallel; a second
// ingest of the same document while one is running is rejected with
// domain.ErrIngestInProgress.
type KnowledgeStore struct {
	repo     driven.Repository
	embedder driven.EmbeddingProvider
	splitter *chunker.Chunker

	maxDocumentSize int
	embedAttempts   int
	embedBackoff    time.Duration

	mu       sync.Mutex
	inflight map[string]struct{}
}

// KnowledgeOption configures the knowledge store.
type KnowledgeOption func(*KnowledgeStore)

// WithMaxDocumentSize sets the maximum accepted document size in bytes.
func WithMaxDocumentSize(size int) KnowledgeOption {
	return func(s *KnowledgeStore) {
		if size > 0 {
			s.maxDocumentSize = size
		}
	}
}

// WithEmbedRetry sets the retry budget for transient embedding failures.
func WithEmbedRetry(attempts int, backoff time.Duration) KnowledgeOption {
	return func(s *KnowledgeStore) {
		if attempts > 0 {
			s.embedAttempts = attempts
		}
		if backoff > 0 {
			s.embedBackoff = backoff
		}
	}
}

// NewKnowledgeStore creates a knowledge store. The embedder may be nil, in
// which case chunks are persisted unembedded and stay out of search results
// until a re-embed with a configured provider.
func NewKnowledgeStore(
	repo driven.Repository,
	embedder driven.EmbeddingProvider,
	splitter *chunker.Chunker,
	opts ...KnowledgeOption,
) *KnowledgeStore {
	s := &KnowledgeStore{
		repo:            repo,
		embedder:        embedder,
		splitter:        splitter,
		maxDocumentSize: DefaultMaxDocumentSize,
		embedAttempts:   DefaultEmbedAttempts,
		embedBackoff:    DefaultEmbedBackoff,
		inflight:        make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest chunks, embeds and persists a document, returning its deterministic
// id. Re-ingesting identical (user, filename, content) returns the existing
// id without re-chunking or re-embedding.
func (s *KnowledgeStore) Ingest(
	ctx context.Context, userID, filename, content string, tags []string,
) (string, error) {
	if err := s.validateIngest(userID, filename, content); err != nil {
		return "", err
	}

	docID := domain.DocumentID(userID, filename, content)

	if !s.begin(docID) {
		return "", fmt.Errorf("%w: document %s", domain.ErrIngestInProgress, docID)
	}
	defer s.end(docID)

	logger.Section("Ingest")
	logger.Debug("User: %s, file: %s, document: %s", userID, filename, docID)

	existing, err := s.repo.GetDocument(ctx, docID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("%w: get document: %w", domain.ErrStorageUnavailable, err)
	}
	if existing != nil && existing.Status == domain.StatusPersisted {
		logger.Info("Document %s already ingested, no-op", docID)
		return docID, nil
	}
	if existing != nil {
		// A previous attempt failed part-way. Clear its chunks before retrying.
		if err := s.repo.DeleteChunksForDocument(ctx, docID); err != nil {
			return "", fmt.Errorf("%w: clear stale chunks: %w", domain.ErrStorageUnavailable, err)
		}
	}

	doc := &domain.DocumentMetadata{
		ID:         docID,
		UserID:     userID,
		Filename:   filename,
		FileType:   fileType(filename),
		FileSize:   int64(len(content)),
		Status:     domain.StatusPending,
		Tags:       tags,
		IngestedAt: time.Now().UTC(),
	}
	if err := s.repo.PutDocument(ctx, doc); err != nil {
		return "", fmt.Errorf("%w: put document: %w", domain.ErrStorageUnavailable, err)
	}

	if err := s.transition(ctx, doc, domain.StatusChunking); err != nil {
		return "", err
	}
	texts, err := s.splitter.Split(content)
	if err != nil {
		s.failDocument(doc)
		return "", fmt.Errorf("chunk document: %w", err)
	}
	logger.Debug("Chunked into %d pieces (budget %d)", len(texts), s.splitter.MaxChunkSize())

	chunks := s.buildChunks(doc, texts, tags)

	if err := s.transition(ctx, doc, domain.StatusEmbedding); err != nil {
		return "", err
	}
	if err := s.embedChunks(ctx, chunks); err != nil {
		// Cancelled mid-flight; nothing visible was written yet.
		s.failDocument(doc)
		return "", err
	}

	if err := s.repo.PutChunks(ctx, chunks); err != nil {
		s.failDocument(doc)
		return "", fmt.Errorf("%w: put chunks: %w", domain.ErrStorageUnavailable, err)
	}

	// Flipping the status last makes the whole chunk set visible atomically.
	doc.Status = domain.StatusPersisted
	doc.ChunkCount = len(chunks)
	if err := s.repo.PutDocument(ctx, doc); err != nil {
		return "", fmt.Errorf("%w: persist document: %w", domain.ErrStorageUnavailable, err)
	}

	logger.Info("Ingested %s: %d chunks", docID, len(chunks))
	return docID, nil
}

// Delete removes a document and all of its chunks after verifying ownership.
func (s *KnowledgeStore) Delete(ctx context.Context, userID, documentID string) error {
	if userID == "" || documentID == "" {
		return fmt.Errorf("%w: user id and document id are required", domain.ErrInvalidInput)
	}

	doc, err := s.repo.GetDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: document %s", domain.ErrNotFound, documentID)
		}
		return fmt.Errorf("%w: get document: %w", domain.ErrStorageUnavailable, err)
	}
	if doc.UserID != userID {
		return fmt.Errorf("%w: document %s", domain.ErrScopeViolation, documentID)
	}

	// Chunks go first: the metadata row survives a partial failure, so the
	// delete stays retryable and a later re-ingest still sees the document
	// and clears any leftovers.
	if err := s.repo.DeleteChunksForDocument(ctx, documentID); err != nil {
		return fmt.Errorf("%w: delete chunks: %w", domain.ErrStorageUnavailable, err)
	}
	if err := s.repo.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("%w: delete document: %w", domain.ErrStorageUnavailable, err)
	}

	logger.Info("Deleted document %s for user %s", documentID, userID)
	return nil
}

// ListDocuments returns the user's documents ordered by ingestion time.
func (s *KnowledgeStore) ListDocuments(ctx context.Context, userID string) ([]domain.DocumentMetadata, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	docs, err := s.repo.ListDocuments(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list documents: %w", domain.ErrStorageUnavailable, err)
	}
	return docs, nil
}

// ListChunks returns a document's chunks in index order, including chunks
// whose embedding failed.
func (s *KnowledgeStore) ListChunks(ctx context.Context, userID, documentID string) ([]domain.KnowledgeChunk, error) {
	if _, err := s.ownedDocument(ctx, userID, documentID); err != nil {
		return nil, err
	}

	all, err := s.repo.GetChunksForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: get chunks: %w", domain.ErrStorageUnavailable, err)
	}

	var chunks []domain.KnowledgeChunk
	for i := range all {
		if all[i].DocumentID == documentID {
			chunks = append(chunks, all[i])
		}
	}
	return chunks, nil
}

// ReEmbed retries embedding for the document's chunks that carry no vector.
// Attaching a missing embedding is the only permitted chunk mutation.
func (s *KnowledgeStore) ReEmbed(ctx context.Context, userID, documentID string) (int, error) {
	if _, err := s.ownedDocument(ctx, userID, documentID); err != nil {
		return 0, err
	}
	if s.embedder == nil {
		return 0, domain.ErrEmbeddingUnavailable
	}

	chunks, err := s.ListChunks(ctx, userID, documentID)
	if err != nil {
		return 0, err
	}

	var updated []domain.KnowledgeChunk
	for i := range chunks {
		if chunks[i].Embedded() {
			continue
		}
		vec, err := s.embedOne(ctx, chunks[i].Content)
		if err != nil {
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			logger.Warn("Re-embed failed for chunk %s: %v", chunks[i].ID, err)
			continue
		}
		s.attachEmbedding(&chunks[i], vec)
		if !chunks[i].Embedded() {
			continue
		}
		updated = append(updated, chunks[i])
	}

	if len(updated) == 0 {
		return 0, nil
	}
	if err := s.repo.PutChunks(ctx, updated); err != nil {
		return 0, fmt.Errorf("%w: put chunks: %w", domain.ErrStorageUnavailable, err)
	}

	logger.Info("Re-embedded %d chunks of document %s", len(updated), documentID)
	return len(updated), nil
}

// validateIngest applies the synchronous validation rules.
func (s *KnowledgeStore) validateIngest(userID, filename, content string) error {
	if userID == "" {
		return fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if filename == "" {
		return fmt.Errorf("%w: filename is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: content is empty", domain.ErrInvalidInput)
	}
	if len(content) > s.maxDocumentSize {
		return fmt.Errorf("%w: content exceeds %d bytes", domain.ErrInvalidInput, s.maxDocumentSize)
	}
	return nil
}

// ownedDocument fetches a document and verifies the caller owns it.
func (s *KnowledgeStore) ownedDocument(ctx context.Context, userID, documentID string) (*domain.DocumentMetadata, error) {
	if userID == "" || documentID == "" {
		return nil, fmt.Errorf("%w: user id and document id are required", domain.ErrInvalidInput)
	}
	doc, err := s.repo.GetDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, documentID)
		}
		return nil, fmt.Errorf("%w: get document: %w", domain.ErrStorageUnavailable, err)
	}
	if doc.UserID != userID {
		return nil, fmt.Errorf("%w: document %s", domain.ErrScopeViolation, documentID)
	}
	return doc, nil
}

// buildChunks assembles chunk records from split texts, assigning contiguous
// 0-based indices in source order.
func (s *KnowledgeStore) buildChunks(doc *domain.DocumentMetadata, texts, tags []string) []domain.KnowledgeChunk {
	now := time.Now().UTC()
	chunks := make([]domain.KnowledgeChunk, len(texts))
	for i, text := range texts {
		meta := map[string]any{"chunk_index": i}
		if len(tags) > 0 {
			meta["tags"] = tags
		}
		chunks[i] = domain.KnowledgeChunk{
			ID:             uuid.New().String(),
			UserID:         doc.UserID,
			DocumentID:     doc.ID,
			Content:        text,
			Index:          i,
			Metadata:       meta,
			EmbeddingState: domain.EmbeddingPending,
			CreatedAt:      now,
		}
	}
	return chunks
}

// embedChunks attaches vectors to the chunks via one batched provider call,
// falling back to per-chunk embedding when the batch fails so a single bad
// input cannot poison the rest. Chunks that fail permanently keep a nil
// embedding and EmbeddingFailed state. Returns an error only on cancellation.
func (s *KnowledgeStore) embedChunks(ctx context.Context, chunks []domain.KnowledgeChunk) error {
	if s.embedder == nil {
		logger.Warn("No embedding provider configured; persisting %d chunks unembedded", len(chunks))
		return nil
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}

	var vecs [][]float32
	err := s.retryTransient(ctx, func() error {
		var batchErr error
		vecs, batchErr = s.embedder.EmbedBatch(ctx, texts)
		return batchErr
	})
	if err == nil && len(vecs) == len(chunks) {
		for i := range chunks {
			s.attachEmbedding(&chunks[i], vecs[i])
		}
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	logger.Warn("Batch embedding failed (%v), retrying chunks individually", err)

	for i := range chunks {
		vec, err := s.embedOne(ctx, chunks[i].Content)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("Embedding failed permanently for chunk %d: %v", chunks[i].Index, err)
			chunks[i].EmbeddingState = domain.EmbeddingFailed
			continue
		}
		s.attachEmbedding(&chunks[i], vec)
	}
	return nil
}

// embedOne embeds a single text with the transient-retry budget.
func (s *KnowledgeStore) embedOne(ctx context.Context, text string) ([]float32, error) {
	var vec []float32
	err := s.retryTransient(ctx, func() error {
		var embedErr error
		vec, embedErr = s.embedder.Embed(ctx, text)
		return embedErr
	})
	if err != nil {
		return nil, err
	}
	return vec, nil
}

// attachEmbedding stores a vector on the chunk after checking it matches the
// provider's declared dimensionality.
func (s *KnowledgeStore) attachEmbedding(chunk *domain.KnowledgeChunk, vec []float32) {
	if len(vec) != s.embedder.Dimensions() {
		logger.Warn("Chunk %d: provider returned %d dimensions, want %d",
			chunk.Index, len(vec), s.embedder.Dimensions())
		chunk.EmbeddingState = domain.EmbeddingFailed
		return
	}
	chunk.Embedding = vec
	chunk.EmbeddingState = domain.EmbeddingDone
}

// retryTransient runs fn, retrying domain.ErrEmbeddingTransient failures
// with doubling backoff until the attempt budget is spent. Permanent errors
// return immediately.
func (s *KnowledgeStore) retryTransient(ctx context.Context, fn func() error) error {
	backoff := s.embedBackoff
	var err error
	for attempt := 1; attempt <= s.embedAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrEmbeddingTransient) {
			return err
		}
		if attempt == s.embedAttempts {
			break
		}
		logger.Debug("Transient embedding failure (attempt %d/%d): %v", attempt, s.embedAttempts, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}

// failDocument records a failed ingestion attempt so the document can be
// retried safely. Best effort: the chunks were either never written or are
// invisible because the status never reached Persisted.
// transition records a document status change so the lifecycle is
// observable in storage, not just on the in-memory struct.
func (s *KnowledgeStore) transition(
	ctx context.Context, doc *domain.DocumentMetadata, status domain.DocumentStatus,
) error {
	doc.Status = status
	if err := s.repo.PutDocument(ctx, doc); err != nil {
		return fmt.Errorf("%w: update status: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *KnowledgeStore) failDocument(doc *domain.DocumentMetadata) {
	doc.Status = domain.StatusFailed
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.repo.PutDocument(ctx, doc); err != nil {
		logger.Warn("Could not record failed state for %s: %v", doc.ID, err)
	}
}

// begin registers an in-flight ingestion for the document id.
// Returns false when one is already running.
func (s *KnowledgeStore) begin(docID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inflight[docID]; ok {
		return false
	}
	s.inflight[docID] = struct{}{}
	return true
}

// end clears the in-flight marker.
func (s *KnowledgeStore) end(docID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, docID)
}

// fileType derives the lowercased extension without the dot.
func fileType(filename string) string {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	return strings.ToLower(ext)
}
