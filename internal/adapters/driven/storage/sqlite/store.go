package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/memora/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/memora/internal/core/domain"
	"github.com/custodia-labs/memora/internal/core/ports/driven"
)

// Store is the SQLite-backed repository for documents and chunks.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.Repository = (*Store)(nil)

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.memora/data/knowledge.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".memora", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "knowledge.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// PutDocument stores or updates document metadata.
func (s *Store) PutDocument(ctx context.Context, doc *domain.DocumentMetadata) error {
	tagsJSON, err := json.Marshal(doc.Tags)
	if err != nil {
		return fmt.Errorf("marshalling tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (id, user_id, filename, file_type, file_size, chunk_count, status, tags, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			filename = excluded.filename,
			file_type = excluded.file_type,
			file_size = excluded.file_size,
			chunk_count = excluded.chunk_count,
			status = excluded.status,
			tags = excluded.tags,
			ingested_at = excluded.ingested_at
	`, doc.ID, doc.UserID, doc.Filename, doc.FileType, doc.FileSize,
		doc.ChunkCount, string(doc.Status), string(tagsJSON), doc.IngestedAt)

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// GetDocument retrieves document metadata by ID.
func (s *Store) GetDocument(ctx context.Context, documentID string) (*domain.DocumentMetadata, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, filename, file_type, file_size, chunk_count, status, tags, ingested_at
		FROM documents WHERE id = ?
	`, documentID)

	return scanDocument(row)
}

// DeleteDocument removes document metadata.
func (s *Store) DeleteDocument(ctx context.Context, documentID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", documentID)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// PutChunks stores chunks in a single transaction, upserting by chunk ID.
func (s *Store) PutChunks(ctx context.Context, chunks []domain.KnowledgeChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, user_id, document_id, content, position, metadata, embedding, embedding_state, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			document_id = excluded.document_id,
			content = excluded.content,
			position = excluded.position,
			metadata = excluded.metadata,
			embedding = excluded.embedding,
			embedding_state = excluded.embedding_state,
			created_at = excluded.created_at
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		metadataJSON, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling chunk metadata: %w", err)
		}

		embeddingBlob := float32SliceToBytes(chunk.Embedding)

		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.UserID, chunk.DocumentID,
			chunk.Content, chunk.Index, string(metadataJSON), embeddingBlob,
			string(chunk.EmbeddingState), chunk.CreatedAt); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetChunksForUser retrieves all of a user's query-visible chunks, ordered by
// document then position. The join restricts results to persisted documents.
func (s *Store) GetChunksForUser(ctx context.Context, userID string) ([]domain.KnowledgeChunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.user_id, c.document_id, c.content, c.position, c.metadata, c.embedding, c.embedding_state, c.created_at
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE c.user_id = ? AND d.status = ?
		ORDER BY c.document_id, c.position
	`, userID, string(domain.StatusPersisted))
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.KnowledgeChunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}

// DeleteChunksForDocument removes all chunks belonging to a document.
func (s *Store) DeleteChunksForDocument(ctx context.Context, documentID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID)
	if err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	return nil
}

// ListDocuments returns all documents owned by a user, oldest first.
func (s *Store) ListDocuments(ctx context.Context, userID string) ([]domain.DocumentMetadata, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, filename, file_type, file_size, chunk_count, status, tags, ingested_at
		FROM documents WHERE user_id = ?
		ORDER BY ingested_at, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.DocumentMetadata //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocumentRows(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// scanDocument scans a single document row.
func scanDocument(row *sql.Row) (*domain.DocumentMetadata, error) {
	var doc domain.DocumentMetadata
	var status string
	var tagsJSON sql.NullString

	if err := row.Scan(&doc.ID, &doc.UserID, &doc.Filename, &doc.FileType,
		&doc.FileSize, &doc.ChunkCount, &status, &tagsJSON, &doc.IngestedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.Status = domain.DocumentStatus(status)
	if err := unmarshalTags(tagsJSON, &doc.Tags); err != nil {
		return nil, err
	}

	return &doc, nil
}

// scanDocumentRows scans a document from *sql.Rows.
func scanDocumentRows(rows *sql.Rows) (*domain.DocumentMetadata, error) {
	var doc domain.DocumentMetadata
	var status string
	var tagsJSON sql.NullString

	if err := rows.Scan(&doc.ID, &doc.UserID, &doc.Filename, &doc.FileType,
		&doc.FileSize, &doc.ChunkCount, &status, &tagsJSON, &doc.IngestedAt); err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.Status = domain.DocumentStatus(status)
	if err := unmarshalTags(tagsJSON, &doc.Tags); err != nil {
		return nil, err
	}

	return &doc, nil
}

// scanChunk scans a chunk from *sql.Rows.
func scanChunk(rows *sql.Rows) (*domain.KnowledgeChunk, error) {
	var chunk domain.KnowledgeChunk
	var embeddingBlob []byte
	var metadataJSON sql.NullString
	var state string

	if err := rows.Scan(&chunk.ID, &chunk.UserID, &chunk.DocumentID, &chunk.Content,
		&chunk.Index, &metadataJSON, &embeddingBlob, &state, &chunk.CreatedAt); err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)
	chunk.EmbeddingState = domain.EmbeddingState(state)

	if metadataJSON.Valid && metadataJSON.String != "" && metadataJSON.String != "null" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling chunk metadata: %w", err)
		}
	}

	return &chunk, nil
}

// unmarshalTags decodes the tags column into the document.
func unmarshalTags(tagsJSON sql.NullString, tags *[]string) error {
	if !tagsJSON.Valid || tagsJSON.String == "" || tagsJSON.String == "null" {
		return nil
	}
	if err := json.Unmarshal([]byte(tagsJSON.String), tags); err != nil {
		return fmt.Errorf("unmarshaling tags: %w", err)
	}
	return nil
}
