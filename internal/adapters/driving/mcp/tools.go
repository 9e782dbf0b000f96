package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/memora/internal/core/domain"
)

// SearchInput is the input schema for the knowledge_search tool.
type SearchInput struct {
	UserID string `json:"user_id" jsonschema:"the user whose knowledge store to search"`
	Query  string `json:"query" jsonschema:"the text to find similar chunks for"`
	TopK   int    `json:"top_k,omitempty" jsonschema:"maximum number of results to return (default 10)"`
}

// SearchOutput is the output schema for the knowledge_search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	Index      int     `json:"index"`
	Score      float64 `json:"score"`
	Content    string  `json:"content"`
}

// IngestInput is the input schema for the knowledge_ingest tool.
type IngestInput struct {
	UserID   string   `json:"user_id" jsonschema:"the user to ingest the document for"`
	Filename string   `json:"filename" jsonschema:"the name to store the document under"`
	Content  string   `json:"content" jsonschema:"the full text content of the document"`
	Tags     []string `json:"tags,omitempty" jsonschema:"free-form labels attached to the document"`
}

// IngestOutput is the output schema for the knowledge_ingest tool.
type IngestOutput struct {
	DocumentID string `json:"document_id"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct {
	UserID string `json:"user_id" jsonschema:"the user whose documents to list"`
}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput represents a single stored document.
type DocumentOutput struct {
	ID         string   `json:"id"`
	Filename   string   `json:"filename"`
	FileType   string   `json:"file_type,omitempty"`
	FileSize   int64    `json:"file_size"`
	ChunkCount int      `json:"chunk_count"`
	Status     string   `json:"status"`
	Tags       []string `json:"tags,omitempty"`
	IngestedAt string   `json:"ingested_at"`
}

// DeleteDocumentInput is the input schema for the delete_document tool.
type DeleteDocumentInput struct {
	UserID     string `json:"user_id" jsonschema:"the user who owns the document"`
	DocumentID string `json:"document_id" jsonschema:"the id of the document to delete"`
}

// DeleteDocumentOutput is the output schema for the delete_document tool.
type DeleteDocumentOutput struct {
	Deleted bool `json:"deleted"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "knowledge_search",
		Description: "Search a user's knowledge store for chunks similar to a query",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "knowledge_ingest",
		Description: "Ingest a text document into a user's knowledge store",
	}, s.handleIngest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List the documents in a user's knowledge store",
	}, s.handleListDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_document",
		Description: "Delete a document and all of its chunks from a user's knowledge store",
	}, s.handleDeleteDocument)
}

// handleSearch handles the knowledge_search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	opts := domain.SearchOptions{TopK: input.TopK}
	results, err := s.ports.Query.Search(ctx, input.UserID, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		output.Results[i] = SearchResultOutput{
			ChunkID:    results[i].Chunk.ID,
			DocumentID: results[i].Chunk.DocumentID,
			Index:      results[i].Chunk.Index,
			Score:      results[i].Score,
			Content:    results[i].Chunk.Content,
		}
	}

	return nil, output, nil
}

// handleIngest handles the knowledge_ingest tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	docID, err := s.ports.Knowledge.Ingest(ctx, input.UserID, input.Filename, input.Content, input.Tags)
	if err != nil {
		return nil, IngestOutput{}, err
	}

	return nil, IngestOutput{DocumentID: docID}, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.ports.Knowledge.ListDocuments(ctx, input.UserID)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}

	for i := range docs {
		output.Documents[i] = DocumentOutput{
			ID:         docs[i].ID,
			Filename:   docs[i].Filename,
			FileType:   docs[i].FileType,
			FileSize:   docs[i].FileSize,
			ChunkCount: docs[i].ChunkCount,
			Status:     string(docs[i].Status),
			Tags:       docs[i].Tags,
			IngestedAt: docs[i].IngestedAt.Format(time.RFC3339),
		}
	}

	return nil, output, nil
}

// handleDeleteDocument handles the delete_document tool invocation.
func (s *Server) handleDeleteDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeleteDocumentInput,
) (*mcp.CallToolResult, DeleteDocumentOutput, error) {
	if err := s.ports.Knowledge.Delete(ctx, input.UserID, input.DocumentID); err != nil {
		return nil, DeleteDocumentOutput{}, err
	}

	return nil, DeleteDocumentOutput{Deleted: true}, nil
}
