package mcp

import (
	"github.com/custodia-labs/memora/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Knowledge manages the document ingestion lifecycle.
	Knowledge driving.KnowledgeService

	// Query answers similarity queries over a user's chunks.
	Query driving.QueryService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Knowledge == nil {
		return ErrMissingKnowledgeService
	}
	if p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}
