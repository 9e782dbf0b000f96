// Package domain defines the core business entities for Memora.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - DocumentMetadata: an ingested document's descriptive record
//   - KnowledgeChunk: a bounded, embeddable unit of document text
//   - QueryResult: a scored chunk returned from similarity search
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
