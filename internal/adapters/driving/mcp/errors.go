// Package mcp provides an MCP (Model Context Protocol) server adapter for
// memora. It lets AI assistants search and maintain a user's knowledge store
// over stdio or HTTP.
package mcp

import "errors"

// ErrMissingKnowledgeService is returned when the knowledge service is not provided.
var ErrMissingKnowledgeService = errors.New("mcp: knowledge service is required")

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("mcp: query service is required")
